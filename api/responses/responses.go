package responses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	pkgerrors "github.com/amanagarwal0602/randomcafe-sub001/pkg/errors"
	"github.com/amanagarwal0602/randomcafe-sub001/pkg/logger"
	"github.com/amanagarwal0602/randomcafe-sub001/pkg/types"
)

// WriteSuccess writes data in the success envelope with status 200.
func WriteSuccess(w http.ResponseWriter, data any) {
	WriteSuccessStatus(w, http.StatusOK, data)
}

func WriteSuccessStatus(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, types.SuccessEnvelope{Data: data})
}

// WriteError writes err as an error envelope. Untyped errors become
// INTERNAL_ERROR, and server-side failures never expose their own text.
// 5xx responses are logged as errors with the full cause chain; client
// errors only at debug.
func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	typed := classify(err)
	meta := pkgerrors.MetadataFor(typed.Code())

	apiErr := types.APIError{
		Code:    string(typed.Code()),
		Message: pkgerrors.PublicMessage(typed),
	}
	if meta.DetailsAllowed {
		apiErr.Details = typed.Details()
	}

	if logg != nil {
		logFailure(ctx, logg, meta.HTTPStatus, typed, err)
	}
	writeJSON(w, meta.HTTPStatus, types.ErrorEnvelope{Error: apiErr})
}

func classify(err error) *pkgerrors.Error {
	if err == nil {
		err = errors.New("nil error written as a response")
	}
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
}

func logFailure(ctx context.Context, logg *logger.Logger, status int, typed *pkgerrors.Error, err error) {
	fields := pkgerrors.Dump(err).Fields()
	fields["status"] = status
	if details, ok := typed.Details().(map[string]any); ok {
		if step, ok := details["step"]; ok {
			fields["step"] = step
		}
	}
	ctx = logg.WithFields(ctx, fields)
	if status >= http.StatusInternalServerError {
		logg.Error(ctx, "request.error", err)
		return
	}
	logg.Debug(ctx, "request.rejected")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; an encode failure here can only be a broken connection.
	_ = json.NewEncoder(w).Encode(payload)
}
