package middleware

import (
	"net/http"

	"github.com/amanagarwal0602/randomcafe-sub001/api/responses"
	"github.com/amanagarwal0602/randomcafe-sub001/internal/editsession"
	pkgerrors "github.com/amanagarwal0602/randomcafe-sub001/pkg/errors"
	"github.com/amanagarwal0602/randomcafe-sub001/pkg/logger"
)

// EditSession builds the request's edit gate from the session storage and the
// authenticated actor. It must run after the session has been loaded and
// after Auth or OptionalAuth.
func EditSession(storage editsession.Storage, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			gate, err := editsession.NewGate(ctx, storage, CredentialFromContext(ctx))
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load edit session"))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithEditGate(ctx, gate)))
		})
	}
}
