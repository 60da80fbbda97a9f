package controllers

import (
	"net/http"

	"github.com/amanagarwal0602/randomcafe-sub001/api/middleware"
	"github.com/amanagarwal0602/randomcafe-sub001/api/responses"
	pkgerrors "github.com/amanagarwal0602/randomcafe-sub001/pkg/errors"
	"github.com/amanagarwal0602/randomcafe-sub001/pkg/logger"
)

type toggleRecorder interface {
	IncEditToggle(active bool)
}

// EditModeGet reports the edit session state of the caller's browser session.
func EditModeGet(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gate := middleware.EditGateFromContext(r.Context())
		if gate == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "edit session unavailable"))
			return
		}
		responses.WriteSuccess(w, gate.State())
	}
}

// EditModeToggle flips edit mode. Callers who are not admin or staff get their
// unchanged state back.
func EditModeToggle(metrics toggleRecorder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gate := middleware.EditGateFromContext(r.Context())
		if gate == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "edit session unavailable"))
			return
		}

		before := gate.State()
		after, err := gate.Toggle(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "toggle edit mode"))
			return
		}
		if after != before {
			if metrics != nil {
				metrics.IncEditToggle(after.Active)
			}
			if logg != nil {
				logg.Info(logg.WithField(r.Context(), "edit_active", after.Active), "edit_mode.toggled")
			}
		}
		responses.WriteSuccess(w, after)
	}
}
