package controllers

import (
	"net/http"

	"github.com/amanagarwal0602/randomcafe-sub001/api/responses"
	"github.com/amanagarwal0602/randomcafe-sub001/api/validators"
	"github.com/amanagarwal0602/randomcafe-sub001/internal/auth"
	pkgerrors "github.com/amanagarwal0602/randomcafe-sub001/pkg/errors"
	"github.com/amanagarwal0602/randomcafe-sub001/pkg/logger"
)

// AuthRegister creates a customer account and answers 201 with the same
// tokens a login would return.
func AuthRegister(reg auth.RegisterService, svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		fail := func(err error) { responses.WriteError(ctx, logg, w, err) }

		if reg == nil || svc == nil {
			fail(pkgerrors.New(pkgerrors.CodeInternal, "registration unavailable"))
			return
		}
		var body auth.RegisterRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			fail(err)
			return
		}

		user, err := reg.Register(ctx, body)
		if err != nil {
			fail(err)
			return
		}
		// Sign in with the stored email so the login lookup sees the normalised address.
		session, err := svc.Login(ctx, auth.LoginRequest{Email: user.Email, Password: body.Password})
		if err != nil {
			fail(err)
			return
		}
		if logg != nil {
			logg.Info(logg.WithField(ctx, "user_id", user.ID.String()), "customer registered")
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, session)
	}
}
