package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/amanagarwal0602/randomcafe-sub001/api/middleware"
	"github.com/amanagarwal0602/randomcafe-sub001/api/responses"
	"github.com/amanagarwal0602/randomcafe-sub001/api/validators"
	"github.com/amanagarwal0602/randomcafe-sub001/internal/auth"
	"github.com/amanagarwal0602/randomcafe-sub001/internal/users"
	"github.com/amanagarwal0602/randomcafe-sub001/pkg/db/models"
	pkgerrors "github.com/amanagarwal0602/randomcafe-sub001/pkg/errors"
	"github.com/amanagarwal0602/randomcafe-sub001/pkg/logger"
)

type userLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

var (
	errAuthUnavailable = pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable")
	errNoBearer        = pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
)

func AuthLogin(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errAuthUnavailable)
			return
		}
		var body auth.LoginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		session, err := svc.Login(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, session)
	}
}

// AuthRefresh trades a refresh token for a new pair. The previous access
// token goes in the Authorization header and may already have expired.
func AuthRefresh(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return withBearer(svc, logg, func(r *http.Request, token string) (any, error) {
		var body auth.RefreshRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			return nil, err
		}
		return svc.Refresh(r.Context(), token, body)
	})
}

// AuthLogout ends the session behind the presented access token.
func AuthLogout(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return withBearer(svc, logg, func(r *http.Request, token string) (any, error) {
		if err := svc.Logout(r.Context(), token); err != nil {
			return nil, err
		}
		return map[string]string{"status": "logged_out"}, nil
	})
}

func withBearer(svc auth.Service, logg *logger.Logger, call func(r *http.Request, token string) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errAuthUnavailable)
			return
		}
		token := middleware.BearerToken(r)
		if token == "" {
			responses.WriteError(r.Context(), logg, w, errNoBearer)
			return
		}
		out, err := call(r, token)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}

func AuthMe(repo userLookup, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := middleware.UserUUIDFromContext(r.Context())
		if id == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
			return
		}
		user, err := repo.FindByID(r.Context(), *id)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			err = pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		case err != nil:
			err = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, users.FromModel(user))
	}
}
