package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/amanagarwal0602/randomcafe-sub001/api/responses"
	pkgAuth "github.com/amanagarwal0602/randomcafe-sub001/pkg/auth"
	"github.com/amanagarwal0602/randomcafe-sub001/pkg/auth/session"
	"github.com/amanagarwal0602/randomcafe-sub001/pkg/config"
	pkgerrors "github.com/amanagarwal0602/randomcafe-sub001/pkg/errors"
	"github.com/amanagarwal0602/randomcafe-sub001/pkg/logger"
)

// Auth requires a bearer token whose session is still live in Redis and
// puts the caller's id, role and access id on the request context.
func Auth(cfg config.JWTConfig, verifier session.AccessSessionChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return bearerAuth(cfg, verifier, logg, true)
}

// OptionalAuth lets anonymous requests through. A token that is present but
// invalid is still rejected rather than silently downgraded to a guest.
func OptionalAuth(cfg config.JWTConfig, verifier session.AccessSessionChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return bearerAuth(cfg, verifier, logg, false)
}

func bearerAuth(cfg config.JWTConfig, verifier session.AccessSessionChecker, logg *logger.Logger, required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				if required {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
					return
				}
				next.ServeHTTP(w, r)
				return
			}
			ctx, err := authenticate(r.Context(), cfg, verifier, logg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken returns the token from "Authorization: Bearer <token>", or ""
// for any other scheme.
func BearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func authenticate(ctx context.Context, cfg config.JWTConfig, verifier session.AccessSessionChecker, logg *logger.Logger, token string) (context.Context, error) {
	claims, err := pkgAuth.ParseAccessToken(cfg, token)
	switch {
	case err != nil:
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token")
	case claims.ID == "":
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id")
	}

	if verifier != nil {
		live, err := verifier.HasSession(ctx, claims.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session")
		}
		if !live {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "session unavailable")
		}
	}

	userID := claims.UserID.String()
	ctx = WithRole(WithUserID(ctx, userID), claims.Role)
	ctx = context.WithValue(ctx, ctxAccessID, claims.ID)
	if logg != nil {
		ctx = logg.WithFields(ctx, map[string]any{"user_id": userID, "actor_role": string(claims.Role)})
	}
	return ctx, nil
}
