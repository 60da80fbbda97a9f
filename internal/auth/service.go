package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/amanagarwal0602/randomcafe-sub001/internal/users"
	pkgAuth "github.com/amanagarwal0602/randomcafe-sub001/pkg/auth"
	"github.com/amanagarwal0602/randomcafe-sub001/pkg/auth/session"
	"github.com/amanagarwal0602/randomcafe-sub001/pkg/config"
	"github.com/amanagarwal0602/randomcafe-sub001/pkg/db/models"
	pkgerrors "github.com/amanagarwal0602/randomcafe-sub001/pkg/errors"
	"github.com/amanagarwal0602/randomcafe-sub001/pkg/security"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const invalidCredentialsMessage = "invalid credentials"

// Service defines the behavior needed by the auth controllers.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Refresh(ctx context.Context, accessToken string, req RefreshRequest) (*RefreshResponse, error)
	Logout(ctx context.Context, accessToken string) error
}

type service struct {
	users   userRepository
	session sessionManager
	jwtCfg  config.JWTConfig
	now     func() time.Time
}

type userRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type sessionManager interface {
	Generate(ctx context.Context, accessID string, userID uuid.UUID) (string, error)
	Rotate(ctx context.Context, oldAccessID, provided string) (*session.Rotation, error)
	Revoke(ctx context.Context, accessID string) error
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	UserRepo       userRepository
	SessionManager sessionManager
	JWTConfig      config.JWTConfig
}

// NewService constructs a login service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	return &service{
		users:   params.UserRepo,
		session: params.SessionManager,
		jwtCfg:  params.JWTConfig,
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	user, err := s.authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update last login")
	}
	user.LastLoginAt = &now

	accessID := session.NewAccessID()
	access, err := s.mint(user, accessID, now)
	if err != nil {
		return nil, err
	}
	refresh, err := s.session.Generate(ctx, accessID, user.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store refresh token")
	}
	return &LoginResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    s.expiresIn(),
		User:         users.FromModel(user),
	}, nil
}

// Refresh redeems the refresh token and mints an access token from the
// account as it is now, so role changes and deactivation apply immediately.
func (s *service) Refresh(ctx context.Context, accessToken string, req RefreshRequest) (*RefreshResponse, error) {
	claims, err := s.sessionClaims(accessToken)
	if err != nil {
		return nil, err
	}

	rotation, err := s.session.Rotate(ctx, claims.ID, req.RefreshToken)
	switch {
	case errors.Is(err, session.ErrInvalidRefreshToken):
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
	case err != nil:
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "rotate session")
	}

	// From here on a failure must not leave the freshly rotated session usable.
	user, err := s.refreshable(ctx, claims.UserID, rotation.UserID)
	if err != nil {
		_ = s.session.Revoke(ctx, rotation.AccessID)
		return nil, err
	}
	access, err := s.mint(user, rotation.AccessID, s.now())
	if err != nil {
		_ = s.session.Revoke(ctx, rotation.AccessID)
		return nil, err
	}
	return &RefreshResponse{AccessToken: access, RefreshToken: rotation.RefreshToken, ExpiresIn: s.expiresIn()}, nil
}

func (s *service) refreshable(ctx context.Context, tokenUser, sessionUser uuid.UUID) (*models.User, error) {
	if tokenUser != sessionUser {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
	}
	user, err := s.users.FindByID(ctx, sessionUser)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	case err != nil:
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	case !user.IsActive || !user.Role.IsValid():
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return user, nil
}

func (s *service) mint(user *models.User, accessID string, now time.Time) (string, error) {
	token, err := pkgAuth.MintAccessToken(s.jwtCfg, now, pkgAuth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
		JTI:    accessID,
	})
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	return token, nil
}

func (s *service) expiresIn() int {
	return s.jwtCfg.ExpirationMinutes * 60
}

// sessionClaims reads the session id out of a possibly expired access token.
func (s *service) sessionClaims(accessToken string) (*pkgAuth.AccessTokenClaims, error) {
	claims, err := pkgAuth.ParseAccessTokenAllowExpired(s.jwtCfg, accessToken)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token")
	}
	if claims.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id")
	}
	return claims, nil
}

// Logout ends the session behind accessToken. Expired tokens are accepted.
func (s *service) Logout(ctx context.Context, accessToken string) error {
	claims, err := s.sessionClaims(accessToken)
	if err != nil {
		return err
	}
	if err := s.session.Revoke(ctx, claims.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "revoke session")
	}
	return nil
}

// authenticate answers every failure with the same message so the response
// does not reveal which emails have accounts.
func (s *service) authenticate(ctx context.Context, email, password string) (*models.User, error) {
	denied := pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, denied
	}
	user, err := s.users.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, denied
	case err != nil:
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok || !user.IsActive || !user.Role.IsValid() {
		return nil, denied
	}
	return user, nil
}
