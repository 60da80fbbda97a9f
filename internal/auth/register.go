package auth

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/amanagarwal0602/randomcafe-sub001/internal/users"
	"github.com/amanagarwal0602/randomcafe-sub001/pkg/config"
	"github.com/amanagarwal0602/randomcafe-sub001/pkg/db"
	"github.com/amanagarwal0602/randomcafe-sub001/pkg/enums"
	pkgerrors "github.com/amanagarwal0602/randomcafe-sub001/pkg/errors"
	"github.com/amanagarwal0602/randomcafe-sub001/pkg/security"
)

type RegisterRequest struct {
	FirstName string  `json:"first_name" validate:"required"`
	LastName  string  `json:"last_name" validate:"required"`
	Email     string  `json:"email" validate:"required,email"`
	Password  string  `json:"password" validate:"required"`
	Phone     *string `json:"phone,omitempty"`
}

// RegisterService signs up customers.
type RegisterService interface {
	Register(ctx context.Context, req RegisterRequest) (*users.UserDTO, error)
}

type RegisterServiceParams struct {
	DB             *db.Client
	PasswordConfig config.PasswordConfig
}

type registerService struct {
	RegisterServiceParams
}

func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	return &registerService{RegisterServiceParams: params}, nil
}

// Register only ever creates customers. Staff and admins come from the
// bootstrap account or a role update.
func (s *registerService) Register(ctx context.Context, req RegisterRequest) (*users.UserDTO, error) {
	return createUser(ctx, s.DB, s.PasswordConfig, req, enums.RoleCustomer)
}

// signup is a RegisterRequest after trimming, with every field checked.
type signup struct {
	users.CreateUserDTO
	password string
}

func newSignup(req RegisterRequest, role enums.Role) (signup, error) {
	s := signup{
		CreateUserDTO: users.CreateUserDTO{
			Email:     strings.ToLower(strings.TrimSpace(req.Email)),
			FirstName: strings.TrimSpace(req.FirstName),
			LastName:  strings.TrimSpace(req.LastName),
			Phone:     req.Phone,
			Role:      role,
		},
		password: req.Password,
	}

	problems := map[string]string{}
	for field, value := range map[string]string{"email": s.Email, "first_name": s.FirstName, "last_name": s.LastName} {
		if value == "" {
			problems[field] = "is required"
		}
	}
	if err := security.ValidatePassword(s.password); err != nil {
		problems["password"] = err.Error()
	}
	if len(problems) > 0 {
		return signup{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid registration").WithDetails(problems)
	}
	return s, nil
}

func createUser(ctx context.Context, client *db.Client, cfg config.PasswordConfig, req RegisterRequest, role enums.Role) (*users.UserDTO, error) {
	s, err := newSignup(req, role)
	if err != nil {
		return nil, err
	}
	if s.PasswordHash, err = security.HashPassword(s.password, cfg); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var created *users.UserDTO
	err = client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := users.NewRepository(tx)
		_, err := repo.FindByEmail(ctx, s.Email)
		switch {
		case err == nil:
			return errEmailTaken
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
		}

		user, err := repo.Create(ctx, s.CreateUserDTO)
		if db.IsUniqueViolation(err, "") {
			return errEmailTaken
		}
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}
		created = users.FromModel(user)
		return nil
	})
	return created, err
}

var errEmailTaken = pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
