package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/amanagarwal0602/randomcafe-sub001/internal/users"
	"github.com/amanagarwal0602/randomcafe-sub001/pkg/config"
	"github.com/amanagarwal0602/randomcafe-sub001/pkg/db"
	"github.com/amanagarwal0602/randomcafe-sub001/pkg/enums"
	"github.com/amanagarwal0602/randomcafe-sub001/pkg/logger"
	"gorm.io/gorm"
)

// EnsureAdmin creates the bootstrap admin account, or promotes an existing
// account with that email. It does nothing unless both email and password are set.
func EnsureAdmin(ctx context.Context, client *db.Client, cfg config.BootstrapConfig, pw config.PasswordConfig, logg *logger.Logger) error {
	email := strings.ToLower(strings.TrimSpace(cfg.AdminEmail))
	if email == "" || cfg.AdminPassword == "" {
		return nil
	}

	repo := users.NewRepository(client.DB())
	existing, err := repo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.Role == enums.RoleAdmin {
			return nil
		}
		if err := repo.UpdateRole(ctx, existing.ID, enums.RoleAdmin); err != nil {
			return err
		}
		if logg != nil {
			logg.Info(logg.WithField(ctx, "email", email), "bootstrap account promoted to admin")
		}
		return nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return err
	}

	if _, err := createUser(ctx, client, pw, RegisterRequest{
		FirstName: "Cafe",
		LastName:  "Admin",
		Email:     email,
		Password:  cfg.AdminPassword,
	}, enums.RoleAdmin); err != nil {
		return err
	}
	if logg != nil {
		logg.Info(logg.WithField(ctx, "email", email), "bootstrap admin created")
	}
	return nil
}
