package migrate

import (
	"context"
	"fmt"

	"github.com/amanagarwal0602/randomcafe-sub001/pkg/config"
	"github.com/amanagarwal0602/randomcafe-sub001/pkg/db"
	"github.com/amanagarwal0602/randomcafe-sub001/pkg/logger"
)

// MaybeRunDev applies the embedded migrations on boot, but only in dev with
// CAFE_AUTO_MIGRATE set. Other environments run cmd/migrate explicitly.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}
	pool, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}

	ctx = logg.WithField(ctx, "dialect", client.Dialect())
	logg.Info(ctx, "auto-migrate starting")
	if err := Run(ctx, pool, client.Dialect(), "", "up"); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	logg.Info(ctx, "auto-migrate finished")
	return nil
}
