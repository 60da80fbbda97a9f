package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/amanagarwal0602/randomcafe-sub001/internal/cron"
	"github.com/amanagarwal0602/randomcafe-sub001/internal/orders"
	"github.com/amanagarwal0602/randomcafe-sub001/pkg/config"
	"github.com/amanagarwal0602/randomcafe-sub001/pkg/db"
	"github.com/amanagarwal0602/randomcafe-sub001/pkg/logger"
	"github.com/amanagarwal0602/randomcafe-sub001/pkg/metrics"
	"github.com/amanagarwal0602/randomcafe-sub001/pkg/migrate"
	"github.com/amanagarwal0602/randomcafe-sub001/pkg/redis"
)

const serviceName = "cron-worker"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logg := logger.New(logger.Options{ServiceName: serviceName})
	if err := godotenv.Load(); err != nil {
		logg.Warn(ctx, "no .env file, using process environment")
	}
	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "config invalid", err)
		os.Exit(1)
	}
	logg = logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "interval": cfg.Cron.Interval.String()})
	if err := run(ctx, cfg, logg); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker exited", err)
		os.Exit(1)
	}
	logg.Info(ctx, "cron worker stopped")
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) (err error) {
	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer func() { err = multierr.Append(err, dbClient.Close()) }()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	defer func() { err = multierr.Append(err, redisClient.Close()) }()

	service, err := newService(cfg, logg, dbClient, redisClient)
	if err != nil {
		return err
	}
	return service.Run(ctx)
}

func newService(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, redisClient *redis.Client) (*cron.Service, error) {
	jobMetrics := metrics.NewCronJobMetrics(prometheus.DefaultRegisterer)

	lock, err := cron.NewRedisLock(redisClient, lockKey(cfg.App.Env), 0)
	if err != nil {
		return nil, err
	}
	staleOrders, err := cron.NewStaleOrdersJob(cron.StaleOrdersJobParams{
		Logger:  logg,
		Orders:  orders.NewRepository(dbClient.DB()),
		TTL:     cfg.Cron.PendingOrderTTL,
		Metrics: jobMetrics,
	})
	if err != nil {
		return nil, err
	}
	return cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(staleOrders),
		Lock:     lock,
		Metrics:  jobMetrics,
		Interval: cfg.Cron.Interval,
	})
}

// lockKey is scoped per environment so staging and production workers
// sharing a Redis do not block each other.
func lockKey(env string) string {
	if env == "" {
		env = "local"
	}
	return "cafe:cron-worker:lock:" + env
}
