package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/amanagarwal0602/randomcafe-sub001/api/routes"
	"github.com/amanagarwal0602/randomcafe-sub001/internal/auth"
	"github.com/amanagarwal0602/randomcafe-sub001/internal/content"
	"github.com/amanagarwal0602/randomcafe-sub001/internal/coupons"
	"github.com/amanagarwal0602/randomcafe-sub001/internal/editsession"
	"github.com/amanagarwal0602/randomcafe-sub001/internal/orders"
	"github.com/amanagarwal0602/randomcafe-sub001/internal/storefront"
	"github.com/amanagarwal0602/randomcafe-sub001/internal/users"
	"github.com/amanagarwal0602/randomcafe-sub001/pkg/auth/session"
	"github.com/amanagarwal0602/randomcafe-sub001/pkg/config"
	"github.com/amanagarwal0602/randomcafe-sub001/pkg/db"
	"github.com/amanagarwal0602/randomcafe-sub001/pkg/logger"
	"github.com/amanagarwal0602/randomcafe-sub001/pkg/metrics"
	"github.com/amanagarwal0602/randomcafe-sub001/pkg/migrate"
	"github.com/amanagarwal0602/randomcafe-sub001/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) (err error) {
	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, dbClient.Close()) }()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}
	if err := auth.EnsureAdmin(ctx, dbClient, cfg.Bootstrap, cfg.Password, logg); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, redisClient.Close()) }()

	collector := metrics.New(prometheus.DefaultRegisterer, prometheus.DefaultGatherer)

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		return err
	}
	browser := editsession.NewSessionManager(cfg.Session, editsession.NewRedisStore(redisClient), !cfg.App.IsDev())

	userRepo := users.NewRepository(dbClient.DB())
	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		return err
	}
	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		DB:             dbClient,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		return err
	}

	contentService, err := content.NewService(content.ServiceParams{
		Repo:     content.NewRepository(dbClient.DB()),
		Cache:    redisClient,
		CacheTTL: cfg.Content.CacheTTL,
		Metrics:  collector,
		Logger:   logg,
	})
	if err != nil {
		return err
	}

	couponRepo := coupons.NewRepository(dbClient.DB())
	couponService, err := coupons.NewService(couponRepo, collector)
	if err != nil {
		return err
	}

	orderService, err := orders.NewService(orders.ServiceParams{
		Repo:     orders.NewRepository(dbClient.DB()),
		Tx:       dbClient,
		Coupons:  couponService,
		Redeemer: couponRepo,
		Menu:     contentService,
		Metrics:  collector,
	})
	if err != nil {
		return err
	}

	var renderer *storefront.Renderer
	if cfg.FeatureFlags.Storefront {
		if renderer, err = storefront.NewRenderer(contentService); err != nil {
			return err
		}
	}

	addr := ":" + cfg.App.Port
	id := os.Getenv("HOSTNAME")
	if id == "" {
		id = "local"
	}
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Dependencies{
			Config:      cfg,
			Logger:      logg,
			Metrics:     collector,
			DB:          dbClient,
			Redis:       redisClient,
			Sessions:    sessionManager,
			Browser:     browser,
			Idempotency: redisClient,
			RateCounter: redisClient,
			Auth:        authService,
			Register:    registerService,
			Users:       userRepo,
			Content:     contentService,
			Coupons:     couponService,
			Orders:      orderService,
			Storefront:  renderer,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(logCtx, "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
