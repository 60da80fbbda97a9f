package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/amanagarwal0602/randomcafe-sub001/pkg/config"
	"github.com/amanagarwal0602/randomcafe-sub001/pkg/db"
	"github.com/amanagarwal0602/randomcafe-sub001/pkg/logger"
	"github.com/amanagarwal0602/randomcafe-sub001/pkg/migrate"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var dir string
	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Apply and author goose SQL migrations",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&dir, "dir", "", "migrations directory; empty uses the set built into this binary")

	for _, command := range []struct{ name, short string }{
		{"up", "Apply every pending migration"},
		{"down", "Roll back the latest migration"},
		{"redo", "Roll back and re-apply the latest migration"},
		{"reset", "Roll back every migration"},
		{"status", "Print applied and pending migrations"},
	} {
		root.AddCommand(&cobra.Command{
			Use:   command.name,
			Short: command.short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withDB(cmd.Context(), command.name, func(ctx context.Context, pool *sql.DB, dialect string) error {
					return migrate.Run(ctx, pool, dialect, dir, command.name)
				})
			},
		})
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "to VERSION",
			Short: "Migrate up or down to VERSION (YYYYMMDDHHMMSS)",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withDB(cmd.Context(), "to", func(ctx context.Context, pool *sql.DB, dialect string) error {
					return migrate.MigrateToVersion(ctx, pool, dialect, dir, args[0])
				})
			},
		},
		&cobra.Command{
			Use:   "create NAME",
			Short: "Write an empty timestamped SQL migration",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				path, err := migrate.CreateSQLMigration(sourceDir(dir), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "created", path)
				return nil
			},
		},
		&cobra.Command{
			Use:   "validate",
			Short: "Check migration file names, versions and goose annotations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if err := migrate.ValidateDir(sourceDir(dir)); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "migrations ok")
				return nil
			},
		},
	)
	return root
}

// sourceDir is where authoring commands read and write files, which is
// always the checkout rather than the embedded set.
func sourceDir(dir string) string {
	if dir == "" {
		return migrate.DefaultDir
	}
	return dir
}

// withDB loads config, opens the database and hands fn the pool.
func withDB(ctx context.Context, command string, fn func(context.Context, *sql.DB, string) error) error {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logg := logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})
	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "driver": cfg.DB.Driver, "cmd": command})

	client, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "database unavailable", err)
		return err
	}
	defer client.Close()

	pool, err := client.DB().DB()
	if err != nil {
		return err
	}
	if err := fn(ctx, pool, client.Dialect()); err != nil {
		logg.Error(ctx, "migration failed", err)
		return err
	}
	logg.Info(ctx, "migration finished")
	return nil
}
