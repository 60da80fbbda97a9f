package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/amanagarwal0602/randomcafe-sub001/pkg/config"
	"github.com/amanagarwal0602/randomcafe-sub001/pkg/logger"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Client owns the process-wide gorm handle and its dialect name, which
// migrations need to pick the goose dialect.
type Client struct {
	conn    *gorm.DB
	dialect string
}

// New opens the configured database and applies pool limits.
func New(ctx context.Context, cfg config.DBConfig, logg *logger.Logger) (*Client, error) {
	if cfg.DSN == "" {
		return nil, errors.New("db: dsn is required")
	}

	dialect := config.DBDriverPostgres
	var dialector gorm.Dialector = postgres.New(postgres.Config{DSN: cfg.DSN, PreferSimpleProtocol: true})
	if cfg.IsSQLite() {
		dialect = config.DBDriverSQLite
		dialector = sqlite.Open(cfg.DSN)
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 newQueryLogger(logg),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("db: open %s: %w", dialect, err)
	}
	pool, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("db: pool handle: %w", err)
	}
	tunePool(pool, cfg)

	if logg != nil {
		logg.Info(logg.WithField(ctx, "dialect", dialect), "database connection established")
	}
	return &Client{conn: conn, dialect: dialect}, nil
}

// NewFromGorm wraps an already open connection, typically in-memory sqlite in tests.
func NewFromGorm(conn *gorm.DB) *Client {
	c := &Client{conn: conn, dialect: config.DBDriverPostgres}
	if conn != nil && conn.Dialector != nil {
		c.dialect = conn.Dialector.Name()
	}
	return c
}

func tunePool(pool *sql.DB, cfg config.DBConfig) {
	if cfg.IsSQLite() {
		// sqlite allows one writer; more connections only produce SQLITE_BUSY.
		pool.SetMaxOpenConns(1)
		return
	}
	if cfg.MaxOpenConns > 0 {
		pool.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		pool.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		pool.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if cfg.ConnMaxIdleTime > 0 {
		pool.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}
}

func (c *Client) DB() *gorm.DB { return c.conn }

// Dialect is "postgres" or "sqlite".
func (c *Client) Dialect() string { return c.dialect }

func (c *Client) Ping(ctx context.Context) error {
	pool, err := c.conn.DB()
	if err != nil {
		return err
	}
	return pool.PingContext(ctx)
}

func (c *Client) Close() error {
	pool, err := c.conn.DB()
	if err != nil {
		return err
	}
	return pool.Close()
}

// WithTx runs fn in a transaction that commits when fn returns nil and rolls
// back on an error or a panic.
func (c *Client) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return c.conn.WithContext(ctx).Transaction(fn)
}
