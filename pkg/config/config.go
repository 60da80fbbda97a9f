package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	RateLimit     RateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Session       SessionConfig
	Content       ContentConfig
	CORS          CORSConfig
	Bootstrap     BootstrapConfig
	Cron          CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"CAFE_APP_ENV" required:"true"`
	Port         string `envconfig:"CAFE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"CAFE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CAFE_LOG_WARN_STACK" default:"false"`
	LogFormat    string `envconfig:"CAFE_LOG_FORMAT" default:"json"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"CAFE_DB_DSN"`
	Driver string `envconfig:"CAFE_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"CAFE_DB_HOST"`
	Port     int    `envconfig:"CAFE_DB_PORT" default:"5432"`
	User     string `envconfig:"CAFE_DB_USER"`
	Password string `envconfig:"CAFE_DB_PASSWORD"`
	Name     string `envconfig:"CAFE_DB_NAME"`
	SSLMode  string `envconfig:"CAFE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CAFE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CAFE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CAFE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CAFE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the configured driver is the embedded sqlite one.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"CAFE_REDIS_URL"`
	Address      string        `envconfig:"CAFE_REDIS_ADDR"`
	Password     string        `envconfig:"CAFE_REDIS_PASSWORD"`
	DB           int           `envconfig:"CAFE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CAFE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CAFE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CAFE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CAFE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CAFE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"CAFE_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"CAFE_JWT_ISSUER" default:"randomcafe"`
	ExpirationMinutes      int    `envconfig:"CAFE_JWT_EXPIRATION_MINUTES" default:"60"`
	RefreshTokenTTLMinutes int    `envconfig:"CAFE_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"CAFE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"CAFE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"CAFE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"CAFE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"CAFE_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"CAFE_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"CAFE_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"CAFE_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"CAFE_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"CAFE_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"CAFE_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

// RateLimitConfig throttles public write endpoints (coupon checks, order placement) per client IP.
type RateLimitConfig struct {
	RequestsPerSecond float64 `envconfig:"CAFE_RATE_LIMIT_RPS" default:"5"`
	Burst             int     `envconfig:"CAFE_RATE_LIMIT_BURST" default:"10"`
	MaxTrackedClients int     `envconfig:"CAFE_RATE_LIMIT_MAX_CLIENTS" default:"10000"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"CAFE_AUTO_MIGRATE" default:"false"`
	Storefront  bool `envconfig:"CAFE_FEATURE_STOREFRONT" default:"true"`
}

// SessionConfig controls the browser session that carries the edit-mode flag.
type SessionConfig struct {
	CookieName  string        `envconfig:"CAFE_SESSION_COOKIE_NAME" default:"cafe_session"`
	IdleTimeout time.Duration `envconfig:"CAFE_SESSION_IDLE_TIMEOUT" default:"2h"`
	Lifetime    time.Duration `envconfig:"CAFE_SESSION_LIFETIME" default:"12h"`
}

// ContentConfig tunes the content store read cache.
type ContentConfig struct {
	CacheTTL time.Duration `envconfig:"CAFE_CONTENT_CACHE_TTL" default:"5m"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"CAFE_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`
}

// CronConfig drives the maintenance worker.
type CronConfig struct {
	Interval        time.Duration `envconfig:"CAFE_CRON_INTERVAL" default:"15m"`
	PendingOrderTTL time.Duration `envconfig:"CAFE_CRON_PENDING_ORDER_TTL" default:"6h"`
}

// BootstrapConfig seeds the first admin account on start-up when both values are set.
type BootstrapConfig struct {
	AdminEmail    string `envconfig:"CAFE_BOOTSTRAP_ADMIN_EMAIL"`
	AdminPassword string `envconfig:"CAFE_BOOTSTRAP_ADMIN_PASSWORD"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		db.DSN = defaultSQLiteDSN
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range splitDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
