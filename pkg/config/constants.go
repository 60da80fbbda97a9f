package config

const (
	EnvPrefix = "CAFE"

	AppEnvDev  = "dev"
	AppEnvProd = "production"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	defaultSQLiteDSN = "file:randomcafe.db?_foreign_keys=on"
)

const (
	EnvAppEnv                 = "CAFE_APP_ENV"
	EnvPort                   = "CAFE_APP_PORT"
	EnvDBDSN                  = "CAFE_DB_DSN"
	EnvDBDriver               = "CAFE_DB_DRIVER"
	EnvDBHost                 = "CAFE_DB_HOST"
	EnvDBUser                 = "CAFE_DB_USER"
	EnvDBName                 = "CAFE_DB_NAME"
	EnvRedisURL               = "CAFE_REDIS_URL"
	EnvJWTSecret              = "CAFE_JWT_SECRET"
	EnvJWTIssuer              = "CAFE_JWT_ISSUER"
	EnvJWTExpMins             = "CAFE_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "CAFE_REFRESH_TOKEN_TTL_MINUTES"
	EnvCORSAllowedOrigins     = "CAFE_CORS_ALLOWED_ORIGINS"
	EnvSessionIdleTimeout     = "CAFE_SESSION_IDLE_TIMEOUT"
	EnvBootstrapAdminEmail    = "CAFE_BOOTSTRAP_ADMIN_EMAIL"
	EnvBootstrapAdminPassword = "CAFE_BOOTSTRAP_ADMIN_PASSWORD"
)

var splitDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
