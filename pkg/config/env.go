package config

// EnvPrefix is handed to envconfig; every field carries an explicit name so
// the prefix only matters for unnamed fields.
const EnvPrefix = "JOBPAY"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const (
	EnvAppEnv   = "JOBPAY_APP_ENV"
	EnvPort     = "JOBPAY_APP_PORT"
	EnvLogLevel = "JOBPAY_LOG_LEVEL"

	EnvDBDSN    = "JOBPAY_DB_DSN"
	EnvDBDriver = "JOBPAY_DB_DRIVER"
	EnvDBHost   = "JOBPAY_DB_HOST"
	EnvDBUser   = "JOBPAY_DB_USER"
	EnvDBName   = "JOBPAY_DB_NAME"

	EnvDBLockTimeout = "JOBPAY_DB_LOCK_TIMEOUT"

	EnvRedisURL  = "JOBPAY_REDIS_URL"
	EnvJWTSecret = "JOBPAY_JWT_SECRET"

	EnvIdempotencyRequired = "JOBPAY_IDEMPOTENCY_REQUIRED"

	EnvReportsDefaultLimit = "JOBPAY_REPORTS_DEFAULT_CLIENT_LIMIT"
	EnvReportsMaxLimit     = "JOBPAY_REPORTS_MAX_CLIENT_LIMIT"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
