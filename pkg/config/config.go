package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Access       AccessConfig
	Idempotency  IdempotencyConfig
	Reports      ReportsConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Reports.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"JOBPAY_APP_ENV" required:"true"`
	Port         string `envconfig:"JOBPAY_APP_PORT" default:"3001"`
	LogLevel     string `envconfig:"JOBPAY_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"JOBPAY_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"JOBPAY_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"JOBPAY_DB_DSN"`
	Driver string `envconfig:"JOBPAY_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"JOBPAY_DB_HOST"`
	LegacyPort     int    `envconfig:"JOBPAY_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"JOBPAY_DB_USER"`
	LegacyPassword string `envconfig:"JOBPAY_DB_PASSWORD"`
	LegacyName     string `envconfig:"JOBPAY_DB_NAME"`
	LegacySSLMode  string `envconfig:"JOBPAY_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"JOBPAY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"JOBPAY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"JOBPAY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"JOBPAY_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	// LockTimeout bounds how long a transaction waits on a row lock (postgres only).
	LockTimeout time.Duration `envconfig:"JOBPAY_DB_LOCK_TIMEOUT" default:"5s"`
	// TxTimeout bounds the whole transaction including commit.
	TxTimeout time.Duration `envconfig:"JOBPAY_DB_TX_TIMEOUT" default:"10s"`
}

// IsSQLite reports whether the single-writer embedded store is selected.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"JOBPAY_REDIS_URL"`
	Address      string        `envconfig:"JOBPAY_REDIS_ADDR"`
	Password     string        `envconfig:"JOBPAY_REDIS_PASSWORD"`
	DB           int           `envconfig:"JOBPAY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"JOBPAY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"JOBPAY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"JOBPAY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"JOBPAY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"JOBPAY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

// JWTConfig configures bearer-token identity. Tokens are minted by the
// external identity provider; this service only verifies them.
type JWTConfig struct {
	Secret            string `envconfig:"JOBPAY_JWT_SECRET"`
	Issuer            string `envconfig:"JOBPAY_JWT_ISSUER" default:"jobpay"`
	ExpirationMinutes int    `envconfig:"JOBPAY_JWT_EXPIRATION_MINUTES" default:"60"`
}

// Enabled reports whether bearer tokens can be verified.
func (j JWTConfig) Enabled() bool {
	return strings.TrimSpace(j.Secret) != ""
}

type AccessConfig struct {
	ProfileHeader string `envconfig:"JOBPAY_ACCESS_PROFILE_HEADER" default:"profile_id"`
}

type IdempotencyConfig struct {
	Required bool          `envconfig:"JOBPAY_IDEMPOTENCY_REQUIRED" default:"false"`
	TTL      time.Duration `envconfig:"JOBPAY_IDEMPOTENCY_TTL" default:"24h"`
}

type ReportsConfig struct {
	DefaultClientLimit int `envconfig:"JOBPAY_REPORTS_DEFAULT_CLIENT_LIMIT" default:"2"`
	MaxClientLimit     int `envconfig:"JOBPAY_REPORTS_MAX_CLIENT_LIMIT" default:"100"`
}

func (r ReportsConfig) validate() error {
	if r.DefaultClientLimit <= 0 {
		return fmt.Errorf("%s must be positive", EnvReportsDefaultLimit)
	}
	if r.MaxClientLimit < r.DefaultClientLimit {
		return fmt.Errorf("%s must be >= %s", EnvReportsMaxLimit, EnvReportsDefaultLimit)
	}
	return nil
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"JOBPAY_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		return fmt.Errorf("%s is required for the sqlite driver", EnvDBDSN)
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
