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
	Session      SessionConfig
	Availability AvailabilityConfig
	Checkout     CheckoutConfig
	RateLimit    RateLimitConfig
	FeatureFlags FeatureFlagsConfig
	CORS         CORSConfig
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
	Env          string `envconfig:"LEMARCHE_APP_ENV" required:"true"`
	Port         string `envconfig:"LEMARCHE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"LEMARCHE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"LEMARCHE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"LEMARCHE_DB_DSN"`
	Driver string `envconfig:"LEMARCHE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"LEMARCHE_DB_HOST"`
	LegacyPort     int    `envconfig:"LEMARCHE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"LEMARCHE_DB_USER"`
	LegacyPassword string `envconfig:"LEMARCHE_DB_PASSWORD"`
	LegacyName     string `envconfig:"LEMARCHE_DB_NAME"`
	LegacySSLMode  string `envconfig:"LEMARCHE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"LEMARCHE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"LEMARCHE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"LEMARCHE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"LEMARCHE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"LEMARCHE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"LEMARCHE_REDIS_ADDR"`
	Password     string        `envconfig:"LEMARCHE_REDIS_PASSWORD"`
	DB           int           `envconfig:"LEMARCHE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"LEMARCHE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"LEMARCHE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"LEMARCHE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"LEMARCHE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"LEMARCHE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type SessionConfig struct {
	CookieName string        `envconfig:"LEMARCHE_SESSION_COOKIE" default:"lm_session"`
	TTL        time.Duration `envconfig:"LEMARCHE_SESSION_TTL" default:"720h"`
}

type AvailabilityConfig struct {
	CacheTTL        time.Duration `envconfig:"LEMARCHE_AVAILABILITY_CACHE_TTL" default:"30s"`
	DefaultLowStock int           `envconfig:"LEMARCHE_AVAILABILITY_DEFAULT_LOW_STOCK" default:"5"`
}

// CheckoutConfig carries the fixed fees per delivery method, in whole CFA francs.
type CheckoutConfig struct {
	DeliveryFeeCFA         int `envconfig:"LEMARCHE_CHECKOUT_DELIVERY_FEE" default:"1500"`
	DeliveryPreparationCFA int `envconfig:"LEMARCHE_CHECKOUT_DELIVERY_PREPARATION_FEE" default:"500"`
	PickupPreparationCFA   int `envconfig:"LEMARCHE_CHECKOUT_PICKUP_PREPARATION_FEE" default:"300"`
}

// RateLimitConfig throttles mutating storefront calls per session. A zero
// request count or window disables the limiter.
type RateLimitConfig struct {
	Requests int           `envconfig:"LEMARCHE_RATE_LIMIT_REQUESTS" default:"120"`
	Window   time.Duration `envconfig:"LEMARCHE_RATE_LIMIT_WINDOW" default:"1m"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"LEMARCHE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"LEMARCHE_AUTO_MIGRATE" default:"false"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"LEMARCHE_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
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
