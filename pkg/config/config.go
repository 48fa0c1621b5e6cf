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
	Currency     CurrencyConfig
	Checkout     CheckoutConfig
	Stripe       StripeConfig
	WhatsApp     WhatsAppConfig
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
	if err := cfg.Currency.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"TBO_APP_ENV" required:"true"`
	Port         string `envconfig:"TBO_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"TBO_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TBO_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"TBO_DB_DSN"`
	Driver string `envconfig:"TBO_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"TBO_DB_HOST"`
	LegacyPort     int    `envconfig:"TBO_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"TBO_DB_USER"`
	LegacyPassword string `envconfig:"TBO_DB_PASSWORD"`
	LegacyName     string `envconfig:"TBO_DB_NAME"`
	LegacySSLMode  string `envconfig:"TBO_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"TBO_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TBO_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TBO_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TBO_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"TBO_REDIS_URL" required:"true"`
	Address      string        `envconfig:"TBO_REDIS_ADDR"`
	Password     string        `envconfig:"TBO_REDIS_PASSWORD"`
	DB           int           `envconfig:"TBO_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TBO_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TBO_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TBO_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TBO_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TBO_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"TBO_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"TBO_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"TBO_JWT_EXPIRATION_MINUTES" default:"60"`
}

// CurrencyConfig pins the canonical storage currency and the fixed rate used
// for the alternate display currency. Rate is canonical units per one display
// unit (3.75 SAR = 1 USD).
type CurrencyConfig struct {
	ExchangeRate float64 `envconfig:"TBO_CURRENCY_EXCHANGE_RATE" default:"3.75"`
}

func (c CurrencyConfig) validate() error {
	if c.ExchangeRate <= 0 {
		return fmt.Errorf("currency exchange rate must be positive")
	}
	return nil
}

type CheckoutConfig struct {
	SuccessURL    string        `envconfig:"TBO_CHECKOUT_SUCCESS_URL" required:"true"`
	CancelURL     string        `envconfig:"TBO_CHECKOUT_CANCEL_URL" required:"true"`
	SubmitTimeout time.Duration `envconfig:"TBO_CHECKOUT_SUBMIT_TIMEOUT" default:"20s"`
}

type StripeConfig struct {
	APIKey string `envconfig:"TBO_STRIPE_API_KEY"`
	Secret string `envconfig:"TBO_STRIPE_SECRET"`
	Env    string `envconfig:"TBO_STRIPE_ENV" default:"test"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type WhatsAppConfig struct {
	Number string `envconfig:"TBO_WHATSAPP_NUMBER" required:"true"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"TBO_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"TBO_AUTO_MIGRATE" default:"false"`
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
