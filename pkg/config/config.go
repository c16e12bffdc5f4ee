package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Admin         AdminConfig
	AuthRateLimit AuthRateLimitConfig
	Flow          FlowConfig
	Mail          MailConfig
	Shop          ShopConfig
	FeatureFlags  FeatureFlagsConfig
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
	Env       string `envconfig:"REGALOAMOR_APP_ENV" required:"true"`
	Port      string `envconfig:"REGALOAMOR_APP_PORT" default:"8080"`
	BaseURL   string `envconfig:"REGALOAMOR_APP_BASE_URL" required:"true"`
	LogLevel  string `envconfig:"REGALOAMOR_LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"REGALOAMOR_LOG_FORMAT" default:"json"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"REGALOAMOR_DB_DSN"`

	Host     string `envconfig:"REGALOAMOR_DB_HOST"`
	Port     int    `envconfig:"REGALOAMOR_DB_PORT" default:"5432"`
	User     string `envconfig:"REGALOAMOR_DB_USER"`
	Password string `envconfig:"REGALOAMOR_DB_PASSWORD"`
	Name     string `envconfig:"REGALOAMOR_DB_NAME"`
	SSLMode  string `envconfig:"REGALOAMOR_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"REGALOAMOR_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"REGALOAMOR_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"REGALOAMOR_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"REGALOAMOR_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"REGALOAMOR_REDIS_URL"`
	Address      string        `envconfig:"REGALOAMOR_REDIS_ADDR"`
	Password     string        `envconfig:"REGALOAMOR_REDIS_PASSWORD"`
	DB           int           `envconfig:"REGALOAMOR_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"REGALOAMOR_REDIS_POOL_SIZE" default:"10"`
	DialTimeout  time.Duration `envconfig:"REGALOAMOR_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"REGALOAMOR_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"REGALOAMOR_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"REGALOAMOR_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"REGALOAMOR_JWT_ISSUER" default:"regaloamor"`
	ExpirationMinutes int    `envconfig:"REGALOAMOR_JWT_EXPIRATION_MINUTES" default:"480"`
}

// AdminConfig holds the administrator credential pair. The password is stored
// as an argon2id hash produced by cmd/hashpw, never in the clear.
type AdminConfig struct {
	Email        string `envconfig:"REGALOAMOR_ADMIN_EMAIL" required:"true"`
	PasswordHash string `envconfig:"REGALOAMOR_ADMIN_PASSWORD_HASH" required:"true"`
}

type AuthRateLimitConfig struct {
	LoginWindow  time.Duration `envconfig:"REGALOAMOR_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginIPLimit int           `envconfig:"REGALOAMOR_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"10"`
}

// FlowConfig configures the Flow payment gateway integration.
type FlowConfig struct {
	APIKey  string        `envconfig:"REGALOAMOR_FLOW_API_KEY" required:"true"`
	Secret  string        `envconfig:"REGALOAMOR_FLOW_SECRET" required:"true"`
	Env     string        `envconfig:"REGALOAMOR_FLOW_ENV" default:"sandbox"`
	Timeout time.Duration `envconfig:"REGALOAMOR_FLOW_TIMEOUT" default:"15s"`
}

// Environment returns the normalized Flow environment (sandbox/production).
func (f FlowConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(f.Env))
	if env == "" {
		return "sandbox"
	}
	return env
}

type MailConfig struct {
	APIKey   string `envconfig:"REGALOAMOR_MAIL_API_KEY"`
	From     string `envconfig:"REGALOAMOR_MAIL_FROM" default:"pedidos@regaloamor.cl"`
	FromName string `envconfig:"REGALOAMOR_MAIL_FROM_NAME" default:"Regalo Amor"`
}

type ShopConfig struct {
	// LoyaltyRate is the CLP spend required per loyalty point.
	LoyaltyRate int `envconfig:"REGALOAMOR_SHOP_LOYALTY_RATE" default:"10000"`
	// DefaultShippingCost applies until an administrator saves a shipping config.
	DefaultShippingCost int `envconfig:"REGALOAMOR_SHOP_DEFAULT_SHIPPING_COST" default:"3000"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"REGALOAMOR_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	for env, value := range map[string]string{
		"REGALOAMOR_DB_HOST": db.Host,
		"REGALOAMOR_DB_USER": db.User,
		"REGALOAMOR_DB_NAME": db.Name,
	} {
		if value == "" {
			missing = append(missing, env)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("either REGALOAMOR_DB_DSN or %s are required", strings.Join(missing, ", "))
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
