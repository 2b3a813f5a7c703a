package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	CartStoreMemory = "memory"
	CartStoreRedis  = "redis"
	CartStoreMongo  = "mongo"

	CardProcessorSandbox = "sandbox"
	CardProcessorStripe  = "stripe"
)

type Config struct {
	Port          string `envconfig:"PORT" default:"8080"`
	Env           string `envconfig:"APP_ENV" default:"development"`
	LogLevel      string `envconfig:"LOG_LEVEL" default:"info"`
	PublicBaseURL string `envconfig:"PUBLIC_BASE_URL" default:"http://localhost:8080"`

	ReadTimeout     time.Duration `envconfig:"HTTP_READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" default:"45s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	CartStore   string        `envconfig:"CART_STORE" default:"memory"`
	CartIdleTTL time.Duration `envconfig:"CART_IDLE_TTL" default:"30m"`

	RedisAddr     string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	RedisCartTTL  time.Duration `envconfig:"REDIS_CART_TTL" default:"168h"`

	MongoURI      string `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
	MongoDatabase string `envconfig:"MONGO_DATABASE" default:"gizmos"`

	// orders are kept in memory when POSTGRES_HOST is empty
	PostgresHost     string `envconfig:"POSTGRES_HOST"`
	PostgresPort     int    `envconfig:"POSTGRES_PORT" default:"5432"`
	PostgresUser     string `envconfig:"POSTGRES_USER" default:"postgres"`
	PostgresPassword string `envconfig:"POSTGRES_PASSWORD"`
	PostgresDB       string `envconfig:"POSTGRES_DB" default:"gizmos"`
	PostgresSSLMode  string `envconfig:"POSTGRES_SSLMODE" default:"disable"`

	SQLitePath string `envconfig:"SQLITE_PATH" default:"gizmos.db"`

	KafkaBrokers []string `envconfig:"KAFKA_BROKERS"`

	JWTSecret string `envconfig:"JWT_SECRET" default:"change-me"`

	PayPalClientID     string `envconfig:"PAYPAL_CLIENT_ID"`
	PayPalClientSecret string `envconfig:"PAYPAL_CLIENT_SECRET"`
	PayPalBaseURL      string `envconfig:"PAYPAL_BASE_URL" default:"https://api-m.sandbox.paypal.com"`
	PayPalBrandName    string `envconfig:"PAYPAL_BRAND_NAME" default:"GizmoTech"`

	StripeSecretKey string `envconfig:"STRIPE_SECRET_KEY"`
	CardProcessor   string `envconfig:"CARD_PROCESSOR" default:"sandbox"`

	CashTimeout    time.Duration `envconfig:"CASH_TIMEOUT" default:"10s"`
	CashMaxRetries uint64        `envconfig:"CASH_MAX_RETRIES" default:"3"`
	PayPalTimeout  time.Duration `envconfig:"PAYPAL_TIMEOUT" default:"15s"`
	CardTimeout    time.Duration `envconfig:"CARD_TIMEOUT" default:"20s"`
	ApprovalTTL    time.Duration `envconfig:"PAYPAL_APPROVAL_TTL" default:"30m"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.CartStore {
	case CartStoreMemory, CartStoreRedis, CartStoreMongo:
	default:
		return fmt.Errorf("unknown CART_STORE %q", c.CartStore)
	}

	switch c.CardProcessor {
	case CardProcessorSandbox:
	case CardProcessorStripe:
		if c.StripeSecretKey == "" {
			return fmt.Errorf("CARD_PROCESSOR=stripe requires STRIPE_SECRET_KEY")
		}
	default:
		return fmt.Errorf("unknown CARD_PROCESSOR %q", c.CardProcessor)
	}

	if c.Env == "production" && c.JWTSecret == "change-me" {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// BackendURL is where the storefront reaches its own payment routes.
func (c *Config) BackendURL() string {
	return strings.TrimRight(c.PublicBaseURL, "/")
}
