package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// URL builds a database URL for the migration runner.
func (c DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// DSN builds a keyword/value DSN for GORM.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// RedisConfig holds session-store settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// KafkaConfig holds event-bus settings.
type KafkaConfig struct {
	Brokers     []string
	GroupPrefix string
}

// ProcessorConfig holds payment-processor settings.
type ProcessorConfig struct {
	BaseURL     string
	AccessToken string
	PublicKey   string
	Currency    string
	// AmountDivisor scales the preference unit price down for
	// provider-specific limits. 1 sends the real total.
	AmountDivisor int64
	Timeout       time.Duration
	MaxRetries    int
	// Callback URLs handed to the processor when a preference is created.
	SuccessURL      string
	FailureURL      string
	PendingURL      string
	NotificationURL string
}

// JWTConfig holds token settings for the inventory-admin surface.
type JWTConfig struct {
	Secret   string
	TokenTTL time.Duration
}

// CartConfig holds session-cart settings.
type CartConfig struct {
	TTL time.Duration
	// MaxLines caps distinct resources per cart. 0 means unlimited.
	MaxLines int
}

// ServiceConfig holds all configuration for the reservation service.
type ServiceConfig struct {
	Port      string
	AppEnv    string
	DB        DatabaseConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Processor ProcessorConfig
	JWT       JWTConfig
	Cart      CartConfig
}

// Load reads configuration from the environment (RESERVATION_ prefix) with
// an optional config file for local development.
func Load() (*ServiceConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("RESERVATION")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	setDefaults(v)

	cfg := &ServiceConfig{
		Port:   ":" + v.GetString("SERVICE_PORT"),
		AppEnv: v.GetString("APP_ENV"),
		DB: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Kafka: KafkaConfig{
			Brokers:     strings.Split(v.GetString("KAFKA_BROKERS"), ","),
			GroupPrefix: v.GetString("KAFKA_GROUP_PREFIX"),
		},
		Processor: ProcessorConfig{
			BaseURL:         v.GetString("PROCESSOR_BASE_URL"),
			AccessToken:     v.GetString("PROCESSOR_ACCESS_TOKEN"),
			PublicKey:       v.GetString("PROCESSOR_PUBLIC_KEY"),
			Currency:        v.GetString("PROCESSOR_CURRENCY"),
			AmountDivisor:   v.GetInt64("PROCESSOR_AMOUNT_DIVISOR"),
			Timeout:         v.GetDuration("PROCESSOR_TIMEOUT"),
			MaxRetries:      v.GetInt("PROCESSOR_MAX_RETRIES"),
			SuccessURL:      v.GetString("PROCESSOR_SUCCESS_URL"),
			FailureURL:      v.GetString("PROCESSOR_FAILURE_URL"),
			PendingURL:      v.GetString("PROCESSOR_PENDING_URL"),
			NotificationURL: v.GetString("PROCESSOR_NOTIFICATION_URL"),
		},
		JWT: JWTConfig{
			Secret:   v.GetString("JWT_SECRET"),
			TokenTTL: v.GetDuration("JWT_TOKEN_TTL"),
		},
		Cart: CartConfig{
			TTL:      v.GetDuration("CART_TTL"),
			MaxLines: v.GetInt("CART_MAX_LINES"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVICE_PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "reservation")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_GROUP_PREFIX", "indie-cactus.")
	v.SetDefault("PROCESSOR_BASE_URL", "https://api.mercadopago.com")
	v.SetDefault("PROCESSOR_CURRENCY", "ARS")
	v.SetDefault("PROCESSOR_AMOUNT_DIVISOR", 1)
	v.SetDefault("PROCESSOR_TIMEOUT", "10s")
	v.SetDefault("PROCESSOR_MAX_RETRIES", 3)
	v.SetDefault("JWT_SECRET", "dev-secret-change-me")
	v.SetDefault("JWT_TOKEN_TTL", "15m")
	v.SetDefault("CART_TTL", "24h")
	v.SetDefault("CART_MAX_LINES", 0)
}

func (c *ServiceConfig) validate() error {
	if c.Processor.AmountDivisor < 1 {
		return fmt.Errorf("processor amount divisor must be >= 1, got %d", c.Processor.AmountDivisor)
	}
	if c.Cart.TTL <= 0 {
		return fmt.Errorf("cart TTL must be positive")
	}
	if len(c.Kafka.Brokers) == 0 || c.Kafka.Brokers[0] == "" {
		return fmt.Errorf("at least one kafka broker is required")
	}
	return nil
}
