package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/loopreach/loopreach/internal/types"
	"github.com/spf13/viper"
)

type Configuration struct {
	Deployment DeploymentConfig `validate:"required"`
	Server     ServerConfig     `validate:"required"`
	Logging    LoggingConfig    `validate:"required"`
	Postgres   PostgresConfig   `validate:"required"`
	Cache      CacheConfig
	Sentry     SentryConfig
	Webhook    WebhookConfig
	RateLimit  RateLimitConfig
}

type DeploymentConfig struct {
	Mode types.RunMode `validate:"required"`
}

type ServerConfig struct {
	Address string `validate:"required"`
}

type LoggingConfig struct {
	Level types.LogLevel `validate:"required"`
}

type PostgresConfig struct {
	Host                   string
	Port                   int
	User                   string
	Password               string
	DBName                 string
	SSLMode                string
	MaxOpenConns           int
	MaxIdleConns           int
	ConnMaxLifetimeMinutes int
	AutoMigrate            bool
}

type CacheConfig struct {
	Enabled bool
}

type SentryConfig struct {
	Enabled     bool
	DSN         string
	Environment string
	SampleRate  float64
}

// WebhookConfig holds inbound webhook processing settings. Provider secrets
// normally live on the per-organization integration record; the fallback
// secrets here are used for deliveries that arrive before an integration has
// stored its own credentials (e.g. the OAuth install handshake).
type WebhookConfig struct {
	ShopifyAPISecret     string
	TwilioAuthToken      string
	SuccessRetentionDays int
	FailedRetentionDays  int
	MaxErrorMessageLen   int
	CartRecoveryDelay    time.Duration
}

// RateLimitConfig gates outbound message sends per customer and channel
type RateLimitConfig struct {
	MaxPerDay     int
	CooldownHours int
}

func NewConfig() (*Configuration, error) {
	// Load .env if present, ignore if missing
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/loopreach")

	// Set up environment variables support
	v.SetEnvPrefix("LOOPREACH")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file if exists
	if err := v.ReadInConfig(); err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("deployment.mode", string(types.ModeAPI))
	v.SetDefault("server.address", ":8080")
	v.SetDefault("logging.level", string(types.LogLevelInfo))
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.maxopenconns", 20)
	v.SetDefault("postgres.maxidleconns", 5)
	v.SetDefault("postgres.connmaxlifetimeminutes", 30)
	v.SetDefault("cache.enabled", true)
	v.SetDefault("webhook.successretentiondays", 30)
	v.SetDefault("webhook.failedretentiondays", 90)
	v.SetDefault("webhook.maxerrormessagelen", 500)
	v.SetDefault("webhook.cartrecoverydelay", time.Hour)
	v.SetDefault("ratelimit.maxperday", 1)
	v.SetDefault("ratelimit.cooldownhours", 24)
}

func (c Configuration) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

// GetDefaultConfig returns a default configuration for local development
// This is useful for running scripts or other non-web applications
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Logging:    LoggingConfig{Level: types.LogLevelDebug},
		Cache:      CacheConfig{Enabled: true},
		Webhook: WebhookConfig{
			SuccessRetentionDays: 30,
			FailedRetentionDays:  90,
			MaxErrorMessageLen:   500,
			CartRecoveryDelay:    time.Hour,
		},
		RateLimit: RateLimitConfig{
			MaxPerDay:     1,
			CooldownHours: 24,
		},
	}
}

func (c PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"user=%s password=%s dbname=%s host=%s port=%d sslmode=%s",
		c.User,
		c.Password,
		c.DBName,
		c.Host,
		c.Port,
		c.SSLMode,
	)
}
