package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	Payments  PaymentsConfig
	Reminders RemindersConfig
	Catalog   CatalogConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig holds the secret shared with the external auth provider.
type JWTConfig struct {
	Secret string
	Issuer string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// PaymentsConfig configures the payment provider integration.
type PaymentsConfig struct {
	Provider        string
	KeyID           string
	KeySecret       string
	WebhookSecret   string
	APIBaseURL      string
	Timeout         time.Duration
	SignatureHeader string
	MaxWebhookBytes int64
}

// RemindersConfig governs the upcoming-lecture sweep.
type RemindersConfig struct {
	CronSecret       string
	LeadTime         time.Duration
	Window           time.Duration
	SchedulerEnabled bool
	Schedule         string
	WorkerRetries    int
	RetryDelay       time.Duration
}

// CatalogConfig toggles caching of the public course catalog.
type CatalogConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret: v.GetString("JWT_SECRET"),
		Issuer: v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	maxWebhook := v.GetInt64("WEBHOOK_MAX_BODY_BYTES")
	if maxWebhook <= 0 {
		maxWebhook = 1 << 20
	}
	cfg.Payments = PaymentsConfig{
		Provider:        v.GetString("PAYMENT_PROVIDER"),
		KeyID:           v.GetString("RAZORPAY_KEY_ID"),
		KeySecret:       v.GetString("RAZORPAY_KEY_SECRET"),
		WebhookSecret:   v.GetString("RAZORPAY_WEBHOOK_SECRET"),
		APIBaseURL:      strings.TrimRight(v.GetString("RAZORPAY_API_BASE_URL"), "/"),
		Timeout:         parseDuration(v.GetString("RAZORPAY_TIMEOUT"), 10*time.Second),
		SignatureHeader: v.GetString("RAZORPAY_SIGNATURE_HEADER"),
		MaxWebhookBytes: maxWebhook,
	}

	cfg.Reminders = RemindersConfig{
		CronSecret:       v.GetString("CRON_SECRET"),
		LeadTime:         parseDuration(v.GetString("REMINDER_LEAD_TIME"), 30*time.Minute),
		Window:           parseDuration(v.GetString("REMINDER_WINDOW"), 5*time.Minute),
		SchedulerEnabled: v.GetBool("ENABLE_REMINDER_SCHEDULER"),
		Schedule:         v.GetString("REMINDER_SCHEDULE"),
		WorkerRetries:    v.GetInt("REMINDER_WORKER_RETRIES"),
		RetryDelay:       parseDuration(v.GetString("REMINDER_RETRY_DELAY"), 10*time.Second),
	}

	cfg.Catalog = CatalogConfig{
		CacheEnabled: v.GetBool("ENABLE_CATALOG_CACHE"),
		CacheTTL:     parseDuration(v.GetString("CATALOG_CACHE_TTL"), 5*time.Minute),
	}

	return cfg
}

// Validate rejects configurations that would leave an endpoint unauthenticated in production.
func (c *Config) Validate() error {
	if c.Env != EnvProduction {
		return nil
	}
	var missing []string
	if c.Payments.WebhookSecret == "" {
		missing = append(missing, "RAZORPAY_WEBHOOK_SECRET")
	}
	if c.Payments.KeyID == "" || c.Payments.KeySecret == "" {
		missing = append(missing, "RAZORPAY_KEY_ID/RAZORPAY_KEY_SECRET")
	}
	if c.Reminders.CronSecret == "" {
		missing = append(missing, "CRON_SECRET")
	}
	if c.JWT.Secret == "" || c.JWT.Secret == devJWTSecret {
		missing = append(missing, "JWT_SECRET")
	}
	if len(missing) > 0 {
		return errors.New("missing production settings: " + strings.Join(missing, ", "))
	}
	return nil
}

const devJWTSecret = "dev_secret"

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "lms")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", devJWTSecret)
	v.SetDefault("JWT_ISSUER", "")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("PAYMENT_PROVIDER", "razorpay")
	v.SetDefault("RAZORPAY_KEY_ID", "")
	v.SetDefault("RAZORPAY_KEY_SECRET", "")
	v.SetDefault("RAZORPAY_WEBHOOK_SECRET", "")
	v.SetDefault("RAZORPAY_API_BASE_URL", "https://api.razorpay.com")
	v.SetDefault("RAZORPAY_TIMEOUT", "10s")
	v.SetDefault("RAZORPAY_SIGNATURE_HEADER", "X-Razorpay-Signature")
	v.SetDefault("WEBHOOK_MAX_BODY_BYTES", 1<<20)

	v.SetDefault("CRON_SECRET", "")
	v.SetDefault("REMINDER_LEAD_TIME", "30m")
	v.SetDefault("REMINDER_WINDOW", "5m")
	v.SetDefault("ENABLE_REMINDER_SCHEDULER", false)
	v.SetDefault("REMINDER_SCHEDULE", "*/5 * * * *")
	v.SetDefault("REMINDER_WORKER_RETRIES", 2)
	v.SetDefault("REMINDER_RETRY_DELAY", "10s")

	v.SetDefault("ENABLE_CATALOG_CACHE", false)
	v.SetDefault("CATALOG_CACHE_TTL", "5m")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
