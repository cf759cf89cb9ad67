package conf

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/squarelan/verify-relay/internal/biz/usecase"
	"github.com/squarelan/verify-relay/internal/data"
	"github.com/squarelan/verify-relay/internal/service"
)

const (
	defaultFraudURL        = "https://raw.githubusercontent.com/Squarelan/telegram-verify-bot/main/data/fraud.db"
	defaultNotificationURL = "https://raw.githubusercontent.com/Squarelan/telegram-verify-bot/main/data/notification.txt"
)

// Config represents application configuration
type Config struct {
	// Telegram configuration
	Telegram TelegramConfig

	// HTTP server configuration
	Server ServerConfig

	// Store configuration
	Store StoreConfig

	// Remote fraud list and notification text
	Lookup LookupConfig

	// Lifetimes of grants and routes
	Verify VerifyConfig

	// Compaction interval in minutes, 0 disables it
	CompactIntervalMinutes int

	// User-facing texts (loaded from YAML)
	Texts service.Texts

	LogLevel string
}

// TelegramConfig contains bot configuration
type TelegramConfig struct {
	Token         string
	OperatorID    string
	WebhookSecret string
}

// ServerConfig contains webhook server configuration
type ServerConfig struct {
	Port   int
	Domain string
}

// StoreConfig selects the KV backend
type StoreConfig struct {
	DBPath      string
	DatabaseURL string
}

// LookupConfig contains remote lookup configuration
type LookupConfig struct {
	FraudURL            string
	NotificationURL     string
	NotifyEnabled       bool
	NotifyIntervalHours int
	TimeoutSeconds      int
}

// VerifyConfig contains lifetime configuration
type VerifyConfig struct {
	GrantTTLHours int
	RouteTTLDays  int
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "bot_data.db"
	}

	texts, err := LoadTexts(os.Getenv("TEXTS_PATH"))
	if err != nil {
		slog.Warn("using built-in texts", "err", err)
		texts = service.DefaultTexts()
	}

	return &Config{
		Telegram: TelegramConfig{
			Token:         os.Getenv("BOT_TOKEN"),
			OperatorID:    strings.TrimSpace(os.Getenv("ADMIN_UID")),
			WebhookSecret: os.Getenv("WEBHOOK_SECRET"),
		},
		Server: ServerConfig{
			Port:   envInt("PORT", 25707),
			Domain: os.Getenv("DOMAIN"),
		},
		Store: StoreConfig{
			DBPath:      dbPath,
			DatabaseURL: os.Getenv("DATABASE_URL"),
		},
		Lookup: LookupConfig{
			FraudURL:            envString("FRAUD_DB_URL", defaultFraudURL),
			NotificationURL:     envString("NOTIFICATION_URL", defaultNotificationURL),
			NotifyEnabled:       os.Getenv("ENABLE_NOTIFICATION") == "true",
			NotifyIntervalHours: envInt("NOTIFY_INTERVAL_HOURS", 24),
			TimeoutSeconds:      envInt("HTTP_TIMEOUT_SECONDS", 10),
		},
		Verify: VerifyConfig{
			GrantTTLHours: envInt("VERIFY_TTL_HOURS", 72),
			RouteTTLDays:  envInt("ROUTE_TTL_DAYS", 30),
		},
		CompactIntervalMinutes: envInt("COMPACT_INTERVAL_MINUTES", 60),
		Texts:                  texts,
		LogLevel:               os.Getenv("LOG_LEVEL"),
	}
}

// Validate validates the configuration for the webhook relay
func (c *Config) Validate() error {
	if err := c.ValidateOperator(); err != nil {
		return err
	}
	if c.Telegram.Token == "" {
		return &ConfigError{Field: "BOT_TOKEN", Message: "required"}
	}
	if c.Telegram.WebhookSecret == "" {
		return &ConfigError{Field: "WEBHOOK_SECRET", Message: "required"}
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return &ConfigError{Field: "PORT", Message: "must be between 1 and 65535"}
	}
	return nil
}

// ValidateOperator checks only what the operator tools need
func (c *Config) ValidateOperator() error {
	if c.Telegram.OperatorID == "" {
		return &ConfigError{Field: "ADMIN_UID", Message: "required"}
	}
	if _, err := strconv.ParseInt(c.Telegram.OperatorID, 10, 64); err != nil {
		return &ConfigError{Field: "ADMIN_UID", Message: "must be a numeric chat id"}
	}
	return nil
}

// HTTPTimeout is the bound on each outbound call
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.Lookup.TimeoutSeconds) * time.Second
}

// ToStoreOptions converts to data store options
func (c *Config) ToStoreOptions() data.StoreOptions {
	return data.StoreOptions{
		DBPath:      c.Store.DBPath,
		DatabaseURL: c.Store.DatabaseURL,
	}
}

// ToLookupOptions converts to data lookup options
func (c *Config) ToLookupOptions() data.LookupOptions {
	return data.LookupOptions{
		FraudURL:        c.Lookup.FraudURL,
		NotificationURL: c.Lookup.NotificationURL,
		Timeout:         c.HTTPTimeout(),
	}
}

// ToFraudConfig converts to fraud usecase configuration
func (c *Config) ToFraudConfig() usecase.FraudConfig {
	return usecase.FraudConfig{
		LookupTimeout:  c.HTTPTimeout(),
		NotifyEnabled:  c.Lookup.NotifyEnabled,
		NotifyInterval: time.Duration(c.Lookup.NotifyIntervalHours) * time.Hour,
	}
}

// GrantTTL is how long a verification lasts
func (c *Config) GrantTTL() time.Duration {
	return time.Duration(c.Verify.GrantTTLHours) * time.Hour
}

// RouteTTL is how long a relayed message stays answerable
func (c *Config) RouteTTL() time.Duration {
	return time.Duration(c.Verify.RouteTTLDays) * 24 * time.Hour
}

// CompactInterval is the compaction period, 0 when disabled
func (c *Config) CompactInterval() time.Duration {
	return time.Duration(c.CompactIntervalMinutes) * time.Minute
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}

func envString(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func envInt(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return def
}
