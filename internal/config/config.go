package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Dan9191/farmworker-finance/internal/utils"
)

// Store backends
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config holds application configuration
type Config struct {
	Port               string
	Store              string
	DBConn             string
	LogLevel           string
	Currency           string
	JWTSecret          string
	AdminUsername      string
	AdminPasswordHash  string
	HMACSecret         string
	EncryptionKey      string
	KeyRateURL         string
	SMTPHost           string
	SMTPPort           string
	SMTPUsername       string
	SMTPPassword       string
	SenderEmail        string
	KafkaBrokers       []string
	KafkaTopic         string
	InterestSchedule   string
	ReminderSchedule   string
	ReminderWindowDays int
}

// NewConfig loads configuration from environment variables
func NewConfig() (*Config, error) {
	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		Store:              getEnv("STORE", StorePostgres),
		DBConn:             getEnv("DB_CONN", "host=localhost port=5436 user=test password=test dbname=farmworker sslmode=disable"),
		LogLevel:           getEnv("LOG_LEVEL", "INFO"),
		Currency:           getEnv("CURRENCY", "KES"),
		JWTSecret:          getEnv("JWT_SECRET", "secret"),
		AdminUsername:      getEnv("ADMIN_USERNAME", "admin"),
		AdminPasswordHash:  getEnv("ADMIN_PASSWORD_HASH", ""),
		HMACSecret:         getEnv("HMAC_SECRET", "a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6"),
		EncryptionKey:      getEnv("ENCRYPTION_KEY", "a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6"),
		KeyRateURL:         getEnv("KEY_RATE_URL", "https://www.cbr.ru/DailyInfoWebServ/DailyInfo.asmx"),
		SMTPHost:           getEnv("SMTP_HOST", ""),
		SMTPPort:           getEnv("SMTP_PORT", "587"),
		SMTPUsername:       getEnv("SMTP_USERNAME", ""),
		SMTPPassword:       getEnv("SMTP_PASSWORD", ""),
		SenderEmail:        getEnv("SENDER_EMAIL", "no-reply@farmworker.local"),
		KafkaBrokers:       splitList(getEnv("KAFKA_BROKERS", "")),
		KafkaTopic:         getEnv("KAFKA_TOPIC", "farmworker.finance.events"),
		InterestSchedule:   getEnv("INTEREST_SCHEDULE", "0 2 * * *"),
		ReminderSchedule:   getEnv("REMINDER_SCHEDULE", "0 8 * * *"),
		ReminderWindowDays: getEnvInt("REMINDER_WINDOW_DAYS", 3),
	}

	if cfg.Store != StorePostgres && cfg.Store != StoreMemory {
		return nil, fmt.Errorf("STORE must be %q or %q, got %q", StorePostgres, StoreMemory, cfg.Store)
	}
	if cfg.Store == StorePostgres && cfg.DBConn == "" {
		return nil, fmt.Errorf("DB_CONN is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.HMACSecret == "" {
		return nil, fmt.Errorf("HMAC_SECRET is required")
	}
	if _, err := utils.ParseKey(cfg.EncryptionKey); err != nil {
		return nil, fmt.Errorf("ENCRYPTION_KEY is invalid: %w", err)
	}
	if cfg.ReminderWindowDays < 0 {
		return nil, fmt.Errorf("REMINDER_WINDOW_DAYS must not be negative")
	}

	return cfg, nil
}

// EncryptionKeyBytes returns the decoded encryption key. NewConfig has
// already validated it.
func (c *Config) EncryptionKeyBytes() []byte {
	key, _ := utils.ParseKey(c.EncryptionKey)
	return key
}

// SMTPEnabled reports whether outgoing mail is configured
func (c *Config) SMTPEnabled() bool {
	return c.SMTPHost != ""
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultVal
	}
	return n
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
