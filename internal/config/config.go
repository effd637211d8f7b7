package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Config holds application configuration
type Config struct {
	Port     string
	LogLevel string
	Storage  string
	DBConn   string

	JWTSecret string

	CBRURL              string
	SpreadHome          decimal.Decimal
	SpreadPersonal      decimal.Decimal
	SpreadCar           decimal.Decimal
	SpreadFD            decimal.Decimal
	TermCoverMultiplier int

	BureauURL    string
	BureauAPIKey string
	BureauPAN    string

	BrokerURL       string
	BrokerAPIKey    string
	BrokerRateLimit int

	SourceTimeout time.Duration

	RedisAddr         string
	RedisPassword     string
	BenchmarkCacheTTL time.Duration

	NeedsCategories []string
	WantsCategories []string

	SMTPHost      string
	SMTPPort      string
	SMTPUsername  string
	SMTPPassword  string
	SenderEmail   string
	ReminderEmail string

	RecurrenceCron string
	ReminderCron   string
}

// NewConfig loads configuration from environment variables
func NewConfig() (*Config, error) {
	cfg := &Config{
		Port:      getEnv("PORT", "8080"),
		LogLevel:  getEnv("LOG_LEVEL", "INFO"),
		Storage:   getEnv("STORAGE", "postgres"),
		DBConn:    getEnv("DB_CONN", "host=localhost port=5436 user=test password=test dbname=fintrack sslmode=disable"),
		JWTSecret: getEnv("JWT_SECRET", "secret"),

		CBRURL: getEnv("CBR_URL", "https://www.cbr.ru/DailyInfoWebServ/DailyInfo.asmx"),

		BureauURL:    getEnv("BUREAU_URL", "https://api.experian.com/v1"),
		BureauAPIKey: getEnv("BUREAU_API_KEY", ""),
		BureauPAN:    getEnv("BUREAU_PAN", ""),

		BrokerURL:    getEnv("BROKER_URL", ""),
		BrokerAPIKey: getEnv("BROKER_API_KEY", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		NeedsCategories: splitList(getEnv("NEEDS_CATEGORIES", "BIL,TRA,EMI,FOO")),
		WantsCategories: splitList(getEnv("WANTS_CATEGORIES", "ENT,OTH")),

		SMTPHost:      getEnv("SMTP_HOST", ""),
		SMTPPort:      getEnv("SMTP_PORT", "587"),
		SMTPUsername:  getEnv("SMTP_USERNAME", ""),
		SMTPPassword:  getEnv("SMTP_PASSWORD", ""),
		SenderEmail:   getEnv("SENDER_EMAIL", "noreply@fintrack.local"),
		ReminderEmail: getEnv("REMINDER_EMAIL", ""),

		RecurrenceCron: getEnv("RECURRENCE_CRON", "5 0 * * *"),
		ReminderCron:   getEnv("REMINDER_CRON", "0 8 * * *"),
	}

	var err error
	if cfg.SpreadHome, err = getDecimal("BENCHMARK_SPREAD_HOME", "2.15"); err != nil {
		return nil, err
	}
	if cfg.SpreadPersonal, err = getDecimal("BENCHMARK_SPREAD_PERSONAL", "4.40"); err != nil {
		return nil, err
	}
	if cfg.SpreadCar, err = getDecimal("BENCHMARK_SPREAD_CAR", "2.75"); err != nil {
		return nil, err
	}
	if cfg.SpreadFD, err = getDecimal("BENCHMARK_SPREAD_FD", "0.70"); err != nil {
		return nil, err
	}
	if cfg.TermCoverMultiplier, err = getInt("TERM_COVER_MULTIPLIER", 15); err != nil {
		return nil, err
	}
	if cfg.BrokerRateLimit, err = getInt("BROKER_RATE_LIMIT", 5); err != nil {
		return nil, err
	}
	if cfg.SourceTimeout, err = getDuration("SOURCE_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.BenchmarkCacheTTL, err = getDuration("BENCHMARK_CACHE_TTL", time.Hour); err != nil {
		return nil, err
	}

	if cfg.Storage != "postgres" && cfg.Storage != "memory" {
		return nil, fmt.Errorf("STORAGE must be postgres or memory, got %q", cfg.Storage)
	}
	if cfg.Storage == "postgres" && cfg.DBConn == "" {
		return nil, fmt.Errorf("DB_CONN is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.SourceTimeout <= 0 {
		return nil, fmt.Errorf("SOURCE_TIMEOUT must be positive")
	}
	if len(cfg.NeedsCategories) == 0 || len(cfg.WantsCategories) == 0 {
		return nil, fmt.Errorf("NEEDS_CATEGORIES and WANTS_CATEGORIES must not be empty")
	}

	return cfg, nil
}

// SMTPEnabled reports whether reminder mail can be sent
func (c *Config) SMTPEnabled() bool {
	return c.SMTPHost != "" && c.ReminderEmail != ""
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getInt(key string, defaultVal int) (int, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultVal, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultVal, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func getDecimal(key, defaultVal string) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(getEnv(key, defaultVal))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, strings.ToUpper(p))
		}
	}
	return out
}
