package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port      string
	DBConn    string
	LogLevel  string
	JWTSecret string

	// Share of monthly income allocated to liability payments, percent.
	BudgetPercent int

	// FX reference-rate feed (ECB daily XML).
	RatesURL string

	// Optional Redis cache for dashboard and recommendation responses.
	RedisAddr string

	// Optional AMQP broker for payment events.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Optional external assistant (OpenAI-compatible chat completions).
	AssistantURL    string
	AssistantAPIKey string
	AssistantModel  string

	// Payment reminder job.
	ReminderSchedule string
	ReminderDays     int

	// SMTP for reminder emails.
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SenderEmail  string
}

// NewConfig loads configuration from a .env file (when present) and
// environment variables.
func NewConfig() (*Config, error) {
	// Missing .env is fine; plain env vars still apply.
	_ = godotenv.Load()

	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		DBConn:           getEnv("DB_CONN", "host=localhost port=5432 user=finance password=finance dbname=finance sslmode=disable"),
		LogLevel:         getEnv("LOG_LEVEL", "INFO"),
		JWTSecret:        getEnv("JWT_SECRET", "secret"),
		BudgetPercent:    getEnvInt("BUDGET_PERCENT", 70),
		RatesURL:         getEnv("RATES_URL", "https://www.ecb.europa.eu/stats/eurofxref/eurofxref-daily.xml"),
		RedisAddr:        getEnv("REDIS_ADDR", ""),
		AMQPURL:          getEnv("AMQP_URL", ""),
		AMQPExchange:     getEnv("AMQP_EXCHANGE", "finance.events"),
		AMQPQueue:        getEnv("AMQP_QUEUE", "payment.recorded"),
		AssistantURL:     getEnv("ASSISTANT_URL", ""),
		AssistantAPIKey:  getEnv("ASSISTANT_API_KEY", ""),
		AssistantModel:   getEnv("ASSISTANT_MODEL", "gpt-4o-mini"),
		ReminderSchedule: getEnv("REMINDER_SCHEDULE", "0 8 * * *"),
		ReminderDays:     getEnvInt("REMINDER_DAYS", 3),
		SMTPHost:         getEnv("SMTP_HOST", ""),
		SMTPPort:         getEnv("SMTP_PORT", "587"),
		SMTPUsername:     getEnv("SMTP_USERNAME", ""),
		SMTPPassword:     getEnv("SMTP_PASSWORD", ""),
		SenderEmail:      getEnv("SENDER_EMAIL", "noreply@finwise.local"),
	}

	if cfg.DBConn == "" {
		return nil, fmt.Errorf("DB_CONN is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.BudgetPercent < 1 || cfg.BudgetPercent > 100 {
		return nil, fmt.Errorf("BUDGET_PERCENT must be in [1,100], got %d", cfg.BudgetPercent)
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultVal
}
