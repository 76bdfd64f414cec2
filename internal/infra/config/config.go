package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	TelegramToken   string
	DatabaseURL     string
	OpenAIAPIKey    string
	AdminTelegramID int64
	LogLevel        string
	Environment     string

	// Reminder trigger times as HH:MM local time, converted to cron specs.
	MorningReminderTime string
	EveningReminderTime string
	MorningCronSpec     string
	EveningCronSpec     string

	// How often unnotified assignments are swept.
	AssignmentNotifyCronSpec string

	// Delay between consecutive sends in a batch, to respect transport rate
	// limits.
	SendPacingMillis int
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// Attempt to load .env file. Errors are ignored if the file doesn't exist.
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is not set")
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is not set")
	}

	adminIDStr := os.Getenv("ADMIN_TELEGRAM_ID")
	if adminIDStr == "" {
		return nil, fmt.Errorf("ADMIN_TELEGRAM_ID is not set")
	}
	cfg.AdminTelegramID, err = strconv.ParseInt(adminIDStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID: %w", err)
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info" // Default log level
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development" // Default environment
	}

	cfg.MorningReminderTime = os.Getenv("MORNING_REMINDER_TIME")
	if cfg.MorningReminderTime == "" {
		cfg.MorningReminderTime = "08:15"
	}
	cfg.MorningCronSpec, err = CronSpecFromClock(cfg.MorningReminderTime)
	if err != nil {
		return nil, fmt.Errorf("invalid MORNING_REMINDER_TIME: %w", err)
	}

	cfg.EveningReminderTime = os.Getenv("EVENING_REMINDER_TIME")
	if cfg.EveningReminderTime == "" {
		cfg.EveningReminderTime = "17:00"
	}
	cfg.EveningCronSpec, err = CronSpecFromClock(cfg.EveningReminderTime)
	if err != nil {
		return nil, fmt.Errorf("invalid EVENING_REMINDER_TIME: %w", err)
	}

	cfg.AssignmentNotifyCronSpec = os.Getenv("ASSIGNMENT_NOTIFY_CRON_SPEC")
	if cfg.AssignmentNotifyCronSpec == "" {
		cfg.AssignmentNotifyCronSpec = "*/10 * * * *" // Default: every 10 minutes
	}

	pacingStr := os.Getenv("SEND_PACING_MS")
	if pacingStr == "" {
		cfg.SendPacingMillis = 250
	} else {
		cfg.SendPacingMillis, err = strconv.Atoi(pacingStr)
		if err != nil || cfg.SendPacingMillis < 0 {
			return nil, fmt.Errorf("invalid SEND_PACING_MS: %q", pacingStr)
		}
	}

	return cfg, nil
}

// CronSpecFromClock converts an "HH:MM" wall-clock time into a daily cron
// spec understood by robfig/cron.
func CronSpecFromClock(clock string) (string, error) {
	parts := strings.Split(strings.TrimSpace(clock), ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("expected HH:MM, got %q", clock)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("invalid hour in %q", clock)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return "", fmt.Errorf("invalid minute in %q", clock)
	}
	return fmt.Sprintf("%d %d * * *", minute, hour), nil
}
