package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Fetch backends for the dataset refresh.
const (
	FetchHTTP  = "http"
	FetchDrive = "drive"
)

type Config struct {
	// Telegram
	TelegramBotToken string

	// Dataset
	DatasetPath string

	// Refresh source
	FetchBackend string
	DatasetURL   string
	DriveFileID  string

	// AMQP (optional; empty URL disables the refresh queue)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Audit log (optional; empty path disables it)
	SQLiteDBPath string

	// Table cache; zero keeps the baseline reload-per-query behavior
	ReportCacheTTL time.Duration

	// Per-chat command rate limit
	RateLimitPerMinute int
}

func Load() *Config {
	return &Config{
		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),

		DatasetPath: getEnv("DATASET_PATH", "./data/data.xlsx"),

		FetchBackend: getEnv("FETCH_BACKEND", FetchHTTP),
		DatasetURL:   getEnv("DATASET_URL", ""),
		DriveFileID:  getEnv("DRIVE_FILE_ID", ""),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "finbot"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "refresh_dataset"),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", ""),

		ReportCacheTTL: getEnvDuration("REPORT_CACHE_TTL", 0),

		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 20),
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	var errors []string

	if strings.TrimSpace(c.TelegramBotToken) == "" {
		errors = append(errors, "TELEGRAM_BOT_TOKEN is required")
	}

	if strings.TrimSpace(c.DatasetPath) == "" {
		errors = append(errors, "dataset path cannot be empty")
	} else {
		dir := filepath.Dir(c.DatasetPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create dataset directory '%s': %v", dir, err))
				}
			}
		}
	}

	switch c.FetchBackend {
	case FetchHTTP:
		if c.DatasetURL != "" {
			if u, err := url.Parse(c.DatasetURL); err != nil {
				errors = append(errors, fmt.Sprintf("invalid dataset URL '%s': %v", c.DatasetURL, err))
			} else if u.Scheme != "http" && u.Scheme != "https" {
				errors = append(errors, fmt.Sprintf("invalid dataset URL scheme '%s': must be 'http' or 'https'", u.Scheme))
			}
		}
	case FetchDrive:
		if c.DriveFileID == "" {
			errors = append(errors, "DRIVE_FILE_ID is required when using the drive fetch backend")
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid fetch backend '%s': must be one of [%s %s]", c.FetchBackend, FetchHTTP, FetchDrive))
	}

	if c.AMQPURL != "" {
		if u, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if u.Scheme != "amqp" && u.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", u.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.ReportCacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid report cache TTL %v: cannot be negative", c.ReportCacheTTL))
	} else if c.ReportCacheTTL > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid report cache TTL %v: must be at most 24 hours", c.ReportCacheTTL))
	}

	if c.RateLimitPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1 per minute", c.RateLimitPerMinute))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
