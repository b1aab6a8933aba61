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

type Config struct {
	// HTTP Server
	Port string

	// Database
	DataBackend  string // sqlite | memory
	SQLiteDBPath string

	// Blob store
	BlobBackend string // local | gcs
	BlobDir     string
	GCSBucket   string

	// AMQP (optional; empty URL disables the cleanup queue)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Worker
	SweepInterval time.Duration

	// Auth
	SessionTTL time.Duration

	// Localization
	DefaultLocale string
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8081"),

		DataBackend:  getEnv("DATA_BACKEND", "sqlite"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/saldo.db"),

		BlobBackend: getEnv("BLOB_BACKEND", "local"),
		BlobDir:     getEnv("BLOB_DIR", "./data/blobs"),
		GCSBucket:   getEnv("GCS_BUCKET", ""),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "saldo"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "attachment_cleanup"),

		SweepInterval: getEnvDuration("SWEEP_INTERVAL", 10*time.Minute),

		SessionTTL: getEnvDuration("SESSION_TTL", 12*time.Hour),

		DefaultLocale: getEnv("DEFAULT_LOCALE", "en"),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.DataBackend {
	case "sqlite":
		if c.SQLiteDBPath == "" {
			errs = append(errs, "SQLite database path cannot be empty when using sqlite backend")
		} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errs = append(errs, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	case "memory":
	default:
		errs = append(errs, fmt.Sprintf("invalid data backend '%s': must be one of [sqlite memory]", c.DataBackend))
	}

	switch c.BlobBackend {
	case "local":
		if c.BlobDir == "" {
			errs = append(errs, "blob directory cannot be empty when using local blob backend")
		}
	case "gcs":
		if c.GCSBucket == "" {
			errs = append(errs, "GCS bucket is required when using gcs blob backend")
		}
	default:
		errs = append(errs, fmt.Sprintf("invalid blob backend '%s': must be one of [local gcs]", c.BlobBackend))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.SweepInterval < time.Second {
		errs = append(errs, fmt.Sprintf("invalid sweep interval %v: must be at least 1 second", c.SweepInterval))
	}

	if c.SessionTTL < time.Minute {
		errs = append(errs, fmt.Sprintf("invalid session TTL %v: must be at least 1 minute", c.SessionTTL))
	}

	if c.DefaultLocale != "en" && c.DefaultLocale != "pl" {
		errs = append(errs, fmt.Sprintf("invalid default locale '%s': must be one of [en pl]", c.DefaultLocale))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
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
