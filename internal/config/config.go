package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP server
	Port string

	// Database
	SQLiteDBPath string

	// Backend selection: "sqlite" or "memory"
	DataBackend string

	// AMQP (report export queue, optional)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Maps (geocoding + directions, optional)
	GoogleMapsAPIKey string

	// Report export
	ReportOutputDir string

	// SMTP delivery of generated reports (optional)
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string
	MailTo       string

	// Routing cache
	RouteCacheSize int
	RouteCacheTTL  time.Duration
}

func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "8081"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/reisekosten.db"),
		DataBackend:  getEnv("DATA_BACKEND", "memory"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "reisekosten"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "report_exports"),

		GoogleMapsAPIKey: getEnv("GOOGLE_MAPS_API_KEY", ""),

		ReportOutputDir: getEnv("REPORT_OUTPUT_DIR", "./reports"),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		MailFrom:     getEnv("MAIL_FROM", ""),
		MailTo:       getEnv("MAIL_TO", ""),

		RouteCacheSize: getEnvInt("ROUTE_CACHE_SIZE", 200),
		RouteCacheTTL:  getEnvDuration("ROUTE_CACHE_TTL", 15*time.Minute),
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
	case "memory", "sqlite":
	default:
		errs = append(errs, fmt.Sprintf("invalid data backend '%s': must be one of memory, sqlite", c.DataBackend))
	}

	if c.DataBackend == "sqlite" && strings.TrimSpace(c.SQLiteDBPath) == "" {
		errs = append(errs, "sqlite backend requires SQLITE_DB_PATH")
	}

	if c.AMQPURL != "" {
		if _, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL: %v", err))
		}
	}

	if c.SMTPHost != "" {
		if c.SMTPPort < 1 || c.SMTPPort > 65535 {
			errs = append(errs, fmt.Sprintf("invalid SMTP port %d", c.SMTPPort))
		}
		if c.MailFrom == "" || c.MailTo == "" {
			errs = append(errs, "SMTP delivery requires MAIL_FROM and MAIL_TO")
		}
	}

	if c.RouteCacheSize < 1 {
		errs = append(errs, fmt.Sprintf("invalid route cache size %d", c.RouteCacheSize))
	}
	if c.RouteCacheTTL <= 0 {
		errs = append(errs, fmt.Sprintf("invalid route cache TTL %s", c.RouteCacheTTL))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

// MailEnabled reports whether SMTP delivery of reports is configured.
func (c *Config) MailEnabled() bool {
	return c.SMTPHost != "" && c.MailFrom != "" && c.MailTo != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
