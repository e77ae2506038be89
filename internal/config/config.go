package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// DatabaseConfig holds PostgreSQL connection settings for the notification ledger.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// UsageAPIConfig holds settings for the storage-analytics service that reports
// per-user aggregate disk consumption.
type UsageAPIConfig struct {
	BaseURL string
	Token   string
}

// DirectoryAPIConfig holds settings for the HR directory service used to
// resolve employment status and contact email.
type DirectoryAPIConfig struct {
	BaseURL string
}

// SMTPConfig holds outbound mail settings for warning notifications.
type SMTPConfig struct {
	Host   string
	Port   int
	Sender string
}

// ArchiveConfig holds optional S3-compatible object storage settings used to
// archive run reports. Archiving is enabled only when Endpoint is set.
type ArchiveConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// MetricsConfig holds optional Pushgateway settings. Metrics are pushed once
// at the end of a run when PushgatewayURL is set.
type MetricsConfig struct {
	PushgatewayURL string
	JobName        string
}

// defaultGroups is the compiled-in allow-list of auditable home-directory
// groups. Deployments with different trees override it via AUDIT_GROUPS.
var defaultGroups = []string{
	"flyem", "flylight", "jayaraman", "karpovap", "mousebrainmicro",
	"projtechres", "quantitativegenomics", "rubin", "scicomp", "svoboda",
}

// AppConfig is the centralized configuration struct for the auditor.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	UsageAPI     UsageAPIConfig
	DirectoryAPI DirectoryAPIConfig
	Database     DatabaseConfig
	SMTP         SMTPConfig
	Archive      ArchiveConfig
	Metrics      MetricsConfig
	Groups       []string
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		UsageAPI: UsageAPIConfig{
			BaseURL: getEnv("USAGE_API_URL", ""),
			Token:   getEnv("USAGE_API_TOKEN", ""),
		},
		DirectoryAPI: DirectoryAPIConfig{
			BaseURL: getEnv("DIRECTORY_API_URL", ""),
		},
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 5),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 2),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		SMTP: SMTPConfig{
			Host:   getEnv("SMTP_HOST", ""),
			Port:   getEnvInt("SMTP_PORT", 25),
			Sender: getEnv("MAIL_SENDER", "donotreply@example.org"),
		},
		Archive: ArchiveConfig{
			Endpoint:  getEnv("ARCHIVE_ENDPOINT", ""),
			AccessKey: getEnv("ARCHIVE_ACCESS_KEY", ""),
			SecretKey: getEnv("ARCHIVE_SECRET_KEY", ""),
			Bucket:    getEnv("ARCHIVE_BUCKET", "audit-reports"),
			UseSSL:    getEnvBool("ARCHIVE_USE_SSL", false),
		},
		Metrics: MetricsConfig{
			PushgatewayURL: getEnv("PUSHGATEWAY_URL", ""),
			JobName:        getEnv("METRICS_JOB_NAME", "homeaudit"),
		},
		Groups: getEnvList("AUDIT_GROUPS", defaultGroups),
	}
}

// Validate checks that every setting required before processing can start is
// present. write indicates whether notifications will actually be sent, which
// additionally requires a mail host.
func (c *AppConfig) Validate(write bool) error {
	if c.UsageAPI.BaseURL == "" {
		return fmt.Errorf("USAGE_API_URL is required")
	}
	if c.UsageAPI.Token == "" {
		return fmt.Errorf("USAGE_API_TOKEN is required")
	}
	if c.DirectoryAPI.BaseURL == "" {
		return fmt.Errorf("DIRECTORY_API_URL is required")
	}
	if c.Database.Host == "" || c.Database.User == "" || c.Database.Name == "" {
		return fmt.Errorf("database configuration is incomplete: DB_HOST, DB_USER, and DB_NAME are required")
	}
	if write && c.SMTP.Host == "" {
		return fmt.Errorf("SMTP_HOST is required in write mode")
	}
	return nil
}

// GroupAllowed reports whether the given group is in the allow-list.
func (c *AppConfig) GroupAllowed(group string) bool {
	for _, g := range c.Groups {
		if g == group {
			return true
		}
	}
	return false
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
