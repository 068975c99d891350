package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"gradesheet/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database  DatabaseConfig
	Server    ServerConfig
	Report    ReportConfig
	Upload    UploadConfig
	Profiling ProfilingConfig
	LogLevel  string
}

// DatabaseConfig holds the optional conversion-log database
type DatabaseConfig struct {
	URL string
}

// Enabled reports whether a database is configured
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port            string
	GinMode         string
	StaticDir       string
	ShutdownTimeout time.Duration
	RequestTimeout  time.Duration
	RateLimit       int
	RateWindow      time.Duration
}

// ReportConfig holds template and conversion settings
type ReportConfig struct {
	TemplatePath   string
	SchemaPath     string
	Mode           string
	Workers        int
	MaxConcurrent  int
	RosterSkipRows int
}

// UploadConfig holds upload limits and the scratch directory
type UploadConfig struct {
	ScratchDir string
	MaxFiles   int
	MaxMB      int
}

// MaxBytes returns the request body limit in bytes
func (u UploadConfig) MaxBytes() int64 {
	return int64(u.MaxMB) << 20
}

// ProfilingConfig holds performance profiling settings
type ProfilingConfig struct {
	Port    string
	Enabled bool
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Server:    *loadServerConfig(),
		Report:    *loadReportConfig(),
		Upload:    *loadUploadConfig(),
		Profiling: *loadProfilingConfig(),
		LogLevel:  getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:            getEnvOrDefault("PORT", "3001"),
		GinMode:         getEnvOrDefault("GIN_MODE", "release"),
		StaticDir:       getEnvOrDefault("STATIC_DIR", ""),
		ShutdownTimeout: getEnvDurationOrDefault("SHUTDOWN_TIMEOUT", 10*time.Second),
		RequestTimeout:  getEnvDurationOrDefault("REQUEST_TIMEOUT", 2*time.Minute),
		RateLimit:       getEnvIntOrDefault("RATE_LIMIT", 60),
		RateWindow:      getEnvDurationOrDefault("RATE_WINDOW", time.Minute),
	}
}

func loadReportConfig() *ReportConfig {
	return &ReportConfig{
		TemplatePath:   getEnvOrDefault("TEMPLATE_PATH", "template.xlsx"),
		SchemaPath:     getEnvOrDefault("SCHEMA_PATH", ""),
		Mode:           strings.ToLower(getEnvOrDefault("REPORT_MODE", "per-file")),
		Workers:        getEnvIntOrDefault("REPORT_WORKERS", 4),
		MaxConcurrent:  getEnvIntOrDefault("MAX_CONCURRENT_CONVERSIONS", 8),
		RosterSkipRows: getEnvIntOrDefault("ROSTER_SKIP_ROWS", 0),
	}
}

func loadUploadConfig() *UploadConfig {
	return &UploadConfig{
		ScratchDir: getEnvOrDefault("SCRATCH_DIR", "uploads"),
		MaxFiles:   getEnvIntOrDefault("MAX_UPLOAD_FILES", 10),
		MaxMB:      getEnvIntOrDefault("MAX_UPLOAD_MB", 32),
	}
}

func loadProfilingConfig() *ProfilingConfig {
	return &ProfilingConfig{
		Port:    getEnvOrDefault("PPROF_PORT", "6060"),
		Enabled: getEnvBoolOrDefault("PPROF_ENABLED", false),
	}
}

func validateConfig(config *Config) error {
	if config.Report.TemplatePath == "" {
		return errors.ConfigInvalid("TEMPLATE_PATH is required")
	}
	switch config.Report.Mode {
	case "merge", "per-file":
	default:
		return errors.ConfigInvalid("REPORT_MODE must be merge or per-file")
	}
	if config.Report.Workers < 1 {
		return errors.ConfigInvalid("REPORT_WORKERS must be at least 1")
	}
	if config.Report.MaxConcurrent < 1 {
		return errors.ConfigInvalid("MAX_CONCURRENT_CONVERSIONS must be at least 1")
	}
	if config.Report.RosterSkipRows < 0 {
		return errors.ConfigInvalid("ROSTER_SKIP_ROWS cannot be negative")
	}
	if config.Server.RateLimit < 0 {
		return errors.ConfigInvalid("RATE_LIMIT cannot be negative")
	}
	if config.Server.RateWindow <= 0 {
		return errors.ConfigInvalid("RATE_WINDOW must be positive")
	}
	if config.Upload.MaxFiles < 1 {
		return errors.ConfigInvalid("MAX_UPLOAD_FILES must be at least 1")
	}
	if config.Upload.MaxMB < 1 {
		return errors.ConfigInvalid("MAX_UPLOAD_MB must be at least 1")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
