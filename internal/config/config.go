package config

import (
	"fmt"
	"os"

	"arclose/internal/logger"
)

type Config struct {
	// Processing configuration
	RulesPath  string
	ExportDir  string
	OutputDir  string
	ReportName string

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	config := &Config{
		RulesPath:     getEnv("CLOSING_RULES_PATH", ""),
		ExportDir:     getEnv("EXPORT_DIR", "exports"),
		OutputDir:     getEnv("OUTPUT_DIR", "output"),
		ReportName:    getEnv("REPORT_NAME", "closing_report_$country$_$company_code$.xlsx"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "console"),
		LogTimeFormat: getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:     getEnv("LOG_OUTPUT", "stdout"),
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	if c.OutputDir == "" {
		return fmt.Errorf("OUTPUT_DIR cannot be empty")
	}
	if c.ReportName == "" {
		return fmt.Errorf("REPORT_NAME cannot be empty")
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
