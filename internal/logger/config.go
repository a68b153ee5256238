package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LogConfig is the file/environment representation of logger settings.
type LogConfig struct {
	Level      string   `json:"level" toml:"level" yaml:"level"`
	Format     string   `json:"format" toml:"format" yaml:"format"`
	Output     string   `json:"output" toml:"output" yaml:"output"`
	Components []string `json:"components,omitempty" toml:"components" yaml:"components"`
	ShowCaller bool     `json:"show_caller" toml:"show_caller" yaml:"show_caller"`
	Timestamp  bool     `json:"timestamp" toml:"timestamp" yaml:"timestamp"`
}

// DefaultLogConfig returns default logging configuration
func DefaultLogConfig() *LogConfig {
	return &LogConfig{
		Level:      "INFO",
		Format:     "text",
		Output:     "stderr",
		Components: []string{"app", "extractor", "playlist", "server"},
	}
}

// ToLoggerConfig converts LogConfig to logger.Config
func (c *LogConfig) ToLoggerConfig() (*Config, error) {
	level, err := parseLevel(c.Level)
	if err != nil {
		return nil, fmt.Errorf("parse level: %w", err)
	}

	format, err := parseFormat(c.Format)
	if err != nil {
		return nil, fmt.Errorf("parse format: %w", err)
	}

	output, err := parseOutput(c.Output)
	if err != nil {
		return nil, fmt.Errorf("parse output: %w", err)
	}

	components := make(map[Component]bool, len(AllComponents))
	for _, comp := range AllComponents {
		components[comp] = false
	}
	for _, name := range c.Components {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		if name == "all" {
			for _, comp := range AllComponents {
				components[comp] = true
			}
			continue
		}
		components[Component(name)] = true
	}

	return &Config{
		Level:      level,
		Format:     format,
		Output:     output,
		Components: components,
		ShowCaller: c.ShowCaller,
		Timestamp:  c.Timestamp,
	}, nil
}

// parseLevel parses level string to Level enum
func parseLevel(levelStr string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(levelStr)) {
	case "TRACE":
		return TRACE, nil
	case "DEBUG":
		return DEBUG, nil
	case "INFO", "":
		return INFO, nil
	case "WARN", "WARNING":
		return WARN, nil
	case "ERROR":
		return ERROR, nil
	default:
		return INFO, fmt.Errorf("unknown level: %s", levelStr)
	}
}

// parseFormat parses format string to Format enum
func parseFormat(formatStr string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(formatStr)) {
	case "text", "":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "color", "colored":
		return FormatColor, nil
	default:
		return FormatText, fmt.Errorf("unknown format: %s", formatStr)
	}
}

// parseOutput parses output string to io.Writer
func parseOutput(outputStr string) (io.Writer, error) {
	switch strings.ToLower(strings.TrimSpace(outputStr)) {
	case "stderr", "":
		return os.Stderr, nil
	case "stdout":
		return os.Stdout, nil
	case "null", "none":
		return io.Discard, nil
	default:
		if strings.HasPrefix(outputStr, "file:") {
			filePath := strings.TrimPrefix(outputStr, "file:")
			if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
				return nil, fmt.Errorf("create log directory: %w", err)
			}
			file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
			if err != nil {
				return nil, fmt.Errorf("open log file: %w", err)
			}
			return file, nil
		}
		return nil, fmt.Errorf("unknown output: %s", outputStr)
	}
}

// CreateLoggerFromConfig creates a logger from LogConfig
func CreateLoggerFromConfig(config *LogConfig) (*Logger, error) {
	loggerConfig, err := config.ToLoggerConfig()
	if err != nil {
		return nil, fmt.Errorf("convert config: %w", err)
	}

	return New(loggerConfig), nil
}

// ApplyEnvironment overrides fields from INVIDIOUS_LOG_* environment variables.
func (c *LogConfig) ApplyEnvironment() {
	if level := os.Getenv("INVIDIOUS_LOG_LEVEL"); level != "" {
		c.Level = level
	}
	if format := os.Getenv("INVIDIOUS_LOG_FORMAT"); format != "" {
		c.Format = format
	}
	if output := os.Getenv("INVIDIOUS_LOG_OUTPUT"); output != "" {
		c.Output = output
	}
	if caller := os.Getenv("INVIDIOUS_LOG_CALLER"); caller != "" {
		c.ShowCaller = caller == "true" || caller == "1"
	}
	if timestamp := os.Getenv("INVIDIOUS_LOG_TIMESTAMP"); timestamp != "" {
		c.Timestamp = timestamp == "true" || timestamp == "1"
	}
	if components := os.Getenv("INVIDIOUS_LOG_COMPONENTS"); components != "" {
		c.Components = nil
		for _, comp := range strings.Split(components, ",") {
			comp = strings.TrimSpace(comp)
			if comp != "" {
				c.Components = append(c.Components, comp)
			}
		}
	}
}

// EnvironmentConfig loads configuration from environment variables
func EnvironmentConfig() *LogConfig {
	config := DefaultLogConfig()
	config.ApplyEnvironment()
	return config
}

// ValidateConfig validates the configuration without opening outputs.
func (c *LogConfig) ValidateConfig() error {
	if _, err := parseLevel(c.Level); err != nil {
		return fmt.Errorf("invalid level: %w", err)
	}

	if _, err := parseFormat(c.Format); err != nil {
		return fmt.Errorf("invalid format: %w", err)
	}

	switch out := strings.ToLower(strings.TrimSpace(c.Output)); {
	case out == "", out == "stdout", out == "stderr", out == "null", out == "none":
	case strings.HasPrefix(c.Output, "file:") && len(c.Output) > len("file:"):
	default:
		return fmt.Errorf("invalid output: %s", c.Output)
	}

	return nil
}
