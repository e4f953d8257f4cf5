// Package config handles objtool configuration loading and management.
package config

import (
	"fmt"

	"github.com/Faultbox/objmodel/internal/logger"
	"github.com/Faultbox/objmodel/pkg/encoding"
)

// Output formats.
const (
	FormatText = "text"
	FormatYAML = "yaml"
)

// Config holds all objtool settings.
type Config struct {
	Parse   ParseConfig   `yaml:"parse"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// ParseConfig holds input handling settings.
type ParseConfig struct {
	Encoding string `yaml:"encoding"`  // Text encoding of input files
	MaxBytes int64  `yaml:"max_bytes"` // 0 = unlimited
	MaxLines int    `yaml:"max_lines"` // 0 = unlimited
}

// OutputConfig holds result printing settings.
type OutputConfig struct {
	Format    string `yaml:"format"`    // "text" or "yaml"
	Precision int    `yaml:"precision"` // Decimal places in text output
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Parse: ParseConfig{
			Encoding: encoding.UTF8,
			MaxBytes: 256 << 20,
			MaxLines: 0,
		},
		Output: OutputConfig{
			Format:    FormatText,
			Precision: 6,
		},
		Logging: LoggingConfig{
			Level:   "warn",
			LogFile: "",
		},
	}
}

// Validate checks that settings are usable.
func (c *Config) Validate() error {
	if _, err := encoding.Lookup(c.Parse.Encoding); err != nil {
		return fmt.Errorf("parse.encoding: %w", err)
	}
	if c.Parse.MaxBytes < 0 {
		return fmt.Errorf("parse.max_bytes must not be negative, got %d", c.Parse.MaxBytes)
	}
	if c.Parse.MaxLines < 0 {
		return fmt.Errorf("parse.max_lines must not be negative, got %d", c.Parse.MaxLines)
	}
	switch c.Output.Format {
	case FormatText, FormatYAML:
	default:
		return fmt.Errorf("output.format must be %q or %q, got %q", FormatText, FormatYAML, c.Output.Format)
	}
	if c.Output.Precision < 0 || c.Output.Precision > 9 {
		return fmt.Errorf("output.precision must be between 0 and 9, got %d", c.Output.Precision)
	}
	if !logger.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("logging.level: unknown level %q", c.Logging.Level)
	}
	return nil
}
