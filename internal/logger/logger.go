// Package logger builds the zerolog logger shared by every component.
package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Config configures logging.
type Config struct {
	Level      string `mapstructure:"level"  default:"info"`    // trace, debug, info, warn, error
	Format     string `mapstructure:"format" default:"console"` // json or console
	Output     string `mapstructure:"output" default:"stderr"`  // stdout, stderr or a file path
	TimeFormat string `mapstructure:"time_format"`
}

// New creates a logger from cfg. The returned closer releases a log file,
// if one was opened.
func New(cfg Config) (zerolog.Logger, io.Closer, error) {
	if cfg.Level == "" {
		cfg.Level = "info"
	}
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), nopCloser{}, fmt.Errorf("invalid log level: %w", err)
	}

	var (
		output io.Writer
		closer io.Closer = nopCloser{}
	)
	switch cfg.Output {
	case "", "stderr":
		output = os.Stderr
	case "stdout":
		output = os.Stdout
	default:
		file, err := os.OpenFile(cfg.Output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return zerolog.Nop(), nopCloser{}, fmt.Errorf("could not open log file: %w", err)
		}
		output, closer = file, file
	}

	return build(output, level, cfg), closer, nil
}

// NewWriter creates a logger writing to w, for tests and embedding.
func NewWriter(w io.Writer, cfg Config) (zerolog.Logger, error) {
	if cfg.Level == "" {
		cfg.Level = "info"
	}
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level: %w", err)
	}
	return build(w, level, cfg), nil
}

func build(output io.Writer, level zerolog.Level, cfg Config) zerolog.Logger {
	timeFormat := cfg.TimeFormat
	if timeFormat == "" {
		timeFormat = time.RFC3339
	}

	if cfg.Format == "console" {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: timeFormat,
		}
	}

	return zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Str("app", "fincurator").
		Logger()
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
