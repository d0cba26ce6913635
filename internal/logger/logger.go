// Package logger builds the zerolog loggers used across netcompiler.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Config controls the root logger
type Config struct {
	Level   string `json:"level" yaml:"level"`
	Debug   bool   `json:"debug" yaml:"debug"`
	Output  string `json:"output" yaml:"output"`
	Console bool   `json:"console" yaml:"console"`
}

// DefaultConfig logs at info level to stderr, leaving stdout to the
// user-facing progress output
func DefaultConfig() Config {
	return Config{Level: "info", Output: "stderr", Console: true}
}

// New builds the root logger from cfg
func New(cfg Config) (zerolog.Logger, error) {
	var output io.Writer = os.Stderr
	if cfg.Output == "stdout" {
		output = os.Stdout
	}
	return NewWithWriter(cfg, output)
}

// NewWithWriter builds the root logger writing to w
func NewWithWriter(cfg Config, w io.Writer) (zerolog.Logger, error) {
	level := zerolog.InfoLevel
	if cfg.Debug {
		level = zerolog.DebugLevel
	} else if cfg.Level != "" {
		var err error
		level, err = zerolog.ParseLevel(cfg.Level)
		if err != nil {
			return zerolog.Nop(), err
		}
	}

	if cfg.Console {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}

	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}

// WithComponent returns a child logger tagged with component
func WithComponent(l zerolog.Logger, component string) zerolog.Logger {
	return l.With().Str("component", component).Logger()
}
