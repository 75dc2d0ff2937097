package logging

import (
	"io"

	"github.com/rs/zerolog"

	"github.com/spektr-org/mirrorloop/internal/config"
)

// NewFromConfig creates a logger from configuration.
// Format "json" writes structured lines; anything else uses the console writer.
func NewFromConfig(cfg config.LoggingConfig, w io.Writer) *Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	if cfg.Format != "json" {
		w = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: "15:04:05",
			NoColor:    cfg.NoColor,
		}
	}

	return NewWithWriter(w, level)
}
