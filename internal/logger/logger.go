package logger

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger writes human-readable output in development and JSON elsewhere.
func InitLogger(level, env string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	logger := log.Logger
	if env != "production" {
		logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	return logger.Level(lvl).With().Str("service", "inmobiliaria").Logger()
}
