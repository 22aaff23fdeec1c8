// Package logger builds the process-wide structured logger and adapts it to
// the minimal interface the solve pipeline logs through.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config holds logger configuration
type Config struct {
	Level  string // debug, info, warn, error
	Pretty bool   // Enable pretty console output
}

// New creates a new structured logger
func New(cfg Config) zerolog.Logger {
	level := zerolog.InfoLevel
	switch cfg.Level {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	var output io.Writer = os.Stderr
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: "15:04:05",
		}
	}

	return zerolog.New(output).
		With().
		Timestamp().
		Logger()
}

// SetGlobalLogger sets the package-level logger
func SetGlobalLogger(l zerolog.Logger) {
	log.Logger = l
}

// Adapter exposes a zerolog.Logger through printf-style leveled methods.
type Adapter struct {
	Log zerolog.Logger
}

func (a Adapter) Debugf(format string, args ...any) { a.Log.Debug().Msgf(format, args...) }
func (a Adapter) Infof(format string, args ...any)  { a.Log.Info().Msgf(format, args...) }
func (a Adapter) Warnf(format string, args ...any)  { a.Log.Warn().Msgf(format, args...) }
func (a Adapter) Errorf(format string, args ...any) { a.Log.Error().Msgf(format, args...) }
