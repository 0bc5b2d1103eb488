// Package rxlog provides the runtime's debug-level structured logging,
// grounded on cuemby/warren's pkg/log: a global zerolog.Logger, an Init that
// configures level and output shape, and WithComponent for scoped child
// loggers. The runtime only ever logs at Debug level, and only on signal
// termination — never on the value-delivery path. Generator disposal,
// scheduler drift correction and reentrant-modify faults are not logged.
package rxlog

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the package-wide logger instance. It defaults to a no-op level
// (Disabled) so importing this module never prints anything until a caller
// opts in with Init.
var Logger zerolog.Logger

func init() {
	Logger = zerolog.New(io.Discard).Level(zerolog.Disabled)
}

// Level names the configurable verbosity, mirroring rxlog's warren
// ancestor's string-keyed Level rather than exposing zerolog's type
// directly.
type Level string

const (
	DebugLevel Level = "debug"
	InfoLevel  Level = "info"
	WarnLevel  Level = "warn"
	ErrorLevel Level = "error"
	OffLevel   Level = "off"
)

// Config configures the global Logger.
type Config struct {
	Level      Level
	JSONOutput bool
	Output     io.Writer
}

// Init (re)configures the global Logger. Call it once at process start; the
// zero Config disables logging entirely.
func Init(cfg Config) {
	if cfg.Level == "" {
		cfg.Level = OffLevel
	}

	var level zerolog.Level
	switch cfg.Level {
	case DebugLevel:
		level = zerolog.DebugLevel
	case InfoLevel:
		level = zerolog.InfoLevel
	case WarnLevel:
		level = zerolog.WarnLevel
	case ErrorLevel:
		level = zerolog.ErrorLevel
	case OffLevel:
		level = zerolog.Disabled
	default:
		level = zerolog.InfoLevel
	}

	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}

	var logger zerolog.Logger
	if cfg.JSONOutput {
		logger = zerolog.New(output).With().Timestamp().Logger()
	} else {
		logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Logger()
	}

	Logger = logger.Level(level)
}

// WithComponent returns a child logger tagged with a component field, the
// way every subsystem in this module identifies itself in debug output.
func WithComponent(component string) zerolog.Logger {
	return Logger.With().Str("component", component).Logger()
}
