// Package log provides the engine's structured logger: a single zerolog
// instance, configured once at process start, with component/app/stream
// scoped children handed out to every subsystem.
package log

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the process-wide base logger; subsystems derive scoped
// children from it rather than writing to it directly.
var Logger zerolog.Logger

// Level is the minimum severity that reaches the configured output.
type Level string

const (
	DebugLevel Level = "debug"
	InfoLevel  Level = "info"
	WarnLevel  Level = "warn"
	ErrorLevel Level = "error"
)

// Config controls logger construction.
type Config struct {
	Level      Level
	JSONOutput bool
	Output     io.Writer
}

// Init (re)configures the global logger. Safe to call once at process
// start; not safe to call concurrently with logging calls.
func Init(cfg Config) {
	var level zerolog.Level
	switch cfg.Level {
	case DebugLevel:
		level = zerolog.DebugLevel
	case WarnLevel:
		level = zerolog.WarnLevel
	case ErrorLevel:
		level = zerolog.ErrorLevel
	default:
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}

	if cfg.JSONOutput {
		Logger = zerolog.New(output).With().Timestamp().Logger()
	} else {
		Logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Logger()
	}
}

func init() {
	Init(Config{Level: InfoLevel})
}

// WithComponent scopes a logger to one engine subsystem (e.g. "junction",
// "window", "aggregation").
func WithComponent(component string) zerolog.Logger {
	return Logger.With().Str("component", component).Logger()
}

// WithApp scopes a logger to one running application.
func WithApp(appName string) zerolog.Logger {
	return Logger.With().Str("app", appName).Logger()
}

// WithStream scopes a logger to one stream/junction.
func WithStream(streamID string) zerolog.Logger {
	return Logger.With().Str("stream", streamID).Logger()
}

// WithQuery scopes a logger to one compiled query.
func WithQuery(queryID string) zerolog.Logger {
	return Logger.With().Str("query", queryID).Logger()
}

func Info(msg string)  { Logger.Info().Msg(msg) }
func Debug(msg string) { Logger.Debug().Msg(msg) }
func Warn(msg string)  { Logger.Warn().Msg(msg) }
func Error(msg string) { Logger.Error().Msg(msg) }

func Errorf(format string, err error) {
	Logger.Error().Err(err).Msg(format)
}
