package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	charmlog "github.com/charmbracelet/log"
)

// EnvLogLevel selects the log level (debug, info, warn, error)
const EnvLogLevel = "STATICRUN_LOG_LEVEL"

var log *slog.Logger

func init() {
	log = slog.New(slog.NewTextHandler(io.Discard, nil))
}

func SetLogger(l *slog.Logger) {
	log = l
}

// New returns a logger writing to w through charmbracelet/log
func New(w io.Writer, level charmlog.Level) *slog.Logger {
	handler := charmlog.NewWithOptions(w, charmlog.Options{
		Level:  level,
		Prefix: "staticrun",
	})
	return slog.New(handler)
}

// LevelFromEnv reads EnvLogLevel. Unknown or empty values mean info.
func LevelFromEnv() charmlog.Level {
	return ParseLevel(os.Getenv(EnvLogLevel))
}

// ParseLevel maps a level name to a charmbracelet/log level
func ParseLevel(raw string) charmlog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug", "trace":
		return charmlog.DebugLevel
	case "warn", "warning":
		return charmlog.WarnLevel
	case "error":
		return charmlog.ErrorLevel
	default:
		return charmlog.InfoLevel
	}
}

func Debug(msg string, args ...any) {
	log.Debug(msg, args...)
}

func Warn(msg string, args ...any) {
	log.Warn(msg, args...)
}
