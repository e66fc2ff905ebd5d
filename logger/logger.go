package logger

import (
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

const envLocal = "local"

type Logger interface {
	Info(msg string, keyvals ...interface{})

	Warn(msg string, keyvals ...interface{})

	Error(msg string, keyvals ...interface{})

	Debug(msg string, keyvals ...interface{})
}

// New returns a coloured console logger for the local environment and a JSON
// logger everywhere else.
func New(env string) Logger {
	if env == envLocal {
		handler := tint.NewHandler(os.Stderr, &tint.Options{
			Level:      slog.LevelDebug,
			AddSource:  true,
			TimeFormat: time.Kitchen,
		})
		return slog.New(handler)
	}

	opts := &slog.HandlerOptions{
		Level:     slog.LevelInfo, // minimum log level
		AddSource: true,           // include file + line number
	}
	handler := slog.NewJSONHandler(os.Stderr, opts)
	return slog.New(handler)
}
