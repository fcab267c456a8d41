package logger

import (
	"log/slog"
	"os"
)

var Log *slog.Logger

func init() {
	// Safe default so packages can log before Init runs (tests included).
	Log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

// Init configures the process-wide logger.
// env "development" gets a readable text handler, everything else JSON.
func Init(env string) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	var handler slog.Handler
	if env == "development" {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	Log = slog.New(handler)
	slog.SetDefault(Log)
}

// With returns a child logger carrying the given key/value pairs.
func With(args ...any) *slog.Logger {
	return Log.With(args...)
}

func WithError(err error) *slog.Logger {
	return Log.With("error", err.Error())
}
