package logger

import (
	"io"
	"log/slog"
	"os"

	"github.com/jwebster45206/no-svoboda/internal/config"
)

// Setup configures the global slog logger based on environment. Logs go to
// stderr; stdout belongs to the story.
func Setup(cfg *config.Config) *slog.Logger {
	return New(os.Stderr, cfg)
}

// New builds the logger writing to w and sets it as the default.
func New(w io.Writer, cfg *config.Config) *slog.Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	if cfg.IsProduction() {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// WithSession adds the session ID to logger context
func WithSession(logger *slog.Logger, sessionID string) *slog.Logger {
	return logger.With("session_id", sessionID)
}

// WithError adds error to logger context
func WithError(logger *slog.Logger, err error) *slog.Logger {
	return logger.With("error", err.Error())
}
