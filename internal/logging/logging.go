// Package logging provides structured logging setup for staysight.
package logging

import (
	"log/slog"
	"os"
)

// Setup initializes the default slog logger.
// Debug mode uses human-readable text; otherwise JSON.
func Setup(debug bool) {
	var handler slog.Handler
	if debug {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	slog.SetDefault(slog.New(handler))
}
