// Package logger builds the process-wide slog.Logger. Production gets JSON
// output for log aggregation, everything else human-readable text at debug
// level.
package logger

import (
	"io"
	"log/slog"
	"os"
)

// New creates a logger for the given environment. A nil output defaults to
// stdout.
func New(appEnv string, output io.Writer) *slog.Logger {
	if output == nil {
		output = os.Stdout
	}

	var handler slog.Handler
	if appEnv == "production" {
		handler = slog.NewJSONHandler(output, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		handler = slog.NewTextHandler(output, &slog.HandlerOptions{Level: slog.LevelDebug})
	}

	return slog.New(handler).With(slog.String("service", "houseoftheai-api"))
}
