package logging

import (
	"io"
	"log/slog"
	"time"

	"github.com/lmittmann/tint"
)

// New builds the process logger. Logs go to w (stderr in practice) so that
// stdout stays reserved for CSV output.
func New(w io.Writer, appEnv string, level slog.Level) *slog.Logger {
	if appEnv == "dev" {
		h := tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
		return slog.New(h).With("app", "jma-weather")
	}

	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(h).With(
		"app", "jma-weather",
		"env", appEnv,
	)
}
