package exprbind

import (
	"log/slog"
	"os"
)

func newLevelLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
