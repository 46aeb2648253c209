package logging

import (
	"context"
	"log/slog"

	"github.com/bamsammich/flacman/internal/event"
)

// LogEvent writes e as a structured "flacman.event" record. Failures log at
// Warn, everything else at Debug.
func LogEvent(ctx context.Context, logger *slog.Logger, e event.Event) {
	attrs := []slog.Attr{
		slog.String("type", e.Type.String()),
		slog.String("src", e.Src),
	}
	if e.Dst != "" {
		attrs = append(attrs, slog.String("dst", e.Dst))
	}
	if e.Mode != "" {
		attrs = append(attrs, slog.String("mode", e.Mode))
	}
	attrs = append(attrs, slog.Int64("size", e.Size))
	if e.Reason != "" {
		attrs = append(attrs, slog.String("reason", e.Reason))
	}

	level := slog.LevelDebug
	if e.Error != nil {
		attrs = append(attrs, slog.String("error", e.Error.Error()))
		level = slog.LevelWarn
	}
	logger.LogAttrs(ctx, level, "flacman.event", attrs...)
}
