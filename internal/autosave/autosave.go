// Package autosave periodically persists the note store as a safety net.
package autosave

import (
	"context"
	"log/slog"
	"time"
)

// DefaultInterval matches the desktop client's five-minute timer.
const DefaultInterval = 5 * time.Minute

// Run calls save every interval until ctx is cancelled. Save errors are
// logged and the loop keeps going so the next tick can retry.
func Run(ctx context.Context, interval time.Duration, save func(context.Context) error, logger *slog.Logger) {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info("autosave: started", slog.Duration("interval", interval))
	for {
		select {
		case <-ctx.Done():
			logger.Info("autosave: stopped")
			return
		case <-ticker.C:
			if err := save(ctx); err != nil {
				logger.Error("autosave: save failed", slog.String("error", err.Error()))
				continue
			}
			logger.Debug("autosave: saved")
		}
	}
}
