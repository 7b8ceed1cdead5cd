package store

import (
	"context"
	"time"

	"github.com/quillapp/quill/internal/config"
	"github.com/quillapp/quill/internal/events"
)

// Janitor periodically runs retention cleanup against a store.
type Janitor struct {
	store    *Store
	interval time.Duration
	maxAge   time.Duration
	logger   *events.Logger
}

// NewJanitor creates a cleanup driver from retention config.
func NewJanitor(s *Store, cfg config.RetentionConfig, logger *events.Logger) *Janitor {
	return &Janitor{
		store:    s,
		interval: cfg.Interval,
		maxAge:   cfg.MaxAge,
		logger:   logger.WithField("component", "janitor"),
	}
}

// Run purges once immediately, then on every interval tick until the context
// is cancelled. Purge failures are logged and do not stop the loop.
func (j *Janitor) Run(ctx context.Context) {
	j.logger.WithFields(map[string]interface{}{
		"interval": j.interval.String(),
		"max_age":  j.maxAge.String(),
	}).Info("Janitor started")

	j.purge(ctx)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("Janitor stopped")
			return
		case <-ticker.C:
			j.purge(ctx)
		}
	}
}

func (j *Janitor) purge(ctx context.Context) {
	if _, err := j.store.PurgeExpired(ctx, j.maxAge); err != nil {
		j.logger.WithError(err).Warn("Retention cleanup failed")
	}
}
