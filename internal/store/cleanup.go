package store

import (
	"context"
	"fmt"
	"time"

	"github.com/quillapp/quill/internal/models"
)

// CleanupResult reports how many rows a purge removed.
type CleanupResult struct {
	Tasks  int64 `json:"tasks"`
	Images int64 `json:"images"`
}

// PurgeExpired deletes sync tasks in a terminal state (completed or failed)
// older than maxAge, and image cache rows that finished uploading and have
// not been accessed within maxAge. Drafts and config entries are never
// purged. Empty result sets are fine; counts are best effort under
// concurrent mutation.
func (s *Store) PurgeExpired(ctx context.Context, maxAge time.Duration) (CleanupResult, error) {
	var result CleanupResult

	db, err := s.ready(ctx)
	if err != nil {
		return result, err
	}

	cutoff := time.Now().UTC().Add(-maxAge)

	res, err := db.ExecContext(ctx, `
        DELETE FROM sync_status
        WHERE status IN (?, ?) AND created_at < ?
    `, string(models.TaskCompleted), string(models.TaskFailed), cutoff)
	if err != nil {
		return result, fmt.Errorf("purge sync tasks: %w", err)
	}
	result.Tasks, _ = res.RowsAffected()

	res, err = db.ExecContext(ctx, `
        DELETE FROM image_cache
        WHERE upload_status = ? AND last_accessed < ?
    `, string(models.UploadStatusUploaded), cutoff)
	if err != nil {
		return result, fmt.Errorf("purge image cache: %w", err)
	}
	result.Images, _ = res.RowsAffected()

	if result.Tasks > 0 || result.Images > 0 {
		s.logger.WithFields(map[string]interface{}{
			"tasks":  result.Tasks,
			"images": result.Images,
		}).Info("Retention cleanup completed")
	}
	return result, nil
}
