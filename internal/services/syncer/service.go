// Package syncer drains the sync queue through an injected Actor. The actor
// owns the remote protocol; this service owns dequeue ordering, status
// bookkeeping, and marking reconciled entities synced.
package syncer

import (
	"context"
	"errors"
	"time"

	"github.com/quillapp/quill/internal/events"
	"github.com/quillapp/quill/internal/models"
	"github.com/quillapp/quill/internal/store"
)

// Actor performs the remote operation a sync task describes. An error return
// marks the task failed; the actor decides nothing about retries here.
type Actor interface {
	Apply(ctx context.Context, task *models.SyncTask) error
}

// ActorFunc adapts a function to the Actor interface.
type ActorFunc func(ctx context.Context, task *models.SyncTask) error

// Apply calls f.
func (f ActorFunc) Apply(ctx context.Context, task *models.SyncTask) error {
	return f(ctx, task)
}

// Stats summarizes one drain pass.
type Stats struct {
	Dequeued  int
	Completed int
	Failed    int
}

// Service drains pending tasks in batches.
type Service struct {
	store     *store.Store
	actor     Actor
	batchSize int
	logger    *events.Logger
}

// NewService creates a syncer over the given store and actor.
func NewService(s *store.Store, actor Actor, batchSize int, logger *events.Logger) *Service {
	if batchSize <= 0 {
		batchSize = 20
	}
	return &Service{
		store:     s,
		actor:     actor,
		batchSize: batchSize,
		logger:    logger.WithField("service", "syncer"),
	}
}

// RunOnce dequeues one batch and applies each task: mark syncing, call the
// actor, record the outcome. On success the task completes and the source
// entity is marked synced; on failure the task records the error and an
// incremented retry count. Task bookkeeping failures abort the pass; actor
// failures do not.
func (s *Service) RunOnce(ctx context.Context) (Stats, error) {
	var stats Stats

	tasks, err := s.store.Queue.Dequeue(ctx, s.batchSize)
	if err != nil {
		return stats, err
	}
	stats.Dequeued = len(tasks)

	for _, task := range tasks {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if err := s.apply(ctx, task, &stats); err != nil {
			return stats, err
		}
	}

	if stats.Dequeued > 0 {
		s.logger.WithFields(map[string]interface{}{
			"dequeued":  stats.Dequeued,
			"completed": stats.Completed,
			"failed":    stats.Failed,
		}).Info("Queue drained")
	}
	return stats, nil
}

// Run drains the queue on every interval tick until the context is
// cancelled.
func (s *Service) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
				s.logger.WithError(err).Warn("Drain pass failed")
			}
		}
	}
}

func (s *Service) apply(ctx context.Context, task *models.SyncTask, stats *Stats) error {
	ctx = events.WithTaskID(ctx, task.ID)
	logger := s.logger.WithField("task_id", task.ID)

	syncing := models.TaskSyncing
	now := time.Now().UTC()
	if err := s.store.Queue.Update(ctx, task.ID, models.TaskUpdate{
		Status:      &syncing,
		LastAttempt: &now,
	}); err != nil {
		return err
	}

	if actorErr := s.actor.Apply(ctx, task); actorErr != nil {
		stats.Failed++
		logger.WithError(actorErr).Warn("Task failed")

		failed := models.TaskFailed
		msg := actorErr.Error()
		retries := task.RetryCount + 1
		return s.store.Queue.Update(ctx, task.ID, models.TaskUpdate{
			Status:       &failed,
			RetryCount:   &retries,
			ErrorMessage: &msg,
		})
	}

	completed := models.TaskCompleted
	if err := s.store.Queue.Update(ctx, task.ID, models.TaskUpdate{
		Status: &completed,
	}); err != nil {
		return err
	}
	stats.Completed++

	return s.markEntitySynced(ctx, task)
}

// markEntitySynced reflects a delivered mutation back onto the source row.
// Deletes have no row left to mark, and settings are last-write-wins without
// per-entity sync state worth updating here.
func (s *Service) markEntitySynced(ctx context.Context, task *models.SyncTask) error {
	if task.Operation == models.OpDelete {
		return nil
	}

	switch task.EntityType {
	case models.EntityDraft:
		synced := models.SyncStatusSynced
		local := false
		err := s.store.Drafts.Update(ctx, task.EntityID, models.DraftUpdate{
			SyncStatus: &synced,
			IsLocal:    &local,
		})
		if errors.Is(err, models.ErrDraftNotFound) {
			// Deleted locally while the task was in flight.
			return nil
		}
		return err
	default:
		// Images carry their own upload lifecycle: the actor records
		// remote_path and upload_status through the image repo as the
		// upload proceeds. Settings are last-write-wins with no per-row
		// sync state to reflect.
		return nil
	}
}
