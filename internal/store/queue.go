package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/quillapp/quill/internal/models"
)

// QueueRepo is the durable outbox of pending mutations. It stores whatever
// status the sync actor reports and never retries on its own; its guarantees
// are ordering and durability.
type QueueRepo struct {
	store *Store
}

const taskColumns = `id, entity_type, entity_id, operation, status, retry_count,
    last_attempt, error_message, priority, created_at`

// Enqueue records a pending task for the given mutation and returns its id.
func (r *QueueRepo) Enqueue(ctx context.Context, entityType models.EntityType, entityID string, op models.Operation, priority int) (string, error) {
	db, err := r.store.ready(ctx)
	if err != nil {
		return "", err
	}

	task := &models.SyncTask{
		ID:         uuid.NewString(),
		EntityType: entityType,
		EntityID:   entityID,
		Operation:  op,
		Status:     models.TaskPending,
		RetryCount: 0,
		Priority:   priority,
		CreatedAt:  time.Now().UTC(),
	}
	if err := task.Validate(); err != nil {
		return "", err
	}

	_, err = db.ExecContext(ctx, `
        INSERT INTO sync_status (`+taskColumns+`)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `, task.ID, string(task.EntityType), task.EntityID, string(task.Operation),
		string(task.Status), task.RetryCount, nil, nil, task.Priority, task.CreatedAt)
	if err != nil {
		return "", &models.StoreError{Op: "enqueue", Entity: "sync_task", Err: err}
	}

	r.store.logger.WithFields(map[string]interface{}{
		"task_id":     task.ID,
		"entity_type": entityType,
		"operation":   op,
	}).Debug("Task enqueued")
	return task.ID, nil
}

// Dequeue returns up to limit pending tasks, highest priority first and
// oldest first within a priority class. Dequeue does not change task status;
// the caller marks tasks syncing via Update.
func (r *QueueRepo) Dequeue(ctx context.Context, limit int) ([]*models.SyncTask, error) {
	if limit <= 0 {
		return nil, nil
	}

	db, err := r.store.ready(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
        SELECT `+taskColumns+` FROM sync_status
        WHERE status = ?
        ORDER BY priority DESC, created_at ASC
        LIMIT ?
    `, string(models.TaskPending), limit)
	if err != nil {
		return nil, &models.StoreError{Op: "dequeue", Entity: "sync_task", Err: err}
	}
	defer rows.Close()

	return collectTasks(rows)
}

// Update records sync actor progress on a task. Status changes must move
// forward (pending -> syncing -> completed/failed); anything else is
// rejected with a TransitionError. Returns ErrTaskNotFound for unknown ids.
func (r *QueueRepo) Update(ctx context.Context, id string, update models.TaskUpdate) error {
	db, err := r.store.ready(ctx)
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if update.Status != nil {
		var current string
		err := tx.QueryRowContext(ctx,
			"SELECT status FROM sync_status WHERE id = ?", id).Scan(&current)
		if err == sql.ErrNoRows {
			return models.ErrTaskNotFound
		}
		if err != nil {
			return &models.StoreError{Op: "update", Entity: "sync_task", ID: id, Err: err}
		}
		if !models.TaskStatus(current).CanTransition(*update.Status) {
			return &models.TransitionError{TaskID: id, From: models.TaskStatus(current), To: *update.Status}
		}
	}

	set := []string{}
	args := []any{}

	if update.Status != nil {
		set = append(set, "status = ?")
		args = append(args, string(*update.Status))
	}
	if update.RetryCount != nil {
		set = append(set, "retry_count = ?")
		args = append(args, *update.RetryCount)
	}
	if update.LastAttempt != nil {
		set = append(set, "last_attempt = ?")
		args = append(args, update.LastAttempt.UTC())
	}
	if update.ErrorMessage != nil {
		set = append(set, "error_message = ?")
		args = append(args, nullString(*update.ErrorMessage))
	}
	if len(set) == 0 {
		return models.ErrEmptyUpdate
	}

	args = append(args, id)
	result, err := tx.ExecContext(ctx,
		"UPDATE sync_status SET "+strings.Join(set, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return &models.StoreError{Op: "update", Entity: "sync_task", ID: id, Err: err}
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return models.ErrTaskNotFound
	}

	return tx.Commit()
}

// Get returns the task or ErrTaskNotFound.
func (r *QueueRepo) Get(ctx context.Context, id string) (*models.SyncTask, error) {
	db, err := r.store.ready(ctx)
	if err != nil {
		return nil, err
	}

	row := db.QueryRowContext(ctx,
		"SELECT "+taskColumns+" FROM sync_status WHERE id = ?", id)
	task, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, models.ErrTaskNotFound
	}
	if err != nil {
		return nil, &models.StoreError{Op: "get", Entity: "sync_task", ID: id, Err: err}
	}
	return task, nil
}

// List returns tasks in queue order, optionally filtered by status.
func (r *QueueRepo) List(ctx context.Context, status *models.TaskStatus, limit int) ([]*models.SyncTask, error) {
	db, err := r.store.ready(ctx)
	if err != nil {
		return nil, err
	}

	query := "SELECT " + taskColumns + " FROM sync_status"
	var args []any
	if status != nil {
		query += " WHERE status = ?"
		args = append(args, string(*status))
	}
	query += " ORDER BY priority DESC, created_at ASC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &models.StoreError{Op: "list", Entity: "sync_task", Err: err}
	}
	defer rows.Close()

	return collectTasks(rows)
}

// Delete removes a task record after terminal bookkeeping or cancellation.
// Deleting an unknown id is not an error.
func (r *QueueRepo) Delete(ctx context.Context, id string) error {
	db, err := r.store.ready(ctx)
	if err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, "DELETE FROM sync_status WHERE id = ?", id); err != nil {
		return &models.StoreError{Op: "delete", Entity: "sync_task", ID: id, Err: err}
	}
	return nil
}

// Stats counts tasks per status.
func (r *QueueRepo) Stats(ctx context.Context) (models.QueueStats, error) {
	var stats models.QueueStats

	db, err := r.store.ready(ctx)
	if err != nil {
		return stats, err
	}

	rows, err := db.QueryContext(ctx,
		"SELECT status, COUNT(*) FROM sync_status GROUP BY status")
	if err != nil {
		return stats, &models.StoreError{Op: "stats", Entity: "sync_task", Err: err}
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return stats, fmt.Errorf("scan stats row: %w", err)
		}
		switch models.TaskStatus(status) {
		case models.TaskPending:
			stats.Pending = count
		case models.TaskSyncing:
			stats.Syncing = count
		case models.TaskCompleted:
			stats.Completed = count
		case models.TaskFailed:
			stats.Failed = count
		}
	}
	return stats, rows.Err()
}

func collectTasks(rows *sql.Rows) ([]*models.SyncTask, error) {
	var tasks []*models.SyncTask
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task row: %w", err)
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func scanTask(sc scanner) (*models.SyncTask, error) {
	var t models.SyncTask
	var entityType, operation, status string
	var lastAttempt sql.NullTime
	var errorMessage sql.NullString

	err := sc.Scan(&t.ID, &entityType, &t.EntityID, &operation, &status,
		&t.RetryCount, &lastAttempt, &errorMessage, &t.Priority, &t.CreatedAt)
	if err != nil {
		return nil, err
	}

	t.EntityType = models.EntityType(entityType)
	t.Operation = models.Operation(operation)
	t.Status = models.TaskStatus(status)
	if lastAttempt.Valid {
		at := lastAttempt.Time
		t.LastAttempt = &at
	}
	t.ErrorMessage = errorMessage.String
	return &t, nil
}
