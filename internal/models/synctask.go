package models

import (
	"time"
)

// EntityType identifies which repository a sync task belongs to.
type EntityType string

const (
	EntityDraft    EntityType = "draft"
	EntityImage    EntityType = "image"
	EntitySettings EntityType = "settings"
)

// Operation is the kind of remote mutation a task carries.
type Operation string

const (
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// TaskStatus is the delivery state of a queued task. It only moves forward:
// pending -> syncing -> (completed | failed). A failed task is re-queued as a
// new pending task; an existing task never revives itself.
type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskSyncing   TaskStatus = "syncing"
	TaskCompleted TaskStatus = "completed"
	TaskFailed    TaskStatus = "failed"
)

// Terminal reports whether a task in this status is done and eligible for
// retention cleanup.
func (s TaskStatus) Terminal() bool {
	return s == TaskCompleted || s == TaskFailed
}

// CanTransition reports whether moving to next is a forward transition.
func (s TaskStatus) CanTransition(next TaskStatus) bool {
	if s == next {
		return true
	}
	switch s {
	case TaskPending:
		return next == TaskSyncing || next == TaskCompleted || next == TaskFailed
	case TaskSyncing:
		return next == TaskCompleted || next == TaskFailed
	default:
		return false
	}
}

// SyncTask is one queued mutation awaiting remote application.
type SyncTask struct {
	ID           string     `json:"id"`
	EntityType   EntityType `json:"entity_type"`
	EntityID     string     `json:"entity_id"`
	Operation    Operation  `json:"operation"`
	Status       TaskStatus `json:"status"`
	RetryCount   int        `json:"retry_count"`
	LastAttempt  *time.Time `json:"last_attempt,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
	Priority     int        `json:"priority"`
	CreatedAt    time.Time  `json:"created_at"`
}

// TaskUpdate records progress reported by the sync actor. Nil fields are
// left unchanged. Status changes must be forward transitions.
type TaskUpdate struct {
	Status       *TaskStatus
	RetryCount   *int
	LastAttempt  *time.Time
	ErrorMessage *string
}

// QueueStats counts tasks by status.
type QueueStats struct {
	Pending   int `json:"pending"`
	Syncing   int `json:"syncing"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
}

// Total returns the number of tasks across all statuses.
func (s QueueStats) Total() int {
	return s.Pending + s.Syncing + s.Completed + s.Failed
}

// Validate checks the fields required at enqueue time.
func (t *SyncTask) Validate() error {
	switch t.EntityType {
	case EntityDraft, EntityImage, EntitySettings:
	default:
		return &ValidationError{Entity: "sync_task", Field: "entity_type", Reason: "unknown value " + string(t.EntityType)}
	}
	if t.EntityID == "" {
		return &ValidationError{Entity: "sync_task", Field: "entity_id", Reason: "required"}
	}
	switch t.Operation {
	case OpCreate, OpUpdate, OpDelete:
	default:
		return &ValidationError{Entity: "sync_task", Field: "operation", Reason: "unknown value " + string(t.Operation)}
	}
	return nil
}
