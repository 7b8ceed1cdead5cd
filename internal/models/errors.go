package models

import (
	"errors"
	"fmt"
)

// Sentinel errors
var (
	ErrDraftNotFound     = errors.New("draft not found")
	ErrImageNotFound     = errors.New("image cache entry not found")
	ErrTaskNotFound      = errors.New("sync task not found")
	ErrConfigNotFound    = errors.New("config key not found")
	ErrImportInFlight    = errors.New("import already in progress")
	ErrInvalidTransition = errors.New("invalid sync task status transition")
	ErrEmptyUpdate       = errors.New("update contains no fields")
)

// ValidationError reports a field that fails entity validation.
type ValidationError struct {
	Entity string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s: %s", e.Entity, e.Field, e.Reason)
}

// StoreError wraps a storage failure with the operation that caused it.
type StoreError struct {
	Op     string
	Entity string
	ID     string
	Err    error
}

func (e *StoreError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("store %s %s %s: %v", e.Op, e.Entity, e.ID, e.Err)
	}
	return fmt.Sprintf("store %s %s: %v", e.Op, e.Entity, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// TransitionError reports a rejected backward task status change.
type TransitionError struct {
	TaskID string
	From   TaskStatus
	To     TaskStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("task %s: cannot move %s -> %s", e.TaskID, e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}
