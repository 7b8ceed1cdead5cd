package models_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quillapp/quill/internal/models"
)

func TestValidationError(t *testing.T) {
	err := &models.ValidationError{Entity: "draft", Field: "title", Reason: "required"}
	assert.Equal(t, "invalid draft: title: required", err.Error())

	wrapped := fmt.Errorf("save draft: %w", err)
	var verr *models.ValidationError
	assert.ErrorAs(t, wrapped, &verr)
	assert.Equal(t, "title", verr.Field)
}

func TestStoreErrorUnwrap(t *testing.T) {
	err := &models.StoreError{
		Op: "get", Entity: "draft", ID: "d-1",
		Err: models.ErrDraftNotFound,
	}

	assert.ErrorIs(t, err, models.ErrDraftNotFound)
	assert.Contains(t, err.Error(), "store get draft d-1")

	// Without an id the message drops the segment entirely.
	err = &models.StoreError{Op: "list", Entity: "draft", Err: errors.New("boom")}
	assert.Equal(t, "store list draft: boom", err.Error())
}

func TestTransitionErrorUnwrap(t *testing.T) {
	err := &models.TransitionError{
		TaskID: "t-1",
		From:   models.TaskCompleted,
		To:     models.TaskPending,
	}

	assert.ErrorIs(t, err, models.ErrInvalidTransition)
	assert.Contains(t, err.Error(), "completed -> pending")
}

func TestSentinelsAreDistinct(t *testing.T) {
	sentinels := []error{
		models.ErrDraftNotFound,
		models.ErrImageNotFound,
		models.ErrTaskNotFound,
		models.ErrConfigNotFound,
		models.ErrImportInFlight,
		models.ErrInvalidTransition,
		models.ErrEmptyUpdate,
	}

	for i, a := range sentinels {
		for j, b := range sentinels {
			if i == j {
				continue
			}
			assert.NotErrorIs(t, a, b)
		}
	}
}
