package syncer_test

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillapp/quill/internal/events"
	"github.com/quillapp/quill/internal/models"
	"github.com/quillapp/quill/internal/services/syncer"
	"github.com/quillapp/quill/internal/store"
)

func testLogger() *events.Logger {
	return events.NewTestLogger(events.ErrorLevel, "json", io.Discard)
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "quill.db")
	s := store.New(dbPath, testLogger())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// recordingActor remembers every task it was handed and fails the ones whose
// entity id is in failIDs.
type recordingActor struct {
	mu      sync.Mutex
	applied []string
	failIDs map[string]bool
}

func (a *recordingActor) Apply(_ context.Context, task *models.SyncTask) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.applied = append(a.applied, task.EntityID)
	if a.failIDs[task.EntityID] {
		return errors.New("remote rejected payload")
	}
	return nil
}

func TestRunOnceCompletesAndMarksDraftSynced(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	draftID, err := s.Drafts.Save(ctx, &models.Draft{Title: "post", Content: "body"})
	require.NoError(t, err)

	taskID, err := s.Queue.Enqueue(ctx, models.EntityDraft, draftID, models.OpCreate, 5)
	require.NoError(t, err)

	actor := &recordingActor{}
	svc := syncer.NewService(s, actor, 10, testLogger())

	stats, err := svc.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, syncer.Stats{Dequeued: 1, Completed: 1}, stats)
	assert.Equal(t, []string{draftID}, actor.applied)

	task, err := s.Queue.Get(ctx, taskID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskCompleted, task.Status)
	require.NotNil(t, task.LastAttempt)
	assert.WithinDuration(t, time.Now(), *task.LastAttempt, 5*time.Second)

	draft, err := s.Drafts.Get(ctx, draftID)
	require.NoError(t, err)
	assert.Equal(t, models.SyncStatusSynced, draft.SyncStatus)
	assert.False(t, draft.IsLocal)
}

func TestRunOnceRecordsFailure(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	taskID, err := s.Queue.Enqueue(ctx, models.EntityDraft, "d-gone", models.OpUpdate, 1)
	require.NoError(t, err)

	actor := &recordingActor{failIDs: map[string]bool{"d-gone": true}}
	svc := syncer.NewService(s, actor, 10, testLogger())

	stats, err := svc.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, syncer.Stats{Dequeued: 1, Failed: 1}, stats)

	task, err := s.Queue.Get(ctx, taskID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskFailed, task.Status)
	assert.Equal(t, 1, task.RetryCount)
	assert.Equal(t, "remote rejected payload", task.ErrorMessage)
}

func TestRunOnceRespectsPriorityOrder(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.Queue.Enqueue(ctx, models.EntityDraft, "low", models.OpUpdate, 1)
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	_, err = s.Queue.Enqueue(ctx, models.EntityDraft, "high", models.OpUpdate, 9)
	require.NoError(t, err)

	actor := &recordingActor{}
	svc := syncer.NewService(s, actor, 10, testLogger())

	_, err = svc.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"high", "low"}, actor.applied)
}

func TestRunOnceBatchSize(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for i := 0; i < 5; i++ {
		_, err := s.Queue.Enqueue(ctx, models.EntityDraft, "d", models.OpUpdate, 1)
		require.NoError(t, err)
	}

	actor := &recordingActor{}
	svc := syncer.NewService(s, actor, 2, testLogger())

	stats, err := svc.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Dequeued)

	stats, err = svc.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Dequeued)
}

func TestCompletedDeleteSkipsEntityMark(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.Queue.Enqueue(ctx, models.EntityDraft, "already-deleted", models.OpDelete, 1)
	require.NoError(t, err)

	actor := &recordingActor{}
	svc := syncer.NewService(s, actor, 10, testLogger())

	stats, err := svc.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Completed)
}

func TestCompletedDraftGoneLocally(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	// Draft deleted before the update task drains; completion tolerates it.
	_, err := s.Queue.Enqueue(ctx, models.EntityDraft, "vanished", models.OpUpdate, 1)
	require.NoError(t, err)

	actor := &recordingActor{}
	svc := syncer.NewService(s, actor, 10, testLogger())

	stats, err := svc.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Completed)
}

func TestRunStopsOnCancel(t *testing.T) {
	s := newTestStore(t)
	svc := syncer.NewService(s, &recordingActor{}, 10, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx, 10*time.Millisecond) }()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
