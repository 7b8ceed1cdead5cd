package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillapp/quill/internal/models"
	"github.com/quillapp/quill/internal/store"
)

// seedImages plants cache rows with explicit last_accessed timestamps by
// importing a snapshot, which writes fields verbatim.
func seedImages(t *testing.T, s *store.Store, images []models.ImageCache) {
	t.Helper()
	err := s.ImportAll(context.Background(), &models.Snapshot{
		Version:    models.SnapshotVersion,
		ExportedAt: time.Now().UTC(),
		Images:     images,
	})
	require.NoError(t, err)
}

func TestPurgeExpiredImages(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	now := time.Now().UTC()
	seedImages(t, s, []models.ImageCache{
		{
			ID: "img-old", LocalPath: "/cache/old.png", OriginalName: "old.png",
			MimeType: "image/png", Size: 10,
			UploadStatus: models.UploadStatusUploaded, RemotePath: "r/old.png",
			CreatedAt: now.Add(-40 * 24 * time.Hour), LastAccessed: now.Add(-40 * 24 * time.Hour),
		},
		{
			ID: "img-fresh", LocalPath: "/cache/fresh.png", OriginalName: "fresh.png",
			MimeType: "image/png", Size: 10,
			UploadStatus: models.UploadStatusUploaded, RemotePath: "r/fresh.png",
			CreatedAt: now.Add(-10 * 24 * time.Hour), LastAccessed: now.Add(-10 * 24 * time.Hour),
		},
		{
			// Old but never uploaded; only uploaded copies are reclaimable.
			ID: "img-local", LocalPath: "/cache/local.png", OriginalName: "local.png",
			MimeType: "image/png", Size: 10,
			UploadStatus: models.UploadStatusPending,
			CreatedAt:    now.Add(-40 * 24 * time.Hour), LastAccessed: now.Add(-40 * 24 * time.Hour),
		},
	})

	result, err := s.PurgeExpired(ctx, 30*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Images)

	_, err = s.Images.Get(ctx, "img-old")
	assert.ErrorIs(t, err, models.ErrImageNotFound)

	_, err = s.Images.Get(ctx, "img-fresh")
	assert.NoError(t, err)
	_, err = s.Images.Get(ctx, "img-local")
	assert.NoError(t, err)
}

func TestPurgeExpiredTasks(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	done := enqueue(t, s, 1)
	failed := enqueue(t, s, 1)
	pending := enqueue(t, s, 1)

	completed := models.TaskCompleted
	require.NoError(t, s.Queue.Update(ctx, done, models.TaskUpdate{Status: &completed}))
	failedStatus := models.TaskFailed
	require.NoError(t, s.Queue.Update(ctx, failed, models.TaskUpdate{Status: &failedStatus}))

	time.Sleep(10 * time.Millisecond)

	// Zero max age means everything older than "now" is eligible, which
	// covers the rows just written without fabricating timestamps.
	result, err := s.PurgeExpired(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.Tasks)

	_, err = s.Queue.Get(ctx, done)
	assert.ErrorIs(t, err, models.ErrTaskNotFound)
	_, err = s.Queue.Get(ctx, failed)
	assert.ErrorIs(t, err, models.ErrTaskNotFound)

	// In-flight and pending work is never reclaimed.
	_, err = s.Queue.Get(ctx, pending)
	assert.NoError(t, err)
}

func TestPurgeLeavesDraftsAndConfigsAlone(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id, err := s.Drafts.Save(ctx, newDraft("keep me"))
	require.NoError(t, err)
	require.NoError(t, s.Settings.Set(ctx, "keep", true, "test"))

	time.Sleep(10 * time.Millisecond)

	result, err := s.PurgeExpired(ctx, 0)
	require.NoError(t, err)
	assert.Zero(t, result.Tasks)
	assert.Zero(t, result.Images)

	_, err = s.Drafts.Get(ctx, id)
	assert.NoError(t, err)
	_, err = s.Settings.Get(ctx, "keep")
	assert.NoError(t, err)
}
