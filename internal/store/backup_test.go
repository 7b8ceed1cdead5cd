package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillapp/quill/internal/models"
)

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	source := newTestStore(t)

	draft := newDraft("exported")
	draft.Tags = []string{"zeta", "alpha", "alpha"}
	draft.Categories = []string{"news", "dev"}
	draftID, err := source.Drafts.Save(ctx, draft)
	require.NoError(t, err)
	require.NoError(t, source.Drafts.Update(ctx, draftID,
		models.DraftUpdate{Content: strPtr("revised")}))

	imgID, err := source.Images.Save(ctx, newImage("/cache/export.png"))
	require.NoError(t, err)

	require.NoError(t, source.Settings.Set(ctx, "theme", "dark", "ui"))
	require.NoError(t, source.Settings.Set(ctx, "retries", 3, "sync"))

	snapshot, err := source.ExportAll(ctx)
	require.NoError(t, err)

	assert.Equal(t, models.SnapshotVersion, snapshot.Version)
	assert.False(t, snapshot.ExportedAt.IsZero())
	drafts, images, configs := snapshot.Counts()
	assert.Equal(t, 1, drafts)
	assert.Equal(t, 1, images)
	assert.Equal(t, 2, configs)

	// Import into an empty store and compare field for field.
	target := newTestStore(t)
	require.NoError(t, target.ImportAll(ctx, snapshot))

	restored, err := target.Drafts.Get(ctx, draftID)
	require.NoError(t, err)
	expected := snapshot.Drafts[0]
	assert.Equal(t, expected.Title, restored.Title)
	assert.Equal(t, "revised", restored.Content)
	assert.Equal(t, expected.Tags, restored.Tags)
	assert.Equal(t, expected.Categories, restored.Categories)
	assert.Equal(t, expected.Version, restored.Version)
	assert.Equal(t, expected.SyncStatus, restored.SyncStatus)
	assert.True(t, restored.CreatedAt.Equal(expected.CreatedAt))
	assert.True(t, restored.LastModified.Equal(expected.LastModified))

	img, err := target.Images.GetByLocalPath(ctx, "/cache/export.png")
	require.NoError(t, err)
	assert.Equal(t, imgID, img.ID)
	assert.Equal(t, snapshot.Images[0].Size, img.Size)
	assert.Equal(t, snapshot.Images[0].UploadStatus, img.UploadStatus)

	theme, err := target.Settings.Get(ctx, "theme")
	require.NoError(t, err)
	assert.Equal(t, "dark", theme)

	retries, err := target.Settings.Get(ctx, "retries")
	require.NoError(t, err)
	assert.Equal(t, float64(3), retries)
}

func TestImportRollsBackOnBadEntity(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Settings.Set(ctx, "existing", "kept", "test"))
	before, err := s.Settings.ListAll(ctx, "")
	require.NoError(t, err)

	now := time.Now().UTC()
	snapshot := &models.Snapshot{
		Version:    models.SnapshotVersion,
		ExportedAt: now,
		Configs: []models.ConfigEntry{
			{
				ID: "cfg-1", Key: "valid", Value: "ok",
				Type: models.TypeString, Category: "test", LastModified: now,
			},
			{
				// Unknown type makes this entry malformed.
				ID: "cfg-2", Key: "broken", Value: "x",
				Type: "blob", Category: "test", LastModified: now,
			},
		},
	}

	err = s.ImportAll(ctx, snapshot)
	require.Error(t, err)
	var verr *models.ValidationError
	assert.ErrorAs(t, err, &verr)

	// Nothing from the snapshot is visible, including the valid first entry.
	after, err := s.Settings.ListAll(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, before, after)

	_, err = s.Settings.Get(ctx, "valid")
	assert.ErrorIs(t, err, models.ErrConfigNotFound)
}

func TestImportRollsBackDraftsToo(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	now := time.Now().UTC()
	snapshot := &models.Snapshot{
		Version:    models.SnapshotVersion,
		ExportedAt: now,
		Drafts: []models.Draft{
			{
				ID: "d-1", Title: "fine", Content: "body",
				Status: models.DraftStatusDraft, SyncStatus: models.SyncStatusSynced,
				CreatedAt: now, LastModified: now, Version: 4,
			},
			{
				// Missing content fails validation.
				ID: "d-2", Title: "broken",
				Status: models.DraftStatusDraft, SyncStatus: models.SyncStatusSynced,
				CreatedAt: now, LastModified: now, Version: 1,
			},
		},
	}

	require.Error(t, s.ImportAll(ctx, snapshot))

	drafts, err := s.Drafts.List(ctx, models.DraftFilter{})
	require.NoError(t, err)
	assert.Empty(t, drafts)
}

func TestImportPreservesVersionsVerbatim(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	now := time.Now().UTC().Add(-48 * time.Hour)
	snapshot := &models.Snapshot{
		Version:    models.SnapshotVersion,
		ExportedAt: time.Now().UTC(),
		Drafts: []models.Draft{{
			ID: "d-old", Title: "aged", Content: "body",
			Status: models.DraftStatusPublished, SyncStatus: models.SyncStatusSynced,
			CreatedAt: now, LastModified: now, Version: 17, RemoteID: "r-9",
		}},
	}

	require.NoError(t, s.ImportAll(ctx, snapshot))

	draft, err := s.Drafts.Get(ctx, "d-old")
	require.NoError(t, err)
	assert.Equal(t, 17, draft.Version)
	assert.Equal(t, "r-9", draft.RemoteID)
	assert.True(t, draft.LastModified.Equal(now))
}

func TestImportTwiceReplacesById(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	now := time.Now().UTC()
	snapshot := &models.Snapshot{
		Version:    models.SnapshotVersion,
		ExportedAt: now,
		Drafts: []models.Draft{{
			ID: "d-1", Title: "first", Content: "body",
			Status: models.DraftStatusDraft, SyncStatus: models.SyncStatusPending,
			CreatedAt: now, LastModified: now, Version: 1,
		}},
	}
	require.NoError(t, s.ImportAll(ctx, snapshot))

	snapshot.Drafts[0].Title = "second"
	require.NoError(t, s.ImportAll(ctx, snapshot))

	drafts, err := s.Drafts.List(ctx, models.DraftFilter{})
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, "second", drafts[0].Title)
}
