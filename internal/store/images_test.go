package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillapp/quill/internal/models"
)

func newImage(localPath string) *models.ImageCache {
	return &models.ImageCache{
		LocalPath:    localPath,
		OriginalName: "photo.jpg",
		Size:         2048,
		MimeType:     "image/jpeg",
		UploadStatus: models.UploadStatusPending,
	}
}

func TestImageSaveAndGet(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id, err := s.Images.Save(ctx, newImage("/cache/photo.jpg"))
	require.NoError(t, err)

	img, err := s.Images.Get(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, "/cache/photo.jpg", img.LocalPath)
	assert.Equal(t, "photo.jpg", img.OriginalName)
	assert.Equal(t, int64(2048), img.Size)
	assert.Equal(t, models.UploadStatusPending, img.UploadStatus)
	assert.Zero(t, img.UploadProgress)
	assert.True(t, img.LastAccessed.Equal(img.CreatedAt))
}

func TestImageSaveValidation(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	var verr *models.ValidationError

	_, err := s.Images.Save(ctx, &models.ImageCache{
		OriginalName: "a.png", MimeType: "image/png",
	})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "local_path", verr.Field)

	_, err = s.Images.Save(ctx, &models.ImageCache{
		LocalPath: "/cache/a.png", MimeType: "image/png",
	})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "original_name", verr.Field)
}

func TestImageUpdateProgress(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id, err := s.Images.Save(ctx, newImage("/cache/upload.png"))
	require.NoError(t, err)

	uploading := models.UploadStatusUploading
	progress := 40
	require.NoError(t, s.Images.Update(ctx, id, models.ImageUpdate{
		UploadStatus:   &uploading,
		UploadProgress: &progress,
	}))

	uploaded := models.UploadStatusUploaded
	done := 100
	remote := "https://cdn.example.com/upload.png"
	require.NoError(t, s.Images.Update(ctx, id, models.ImageUpdate{
		UploadStatus:   &uploaded,
		UploadProgress: &done,
		RemotePath:     &remote,
	}))

	img, err := s.Images.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.UploadStatusUploaded, img.UploadStatus)
	assert.Equal(t, 100, img.UploadProgress)
	assert.Equal(t, remote, img.RemotePath)
}

func TestImageUpdateRefreshesLastAccessed(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id, err := s.Images.Save(ctx, newImage("/cache/touched.png"))
	require.NoError(t, err)

	img, err := s.Images.Get(ctx, id)
	require.NoError(t, err)
	before := img.LastAccessed

	time.Sleep(10 * time.Millisecond)

	// An empty update is a touch.
	require.NoError(t, s.Images.Update(ctx, id, models.ImageUpdate{}))

	img, err = s.Images.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, img.LastAccessed.After(before))
}

func TestImageUpdateMissing(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	err := s.Images.Update(ctx, "missing", models.ImageUpdate{})
	assert.ErrorIs(t, err, models.ErrImageNotFound)
}

func TestImageGetByLocalPath(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.Images.GetByLocalPath(ctx, "/cache/absent.png")
	assert.ErrorIs(t, err, models.ErrImageNotFound)

	first, err := s.Images.Save(ctx, newImage("/cache/dup.png"))
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)
	second, err := s.Images.Save(ctx, newImage("/cache/dup.png"))
	require.NoError(t, err)

	// Re-caching the same path is allowed; the newest row wins the lookup.
	img, err := s.Images.GetByLocalPath(ctx, "/cache/dup.png")
	require.NoError(t, err)
	assert.Equal(t, second, img.ID)
	assert.NotEqual(t, first, img.ID)
}

func TestImageList(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	pendingID, err := s.Images.Save(ctx, newImage("/cache/one.png"))
	require.NoError(t, err)

	uploadedImg := newImage("/cache/two.png")
	uploadedImg.UploadStatus = models.UploadStatusUploaded
	uploadedImg.RemotePath = "https://cdn.example.com/two.png"
	uploadedID, err := s.Images.Save(ctx, uploadedImg)
	require.NoError(t, err)

	all, err := s.Images.List(ctx, models.ImageFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	uploaded := models.UploadStatusUploaded
	filtered, err := s.Images.List(ctx, models.ImageFilter{UploadStatus: &uploaded})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, uploadedID, filtered[0].ID)
	_ = pendingID
}

func TestImageDeleteIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id, err := s.Images.Save(ctx, newImage("/cache/gone.png"))
	require.NoError(t, err)

	require.NoError(t, s.Images.Delete(ctx, id))
	require.NoError(t, s.Images.Delete(ctx, id))

	_, err = s.Images.Get(ctx, id)
	assert.ErrorIs(t, err, models.ErrImageNotFound)
}
