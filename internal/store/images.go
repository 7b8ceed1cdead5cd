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

// ImageRepo provides CRUD for cached media assets. Every read and update
// refreshes last_accessed, which retention cleanup keys on.
type ImageRepo struct {
	store *Store
}

const imageColumns = `id, local_path, remote_path, original_name, size, mime_type,
    upload_status, upload_progress, created_at, last_accessed, is_compressed, compressed_size`

// Save persists a new cache entry and returns its allocated id.
func (r *ImageRepo) Save(ctx context.Context, img *models.ImageCache) (string, error) {
	db, err := r.store.ready(ctx)
	if err != nil {
		return "", err
	}

	if img.UploadStatus == "" {
		img.UploadStatus = models.UploadStatusPending
	}
	if err := img.Validate(); err != nil {
		return "", err
	}

	now := time.Now().UTC()
	img.ID = uuid.NewString()
	img.CreatedAt = now
	img.LastAccessed = now

	_, err = db.ExecContext(ctx, `
        INSERT INTO image_cache (`+imageColumns+`)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `, img.ID, img.LocalPath, nullString(img.RemotePath), img.OriginalName,
		img.Size, img.MimeType, string(img.UploadStatus), img.UploadProgress,
		img.CreatedAt, img.LastAccessed, img.IsCompressed, nullInt64(img.CompressedSize))
	if err != nil {
		return "", &models.StoreError{Op: "save", Entity: "image", Err: err}
	}

	r.store.logger.WithField("image_id", img.ID).Debug("Image cached")
	return img.ID, nil
}

// Update applies the supplied fields and refreshes last_accessed. An empty
// update is a plain touch. Returns ErrImageNotFound for an unknown id.
func (r *ImageRepo) Update(ctx context.Context, id string, update models.ImageUpdate) error {
	db, err := r.store.ready(ctx)
	if err != nil {
		return err
	}

	set := []string{"last_accessed = ?"}
	args := []any{time.Now().UTC()}

	if update.RemotePath != nil {
		set = append(set, "remote_path = ?")
		args = append(args, nullString(*update.RemotePath))
	}
	if update.UploadStatus != nil {
		set = append(set, "upload_status = ?")
		args = append(args, string(*update.UploadStatus))
	}
	if update.UploadProgress != nil {
		set = append(set, "upload_progress = ?")
		args = append(args, *update.UploadProgress)
	}
	if update.IsCompressed != nil {
		set = append(set, "is_compressed = ?")
		args = append(args, *update.IsCompressed)
	}
	if update.CompressedSize != nil {
		set = append(set, "compressed_size = ?")
		args = append(args, *update.CompressedSize)
	}

	args = append(args, id)
	result, err := db.ExecContext(ctx,
		"UPDATE image_cache SET "+strings.Join(set, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return &models.StoreError{Op: "update", Entity: "image", ID: id, Err: err}
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return models.ErrImageNotFound
	}
	return nil
}

// Get returns the entry or ErrImageNotFound, refreshing last_accessed.
func (r *ImageRepo) Get(ctx context.Context, id string) (*models.ImageCache, error) {
	db, err := r.store.ready(ctx)
	if err != nil {
		return nil, err
	}

	row := db.QueryRowContext(ctx,
		"SELECT "+imageColumns+" FROM image_cache WHERE id = ?", id)
	img, err := scanImage(row)
	if err == sql.ErrNoRows {
		return nil, models.ErrImageNotFound
	}
	if err != nil {
		return nil, &models.StoreError{Op: "get", Entity: "image", ID: id, Err: err}
	}

	if err := r.touch(ctx, db, img.ID); err != nil {
		return nil, err
	}
	return img, nil
}

// GetByLocalPath answers the "already cached?" query. When the same path was
// cached more than once, the newest entry wins. Returns ErrImageNotFound
// when no entry matches; the hit's last_accessed is refreshed.
func (r *ImageRepo) GetByLocalPath(ctx context.Context, localPath string) (*models.ImageCache, error) {
	db, err := r.store.ready(ctx)
	if err != nil {
		return nil, err
	}

	row := db.QueryRowContext(ctx, `
        SELECT `+imageColumns+` FROM image_cache
        WHERE local_path = ?
        ORDER BY created_at DESC
        LIMIT 1
    `, localPath)
	img, err := scanImage(row)
	if err == sql.ErrNoRows {
		return nil, models.ErrImageNotFound
	}
	if err != nil {
		return nil, &models.StoreError{Op: "get_by_path", Entity: "image", Err: err}
	}

	if err := r.touch(ctx, db, img.ID); err != nil {
		return nil, err
	}
	return img, nil
}

// List returns cache entries ordered by created_at descending.
func (r *ImageRepo) List(ctx context.Context, filter models.ImageFilter) ([]*models.ImageCache, error) {
	db, err := r.store.ready(ctx)
	if err != nil {
		return nil, err
	}

	query := "SELECT " + imageColumns + " FROM image_cache"
	var args []any

	if filter.UploadStatus != nil {
		query += " WHERE upload_status = ?"
		args = append(args, string(*filter.UploadStatus))
	}
	query += " ORDER BY created_at DESC"

	if filter.Limit > 0 || filter.Offset > 0 {
		limit := filter.Limit
		if limit <= 0 {
			limit = -1
		}
		query += " LIMIT ? OFFSET ?"
		args = append(args, limit, filter.Offset)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &models.StoreError{Op: "list", Entity: "image", Err: err}
	}
	defer rows.Close()

	var images []*models.ImageCache
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan image row: %w", err)
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

// Delete removes a cache entry. Deleting an unknown id is not an error.
func (r *ImageRepo) Delete(ctx context.Context, id string) error {
	db, err := r.store.ready(ctx)
	if err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, "DELETE FROM image_cache WHERE id = ?", id); err != nil {
		return &models.StoreError{Op: "delete", Entity: "image", ID: id, Err: err}
	}
	return nil
}

func (r *ImageRepo) touch(ctx context.Context, db *sql.DB, id string) error {
	_, err := db.ExecContext(ctx,
		"UPDATE image_cache SET last_accessed = ? WHERE id = ?", time.Now().UTC(), id)
	if err != nil {
		return &models.StoreError{Op: "touch", Entity: "image", ID: id, Err: err}
	}
	return nil
}

func scanImage(sc scanner) (*models.ImageCache, error) {
	var img models.ImageCache
	var remotePath sql.NullString
	var compressedSize sql.NullInt64
	var uploadStatus string

	err := sc.Scan(&img.ID, &img.LocalPath, &remotePath, &img.OriginalName,
		&img.Size, &img.MimeType, &uploadStatus, &img.UploadProgress,
		&img.CreatedAt, &img.LastAccessed, &img.IsCompressed, &compressedSize)
	if err != nil {
		return nil, err
	}

	img.RemotePath = remotePath.String
	img.CompressedSize = compressedSize.Int64
	img.UploadStatus = models.UploadStatus(uploadStatus)
	return &img, nil
}

func nullInt64(n int64) sql.NullInt64 {
	return sql.NullInt64{Int64: n, Valid: n != 0}
}
