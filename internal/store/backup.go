package store

import (
	"context"
	"fmt"
	"time"

	"github.com/quillapp/quill/internal/models"
)

// ExportAll produces a snapshot of every draft, image cache row, and config
// entry. All three tables are read inside one transaction so the snapshot is
// a single logical read.
func (s *Store) ExportAll(ctx context.Context) (*models.Snapshot, error) {
	db, err := s.ready(ctx)
	if err != nil {
		return nil, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	snapshot := &models.Snapshot{
		Version:    models.SnapshotVersion,
		ExportedAt: time.Now().UTC(),
	}

	rows, err := tx.QueryContext(ctx,
		"SELECT "+draftColumns+" FROM drafts ORDER BY created_at")
	if err != nil {
		return nil, fmt.Errorf("export drafts: %w", err)
	}
	for rows.Next() {
		draft, err := scanDraft(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan draft row: %w", err)
		}
		snapshot.Drafts = append(snapshot.Drafts, *draft)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate drafts: %w", err)
	}
	rows.Close()

	rows, err = tx.QueryContext(ctx,
		"SELECT "+imageColumns+" FROM image_cache ORDER BY created_at")
	if err != nil {
		return nil, fmt.Errorf("export images: %w", err)
	}
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan image row: %w", err)
		}
		snapshot.Images = append(snapshot.Images, *img)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate images: %w", err)
	}
	rows.Close()

	rows, err = tx.QueryContext(ctx,
		"SELECT "+configColumns+" FROM user_config ORDER BY key")
	if err != nil {
		return nil, fmt.Errorf("export configs: %w", err)
	}
	for rows.Next() {
		entry, err := scanConfigEntry(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan config row: %w", err)
		}
		snapshot.Configs = append(snapshot.Configs, *entry)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate configs: %w", err)
	}
	rows.Close()

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit export: %w", err)
	}

	drafts, images, configs := snapshot.Counts()
	s.logger.WithFields(map[string]interface{}{
		"drafts":  drafts,
		"images":  images,
		"configs": configs,
	}).Info("Dataset exported")
	return snapshot, nil
}

// ImportAll applies a snapshot inside one all-or-nothing transaction:
// drafts, then images, then configs. Any invalid or unstorable entity rolls
// the whole import back. Rows sharing an id (or config key) with existing
// data are replaced; timestamps and versions are imported verbatim so a
// restore reproduces the exported dataset field for field. A second import
// started while one is in flight is rejected with ErrImportInFlight.
func (s *Store) ImportAll(ctx context.Context, snapshot *models.Snapshot) error {
	if !s.importing.CompareAndSwap(false, true) {
		return models.ErrImportInFlight
	}
	defer s.importing.Store(false)

	db, err := s.ready(ctx)
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i := range snapshot.Drafts {
		draft := &snapshot.Drafts[i]
		if draft.ID == "" {
			return &models.ValidationError{Entity: "draft", Field: "id", Reason: "required"}
		}
		if err := draft.Validate(); err != nil {
			return fmt.Errorf("import draft %s: %w", draft.ID, err)
		}

		tags, err := marshalStringList(draft.Tags)
		if err != nil {
			return fmt.Errorf("encode tags for draft %s: %w", draft.ID, err)
		}
		categories, err := marshalStringList(draft.Categories)
		if err != nil {
			return fmt.Errorf("encode categories for draft %s: %w", draft.ID, err)
		}

		_, err = tx.ExecContext(ctx, `
            INSERT OR REPLACE INTO drafts (`+draftColumns+`)
            VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        `, draft.ID, draft.Title, draft.Content, nullString(draft.Excerpt),
			tags, categories, nullString(draft.FeaturedImage),
			string(draft.Status), draft.IsLocal, draft.LastModified, draft.CreatedAt,
			string(draft.SyncStatus), nullString(draft.RemoteID), draft.Version)
		if err != nil {
			return fmt.Errorf("import draft %s: %w", draft.ID, err)
		}
	}

	for i := range snapshot.Images {
		img := &snapshot.Images[i]
		if img.ID == "" {
			return &models.ValidationError{Entity: "image", Field: "id", Reason: "required"}
		}
		if err := img.Validate(); err != nil {
			return fmt.Errorf("import image %s: %w", img.ID, err)
		}

		_, err = tx.ExecContext(ctx, `
            INSERT OR REPLACE INTO image_cache (`+imageColumns+`)
            VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        `, img.ID, img.LocalPath, nullString(img.RemotePath), img.OriginalName,
			img.Size, img.MimeType, string(img.UploadStatus), img.UploadProgress,
			img.CreatedAt, img.LastAccessed, img.IsCompressed, nullInt64(img.CompressedSize))
		if err != nil {
			return fmt.Errorf("import image %s: %w", img.ID, err)
		}
	}

	for i := range snapshot.Configs {
		entry := &snapshot.Configs[i]
		if err := entry.Validate(); err != nil {
			return fmt.Errorf("import config %q: %w", entry.Key, err)
		}
		if entry.SyncStatus == "" {
			entry.SyncStatus = models.ConfigLocal
		}

		_, err = tx.ExecContext(ctx, `
            INSERT OR REPLACE INTO user_config (`+configColumns+`)
            VALUES (?, ?, ?, ?, ?, ?, ?)
        `, entry.ID, entry.Key, entry.Value, string(entry.Type), entry.Category,
			entry.LastModified, string(entry.SyncStatus))
		if err != nil {
			return fmt.Errorf("import config %q: %w", entry.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}

	drafts, images, configs := snapshot.Counts()
	s.logger.WithFields(map[string]interface{}{
		"drafts":  drafts,
		"images":  images,
		"configs": configs,
	}).Info("Dataset imported")
	return nil
}
