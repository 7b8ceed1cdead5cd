package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/quillapp/quill/internal/models"
)

// DraftRepo provides CRUD and listing for content drafts.
type DraftRepo struct {
	store *Store
}

const draftColumns = `id, title, content, excerpt, tags, categories, featured_image,
    status, is_local, last_modified, created_at, sync_status, remote_id, version`

// Save persists a new draft and returns its allocated id. Title and content
// are required; status defaults to "draft" and sync status to "pending".
// Version starts at 1.
func (r *DraftRepo) Save(ctx context.Context, draft *models.Draft) (string, error) {
	db, err := r.store.ready(ctx)
	if err != nil {
		return "", err
	}

	if draft.Status == "" {
		draft.Status = models.DraftStatusDraft
	}
	if draft.SyncStatus == "" {
		draft.SyncStatus = models.SyncStatusPending
	}
	if draft.RemoteID == "" {
		draft.IsLocal = true
	}
	if err := draft.Validate(); err != nil {
		return "", err
	}

	now := time.Now().UTC()
	draft.ID = uuid.NewString()
	draft.CreatedAt = now
	draft.LastModified = now
	draft.Version = 1

	tags, err := marshalStringList(draft.Tags)
	if err != nil {
		return "", fmt.Errorf("encode tags: %w", err)
	}
	categories, err := marshalStringList(draft.Categories)
	if err != nil {
		return "", fmt.Errorf("encode categories: %w", err)
	}

	_, err = db.ExecContext(ctx, `
        INSERT INTO drafts (`+draftColumns+`)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `, draft.ID, draft.Title, draft.Content, nullString(draft.Excerpt),
		tags, categories, nullString(draft.FeaturedImage),
		string(draft.Status), draft.IsLocal, draft.LastModified, draft.CreatedAt,
		string(draft.SyncStatus), nullString(draft.RemoteID), draft.Version)
	if err != nil {
		return "", &models.StoreError{Op: "save", Entity: "draft", Err: err}
	}

	r.store.logger.WithField("draft_id", draft.ID).Debug("Draft saved")
	return draft.ID, nil
}

// Update applies the supplied fields, refreshes last_modified, and bumps
// version by exactly one. Unless the update sets a sync status explicitly,
// the draft is flagged pending again. Returns ErrDraftNotFound for an
// unknown id.
func (r *DraftRepo) Update(ctx context.Context, id string, update models.DraftUpdate) error {
	db, err := r.store.ready(ctx)
	if err != nil {
		return err
	}

	if update.IsEmpty() {
		return models.ErrEmptyUpdate
	}

	set := []string{"last_modified = ?", "version = version + 1"}
	args := []any{time.Now().UTC()}

	if update.Title != nil {
		set = append(set, "title = ?")
		args = append(args, *update.Title)
	}
	if update.Content != nil {
		set = append(set, "content = ?")
		args = append(args, *update.Content)
	}
	if update.Excerpt != nil {
		set = append(set, "excerpt = ?")
		args = append(args, nullString(*update.Excerpt))
	}
	if update.Tags != nil {
		tags, err := marshalStringList(*update.Tags)
		if err != nil {
			return fmt.Errorf("encode tags: %w", err)
		}
		set = append(set, "tags = ?")
		args = append(args, tags)
	}
	if update.Categories != nil {
		categories, err := marshalStringList(*update.Categories)
		if err != nil {
			return fmt.Errorf("encode categories: %w", err)
		}
		set = append(set, "categories = ?")
		args = append(args, categories)
	}
	if update.FeaturedImage != nil {
		set = append(set, "featured_image = ?")
		args = append(args, nullString(*update.FeaturedImage))
	}
	if update.Status != nil {
		set = append(set, "status = ?")
		args = append(args, string(*update.Status))
	}
	if update.IsLocal != nil {
		set = append(set, "is_local = ?")
		args = append(args, *update.IsLocal)
	}
	if update.SyncStatus != nil {
		set = append(set, "sync_status = ?")
		args = append(args, string(*update.SyncStatus))
	} else {
		set = append(set, "sync_status = ?")
		args = append(args, string(models.SyncStatusPending))
	}
	if update.RemoteID != nil {
		set = append(set, "remote_id = ?")
		args = append(args, nullString(*update.RemoteID))
	}

	args = append(args, id)
	result, err := db.ExecContext(ctx,
		"UPDATE drafts SET "+strings.Join(set, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return &models.StoreError{Op: "update", Entity: "draft", ID: id, Err: err}
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return models.ErrDraftNotFound
	}

	r.store.logger.WithField("draft_id", id).Debug("Draft updated")
	return nil
}

// Get returns the draft or ErrDraftNotFound.
func (r *DraftRepo) Get(ctx context.Context, id string) (*models.Draft, error) {
	db, err := r.store.ready(ctx)
	if err != nil {
		return nil, err
	}

	row := db.QueryRowContext(ctx,
		"SELECT "+draftColumns+" FROM drafts WHERE id = ?", id)
	draft, err := scanDraft(row)
	if err == sql.ErrNoRows {
		return nil, models.ErrDraftNotFound
	}
	if err != nil {
		return nil, &models.StoreError{Op: "get", Entity: "draft", ID: id, Err: err}
	}
	return draft, nil
}

// List returns drafts ordered by last_modified descending. Filters combine
// with AND; absent filters place no constraint.
func (r *DraftRepo) List(ctx context.Context, filter models.DraftFilter) ([]*models.Draft, error) {
	db, err := r.store.ready(ctx)
	if err != nil {
		return nil, err
	}

	query := "SELECT " + draftColumns + " FROM drafts"
	var where []string
	var args []any

	if filter.Status != nil {
		where = append(where, "status = ?")
		args = append(args, string(*filter.Status))
	}
	if filter.SyncStatus != nil {
		where = append(where, "sync_status = ?")
		args = append(args, string(*filter.SyncStatus))
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY last_modified DESC"

	if filter.Limit > 0 || filter.Offset > 0 {
		limit := filter.Limit
		if limit <= 0 {
			limit = -1 // no limit, offset only
		}
		query += " LIMIT ? OFFSET ?"
		args = append(args, limit, filter.Offset)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &models.StoreError{Op: "list", Entity: "draft", Err: err}
	}
	defer rows.Close()

	var drafts []*models.Draft
	for rows.Next() {
		draft, err := scanDraft(rows)
		if err != nil {
			return nil, fmt.Errorf("scan draft row: %w", err)
		}
		drafts = append(drafts, draft)
	}
	return drafts, rows.Err()
}

// Delete removes a draft. Deleting an unknown id is not an error.
func (r *DraftRepo) Delete(ctx context.Context, id string) error {
	db, err := r.store.ready(ctx)
	if err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, "DELETE FROM drafts WHERE id = ?", id); err != nil {
		return &models.StoreError{Op: "delete", Entity: "draft", ID: id, Err: err}
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanDraft(sc scanner) (*models.Draft, error) {
	var d models.Draft
	var excerpt, featuredImage, remoteID sql.NullString
	var tags, categories string
	var status, syncStatus string

	err := sc.Scan(&d.ID, &d.Title, &d.Content, &excerpt, &tags, &categories,
		&featuredImage, &status, &d.IsLocal, &d.LastModified, &d.CreatedAt,
		&syncStatus, &remoteID, &d.Version)
	if err != nil {
		return nil, err
	}

	d.Excerpt = excerpt.String
	d.FeaturedImage = featuredImage.String
	d.RemoteID = remoteID.String
	d.Status = models.DraftStatus(status)
	d.SyncStatus = models.SyncStatus(syncStatus)

	if d.Tags, err = unmarshalStringList(tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	if d.Categories, err = unmarshalStringList(categories); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	return &d, nil
}

// marshalStringList encodes an ordered label list as JSON, preserving order
// and duplicates exactly.
func marshalStringList(list []string) (string, error) {
	if list == nil {
		list = []string{}
	}
	data, err := json.Marshal(list)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func unmarshalStringList(data string) ([]string, error) {
	if data == "" {
		return []string{}, nil
	}
	var list []string
	if err := json.Unmarshal([]byte(data), &list); err != nil {
		return nil, err
	}
	if list == nil {
		list = []string{}
	}
	return list, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
