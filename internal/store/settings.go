package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/quillapp/quill/internal/models"
)

// SettingsRepo stores typed key/value settings, last-write-wins by key.
type SettingsRepo struct {
	store *Store
}

const configColumns = `id, key, value, type, category, last_modified, sync_status`

// Set upserts a setting. The stored type is inferred from the runtime shape
// of value: string, number, boolean, anything else serialized as json.
// Writing an existing key overwrites value, type, and category, and marks
// the entry local again.
func (r *SettingsRepo) Set(ctx context.Context, key string, value any, category string) error {
	db, err := r.store.ready(ctx)
	if err != nil {
		return err
	}

	if key == "" {
		return &models.ValidationError{Entity: "config", Field: "key", Reason: "required"}
	}
	if category == "" {
		category = "general"
	}

	encoded, valueType, err := models.EncodeConfigValue(value)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
        INSERT INTO user_config (id, key, value, type, category, last_modified, sync_status)
        VALUES (?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(key) DO UPDATE SET
            value = excluded.value,
            type = excluded.type,
            category = excluded.category,
            last_modified = excluded.last_modified,
            sync_status = excluded.sync_status
    `, uuid.NewString(), key, encoded, string(valueType), category,
		time.Now().UTC(), string(models.ConfigLocal))
	if err != nil {
		return &models.StoreError{Op: "set", Entity: "config", ID: key, Err: err}
	}

	r.store.logger.WithField("key", key).Debug("Config set")
	return nil
}

// Get returns the deserialized value for key, or ErrConfigNotFound. Numbers
// come back as float64, json values as whatever encoding/json produces.
func (r *SettingsRepo) Get(ctx context.Context, key string) (any, error) {
	entry, err := r.GetEntry(ctx, key)
	if err != nil {
		return nil, err
	}
	return entry.Decode()
}

// GetOrDefault returns def when the key is absent.
func (r *SettingsRepo) GetOrDefault(ctx context.Context, key string, def any) (any, error) {
	value, err := r.Get(ctx, key)
	if errors.Is(err, models.ErrConfigNotFound) {
		return def, nil
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

// GetEntry returns the raw stored entry for key.
func (r *SettingsRepo) GetEntry(ctx context.Context, key string) (*models.ConfigEntry, error) {
	db, err := r.store.ready(ctx)
	if err != nil {
		return nil, err
	}

	row := db.QueryRowContext(ctx,
		"SELECT "+configColumns+" FROM user_config WHERE key = ?", key)
	entry, err := scanConfigEntry(row)
	if err == sql.ErrNoRows {
		return nil, models.ErrConfigNotFound
	}
	if err != nil {
		return nil, &models.StoreError{Op: "get", Entity: "config", ID: key, Err: err}
	}
	return entry, nil
}

// ListAll returns all entries, optionally filtered by category, ordered by
// category then key.
func (r *SettingsRepo) ListAll(ctx context.Context, category string) ([]*models.ConfigEntry, error) {
	db, err := r.store.ready(ctx)
	if err != nil {
		return nil, err
	}

	query := "SELECT " + configColumns + " FROM user_config"
	var args []any
	if category != "" {
		query += " WHERE category = ?"
		args = append(args, category)
	}
	query += " ORDER BY category, key"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &models.StoreError{Op: "list", Entity: "config", Err: err}
	}
	defer rows.Close()

	var entries []*models.ConfigEntry
	for rows.Next() {
		entry, err := scanConfigEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan config row: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Delete removes a setting. Deleting an unknown key is not an error.
func (r *SettingsRepo) Delete(ctx context.Context, key string) error {
	db, err := r.store.ready(ctx)
	if err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, "DELETE FROM user_config WHERE key = ?", key); err != nil {
		return &models.StoreError{Op: "delete", Entity: "config", ID: key, Err: err}
	}
	return nil
}

func scanConfigEntry(sc scanner) (*models.ConfigEntry, error) {
	var e models.ConfigEntry
	var valueType, syncStatus string

	err := sc.Scan(&e.ID, &e.Key, &e.Value, &valueType, &e.Category,
		&e.LastModified, &syncStatus)
	if err != nil {
		return nil, err
	}

	e.Type = models.ValueType(valueType)
	e.SyncStatus = models.ConfigSyncStatus(syncStatus)
	return &e, nil
}
