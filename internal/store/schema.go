package store

import (
	"context"
	"database/sql"
	"fmt"
)

// CurrentSchemaVersion for migrations.
const CurrentSchemaVersion = 1

// schema creates the four relations and the indexes backing the list and
// dequeue queries. Tag and category lists live in JSON TEXT columns; the
// round-trip contract is exact element order, which json preserves.
const schema = `
CREATE TABLE IF NOT EXISTS drafts (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    content TEXT NOT NULL,
    excerpt TEXT,
    tags TEXT NOT NULL DEFAULT '[]',
    categories TEXT NOT NULL DEFAULT '[]',
    featured_image TEXT,
    status TEXT NOT NULL DEFAULT 'draft',
    is_local INTEGER NOT NULL DEFAULT 1,
    last_modified TIMESTAMP NOT NULL,
    created_at TIMESTAMP NOT NULL,
    sync_status TEXT NOT NULL DEFAULT 'pending',
    remote_id TEXT,
    version INTEGER NOT NULL DEFAULT 1
);

CREATE INDEX IF NOT EXISTS idx_drafts_status ON drafts(status);
CREATE INDEX IF NOT EXISTS idx_drafts_sync_status ON drafts(sync_status);
CREATE INDEX IF NOT EXISTS idx_drafts_last_modified ON drafts(last_modified);

CREATE TABLE IF NOT EXISTS image_cache (
    id TEXT PRIMARY KEY,
    local_path TEXT NOT NULL,
    remote_path TEXT,
    original_name TEXT NOT NULL,
    size INTEGER NOT NULL DEFAULT 0,
    mime_type TEXT NOT NULL,
    upload_status TEXT NOT NULL DEFAULT 'pending',
    upload_progress INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL,
    last_accessed TIMESTAMP NOT NULL,
    is_compressed INTEGER NOT NULL DEFAULT 0,
    compressed_size INTEGER
);

CREATE INDEX IF NOT EXISTS idx_image_cache_local_path ON image_cache(local_path);
CREATE INDEX IF NOT EXISTS idx_image_cache_upload_status ON image_cache(upload_status);
CREATE INDEX IF NOT EXISTS idx_image_cache_last_accessed ON image_cache(last_accessed);

CREATE TABLE IF NOT EXISTS sync_status (
    id TEXT PRIMARY KEY,
    entity_type TEXT NOT NULL,
    entity_id TEXT NOT NULL,
    operation TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'pending',
    retry_count INTEGER NOT NULL DEFAULT 0,
    last_attempt TIMESTAMP,
    error_message TEXT,
    priority INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sync_status_queue ON sync_status(status, priority DESC, created_at ASC);

CREATE TABLE IF NOT EXISTS user_config (
    id TEXT PRIMARY KEY,
    key TEXT NOT NULL UNIQUE,
    value TEXT NOT NULL,
    type TEXT NOT NULL,
    category TEXT NOT NULL DEFAULT 'general',
    last_modified TIMESTAMP NOT NULL,
    sync_status TEXT NOT NULL DEFAULT 'local'
);

CREATE INDEX IF NOT EXISTS idx_user_config_category ON user_config(category);

CREATE TABLE IF NOT EXISTS schema_info (
    version INTEGER PRIMARY KEY
);
`

// applySchema creates tables and indexes idempotently.
func applySchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	if _, err := db.ExecContext(ctx,
		"INSERT OR IGNORE INTO schema_info (version) VALUES (?)", CurrentSchemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}

	return nil
}
