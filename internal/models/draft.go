package models

import (
	"time"
)

// DraftStatus is the editorial lifecycle of a draft.
type DraftStatus string

const (
	DraftStatusDraft     DraftStatus = "draft"
	DraftStatusPublished DraftStatus = "published"
	DraftStatusArchived  DraftStatus = "archived"
)

// SyncStatus tracks how a local record relates to its remote counterpart.
type SyncStatus string

const (
	SyncStatusPending  SyncStatus = "pending"
	SyncStatusSynced   SyncStatus = "synced"
	SyncStatusConflict SyncStatus = "conflict"
	SyncStatusError    SyncStatus = "error"
)

// Draft is a unit of authored content tracked locally while it is being
// reconciled with the remote service.
type Draft struct {
	ID            string      `json:"id"`
	Title         string      `json:"title"`
	Content       string      `json:"content"`
	Excerpt       string      `json:"excerpt,omitempty"`
	Tags          []string    `json:"tags"`
	Categories    []string    `json:"categories"`
	FeaturedImage string      `json:"featured_image,omitempty"`
	Status        DraftStatus `json:"status"`
	IsLocal       bool        `json:"is_local"`
	LastModified  time.Time   `json:"last_modified"`
	CreatedAt     time.Time   `json:"created_at"`
	SyncStatus    SyncStatus  `json:"sync_status"`
	RemoteID      string      `json:"remote_id,omitempty"`
	// Version increases by exactly one per persisted update. It starts at 1
	// and is never reset while the record exists.
	Version int `json:"version"`
}

// DraftUpdate describes a partial update. Nil fields are left unchanged.
// LastModified and Version are managed by the repository, never by callers.
type DraftUpdate struct {
	Title         *string
	Content       *string
	Excerpt       *string
	Tags          *[]string
	Categories    *[]string
	FeaturedImage *string
	Status        *DraftStatus
	IsLocal       *bool
	SyncStatus    *SyncStatus
	RemoteID      *string
}

// IsEmpty reports whether the update carries no field changes.
func (u DraftUpdate) IsEmpty() bool {
	return u.Title == nil && u.Content == nil && u.Excerpt == nil &&
		u.Tags == nil && u.Categories == nil && u.FeaturedImage == nil &&
		u.Status == nil && u.IsLocal == nil && u.SyncStatus == nil &&
		u.RemoteID == nil
}

// DraftFilter narrows List results. Nil fields mean no constraint.
type DraftFilter struct {
	Status     *DraftStatus
	SyncStatus *SyncStatus
	Limit      int
	Offset     int
}

// Validate checks the fields required at creation time.
func (d *Draft) Validate() error {
	if d.Title == "" {
		return &ValidationError{Entity: "draft", Field: "title", Reason: "required"}
	}
	if d.Content == "" {
		return &ValidationError{Entity: "draft", Field: "content", Reason: "required"}
	}
	switch d.Status {
	case "", DraftStatusDraft, DraftStatusPublished, DraftStatusArchived:
	default:
		return &ValidationError{Entity: "draft", Field: "status", Reason: "unknown value " + string(d.Status)}
	}
	switch d.SyncStatus {
	case "", SyncStatusPending, SyncStatusSynced, SyncStatusConflict, SyncStatusError:
	default:
		return &ValidationError{Entity: "draft", Field: "sync_status", Reason: "unknown value " + string(d.SyncStatus)}
	}
	return nil
}
