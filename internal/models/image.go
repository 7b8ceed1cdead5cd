package models

import (
	"time"
)

// UploadStatus is the remote upload lifecycle of a cached asset.
type UploadStatus string

const (
	UploadStatusPending   UploadStatus = "pending"
	UploadStatusUploading UploadStatus = "uploading"
	UploadStatusUploaded  UploadStatus = "uploaded"
	UploadStatusFailed    UploadStatus = "failed"
)

// ImageCache is a locally cached media asset. UploadProgress is meaningful
// only while UploadStatus is "uploading"; once "uploaded", RemotePath is set.
type ImageCache struct {
	ID             string       `json:"id"`
	LocalPath      string       `json:"local_path"`
	RemotePath     string       `json:"remote_path,omitempty"`
	OriginalName   string       `json:"original_name"`
	Size           int64        `json:"size"`
	MimeType       string       `json:"mime_type"`
	UploadStatus   UploadStatus `json:"upload_status"`
	UploadProgress int          `json:"upload_progress"`
	CreatedAt      time.Time    `json:"created_at"`
	LastAccessed   time.Time    `json:"last_accessed"`
	IsCompressed   bool         `json:"is_compressed"`
	CompressedSize int64        `json:"compressed_size,omitempty"`
}

// ImageUpdate describes a partial update. Nil fields are left unchanged.
// LastAccessed is refreshed by the repository on every update.
type ImageUpdate struct {
	RemotePath     *string
	UploadStatus   *UploadStatus
	UploadProgress *int
	IsCompressed   *bool
	CompressedSize *int64
}

// IsEmpty reports whether the update carries no field changes. An empty
// update still refreshes LastAccessed.
func (u ImageUpdate) IsEmpty() bool {
	return u.RemotePath == nil && u.UploadStatus == nil &&
		u.UploadProgress == nil && u.IsCompressed == nil && u.CompressedSize == nil
}

// ImageFilter narrows List results. Nil fields mean no constraint.
type ImageFilter struct {
	UploadStatus *UploadStatus
	Limit        int
	Offset       int
}

// Validate checks the fields required at creation time.
func (i *ImageCache) Validate() error {
	if i.LocalPath == "" {
		return &ValidationError{Entity: "image", Field: "local_path", Reason: "required"}
	}
	if i.OriginalName == "" {
		return &ValidationError{Entity: "image", Field: "original_name", Reason: "required"}
	}
	if i.MimeType == "" {
		return &ValidationError{Entity: "image", Field: "mime_type", Reason: "required"}
	}
	if i.Size < 0 {
		return &ValidationError{Entity: "image", Field: "size", Reason: "negative"}
	}
	switch i.UploadStatus {
	case UploadStatusPending, UploadStatusUploading, UploadStatusUploaded, UploadStatusFailed:
	default:
		return &ValidationError{Entity: "image", Field: "upload_status", Reason: "unknown value " + string(i.UploadStatus)}
	}
	if i.UploadProgress < 0 || i.UploadProgress > 100 {
		return &ValidationError{Entity: "image", Field: "upload_progress", Reason: "out of range"}
	}
	return nil
}
