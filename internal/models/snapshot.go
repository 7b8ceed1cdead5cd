package models

import (
	"time"
)

// SnapshotVersion identifies the export document format.
const SnapshotVersion = 1

// Snapshot is a whole-dataset export: every draft, cached image, and config
// entry at one logical point in time. Sync tasks are transient delivery
// state and are deliberately excluded.
type Snapshot struct {
	Version    int           `json:"version"`
	ExportedAt time.Time     `json:"exported_at"`
	Drafts     []Draft       `json:"drafts"`
	Images     []ImageCache  `json:"images"`
	Configs    []ConfigEntry `json:"configs"`
}

// Counts returns the entity counts carried by the snapshot.
func (s *Snapshot) Counts() (drafts, images, configs int) {
	return len(s.Drafts), len(s.Images), len(s.Configs)
}
