package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config holds all application configuration.
type Config struct {
	// Storage paths
	Storage StorageConfig `json:"storage" mapstructure:"storage"`

	// Sync queue behavior
	Queue QueueConfig `json:"queue" mapstructure:"queue"`

	// Retention cleanup
	Retention RetentionConfig `json:"retention" mapstructure:"retention"`

	// Logging
	Log LogConfig `json:"log" mapstructure:"log"`
}

// StorageConfig for local file paths.
type StorageConfig struct {
	DataDir      string `json:"data_dir" mapstructure:"data_dir"`           // Base directory for all data
	DatabaseFile string `json:"database_file" mapstructure:"database_file"` // SQLite database path
	ExportDir    string `json:"export_dir" mapstructure:"export_dir"`       // Default snapshot location
}

// QueueConfig for sync queue draining.
type QueueConfig struct {
	BatchSize     int           `json:"batch_size" mapstructure:"batch_size"`         // Tasks per dequeue
	DrainInterval time.Duration `json:"drain_interval" mapstructure:"drain_interval"` // Syncer loop period
}

// RetentionConfig for periodic cleanup.
type RetentionConfig struct {
	MaxAge   time.Duration `json:"max_age" mapstructure:"max_age"`     // Age before terminal tasks and stale uploads are purged
	Interval time.Duration `json:"interval" mapstructure:"interval"`   // Janitor period
	Disabled bool          `json:"disabled" mapstructure:"disabled"`   // Skip automatic cleanup
}

// LogConfig for logging behavior.
type LogConfig struct {
	Level      string `json:"level" mapstructure:"level"`             // debug, info, warn, error
	Format     string `json:"format" mapstructure:"format"`           // text, json
	File       string `json:"file" mapstructure:"file"`               // Log file path (empty = stdout)
	MaxSize    int    `json:"max_size" mapstructure:"max_size"`       // Max log file size in MB
	MaxBackups int    `json:"max_backups" mapstructure:"max_backups"` // Max number of old logs
	MaxAge     int    `json:"max_age" mapstructure:"max_age"`         // Max age in days
}

// DefaultConfig returns config with sensible defaults.
func DefaultConfig() *Config {
	dataDir := ".quill"

	return &Config{
		Storage: StorageConfig{
			DataDir:      dataDir,
			DatabaseFile: filepath.Join(dataDir, "quill.db"),
			ExportDir:    filepath.Join(dataDir, "exports"),
		},
		Queue: QueueConfig{
			BatchSize:     20,
			DrainInterval: 30 * time.Second,
		},
		Retention: RetentionConfig{
			MaxAge:   30 * 24 * time.Hour,
			Interval: time.Hour,
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "text",
			File:       "",
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     7,
		},
	}
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	if c.Storage.DatabaseFile == "" {
		return errors.New("storage.database_file is required")
	}

	if c.Queue.BatchSize <= 0 {
		return errors.New("queue.batch_size must be positive")
	}

	if c.Queue.DrainInterval <= 0 {
		return errors.New("queue.drain_interval must be positive")
	}

	if c.Retention.MaxAge <= 0 {
		return errors.New("retention.max_age must be positive")
	}

	if c.Retention.Interval <= 0 {
		return errors.New("retention.interval must be positive")
	}

	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[c.Log.Level] {
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[c.Log.Format] {
		return fmt.Errorf("invalid log format: %s", c.Log.Format)
	}

	return nil
}

// EnsureDirectories creates required directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Storage.DataDir,
		filepath.Dir(c.Storage.DatabaseFile),
		c.Storage.ExportDir,
	}

	if c.Log.File != "" {
		dirs = append(dirs, filepath.Dir(c.Log.File))
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	return nil
}
