package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader handles configuration loading from file and environment.
type Loader struct {
	configPath string
	envPrefix  string
}

// NewLoader creates a config loader. An empty path searches the default
// locations instead.
func NewLoader(configPath string) *Loader {
	return &Loader{
		configPath: configPath,
		envPrefix:  "QUILL",
	}
}

// Load reads configuration from file and environment, on top of defaults.
// Environment variables use the QUILL_ prefix with underscores, for example
// QUILL_LOG_LEVEL=debug.
func (l *Loader) Load() (*Config, error) {
	v := viper.New()
	l.setDefaults(v)

	v.SetEnvPrefix(l.envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if l.configPath != "" {
		v.SetConfigFile(l.configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", l.configPath, err)
		}
	} else {
		v.SetConfigName("config")
		for _, dir := range l.defaultDirs() {
			v.AddConfigPath(dir)
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("load config file: %w", err)
			}
			// No file is fine, defaults plus env apply.
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// setDefaults registers every key with viper so environment overrides
// resolve even when no config file supplies the key.
func (l *Loader) setDefaults(v *viper.Viper) {
	def := DefaultConfig()

	v.SetDefault("storage.data_dir", def.Storage.DataDir)
	v.SetDefault("storage.database_file", def.Storage.DatabaseFile)
	v.SetDefault("storage.export_dir", def.Storage.ExportDir)

	v.SetDefault("queue.batch_size", def.Queue.BatchSize)
	v.SetDefault("queue.drain_interval", def.Queue.DrainInterval)

	v.SetDefault("retention.max_age", def.Retention.MaxAge)
	v.SetDefault("retention.interval", def.Retention.Interval)
	v.SetDefault("retention.disabled", def.Retention.Disabled)

	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.format", def.Log.Format)
	v.SetDefault("log.file", def.Log.File)
	v.SetDefault("log.max_size", def.Log.MaxSize)
	v.SetDefault("log.max_backups", def.Log.MaxBackups)
	v.SetDefault("log.max_age", def.Log.MaxAge)
}

// defaultDirs returns default config file locations, most specific first.
func (l *Loader) defaultDirs() []string {
	dirs := []string{".", ".quill"}

	if homeDir, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs,
			filepath.Join(homeDir, ".config", "quill"),
			filepath.Join(homeDir, ".quill"),
		)
	}

	return dirs
}
