package config

import (
	"time"

	"github.com/vitiral/rag/internal/index"
)

// Config is the complete docparse configuration. It is loaded from
// .docparse.yaml in the workspace root with DOCPARSE_* environment overrides.
type Config struct {
	Paths PathsConfig `yaml:"paths" mapstructure:"paths"`
	Index IndexConfig `yaml:"index" mapstructure:"index"`
	Watch WatchConfig `yaml:"watch" mapstructure:"watch"`
}

// PathsConfig defines which files to index and which to ignore.
type PathsConfig struct {
	Include []string `yaml:"include" mapstructure:"include"` // glob patterns for source files
	Ignore  []string `yaml:"ignore" mapstructure:"ignore"`   // glob patterns to ignore
}

// IndexConfig tunes workspace indexing.
type IndexConfig struct {
	Workers      int `yaml:"workers" mapstructure:"workers"`               // concurrent file extractions
	MaxFileBytes int `yaml:"max_file_bytes" mapstructure:"max_file_bytes"` // 0 disables the limit
	CacheSize    int `yaml:"cache_size" mapstructure:"cache_size"`         // extraction cache entries
}

// WatchConfig tunes the file watcher.
type WatchConfig struct {
	DebounceMs int `yaml:"debounce_ms" mapstructure:"debounce_ms"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	opts := index.DefaultOptions()
	return &Config{
		Paths: PathsConfig{
			Include: opts.Include,
			Ignore:  opts.Ignore,
		},
		Index: IndexConfig{
			Workers:      opts.Workers,
			MaxFileBytes: opts.MaxFileBytes,
			CacheSize:    opts.CacheSize,
		},
		Watch: WatchConfig{
			DebounceMs: 100,
		},
	}
}

// IndexOptions converts the configuration for index.New
func (c *Config) IndexOptions() index.Options {
	return index.Options{
		Include:      c.Paths.Include,
		Ignore:       c.Paths.Ignore,
		Workers:      c.Index.Workers,
		MaxFileBytes: c.Index.MaxFileBytes,
		CacheSize:    c.Index.CacheSize,
	}
}

// Debounce returns the watcher debounce interval
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Watch.DebounceMs) * time.Millisecond
}
