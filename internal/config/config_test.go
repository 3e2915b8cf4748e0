package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_ReturnsValidConfiguration(t *testing.T) {
	cfg := Default()

	assert.Equal(t, []string{"**/*.rs"}, cfg.Paths.Include)
	assert.Contains(t, cfg.Paths.Ignore, "target/**")
	assert.Equal(t, 8, cfg.Index.Workers)
	assert.Equal(t, 4<<20, cfg.Index.MaxFileBytes)
	assert.Equal(t, 1024, cfg.Index.CacheSize)
	assert.Equal(t, 100*time.Millisecond, cfg.Debounce())

	assert.NoError(t, Validate(cfg))

	opts := cfg.IndexOptions()
	assert.Equal(t, cfg.Paths.Include, opts.Include)
	assert.Equal(t, cfg.Index.CacheSize, opts.CacheSize)
}

func TestLoad_UsesDefaultsWhenNoConfigFile(t *testing.T) {
	cfg, err := LoadConfigFromDir(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_ReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, filepath.Join(dir, ".docparse.yaml"), `
paths:
  include:
    - "src/**/*.rs"
index:
  workers: 2
`)

	cfg, err := LoadConfigFromDir(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{"src/**/*.rs"}, cfg.Paths.Include)
	assert.Equal(t, 2, cfg.Index.Workers)
	// Unset keys keep their defaults
	assert.Equal(t, Default().Paths.Ignore, cfg.Paths.Ignore)
	assert.Equal(t, 1024, cfg.Index.CacheSize)
}

func TestLoad_ExplicitFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	writeConfig(t, path, "watch:\n  debounce_ms: 250\n")

	cfg, err := NewLoader(t.TempDir(), path).Load()
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, cfg.Debounce())

	_, err = NewLoader(t.TempDir(), filepath.Join(t.TempDir(), "missing.yaml")).Load()
	assert.Error(t, err)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, filepath.Join(dir, ".docparse.yaml"), "index:\n  workers: 2\n")
	t.Setenv("DOCPARSE_INDEX_WORKERS", "5")
	t.Setenv("DOCPARSE_WATCH_DEBOUNCE_MS", "10")

	cfg, err := LoadConfigFromDir(dir)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Index.Workers)
	assert.Equal(t, 10, cfg.Watch.DebounceMs)
}

func TestLoad_MalformedYAML(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, filepath.Join(dir, ".docparse.yaml"), "index: [unclosed\n")

	_, err := LoadConfigFromDir(dir)
	assert.Error(t, err)
}

func TestLoad_InvalidValues(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, filepath.Join(dir, ".docparse.yaml"), "index:\n  workers: 0\n")

	_, err := LoadConfigFromDir(dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidWorkers))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   []error
	}{
		{
			name:   "bad glob",
			modify: func(c *Config) { c.Paths.Ignore = []string{"[abc"} },
			want:   []error{ErrInvalidPattern},
		},
		{
			name:   "no include",
			modify: func(c *Config) { c.Paths.Include = nil },
			want:   []error{ErrEmptyInclude},
		},
		{
			name:   "negative limit",
			modify: func(c *Config) { c.Index.MaxFileBytes = -1 },
			want:   []error{ErrInvalidLimit},
		},
		{
			name:   "zero cache",
			modify: func(c *Config) { c.Index.CacheSize = 0 },
			want:   []error{ErrInvalidCacheSize},
		},
		{
			name: "several problems",
			modify: func(c *Config) {
				c.Index.Workers = -3
				c.Watch.DebounceMs = -1
			},
			want: []error{ErrInvalidWorkers, ErrInvalidDebounce},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			err := Validate(cfg)
			require.Error(t, err)
			for _, want := range tt.want {
				assert.ErrorIs(t, err, want)
			}
		})
	}
}

func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}
