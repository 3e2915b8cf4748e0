package index

import (
	"context"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterMatch(t *testing.T) {
	opts := DefaultOptions()
	f, err := NewFilter("/work", opts.Include, opts.Ignore)
	require.NoError(t, err)

	tests := []struct {
		path string
		want bool
	}{
		{"/work/lib.rs", true},
		{"/work/src/a/b.rs", true},
		{"src/main.rs", true},
		{"/work/README.md", false},
		{"/work/target/debug/build.rs", false},
		{"/work/.git/hooks/x.rs", false},
		{"/elsewhere/lib.rs", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, f.Match(tt.path))
		})
	}

	assert.True(t, f.SkipDir("/work/target"))
	assert.True(t, f.SkipDir("/work/node_modules"))
	assert.False(t, f.SkipDir("/work/src"))
	assert.False(t, f.SkipDir("/work"))
}

func TestFilterBadPattern(t *testing.T) {
	_, err := NewFilter("/work", []string{"[unclosed"}, nil)
	assert.Error(t, err)
}

func TestFilterDiscover(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "lib.rs", "")
	writeFile(t, root, "src/a.rs", "")
	writeFile(t, root, "gen/skip.rs", "")
	writeFile(t, root, "notes.txt", "")

	f, err := NewFilter(root, []string{"**/*.rs"}, []string{"gen/**"})
	require.NoError(t, err)

	files, err := f.Discover(context.Background())
	require.NoError(t, err)
	sort.Strings(files)

	assert.Equal(t, []string{
		filepath.Join(root, "lib.rs"),
		filepath.Join(root, "src", "a.rs"),
	}, files)
}
