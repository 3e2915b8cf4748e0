package index

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// compiledPattern holds both the pattern string and compiled glob
type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

// Filter decides which files under a root are indexed. Patterns are matched
// against slash separated paths relative to the root.
type Filter struct {
	rootDir string
	include []compiledPattern
	ignore  []compiledPattern
}

// NewFilter compiles the include and ignore patterns. Relative paths given to
// Match and SkipDir are taken as relative to rootDir.
func NewFilter(rootDir string, include, ignore []string) (*Filter, error) {
	abs, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, err
	}
	f := &Filter{rootDir: abs}

	if f.include, err = compilePatterns(include); err != nil {
		return nil, err
	}
	if f.ignore, err = compilePatterns(ignore); err != nil {
		return nil, err
	}
	return f, nil
}

func compilePatterns(patterns []string) ([]compiledPattern, error) {
	compiled := make([]compiledPattern, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, compiledPattern{pattern: pattern, glob: g})
	}
	return compiled, nil
}

// Match reports whether the file at path should be indexed
func (f *Filter) Match(path string) bool {
	rel, ok := f.relative(path)
	if !ok || rel == "." {
		return false
	}
	if f.shouldIgnore(rel) {
		return false
	}
	return matchesAnyPattern(rel, f.include)
}

// SkipDir reports whether the directory at path is excluded entirely
func (f *Filter) SkipDir(path string) bool {
	rel, ok := f.relative(path)
	if !ok {
		return true
	}
	if rel == "." {
		return false
	}
	return f.shouldIgnore(rel)
}

// Discover walks the root and returns the files that match
func (f *Filter) Discover(ctx context.Context) ([]string, error) {
	var files []string
	err := filepath.WalkDir(f.rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Skip unreadable entries
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if d.IsDir() {
			if f.SkipDir(path) {
				return filepath.SkipDir
			}
			return nil
		}

		if d.Type().IsRegular() && f.Match(path) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// relative returns path relative to the root with forward slashes
func (f *Filter) relative(path string) (string, bool) {
	if !filepath.IsAbs(path) {
		return filepath.ToSlash(filepath.Clean(path)), true
	}
	rel, err := filepath.Rel(f.rootDir, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// shouldIgnore checks if a path matches any ignore pattern.
func (f *Filter) shouldIgnore(relPath string) bool {
	if matchesAnyPattern(relPath, f.ignore) {
		return true
	}

	// A directory matches its pattern with the /** suffix, so "target"
	// is ignored by "target/**"
	return matchesAnyPattern(relPath+"/**", f.ignore)
}

// matchesAnyPattern checks if a path matches any of the given patterns.
func matchesAnyPattern(path string, patterns []compiledPattern) bool {
	for _, cp := range patterns {
		if cp.glob.Match(path) {
			return true
		}
	}

	// Files in the root have no slash; let "**/*.rs" match "lib.rs" as well
	// as "src/lib.rs".
	if !strings.Contains(path, "/") {
		for _, cp := range patterns {
			if !strings.HasPrefix(cp.pattern, "**/") {
				continue
			}
			simplified, err := glob.Compile(strings.TrimPrefix(cp.pattern, "**/"), '/')
			if err == nil && simplified.Match(path) {
				return true
			}
		}
	}

	return false
}
