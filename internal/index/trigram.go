package index

import (
	"regexp"
	"strings"
	"sync"
)

// TrigramIndex provides text search across the workspace. Matching runs on
// neutralized text so names that only appear in comments are not reported.
type TrigramIndex struct {
	mu sync.RWMutex

	// Inverted index: trigram -> set of file paths
	trigrams map[string]map[string]struct{}

	// Neutralized content, searched and used for trigrams
	white map[string]string

	// Original content, used for the line text of a match
	raw map[string]string
}

// NewTrigramIndex creates a new trigram index
func NewTrigramIndex() *TrigramIndex {
	return &TrigramIndex{
		trigrams: make(map[string]map[string]struct{}),
		white:    make(map[string]string),
		raw:      make(map[string]string),
	}
}

// AddFile indexes a file. white must be the neutralized form of raw.
func (t *TrigramIndex) AddFile(path, raw, white string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.removeLocked(path)
	t.raw[path] = raw
	t.white[path] = white

	for i := 0; i <= len(white)-3; i++ {
		tri := white[i : i+3]
		if t.trigrams[tri] == nil {
			t.trigrams[tri] = make(map[string]struct{})
		}
		t.trigrams[tri][path] = struct{}{}
	}
}

// RemoveFile removes a file from the index
func (t *TrigramIndex) RemoveFile(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.removeLocked(path)
}

func (t *TrigramIndex) removeLocked(path string) {
	white, ok := t.white[path]
	if !ok {
		return
	}

	delete(t.white, path)
	delete(t.raw, path)

	for i := 0; i <= len(white)-3; i++ {
		tri := white[i : i+3]
		if files, ok := t.trigrams[tri]; ok {
			delete(files, path)
			if len(files) == 0 {
				delete(t.trigrams, tri)
			}
		}
	}
}

// Search finds whole word occurrences of name outside comments
func (t *TrigramIndex) Search(name string) []*Reference {
	if name == "" {
		return nil
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	candidates := t.findCandidates(name)
	if len(candidates) == 0 {
		return nil
	}

	pattern := buildWordBoundaryPattern(name)

	var refs []*Reference
	for path := range candidates {
		refs = append(refs, searchInContent(path, t.raw[path], t.white[path], pattern)...)
	}
	return refs
}

// SearchFile searches for references in a specific file
func (t *TrigramIndex) SearchFile(path, name string) []*Reference {
	if name == "" {
		return nil
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	white, ok := t.white[path]
	if !ok {
		return nil
	}
	return searchInContent(path, t.raw[path], white, buildWordBoundaryPattern(name))
}

// findCandidates uses trigram intersection to find candidate files
func (t *TrigramIndex) findCandidates(pattern string) map[string]struct{} {
	if len(pattern) < 3 {
		// Too short for trigrams, return all files
		result := make(map[string]struct{})
		for path := range t.white {
			result[path] = struct{}{}
		}
		return result
	}

	var candidates map[string]struct{}

	for i := 0; i <= len(pattern)-3; i++ {
		tri := pattern[i : i+3]
		files, ok := t.trigrams[tri]
		if !ok {
			// Trigram not found, no matches
			return nil
		}

		if candidates == nil {
			// First trigram
			candidates = make(map[string]struct{})
			for path := range files {
				candidates[path] = struct{}{}
			}
		} else {
			// Intersect with existing candidates
			for path := range candidates {
				if _, ok := files[path]; !ok {
					delete(candidates, path)
				}
			}
		}

		if len(candidates) == 0 {
			return nil
		}
	}

	return candidates
}

// searchInContent matches pattern line by line in white and reports the
// matching lines of raw. Both texts have their newlines at the same offsets.
func searchInContent(path, raw, white string, pattern *regexp.Regexp) []*Reference {
	var refs []*Reference

	rawLines := strings.Split(raw, "\n")
	for i, line := range strings.Split(white, "\n") {
		for _, match := range pattern.FindAllStringIndex(line, -1) {
			refs = append(refs, &Reference{
				FilePath: path,
				Line:     i + 1,
				Column:   match[0],
				Length:   match[1] - match[0],
				LineText: strings.TrimSuffix(rawLines[i], "\r"),
			})
		}
	}

	return refs
}

func buildWordBoundaryPattern(name string) *regexp.Regexp {
	return regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\b`)
}
