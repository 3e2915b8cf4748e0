package index

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/vitiral/rag/internal/comments"
	"github.com/vitiral/rag/internal/parser"
	"github.com/vitiral/rag/internal/types"
)

// Options controls which files are indexed and how
type Options struct {
	Include      []string // globs relative to the root
	Ignore       []string
	Workers      int // concurrent extractions during Build
	MaxFileBytes int // larger files fail with parser.ErrTooLarge; 0 disables
	CacheSize    int // extraction cache entries; 0 disables
}

// DefaultOptions indexes Rust sources and skips build output and VCS data
func DefaultOptions() Options {
	return Options{
		Include:      []string{"**/*.rs"},
		Ignore:       []string{"target/**", ".git/**", "vendor/**", "node_modules/**"},
		Workers:      8,
		MaxFileBytes: 4 << 20,
		CacheSize:    1024,
	}
}

// FileError records a file whose blocks could not be extracted
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// Index provides symbol lookup and text search
type Index struct {
	mu sync.RWMutex

	// Primary index: FullName -> definitions
	symbols map[string][]*Symbol

	// Short name index: Name -> FullNames (for fuzzy lookup)
	shortNames map[string][]string

	// File index: FilePath -> symbols in file
	byFile map[string][]*Symbol

	// Files whose last extraction failed
	failures map[string]error

	// Trigram index for text search
	trigram *TrigramIndex

	rootPath  string
	filter    *Filter
	extractor *parser.Extractor
	cache     *blockCache
	workers   int
}

// New creates a new index for the given root path
func New(rootPath string, registry *parser.Registry, opts Options) (*Index, error) {
	filter, err := NewFilter(rootPath, opts.Include, opts.Ignore)
	if err != nil {
		return nil, fmt.Errorf("compiling path patterns: %w", err)
	}

	cache, err := newBlockCache(opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("building extraction cache: %w", err)
	}

	extractor := parser.NewExtractor(registry)
	extractor.MaxBytes = opts.MaxFileBytes

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	return &Index{
		symbols:    make(map[string][]*Symbol),
		shortNames: make(map[string][]string),
		byFile:     make(map[string][]*Symbol),
		failures:   make(map[string]error),
		trigram:    NewTrigramIndex(),
		rootPath:   rootPath,
		filter:     filter,
		extractor:  extractor,
		cache:      cache,
		workers:    workers,
	}, nil
}

// Close releases the extraction cache
func (idx *Index) Close() {
	idx.cache.close()
}

// Build performs the initial indexing of all matching files
func (idx *Index) Build(ctx context.Context) error {
	log.Printf("building index for %s", idx.rootPath)

	files, err := idx.filter.Discover(ctx)
	if err != nil {
		return err
	}

	log.Printf("found %d source files", len(files))

	// Index files concurrently
	var wg sync.WaitGroup
	sem := make(chan struct{}, idx.workers) // Limit concurrency

	for _, file := range files {
		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if ctx.Err() != nil {
				return
			}
			if err := idx.AddFile(path); err != nil {
				log.Printf("failed to index %s: %v", path, err)
			}
		}(file)
	}

	wg.Wait()
	if err := ctx.Err(); err != nil {
		return err
	}
	log.Printf("indexed %d symbols, %d files failed", idx.SymbolCount(), len(idx.Errors()))
	return nil
}

// AddFile reads and indexes a single file
func (idx *Index) AddFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return idx.AddContent(path, string(content))
}

// AddContent indexes content as the current text of path, replacing anything
// indexed for path before. When extraction fails the file keeps no symbols
// and the error is reported by Errors until the next successful add.
func (idx *Index) AddContent(path, content string) error {
	blocks, err := idx.extract(content)
	if err != nil {
		idx.mu.Lock()
		idx.removeLocked(path)
		idx.failures[path] = err
		idx.mu.Unlock()
		idx.trigram.RemoveFile(path)
		return &FileError{Path: path, Err: err}
	}

	symbols := buildSymbols(path, content, blocks)

	idx.mu.Lock()
	idx.removeLocked(path)
	delete(idx.failures, path)

	// Store in file index
	idx.byFile[path] = symbols

	// Store in symbol indexes
	for _, sym := range symbols {
		// Primary index by full name
		idx.symbols[sym.FullName] = append(idx.symbols[sym.FullName], sym)

		// Short name index
		if !contains(idx.shortNames[sym.Name], sym.FullName) {
			idx.shortNames[sym.Name] = append(idx.shortNames[sym.Name], sym.FullName)
		}
	}
	idx.mu.Unlock()

	idx.trigram.AddFile(path, content, comments.Neutralize(content))
	return nil
}

// extract runs the extractor through the content cache
func (idx *Index) extract(content string) ([]types.CodeBlock, error) {
	key := keyOf(content)
	if blocks, ok := idx.cache.get(key); ok {
		return blocks, nil
	}
	blocks, err := idx.extractor.Extract(content)
	if err != nil {
		return nil, err
	}
	idx.cache.set(key, blocks)
	return blocks, nil
}

// buildSymbols places blocks in the file, attaching doc comments and scope
func buildSymbols(path, content string, blocks []types.CodeBlock) []*Symbol {
	li := types.NewLineIndex(content)
	symbols := make([]*Symbol, 0, len(blocks))
	for i, block := range blocks {
		doc := parser.DocComment(content, block)
		symbols = append(symbols, types.NewSymbol(path, li, block, doc, types.EnclosingNames(blocks, i)))
	}
	return symbols
}

// RemoveFile removes all symbols from a file
func (idx *Index) RemoveFile(path string) {
	idx.mu.Lock()
	idx.removeLocked(path)
	delete(idx.failures, path)
	idx.mu.Unlock()

	// Remove from trigram index
	idx.trigram.RemoveFile(path)
}

func (idx *Index) removeLocked(path string) {
	symbols := idx.byFile[path]
	delete(idx.byFile, path)

	for _, sym := range symbols {
		// Remove from primary index
		existing := idx.symbols[sym.FullName]
		filtered := make([]*Symbol, 0, len(existing))
		for _, s := range existing {
			if s.FilePath != path {
				filtered = append(filtered, s)
			}
		}
		if len(filtered) == 0 {
			delete(idx.symbols, sym.FullName)
		} else {
			idx.symbols[sym.FullName] = filtered
		}

		// Clean up short name index
		fullNames := idx.shortNames[sym.Name]
		if len(idx.symbols[sym.FullName]) == 0 {
			filtered := make([]string, 0, len(fullNames))
			for _, fn := range fullNames {
				if fn != sym.FullName {
					filtered = append(filtered, fn)
				}
			}
			if len(filtered) == 0 {
				delete(idx.shortNames, sym.Name)
			} else {
				idx.shortNames[sym.Name] = filtered
			}
		}
	}
}

// UpdateFile removes then re-adds a file
func (idx *Index) UpdateFile(path string) error {
	idx.RemoveFile(path)
	return idx.AddFile(path)
}

// FindDefinitions returns definitions matching the symbol name
// Supports both short names ("myfun") and full names ("mymod::myfun")
func (idx *Index) FindDefinitions(name string) []*Symbol {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	// Try exact full name match first
	if syms, ok := idx.symbols[name]; ok {
		result := make([]*Symbol, len(syms))
		copy(result, syms)
		return result
	}

	// Try short name lookup
	fullNames, ok := idx.shortNames[name]
	if !ok {
		return nil
	}

	var result []*Symbol
	for _, fullName := range fullNames {
		if syms, ok := idx.symbols[fullName]; ok {
			result = append(result, syms...)
		}
	}
	return result
}

// FindReferences finds all references to the given name using trigram search
func (idx *Index) FindReferences(name string) []*Reference {
	return idx.trigram.Search(name)
}

// FindDefinitionsInFile returns definitions matching the name, preferring those in the given file
func (idx *Index) FindDefinitionsInFile(name, filePath string) []*Symbol {
	all := idx.FindDefinitions(name)
	if len(all) == 0 {
		return nil
	}

	// Sort: same file first
	var sameFile, otherFiles []*Symbol
	for _, sym := range all {
		if sym.FilePath == filePath {
			sameFile = append(sameFile, sym)
		} else {
			otherFiles = append(otherFiles, sym)
		}
	}

	return append(sameFile, otherFiles...)
}

// SearchSymbols returns symbols whose name or full name contains query,
// ignoring case, ordered by full name. An empty query matches everything.
// limit <= 0 returns all matches.
func (idx *Index) SearchSymbols(query string, limit int) []*Symbol {
	query = strings.ToLower(query)

	idx.mu.RLock()
	var result []*Symbol
	for _, syms := range idx.byFile {
		for _, sym := range syms {
			if strings.Contains(strings.ToLower(sym.FullName), query) {
				result = append(result, sym)
			}
		}
	}
	idx.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.FullName != b.FullName {
			return a.FullName < b.FullName
		}
		if a.FilePath != b.FilePath {
			return a.FilePath < b.FilePath
		}
		return a.Start < b.Start
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result
}

// SymbolsInFile returns all symbols defined in a file, ordered by position
func (idx *Index) SymbolsInFile(path string) []*Symbol {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	syms := idx.byFile[path]
	result := make([]*Symbol, len(syms))
	copy(result, syms)
	return result
}

// SymbolCount returns the total number of indexed symbols
func (idx *Index) SymbolCount() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	count := 0
	for _, syms := range idx.symbols {
		count += len(syms)
	}
	return count
}

// Errors returns the files whose last extraction failed, ordered by path
func (idx *Index) Errors() []*FileError {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	result := make([]*FileError, 0, len(idx.failures))
	for path, err := range idx.failures {
		result = append(result, &FileError{Path: path, Err: err})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Path < result[j].Path
	})
	return result
}

// RootPath returns the root path of the index
func (idx *Index) RootPath() string {
	return idx.rootPath
}

// Filter returns the path filter used to discover files
func (idx *Index) Filter() *Filter {
	return idx.filter
}

func contains(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}
