package parser

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/vitiral/rag/internal/comments"
	"github.com/vitiral/rag/internal/types"
)

// Extractor finds declaration blocks in source text.
//
// An Extractor holds no per-call state and may be shared between goroutines
// once configured.
type Extractor struct {
	registry *Registry

	// MaxBytes rejects larger inputs with ErrTooLarge. Zero means no limit.
	MaxBytes int
}

// NewExtractor creates an extractor that uses the matchers in registry
func NewExtractor(registry *Registry) *Extractor {
	return &Extractor{
		registry: registry,
	}
}

var defaultExtractor = sync.OnceValue(func() *Extractor {
	registry := NewRegistry()
	RegisterDefaults(registry)
	registry.Matchers() // sort now so later calls only read
	return NewExtractor(registry)
})

// Extract finds the blocks in text using the default header classes
func Extract(text string) ([]types.CodeBlock, error) {
	return defaultExtractor().Extract(text)
}

// Extract returns every block in text ordered by start offset. Names and
// signatures are substrings of text.
//
// Extraction is all or nothing: a block whose body never closes fails the
// whole call with an *ExtractError wrapping ErrUnbalanced.
func (e *Extractor) Extract(text string) ([]types.CodeBlock, error) {
	if e.MaxBytes > 0 && len(text) > e.MaxBytes {
		return nil, &ExtractError{
			Phase: PhaseLimit,
			Err:   fmt.Errorf("%w: %d bytes exceeds %d", ErrTooLarge, len(text), e.MaxBytes),
		}
	}

	white, commentErr := comments.NeutralizeStrict(text)

	var blocks []types.CodeBlock
	// keyword offset -> header class that claimed it
	claimed := make(map[int]string)

	for _, matcher := range e.registry.Matchers() {
		open, close, hasBody := matcher.Delimiters()

		for _, h := range matcher.FindAll(white) {
			// A higher priority class already produced a block for this
			// keyword; the lower one would only duplicate it.
			if _, ok := claimed[h.Keyword.Start]; ok {
				continue
			}

			end := h.End
			if hasBody {
				n, err := FindMatch(white[h.End:], open, close)
				if err != nil {
					return nil, &ExtractError{
						Phase:               PhaseMatch,
						Class:               matcher.Name(),
						Kind:                h.Kind,
						Name:                text[h.Name.Start:h.Name.End],
						Offset:              h.Keyword.Start,
						UnterminatedComment: commentErr != nil,
						Err:                 err,
					}
				}
				end += n
			}

			claimed[h.Keyword.Start] = matcher.Name()
			blocks = append(blocks, newBlock(text, h, end))
		}
	}

	sort.SliceStable(blocks, func(i, j int) bool {
		return blocks[i].Span.Start < blocks[j].Span.Start
	})
	return blocks, nil
}

// newBlock slices the original text for a header whose block ends at end
func newBlock(text string, h Header, end int) types.CodeBlock {
	// The header ends with its delimiter or terminator; drop it from the
	// signature.
	sig := strings.TrimSpace(text[h.Keyword.Start : h.End-1])

	return types.CodeBlock{
		Name:      text[h.Name.Start:h.Name.End],
		Kind:      h.Kind,
		Signature: sig,
		Span:      types.Span{Start: h.Keyword.Start, End: end},
		NameSpan:  h.Name,
	}
}
