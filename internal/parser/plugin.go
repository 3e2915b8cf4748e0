package parser

import (
	"sort"

	"github.com/vitiral/rag/internal/types"
)

// Header is one declaration header found in neutralized text. Offsets are
// valid in both the neutralized and the original text.
type Header struct {
	Kind    types.BlockKind
	Keyword types.Span // the declaration keyword
	Name    types.Span // the declared identifier
	End     int        // one past the opening delimiter or terminator
}

// Matcher recognizes one class of declaration header
type Matcher interface {
	// Name returns the header class identifier
	Name() string

	// FindAll returns every header of this class in white, in order of
	// appearance. white must already be neutralized.
	FindAll(white string) []Header

	// Delimiters returns the body delimiter pair. ok is false for headers
	// that end the block themselves.
	Delimiters() (open, close byte, ok bool)

	// Priority for ordering (higher = earlier)
	Priority() int
}

// Registry holds all registered matchers
type Registry struct {
	matchers []Matcher
	sorted   bool
}

// NewRegistry creates a new empty registry
func NewRegistry() *Registry {
	return &Registry{
		matchers: make([]Matcher, 0),
	}
}

// Register adds a matcher to the registry
func (r *Registry) Register(m Matcher) {
	r.matchers = append(r.matchers, m)
	r.sorted = false
}

// Matchers returns all registered matchers in priority order
func (r *Registry) Matchers() []Matcher {
	if !r.sorted {
		sort.SliceStable(r.matchers, func(i, j int) bool {
			return r.matchers[i].Priority() > r.matchers[j].Priority()
		})
		r.sorted = true
	}
	return r.matchers
}

// RegisterDefaults adds the body, tuple and unit header classes
func RegisterDefaults(r *Registry) {
	r.Register(&BodyMatcher{})
	r.Register(&TupleMatcher{})
	r.Register(&UnitMatcher{})
}
