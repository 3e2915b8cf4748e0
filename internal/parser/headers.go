package parser

import (
	"regexp"

	"github.com/vitiral/rag/internal/types"
)

// Header patterns. A header starts the input or a line, may be indented, and
// runs from the keyword to the first terminator on the identifier's line.
// Capture groups: 1 keyword, 2 generic parameters, 3 identifier.
var (
	// fn myfun(x: i32) -> u32 {
	// mod mymod {
	bodyPattern = headerPattern("fn|struct|enum|trait|mod", `\{`)

	// struct tuplestruct(u32, f64)
	tuplePattern = headerPattern("struct", `\(`)

	// struct nullstruct;
	unitPattern = headerPattern("struct", ";")
)

func headerPattern(keywords, terminator string) *regexp.Regexp {
	return regexp.MustCompile(`(?:^|\n)[ \t]*(` + keywords + `)\s+(<.*>)?\s*([\p{L}\p{N}_]+).*?` + terminator)
}

// findHeaders runs pattern over white and converts the submatch indices
func findHeaders(pattern *regexp.Regexp, white string) []Header {
	var headers []Header
	for _, m := range pattern.FindAllStringSubmatchIndex(white, -1) {
		kind, ok := types.ParseBlockKind(white[m[2]:m[3]])
		if !ok {
			continue
		}
		headers = append(headers, Header{
			Kind:    kind,
			Keyword: types.Span{Start: m[2], End: m[3]},
			Name:    types.Span{Start: m[6], End: m[7]},
			End:     m[1],
		})
	}
	return headers
}

// BodyMatcher finds declarations with a braced body
type BodyMatcher struct{}

func (m *BodyMatcher) Name() string  { return "body" }
func (m *BodyMatcher) Priority() int { return 300 }

func (m *BodyMatcher) Delimiters() (byte, byte, bool) { return '{', '}', true }

func (m *BodyMatcher) FindAll(white string) []Header {
	return findHeaders(bodyPattern, white)
}

// TupleMatcher finds tuple structs, whose body is parenthesized
type TupleMatcher struct{}

func (m *TupleMatcher) Name() string  { return "tuple" }
func (m *TupleMatcher) Priority() int { return 200 }

func (m *TupleMatcher) Delimiters() (byte, byte, bool) { return '(', ')', true }

func (m *TupleMatcher) FindAll(white string) []Header {
	return findHeaders(tuplePattern, white)
}

// UnitMatcher finds unit structs terminated by a semicolon
type UnitMatcher struct{}

func (m *UnitMatcher) Name() string  { return "unit" }
func (m *UnitMatcher) Priority() int { return 100 }

// Unit structs have no body; the `;` that ends the header ends the block
func (m *UnitMatcher) Delimiters() (byte, byte, bool) { return 0, 0, false }

func (m *UnitMatcher) FindAll(white string) []Header {
	return findHeaders(unitPattern, white)
}
