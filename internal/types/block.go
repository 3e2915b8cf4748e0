package types

// BlockKind categorizes declaration blocks
type BlockKind int

const (
	KindFunction BlockKind = iota
	KindEnum
	KindStruct
	KindTrait
	KindModule
)

// String returns the declaration keyword for the kind
func (k BlockKind) String() string {
	switch k {
	case KindFunction:
		return "fn"
	case KindEnum:
		return "enum"
	case KindStruct:
		return "struct"
	case KindTrait:
		return "trait"
	case KindModule:
		return "mod"
	default:
		return "unknown"
	}
}

// ParseBlockKind maps a declaration keyword to its kind
func ParseBlockKind(keyword string) (BlockKind, bool) {
	switch keyword {
	case "fn":
		return KindFunction, true
	case "enum":
		return KindEnum, true
	case "struct":
		return KindStruct, true
	case "trait":
		return KindTrait, true
	case "mod":
		return KindModule, true
	}
	return 0, false
}

// Span is a half-open byte range [Start, End) into a source text
type Span struct {
	Start int
	End   int
}

// Len returns the number of bytes covered by the span
func (s Span) Len() int {
	return s.End - s.Start
}

// Contains reports whether o lies entirely inside s
func (s Span) Contains(o Span) bool {
	return s.Start <= o.Start && o.End <= s.End
}

// CodeBlock is one extracted declaration.
//
// Name and Signature are substrings of the scanned text, so they share its
// memory and stay valid for as long as the block is reachable.
type CodeBlock struct {
	Name      string // "myfun" for `fn myfun(x: i32) -> u32 { ... }`
	Kind      BlockKind
	Signature string // "fn myfun(x: i32) -> u32"
	Span      Span   // keyword through the closing delimiter or terminator
	NameSpan  Span   // location of Name
}

// Text returns the full source of the block. src must be the text the block
// was extracted from.
func (b CodeBlock) Text(src string) string {
	return src[b.Span.Start:b.Span.End]
}

// EnclosingNames returns the names of the blocks whose span strictly contains
// blocks[i], outermost first. blocks must be sorted by span start.
func EnclosingNames(blocks []CodeBlock, i int) []string {
	var names []string
	target := blocks[i].Span
	for j := 0; j < i; j++ {
		outer := blocks[j].Span
		if outer != target && outer.Contains(target) {
			names = append(names, blocks[j].Name)
		}
	}
	return names
}
