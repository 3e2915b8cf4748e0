package types

import "strings"

// Symbol is a CodeBlock placed in a file
type Symbol struct {
	Name      string // e.g., "mystruct", "myfun"
	Kind      BlockKind
	FilePath  string // Absolute path
	Signature string
	Doc       string   // Doc comment above the declaration, markers stripped
	Start     int      // Byte offset of the keyword
	End       int      // Byte offset one past the end of the block
	Line      int      // 1-indexed
	Column    int      // 0-indexed
	EndLine   int      // 1-indexed
	EndColumn int      // 0-indexed, exclusive
	NameLine  int      // 1-indexed line of the identifier
	NameCol   int      // 0-indexed column of the identifier
	Scope     []string // Enclosing blocks ["mymod", "inner"]
	FullName  string   // Computed: "mymod::inner::myfun"
}

// NewSymbol places block from the file at path. li must index the text the
// block was extracted from.
func NewSymbol(path string, li *LineIndex, block CodeBlock, doc string, scope []string) *Symbol {
	line, col := li.Position(block.Span.Start)
	endLine, endCol := li.Position(block.Span.End)
	nameLine, nameCol := li.Position(block.NameSpan.Start)

	sym := &Symbol{
		Name:      block.Name,
		Kind:      block.Kind,
		FilePath:  path,
		Signature: block.Signature,
		Doc:       doc,
		Start:     block.Span.Start,
		End:       block.Span.End,
		Line:      line + 1,
		Column:    col,
		EndLine:   endLine + 1,
		EndColumn: endCol,
		NameLine:  nameLine + 1,
		NameCol:   nameCol,
		Scope:     scope,
	}
	sym.FullName = sym.ComputeFullName()
	return sym
}

// ComputeFullName generates the fully qualified name for this symbol
func (s *Symbol) ComputeFullName() string {
	parts := append(append([]string{}, s.Scope...), s.Name)
	return strings.Join(parts, "::")
}

// Reference represents a usage of a name
type Reference struct {
	FilePath string
	Line     int    // 1-indexed
	Column   int    // 0-indexed
	Length   int    // Length of the matched text
	LineText string // Full line text for display
}

// MatchesName checks if this symbol matches the given name
// Supports both short names and fully qualified names
func (s *Symbol) MatchesName(name string) bool {
	return s.Name == name || s.FullName == name
}
