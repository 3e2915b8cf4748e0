package types

import "sort"

// LineIndex converts between byte offsets and 0-indexed line/column pairs.
// Columns are byte offsets within the line.
type LineIndex struct {
	starts []int // byte offset of the first byte of each line
	size   int
}

// NewLineIndex records the line starts of text
func NewLineIndex(text string) *LineIndex {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineIndex{starts: starts, size: len(text)}
}

// LineCount returns the number of lines, counting a trailing empty line
func (li *LineIndex) LineCount() int {
	return len(li.starts)
}

// Position returns the line and column of offset. Offsets past the end are
// clamped to the end of the text.
func (li *LineIndex) Position(offset int) (line, col int) {
	if offset < 0 {
		offset = 0
	}
	if offset > li.size {
		offset = li.size
	}
	line = sort.Search(len(li.starts), func(i int) bool {
		return li.starts[i] > offset
	}) - 1
	return line, offset - li.starts[line]
}

// Offset returns the byte offset of line/col, clamping both to the text
func (li *LineIndex) Offset(line, col int) int {
	if line < 0 {
		return 0
	}
	if line >= len(li.starts) {
		return li.size
	}
	end := li.size
	if line+1 < len(li.starts) {
		end = li.starts[line+1] - 1 // the newline itself
	}
	offset := li.starts[line] + col
	if col < 0 {
		offset = li.starts[line]
	}
	if offset > end {
		offset = end
	}
	return offset
}
