package parser

import (
	"strings"

	"github.com/vitiral/rag/internal/types"
)

// DocComment returns the documentation written directly above block in text:
// a run of `///` lines, or a single `/** ... */` comment. Comment markers and
// the space after them are removed and lines are joined with "\n".
//
// Attribute lines such as `#[derive(Debug)]` between the documentation and
// the keyword are skipped. A blank line ends the documentation.
func DocComment(text string, block types.CodeBlock) string {
	// Headers always start their line, so the doc comment ends on the line
	// above the keyword.
	end := strings.LastIndexByte(text[:block.Span.Start], '\n') + 1

	var lines []string
	for end > 0 {
		start := strings.LastIndexByte(text[:end-1], '\n') + 1
		line := strings.TrimSpace(text[start : end-1])

		switch {
		case strings.HasPrefix(line, "///") && !strings.HasPrefix(line, "////"):
			lines = append(lines, strings.TrimPrefix(line[3:], " "))
		case len(lines) == 0 && strings.HasPrefix(line, "#["):
		case len(lines) == 0 && strings.HasSuffix(line, "*/"):
			return blockDoc(text[:end-1])
		default:
			return joinReversed(lines)
		}
		end = start
	}
	return joinReversed(lines)
}

// blockDoc extracts the `/** ... */` comment that ends above
func blockDoc(above string) string {
	closeAt := strings.LastIndex(above, "*/")
	openAt := strings.LastIndex(above[:closeAt], "/*")
	if openAt < 0 || !strings.HasPrefix(above[openAt:], "/**") || openAt+3 > closeAt {
		return ""
	}
	lineStart := strings.LastIndexByte(above[:openAt], '\n') + 1
	if strings.TrimSpace(above[lineStart:openAt]) != "" {
		return "" // trailing comment of some other code
	}

	var lines []string
	for _, line := range strings.Split(above[openAt+3:closeAt], "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "*")
		lines = append(lines, strings.TrimPrefix(line, " "))
	}
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}

func joinReversed(lines []string) string {
	for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
		lines[i], lines[j] = lines[j], lines[i]
	}
	return strings.Join(lines, "\n")
}
