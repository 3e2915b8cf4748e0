// Package comments erases comments from C-family source text while keeping
// every byte offset and newline position of the input.
//
// The result of Neutralize can be searched for structural characters such as
// braces without comment text getting in the way, and any offset found in it
// is valid in the original text.
package comments

import (
	"errors"
	"strings"
)

// ErrUnterminated reports a block comment that runs to the end of the input
var ErrUnterminated = errors.New("unterminated block comment")

// Neutralize replaces every comment in text with spaces, one per byte, and
// copies newlines through. Everything outside comments is copied unchanged,
// so len(Neutralize(text)) == len(text).
//
// An unterminated block comment is blanked to the end of the input.
func Neutralize(text string) string {
	white, _ := whiteout(text)
	return white
}

// NeutralizeStrict is Neutralize that also returns ErrUnterminated when a
// block comment is still open at the end of the input. The returned text is
// complete either way.
func NeutralizeStrict(text string) (string, error) {
	white, open := whiteout(text)
	if open {
		return white, ErrUnterminated
	}
	return white, nil
}

// whiteout works on bytes: '/', '*' and '\n' never occur inside a multi-byte
// UTF-8 sequence, and blanking byte by byte emits one space per encoded byte.
func whiteout(text string) (string, bool) {
	var b strings.Builder
	b.Grow(len(text))

	open := false
	for i := 0; i < len(text); {
		c := text[i]
		if c != '/' {
			b.WriteByte(c)
			i++
			continue
		}

		// it could be a comment
		if i+1 == len(text) {
			b.WriteByte('/')
			break
		}
		switch text[i+1] {
		case '*':
			i, open = blankBlock(&b, text, i)
		case '/':
			i = blankLine(&b, text, i)
		default:
			b.WriteByte('/')
			b.WriteByte(text[i+1])
			i += 2
		}
	}
	return b.String(), open
}

// blankBlock blanks the block comment starting at text[start] through its
// closing "*/". It returns the offset after the comment and whether the input
// ended before the comment was closed.
func blankBlock(b *strings.Builder, text string, start int) (int, bool) {
	b.WriteString("  ")
	var last byte
	for i := start + 2; i < len(text); i++ {
		c := text[i]
		if c == '\n' {
			b.WriteByte('\n')
		} else {
			b.WriteByte(' ')
		}
		if last == '*' && c == '/' {
			return i + 1, false
		}
		last = c
	}
	return len(text), true
}

// blankLine blanks the line comment starting at text[start] through the end
// of its line. The newline is kept.
func blankLine(b *strings.Builder, text string, start int) int {
	b.WriteString("  ")
	for i := start + 2; i < len(text); i++ {
		if text[i] == '\n' {
			b.WriteByte('\n')
			return i + 1
		}
		b.WriteByte(' ')
	}
	return len(text)
}
