package parser

import (
	"errors"
	"fmt"

	"github.com/vitiral/rag/internal/types"
)

var (
	// ErrUnbalanced means the input ended before a block's body was closed
	ErrUnbalanced = errors.New("unbalanced delimiters")

	// ErrTooLarge means the input exceeds the extractor's MaxBytes
	ErrTooLarge = errors.New("input too large")
)

// Extraction phases reported by ExtractError
const (
	PhaseLimit = "limit"
	PhaseMatch = "match"
)

// ExtractError describes the failure that aborted an extraction
type ExtractError struct {
	Phase  string
	Class  string // header class of the failing block, e.g. "body"
	Kind   types.BlockKind
	Name   string
	Offset int // byte offset of the failing block's keyword

	// UnterminatedComment is set when the input has a block comment that runs
	// to the end of the input, which may have swallowed the missing delimiter
	UnterminatedComment bool

	Err error
}

func (e *ExtractError) Error() string {
	if e.Phase == PhaseLimit {
		return fmt.Sprintf("%s: %v", e.Phase, e.Err)
	}
	msg := fmt.Sprintf("%s: %s %s at offset %d (%s header): %v",
		e.Phase, e.Kind, e.Name, e.Offset, e.Class, e.Err)
	if e.UnterminatedComment {
		msg += " (input has an unterminated block comment)"
	}
	return msg
}

func (e *ExtractError) Unwrap() error {
	return e.Err
}
