package parser

import (
	"errors"
	"testing"

	"github.com/vitiral/rag/internal/comments"
)

func TestFindMatch(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		open    byte
		close   byte
		want    int
		wantErr bool
	}{
		{name: "flat", text: "12345}", open: '{', close: '}', want: 6},
		{name: "after prefix", text: "  {12345}"[3:], open: '{', close: '}', want: 6},
		{name: "nested", text: "a { b { c } } d }tail", open: '{', close: '}', want: 17},
		{name: "immediate close", text: "}", open: '{', close: '}', want: 1},
		{name: "parentheses", text: "u32, (f64, u8)\n)", open: '(', close: ')', want: 16},
		{name: "other delimiters ignored", text: "]}>)", open: '(', close: ')', want: 4},
		{name: "line comment", text: comments.Neutralize("//badcomment {\n}"), open: '{', close: '}', want: 16},
		{name: "block comment", text: comments.Neutralize("/*comment{*/}"), open: '{', close: '}', want: 13},
		{name: "empty", text: "", open: '{', close: '}', wantErr: true},
		{name: "never closes", text: "{ }", open: '{', close: '}', wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FindMatch(tt.text, tt.open, tt.close)
			if tt.wantErr {
				if !errors.Is(err, ErrUnbalanced) {
					t.Errorf("expected ErrUnbalanced, got %d, %v", got, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}
