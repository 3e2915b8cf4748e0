package parser

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vitiral/rag/internal/types"
)

const fixture = `
//! file level documentation
//! more file documentation

/// documentation for my function
/// some more docs
fn myfun(x: i32, y:i64) -> u32 {
    // here are some comments inside the function
    let x = 4;
    if x == 7 {
        println!("what the heck is happening?");
    }
    {{{}}} // just to cause problems
    // end myfun
}

some stuff after the function

/// documentation for myenum
enum myenum {
    x,
    y,
    z,
    // end myenum
}

/// documentation for std struct
struct mystruct {
    x: i32,
    y: f32,
    // end mystruct
}

/// documentation for tuple struct
struct tuplestruct(u32, f64
    // end tuplestruct
)

/// documentation for nullstruct
struct nullstruct /*some terrible documentation;*/ /*end nullstruct*/ ;

/// documentation for mymod
/// some more mod documentation
mod mymod {
    fn myfun2(x: i32, y: f64) -> f64 {
        // here are some comments inside myfun
        if x == 7 {
            println!("what the heck is x");
        }
        // a comment
        /* terrible block comment }*/
        // terrible } line comment
        // end myfun2
    }
    // some more comments
    // end mymod
}

some stuff after mod

`

func TestExtractFixture(t *testing.T) {
	blocks, err := Extract(fixture)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name      string
		kind      types.BlockKind
		signature string
		prefix    string
		suffix    string
	}{
		{"myfun", types.KindFunction, "fn myfun(x: i32, y:i64) -> u32", "fn myfun", " // end myfun\n}"},
		{"myenum", types.KindEnum, "enum myenum", "enum myenum", " // end myenum\n}"},
		{"mystruct", types.KindStruct, "struct mystruct", "struct mystruct", " // end mystruct\n}"},
		{"tuplestruct", types.KindStruct, "struct tuplestruct", "struct tuplestruct", " // end tuplestruct\n)"},
		{
			"nullstruct", types.KindStruct,
			"struct nullstruct /*some terrible documentation;*/ /*end nullstruct*/",
			"struct nullstruct", " /*end nullstruct*/ ;",
		},
		{"mymod", types.KindModule, "mod mymod", "mod mymod", " // end mymod\n}"},
		{"myfun2", types.KindFunction, "fn myfun2(x: i32, y: f64) -> f64", "fn myfun2", " // end myfun2\n    }"},
	}

	if len(blocks) != len(tests) {
		t.Fatalf("expected %d blocks, got %d: %+v", len(tests), len(blocks), blocks)
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			block := blocks[i]
			if block.Name != tt.name {
				t.Errorf("expected name %q, got %q", tt.name, block.Name)
			}
			if block.Kind != tt.kind {
				t.Errorf("expected kind %v, got %v", tt.kind, block.Kind)
			}
			if block.Signature != tt.signature {
				t.Errorf("expected signature %q, got %q", tt.signature, block.Signature)
			}
			if !strings.HasPrefix(fixture[block.Span.Start:], tt.prefix) {
				t.Errorf("expected block to start with %q, got %q", tt.prefix, fixture[block.Span.Start:block.Span.Start+20])
			}
			if !strings.HasSuffix(fixture[:block.Span.End], tt.suffix) {
				t.Errorf("expected block to end with %q, got %q", tt.suffix, block.Text(fixture))
			}
			if got := fixture[block.NameSpan.Start:block.NameSpan.End]; got != tt.name {
				t.Errorf("expected name span to cover %q, got %q", tt.name, got)
			}
		})
	}
}

func TestExtractNestedSpans(t *testing.T) {
	blocks, err := Extract(fixture)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mod, fn := blocks[5], blocks[6]
	if mod.Name != "mymod" || fn.Name != "myfun2" {
		t.Fatalf("expected mymod then myfun2, got %q then %q", mod.Name, fn.Name)
	}
	if !mod.Span.Contains(fn.Span) || mod.Span == fn.Span {
		t.Errorf("expected %v to be strictly inside %v", fn.Span, mod.Span)
	}
	if got := types.EnclosingNames(blocks, 6); !cmp.Equal(got, []string{"mymod"}) {
		t.Errorf("expected enclosing [mymod], got %v", got)
	}
}

func TestExtractScenarios(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []types.CodeBlock
	}{
		{
			name:  "function",
			input: "fn myfun(x: i32, y:i64) -> u32 {\n ...\n}",
			want: []types.CodeBlock{{
				Name:      "myfun",
				Kind:      types.KindFunction,
				Signature: "fn myfun(x: i32, y:i64) -> u32",
				Span:      types.Span{Start: 0, End: 39},
				NameSpan:  types.Span{Start: 3, End: 8},
			}},
		},
		{
			name:  "tuple struct",
			input: "struct tuplestruct(u32, f64\n)",
			want: []types.CodeBlock{{
				Name:      "tuplestruct",
				Kind:      types.KindStruct,
				Signature: "struct tuplestruct",
				Span:      types.Span{Start: 0, End: 29},
				NameSpan:  types.Span{Start: 7, End: 18},
			}},
		},
		{
			name:  "unit struct keeps comments in signature",
			input: "struct nullstruct /*doc*/ /*doc2*/;",
			want: []types.CodeBlock{{
				Name:      "nullstruct",
				Kind:      types.KindStruct,
				Signature: "struct nullstruct /*doc*/ /*doc2*/",
				Span:      types.Span{Start: 0, End: 35},
				NameSpan:  types.Span{Start: 7, End: 17},
			}},
		},
		{
			name:  "generic function",
			input: "fn id<T>(x: T) -> T {\n    x\n}",
			want: []types.CodeBlock{{
				Name:      "id",
				Kind:      types.KindFunction,
				Signature: "fn id<T>(x: T) -> T",
				Span:      types.Span{Start: 0, End: 29},
				NameSpan:  types.Span{Start: 3, End: 5},
			}},
		},
		{
			name:  "trait",
			input: "trait Shape {\n    fn area(&self) -> f64;\n}\n",
			want: []types.CodeBlock{{
				Name:      "Shape",
				Kind:      types.KindTrait,
				Signature: "trait Shape",
				Span:      types.Span{Start: 0, End: 42},
				NameSpan:  types.Span{Start: 6, End: 11},
			}},
		},
		{
			name:  "tuple struct with semicolon is reported once",
			input: "struct Pair(u8, u8);\nstruct Wrapper { f: fn(u8) };\n",
			want: []types.CodeBlock{
				{
					Name:      "Pair",
					Kind:      types.KindStruct,
					Signature: "struct Pair",
					Span:      types.Span{Start: 0, End: 19},
					NameSpan:  types.Span{Start: 7, End: 11},
				},
				{
					Name:      "Wrapper",
					Kind:      types.KindStruct,
					Signature: "struct Wrapper",
					Span:      types.Span{Start: 21, End: 49},
					NameSpan:  types.Span{Start: 28, End: 35},
				},
			},
		},
		{
			name:  "multi-byte characters",
			input: "fn naïve() {\n    /* é } */\n}\nstruct Ünit;\n",
			want: []types.CodeBlock{
				{
					Name:      "naïve",
					Kind:      types.KindFunction,
					Signature: "fn naïve()",
					Span:      types.Span{Start: 0, End: 30},
					NameSpan:  types.Span{Start: 3, End: 9},
				},
				{
					Name:      "Ünit",
					Kind:      types.KindStruct,
					Signature: "struct Ünit",
					Span:      types.Span{Start: 31, End: 44},
					NameSpan:  types.Span{Start: 38, End: 43},
				},
			},
		},
		{
			name:  "declarations in comments are ignored",
			input: "// fn hidden() {\n/*\nstruct Gone;\n*/\n",
			want:  nil,
		},
		{
			name:  "keyword must start the line",
			input: "let f = fn_ptr; pub fn later() {}\nsomething fn x() {}\n",
			want:  nil,
		},
		{
			name:  "empty input",
			input: "",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Extract(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("blocks mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExtractNested(t *testing.T) {
	input := "mod outer {\n    mod inner {\n        fn deep() {}\n    }\n    struct Leaf;\n}\n"

	blocks, err := Extract(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []struct {
		name string
		span types.Span
	}{
		{"outer", types.Span{Start: 0, End: 73}},
		{"inner", types.Span{Start: 16, End: 54}},
		{"deep", types.Span{Start: 36, End: 48}},
		{"Leaf", types.Span{Start: 59, End: 71}},
	}
	if len(blocks) != len(want) {
		t.Fatalf("expected %d blocks, got %d", len(want), len(blocks))
	}
	for i, w := range want {
		if blocks[i].Name != w.name || blocks[i].Span != w.span {
			t.Errorf("block %d: expected %s %v, got %s %v", i, w.name, w.span, blocks[i].Name, blocks[i].Span)
		}
	}

	if got := types.EnclosingNames(blocks, 2); !cmp.Equal(got, []string{"outer", "inner"}) {
		t.Errorf("expected deep inside [outer inner], got %v", got)
	}
	if got := types.EnclosingNames(blocks, 3); !cmp.Equal(got, []string{"outer"}) {
		t.Errorf("expected Leaf inside [outer], got %v", got)
	}
}

func TestExtractSpanProperties(t *testing.T) {
	blocks, err := Extract(fixture)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, b := range blocks {
		if b.Span.Start > b.Span.End || b.Span.End > len(fixture) {
			t.Errorf("block %s has invalid span %v", b.Name, b.Span)
		}
		if i > 0 && blocks[i-1].Span.Start > b.Span.Start {
			t.Errorf("blocks out of order at %d", i)
		}
		if !strings.HasPrefix(fixture[b.Span.Start:], b.Kind.String()) {
			t.Errorf("block %s does not start at its keyword", b.Name)
		}
	}
}

func TestExtractUnbalanced(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		wantName     string
		wantClass    string
		wantOffset   int
		unterminated bool
	}{
		{
			name:       "missing close brace",
			input:      "fn fine() {}\n\nfn broken() {\n    if x {\n}\n",
			wantName:   "broken",
			wantClass:  "body",
			wantOffset: 14,
		},
		{
			name:         "close brace swallowed by comment",
			input:        "fn f() { /* }\n",
			wantName:     "f",
			wantClass:    "body",
			wantOffset:   0,
			unterminated: true,
		},
		{
			name:       "open tuple struct",
			input:      "struct T(u8,\n",
			wantName:   "T",
			wantClass:  "tuple",
			wantOffset: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blocks, err := Extract(tt.input)
			if err == nil {
				t.Fatalf("expected error, got %+v", blocks)
			}
			if blocks != nil {
				t.Errorf("expected no partial result, got %+v", blocks)
			}
			if !errors.Is(err, ErrUnbalanced) {
				t.Errorf("expected ErrUnbalanced, got %v", err)
			}

			var extractErr *ExtractError
			if !errors.As(err, &extractErr) {
				t.Fatalf("expected *ExtractError, got %T", err)
			}
			if extractErr.Phase != PhaseMatch {
				t.Errorf("expected phase %q, got %q", PhaseMatch, extractErr.Phase)
			}
			if extractErr.Name != tt.wantName {
				t.Errorf("expected name %q, got %q", tt.wantName, extractErr.Name)
			}
			if extractErr.Class != tt.wantClass {
				t.Errorf("expected class %q, got %q", tt.wantClass, extractErr.Class)
			}
			if extractErr.Offset != tt.wantOffset {
				t.Errorf("expected offset %d, got %d", tt.wantOffset, extractErr.Offset)
			}
			if extractErr.UnterminatedComment != tt.unterminated {
				t.Errorf("expected UnterminatedComment=%v", tt.unterminated)
			}
		})
	}
}

func TestExtractMaxBytes(t *testing.T) {
	registry := NewRegistry()
	RegisterDefaults(registry)
	extractor := NewExtractor(registry)
	extractor.MaxBytes = 8

	if _, err := extractor.Extract("fn a() {}"); !errors.Is(err, ErrTooLarge) {
		t.Errorf("expected ErrTooLarge, got %v", err)
	}
	if _, err := extractor.Extract("fn a(){}"); err != nil {
		t.Errorf("unexpected error at the limit: %v", err)
	}
}

func TestExtractConcurrent(t *testing.T) {
	want, err := Extract(fixture)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := Extract(fixture)
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("concurrent result differs (-want +got):\n%s", diff)
			}
		}()
	}
	wg.Wait()
}
