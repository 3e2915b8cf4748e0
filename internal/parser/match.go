package parser

// FindMatch returns the offset just past the close delimiter that balances an
// open delimiter consumed immediately before text[0]. Nesting starts at depth
// 1; every open raises it and every close lowers it.
//
// text must be neutralized so delimiters inside comments are not counted.
// FindMatch returns ErrUnbalanced if text ends before depth returns to 0.
func FindMatch(text string, open, close byte) (int, error) {
	depth := 1
	for i := 0; i < len(text); i++ {
		if c := text[i]; c == open {
			depth++
		} else if c == close {
			depth--
			if depth == 0 {
				return i + 1, nil
			}
		}
	}
	return 0, ErrUnbalanced
}
