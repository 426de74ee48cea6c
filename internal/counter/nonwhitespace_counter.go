package counter

import "unicode"

// NonWhitespaceCounter counts the characters of a text that are not whitespace.
// It is the strategy behind CharCount.
type NonWhitespaceCounter struct{}

// NewNonWhitespaceCounter creates a new NonWhitespaceCounter instance.
func NewNonWhitespaceCounter() Counter {
	return &NonWhitespaceCounter{}
}

// Count returns CountNonWhitespace(text).
func (nc *NonWhitespaceCounter) Count(text string) int {
	return CountNonWhitespace(text)
}

// Name returns the name of this counting method for logging and debugging.
func (nc *NonWhitespaceCounter) Name() string {
	return "non-whitespace characters"
}

// CountNonWhitespace returns the number of runes in line once every whitespace
// character has been removed. Empty and all-whitespace strings yield 0.
func CountNonWhitespace(line string) int {
	n := 0
	for _, r := range line {
		if !isWhitespace(r) {
			n++
		}
	}
	return n
}

// isWhitespace reports whether r belongs to the regexp \s class: Unicode
// White_Space plus U+FEFF, minus U+0085 (NEL).
func isWhitespace(r rune) bool {
	if r == '\u0085' {
		return false
	}
	return unicode.IsSpace(r) || r == '\uFEFF'
}
