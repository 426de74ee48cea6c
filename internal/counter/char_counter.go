package counter

import (
	"log/slog"
	"unicode/utf8"
)

// CharCounter counts every rune of a line, whitespace included. Unlike
// NonWhitespaceCounter, interior spaces and tabs add to the line's count.
type CharCounter struct{}

// NewCharCounter creates a new CharCounter instance.
func NewCharCounter() Counter {
	return &CharCounter{}
}

// Count returns the rune length of line. Line terminators are already
// stripped by SplitLines, so only interior whitespace is included.
func (cc *CharCounter) Count(line string) int {
	if line == "" {
		return 0
	}

	n := utf8.RuneCountInString(line)

	slog.Debug("Line characters counted", "bytes", len(line), "runes", n)
	return n
}

// Name is the column label used in reports.
func (cc *CharCounter) Name() string {
	return "characters"
}
