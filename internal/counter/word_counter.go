package counter

import (
	"log/slog"
	"strings"
)

// WordCounter counts whitespace-separated words on a line.
type WordCounter struct{}

// NewWordCounter creates a new WordCounter instance.
func NewWordCounter() Counter {
	return &WordCounter{}
}

// Count returns the number of fields in line. A blank line has no words,
// so its count is 0 just as with NonWhitespaceCounter.
func (wc *WordCounter) Count(line string) int {
	if line == "" {
		return 0
	}

	n := len(strings.Fields(line))

	slog.Debug("Line words counted", "bytes", len(line), "words", n)
	return n
}

// Name is the column label used in reports.
func (wc *WordCounter) Name() string {
	return "words"
}
