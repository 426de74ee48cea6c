// Package counter provides the text counting functionality for the charcount CLI tool.
//
// The core entry point is CharCount, which splits text into lines (both "\n" and
// "\r\n" terminate a line) and reports the number of non-whitespace characters on
// each line plus the total across all lines.
//
// Usage Example:
//
//	stats := counter.CharCount("foo bar\nbaz")
//	// stats.Lines = [{foo bar 6} {baz 3}], stats.Total = 9
//
// The same line pipeline can run with other counting strategies through the
// Counter interface (characters, words, tokens, sentences), see CountLines.
package counter

import (
	"fmt"
	"strings"
)

// Counter defines the interface for different text counting strategies.
type Counter interface {
	// Count returns the number of units (characters, words, tokens, ...) in given text.
	Count(text string) int

	// Name returns a human-readable name for this counting method (for logging)
	Name() string
}

// CountingMethod represents the different available counting strategies.
type CountingMethod int

const (
	// NonWhitespace counts characters left after removing all whitespace (default)
	NonWhitespace CountingMethod = iota
	// Characters counts individual characters including whitespace
	Characters
	// Words counts words using whitespace splitting
	Words
	// Tokens uses tiktoken with cl100k_base encoding
	Tokens
	// Sentences counts sentences found by prose's segmenter
	Sentences
)

// String returns the string representation of the counting method.
func (cm CountingMethod) String() string {
	switch cm {
	case NonWhitespace:
		return "nonwhitespace"
	case Characters:
		return "characters"
	case Words:
		return "words"
	case Tokens:
		return "tokens"
	case Sentences:
		return "sentences"
	default:
		return "unknown"
	}
}

// ParseCountingMethod maps a method name (as used by flags and config files)
// to its CountingMethod. Matching is case-insensitive.
func ParseCountingMethod(name string) (CountingMethod, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "nonwhitespace", "non-whitespace", "chars-no-space":
		return NonWhitespace, nil
	case "characters", "chars":
		return Characters, nil
	case "words":
		return Words, nil
	case "tokens":
		return Tokens, nil
	case "sentences":
		return Sentences, nil
	default:
		return NonWhitespace, fmt.Errorf("unknown counting method %q", name)
	}
}

// NewCounter creates a new Counter instance based on the specified method.
// Returns an error if the counter cannot be initialized (e.g., tiktoken encoding fails)
// or the method is unknown.
func NewCounter(method CountingMethod) (Counter, error) {
	switch method {
	case NonWhitespace:
		return NewNonWhitespaceCounter(), nil
	case Characters:
		return NewCharCounter(), nil
	case Words:
		return NewWordCounter(), nil
	case Tokens:
		return NewTokenCounter()
	case Sentences:
		return NewSentenceCounter(), nil
	default:
		return nil, fmt.Errorf("unsupported counting method %d", int(method))
	}
}
