package counter

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrInvalidArgument is returned when the input handed to a counting function
// is not text: nil input, or bytes that are not valid UTF-8.
var ErrInvalidArgument = errors.New("invalid argument")

// LineStat holds a single line (without its terminator) and its count.
type LineStat struct {
	Line  string `json:"line"`
	Count int    `json:"count"`
}

// TextStats holds the per-line statistics of a text and their sum.
type TextStats struct {
	Lines []LineStat `json:"lines"`
	Total int        `json:"total"`
}

// SplitLines splits text on "\n" and "\r\n". A lone "\r" is not a terminator.
// The result always has one more element than the number of terminators, so
// "" yields [""] and a trailing terminator yields a trailing empty line.
func SplitLines(text string) []string {
	lines := strings.Split(text, "\n")
	// every element but the last was followed by "\n"
	for i := 0; i < len(lines)-1; i++ {
		lines[i] = strings.TrimSuffix(lines[i], "\r")
	}
	return lines
}

// CharCount splits text into lines and counts the non-whitespace characters of
// each line. The result is freshly allocated and owned by the caller.
func CharCount(text string) TextStats {
	return CountLines(text, NewNonWhitespaceCounter())
}

// CountLines runs the CharCount pipeline with an arbitrary Counter applied to
// each line. A nil Counter counts non-whitespace characters.
func CountLines(text string, c Counter) TextStats {
	if c == nil {
		c = NewNonWhitespaceCounter()
	}

	lines := SplitLines(text)
	stats := TextStats{Lines: make([]LineStat, 0, len(lines))}
	for _, line := range lines {
		stats.add(line, c.Count(line))
	}
	return stats
}

// CharCountBytes is CharCount for raw bytes. It fails with ErrInvalidArgument
// when data is nil or is not valid UTF-8.
func CharCountBytes(data []byte) (TextStats, error) {
	return CountBytes(data, NewNonWhitespaceCounter())
}

// CountBytes is CountLines for raw bytes, with the same checks as CharCountBytes.
func CountBytes(data []byte, c Counter) (TextStats, error) {
	if data == nil {
		return TextStats{}, fmt.Errorf("%w: nil input", ErrInvalidArgument)
	}
	if !utf8.Valid(data) {
		return TextStats{}, fmt.Errorf("%w: input is not valid UTF-8", ErrInvalidArgument)
	}
	return CountLines(string(data), c), nil
}

func (s *TextStats) add(line string, count int) {
	s.Lines = append(s.Lines, LineStat{Line: line, Count: count})
	s.Total += count
}
