package counter

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"unicode/utf8"
)

// MaxLineBytes bounds a single line read by CountReader.
const MaxLineBytes = 64 * 1024 * 1024

// CountReader reads lines lazily from r and counts each with c. It yields the
// same TextStats as CountLines over the fully read text, without holding the
// raw input in memory. Cancellation is checked between lines.
func CountReader(ctx context.Context, r io.Reader, c Counter) (TextStats, error) {
	if r == nil {
		return TextStats{}, fmt.Errorf("%w: nil reader", ErrInvalidArgument)
	}
	if c == nil {
		c = NewNonWhitespaceCounter()
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineBytes)
	scanner.Split(scanTerminatedLines)

	var stats TextStats
	lineNo := 0
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return TextStats{}, err
		}
		lineNo++

		raw := scanner.Bytes()
		if !utf8.Valid(raw) {
			return TextStats{}, fmt.Errorf("%w: line %d is not valid UTF-8", ErrInvalidArgument, lineNo)
		}
		line := string(raw)
		stats.add(line, c.Count(line))
	}
	if err := scanner.Err(); err != nil {
		return TextStats{}, fmt.Errorf("failed to read line %d: %w", lineNo+1, err)
	}

	return stats, nil
}

// scanTerminatedLines is a bufio.SplitFunc matching SplitLines: "\n" or
// "\r\n" ends a line, and the text after the last terminator is always
// emitted, even when empty.
func scanTerminatedLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		return i + 1, bytes.TrimSuffix(data[:i], []byte{'\r'}), nil
	}
	if atEOF {
		if data == nil {
			data = []byte{}
		}
		return len(data), data, bufio.ErrFinalToken
	}
	return 0, nil, nil
}
