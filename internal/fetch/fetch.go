// Package fetch retrieves the text to be counted from stdin, local files, or
// HTTP(S) URLs, enforcing size limits on every source.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

// Size limits to prevent memory overload
const (
	MaxFileSizeBytes = 50 * 1024 * 1024  // 50MB limit for files and stdin
	MaxHTTPSizeBytes = 100 * 1024 * 1024 // 100MB limit for HTTP content (may not have Content-Length)
)

// HTTPRequestTimeout bounds a whole HTTP fetch, including reading the body.
const HTTPRequestTimeout = 30 * time.Second

// phase timeouts derived from HTTPRequestTimeout
var (
	HTTPDialTimeout           = HTTPRequestTimeout / 6
	HTTPTLSTimeout            = HTTPRequestTimeout / 6
	HTTPResponseHeaderTimeout = HTTPRequestTimeout / 2
)

// userAgent is sent with every HTTP request.
const userAgent = "charcount/0.1"

// Stdin is the source name that selects standard input.
const Stdin = "-"

// stdin is swapped out by tests.
var stdin io.ReadCloser = os.Stdin

// limitedReadCloser wraps an io.ReadCloser and fails once more than N bytes are read.
type limitedReadCloser struct {
	io.ReadCloser
	N      int64  // max bytes remaining
	source string // for error messages
}

func (l *limitedReadCloser) Read(p []byte) (n int, err error) {
	if l.N <= 0 {
		return 0, fmt.Errorf("content from %q exceeds size limit", l.source)
	}
	if int64(len(p)) > l.N {
		p = p[0:l.N]
	}
	n, err = l.ReadCloser.Read(p)
	l.N -= int64(n)
	return
}

// httpClient is shared by all fetches and safe for concurrent use.
var httpClient = &http.Client{
	Timeout: HTTPRequestTimeout,
	Transport: &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: HTTPDialTimeout,
		}).DialContext,
		TLSHandshakeTimeout:   HTTPTLSTimeout,
		ResponseHeaderTimeout: HTTPResponseHeaderTimeout,
		DisableKeepAlives:     true,
	},
}

// Kind classifies a source string.
type Kind int

const (
	KindFile Kind = iota
	KindStdin
	KindURL
)

// KindOf reports how GetContent will treat source.
func KindOf(source string) Kind {
	switch {
	case source == Stdin:
		return KindStdin
	case strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://"):
		return KindURL
	default:
		return KindFile
	}
}

// GetContent opens source for reading:
//   - "-" reads from standard input
//   - URLs starting with "http://" or "https://" are fetched via HTTP
//   - everything else is treated as a local file path
//
// Files and stdin are capped at MaxFileSizeBytes, HTTP bodies at
// MaxHTTPSizeBytes. The caller must close the returned reader.
func GetContent(ctx context.Context, source string) (io.ReadCloser, error) {
	return open(ctx, source, true)
}

// OpenStream opens source like GetContent but without size limits, for
// callers that consume the input incrementally.
func OpenStream(ctx context.Context, source string) (io.ReadCloser, error) {
	return open(ctx, source, false)
}

func open(ctx context.Context, source string, limited bool) (io.ReadCloser, error) {
	switch KindOf(source) {
	case KindStdin:
		if !limited {
			return io.NopCloser(stdin), nil
		}
		return &limitedReadCloser{
			ReadCloser: io.NopCloser(stdin),
			N:          MaxFileSizeBytes,
			source:     "stdin",
		}, nil
	case KindURL:
		return fetchURL(ctx, source, limited)
	default:
		return fetchFile(source, limited)
	}
}

// ReadText reads the whole of source. The bytes are returned undecoded so the
// caller can reject input that is not UTF-8.
func ReadText(ctx context.Context, source string) ([]byte, error) {
	reader, err := GetContent(ctx, source)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", source, err)
	}
	if data == nil {
		data = []byte{}
	}
	return data, nil
}

// fetchURL retrieves content from an HTTP or HTTPS URL.
func fetchURL(ctx context.Context, url string, limited bool) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for URL %q: %w", url, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL %q: %w", url, err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP request failed for URL %q: status %s", url, resp.Status)
	}

	if !limited {
		return resp.Body, nil
	}

	if contentLength := resp.Header.Get("Content-Length"); contentLength != "" {
		if size, err := strconv.ParseInt(contentLength, 10, 64); err == nil && size > MaxHTTPSizeBytes {
			resp.Body.Close()
			return nil, fmt.Errorf("HTTP content too large (%d bytes > %d bytes limit)", size, MaxHTTPSizeBytes)
		}
	}

	// bodies without Content-Length are capped while reading
	return &limitedReadCloser{
		ReadCloser: resp.Body,
		N:          MaxHTTPSizeBytes,
		source:     url,
	}, nil
}

// fetchFile opens a local file after checking that it exists and, when
// limited, fits the size limit.
func fetchFile(path string, limited bool) (io.ReadCloser, error) {
	fileInfo, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("file %q does not exist", path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to access file %q: %w", path, err)
	}
	if fileInfo.IsDir() {
		return nil, fmt.Errorf("%q is a directory", path)
	}

	if limited && fileInfo.Size() > MaxFileSizeBytes {
		return nil, fmt.Errorf("file %q is too large (%d bytes > %d bytes limit)",
			path, fileInfo.Size(), MaxFileSizeBytes)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %q: %w", path, err)
	}

	return file, nil
}
