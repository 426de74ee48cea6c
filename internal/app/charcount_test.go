package app

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/chriscorrea/charcount/internal/counter"
	"github.com/chriscorrea/charcount/internal/fetch"
)

func writeSource(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func baseConfig(sources ...string) Config {
	return Config{
		Sources:        sources,
		CountingMethod: counter.NonWhitespace,
		Concurrency:    2,
		Quiet:          true,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", baseConfig("a.txt"), false},
		{"no sources", baseConfig(), true},
		{"zero concurrency", Config{Sources: []string{"a.txt"}}, true},
		{"stream and html", Config{Sources: []string{"a.txt"}, Concurrency: 1, Stream: true, HTML: true}, true},
		{"stdin once", baseConfig("a.txt", "-"), false},
		{"stdin repeated", baseConfig("-", "a.txt", "-"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRun_SingleFile(t *testing.T) {
	path := writeSource(t, "gatsby.txt", "foo bar\r\nbaz\n")

	report, err := Run(context.Background(), baseConfig(path))
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}

	want := Report{
		Sources: []SourceStats{{
			Source: path,
			Method: "nonwhitespace",
			TextStats: counter.TextStats{
				Lines: []counter.LineStat{
					{Line: "foo bar", Count: 6},
					{Line: "baz", Count: 3},
					{Line: "", Count: 0},
				},
				Total: 9,
			},
		}},
		Total: 9,
	}
	if diff := cmp.Diff(want, report); diff != "" {
		t.Errorf("Run() mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_StreamMatchesBuffered(t *testing.T) {
	path := writeSource(t, "lines.txt", strings.Repeat("so we beat on\r\n\n", 100)+"boats")

	buffered, err := Run(context.Background(), baseConfig(path))
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}

	cfg := baseConfig(path)
	cfg.Stream = true
	streamed, err := Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run(stream) unexpected error: %v", err)
	}

	if diff := cmp.Diff(buffered, streamed); diff != "" {
		t.Errorf("streamed report differs (-buffered +streamed):\n%s", diff)
	}
}

func TestRun_StreamBeyondFileSizeLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.txt")
	if err := os.WriteFile(path, []byte("so we beat on\n"), 0o644); err != nil {
		t.Fatalf("Failed to write big.txt: %v", err)
	}
	// extend with a sparse run of NUL bytes, which form the second line
	size := int64(fetch.MaxFileSizeBytes + 1)
	if err := os.Truncate(path, size); err != nil {
		t.Fatalf("Failed to grow big.txt: %v", err)
	}

	cfg := baseConfig(path)
	cfg.Concurrency = 1

	if _, err := Run(context.Background(), cfg); err == nil || !strings.Contains(err.Error(), "too large") {
		t.Fatalf("Run() error = %v, want size limit error without streaming", err)
	}

	cfg.Stream = true
	report, err := Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run(stream) unexpected error: %v", err)
	}

	src := report.Sources[0]
	if len(src.Lines) != 2 {
		t.Fatalf("Run(stream) returned %d lines, want 2", len(src.Lines))
	}
	wantSecond := int(size) - len("so we beat on\n")
	if src.Lines[0].Count != 10 || src.Lines[1].Count != wantSecond {
		t.Errorf("Run(stream) counts = %d, %d; want 10, %d", src.Lines[0].Count, src.Lines[1].Count, wantSecond)
	}
	if report.Total != 10+wantSecond {
		t.Errorf("report.Total = %d, want %d", report.Total, 10+wantSecond)
	}
}

func TestRun_MultipleSourcesKeepOrder(t *testing.T) {
	var sources []string
	var wantTotal int
	for i, content := range []string{"a", "bb\ncc", "ddd eee", "", "ffff"} {
		sources = append(sources, writeSource(t, "src"+string(rune('0'+i))+".txt", content))
		wantTotal += counter.CharCount(content).Total
	}

	cfg := baseConfig(sources...)
	cfg.Concurrency = 3
	report, err := Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}

	if len(report.Sources) != len(sources) {
		t.Fatalf("Run() returned %d sources, want %d", len(report.Sources), len(sources))
	}
	for i, src := range report.Sources {
		if src.Source != sources[i] {
			t.Errorf("report.Sources[%d].Source = %q, want %q", i, src.Source, sources[i])
		}
	}
	if report.Total != wantTotal {
		t.Errorf("report.Total = %d, want %d", report.Total, wantTotal)
	}
}

func TestRun_FailedSourceIsWarning(t *testing.T) {
	good := writeSource(t, "good.txt", "hello world")
	missing := filepath.Join(t.TempDir(), "missing.txt")

	var stderr bytes.Buffer
	cfg := baseConfig(missing, good)
	cfg.Quiet = false
	cfg.Stderr = &stderr

	report, err := Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}

	if len(report.Sources) != 1 || report.Sources[0].Source != good {
		t.Errorf("Run() sources = %+v, want only %q", report.Sources, good)
	}
	if report.Total != 10 {
		t.Errorf("report.Total = %d, want 10", report.Total)
	}
	if !strings.Contains(stderr.String(), "failed to process source") {
		t.Errorf("expected warning on stderr, got %q", stderr.String())
	}
}

func TestRun_AllSourcesFail(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.txt")

	_, err := Run(context.Background(), baseConfig(missing))
	if err == nil || !strings.Contains(err.Error(), "does not exist") {
		t.Errorf("Run() error = %v, want missing file error", err)
	}
}

func TestRun_InvalidUTF8(t *testing.T) {
	path := writeSource(t, "binary.bin", "ok\n\xff\xfe")

	_, err := Run(context.Background(), baseConfig(path))
	if !errors.Is(err, counter.ErrInvalidArgument) {
		t.Errorf("Run() error = %v, want ErrInvalidArgument", err)
	}
}

func TestRun_WordMethod(t *testing.T) {
	path := writeSource(t, "words.txt", "one two three\nfour")

	cfg := baseConfig(path)
	cfg.CountingMethod = counter.Words
	report, err := Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}

	if report.Total != 4 || report.Sources[0].Method != "words" {
		t.Errorf("Run(words) = %+v, want total 4 with method words", report)
	}
}

func TestRun_HTMLSource(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body>
<nav>Home About</nav>
<article><p>So we beat on</p><p>boats against the current</p></article>
</body></html>`))
	}))
	defer server.Close()

	cfg := baseConfig(server.URL)
	cfg.HTML = true
	cfg.Selector = "article"
	cfg.Plain = true

	report, err := Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}

	want := counter.TextStats{
		Lines: []counter.LineStat{
			{Line: "So we beat on", Count: 10},
			{Line: "boats against the current", Count: 22},
		},
		Total: 32,
	}
	if diff := cmp.Diff(want, report.Sources[0].TextStats); diff != "" {
		t.Errorf("Run(html) mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_CancelledContext(t *testing.T) {
	path := writeSource(t, "a.txt", "a")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := baseConfig(path)
	cfg.Stream = true
	if _, err := Run(ctx, cfg); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}
