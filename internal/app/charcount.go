// Package app contains the core application logic for the charcount CLI tool.
// It reads every source, counts its lines and aggregates the results,
// separated from CLI concerns.
package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/chriscorrea/charcount/internal/counter"
	"github.com/chriscorrea/charcount/internal/extract"
	"github.com/chriscorrea/charcount/internal/fetch"
	"github.com/chriscorrea/charcount/internal/spinner"
)

// Config holds all configuration options for a charcount run.
type Config struct {
	Sources        []string               // URLs, file paths, or "-" for stdin
	CountingMethod counter.CountingMethod // what to count on each line
	OutputFormat   OutputFormat
	HTML           bool   // extract readable text from HTML sources before counting
	Selector       string // CSS selector for HTML extraction
	IncludeAll     bool   // convert all HTML instead of the readable article
	Plain          bool   // extract HTML as plain text instead of Markdown
	Stream         bool   // count plain-text sources without buffering them
	Concurrency    int    // max sources read at once
	Quiet          bool   // suppress warnings and the spinner
	Debug          bool
	Stderr         io.Writer // warnings; defaults to os.Stderr
}

// SourceStats is the result for one source.
type SourceStats struct {
	Source string `json:"source"`
	Method string `json:"method"`
	counter.TextStats
}

// Report aggregates the results of every source that could be counted, in
// the order the sources were given.
type Report struct {
	Sources []SourceStats `json:"sources"`
	Total   int           `json:"total"`
}

// Validate rejects configurations Run cannot execute.
func (c Config) Validate() error {
	if len(c.Sources) == 0 {
		return fmt.Errorf("no sources provided")
	}
	if c.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive, got %d", c.Concurrency)
	}
	if c.Stream && c.HTML {
		return fmt.Errorf("streaming cannot be combined with HTML extraction")
	}

	// stdin can only be consumed once
	stdinCount := 0
	for _, source := range c.Sources {
		if fetch.KindOf(source) == fetch.KindStdin {
			stdinCount++
		}
	}
	if stdinCount > 1 {
		return fmt.Errorf("stdin (%q) may be given only once, got %d", fetch.Stdin, stdinCount)
	}
	return nil
}

// Run counts every source in cfg.Sources.
//
// Sources are read concurrently, bounded by cfg.Concurrency. A source that
// fails is reported as a warning and skipped; Run fails only when no source
// could be counted or ctx is cancelled.
func Run(ctx context.Context, cfg Config) (Report, error) {
	if err := cfg.Validate(); err != nil {
		return Report{}, err
	}

	textCounter, err := counter.NewCounter(cfg.CountingMethod)
	if err != nil {
		return Report{}, fmt.Errorf("failed to create counter: %w", err)
	}
	slog.Debug("Counting sources", "sources", len(cfg.Sources), "method", textCounter.Name(), "concurrency", cfg.Concurrency)

	var sp *spinner.Spinner
	if !cfg.Quiet {
		sp = spinner.ForTerminal(ctx, os.Stderr, "Counting sources...")
		sp.Start()
	}

	results := make([]counter.TextStats, len(cfg.Sources))
	errs := make([]error, len(cfg.Sources))
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Concurrency)
	for i, source := range cfg.Sources {
		g.Go(func() error {
			results[i], errs[i] = countSource(gctx, source, cfg, textCounter)
			sp.Progress(int(done.Add(1)), len(cfg.Sources))
			// only cancellation aborts the group; source failures are warnings
			if errs[i] != nil && ctx.Err() != nil {
				return ctx.Err()
			}
			return nil
		})
	}
	waitErr := g.Wait()
	sp.Stop()
	if waitErr != nil {
		return Report{}, waitErr
	}

	report := Report{Sources: make([]SourceStats, 0, len(cfg.Sources))}
	var failures []error
	for i, source := range cfg.Sources {
		if errs[i] != nil {
			failures = append(failures, fmt.Errorf("%s: %w", source, errs[i]))
			warn(cfg, "Warning: failed to process source %q: %v\n", source, errs[i])
			continue
		}
		report.Sources = append(report.Sources, SourceStats{
			Source:    source,
			Method:    cfg.CountingMethod.String(),
			TextStats: results[i],
		})
		report.Total += results[i].Total
	}

	if len(report.Sources) == 0 {
		return Report{}, fmt.Errorf("no text counted from any source: %w", errors.Join(failures...))
	}

	return report, nil
}

// countSource reads one source and counts its lines with c.
func countSource(ctx context.Context, source string, cfg Config, c counter.Counter) (counter.TextStats, error) {
	slog.Debug("Reading source", "source", source, "stream", cfg.Stream, "html", cfg.HTML)

	if cfg.Stream {
		// only counter.MaxLineBytes bounds a streamed source
		reader, err := fetch.OpenStream(ctx, source)
		if err != nil {
			return counter.TextStats{}, fmt.Errorf("failed to fetch content: %w", err)
		}
		defer reader.Close()
		return counter.CountReader(ctx, reader, c)
	}

	data, err := fetch.ReadText(ctx, source)
	if err != nil {
		return counter.TextStats{}, fmt.Errorf("failed to fetch content: %w", err)
	}

	if !cfg.HTML {
		return counter.CountBytes(data, c)
	}

	opts := extract.Options{
		Selector:   cfg.Selector,
		IncludeAll: cfg.IncludeAll,
		Plain:      cfg.Plain,
	}
	if fetch.KindOf(source) == fetch.KindURL {
		opts.BaseURL, _ = url.Parse(source) // nil on parse errors is fine
	}

	text, err := extract.ToText(bytes.NewReader(data), opts)
	if err != nil {
		return counter.TextStats{}, fmt.Errorf("failed to extract content: %w", err)
	}
	return counter.CountBytes([]byte(text), c)
}

func warn(cfg Config, format string, args ...any) {
	if cfg.Quiet {
		return
	}
	w := cfg.Stderr
	if w == nil {
		w = os.Stderr
	}
	fmt.Fprintf(w, format, args...)
}
