package app

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/chriscorrea/charcount/internal/config"
)

// OutputFormat defines the output format for results
type OutputFormat int

const (
	// plain text output format (default)
	Text OutputFormat = iota
	// JSON output format
	JSON
	// Markdown table output format
	Markdown
)

// String returns the string representation of the output
func (f OutputFormat) String() string {
	switch f {
	case Text:
		return "Text"
	case JSON:
		return "JSON"
	case Markdown:
		return "Markdown"
	default:
		return "Unknown"
	}
}

// ParseOutputFormat maps a config format name to an OutputFormat.
func ParseOutputFormat(name string) (OutputFormat, error) {
	format, err := config.NormalizeFormat(name)
	if err != nil {
		return Text, err
	}
	switch format {
	case config.FormatJSON:
		return JSON, nil
	case config.FormatMarkdown:
		return Markdown, nil
	default:
		return Text, nil
	}
}

// Render writes report to w in the given format.
//
// A single-source JSON report is the source object itself
// ({"source","method","lines","total"}); several sources produce
// {"sources":[...],"total":N}.
func Render(w io.Writer, report Report, format OutputFormat) error {
	bw := bufio.NewWriter(w)

	var err error
	switch format {
	case JSON:
		err = renderJSON(bw, report)
	case Markdown:
		err = renderMarkdown(bw, report)
	default:
		err = renderText(bw, report)
	}
	if err != nil {
		return fmt.Errorf("failed to render %s output: %w", format, err)
	}

	return bw.Flush()
}

func renderJSON(w io.Writer, report Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if len(report.Sources) == 1 {
		return enc.Encode(report.Sources[0])
	}
	return enc.Encode(report)
}

// renderText writes one "count<TAB>line" row per line followed by the total.
func renderText(w io.Writer, report Report) error {
	multi := len(report.Sources) > 1
	for i, src := range report.Sources {
		if multi {
			if i > 0 {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "==> %s <==\n", displayName(src.Source))
		}
		for _, ls := range src.Lines {
			fmt.Fprintf(w, "%d\t%s\n", ls.Count, escapeCR(ls.Line))
		}
		fmt.Fprintf(w, "total\t%d\n", src.Total)
	}
	if multi {
		fmt.Fprintf(w, "\ngrand total\t%d\n", report.Total)
	}
	return nil
}

func renderMarkdown(w io.Writer, report Report) error {
	multi := len(report.Sources) > 1
	for i, src := range report.Sources {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "## %s\n\n", displayName(src.Source))
		fmt.Fprintf(w, "| # | %s | line |\n", src.Method)
		fmt.Fprintln(w, "|---:|---:|---|")
		for n, ls := range src.Lines {
			fmt.Fprintf(w, "| %d | %d | %s |\n", n+1, ls.Count, markdownCell(ls.Line))
		}
		fmt.Fprintf(w, "\n**Total:** %d\n", src.Total)
	}
	if multi {
		fmt.Fprintf(w, "\n**Grand total:** %d\n", report.Total)
	}
	return nil
}

func displayName(source string) string {
	if source == "-" {
		return "stdin"
	}
	return source
}

// escapeCR keeps a lone carriage return from rewinding the terminal line.
func escapeCR(line string) string {
	return strings.ReplaceAll(line, "\r", `\r`)
}

func markdownCell(line string) string {
	cell := strings.ReplaceAll(escapeCR(line), "|", `\|`)
	if strings.TrimSpace(cell) == "" {
		return ""
	}
	return cell
}
