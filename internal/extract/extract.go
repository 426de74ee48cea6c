// Package extract turns HTML sources into line-structured text before counting.
package extract

import (
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
)

// Options controls how HTML is reduced to text.
type Options struct {
	Selector   string   // CSS selector; overrides IncludeAll when set
	IncludeAll bool     // convert the whole document instead of the readable article
	BaseURL    *url.URL // resolves relative links during readability extraction (may be nil)
	Plain      bool     // emit plain text instead of Markdown
}

// blankRuns collapses three or more newlines into one blank line.
var blankRuns = regexp.MustCompile(`\n{3,}`)

// ToText extracts content from HTML and returns it as Markdown (default) or
// plain text. Either form keeps one block element per line so line statistics
// stay meaningful.
func ToText(content io.Reader, opts Options) (string, error) {
	var (
		html string
		err  error
	)
	switch {
	case opts.Selector != "":
		html, err = selectHTML(content, opts.Selector)
	case opts.IncludeAll:
		html, err = readAllHTML(content)
	default:
		html, err = readableHTML(content, opts.BaseURL)
	}
	if err != nil {
		return "", err
	}

	if opts.Plain {
		return toPlain(html)
	}
	return toMarkdown(html)
}

// readableHTML uses go-readability to keep only the main article content.
func readableHTML(content io.Reader, baseURL *url.URL) (string, error) {
	if baseURL == nil {
		baseURL = &url.URL{}
	}

	article, err := readability.FromReader(content, baseURL)
	if err != nil {
		return "", fmt.Errorf("failed to extract main content: %w", err)
	}
	return article.Content, nil
}

// selectHTML returns the outer HTML of every element matching selector.
func selectHTML(content io.Reader, selector string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(content)
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	selection := doc.Find(selector)
	if selection.Length() == 0 {
		return "", fmt.Errorf("no elements found matching selector: %s", selector)
	}

	var parts []string
	selection.Each(func(_ int, s *goquery.Selection) {
		if outer, err := goquery.OuterHtml(s); err == nil {
			parts = append(parts, outer)
		}
	})
	if len(parts) == 0 {
		return "", fmt.Errorf("failed to extract HTML from selection")
	}

	return strings.Join(parts, "\n"), nil
}

// readAllHTML reads the whole document unfiltered.
func readAllHTML(content io.Reader) (string, error) {
	data, err := io.ReadAll(content)
	if err != nil {
		return "", fmt.Errorf("failed to read HTML content: %w", err)
	}
	return string(data), nil
}

// toMarkdown converts an HTML fragment to tidy Markdown.
func toMarkdown(html string) (string, error) {
	converter := md.NewConverter("", true, nil)

	markdown, err := converter.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("failed to convert HTML to Markdown: %w", err)
	}

	return tidy(markdown), nil
}

// toPlain renders an HTML fragment as text, one block element per line.
func toPlain(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("script, style, noscript").Remove()

	var lines []string
	doc.Find("h1, h2, h3, h4, h5, h6, p, li, blockquote, pre, td, th").Each(func(_ int, s *goquery.Selection) {
		// nested blocks are emitted by their innermost element
		if s.Find("p, li, blockquote, pre").Length() > 0 {
			return
		}
		if text := strings.Join(strings.Fields(s.Text()), " "); text != "" {
			lines = append(lines, text)
		}
	})

	// fragments without block elements fall back to the document text
	if len(lines) == 0 {
		return tidy(doc.Text()), nil
	}
	return strings.Join(lines, "\n"), nil
}

func tidy(text string) string {
	return blankRuns.ReplaceAllString(strings.TrimSpace(text), "\n\n")
}
