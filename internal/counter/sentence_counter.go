package counter

import (
	"log/slog"
	"strings"

	"github.com/jdkato/prose/v2"
)

// SentenceCounter counts sentences using prose's rule-based segmenter.
// Tagging and entity extraction are disabled; only segmentation runs.
type SentenceCounter struct{}

// NewSentenceCounter creates a new SentenceCounter instance.
func NewSentenceCounter() Counter {
	return &SentenceCounter{}
}

// Count returns the number of sentences in text. Blank text has no sentences.
// If prose fails to parse the text, a non-blank text is counted as one sentence.
func (sc *SentenceCounter) Count(text string) int {
	if strings.TrimSpace(text) == "" {
		return 0
	}

	doc, err := prose.NewDocument(text,
		prose.WithTagging(false),
		prose.WithExtraction(false),
		prose.WithTokenization(false),
	)
	if err != nil {
		slog.Debug("Sentence segmentation failed", "error", err)
		return 1
	}

	sentenceCount := len(doc.Sentences())

	slog.Debug("Sentence count calculated", "textLength", len(text), "sentenceCount", sentenceCount)
	return sentenceCount
}

// Name returns the name of this counting method for logging and debugging.
func (sc *SentenceCounter) Name() string {
	return "sentences"
}
