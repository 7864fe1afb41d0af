package domain

import "strings"

type Sentiment string

const (
	Positive Sentiment = "Positive"
	Negative Sentiment = "Negative"
	Neutral  Sentiment = "Neutral"
)

// Labels is the closed label set in display order.
var Labels = []Sentiment{Positive, Negative, Neutral}

func (s Sentiment) Valid() bool {
	switch s {
	case Positive, Negative, Neutral:
		return true
	}
	return false
}

// Index returns the position of s in Labels, or -1 for an unknown label.
func (s Sentiment) Index() int {
	for i, l := range Labels {
		if l == s {
			return i
		}
	}
	return -1
}

// AnalysisResult is one classified input line. Field order is the export order.
type AnalysisResult struct {
	OriginalText string    `json:"originalText"`
	Sentiment    Sentiment `json:"sentiment"`
	Confidence   float64   `json:"confidence"`
	Keywords     []string  `json:"keywords"`
	Explanation  string    `json:"explanation"`
}

type GroundTruthEntry struct {
	Text      string    `json:"text" yaml:"text"`
	Sentiment Sentiment `json:"sentiment" yaml:"sentiment"`
}

const (
	FallbackConfidence  = 0.5
	FallbackKeyword     = "N/A"
	FallbackExplanation = "Model did not return a result for this specific text."
)

// FallbackResult is emitted for an input line the model left out of its answer.
func FallbackResult(line string) AnalysisResult {
	return AnalysisResult{
		OriginalText: line,
		Sentiment:    Neutral,
		Confidence:   FallbackConfidence,
		Keywords:     []string{FallbackKeyword},
		Explanation:  FallbackExplanation,
	}
}

// SplitLines splits raw input on newlines and drops blank lines. Kept lines
// are matched verbatim later, so only a trailing CR is removed.
func SplitLines(raw string) []string {
	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
