package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"log/slog"
	"math"
	"regexp"
	"strings"
	"sync"

	"github.com/jonreiter/govader"
	"github.com/russross/blackfriday/v2"

	"sentiboard/internal/domain"
)

const vaderThreshold = 0.20

var (
	markdownLinkPattern = regexp.MustCompile(`\[(.*?)\]\((https?:\/\/[^\s\)]+)\)`)
	urlPattern          = regexp.MustCompile(`https?://\S+|www\.\S+`)
	htmlTagPattern      = regexp.MustCompile(`<[^>]*>`)
)

// The lexicon is loaded on first use and shared.
var vaderAnalyzer = sync.OnceValue(govader.NewSentimentIntensityAnalyzer)

// Vader is an offline lexicon classifier. It answers with the same JSON
// array payload a model would, so it runs through the same reconciliation.
type Vader struct{}

func NewVader() *Vader {
	return &Vader{}
}

func (v *Vader) Name() string  { return "vader" }
func (v *Vader) Model() string { return "vader-lexicon" }

func (v *Vader) Generate(ctx context.Context, req Request) (Response, error) {
	results := make([]domain.AnalysisResult, 0, len(req.Lines))
	for _, line := range req.Lines {
		if err := ctx.Err(); err != nil {
			return Response{}, err
		}
		results = append(results, v.classify(line))
	}
	payload, err := json.Marshal(results)
	if err != nil {
		return Response{}, fmt.Errorf("marshaling vader results: %w", err)
	}
	slog.Info("llm vader response", "items", len(results), "size", len(payload))
	return Response{Text: string(payload)}, nil
}

func (v *Vader) classify(line string) domain.AnalysisResult {
	plain := markdownToText(line)
	score := vaderAnalyzer().PolarityScores(plain).Compound

	label := domain.Neutral
	confidence := 1 - math.Abs(score)
	if score >= vaderThreshold {
		label = domain.Positive
		confidence = score
	} else if score <= -vaderThreshold {
		label = domain.Negative
		confidence = -score
	}
	confidence = math.Max(0, math.Min(1, confidence))

	keywords := v.keywords(plain)
	if len(keywords) == 0 {
		keywords = []string{}
	}
	return domain.AnalysisResult{
		OriginalText: line,
		Sentiment:    label,
		Confidence:   math.Round(confidence*1000) / 1000,
		Keywords:     keywords,
		Explanation:  fmt.Sprintf("Lexicon compound score %.3f classified as %s.", score, strings.ToLower(string(label))),
	}
}

// keywords returns the tokens that carry valence on their own.
func (v *Vader) keywords(plain string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, tok := range strings.Fields(plain) {
		word := strings.ToLower(strings.Trim(tok, ".,!?;:\"'()[]{}"))
		if word == "" || seen[word] {
			continue
		}
		if vaderAnalyzer().PolarityScores(word).Compound != 0 {
			seen[word] = true
			out = append(out, word)
		}
	}
	return out
}

func markdownToText(input string) string {
	output := blackfriday.Run([]byte(input), blackfriday.WithNoExtensions())
	text := html.UnescapeString(htmlTagPattern.ReplaceAllString(string(output), " "))
	text = markdownLinkPattern.ReplaceAllString(text, "$1")
	text = urlPattern.ReplaceAllString(text, "")
	return strings.Join(strings.Fields(text), " ")
}
