package summary

import (
	"fmt"
	"testing"

	"sentiboard/internal/domain"
)

func TestTopKeywordsNormalizesAndSkipsPlaceholders(t *testing.T) {
	results := []domain.AnalysisResult{
		{Sentiment: domain.Positive, Keywords: []string{"Great", "great ", "N/A", ""}},
		{Sentiment: domain.Negative, Keywords: []string{"great"}},
	}
	got := TopKeywords(results, domain.Positive)
	if len(got) != 1 || got[0] != (KeywordCount{Keyword: "great", Count: 2}) {
		t.Fatalf("unexpected keywords: %+v", got)
	}
}

func TestTopKeywordsLimitAndTieOrder(t *testing.T) {
	var kws []string
	for i := 0; i < 12; i++ {
		kws = append(kws, fmt.Sprintf("k%02d", i))
	}
	kws = append(kws, "k11")
	results := []domain.AnalysisResult{{Sentiment: domain.Neutral, Keywords: kws}}

	got := TopKeywords(results, domain.Neutral)
	if len(got) != topKeywordLimit {
		t.Fatalf("expected %d keywords, got %d", topKeywordLimit, len(got))
	}
	if got[0].Keyword != "k11" || got[0].Count != 2 {
		t.Fatalf("expected most frequent first, got %+v", got[0])
	}
	if got[1].Keyword != "k00" || got[9].Keyword != "k08" {
		t.Fatalf("expected ties in first-seen order, got %+v", got)
	}
}

func TestConfidenceHistogram(t *testing.T) {
	results := []domain.AnalysisResult{
		{Confidence: 0},
		{Confidence: 0.05},
		{Confidence: 0.5},
		{Confidence: 0.99},
		{Confidence: 1.0},
	}
	bins := ConfidenceHistogram(results)
	if len(bins) != 10 {
		t.Fatalf("expected 10 bins, got %d", len(bins))
	}
	if bins[0].Range != "0-10" || bins[9].Range != "90-100" {
		t.Fatalf("unexpected bin names: %q %q", bins[0].Range, bins[9].Range)
	}
	if bins[0].Count != 2 || bins[5].Count != 1 || bins[9].Count != 2 {
		t.Fatalf("unexpected bin counts: %+v", bins)
	}
}

func TestSummarize(t *testing.T) {
	results := []domain.AnalysisResult{
		{OriginalText: "a", Sentiment: domain.Positive, Confidence: 0.9, Keywords: []string{"love"}},
		{OriginalText: "b", Sentiment: domain.Positive, Confidence: 0.8, Keywords: []string{"Love"}},
		domain.FallbackResult("c"),
	}
	s := Summarize(results)
	if s.Total != 3 || s.Fallbacks != 1 {
		t.Fatalf("unexpected totals: %+v", s)
	}
	if s.Counts[domain.Positive] != 2 || s.Counts[domain.Neutral] != 1 || s.Counts[domain.Negative] != 0 {
		t.Fatalf("unexpected counts: %+v", s.Counts)
	}
	if kws := s.TopKeywords[domain.Positive]; len(kws) != 1 || kws[0].Count != 2 {
		t.Fatalf("unexpected positive keywords: %+v", kws)
	}
	if kws := s.TopKeywords[domain.Neutral]; len(kws) != 0 {
		t.Fatalf("fallback placeholder should not count as keyword: %+v", kws)
	}
}
