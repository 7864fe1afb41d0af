package llm

import (
	"context"
	"encoding/json"
	"testing"

	"sentiboard/internal/domain"
)

func TestVaderGenerateClassifiesEachLine(t *testing.T) {
	lines := []string{
		"I love this product, it is **wonderful**!",
		"This is terrible and I hate it.",
		"The package arrived on Tuesday.",
	}
	resp, err := NewVader().Generate(context.Background(), BuildRequest(lines))
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	var results []domain.AnalysisResult
	if err := json.Unmarshal([]byte(resp.Text), &results); err != nil {
		t.Fatalf("payload is not a JSON array: %v", err)
	}
	if len(results) != len(lines) {
		t.Fatalf("expected %d results, got %d", len(lines), len(results))
	}
	want := []domain.Sentiment{domain.Positive, domain.Negative, domain.Neutral}
	for i, r := range results {
		if r.OriginalText != lines[i] {
			t.Fatalf("result %d text = %q, want original line", i, r.OriginalText)
		}
		if r.Sentiment != want[i] {
			t.Fatalf("result %d sentiment = %s, want %s", i, r.Sentiment, want[i])
		}
		if r.Confidence < 0 || r.Confidence > 1 {
			t.Fatalf("result %d confidence out of range: %f", i, r.Confidence)
		}
	}
	if len(results[0].Keywords) == 0 {
		t.Fatal("expected valence keywords for the positive line")
	}
}

func TestVaderHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewVader().Generate(ctx, BuildRequest([]string{"fine"})); err == nil {
		t.Fatal("expected context error")
	}
}

func TestMarkdownToText(t *testing.T) {
	got := markdownToText("**Great** [docs](https://example.com/x) see https://foo.bar now")
	if got != "Great docs see now" {
		t.Fatalf("markdownToText = %q", got)
	}
}
