package analyzer

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"sentiboard/internal/domain"
	"sentiboard/internal/integrations/llm"
)

type fakeProvider struct {
	text  string
	err   error
	calls int
	last  llm.Request
}

func (f *fakeProvider) Name() string  { return "fake" }
func (f *fakeProvider) Model() string { return "fake-1" }

func (f *fakeProvider) Generate(_ context.Context, req llm.Request) (llm.Response, error) {
	f.calls++
	f.last = req
	if f.err != nil {
		return llm.Response{}, f.err
	}
	return llm.Response{Text: f.text, Usage: domain.LLMUsage{InputTokens: 10, OutputTokens: 20}}, nil
}

type memoryCache struct {
	data map[string][]domain.AnalysisResult
	sets int
}

func (m *memoryCache) Get(_ context.Context, key string) ([]domain.AnalysisResult, bool, error) {
	r, ok := m.data[key]
	return r, ok, nil
}

func (m *memoryCache) Set(_ context.Context, key string, results []domain.AnalysisResult, _ time.Duration) error {
	m.data[key] = results
	m.sets++
	return nil
}

func TestAnalyzeReordersToInputOrder(t *testing.T) {
	p := &fakeProvider{text: `[
		{"originalText":"bad","sentiment":"Negative","confidence":0.8,"keywords":["bad"],"explanation":"neg"},
		{"originalText":"good","sentiment":"Positive","confidence":0.9,"keywords":["good"],"explanation":"pos"}
	]`}
	results, report, err := New(p).Analyze(context.Background(), []string{"good", "bad"})
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	if p.calls != 1 {
		t.Fatalf("expected exactly one outbound call, got %d", p.calls)
	}
	if len(results) != 2 || results[0].OriginalText != "good" || results[1].OriginalText != "bad" {
		t.Fatalf("results not aligned to input order: %+v", results)
	}
	if results[0].Sentiment != domain.Positive || results[1].Sentiment != domain.Negative {
		t.Fatalf("unexpected sentiments: %+v", results)
	}
	if report.Fallbacks != 0 || report.Usage.TotalTokens() != 30 {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestAnalyzeFallbackForMissingLine(t *testing.T) {
	p := &fakeProvider{text: `[{"originalText":"good","sentiment":"Positive","confidence":0.9,"keywords":["good"],"explanation":"pos"}]`}
	results, report, err := New(p).Analyze(context.Background(), []string{"good", "missing"})
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	if !reflect.DeepEqual(results[1], domain.FallbackResult("missing")) {
		t.Fatalf("expected fallback, got %+v", results[1])
	}
	if report.Fallbacks != 1 {
		t.Fatalf("expected 1 fallback, got %d", report.Fallbacks)
	}
}

func TestAnalyzeNonArrayIsServiceError(t *testing.T) {
	for _, payload := range []string{`{"originalText":"good"}`, `not json`, `null`, `"text"`} {
		p := &fakeProvider{text: payload}
		results, _, err := New(p).Analyze(context.Background(), []string{"good"})
		if results != nil {
			t.Fatalf("payload %q: expected no partial results, got %+v", payload, results)
		}
		var svcErr *domain.AnalysisServiceError
		if !errors.As(err, &svcErr) {
			t.Fatalf("payload %q: expected AnalysisServiceError, got %v", payload, err)
		}
		var malformed *domain.MalformedResponseError
		if !errors.As(err, &malformed) {
			t.Fatalf("payload %q: expected MalformedResponseError cause, got %v", payload, err)
		}
	}
}

func TestAnalyzeMistypedElementFallsBack(t *testing.T) {
	p := &fakeProvider{text: `[
		{"originalText":"a","sentiment":"Positive","confidence":"0.9","keywords":[],"explanation":"pos"},
		1,
		null,
		{"originalText":"b","sentiment":"Negative","confidence":0.8,"keywords":["bad"],"explanation":"neg"}
	]`}
	results, report, err := New(p).Analyze(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	if !reflect.DeepEqual(results[0], domain.FallbackResult("a")) {
		t.Fatalf("expected fallback for mistyped entry, got %+v", results[0])
	}
	if results[1].Sentiment != domain.Negative || results[1].Confidence != 0.8 {
		t.Fatalf("expected model result for b, got %+v", results[1])
	}
	if report.Fallbacks != 1 {
		t.Fatalf("expected 1 fallback, got %d", report.Fallbacks)
	}
}

func TestParseResultsCountsSkippedElements(t *testing.T) {
	parsed, skipped, err := ParseResults(`[1, "x", {"originalText":"ok","sentiment":"Neutral","confidence":0.5,"keywords":[],"explanation":"e"}]`)
	if err != nil {
		t.Fatalf("ParseResults returned error: %v", err)
	}
	if skipped != 2 || len(parsed) != 1 || parsed[0].OriginalText != "ok" {
		t.Fatalf("unexpected parse: parsed=%+v skipped=%d", parsed, skipped)
	}

	parsed, _, err = ParseResults(`[{"originalText":"x","sentiment":"Mixed","confidence":0.4,"keywords":[],"explanation":"e"}]`)
	if err != nil || len(parsed) != 1 || parsed[0].Sentiment != domain.Sentiment("Mixed") {
		t.Fatalf("labels should pass through verbatim, got parsed=%+v err=%v", parsed, err)
	}

	parsed, skipped, err = ParseResults(`[]`)
	if err != nil || len(parsed) != 0 || skipped != 0 {
		t.Fatalf("empty array should parse cleanly, got parsed=%+v skipped=%d err=%v", parsed, skipped, err)
	}
}

func TestAnalyzeTransportErrorIsServiceError(t *testing.T) {
	p := &fakeProvider{err: errors.New("connection reset")}
	results, _, err := New(p).Analyze(context.Background(), []string{"good"})
	if results != nil {
		t.Fatalf("expected no results, got %+v", results)
	}
	var svcErr *domain.AnalysisServiceError
	if !errors.As(err, &svcErr) || svcErr.Provider != "fake" {
		t.Fatalf("expected AnalysisServiceError from fake, got %v", err)
	}
	if err.Error() != "Failed to analyze sentiment. The API might be temporarily unavailable." {
		t.Fatalf("unexpected user message: %q", err.Error())
	}
}

func TestAnalyzeEmptyInput(t *testing.T) {
	p := &fakeProvider{}
	_, _, err := New(p).Analyze(context.Background(), nil)
	if !errors.Is(err, domain.ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
	if p.calls != 0 {
		t.Fatal("empty input must not reach the provider")
	}
}

func TestReconcileDuplicateLinesShareFirstEntry(t *testing.T) {
	parsed := []domain.AnalysisResult{
		{OriginalText: "same", Sentiment: domain.Positive, Confidence: 0.7, Keywords: []string{"a"}, Explanation: "first"},
		{OriginalText: "same", Sentiment: domain.Negative, Confidence: 0.6, Keywords: []string{"b"}, Explanation: "second"},
	}
	results, fallbacks := Reconcile([]string{"same", "other", "same", "same"}, parsed)
	if fallbacks != 1 {
		t.Fatalf("expected 1 fallback, got %d", fallbacks)
	}
	for _, i := range []int{0, 2, 3} {
		if results[i].Explanation != "first" {
			t.Fatalf("occurrence %d should map to the first entry, got %+v", i, results[i])
		}
	}
	results[0].Keywords[0] = "mutated"
	if results[2].Keywords[0] != "a" {
		t.Fatal("results must not share keyword slices")
	}
}

func TestReconcileExactMatchOnly(t *testing.T) {
	parsed := []domain.AnalysisResult{{OriginalText: "Good ", Sentiment: domain.Positive}}
	results, fallbacks := Reconcile([]string{"Good"}, parsed)
	if fallbacks != 1 || results[0].Explanation != domain.FallbackExplanation {
		t.Fatalf("expected fallback for non-exact text, got %+v", results[0])
	}
}

func TestAnalyzeUsesCache(t *testing.T) {
	p := &fakeProvider{text: `[{"originalText":"good","sentiment":"Positive","confidence":0.9,"keywords":[],"explanation":"pos"}]`}
	c := &memoryCache{data: map[string][]domain.AnalysisResult{}}
	a := New(p, WithCache(c, time.Minute))

	if _, _, err := a.Analyze(context.Background(), []string{"good"}); err != nil {
		t.Fatalf("first Analyze: %v", err)
	}
	_, report, err := a.Analyze(context.Background(), []string{"good"})
	if err != nil {
		t.Fatalf("second Analyze: %v", err)
	}
	if p.calls != 1 || c.sets != 1 {
		t.Fatalf("expected one call and one cache write, got calls=%d sets=%d", p.calls, c.sets)
	}
	if !report.Cached {
		t.Fatal("expected second batch to be served from cache")
	}
}

func TestAnalyzeDoesNotCachePartialBatch(t *testing.T) {
	p := &fakeProvider{text: `[{"originalText":"good","sentiment":"Positive","confidence":0.9,"keywords":[],"explanation":"pos"}]`}
	c := &memoryCache{data: map[string][]domain.AnalysisResult{}}
	a := New(p, WithCache(c, time.Minute))

	for i := 0; i < 2; i++ {
		_, report, err := a.Analyze(context.Background(), []string{"good", "missing"})
		if err != nil {
			t.Fatalf("Analyze %d: %v", i, err)
		}
		if report.Cached || report.Fallbacks != 1 {
			t.Fatalf("Analyze %d: unexpected report %+v", i, report)
		}
	}
	if c.sets != 0 {
		t.Fatalf("batch with fallbacks must not be cached, got %d writes", c.sets)
	}
	if p.calls != 2 {
		t.Fatalf("expected the provider to be called again, got %d calls", p.calls)
	}
}
