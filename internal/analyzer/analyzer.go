package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"sentiboard/internal/cache"
	"sentiboard/internal/domain"
	"sentiboard/internal/integrations/llm"
)

// BatchReport describes how one batch was answered.
type BatchReport struct {
	Fallbacks int
	Cached    bool
	Usage     domain.LLMUsage
}

type Analyzer struct {
	provider llm.Provider
	cache    cache.Cache
	cacheTTL time.Duration
}

type Option func(*Analyzer)

// WithCache enables result caching. A nil cache disables it.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(a *Analyzer) {
		a.cache = c
		a.cacheTTL = ttl
	}
}

func New(provider llm.Provider, opts ...Option) *Analyzer {
	a := &Analyzer{provider: provider}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Analyzer) Provider() string { return a.provider.Name() }
func (a *Analyzer) Model() string    { return a.provider.Model() }

// Analyze classifies all lines with a single outbound call and returns one
// result per line in input order. A call failure or a payload that is not a
// JSON array aborts the batch with an *domain.AnalysisServiceError and no
// results.
func (a *Analyzer) Analyze(ctx context.Context, lines []string) ([]domain.AnalysisResult, BatchReport, error) {
	if len(lines) == 0 {
		return nil, BatchReport{}, domain.ErrEmptyInput
	}
	name := a.provider.Name()

	var key string
	if a.cache != nil {
		key = cache.Key(name, a.provider.Model(), lines)
		cached, ok, err := a.cache.Get(ctx, key)
		if err != nil {
			slog.Warn("analyzer cache get failed", "err", err)
		} else if ok && len(cached) == len(lines) {
			slog.Info("analyzer cache hit", "provider", name, "items", len(lines))
			batchesTotal.WithLabelValues(name, "cached").Inc()
			return cached, BatchReport{Cached: true, Fallbacks: countFallbacks(cached)}, nil
		}
	}

	slog.Info("llm batch-analyze", "provider", name, "model", a.provider.Model(), "items", len(lines))
	start := time.Now()
	resp, err := a.provider.Generate(ctx, llm.BuildRequest(lines))
	batchSeconds.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if err != nil {
		batchesTotal.WithLabelValues(name, "error").Inc()
		return nil, BatchReport{}, &domain.AnalysisServiceError{Provider: name, Err: err}
	}
	tokensTotal.WithLabelValues(name, "input").Add(float64(resp.Usage.InputTokens))
	tokensTotal.WithLabelValues(name, "output").Add(float64(resp.Usage.OutputTokens))

	parsed, skipped, err := ParseResults(resp.Text)
	if err != nil {
		slog.Error("llm batch-analyze malformed", "provider", name, "err", err)
		batchesTotal.WithLabelValues(name, "malformed").Inc()
		return nil, BatchReport{Usage: resp.Usage}, &domain.AnalysisServiceError{Provider: name, Err: err}
	}

	if skipped > 0 {
		slog.Warn("llm batch-analyze skipped entries", "provider", name, "skipped", skipped)
	}

	results, fallbacks := Reconcile(lines, parsed)
	report := BatchReport{Fallbacks: fallbacks, Usage: resp.Usage}
	batchesTotal.WithLabelValues(name, "ok").Inc()
	linesTotal.WithLabelValues(name).Add(float64(len(lines)))
	fallbacksTotal.WithLabelValues(name).Add(float64(fallbacks))
	if fallbacks > 0 {
		slog.Warn("llm batch-analyze missing entries", "provider", name, "items", len(lines), "returned", len(parsed), "fallbacks", fallbacks)
	}

	// Partial answers are not cached.
	if a.cache != nil && fallbacks == 0 {
		if err := a.cache.Set(ctx, key, results, a.cacheTTL); err != nil {
			slog.Warn("analyzer cache set failed", "err", err)
		}
	}
	return results, report, nil
}

// ParseResults decodes a model payload that must be a JSON array. Elements
// that do not decode as a result are skipped and reported in the count, so
// their lines fall back during reconciliation.
func ParseResults(payload string) ([]domain.AnalysisResult, int, error) {
	var raw json.RawMessage
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, 0, &domain.MalformedResponseError{Payload: payload, Err: err}
	}
	var elements []json.RawMessage
	if err := json.Unmarshal(raw, &elements); err != nil || elements == nil {
		return nil, 0, &domain.MalformedResponseError{Payload: payload, Err: errors.New("response is not a JSON array")}
	}

	parsed := make([]domain.AnalysisResult, 0, len(elements))
	skipped := 0
	for _, el := range elements {
		var entry domain.AnalysisResult
		if err := json.Unmarshal(el, &entry); err != nil || bytes.HasPrefix(bytes.TrimSpace(el), []byte("null")) {
			skipped++
			continue
		}
		parsed = append(parsed, entry)
	}
	return parsed, skipped, nil
}

// Reconcile aligns parsed entries to the input lines by exact text. The first
// entry for a text wins, and entries are not consumed: every occurrence of a
// duplicated line maps to the same entry. Lines with no entry get the fallback.
func Reconcile(lines []string, parsed []domain.AnalysisResult) ([]domain.AnalysisResult, int) {
	byText := make(map[string]domain.AnalysisResult, len(parsed))
	for _, entry := range parsed {
		if _, seen := byText[entry.OriginalText]; !seen {
			byText[entry.OriginalText] = entry
		}
	}

	results := make([]domain.AnalysisResult, len(lines))
	fallbacks := 0
	for i, line := range lines {
		entry, ok := byText[line]
		if !ok {
			results[i] = domain.FallbackResult(line)
			fallbacks++
			continue
		}
		if entry.Keywords != nil {
			entry.Keywords = append([]string(nil), entry.Keywords...)
		}
		results[i] = entry
	}
	return results, fallbacks
}

func countFallbacks(results []domain.AnalysisResult) int {
	n := 0
	for _, r := range results {
		if r.Sentiment == domain.Neutral && r.Explanation == domain.FallbackExplanation {
			n++
		}
	}
	return n
}
