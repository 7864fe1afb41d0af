// Package summary computes the dashboard aggregates shown next to a batch.
package summary

import (
	"fmt"
	"sort"
	"strings"

	"sentiboard/internal/domain"
)

const topKeywordLimit = 10

type KeywordCount struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
}

type HistogramBin struct {
	Range string `json:"range"`
	Count int    `json:"count"`
}

type Summary struct {
	Total       int                                 `json:"total"`
	Counts      map[domain.Sentiment]int            `json:"counts"`
	Histogram   []HistogramBin                      `json:"histogram"`
	TopKeywords map[domain.Sentiment][]KeywordCount `json:"topKeywords"`
	Fallbacks   int                                 `json:"fallbacks"`
}

func Summarize(results []domain.AnalysisResult) Summary {
	s := Summary{
		Total:       len(results),
		Counts:      SentimentCounts(results),
		Histogram:   ConfidenceHistogram(results),
		TopKeywords: make(map[domain.Sentiment][]KeywordCount, len(domain.Labels)),
	}
	for _, label := range domain.Labels {
		s.TopKeywords[label] = TopKeywords(results, label)
	}
	for _, r := range results {
		if r.Sentiment == domain.Neutral && r.Explanation == domain.FallbackExplanation {
			s.Fallbacks++
		}
	}
	return s
}

// SentimentCounts always carries all three labels.
func SentimentCounts(results []domain.AnalysisResult) map[domain.Sentiment]int {
	counts := make(map[domain.Sentiment]int, len(domain.Labels))
	for _, label := range domain.Labels {
		counts[label] = 0
	}
	for _, r := range results {
		if r.Sentiment.Valid() {
			counts[r.Sentiment]++
		}
	}
	return counts
}

// ConfidenceHistogram buckets confidences into ten 10-point bins; 1.0 lands
// in the last one.
func ConfidenceHistogram(results []domain.AnalysisResult) []HistogramBin {
	bins := make([]HistogramBin, 10)
	for i := range bins {
		bins[i].Range = fmt.Sprintf("%d-%d", i*10, (i+1)*10)
	}
	for _, r := range results {
		idx := int(r.Confidence * 10)
		if idx > 9 {
			idx = 9
		}
		if idx < 0 {
			idx = 0
		}
		bins[idx].Count++
	}
	return bins
}

// TopKeywords returns the most frequent normalized keywords among results of
// one label, ties kept in first-seen order.
func TopKeywords(results []domain.AnalysisResult, label domain.Sentiment) []KeywordCount {
	index := make(map[string]int)
	var out []KeywordCount
	for _, r := range results {
		if r.Sentiment != label {
			continue
		}
		for _, kw := range r.Keywords {
			kw = strings.TrimSpace(strings.ToLower(kw))
			if kw == "" || kw == "n/a" {
				continue
			}
			if i, ok := index[kw]; ok {
				out[i].Count++
				continue
			}
			index[kw] = len(out)
			out = append(out, KeywordCount{Keyword: kw, Count: 1})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if len(out) > topKeywordLimit {
		out = out[:topKeywordLimit]
	}
	return out
}
