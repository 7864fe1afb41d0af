package domain

import "time"

type LLMUsage struct {
	InputTokens              int64 `json:"inputTokens"`
	OutputTokens             int64 `json:"outputTokens"`
	CacheCreationInputTokens int64 `json:"cacheCreationInputTokens,omitempty"`
	CacheReadInputTokens     int64 `json:"cacheReadInputTokens,omitempty"`
}

func (u LLMUsage) TotalTokens() int64 {
	return u.InputTokens + u.OutputTokens
}

func (u *LLMUsage) Add(other LLMUsage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
	u.CacheCreationInputTokens += other.CacheCreationInputTokens
	u.CacheReadInputTokens += other.CacheReadInputTokens
}

// RunRecord is a persisted analysis batch.
type RunRecord struct {
	ID            string           `json:"id"`
	Source        string           `json:"source"`
	RequestedBy   string           `json:"requestedBy,omitempty"`
	Provider      string           `json:"provider"`
	Model         string           `json:"model"`
	LineCount     int              `json:"lineCount"`
	FallbackCount int              `json:"fallbackCount"`
	Accuracy      *float64         `json:"accuracy,omitempty"`
	InputTokens   int64            `json:"inputTokens"`
	OutputTokens  int64            `json:"outputTokens"`
	CreatedAt     time.Time        `json:"createdAt"`
	Results       []AnalysisResult `json:"results,omitempty"`
}

type RunStats struct {
	TotalRuns      int               `json:"totalRuns"`
	TotalResults   int               `json:"totalResults"`
	TotalFallbacks int               `json:"totalFallbacks"`
	AvgConfidence  float64           `json:"avgConfidence"`
	BucketBelow50  int               `json:"bucketBelow50"`
	Bucket50to70   int               `json:"bucket50to70"`
	Bucket70to90   int               `json:"bucket70to90"`
	Bucket90Plus   int               `json:"bucket90Plus"`
	BySentiment    map[Sentiment]int `json:"bySentiment"`
}
