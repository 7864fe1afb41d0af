// Package service ties analysis, evaluation, summaries, exports and run
// history together for every entry point.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"sentiboard/internal/analyzer"
	"sentiboard/internal/domain"
	"sentiboard/internal/evaluation"
	"sentiboard/internal/export"
	"sentiboard/internal/groundtruth"
	"sentiboard/internal/summary"
)

var ErrHistoryDisabled = errors.New("run history is disabled")

type Analyzer interface {
	Analyze(ctx context.Context, lines []string) ([]domain.AnalysisResult, analyzer.BatchReport, error)
	Provider() string
	Model() string
}

type RunStore interface {
	InsertRun(ctx context.Context, run domain.RunRecord) error
	GetRun(ctx context.Context, id string) (domain.RunRecord, error)
	ListRuns(ctx context.Context, limit int) ([]domain.RunRecord, error)
	LatestRunBy(ctx context.Context, requestedBy string) (domain.RunRecord, error)
	GetRunStats(ctx context.Context, since time.Time) (domain.RunStats, error)
}

// Run is the outcome of one analyzed batch.
type Run struct {
	ID          string                  `json:"id"`
	CreatedAt   time.Time               `json:"createdAt"`
	Source      string                  `json:"source"`
	RequestedBy string                  `json:"requestedBy,omitempty"`
	Provider    string                  `json:"provider"`
	Model       string                  `json:"model"`
	Results     []domain.AnalysisResult `json:"results"`
	Summary     summary.Summary         `json:"summary"`
	Evaluation  *evaluation.Evaluation  `json:"evaluation"`
	Fallbacks   int                     `json:"fallbacks"`
	Cached      bool                    `json:"cached"`
	Usage       domain.LLMUsage         `json:"usage"`
	Persisted   bool                    `json:"persisted"`
}

type Service struct {
	analyzer Analyzer
	truth    *groundtruth.GroundTruth
	store    RunStore
	now      func() time.Time
}

type Option func(*Service)

// WithStore enables run history.
func WithStore(store RunStore) Option {
	return func(s *Service) { s.store = store }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func New(a Analyzer, truth *groundtruth.GroundTruth, opts ...Option) *Service {
	s := &Service{analyzer: a, truth: truth, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) HistoryEnabled() bool { return s.store != nil }

// AnalyzeText splits raw input into lines and runs one batch over them.
// Persisting the run is best effort and never fails the request.
func (s *Service) AnalyzeText(ctx context.Context, raw, source, requestedBy string) (*Run, error) {
	lines := domain.SplitLines(raw)
	if len(lines) == 0 {
		return nil, domain.ErrEmptyInput
	}

	results, report, err := s.analyzer.Analyze(ctx, lines)
	if err != nil {
		return nil, err
	}

	run := &Run{
		ID:          uuid.NewString(),
		CreatedAt:   s.now().UTC(),
		Source:      source,
		RequestedBy: requestedBy,
		Provider:    s.analyzer.Provider(),
		Model:       s.analyzer.Model(),
		Results:     results,
		Summary:     summary.Summarize(results),
		Evaluation:  s.Evaluate(results),
		Fallbacks:   report.Fallbacks,
		Cached:      report.Cached,
		Usage:       report.Usage,
	}
	slog.Info("analysis run complete",
		"run_id", run.ID, "source", source, "lines", len(lines),
		"fallbacks", run.Fallbacks, "cached", run.Cached,
		"input_tokens", run.Usage.InputTokens, "output_tokens", run.Usage.OutputTokens)

	if s.store != nil {
		if err := s.store.InsertRun(ctx, run.record()); err != nil {
			slog.Error("persisting run failed", "run_id", run.ID, "err", err)
		} else {
			run.Persisted = true
		}
	}
	return run, nil
}

func (r *Run) record() domain.RunRecord {
	rec := domain.RunRecord{
		ID:            r.ID,
		Source:        r.Source,
		RequestedBy:   r.RequestedBy,
		Provider:      r.Provider,
		Model:         r.Model,
		LineCount:     len(r.Results),
		FallbackCount: r.Fallbacks,
		InputTokens:   r.Usage.InputTokens,
		OutputTokens:  r.Usage.OutputTokens,
		CreatedAt:     r.CreatedAt,
		Results:       r.Results,
	}
	if r.Evaluation != nil {
		acc := r.Evaluation.Accuracy
		rec.Accuracy = &acc
	}
	return rec
}

func (s *Service) Evaluate(results []domain.AnalysisResult) *evaluation.Evaluation {
	if s.truth == nil {
		return nil
	}
	return evaluation.Evaluate(results, s.truth)
}

func (s *Service) Summarize(results []domain.AnalysisResult) summary.Summary {
	return summary.Summarize(results)
}

func (s *Service) Export(format export.Format, results []domain.AnalysisResult) (export.Artifact, error) {
	return export.Export(format, results)
}

// ExportRun renders a stored run.
func (s *Service) ExportRun(ctx context.Context, id string, format export.Format) (export.Artifact, error) {
	run, err := s.Run(ctx, id)
	if err != nil {
		return export.Artifact{}, err
	}
	return export.Export(format, run.Results)
}

func (s *Service) Run(ctx context.Context, id string) (domain.RunRecord, error) {
	if s.store == nil {
		return domain.RunRecord{}, ErrHistoryDisabled
	}
	return s.store.GetRun(ctx, id)
}

func (s *Service) LatestRun(ctx context.Context, requestedBy string) (domain.RunRecord, error) {
	if s.store == nil {
		return domain.RunRecord{}, ErrHistoryDisabled
	}
	return s.store.LatestRunBy(ctx, requestedBy)
}

func (s *Service) RecentRuns(ctx context.Context, limit int) ([]domain.RunRecord, error) {
	if s.store == nil {
		return nil, ErrHistoryDisabled
	}
	return s.store.ListRuns(ctx, limit)
}

func (s *Service) Stats(ctx context.Context, since time.Time) (domain.RunStats, error) {
	if s.store == nil {
		return domain.RunStats{}, ErrHistoryDisabled
	}
	return s.store.GetRunStats(ctx, since)
}

// GroundTruth returns a copy of the reference set.
func (s *Service) GroundTruth() []domain.GroundTruthEntry {
	if s.truth == nil {
		return nil
	}
	return s.truth.Entries()
}
