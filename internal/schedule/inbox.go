// Package schedule runs the inbox analysis on a cron schedule.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"sentiboard/internal/config"
	"sentiboard/internal/domain"
	"sentiboard/internal/export"
	"sentiboard/internal/service"
)

// InboxResult describes one scheduled pass over the inbox file.
type InboxResult struct {
	InboxPath string
	Skipped   bool
	RunID     string
	Lines     int
	Fallbacks int
	Counts    map[domain.Sentiment]int
	Evaluated int
	Accuracy  float64
	Files     []string
}

// Notifier receives the summary of each pass.
type Notifier interface {
	Notify(text string) error
}

// RunInboxOnce analyzes the inbox file and writes every export format into
// outputDir. An empty inbox is skipped without error.
func RunInboxOnce(ctx context.Context, svc *service.Service, inboxPath, outputDir string) (InboxResult, error) {
	result := InboxResult{InboxPath: inboxPath}
	data, err := os.ReadFile(inboxPath)
	if err != nil {
		return result, fmt.Errorf("reading inbox: %w", err)
	}

	run, err := svc.AnalyzeText(ctx, string(data), "schedule", "")
	if errors.Is(err, domain.ErrEmptyInput) {
		result.Skipped = true
		return result, nil
	}
	if err != nil {
		return result, err
	}

	result.RunID = run.ID
	result.Lines = len(run.Results)
	result.Fallbacks = run.Fallbacks
	result.Counts = run.Summary.Counts
	if run.Evaluation != nil {
		result.Evaluated = run.Evaluation.Evaluated
		result.Accuracy = run.Evaluation.Accuracy
	}

	result.Files, err = export.WriteFiles(outputDir, run.Results)
	if err != nil {
		return result, fmt.Errorf("writing exports: %w", err)
	}
	return result, nil
}

// FormatInboxSummary returns a human-readable summary of a pass.
func FormatInboxSummary(result InboxResult, err error) string {
	if err != nil {
		return fmt.Sprintf("Scheduled analysis failed: %v", err)
	}
	if result.Skipped {
		return fmt.Sprintf("Inbox %s is empty, nothing to analyze.", result.InboxPath)
	}

	counts := make([]string, 0, len(domain.Labels))
	for _, label := range domain.Labels {
		counts = append(counts, fmt.Sprintf("%d %s", result.Counts[label], label))
	}
	msg := fmt.Sprintf("Analyzed %d lines from %s: %s", result.Lines, result.InboxPath, strings.Join(counts, ", "))
	if result.Evaluated > 0 {
		msg += fmt.Sprintf(" (accuracy %.1f%% on %d reference lines)", 100*result.Accuracy, result.Evaluated)
	}
	msg += "."
	if result.Fallbacks > 0 {
		msg += fmt.Sprintf("\n%d line(s) got no result from the model.", result.Fallbacks)
	}
	if len(result.Files) > 0 {
		names := make([]string, len(result.Files))
		for i, f := range result.Files {
			names[i] = filepath.Base(f)
		}
		msg += fmt.Sprintf("\nFiles: %s", strings.Join(names, ", "))
	}
	return msg
}

// StartInboxScheduler runs RunInboxOnce on analyze_schedule until ctx is
// cancelled. A nil notifier only logs.
func StartInboxScheduler(ctx context.Context, cfg config.Config, svc *service.Service, notifier Notifier) {
	schedule := strings.TrimSpace(cfg.AnalyzeSchedule)
	if schedule == "" {
		slog.Info("scheduled analysis disabled (analyze_schedule not set)")
		return
	}

	sched, err := config.ParseSchedule(schedule)
	if err != nil {
		slog.Error("invalid analyze_schedule, scheduled analysis disabled", "schedule", schedule, "err", err)
		return
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	runTimeout := 2 * time.Duration(cfg.ExternalHTTPTimeoutSeconds) * time.Second
	slog.Info("scheduled analysis enabled", "cron", schedule, "inbox", cfg.InboxPath)

	go func() {
		for {
			now := time.Now().In(loc)
			next := sched.Next(now)
			wait := next.Sub(now)
			slog.Info("next scheduled analysis", "at", next.Format("Mon Jan 2 15:04"), "in", wait.Round(time.Minute))

			select {
			case <-ctx.Done():
				slog.Info("scheduled analysis stopped")
				return
			case <-time.After(wait):
			}

			runCtx, cancel := context.WithTimeout(ctx, runTimeout)
			result, runErr := RunInboxOnce(runCtx, svc, cfg.InboxPath, cfg.ExportOutputDir)
			cancel()
			summary := FormatInboxSummary(result, runErr)
			if runErr != nil {
				slog.Error("scheduled analysis error", "err", runErr)
			}
			slog.Info("scheduled analysis complete", "summary", summary)

			if notifier != nil {
				if err := notifier.Notify("Scheduled analysis: " + summary); err != nil {
					slog.Error("scheduled analysis post error", "err", err)
				}
			}
		}
	}()
}
