package slackbot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/slack-go/slack"

	"sentiboard/internal/domain"
	"sentiboard/internal/export"
	"sentiboard/internal/service"
)

const busyMessage = "An analysis is already running for you."

func (b *Bot) handleAnalyze(ctx context.Context, cmd slack.SlashCommand) {
	lines := domain.SplitLines(cmd.Text)
	if len(lines) == 0 {
		b.postEphemeral(cmd, domain.ErrEmptyInput.Error())
		return
	}
	if !b.inflight.acquire(cmd.UserID) {
		b.postEphemeral(cmd, busyMessage)
		slog.Info("sentiment busy", "user", cmd.UserID)
		return
	}
	defer b.inflight.release(cmd.UserID)

	b.postEphemeral(cmd, fmt.Sprintf("Analyzing %d line(s)...", len(lines)))
	run, err := b.svc.AnalyzeText(ctx, cmd.Text, "slack", cmd.UserID)
	if err != nil {
		var svcErr *domain.AnalysisServiceError
		if errors.As(err, &svcErr) {
			slog.Error("sentiment analysis failed", "user", cmd.UserID, "detail", svcErr.Detail())
		} else {
			slog.Error("sentiment analysis failed", "user", cmd.UserID, "err", err)
		}
		b.postEphemeral(cmd, err.Error())
		return
	}
	b.postEphemeral(cmd, FormatRunSummary(run))
	slog.Info("sentiment done", "user", cmd.UserID, "run_id", run.ID, "lines", len(run.Results))
}

func (b *Bot) handleExport(ctx context.Context, cmd slack.SlashCommand) {
	arg := strings.TrimSpace(cmd.Text)
	if arg == "" {
		arg = string(export.FormatCSV)
	}
	format, err := export.ParseFormat(arg)
	if err != nil {
		b.postEphemeral(cmd, "Usage: `/sentiment-export json|csv|pdf`")
		return
	}

	run, err := b.svc.LatestRun(ctx, cmd.UserID)
	switch {
	case errors.Is(err, service.ErrHistoryDisabled):
		b.postEphemeral(cmd, "Run history is disabled, so there is no previous run to export.")
		return
	case errors.Is(err, domain.ErrNotFound):
		b.postEphemeral(cmd, domain.ErrNoResults.Error())
		return
	case err != nil:
		slog.Error("sentiment-export load failed", "user", cmd.UserID, "err", err)
		b.postEphemeral(cmd, fmt.Sprintf("Error loading your last run: %v", err))
		return
	}

	art, err := b.svc.Export(format, run.Results)
	if err != nil {
		if errors.Is(err, domain.ErrNoResults) {
			b.postEphemeral(cmd, err.Error())
			return
		}
		slog.Error("sentiment-export render failed", "run_id", run.ID, "format", format, "err", err)
		b.postEphemeral(cmd, fmt.Sprintf("Error rendering export: %v", err))
		return
	}

	_, err = b.api.UploadFileV2(slack.UploadFileV2Parameters{
		Reader:         bytes.NewReader(art.Data),
		FileSize:       len(art.Data),
		Filename:       art.Filename,
		Channel:        cmd.ChannelID,
		Title:          fmt.Sprintf("Sentiment analysis (%s)", format),
		InitialComment: fmt.Sprintf("Export of run %s from %s (%d lines)", run.ID, run.CreatedAt.In(b.loc).Format("2006-01-02 15:04"), run.LineCount),
	})
	if err != nil {
		slog.Error("sentiment-export upload failed", "run_id", run.ID, "err", err)
		b.postEphemeral(cmd, "Error uploading export file to channel. Check bot permissions.")
		return
	}
	slog.Info("sentiment-export done", "user", cmd.UserID, "run_id", run.ID, "format", format, "bytes", len(art.Data))
}

func (b *Bot) handleStats(ctx context.Context, cmd slack.SlashCommand) {
	allTime, err := b.svc.Stats(ctx, time.Time{})
	if errors.Is(err, service.ErrHistoryDisabled) {
		b.postEphemeral(cmd, "Run history is disabled, so there are no stats.")
		return
	}
	if err != nil {
		b.postEphemeral(cmd, fmt.Sprintf("Error loading stats: %v", err))
		slog.Error("sentiment-stats all-time failed", "err", err)
		return
	}

	fourWeeksAgo := time.Now().In(b.loc).AddDate(0, 0, -28)
	recent, err := b.svc.Stats(ctx, fourWeeksAgo)
	if err != nil {
		slog.Warn("sentiment-stats recent failed (non-fatal)", "err", err)
		recent = domain.RunStats{}
	}

	b.postEphemeral(cmd, FormatStats(allTime, recent))
	slog.Info("sentiment-stats sent", "user", cmd.UserID)
}
