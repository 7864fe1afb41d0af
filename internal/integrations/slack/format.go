package slackbot

import (
	"fmt"
	"strings"

	"sentiboard/internal/domain"
	"sentiboard/internal/service"
	"sentiboard/internal/summary"
)

const keywordsPerLabel = 5

func formatTokenCount(tokens int64) string {
	if tokens < 1000 {
		return fmt.Sprintf("%d", tokens)
	}
	rounded := (tokens + 50) / 100
	whole := rounded / 10
	decimal := rounded % 10
	if decimal == 0 {
		return fmt.Sprintf("%dk", whole)
	}
	return fmt.Sprintf("%d.%dk", whole, decimal)
}

// FormatRunSummary renders a finished run as an mrkdwn message.
func FormatRunSummary(run *service.Run) string {
	var sb strings.Builder
	usage := "cached"
	if !run.Cached {
		usage = "tokens used: " + formatTokenCount(run.Usage.TotalTokens())
	}
	sb.WriteString(fmt.Sprintf("*Sentiment Analysis* (%d lines, %s/%s, %s)\n",
		len(run.Results), run.Provider, run.Model, usage))
	for _, label := range domain.Labels {
		sb.WriteString(fmt.Sprintf("- %s: %d\n", label, run.Summary.Counts[label]))
	}

	var kwLines []string
	for _, label := range domain.Labels {
		kws := run.Summary.TopKeywords[label]
		if len(kws) == 0 {
			continue
		}
		kwLines = append(kwLines, fmt.Sprintf("- %s: %s", label, joinKeywords(kws)))
	}
	if len(kwLines) > 0 {
		sb.WriteString("\n*Top Keywords*\n")
		sb.WriteString(strings.Join(kwLines, "\n"))
		sb.WriteString("\n")
	}

	if ev := run.Evaluation; ev != nil {
		sb.WriteString(fmt.Sprintf("\n*Model Performance* (%d line(s) in the reference set)\n", ev.Evaluated))
		sb.WriteString(fmt.Sprintf("- Accuracy: %.1f%%\n", 100*ev.Accuracy))
		for _, label := range domain.Labels {
			m := ev.Metrics[label]
			sb.WriteString(fmt.Sprintf("- %s: precision %.2f, recall %.2f, F1 %.2f\n", label, m.Precision, m.Recall, m.F1))
		}
	}

	if run.Fallbacks > 0 {
		sb.WriteString(fmt.Sprintf("\n_%d line(s) got no result from the model and were marked Neutral._\n", run.Fallbacks))
	}
	if run.Persisted {
		sb.WriteString("\nUse `/sentiment-export json|csv|pdf` to download the results.")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func joinKeywords(kws []summary.KeywordCount) string {
	if len(kws) > keywordsPerLabel {
		kws = kws[:keywordsPerLabel]
	}
	parts := make([]string, len(kws))
	for i, kw := range kws {
		parts[i] = fmt.Sprintf("%s (%d)", kw.Keyword, kw.Count)
	}
	return strings.Join(parts, ", ")
}

// FormatStats renders the history dashboard.
func FormatStats(allTime, recent domain.RunStats) string {
	var sb strings.Builder
	sb.WriteString("*Sentiment History Dashboard*\n\n")

	sb.WriteString("*All-time Overview*\n")
	writeStatsOverview(&sb, allTime)

	sb.WriteString("\n*Last 4 Weeks*\n")
	writeStatsOverview(&sb, recent)

	sb.WriteString("\n*Confidence Distribution (last 4 weeks)*\n")
	sb.WriteString(fmt.Sprintf("- <50%%: %d\n", recent.BucketBelow50))
	sb.WriteString(fmt.Sprintf("- 50-70%%: %d\n", recent.Bucket50to70))
	sb.WriteString(fmt.Sprintf("- 70-90%%: %d\n", recent.Bucket70to90))
	sb.WriteString(fmt.Sprintf("- 90%%+: %d", recent.Bucket90Plus))
	return sb.String()
}

func writeStatsOverview(sb *strings.Builder, st domain.RunStats) {
	sb.WriteString(fmt.Sprintf("- Runs: %d\n", st.TotalRuns))
	sb.WriteString(fmt.Sprintf("- Lines analyzed: %d\n", st.TotalResults))
	if st.TotalResults == 0 {
		return
	}
	sb.WriteString(fmt.Sprintf("- Missing model results: %d\n", st.TotalFallbacks))
	sb.WriteString(fmt.Sprintf("- Avg confidence: %.2f\n", st.AvgConfidence))
	parts := make([]string, 0, len(domain.Labels))
	for _, label := range domain.Labels {
		parts = append(parts, fmt.Sprintf("%s %d", label, st.BySentiment[label]))
	}
	sb.WriteString("- Labels: " + strings.Join(parts, ", ") + "\n")
}

func FormatHelp() string {
	lines := []string{
		"*Sentiment Bot Commands*",
		"",
		"`/sentiment <text>` : Analyze each line of the text.",
		">*Multiline* (use Shift+Enter for newlines):",
		">```/sentiment I love the new dashboard",
		">The export button is broken```",
		"",
		"`/sentiment-export json|csv|pdf` : Upload your last run as a file.",
		"`/sentiment-stats` : Show the history dashboard.",
		"`/sentiment-help` : Show this help.",
	}
	return strings.Join(lines, "\n")
}
