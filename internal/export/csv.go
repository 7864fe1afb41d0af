package export

import (
	"regexp"
	"strconv"
	"strings"

	"sentiboard/internal/domain"
)

const csvHeader = "ID,Text,Sentiment,Confidence,Keywords,Explanation"

var csvLineBreak = regexp.MustCompile(`\r\n|\n|\r`)

// CSV renders results with one row per result, rows joined by "\n" and no
// trailing newline.
func CSV(results []domain.AnalysisResult) string {
	rows := make([]string, 0, len(results)+1)
	rows = append(rows, csvHeader)
	for i, r := range results {
		fields := []string{
			strconv.Itoa(i + 1),
			r.OriginalText,
			string(r.Sentiment),
			strconv.FormatFloat(r.Confidence, 'f', -1, 64),
			strings.Join(r.Keywords, "; "),
			r.Explanation,
		}
		for j, f := range fields {
			fields[j] = escapeCSVField(f)
		}
		rows = append(rows, strings.Join(fields, ","))
	}
	return strings.Join(rows, "\n")
}

func escapeCSVField(field string) string {
	field = csvLineBreak.ReplaceAllString(field, " ")
	if strings.ContainsAny(field, "\",") {
		return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
	}
	return field
}
