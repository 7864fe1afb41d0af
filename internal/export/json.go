package export

import (
	"bytes"
	"encoding/json"

	"sentiboard/internal/domain"
)

// JSON renders results as a two-space indented array without HTML escaping
// and without a trailing newline.
func JSON(results []domain.AnalysisResult) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(normalizeKeywords(results)); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// normalizeKeywords makes nil keyword slices render as [] rather than null.
func normalizeKeywords(results []domain.AnalysisResult) []domain.AnalysisResult {
	out := make([]domain.AnalysisResult, len(results))
	for i, r := range results {
		if r.Keywords == nil {
			r.Keywords = []string{}
		}
		out[i] = r
	}
	return out
}
