package evaluation

import (
	"encoding/json"
	"math"
	"testing"

	"sentiboard/internal/domain"
)

type truthTable map[string]domain.Sentiment

func (t truthTable) Lookup(text string) (domain.Sentiment, bool) {
	s, ok := t[text]
	return s, ok
}

func result(text string, s domain.Sentiment) domain.AnalysisResult {
	return domain.AnalysisResult{OriginalText: text, Sentiment: s, Confidence: 0.9}
}

func TestEvaluateSinglePerfectPrediction(t *testing.T) {
	ev := Evaluate([]domain.AnalysisResult{result("good", domain.Positive)}, truthTable{"good": domain.Positive})
	if ev == nil {
		t.Fatal("expected an evaluation")
	}
	for _, actual := range domain.Labels {
		for _, predicted := range domain.Labels {
			want := 0
			if actual == domain.Positive && predicted == domain.Positive {
				want = 1
			}
			if got := ev.Matrix.Get(actual, predicted); got != want {
				t.Fatalf("matrix[%s][%s] = %d, want %d", actual, predicted, got, want)
			}
		}
	}
	if ev.Accuracy != 1.0 {
		t.Fatalf("accuracy = %f, want 1", ev.Accuracy)
	}
	pos := ev.Metrics[domain.Positive]
	if pos.Precision != 1 || pos.Recall != 1 || pos.F1 != 1 {
		t.Fatalf("unexpected Positive metrics: %+v", pos)
	}
	for _, l := range []domain.Sentiment{domain.Negative, domain.Neutral} {
		if m := ev.Metrics[l]; m != (ClassMetrics{}) {
			t.Fatalf("expected zero metrics for %s, got %+v", l, m)
		}
	}
}

func TestEvaluateNoOverlapReturnsNil(t *testing.T) {
	ev := Evaluate([]domain.AnalysisResult{result("unseen", domain.Positive)}, truthTable{"good": domain.Positive})
	if ev != nil {
		t.Fatalf("expected nil evaluation, got %+v", ev)
	}
	if Evaluate(nil, truthTable{}) != nil {
		t.Fatal("expected nil for empty input")
	}
}

func TestEvaluateMixedPredictions(t *testing.T) {
	truth := truthTable{
		"a": domain.Positive,
		"b": domain.Positive,
		"c": domain.Negative,
		"d": domain.Neutral,
	}
	results := []domain.AnalysisResult{
		result("a", domain.Positive),
		result("b", domain.Negative),
		result("c", domain.Negative),
		result("d", domain.Negative),
		result("not in truth", domain.Positive),
	}
	ev := Evaluate(results, truth)
	if ev.Evaluated != 4 {
		t.Fatalf("evaluated = %d, want 4", ev.Evaluated)
	}
	if ev.Accuracy != 0.5 {
		t.Fatalf("accuracy = %f, want 0.5", ev.Accuracy)
	}
	neg := ev.Metrics[domain.Negative]
	if neg.TP != 1 || neg.FP != 2 || neg.FN != 0 {
		t.Fatalf("unexpected Negative counts: %+v", neg)
	}
	if math.Abs(neg.Precision-1.0/3.0) > 1e-9 || neg.Recall != 1 || math.Abs(neg.F1-0.5) > 1e-9 {
		t.Fatalf("unexpected Negative metrics: %+v", neg)
	}
	pos := ev.Metrics[domain.Positive]
	if pos.Precision != 1 || pos.Recall != 0.5 {
		t.Fatalf("unexpected Positive metrics: %+v", pos)
	}
	neu := ev.Metrics[domain.Neutral]
	if neu.TP != 0 || neu.FN != 1 || neu.Precision != 0 || neu.F1 != 0 {
		t.Fatalf("unexpected Neutral metrics: %+v", neu)
	}
}

func TestMatrixJSON(t *testing.T) {
	ev := Evaluate([]domain.AnalysisResult{result("good", domain.Negative)}, truthTable{"good": domain.Positive})
	raw, err := json.Marshal(ev.Matrix)
	if err != nil {
		t.Fatalf("marshal matrix: %v", err)
	}
	var m map[string]map[string]int
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("unmarshal matrix: %v", err)
	}
	if m["Positive"]["Negative"] != 1 || m["Neutral"]["Neutral"] != 0 || len(m) != 3 {
		t.Fatalf("unexpected matrix json: %s", raw)
	}
}

func TestMatrixJSONRoundTrip(t *testing.T) {
	var m ConfusionMatrix
	m[0][1] = 2
	m[2][2] = 5
	raw, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal matrix: %v", err)
	}
	var back ConfusionMatrix
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal matrix: %v", err)
	}
	if back != m {
		t.Fatalf("round trip mismatch: %v != %v", back, m)
	}
}

func TestEvaluateUnknownLabelCountsButStaysOutOfMatrix(t *testing.T) {
	results := []domain.AnalysisResult{
		result("good", domain.Positive),
		result("meh", domain.Sentiment("Mixed")),
	}
	ev := Evaluate(results, truthTable{"good": domain.Positive, "meh": domain.Neutral})
	if ev == nil || ev.Evaluated != 2 {
		t.Fatalf("expected 2 evaluated results, got %+v", ev)
	}
	total := 0
	for _, row := range ev.Matrix {
		for _, n := range row {
			total += n
		}
	}
	if total != 1 {
		t.Fatalf("expected only the known label in the matrix, got %d cells", total)
	}
	if ev.Accuracy != 0.5 {
		t.Fatalf("accuracy = %f, want 0.5", ev.Accuracy)
	}
	if ev.Results[1].Correct {
		t.Fatal("unknown label must not be marked correct")
	}
}
