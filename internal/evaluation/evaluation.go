package evaluation

import "sentiboard/internal/domain"

// Truth resolves the reference label of a text.
type Truth interface {
	Lookup(text string) (domain.Sentiment, bool)
}

type ClassMetrics struct {
	TP        int     `json:"tp"`
	FP        int     `json:"fp"`
	FN        int     `json:"fn"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
}

// ConfusionMatrix is indexed [actual][predicted] in domain.Labels order.
type ConfusionMatrix [3][3]int

func (m ConfusionMatrix) Get(actual, predicted domain.Sentiment) int {
	a, p := actual.Index(), predicted.Index()
	if a < 0 || p < 0 {
		return 0
	}
	return m[a][p]
}

// MarshalJSON renders the matrix as nested label maps.
func (m ConfusionMatrix) MarshalJSON() ([]byte, error) {
	return marshalMatrix(m)
}

type Evaluation struct {
	Evaluated int                               `json:"evaluated"`
	Matrix    ConfusionMatrix                   `json:"matrix"`
	Metrics   map[domain.Sentiment]ClassMetrics `json:"metrics"`
	Accuracy  float64                           `json:"accuracy"`
	Results   []EvaluatedResult                 `json:"results"`
}

// EvaluatedResult pairs a prediction with its reference label.
type EvaluatedResult struct {
	domain.AnalysisResult
	Truth   domain.Sentiment `json:"truth"`
	Correct bool             `json:"correct"`
}

// Evaluate scores results whose text exactly matches a reference entry. It
// returns nil when nothing matches.
func Evaluate(results []domain.AnalysisResult, truth Truth) *Evaluation {
	if truth == nil {
		return nil
	}
	ev := &Evaluation{}
	for _, r := range results {
		actual, ok := truth.Lookup(r.OriginalText)
		if !ok {
			continue
		}
		ev.Evaluated++
		ev.Results = append(ev.Results, EvaluatedResult{AnalysisResult: r, Truth: actual, Correct: r.Sentiment == actual})
		a, p := actual.Index(), r.Sentiment.Index()
		if a >= 0 && p >= 0 {
			ev.Matrix[a][p]++
		}
	}
	if ev.Evaluated == 0 {
		return nil
	}

	ev.Metrics = make(map[domain.Sentiment]ClassMetrics, len(domain.Labels))
	correct := 0
	for i, label := range domain.Labels {
		m := ClassMetrics{TP: ev.Matrix[i][i]}
		for j := range domain.Labels {
			if j == i {
				continue
			}
			m.FP += ev.Matrix[j][i]
			m.FN += ev.Matrix[i][j]
		}
		if m.TP+m.FP > 0 {
			m.Precision = float64(m.TP) / float64(m.TP+m.FP)
		}
		if m.TP+m.FN > 0 {
			m.Recall = float64(m.TP) / float64(m.TP+m.FN)
		}
		if m.Precision+m.Recall > 0 {
			m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
		}
		ev.Metrics[label] = m
		correct += m.TP
	}
	ev.Accuracy = float64(correct) / float64(ev.Evaluated)
	return ev
}
