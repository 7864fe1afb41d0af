package evaluation

import (
	"encoding/json"

	"sentiboard/internal/domain"
)

func marshalMatrix(m ConfusionMatrix) ([]byte, error) {
	out := make(map[domain.Sentiment]map[domain.Sentiment]int, len(domain.Labels))
	for i, actual := range domain.Labels {
		row := make(map[domain.Sentiment]int, len(domain.Labels))
		for j, predicted := range domain.Labels {
			row[predicted] = m[i][j]
		}
		out[actual] = row
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads the nested label map form. Unknown labels are ignored.
func (m *ConfusionMatrix) UnmarshalJSON(data []byte) error {
	var in map[domain.Sentiment]map[domain.Sentiment]int
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*m = ConfusionMatrix{}
	for actual, row := range in {
		a := actual.Index()
		if a < 0 {
			continue
		}
		for predicted, n := range row {
			if p := predicted.Index(); p >= 0 {
				m[a][p] = n
			}
		}
	}
	return nil
}
