package groundtruth

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"sentiboard/internal/domain"
)

//go:embed default.yaml
var defaultData []byte

// GroundTruth is an immutable text -> label table. It is safe for concurrent
// readers.
type GroundTruth struct {
	entries []domain.GroundTruthEntry
	byText  map[string]domain.Sentiment
}

type file struct {
	Entries []domain.GroundTruthEntry `yaml:"entries"`
}

// New builds a table. For a repeated text the first label wins.
func New(entries []domain.GroundTruthEntry) (*GroundTruth, error) {
	g := &GroundTruth{byText: make(map[string]domain.Sentiment, len(entries))}
	for i, e := range entries {
		if !e.Sentiment.Valid() {
			return nil, fmt.Errorf("entry %d: invalid sentiment %q", i+1, e.Sentiment)
		}
		if e.Text == "" {
			return nil, fmt.Errorf("entry %d: empty text", i+1)
		}
		if _, dup := g.byText[e.Text]; dup {
			continue
		}
		g.byText[e.Text] = e.Sentiment
		g.entries = append(g.entries, e)
	}
	return g, nil
}

func Parse(data []byte) (*GroundTruth, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse ground truth yaml: %w", err)
	}
	return New(f.Entries)
}

// Default returns the embedded reference set.
func Default() *GroundTruth {
	g, err := Parse(defaultData)
	if err != nil {
		panic(fmt.Sprintf("embedded ground truth: %v", err))
	}
	return g
}

// Load reads path, or returns the embedded set when path is empty.
func Load(path string) (*GroundTruth, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ground truth: %w", err)
	}
	return Parse(data)
}

func (g *GroundTruth) Lookup(text string) (domain.Sentiment, bool) {
	s, ok := g.byText[text]
	return s, ok
}

func (g *GroundTruth) Len() int {
	return len(g.entries)
}

// Entries returns a copy in file order.
func (g *GroundTruth) Entries() []domain.GroundTruthEntry {
	return append([]domain.GroundTruthEntry(nil), g.entries...)
}
