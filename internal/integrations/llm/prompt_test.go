package llm

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestBuildRequestNumbersLines(t *testing.T) {
	req := BuildRequest([]string{"I love it", "meh", "I love it"})

	want := "Analyze the following texts:\n1. I love it\n2. meh\n3. I love it\n"
	if req.UserPrompt != want {
		t.Fatalf("user prompt = %q, want %q", req.UserPrompt, want)
	}
	if len(req.Lines) != 3 {
		t.Fatalf("expected lines to be carried, got %d", len(req.Lines))
	}
	if !strings.Contains(req.SystemPrompt, "Classify Sentiment") || !strings.Contains(req.SystemPrompt, `"enum":["Positive","Negative","Neutral"]`) {
		t.Fatalf("system prompt missing instruction or schema: %s", req.SystemPrompt)
	}
}

func TestResultsSchemaRequiresAllFields(t *testing.T) {
	raw, err := json.Marshal(ResultsSchema())
	if err != nil {
		t.Fatalf("marshal schema: %v", err)
	}
	var schema struct {
		Type  string `json:"type"`
		Items struct {
			Required []string `json:"required"`
		} `json:"items"`
	}
	if err := json.Unmarshal(raw, &schema); err != nil {
		t.Fatalf("unmarshal schema: %v", err)
	}
	if schema.Type != "array" {
		t.Fatalf("expected array schema, got %q", schema.Type)
	}
	if got := strings.Join(schema.Items.Required, ","); got != "originalText,sentiment,confidence,keywords,explanation" {
		t.Fatalf("unexpected required fields: %s", got)
	}
}

func TestStripCodeFences(t *testing.T) {
	cases := map[string]string{
		"```json\n[1]\n```": "[1]",
		"```\n[]```":        "[]",
		"  [2]  ":           "[2]",
	}
	for in, want := range cases {
		if got := stripCodeFences(in); got != want {
			t.Fatalf("stripCodeFences(%q) = %q, want %q", in, got, want)
		}
	}
}
