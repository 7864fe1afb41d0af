package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"sentiboard/internal/domain"
)

const systemInstruction = `You are a highly accurate sentiment analysis expert. For each text provided, you must perform the following tasks and return the result in a structured JSON format:
1.  **Classify Sentiment**: Determine if the sentiment is 'Positive', 'Negative', or 'Neutral'.
2.  **Confidence Score**: Provide a confidence score between 0.0 and 1.0 for your classification.
3.  **Extract Keywords**: Identify and list the key words or phrases that are the primary drivers of the sentiment.
4.  **Provide Explanation**: Write a concise, one-sentence explanation for your sentiment classification.
5.  **Include Original Text**: Return the original text for reference, copied exactly.`

// ItemSchema is the JSON schema of one result object.
func ItemSchema() map[string]any {
	labels := make([]string, 0, len(domain.Labels))
	for _, l := range domain.Labels {
		labels = append(labels, string(l))
	}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"originalText": map[string]any{
				"type":        "string",
				"description": "The original text that was analyzed.",
			},
			"sentiment": map[string]any{
				"type":        "string",
				"enum":        labels,
				"description": "The sentiment of the text.",
			},
			"confidence": map[string]any{
				"type":        "number",
				"description": "A confidence score from 0.0 to 1.0 for the sentiment classification.",
			},
			"keywords": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "A list of keywords or phrases that contributed to the sentiment.",
			},
			"explanation": map[string]any{
				"type":        "string",
				"description": "A brief explanation of why the text was assigned its sentiment.",
			},
		},
		"required":             []string{"originalText", "sentiment", "confidence", "keywords", "explanation"},
		"additionalProperties": false,
	}
}

// ResultsSchema is the array schema requested from the model.
func ResultsSchema() map[string]any {
	return map[string]any{
		"type":  "array",
		"items": ItemSchema(),
	}
}

// BuildRequest numbers the lines 1..N in one instruction payload.
func BuildRequest(lines []string) Request {
	var user strings.Builder
	user.WriteString("Analyze the following texts:\n")
	for i, line := range lines {
		fmt.Fprintf(&user, "%d. %s\n", i+1, line)
	}

	schema, _ := json.Marshal(ResultsSchema())
	system := systemInstruction +
		"\n\nRespond with ONLY a JSON array, one object per text, matching this JSON schema:\n" +
		string(schema)

	return Request{
		SystemPrompt: system,
		UserPrompt:   user.String(),
		Lines:        lines,
	}
}

// stripCodeFences removes a markdown code fence around a JSON payload.
func stripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
