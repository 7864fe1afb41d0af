package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/tidwall/gjson"
)

// resultsField wraps the array because strict structured output needs an
// object at the root.
const resultsField = "results"

type OpenAI struct {
	client    openai.Client
	model     string
	maxTokens int64
}

func NewOpenAI(apiKey, model string, maxTokens int64, opts ...Option) *OpenAI {
	var o clientOptions
	for _, opt := range opts {
		opt(&o)
	}
	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}
	if o.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(o.baseURL))
	}
	if o.httpClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(o.httpClient))
	}
	return &OpenAI{
		client:    openai.NewClient(reqOpts...),
		model:     model,
		maxTokens: maxTokens,
	}
}

func (o *OpenAI) Name() string  { return "openai" }
func (o *OpenAI) Model() string { return o.model }

func envelopeSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			resultsField: ResultsSchema(),
		},
		"required":             []string{resultsField},
		"additionalProperties": false,
	}
}

func (o *OpenAI) Generate(ctx context.Context, req Request) (Response, error) {
	completion, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: o.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.SystemPrompt),
			openai.UserMessage(req.UserPrompt),
		},
		MaxCompletionTokens: openai.Int(o.maxTokens),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   "sentiment_results",
					Strict: openai.Bool(true),
					Schema: envelopeSchema(),
				},
			},
		},
	})
	if err != nil {
		slog.Error("llm openai error", "err", err)
		return Response{}, fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(completion.Choices) == 0 {
		return Response{}, fmt.Errorf("no choices in OpenAI response")
	}
	usage := LLMUsage{
		InputTokens:  completion.Usage.PromptTokens,
		OutputTokens: completion.Usage.CompletionTokens,
	}

	content := stripCodeFences(completion.Choices[0].Message.Content)
	slog.Info("llm openai response", "size", len(content), "tokens_in", usage.InputTokens, "tokens_out", usage.OutputTokens)
	return Response{Text: unwrapResults(content), Usage: usage}, nil
}

// unwrapResults returns the raw results array, or the payload unchanged when
// there is no envelope so the caller reports it as malformed.
func unwrapResults(content string) string {
	if !gjson.Valid(content) {
		return content
	}
	parsed := gjson.Parse(content)
	if parsed.IsArray() {
		return content
	}
	if r := parsed.Get(resultsField); r.Exists() {
		return r.Raw
	}
	return content
}
