package domain

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyInput = errors.New("Please enter some text to analyze.")
	ErrNoResults  = errors.New("No results to export.")
	ErrNotFound   = errors.New("not found")
)

const analysisFailedMessage = "Failed to analyze sentiment. The API might be temporarily unavailable."

// AnalysisServiceError aborts a whole batch. Its message is the one shown to
// users; the cause is kept for logs.
type AnalysisServiceError struct {
	Provider string
	Err      error
}

func (e *AnalysisServiceError) Error() string {
	return analysisFailedMessage
}

func (e *AnalysisServiceError) Unwrap() error {
	return e.Err
}

// Detail renders the message together with the underlying cause.
func (e *AnalysisServiceError) Detail() string {
	if e.Err == nil {
		return analysisFailedMessage
	}
	return fmt.Sprintf("%s provider=%s: %v", analysisFailedMessage, e.Provider, e.Err)
}

// MalformedResponseError means the model payload was not a JSON array.
type MalformedResponseError struct {
	Payload string
	Err     error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed model response: %v (response: %s)", e.Err, preview(e.Payload))
	}
	return fmt.Sprintf("malformed model response (response: %s)", preview(e.Payload))
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

func preview(s string) string {
	const max = 200
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
