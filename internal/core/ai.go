package core

import (
	"context"
	"errors"
)

// ErrEmptyResponse is returned by providers when the model produced no text.
var ErrEmptyResponse = errors.New("model returned an empty response")

// GenerateRequest is a single structured-output call: a free-text prompt plus
// the JSON shape the reply must have.
type GenerateRequest struct {
	Model        string
	SystemPrompt string
	Prompt       string
	SchemaName   string
	Schema       *Schema
}

// LLMProvider returns the raw JSON body produced by the model. Parsing and
// validation against the schema happen in the caller.
type LLMProvider interface {
	GenerateJSON(ctx context.Context, req GenerateRequest) (string, error)
	Name() string
}
