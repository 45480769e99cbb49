package ai

import "context"

// Completion is a single prompt sent to a text model. When Schema is set the
// provider asks the model for output conforming to it.
type Completion struct {
	System     string
	Prompt     string
	SchemaName string
	Schema     map[string]any
}

// LLMProvider sends a prompt to an LLM and returns the raw text response.
type LLMProvider interface {
	Complete(ctx context.Context, c Completion) (string, error)
}

// Embedder turns texts into fixed-length vectors, one per input, in order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}
