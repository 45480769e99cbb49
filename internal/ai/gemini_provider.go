package ai

import (
	"context"
	"fmt"
	"net/http"

	"google.golang.org/genai"
)

// GeminiProvider serves completions and embeddings from the Gemini API.
type GeminiProvider struct {
	client         *genai.Client
	model          string
	embeddingModel string
}

// NewGeminiProvider creates a Gemini-backed provider.
func NewGeminiProvider(ctx context.Context, apiKey, model, embeddingModel string, httpClient *http.Client) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiProvider{client: client, model: model, embeddingModel: embeddingModel}, nil
}

// Complete asks Gemini for a JSON response when c.Schema is set. The schema
// itself is not forwarded; callers validate the output strictly.
func (p *GeminiProvider) Complete(ctx context.Context, c Completion) (string, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0),
	}
	if c.System != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: c.System}}}
	}
	if c.Schema != nil {
		cfg.ResponseMIMEType = "application/json"
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(c.Prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("gemini returned no text")
	}
	return text, nil
}

// Embed returns one vector per text.
func (p *GeminiProvider) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	contents := make([]*genai.Content, 0, len(texts))
	for _, t := range texts {
		contents = append(contents, genai.NewContentFromText(t, genai.RoleUser))
	}

	resp, err := p.client.Models.EmbedContent(ctx, p.embeddingModel, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("gemini embed: %w", err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("gemini returned %d vectors for %d inputs", len(resp.Embeddings), len(texts))
	}

	vectors := make([][]float64, len(resp.Embeddings))
	for i, e := range resp.Embeddings {
		v := make([]float64, len(e.Values))
		for j, x := range e.Values {
			v[j] = float64(x)
		}
		vectors[i] = v
	}
	return vectors, nil
}
