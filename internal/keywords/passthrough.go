package keywords

import (
	"context"

	"github.com/amishk599/jobfinder/internal/model"
)

// PassthroughNormalizer is used when ai.enabled is false. It returns the
// request's own fields with no LLM call.
type PassthroughNormalizer struct{}

// NewPassthroughNormalizer returns a PassthroughNormalizer.
func NewPassthroughNormalizer() *PassthroughNormalizer {
	return &PassthroughNormalizer{}
}

// Normalize returns model.FallbackKeywords(req).
func (PassthroughNormalizer) Normalize(_ context.Context, req model.SearchRequest) model.NormalizedKeywords {
	return model.FallbackKeywords(req)
}
