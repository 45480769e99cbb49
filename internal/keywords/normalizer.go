// Package keywords normalizes a search request into canonical keywords
// with a language model.
package keywords

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"text/template"

	"github.com/tidwall/gjson"

	"github.com/amishk599/jobfinder/internal/ai"
	"github.com/amishk599/jobfinder/internal/model"
)

const systemPrompt = "You extract job search keywords and answer with JSON only."

// LLMNormalizer implements model.Normalizer using an LLM.
type LLMNormalizer struct {
	provider ai.LLMProvider
	tmpl     *template.Template
	logger   *slog.Logger
}

// NewLLMNormalizer creates a normalizer that renders tmpl with the request and
// parses the model's reply.
func NewLLMNormalizer(provider ai.LLMProvider, tmpl *template.Template, logger *slog.Logger) *LLMNormalizer {
	return &LLMNormalizer{
		provider: provider,
		tmpl:     tmpl,
		logger:   logger,
	}
}

// Normalize returns keywords from the model, or the request's own fields when
// the model call fails or its output does not validate.
func (n *LLMNormalizer) Normalize(ctx context.Context, req model.SearchRequest) model.NormalizedKeywords {
	kw, err := n.normalize(ctx, req)
	if err != nil {
		n.logger.Warn("keyword normalization failed, using request fields", "position", req.Position, "error", err)
		return model.FallbackKeywords(req)
	}
	n.logger.Debug("normalized keywords", "position", kw.Position, "skills", kw.Skills, "location", kw.Location)
	return kw
}

func (n *LLMNormalizer) normalize(ctx context.Context, req model.SearchRequest) (model.NormalizedKeywords, error) {
	var promptBuf bytes.Buffer
	if err := n.tmpl.Execute(&promptBuf, req); err != nil {
		return model.NormalizedKeywords{}, fmt.Errorf("render prompt: %w", err)
	}

	raw, err := n.provider.Complete(ctx, ai.Completion{
		System:     systemPrompt,
		Prompt:     promptBuf.String(),
		SchemaName: "search_keywords",
		Schema:     ai.KeywordsSchema,
	})
	if err != nil {
		return model.NormalizedKeywords{}, fmt.Errorf("llm complete: %w", err)
	}

	kw, err := parseKeywords(raw)
	if err != nil {
		return model.NormalizedKeywords{}, err
	}

	if kw.Country == "" {
		kw.Country = req.Country
	}
	if kw.City == "" {
		kw.City = req.City
	}
	return kw, nil
}

// parseKeywords validates the model output: a single JSON object whose four
// required fields are strings (skills may also be a list of strings) and
// whose position is non-empty.
func parseKeywords(raw string) (model.NormalizedKeywords, error) {
	obj, err := ai.ParseObject("keywords", raw)
	if err != nil {
		return model.NormalizedKeywords{}, err
	}

	fail := func(reason string) (model.NormalizedKeywords, error) {
		return model.NormalizedKeywords{}, &model.ParseError{What: "keywords", Reason: reason, Raw: raw}
	}

	var kw model.NormalizedKeywords
	required := []struct {
		key string
		dst *string
	}{
		{"position", &kw.Position},
		{"experience", &kw.Experience},
		{"location", &kw.Location},
	}
	for _, f := range required {
		v := obj.Get(f.key)
		if !v.Exists() {
			return fail(fmt.Sprintf("missing %q", f.key))
		}
		if v.Type != gjson.String {
			return fail(fmt.Sprintf("%q is not a string", f.key))
		}
		*f.dst = strings.TrimSpace(v.String())
	}

	skills := obj.Get("skills")
	switch {
	case !skills.Exists():
		return fail(`missing "skills"`)
	case skills.Type == gjson.String:
		kw.Skills = strings.TrimSpace(skills.String())
	case skills.IsArray():
		var parts []string
		for _, s := range skills.Array() {
			if s.Type != gjson.String {
				return fail(`"skills" list holds a non-string`)
			}
			parts = append(parts, strings.TrimSpace(s.String()))
		}
		kw.Skills = strings.Join(parts, ", ")
	default:
		return fail(`"skills" is neither a string nor a list`)
	}

	for _, f := range []struct {
		key string
		dst *string
	}{{"country", &kw.Country}, {"city", &kw.City}} {
		v := obj.Get(f.key)
		if !v.Exists() || v.Type == gjson.Null {
			continue
		}
		if v.Type != gjson.String {
			return fail(fmt.Sprintf("%q is not a string", f.key))
		}
		*f.dst = strings.TrimSpace(v.String())
	}

	if kw.Position == "" {
		return fail("empty position")
	}
	return kw, nil
}
