package keywords

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"text/template"

	"github.com/amishk599/jobfinder/internal/ai"
	"github.com/amishk599/jobfinder/internal/model"
)

// mockProvider is a stub LLMProvider for testing.
type mockProvider struct {
	response string
	err      error
	got      ai.Completion
}

func (m *mockProvider) Complete(_ context.Context, c ai.Completion) (string, error) {
	m.got = c
	return m.response, m.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestNormalizer(provider ai.LLMProvider) *LLMNormalizer {
	return NewLLMNormalizer(provider, ai.KeywordsTemplate, discardLogger())
}

func sampleRequest() model.SearchRequest {
	return model.SearchRequest{
		Position:   "Full Stack Engineer",
		Experience: "2 years",
		Salary:     "70,000 PKR to 120,000 PKR",
		JobNature:  "onsite",
		Location:   "Peshawar, Pakistan",
		Country:    "Pakistan",
		Skills:     "MERN, Node.js",
	}
}

func TestNormalize_UsesModelOutput(t *testing.T) {
	provider := &mockProvider{response: `{"position":"Full Stack Developer","experience":"2 years","location":"Peshawar","skills":["MongoDB","Express","React","Node.js"],"country":"","city":"Peshawar"}`}
	n := newTestNormalizer(provider)

	kw := n.Normalize(context.Background(), sampleRequest())

	if kw.Position != "Full Stack Developer" {
		t.Errorf("Position = %q", kw.Position)
	}
	if kw.Skills != "MongoDB, Express, React, Node.js" {
		t.Errorf("Skills = %q, want joined list", kw.Skills)
	}
	if kw.City != "Peshawar" {
		t.Errorf("City = %q, want Peshawar", kw.City)
	}
	if kw.Country != "Pakistan" {
		t.Errorf("Country = %q, want request country filled in", kw.Country)
	}
	if !strings.Contains(provider.got.Prompt, "Position: Full Stack Engineer") {
		t.Errorf("prompt does not embed the request:\n%s", provider.got.Prompt)
	}
	if provider.got.Schema == nil {
		t.Error("expected the keywords schema to be requested")
	}
}

func TestNormalize_FallsBackOnProviderError(t *testing.T) {
	req := sampleRequest()
	n := newTestNormalizer(&mockProvider{err: errors.New("network down")})

	got := n.Normalize(context.Background(), req)
	if got != model.FallbackKeywords(req) {
		t.Errorf("got %+v, want fallback %+v", got, model.FallbackKeywords(req))
	}
}

func TestNormalize_FallsBackOnUnparseableOutput(t *testing.T) {
	req := sampleRequest()
	outputs := []string{
		"I think the position is full stack.",
		`Here you go: {"position":"x","experience":"","location":"","skills":""}`,
		`{"position":"x","experience":"1","location":"y"}`,
		`{"position":"","experience":"1","location":"y","skills":"z"}`,
		`{"position":42,"experience":"1","location":"y","skills":"z"}`,
		`{"position":"x","experience":"1","location":"y","skills":{"a":1}}`,
		`["position"]`,
		"",
	}
	for _, out := range outputs {
		n := newTestNormalizer(&mockProvider{response: out})
		got := n.Normalize(context.Background(), req)
		if got != model.FallbackKeywords(req) {
			t.Errorf("output %q: got %+v, want fallback", out, got)
		}
	}
}

func TestNormalize_FallsBackOnTemplateError(t *testing.T) {
	req := sampleRequest()
	bad := template.Must(template.New("bad").Parse("{{.NoSuchField}}"))
	n := NewLLMNormalizer(&mockProvider{response: "{}"}, bad, discardLogger())

	if got := n.Normalize(context.Background(), req); got != model.FallbackKeywords(req) {
		t.Errorf("got %+v, want fallback", got)
	}
}

func TestParseKeywords_TypedError(t *testing.T) {
	_, err := parseKeywords(`{"position":"x"}`)
	var pe *model.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *model.ParseError, got %v", err)
	}
	if pe.What != "keywords" {
		t.Errorf("What = %q, want keywords", pe.What)
	}
}

func TestPassthroughNormalizer(t *testing.T) {
	req := sampleRequest()
	got := NewPassthroughNormalizer().Normalize(context.Background(), req)
	if got != model.FallbackKeywords(req) {
		t.Errorf("got %+v, want fallback", got)
	}
}
