package rank

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"text/template"

	"github.com/tidwall/gjson"

	"github.com/amishk599/jobfinder/internal/ai"
	"github.com/amishk599/jobfinder/internal/model"
)

// LLMRanker asks a text model for one score per job in a single prompt.
type LLMRanker struct {
	provider     ai.LLMProvider
	tmpl         *template.Template
	defaultScore float64
	logger       *slog.Logger
}

// NewLLMRanker creates a ranker. defaultScore is used for every job the
// model does not score.
func NewLLMRanker(provider ai.LLMProvider, tmpl *template.Template, defaultScore float64, logger *slog.Logger) *LLMRanker {
	return &LLMRanker{
		provider:     provider,
		tmpl:         tmpl,
		defaultScore: defaultScore,
		logger:       logger,
	}
}

// Rank scores jobs with the model. On any failure all jobs get the default
// score; if the model returns fewer scores than jobs the rest get it too.
func (r *LLMRanker) Rank(ctx context.Context, jobs []model.JobRecord, kw model.NormalizedKeywords) []model.JobRecord {
	if len(jobs) == 0 {
		return []model.JobRecord{}
	}

	scores, err := r.score(ctx, jobs, kw)
	if err != nil {
		r.logger.Warn("llm ranking failed, using default score", "jobs", len(jobs), "default", r.defaultScore, "error", err)
		scores = uniform(len(jobs), r.defaultScore)
	} else if len(scores) != len(jobs) {
		r.logger.Warn("llm returned mismatched score count", "jobs", len(jobs), "scores", len(scores))
	}

	return applyScores(jobs, scores, r.defaultScore)
}

func (r *LLMRanker) score(ctx context.Context, jobs []model.JobRecord, kw model.NormalizedKeywords) ([]float64, error) {
	var promptBuf bytes.Buffer
	err := r.tmpl.Execute(&promptBuf, struct {
		Query string
		Jobs  []model.JobRecord
	}{Query: kw.QueryText(), Jobs: jobs})
	if err != nil {
		return nil, fmt.Errorf("render prompt: %w", err)
	}

	raw, err := r.provider.Complete(ctx, ai.Completion{
		Prompt:     promptBuf.String(),
		SchemaName: "job_scores",
		Schema:     ai.ScoresSchema,
	})
	if err != nil {
		return nil, fmt.Errorf("llm complete: %w", err)
	}
	return parseScores(raw)
}

// parseScores requires {"scores": [numbers...]}.
func parseScores(raw string) ([]float64, error) {
	obj, err := ai.ParseObject("scores", raw)
	if err != nil {
		return nil, err
	}
	arr := obj.Get("scores")
	if !arr.IsArray() {
		return nil, &model.ParseError{What: "scores", Reason: `"scores" is not a list`, Raw: raw}
	}
	items := arr.Array()
	scores := make([]float64, 0, len(items))
	for _, v := range items {
		if v.Type != gjson.Number {
			return nil, &model.ParseError{What: "scores", Reason: "non-numeric score " + v.Raw, Raw: raw}
		}
		scores = append(scores, v.Float())
	}
	return scores, nil
}
