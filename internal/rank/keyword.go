package rank

import (
	"context"

	"github.com/amishk599/jobfinder/internal/model"
)

// KeywordRanker scores jobs by the share of query tokens found in the job
// text. It needs no model and is used when AI is disabled.
type KeywordRanker struct{}

// NewKeywordRanker returns a KeywordRanker.
func NewKeywordRanker() *KeywordRanker {
	return &KeywordRanker{}
}

// Rank scores every job as matched query tokens / query tokens × 100.
func (KeywordRanker) Rank(_ context.Context, jobs []model.JobRecord, kw model.NormalizedKeywords) []model.JobRecord {
	if len(jobs) == 0 {
		return []model.JobRecord{}
	}

	query := uniqueTokens(kw.QueryText())
	scores := make([]float64, len(jobs))
	if len(query) > 0 {
		for i, j := range jobs {
			have := make(map[string]bool)
			for _, t := range tokens(jobText(j)) {
				have[t] = true
			}
			hits := 0
			for _, t := range query {
				if have[t] {
					hits++
				}
			}
			scores[i] = float64(hits) / float64(len(query)) * 100
		}
	}
	return applyScores(jobs, scores, MinScore)
}

func uniqueTokens(s string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range tokens(s) {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}
