package rank

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/amishk599/jobfinder/internal/ai"
	"github.com/amishk599/jobfinder/internal/model"
)

// EmbeddingRanker scores jobs by cosine similarity between the query's
// embedding and each job's.
type EmbeddingRanker struct {
	embedder     ai.Embedder
	defaultScore float64
	logger       *slog.Logger
}

// NewEmbeddingRanker creates a ranker over embedder.
func NewEmbeddingRanker(embedder ai.Embedder, defaultScore float64, logger *slog.Logger) *EmbeddingRanker {
	return &EmbeddingRanker{embedder: embedder, defaultScore: defaultScore, logger: logger}
}

// Rank embeds the query and all jobs in one batch. Scores are cosine × 100,
// clamped to [0,100]. If embedding fails every job gets the default score.
func (r *EmbeddingRanker) Rank(ctx context.Context, jobs []model.JobRecord, kw model.NormalizedKeywords) []model.JobRecord {
	if len(jobs) == 0 {
		return []model.JobRecord{}
	}

	scores, err := r.score(ctx, jobs, kw)
	if err != nil {
		r.logger.Warn("embedding ranking failed, using default score", "jobs", len(jobs), "error", err)
		scores = uniform(len(jobs), r.defaultScore)
	}
	return applyScores(jobs, scores, r.defaultScore)
}

func (r *EmbeddingRanker) score(ctx context.Context, jobs []model.JobRecord, kw model.NormalizedKeywords) ([]float64, error) {
	texts := make([]string, 0, len(jobs)+1)
	texts = append(texts, normalizeText(kw.QueryText()))
	for _, j := range jobs {
		texts = append(texts, normalizeText(jobText(j)))
	}

	vectors, err := r.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(vectors), len(texts))
	}

	query := vectors[0]
	scores := make([]float64, len(jobs))
	for i := range jobs {
		sim, err := cosine(query, vectors[i+1])
		if err != nil {
			return nil, fmt.Errorf("job %d: %w", i, err)
		}
		scores[i] = sim * 100
	}
	return scores, nil
}

// cosine returns the cosine similarity of a and b, 0 when either is all zeros.
func cosine(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vector length mismatch: %d vs %d", len(a), len(b))
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb)), nil
}
