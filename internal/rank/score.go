// Package rank scores job records against normalized keywords and orders
// them by similarity.
package rank

import (
	"math"
	"sort"

	"github.com/amishk599/jobfinder/internal/model"
)

// Score bounds. Every similarity leaving this package lies in [MinScore, MaxScore].
const (
	MinScore     = 0.0
	MaxScore     = 100.0
	DefaultScore = 50.0
)

// Clamp bounds s to [MinScore, MaxScore]. NaN becomes MinScore.
func Clamp(s float64) float64 {
	if math.IsNaN(s) {
		return MinScore
	}
	return math.Max(MinScore, math.Min(MaxScore, s))
}

// applyScores copies jobs, assigns scores[i] to job i, and gives def to every
// job without a score. The result is sorted by similarity descending; ties
// keep input order.
func applyScores(jobs []model.JobRecord, scores []float64, def float64) []model.JobRecord {
	out := make([]model.JobRecord, len(jobs))
	copy(out, jobs)
	for i := range out {
		if i < len(scores) {
			out[i].Similarity = Clamp(scores[i])
		} else {
			out[i].Similarity = Clamp(def)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Similarity > out[j].Similarity
	})
	return out
}

// uniform returns n copies of s.
func uniform(n int, s float64) []float64 {
	scores := make([]float64, n)
	for i := range scores {
		scores[i] = s
	}
	return scores
}
