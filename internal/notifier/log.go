package notifier

import (
	"context"
	"log/slog"

	"github.com/amishk599/jobfinder/internal/model"
)

// Ensure LogNotifier implements model.Notifier.
var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier writes ranked jobs to the given logger as structured messages.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier that logs each job via slog.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs each job with rank, score, company, title, location and link.
// Returns nil (stdout logging does not fail).
func (n *LogNotifier) Notify(_ context.Context, position string, jobs []model.JobRecord) error {
	for i, j := range jobs {
		n.logger.Info("ranked job",
			"position", position,
			"rank", i+1,
			"similarity", j.Similarity,
			"company", j.Company,
			"title", j.Title,
			"location", j.Location,
			"source", j.Source,
			"url", j.ApplyLink,
		)
	}
	return nil
}
