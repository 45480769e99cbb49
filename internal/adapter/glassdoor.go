package adapter

import (
	"context"

	"github.com/amishk599/jobfinder/internal/apify"
	"github.com/amishk599/jobfinder/internal/model"
)

// DefaultGlassdoorActor is the Glassdoor scraping actor used when none is configured.
const DefaultGlassdoorActor = "bebity/glassdoor-jobs-scraper"

var glassdoorFields = fieldPaths{
	Title:     []string{"jobTitle", "title", "job_title"},
	Company:   []string{"companyName", "company.companyName", "employerName", "company"},
	Location:  []string{"location", "locationName", "jobLocation"},
	Salary:    []string{"salary", "salaryText", "pay"},
	ApplyLink: []string{"jobLink", "url", "applyUrl", "apply_link"},
	JobNature: []string{"jobType"},
}

// GlassdoorAdapter searches Glassdoor through its Apify actor.
type GlassdoorAdapter struct {
	client   *apify.Client
	actorID  string
	maxItems int
}

// NewGlassdoorAdapter creates a Glassdoor source. An empty actorID selects DefaultGlassdoorActor.
func NewGlassdoorAdapter(client *apify.Client, actorID string, maxItems int) *GlassdoorAdapter {
	if actorID == "" {
		actorID = DefaultGlassdoorActor
	}
	return &GlassdoorAdapter{client: client, actorID: actorID, maxItems: maxItems}
}

func (a *GlassdoorAdapter) Name() string { return "glassdoor" }

// Search runs the actor for q and maps its items.
func (a *GlassdoorAdapter) Search(ctx context.Context, q model.Query) ([]model.JobRecord, error) {
	return runActor(ctx, a.client, a.Name(), a.actorID, a.input(q), a.maxItems, glassdoorFields, q)
}

func (a *GlassdoorAdapter) input(q model.Query) map[string]any {
	return map[string]any{
		"keyword":  q.Keywords.Position,
		"location": q.Keywords.SearchLocation(),
		"maxItems": a.maxItems,
		"proxy":    apify.ResidentialProxy,
	}
}
