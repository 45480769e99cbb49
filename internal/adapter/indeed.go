package adapter

import (
	"context"
	"strings"

	"github.com/amishk599/jobfinder/internal/apify"
	"github.com/amishk599/jobfinder/internal/experience"
	"github.com/amishk599/jobfinder/internal/model"
)

// DefaultIndeedActor is the Indeed scraping actor used when none is configured.
const DefaultIndeedActor = "apify/indeed-jobs-scraper"

var indeedFields = fieldPaths{
	Title:     []string{"positionName", "title", "job_title"},
	Company:   []string{"company", "companyName", "company_name"},
	Location:  []string{"location", "formattedLocation"},
	Salary:    []string{"salary", "salary.salaryText", "salarySnippet.text"},
	ApplyLink: []string{"externalApplyLink", "url", "apply_link"},
	JobNature: []string{"jobType"},
}

// IndeedAdapter searches Indeed through its Apify actor.
type IndeedAdapter struct {
	client   *apify.Client
	actorID  string
	maxItems int
}

// NewIndeedAdapter creates an Indeed source. An empty actorID selects DefaultIndeedActor.
func NewIndeedAdapter(client *apify.Client, actorID string, maxItems int) *IndeedAdapter {
	if actorID == "" {
		actorID = DefaultIndeedActor
	}
	return &IndeedAdapter{client: client, actorID: actorID, maxItems: maxItems}
}

func (a *IndeedAdapter) Name() string { return "indeed" }

// Search runs the actor for q and maps its items.
func (a *IndeedAdapter) Search(ctx context.Context, q model.Query) ([]model.JobRecord, error) {
	return runActor(ctx, a.client, a.Name(), a.actorID, a.input(q), a.maxItems, indeedFields, q)
}

func (a *IndeedAdapter) input(q model.Query) map[string]any {
	in := map[string]any{
		"position":        q.Keywords.Position,
		"location":        q.Keywords.SearchLocation(),
		"maxItems":        a.maxItems,
		"experienceLevel": experience.IndeedLevel(q.Keywords.Experience),
		"proxy":           apify.ResidentialProxy,
	}
	// The actor takes a two-letter country code; names are left to the location string.
	if c := strings.TrimSpace(q.Keywords.Country); len(c) == 2 {
		in["country"] = strings.ToUpper(c)
	}
	return in
}
