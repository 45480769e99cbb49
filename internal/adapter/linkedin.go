package adapter

import (
	"context"
	"strings"

	"github.com/amishk599/jobfinder/internal/apify"
	"github.com/amishk599/jobfinder/internal/experience"
	"github.com/amishk599/jobfinder/internal/model"
)

// DefaultLinkedInActor is the LinkedIn scraping actor used when none is configured.
const DefaultLinkedInActor = "bebity/linkedin-jobs-scraper"

var linkedInFields = fieldPaths{
	Title:      []string{"title", "job_title", "positionName"},
	Company:    []string{"companyName", "company", "company_name"},
	Location:   []string{"location", "jobLocation"},
	Salary:     []string{"salary", "salaryInfo"},
	ApplyLink:  []string{"applyUrl", "jobUrl", "link", "url", "apply_link"},
	Experience: []string{"experienceLevel"},
	JobNature:  []string{"workType", "contractType"},
}

// LinkedInAdapter searches LinkedIn through its Apify actor.
type LinkedInAdapter struct {
	client   *apify.Client
	actorID  string
	maxItems int
}

// NewLinkedInAdapter creates a LinkedIn source. An empty actorID selects DefaultLinkedInActor.
func NewLinkedInAdapter(client *apify.Client, actorID string, maxItems int) *LinkedInAdapter {
	if actorID == "" {
		actorID = DefaultLinkedInActor
	}
	return &LinkedInAdapter{client: client, actorID: actorID, maxItems: maxItems}
}

func (a *LinkedInAdapter) Name() string { return "linkedin" }

// Search runs the actor for q and maps its items.
func (a *LinkedInAdapter) Search(ctx context.Context, q model.Query) ([]model.JobRecord, error) {
	return runActor(ctx, a.client, a.Name(), a.actorID, a.input(q), a.maxItems, linkedInFields, q)
}

func (a *LinkedInAdapter) input(q model.Query) map[string]any {
	in := map[string]any{
		"title":           q.Keywords.Position,
		"location":        q.Keywords.SearchLocation(),
		"rows":            a.maxItems,
		"experienceLevel": experience.LinkedInLevel(q.Keywords.Experience),
		"proxy":           apify.ResidentialProxy,
	}
	if len(q.Request.Companies) > 0 {
		in["companyName"] = q.Request.Companies
	}
	contract, work := linkedInJobNature(q.Request.JobNature)
	if contract != "" {
		in["contractType"] = contract
	}
	if work != "" {
		in["workType"] = work
	}
	return in
}

// linkedInJobNature maps free-text job nature to LinkedIn's contract type
// (F, P, C, T, I) and workplace type (1 onsite, 2 remote, 3 hybrid) codes.
func linkedInJobNature(nature string) (contract, work string) {
	n := strings.ToLower(nature)
	switch {
	case strings.Contains(n, "full"):
		contract = "F"
	case strings.Contains(n, "part"):
		contract = "P"
	case strings.Contains(n, "contract"):
		contract = "C"
	case strings.Contains(n, "temp"):
		contract = "T"
	case strings.Contains(n, "intern"):
		contract = "I"
	}
	switch {
	case strings.Contains(n, "hybrid"):
		work = "3"
	case strings.Contains(n, "remote"):
		work = "2"
	case strings.Contains(n, "onsite"), strings.Contains(n, "on-site"), strings.Contains(n, "office"):
		work = "1"
	}
	return contract, work
}
