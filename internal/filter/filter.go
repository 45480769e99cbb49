// Package filter narrows fetched jobs by company before ranking.
package filter

import (
	"strings"

	"github.com/amishk599/jobfinder/internal/model"
)

// CompanyFilter keeps jobs whose company contains any include keyword and
// none of the exclude keywords. Matching is case-insensitive. An empty
// include list matches every company.
type CompanyFilter struct {
	include []string
	exclude []string
}

// NewCompanyFilter returns a filter over lowercased, trimmed keyword lists.
// Blank entries are dropped.
func NewCompanyFilter(include, exclude []string) *CompanyFilter {
	return &CompanyFilter{
		include: normalize(include),
		exclude: normalize(exclude),
	}
}

// ForRequest builds the filter a search request asks for.
func ForRequest(req model.SearchRequest) *CompanyFilter {
	return NewCompanyFilter(req.Companies, req.ExcludeCompanies)
}

// Match reports whether the job's company passes both lists.
func (f *CompanyFilter) Match(job model.JobRecord) bool {
	company := strings.ToLower(job.Company)

	for _, kw := range f.exclude {
		if strings.Contains(company, kw) {
			return false
		}
	}

	if len(f.include) == 0 {
		return true
	}
	for _, kw := range f.include {
		if strings.Contains(company, kw) {
			return true
		}
	}
	return false
}

// Apply returns the jobs that match f, in order. A nil filter keeps all.
func Apply(jobs []model.JobRecord, f model.JobFilter) []model.JobRecord {
	if f == nil {
		return jobs
	}
	out := make([]model.JobRecord, 0, len(jobs))
	for _, j := range jobs {
		if f.Match(j) {
			out = append(out, j)
		}
	}
	return out
}

func normalize(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
			out = append(out, kw)
		}
	}
	return out
}
