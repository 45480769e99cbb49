// Package adapter implements model.Source for each job board by running its
// scraping actor on Apify and mapping the dataset items to JobRecords.
package adapter

import (
	"context"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/amishk599/jobfinder/internal/apify"
	"github.com/amishk599/jobfinder/internal/model"
)

// fieldPaths lists, per JobRecord field, the gjson paths tried in order
// against an actor item. Actors disagree on naming, and change it.
type fieldPaths struct {
	Title      []string
	Company    []string
	Location   []string
	Salary     []string
	ApplyLink  []string
	Experience []string
	JobNature  []string
}

// firstString returns the first non-empty scalar (or array of scalars,
// joined with ", ") found at paths.
func firstString(item gjson.Result, paths []string) string {
	for _, p := range paths {
		v := item.Get(p)
		var s string
		switch {
		case v.Type == gjson.String || v.Type == gjson.Number:
			s = v.String()
		case v.IsArray():
			var parts []string
			for _, e := range v.Array() {
				if e.Type == gjson.String || e.Type == gjson.Number {
					if t := strings.TrimSpace(e.String()); t != "" {
						parts = append(parts, t)
					}
				}
			}
			s = strings.Join(parts, ", ")
		}
		if s = extractText(s); s != "" {
			return s
		}
	}
	return ""
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// toRecord maps one actor item. Missing fields take the placeholder
// defaults, or the caller's own values for location, experience and nature.
func toRecord(item gjson.Result, paths fieldPaths, q model.Query, source string) model.JobRecord {
	return model.JobRecord{
		Title:      orDefault(firstString(item, paths.Title), model.DefaultTitle),
		Company:    orDefault(firstString(item, paths.Company), model.DefaultCompany),
		Location:   orDefault(firstString(item, paths.Location), q.Keywords.SearchLocation()),
		Salary:     orDefault(firstString(item, paths.Salary), model.DefaultSalary),
		ApplyLink:  orDefault(firstString(item, paths.ApplyLink), model.DefaultLink),
		Experience: orDefault(firstString(item, paths.Experience), q.Request.Experience),
		JobNature:  orDefault(firstString(item, paths.JobNature), q.Request.JobNature),
		Source:     source,
	}
}

// runActor starts actorID, waits for it, and maps up to maxItems dataset
// items. Non-object items are skipped.
func runActor(ctx context.Context, client *apify.Client, source, actorID string, input map[string]any, maxItems int, paths fieldPaths, q model.Query) ([]model.JobRecord, error) {
	run, err := client.CallActor(ctx, actorID, input)
	if err != nil {
		return nil, fmt.Errorf("%s search: %w", source, err)
	}

	jobs := make([]model.JobRecord, 0)
	err = client.IterateDataset(ctx, run.DefaultDatasetID, maxItems, func(item gjson.Result) error {
		if !item.IsObject() {
			return nil
		}
		jobs = append(jobs, toRecord(item, paths, q, source))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s search: %w", source, err)
	}
	return jobs, nil
}
