package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobfinder/internal/browse"
	"github.com/amishk599/jobfinder/internal/model"
)

var searchFlags struct {
	req         model.SearchRequest
	top         int
	interactive bool
	asJSON      bool
	notify      bool
}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Run one search and print the ranked jobs",
	Long:  "One-shot search from flags. Prints a table, JSON with --json, or opens the results browser with --interactive.",
	RunE:  runSearch,
}

func init() {
	f := searchCmd.Flags()
	f.StringVarP(&searchFlags.req.Position, "position", "p", "", "job title to search for (required)")
	f.StringVar(&searchFlags.req.Experience, "experience", "", `experience, e.g. "3 years"`)
	f.StringVar(&searchFlags.req.Salary, "salary", "", "expected salary")
	f.StringVar(&searchFlags.req.JobNature, "job-nature", "", "onsite, remote, hybrid, full-time...")
	f.StringVarP(&searchFlags.req.Location, "location", "l", "", "location")
	f.StringVar(&searchFlags.req.Country, "country", "", "country (overrides location together with --city)")
	f.StringVar(&searchFlags.req.City, "city", "", "city")
	f.StringVar(&searchFlags.req.Skills, "skills", "", "comma separated skills")
	f.StringSliceVar(&searchFlags.req.Companies, "company", nil, "only keep these companies (repeatable)")
	f.StringSliceVar(&searchFlags.req.ExcludeCompanies, "exclude-company", nil, "drop these companies (repeatable)")
	f.IntVarP(&searchFlags.top, "top", "n", 0, "number of jobs to return (default: search.top_n)")
	f.BoolVarP(&searchFlags.interactive, "interactive", "i", false, "browse results in the terminal UI")
	f.BoolVar(&searchFlags.asJSON, "json", false, "print the result as JSON")
	f.BoolVar(&searchFlags.notify, "notify", false, "also send the ranked jobs to the configured notifier")
	_ = searchCmd.MarkFlagRequired("position")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if cmd.Flags().Changed("top") {
		cfg.Search.TopN = searchFlags.top
	}

	logger := setupLogger(os.Stderr, cfg.Log, debug)
	if searchFlags.interactive {
		logger = silentLogger()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	req := searchFlags.req
	if searchFlags.interactive {
		return browseSearch(ctx, a, req)
	}

	result, err := a.service.Search(ctx, req)
	if err != nil {
		return err
	}
	if searchFlags.notify {
		n := setupNotifier(cfg, logger)
		if err := n.Notify(ctx, req.Position, result.Jobs); err != nil {
			logger.Error("notification failed", "error", err)
		}
	}
	if searchFlags.asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	printResult(os.Stdout, result)
	return nil
}

// browseSearch runs req behind the spinner and opens the results browser.
func browseSearch(ctx context.Context, a *app, req model.SearchRequest) error {
	result, err := browse.RunLoader(ctx, req.Position, func(ctx context.Context) (*model.RankedResult, error) {
		return a.service.Search(ctx, req)
	})
	if err != nil {
		return err
	}
	return browse.RunResults(result)
}

func printResult(w io.Writer, r *model.RankedResult) {
	fmt.Fprintf(w, "%-6s %-40s %-25s %-25s %s\n", "Score", "Title", "Company", "Location", "Source")
	fmt.Fprintln(w, strings.Repeat("─", 110))
	for _, j := range r.Jobs {
		fmt.Fprintf(w, "%-6.1f %-40s %-25s %-25s %s\n", j.Similarity, truncate(j.Title, 40), truncate(j.Company, 25), truncate(j.Location, 25), j.Source)
		fmt.Fprintf(w, "%-6s %s\n", "", j.ApplyLink)
	}
	if len(r.Jobs) == 0 {
		fmt.Fprintln(w, "No jobs found.")
	}

	fmt.Fprintln(w)
	for _, s := range r.Sources {
		status := fmt.Sprintf("%d fetched", s.Fetched)
		if s.Cached {
			status += " (cached)"
		}
		if s.Error != "" {
			status = "failed: " + s.Error
		}
		fmt.Fprintf(w, "%-10s %s\n", s.Source, status)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
