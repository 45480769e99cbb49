package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobfinder/internal/adapter"
	"github.com/amishk599/jobfinder/internal/config"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List job sources and their actors",
	Long:  "Reads the config and prints a table of the job boards, their actor ids and status.",
	RunE:  runSources,
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

func runSources(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	rows := []struct {
		name     string
		cfg      config.SourceConfig
		fallback string
	}{
		{"linkedin", cfg.Sources.LinkedIn, adapter.DefaultLinkedInActor},
		{"indeed", cfg.Sources.Indeed, adapter.DefaultIndeedActor},
		{"glassdoor", cfg.Sources.Glassdoor, adapter.DefaultGlassdoorActor},
	}

	fmt.Printf("%-12s %-40s %s\n", "Source", "Actor", "Status")
	fmt.Println(strings.Repeat("─", 62))

	enabled := 0
	for _, r := range rows {
		actor := r.cfg.ActorID
		if actor == "" {
			actor = r.fallback
		}
		status := "disabled"
		if r.cfg.Enabled {
			status = "enabled"
			enabled++
		}
		fmt.Printf("%-12s %-40s %s\n", r.name, actor, status)
	}

	fmt.Printf("\nTotal: %d sources (%d enabled, %d disabled)\n", len(rows), enabled, len(rows)-enabled)
	fmt.Printf("Ranking: %s, cache: %s\n", cfg.Ranking.Strategy, cfg.Cache.Backend)
	return nil
}
