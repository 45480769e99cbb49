package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobfinder/internal/browse"
	"github.com/amishk599/jobfinder/internal/store"
)

var historyFlags struct {
	limit int
	pick  bool
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent searches",
	Long:  "Lists the most recent searches from the search log. With --pick, choose one in the terminal UI and run it again.",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyFlags.limit, "limit", "n", 20, "number of searches to show")
	historyCmd.Flags().BoolVar(&historyFlags.pick, "pick", false, "pick a past search and run it again")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if !cfg.History.Enabled {
		fmt.Println("Search history is disabled (history.enabled: false).")
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	entries, err := recentSearches(ctx, cfg.History.Path, historyFlags.limit)
	if err != nil {
		return err
	}

	if !historyFlags.pick {
		printHistory(entries)
		return nil
	}

	choice, err := browse.RunHistoryPicker(entries)
	if err != nil {
		return fmt.Errorf("history picker: %w", err)
	}
	if choice < 0 {
		return nil
	}

	a, err := buildApp(ctx, cfg, silentLogger())
	if err != nil {
		return err
	}
	defer a.Close()
	return browseSearch(ctx, a, entries[choice].Request)
}

func recentSearches(ctx context.Context, path string, n int) ([]store.SearchEntry, error) {
	s, err := store.NewSQLiteStore(path)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return s.Recent(ctx, n)
}

func printHistory(entries []store.SearchEntry) {
	if len(entries) == 0 {
		fmt.Println("No searches yet.")
		return
	}
	fmt.Printf("%-17s %-30s %-20s %7s %8s  %s\n", "When", "Position", "Location", "Fetched", "Returned", "Top job")
	fmt.Println(strings.Repeat("─", 110))
	for _, e := range entries {
		fmt.Printf("%-17s %-30s %-20s %7d %8d  %s\n",
			e.CreatedAt.Local().Format("2006-01-02 15:04"),
			truncate(e.Position, 30), truncate(e.Location, 20),
			e.Fetched, e.Returned, e.TopTitle)
	}
}
