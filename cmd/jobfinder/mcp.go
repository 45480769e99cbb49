package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobfinder/internal/mcptool"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the search_jobs tool over MCP stdio",
	Long:  "Runs an MCP server on stdin/stdout exposing search_jobs. Logs go to stderr.",
	RunE:  runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	// stdout carries the protocol.
	logger := setupLogger(os.Stderr, cfg.Log, debug)

	a, err := buildApp(context.Background(), cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	return mcptool.ServeStdio(mcptool.NewServer(a.service, version))
}
