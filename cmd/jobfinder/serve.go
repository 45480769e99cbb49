package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/amishk599/jobfinder/internal/api"
	"github.com/amishk599/jobfinder/internal/scheduler"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP search server",
	Long:  "Serve POST /search and GET /healthz; blocks until SIGINT/SIGTERM.",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		bootLogger().Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := setupLogger(os.Stdout, cfg.Log, debug)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to build search pipeline", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	handler := api.NewHandler(a.service, logger)
	srv := api.NewServer(cfg.Server.Addr, handler.Routes(), cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(gctx) })
	if a.cleaner != nil {
		sched := scheduler.NewScheduler(a.cleaner, cfg.Cache.CleanupSchedule, logger)
		g.Go(func() error { return sched.Run(gctx) })
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("serve: %w", err)
	}

	logger.Info("goodbye")
	return nil
}
