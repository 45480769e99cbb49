package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobfinder/internal/config"
	"github.com/amishk599/jobfinder/internal/model"
	"github.com/amishk599/jobfinder/internal/notifier"
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Notification subcommands",
}

var notifyTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Send a test notification",
	Long:  "Sends a test job using the configured notifier.",
	RunE:  runNotifyTest,
}

func init() {
	rootCmd.AddCommand(notifyCmd)
	notifyCmd.AddCommand(notifyTestCmd)
}

func setupNotifier(cfg *config.Config, logger *slog.Logger) model.Notifier {
	switch cfg.Notification.Type {
	case "slack":
		logger.Info("using slack notifier")
		return notifier.NewSlackNotifier(cfg.Notification.WebhookURL, &http.Client{Timeout: 30 * time.Second}, logger)
	default:
		return notifier.NewLogNotifier(logger)
	}
}

func runNotifyTest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		bootLogger().Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := setupLogger(os.Stdout, cfg.Log, debug)

	if err := notifier.SendTestMessage(context.Background(), setupNotifier(cfg, logger)); err != nil {
		logger.Error("test notification failed", "error", err)
		os.Exit(1)
	}
	logger.Info("test notification sent", "type", cfg.Notification.Type)
	return nil
}
