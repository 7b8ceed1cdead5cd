package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/quillapp/quill/internal/models"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Summarize the local store",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	drafts, err := dataStore.Drafts.List(ctx, models.DraftFilter{})
	if err != nil {
		return err
	}
	pending := 0
	for _, d := range drafts {
		if d.SyncStatus == models.SyncStatusPending {
			pending++
		}
	}

	images, err := dataStore.Images.List(ctx, models.ImageFilter{})
	if err != nil {
		return err
	}

	stats, err := dataStore.Queue.Stats(ctx)
	if err != nil {
		return err
	}

	settings, err := dataStore.Settings.ListAll(ctx, "")
	if err != nil {
		return err
	}

	if jsonOutput {
		printJSON(map[string]interface{}{
			"drafts":         len(drafts),
			"drafts_pending": pending,
			"images":         len(images),
			"settings":       len(settings),
			"queue":          stats,
		})
		return nil
	}

	printInfo("Database: %s", cfg.Storage.DatabaseFile)
	printInfo("Drafts:   %d (%d pending sync)", len(drafts), pending)
	printInfo("Images:   %d", len(images))
	printInfo("Settings: %d", len(settings))
	printInfo("Queue:    %d pending, %d syncing, %d completed, %d failed",
		stats.Pending, stats.Syncing, stats.Completed, stats.Failed)
	return nil
}
