package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/quillapp/quill/internal/models"
)

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Inspect and manage the sync queue",
}

var queueListCmd = &cobra.Command{
	Use:   "list",
	Short: "List queued tasks in dequeue order",
	RunE:  runQueueList,
}

var queuePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Purge old terminal tasks and stale uploaded media",
	Long: `Purge removes completed and failed sync tasks older than the given
age, and image cache entries that finished uploading and have not been
accessed within it. Drafts and settings are never purged.`,
	RunE: runQueuePurge,
}

var (
	queueStatus    string
	queueLimit     int
	queueOlderThan time.Duration
)

func init() {
	rootCmd.AddCommand(queueCmd)
	queueCmd.AddCommand(queueListCmd, queuePurgeCmd)

	queueListCmd.Flags().StringVar(&queueStatus, "status", "",
		"Filter by task status (pending, syncing, completed, failed)")
	queueListCmd.Flags().IntVar(&queueLimit, "limit", 0,
		"Maximum number of tasks to return")

	queuePurgeCmd.Flags().DurationVar(&queueOlderThan, "older-than", 0,
		"Age threshold (defaults to retention.max_age from config)")
}

func runQueueList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	var status *models.TaskStatus
	if queueStatus != "" {
		s := models.TaskStatus(queueStatus)
		status = &s
	}

	tasks, err := dataStore.Queue.List(ctx, status, queueLimit)
	if err != nil {
		return err
	}

	if jsonOutput {
		printJSON(tasks)
		return nil
	}

	if len(tasks) == 0 {
		printInfo("Queue is empty.")
		return nil
	}

	for _, t := range tasks {
		line := ""
		if t.ErrorMessage != "" {
			line = "  error: " + t.ErrorMessage
		}
		printInfo("%s  p%-3d %-9s %-7s %-8s %s retries=%d%s",
			t.ID, t.Priority, t.Status, t.Operation, t.EntityType,
			t.EntityID, t.RetryCount, line)
	}
	printInfo("\n%d task(s)", len(tasks))
	return nil
}

func runQueuePurge(cmd *cobra.Command, args []string) error {
	age := queueOlderThan
	if age <= 0 {
		age = cfg.Retention.MaxAge
	}

	result, err := dataStore.PurgeExpired(context.Background(), age)
	if err != nil {
		return err
	}

	if jsonOutput {
		printJSON(result)
		return nil
	}

	printSuccess("Purged %d task(s) and %d cached image(s) older than %s.",
		result.Tasks, result.Images, age)
	return nil
}
