package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quillapp/quill/internal/models"
)

var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Inspect and manage local drafts",
}

var draftListCmd = &cobra.Command{
	Use:   "list",
	Short: "List drafts, newest first",
	Example: `  quill draft list
  quill draft list --status draft --sync-status pending --limit 10`,
	RunE: runDraftList,
}

var draftShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a single draft",
	Args:  cobra.ExactArgs(1),
	RunE:  runDraftShow,
}

var draftDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a draft from the local store",
	Args:  cobra.ExactArgs(1),
	RunE:  runDraftDelete,
}

var (
	draftStatus     string
	draftSyncStatus string
	draftLimit      int
	draftOffset     int
)

func init() {
	rootCmd.AddCommand(draftCmd)
	draftCmd.AddCommand(draftListCmd, draftShowCmd, draftDeleteCmd)

	draftListCmd.Flags().StringVar(&draftStatus, "status", "",
		"Filter by lifecycle status (draft, published, archived)")
	draftListCmd.Flags().StringVar(&draftSyncStatus, "sync-status", "",
		"Filter by sync status (pending, synced, conflict, error)")
	draftListCmd.Flags().IntVar(&draftLimit, "limit", 0,
		"Maximum number of drafts to return")
	draftListCmd.Flags().IntVar(&draftOffset, "offset", 0,
		"Number of drafts to skip")
}

func runDraftList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	filter := models.DraftFilter{Limit: draftLimit, Offset: draftOffset}
	if draftStatus != "" {
		status := models.DraftStatus(draftStatus)
		filter.Status = &status
	}
	if draftSyncStatus != "" {
		syncStatus := models.SyncStatus(draftSyncStatus)
		filter.SyncStatus = &syncStatus
	}

	drafts, err := dataStore.Drafts.List(ctx, filter)
	if err != nil {
		return err
	}

	if jsonOutput {
		printJSON(drafts)
		return nil
	}

	if len(drafts) == 0 {
		printInfo("No drafts found.")
		return nil
	}

	for _, d := range drafts {
		tags := ""
		if len(d.Tags) > 0 {
			tags = " [" + strings.Join(d.Tags, ", ") + "]"
		}
		printInfo("%s  v%-3d %-10s %-8s %s%s",
			d.ID, d.Version, d.Status, d.SyncStatus, d.Title, tags)
	}
	printInfo("\n%d draft(s)", len(drafts))
	return nil
}

func runDraftShow(cmd *cobra.Command, args []string) error {
	draft, err := dataStore.Drafts.Get(context.Background(), args[0])
	if err != nil {
		return err
	}

	if jsonOutput {
		printJSON(draft)
		return nil
	}

	printInfo("ID:            %s", draft.ID)
	printInfo("Title:         %s", draft.Title)
	printInfo("Status:        %s", draft.Status)
	printInfo("Sync status:   %s", draft.SyncStatus)
	printInfo("Version:       %d", draft.Version)
	printInfo("Tags:          %s", strings.Join(draft.Tags, ", "))
	printInfo("Categories:    %s", strings.Join(draft.Categories, ", "))
	if draft.RemoteID != "" {
		printInfo("Remote ID:     %s", draft.RemoteID)
	}
	printInfo("Created:       %s", draft.CreatedAt.Local())
	printInfo("Last modified: %s", draft.LastModified.Local())
	printInfo("\n%s", draft.Content)
	return nil
}

func runDraftDelete(cmd *cobra.Command, args []string) error {
	if err := dataStore.Drafts.Delete(context.Background(), args[0]); err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	printSuccess("Draft %s deleted.", args[0])
	return nil
}
