package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/quillapp/quill/internal/models"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the entire dataset to a snapshot file",
	Example: `  quill export
  quill export --out backup.json`,
	RunE: runExport,
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a snapshot file into the local store",
	Long: `Import applies a snapshot inside a single transaction. If any entity
in the snapshot is invalid the whole import is rolled back and the store is
left untouched.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var exportOut string

func init() {
	rootCmd.AddCommand(exportCmd, importCmd)

	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "",
		"Output file (defaults to a timestamped file in the export dir)")
}

func runExport(cmd *cobra.Command, args []string) error {
	snapshot, err := dataStore.ExportAll(context.Background())
	if err != nil {
		return err
	}

	out := exportOut
	if out == "" {
		name := fmt.Sprintf("quill-%s.json", snapshot.ExportedAt.Format("20060102-150405"))
		out = filepath.Join(cfg.Storage.ExportDir, name)
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := os.WriteFile(out, data, 0600); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	drafts, images, configs := snapshot.Counts()
	if jsonOutput {
		printJSON(map[string]interface{}{
			"file":    out,
			"drafts":  drafts,
			"images":  images,
			"configs": configs,
		})
		return nil
	}

	printSuccess("Exported %d draft(s), %d image(s), %d setting(s) to %s",
		drafts, images, configs, out)
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot models.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return fmt.Errorf("parse snapshot: %w", err)
	}
	if snapshot.Version > models.SnapshotVersion {
		return fmt.Errorf("snapshot version %d is newer than supported version %d",
			snapshot.Version, models.SnapshotVersion)
	}

	start := time.Now()
	if err := dataStore.ImportAll(context.Background(), &snapshot); err != nil {
		return err
	}

	drafts, images, configs := snapshot.Counts()
	if jsonOutput {
		printJSON(map[string]interface{}{
			"drafts":  drafts,
			"images":  images,
			"configs": configs,
		})
		return nil
	}

	printSuccess("Imported %d draft(s), %d image(s), %d setting(s) in %s",
		drafts, images, configs, time.Since(start).Round(time.Millisecond))
	return nil
}
