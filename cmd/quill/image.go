package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quillapp/quill/internal/models"
)

var imageCmd = &cobra.Command{
	Use:   "image",
	Short: "Inspect the local media cache",
}

var imageListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached images, newest first",
	RunE:  runImageList,
}

var imageDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Evict an image from the cache",
	Args:  cobra.ExactArgs(1),
	RunE:  runImageDelete,
}

var (
	imageUploadStatus string
	imageLimit        int
)

func init() {
	rootCmd.AddCommand(imageCmd)
	imageCmd.AddCommand(imageListCmd, imageDeleteCmd)

	imageListCmd.Flags().StringVar(&imageUploadStatus, "upload-status", "",
		"Filter by upload status (pending, uploading, uploaded, failed)")
	imageListCmd.Flags().IntVar(&imageLimit, "limit", 0,
		"Maximum number of images to return")
}

func runImageList(cmd *cobra.Command, args []string) error {
	filter := models.ImageFilter{Limit: imageLimit}
	if imageUploadStatus != "" {
		status := models.UploadStatus(imageUploadStatus)
		filter.UploadStatus = &status
	}

	images, err := dataStore.Images.List(context.Background(), filter)
	if err != nil {
		return err
	}

	if jsonOutput {
		printJSON(images)
		return nil
	}

	if len(images) == 0 {
		printInfo("Image cache is empty.")
		return nil
	}

	for _, img := range images {
		printInfo("%s  %-9s %8s  %s",
			img.ID, img.UploadStatus, formatSize(img.Size), img.LocalPath)
	}
	printInfo("\n%d image(s)", len(images))
	return nil
}

func runImageDelete(cmd *cobra.Command, args []string) error {
	if err := dataStore.Images.Delete(context.Background(), args[0]); err != nil {
		return fmt.Errorf("delete image: %w", err)
	}
	printSuccess("Image %s removed from cache.", args[0])
	return nil
}

func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMG"[exp])
}
