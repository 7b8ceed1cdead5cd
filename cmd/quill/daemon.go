package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/quillapp/quill/internal/store"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the background retention cleanup loop",
	Long: `Daemon runs retention cleanup on retention.interval until interrupted:
terminal sync tasks and stale uploaded media older than retention.max_age
are removed. Queue draining is driven by the authoring client, which owns
the remote transport.`,
	RunE: runDaemon,
}

func init() {
	rootCmd.AddCommand(daemonCmd)
}

func runDaemon(cmd *cobra.Command, args []string) error {
	if cfg.Retention.Disabled {
		printWarning("Retention cleanup is disabled in config, nothing to do.")
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	printInfo("Cleanup daemon running (interval %s, max age %s), press Ctrl-C to stop.",
		cfg.Retention.Interval, cfg.Retention.MaxAge)

	store.NewJanitor(dataStore, cfg.Retention, logger).Run(ctx)
	return nil
}
