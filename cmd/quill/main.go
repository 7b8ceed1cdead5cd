package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/quillapp/quill/internal/config"
	"github.com/quillapp/quill/internal/events"
	"github.com/quillapp/quill/internal/store"
)

var (
	cfgFile    string
	jsonOutput bool
	verbose    bool

	cfg       *config.Config
	logger    *events.Logger
	dataStore *store.Store
)

var rootCmd = &cobra.Command{
	Use:   "quill",
	Short: "Local-first store for the Quill authoring client",
	Long: `Quill keeps drafts, cached media, and settings in a local SQLite
database and queues outbound changes for later delivery to the remote
service. This CLI inspects and manages that local store.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		cfg, err = config.NewLoader(cfgFile).Load()
		if err != nil {
			return err
		}

		if verbose {
			cfg.Log.Level = "debug"
		}

		logger, err = events.NewLogger(&cfg.Log)
		if err != nil {
			return fmt.Errorf("create logger: %w", err)
		}
		events.SetDefault(logger)

		if err := cfg.EnsureDirectories(); err != nil {
			return err
		}

		dataStore = store.New(cfg.Storage.DatabaseFile, logger)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if dataStore != nil {
			return dataStore.Close()
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"Config file path")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false,
		"Output results as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		printError("%v", err)
		os.Exit(1)
	}
}

// Output helpers

func printSuccess(format string, args ...interface{}) {
	color.New(color.FgGreen).Fprintf(os.Stdout, format+"\n", args...)
}

func printWarning(format string, args ...interface{}) {
	color.New(color.FgYellow).Fprintf(os.Stderr, format+"\n", args...)
}

func printError(format string, args ...interface{}) {
	color.New(color.FgRed).Fprintf(os.Stderr, format+"\n", args...)
}

func printInfo(format string, args ...interface{}) {
	fmt.Fprintf(os.Stdout, format+"\n", args...)
}

func printJSON(v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		printError("encode json: %v", err)
		return
	}
	fmt.Println(string(data))
}
