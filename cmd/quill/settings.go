package main

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:     "config",
	Aliases: []string{"settings"},
	Short:   "Manage typed user settings",
}

var settingsGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print the value stored under a key",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsGet,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Store a value under a key",
	Long: `Set stores a value under a key. The value's type is inferred: "true"
and "false" become booleans, numeric values become numbers, valid JSON
objects or arrays are stored as json, anything else as a string.`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List settings grouped by category",
	RunE:  runSettingsList,
}

var settingsUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Remove a setting",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsUnset,
}

var settingsCategory string

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsGetCmd, settingsSetCmd, settingsListCmd, settingsUnsetCmd)

	settingsSetCmd.Flags().StringVar(&settingsCategory, "category", "general",
		"Category to file the setting under")
	settingsListCmd.Flags().StringVar(&settingsCategory, "category", "",
		"Only list settings in this category")
}

func runSettingsGet(cmd *cobra.Command, args []string) error {
	value, err := dataStore.Settings.Get(context.Background(), args[0])
	if err != nil {
		return err
	}

	if jsonOutput {
		printJSON(map[string]interface{}{"key": args[0], "value": value})
		return nil
	}
	printInfo("%v", value)
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	key, raw := args[0], args[1]

	err := dataStore.Settings.Set(context.Background(), key, parseSettingValue(raw), settingsCategory)
	if err != nil {
		return err
	}

	printSuccess("Set %s.", key)
	return nil
}

func runSettingsList(cmd *cobra.Command, args []string) error {
	entries, err := dataStore.Settings.ListAll(context.Background(), settingsCategory)
	if err != nil {
		return err
	}

	if jsonOutput {
		printJSON(entries)
		return nil
	}

	if len(entries) == 0 {
		printInfo("No settings stored.")
		return nil
	}

	category := ""
	for _, e := range entries {
		if e.Category != category {
			category = e.Category
			printInfo("[%s]", category)
		}
		printInfo("  %s = %s (%s)", e.Key, e.Value, e.Type)
	}
	return nil
}

func runSettingsUnset(cmd *cobra.Command, args []string) error {
	if err := dataStore.Settings.Delete(context.Background(), args[0]); err != nil {
		return err
	}
	printSuccess("Removed %s.", args[0])
	return nil
}

// parseSettingValue infers a runtime type from CLI input so the stored type
// tag matches what the user meant.
func parseSettingValue(raw string) any {
	if raw == "true" {
		return true
	}
	if raw == "false" {
		return false
	}
	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		return n
	}
	if len(raw) > 0 && (raw[0] == '{' || raw[0] == '[') {
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err == nil {
			return v
		}
	}
	return raw
}
