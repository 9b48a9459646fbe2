package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobfeed/internal/adapter"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List all configured sources",
	Long:  "Reads the config and prints a table of every source family and identifier.",
	RunE:  runSources,
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

func runSources(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	fmt.Printf("%-50s %-12s %s\n", "Source", "Family", "Status")
	fmt.Println(strings.Repeat("─", 72))

	enabled, disabled := 0, 0
	for _, f := range cfg.Sources.Families() {
		status := "enabled"
		if !f.Enabled {
			status = "disabled"
		}
		for _, id := range f.Identifiers {
			if f.Enabled {
				enabled++
			} else {
				disabled++
			}
			fmt.Printf("%-50s %-12s %s\n", adapter.SourceLabel(f.Family, id), f.Family, status)
		}
	}

	fmt.Printf("\nTotal: %d sources (%d enabled, %d disabled)\n", enabled+disabled, enabled, disabled)
	return nil
}
