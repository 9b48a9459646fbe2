package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobfeed/internal/audit"
	"github.com/amishk599/jobfeed/internal/filter"
	"github.com/amishk599/jobfeed/internal/normalize"
)

var auditTopics []string

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Preview sources interactively (TUI)",
	Long:  "Shows the source picker, fetches the chosen source live without storing anything, then splits its postings into all and --topics matches.",
	RunE:  runAuditCmd,
}

func init() {
	auditCmd.Flags().StringSliceVar(&auditTopics, "topics", nil, "topics to match, comma-separated")
	rootCmd.AddCommand(auditCmd)
}

func runAuditCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Any log output corrupts the alt screen, so connectors log nowhere.
	silentLogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sources := buildSources(cfg, newHTTPClient(cfg), silentLogger)
	if len(sources) == 0 {
		fmt.Println("No enabled sources in config.")
		return nil
	}

	labels := make([]string, len(sources))
	for i, s := range sources {
		labels[i] = s.Label()
	}
	topics := normalize.NormalizeTags(auditTopics)
	jobFilter := filter.NewTopicFilter(topics)

	for {
		choice, err := audit.RunSourcePicker(labels, topics)
		if err != nil {
			return fmt.Errorf("picker: %w", err)
		}
		if choice < 0 {
			return nil
		}
		src := sources[choice]

		jobs, err := audit.RunLoader(src.Label(), src.Fetch)
		if err != nil {
			fmt.Printf("Error fetching postings: %v\n", err)
			continue
		}

		wantQuit, err := audit.RunAuditTUI(src.Label(), jobs, jobFilter, topics)
		if err != nil {
			fmt.Printf("TUI error: %v\n", err)
		}
		if wantQuit {
			return nil
		}
		// else: loop → back to picker
	}
}
