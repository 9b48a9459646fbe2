package main

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
)

var ingestDryRun bool

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Run one ingestion cycle and exit",
	Long:  "Fetches every enabled source once, stores new postings and notifies subscribers. With --dry-run nothing is persisted or sent and the new postings are printed.",
	RunE:  runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestDryRun, "dry-run", false, "use an in-memory store and print postings instead of notifying")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug, logJSON)

	cfg, err := loadConfig()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if ingestDryRun {
		logger.Info("dry-run mode enabled, nothing will be persisted or sent")
	}
	st, err := openStore(ctx, cfg, ingestDryRun)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		return err
	}
	defer st.Close()

	pipeline, err := buildPipeline(cfg, st, logger)
	if err != nil {
		logger.Error("failed to build pipeline", "error", err)
		return err
	}

	res, err := pipeline.Run(ctx)
	if err != nil {
		logger.Error("ingestion failed", "run_id", res.RunID, "error", err)
		return err
	}

	fmt.Printf("run %s: %d new postings from %d sources\n", res.RunID, res.Inserted, len(res.Sources))
	if !ingestDryRun || res.Inserted == 0 {
		return nil
	}

	jobs, err := st.FindByIDs(ctx, res.NewIDs)
	if err != nil {
		return err
	}
	fmt.Printf("\n%-40s %-22s %-10s %s\n", "Title", "Company", "Level", "Source")
	fmt.Println(strings.Repeat("─", 90))
	for _, j := range jobs {
		fmt.Printf("%-40s %-22s %-10s %s\n", truncate(j.Title, 40), truncate(j.Company, 22), j.SeniorityLevel, j.Source)
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
