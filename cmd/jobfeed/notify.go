package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobfeed/internal/model"
	"github.com/amishk599/jobfeed/internal/normalize"
	"github.com/amishk599/jobfeed/internal/notifier"
)

var (
	notifyChannel string
	notifyID      string
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Notification subcommands",
}

var notifyTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Send a test notification",
	Long:  "Sends a sample posting through one channel to one identifier.",
	RunE:  runNotifyTest,
}

var notifySinceCmd = &cobra.Command{
	Use:   "since <duration>",
	Short: "Re-notify subscribers about recent postings",
	Long:  "Notifies subscribers about every posting ingested within the given duration, e.g. 24h.",
	Args:  cobra.ExactArgs(1),
	RunE:  runNotifySince,
}

func init() {
	notifyTestCmd.Flags().StringVar(&notifyChannel, "channel", "log", "telegram, discord, slack or log")
	notifyTestCmd.Flags().StringVar(&notifyID, "id", "test", "chat id or webhook URL")

	rootCmd.AddCommand(notifyCmd)
	notifyCmd.AddCommand(notifyTestCmd, notifySinceCmd)
}

func runNotifyTest(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug, logJSON)

	cfg, err := loadConfig()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return err
	}

	ch, err := parseChannel(notifyChannel)
	if err != nil {
		return err
	}
	sender, ok := setupSenders(cfg, newHTTPClient(cfg), logger)[ch]
	if !ok {
		return fmt.Errorf("channel %s is not enabled in config: %w", ch, model.ErrUnknownChannel)
	}

	if err := sender.Send(context.Background(), notifyID, notifier.FormatMessage(sampleJob())); err != nil {
		logger.Error("test notification failed", "channel", ch, "error", err)
		return err
	}
	logger.Info("test notification sent successfully", "channel", ch)
	return nil
}

func runNotifySince(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug, logJSON)

	window, err := time.ParseDuration(args[0])
	if err != nil || window <= 0 {
		return fmt.Errorf("invalid duration %q", args[0])
	}

	cfg, err := loadConfig()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return err
	}
	ctx := context.Background()
	st, err := openStore(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer st.Close()

	ids, err := st.FindCreatedSince(ctx, time.Now().Add(-window))
	if err != nil {
		return err
	}
	sum, err := newNotifier(cfg, st, newHTTPClient(cfg), logger).Notify(ctx, ids)
	if err != nil {
		return err
	}
	fmt.Printf("%d postings, %d subscribers: %d sent, %d failed\n", len(ids), sum.Subscribers, sum.Sent, sum.Failed)
	return nil
}

func sampleJob() model.Job {
	now := time.Now().UTC()
	lo, hi := 120000.0, 150000.0
	title, company, url := "Senior Backend Engineer (test)", "jobfeed", "https://github.com/amishk599/jobfeed"
	return model.Job{
		ID:             normalize.StableID(title, company, url),
		Title:          title,
		Company:        company,
		Location:       "Remote",
		Remote:         true,
		Tags:           []string{"go", "test"},
		URL:            url,
		Source:         "test",
		PostedAt:       &now,
		CreatedAt:      now,
		SalaryMin:      &lo,
		SalaryMax:      &hi,
		Currency:       "USD",
		SeniorityLevel: normalize.LevelSenior,
	}
}
