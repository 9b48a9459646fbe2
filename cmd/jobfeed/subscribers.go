package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobfeed/internal/model"
	"github.com/amishk599/jobfeed/internal/normalize"
	"github.com/amishk599/jobfeed/internal/notifier"
)

var (
	subChannel string
	subID      string
	subTopics  string
)

var subscribersCmd = &cobra.Command{
	Use:   "subscribers",
	Short: "Manage notification subscribers",
}

var subscribersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List subscribers",
	RunE:  runSubscribersList,
}

var subscribersAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a subscriber or replace its topics",
	Long:  "Adds a subscriber. Adding the same channel and id again replaces its topics. Empty topics match every posting.",
	RunE:  runSubscribersAdd,
}

func init() {
	subscribersAddCmd.Flags().StringVar(&subChannel, "channel", "", "telegram, discord, slack or log")
	subscribersAddCmd.Flags().StringVar(&subID, "id", "", "chat id or webhook URL")
	subscribersAddCmd.Flags().StringVar(&subTopics, "topics", "", "comma-separated topics")
	_ = subscribersAddCmd.MarkFlagRequired("channel")
	_ = subscribersAddCmd.MarkFlagRequired("id")

	rootCmd.AddCommand(subscribersCmd)
	subscribersCmd.AddCommand(subscribersListCmd, subscribersAddCmd)
}

func runSubscribersList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	ctx := context.Background()
	st, err := openStore(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer st.Close()

	subs, err := st.ListSubscribers(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("%-10s %-50s %s\n", "Channel", "Identifier", "Topics")
	fmt.Println(strings.Repeat("─", 80))
	for _, s := range subs {
		topics := s.Topics
		if strings.TrimSpace(topics) == "" {
			topics = "(all)"
		}
		fmt.Printf("%-10s %-50s %s\n", s.Type, truncate(s.Identifier, 50), topics)
	}
	fmt.Printf("\nTotal: %d subscribers\n", len(subs))
	return nil
}

func runSubscribersAdd(cmd *cobra.Command, args []string) error {
	sub, err := parseSubscriber(subChannel, subID, subTopics)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	ctx := context.Background()
	st, err := openStore(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.AddSubscriber(ctx, sub); err != nil {
		return err
	}
	fmt.Printf("subscribed %s %s\n", sub.Type, truncate(sub.Identifier, 50))
	return nil
}

// parseSubscriber validates the channel and identifier and normalizes topics.
func parseSubscriber(channel, id, topics string) (model.Subscriber, error) {
	ch, err := parseChannel(channel)
	if err != nil {
		return model.Subscriber{}, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return model.Subscriber{}, fmt.Errorf("subscriber id is required")
	}
	switch ch {
	case model.ChannelDiscord:
		if !strings.HasPrefix(id, notifier.DiscordWebhookPrefix) {
			return model.Subscriber{}, fmt.Errorf("discord id must start with %s: %w", notifier.DiscordWebhookPrefix, model.ErrInvalidWebhook)
		}
	case model.ChannelSlack:
		if !strings.HasPrefix(id, notifier.SlackWebhookPrefix) {
			return model.Subscriber{}, fmt.Errorf("slack id must start with %s: %w", notifier.SlackWebhookPrefix, model.ErrInvalidWebhook)
		}
	}
	return model.Subscriber{
		Type:       ch,
		Identifier: id,
		Topics:     strings.Join(normalize.NormalizeTags(strings.Split(topics, ",")), ","),
	}, nil
}

func parseChannel(s string) (model.Channel, error) {
	switch ch := model.Channel(strings.ToLower(strings.TrimSpace(s))); ch {
	case model.ChannelTelegram, model.ChannelDiscord, model.ChannelSlack, model.ChannelLog:
		return ch, nil
	default:
		return "", fmt.Errorf("channel %q: %w", s, model.ErrUnknownChannel)
	}
}
