package notifier

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/amishk599/jobfeed/internal/model"
)

// DiscordWebhookPrefix is the only URL prefix Discord messages are posted to.
const DiscordWebhookPrefix = "https://discord.com/api/webhooks/"

// discordMaxContent is Discord's limit on message content length.
const discordMaxContent = 2000

var _ model.Sender = (*DiscordSender)(nil)

// DiscordSender posts messages to Discord incoming webhooks. The identifier
// passed to Send is the webhook URL.
type DiscordSender struct {
	client *http.Client
}

func NewDiscordSender(client *http.Client) *DiscordSender {
	return &DiscordSender{client: client}
}

type discordMessage struct {
	Content string `json:"content"`
}

// Send posts text as the webhook message content. URLs outside
// DiscordWebhookPrefix are rejected with model.ErrInvalidWebhook before any
// request is made.
func (s *DiscordSender) Send(ctx context.Context, webhookURL, text string) error {
	if !strings.HasPrefix(webhookURL, DiscordWebhookPrefix) {
		return fmt.Errorf("discord send: %w", model.ErrInvalidWebhook)
	}
	if r := []rune(text); len(r) > discordMaxContent {
		text = string(r[:discordMaxContent-1]) + "…"
	}
	return postJSON(ctx, s.client, model.ChannelDiscord, webhookURL, discordMessage{Content: text})
}
