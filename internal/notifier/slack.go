package notifier

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/amishk599/jobfeed/internal/model"
)

// SlackWebhookPrefix is the only URL prefix Slack messages are posted to.
const SlackWebhookPrefix = "https://hooks.slack.com/"

// Ensure SlackSender implements model.Sender.
var _ model.Sender = (*SlackSender)(nil)

// SlackSender posts messages to Slack Incoming Webhooks. The identifier
// passed to Send is the webhook URL.
type SlackSender struct {
	client *http.Client
}

// NewSlackSender returns a sender that posts each message to Slack via webhook.
func NewSlackSender(client *http.Client) *SlackSender {
	return &SlackSender{client: client}
}

// Send posts text as a Block Kit message. The first line becomes the header.
func (s *SlackSender) Send(ctx context.Context, webhookURL, text string) error {
	if !strings.HasPrefix(webhookURL, SlackWebhookPrefix) {
		return fmt.Errorf("slack send: %w", model.ErrInvalidWebhook)
	}
	return postJSON(ctx, s.client, model.ChannelSlack, webhookURL, buildPayload(text))
}

// Block Kit payload types.

type slackPayload struct {
	Text   string       `json:"text"`
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type string     `json:"type"`
	Text *slackText `json:"text,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// slackHeaderMax is Block Kit's limit on header text.
const slackHeaderMax = 150

func buildPayload(text string) slackPayload {
	header, rest, _ := strings.Cut(text, "\n")
	if r := []rune(header); len(r) > slackHeaderMax {
		header = string(r[:slackHeaderMax-1]) + "…"
	}

	blocks := []slackBlock{
		{Type: "header", Text: &slackText{Type: "plain_text", Text: header}},
	}
	if rest = strings.TrimSpace(rest); rest != "" {
		blocks = append(blocks, slackBlock{
			Type: "section",
			Text: &slackText{Type: "mrkdwn", Text: rest},
		})
	}
	blocks = append(blocks, slackBlock{Type: "divider"})

	// text is the notification fallback shown where blocks are not rendered.
	return slackPayload{Text: text, Blocks: blocks}
}
