package notifier

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/amishk599/jobfeed/internal/model"
)

// DefaultTelegramBaseURL is the Bot API root.
const DefaultTelegramBaseURL = "https://api.telegram.org"

var _ model.Sender = (*TelegramSender)(nil)

// TelegramSender delivers messages through the Telegram Bot API. The
// identifier passed to Send is the chat id.
type TelegramSender struct {
	baseURL  string
	botToken string
	client   *http.Client
}

// NewTelegramSender returns a sender for the bot with botToken. An empty
// baseURL selects DefaultTelegramBaseURL.
func NewTelegramSender(baseURL, botToken string, client *http.Client) *TelegramSender {
	if baseURL == "" {
		baseURL = DefaultTelegramBaseURL
	}
	return &TelegramSender{
		baseURL:  strings.TrimRight(baseURL, "/"),
		botToken: botToken,
		client:   client,
	}
}

type telegramMessage struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

// Send posts text as a plain message with link previews disabled.
func (s *TelegramSender) Send(ctx context.Context, chatID, text string) error {
	if chatID == "" {
		return fmt.Errorf("telegram send: empty chat id")
	}
	url := fmt.Sprintf("%s/bot%s/sendMessage", s.baseURL, s.botToken)
	return postJSON(ctx, s.client, model.ChannelTelegram, url, telegramMessage{
		ChatID:                chatID,
		Text:                  text,
		DisableWebPagePreview: true,
	})
}
