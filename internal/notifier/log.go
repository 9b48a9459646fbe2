package notifier

import (
	"context"
	"log/slog"

	"github.com/amishk599/jobfeed/internal/model"
)

// Ensure LogSender implements model.Sender.
var _ model.Sender = (*LogSender)(nil)

// LogSender writes messages to the given logger instead of delivering them.
// It serves dry runs and the log channel.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender returns a sender that logs each message via slog.
func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send logs the message. It never fails.
func (s *LogSender) Send(_ context.Context, identifier, text string) error {
	s.logger.Info("notification", "subscriber", identifier, "text", text)
	return nil
}
