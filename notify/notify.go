// Package notify abstracts outbound notifications triggered by agent
// tools, such as booking confirmations.
package notify

import (
	"context"
	"log/slog"
)

// Sender delivers a notification message.
type Sender interface {
	Send(ctx context.Context, subject, body string) error
}

// LogSender writes notifications to the log instead of delivering
// them. Used when no mail or webhook transport is configured.
type LogSender struct {
	logger *slog.Logger
}

var _ Sender = (*LogSender)(nil)

// NewLogSender creates a log-backed sender.
func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger}
}

// Send logs the notification at info level.
func (s *LogSender) Send(ctx context.Context, subject, body string) error {
	s.logger.Info("notification", "subject", subject, "body", body)
	return nil
}
