// Package notifier delivers status change messages.
package notifier

import (
	"context"

	"github.com/sirupsen/logrus"
)

// LogNotifier writes messages to the log instead of delivering them. It is
// used when no Telegram bot is configured.
type LogNotifier struct {
	logger *logrus.Logger
}

func NewLogNotifier(logger *logrus.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Send logs the message and never fails.
func (n *LogNotifier) Send(ctx context.Context, message string) error {
	n.logger.WithField("message", message).Warn("Telegram not configured, notification only logged")
	return nil
}
