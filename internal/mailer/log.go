package mailer

import (
	"context"

	"github.com/sirupsen/logrus"
)

// LogSender writes messages to the log instead of sending them. It is used
// when no SMTP server is configured, so a message without a recipient (no
// OWNER_EMAIL in development) is logged like any other.
type LogSender struct {
	log logrus.FieldLogger
}

func NewLogSender(log logrus.FieldLogger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(_ context.Context, msgs ...Message) error {
	for _, m := range msgs {
		entry := s.log.WithFields(logrus.Fields{
			"to":       m.To,
			"reply_to": m.ReplyTo,
			"subject":  m.Subject,
		})
		if m.To == "" {
			entry.Warn("email has no recipient, smtp disabled")
		} else {
			entry.Info("email not sent, smtp disabled")
		}
		s.log.Debug(m.Text)
	}
	return nil
}
