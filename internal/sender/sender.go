// Package sender delivers one-time passwords over SMS and email.
package sender

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Message is a single outbound notification
type Message struct {
	To      string // Mobile number or email address
	Subject string // Email only
	Body    string
}

// Sender delivers a message on one channel
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender writes messages to the log instead of delivering them.
// Used in development when no gateway is configured.
type LogSender struct {
	Channel string
}

func (s LogSender) Send(_ context.Context, msg Message) error {
	logrus.WithFields(logrus.Fields{
		"channel": s.Channel,
		"to":      msg.To,
		"subject": msg.Subject,
		"body":    msg.Body,
	}).Info("Outbound message (not delivered)")
	return nil
}
