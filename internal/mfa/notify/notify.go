// Package notify delivers one-time codes to users through an external
// gateway. The service never talks to an SMS or mail vendor directly.
package notify

import (
	"context"
	"errors"
	"log/slog"

	"github.com/nexosupport/nexomfa/pkg/slogx"
)

const (
	ChannelSMS   = "sms"
	ChannelEmail = "email"
)

var ErrGateway = errors.New("notify: gateway rejected message")

// Message is a single outbound notification.
type Message struct {
	Channel string `json:"channel"`
	To      string `json:"to"`
	Subject string `json:"subject,omitempty"`
	Body    string `json:"body"`
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender writes messages to the log instead of delivering them. Only
// meant for local development: the code ends up in the log output.
type LogSender struct {
	Logger *slog.Logger
}

func (s LogSender) Send(ctx context.Context, msg Message) error {
	logger := s.Logger
	if logger == nil {
		logger = slogx.FromContext(ctx)
	}
	logger.WarnContext(ctx, "notification not delivered (log gateway)",
		"channel", msg.Channel,
		"to", msg.To,
		"subject", msg.Subject,
		"body", msg.Body,
	)
	return nil
}
