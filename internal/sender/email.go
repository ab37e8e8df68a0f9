package sender

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"clubcorra/internal/config"
)

// EmailSender delivers mail through SendGrid
type EmailSender struct {
	client *sendgrid.Client
	from   *mail.Email
}

// NewEmailSender returns a SendGrid sender. host overrides the API host when not empty.
func NewEmailSender(cfg config.EmailConfig, host string) *EmailSender {
	client := sendgrid.NewSendClient(cfg.SendGridAPIKey)
	if host != "" {
		client.Request.BaseURL = host + "/v3/mail/send"
	}
	return &EmailSender{client: client, from: mail.NewEmail(cfg.FromName, cfg.From)}
}

func (s *EmailSender) Send(ctx context.Context, msg Message) error {
	to := mail.NewEmail("", msg.To)
	m := mail.NewSingleEmail(s.from, msg.Subject, to, msg.Body, "<p>"+msg.Body+"</p>")
	resp, err := s.client.SendWithContext(ctx, m)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}
