package sender

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"clubcorra/internal/config"
)

// SMSSender posts messages to an HTTP SMS gateway
type SMSSender struct {
	client   *resty.Client
	url      string
	senderID string
}

type smsRequest struct {
	SenderID string `json:"sender_id"`
	To       string `json:"to"`
	Message  string `json:"message"`
}

// NewSMSSender returns a gateway sender authenticated with the configured key.
// Sends are never retried: a timed out POST may already have been delivered,
// and the OTP flow lets the user ask for a new code instead.
func NewSMSSender(cfg config.SMSConfig) *SMSSender {
	client := resty.New().
		SetTimeout(10*time.Second).
		SetHeader("Content-Type", "application/json").
		SetAuthToken(cfg.APIKey)
	return &SMSSender{client: client, url: cfg.APIURL, senderID: cfg.SenderID}
}

func (s *SMSSender) Send(ctx context.Context, msg Message) error {
	// One POST per message
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(smsRequest{SenderID: s.senderID, To: msg.To, Message: msg.Body}).
		Post(s.url)
	if err != nil {
		return fmt.Errorf("sms gateway: %w", err) // Timeout or connection failure
	}
	// Any non-2xx answer is a failed delivery
	if resp.IsError() {
		return fmt.Errorf("sms gateway: status %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}
