package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	DefaultMinBackoff = 500 * time.Millisecond
	DefaultMaxBackoff = 30 * time.Second
)

// Client is a reconnecting WebSocket subscriber for the events feed.
// It keeps one connection open and redials with exponential backoff when it drops.
type Client struct {
	URL        string
	Header     http.Header
	Handler    func(Event)
	Dialer     *websocket.Dialer
	MinBackoff time.Duration
	MaxBackoff time.Duration
}

// NewClient returns a client with default backoff bounds
func NewClient(url string, header http.Header, handler func(Event)) *Client {
	return &Client{
		URL:        url,
		Header:     header,
		Handler:    handler,
		Dialer:     websocket.DefaultDialer,
		MinBackoff: DefaultMinBackoff,
		MaxBackoff: DefaultMaxBackoff,
	}
}

// nextBackoff doubles cur, bounded by max
func nextBackoff(cur, max time.Duration) time.Duration {
	next := cur * 2
	if next > max {
		return max
	}
	return next
}

// Run connects and delivers events until ctx is cancelled
func (c *Client) Run(ctx context.Context) error {
	backoff := c.MinBackoff
	for {
		connected, err := c.session(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if connected {
			backoff = c.MinBackoff // Healthy session, start over
		}
		logrus.WithFields(logrus.Fields{
			"url":   c.URL,
			"retry": backoff.String(),
			"error": errString(err),
		}).Warn("Event stream disconnected")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff = nextBackoff(backoff, c.MaxBackoff)
	}
}

// session runs one connection and reports whether it was established
func (c *Client) session(ctx context.Context) (bool, error) {
	dialer := c.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	conn, _, err := dialer.DialContext(ctx, c.URL, c.Header)
	if err != nil {
		return false, err
	}
	logrus.WithField("url", c.URL).Info("Event stream connected")

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
		case <-done:
		}
		_ = conn.Close()
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return true, err
		}
		var e Event
		if err := json.Unmarshal(msg, &e); err != nil {
			logrus.WithField("error", err.Error()).Warn("Skipping malformed event")
			continue
		}
		if c.Handler != nil {
			c.Handler(e)
		}
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
