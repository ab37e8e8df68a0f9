// Command eventtail follows the admin events feed and logs every event.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"clubcorra/internal/config"
	"clubcorra/internal/notify"
)

func main() {
	cfg := config.LoadConfig()
	logrus.SetFormatter(&logrus.JSONFormatter{})

	token := os.Getenv("EVENTTAIL_TOKEN")
	if token == "" {
		logrus.Fatal("EVENTTAIL_TOKEN must hold an admin access token")
	}
	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := notify.NewClient(cfg.EventsWebSocketURL, header, func(e notify.Event) {
		logrus.WithFields(logrus.Fields{
			"type":           e.Type,
			"user_id":        e.UserID,
			"transaction_id": e.TransactionID,
			"status":         e.Status,
		}).Info("Event")
	})
	if err := client.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logrus.Fatalf("event stream: %v", err)
	}
}
