package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Channel is the Redis pub/sub channel every API instance publishes to
const Channel = "clubcorra:events"

// EventType names what changed
type EventType string

const (
	EventTransactionCreated EventType = "transaction.created"
	EventTransactionUpdated EventType = "transaction.updated"
	EventBalanceUpdated     EventType = "balance.updated"
	EventTransactionsStale  EventType = "transactions.stale"
)

// Event is a dashboard refresh hint. Clients refetch; events carry ids, not full records.
type Event struct {
	Type          EventType `json:"type"`
	TransactionID uint      `json:"transaction_id,omitempty"`
	UserID        uint      `json:"user_id,omitempty"`
	Status        string    `json:"status,omitempty"`
	Coins         int64     `json:"coins,omitempty"`
	Count         int64     `json:"count,omitempty"`
	At            time.Time `json:"at"`
}

// Publisher sends events to connected dashboards
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// RedisPublisher publishes events on Channel
type RedisPublisher struct {
	rdb *redis.Client
}

// NewRedisPublisher returns a publisher over rdb
func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb}
}

// Publish marshals e and publishes it
func (p *RedisPublisher) Publish(ctx context.Context, e Event) error {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return p.rdb.Publish(ctx, Channel, b).Err()
}

// NopPublisher drops events
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

// PublishQuietly sends e and only logs failures. Notifications never fail the request that caused them.
func PublishQuietly(ctx context.Context, p Publisher, e Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, e); err != nil {
		logrus.WithFields(logrus.Fields{
			"event":          e.Type,
			"transaction_id": e.TransactionID,
			"error":          err.Error(),
		}).Warn("Failed to publish event")
	}
}
