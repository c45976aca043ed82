package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"PowerOyoApi/pkg/logger"

	"github.com/go-redis/redis/v8"
)

const (
	EventInvestmentCreated = "investment_created"
	EventCommissionEarned  = "commission_earned"
	EventWithdrawalUpdate  = "withdrawal_update"
	EventFundRequestUpdate = "fund_request_update"
	EventKYCUpdate         = "kyc_update"
)

// Event is pushed to the channel of the affected account and relayed to
// connected browser sessions. Delivery is fire-and-forget.
type Event struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload"`
	CreatedAt time.Time   `json:"created_at"`
}

// Publisher is what the services depend on; failures must never surface
// to the caller.
type Publisher interface {
	Publish(ctx context.Context, accountID int64, eventType string, payload interface{})
}

// RedisPublisher fans events out through redis pub/sub
type RedisPublisher struct {
	client *redis.Client
}

func NewRedisPublisher(redisAddr, redisPassword string) (*RedisPublisher, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       0,
	})

	if _, err := client.Ping(context.Background()).Result(); err != nil {
		return nil, logger.WrapError(err, "redis ping")
	}

	logger.Info("Connected to Redis")

	return &RedisPublisher{client: client}, nil
}

func (r *RedisPublisher) Client() *redis.Client {
	return r.client
}

func (r *RedisPublisher) Publish(ctx context.Context, accountID int64, eventType string, payload interface{}) {
	data, err := json.Marshal(Event{
		Type:      eventType,
		Payload:   payload,
		CreatedAt: time.Now(),
	})
	if err != nil {
		logger.Error("notify: marshal event %s for account %d: %v", eventType, accountID, err)
		return
	}

	if err := r.client.Publish(ctx, ChannelFor(accountID), data).Err(); err != nil {
		logger.Error("notify: publish event %s for account %d: %v", eventType, accountID, err)
	}
}

// Subscribe opens a pub/sub subscription for one account's channel. The
// caller owns closing it.
func (r *RedisPublisher) Subscribe(ctx context.Context, accountID int64) *redis.PubSub {
	return r.client.Subscribe(ctx, ChannelFor(accountID))
}

func ChannelFor(accountID int64) string {
	return fmt.Sprintf("notifications:%d", accountID)
}

// Nop drops every event; used where no redis is available.
type Nop struct{}

func (Nop) Publish(ctx context.Context, accountID int64, eventType string, payload interface{}) {}
