package relay

import (
	"context"
	"fmt"

	sonic "github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	"github.com/riskibarqy/score-predictor/internal/platform/broadcast"
	"github.com/riskibarqy/score-predictor/internal/platform/logging"
)

// RedisRelay fans live events out to every instance subscribed to one Redis channel.
// Each instance delivers its own events locally and ignores their echo.
type RedisRelay struct {
	client     redis.UniversalClient
	channel    string
	local      *broadcast.Broadcaster
	instanceID string
	logger     *logging.Logger
}

type envelope struct {
	Origin  string            `json:"origin"`
	Message broadcast.Message `json:"message"`
}

func NewRedisRelay(
	client redis.UniversalClient,
	channel string,
	local *broadcast.Broadcaster,
	instanceID string,
	logger *logging.Logger,
) *RedisRelay {
	if logger == nil {
		logger = logging.Default()
	}
	return &RedisRelay{
		client:     client,
		channel:    channel,
		local:      local,
		instanceID: instanceID,
		logger:     logger,
	}
}

// Publish delivers msg to local subscribers, then to other instances.
func (r *RedisRelay) Publish(ctx context.Context, msg broadcast.Message) error {
	r.local.Broadcast(msg)

	payload, err := sonic.Marshal(envelope{Origin: r.instanceID, Message: msg})
	if err != nil {
		return fmt.Errorf("encode relay message: %w", err)
	}
	if err := r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish relay message channel=%s: %w", r.channel, err)
	}
	return nil
}

// Run forwards messages from other instances until ctx is done.
func (r *RedisRelay) Run(ctx context.Context) error {
	sub := r.client.Subscribe(ctx, r.channel)
	defer func() {
		_ = sub.Close()
	}()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe relay channel=%s: %w", r.channel, err)
	}
	r.logger.Info("live event relay subscribed", "channel", r.channel, "instance_id", r.instanceID)

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			r.handlePayload(msg.Payload)
		}
	}
}

func (r *RedisRelay) handlePayload(payload string) bool {
	var env envelope
	if err := sonic.UnmarshalString(payload, &env); err != nil {
		r.logger.Warn("drop malformed relay message", "channel", r.channel, "error", err)
		return false
	}
	if env.Origin == r.instanceID || env.Message.Type == "" {
		return false
	}
	r.local.Broadcast(env.Message)
	return true
}
