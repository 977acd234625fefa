package notification

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/go-redis/redis/v8"
)

type envelope struct {
	UserID  int64           `json:"user_id"`
	Payload json.RawMessage `json:"payload"`
}

// RedisPusher fans frames out over a pub/sub channel so every instance can reach its own sockets.
type RedisPusher struct {
	client  *redis.Client
	channel string
	local   Pusher
	logger  *slog.Logger
}

func NewRedisPusher(client *redis.Client, channel string, local Pusher, logger *slog.Logger) *RedisPusher {
	return &RedisPusher{client: client, channel: channel, local: local, logger: logger}
}

func (p *RedisPusher) Push(ctx context.Context, userID int64, payload []byte) error {
	msg, err := json.Marshal(envelope{UserID: userID, Payload: payload})
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, p.channel, msg).Err()
}

// Run relays channel messages to the local hub until ctx is done.
func (p *RedisPusher) Run(ctx context.Context) error {
	sub := p.client.Subscribe(ctx, p.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return err
	}
	p.logger.Info("notification fan-out subscribed", "channel", p.channel)

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			p.relay(ctx, msg.Payload)
		}
	}
}

func (p *RedisPusher) relay(ctx context.Context, raw string) {
	var env envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		p.logger.Warn("malformed fan-out message", "error", err)
		return
	}
	if err := p.local.Push(ctx, env.UserID, env.Payload); err != nil {
		p.logger.Warn("local push failed", "user_id", env.UserID, "error", err)
	}
}
