package docstore

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultChannel is the Redis pub/sub channel used for change notifications.
const DefaultChannel = "showreel:changes"

// RedisNotifier fans change notifications out to every instance subscribed
// to the same Redis channel. Messages carry the publishing instance id so an
// instance ignores its own writes, which the hub has already delivered.
type RedisNotifier struct {
	client   *redis.Client
	channel  string
	instance string
	logger   *slog.Logger
}

// NewRedisNotifier connects to redisURL and verifies the connection.
func NewRedisNotifier(redisURL, channel string, logger *slog.Logger) (*RedisNotifier, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return NewRedisNotifierWithClient(client, channel, logger), nil
}

// NewRedisNotifierWithClient creates a notifier from an existing client.
func NewRedisNotifierWithClient(client *redis.Client, channel string, logger *slog.Logger) *RedisNotifier {
	if channel == "" {
		channel = DefaultChannel
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisNotifier{
		client:   client,
		channel:  channel,
		instance: uuid.NewString(),
		logger:   logger,
	}
}

// Publish announces that collection changed.
func (n *RedisNotifier) Publish(ctx context.Context, collection string) error {
	if err := n.client.Publish(ctx, n.channel, n.instance+"|"+collection).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", collection, err)
	}
	return nil
}

// Listen subscribes to the channel and calls onChange for every collection
// changed by another instance. The subscription is confirmed before Listen
// returns; messages are handled on a background goroutine until ctx is done
// or stop is called. Reconnection after network loss is handled by the
// go-redis client.
func (n *RedisNotifier) Listen(ctx context.Context, onChange func(collection string)) (stop func(), err error) {
	pubsub := n.client.Subscribe(ctx, n.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", n.channel, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				instance, collection, found := strings.Cut(msg.Payload, "|")
				if !found || collection == "" {
					n.logger.Warn("malformed change notification", "payload", msg.Payload)
					continue
				}
				if instance == n.instance {
					continue
				}
				onChange(collection)
			}
		}
	}()

	return func() {
		cancel()
		pubsub.Close()
		<-done
	}, nil
}

// Close closes the Redis connection.
func (n *RedisNotifier) Close() error {
	return n.client.Close()
}
