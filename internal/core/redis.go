// AngelaMos | 2026
// redis.go

package core

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/stackit/internal/config"
)

const (
	redisClientName    = "stackit-api"
	redisPingTimeout   = 5 * time.Second
	subscriptionBuffer = 64
)

// Redis wraps the shared client used for rate limiting and notification
// fan-out.
type Redis struct {
	Client *redis.Client
}

func NewRedis(ctx context.Context, cfg config.RedisConfig) (*Redis, error) {
	opts, err := redisOptions(cfg)
	if err != nil {
		return nil, err
	}

	r := &Redis{Client: redis.NewClient(opts)}
	if err := r.Ping(ctx); err != nil {
		_ = r.Client.Close() //nolint:errcheck // startup failure
		return nil, err
	}

	return r, nil
}

// redisOptions applies pool settings on top of the URL. Zero values keep
// the client defaults.
func redisOptions(cfg config.RedisConfig) (*redis.Options, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if cfg.MinIdleConns > 0 {
		opts.MinIdleConns = cfg.MinIdleConns
	}
	if opts.ClientName == "" {
		opts.ClientName = redisClientName
	}
	opts.PoolTimeout = 30 * time.Second
	opts.ConnMaxIdleTime = 5 * time.Minute

	return opts, nil
}

// Ping satisfies the readiness checker.
func (r *Redis) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()

	if err := r.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}

func (r *Redis) PoolStats() *redis.PoolStats {
	return r.Client.PoolStats()
}

func (r *Redis) Close() error {
	if r.Client == nil {
		return nil
	}
	return r.Client.Close()
}

// PublishJSON encodes v and publishes it on channel. It returns the number
// of subscribers that received the message.
func (r *Redis) PublishJSON(ctx context.Context, channel string, v any) (int64, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return 0, fmt.Errorf("encode %s payload: %w", channel, err)
	}

	n, err := r.Client.Publish(ctx, channel, payload).Result()
	if err != nil {
		return 0, fmt.Errorf("publish %s: %w", channel, err)
	}

	return n, nil
}

// Subscription is a confirmed pubsub subscription with a buffered message
// channel.
type Subscription struct {
	ps *redis.PubSub
	ch <-chan *redis.Message
}

func (s *Subscription) Messages() <-chan *redis.Message {
	return s.ch
}

func (s *Subscription) Close() error {
	return s.ps.Close()
}

// Subscribe waits for the server to confirm the subscription before
// returning, so no message published afterwards is missed.
func (r *Redis) Subscribe(ctx context.Context, channels ...string) (*Subscription, error) {
	ps := r.Client.Subscribe(ctx, channels...)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close() //nolint:errcheck // cleanup on failed subscribe
		return nil, fmt.Errorf("subscribe %v: %w", channels, err)
	}

	return &Subscription{
		ps: ps,
		ch: ps.Channel(redis.WithChannelSize(subscriptionBuffer)),
	}, nil
}
