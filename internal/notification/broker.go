// AngelaMos | 2026
// broker.go

package notification

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/stackit/internal/core"
)

const channelPrefix = "notifications:"

func Channel(recipientID string) string {
	return channelPrefix + recipientID
}

// Stream is a live feed of one recipient's notifications, each message
// payload a JSON encoded Response.
type Stream interface {
	Messages() <-chan *redis.Message
	Close() error
}

type Subscriber interface {
	Subscribe(ctx context.Context, recipientID string) (Stream, error)
}

// Broker relays notifications over Redis pubsub.
type Broker struct {
	redis *core.Redis
}

func NewBroker(r *core.Redis) *Broker {
	return &Broker{redis: r}
}

func (b *Broker) Publish(ctx context.Context, n *Notification) error {
	_, err := b.redis.PublishJSON(ctx, Channel(n.RecipientID), ToResponse(n))
	return err
}

func (b *Broker) Subscribe(ctx context.Context, recipientID string) (Stream, error) {
	sub, err := b.redis.Subscribe(ctx, Channel(recipientID))
	if err != nil {
		return nil, err
	}
	return sub, nil
}
