// Package app delivers in-app exposure pings. The notification row itself is
// the durable inbox entry; this channel only nudges connected clients so
// they refresh. Delivery therefore tolerates absent subscribers.
package app

import (
	"context"
	"fmt"

	platformredis "ember/internal/platform/redis"
)

// channelPrefix is the per-user pub/sub channel the client gateway listens on.
const channelPrefix = "ember:notify:user:"

// RedisNotifier publishes opaque payloads to the recipient's channel.
type RedisNotifier struct {
	client *platformredis.Client
}

func NewRedisNotifier(client *platformredis.Client) *RedisNotifier {
	return &RedisNotifier{client: client}
}

// Send publishes the payload. Zero subscribers is success; the inbox row is
// the durable copy.
func (n *RedisNotifier) Send(ctx context.Context, recipientUserID string, payload []byte) error {
	if err := n.client.Publish(ctx, channelPrefix+recipientUserID, payload).Err(); err != nil {
		return fmt.Errorf("publish app notification: %w", err)
	}
	return nil
}

// NopNotifier is used when Redis is not configured. The inbox still works;
// clients just poll instead of receiving pushes.
type NopNotifier struct{}

func (NopNotifier) Send(context.Context, string, []byte) error { return nil }
