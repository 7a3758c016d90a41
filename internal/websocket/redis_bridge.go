package websocket

import (
	"context"
	"errors"

	"jobfair-live/internal/events"
	"jobfair-live/pkg/logger"

	"go.uber.org/zap"
)

// RedisBridge forwards pub/sub traffic from every instance into the local hub.
type RedisBridge struct {
	subscriber events.Subscriber
	hub        *Hub
	log        *logger.Logger
}

// NewRedisBridge creates a bridge from redis pub/sub into the hub
func NewRedisBridge(subscriber events.Subscriber, hub *Hub, l *logger.Logger) *RedisBridge {
	return &RedisBridge{subscriber: subscriber, hub: hub, log: l.Named("ws-bridge")}
}

// Run blocks until ctx is cancelled or the subscription fails.
func (b *RedisBridge) Run(ctx context.Context) error {
	b.log.Logger.Info("bridging pub/sub to websocket hub", zap.Strings("patterns", events.ChannelPatterns))
	err := b.subscriber.Subscribe(ctx, events.ChannelPatterns, b.hub.Broadcast)
	if err != nil && errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
