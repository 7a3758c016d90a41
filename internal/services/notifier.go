package services

import (
	"context"
	"encoding/json"
	"time"

	"jobfair-live/internal/events"
	"jobfair-live/internal/metrics"
	"jobfair-live/pkg/logger"

	"go.uber.org/zap"
)

// Publisher delivers a payload to a pub/sub channel.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// EventSink receives every envelope after it has been fanned out.
type EventSink interface {
	Record(ctx context.Context, env events.Envelope) error
}

// Notifier fans events out to the channels of everyone who must see them.
// Delivery is at-least-once per channel: a publish is retried with a short
// backoff and only logged once every attempt has failed.
type Notifier struct {
	publisher Publisher
	resolver  events.ChannelResolver
	sink      EventSink
	attempts  int
	backoff   time.Duration
	clock     func() time.Time
	log       *logger.Logger
}

func NewNotifier(publisher Publisher, resolver events.ChannelResolver, retries int, l *logger.Logger) *Notifier {
	if resolver == nil {
		resolver = events.NewAudienceResolver()
	}
	if retries < 0 {
		retries = 0
	}
	if l == nil {
		l = logger.GetGlobalLogger()
	}
	return &Notifier{
		publisher: publisher,
		resolver:  resolver,
		attempts:  retries + 1,
		backoff:   50 * time.Millisecond,
		clock:     func() time.Time { return time.Now().UTC() },
		log:       l.Named("notifier"),
	}
}

// WithSink forwards every envelope to sink as well.
func (n *Notifier) WithSink(sink EventSink) *Notifier {
	n.sink = sink
	return n
}

// Notify never fails the caller: state has already changed by the time an
// event is emitted.
func (n *Notifier) Notify(ctx context.Context, event events.Event) {
	env, err := events.NewEnvelope(event, n.clock())
	if err != nil {
		n.log.WithContext(ctx).Error("notifier.Notify: encode envelope",
			zap.String("event_type", event.EventType()), zap.Error(err))
		return
	}
	payload, err := json.Marshal(env)
	if err != nil {
		n.log.WithContext(ctx).Error("notifier.Notify: encode payload",
			zap.String("event_type", event.EventType()), zap.Error(err))
		return
	}

	for _, channel := range n.resolver.ResolveChannels(event) {
		if err := n.publish(ctx, channel, payload); err != nil {
			metrics.FanoutPublishes.WithLabelValues("failed").Inc()
			n.log.WithContext(ctx).Error("notifier.Notify: publish failed",
				zap.String("channel", channel),
				zap.String("event_type", env.EventType),
				zap.String("aggregate_id", env.AggregateID),
				zap.Error(err))
			continue
		}
		metrics.FanoutPublishes.WithLabelValues("delivered").Inc()
	}

	if n.sink != nil {
		if err := n.sink.Record(ctx, env); err != nil {
			n.log.WithContext(ctx).Warn("notifier.Notify: analytics sink",
				zap.String("event_type", env.EventType), zap.Error(err))
		}
	}
}

func (n *Notifier) publish(ctx context.Context, channel string, payload []byte) error {
	var err error
	wait := n.backoff
	for attempt := 1; attempt <= n.attempts; attempt++ {
		if err = n.publisher.Publish(ctx, channel, payload); err == nil {
			return nil
		}
		if attempt == n.attempts {
			break
		}
		metrics.FanoutPublishes.WithLabelValues("retried").Inc()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		wait *= 2
	}
	return err
}
