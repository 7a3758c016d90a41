// Package analytics forwards lifecycle envelopes to Kafka so queue and call
// history can be analysed outside the live system.
package analytics

import (
	"context"
	"encoding/json"
	"fmt"

	"jobfair-live/internal/events"
	"jobfair-live/pkg/logger"

	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

// KafkaSink publishes every envelope to one topic, keyed by aggregate id so
// a queue entry's or session's events stay ordered within a partition.
type KafkaSink struct {
	producer sarama.SyncProducer
	topic    string
	logger   *logger.Logger
}

func NewProducerConfig() *sarama.Config {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForLocal
	config.Producer.Retry.Max = 3
	config.Producer.Return.Successes = true
	config.Producer.Return.Errors = true
	config.Producer.Compression = sarama.CompressionSnappy
	return config
}

// NewKafkaSink dials the brokers and returns a ready sink.
func NewKafkaSink(brokers []string, topic string, l *logger.Logger) (*KafkaSink, error) {
	producer, err := sarama.NewSyncProducer(brokers, NewProducerConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	l.Logger.Info("kafka analytics sink initialized", zap.Strings("brokers", brokers), zap.String("topic", topic))
	return NewKafkaSinkWithProducer(producer, topic, l), nil
}

func NewKafkaSinkWithProducer(producer sarama.SyncProducer, topic string, l *logger.Logger) *KafkaSink {
	return &KafkaSink{producer: producer, topic: topic, logger: l}
}

func (s *KafkaSink) Record(ctx context.Context, env events.Envelope) error {
	value, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: s.topic,
		Key:   sarama.StringEncoder(env.AggregateID),
		Value: sarama.ByteEncoder(value),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(env.EventType)},
		},
	}

	partition, offset, err := s.producer.SendMessage(message)
	if err != nil {
		s.logger.WithContext(ctx).Error("failed to send kafka message",
			zap.String("topic", s.topic),
			zap.String("event_type", env.EventType),
			zap.Error(err),
		)
		return fmt.Errorf("failed to send message: %w", err)
	}

	s.logger.WithContext(ctx).Debug("kafka message sent",
		zap.String("event_type", env.EventType),
		zap.Int32("partition", partition),
		zap.Int64("offset", offset),
	)
	return nil
}

func (s *KafkaSink) Close() error {
	return s.producer.Close()
}
