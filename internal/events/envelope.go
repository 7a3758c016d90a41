package events

import (
	"encoding/json"
	"time"
)

type Envelope struct {
	EventType     string          `json:"event_type"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Payload       json.RawMessage `json:"payload"`
}

func NewEnvelope(event Event, occurredAt time.Time) (Envelope, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		EventType:     event.EventType(),
		AggregateType: event.AggregateType(),
		AggregateID:   event.AggregateID(),
		OccurredAt:    occurredAt,
		Payload:       payload,
	}, nil
}
