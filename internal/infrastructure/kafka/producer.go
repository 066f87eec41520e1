package kafka

import (
	"context"
	"fmt"

	"github.com/andreyxaxa/File-Moderator/internal/entity"
	"github.com/andreyxaxa/File-Moderator/pkg/kafka/producer"
	"github.com/segmentio/kafka-go"
)

const eventTypeHeader = "event_type"

// ResultProducer publishes moderation results taken from the outbox.
type ResultProducer struct {
	*producer.Producer
	topic string
}

func NewResultProducer(producer *producer.Producer, topic string) *ResultProducer {
	return &ResultProducer{producer, topic}
}

func (rp *ResultProducer) SendEvents(ctx context.Context, events []*entity.OutboxEvent) error {
	if len(events) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(events))
	for _, event := range events {
		msgs = append(msgs, kafka.Message{
			Topic: rp.topic,
			Key:   []byte(event.AggregateID.String()),
			Value: event.Payload,
			Headers: []kafka.Header{
				{Key: "event_id", Value: []byte(event.ID.String())},
				{Key: eventTypeHeader, Value: []byte("moderation.completed")},
			},
		})
	}

	err := rp.Writer.WriteMessages(ctx, msgs...)
	if err != nil {
		return fmt.Errorf("ResultProducer - SendEvents - rp.Writer.WriteMessages: %w", err)
	}

	return nil
}

func (rp *ResultProducer) Close() error {
	err := rp.Producer.Close()
	if err != nil {
		return fmt.Errorf("ResultProducer - Close: %w", err)
	}

	return nil
}
