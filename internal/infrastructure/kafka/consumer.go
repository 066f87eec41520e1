package kafka

import (
	"context"
	"fmt"

	"github.com/andreyxaxa/File-Moderator/pkg/kafka/consumer"
	"github.com/segmentio/kafka-go"
)

// NotificationConsumer reads bucket notifications delivered to a Kafka topic.
type NotificationConsumer struct {
	*consumer.Consumer
}

func NewNotificationConsumer(consumer *consumer.Consumer) *NotificationConsumer {
	return &NotificationConsumer{consumer}
}

func (nc *NotificationConsumer) ReadEvent(ctx context.Context) (kafka.Message, error) {
	msg, err := nc.Reader.FetchMessage(ctx)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("NotificationConsumer - ReadEvent - nc.Reader.FetchMessage: %w", err)
	}

	return msg, nil
}

func (nc *NotificationConsumer) CommitEvent(ctx context.Context, event kafka.Message) error {
	err := nc.Reader.CommitMessages(ctx, event)
	if err != nil {
		return fmt.Errorf("NotificationConsumer - CommitEvent - nc.Reader.CommitMessages: %w", err)
	}

	return nil
}

func (nc *NotificationConsumer) Close() error {
	err := nc.Consumer.Close()
	if err != nil {
		return fmt.Errorf("NotificationConsumer - Close: %w", err)
	}

	return nil
}
