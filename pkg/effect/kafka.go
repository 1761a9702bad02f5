package effect

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Kafka publishes effect batches to a topic keyed by batch ID.
type Kafka struct {
	writer messageWriter
}

var _ Dispatcher = (*Kafka)(nil)

func NewKafka(brokers []string, topic string) *Kafka {
	return &Kafka{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
		},
	}
}

func (k *Kafka) Dispatch(ctx context.Context, batch *Batch) error {
	data, err := json.Marshal(batch)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal batch %q", batch.ID)
	}

	if err := k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(batch.ID),
		Value: data,
	}); err != nil {
		return errors.Wrap(err, "failed to publish effects")
	}

	return nil
}

func (k *Kafka) Close() error {
	return k.writer.Close()
}
