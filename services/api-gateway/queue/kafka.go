// services/api-gateway/queue/kafka.go
package queue

import (
	"context"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
)

// Bus publishes reconciled payment-status notifications. One writer is kept for
// the life of the process.
type Bus struct {
	Brokers []string
	Topic   string
	w       *kafka.Writer
}

func New(brokers []string, topic string) *Bus {
	return &Bus{
		Brokers: brokers,
		Topic:   topic,
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			BatchTimeout: 10 * time.Millisecond,
			RequiredAcks: kafka.RequireOne,
		},
	}
}

// Publish keys by payment id so one payment's notifications stay ordered on a partition.
func (b *Bus) Publish(ctx context.Context, key, payload []byte) error {
	return b.w.WriteMessages(ctx, kafka.Message{Key: key, Value: payload})
}

func (b *Bus) Close() error {
	return b.w.Close()
}

// Tail reads the status topic from the latest offset and calls fn for every
// message until ctx is done or fn returns an error.
func Tail(ctx context.Context, brokers []string, topic string, fn func(key, value []byte) error) error {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		Topic:       topic,
		GroupID:     "", // stateless reader
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafka.LastOffset,
	})
	defer r.Close()

	for {
		m, err := r.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}
		if err := fn(m.Key, m.Value); err != nil {
			return err
		}
	}
}
