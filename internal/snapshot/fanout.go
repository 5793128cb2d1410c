package snapshot

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"

	"restaurant-floor/internal/connections/rabbitmq"
)

const (
	SnapshotExchange = "snapshots_fanout"
	pathHeader       = "x-document-path"
)

// Fanout broadcasts document bodies over a RabbitMQ fanout exchange. Each
// subscriber gets its own exclusive queue and therefore every message.
type Fanout struct {
	client   *rabbitmq.Client
	consumer string
}

func NewFanout(client *rabbitmq.Client, consumer string) (*Fanout, error) {
	if err := client.DeclareFanout(SnapshotExchange); err != nil {
		return nil, err
	}
	return &Fanout{client: client, consumer: consumer}, nil
}

func (f *Fanout) Publish(ctx context.Context, env Envelope) error {
	return f.client.Publish(ctx, SnapshotExchange, "", env.Body,
		amqp.Table{pathHeader: env.Path}, "application/json", false)
}

func (f *Fanout) Subscribe(ctx context.Context) (<-chan Envelope, error) {
	msgs, err := f.client.SubscribeFanout(ctx, SnapshotExchange, f.consumer)
	if err != nil {
		return nil, err
	}
	out := make(chan Envelope, 8)
	go func() {
		defer close(out)
		for d := range msgs {
			path, _ := d.Headers[pathHeader].(string)
			select {
			case out <- Envelope{Path: path, Body: d.Body}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
