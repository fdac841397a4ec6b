package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rabbitmq/amqp091-go"

	"github.com/m3rciful/cinebot/core/logger"
)

// Publisher sends envelopes under a routing key.
type Publisher interface {
	Publish(ctx context.Context, key string, env Envelope) error
	Close() error
}

// NopPublisher discards events. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, Envelope) error { return nil }
func (NopPublisher) Close() error                                    { return nil }

// AMQPPublisher publishes persistent JSON messages to a durable topic
// exchange and waits for broker confirms.
type AMQPPublisher struct {
	conn     *amqp091.Connection
	exchange string

	mu sync.Mutex
	ch *amqp091.Channel
}

// Dial connects to url and declares exchange.
func Dial(url, exchange string) (*AMQPPublisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, errors.Wrap(err, "amqp dial")
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, errors.Wrap(err, "amqp channel")
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, errors.Wrapf(err, "declare exchange %s", exchange)
	}
	if err := ch.Confirm(false); err != nil {
		_ = conn.Close()
		return nil, errors.Wrap(err, "enable confirms")
	}
	logger.Info(context.Background(), "events", "broker.connected", slog.String("exchange", exchange))
	return &AMQPPublisher{conn: conn, exchange: exchange, ch: ch}, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, key string, env Envelope) error {
	body, err := json.Marshal(env)
	if err != nil {
		return errors.Wrap(err, "encode envelope")
	}
	msg := amqp091.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp091.Persistent,
		MessageId:     env.Meta.ID,
		CorrelationId: env.Meta.CorrelationID,
		Type:          env.Meta.Type,
		AppId:         env.Meta.Producer,
		Timestamp:     time.Now(),
		Body:          body,
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	dc, err := p.ch.PublishWithDeferredConfirmWithContext(ctx, p.exchange, key, false, false, msg)
	if err != nil {
		return errors.Wrapf(err, "publish %s", key)
	}
	acked, err := dc.WaitContext(ctx)
	if err != nil {
		return errors.Wrapf(err, "confirm %s", key)
	}
	if !acked {
		return errors.Newf("publish %s: nacked by broker", key)
	}
	logger.Debug(ctx, "events", "published",
		slog.String("exchange", p.exchange),
		slog.String("routing_key", key),
	)
	return nil
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	_ = p.ch.Close()
	return p.conn.Close()
}
