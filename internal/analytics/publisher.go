package analytics

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

// Publisher hands scan events to the offline analytics pipeline. Publishing is
// best-effort: a failed publish never fails the visit that produced the event.
type Publisher interface {
	Publish(ctx context.Context, event ScanEvent) error
	Close() error
}

// AMQPPublisher pushes scan events onto a durable RabbitMQ queue.
type AMQPPublisher struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
}

func NewAMQPPublisher(amqpURL, queue string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open amqp channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		queue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,   // args
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare queue %q: %w", queue, err)
	}

	return &AMQPPublisher{conn: conn, ch: ch, queue: queue}, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, event ScanEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal scan event: %w", err)
	}

	err = p.ch.PublishWithContext(
		ctx,
		"", p.queue, false, false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish scan event: %w", err)
	}

	log.Debug().Str("code", event.Code).Str("eventId", event.ID).Msg("scan event published")
	return nil
}

func (p *AMQPPublisher) Close() error {
	if err := p.ch.Close(); err != nil {
		p.conn.Close()
		return err
	}
	return p.conn.Close()
}

// NopPublisher is used when no analytics queue is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, event ScanEvent) error { return nil }
func (NopPublisher) Close() error                                       { return nil }
