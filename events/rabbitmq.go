// Package events publishes order lifecycle events to RabbitMQ. Publishing
// happens after the database transaction commits; a missing broker only
// costs the event, never the order.
package events

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

type Publisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
}

type OrderEvent struct {
	OrderID    uint   `json:"order_id"`
	Event      string `json:"event"` // created, status_changed, deleted
	FromStatus string `json:"from_status,omitempty"`
	ToStatus   string `json:"to_status,omitempty"`
	ActorID    uint   `json:"actor_id,omitempty"`
	OccurredAt string `json:"occurred_at"`
}

func NewPublisher(url, queue string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	if _, err := ch.QueueDeclare(
		queue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	return &Publisher{conn: conn, channel: ch, queue: queue}, nil
}

// Publish is nil-safe so callers can fire events unconditionally.
func (p *Publisher) Publish(event OrderEvent) {
	if p == nil {
		return
	}

	event.OccurredAt = time.Now().UTC().Format(time.RFC3339)
	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("❌ Failed to encode order event: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = p.channel.PublishWithContext(ctx,
		"",      // default exchange
		p.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
	if err != nil {
		log.Printf("❌ Failed to publish order event: %v", err)
	}
}

func (p *Publisher) Close() {
	if p == nil {
		return
	}
	p.channel.Close()
	p.conn.Close()
}
