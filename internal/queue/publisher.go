package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const notificationQueueName = "stageset.notifications"

// Publisher writes notification journal entries to the broker.  Each
// publish dials a fresh connection; triggers are rare (a human pressing a
// button) so connection reuse buys nothing and a dead broker never holds
// state in the server.
type Publisher struct {
	url string
}

// NewPublisher returns a Publisher for the given AMQP URL.
func NewPublisher(url string) *Publisher {
	return &Publisher{url: url}
}

// PublishTrigger publishes a journal entry to the stageset.notifications
// queue.  Errors are logged and returned so the caller can ignore them
// without interrupting the broadcast flow.  Messages are persistent.
func (p *Publisher) PublishTrigger(ctx context.Context, ev NotificationTriggered) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		log.Printf("queue: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("queue: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Idempotent declare; durable so entries survive broker restarts.
	if _, err := ch.QueueDeclare(notificationQueueName, true, false, false, false, nil); err != nil {
		log.Printf("queue: declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal journal entry: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", notificationQueueName, false, false, pub); err != nil {
		log.Printf("queue: publish failed: %v", err)
		return err
	}
	return nil
}
