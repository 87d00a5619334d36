package common

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

type Exchange string

type Queue string

type BindingKey string

type MessageProducer interface {
	Publish(ctx context.Context, msg []byte, key BindingKey, exchange Exchange) error
}

type MessageConsumer interface {
	Consume(key BindingKey, exchange Exchange, queue Queue) (<-chan amqp.Delivery, error)
}

const (
	UserExchange     Exchange   = "user_exchange"
	UserCreatedQueue Queue      = "user_created_queue"
	UserCreatedKey   BindingKey = "user.created"
	UserUpdatedKey   BindingKey = "user.updated"
	UserDeletedKey   BindingKey = "user.deleted"
)

// userBindings lists the durable queues declared with the user exchange.
// Updated and deleted events have no queue here; other subscribers bind their own.
var userBindings = map[Queue]BindingKey{
	UserCreatedQueue: UserCreatedKey,
}

// consumerPrefetch bounds unacknowledged deliveries per consumer.
const consumerPrefetch = 1

type MessageBroker struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewMessageBroker(uri string) (*MessageBroker, error) {
	conn, err := amqp.DialConfig(uri, amqp.Config{
		Heartbeat: 10 * time.Second,
		Properties: amqp.Table{
			"connection_name": "quill",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("could not connect to AMQP: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("could not open channel: %w", err)
	}

	return &MessageBroker{conn: conn, ch: ch}, nil
}

func (mb *MessageBroker) Close() error {
	if err := mb.ch.Close(); err != nil {
		return err
	}

	return mb.conn.Close()
}

// Healthy reports whether the AMQP connection is still open.
func (mb *MessageBroker) Healthy() bool {
	return mb != nil && !mb.conn.IsClosed()
}

// DeclareUserTopology declares the durable direct user exchange and its bound queues.
func (mb *MessageBroker) DeclareUserTopology() error {
	err := mb.ch.ExchangeDeclare(string(UserExchange), amqp.ExchangeDirect, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("declare exchange %s: %w", UserExchange, err)
	}

	for queue, key := range userBindings {
		if _, err := mb.ch.QueueDeclare(string(queue), true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare queue %s: %w", queue, err)
		}

		if err := mb.ch.QueueBind(string(queue), string(key), string(UserExchange), false, nil); err != nil {
			return fmt.Errorf("bind queue %s to %s: %w", queue, key, err)
		}
	}

	return nil
}

// Publish sends a persistent JSON message with a fresh message id.
func (mb *MessageBroker) Publish(ctx context.Context, msg []byte, key BindingKey, exchange Exchange) error {
	err := mb.ch.PublishWithContext(ctx, string(exchange), string(key), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    time.Now().UTC(),
		Type:         string(key),
		Body:         msg,
	})
	if err != nil {
		return fmt.Errorf("could not publish %s: %w", key, err)
	}

	return nil
}

// Consume starts manual-ack delivery from queue. Deliveries are prefetched one at a time.
func (mb *MessageBroker) Consume(key BindingKey, exchange Exchange, queue Queue) (<-chan amqp.Delivery, error) {
	if err := mb.ch.Qos(consumerPrefetch, 0, false); err != nil {
		return nil, fmt.Errorf("could not set qos: %w", err)
	}

	tag := fmt.Sprintf("quill.%s.%s", exchange, key)

	msgs, err := mb.ch.Consume(string(queue), tag, false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("could not consume %s: %w", queue, err)
	}

	return msgs, nil
}
