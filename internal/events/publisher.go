// Package events publishes payment events to an AMQP broker so downstream
// consumers (notifications, analytics) can react to committed payments.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// PaymentEvent describes one committed payment transaction.
type PaymentEvent struct {
	UserID        int64     `json:"user_id"`
	LiabilityID   int64     `json:"liability_id"`
	LiabilityType string    `json:"liability_type"`
	AmountCents   int64     `json:"amount_cents"`
	Currency      string    `json:"currency"`
	Completed     bool      `json:"completed"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// Publisher is the seam the service depends on.
type Publisher interface {
	PublishPayment(ctx context.Context, ev PaymentEvent) error
}

// AMQPPublisher publishes payment events to a durable direct exchange.
type AMQPPublisher struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
	queueName    string
	log          *logrus.Logger
}

// NewAMQPPublisher dials the broker and declares the exchange, queue and
// binding.
func NewAMQPPublisher(url, exchangeName, queueName string, log *logrus.Logger) (*AMQPPublisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	p := &AMQPPublisher{
		conn:         conn,
		channel:      channel,
		exchangeName: exchangeName,
		queueName:    queueName,
		log:          log,
	}

	if err := p.setup(); err != nil {
		p.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}

	return p, nil
}

func (p *AMQPPublisher) setup() error {
	err := p.channel.ExchangeDeclare(
		p.exchangeName, // name
		"direct",       // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	_, err = p.channel.QueueDeclare(
		p.queueName, // name
		true,        // durable
		false,       // delete when unused
		false,       // exclusive
		false,       // no-wait
		nil,         // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	err = p.channel.QueueBind(
		p.queueName,
		p.queueName, // routing key matches queue name on the direct exchange
		p.exchangeName,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	return nil
}

// PublishPayment emits one payment event as a persistent JSON message.
func (p *AMQPPublisher) PublishPayment(ctx context.Context, ev PaymentEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal payment event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = p.channel.PublishWithContext(
		ctx,
		p.exchangeName,
		p.queueName,
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish payment event: %w", err)
	}

	p.log.WithFields(logrus.Fields{
		"liability_id": ev.LiabilityID,
		"amount_cents": ev.AmountCents,
		"completed":    ev.Completed,
	}).Debug("published payment event")

	return nil
}

// Close releases the channel and connection.
func (p *AMQPPublisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// Noop discards events; used when no broker is configured.
type Noop struct{}

func (Noop) PublishPayment(context.Context, PaymentEvent) error { return nil }
