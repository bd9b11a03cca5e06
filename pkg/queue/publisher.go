// Package queue publishes booking lifecycle events to RabbitMQ.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	QueueBookingConfirmed = "booking.confirmed"
	QueueBookingCancelled = "booking.cancelled"
)

// BookingEvent is the message body of both booking queues.
type BookingEvent struct {
	BookingID      string    `json:"booking_id"`
	Reference      string    `json:"reference"`
	EventID        string    `json:"event_id"`
	PurchaserEmail string    `json:"purchaser_email"`
	SeatIDs        []string  `json:"seat_ids"`
	TotalAmount    float64   `json:"total_amount"`
	Status         string    `json:"status"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// Publisher delivers messages to a named queue. Callers treat failures as
// non-fatal: a committed booking is never undone because a publish failed.
type Publisher interface {
	Publish(ctx context.Context, queue string, payload any) error
	Close() error
}

const (
	dialTimeout    = 2 * time.Second
	reconnectDelay = 10 * time.Second
)

// errBrokerUnavailable is returned without dialing while a failed reconnect is
// still backing off.
var errBrokerUnavailable = errors.New("rabbitmq unavailable")

type rabbitPublisher struct {
	mu   sync.Mutex
	url  string
	conn *amqp.Connection
	ch   *amqp.Channel
	log  *zap.Logger

	// retryAt is when the next reconnect may be attempted.
	retryAt time.Time
}

// NewRabbitPublisher dials the broker and declares the booking queues.
func NewRabbitPublisher(url string, log *zap.Logger) (Publisher, error) {
	p := &rabbitPublisher{
		url: url,
		log: log.With(zap.String("component", "rabbitmq")),
	}
	if err := p.connect(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *rabbitPublisher) connect() error {
	conn, err := amqp.DialConfig(p.url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(dialTimeout),
	})
	if err != nil {
		return fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	for _, name := range []string{QueueBookingConfirmed, QueueBookingCancelled} {
		// durable, not auto-deleted, not exclusive
		if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
			_ = ch.Close()
			_ = conn.Close()
			return fmt.Errorf("declare queue %s: %w", name, err)
		}
	}

	p.conn = conn
	p.ch = ch
	return nil
}

func (p *rabbitPublisher) Publish(ctx context.Context, queue string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil || p.conn.IsClosed() || p.ch == nil || p.ch.IsClosed() {
		if err := p.reconnect(ctx); err != nil {
			return err
		}
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	// default exchange, routing key is the queue name
	if err := p.ch.PublishWithContext(ctx, "", queue, false, false, msg); err != nil {
		return fmt.Errorf("publish to %s: %w", queue, err)
	}

	return nil
}

// reconnect is called with mu held. The dial is bounded by dialTimeout and a
// failure keeps other publishers from dialing until reconnectDelay has passed.
func (p *rabbitPublisher) reconnect(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if now := time.Now(); now.Before(p.retryAt) {
		return fmt.Errorf("%w: retry in %s", errBrokerUnavailable, p.retryAt.Sub(now).Round(time.Second))
	}

	p.log.Warn("RabbitMQ connection lost, reconnecting")
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn, p.ch = nil, nil
	}
	if err := p.connect(); err != nil {
		p.retryAt = time.Now().Add(reconnectDelay)
		return err
	}
	p.retryAt = time.Time{}
	return nil
}

func (p *rabbitPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

type nopPublisher struct{}

// NewNopPublisher returns a publisher that drops every message. It is used when
// RabbitMQ is disabled.
func NewNopPublisher() Publisher {
	return nopPublisher{}
}

func (nopPublisher) Publish(context.Context, string, any) error { return nil }

func (nopPublisher) Close() error { return nil }
