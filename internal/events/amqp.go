package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"golang.org/x/sync/errgroup"
)

const (
	defaultAMQPWorkers = 10
	amqpMaxBackoff     = 30 * time.Second
	amqpReconnectDelay = 2 * time.Second
)

// AMQPTransport carries events through a durable RabbitMQ queue. Publish
// implements Publisher; Consume feeds deliveries back into an engine.
type AMQPTransport struct {
	url     string
	queue   string
	workers int
	logger  *slog.Logger

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewAMQPTransport returns a transport for queue. Consume dispatches up to
// workers deliveries at once and asks the broker for no more than that.
func NewAMQPTransport(url, queue string, workers int, logger *slog.Logger) *AMQPTransport {
	if workers < 1 {
		workers = defaultAMQPWorkers
	}

	return &AMQPTransport{
		url:     url,
		queue:   queue,
		workers: workers,
		logger:  logger.With("queue", queue),
	}
}

// channel returns the publishing channel, dialing the broker if there is no
// open connection. The caller must hold t.mu.
func (t *AMQPTransport) channel() (*amqp.Channel, error) {
	if t.ch != nil && !t.ch.IsClosed() {
		return t.ch, nil
	}

	if t.conn == nil || t.conn.IsClosed() {
		conn, err := amqp.Dial(t.url)
		if err != nil {
			return nil, fmt.Errorf("dial broker: %w", err)
		}

		t.conn = conn
	}

	ch, err := t.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	_, err = declareQueue(ch, t.queue)
	if err != nil {
		_ = ch.Close()
		return nil, err
	}

	t.ch = ch

	return ch, nil
}

func declareQueue(ch *amqp.Channel, name string) (amqp.Queue, error) {
	q, err := ch.QueueDeclare(
		name,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		return q, fmt.Errorf("declare queue %s: %w", name, err)
	}

	return q, nil
}

func (t *AMQPTransport) Publish(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	ch, err := t.channel()
	if err != nil {
		return err
	}

	err = ch.PublishWithContext(ctx,
		"",      // default exchange
		t.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    event.ID,
			Type:         event.Name,
			Timestamp:    event.Timestamp,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish to %s: %w", t.queue, err)
	}

	return nil
}

// Consume delivers queued events to dispatch until ctx is cancelled,
// reconnecting with backoff when the broker goes away. A delivery is
// acknowledged after dispatch succeeds and requeued when it fails.
func (t *AMQPTransport) Consume(ctx context.Context, dispatch func(context.Context, Event) error) error {
	backoff := time.Second

	for {
		conn, err := amqp.Dial(t.url)
		if err != nil {
			t.logger.Error("failed to dial broker", "error", err, "retry_in", backoff)

			if !sleepCtx(ctx, backoff) {
				return nil
			}

			backoff = min(backoff*2, amqpMaxBackoff)
			continue
		}

		backoff = time.Second

		err = t.consumeLoop(ctx, conn, dispatch)
		_ = conn.Close()

		if ctx.Err() != nil {
			return nil
		}

		t.logger.Warn("consume loop ended, reconnecting", "error", err)

		if !sleepCtx(ctx, amqpReconnectDelay) {
			return nil
		}
	}
}

func (t *AMQPTransport) consumeLoop(ctx context.Context, conn *amqp.Connection, dispatch func(context.Context, Event) error) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	err = ch.Qos(t.workers, 0, false)
	if err != nil {
		t.logger.Warn("failed to set qos", "error", err)
	}

	_, err = declareQueue(ch, t.queue)
	if err != nil {
		return err
	}

	deliveries, err := ch.Consume(t.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", t.queue, err)
	}

	t.logger.Info("consuming events", "workers", t.workers)

	return t.dispatchDeliveries(ctx, deliveries, dispatch)
}

// dispatchDeliveries hands each delivery to a worker, blocking while all
// workers are busy. It returns once every started dispatch has finished so
// that acks still reach the open channel.
func (t *AMQPTransport) dispatchDeliveries(ctx context.Context, deliveries <-chan amqp.Delivery, dispatch func(context.Context, Event) error) error {
	var g errgroup.Group
	g.SetLimit(t.workers)
	defer g.Wait()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("deliveries channel closed")
			}

			g.Go(func() error {
				t.handleDelivery(ctx, d, dispatch)
				return nil
			})
		}
	}
}

func (t *AMQPTransport) handleDelivery(ctx context.Context, d amqp.Delivery, dispatch func(context.Context, Event) error) {
	var evt Event

	err := json.Unmarshal(d.Body, &evt)
	if err != nil || evt.Name == "" {
		t.logger.Error("rejecting malformed event", "message_id", d.MessageId, "error", err)
		_ = d.Nack(false, false)
		return
	}

	err = dispatch(ctx, evt)
	if err != nil {
		t.logger.Error("failed to dispatch event, requeueing", "event", evt.Name, "event_id", evt.ID, "error", err)
		_ = d.Nack(false, true)
		return
	}

	_ = d.Ack(false)
}

// Close shuts down the publishing connection.
func (t *AMQPTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.conn == nil || t.conn.IsClosed() {
		return nil
	}

	return t.conn.Close()
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
