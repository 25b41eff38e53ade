// Package rabbit provides RabbitMQ-backed implementations of the queue
// interfaces using the amqp091 client. The like pipeline relies on AMQP
// semantics: a durable queue, publisher confirms, consumer prefetch, and
// per-delivery acknowledgment with a redelivered flag.
package rabbit

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"olymatch/internal/config"
	"olymatch/internal/queue"
)

// Connect backoff starts at one second and doubles up to the cap.
const (
	connectBackoffStart = 1 * time.Second
	connectBackoffCap   = 30 * time.Second
)

// Publisher implements queue.Publisher over a single lazily-established,
// lock-guarded connection. The connection is reused across calls; on any
// publish failure it is torn down so the next call reconnects.
type Publisher struct {
	cfg    *config.RabbitConfig
	logger *slog.Logger

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewPublisher creates a publisher. No connection is made until the first
// Publish call.
func NewPublisher(cfg *config.RabbitConfig, logger *slog.Logger) *Publisher {
	return &Publisher{
		cfg:    cfg,
		logger: logger,
	}
}

// Publish serializes nothing and validates nothing: the caller hands it a
// ready wire payload. It durably enqueues the payload as a persistent
// message and waits for the broker's confirmation before returning.
func (p *Publisher) Publish(ctx context.Context, body []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.connectLocked(); err != nil {
		return err
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	confirmation, err := p.ch.PublishWithDeferredConfirmWithContext(
		ctx,
		"",          // default exchange
		p.cfg.Queue, // routing key = queue name
		true,        // mandatory: unroutable messages come back as errors
		false,       // immediate is unsupported by modern brokers
		msg,
	)
	if err != nil {
		p.logger.Error("publish failed, discarding connection", "error", err)
		p.teardownLocked()
		return fmt.Errorf("%w: %v", queue.ErrPublishRejected, err)
	}

	if !confirmation.Wait() {
		p.logger.Error("broker nacked publish, discarding connection",
			"message_id", msg.MessageId,
		)
		p.teardownLocked()
		return queue.ErrPublishRejected
	}

	return nil
}

// connectLocked establishes the connection and channel if absent or dead.
// Retries with exponential backoff up to the configured attempt budget.
// Callers must hold p.mu.
func (p *Publisher) connectLocked() error {
	if p.ch != nil && !p.ch.IsClosed() {
		return nil
	}
	p.teardownLocked()

	backoff := connectBackoffStart
	var lastErr error

	for attempt := 1; attempt <= p.cfg.ConnectAttempts; attempt++ {
		if err := p.dialLocked(); err != nil {
			lastErr = err
			p.logger.Warn("broker connect attempt failed",
				"attempt", attempt,
				"error", err,
			)
			if attempt == p.cfg.ConnectAttempts {
				break
			}
			time.Sleep(backoff)
			backoff = min(backoff*2, connectBackoffCap)
			continue
		}
		return nil
	}

	return fmt.Errorf("%w: %v", queue.ErrConnectionExhausted, lastErr)
}

// dialLocked performs one connection attempt: dial, open a channel, enable
// confirms, declare the durable queue, and bound in-flight messages.
func (p *Publisher) dialLocked() error {
	conn, err := amqp.DialConfig(p.cfg.URL(), amqp.Config{
		Heartbeat: p.cfg.Heartbeat,
	})
	if err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("enable publisher confirms: %w", err)
	}

	if _, err := ch.QueueDeclare(
		p.cfg.Queue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("declare queue: %w", err)
	}

	if err := ch.Qos(p.cfg.Prefetch, 0, false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("set channel qos: %w", err)
	}

	p.conn = conn
	p.ch = ch
	p.logger.Info("publisher connected to broker", "queue", p.cfg.Queue)
	return nil
}

// teardownLocked closes and discards the channel and connection handles.
// Callers must hold p.mu.
func (p *Publisher) teardownLocked() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

// Close releases the broker connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.teardownLocked()
	return nil
}
