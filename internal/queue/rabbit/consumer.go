package rabbit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"olymatch/internal/config"
	"olymatch/internal/metrics"
	"olymatch/internal/queue"
)

// reconnectDelay is how long the consumer waits after losing its broker
// connection before dialing again. Retries are unbounded: the broker is
// expected to eventually come back.
const reconnectDelay = 5 * time.Second

// errDeliveriesClosed marks the broker closing the delivery stream, which
// always means the underlying channel or connection died.
var errDeliveriesClosed = errors.New("delivery channel closed")

// Consumer implements queue.Consumer over a long-lived subscription.
// It supervises its own connection: any transport failure drops the session
// and a new one is established after a fixed delay. Deliveries that were
// in flight when the connection died are returned to the queue by the broker
// and arrive again with the redelivered flag set.
type Consumer struct {
	cfg    *config.RabbitConfig
	logger *slog.Logger
}

// NewConsumer creates a consumer. The subscription is established by Start.
func NewConsumer(cfg *config.RabbitConfig, logger *slog.Logger) *Consumer {
	return &Consumer{
		cfg:    cfg,
		logger: logger,
	}
}

// Start consumes the queue until the context is canceled, handing each
// delivery to the handler and acknowledging per its verdict. Messages are
// processed one at a time; throughput is bounded by the prefetch limit.
func (c *Consumer) Start(ctx context.Context, handler queue.HandlerFunc) error {
	c.logger.Info("starting broker consumer", "queue", c.cfg.Queue)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("broker consumer stopping")
			return ctx.Err()
		default:
		}

		if err := c.consume(ctx, handler); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			metrics.QueueReconnectsTotal.Inc()
			c.logger.Error("broker session ended, reconnecting",
				"error", err,
				"delay", reconnectDelay,
			)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(reconnectDelay):
			}
		}
	}
}

// consume runs one broker session: connect, subscribe, and process
// deliveries until the transport fails or the context is canceled.
func (c *Consumer) consume(ctx context.Context, handler queue.HandlerFunc) error {
	conn, err := amqp.DialConfig(c.cfg.URL(), amqp.Config{
		Heartbeat: c.cfg.Heartbeat,
	})
	if err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	if _, err := ch.QueueDeclare(
		c.cfg.Queue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	// Prefetch bounds the number of unacknowledged deliveries handed to
	// this consumer, so a slow pipeline never accumulates unbounded
	// in-flight work.
	if err := ch.Qos(c.cfg.Prefetch, 0, false); err != nil {
		return fmt.Errorf("set prefetch: %w", err)
	}

	deliveries, err := ch.ConsumeWithContext(
		ctx,
		c.cfg.Queue,
		"olymatch-worker", // consumer tag
		false,             // autoAck off: acknowledgment is always explicit
		false,             // exclusive
		false,             // noLocal
		false,             // noWait
		nil,
	)
	if err != nil {
		return fmt.Errorf("register consumer: %w", err)
	}

	c.logger.Info("consuming queue", "queue", c.cfg.Queue, "prefetch", c.cfg.Prefetch)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return errDeliveriesClosed
			}
			if err := c.dispatch(ctx, handler, &d); err != nil {
				return err
			}
		}
	}
}

// dispatch runs the handler for one delivery and settles it with the broker.
// Acknowledgment failures indicate a dead channel and end the session.
func (c *Consumer) dispatch(ctx context.Context, handler queue.HandlerFunc, d *amqp.Delivery) error {
	verdict := handler(ctx, &queue.Delivery{
		Body:        d.Body,
		MessageID:   d.MessageId,
		Redelivered: d.Redelivered,
	})

	switch verdict {
	case queue.Requeue:
		if err := d.Nack(false, true); err != nil {
			return fmt.Errorf("nack delivery: %w", err)
		}
	default:
		if err := d.Ack(false); err != nil {
			return fmt.Errorf("ack delivery: %w", err)
		}
	}

	return nil
}

// Close is a no-op: Start owns all broker resources and releases them when
// its context is canceled.
func (c *Consumer) Close() error {
	return nil
}
