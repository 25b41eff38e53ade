// Package queue defines the messaging contract between the like producer and
// the worker. The abstraction keeps broker specifics (RabbitMQ, in-memory)
// out of the business logic while preserving at-least-once delivery
// semantics: explicit per-delivery acknowledgment and redelivery awareness.
package queue

import (
	"context"
	"errors"
)

// Publish errors surfaced to callers.
var (
	// ErrConnectionExhausted is returned when the publisher could not
	// establish a broker connection within its retry budget.
	ErrConnectionExhausted = errors.New("broker connection attempts exhausted")

	// ErrPublishRejected is returned when the broker refused or failed to
	// confirm a published message. The connection is torn down and the next
	// call reconnects.
	ErrPublishRejected = errors.New("broker rejected publish")
)

// Delivery is a single message handed to the consumer's handler.
type Delivery struct {
	// Body is the message payload.
	Body []byte

	// MessageID is the publisher-stamped message id, carried for log
	// correlation.
	MessageID string

	// Redelivered is true when the broker has delivered this message
	// before (consumer crash, requeue, or connection loss).
	Redelivered bool
}

// Verdict is the handler's decision for a delivery.
type Verdict int

const (
	// Ack removes the message from the queue. Used both for successful
	// processing and for permanent failures that can never succeed on retry.
	Ack Verdict = iota

	// Requeue negatively acknowledges the message with requeue, giving it
	// one more delivery attempt after a transient failure.
	Requeue
)

// String implements fmt.Stringer.
func (v Verdict) String() string {
	switch v {
	case Ack:
		return "ack"
	case Requeue:
		return "requeue"
	default:
		return "unknown"
	}
}

// HandlerFunc processes one delivery and decides its fate. Implementations
// must not panic; the verdict is the only channel back to the broker.
type HandlerFunc func(ctx context.Context, d *Delivery) Verdict

// Publisher sends messages to the durable queue.
// Implementations must be safe for concurrent use: the API layer calls
// Publish from many request goroutines.
type Publisher interface {
	// Publish durably enqueues one message, waiting for broker
	// confirmation. All-or-nothing per call: either the message is queued
	// or an error is returned and nothing was enqueued.
	Publish(ctx context.Context, body []byte) error

	// Close releases the broker connection.
	Close() error
}

// Consumer delivers queued messages to a handler, one at a time.
type Consumer interface {
	// Start begins consuming and blocks until the context is canceled.
	// Transport failures are handled internally by reconnecting; they are
	// never surfaced per message.
	Start(ctx context.Context, handler HandlerFunc) error

	// Close stops consuming and releases broker resources.
	Close() error
}
