// Package memory provides an in-memory implementation of the queue
// interfaces. This is useful for testing and development without a broker.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"olymatch/internal/queue"
)

// message carries a payload together with its delivery history so requeued
// messages arrive with the redelivered flag set, like a real broker.
type message struct {
	id          string
	body        []byte
	redelivered bool
}

// Queue is an in-memory implementation of both Publisher and Consumer.
// Messages flow through a buffered channel; a Requeue verdict puts the
// message back marked as redelivered. Safe for concurrent use.
//
// The messages channel is never closed. Shutdown is signaled through done,
// so a publish or requeue racing Close blocks on the select and observes
// the shutdown instead of sending on a closed channel.
type Queue struct {
	messages  chan *message
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewQueue creates a new in-memory queue with the specified buffer size.
// Publish blocks once the buffer is full until space frees up or the
// context is canceled.
func NewQueue(bufferSize int) *Queue {
	return &Queue{
		messages: make(chan *message, bufferSize),
		done:     make(chan struct{}),
	}
}

// Publish enqueues one message.
func (q *Queue) Publish(ctx context.Context, body []byte) error {
	select {
	case <-q.done:
		return ErrQueueClosed
	default:
	}

	msg := &message{
		id:   uuid.NewString(),
		body: body,
	}

	select {
	case q.messages <- msg:
		return nil
	case <-q.done:
		return ErrQueueClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Start consumes messages one at a time until the context is canceled or
// the queue is closed. A Requeue verdict re-enqueues the message with
// Redelivered set, so the next attempt observes the broker's flag.
func (q *Queue) Start(ctx context.Context, handler queue.HandlerFunc) error {
	q.wg.Add(1)
	defer q.wg.Done()

	for {
		// Shutdown wins over pending deliveries.
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-q.done:
			return nil
		default:
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-q.done:
			return nil
		case msg := <-q.messages:
			verdict := handler(ctx, &queue.Delivery{
				Body:        msg.body,
				MessageID:   msg.id,
				Redelivered: msg.redelivered,
			})

			if verdict == queue.Requeue {
				msg.redelivered = true
				select {
				case q.messages <- msg:
				case <-q.done:
					return nil
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
	}
}

// Close shuts down the queue and waits for consumers to stop. Messages
// still buffered are discarded.
func (q *Queue) Close() error {
	q.closeOnce.Do(func() {
		close(q.done)
	})
	q.wg.Wait()
	return nil
}

// Len returns the current number of queued messages.
// Useful for tests to verify queue state.
func (q *Queue) Len() int {
	return len(q.messages)
}
