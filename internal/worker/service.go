// Package worker is the consumer side of the like pipeline. It drains the
// durable queue, re-validates each intent against the same rules the
// producer enforced, checks referential existence, and commits the record.
// Verdicts follow a fixed taxonomy: malformed input and business-rule
// violations are permanent (acknowledge and drop), infrastructure failures
// are transient (one requeue, then drop).
package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"olymatch/internal/domain"
	"olymatch/internal/metrics"
	"olymatch/internal/notification"
	"olymatch/internal/queue"
	"olymatch/internal/store"
)

// maxDeliveryAttempts bounds how many times one message is tried before it
// is dropped: the initial delivery plus a single requeue. The second
// attempt is recognized by the broker's redelivered flag, so the bound
// holds without any consumer-side attempt bookkeeping.
const maxDeliveryAttempts = 2

// Service processes like deliveries from the queue.
type Service struct {
	consumer queue.Consumer
	users    store.UserRepository
	likes    store.LikeRepository
	notifier notification.Notifier
	logger   *slog.Logger
}

// NewService creates a new worker service.
func NewService(
	consumer queue.Consumer,
	users store.UserRepository,
	likes store.LikeRepository,
	notifier notification.Notifier,
	logger *slog.Logger,
) *Service {
	return &Service{
		consumer: consumer,
		users:    users,
		likes:    likes,
		notifier: notifier,
		logger:   logger,
	}
}

// Start begins consuming deliveries. This is a blocking call that runs
// until the context is canceled; transport failures are absorbed by the
// consumer's own reconnect loop.
func (s *Service) Start(ctx context.Context) error {
	s.logger.Info("starting like worker")
	return s.consumer.Start(ctx, s.handleDelivery)
}

// handleDelivery runs the per-message pipeline: decode, re-validate, check
// both users exist, insert the record. Message-level failures never
// propagate; they are folded into the verdict.
func (s *Service) handleDelivery(ctx context.Context, d *queue.Delivery) queue.Verdict {
	processStart := time.Now()
	defer func() {
		metrics.LikeProcessingLatency.Observe(time.Since(processStart).Seconds())
	}()

	intent, err := domain.DecodeLikeIntent(d.Body)
	if err != nil {
		// Malformed input can never succeed on retry.
		s.logger.Warn("dropping malformed like message",
			"error", err,
			"message_id", d.MessageID,
		)
		metrics.LikesProcessedTotal.WithLabelValues(metrics.ResultMalformed).Inc()
		return queue.Ack
	}

	if verdict, ok := s.checkUser(ctx, d, intent.FromUserTelegramID); !ok {
		return verdict
	}
	if verdict, ok := s.checkUser(ctx, d, intent.ToUserTelegramID); !ok {
		return verdict
	}

	like, err := s.likes.Insert(ctx, intent.Record())
	if err != nil {
		return s.retryOrDrop(d, err)
	}

	s.logger.Info("like persisted",
		"like_id", like.ID,
		"from_tg_id", like.FromUserTelegramID,
		"to_tg_id", like.ToUserTelegramID,
		"message_id", d.MessageID,
	)
	metrics.LikesProcessedTotal.WithLabelValues(metrics.ResultPersisted).Inc()

	s.notifyIfMutual(ctx, like)

	return queue.Ack
}

// checkUser verifies the referenced user exists. A missing user is a
// permanent business-rule failure; any other lookup error is treated as
// transient infrastructure failure.
func (s *Service) checkUser(ctx context.Context, d *queue.Delivery, tgID domain.TelegramID) (queue.Verdict, bool) {
	_, err := s.users.GetByTelegramID(ctx, tgID)
	if err == nil {
		return queue.Ack, true
	}

	if errors.Is(err, domain.ErrUserNotFound) {
		s.logger.Error("dropping like referencing unknown user",
			"tg_id", tgID,
			"message_id", d.MessageID,
		)
		metrics.LikesProcessedTotal.WithLabelValues(metrics.ResultUnknownUser).Inc()
		return queue.Ack, false
	}

	return s.retryOrDrop(d, err), false
}

// retryOrDrop implements the bounded retry policy for transient failures.
// The attempt count is derived from the redelivered flag: a first delivery
// gets requeued once, a redelivery is dropped with an error log so the
// operator can spot the data loss.
func (s *Service) retryOrDrop(d *queue.Delivery, err error) queue.Verdict {
	attempt := 1
	if d.Redelivered {
		attempt = 2
	}

	if attempt < maxDeliveryAttempts {
		s.logger.Warn("transient failure, requeueing like message",
			"error", err,
			"attempt", attempt,
			"message_id", d.MessageID,
		)
		metrics.LikesProcessedTotal.WithLabelValues(metrics.ResultRequeued).Inc()
		return queue.Requeue
	}

	s.logger.Error("dropping like message after exhausting retries",
		"error", err,
		"attempt", attempt,
		"message_id", d.MessageID,
	)
	metrics.LikesProcessedTotal.WithLabelValues(metrics.ResultDropped).Inc()
	return queue.Ack
}

// notifyIfMutual fires a match notification when the target had already
// liked the sender back. Best effort: failures are logged and never affect
// the delivery verdict.
func (s *Service) notifyIfMutual(ctx context.Context, like *domain.Like) {
	if !like.IsLike {
		return
	}

	mutual, err := s.likes.HasReciprocal(ctx, like.ToUserTelegramID, like.FromUserTelegramID)
	if err != nil {
		s.logger.Warn("mutual like check failed", "error", err, "like_id", like.ID)
		return
	}
	if mutual {
		s.notifier.NotifyMutualLike(ctx, like)
	}
}

// Stop gracefully stops the worker.
func (s *Service) Stop() error {
	s.logger.Info("stopping like worker")
	return s.consumer.Close()
}
