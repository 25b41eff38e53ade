// Package intake provides the producer side of the like pipeline.
// It validates a like intent, serializes it, and durably enqueues it;
// persistence happens later in the worker. The API layer gets an immediate
// "enqueued" answer or a queue-unavailable error, never a database error.
package intake

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"olymatch/internal/domain"
	"olymatch/internal/metrics"
	"olymatch/internal/queue"
)

// ErrPublishUnavailable is returned when the intent could not be durably
// queued. The API layer maps it to a service-unavailable response.
var ErrPublishUnavailable = errors.New("like queue unavailable")

// Service handles like submission.
type Service struct {
	publisher queue.Publisher
	logger    *slog.Logger
}

// NewService creates a new intake service.
func NewService(publisher queue.Publisher, logger *slog.Logger) *Service {
	return &Service{
		publisher: publisher,
		logger:    logger,
	}
}

// SubmitLike validates the intent and publishes it to the durable queue.
// A nil error means the intent is durably queued; it does not mean the like
// is persisted yet.
func (s *Service) SubmitLike(ctx context.Context, intent *domain.LikeIntent) error {
	metrics.LikesReceivedTotal.Inc()

	intent.Normalize()
	if err := intent.Validate(); err != nil {
		return err
	}

	payload, err := json.Marshal(intent)
	if err != nil {
		return fmt.Errorf("serialize like intent: %w", err)
	}

	publishStart := time.Now()
	if err := s.publisher.Publish(ctx, payload); err != nil {
		s.logger.Error("failed to publish like intent",
			"error", err,
			"from_tg_id", intent.FromUserTelegramID,
			"to_tg_id", intent.ToUserTelegramID,
		)
		return fmt.Errorf("%w: %v", ErrPublishUnavailable, err)
	}
	metrics.LikePublishLatency.Observe(time.Since(publishStart).Seconds())
	metrics.LikesEnqueuedTotal.Inc()

	s.logger.Debug("like intent enqueued",
		"from_tg_id", intent.FromUserTelegramID,
		"to_tg_id", intent.ToUserTelegramID,
		"is_like", intent.IsLike,
	)

	return nil
}
