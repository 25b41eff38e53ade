// Package notification handles outbound notifications for mutual matches.
// The worker calls it best effort after persisting a like; delivery channels
// (bot messages, push) plug in behind the Notifier interface.
package notification

import (
	"context"
	"log/slog"

	"olymatch/internal/domain"
)

// Notifier delivers match notifications.
type Notifier interface {
	// NotifyMutualLike is called when a persisted like completes a pair:
	// the target had already liked the sender back.
	NotifyMutualLike(ctx context.Context, like *domain.Like)
}

// StubNotifier logs notifications instead of sending them.
type StubNotifier struct {
	logger *slog.Logger
}

// NewStubNotifier creates a logging-only notifier.
func NewStubNotifier(logger *slog.Logger) *StubNotifier {
	return &StubNotifier{logger: logger}
}

// NotifyMutualLike logs the mutual match.
func (n *StubNotifier) NotifyMutualLike(ctx context.Context, like *domain.Like) {
	n.logger.Info("mutual like detected",
		"like_id", like.ID,
		"from_tg_id", like.FromUserTelegramID,
		"to_tg_id", like.ToUserTelegramID,
	)
}
