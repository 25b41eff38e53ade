// Package store defines the persistence interfaces for OlyMatch.
// Production wiring backs them with PostgreSQL, with a Redis read-through
// cache in front of user lookups; tests use the in-memory implementations.
package store

import (
	"context"

	"olymatch/internal/domain"
)

// UserRepository defines persistent user-profile storage.
// Lookups are point reads by the external telegram id; the worker's
// referential checks run through this interface.
type UserRepository interface {
	// Create stores a new user profile.
	Create(ctx context.Context, user *domain.User) error

	// Update modifies an existing profile, found by its telegram id.
	Update(ctx context.Context, user *domain.User) error

	// Delete removes a profile by telegram id.
	Delete(ctx context.Context, tgID domain.TelegramID) error

	// GetByTelegramID retrieves a profile by the external id.
	// Returns domain.ErrUserNotFound when no such user exists.
	GetByTelegramID(ctx context.Context, tgID domain.TelegramID) (*domain.User, error)

	// List retrieves all profiles.
	List(ctx context.Context) ([]*domain.User, error)
}

// LikeRepository defines persistent like storage.
type LikeRepository interface {
	// Insert persists a new like in a single transaction and returns the
	// record with its store-assigned id. The record's id field must be
	// zero on input; ids are never client-supplied.
	Insert(ctx context.Context, like *domain.Like) (*domain.Like, error)

	// ListReceived retrieves the likes addressed to a user, newest first.
	ListReceived(ctx context.Context, tgID domain.TelegramID) ([]*domain.Like, error)

	// MarkRead flips is_readed on a persisted like.
	MarkRead(ctx context.Context, id int64) error

	// HasReciprocal reports whether a positive like exists from `from`
	// to `to`, used for mutual-match detection.
	HasReciprocal(ctx context.Context, from, to domain.TelegramID) (bool, error)
}

// OlympiadRepository defines persistent achievement storage.
type OlympiadRepository interface {
	// Create stores a new achievement.
	Create(ctx context.Context, o *domain.Olympiad) error

	// Update modifies an existing achievement by id.
	Update(ctx context.Context, o *domain.Olympiad) error

	// Delete removes an achievement by id.
	Delete(ctx context.Context, id int64) error

	// ListByUser retrieves all achievements attached to a user.
	ListByUser(ctx context.Context, tgID domain.TelegramID) ([]*domain.Olympiad, error)
}
