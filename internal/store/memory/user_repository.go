// Package memory provides in-memory implementations of the store interfaces
// for testing and development without external dependencies.
package memory

import (
	"context"
	"sync"

	"olymatch/internal/domain"
)

// UserRepository is an in-memory implementation of store.UserRepository.
type UserRepository struct {
	mu sync.RWMutex

	// users stores all profiles by telegram id.
	users map[domain.TelegramID]*domain.User

	// nextID hands out store-assigned identifiers.
	nextID int64
}

// NewUserRepository creates a new in-memory user repository.
func NewUserRepository() *UserRepository {
	return &UserRepository{
		users: make(map[domain.TelegramID]*domain.User),
	}
}

// Create stores a new user profile and assigns its id.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	user.ID = r.nextID

	// Store a copy to prevent external modification
	userCopy := *user
	r.users[user.TelegramID] = &userCopy

	return nil
}

// Update modifies an existing profile.
func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.users[user.TelegramID]
	if !exists {
		return domain.ErrUserNotFound
	}

	userCopy := *user
	userCopy.ID = existing.ID
	r.users[user.TelegramID] = &userCopy

	return nil
}

// Delete removes a profile by telegram id.
func (r *UserRepository) Delete(ctx context.Context, tgID domain.TelegramID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[tgID]; !exists {
		return domain.ErrUserNotFound
	}

	delete(r.users, tgID)
	return nil
}

// GetByTelegramID retrieves a profile by the external id.
func (r *UserRepository) GetByTelegramID(ctx context.Context, tgID domain.TelegramID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, exists := r.users[tgID]
	if !exists {
		return nil, domain.ErrUserNotFound
	}

	userCopy := *user
	return &userCopy, nil
}

// List retrieves all profiles.
func (r *UserRepository) List(ctx context.Context) ([]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]*domain.User, 0, len(r.users))
	for _, user := range r.users {
		userCopy := *user
		users = append(users, &userCopy)
	}

	return users, nil
}
