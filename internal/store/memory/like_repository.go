package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"olymatch/internal/domain"
)

// LikeRepository is an in-memory implementation of store.LikeRepository.
// Like the real table it carries no uniqueness constraint: the same
// (from, to) pair may be inserted any number of times.
type LikeRepository struct {
	mu sync.RWMutex

	// likes stores all records by their assigned id.
	likes map[int64]*domain.Like

	// nextID hands out store-assigned identifiers.
	nextID int64
}

// NewLikeRepository creates a new in-memory like repository.
func NewLikeRepository() *LikeRepository {
	return &LikeRepository{
		likes: make(map[int64]*domain.Like),
	}
}

// Insert persists a like and returns the record with its assigned id.
func (r *LikeRepository) Insert(ctx context.Context, like *domain.Like) (*domain.Like, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++

	saved := *like
	saved.ID = r.nextID
	saved.CreatedAt = time.Now().UTC()

	// Store a copy to prevent external modification
	stored := saved
	r.likes[saved.ID] = &stored

	return &saved, nil
}

// ListReceived retrieves the likes addressed to a user, newest first.
func (r *LikeRepository) ListReceived(ctx context.Context, tgID domain.TelegramID) ([]*domain.Like, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var likes []*domain.Like
	for _, like := range r.likes {
		if like.ToUserTelegramID == tgID {
			likeCopy := *like
			likes = append(likes, &likeCopy)
		}
	}

	sort.Slice(likes, func(i, j int) bool {
		return likes[i].ID > likes[j].ID
	})

	return likes, nil
}

// MarkRead flips is_readed on a persisted like.
func (r *LikeRepository) MarkRead(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	like, exists := r.likes[id]
	if !exists {
		return domain.ErrLikeNotFound
	}

	like.IsReaded = true
	return nil
}

// HasReciprocal reports whether a positive like exists from `from` to `to`.
func (r *LikeRepository) HasReciprocal(ctx context.Context, from, to domain.TelegramID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, like := range r.likes {
		if like.FromUserTelegramID == from && like.ToUserTelegramID == to && like.IsLike {
			return true, nil
		}
	}

	return false, nil
}

// Count returns the total number of stored likes.
// Useful for tests asserting duplicate behavior.
func (r *LikeRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.likes)
}
