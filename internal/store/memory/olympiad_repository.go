package memory

import (
	"context"
	"sort"
	"sync"

	"olymatch/internal/domain"
)

// OlympiadRepository is an in-memory implementation of store.OlympiadRepository.
type OlympiadRepository struct {
	mu sync.RWMutex

	// olympiads stores all achievements by their assigned id.
	olympiads map[int64]*domain.Olympiad

	// nextID hands out store-assigned identifiers.
	nextID int64
}

// NewOlympiadRepository creates a new in-memory olympiad repository.
func NewOlympiadRepository() *OlympiadRepository {
	return &OlympiadRepository{
		olympiads: make(map[int64]*domain.Olympiad),
	}
}

// Create stores a new achievement and assigns its id.
func (r *OlympiadRepository) Create(ctx context.Context, o *domain.Olympiad) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	o.ID = r.nextID

	oCopy := *o
	r.olympiads[o.ID] = &oCopy

	return nil
}

// Update modifies an existing achievement by id.
func (r *OlympiadRepository) Update(ctx context.Context, o *domain.Olympiad) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.olympiads[o.ID]; !exists {
		return domain.ErrOlympiadNotFound
	}

	oCopy := *o
	r.olympiads[o.ID] = &oCopy

	return nil
}

// Delete removes an achievement by id.
func (r *OlympiadRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.olympiads[id]; !exists {
		return domain.ErrOlympiadNotFound
	}

	delete(r.olympiads, id)
	return nil
}

// ListByUser retrieves all achievements attached to a user.
func (r *OlympiadRepository) ListByUser(ctx context.Context, tgID domain.TelegramID) ([]*domain.Olympiad, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var olympiads []*domain.Olympiad
	for _, o := range r.olympiads {
		if o.UserTelegramID == tgID {
			oCopy := *o
			olympiads = append(olympiads, &oCopy)
		}
	}

	sort.Slice(olympiads, func(i, j int) bool {
		return olympiads[i].ID < olympiads[j].ID
	})

	return olympiads, nil
}
