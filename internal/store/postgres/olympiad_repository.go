package postgres

import (
	"context"
	"fmt"

	"olymatch/internal/domain"
)

// OlympiadRepository implements store.OlympiadRepository using PostgreSQL.
type OlympiadRepository struct {
	db *DB
}

// NewOlympiadRepository creates a new PostgreSQL-backed olympiad repository.
func NewOlympiadRepository(db *DB) *OlympiadRepository {
	return &OlympiadRepository{db: db}
}

// Create stores a new achievement.
func (r *OlympiadRepository) Create(ctx context.Context, o *domain.Olympiad) error {
	query := `
		INSERT INTO olympiads (name, profile, level, user_tg_id, result, year, is_approved, is_displayed)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	err := r.db.pool.QueryRow(ctx, query,
		o.Name,
		o.Profile,
		o.Level,
		o.UserTelegramID,
		o.Result,
		o.Year,
		o.IsApproved,
		o.IsDisplayed,
	).Scan(&o.ID)

	if err != nil {
		return fmt.Errorf("failed to create olympiad: %w", err)
	}

	return nil
}

// Update modifies an existing achievement by id.
func (r *OlympiadRepository) Update(ctx context.Context, o *domain.Olympiad) error {
	query := `
		UPDATE olympiads SET
			name = $2,
			profile = $3,
			level = $4,
			result = $5,
			year = $6,
			is_approved = $7,
			is_displayed = $8
		WHERE id = $1
	`

	result, err := r.db.pool.Exec(ctx, query,
		o.ID,
		o.Name,
		o.Profile,
		o.Level,
		o.Result,
		o.Year,
		o.IsApproved,
		o.IsDisplayed,
	)

	if err != nil {
		return fmt.Errorf("failed to update olympiad: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrOlympiadNotFound
	}

	return nil
}

// Delete removes an achievement by id.
func (r *OlympiadRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.pool.Exec(ctx, `DELETE FROM olympiads WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete olympiad: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrOlympiadNotFound
	}

	return nil
}

// ListByUser retrieves all achievements attached to a user.
func (r *OlympiadRepository) ListByUser(ctx context.Context, tgID domain.TelegramID) ([]*domain.Olympiad, error) {
	query := `
		SELECT id, name, profile, level, user_tg_id, result, year, is_approved, is_displayed
		FROM olympiads
		WHERE user_tg_id = $1
		ORDER BY id
	`

	rows, err := r.db.pool.Query(ctx, query, tgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list olympiads: %w", err)
	}
	defer rows.Close()

	var olympiads []*domain.Olympiad
	for rows.Next() {
		var o domain.Olympiad
		err := rows.Scan(
			&o.ID,
			&o.Name,
			&o.Profile,
			&o.Level,
			&o.UserTelegramID,
			&o.Result,
			&o.Year,
			&o.IsApproved,
			&o.IsDisplayed,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan olympiad: %w", err)
		}
		olympiads = append(olympiads, &o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate olympiads: %w", err)
	}

	return olympiads, nil
}
