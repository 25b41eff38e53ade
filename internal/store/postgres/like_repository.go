package postgres

import (
	"context"
	"fmt"

	"olymatch/internal/domain"
)

// LikeRepository implements store.LikeRepository using PostgreSQL.
type LikeRepository struct {
	db *DB
}

// NewLikeRepository creates a new PostgreSQL-backed like repository.
func NewLikeRepository(db *DB) *LikeRepository {
	return &LikeRepository{db: db}
}

// Insert persists a like inside a single transaction and returns the record
// with its assigned id and creation time. The rollback is a no-op after a
// successful commit, so the session is released on every exit path.
func (r *LikeRepository) Insert(ctx context.Context, like *domain.Like) (*domain.Like, error) {
	tx, err := r.db.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO likes (from_user_tg_id, to_user_tg_id, text, is_like, is_readed, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, created_at
	`

	saved := *like
	err = tx.QueryRow(ctx, query,
		like.FromUserTelegramID,
		like.ToUserTelegramID,
		like.Text,
		like.IsLike,
		like.IsReaded,
	).Scan(&saved.ID, &saved.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to insert like: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit like: %w", err)
	}

	return &saved, nil
}

// ListReceived retrieves the likes addressed to a user, newest first.
func (r *LikeRepository) ListReceived(ctx context.Context, tgID domain.TelegramID) ([]*domain.Like, error) {
	query := `
		SELECT id, from_user_tg_id, to_user_tg_id, text, is_like, is_readed, created_at
		FROM likes
		WHERE to_user_tg_id = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.db.pool.Query(ctx, query, tgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list likes: %w", err)
	}
	defer rows.Close()

	var likes []*domain.Like
	for rows.Next() {
		var like domain.Like
		err := rows.Scan(
			&like.ID,
			&like.FromUserTelegramID,
			&like.ToUserTelegramID,
			&like.Text,
			&like.IsLike,
			&like.IsReaded,
			&like.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan like: %w", err)
		}
		likes = append(likes, &like)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate likes: %w", err)
	}

	return likes, nil
}

// MarkRead flips is_readed on a persisted like.
func (r *LikeRepository) MarkRead(ctx context.Context, id int64) error {
	result, err := r.db.pool.Exec(ctx,
		`UPDATE likes SET is_readed = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to mark like read: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrLikeNotFound
	}

	return nil
}

// HasReciprocal reports whether a positive like exists from `from` to `to`.
func (r *LikeRepository) HasReciprocal(ctx context.Context, from, to domain.TelegramID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM likes
			WHERE from_user_tg_id = $1 AND to_user_tg_id = $2 AND is_like = TRUE
		)
	`

	var exists bool
	if err := r.db.pool.QueryRow(ctx, query, from, to).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check reciprocal like: %w", err)
	}

	return exists, nil
}
