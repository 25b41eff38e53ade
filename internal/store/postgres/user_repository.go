package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"olymatch/internal/domain"
)

// UserRepository implements store.UserRepository using PostgreSQL.
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new PostgreSQL-backed user repository.
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `
	id, tg_id, first_name, last_name, middle_name, phone, phone_verified,
	age, city, status, goal, who_interested, date_of_birth, description,
	created_at, updated_at
`

// Create stores a new user profile.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (
			tg_id, first_name, last_name, middle_name, phone, phone_verified,
			age, city, status, goal, who_interested, date_of_birth, description,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id
	`

	err := r.db.pool.QueryRow(ctx, query,
		user.TelegramID,
		user.FirstName,
		user.LastName,
		user.MiddleName,
		user.Phone,
		user.PhoneVerified,
		user.Age,
		user.City,
		user.Status,
		user.Goal,
		user.WhoInterested,
		user.DateOfBirth,
		user.Description,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.ID)

	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// Update modifies an existing profile, found by its telegram id.
func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users SET
			first_name = $2,
			last_name = $3,
			middle_name = $4,
			phone = $5,
			phone_verified = $6,
			age = $7,
			city = $8,
			status = $9,
			goal = $10,
			who_interested = $11,
			date_of_birth = $12,
			description = $13,
			updated_at = $14
		WHERE tg_id = $1
	`

	result, err := r.db.pool.Exec(ctx, query,
		user.TelegramID,
		user.FirstName,
		user.LastName,
		user.MiddleName,
		user.Phone,
		user.PhoneVerified,
		user.Age,
		user.City,
		user.Status,
		user.Goal,
		user.WhoInterested,
		user.DateOfBirth,
		user.Description,
		user.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}

	return nil
}

// Delete removes a profile by telegram id.
func (r *UserRepository) Delete(ctx context.Context, tgID domain.TelegramID) error {
	result, err := r.db.pool.Exec(ctx, `DELETE FROM users WHERE tg_id = $1`, tgID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}

	return nil
}

// GetByTelegramID retrieves a profile by the external id.
func (r *UserRepository) GetByTelegramID(ctx context.Context, tgID domain.TelegramID) (*domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE tg_id = $1`, userColumns)

	row := r.db.pool.QueryRow(ctx, query, tgID)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// List retrieves all profiles ordered by registration time.
func (r *UserRepository) List(ctx context.Context) ([]*domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users ORDER BY id`, userColumns)

	rows, err := r.db.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	return users, nil
}

// scanUser reads one user row.
func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID,
		&user.TelegramID,
		&user.FirstName,
		&user.LastName,
		&user.MiddleName,
		&user.Phone,
		&user.PhoneVerified,
		&user.Age,
		&user.City,
		&user.Status,
		&user.Goal,
		&user.WhoInterested,
		&user.DateOfBirth,
		&user.Description,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
