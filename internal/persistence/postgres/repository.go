package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"example.com/tracker/internal/domain"
	"example.com/tracker/internal/observability"
)

// SQLSTATE for unique-constraint violations.
const uniqueViolation = "23505"

// Repository implements domain.Repository on top of a Store.
type Repository struct {
	store *Store
}

// NewRepository constructs a Repository.
func NewRepository(store *Store) *Repository {
	return &Repository{store: store}
}

// ListUsers returns all users ordered by id.
func (r *Repository) ListUsers(ctx context.Context) ([]domain.User, error) {
	pool, err := r.store.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := pool.Query(ctx, `SELECT id, username FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Username); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// CreateUser inserts a user and returns it with the assigned id. A
// unique-constraint rejection is classified as ErrDuplicateUsername so
// callers never inspect driver error text.
func (r *Repository) CreateUser(ctx context.Context, username string) (*domain.User, error) {
	pool, err := r.store.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	user := domain.User{Username: username}
	err = pool.QueryRow(ctx,
		`INSERT INTO users (username) VALUES ($1) RETURNING id`,
		username,
	).Scan(&user.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, domain.ErrDuplicateUsername
		}
		return nil, err
	}
	observability.RecordUserCreated()
	return &user, nil
}

// GetUser fetches a user by id, returning nil when absent.
func (r *Repository) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	pool, err := r.store.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	var user domain.User
	err = pool.QueryRow(ctx,
		`SELECT id, username FROM users WHERE id=$1`, id,
	).Scan(&user.ID, &user.Username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// CreateExercise inserts an exercise row and returns it with the
// assigned id.
func (r *Repository) CreateExercise(ctx context.Context, exercise domain.Exercise) (*domain.Exercise, error) {
	pool, err := r.store.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	err = pool.QueryRow(ctx,
		`INSERT INTO exercises (user_id, description, duration, date)
         VALUES ($1, $2, $3, $4) RETURNING id`,
		exercise.UserID,
		exercise.Description,
		exercise.Duration,
		exercise.Date,
	).Scan(&exercise.ID)
	if err != nil {
		return nil, err
	}
	observability.RecordExercisePersisted()
	return &exercise, nil
}

// ListExercises returns a user's exercises ordered by date ascending.
// The inclusive from/to bounds compare as text, which matches date
// order for YYYY-MM-DD values. A positive limit is pushed into the
// query rather than applied to the fetched rows.
func (r *Repository) ListExercises(ctx context.Context, userID int64, filter domain.LogFilter) ([]domain.Exercise, error) {
	pool, err := r.store.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	query := `SELECT id, user_id, description, duration, date FROM exercises WHERE user_id=$1`
	args := []interface{}{userID}

	if filter.From != "" {
		args = append(args, filter.From)
		query += fmt.Sprintf(` AND date >= $%d`, len(args))
	}
	if filter.To != "" {
		args = append(args, filter.To)
		query += fmt.Sprintf(` AND date <= $%d`, len(args))
	}

	query += ` ORDER BY date ASC`

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}

	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	exercises := make([]domain.Exercise, 0)
	for rows.Next() {
		var e domain.Exercise
		if err := rows.Scan(&e.ID, &e.UserID, &e.Description, &e.Duration, &e.Date); err != nil {
			return nil, err
		}
		exercises = append(exercises, e)
	}
	return exercises, rows.Err()
}
