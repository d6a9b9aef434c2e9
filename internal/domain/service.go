// Package domain defines the business logic for the exercise tracker.
package domain

import (
	"context"
	"errors"
)

var (
	// ErrNoUsers is returned when the user table is empty.
	ErrNoUsers = errors.New("no users exist")
	// ErrUserNotFound is returned when a referenced user cannot be located.
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateUsername is returned when a username is already taken.
	ErrDuplicateUsername = errors.New("username already exists")
)

// Repository captures persistence operations.
type Repository interface {
	ListUsers(ctx context.Context) ([]User, error)
	CreateUser(ctx context.Context, username string) (*User, error)
	GetUser(ctx context.Context, id int64) (*User, error)
	CreateExercise(ctx context.Context, exercise Exercise) (*Exercise, error)
	ListExercises(ctx context.Context, userID int64, filter LogFilter) ([]Exercise, error)
}

// Service orchestrates tracker workflows.
type Service struct {
	repo Repository
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ListUsers returns every user in insertion order. An empty table is
// reported as ErrNoUsers rather than an empty slice; callers branch on
// it instead of assuming array semantics.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, ErrNoUsers
	}
	return users, nil
}

// CreateUser inserts a user with the given (already trimmed) username.
// A taken username surfaces as ErrDuplicateUsername.
func (s *Service) CreateUser(ctx context.Context, username string) (*User, error) {
	return s.repo.CreateUser(ctx, username)
}

// CreateExercise records an exercise against an existing user. The
// owner is looked up first so an unknown id yields ErrUserNotFound
// instead of a raw foreign-key failure.
func (s *Service) CreateExercise(ctx context.Context, exercise Exercise) (*Exercise, error) {
	user, err := s.repo.GetUser(ctx, exercise.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return s.repo.CreateExercise(ctx, exercise)
}

// GetLogs fetches a user's exercises ordered by date ascending,
// narrowed by the filter's inclusive bounds and optional limit.
func (s *Service) GetLogs(ctx context.Context, userID int64, filter LogFilter) (*Log, error) {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	exercises, err := s.repo.ListExercises(ctx, userID, filter)
	if err != nil {
		return nil, err
	}

	return &Log{
		User:      *user,
		Exercises: exercises,
		Count:     len(exercises),
	}, nil
}
