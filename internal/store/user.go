package store

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/elewand/elewand-server/internal/domain"
)

// ErrEmailExists is returned when an email is already registered.
var ErrEmailExists = ErrAlreadyExists.WithMessage("email already in use")

// CreateUser creates a new user account. Emails are unique regardless of case.
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	if err := s.Users.Create(ctx, user.ID, user); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return ErrEmailExists
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.Users.Get(ctx, id)
}

// GetUserByEmail retrieves a user by email, ignoring case.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.Users.GetByIndex(ctx, "email", email)
}

// UpdateUser applies fn to the stored user and persists the result.
func (s *Store) UpdateUser(ctx context.Context, id string, fn func(*domain.User) error) (*domain.User, error) {
	return s.Users.Mutate(ctx, id, func(u *domain.User) error {
		if err := fn(u); err != nil {
			return err
		}
		u.Touch()
		return nil
	})
}

// ListUsers returns every user, newest first.
func (s *Store) ListUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.Users.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	slices.SortStableFunc(users, func(a, b *domain.User) int {
		return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), cmp.Compare(a.ID, b.ID))
	})
	return users, nil
}
