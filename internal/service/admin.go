package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/elewand/elewand-server/internal/domain"
	domainerrors "github.com/elewand/elewand-server/internal/errors"
	"github.com/elewand/elewand-server/internal/store"
	"github.com/elewand/elewand-server/internal/validation"
)

// AdminService backs the administrator endpoints. Callers must already hold the admin role.
type AdminService struct {
	store     *store.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewAdminService creates a new admin service.
func NewAdminService(store *store.Store, validator *validation.Validator, logger *slog.Logger) *AdminService {
	return &AdminService{store: store, validator: validator, logger: logger}
}

// SetRoleRequest grants or revokes the admin role.
type SetRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user admin"`
}

// ListUsers returns every account, newest first.
func (s *AdminService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(users, func(a, b *domain.User) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return users, nil
}

// Stats returns instance-wide counts and the summed preference vectors.
func (s *AdminService) Stats(ctx context.Context) (*domain.AdminStats, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	stats := &domain.AdminStats{TotalUsers: len(users)}
	for _, u := range users {
		stats.ProfileSums = stats.ProfileSums.Add(u.Preferences)
	}

	if stats.TotalBooks, err = s.store.Books.Count(ctx); err != nil {
		return nil, fmt.Errorf("count books: %w", err)
	}
	if stats.TotalRatings, err = s.store.Ratings.Count(ctx); err != nil {
		return nil, fmt.Errorf("count ratings: %w", err)
	}
	return stats, nil
}

// SetRole changes a user's role. Admins cannot demote themselves, so an instance always keeps one.
func (s *AdminService) SetRole(ctx context.Context, actorID, userID string, req SetRoleRequest) (*domain.User, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	role := domain.Role(req.Role)
	if actorID == userID && role != domain.RoleAdmin {
		return nil, domainerrors.Forbidden("you cannot remove your own admin role")
	}

	user, err := s.store.UpdateUser(ctx, userID, func(u *domain.User) error {
		u.Role = role
		return nil
	})
	if err != nil {
		return nil, notFound(err, "user not found")
	}

	s.logger.Info("user role changed", "user_id", userID, "role", role, "changed_by", actorID)
	return user, nil
}

// GrantAdminByEmail promotes the account with the given email. Used by the offline admin tool.
func (s *AdminService) GrantAdminByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.store.GetUserByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		return nil, notFound(err, "no user with that email")
	}
	return s.store.UpdateUser(ctx, user.ID, func(u *domain.User) error {
		u.Role = domain.RoleAdmin
		return nil
	})
}
