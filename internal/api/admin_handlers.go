package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/elewand/elewand-server/internal/domain"
	"github.com/elewand/elewand-server/internal/service"
)

func (s *Server) registerAdminRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "adminListUsers",
		Method:      http.MethodGet,
		Path:        "/api/admin/users",
		Summary:     "List users",
		Description: "Lists every account, newest first (admin only)",
		Tags:        []string{tagAdmin},
		Security:    bearer,
	}, s.handleAdminListUsers)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminStats",
		Method:      http.MethodGet,
		Path:        "/api/admin/stats",
		Summary:     "Instance statistics",
		Description: "Returns user, book and rating counts and the summed preference vectors (admin only)",
		Tags:        []string{tagAdmin},
		Security:    bearer,
	}, s.handleAdminStats)

	huma.Register(s.api, huma.Operation{
		OperationID:      "adminSetRole",
		Method:           http.MethodPut,
		Path:             "/api/admin/users/{userId}/role",
		Summary:          "Set user role",
		Description:      "Grants or revokes the admin role. Admins cannot demote themselves (admin only)",
		Tags:             []string{tagAdmin},
		Security:         bearer,
		SkipValidateBody: true,
	}, s.handleAdminSetRole)
}

// === DTOs ===

// AdminUsersResponse lists every account.
type AdminUsersResponse struct {
	Users      []UserResponse `json:"users"`
	TotalCount int            `json:"totalCount"`
}

// AdminUsersOutput wraps the user list for Huma.
type AdminUsersOutput struct {
	Body AdminUsersResponse
}

// AdminStatsOutput wraps the instance statistics for Huma.
type AdminStatsOutput struct {
	Body *domain.AdminStats
}

// SetRoleInput wraps the role change for Huma.
type SetRoleInput struct {
	UserID string `path:"userId" doc:"User ID"`
	Body   service.SetRoleRequest
}

// UserOutput wraps a user for Huma.
type UserOutput struct {
	Body UserResponse
}

// === Handlers ===

func (s *Server) handleAdminListUsers(ctx context.Context, _ *struct{}) (*AdminUsersOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	users, err := s.services.Admin.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]UserResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, newUserResponse(u, true))
	}
	return &AdminUsersOutput{Body: AdminUsersResponse{Users: resp, TotalCount: len(resp)}}, nil
}

func (s *Server) handleAdminStats(ctx context.Context, _ *struct{}) (*AdminStatsOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	stats, err := s.services.Admin.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return &AdminStatsOutput{Body: stats}, nil
}

func (s *Server) handleAdminSetRole(ctx context.Context, input *SetRoleInput) (*UserOutput, error) {
	admin, err := s.RequireAdmin(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.services.Admin.SetRole(ctx, admin.ID, input.UserID, input.Body)
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: newUserResponse(user, true)}, nil
}
