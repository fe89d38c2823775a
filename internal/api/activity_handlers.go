package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/elewand/elewand-server/internal/domain"
)

func (s *Server) registerActivityRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getActivity",
		Method:      http.MethodGet,
		Path:        "/api/activity/{userId}",
		Summary:     "Get activity",
		Description: "Summarizes a user's library and ratings",
		Tags:        []string{tagActivity},
		Security:    bearer,
	}, s.handleActivity)
}

// ActivityOutput wraps the activity summary for Huma.
type ActivityOutput struct {
	Body *domain.ActivityStats
}

func (s *Server) handleActivity(ctx context.Context, input *UserPathInput) (*ActivityOutput, error) {
	if _, err := s.RequireReader(ctx, input.UserID); err != nil {
		return nil, err
	}

	stats, err := s.services.Activity.Activity(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	return &ActivityOutput{Body: stats}, nil
}
