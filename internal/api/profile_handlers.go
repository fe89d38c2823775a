package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	"github.com/elewand/elewand-server/internal/domain"
	"github.com/elewand/elewand-server/internal/http/response"
	"github.com/elewand/elewand-server/internal/service"
)

func (s *Server) registerProfileRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getProfile",
		Method:      http.MethodGet,
		Path:        "/api/profile/{userId}",
		Summary:     "Get profile",
		Description: "Returns a user's profile. Private profiles are visible to their owner and admins only",
		Tags:        []string{tagProfile},
		Security:    bearer,
	}, s.handleGetProfile)

	for _, method := range []string{http.MethodPost, http.MethodPut} {
		huma.Register(s.api, huma.Operation{
			OperationID:      "updateProfile" + method,
			Method:           method,
			Path:             "/api/profile/{userId}",
			Summary:          "Update profile",
			Description:      "Partially updates the profile; preference dimensions are merged",
			Tags:             []string{tagProfile},
			Security:         bearer,
			SkipValidateBody: true,
		}, s.handleUpdateProfile)
	}

	huma.Register(s.api, huma.Operation{
		OperationID:  "uploadProfilePicture",
		Method:       http.MethodPost,
		Path:         "/api/profile/{userId}/picture",
		Summary:      "Upload profile picture",
		Description:  "Stores a JPEG, PNG, GIF or WebP image of at most 5 MiB as the profile picture",
		Tags:         []string{tagProfile},
		Security:     bearer,
		MaxBodyBytes: MaxAvatarUploadSize,
	}, s.handleUploadPicture)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteProfilePicture",
		Method:      http.MethodDelete,
		Path:        "/api/profile/{userId}/picture",
		Summary:     "Delete profile picture",
		Tags:        []string{tagProfile},
		Security:    bearer,
	}, s.handleDeletePicture)

	// Avatar bytes are served outside huma so the response is not enveloped.
	s.router.Get("/avatars/{userId}", s.handleServeAvatar)
}

// === DTOs ===

// ProfileOutput wraps a profile for Huma.
type ProfileOutput struct {
	Body UserResponse
}

// UpdateProfileInput wraps the profile update for Huma.
type UpdateProfileInput struct {
	UserID string `path:"userId" doc:"User ID"`
	Body   service.UpdateProfileRequest
}

// UploadPictureInput carries the raw image bytes.
type UploadPictureInput struct {
	UserID  string `path:"userId" doc:"User ID"`
	RawBody []byte `contentType:"application/octet-stream"`
}

// === Handlers ===

func (s *Server) handleGetProfile(ctx context.Context, input *UserPathInput) (*ProfileOutput, error) {
	// Anonymous callers may read public profiles.
	var viewer *domain.User
	if _, err := GetUserID(ctx); err == nil {
		if viewer, err = s.RequireUser(ctx); err != nil {
			return nil, err
		}
	}

	profile, err := s.services.Profile.GetProfile(ctx, viewer, input.UserID)
	if err != nil {
		return nil, err
	}
	return &ProfileOutput{Body: newUserResponse(profile.User, profile.IncludeEmail)}, nil
}

func (s *Server) handleUpdateProfile(ctx context.Context, input *UpdateProfileInput) (*ProfileOutput, error) {
	if _, err := s.RequireOwner(ctx, input.UserID); err != nil {
		return nil, err
	}

	user, err := s.services.Profile.UpdateProfile(ctx, input.UserID, input.Body)
	if err != nil {
		return nil, err
	}
	return &ProfileOutput{Body: newUserResponse(user, true)}, nil
}

func (s *Server) handleUploadPicture(ctx context.Context, input *UploadPictureInput) (*ProfileOutput, error) {
	if _, err := s.RequireOwner(ctx, input.UserID); err != nil {
		return nil, err
	}

	s.logger.Info("profile picture upload",
		"user_id", input.UserID,
		"body_size", len(input.RawBody),
	)

	user, err := s.services.Profile.UploadPicture(ctx, input.UserID, input.RawBody)
	if err != nil {
		return nil, err
	}
	return &ProfileOutput{Body: newUserResponse(user, true)}, nil
}

func (s *Server) handleDeletePicture(ctx context.Context, input *UserPathInput) (*MessageOutput, error) {
	if _, err := s.RequireOwner(ctx, input.UserID); err != nil {
		return nil, err
	}

	if err := s.services.Profile.DeletePicture(ctx, input.UserID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "Profile picture deleted"}}, nil
}

func (s *Server) handleServeAvatar(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if userID == "" {
		response.BadRequest(w, "user id required", s.logger)
		return
	}

	data, mime, err := s.services.Profile.Avatar(r.Context(), userID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", CacheOneWeek)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, _ = w.Write(data)
}
