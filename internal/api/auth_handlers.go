package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/elewand/elewand-server/internal/domain"
	"github.com/elewand/elewand-server/internal/service"
)

func (s *Server) registerAuthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:      "register",
		Method:           http.MethodPost,
		Path:             "/api/auth/register",
		Summary:          "Register",
		Description:      "Creates a password account and returns an access token",
		Tags:             []string{tagAuth},
		DefaultStatus:    http.StatusCreated,
		SkipValidateBody: true,
	}, s.handleRegister)

	huma.Register(s.api, huma.Operation{
		OperationID:      "login",
		Method:           http.MethodPost,
		Path:             "/api/auth/login",
		Summary:          "Login",
		Description:      "Authenticates with email and password",
		Tags:             []string{tagAuth},
		SkipValidateBody: true,
	}, s.handleLogin)

	huma.Register(s.api, huma.Operation{
		OperationID:      "loginWithGoogle",
		Method:           http.MethodPost,
		Path:             "/api/auth/google",
		Summary:          "Sign in with Google",
		Description:      "Exchanges a Google id_token for an access token, creating the account on first use",
		Tags:             []string{tagAuth},
		SkipValidateBody: true,
	}, s.handleGoogleLogin)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPreferences",
		Method:      http.MethodGet,
		Path:        "/api/auth/profile/{userId}",
		Summary:     "Get preference vector",
		Description: "Returns the user's genre preference vector",
		Tags:        []string{tagAuth},
		Security:    bearer,
	}, s.handleGetPreferences)

	huma.Register(s.api, huma.Operation{
		OperationID:      "setPreferences",
		Method:           http.MethodPost,
		Path:             "/api/auth/profile/{userId}",
		Summary:          "Set preference vector",
		Description:      "Replaces the preference vector; omitted dimensions become 0",
		Tags:             []string{tagAuth},
		Security:         bearer,
		SkipValidateBody: true,
	}, s.handleSetPreferences)
}

// === DTOs ===

// RegisterInput wraps the registration request for Huma.
type RegisterInput struct {
	Body service.RegisterRequest
}

// LoginInput wraps the login request for Huma.
type LoginInput struct {
	Body service.LoginRequest
}

// GoogleLoginInput wraps the Google sign-in request for Huma.
type GoogleLoginInput struct {
	Body service.GoogleLoginRequest
}

// AuthResponse contains the signed-in user and their access token.
type AuthResponse struct {
	User        UserResponse `json:"user" doc:"Signed-in user"`
	AccessToken string       `json:"accessToken" doc:"PASETO bearer token"`
	ExpiresAt   time.Time    `json:"expiresAt" doc:"Token expiry"`
}

// AuthOutput wraps the auth response for Huma.
type AuthOutput struct {
	Body AuthResponse
}

// UserPathInput selects a user by path.
type UserPathInput struct {
	UserID string `path:"userId" doc:"User ID"`
}

// SetPreferencesInput wraps the preference vector for Huma.
type SetPreferencesInput struct {
	UserID string `path:"userId" doc:"User ID"`
	Body   service.PreferencesRequest
}

// PreferencesResponse contains a preference vector and its owner.
type PreferencesResponse struct {
	Profile domain.PreferenceVector `json:"profile" doc:"Genre preference vector"`
	User    UserResponse            `json:"user" doc:"Owner of the vector"`
}

// PreferencesOutput wraps the preferences response for Huma.
type PreferencesOutput struct {
	Body PreferencesResponse
}

// === Handlers ===

func newAuthOutput(result *service.AuthResult) *AuthOutput {
	return &AuthOutput{Body: AuthResponse{
		User:        newUserResponse(result.User, true),
		AccessToken: result.AccessToken,
		ExpiresAt:   result.ExpiresAt,
	}}
}

func (s *Server) handleRegister(ctx context.Context, input *RegisterInput) (*AuthOutput, error) {
	result, err := s.services.Auth.Register(ctx, input.Body)
	if err != nil {
		return nil, err
	}
	return newAuthOutput(result), nil
}

func (s *Server) handleLogin(ctx context.Context, input *LoginInput) (*AuthOutput, error) {
	result, err := s.services.Auth.Login(ctx, input.Body)
	if err != nil {
		return nil, err
	}
	return newAuthOutput(result), nil
}

func (s *Server) handleGoogleLogin(ctx context.Context, input *GoogleLoginInput) (*AuthOutput, error) {
	result, err := s.services.Auth.LoginWithGoogle(ctx, input.Body)
	if err != nil {
		return nil, err
	}
	return newAuthOutput(result), nil
}

func (s *Server) handleGetPreferences(ctx context.Context, input *UserPathInput) (*PreferencesOutput, error) {
	if _, err := s.RequireReader(ctx, input.UserID); err != nil {
		return nil, err
	}

	user, err := s.services.Auth.GetPreferences(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	return newPreferencesOutput(user), nil
}

func (s *Server) handleSetPreferences(ctx context.Context, input *SetPreferencesInput) (*PreferencesOutput, error) {
	if _, err := s.RequireOwner(ctx, input.UserID); err != nil {
		return nil, err
	}

	user, err := s.services.Auth.SetPreferences(ctx, input.UserID, input.Body)
	if err != nil {
		return nil, err
	}
	return newPreferencesOutput(user), nil
}

func newPreferencesOutput(u *domain.User) *PreferencesOutput {
	return &PreferencesOutput{Body: PreferencesResponse{
		Profile: u.Preferences,
		User:    newUserResponse(u, true),
	}}
}
