package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/elewand/elewand-server/internal/auth"
	"github.com/elewand/elewand-server/internal/color"
	"github.com/elewand/elewand-server/internal/domain"
	domainerrors "github.com/elewand/elewand-server/internal/errors"
	"github.com/elewand/elewand-server/internal/id"
	"github.com/elewand/elewand-server/internal/store"
	"github.com/elewand/elewand-server/internal/validation"
)

// GoogleVerifier verifies Google id_tokens.
type GoogleVerifier interface {
	Enabled() bool
	Verify(ctx context.Context, idToken string) (*auth.GoogleIdentity, error)
}

// AuthService handles registration, sign-in and the preference vector.
type AuthService struct {
	store      *store.Store
	tokens     *auth.TokenService
	google     GoogleVerifier
	validator  *validation.Validator
	adminEmail string
	logger     *slog.Logger
	now        Clock
}

// NewAuthService creates a new authentication service.
// Accounts whose email equals adminEmail are given the admin role when they register or sign in.
func NewAuthService(
	store *store.Store,
	tokens *auth.TokenService,
	google GoogleVerifier,
	validator *validation.Validator,
	adminEmail string,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		store:      store,
		tokens:     tokens,
		google:     google,
		validator:  validator,
		adminEmail: domain.NormalizeEmail(adminEmail),
		logger:     logger,
		now:        time.Now,
	}
}

// RegisterRequest contains the data for a new password account.
type RegisterRequest struct {
	Name     string `json:"name" validate:"notblank,max=100"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=1024,hasdigit"`
}

// LoginRequest contains password credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// GoogleLoginRequest carries a Google id_token.
type GoogleLoginRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

// PreferencesRequest sets the whole preference vector. Omitted dimensions are zero.
type PreferencesRequest struct {
	CrimeThriller int `json:"crimeThriller" validate:"gte=0"`
	Horror        int `json:"horror" validate:"gte=0"`
	Fantasy       int `json:"fantasy" validate:"gte=0"`
	Philosophy    int `json:"philosophy" validate:"gte=0"`
}

// Vector converts the request into a PreferenceVector.
func (r PreferencesRequest) Vector() domain.PreferenceVector {
	return domain.PreferenceVector{
		CrimeThriller: r.CrimeThriller,
		Horror:        r.Horror,
		Fantasy:       r.Fantasy,
		Philosophy:    r.Philosophy,
	}
}

// AuthResult is returned by every successful sign-in.
type AuthResult struct {
	User        *domain.User
	AccessToken string
	ExpiresAt   time.Time
}

var errInvalidCredentials = domainerrors.InvalidCredentials("invalid email or password")

// Register creates a password account and signs it in.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.newUser(strings.TrimSpace(req.Name), req.Email, domain.AuthProviderPassword)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = passwordHash

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			return nil, domainerrors.AlreadyExists("email already in use")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user registered", "user_id", user.ID, "role", user.Role)
	return s.issue(user)
}

// Login verifies password credentials. Unknown emails and wrong passwords fail identically.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if !auth.VerifyPassword(user.PasswordHash, req.Password) {
		s.logger.Debug("login rejected", "user_id", user.ID)
		return nil, errInvalidCredentials
	}

	user, err = s.recordLogin(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return s.issue(user)
}

// LoginWithGoogle verifies an id_token and signs in the matching account, creating it on first use.
func (s *AuthService) LoginWithGoogle(ctx context.Context, req GoogleLoginRequest) (*AuthResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if s.google == nil || !s.google.Enabled() {
		return nil, domainerrors.Unavailable("google sign-in is not configured")
	}

	identity, err := s.google.Verify(ctx, req.IDToken)
	switch {
	case errors.Is(err, auth.ErrGoogleEmailMissing):
		return nil, domainerrors.Validation("google account has no email address")
	case errors.Is(err, auth.ErrGoogleEmailUnverified):
		return nil, domainerrors.Unauthorized("google account email is not verified")
	case err != nil:
		s.logger.Warn("google token rejected", "error", err)
		return nil, domainerrors.Unauthorized("invalid google token")
	}

	user, err := s.store.GetUserByEmail(ctx, identity.Email)
	if errors.Is(err, store.ErrNotFound) {
		user, err = s.createGoogleUser(ctx, identity)
	}
	if err != nil {
		return nil, err
	}

	user, err = s.recordLogin(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return s.issue(user)
}

func (s *AuthService) createGoogleUser(ctx context.Context, identity *auth.GoogleIdentity) (*domain.User, error) {
	name := strings.TrimSpace(identity.Name)
	if name == "" {
		name, _, _ = strings.Cut(identity.Email, "@")
	}

	user, err := s.newUser(name, identity.Email, domain.AuthProviderGoogle)
	if err != nil {
		return nil, err
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			// Created concurrently by another sign-in.
			return s.store.GetUserByEmail(ctx, identity.Email)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user registered via google", "user_id", user.ID, "role", user.Role)
	return user, nil
}

// GetPreferences returns the user whose preference vector is requested.
func (s *AuthService) GetPreferences(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, notFound(err, "user not found")
	}
	return user, nil
}

// SetPreferences replaces the user's preference vector.
func (s *AuthService) SetPreferences(ctx context.Context, userID string, req PreferencesRequest) (*domain.User, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.store.UpdateUser(ctx, userID, func(u *domain.User) error {
		u.Preferences = req.Vector()
		return nil
	})
	if err != nil {
		return nil, notFound(err, "user not found")
	}
	return user, nil
}

func (s *AuthService) newUser(name, email string, provider domain.AuthProvider) (*domain.User, error) {
	userID, err := id.Generate(id.PrefixUser)
	if err != nil {
		return nil, fmt.Errorf("generate user ID: %w", err)
	}

	now := s.now()
	user := &domain.User{
		Base:              domain.Base{ID: userID, CreatedAt: now, UpdatedAt: now},
		Email:             domain.NormalizeEmail(email),
		Name:              name,
		Role:              domain.RoleUser,
		AuthProvider:      provider,
		AvatarColor:       color.ForUser(userID),
		ProfileVisibility: domain.VisibilityPublic,
		JoinedDate:        now,
		LastLoginAt:       &now,
	}
	s.applyBootstrapAdmin(user)
	return user, nil
}

func (s *AuthService) recordLogin(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.store.UpdateUser(ctx, userID, func(u *domain.User) error {
		now := s.now()
		u.LastLoginAt = &now
		s.applyBootstrapAdmin(u)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("record login: %w", err)
	}
	return user, nil
}

func (s *AuthService) applyBootstrapAdmin(u *domain.User) {
	if s.adminEmail != "" && domain.NormalizeEmail(u.Email) == s.adminEmail && !u.IsAdmin() {
		u.Role = domain.RoleAdmin
		s.logger.Info("granted admin role to bootstrap account", "user_id", u.ID)
	}
}

func (s *AuthService) issue(user *domain.User) (*AuthResult, error) {
	token, expiresAt, err := s.tokens.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}
	return &AuthResult{User: user, AccessToken: token, ExpiresAt: expiresAt}, nil
}
