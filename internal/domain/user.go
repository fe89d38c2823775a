package domain

import (
	"strings"
	"time"
)

// Role represents the user's permission level.
type Role string

const (
	// RoleUser is the default role for every account.
	RoleUser Role = "user"
	// RoleAdmin grants access to the admin endpoints.
	RoleAdmin Role = "admin"
)

// Visibility controls who can see a profile and whether its owner may rate books.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// IsValid reports whether v is a known visibility.
func (v Visibility) IsValid() bool {
	return v == VisibilityPublic || v == VisibilityPrivate
}

// AuthProvider records how the account authenticates.
type AuthProvider string

const (
	AuthProviderPassword AuthProvider = "password"
	AuthProviderGoogle   AuthProvider = "google"
)

// PreferenceVector is the user's self-reported genre affinity.
// It seeds the general browse feature and the admin statistics; the
// recommendation scorer derives taste from the library instead.
type PreferenceVector struct {
	CrimeThriller int `json:"crimeThriller"`
	Horror        int `json:"horror"`
	Fantasy       int `json:"fantasy"`
	Philosophy    int `json:"philosophy"`
}

// Add returns the component-wise sum of p and o.
func (p PreferenceVector) Add(o PreferenceVector) PreferenceVector {
	return PreferenceVector{
		CrimeThriller: p.CrimeThriller + o.CrimeThriller,
		Horror:        p.Horror + o.Horror,
		Fantasy:       p.Fantasy + o.Fantasy,
		Philosophy:    p.Philosophy + o.Philosophy,
	}
}

// User represents an account.
// PasswordHash is persisted but must never leave the API; handlers map users to DTOs.
type User struct {
	Base
	Email             string           `json:"email"`
	PasswordHash      string           `json:"passwordHash,omitempty"`
	Name              string           `json:"name"`
	Role              Role             `json:"role"`
	AuthProvider      AuthProvider     `json:"authProvider"`
	Bio               string           `json:"bio,omitempty"`
	Location          string           `json:"location,omitempty"`
	Website           string           `json:"website,omitempty"`
	ProfilePicture    string           `json:"profilePicture,omitempty"`
	AvatarBlurHash    string           `json:"avatarBlurHash,omitempty"`
	AvatarColor       string           `json:"avatarColor,omitempty"`
	ProfileVisibility Visibility       `json:"profileVisibility"`
	JoinedDate        time.Time        `json:"joinedDate"`
	LastLoginAt       *time.Time       `json:"lastLoginAt,omitempty"`
	Preferences       PreferenceVector `json:"profile"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsPublic reports whether the profile is public. Missing visibility counts as public.
func (u *User) IsPublic() bool {
	return u.ProfileVisibility != VisibilityPrivate
}

// HasPassword reports whether the account can sign in with a password.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

// NormalizeEmail lowercases and trims an email address for comparison and indexing.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
