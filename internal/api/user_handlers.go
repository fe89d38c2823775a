package api

import (
	"time"

	"github.com/elewand/elewand-server/internal/domain"
)

// UserResponse is a user as returned by the API. It never carries the password hash.
type UserResponse struct {
	ID                string                  `json:"id" doc:"User ID"`
	Email             string                  `json:"email,omitempty" doc:"Email, shown to the owner and admins"`
	Name              string                  `json:"name" doc:"Display name"`
	Role              domain.Role             `json:"role" doc:"user or admin"`
	AuthProvider      domain.AuthProvider     `json:"authProvider" doc:"password or google"`
	Bio               string                  `json:"bio,omitempty"`
	Location          string                  `json:"location,omitempty"`
	Website           string                  `json:"website,omitempty"`
	ProfilePicture    string                  `json:"profilePicture,omitempty" doc:"Avatar URL"`
	AvatarBlurHash    string                  `json:"avatarBlurHash,omitempty" doc:"BlurHash placeholder for the avatar"`
	AvatarColor       string                  `json:"avatarColor,omitempty"`
	ProfileVisibility domain.Visibility       `json:"profileVisibility" doc:"public or private"`
	Profile           domain.PreferenceVector `json:"profile" doc:"Genre preference vector"`
	JoinedDate        time.Time               `json:"joinedDate"`
	LastLoginAt       *time.Time              `json:"lastLoginAt,omitempty"`
	UpdatedAt         time.Time               `json:"updatedAt"`
}

// newUserResponse maps a user, including the email only when withEmail is set.
func newUserResponse(u *domain.User, withEmail bool) UserResponse {
	resp := UserResponse{
		ID:                u.ID,
		Name:              u.Name,
		Role:              u.Role,
		AuthProvider:      u.AuthProvider,
		Bio:               u.Bio,
		Location:          u.Location,
		Website:           u.Website,
		ProfilePicture:    u.ProfilePicture,
		AvatarBlurHash:    u.AvatarBlurHash,
		AvatarColor:       u.AvatarColor,
		ProfileVisibility: u.ProfileVisibility,
		Profile:           u.Preferences,
		JoinedDate:        u.JoinedDate,
		LastLoginAt:       u.LastLoginAt,
		UpdatedAt:         u.UpdatedAt,
	}
	if withEmail {
		resp.Email = u.Email
	}
	return resp
}

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message" doc:"Result message"`
}

// MessageOutput wraps a message response for Huma.
type MessageOutput struct {
	Body MessageResponse
}
