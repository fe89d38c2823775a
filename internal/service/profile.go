package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/elewand/elewand-server/internal/domain"
	domainerrors "github.com/elewand/elewand-server/internal/errors"
	"github.com/elewand/elewand-server/internal/media/images"
	"github.com/elewand/elewand-server/internal/store"
	"github.com/elewand/elewand-server/internal/validation"
)

// ProfileService manages public profiles and profile pictures.
type ProfileService struct {
	store     *store.Store
	avatars   *images.Storage
	validator *validation.Validator
	logger    *slog.Logger
	now       Clock
}

// NewProfileService creates a new profile service. Avatars are stored in avatars.
func NewProfileService(store *store.Store, avatars *images.Storage, validator *validation.Validator, logger *slog.Logger) *ProfileService {
	return &ProfileService{store: store, avatars: avatars, validator: validator, logger: logger, now: time.Now}
}

// Profile is a user as seen by a particular viewer.
// IncludeEmail is set when the viewer is the owner or an admin.
type Profile struct {
	User         *domain.User
	IncludeEmail bool
}

// PreferencesPatch updates individual dimensions of the preference vector.
type PreferencesPatch struct {
	CrimeThriller *int `json:"crimeThriller,omitempty" validate:"omitempty,gte=0"`
	Horror        *int `json:"horror,omitempty" validate:"omitempty,gte=0"`
	Fantasy       *int `json:"fantasy,omitempty" validate:"omitempty,gte=0"`
	Philosophy    *int `json:"philosophy,omitempty" validate:"omitempty,gte=0"`
}

func (p PreferencesPatch) merge(v domain.PreferenceVector) domain.PreferenceVector {
	set := func(dst *int, src *int) {
		if src != nil {
			*dst = *src
		}
	}
	set(&v.CrimeThriller, p.CrimeThriller)
	set(&v.Horror, p.Horror)
	set(&v.Fantasy, p.Fantasy)
	set(&v.Philosophy, p.Philosophy)
	return v
}

// UpdateProfileRequest is a partial profile update.
type UpdateProfileRequest struct {
	Name              *string           `json:"name,omitempty" validate:"omitempty,notblank,max=100"`
	Bio               *string           `json:"bio,omitempty" validate:"omitempty,max=500"`
	Location          *string           `json:"location,omitempty" validate:"omitempty,max=100"`
	Website           *string           `json:"website,omitempty" validate:"omitempty,url,max=2048"`
	ProfileVisibility *string           `json:"profileVisibility,omitempty" validate:"omitempty,oneof=public private"`
	Profile           *PreferencesPatch `json:"profile,omitempty"`
}

// GetProfile returns userID's profile as seen by viewer.
// Private profiles are visible only to their owner and to admins.
func (s *ProfileService) GetProfile(ctx context.Context, viewer *domain.User, userID string) (*Profile, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, notFound(err, "user not found")
	}

	privileged := viewer != nil && (viewer.ID == user.ID || viewer.IsAdmin())
	if !user.IsPublic() && !privileged {
		return nil, domainerrors.Forbidden("this profile is private")
	}
	return &Profile{User: user, IncludeEmail: privileged}, nil
}

// UpdateProfile applies a partial update. Preference dimensions are merged into the stored vector.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*domain.User, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.store.UpdateUser(ctx, userID, func(u *domain.User) error {
		if req.Name != nil {
			u.Name = strings.TrimSpace(*req.Name)
		}
		if req.Bio != nil {
			u.Bio = strings.TrimSpace(*req.Bio)
		}
		if req.Location != nil {
			u.Location = strings.TrimSpace(*req.Location)
		}
		if req.Website != nil {
			u.Website = strings.TrimSpace(*req.Website)
		}
		if req.ProfileVisibility != nil {
			u.ProfileVisibility = domain.Visibility(*req.ProfileVisibility)
		}
		if u.ProfileVisibility == "" {
			u.ProfileVisibility = domain.VisibilityPublic
		}
		if req.Profile != nil {
			u.Preferences = req.Profile.merge(u.Preferences)
		}
		return nil
	})
	if err != nil {
		return nil, notFound(err, "user not found")
	}

	s.logger.Info("profile updated", "user_id", userID)
	return user, nil
}

// UploadPicture replaces the user's profile picture with data.
// The image type is sniffed from the bytes; the declared content type is ignored.
func (s *ProfileService) UploadPicture(ctx context.Context, userID string, data []byte) (*domain.User, error) {
	if _, err := images.Detect(data); err != nil {
		switch {
		case errors.Is(err, images.ErrImageTooLarge):
			return nil, domainerrors.PayloadTooLarge("profile picture must be at most 5 MiB")
		case errors.Is(err, images.ErrEmptyImage):
			return nil, domainerrors.Validation("no image uploaded")
		default:
			return nil, domainerrors.Validation("only JPEG, PNG, GIF and WebP images are allowed")
		}
	}

	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return nil, notFound(err, "user not found")
	}

	blurHash, err := images.ComputeBlurHash(data)
	if err != nil {
		// A missing placeholder is cosmetic; keep the upload.
		s.logger.Warn("failed to compute avatar blurhash", "user_id", userID, "error", err)
	}

	// Save overwrites the previous file, so the old picture is replaced in place.
	if err := s.avatars.Save(userID, data); err != nil {
		return nil, fmt.Errorf("save avatar: %w", err)
	}

	url := avatarURL(userID, images.ContentHash(data))
	user, err := s.store.UpdateUser(ctx, userID, func(u *domain.User) error {
		u.ProfilePicture = url
		u.AvatarBlurHash = blurHash
		return nil
	})
	if err != nil {
		return nil, notFound(err, "user not found")
	}

	s.logger.Info("profile picture uploaded", "user_id", userID, "bytes", len(data))
	return user, nil
}

// DeletePicture removes the profile picture. Deleting a missing picture succeeds.
func (s *ProfileService) DeletePicture(ctx context.Context, userID string) error {
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return notFound(err, "user not found")
	}
	if err := s.avatars.Delete(userID); err != nil {
		return fmt.Errorf("delete avatar: %w", err)
	}
	_, err := s.store.UpdateUser(ctx, userID, func(u *domain.User) error {
		u.ProfilePicture = ""
		u.AvatarBlurHash = ""
		return nil
	})
	return notFound(err, "user not found")
}

// Avatar returns the stored profile picture bytes and their MIME type.
func (s *ProfileService) Avatar(_ context.Context, userID string) ([]byte, string, error) {
	data, err := s.avatars.Get(userID)
	if err != nil {
		if errors.Is(err, images.ErrNotFound) {
			return nil, "", domainerrors.NotFound("avatar not found")
		}
		return nil, "", fmt.Errorf("read avatar: %w", err)
	}
	mime, err := images.Detect(data)
	if err != nil {
		mime = "application/octet-stream"
	}
	return data, mime, nil
}

// avatarURL versions the URL with the content hash so clients refetch after a change.
func avatarURL(userID, hash string) string {
	if len(hash) > 8 {
		hash = hash[:8]
	}
	return "/avatars/" + userID + "?v=" + hash
}
