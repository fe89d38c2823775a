package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elewand/elewand-server/internal/domain"
	domainerrors "github.com/elewand/elewand-server/internal/errors"
	"github.com/elewand/elewand-server/internal/media/images"
	"github.com/elewand/elewand-server/internal/store"
)

func setupProfiles(t *testing.T) (*ProfileService, *store.Store) {
	t.Helper()
	s := setupTestStore(t)
	avatars, err := images.NewStorage(t.TempDir(), "avatars")
	require.NoError(t, err)
	return NewProfileService(s, avatars, newValidator(), testLogger()), s
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for x := range 16 {
		for y := range 16 {
			img.Set(x, y, color.RGBA{R: uint8(x * 16), G: uint8(y * 16), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestGetProfile_Visibility(t *testing.T) {
	svc, s := setupProfiles(t)
	ctx := context.Background()

	owner := createTestUser(t, s, "usr-owner", "owner@example.com")
	stranger := createTestUser(t, s, "usr-stranger", "stranger@example.com")
	admin := createTestUser(t, s, "usr-admin", "admin@example.com")
	admin.Role = domain.RoleAdmin

	p, err := svc.GetProfile(ctx, stranger, owner.ID)
	require.NoError(t, err)
	assert.False(t, p.IncludeEmail)

	p, err = svc.GetProfile(ctx, owner, owner.ID)
	require.NoError(t, err)
	assert.True(t, p.IncludeEmail)

	private := "private"
	_, err = svc.UpdateProfile(ctx, owner.ID, UpdateProfileRequest{ProfileVisibility: &private})
	require.NoError(t, err)

	_, err = svc.GetProfile(ctx, stranger, owner.ID)
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)

	p, err = svc.GetProfile(ctx, admin, owner.ID)
	require.NoError(t, err)
	assert.True(t, p.IncludeEmail)

	_, err = svc.GetProfile(ctx, owner, "usr-missing")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestUpdateProfile(t *testing.T) {
	svc, s := setupProfiles(t)
	ctx := context.Background()
	u := createTestUser(t, s, "usr-1", "one@example.com")
	_, err := s.UpdateUser(ctx, u.ID, func(u *domain.User) error {
		u.Preferences = domain.PreferenceVector{CrimeThriller: 2, Horror: 1}
		return nil
	})
	require.NoError(t, err)

	bio := "Reads a lot."
	website := "https://example.com"
	horror := 5
	updated, err := svc.UpdateProfile(ctx, u.ID, UpdateProfileRequest{
		Bio:     &bio,
		Website: &website,
		Profile: &PreferencesPatch{Horror: &horror},
	})
	require.NoError(t, err)

	assert.Equal(t, bio, updated.Bio)
	assert.Equal(t, website, updated.Website)
	assert.Equal(t, u.Name, updated.Name)
	assert.Equal(t, domain.PreferenceVector{CrimeThriller: 2, Horror: 5}, updated.Preferences)

	long := strings.Repeat("x", 501)
	_, err = svc.UpdateProfile(ctx, u.ID, UpdateProfileRequest{Bio: &long})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	bad := "not a url"
	_, err = svc.UpdateProfile(ctx, u.ID, UpdateProfileRequest{Website: &bad})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	vis := "friends"
	_, err = svc.UpdateProfile(ctx, u.ID, UpdateProfileRequest{ProfileVisibility: &vis})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	negative := -1
	_, err = svc.UpdateProfile(ctx, u.ID, UpdateProfileRequest{Profile: &PreferencesPatch{Fantasy: &negative}})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestProfilePicture(t *testing.T) {
	svc, s := setupProfiles(t)
	ctx := context.Background()
	u := createTestUser(t, s, "usr-1", "one@example.com")
	data := testPNG(t)

	updated, err := svc.UploadPicture(ctx, u.ID, data)
	require.NoError(t, err)
	assert.Equal(t, "/avatars/usr-1?v="+images.ContentHash(data)[:8], updated.ProfilePicture)
	assert.NotEmpty(t, updated.AvatarBlurHash)

	stored, mime, err := svc.Avatar(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, data, stored)
	assert.Equal(t, "image/png", mime)

	require.NoError(t, svc.DeletePicture(ctx, u.ID))
	require.NoError(t, svc.DeletePicture(ctx, u.ID), "deleting twice is fine")

	after, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, after.ProfilePicture)
	assert.Empty(t, after.AvatarBlurHash)

	_, _, err = svc.Avatar(ctx, u.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestProfilePicture_Rejects(t *testing.T) {
	svc, s := setupProfiles(t)
	ctx := context.Background()
	u := createTestUser(t, s, "usr-1", "one@example.com")

	_, err := svc.UploadPicture(ctx, u.ID, nil)
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = svc.UploadPicture(ctx, u.ID, []byte("plain text, not an image"))
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = svc.UploadPicture(ctx, u.ID, make([]byte, images.MaxAvatarBytes+1))
	assert.ErrorIs(t, err, domainerrors.ErrPayloadTooLarge)

	_, err = svc.UploadPicture(ctx, "usr-missing", testPNG(t))
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}
