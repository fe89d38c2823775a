package api

import "github.com/elewand/elewand-server/internal/media/images"

// API limits and constants.
const (
	// MaxAvatarUploadSize bounds profile picture uploads.
	MaxAvatarUploadSize = images.MaxAvatarBytes
)

// Cache-Control header values.
const (
	// Avatar URLs carry a content hash, so a changed picture gets a new URL.
	CacheOneWeek = "public, max-age=604800"
	CacheNoStore = "no-cache"
)

// Operation tags.
const (
	tagHealth      = "Health"
	tagAuth        = "Auth"
	tagBrowse      = "Browse"
	tagLibrary     = "Library"
	tagShelves     = "Shelves"
	tagRatings     = "Ratings"
	tagProfile     = "Profile"
	tagActivity    = "Activity"
	tagAdmin       = "Admin"
	securityBearer = "bearer"
)

// bearer is the security requirement for authenticated operations.
var bearer = []map[string][]string{{securityBearer: {}}}
