package providers

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/elewand/elewand-server/internal/config"
	"github.com/elewand/elewand-server/internal/logger"
	"github.com/elewand/elewand-server/internal/media/images"
)

// AvatarStorage is the on-disk store for profile pictures.
type AvatarStorage struct {
	*images.Storage
}

// ProvideAvatarStorage provides the profile picture storage.
func ProvideAvatarStorage(i do.Injector) (*AvatarStorage, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	avatars, err := images.NewStorage(cfg.Data.BasePath, "avatars")
	if err != nil {
		return nil, fmt.Errorf("avatar storage: %w", err)
	}

	log.Info("Avatar storage initialized")

	return &AvatarStorage{Storage: avatars}, nil
}
