package providers

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/tooldexapp/tooldex-server/internal/config"
	"github.com/tooldexapp/tooldex-server/internal/logger"
	"github.com/tooldexapp/tooldex-server/internal/media/images"
)

// ProvideMediaStorage provides the on-disk storage for tool images.
func ProvideMediaStorage(i do.Injector) (*images.Storage, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	storage, err := images.NewStorage(cfg.Media.BasePath)
	if err != nil {
		return nil, fmt.Errorf("media storage: %w", err)
	}

	log.Info("Media storage initialized", "path", cfg.Media.BasePath)

	return storage, nil
}

// ProvideImageProcessor provides the image processor for logos and screenshots.
func ProvideImageProcessor(i do.Injector) (*images.Processor, error) {
	storage := do.MustInvoke[*images.Storage](i)
	log := do.MustInvoke[*logger.Logger](i)

	return images.NewProcessor(storage, log.Logger), nil
}
