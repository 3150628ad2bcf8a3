package providers

import (
	"github.com/samber/do/v2"

	"github.com/tooldexapp/tooldex-server/internal/config"
	"github.com/tooldexapp/tooldex-server/internal/logger"
	"github.com/tooldexapp/tooldex-server/internal/metadata/sitepreview"
)

// PreviewClientHandle wraps the site preview client with shutdown capability.
type PreviewClientHandle struct {
	*sitepreview.Client
}

// Shutdown implements do.Shutdownable.
func (h *PreviewClientHandle) Shutdown() error {
	h.Close()
	return nil
}

// ProvidePreviewClient provides the outbound site preview fetcher.
func ProvidePreviewClient(i do.Injector) (*PreviewClientHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	client := sitepreview.New(log.Logger,
		sitepreview.WithTimeout(cfg.Preview.FetchTimeout),
		sitepreview.WithMaxBody(cfg.Preview.MaxBodyBytes),
	)

	return &PreviewClientHandle{Client: client}, nil
}
