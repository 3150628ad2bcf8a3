package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/tooldexapp/tooldex-server/internal/api"
	"github.com/tooldexapp/tooldex-server/internal/config"
	"github.com/tooldexapp/tooldex-server/internal/logger"
	"github.com/tooldexapp/tooldex-server/internal/service"
)

// HTTPServerHandle wraps the API server with Shutdownable.
type HTTPServerHandle struct {
	*api.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP API server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	services := &api.Services{
		Auth:      do.MustInvoke[*service.AuthService](i),
		Session:   do.MustInvoke[*service.SessionService](i),
		Tool:      do.MustInvoke[*service.ToolService](i),
		Review:    do.MustInvoke[*service.ReviewService](i),
		Category:  do.MustInvoke[*service.CategoryService](i),
		Search:    do.MustInvoke[*service.SearchService](i),
		Analytics: do.MustInvoke[*service.AnalyticsService](i),
		Media:     do.MustInvoke[*service.MediaService](i),
		Preview:   do.MustInvoke[*service.PreviewService](i),
	}

	srv := api.NewServer(cfg, storeHandle.Store, services, log.Logger)

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", ":"+cfg.Server.Port)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", ":"+cfg.Server.Port)

	return &HTTPServerHandle{Server: srv}, nil
}
