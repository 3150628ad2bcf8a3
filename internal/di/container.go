// Package di provides dependency injection configuration for the Tooldex server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/tooldexapp/tooldex-server/internal/auth"
	"github.com/tooldexapp/tooldex-server/internal/config"
	"github.com/tooldexapp/tooldex-server/internal/di/providers"
	"github.com/tooldexapp/tooldex-server/internal/logger"
	"github.com/tooldexapp/tooldex-server/internal/media/images"
	"github.com/tooldexapp/tooldex-server/internal/service"
	"github.com/tooldexapp/tooldex-server/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideSlogLogger)
	do.Provide(injector, providers.ProvideAuthKey)
	do.Provide(injector, providers.ProvideValidator)

	// Database layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideEventLog)

	// Storage layer
	do.Provide(injector, providers.ProvideMediaStorage)
	do.Provide(injector, providers.ProvideImageProcessor)

	// Search layer
	do.Provide(injector, providers.ProvideSearchIndex)
	do.Provide(injector, providers.ProvideSearchService)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)

	// Outbound clients
	do.Provide(injector, providers.ProvidePreviewClient)

	// Business services
	do.Provide(injector, providers.ProvideSessionService)
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvideToolService)
	do.Provide(injector, providers.ProvideReviewService)
	do.Provide(injector, providers.ProvideCategoryService)
	do.Provide(injector, providers.ProvideAnalyticsService)
	do.Provide(injector, providers.ProvideMediaService)
	do.Provide(injector, providers.ProvidePreviewService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	// Invoke core services to trigger initialization
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[providers.AuthKey](injector)
	_ = do.MustInvoke[*validation.Validator](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.EventLogHandle](injector)
	_ = do.MustInvoke[*images.Storage](injector)
	_ = do.MustInvoke[*images.Processor](injector)
	_ = do.MustInvoke[*providers.SearchIndexHandle](injector)
	_ = do.MustInvoke[*service.SearchService](injector)
	_ = do.MustInvoke[*auth.TokenService](injector)
	_ = do.MustInvoke[*providers.PreviewClientHandle](injector)

	// Business services
	_ = do.MustInvoke[*service.SessionService](injector)
	_ = do.MustInvoke[*service.AuthService](injector)
	_ = do.MustInvoke[*service.ToolService](injector)
	_ = do.MustInvoke[*service.ReviewService](injector)
	_ = do.MustInvoke[*service.CategoryService](injector)
	_ = do.MustInvoke[*service.AnalyticsService](injector)
	_ = do.MustInvoke[*service.MediaService](injector)
	_ = do.MustInvoke[*service.PreviewService](injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	// Trigger search reindex if needed
	providers.TriggerSearchReindexIfNeeded(injector)

	return nil
}
