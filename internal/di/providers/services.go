package providers

import (
	"github.com/samber/do/v2"

	"github.com/tooldexapp/tooldex-server/internal/auth"
	"github.com/tooldexapp/tooldex-server/internal/logger"
	"github.com/tooldexapp/tooldex-server/internal/media/images"
	"github.com/tooldexapp/tooldex-server/internal/service"
	"github.com/tooldexapp/tooldex-server/internal/validation"
)

// ProvideValidator provides the request validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideSessionService provides the session management service.
func ProvideSessionService(i do.Injector) (*service.SessionService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSessionService(storeHandle.Store, tokenService, log.Logger), nil
}

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	sessionService := do.MustInvoke[*service.SessionService](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(storeHandle.Store, tokenService, sessionService, validator, log.Logger), nil
}

// ProvideToolService provides the tool directory service.
func ProvideToolService(i do.Injector) (*service.ToolService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	eventLogHandle := do.MustInvoke[*EventLogHandle](i)
	searchService := do.MustInvoke[*service.SearchService](i)
	mediaStorage := do.MustInvoke[*images.Storage](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewToolService(
		storeHandle.Store,
		eventLogHandle.Store,
		searchService,
		mediaStorage,
		validator,
		log.Logger,
	), nil
}

// ProvideReviewService provides the review service.
func ProvideReviewService(i do.Injector) (*service.ReviewService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	searchService := do.MustInvoke[*service.SearchService](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewReviewService(storeHandle.Store, searchService, validator, log.Logger), nil
}

// ProvideCategoryService provides the category service.
func ProvideCategoryService(i do.Injector) (*service.CategoryService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCategoryService(storeHandle.Store, validator, log.Logger), nil
}

// ProvideAnalyticsService provides the analytics service.
func ProvideAnalyticsService(i do.Injector) (*service.AnalyticsService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	eventLogHandle := do.MustInvoke[*EventLogHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAnalyticsService(storeHandle.Store, eventLogHandle.Store, log.Logger), nil
}

// ProvideMediaService provides the tool media service.
func ProvideMediaService(i do.Injector) (*service.MediaService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	processor := do.MustInvoke[*images.Processor](i)
	storage := do.MustInvoke[*images.Storage](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewMediaService(storeHandle.Store, processor, storage, log.Logger), nil
}

// ProvidePreviewService provides the site preview service.
func ProvidePreviewService(i do.Injector) (*service.PreviewService, error) {
	clientHandle := do.MustInvoke[*PreviewClientHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewPreviewService(clientHandle.Client, log.Logger), nil
}
