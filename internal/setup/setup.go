package setup

import (
	"github.com/foodbridge-dev/foodbridge/internal/config"
	"github.com/foodbridge-dev/foodbridge/internal/handler"
	"github.com/foodbridge-dev/foodbridge/internal/jwt"
	"github.com/foodbridge-dev/foodbridge/internal/live"
	"github.com/foodbridge-dev/foodbridge/internal/middleware"
	"github.com/foodbridge-dev/foodbridge/internal/service"
	"github.com/foodbridge-dev/foodbridge/internal/storage/pg"
	"github.com/foodbridge-dev/foodbridge/internal/utils"
)

// Dependencies holds all initialized application components.
type Dependencies struct {
	Storage        *pg.Storage
	Broker         *live.Broker
	Handler        *handler.Handler
	Jwt            jwt.JwtService
	AuthMiddleware *middleware.Auth
	BlockedCache   *service.BlockedCache
	Config         *config.Config
}

// SetupDependencies initializes all dependencies required for the application.
// The store handle is constructed here and injected everywhere; there is no
// ambient global database.
func SetupDependencies(cfg *config.Config) (*Dependencies, error) {
	broker := live.NewBroker()

	storage, err := pg.New(cfg, broker)
	if err != nil {
		return nil, err
	}

	// The single administrator account exists from startup, pre-verified.
	if err := storage.EnsureAdmin(cfg.Private.Admin.Name, cfg.Private.Admin.Email, cfg.Private.Admin.Password); err != nil {
		return nil, err
	}

	blockedCache := service.NewBlockedCache(storage)
	if err := blockedCache.Update(); err != nil {
		return nil, err
	}

	jwtService := jwt.New(cfg.JwtKey(), cfg.JwtTTL())

	auth := service.NewAuth(storage, &utils.RegistrationValidator{}, jwtService)
	moderation := service.NewModeration(storage, blockedCache, broker)
	posts := service.NewPost(storage, &utils.PostValidator{}, broker)
	requests := service.NewRequest(storage)
	chat := service.NewChat(storage, utils.NewContentValidator(cfg.Public.MaxMessageLength), broker)

	h := handler.New(auth, moderation, posts, requests, chat, cfg)
	authMw := middleware.NewAuth(jwtService, blockedCache)

	return &Dependencies{
		Storage:        storage,
		Broker:         broker,
		Handler:        h,
		Jwt:            jwtService,
		AuthMiddleware: authMw,
		BlockedCache:   blockedCache,
		Config:         cfg,
	}, nil
}
