package router

import (
	userapp "github.com/vidora/vidora/internal/application"
	"github.com/vidora/vidora/internal/container"
	"github.com/vidora/vidora/internal/infrastructure/media"
	pginfra "github.com/vidora/vidora/internal/infrastructure/postgres"
	handlers "github.com/vidora/vidora/internal/interface/http"
	"github.com/vidora/vidora/internal/router/modules"
	"github.com/vidora/vidora/pkg/helpers"
)

// InitModules initializes all application modules and registers them
// with the router registry. Called once during startup after the
// container singletons are set.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	pool := container.GetPGPool()

	userRepo := pginfra.NewUserRepository(pool)
	videoRepo := pginfra.NewVideoRepository(pool)
	channelQuery := pginfra.NewChannelQuery(pool)
	audit := pginfra.NewAuditLog(pool, logger)
	uploader := media.NewGCSUploader(container.GetGCS(), cfg.GCSBucket)
	cookies := helpers.NewCookie(cfg.CookieDomain, cfg.CookieSecure)

	userSvc := userapp.NewService(userRepo, container.GetJWT(), uploader, logger)
	channelSvc := userapp.NewChannelService(userRepo, channelQuery, container.GetRedis(), logger)
	videoSvc := userapp.NewVideoService(videoRepo, userRepo, uploader, logger)

	userHandler := handlers.NewUserHandler(userSvc, logger, cookies, audit, container.GetRabbitPub(), cfg)
	channelHandler := handlers.NewChannelHandler(channelSvc, logger)
	videoHandler := handlers.NewVideoHandler(videoSvc, logger)

	r.Add(modules.NewUserModule(userHandler, container.GetJWT()))
	r.Add(modules.NewChannelModule(channelHandler, container.GetJWT()))
	r.Add(modules.NewVideoModule(videoHandler, container.GetJWT()))
}
