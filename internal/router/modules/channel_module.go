package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/vidora/vidora/internal/interface/http"
	"github.com/vidora/vidora/internal/interface/middleware"
	"github.com/vidora/vidora/pkg/helpers"
)

// ChannelModule wires the aggregate/query routes: channel profiles,
// the subscriber edge toggle and watch history.
type ChannelModule struct {
	Handler *handlers.ChannelHandler
	JWT     *helpers.JWTManager
}

func NewChannelModule(h *handlers.ChannelHandler, jwt *helpers.JWTManager) *ChannelModule {
	return &ChannelModule{Handler: h, JWT: jwt}
}

func (m *ChannelModule) Register(rg *gin.RouterGroup) {
	users := rg.Group("/users")

	// Public profile lookup; OptionalAuth personalizes is_subscribed.
	users.GET("/channel/:username", middleware.OptionalAuth(m.JWT), m.Handler.Profile)

	auth := users.Group("/")
	auth.Use(middleware.Auth(m.JWT))
	{
		auth.POST("/channel/:username/subscribe", m.Handler.ToggleSubscription)
		auth.GET("/watch-history", m.Handler.WatchHistory)
	}
}
