package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/vidora/vidora/internal/interface/http"
	"github.com/vidora/vidora/internal/interface/middleware"
	"github.com/vidora/vidora/pkg/helpers"
)

// VideoModule wires the minimal publish/view surface.
type VideoModule struct {
	Handler *handlers.VideoHandler
	JWT     *helpers.JWTManager
}

func NewVideoModule(h *handlers.VideoHandler, jwt *helpers.JWTManager) *VideoModule {
	return &VideoModule{Handler: h, JWT: jwt}
}

func (m *VideoModule) Register(rg *gin.RouterGroup) {
	// Listing lives under the channel path; /videos/:id would conflict
	// with a /videos/channel prefix in gin's route tree.
	rg.GET("/users/channel/:username/videos", m.Handler.ListByChannel)

	videos := rg.Group("/videos")

	// Authenticated views feed watch history; anonymous ones just count.
	videos.GET("/:id", middleware.OptionalAuth(m.JWT), m.Handler.Get)
	videos.POST("", middleware.Auth(m.JWT), m.Handler.Publish)
}
