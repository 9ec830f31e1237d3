package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/vidora/vidora/internal/interface/http"
	"github.com/vidora/vidora/internal/interface/middleware"
	"github.com/vidora/vidora/pkg/helpers"
)

// UserModule wires the auth/session and profile routes.
// Public: register, login, refresh-token.
// Protected: logout, change-password, current, account, avatar, cover-image.
type UserModule struct {
	Handler *handlers.UserHandler
	JWT     *helpers.JWTManager
}

func NewUserModule(h *handlers.UserHandler, jwt *helpers.JWTManager) *UserModule {
	return &UserModule{Handler: h, JWT: jwt}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	users := rg.Group("/users")

	users.POST("/register", m.Handler.Register)
	users.POST("/login", m.Handler.Login)
	users.POST("/refresh-token", m.Handler.Refresh)

	auth := users.Group("/")
	auth.Use(middleware.Auth(m.JWT))
	{
		auth.POST("/logout", m.Handler.Logout)
		auth.PATCH("/change-password", m.Handler.ChangePassword)
		auth.GET("/current", m.Handler.Current)
		auth.PATCH("/account", m.Handler.UpdateAccount)
		auth.PATCH("/avatar", m.Handler.UpdateAvatar)
		auth.PATCH("/cover-image", m.Handler.UpdateCoverImage)
	}
}
