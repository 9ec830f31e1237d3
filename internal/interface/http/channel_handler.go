package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	userapp "github.com/vidora/vidora/internal/application"
	"github.com/vidora/vidora/internal/interface/middleware"
	"github.com/vidora/vidora/pkg/response"
)

type ChannelHandler struct {
	Svc    *userapp.ChannelService
	Logger *logrus.Logger
}

func NewChannelHandler(svc *userapp.ChannelService, logger *logrus.Logger) *ChannelHandler {
	return &ChannelHandler{Svc: svc, Logger: logger}
}

// Profile GET /users/channel/:username (public). is_subscribed is
// personalized when the request carries a valid access token.
func (h *ChannelHandler) Profile(c *gin.Context) {
	p, err := h.Svc.Profile(c.Request.Context(), c.Param("username"), c.GetString(middleware.CtxUserIDKey))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, p, "Channel profile fetched", nil)
}

// ToggleSubscription POST /users/channel/:username/subscribe (auth)
func (h *ChannelHandler) ToggleSubscription(c *gin.Context) {
	subscribed, err := h.Svc.ToggleSubscription(c.Request.Context(),
		c.GetString(middleware.CtxUserIDKey), c.Param("username"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	msg := "Subscribed"
	if !subscribed {
		msg = "Unsubscribed"
	}
	response.Success(c, http.StatusOK, gin.H{"subscribed": subscribed}, msg, nil)
}

// WatchHistory GET /users/watch-history (auth)
func (h *ChannelHandler) WatchHistory(c *gin.Context) {
	entries, err := h.Svc.WatchHistory(c.Request.Context(), c.GetString(middleware.CtxUserIDKey))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, entries, "Watch history fetched", gin.H{"count": len(entries)})
}
