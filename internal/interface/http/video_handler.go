package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	userapp "github.com/vidora/vidora/internal/application"
	"github.com/vidora/vidora/internal/interface/middleware"
	"github.com/vidora/vidora/pkg/response"
	"github.com/vidora/vidora/pkg/validation"
)

type VideoHandler struct {
	Svc    *userapp.VideoService
	Logger *logrus.Logger
}

func NewVideoHandler(svc *userapp.VideoService, logger *logrus.Logger) *VideoHandler {
	return &VideoHandler{Svc: svc, Logger: logger}
}

type publishRequest struct {
	Title           string `form:"title" binding:"required"`
	Description     string `form:"description"`
	DurationSeconds int    `form:"durationSeconds" binding:"omitempty,min=0"`
}

// Publish POST /videos (auth, multipart)
func (h *VideoHandler) Publish(c *gin.Context) {
	var req publishRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	in := userapp.PublishInput{
		OwnerID:         c.GetString(middleware.CtxUserIDKey),
		Title:           req.Title,
		Description:     req.Description,
		DurationSeconds: req.DurationSeconds,
	}
	if file, f, err := fileFromForm(c, "videoFile"); err == nil {
		defer f.Close()
		in.VideoFile = file
	}
	if thumb, f, err := fileFromForm(c, "thumbnail"); err == nil {
		defer f.Close()
		in.Thumbnail = thumb
	}

	v, err := h.Svc.Publish(c.Request.Context(), in)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, v, "Video published", nil)
}

// Get GET /videos/:id (public). Authenticated views land in watch history.
func (h *VideoHandler) Get(c *gin.Context) {
	v, err := h.Svc.Get(c.Request.Context(), c.Param("id"), c.GetString(middleware.CtxUserIDKey))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, v, "Video fetched", nil)
}

// ListByChannel GET /users/channel/:username/videos (public)
func (h *VideoHandler) ListByChannel(c *gin.Context) {
	videos, err := h.Svc.ListByChannel(c.Request.Context(), c.Param("username"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, videos, "Channel videos fetched", gin.H{"count": len(videos)})
}
