package handlers

import (
	"context"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/vidora/vidora/config"
	userapp "github.com/vidora/vidora/internal/application"
	"github.com/vidora/vidora/internal/domain/entity"
	"github.com/vidora/vidora/internal/infrastructure/postgres"
	"github.com/vidora/vidora/internal/interface/middleware"
	"github.com/vidora/vidora/pkg/apperr"
	"github.com/vidora/vidora/pkg/helpers"
	"github.com/vidora/vidora/pkg/mailer"
	mailtpl "github.com/vidora/vidora/pkg/mailer/templates"
	"github.com/vidora/vidora/pkg/response"
	"github.com/vidora/vidora/pkg/validation"
)

type UserHandler struct {
	Svc     *userapp.Service
	Logger  *logrus.Logger
	Cookies *helpers.Manager
	Audit   *postgres.AuditLog
	Pub     *helpers.RabbitPublisher
	Cfg     *config.Config
}

func NewUserHandler(svc *userapp.Service, logger *logrus.Logger, cookies *helpers.Manager, audit *postgres.AuditLog, pub *helpers.RabbitPublisher, cfg *config.Config) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger, Cookies: cookies, Audit: audit, Pub: pub, Cfg: cfg}
}

type registerRequest struct {
	FullName string `form:"fullName" json:"full_name" binding:"required"`
	Email    string `form:"email" json:"email" binding:"required,email"`
	Password string `form:"password" json:"password" binding:"required"`
	Username string `form:"username" json:"username" binding:"required"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required_without=Email"`
	Email    string `json:"email" binding:"required_without=Username,omitempty,email"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

type updateAccountRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email" binding:"omitempty,email"`
}

// credentialFailure reports whether a login error was a credential
// rejection (bad password, unknown user) as opposed to a malformed
// request. Only credential rejections belong in the audit log.
func credentialFailure(err error) bool {
	k := apperr.From(err).Kind
	return k == apperr.KindUnauthorized || k == apperr.KindNotFound
}

func clientIP(c *gin.Context) string {
	if ip := c.GetString("real_ip"); ip != "" {
		return ip
	}
	return c.ClientIP()
}

func (h *UserHandler) audit(c *gin.Context, userID, email, action string, metadata map[string]any) {
	if h.Audit == nil {
		return
	}
	h.Audit.Record(c.Request.Context(), postgres.AuditEvent{
		UserID:    userID,
		Email:     email,
		Action:    action,
		IP:        clientIP(c),
		UserAgent: c.GetHeader("User-Agent"),
		Metadata:  metadata,
	})
}

func (h *UserHandler) enqueueEmail(c *gin.Context, job mailer.EmailJob) {
	if h.Pub == nil || h.Cfg == nil || !h.Cfg.MailSendEnabled {
		return
	}
	if err := h.Pub.PublishJSON(c.Request.Context(), job); err != nil && h.Logger != nil {
		h.Logger.WithError(err).WithField("template", job.Template).Warn("email enqueue failed")
	}
}

// fileFromForm converts an optional multipart file into a FileUpload.
// The caller owns closing the returned closer when non-nil.
func fileFromForm(c *gin.Context, field string) (*userapp.FileUpload, multipart.File, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, nil, err
	}
	f, err := fh.Open()
	if err != nil {
		return nil, nil, err
	}
	return &userapp.FileUpload{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Reader:      f,
	}, f, nil
}

// Register POST /users/register (multipart)
func (h *UserHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	in := userapp.RegisterInput{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
		Username: req.Username,
	}
	if avatar, f, err := fileFromForm(c, "avatar"); err == nil {
		defer f.Close()
		in.Avatar = avatar
	}
	if cover, f, err := fileFromForm(c, "coverImage"); err == nil {
		defer f.Close()
		in.Cover = cover
	}

	u, err := h.Svc.Register(c.Request.Context(), in)
	if err != nil {
		response.FromError(c, err)
		return
	}
	h.audit(c, u.ID, u.Email, postgres.AuditRegister, nil)
	h.enqueueEmail(c, mailer.EmailJob{
		To:       u.Email,
		Template: mailer.TemplateWelcome,
		Data:     mailtpl.WelcomeData(u.FullName, u.Username),
	})
	response.Success(c, http.StatusCreated, u, "User registered successfully", nil)
}

// Login POST /users/login
func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	u, pair, err := h.Svc.Login(c.Request.Context(), userapp.LoginInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if credentialFailure(err) {
			h.audit(c, "", req.Email, postgres.AuditLoginFailed, map[string]any{"username": req.Username})
		}
		response.FromError(c, err)
		return
	}

	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	h.audit(c, u.ID, u.Email, postgres.AuditLogin, nil)
	h.enqueueEmail(c, mailer.EmailJob{
		To:       u.Email,
		Template: mailer.TemplateLoginNotice,
		Data:     mailtpl.LoginNoticeData(u.FullName, u.Username, clientIP(c), c.GetHeader("User-Agent"), time.Now()),
	})
	response.Success(c, http.StatusOK, gin.H{
		"user":          u,
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	}, "User logged in successfully", gin.H{
		"access_expires_at":  pair.AccessTokenExpiry,
		"refresh_expires_at": pair.RefreshTokenExpiry,
	})
}

// Logout POST /users/logout (auth)
func (h *UserHandler) Logout(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	if err := h.Svc.Logout(c.Request.Context(), uid); err != nil {
		response.FromError(c, err)
		return
	}
	h.Cookies.Clear(c)
	h.audit(c, uid, "", postgres.AuditLogout, nil)
	response.Success[any](c, http.StatusOK, gin.H{"logged_out": true}, "User logged out", nil)
}

// Refresh POST /users/refresh-token. Token comes from the cookie or body.
func (h *UserHandler) Refresh(c *gin.Context) {
	presented, _ := c.Cookie(helpers.RefreshCookie)
	if presented == "" {
		var req refreshRequest
		if err := c.ShouldBindJSON(&req); err == nil {
			presented = req.RefreshToken
		}
	}

	u, pair, err := h.Svc.Refresh(c.Request.Context(), presented)
	if err != nil {
		h.audit(c, "", "", postgres.AuditRefreshRejected, nil)
		response.FromError(c, err)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	h.audit(c, u.ID, u.Email, postgres.AuditRefresh, nil)
	response.Success(c, http.StatusOK, gin.H{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	}, "Access token refreshed", gin.H{
		"access_expires_at":  pair.AccessTokenExpiry,
		"refresh_expires_at": pair.RefreshTokenExpiry,
	})
}

// ChangePassword PATCH /users/change-password (auth)
func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	uid := c.GetString(middleware.CtxUserIDKey)
	if err := h.Svc.ChangePassword(c.Request.Context(), uid, req.OldPassword, req.NewPassword); err != nil {
		response.FromError(c, err)
		return
	}
	h.audit(c, uid, "", postgres.AuditPasswordChange, nil)
	response.Success[any](c, http.StatusOK, gin.H{"changed": true}, "Password changed successfully", nil)
}

// Current GET /users/current (auth)
func (h *UserHandler) Current(c *gin.Context) {
	u, err := h.Svc.CurrentUser(c.Request.Context(), c.GetString(middleware.CtxUserIDKey))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, u, "Current user", nil)
}

// UpdateAccount PATCH /users/account (auth)
func (h *UserHandler) UpdateAccount(c *gin.Context) {
	var req updateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Svc.UpdateAccount(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), req.FullName, req.Email)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, u, "Account details updated", nil)
}

// UpdateAvatar PATCH /users/avatar (auth, multipart)
func (h *UserHandler) UpdateAvatar(c *gin.Context) {
	h.updateImage(c, "avatar", h.Svc.UpdateAvatar)
}

// UpdateCoverImage PATCH /users/cover-image (auth, multipart)
func (h *UserHandler) UpdateCoverImage(c *gin.Context) {
	h.updateImage(c, "coverImage", h.Svc.UpdateCoverImage)
}

func (h *UserHandler) updateImage(c *gin.Context, field string, update func(context.Context, string, userapp.FileUpload) (*entity.User, error)) {
	file, f, err := fileFromForm(c, field)
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", map[string]string{field: "file is required"})
		return
	}
	defer f.Close()

	u, err := update(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), *file)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, u, "Image updated successfully", nil)
}
