package application

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vidora/vidora/internal/domain/entity"
	"github.com/vidora/vidora/internal/domain/repository"
	"github.com/vidora/vidora/pkg/apperr"
	"github.com/vidora/vidora/pkg/helpers"
)

// Uploader is the external media store collaborator: it takes file
// bytes and returns a durable URL or fails.
type Uploader interface {
	Upload(ctx context.Context, folder, filename, contentType string, r io.Reader) (string, error)
}

// FileUpload carries one multipart file into the service layer.
type FileUpload struct {
	Name        string
	ContentType string
	Reader      io.Reader
}

// TokenPair is an issued access/refresh token pair.
type TokenPair struct {
	AccessToken        string    `json:"access_token"`
	AccessTokenExpiry  time.Time `json:"-"`
	RefreshToken       string    `json:"refresh_token"`
	RefreshTokenExpiry time.Time `json:"-"`
}

// Service is the session controller: it orchestrates register, login,
// logout, refresh and password change over the credential store and
// token issuer. It keeps no cross-request state of its own.
type Service struct {
	Repo   repository.UserRepository
	JWT    *helpers.JWTManager
	Media  Uploader
	Logger *logrus.Logger
}

func NewService(repo repository.UserRepository, jwt *helpers.JWTManager, media Uploader, logger *logrus.Logger) *Service {
	return &Service{Repo: repo, JWT: jwt, Media: media, Logger: logger}
}

type RegisterInput struct {
	FullName string
	Email    string
	Password string
	Username string
	Avatar   *FileUpload
	Cover    *FileUpload
}

// Register creates a user. Order matters: validation first (no upload
// attempted on bad input), uniqueness next (no upload on duplicate
// identity), then avatar/cover uploads, then the insert. No auto-login.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.TrimSpace(in.Email)
	in.Username = strings.ToLower(strings.TrimSpace(in.Username))

	details := map[string]string{}
	if in.FullName == "" {
		details["full_name"] = "is required"
	}
	if in.Email == "" {
		details["email"] = "is required"
	}
	if strings.TrimSpace(in.Password) == "" {
		details["password"] = "is required"
	}
	if in.Username == "" {
		details["username"] = "is required"
	}
	if in.Avatar == nil {
		details["avatar"] = "avatar file is required"
	}
	if len(details) > 0 {
		return nil, apperr.Validation("all fields are required", details)
	}

	// Uniqueness before any upload so a duplicate identity never
	// leaves an orphaned object behind.
	if existing, err := s.Repo.GetByUsernameOrEmail(ctx, in.Username, in.Email); err == nil && existing != nil {
		return nil, apperr.Conflict("user with email or username already exists")
	} else if err != nil && !isNotFound(err) {
		return nil, err
	}

	avatarURL, err := s.Media.Upload(ctx, "avatars", in.Avatar.Name, in.Avatar.ContentType, in.Avatar.Reader)
	if err != nil {
		return nil, apperr.Upload("avatar upload failed", err)
	}

	coverURL := ""
	if in.Cover != nil {
		// Cover is optional; a failed cover upload does not abort
		// registration.
		coverURL, err = s.Media.Upload(ctx, "covers", in.Cover.Name, in.Cover.ContentType, in.Cover.Reader)
		if err != nil {
			s.logWarn("cover upload failed", err, logrus.Fields{"username": in.Username})
			coverURL = ""
		}
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Internal("", err)
	}

	u := &entity.User{
		Username:      in.Username,
		Email:         in.Email,
		FullName:      in.FullName,
		Password:      hash,
		AvatarURL:     avatarURL,
		CoverImageURL: coverURL,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		return nil, err
	}

	created, err := s.Repo.GetByID(ctx, u.ID)
	if err != nil || created == nil {
		return nil, apperr.Internal("something went wrong while registering the user", err)
	}
	return created.Sanitized(), nil
}

type LoginInput struct {
	Username string
	Email    string
	Password string
}

// Login verifies credentials and issues a token pair. The refresh token
// is persisted before the pair is returned.
func (s *Service) Login(ctx context.Context, in LoginInput) (*entity.User, TokenPair, error) {
	in.Username = strings.ToLower(strings.TrimSpace(in.Username))
	in.Email = strings.TrimSpace(in.Email)

	if in.Username == "" && in.Email == "" {
		return nil, TokenPair{}, apperr.Validation("username or email is required", nil)
	}

	u, err := s.Repo.GetByUsernameOrEmail(ctx, in.Username, in.Email)
	if err != nil {
		if isNotFound(err) {
			return nil, TokenPair{}, apperr.NotFound("user does not exist")
		}
		return nil, TokenPair{}, err
	}
	if !helpers.CompareHashAndPassword(u.Password, in.Password) {
		return nil, TokenPair{}, apperr.Unauthorized("Invalid user credentials")
	}

	pair, err := s.issueTokens(ctx, u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u.Sanitized(), pair, nil
}

// Logout clears the persisted refresh token. Calling it for an already
// logged-out user is not an error.
func (s *Service) Logout(ctx context.Context, userID string) error {
	if err := s.Repo.SetRefreshToken(ctx, userID, nil); err != nil && !isNotFound(err) {
		return err
	}
	return nil
}

// Refresh rotates the session: the presented token must verify AND
// match the currently persisted one, which catches reuse of a
// rotated-out token.
func (s *Service) Refresh(ctx context.Context, presented string) (*entity.User, TokenPair, error) {
	if presented == "" {
		return nil, TokenPair{}, apperr.Unauthorized("unauthorized request")
	}
	claims, err := s.JWT.ParseRefreshToken(presented)
	if err != nil {
		return nil, TokenPair{}, apperr.Unauthorized(err.Error())
	}
	u, err := s.Repo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, TokenPair{}, apperr.Unauthorized("Invalid refresh token")
	}
	if u.RefreshToken == nil || *u.RefreshToken != presented {
		return nil, TokenPair{}, apperr.Unauthorized("Refresh token is expired or used")
	}

	pair, err := s.issueTokens(ctx, u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u.Sanitized(), pair, nil
}

// ChangePassword replaces the stored hash after verifying the old
// password. The active refresh token is left untouched.
func (s *Service) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if strings.TrimSpace(newPassword) == "" {
		return apperr.Validation("new password is required", nil)
	}
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !helpers.CompareHashAndPassword(u.Password, oldPassword) {
		return apperr.Unauthorized("Invalid old password")
	}
	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return apperr.Internal("", err)
	}
	return s.Repo.UpdatePassword(ctx, userID, hash)
}

// CurrentUser returns the sanitized record of the authenticated user.
func (s *Service) CurrentUser(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return u.Sanitized(), nil
}

// UpdateAccount updates full name and/or email.
func (s *Service) UpdateAccount(ctx context.Context, userID, fullName, email string) (*entity.User, error) {
	fullName = strings.TrimSpace(fullName)
	email = strings.TrimSpace(email)
	if fullName == "" && email == "" {
		return nil, apperr.Validation("full_name or email is required", nil)
	}
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if fullName != "" {
		u.FullName = fullName
	}
	if email != "" {
		u.Email = email
	}
	if err := s.Repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u.Sanitized(), nil
}

// UpdateAvatar uploads a new avatar and persists its URL.
func (s *Service) UpdateAvatar(ctx context.Context, userID string, file FileUpload) (*entity.User, error) {
	return s.updateImage(ctx, userID, "avatars", file, func(u *entity.User, url string) {
		u.AvatarURL = url
	})
}

// UpdateCoverImage uploads a new cover image and persists its URL.
func (s *Service) UpdateCoverImage(ctx context.Context, userID string, file FileUpload) (*entity.User, error) {
	return s.updateImage(ctx, userID, "covers", file, func(u *entity.User, url string) {
		u.CoverImageURL = url
	})
}

func (s *Service) updateImage(ctx context.Context, userID, folder string, file FileUpload, assign func(*entity.User, string)) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	url, err := s.Media.Upload(ctx, folder, file.Name, file.ContentType, file.Reader)
	if err != nil {
		return nil, apperr.Upload("image upload failed", err)
	}
	assign(u, url)
	if err := s.Repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u.Sanitized(), nil
}

// issueTokens generates a pair and persists the refresh token. The
// write must complete before the pair is handed back, otherwise a
// crash between issue and persist would strand a valid-looking token
// the store knows nothing about.
func (s *Service) issueTokens(ctx context.Context, u *entity.User) (TokenPair, error) {
	access, aexp, err := s.JWT.GenerateAccessToken(u.ID, u.Username, u.Email, u.FullName)
	if err != nil {
		s.logWarn("generate access token failed", err, logrus.Fields{"user_id": u.ID})
		return TokenPair{}, apperr.Internal("", err)
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(u.ID)
	if err != nil {
		s.logWarn("generate refresh token failed", err, logrus.Fields{"user_id": u.ID})
		return TokenPair{}, apperr.Internal("", err)
	}
	if err := s.Repo.SetRefreshToken(ctx, u.ID, &refresh); err != nil {
		return TokenPair{}, apperr.Internal("", err)
	}
	return TokenPair{
		AccessToken:        access,
		AccessTokenExpiry:  aexp,
		RefreshToken:       refresh,
		RefreshTokenExpiry: rexp,
	}, nil
}

func (s *Service) logWarn(msg string, err error, fields logrus.Fields) {
	if s.Logger == nil {
		return
	}
	s.Logger.WithError(err).WithFields(fields).Warn(msg)
}

func isNotFound(err error) bool {
	return apperr.From(err).Kind == apperr.KindNotFound
}
