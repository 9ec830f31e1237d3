package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vidora/vidora/internal/domain/entity"
	"github.com/vidora/vidora/pkg/apperr"
	"github.com/vidora/vidora/pkg/helpers"
)

type fakeUserRepo struct {
	users  map[string]*entity.User
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*entity.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, u *entity.User) error {
	for _, existing := range r.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return apperr.Conflict("user with email or username already exists")
		}
	}
	r.nextID++
	u.ID = fmt.Sprintf("user-%d", r.nextID)
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	c := *u
	r.users[u.ID] = &c
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, apperr.NotFound("user not found")
	}
	c := *u
	return &c, nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			c := *u
			return &c, nil
		}
	}
	return nil, apperr.NotFound("user not found")
}

func (r *fakeUserRepo) GetByUsernameOrEmail(_ context.Context, username, email string) (*entity.User, error) {
	for _, u := range r.users {
		if (username != "" && u.Username == username) || (email != "" && u.Email == email) {
			c := *u
			return &c, nil
		}
	}
	return nil, apperr.NotFound("user not found")
}

func (r *fakeUserRepo) Update(_ context.Context, u *entity.User) error {
	stored, ok := r.users[u.ID]
	if !ok {
		return apperr.NotFound("user not found")
	}
	stored.Username = u.Username
	stored.Email = u.Email
	stored.FullName = u.FullName
	stored.AvatarURL = u.AvatarURL
	stored.CoverImageURL = u.CoverImageURL
	stored.UpdatedAt = time.Now()
	return nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	stored, ok := r.users[id]
	if !ok {
		return apperr.NotFound("user not found")
	}
	stored.Password = passwordHash
	return nil
}

func (r *fakeUserRepo) SetRefreshToken(_ context.Context, id string, token *string) error {
	stored, ok := r.users[id]
	if !ok {
		return apperr.NotFound("user not found")
	}
	if token == nil {
		stored.RefreshToken = nil
		return nil
	}
	c := *token
	stored.RefreshToken = &c
	return nil
}

type fakeUploader struct {
	calls int
	fail  bool
}

func (u *fakeUploader) Upload(_ context.Context, folder, filename, _ string, _ io.Reader) (string, error) {
	u.calls++
	if u.fail {
		return "", errors.New("upstream unavailable")
	}
	return "https://media.test/" + folder + "/" + filename, nil
}

func newTestService(t *testing.T) (*Service, *fakeUserRepo, *fakeUploader) {
	t.Helper()
	repo := newFakeUserRepo()
	up := &fakeUploader{}
	jwt := helpers.NewJWTManager("access-secret", "refresh-secret", 15*time.Minute, 240*time.Hour)
	return NewService(repo, jwt, up, nil), repo, up
}

func avatarFile() *FileUpload {
	return &FileUpload{Name: "avatar.png", ContentType: "image/png", Reader: strings.NewReader("img")}
}

func registerAlice(t *testing.T, svc *Service) *entity.User {
	t.Helper()
	u, err := svc.Register(context.Background(), RegisterInput{
		FullName: "Alice Carter",
		Email:    "a@x.com",
		Password: "password123",
		Username: "Alice",
		Avatar:   avatarFile(),
	})
	require.NoError(t, err)
	return u
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("creates sanitized user with lowercased username", func(t *testing.T) {
		svc, repo, up := newTestService(t)

		u, err := svc.Register(ctx, RegisterInput{
			FullName: "Alice Carter",
			Email:    "a@x.com",
			Password: "password123",
			Username: "Alice",
			Avatar:   avatarFile(),
			Cover:    &FileUpload{Name: "cover.jpg", ContentType: "image/jpeg", Reader: strings.NewReader("img")},
		})
		require.NoError(t, err)

		require.Equal(t, "alice", u.Username)
		require.Empty(t, u.Password)
		require.Nil(t, u.RefreshToken)
		require.Equal(t, "https://media.test/avatars/avatar.png", u.AvatarURL)
		require.Equal(t, "https://media.test/covers/cover.jpg", u.CoverImageURL)
		require.Equal(t, 2, up.calls)

		stored := repo.users[u.ID]
		require.NotEqual(t, "password123", stored.Password, "password must be stored hashed")
		require.True(t, helpers.CompareHashAndPassword(stored.Password, "password123"))
	})

	t.Run("accepts any non-blank password", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		u, err := svc.Register(ctx, RegisterInput{
			FullName: "Alice Carter",
			Email:    "a@x.com",
			Password: "p",
			Username: "alice",
			Avatar:   avatarFile(),
		})
		require.NoError(t, err)

		_, _, err = svc.Login(ctx, LoginInput{Username: u.Username, Password: "p"})
		require.NoError(t, err)
	})

	t.Run("missing avatar fails validation without uploading", func(t *testing.T) {
		svc, repo, up := newTestService(t)

		_, err := svc.Register(ctx, RegisterInput{
			FullName: "Alice Carter",
			Email:    "a@x.com",
			Password: "password123",
			Username: "alice",
		})
		require.ErrorIs(t, err, apperr.Validation("", nil))
		require.Zero(t, up.calls)
		require.Empty(t, repo.users)
	})

	t.Run("blank fields aggregate into one validation error", func(t *testing.T) {
		svc, _, up := newTestService(t)

		_, err := svc.Register(ctx, RegisterInput{FullName: "  ", Email: "", Password: " ", Username: ""})
		require.Error(t, err)

		var appErr *apperr.Error
		require.ErrorAs(t, err, &appErr)
		require.Equal(t, apperr.KindValidation, appErr.Kind)
		details, ok := appErr.Details.(map[string]string)
		require.True(t, ok)
		require.Len(t, details, 5)
		require.Zero(t, up.calls)
	})

	t.Run("duplicate identity conflicts before any upload", func(t *testing.T) {
		svc, repo, up := newTestService(t)
		registerAlice(t, svc)
		up.calls = 0

		_, err := svc.Register(ctx, RegisterInput{
			FullName: "Other Alice",
			Email:    "other@x.com",
			Password: "password123",
			Username: "ALICE", // case-insensitive clash
			Avatar:   avatarFile(),
		})
		require.ErrorIs(t, err, apperr.Conflict(""))
		require.Zero(t, up.calls)
		require.Len(t, repo.users, 1)
	})

	t.Run("avatar upload failure aborts creation", func(t *testing.T) {
		svc, repo, up := newTestService(t)
		up.fail = true

		_, err := svc.Register(ctx, RegisterInput{
			FullName: "Alice Carter",
			Email:    "a@x.com",
			Password: "password123",
			Username: "alice",
			Avatar:   avatarFile(),
		})
		require.ErrorIs(t, err, apperr.Upload("", nil))
		require.Empty(t, repo.users)
	})

	t.Run("cover upload failure is tolerated", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		svc.Media = &flakyUploader{failOn: 2} // avatar succeeds, cover fails

		u, err := svc.Register(ctx, RegisterInput{
			FullName: "Alice Carter",
			Email:    "a@x.com",
			Password: "password123",
			Username: "alice",
			Avatar:   avatarFile(),
			Cover:    &FileUpload{Name: "cover.jpg", ContentType: "image/jpeg", Reader: strings.NewReader("img")},
		})
		require.NoError(t, err)
		require.NotEmpty(t, u.AvatarURL)
		require.Empty(t, u.CoverImageURL)
		require.Len(t, repo.users, 1)
	})
}

// flakyUploader fails on the nth call only.
type flakyUploader struct {
	calls  int
	failOn int
}

func (u *flakyUploader) Upload(_ context.Context, folder, filename, _ string, _ io.Reader) (string, error) {
	u.calls++
	if u.calls == u.failOn {
		return "", errors.New("upstream unavailable")
	}
	return "https://media.test/" + folder + "/" + filename, nil
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("persists the returned refresh token", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		created := registerAlice(t, svc)

		u, pair, err := svc.Login(ctx, LoginInput{Username: "alice", Password: "password123"})
		require.NoError(t, err)
		require.Equal(t, created.ID, u.ID)
		require.Empty(t, u.Password)
		require.Nil(t, u.RefreshToken)
		require.NotEmpty(t, pair.AccessToken)
		require.NotEmpty(t, pair.RefreshToken)

		stored := repo.users[u.ID]
		require.NotNil(t, stored.RefreshToken)
		require.Equal(t, pair.RefreshToken, *stored.RefreshToken)
	})

	t.Run("accepts email as identifier", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		registerAlice(t, svc)

		_, _, err := svc.Login(ctx, LoginInput{Email: "a@x.com", Password: "password123"})
		require.NoError(t, err)
	})

	t.Run("wrong password is unauthorized and issues nothing", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		created := registerAlice(t, svc)

		_, pair, err := svc.Login(ctx, LoginInput{Username: "alice", Password: "wrong"})
		require.ErrorIs(t, err, apperr.Unauthorized(""))
		require.EqualError(t, err, "Invalid user credentials")
		require.Empty(t, pair.AccessToken)
		require.Nil(t, repo.users[created.ID].RefreshToken)
	})

	t.Run("unknown user is not found", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		_, _, err := svc.Login(ctx, LoginInput{Username: "ghost", Password: "password123"})
		require.ErrorIs(t, err, apperr.NotFound(""))
	})

	t.Run("requires an identifier", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		_, _, err := svc.Login(ctx, LoginInput{Password: "password123"})
		require.ErrorIs(t, err, apperr.Validation("", nil))
	})
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()

	login := func(t *testing.T, svc *Service) (*entity.User, TokenPair) {
		t.Helper()
		registerAlice(t, svc)
		u, pair, err := svc.Login(ctx, LoginInput{Username: "alice", Password: "password123"})
		require.NoError(t, err)
		return u, pair
	}

	t.Run("rotates the persisted token", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		u, pair := login(t, svc)

		// Immediate rotation must still mint a different token.
		_, next, err := svc.Refresh(ctx, pair.RefreshToken)
		require.NoError(t, err)
		require.NotEqual(t, pair.RefreshToken, next.RefreshToken)

		stored := repo.users[u.ID]
		require.NotNil(t, stored.RefreshToken)
		require.Equal(t, next.RefreshToken, *stored.RefreshToken)

		// The rotated-out token no longer refreshes.
		_, _, err = svc.Refresh(ctx, pair.RefreshToken)
		require.ErrorIs(t, err, apperr.Unauthorized(""))
		require.EqualError(t, err, "Refresh token is expired or used")
	})

	t.Run("rejects a cryptographically valid but stale token", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		u, pair := login(t, svc)

		// Simulate a concurrent rotation: store now holds another value.
		other := "other-token"
		require.NoError(t, repo.SetRefreshToken(ctx, u.ID, &other))

		_, _, err := svc.Refresh(ctx, pair.RefreshToken)
		require.ErrorIs(t, err, apperr.Unauthorized(""))
		require.EqualError(t, err, "Refresh token is expired or used")
	})

	t.Run("rejects malformed tokens", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		_, _, err := svc.Refresh(ctx, "not-a-jwt")
		require.ErrorIs(t, err, apperr.Unauthorized(""))
	})

	t.Run("rejects empty token", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		_, _, err := svc.Refresh(ctx, "")
		require.ErrorIs(t, err, apperr.Unauthorized(""))
	})

	t.Run("rejects access tokens presented as refresh tokens", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		_, pair := login(t, svc)

		_, _, err := svc.Refresh(ctx, pair.AccessToken)
		require.ErrorIs(t, err, apperr.Unauthorized(""))
	})

	t.Run("fails after logout", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		u, pair := login(t, svc)

		require.NoError(t, svc.Logout(ctx, u.ID))

		_, _, err := svc.Refresh(ctx, pair.RefreshToken)
		require.ErrorIs(t, err, apperr.Unauthorized(""))
	})
}

func TestLogout(t *testing.T) {
	ctx := context.Background()

	t.Run("clears the persisted token and is idempotent", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		registerAlice(t, svc)
		u, _, err := svc.Login(ctx, LoginInput{Username: "alice", Password: "password123"})
		require.NoError(t, err)
		require.NotNil(t, repo.users[u.ID].RefreshToken)

		require.NoError(t, svc.Logout(ctx, u.ID))
		require.Nil(t, repo.users[u.ID].RefreshToken)

		// Logging out twice is not an error.
		require.NoError(t, svc.Logout(ctx, u.ID))
	})
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()

	t.Run("wrong old password is unauthorized", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		u := registerAlice(t, svc)

		err := svc.ChangePassword(ctx, u.ID, "wrong", "newpassword1")
		require.ErrorIs(t, err, apperr.Unauthorized(""))
	})

	t.Run("replaces the hash", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		u := registerAlice(t, svc)

		require.NoError(t, svc.ChangePassword(ctx, u.ID, "password123", "newpassword1"))

		_, _, err := svc.Login(ctx, LoginInput{Username: "alice", Password: "password123"})
		require.ErrorIs(t, err, apperr.Unauthorized(""))
		_, _, err = svc.Login(ctx, LoginInput{Username: "alice", Password: "newpassword1"})
		require.NoError(t, err)
	})
}

func TestProfileUpdates(t *testing.T) {
	ctx := context.Background()

	t.Run("update account changes only provided fields", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		u := registerAlice(t, svc)

		updated, err := svc.UpdateAccount(ctx, u.ID, "Alice B. Carter", "")
		require.NoError(t, err)
		require.Equal(t, "Alice B. Carter", updated.FullName)
		require.Equal(t, "a@x.com", updated.Email)
		require.Empty(t, updated.Password)
	})

	t.Run("update account requires at least one field", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		u := registerAlice(t, svc)

		_, err := svc.UpdateAccount(ctx, u.ID, "", " ")
		require.ErrorIs(t, err, apperr.Validation("", nil))
	})

	t.Run("update avatar persists the new URL", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		u := registerAlice(t, svc)

		updated, err := svc.UpdateAvatar(ctx, u.ID, FileUpload{
			Name: "new.png", ContentType: "image/png", Reader: strings.NewReader("img"),
		})
		require.NoError(t, err)
		require.Equal(t, "https://media.test/avatars/new.png", updated.AvatarURL)
		require.Equal(t, updated.AvatarURL, repo.users[u.ID].AvatarURL)
	})

	t.Run("failed upload surfaces as upload error", func(t *testing.T) {
		svc, _, up := newTestService(t)
		u := registerAlice(t, svc)
		up.fail = true

		_, err := svc.UpdateCoverImage(ctx, u.ID, FileUpload{
			Name: "c.jpg", ContentType: "image/jpeg", Reader: strings.NewReader("img"),
		})
		require.ErrorIs(t, err, apperr.Upload("", nil))
	})
}
