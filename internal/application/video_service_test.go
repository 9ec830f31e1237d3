package application

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vidora/vidora/internal/domain/entity"
	"github.com/vidora/vidora/pkg/apperr"
)

type fakeVideoRepo struct {
	videos  map[string]*entity.Video
	watches map[string]time.Time // "userID/videoID"
	nextID  int
}

func newFakeVideoRepo() *fakeVideoRepo {
	return &fakeVideoRepo{videos: map[string]*entity.Video{}, watches: map[string]time.Time{}}
}

func (r *fakeVideoRepo) Create(_ context.Context, v *entity.Video) error {
	r.nextID++
	v.ID = fmt.Sprintf("video-%d", r.nextID)
	v.CreatedAt = time.Now()
	v.UpdatedAt = v.CreatedAt
	c := *v
	r.videos[v.ID] = &c
	return nil
}

func (r *fakeVideoRepo) GetByID(_ context.Context, id string) (*entity.Video, error) {
	v, ok := r.videos[id]
	if !ok {
		return nil, apperr.NotFound("video not found")
	}
	c := *v
	return &c, nil
}

func (r *fakeVideoRepo) ListByOwner(_ context.Context, ownerID string) ([]entity.Video, error) {
	out := []entity.Video{}
	for _, v := range r.videos {
		if v.OwnerID == ownerID {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (r *fakeVideoRepo) IncrementViews(_ context.Context, id string) error {
	v, ok := r.videos[id]
	if !ok {
		return apperr.NotFound("video not found")
	}
	v.Views++
	return nil
}

func (r *fakeVideoRepo) RecordWatch(_ context.Context, userID, videoID string) error {
	r.watches[userID+"/"+videoID] = time.Now()
	return nil
}

func newVideoTestService(t *testing.T) (*VideoService, *fakeVideoRepo, *fakeUserRepo, *fakeUploader) {
	t.Helper()
	videos := newFakeVideoRepo()
	users := newFakeUserRepo()
	up := &fakeUploader{}
	return NewVideoService(videos, users, up, nil), videos, users, up
}

func seedOwner(t *testing.T, users *fakeUserRepo) *entity.User {
	t.Helper()
	u := &entity.User{Username: "alice", Email: "a@x.com", FullName: "Alice Carter", Password: "x"}
	require.NoError(t, users.Create(context.Background(), u))
	return u
}

func TestPublish(t *testing.T) {
	ctx := context.Background()

	upload := func(name, ct string) *FileUpload {
		return &FileUpload{Name: name, ContentType: ct, Reader: strings.NewReader("data")}
	}

	t.Run("uploads both files and stores the row", func(t *testing.T) {
		svc, videos, users, up := newVideoTestService(t)
		owner := seedOwner(t, users)

		v, err := svc.Publish(ctx, PublishInput{
			OwnerID:         owner.ID,
			Title:           " First upload ",
			Description:     "hello",
			DurationSeconds: 92,
			VideoFile:       upload("clip.mp4", "video/mp4"),
			Thumbnail:       upload("thumb.jpg", "image/jpeg"),
		})
		require.NoError(t, err)
		require.Equal(t, "First upload", v.Title)
		require.Equal(t, "https://media.test/videos/clip.mp4", v.VideoURL)
		require.Equal(t, "https://media.test/thumbnails/thumb.jpg", v.ThumbnailURL)
		require.True(t, v.Published)
		require.Equal(t, 2, up.calls)
		require.Len(t, videos.videos, 1)
	})

	t.Run("missing files fail validation without uploading", func(t *testing.T) {
		svc, videos, users, up := newVideoTestService(t)
		owner := seedOwner(t, users)

		_, err := svc.Publish(ctx, PublishInput{OwnerID: owner.ID, Title: "x"})
		require.ErrorIs(t, err, apperr.Validation("", nil))
		require.Zero(t, up.calls)
		require.Empty(t, videos.videos)
	})

	t.Run("upload failure aborts the insert", func(t *testing.T) {
		svc, videos, users, up := newVideoTestService(t)
		owner := seedOwner(t, users)
		up.fail = true

		_, err := svc.Publish(ctx, PublishInput{
			OwnerID:   owner.ID,
			Title:     "x",
			VideoFile: upload("clip.mp4", "video/mp4"),
			Thumbnail: upload("thumb.jpg", "image/jpeg"),
		})
		require.ErrorIs(t, err, apperr.Upload("", nil))
		require.Empty(t, videos.videos)
	})
}

func TestGetVideo(t *testing.T) {
	ctx := context.Background()

	seedVideo := func(t *testing.T, videos *fakeVideoRepo, ownerID string) *entity.Video {
		t.Helper()
		v := &entity.Video{OwnerID: ownerID, Title: "clip", VideoURL: "u", ThumbnailURL: "t", Published: true}
		require.NoError(t, videos.Create(ctx, v))
		return v
	}

	t.Run("bumps views and records history for viewers", func(t *testing.T) {
		svc, videos, users, _ := newVideoTestService(t)
		owner := seedOwner(t, users)
		v := seedVideo(t, videos, owner.ID)

		got, err := svc.Get(ctx, v.ID, "viewer-1")
		require.NoError(t, err)
		require.Equal(t, int64(1), got.Views)
		require.Contains(t, videos.watches, "viewer-1/"+v.ID)
	})

	t.Run("anonymous views leave no history", func(t *testing.T) {
		svc, videos, users, _ := newVideoTestService(t)
		owner := seedOwner(t, users)
		v := seedVideo(t, videos, owner.ID)

		got, err := svc.Get(ctx, v.ID, "")
		require.NoError(t, err)
		require.Equal(t, int64(1), got.Views)
		require.Empty(t, videos.watches)
	})

	t.Run("unknown video is not found", func(t *testing.T) {
		svc, _, _, _ := newVideoTestService(t)

		_, err := svc.Get(ctx, "missing", "")
		require.ErrorIs(t, err, apperr.NotFound(""))
	})
}

func TestListByChannel(t *testing.T) {
	ctx := context.Background()

	t.Run("resolves the owner case-insensitively", func(t *testing.T) {
		svc, videos, users, _ := newVideoTestService(t)
		owner := seedOwner(t, users)
		require.NoError(t, videos.Create(ctx, &entity.Video{OwnerID: owner.ID, Title: "clip"}))

		list, err := svc.ListByChannel(ctx, " Alice ")
		require.NoError(t, err)
		require.Len(t, list, 1)
	})

	t.Run("unknown channel is not found", func(t *testing.T) {
		svc, _, _, _ := newVideoTestService(t)

		_, err := svc.ListByChannel(ctx, "ghost")
		require.ErrorIs(t, err, apperr.NotFound(""))
		require.EqualError(t, err, "channel does not exist")
	})
}
