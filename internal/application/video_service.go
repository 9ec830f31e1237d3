package application

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/vidora/vidora/internal/domain/entity"
	"github.com/vidora/vidora/internal/domain/repository"
	"github.com/vidora/vidora/pkg/apperr"
)

// VideoService covers the minimal publish/view surface: enough to give
// watch history and channel listings something to point at.
type VideoService struct {
	Videos repository.VideoRepository
	Users  repository.UserRepository
	Media  Uploader
	Logger *logrus.Logger
}

func NewVideoService(videos repository.VideoRepository, users repository.UserRepository, media Uploader, logger *logrus.Logger) *VideoService {
	return &VideoService{Videos: videos, Users: users, Media: media, Logger: logger}
}

type PublishInput struct {
	OwnerID         string
	Title           string
	Description     string
	DurationSeconds int
	VideoFile       *FileUpload
	Thumbnail       *FileUpload
}

// Publish uploads the video file and thumbnail, then inserts the row.
func (s *VideoService) Publish(ctx context.Context, in PublishInput) (*entity.Video, error) {
	details := map[string]string{}
	if strings.TrimSpace(in.Title) == "" {
		details["title"] = "is required"
	}
	if in.VideoFile == nil {
		details["video"] = "video file is required"
	}
	if in.Thumbnail == nil {
		details["thumbnail"] = "thumbnail file is required"
	}
	if len(details) > 0 {
		return nil, apperr.Validation("all fields are required", details)
	}

	videoURL, err := s.Media.Upload(ctx, "videos", in.VideoFile.Name, in.VideoFile.ContentType, in.VideoFile.Reader)
	if err != nil {
		return nil, apperr.Upload("video upload failed", err)
	}
	thumbURL, err := s.Media.Upload(ctx, "thumbnails", in.Thumbnail.Name, in.Thumbnail.ContentType, in.Thumbnail.Reader)
	if err != nil {
		return nil, apperr.Upload("thumbnail upload failed", err)
	}

	v := &entity.Video{
		OwnerID:         in.OwnerID,
		Title:           strings.TrimSpace(in.Title),
		Description:     strings.TrimSpace(in.Description),
		VideoURL:        videoURL,
		ThumbnailURL:    thumbURL,
		DurationSeconds: in.DurationSeconds,
		Published:       true,
	}
	if err := s.Videos.Create(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

// Get returns a video, bumps its view counter and, for authenticated
// viewers, records the watch-history entry. Counter and history are
// best effort; a failed write never hides the video.
func (s *VideoService) Get(ctx context.Context, videoID, viewerID string) (*entity.Video, error) {
	v, err := s.Videos.GetByID(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if err := s.Videos.IncrementViews(ctx, videoID); err == nil {
		v.Views++
	} else if s.Logger != nil {
		s.Logger.WithError(err).WithField("video_id", videoID).Warn("view increment failed")
	}
	if viewerID != "" {
		if err := s.Videos.RecordWatch(ctx, viewerID, videoID); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("video_id", videoID).Warn("watch history write failed")
		}
	}
	return v, nil
}

// ListByChannel returns a channel's published videos.
func (s *VideoService) ListByChannel(ctx context.Context, username string) ([]entity.Video, error) {
	owner, err := s.Users.GetByUsername(ctx, strings.ToLower(strings.TrimSpace(username)))
	if err != nil {
		if apperr.From(err).Kind == apperr.KindNotFound {
			return nil, apperr.NotFound("channel does not exist")
		}
		return nil, err
	}
	return s.Videos.ListByOwner(ctx, owner.ID)
}
