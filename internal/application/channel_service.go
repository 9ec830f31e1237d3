package application

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/vidora/vidora/internal/domain/entity"
	"github.com/vidora/vidora/internal/domain/repository"
	"github.com/vidora/vidora/pkg/apperr"
	"github.com/vidora/vidora/pkg/helpers"
)

const channelCacheTTL = 60 * time.Second

// ChannelService serves channel profile aggregates, watch history and
// the subscriber edge toggle. Profiles are cached briefly in Redis;
// the cache never holds credentials or tokens.
type ChannelService struct {
	Users  repository.UserRepository
	Query  repository.ChannelQuery
	Redis  *redis.Client
	Logger *logrus.Logger
}

func NewChannelService(users repository.UserRepository, query repository.ChannelQuery, rdb *redis.Client, logger *logrus.Logger) *ChannelService {
	return &ChannelService{Users: users, Query: query, Redis: rdb, Logger: logger}
}

func channelCacheKey(username, viewerID string) string {
	if viewerID == "" {
		viewerID = "anon"
	}
	return "channel:profile:" + username + ":" + viewerID
}

func (s *ChannelService) Profile(ctx context.Context, username, viewerID string) (*entity.ChannelProfile, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, apperr.Validation("username is required", nil)
	}

	key := channelCacheKey(username, viewerID)
	if s.Redis != nil {
		var cached entity.ChannelProfile
		if ok, err := helpers.RedisGetJSON(ctx, s.Redis, key, &cached); err == nil && ok {
			return &cached, nil
		}
	}

	p, err := s.Query.Profile(ctx, username, viewerID)
	if err != nil {
		return nil, err
	}

	if s.Redis != nil {
		if err := helpers.RedisSetJSON(ctx, s.Redis, key, p, channelCacheTTL); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("key", key).Warn("channel cache write failed")
		}
	}
	return p, nil
}

func (s *ChannelService) WatchHistory(ctx context.Context, userID string) ([]entity.WatchEntry, error) {
	return s.Query.WatchHistory(ctx, userID)
}

// ToggleSubscription flips the viewer's subscription to the named
// channel. Subscribing to yourself is rejected.
func (s *ChannelService) ToggleSubscription(ctx context.Context, viewerID, channelUsername string) (bool, error) {
	channelUsername = strings.ToLower(strings.TrimSpace(channelUsername))
	channel, err := s.Users.GetByUsername(ctx, channelUsername)
	if err != nil {
		if apperr.From(err).Kind == apperr.KindNotFound {
			return false, apperr.NotFound("channel does not exist")
		}
		return false, err
	}
	if channel.ID == viewerID {
		return false, apperr.Validation("cannot subscribe to your own channel", nil)
	}
	subscribed, err := s.Query.ToggleSubscription(ctx, viewerID, channel.ID)
	if err != nil {
		return false, err
	}
	s.invalidateProfile(ctx, channelUsername, viewerID)
	return subscribed, nil
}

// invalidateProfile drops the viewer-specific and anonymous cache rows
// after an edge change so counts do not look stale for a full TTL.
func (s *ChannelService) invalidateProfile(ctx context.Context, username, viewerID string) {
	if s.Redis == nil {
		return
	}
	err := helpers.RedisDel(ctx, s.Redis,
		channelCacheKey(username, viewerID),
		channelCacheKey(username, ""),
	)
	if err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("channel", username).Warn("channel cache invalidation failed")
	}
}
