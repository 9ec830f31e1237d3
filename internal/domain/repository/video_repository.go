package repository

import (
	"context"

	"github.com/vidora/vidora/internal/domain/entity"
)

// VideoRepository persists videos and watch-history rows.
type VideoRepository interface {
	Create(ctx context.Context, v *entity.Video) error
	GetByID(ctx context.Context, id string) (*entity.Video, error)
	ListByOwner(ctx context.Context, ownerID string) ([]entity.Video, error)
	IncrementViews(ctx context.Context, id string) error
	// RecordWatch moves the (user, video) entry to the front of the
	// user's history.
	RecordWatch(ctx context.Context, userID, videoID string) error
}

// ChannelQuery is the read-side collaborator for aggregate projections.
type ChannelQuery interface {
	// Profile returns the channel aggregate; viewerID may be empty for
	// anonymous requests (IsSubscribed then false).
	Profile(ctx context.Context, username, viewerID string) (*entity.ChannelProfile, error)
	WatchHistory(ctx context.Context, userID string) ([]entity.WatchEntry, error)
	// ToggleSubscription flips the subscriber edge and reports the new
	// state.
	ToggleSubscription(ctx context.Context, subscriberID, channelID string) (subscribed bool, err error)
}
