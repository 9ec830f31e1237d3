package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vidora/vidora/internal/domain/entity"
	"github.com/vidora/vidora/internal/domain/repository"
	"github.com/vidora/vidora/pkg/apperr"
)

// ChannelQuery serves the read-side projections: channel profile
// aggregates and watch history joins. It owns no invariants; writes are
// limited to the subscriber edge toggle.
type ChannelQuery struct {
	pool *pgxpool.Pool
}

func NewChannelQuery(pool *pgxpool.Pool) *ChannelQuery {
	return &ChannelQuery{pool: pool}
}

func (q *ChannelQuery) Profile(ctx context.Context, username, viewerID string) (*entity.ChannelProfile, error) {
	p := &entity.ChannelProfile{}
	row := q.pool.QueryRow(ctx, `
		SELECT u.id, u.username, u.full_name, u.avatar_url, u.cover_image_url, u.created_at,
		       (SELECT count(*) FROM subscriptions s WHERE s.channel_id = u.id)    AS subscriber_count,
		       (SELECT count(*) FROM subscriptions s WHERE s.subscriber_id = u.id) AS subscribed_to_count,
		       ($2 <> '' AND EXISTS (
		           SELECT 1 FROM subscriptions s
		           WHERE s.channel_id = u.id AND s.subscriber_id = $2::uuid
		       )) AS is_subscribed
		FROM users u
		WHERE u.username = $1
	`, username, viewerID)
	if err := row.Scan(&p.ID, &p.Username, &p.FullName, &p.AvatarURL, &p.CoverImageURL,
		&p.CreatedAt, &p.SubscriberCount, &p.SubscribedToCount, &p.IsSubscribed); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("channel does not exist")
		}
		return nil, err
	}
	return p, nil
}

func (q *ChannelQuery) WatchHistory(ctx context.Context, userID string) ([]entity.WatchEntry, error) {
	rows, err := q.pool.Query(ctx, `
		SELECT v.id, v.owner_id, v.title, v.description, v.video_url, v.thumbnail_url,
		       v.duration_seconds, v.views, v.published, v.created_at, v.updated_at,
		       o.id, o.username, o.full_name, o.avatar_url,
		       h.watched_at
		FROM watch_history h
		JOIN videos v ON v.id = h.video_id
		JOIN users o  ON o.id = v.owner_id
		WHERE h.user_id = $1
		ORDER BY h.watched_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]entity.WatchEntry, 0)
	for rows.Next() {
		e := entity.WatchEntry{}
		if err := rows.Scan(
			&e.Video.ID, &e.Video.OwnerID, &e.Video.Title, &e.Video.Description,
			&e.Video.VideoURL, &e.Video.ThumbnailURL, &e.Video.DurationSeconds,
			&e.Video.Views, &e.Video.Published, &e.Video.CreatedAt, &e.Video.UpdatedAt,
			&e.Owner.ID, &e.Owner.Username, &e.Owner.FullName, &e.Owner.AvatarURL,
			&e.WatchedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (q *ChannelQuery) ToggleSubscription(ctx context.Context, subscriberID, channelID string) (bool, error) {
	res, err := q.pool.Exec(ctx, `
		DELETE FROM subscriptions WHERE subscriber_id = $1 AND channel_id = $2
	`, subscriberID, channelID)
	if err != nil {
		return false, err
	}
	if res.RowsAffected() > 0 {
		return false, nil
	}
	_, err = q.pool.Exec(ctx, `
		INSERT INTO subscriptions (subscriber_id, channel_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, subscriberID, channelID)
	if err != nil {
		return false, err
	}
	return true, nil
}

var _ repository.ChannelQuery = (*ChannelQuery)(nil)
