package entity

import "time"

// Video is a published piece of media owned by a channel (user).
type Video struct {
	ID              string    `json:"id"`
	OwnerID         string    `json:"owner_id"`
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	VideoURL        string    `json:"video_url"`
	ThumbnailURL    string    `json:"thumbnail_url"`
	DurationSeconds int       `json:"duration_seconds"`
	Views           int64     `json:"views"`
	Published       bool      `json:"published"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ChannelSnippet is the owner projection embedded in video listings and
// watch history rows.
type ChannelSnippet struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FullName  string `json:"full_name"`
	AvatarURL string `json:"avatar_url"`
}

// WatchEntry is one row of a user's watch history, newest first.
type WatchEntry struct {
	Video     Video          `json:"video"`
	Owner     ChannelSnippet `json:"owner"`
	WatchedAt time.Time      `json:"watched_at"`
}
