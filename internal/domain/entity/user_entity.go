package entity

import (
	"time"
)

// User is the aggregate root for the user domain. Password is stored as
// a bcrypt hash; RefreshToken holds the single currently valid refresh
// token for the user (nil when logged out). Both are excluded from JSON
// so they can never leak through a response.
type User struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"` // stored lowercase
	Email         string    `json:"email"`
	FullName      string    `json:"full_name"`
	AvatarURL     string    `json:"avatar_url"`
	CoverImageURL string    `json:"cover_image_url,omitempty"`
	Password      string    `json:"-"`
	RefreshToken  *string   `json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Sanitized returns the projection safe for API responses: the password
// hash and refresh token are dropped, everything public stays.
func (u *User) Sanitized() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.Password = ""
	c.RefreshToken = nil
	return &c
}
