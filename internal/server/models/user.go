package models

import (
	"strings"
	"time"
)

// User is a stored subject. RefreshToken is the session fingerprint: the one
// refresh token currently honoured for this user, nil when there is no
// active session.
type User struct {
	ID           string
	UserName     string
	Email        string
	FullName     string
	Avatar       string
	CoverImage   string
	PasswordHash string
	RefreshToken *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity is the part of a user that is safe to hand to request handlers
// and to return to clients.
type Identity struct {
	ID         string    `json:"_id"`
	UserName   string    `json:"username"`
	Email      string    `json:"email"`
	FullName   string    `json:"fullName"`
	Avatar     string    `json:"avatar"`
	CoverImage string    `json:"coverImage,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (u *User) Identity() Identity {
	return Identity{
		ID:         u.ID,
		UserName:   u.UserName,
		Email:      u.Email,
		FullName:   u.FullName,
		Avatar:     u.Avatar,
		CoverImage: u.CoverImage,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

// NormalizeLogin lower-cases and trims a username or email so lookups and
// uniqueness checks are case-insensitive.
func NormalizeLogin(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
