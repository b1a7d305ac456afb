package client

import (
	"context"
	"time"
)

type Client interface {
	Ping(ctx context.Context) error
	Register(ctx context.Context, req RegisterRequest) (*User, error)
	Login(ctx context.Context, login, password string) (*User, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (*User, error)
	Refresh(ctx context.Context) error
	ChangePassword(ctx context.Context, oldPassword, newPassword string) error
	UpdateAccount(ctx context.Context, fullName, email string) (*User, error)
	RequestUpload(ctx context.Context, kind string) (*Upload, error)
	LoggedIn(ctx context.Context) bool
}

type RegisterRequest struct {
	FullName   string `json:"fullName"`
	Email      string `json:"email"`
	UserName   string `json:"username"`
	Password   string `json:"password"`
	Avatar     string `json:"avatar"`
	CoverImage string `json:"coverImage,omitempty"`
}

type User struct {
	ID         string    `json:"_id"`
	UserName   string    `json:"username"`
	Email      string    `json:"email"`
	FullName   string    `json:"fullName"`
	Avatar     string    `json:"avatar"`
	CoverImage string    `json:"coverImage"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Upload is a presigned PUT returned by the API.
type Upload struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	Method    string    `json:"method"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Tokens is the pair the client presents to the API.
type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
