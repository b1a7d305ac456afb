// Package auth mints and verifies session tokens and password hashes.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/dmitrijs2005/vidtube/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
)

// Kind separates access from refresh tokens inside the payload, on top of
// the per-kind secrets.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// ErrConfig is returned by NewCodec for unusable secrets or lifetimes.
var ErrConfig = errors.New("invalid token codec configuration")

// AccessClaims carries the subject plus the display fields handlers may need
// without a store round trip.
type AccessClaims struct {
	jwt.RegisteredClaims
	Kind     Kind   `json:"kind"`
	UserName string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
}

// RefreshClaims carries only the subject.
type RefreshClaims struct {
	jwt.RegisteredClaims
	Kind Kind `json:"kind"`
}

// Codec signs and verifies HS256 tokens. It is immutable after NewCodec and
// safe for concurrent use.
type Codec struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

type Option func(*Codec)

// WithClock replaces time.Now for both signing and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) { c.now = now }
}

func NewCodec(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration, opts ...Option) (*Codec, error) {
	if accessSecret == "" || refreshSecret == "" {
		return nil, fmt.Errorf("%w: empty secret", ErrConfig)
	}
	if accessSecret == refreshSecret {
		return nil, fmt.Errorf("%w: access and refresh secrets are identical", ErrConfig)
	}
	if accessTTL <= 0 || refreshTTL <= 0 {
		return nil, fmt.Errorf("%w: non-positive lifetime", ErrConfig)
	}

	c := &Codec{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

func (c *Codec) AccessTTL() time.Duration  { return c.accessTTL }
func (c *Codec) RefreshTTL() time.Duration { return c.refreshTTL }

// EncodeAccess mints an access token for id.
func (c *Codec) EncodeAccess(id models.Identity) (string, error) {
	rc, err := c.registered(id.ID, c.accessTTL)
	if err != nil {
		return "", err
	}
	return sign(&AccessClaims{
		RegisteredClaims: rc,
		Kind:             KindAccess,
		UserName:         id.UserName,
		Email:            id.Email,
		FullName:         id.FullName,
	}, c.accessSecret)
}

// EncodeRefresh mints a refresh token for userID.
func (c *Codec) EncodeRefresh(userID string) (string, error) {
	rc, err := c.registered(userID, c.refreshTTL)
	if err != nil {
		return "", err
	}
	return sign(&RefreshClaims{RegisteredClaims: rc, Kind: KindRefresh}, c.refreshSecret)
}

// DecodeAccess verifies raw and returns its claims. Errors wrap one of
// common.ErrTokenExpired, common.ErrTokenSignature or common.ErrTokenMalformed.
func (c *Codec) DecodeAccess(raw string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := c.parse(raw, claims, c.accessSecret); err != nil {
		return nil, err
	}
	if claims.Kind != KindAccess {
		return nil, fmt.Errorf("%w: unexpected kind %q", common.ErrTokenMalformed, claims.Kind)
	}
	return claims, nil
}

// DecodeRefresh is DecodeAccess for refresh tokens.
func (c *Codec) DecodeRefresh(raw string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := c.parse(raw, claims, c.refreshSecret); err != nil {
		return nil, err
	}
	if claims.Kind != KindRefresh {
		return nil, fmt.Errorf("%w: unexpected kind %q", common.ErrTokenMalformed, claims.Kind)
	}
	return claims, nil
}

// registered fills the standard claims. The random ID keeps two tokens
// minted for the same subject within one second distinct.
func (c *Codec) registered(subject string, ttl time.Duration) (jwt.RegisteredClaims, error) {
	jti, err := common.MakeRandHexString(16)
	if err != nil {
		return jwt.RegisteredClaims{}, fmt.Errorf("token id: %w", err)
	}
	now := c.now()
	return jwt.RegisteredClaims{
		Subject:   subject,
		ID:        jti,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}, nil
}

func sign(claims jwt.Claims, secret []byte) (string, error) {
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return s, nil
}

func (c *Codec) parse(raw string, claims jwt.Claims, secret []byte) error {
	_, err := jwt.ParseWithClaims(raw, claims,
		func(*jwt.Token) (any, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: %w", common.ErrTokenSignature, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %w", common.ErrTokenExpired, err)
	default:
		return fmt.Errorf("%w: %w", common.ErrTokenMalformed, err)
	}
}
