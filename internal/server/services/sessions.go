// Package services contains the server-side business logic: the session
// lifecycle (issue, authenticate, rotate, terminate), account operations and
// media upload presigning.
package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/dmitrijs2005/vidtube/internal/server/auth"
	"github.com/dmitrijs2005/vidtube/internal/server/models"
	"github.com/dmitrijs2005/vidtube/internal/server/repositories/repomanager"
)

// Caller-facing messages. Causes stay in the error chain for logs.
const (
	msgNoToken          = "unauthorized request"
	msgBadAccessToken   = "invalid access token"
	msgBadRefreshToken  = "invalid refresh token"
	msgRefreshTokenUsed = "refresh token expired or used"
)

// Session operation names as reported to the Observer.
const (
	OpIssue        = "issue"
	OpAuthenticate = "authenticate"
	OpRotate       = "rotate"
	OpTerminate    = "terminate"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Observer receives the outcome of every session operation.
type Observer interface {
	SessionEvent(op string, err error)
}

type nopObserver struct{}

func (nopObserver) SessionEvent(string, error) {}

// SessionService owns the refresh-token fingerprint of each user. At most one
// refresh token per user is honoured at a time: Issue overwrites it, Rotate
// replaces it with compare-and-swap and Terminate clears it.
type SessionService struct {
	repomanager repomanager.RepositoryManager
	codec       *auth.Codec
	observer    Observer
}

func NewSessionService(m repomanager.RepositoryManager, codec *auth.Codec, observer Observer) *SessionService {
	if observer == nil {
		observer = nopObserver{}
	}
	return &SessionService{repomanager: m, codec: codec, observer: observer}
}

// Issue starts a new session for userID, superseding any existing one. The
// pair is returned only after its fingerprint is stored.
func (s *SessionService) Issue(ctx context.Context, userID string) (pair *TokenPair, err error) {
	defer func() { s.observer.SessionEvent(OpIssue, err) }()

	users := s.repomanager.Users()

	user, err := users.FindByID(ctx, userID)
	if err != nil {
		return nil, common.Internal(fmt.Errorf("load user %s: %w", userID, err))
	}

	pair, err = s.mintPair(user.Identity())
	if err != nil {
		return nil, common.Internal(err)
	}

	if err := users.SetRefreshToken(ctx, user.ID, &pair.RefreshToken); err != nil {
		return nil, common.Internal(fmt.Errorf("store fingerprint: %w", err))
	}

	return pair, nil
}

// Authenticate resolves an access token to the identity it was issued for.
// Access tokens are not checked against the fingerprint; they stay valid
// until they expire.
func (s *SessionService) Authenticate(ctx context.Context, raw string) (id *models.Identity, err error) {
	defer func() { s.observer.SessionEvent(OpAuthenticate, err) }()

	if raw == "" {
		return nil, common.Unauthenticated(msgNoToken, nil)
	}

	claims, err := s.codec.DecodeAccess(raw)
	if err != nil {
		return nil, common.Unauthenticated(msgBadAccessToken, err)
	}
	if claims.Subject == "" {
		return nil, common.Unauthenticated(msgBadAccessToken, common.ErrTokenMalformed)
	}

	user, err := s.repomanager.Users().FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.Unauthenticated(msgBadAccessToken, err)
		}
		return nil, common.Internal(fmt.Errorf("load user %s: %w", claims.Subject, err))
	}

	identity := user.Identity()
	return &identity, nil
}

// Rotate exchanges the current refresh token for a new pair. The presented
// token stops working once this returns successfully. When two callers race
// with the same token exactly one of them wins.
func (s *SessionService) Rotate(ctx context.Context, raw string) (pair *TokenPair, err error) {
	defer func() { s.observer.SessionEvent(OpRotate, err) }()

	if raw == "" {
		return nil, common.Unauthenticated(msgNoToken, nil)
	}

	claims, err := s.codec.DecodeRefresh(raw)
	if err != nil {
		return nil, common.Unauthenticated(msgBadRefreshToken, err)
	}
	if claims.Subject == "" {
		return nil, common.Unauthenticated(msgBadRefreshToken, common.ErrTokenMalformed)
	}

	users := s.repomanager.Users()

	user, err := users.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.Unauthenticated(msgBadRefreshToken, err)
		}
		return nil, common.Internal(fmt.Errorf("load user %s: %w", claims.Subject, err))
	}

	if !fingerprintMatches(user.RefreshToken, raw) {
		return nil, common.Unauthenticated(msgRefreshTokenUsed, common.ErrRefreshTokenUsed)
	}

	pair, err = s.mintPair(user.Identity())
	if err != nil {
		return nil, common.Internal(err)
	}

	swapped, err := users.SwapRefreshToken(ctx, user.ID, raw, pair.RefreshToken)
	if err != nil {
		return nil, common.Internal(fmt.Errorf("swap fingerprint: %w", err))
	}
	if !swapped {
		// another rotation or a logout got there first
		return nil, common.Unauthenticated(msgRefreshTokenUsed, common.ErrRefreshTokenUsed)
	}

	return pair, nil
}

// Terminate ends the user's session. Calling it again, or for a user that no
// longer exists, is not an error.
func (s *SessionService) Terminate(ctx context.Context, userID string) (err error) {
	defer func() { s.observer.SessionEvent(OpTerminate, err) }()

	err = s.repomanager.Users().SetRefreshToken(ctx, userID, nil)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return common.Internal(fmt.Errorf("clear fingerprint: %w", err))
	}
	return nil
}

func (s *SessionService) mintPair(id models.Identity) (*TokenPair, error) {
	access, err := s.codec.EncodeAccess(id)
	if err != nil {
		return nil, fmt.Errorf("access token: %w", err)
	}
	refresh, err := s.codec.EncodeRefresh(id.ID)
	if err != nil {
		return nil, fmt.Errorf("refresh token: %w", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func fingerprintMatches(stored *string, presented string) bool {
	if stored == nil {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(*stored), []byte(presented)) == 1
}
