package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/dmitrijs2005/vidtube/internal/server/auth"
	"github.com/dmitrijs2005/vidtube/internal/server/models"
	"github.com/dmitrijs2005/vidtube/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/vidtube/internal/server/repositories/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	testAccessSecret  = "test-access-secret"
	testRefreshSecret = "test-refresh-secret"
	testAccessTTL     = 15 * time.Minute
	testRefreshTTL    = 24 * time.Hour
)

type testClock struct{ t time.Time }

func (c *testClock) now() time.Time { return c.t }

func (c *testClock) advance(d time.Duration) { c.t = c.t.Add(d) }

type env struct {
	rm       *repomanager.MemoryRepositoryManager
	clock    *testClock
	codec    *auth.Codec
	hasher   *auth.PasswordHasher
	sessions *SessionService
	users    *UserService
	events   *recordingObserver
}

func newEnv(t *testing.T) *env {
	t.Helper()

	clock := &testClock{t: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)}
	codec, err := auth.NewCodec(testAccessSecret, testRefreshSecret, testAccessTTL, testRefreshTTL, auth.WithClock(clock.now))
	require.NoError(t, err)

	rm := repomanager.NewMemoryRepositoryManager()
	hasher := auth.NewPasswordHasher(bcrypt.MinCost)
	events := &recordingObserver{}
	sessions := NewSessionService(rm, codec, events)

	return &env{
		rm:       rm,
		clock:    clock,
		codec:    codec,
		hasher:   hasher,
		sessions: sessions,
		users:    NewUserService(rm, hasher, sessions),
		events:   events,
	}
}

// seedUser stores a user with password "pw1" directly in the repository.
func (e *env) seedUser(t *testing.T, name string) *models.User {
	t.Helper()
	hash, err := e.hasher.Hash("pw1")
	require.NoError(t, err)
	u, err := e.rm.Users().Create(context.Background(), &models.User{
		UserName:     name,
		Email:        name + "@example.com",
		FullName:     name,
		Avatar:       "avatar/" + name + ".png",
		PasswordHash: hash,
	})
	require.NoError(t, err)
	return u
}

type recordingObserver struct {
	ops  []string
	errs []error
}

func (r *recordingObserver) SessionEvent(op string, err error) {
	r.ops = append(r.ops, op)
	r.errs = append(r.errs, err)
}

// requireServiceError checks both the error kind and the caller-facing message.
func requireServiceError(t *testing.T, err error, kind error, msg string) {
	t.Helper()
	require.Error(t, err)
	assert.ErrorIs(t, err, kind)
	assert.Equal(t, msg, common.PublicMessage(err))
}

// stubUsers overrides individual repository methods; anything not set
// panics through the nil embedded interface.
type stubUsers struct {
	users.Repository

	findUser *models.User
	findErr  error
	setErr   error
	swapOK   bool
	swapErr  error

	setCalls int
}

func (s *stubUsers) FindByID(context.Context, string) (*models.User, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	u := *s.findUser
	return &u, nil
}

func (s *stubUsers) SetRefreshToken(context.Context, string, *string) error {
	s.setCalls++
	return s.setErr
}

func (s *stubUsers) SwapRefreshToken(context.Context, string, string, string) (bool, error) {
	return s.swapOK, s.swapErr
}

type stubManager struct {
	repomanager.RepositoryManager
	users *stubUsers
}

func (m *stubManager) Users() users.Repository { return m.users }
