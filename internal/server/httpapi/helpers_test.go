package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/vidtube/internal/logging"
	"github.com/dmitrijs2005/vidtube/internal/server/auth"
	"github.com/dmitrijs2005/vidtube/internal/server/config"
	"github.com/dmitrijs2005/vidtube/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/vidtube/internal/server/services"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testEnv struct {
	cfg      *config.Config
	codec    *auth.Codec
	sessions *services.SessionService
	users    *services.UserService
	media    *stubMedia
	server   *HTTPServer
	handler  http.Handler
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.CookieSecure = false
	cfg.LoginRatePerMinute = 6000
	cfg.LoginRateBurst = 1000
	return cfg
}

func newTestEnv(t *testing.T, cfg *config.Config, deps ...func(*Deps)) *testEnv {
	t.Helper()

	codec, err := auth.NewCodec(cfg.AccessTokenSecret, cfg.RefreshTokenSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	require.NoError(t, err)

	rm := repomanager.NewMemoryRepositoryManager()
	sessions := services.NewSessionService(rm, codec, nil)
	users := services.NewUserService(rm, auth.NewPasswordHasher(bcrypt.MinCost), sessions)
	media := &stubMedia{}

	d := Deps{Sessions: sessions, Users: users, Media: media}
	for _, f := range deps {
		f(&d)
	}

	srv := NewHTTPServer(cfg, discardLogger(), d)
	return &testEnv{
		cfg:      cfg,
		codec:    codec,
		sessions: sessions,
		users:    users,
		media:    media,
		server:   srv,
		handler:  srv.Handler(),
	}
}

func discardLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type stubMedia struct {
	kinds []string
	err   error
}

func (m *stubMedia) PresignUpload(_ context.Context, kind string) (*services.Upload, error) {
	m.kinds = append(m.kinds, kind)
	if m.err != nil {
		return nil, m.err
	}
	return &services.Upload{
		Key:       kind + "/2025/06/01/abc",
		URL:       "http://127.0.0.1:9000/media/" + kind + "/2025/06/01/abc?X-Amz-Signature=x",
		Method:    http.MethodPut,
		ExpiresAt: time.Date(2025, 6, 1, 10, 15, 0, 0, time.UTC),
	}, nil
}

type request struct {
	method  string
	path    string
	body    any
	cookies []*http.Cookie
	header  http.Header
}

func (e *testEnv) do(t *testing.T, req request) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader
	if req.body != nil {
		b, err := json.Marshal(req.body)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	}

	r := httptest.NewRequest(req.method, req.path, body)
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	for _, c := range req.cookies {
		r.AddCookie(c)
	}
	for k, vs := range req.header {
		for _, v := range vs {
			r.Header.Add(k, v)
		}
	}

	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, r)
	return rec
}

type testEnvelope struct {
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Success    bool            `json:"success"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) testEnvelope {
	t.Helper()
	var env testEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func responseCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func registerBody(name string) map[string]string {
	return map[string]string{
		"fullName": "Test " + name,
		"email":    name + "@example.com",
		"username": name,
		"password": "pw1",
		"avatar":   "avatar/2025/06/01/" + name,
	}
}

// registerAndLogin returns the session cookies of a freshly created user.
func (e *testEnv) registerAndLogin(t *testing.T, name string) (access, refresh *http.Cookie) {
	t.Helper()

	rec := e.do(t, request{method: http.MethodPost, path: "/api/v1/users/register", body: registerBody(name)})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = e.do(t, request{method: http.MethodPost, path: "/api/v1/users/login", body: map[string]string{
		"username": name,
		"password": "pw1",
	}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	access = responseCookie(rec, "accessToken")
	refresh = responseCookie(rec, "refreshToken")
	require.NotNil(t, access)
	require.NotNil(t, refresh)
	return access, refresh
}
