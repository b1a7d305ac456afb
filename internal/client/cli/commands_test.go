package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/vidtube/internal/client/client"
	"github.com/dmitrijs2005/vidtube/internal/client/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	loggedIn bool
	pingErr  error
	err      error

	registered client.RegisterRequest
	login      string
	password   string
	passwords  [2]string
	account    [2]string
	logouts    int
	refreshes  int
}

func (f *fakeClient) Ping(context.Context) error { return f.pingErr }
func (f *fakeClient) Register(_ context.Context, req client.RegisterRequest) (*client.User, error) {
	f.registered = req
	if f.err != nil {
		return nil, f.err
	}
	return &client.User{UserName: req.UserName}, nil
}
func (f *fakeClient) Login(_ context.Context, login, password string) (*client.User, error) {
	f.login, f.password = login, password
	if f.err != nil {
		return nil, f.err
	}
	f.loggedIn = true
	return &client.User{UserName: "ana"}, nil
}
func (f *fakeClient) Logout(context.Context) error {
	f.logouts++
	f.loggedIn = false
	return f.err
}
func (f *fakeClient) CurrentUser(context.Context) (*client.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &client.User{UserName: "ana", Email: "ana@example.com", FullName: "Ana"}, nil
}
func (f *fakeClient) Refresh(context.Context) error {
	f.refreshes++
	return f.err
}
func (f *fakeClient) ChangePassword(_ context.Context, oldPassword, newPassword string) error {
	f.passwords = [2]string{oldPassword, newPassword}
	return f.err
}
func (f *fakeClient) UpdateAccount(_ context.Context, fullName, email string) (*client.User, error) {
	f.account = [2]string{fullName, email}
	if f.err != nil {
		return nil, f.err
	}
	return &client.User{FullName: fullName, Email: email}, nil
}
func (f *fakeClient) RequestUpload(_ context.Context, kind string) (*client.Upload, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &client.Upload{Key: kind + "/k", URL: "http://s3/" + kind, Method: "PUT", ExpiresAt: time.Date(2025, 6, 1, 10, 15, 0, 0, time.UTC)}, nil
}
func (f *fakeClient) LoggedIn(context.Context) bool { return f.loggedIn }

// stubPasswords makes getPassword return the given values in order.
func stubPasswords(t *testing.T, pws ...string) {
	t.Helper()
	orig := getPassword
	getPassword = func(string, io.Writer) ([]byte, error) {
		if len(pws) == 0 {
			return nil, errors.New("no more passwords")
		}
		pw := pws[0]
		pws = pws[1:]
		return []byte(pw), nil
	}
	t.Cleanup(func() { getPassword = orig })
}

func newTestApp(fc *fakeClient, input string) (*App, *bytes.Buffer) {
	var out bytes.Buffer
	cfg := &config.Config{}
	cfg.LoadDefaults()
	return NewApp(cfg, fc, strings.NewReader(input), &out), &out
}

func TestApp_Register(t *testing.T) {
	stubPasswords(t, "pw1")
	fc := &fakeClient{}
	app, out := newTestApp(fc, "Ana\nana@example.com\nana\navatar/k\n\n")

	require.NoError(t, app.Register(context.Background()))

	assert.Equal(t, client.RegisterRequest{
		FullName: "Ana",
		Email:    "ana@example.com",
		UserName: "ana",
		Password: "pw1",
		Avatar:   "avatar/k",
	}, fc.registered)
	assert.Contains(t, out.String(), "Registered ana")
}

func TestApp_LoginAndLogout(t *testing.T) {
	stubPasswords(t, "pw1")
	fc := &fakeClient{}
	app, out := newTestApp(fc, "ana@example.com\n")
	ctx := context.Background()

	require.NoError(t, app.Login(ctx))
	assert.Equal(t, "ana@example.com", fc.login)
	assert.Equal(t, "pw1", fc.password)
	assert.True(t, app.isLoggedIn())
	assert.Equal(t, "(ana)", app.getStatus())

	require.NoError(t, app.Logout(ctx))
	assert.False(t, app.isLoggedIn())
	assert.Equal(t, "", app.getStatus())
	assert.Contains(t, out.String(), "Logged out")
}

func TestApp_LoginFailureKeepsState(t *testing.T) {
	stubPasswords(t, "bad")
	fc := &fakeClient{err: &client.APIError{StatusCode: 401, Message: "invalid user credentials"}}
	app, _ := newTestApp(fc, "ana\n")

	err := app.Login(context.Background())

	require.ErrorIs(t, err, client.ErrUnauthorized)
	assert.Empty(t, app.userName)
}

func TestApp_AccountCommands(t *testing.T) {
	stubPasswords(t, "old", "new")
	fc := &fakeClient{loggedIn: true}
	app, out := newTestApp(fc, "Ana Maria\nana.maria@example.com\n")
	ctx := context.Background()

	require.NoError(t, app.WhoAmI(ctx))
	require.NoError(t, app.Refresh(ctx))
	require.NoError(t, app.ChangePassword(ctx))
	require.NoError(t, app.UpdateAccount(ctx))
	require.NoError(t, app.Upload(ctx, "coverImage", ""))

	assert.Equal(t, 1, fc.refreshes)
	assert.Equal(t, [2]string{"old", "new"}, fc.passwords)
	assert.Equal(t, [2]string{"Ana Maria", "ana.maria@example.com"}, fc.account)

	s := out.String()
	assert.Contains(t, s, "ana <ana@example.com> Ana")
	assert.Contains(t, s, "Session refreshed")
	assert.Contains(t, s, "Password changed")
	assert.Contains(t, s, "key: coverImage/k")
	assert.Contains(t, s, "PUT http://s3/coverImage")
}

func TestApp_UploadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "me.png")
	require.NoError(t, os.WriteFile(path, []byte("png-bytes"), 0o600))

	var gotURL, gotType string
	var gotBody []byte
	orig := putPresigned
	putPresigned = func(_ context.Context, url, contentType string, body io.Reader, size int64) error {
		gotURL, gotType = url, contentType
		gotBody, _ = io.ReadAll(body)
		return nil
	}
	t.Cleanup(func() { putPresigned = orig })

	app, out := newTestApp(&fakeClient{}, "")

	require.NoError(t, app.Upload(context.Background(), "avatar", path))

	assert.Equal(t, "http://s3/avatar", gotURL)
	assert.Equal(t, "image/png", gotType)
	assert.Equal(t, []byte("png-bytes"), gotBody)
	assert.Contains(t, out.String(), "key: avatar/k")

	err := app.Upload(context.Background(), "avatar", filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}

func TestApp_CheckOnline(t *testing.T) {
	orig := log.Writer()
	log.SetOutput(io.Discard)
	t.Cleanup(func() { log.SetOutput(orig) })

	fc := &fakeClient{}
	app, _ := newTestApp(fc, "")

	app.checkOnline(context.Background())
	assert.Equal(t, ModeOnline, app.Mode)

	fc.pingErr = client.ErrUnavailable
	app.checkOnline(context.Background())
	assert.Equal(t, ModeOffline, app.Mode)
	assert.Equal(t, "(offline)", app.getStatus())
}

func TestApp_RunRestoresSession(t *testing.T) {
	orig := log.Writer()
	log.SetOutput(io.Discard)
	t.Cleanup(func() { log.SetOutput(orig) })
	captureOutput(t)

	fc := &fakeClient{loggedIn: true}
	app, out := newTestApp(fc, "exit\n")

	app.Run(context.Background())

	assert.Equal(t, "ana", app.userName)
	assert.Contains(t, out.String(), "Welcome to vidtube CLI")
}
