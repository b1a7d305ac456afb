package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/vidtube/internal/common"
)

// messageInvalidAccessToken is what the API answers for an expired or
// otherwise unusable access token.
const messageInvalidAccessToken = "invalid access token"

type envelope struct {
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Success    bool            `json:"success"`
}

type loginResponse struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type HTTPClient struct {
	baseURL string
	http    *http.Client
	store   SessionStore
}

func NewHTTPClient(baseURL string, timeout time.Duration, store SessionStore) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		store:   store,
	}
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.call(ctx, http.MethodGet, "/healthz", nil, nil, "")
}

func (c *HTTPClient) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	var u User
	if err := c.call(ctx, http.MethodPost, "/api/v1/users/register", req, &u, ""); err != nil {
		return nil, err
	}
	return &u, nil
}

// Login authenticates with a username or an email and stores the new
// session.
func (c *HTTPClient) Login(ctx context.Context, login, password string) (*User, error) {
	req := map[string]string{"password": password}
	if strings.Contains(login, "@") {
		req["email"] = login
	} else {
		req["username"] = login
	}

	var resp loginResponse
	if err := c.call(ctx, http.MethodPost, "/api/v1/users/login", req, &resp, ""); err != nil {
		return nil, err
	}

	if err := c.store.Save(ctx, Tokens{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken}); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return resp.User, nil
}

// Refresh rotates the stored session.
func (c *HTTPClient) Refresh(ctx context.Context) error {
	t, err := c.store.Load(ctx)
	if err != nil {
		return err
	}
	if t.RefreshToken == "" {
		return ErrNotLoggedIn
	}

	var next Tokens
	err = c.call(ctx, http.MethodPost, "/api/v1/users/refresh-token", Tokens{RefreshToken: t.RefreshToken}, &next, "")
	if err != nil {
		return err
	}
	return c.store.Save(ctx, next)
}

// Logout ends the session on the server and forgets it locally. The local
// session is cleared even when the server already considers it gone.
func (c *HTTPClient) Logout(ctx context.Context) error {
	err := c.authorized(ctx, http.MethodPost, "/api/v1/users/logout", nil, nil)
	if clearErr := c.store.Clear(ctx); clearErr != nil {
		return clearErr
	}
	if errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrNotLoggedIn) {
		return nil
	}
	return err
}

func (c *HTTPClient) CurrentUser(ctx context.Context) (*User, error) {
	var u User
	if err := c.authorized(ctx, http.MethodGet, "/api/v1/users/current-user", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	return c.authorized(ctx, http.MethodPost, "/api/v1/users/change-password", map[string]string{
		"oldPassword": oldPassword,
		"newPassword": newPassword,
	}, nil)
}

func (c *HTTPClient) UpdateAccount(ctx context.Context, fullName, email string) (*User, error) {
	var u User
	err := c.authorized(ctx, http.MethodPatch, "/api/v1/users/update-account", map[string]string{
		"fullName": fullName,
		"email":    email,
	}, &u)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) RequestUpload(ctx context.Context, kind string) (*Upload, error) {
	var u Upload
	if err := c.call(ctx, http.MethodPost, "/api/v1/media/uploads", map[string]string{"kind": kind}, &u, ""); err != nil {
		return nil, err
	}
	return &u, nil
}

// LoggedIn reports whether a session is stored locally. It does not ask the
// server.
func (c *HTTPClient) LoggedIn(ctx context.Context) bool {
	t, err := c.store.Load(ctx)
	return err == nil && t.RefreshToken != ""
}

// authorized calls a gated endpoint. If the access token is rejected it
// rotates the session once and repeats the call.
func (c *HTTPClient) authorized(ctx context.Context, method, path string, in, out any) error {
	t, err := c.store.Load(ctx)
	if err != nil {
		return err
	}
	if t.AccessToken == "" {
		return ErrNotLoggedIn
	}

	err = c.call(ctx, method, path, in, out, t.AccessToken)

	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnauthorized || apiErr.Message != messageInvalidAccessToken {
		return err
	}
	if t.RefreshToken == "" {
		return err
	}

	if err := c.Refresh(ctx); err != nil {
		return err
	}

	t, err = c.store.Load(ctx)
	if err != nil {
		return err
	}
	return c.call(ctx, method, path, in, out, t.AccessToken)
}

// call performs one request and decodes the envelope's data into out.
func (c *HTTPClient) call(ctx context.Context, method, path string, in, out any, accessToken string) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerScheme+" "+accessToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return fmt.Errorf("decode response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return &APIError{StatusCode: resp.StatusCode, Message: env.Message}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode data: %w", err)
		}
	}
	return nil
}
