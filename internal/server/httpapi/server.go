// Package httpapi exposes the account and session operations over HTTP:
// a chi router, the access-token gate, cookie handling and the JSON
// response envelope.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/vidtube/internal/logging"
	"github.com/dmitrijs2005/vidtube/internal/server/config"
	"github.com/dmitrijs2005/vidtube/internal/server/models"
	"github.com/dmitrijs2005/vidtube/internal/server/services"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	shutdownTimeout        = 10 * time.Second
	rateLimiterSweepPeriod = time.Minute
	rateLimiterIdleTTL     = 10 * time.Minute
)

type SessionService interface {
	Authenticate(ctx context.Context, raw string) (*models.Identity, error)
	Rotate(ctx context.Context, raw string) (*services.TokenPair, error)
	Terminate(ctx context.Context, userID string) error
}

type UserService interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.Identity, error)
	Login(ctx context.Context, in services.LoginInput) (*models.Identity, *services.TokenPair, error)
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error
	UpdateAccount(ctx context.Context, userID, fullName, email string) (*models.Identity, error)
}

type MediaService interface {
	PresignUpload(ctx context.Context, kind string) (*services.Upload, error)
}

// Metrics is the subset of metrics.Collector the HTTP layer reports to.
type Metrics interface {
	RecordHTTP(route string, statusCode int, d time.Duration)
	RecordRateLimited()
}

type nopMetrics struct{}

func (nopMetrics) RecordHTTP(string, int, time.Duration) {}
func (nopMetrics) RecordRateLimited()                    {}

// Deps are the collaborators of the HTTP server. Metrics and Gatherer are
// optional; without a Gatherer there is no /metrics route.
type Deps struct {
	Sessions SessionService
	Users    UserService
	Media    MediaService
	Metrics  Metrics
	Gatherer prometheus.Gatherer
}

type HTTPServer struct {
	address string
	logger  logging.Logger
	cookies cookieSettings
	origin  string

	sessions SessionService
	users    UserService
	media    MediaService
	metrics  Metrics
	gatherer prometheus.Gatherer

	limiter *RateLimiter
}

func NewHTTPServer(cfg *config.Config, l logging.Logger, deps Deps) *HTTPServer {
	m := deps.Metrics
	if m == nil {
		m = nopMetrics{}
	}

	return &HTTPServer{
		address: cfg.HTTPAddress,
		logger:  l.With("module", "http_server"),
		cookies: cookieSettings{
			secure:     cfg.CookieSecure,
			accessTTL:  cfg.AccessTokenTTL,
			refreshTTL: cfg.RefreshTokenTTL,
		},
		origin:   cfg.CORSOrigin,
		sessions: deps.Sessions,
		users:    deps.Users,
		media:    deps.Media,
		metrics:  m,
		gatherer: deps.Gatherer,
		limiter:  NewRateLimiter(cfg.LoginRatePerMinute, cfg.LoginRateBurst, m.RecordRateLimited),
	}
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on listen until ctx is cancelled, then shuts
// down gracefully. It returns only after in-flight requests have finished
// or the shutdown timeout has passed.
func (s *HTTPServer) Serve(ctx context.Context, listen net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go s.limiter.Run(ctx, rateLimiterSweepPeriod, rateLimiterIdleTTL)

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-done
	return nil
}
