// Package server wires the vidtube server together: storage backend, token
// codec, services, metrics and the HTTP server, plus graceful shutdown.
package server

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/vidtube/internal/logging"
	"github.com/dmitrijs2005/vidtube/internal/server/auth"
	"github.com/dmitrijs2005/vidtube/internal/server/config"
	"github.com/dmitrijs2005/vidtube/internal/server/httpapi"
	"github.com/dmitrijs2005/vidtube/internal/server/metrics"
	"github.com/dmitrijs2005/vidtube/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/vidtube/internal/server/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	repomanager repomanager.RepositoryManager
	httpServer  *httpapi.HTTPServer
}

// logOutput is where the application logger writes.
var logOutput io.Writer = os.Stdout

// openRepositoryManager picks the storage backend named in the config and
// makes sure its schema is current.
func openRepositoryManager(ctx context.Context, c *config.Config) (repomanager.RepositoryManager, error) {
	var rm repomanager.RepositoryManager

	switch c.StorageBackend {
	case config.StorageMemory:
		rm = repomanager.NewMemoryRepositoryManager()
	case config.StoragePostgres:
		db, err := repomanager.OpenPostgres(ctx, c.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		rm = repomanager.NewPostgresRepositoryManager(db)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", c.StorageBackend)
	}

	if err := rm.RunMigrations(ctx); err != nil {
		_ = rm.Close()
		return nil, err
	}
	return rm, nil
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, err := logging.New(c.LogBackend, logOutput)
	if err != nil {
		return nil, err
	}

	codec, err := auth.NewCodec(c.AccessTokenSecret, c.RefreshTokenSecret, c.AccessTokenTTL, c.RefreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("token codec: %w", err)
	}

	rm, err := openRepositoryManager(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)

	sessions := services.NewSessionService(rm, codec, collector)
	users := services.NewUserService(rm, auth.NewPasswordHasher(c.BcryptCost), sessions)
	media := services.NewMediaService(c)

	hs := httpapi.NewHTTPServer(c, logger, httpapi.Deps{
		Sessions: sessions,
		Users:    users,
		Media:    media,
		Metrics:  collector,
		Gatherer: reg,
	})

	logger.Info(ctx, "Storage ready", "backend", c.StorageBackend)

	return &App{config: c, logger: logger, repomanager: rm, httpServer: hs}, nil
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case <-sigs:
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.httpServer.Run(ctx); err != nil {
		app.logger.Error(ctx, "HTTP server failed", "error", err)
		cancelFunc()
	}
}

// Run serves until ctx is cancelled or a termination signal arrives, then
// closes the storage backend.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(ctx, cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.repomanager.Close(); err != nil {
		app.logger.Error(ctx, "closing storage", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
