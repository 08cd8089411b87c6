// Package server builds the application dependency graph and runs the
// HTTP server until shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/sohee-an/smart-bookmark-app/internal/api"
	"github.com/sohee-an/smart-bookmark-app/internal/bookmark"
	"github.com/sohee-an/smart-bookmark-app/internal/clock/system"
	"github.com/sohee-an/smart-bookmark-app/internal/config"
	"github.com/sohee-an/smart-bookmark-app/internal/crawler"
	"github.com/sohee-an/smart-bookmark-app/internal/enrich"
	collyfetcher "github.com/sohee-an/smart-bookmark-app/internal/fetcher/colly"
	"github.com/sohee-an/smart-bookmark-app/internal/id/uuid"
	"github.com/sohee-an/smart-bookmark-app/internal/ingest"
	"github.com/sohee-an/smart-bookmark-app/internal/logging"
	"github.com/sohee-an/smart-bookmark-app/internal/metrics"
	"github.com/sohee-an/smart-bookmark-app/internal/quota"
	"github.com/sohee-an/smart-bookmark-app/internal/store"
	"github.com/sohee-an/smart-bookmark-app/internal/store/kv"
	"github.com/sohee-an/smart-bookmark-app/internal/store/local"
	pgstore "github.com/sohee-an/smart-bookmark-app/internal/store/postgres"
)

// App contains the application's dependencies.
type App struct {
	cfg         *config.Config
	logger      *zap.Logger
	apiServer   *api.Server
	redisClient *redis.Client
	remoteStore *pgstore.Store
}

// Run starts the HTTP server and blocks until the context is canceled
// or a termination signal arrives.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("application started")
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler:           a.apiServer.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		a.logger.Info("http server started", zap.Int("port", a.cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("http server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	a.logger.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("server shutdown error", zap.Error(err))
	}

	return a.Close()
}

// Close gracefully releases infrastructure clients.
func (a *App) Close() error {
	if a.remoteStore != nil {
		a.remoteStore.Close()
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warn("redis client close failed", zap.Error(err))
		}
	}
	if err := a.logger.Sync(); err != nil {
		a.logger.Warn("logger sync failed", zap.Error(err))
	}
	a.logger.Info("shutdown complete")
	return nil
}

// Build creates the application's dependencies.
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, fmt.Errorf("logger init failed: %w", err)
	}
	zap.ReplaceGlobals(logger)
	metrics.Init()

	app := &App{cfg: cfg, logger: logger}
	logger.Info("building application dependencies", zap.Int("port", cfg.Server.Port))

	clock := system.New()
	sleeper := system.NewSleeper()
	idGen := uuid.New()

	fetcher := collyfetcher.New(collyfetcher.Config{
		UserAgent: cfg.Crawler.UserAgent,
		Timeout:   cfg.FetchTimeout(),
	})
	logger.Info("using colly fetcher", zap.String("user_agent", cfg.Crawler.UserAgent))

	crawlSvc := crawler.NewService(fetcher, sleeper, crawler.Config{
		MaxRetries: cfg.Crawler.MaxRetries,
		RetryDelay: cfg.RetryDelay(),
	}, logger.Named("crawler"))

	enricher := enrich.New(enrich.Config{
		APIKey:  cfg.AI.APIKey,
		BaseURL: cfg.AI.BaseURL,
		Model:   cfg.AI.Model,
	}, logger.Named("enrich"))

	localStore, err := setupLocalStore(app, idGen, clock)
	if err != nil {
		return nil, err
	}

	remoteStore, err := setupRemoteStore(ctx, app, idGen, clock)
	if err != nil {
		return nil, err
	}

	// A typed nil store must not reach the selector as a non-nil
	// interface, so the conversion is guarded.
	var remote bookmark.Repository
	if remoteStore != nil {
		remote = remoteStore
	}
	stores := store.NewSelector(localStore, remote)

	orchestrator := ingest.New(crawlSvc, enricher, logger.Named("ingest"))
	app.apiServer = api.NewServer(orchestrator, stores, idGen, logger.Named("api"))

	return app, nil
}

func setupLocalStore(app *App, idGen *uuid.Generator, clock *system.Clock) (*local.Store, error) {
	guard := quota.NewGuard(app.cfg.Quota.FreeTierLimit)

	var blob kv.Store
	if app.cfg.Redis.Addr == "" {
		app.logger.Warn("no redis address configured, guest bookmarks held in process memory")
		blob = kv.NewMemory()
	} else {
		app.redisClient = redis.NewClient(&redis.Options{
			Addr:     app.cfg.Redis.Addr,
			Password: app.cfg.Redis.Password,
			DB:       app.cfg.Redis.DB,
		})
		blob = kv.NewRedis(app.redisClient)
		app.logger.Info("redis guest store initialized", zap.String("addr", app.cfg.Redis.Addr))
	}

	return local.New(blob, guard, idGen, clock, app.logger.Named("local_store")), nil
}

func setupRemoteStore(
	ctx context.Context,
	app *App,
	idGen *uuid.Generator,
	clock *system.Clock,
) (*pgstore.Store, error) {
	if app.cfg.DB.DSN == "" {
		app.logger.Warn("no database DSN configured, authenticated requests fall back to the guest store")
		return nil, nil
	}
	remote, err := pgstore.NewStore(ctx, pgstore.Config{
		DSN:      app.cfg.DB.DSN,
		Table:    app.cfg.DB.Table,
		MaxConns: app.cfg.DB.MaxConns,
		MinConns: app.cfg.DB.MinConns,
	}, idGen, clock)
	if err != nil {
		return nil, fmt.Errorf("remote store init failed: %w", err)
	}
	app.remoteStore = remote
	app.logger.Info("remote store initialized", zap.String("table", app.cfg.DB.Table))
	return remote, nil
}
