// @title           Asset Console API
// @version         1.0
// @description     Server-side session console for the asset management API. Each browser
// @description     profile is identified by an httpOnly cookie; tokens never leave the server.
// @BasePath        /
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	_ "github.com/assetdesk/console/docs"
	"github.com/assetdesk/console/internal/api"
	"github.com/assetdesk/console/internal/api/handler"
	"github.com/assetdesk/console/internal/api/middleware"
	"github.com/assetdesk/console/internal/core/ports"
	"github.com/assetdesk/console/internal/core/service"
	"github.com/assetdesk/console/internal/infrastructure/apiclient"
	"github.com/assetdesk/console/internal/infrastructure/config"
	"github.com/assetdesk/console/internal/infrastructure/db/memory"
	mongodb "github.com/assetdesk/console/internal/infrastructure/db/mongo"
	redisdb "github.com/assetdesk/console/internal/infrastructure/db/redis"
	"github.com/assetdesk/console/internal/infrastructure/queue"
	"github.com/assetdesk/console/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "asset-console",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("console stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	client := apiclient.New(cfg.API.BaseURL,
		apiclient.WithTimeout(cfg.API.Timeout),
		apiclient.WithLogger(log),
	)
	readiness := map[string]handler.Pinger{"asset_api": client}

	stores, closeStore, err := openTokenStore(ctx, cfg, readiness)
	if err != nil {
		return err
	}

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	dispatcher := queue.NewRevocationDispatcher(cfg.RevocationWorkers, client, log)
	dispatcher.Start(workerCtx)

	registry := service.NewProfileRegistry(func(id string) *ports.Profile {
		store := stores.ForProfile(id)
		sess := service.NewSessionService(id, client, store,
			service.WithRevoker(dispatcher),
			service.WithRefreshTimeout(cfg.API.RefreshTimeout),
			service.WithSessionLogger(log),
		)
		authorized := client.Authorized(store, sess)
		return &ports.Profile{ID: id, Session: sess, Inventory: authorized, Account: authorized}
	}, log)
	go registry.Run(ctx, cfg.Session.SweepInterval, cfg.Session.IdleTimeout)

	e := api.NewRouter(api.Deps{
		Profiles:  registry,
		Auth:      client,
		Cookie:    middleware.CookieConfig{Name: cfg.Session.Cookie, Secure: cfg.Session.CookieSecure},
		Readiness: readiness,
		Log:       log,
	})

	srvErr := make(chan error, 1)
	go func() {
		defer close(srvErr)
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srvErr <- err
		}
	}()
	log.Info().
		Str("port", cfg.Port).
		Str("token_store", cfg.TokenStore).
		Str("api", client.BaseURL()).
		Msg("console listening")

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-srvErr:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	stopWorkers()
	dispatcher.Wait()
	if err := closeStore(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("token store shutdown")
	}

	log.Info().Msg("console stopped")
	return runErr
}

// openTokenStore connects the configured backend and registers it for the
// readiness probe.
func openTokenStore(ctx context.Context, cfg *config.Config, readiness map[string]handler.Pinger) (ports.TokenStoreProvider, func(context.Context) error, error) {
	switch cfg.TokenStore {
	case config.StoreRedis:
		client, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, nil, err
		}
		provider := redisdb.NewTokenStoreProvider(client)
		readiness["redis"] = provider
		return provider, func(context.Context) error { return client.Close() }, nil

	case config.StoreMongo:
		client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, nil, err
		}
		provider := mongodb.NewTokenStoreProvider(db)
		readiness["mongodb"] = provider
		return provider, client.Disconnect, nil

	default:
		return memory.NewProvider(), func(context.Context) error { return nil }, nil
	}
}
