// @title           CareNet Portal API
// @version         1.0
// @description     Session-aware front end for the CareNet care marketplace backend.
// @BasePath        /
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/carenet/portal/internal/api"
	"github.com/carenet/portal/internal/core/ports"
	"github.com/carenet/portal/internal/core/service"
	"github.com/carenet/portal/internal/infrastructure/backend"
	dbmongo "github.com/carenet/portal/internal/infrastructure/db/mongo"
	dbredis "github.com/carenet/portal/internal/infrastructure/db/redis"
	"github.com/carenet/portal/internal/infrastructure/http/handlers"
	"github.com/carenet/portal/internal/infrastructure/store"
	"github.com/carenet/portal/internal/pkg/config"
	"github.com/carenet/portal/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// sessionStore is a KeyValueStore the readiness probe can ping.
type sessionStore interface {
	ports.KeyValueStore
	handlers.Pinger
}

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.Development(),
		Service: "carenet-portal",
	})

	ctx := context.Background()
	kv, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("store", cfg.Session.Store).Msg("session store unavailable")
	}
	defer closeStore()

	client, err := backend.New(backend.Config{
		BaseURL: cfg.Backend.URL,
		Timeout: cfg.Backend.Timeout,
		Logger:  logger.Component(log, "backend"),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("backend client")
	}

	rules := service.NewValidator(nil)
	sessions, err := service.NewSessionManager(ctx, kv, client, client, backend.NewClaimsInspector(), rules, logger.Component(log, "session"))
	if err != nil {
		log.Fatal().Err(err).Msg("restore session")
	}
	portal := service.NewPortal(service.PortalDeps{
		Sessions:       sessions,
		Backend:        client,
		Rules:          rules,
		MaxAvatarBytes: cfg.Upload.MaxBytes,
		Logger:         log,
	})

	e := api.NewRouter(api.Deps{
		Portal: portal,
		Ready: []handlers.Dependency{
			{Name: "session_store", Pinger: kv},
			{Name: "backend", Pinger: client, Optional: true},
		},
		AuthRatePerMinute: cfg.Auth.RatePerMinute,
		AuthBurst:         cfg.Auth.Burst,
		MaxUploadBytes:    cfg.Upload.MaxBytes,
		Logger:            logger.Component(log, "http"),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info().Str("addr", srv.Addr).Str("backend", cfg.Backend.URL).Msg("portal listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown")
	}
	portal.Views.CloseAll()
	log.Info().Msg("stopped")
}

// openStore picks the session store named by SESSION_STORE. The returned
// func releases its connection.
func openStore(ctx context.Context, cfg *config.Config) (sessionStore, func(), error) {
	noop := func() {}
	switch cfg.Session.Store {
	case config.StoreMemory:
		return store.NewMemory(), noop, nil

	case config.StoreRedis:
		client, err := dbredis.Connect(ctx, dbredis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, noop, err
		}
		return dbredis.NewSessionStore(client, cfg.Session.Namespace), func() { _ = client.Close() }, nil

	case config.StoreMongo:
		client, db, err := dbmongo.Connect(ctx, dbmongo.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
			AppName:  "carenet-portal",
		})
		if err != nil {
			return nil, noop, err
		}
		closeFn := func() {
			dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(dctx)
		}
		return dbmongo.NewSessionStore(db, cfg.Session.Namespace), closeFn, nil
	}

	var sealer *store.Sealer
	if cfg.Session.Passphrase != "" {
		s, err := store.NewSealer(cfg.Session.Passphrase)
		if err != nil {
			return nil, noop, err
		}
		sealer = s
	}
	f, err := store.NewFile(cfg.Session.File, sealer)
	if err != nil {
		return nil, noop, err
	}
	return f, noop, nil
}
