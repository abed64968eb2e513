package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/iconpropertiesg-arch/iconproperties-sub001/internal/adapters/auth"
	server "github.com/iconpropertiesg-arch/iconproperties-sub001/internal/adapters/http_server"
	"github.com/iconpropertiesg-arch/iconproperties-sub001/internal/adapters/observability"
	redisad "github.com/iconpropertiesg-arch/iconproperties-sub001/internal/adapters/redis"
	"github.com/iconpropertiesg-arch/iconproperties-sub001/internal/app"
	"github.com/iconpropertiesg-arch/iconproperties-sub001/internal/shared"
	"github.com/iconpropertiesg-arch/iconproperties-sub001/internal/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	// db
	store, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("open store failed")
	}
	defer store.Close()

	// deps
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cache.Close()
	if err := cache.Ping(ctx); err != nil {
		// reads fall through to the store on every miss
		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unavailable")
	}

	props := app.NewPropertyService(store.Repo)
	q := app.NewQueryService(store.Repo, cache, cfg.CacheTTL)

	// http
	srv := server.New()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		Props:    props,
		Q:        q,
		Verifier: auth.NewJWTVerifier(cfg.JWTSecret),
		Cookie:   cfg.AuthCookie,
		Limiter:  server.NewRateLimiter(cfg.WriteRatePerSec, cfg.WriteBurst),
		Health:   store.Ping,
	})

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Mux(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Str("store", cfg.StoreDriver).Msg("API listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	log.Info().Msg("API stopped")
}
