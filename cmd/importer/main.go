package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/iconpropertiesg-arch/iconproperties-sub001/internal/adapters/feed"
	"github.com/iconpropertiesg-arch/iconproperties-sub001/internal/adapters/observability"
	redisad "github.com/iconpropertiesg-arch/iconproperties-sub001/internal/adapters/redis"
	"github.com/iconpropertiesg-arch/iconproperties-sub001/internal/app"
	"github.com/iconpropertiesg-arch/iconproperties-sub001/internal/shared"
	"github.com/iconpropertiesg-arch/iconproperties-sub001/internal/storage"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg := shared.Load()

	source := flag.String("source", cfg.FeedBase, "feed base URL or path to a JSON file of listings")
	workers := flag.Int("workers", cfg.ImportWorkers, "concurrent creates")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	if *source == "" {
		log.Error().Msg("no source: pass -source or set FEED_BASE_URL")
		return 1
	}
	log.Info().
		Str("source", *source).
		Int("workers", *workers).
		Str("store", cfg.StoreDriver).
		Msg("importer starting")

	listings, err := loadListings(ctx, *source, cfg.FeedKey)
	if err != nil {
		log.Error().Err(err).Msg("load listings failed")
		return 1
	}
	log.Info().Int("count", len(listings)).Msg("listings loaded")

	store, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Error().Err(err).Msg("open store failed")
		return 1
	}
	defer store.Close()

	imp := app.NewImportService(app.NewPropertyService(store.Repo)).
		OnResult(func(err error) { observability.ObserveCreate("import", err) })

	sum, err := imp.ImportAll(ctx, listings, *workers)
	if err != nil {
		log.Error().Err(err).Msg("import interrupted")
	}

	// the API caches list reads; drop them so new rows show up before TTL
	if sum.Created > 0 {
		cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		app.NewQueryService(store.Repo, cache, cfg.CacheTTL).Forget(ctx, "")
		_ = cache.Close()
	}

	log.Info().
		Int("created", sum.Created).
		Int("conflict", sum.Conflict).
		Int("rejected", sum.Rejected).
		Int("failed", sum.Failed).
		Msg("import completed")
	if sum.Failed > 0 || err != nil {
		return 1
	}
	return 0
}

func loadListings(ctx context.Context, source, key string) ([]json.RawMessage, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		client, err := feed.New(source, key, 5)
		if err != nil {
			return nil, err
		}
		return client.FetchListings(ctx)
	}
	b, err := os.ReadFile(source)
	if err != nil {
		return nil, err
	}
	return feed.DecodeListings(b)
}
