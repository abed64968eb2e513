package app

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"

	"github.com/iconpropertiesg-arch/iconproperties-sub001/internal/domain"
)

type QueryService struct {
	repo     domain.PropertyRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(r domain.PropertyRepository, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{repo: r, cache: c, cacheTTL: ttl}
}

// listGenKey holds the current list generation. Forget bumps it, which orphans
// every cached list variant whatever locale it was requested with.
const listGenKey = "properties:list:gen"

func listKey(gen int64, q domain.ListQuery) string {
	return fmt.Sprintf("properties:list:%d:%s:%t", gen, q.Locale, q.IncludeTranslations)
}

func (s *QueryService) listGen(ctx context.Context) int64 {
	var gen int64
	if ok, _ := s.cache.Get(ctx, listGenKey, &gen); !ok {
		return 0
	}
	return gen
}

func propertyKey(slug, locale string) string {
	return fmt.Sprintf("property:%s:%s", slug, locale)
}

// ListProperties returns every property, newest first.
func (s *QueryService) ListProperties(ctx context.Context, q domain.ListQuery) ([]domain.Property, error) {
	var key string
	var out []domain.Property
	if s.cache != nil {
		// read before the repo so a concurrent Forget leaves this write orphaned
		key = listKey(s.listGen(ctx), q)
		if ok, _ := s.cache.Get(ctx, key, &out); ok {
			return out, nil
		}
	}

	ps, err := s.repo.ListProperties(ctx, q)
	if err != nil {
		return nil, err
	}
	if ps == nil {
		ps = []domain.Property{}
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, ps, int(s.cacheTTL.Seconds()))
	}
	return ps, nil
}

// GetProperty returns one property; a non-empty locale keeps only that translation.
func (s *QueryService) GetProperty(ctx context.Context, slug, locale string) (domain.Property, error) {
	key := propertyKey(slug, locale)
	var p domain.Property
	if s.cache != nil {
		if ok, _ := s.cache.Get(ctx, key, &p); ok {
			return p, nil
		}
	}

	found, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return domain.Property{}, err
	}
	if found == nil {
		return domain.Property{}, domain.ErrNotFound
	}
	p = *found
	if locale != "" {
		p.Translations = lo.Filter(p.Translations, func(t domain.PropertyTranslation, _ int) bool {
			return t.Locale == locale
		})
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, p, int(s.cacheTTL.Seconds()))
	}
	return p, nil
}

// Forget starts a new list generation and evicts any cached reads of slug.
func (s *QueryService) Forget(ctx context.Context, slug string) {
	if s.cache == nil {
		return
	}
	gen := s.listGen(ctx) + 1
	if now := time.Now().UnixNano(); now > gen {
		gen = now
	}
	// no TTL: losing the key would resurrect generation 0
	_ = s.cache.Set(ctx, listGenKey, gen, 0)
	for _, l := range append([]string{""}, domain.Locales...) {
		_ = s.cache.Del(ctx, propertyKey(slug, l))
	}
}
