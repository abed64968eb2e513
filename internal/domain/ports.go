package domain

import "context"

type PropertyRepository interface {
	// Write path. Must be atomic: the property and all its translations, or nothing.
	// A unique violation on slug is reported as ErrSlugConflict.
	CreateWithTranslations(ctx context.Context, p Property) (Property, error)

	// Read paths
	FindBySlug(ctx context.Context, slug string) (*Property, error) // nil, nil when absent
	ListProperties(ctx context.Context, q ListQuery) ([]Property, error)
}

// TokenVerifier checks an opaque auth token and yields the caller.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (Principal, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

type Principal struct {
	Subject string
	Email   string
	Role    string
}

type ListQuery struct {
	Locale              string // empty: all locales
	IncludeTranslations bool
}
