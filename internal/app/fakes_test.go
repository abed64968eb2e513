package app_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/iconpropertiesg-arch/iconproperties-sub001/internal/domain"
)

// ---- fakes ----

type fakeRepo struct {
	mu      sync.Mutex
	bySlug  map[string]domain.Property
	order   []string
	listed  int
	findErr error
	saveErr error
	// blindFind makes FindBySlug miss, as if a concurrent insert landed after the check
	blindFind bool
	// onList runs after the rows are read, before ListProperties returns
	onList func()
}

func newFakeRepo() *fakeRepo { return &fakeRepo{bySlug: map[string]domain.Property{}} }

func (f *fakeRepo) CreateWithTranslations(ctx context.Context, p domain.Property) (domain.Property, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return domain.Property{}, f.saveErr
	}
	if _, ok := f.bySlug[p.Slug]; ok {
		return domain.Property{}, domain.ErrSlugConflict
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	f.bySlug[p.Slug] = p
	f.order = append(f.order, p.Slug)
	return p, nil
}

func (f *fakeRepo) FindBySlug(ctx context.Context, slug string) (*domain.Property, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	if f.blindFind {
		return nil, nil
	}
	p, ok := f.bySlug[slug]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (f *fakeRepo) ListProperties(ctx context.Context, q domain.ListQuery) ([]domain.Property, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listed++
	out := make([]domain.Property, 0, len(f.order))
	for i := len(f.order) - 1; i >= 0; i-- {
		p := f.bySlug[f.order[i]]
		if !q.IncludeTranslations {
			p.Translations = nil
		}
		out = append(out, p)
	}
	if f.onList != nil {
		hook := f.onList
		f.onList = nil
		f.mu.Unlock()
		hook()
		f.mu.Lock()
	}
	return out, nil
}

func (f *fakeRepo) slugs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]string(nil), f.order...)
	sort.Strings(out)
	return out
}

type fakeCache struct {
	store map[string]any
	dels  []string
	// ttls records the ttlSec passed to the last Set of each key
	ttls map[string]int
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	if c.store == nil {
		return false, nil
	}
	v, ok := c.store[key]
	if !ok {
		return false, nil
	}
	switch d := dst.(type) {
	case *domain.Property:
		*d = v.(domain.Property)
	case *[]domain.Property:
		*d = v.([]domain.Property)
	case *int64:
		*d = v.(int64)
	}
	return true, nil
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string]any{}
		c.ttls = map[string]int{}
	}
	c.store[key] = v
	c.ttls[key] = ttlSec
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.dels = append(c.dels, key)
	delete(c.store, key)
	return nil
}

