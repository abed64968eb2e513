package app

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	gojson "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"github.com/iconpropertiesg-arch/iconproperties-sub001/internal/domain"
)

// ImportService pushes listing payloads from a feed or file through the same
// pipeline as POST /properties.
type ImportService struct {
	props   *PropertyService
	observe func(error)
}

func NewImportService(p *PropertyService) *ImportService {
	return &ImportService{props: p}
}

// OnResult registers f to be called once per listing with its outcome.
func (s *ImportService) OnResult(f func(error)) *ImportService {
	s.observe = f
	return s
}

type ImportSummary struct {
	Created  int
	Conflict int
	Rejected int
	Failed   int
}

func (s *ImportService) ImportListing(ctx context.Context, raw json.RawMessage) (domain.Property, error) {
	var in CreatePropertyInput
	if err := gojson.Unmarshal(raw, &in); err != nil {
		return domain.Property{}, domain.ErrInvalidRequest.Msg("invalid listing payload: %s", err).WithCause(err)
	}
	return s.props.Create(ctx, in)
}

// ImportAll imports listings with at most workers in flight. A failing listing
// never stops the batch; outcomes are tallied per kind.
func (s *ImportService) ImportAll(ctx context.Context, listings []json.RawMessage, workers int) (ImportSummary, error) {
	if workers <= 0 {
		workers = 1
	}
	sem := semaphore.NewWeighted(int64(workers))
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		sum ImportSummary
	)

	for i, raw := range listings {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			wg.Wait()
			return sum, err
		}

		wg.Add(1)
		go func(idx int, raw json.RawMessage) {
			defer wg.Done()
			defer sem.Release(1)

			p, err := s.ImportListing(ctx, raw)
			if s.observe != nil {
				s.observe(err)
			}
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				sum.Created++
				log.Info().Int("index", idx).Str("slug", p.Slug).Msg("import ok")
			case errors.Is(err, domain.ErrSlugConflict):
				sum.Conflict++
				log.Warn().Int("index", idx).Err(err).Msg("import skipped")
			case errors.Is(err, domain.ErrPersistence):
				sum.Failed++
				log.Error().Int("index", idx).Err(err).Msg("import failed")
			default:
				sum.Rejected++
				log.Warn().Int("index", idx).Err(err).Msg("import rejected")
			}
		}(i, raw)
	}

	wg.Wait()
	return sum, nil
}
