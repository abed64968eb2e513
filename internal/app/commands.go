package app

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/iconpropertiesg-arch/iconproperties-sub001/internal/domain"
)

// CreatePropertyInput is the POST /properties payload. Numeric fields are left
// untyped because the admin form sends them as strings.
type CreatePropertyInput struct {
	Slug         string                      `json:"slug"`
	Status       string                      `json:"status" validate:"required"`
	Type         string                      `json:"type" validate:"required"`
	Year         any                         `json:"year"`
	Price        any                         `json:"price" validate:"required"`
	Bedrooms     any                         `json:"bedrooms"`
	Bathrooms    any                         `json:"bathrooms"`
	Area         any                         `json:"area"`
	Location     json.RawMessage             `json:"location"`
	Coordinates  json.RawMessage             `json:"coordinates"`
	Featured     bool                        `json:"featured"`
	Images       []json.RawMessage           `json:"images"`
	Translations map[string]TranslationInput `json:"translations" validate:"required,min=1"`
}

type TranslationInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Subtitle    string   `json:"subtitle"`
	Features    []string `json:"features"`
}

type PropertyService struct {
	repo domain.PropertyRepository
}

func NewPropertyService(r domain.PropertyRepository) *PropertyService {
	return &PropertyService{repo: r}
}

// Create runs the ingestion pipeline: required fields, slug resolution, mapping,
// then one atomic write. Every failure is a *domain.Error and nothing is retried.
func (s *PropertyService) Create(ctx context.Context, in CreatePropertyInput) (domain.Property, error) {
	if err := validateInput(in); err != nil {
		return domain.Property{}, err
	}

	slug, err := s.resolveUniqueSlug(ctx, in)
	if err != nil {
		return domain.Property{}, err
	}

	p, err := mapProperty(in, slug)
	if err != nil {
		return domain.Property{}, err
	}

	created, err := s.repo.CreateWithTranslations(ctx, p)
	if err != nil {
		// The store's unique index is the authoritative check; a concurrent
		// insert between FindBySlug and here lands in this branch.
		if errors.Is(err, domain.ErrSlugConflict) {
			return domain.Property{}, slugConflict(slug)
		}
		log.Error().Err(err).Str("slug", slug).Msg("create property failed")
		return domain.Property{}, domain.ErrPersistence.Msg("%s", err.Error()).WithCause(err)
	}

	log.Info().
		Str("id", created.ID).
		Str("slug", created.Slug).
		Int("translations", len(created.Translations)).
		Msg("property created")
	return created, nil
}

func (s *PropertyService) resolveUniqueSlug(ctx context.Context, in CreatePropertyInput) (string, error) {
	var enTitle string
	if en, ok := in.Translations["en"]; ok {
		enTitle = en.Title
	}
	slug, err := ResolveSlug(in.Slug, enTitle)
	if err != nil {
		return "", err
	}

	existing, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		log.Error().Err(err).Str("slug", slug).Msg("slug lookup failed")
		return "", domain.ErrPersistence.Msg("%s", err.Error()).WithCause(err)
	}
	if existing != nil {
		return "", slugConflict(slug)
	}
	return slug, nil
}

func slugConflict(slug string) error {
	return domain.ErrSlugConflict.Msg("A property with slug %q already exists. Choose a different slug or title.", slug)
}
