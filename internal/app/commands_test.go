package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iconpropertiesg-arch/iconproperties-sub001/internal/app"
	"github.com/iconpropertiesg-arch/iconproperties-sub001/internal/domain"
)

func validInput() app.CreatePropertyInput {
	return app.CreatePropertyInput{
		Slug:        "villa-marbella",
		Status:      "for-sale",
		Type:        "villa",
		Price:       "1250000.50",
		Year:        "",
		Location:    json.RawMessage(`{"city":"Marbella","country":"ES"}`),
		Coordinates: json.RawMessage(`{"lat":36.51,"lng":-4.88}`),
		Translations: map[string]app.TranslationInput{
			"en": {Title: "A", Description: "B"},
			"de": {Title: "C", Description: "D"},
		},
	}
}

func TestCreate_PersistsCoercedRecord(t *testing.T) {
	repo := newFakeRepo()
	svc := app.NewPropertyService(repo)

	p, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "villa-marbella", p.Slug)
	assert.Equal(t, 1250000.50, p.Price)
	assert.False(t, p.Year.Valid)
	assert.False(t, p.Bedrooms.Valid)
	assert.False(t, p.Bathrooms.Valid)
	assert.False(t, p.Area.Valid)
	assert.False(t, p.Featured)
	assert.NotNil(t, p.Images)
	assert.Len(t, p.Images, 0)
	assert.JSONEq(t, `{"city":"Marbella","country":"ES"}`, string(p.Location))

	require.Len(t, p.Translations, 2)
	assert.Equal(t, "de", p.Translations[0].Locale)
	assert.Equal(t, "en", p.Translations[1].Locale)
	for _, tr := range p.Translations {
		assert.Equal(t, p.ID, tr.PropertyID)
		assert.False(t, tr.Subtitle.Valid)
		assert.NotNil(t, tr.Features)
		assert.Len(t, tr.Features, 0)
	}
}

func TestCreate_SecondSubmissionConflicts(t *testing.T) {
	repo := newFakeRepo()
	svc := app.NewPropertyService(repo)

	_, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), validInput())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSlugConflict)
	assert.Contains(t, err.Error(), "already exists")
	assert.Equal(t, []string{"villa-marbella"}, repo.slugs())
}

func TestCreate_StoreConflictAfterPrecheck(t *testing.T) {
	repo := newFakeRepo()
	svc := app.NewPropertyService(repo)
	_, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	repo.blindFind = true
	_, err = svc.Create(context.Background(), validInput())
	assert.ErrorIs(t, err, domain.ErrSlugConflict)
}

func TestCreate_TitleFallback(t *testing.T) {
	in := validInput()
	in.Slug = ""
	in.Translations["en"] = app.TranslationInput{Title: "Sea View Villa #3", Description: "x"}

	p, err := app.NewPropertyService(newFakeRepo()).Create(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "sea-view-villa-3", p.Slug)
}

func TestCreate_InvalidSlug(t *testing.T) {
	in := validInput()
	in.Slug = "!!!"
	delete(in.Translations, "en")

	repo := newFakeRepo()
	_, err := app.NewPropertyService(repo).Create(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrInvalidSlug)
	assert.Empty(t, repo.slugs())
}

func TestCreate_MissingFieldsBeforeDerivation(t *testing.T) {
	repo := newFakeRepo()
	repo.findErr = errors.New("must not be called")

	_, err := app.NewPropertyService(repo).Create(context.Background(), app.CreatePropertyInput{Slug: "x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMissingField)

	var de *domain.Error
	require.ErrorAs(t, err, &de)
	assert.ElementsMatch(t, []string{"status", "type", "price", "translations"}, de.Fields)
}

func TestCreate_EmptyTranslationsIsMissing(t *testing.T) {
	in := validInput()
	in.Translations = map[string]app.TranslationInput{}
	_, err := app.NewPropertyService(newFakeRepo()).Create(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrMissingField)
}

func TestCreate_UnparsablePriceIsPersistenceFailure(t *testing.T) {
	in := validInput()
	in.Price = "a lot"
	repo := newFakeRepo()
	_, err := app.NewPropertyService(repo).Create(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.Empty(t, repo.slugs())
}

func TestCreate_StoreFailureSurfacesMessage(t *testing.T) {
	repo := newFakeRepo()
	repo.saveErr = errors.New("deadlock detected")
	_, err := app.NewPropertyService(repo).Create(context.Background(), validInput())

	var de *domain.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, domain.KindPersistenceFailure, de.Kind)
	assert.Equal(t, 500, de.Status)
	assert.Equal(t, "deadlock detected", de.Message)
}

func TestCreate_LookupFailure(t *testing.T) {
	repo := newFakeRepo()
	repo.findErr = errors.New("db down")
	_, err := app.NewPropertyService(repo).Create(context.Background(), validInput())
	assert.ErrorIs(t, err, domain.ErrPersistence)
}

func TestCreate_OptionalFieldsCarried(t *testing.T) {
	in := validInput()
	in.Year = 2019.0
	in.Bedrooms = "4"
	in.Bathrooms = 3.0
	in.Area = "350,5"
	in.Featured = true
	in.Images = []json.RawMessage{json.RawMessage(`{"url":"/a.jpg"}`), json.RawMessage(`"/b.jpg"`)}
	in.Translations["es"] = app.TranslationInput{
		Title: "E", Description: "F", Subtitle: "Vistas al mar", Features: []string{"pool", "garden"},
	}

	p, err := app.NewPropertyService(newFakeRepo()).Create(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, int64(2019), p.Year.Int64)
	assert.Equal(t, int64(4), p.Bedrooms.Int64)
	assert.Equal(t, int64(3), p.Bathrooms.Int64)
	assert.Equal(t, 350.5, p.Area.Float64)
	assert.True(t, p.Featured)
	assert.Len(t, p.Images, 2)

	es, ok := p.Translation("es")
	require.True(t, ok)
	assert.Equal(t, "Vistas al mar", es.Subtitle.String)
	assert.Equal(t, []string{"pool", "garden"}, es.Features)

}
