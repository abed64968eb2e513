package app_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iconpropertiesg-arch/iconproperties-sub001/internal/app"
	"github.com/iconpropertiesg-arch/iconproperties-sub001/internal/domain"
)

func TestResolveSlug(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		enTitle string
		want    string
	}{
		{"already normalized", "sea-view-villa-3", "", "sea-view-villa-3"},
		{"digits only", "2024", "", "2024"},
		{"pasted url", "https://example.com/listings/Villa Bonita!", "", "villa-bonita"},
		{"url with trailing slash", "https://example.com/listings/casa-azul/", "", "casa-azul"},
		{"localhost url", "localhost:3000/de/properties/Penthouse_Marbella", "", "penthouse-marbella"},
		{"bare domain", "www.villa-sol.com", "", "villa-solcom"},
		{"http prefix without path", "http-villa", "", "http-villa"},
		{"mixed case and spaces", "  Ocean   Front  Estate ", "", "ocean-front-estate"},
		{"underscores and hyphen runs", "a__b--c _ d", "", "a-b-c-d"},
		{"leading and trailing hyphens", "--villa--", "", "villa"},
		{"accents are dropped", "Casa Señorial", "", "casa-seorial"},
		{"title fallback", "", "Sea View Villa #3", "sea-view-villa-3"},
		{"title fallback when slug sanitizes away", "!!!", "Finca Rústica", "finca-rstica"},
		{"slug wins over title", "given", "Other Title", "given"},
		{"nbsp in title", "", "Sea\u00a0View Villa", "sea-view-villa"},
		{"em space", "Villa\u2003Sol", "", "villa-sol"},
		{"ideographic space", "Villa\u3000Sol", "", "villa-sol"},
		{"vertical tab", "Villa\vSol", "", "villa-sol"},
		{"byte order mark", "\ufeffVilla Sol", "", "villa-sol"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := app.ResolveSlug(tc.raw, tc.enTitle)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestResolveSlug_Invalid(t *testing.T) {
	for _, raw := range []string{"", "!!!", "   ", "https://example.com/!!!/"} {
		_, err := app.ResolveSlug(raw, "")
		assert.ErrorIs(t, err, domain.ErrInvalidSlug, "raw=%q", raw)
	}
	_, err := app.ResolveSlug("", "###")
	assert.ErrorIs(t, err, domain.ErrInvalidSlug)

	_, err = app.ResolveSlug(strings.Repeat("a", 192), "")
	assert.ErrorIs(t, err, domain.ErrInvalidSlug)
	got, err := app.ResolveSlug(strings.Repeat("a", 191), "")
	require.NoError(t, err)
	assert.Len(t, got, 191)
}

func TestSlugSteps_Individually(t *testing.T) {
	assert.Equal(t, "Villa Bonita!", app.LastURLSegment("https://example.com/listings/Villa Bonita!"))
	assert.Equal(t, "plain value", app.LastURLSegment("plain value"))
	assert.Equal(t, "http:", app.LastURLSegment("http://///"))

	assert.Equal(t, "example.com", app.StripSchemeAndWWW("https://www.example.com"))
	assert.Equal(t, "example.com", app.StripSchemeAndWWW("http://example.com"))
	assert.Equal(t, "villa", app.StripSchemeAndWWW("villa"))

	assert.Equal(t, "hello-world", app.NormalizeSlug(" Hello, World! "))
	assert.Equal(t, "", app.NormalizeSlug("?!"))
}

func TestSlugSteps_Order(t *testing.T) {
	var names []string
	for _, st := range app.SlugSteps() {
		names = append(names, st.Name)
	}
	assert.Equal(t, []string{"trim", "last-url-segment", "strip-scheme", "normalize"}, names)
}

func TestSanitizeSlug_IdempotentOnNormalized(t *testing.T) {
	for _, s := range []string{"a", "villa-1", "x-y-z-2025"} {
		assert.Equal(t, s, app.SanitizeSlug(s))
		assert.Equal(t, s, app.SanitizeSlug(app.SanitizeSlug(s)))
	}
}
