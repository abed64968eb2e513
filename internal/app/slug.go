package app

import (
	"regexp"
	"strings"

	"github.com/iconpropertiesg-arch/iconproperties-sub001/internal/domain"
)

// maxSlugLen is the width of the indexed slug column in both stores.
const maxSlugLen = 191

var (
	// \s is ASCII-only in RE2; pasted titles often carry NBSP or BOMs.
	nonSlugChars  = regexp.MustCompile(`[^\w\s\p{Z}\x{FEFF}\v-]`)
	separatorRuns = regexp.MustCompile(`[\s\p{Z}\x{FEFF}\v_-]+`)
	slugPattern   = regexp.MustCompile(`^[a-z0-9-]+$`)
)

// SlugStep is one total, side-effect-free transformation of a slug candidate.
type SlugStep struct {
	Name string
	Fn   func(string) string
}

// slugSteps run in order over the caller-supplied slug.
var slugSteps = []SlugStep{
	{Name: "trim", Fn: strings.TrimSpace},
	{Name: "last-url-segment", Fn: LastURLSegment},
	{Name: "strip-scheme", Fn: StripSchemeAndWWW},
	{Name: "normalize", Fn: NormalizeSlug},
}

// SlugSteps returns a copy of the ordered pipeline.
func SlugSteps() []SlugStep {
	out := make([]SlugStep, len(slugSteps))
	copy(out, slugSteps)
	return out
}

func looksLikeURL(s string) bool {
	return strings.Contains(s, "://") || strings.Contains(s, "localhost") || strings.HasPrefix(s, "http")
}

// LastURLSegment keeps only the last non-empty path segment when s looks like a
// pasted URL; any other input is returned unchanged.
func LastURLSegment(s string) string {
	if !looksLikeURL(s) {
		return s
	}
	last := ""
	for _, seg := range strings.Split(s, "/") {
		if seg != "" {
			last = seg
		}
	}
	return last
}

// StripSchemeAndWWW drops a leading http(s):// and then a leading www.
func StripSchemeAndWWW(s string) string {
	if rest, ok := strings.CutPrefix(s, "https://"); ok {
		s = rest
	} else if rest, ok := strings.CutPrefix(s, "http://"); ok {
		s = rest
	}
	return strings.TrimPrefix(s, "www.")
}

// NormalizeSlug lowercases, removes everything but word characters, whitespace
// and hyphens, collapses separator runs into one hyphen and trims hyphens.
func NormalizeSlug(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	s = nonSlugChars.ReplaceAllString(s, "")
	s = separatorRuns.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// SanitizeSlug runs every slug step over raw.
func SanitizeSlug(raw string) string {
	for _, st := range slugSteps {
		raw = st.Fn(raw)
	}
	return raw
}

// ResolveSlug derives the canonical slug from the supplied value, falling back to
// the English title when nothing usable remains. It does not check uniqueness.
func ResolveSlug(raw, enTitle string) (string, error) {
	slug := SanitizeSlug(raw)
	if slug == "" && enTitle != "" {
		slug = NormalizeSlug(enTitle)
	}
	if slug == "" || len(slug) > maxSlugLen || !slugPattern.MatchString(slug) {
		return "", domain.ErrInvalidSlug
	}
	return slug, nil
}
