package httpserver

import (
	"strings"

	"github.com/samber/lo"
	"golang.org/x/text/language"

	"github.com/iconpropertiesg-arch/iconproperties-sub001/internal/domain"
)

// matcher indexes line up with domain.Locales.
var matcher = language.NewMatcher(lo.Map(domain.Locales, func(l string, _ int) language.Tag {
	return language.Make(l)
}))

// negotiateLocale picks a site locale from an Accept-Language header.
// An empty header yields "" (all translations); an unmatched one yields en.
func negotiateLocale(acceptLanguage string) string {
	if strings.TrimSpace(acceptLanguage) == "" {
		return ""
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return domain.Locales[0]
	}
	_, idx, _ := matcher.Match(tags...)
	return domain.Locales[idx]
}
