package domain

import (
	"encoding/json"
	"time"

	"gopkg.in/guregu/null.v3"
)

// Locales served by the website. Translations for other keys are stored as supplied.
var Locales = []string{"en", "de", "es"}

type Property struct {
	ID           string                `json:"id"`
	Slug         string                `json:"slug"`
	Status       string                `json:"status"`
	Type         string                `json:"type"`
	Year         null.Int              `json:"year"`
	Price        float64               `json:"price"`
	Bedrooms     null.Int              `json:"bedrooms"`
	Bathrooms    null.Int              `json:"bathrooms"`
	Area         null.Float            `json:"area"`
	Location     json.RawMessage       `json:"location"`    // passed through unchanged
	Coordinates  json.RawMessage       `json:"coordinates"` // passed through unchanged
	Featured     bool                  `json:"featured"`
	Images       []json.RawMessage     `json:"images"`
	CreatedAt    time.Time             `json:"createdAt"`
	UpdatedAt    time.Time             `json:"updatedAt"`
	Translations []PropertyTranslation `json:"translations,omitempty"`
}

type PropertyTranslation struct {
	ID          string      `json:"id"`
	PropertyID  string      `json:"propertyId"`
	Locale      string      `json:"locale"` // unique per property
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Subtitle    null.String `json:"subtitle"`
	Features    []string    `json:"features"`
}

// Translation returns the translation for locale, if present.
func (p Property) Translation(locale string) (PropertyTranslation, bool) {
	for _, t := range p.Translations {
		if t.Locale == locale {
			return t, true
		}
	}
	return PropertyTranslation{}, false
}
