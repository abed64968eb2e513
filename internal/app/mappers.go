package app

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"gopkg.in/guregu/null.v3"

	"github.com/iconpropertiesg-arch/iconproperties-sub001/internal/domain"
)

/********** tiny helpers **********/

// parseFloatFlexible accepts a JSON number or a numeric string ("1250000.50", "350,5").
// nil and blank strings are null, never zero.
func parseFloatFlexible(v any) (null.Float, error) {
	switch t := v.(type) {
	case nil:
		return null.Float{}, nil
	case float64:
		return finite(t)
	case int:
		return null.FloatFrom(float64(t)), nil
	case int64:
		return null.FloatFrom(float64(t)), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return null.Float{}, err
		}
		return finite(f)
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return null.Float{}, nil
		}
		if !strings.Contains(s, ".") {
			s = strings.ReplaceAll(s, ",", ".")
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return null.Float{}, err
		}
		return finite(f)
	}
	return null.Float{}, fmt.Errorf("unsupported type %T", v)
}

func finite(f float64) (null.Float, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return null.Float{}, fmt.Errorf("not a finite number")
	}
	return null.FloatFrom(f), nil
}

// parseIntFlexible is parseFloatFlexible truncated toward zero; "4" and 4.0 are both 4.
func parseIntFlexible(v any) (null.Int, error) {
	if s, ok := v.(string); ok {
		if n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
			return null.IntFrom(n), nil
		}
	}
	f, err := parseFloatFlexible(v)
	if err != nil || !f.Valid {
		return null.Int{}, err
	}
	return null.IntFrom(int64(f.Float64)), nil
}

func numericErr(field string, v any, err error) error {
	return domain.ErrPersistence.Msg("invalid %s %v: %s", field, v, err).WithCause(err)
}

/********** property mapper **********/

func mapProperty(in CreatePropertyInput, slug string) (domain.Property, error) {
	price, err := parseFloatFlexible(in.Price)
	if err != nil {
		return domain.Property{}, numericErr("price", in.Price, err)
	}
	if !price.Valid {
		return domain.Property{}, domain.ErrPersistence.Msg("price is required")
	}

	year, err := parseIntFlexible(in.Year)
	if err != nil {
		return domain.Property{}, numericErr("year", in.Year, err)
	}
	bedrooms, err := parseIntFlexible(in.Bedrooms)
	if err != nil {
		return domain.Property{}, numericErr("bedrooms", in.Bedrooms, err)
	}
	bathrooms, err := parseIntFlexible(in.Bathrooms)
	if err != nil {
		return domain.Property{}, numericErr("bathrooms", in.Bathrooms, err)
	}
	area, err := parseFloatFlexible(in.Area)
	if err != nil {
		return domain.Property{}, numericErr("area", in.Area, err)
	}

	images := in.Images
	if images == nil {
		images = []json.RawMessage{}
	}

	id := uuid.NewString()
	return domain.Property{
		ID:           id,
		Slug:         slug,
		Status:       in.Status,
		Type:         in.Type,
		Year:         year,
		Price:        price.Float64,
		Bedrooms:     bedrooms,
		Bathrooms:    bathrooms,
		Area:         area,
		Location:     in.Location,
		Coordinates:  in.Coordinates,
		Featured:     in.Featured,
		Images:       images,
		Translations: mapTranslations(id, in.Translations),
	}, nil
}

/********** translation fan-out **********/

// mapTranslations emits one record per locale key, in sorted locale order.
func mapTranslations(propertyID string, in map[string]TranslationInput) []domain.PropertyTranslation {
	locales := lo.Keys(in)
	sort.Strings(locales)
	return lo.Map(locales, func(locale string, _ int) domain.PropertyTranslation {
		t := in[locale]
		features := t.Features
		if features == nil {
			features = []string{}
		}
		return domain.PropertyTranslation{
			ID:          uuid.NewString(),
			PropertyID:  propertyID,
			Locale:      locale,
			Title:       t.Title,
			Description: t.Description,
			Subtitle:    null.NewString(t.Subtitle, t.Subtitle != ""),
			Features:    features,
		}
	})
}
