package gormpg

import (
	"encoding/json"
	"time"

	"gopkg.in/guregu/null.v3"
	"gorm.io/datatypes"

	"github.com/iconpropertiesg-arch/iconproperties-sub001/internal/domain"
)

// slugIndex must match the uniqueIndex tag on propertyRow.Slug.
const slugIndex = "uq_properties_slug"

type propertyRow struct {
	ID           string           `gorm:"type:uuid;primaryKey"`
	Slug         string           `gorm:"size:191;not null;uniqueIndex:uq_properties_slug"`
	Status       string           `gorm:"size:64;not null"`
	Type         string           `gorm:"size:64;not null"`
	Year         *int64
	Price        float64          `gorm:"not null"`
	Bedrooms     *int64
	Bathrooms    *int64
	Area         *float64
	Location     datatypes.JSON   `gorm:"type:jsonb"`
	Coordinates  datatypes.JSON   `gorm:"type:jsonb"`
	Featured     bool             `gorm:"not null;default:false"`
	Images       datatypes.JSON   `gorm:"type:jsonb;not null"`
	CreatedAt    time.Time        `gorm:"not null;index:idx_properties_created"`
	UpdatedAt    time.Time        `gorm:"not null"`
	Translations []translationRow `gorm:"foreignKey:PropertyID;constraint:OnDelete:CASCADE"`
}

func (propertyRow) TableName() string { return "properties" }

type translationRow struct {
	ID          string         `gorm:"type:uuid;primaryKey"`
	PropertyID  string         `gorm:"type:uuid;not null;uniqueIndex:uq_translation_locale,priority:1"`
	Locale      string         `gorm:"size:16;not null;uniqueIndex:uq_translation_locale,priority:2"`
	Title       string         `gorm:"type:text;not null"`
	Description string         `gorm:"type:text;not null"`
	Subtitle    *string        `gorm:"type:text"`
	Features    datatypes.JSON `gorm:"type:jsonb;not null"`
}

func (translationRow) TableName() string { return "property_translations" }

/********** mapping **********/

func toRow(p domain.Property) (propertyRow, error) {
	images, err := json.Marshal(p.Images)
	if err != nil {
		return propertyRow{}, err
	}
	row := propertyRow{
		ID:          p.ID,
		Slug:        p.Slug,
		Status:      p.Status,
		Type:        p.Type,
		Year:        p.Year.Ptr(),
		Price:       p.Price,
		Bedrooms:    p.Bedrooms.Ptr(),
		Bathrooms:   p.Bathrooms.Ptr(),
		Area:        p.Area.Ptr(),
		Location:    datatypes.JSON(p.Location),
		Coordinates: datatypes.JSON(p.Coordinates),
		Featured:    p.Featured,
		Images:      datatypes.JSON(images),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	for _, t := range p.Translations {
		features, err := json.Marshal(t.Features)
		if err != nil {
			return propertyRow{}, err
		}
		row.Translations = append(row.Translations, translationRow{
			ID:          t.ID,
			PropertyID:  p.ID,
			Locale:      t.Locale,
			Title:       t.Title,
			Description: t.Description,
			Subtitle:    t.Subtitle.Ptr(),
			Features:    datatypes.JSON(features),
		})
	}
	return row, nil
}

func fromRow(r propertyRow) (domain.Property, error) {
	p := domain.Property{
		ID:        r.ID,
		Slug:      r.Slug,
		Status:    r.Status,
		Type:      r.Type,
		Year:      null.IntFromPtr(r.Year),
		Price:     r.Price,
		Bedrooms:  null.IntFromPtr(r.Bedrooms),
		Bathrooms: null.IntFromPtr(r.Bathrooms),
		Area:      null.FloatFromPtr(r.Area),
		Featured:  r.Featured,
		Images:    []json.RawMessage{},
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
	if len(r.Location) > 0 {
		p.Location = json.RawMessage(r.Location)
	}
	if len(r.Coordinates) > 0 {
		p.Coordinates = json.RawMessage(r.Coordinates)
	}
	if len(r.Images) > 0 {
		if err := json.Unmarshal(r.Images, &p.Images); err != nil {
			return domain.Property{}, err
		}
	}
	if r.Translations != nil {
		p.Translations = make([]domain.PropertyTranslation, 0, len(r.Translations))
	}
	for _, t := range r.Translations {
		features := []string{}
		if len(t.Features) > 0 {
			if err := json.Unmarshal(t.Features, &features); err != nil {
				return domain.Property{}, err
			}
		}
		p.Translations = append(p.Translations, domain.PropertyTranslation{
			ID:          t.ID,
			PropertyID:  t.PropertyID,
			Locale:      t.Locale,
			Title:       t.Title,
			Description: t.Description,
			Subtitle:    null.StringFromPtr(t.Subtitle),
			Features:    features,
		})
	}
	return p, nil
}
