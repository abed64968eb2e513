package mysql

// slugIndex is the unique key name from migrations/mysql/001_init.sql.
const slugIndex = "uq_properties_slug"

const insertPropertySQL = `
INSERT INTO properties
  (id, slug, status, type, year, price, bedrooms, bathrooms, area,
   location, coordinates, featured, images, created_at, updated_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const insertTranslationsPrefix = `
INSERT INTO property_translations
  (id, property_id, locale, title, description, subtitle, features)
VALUES `

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

const propertyColumns = `
  p.id, p.slug, p.status, p.type, p.year, p.price, p.bedrooms, p.bathrooms,
  p.area, p.location, p.coordinates, p.featured, p.images, p.created_at, p.updated_at`

const findBySlugSQL = `SELECT` + propertyColumns + `
FROM properties p
WHERE p.slug = ?
`

// Newest first; id breaks ties between rows created in the same millisecond.
const listPropertiesSQL = `SELECT` + propertyColumns + `
FROM properties p
ORDER BY p.created_at DESC, p.id DESC
`

// IN list and optional locale filter are appended by the repo.
const selectTranslationsSQL = `
SELECT id, property_id, locale, title, description, subtitle, features
FROM property_translations
WHERE property_id IN (%s)`
