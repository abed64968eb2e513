// Package gormpg is the Postgres property store, built on gorm.
package gormpg

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/iconpropertiesg-arch/iconproperties-sub001/internal/domain"
)

// unique_violation
const pgUniqueViolation = "23505"

// Open connects to Postgres. gorm's own logger is silenced; callers log errors.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.Wrap(err, "open postgres")
	}
	return db, nil
}

// Migrate creates or updates both tables and their unique indexes.
func Migrate(db *gorm.DB) error {
	return errors.Wrap(db.AutoMigrate(&propertyRow{}, &translationRow{}), "automigrate")
}

type Repo struct{ db *gorm.DB }

func New(db *gorm.DB) *Repo { return &Repo{db: db} }

func isSlugConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation && pgErr.ConstraintName == slugIndex
}

func (r *Repo) CreateWithTranslations(ctx context.Context, p domain.Property) (domain.Property, error) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	p.CreatedAt, p.UpdatedAt = now, now

	row, err := toRow(p)
	if err != nil {
		return domain.Property{}, errors.Wrap(err, "encode property")
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&row).Error; err != nil {
			if isSlugConflict(err) {
				return domain.ErrSlugConflict.WithCause(err)
			}
			return errors.Wrap(err, "insert property")
		}
		if len(row.Translations) == 0 {
			return nil
		}
		return errors.Wrap(tx.Create(&row.Translations).Error, "insert translations")
	})
	if err != nil {
		return domain.Property{}, err
	}
	return p, nil
}

func byLocale(db *gorm.DB) *gorm.DB { return db.Order("locale") }

func (r *Repo) FindBySlug(ctx context.Context, slug string) (*domain.Property, error) {
	var row propertyRow
	err := r.db.WithContext(ctx).
		Preload("Translations", byLocale).
		Where("slug = ?", slug).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "find property %s", slug)
	}

	p, err := fromRow(row)
	if err != nil {
		return nil, errors.Wrapf(err, "decode property %s", slug)
	}
	return &p, nil
}

func (r *Repo) ListProperties(ctx context.Context, q domain.ListQuery) ([]domain.Property, error) {
	query := r.db.WithContext(ctx).Order("created_at DESC, id DESC")
	if q.IncludeTranslations {
		query = query.Preload("Translations", func(db *gorm.DB) *gorm.DB {
			if q.Locale != "" {
				db = db.Where("locale = ?", q.Locale)
			}
			return byLocale(db)
		})
	}

	var rows []propertyRow
	if err := query.Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "list properties")
	}

	out := make([]domain.Property, 0, len(rows))
	for _, row := range rows {
		if q.IncludeTranslations && row.Translations == nil {
			row.Translations = []translationRow{}
		}
		p, err := fromRow(row)
		if err != nil {
			return nil, errors.Wrapf(err, "decode property %s", row.Slug)
		}
		out = append(out, p)
	}
	return out, nil
}
