package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	mysqldrv "github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/iconpropertiesg-arch/iconproperties-sub001/internal/domain"
)

// ER_DUP_ENTRY
const errDupEntry = 1062

func valJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// isSlugConflict reports a duplicate on the slug key only; other duplicates are plain failures.
func isSlugConflict(err error) bool {
	var me *mysqldrv.MySQLError
	return errors.As(err, &me) && me.Number == errDupEntry && strings.Contains(me.Message, slugIndex)
}

func (r *Repo) CreateWithTranslations(ctx context.Context, p domain.Property) (domain.Property, error) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	p.CreatedAt, p.UpdatedAt = now, now

	images, err := json.Marshal(p.Images)
	if err != nil {
		return domain.Property{}, errors.Wrap(err, "marshal images")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Property{}, errors.Wrap(err, "begin tx")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, insertPropertySQL,
		p.ID,
		p.Slug,
		p.Status,
		p.Type,
		p.Year,
		p.Price,
		p.Bedrooms,
		p.Bathrooms,
		p.Area,
		valJSON(p.Location),
		valJSON(p.Coordinates),
		p.Featured,
		string(images),
		p.CreatedAt,
		p.UpdatedAt,
	); err != nil {
		if isSlugConflict(err) {
			return domain.Property{}, domain.ErrSlugConflict.WithCause(err)
		}
		return domain.Property{}, errors.Wrap(err, "insert property")
	}

	if len(p.Translations) > 0 {
		values := make([]string, 0, len(p.Translations))
		args := make([]any, 0, len(p.Translations)*7) // 7 params per row
		for _, t := range p.Translations {
			features, err := json.Marshal(t.Features)
			if err != nil {
				return domain.Property{}, errors.Wrapf(err, "marshal features %s", t.Locale)
			}
			values = append(values, "(?,?,?,?,?,?,?)")
			args = append(args, t.ID, p.ID, t.Locale, t.Title, t.Description, t.Subtitle, string(features))
		}
		if _, err := tx.ExecContext(ctx, insertTranslationsPrefix+strings.Join(values, ","), args...); err != nil {
			return domain.Property{}, errors.Wrap(err, "insert translations")
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.Property{}, errors.Wrap(err, "commit")
	}
	return p, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProperty(s scanner) (domain.Property, error) {
	var p domain.Property
	var location, coordinates, images []byte
	if err := s.Scan(
		&p.ID,
		&p.Slug,
		&p.Status,
		&p.Type,
		&p.Year,
		&p.Price,
		&p.Bedrooms,
		&p.Bathrooms,
		&p.Area,
		&location,
		&coordinates,
		&p.Featured,
		&images,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return domain.Property{}, err
	}
	if len(location) > 0 {
		p.Location = json.RawMessage(append([]byte(nil), location...))
	}
	if len(coordinates) > 0 {
		p.Coordinates = json.RawMessage(append([]byte(nil), coordinates...))
	}
	p.Images = []json.RawMessage{}
	if len(images) > 0 {
		if err := json.Unmarshal(images, &p.Images); err != nil {
			return domain.Property{}, errors.Wrapf(err, "decode images of %s", p.Slug)
		}
	}
	return p, nil
}

func (r *Repo) FindBySlug(ctx context.Context, slug string) (*domain.Property, error) {
	p, err := scanProperty(r.db.QueryRowContext(ctx, findBySlugSQL, slug))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "find property %s", slug)
	}

	byProperty, err := r.translations(ctx, []string{p.ID}, "")
	if err != nil {
		return nil, err
	}
	p.Translations = byProperty[p.ID]
	return &p, nil
}

func (r *Repo) ListProperties(ctx context.Context, q domain.ListQuery) ([]domain.Property, error) {
	rows, err := r.db.QueryContext(ctx, listPropertiesSQL)
	if err != nil {
		return nil, errors.Wrap(err, "list properties")
	}
	defer rows.Close()

	out := []domain.Property{}
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan property")
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "list properties")
	}
	if !q.IncludeTranslations || len(out) == 0 {
		return out, nil
	}

	ids := lo.Map(out, func(p domain.Property, _ int) string { return p.ID })
	byProperty, err := r.translations(ctx, ids, q.Locale)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Translations = byProperty[out[i].ID]
		if out[i].Translations == nil {
			out[i].Translations = []domain.PropertyTranslation{}
		}
	}
	return out, nil
}

// translations loads rows for ids, optionally restricted to one locale, grouped by property.
func (r *Repo) translations(ctx context.Context, ids []string, locale string) (map[string][]domain.PropertyTranslation, error) {
	query := fmt.Sprintf(selectTranslationsSQL, strings.TrimSuffix(strings.Repeat("?,", len(ids)), ","))
	args := lo.Map(ids, func(id string, _ int) any { return id })
	if locale != "" {
		query += " AND locale = ?"
		args = append(args, locale)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "select translations")
	}
	defer rows.Close()

	var all []domain.PropertyTranslation
	for rows.Next() {
		var t domain.PropertyTranslation
		var features []byte
		if err := rows.Scan(&t.ID, &t.PropertyID, &t.Locale, &t.Title, &t.Description, &t.Subtitle, &features); err != nil {
			return nil, errors.Wrap(err, "scan translation")
		}
		t.Features = []string{}
		if len(features) > 0 {
			if err := json.Unmarshal(features, &t.Features); err != nil {
				return nil, errors.Wrapf(err, "decode features of %s/%s", t.PropertyID, t.Locale)
			}
		}
		all = append(all, t)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "select translations")
	}

	sort.SliceStable(all, func(i, j int) bool { return all[i].Locale < all[j].Locale })
	return lo.GroupBy(all, func(t domain.PropertyTranslation) string { return t.PropertyID }), nil
}
