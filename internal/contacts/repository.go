// Package contacts persists the post-conversion contact book. The conversion
// service reads it for duplicate resolution; the leads transport writes
// freshly projected contacts into it.
package contacts

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"leadqual_backend/internal/conversion"
)

var ErrNotFound = errors.New("contact not found")

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListContacts returns the full contact book in insertion order. Duplicate
// resolution depends on this ordering being stable.
func (r *Repository) ListContacts(ctx context.Context) ([]conversion.Contact, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, mobile, email, category, tags, remarks, source,
			conversion_date, conversion_score, conversion_source, conversion_trigger
		FROM contacts
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()

	items := make([]conversion.Contact, 0)
	for rows.Next() {
		var c conversion.Contact
		var meta conversion.ConversionMeta
		var metaDate, metaSource, metaTrigger *string
		var metaScore *int
		if err := rows.Scan(
			&c.ID, &c.Name, &c.Mobile, &c.Email, &c.Category, &c.Tags, &c.Remarks, &c.Source,
			&metaDate, &metaScore, &metaSource, &metaTrigger,
		); err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		if metaDate != nil {
			meta.Date = *metaDate
			if metaScore != nil {
				meta.ScoreAtConversion = *metaScore
			}
			if metaSource != nil {
				meta.Source = *metaSource
			}
			if metaTrigger != nil {
				meta.Trigger = *metaTrigger
			}
			c.ConversionMeta = &meta
		}
		items = append(items, c)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("list contacts: %w", rows.Err())
	}

	return items, nil
}

// Save upserts a contact by its natural id (the normalized mobile number).
func (r *Repository) Save(ctx context.Context, c conversion.Contact) error {
	var metaDate, metaSource, metaTrigger *string
	var metaScore *int
	if c.ConversionMeta != nil {
		metaDate = &c.ConversionMeta.Date
		metaScore = &c.ConversionMeta.ScoreAtConversion
		metaSource = &c.ConversionMeta.Source
		metaTrigger = &c.ConversionMeta.Trigger
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO contacts (
			id, name, mobile, email, category, tags, remarks, source,
			conversion_date, conversion_score, conversion_source, conversion_trigger
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			category = EXCLUDED.category,
			tags = EXCLUDED.tags,
			remarks = EXCLUDED.remarks,
			source = EXCLUDED.source,
			conversion_date = EXCLUDED.conversion_date,
			conversion_score = EXCLUDED.conversion_score,
			conversion_source = EXCLUDED.conversion_source,
			conversion_trigger = EXCLUDED.conversion_trigger
	`,
		c.ID, c.Name, c.Mobile, c.Email, c.Category, c.Tags, c.Remarks, c.Source,
		metaDate, metaScore, metaSource, metaTrigger,
	)
	if err != nil {
		return fmt.Errorf("save contact: %w", err)
	}
	return nil
}

// GetByMobile returns the contact identified by the given mobile number.
func (r *Repository) GetByMobile(ctx context.Context, mobile string) (conversion.Contact, error) {
	var c conversion.Contact
	var meta conversion.ConversionMeta
	var metaDate, metaSource, metaTrigger *string
	var metaScore *int
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, mobile, email, category, tags, remarks, source,
			conversion_date, conversion_score, conversion_source, conversion_trigger
		FROM contacts WHERE mobile = $1
	`, mobile).Scan(
		&c.ID, &c.Name, &c.Mobile, &c.Email, &c.Category, &c.Tags, &c.Remarks, &c.Source,
		&metaDate, &metaScore, &metaSource, &metaTrigger,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return conversion.Contact{}, ErrNotFound
	}
	if err != nil {
		return conversion.Contact{}, fmt.Errorf("get contact: %w", err)
	}
	if metaDate != nil {
		meta.Date = *metaDate
		if metaScore != nil {
			meta.ScoreAtConversion = *metaScore
		}
		if metaSource != nil {
			meta.Source = *metaSource
		}
		if metaTrigger != nil {
			meta.Trigger = *metaTrigger
		}
		c.ConversionMeta = &meta
	}
	return c, nil
}
