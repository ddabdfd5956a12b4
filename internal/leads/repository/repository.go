// Package repository persists lead snapshots and their activity history.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"leadqual_backend/internal/scoring"
)

var ErrNotFound = errors.New("lead not found")

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// UpsertLeadParams carries the writable lead fields. The lead key is the
// normalized mobile number and is immutable once created.
type UpsertLeadParams struct {
	LeadKey      string
	Email        string
	Name         string
	Stage        string
	Source       string
	Requirement  scoring.Requirement
	BudgetMatch  string
	LocationPref string
	Timeline     string
	Payment      []string
	Matched      int
	PriceFit     string
	Tags         string
	Remarks      string
}

func (r *Repository) Upsert(ctx context.Context, p UpsertLeadParams) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO leads (
			lead_key, email, name, stage, source, requirement,
			budget_match, location_pref, timeline, payment, matched, price_fit,
			tags, remarks
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (lead_key) DO UPDATE SET
			email = EXCLUDED.email,
			name = EXCLUDED.name,
			stage = EXCLUDED.stage,
			source = EXCLUDED.source,
			requirement = EXCLUDED.requirement,
			budget_match = EXCLUDED.budget_match,
			location_pref = EXCLUDED.location_pref,
			timeline = EXCLUDED.timeline,
			payment = EXCLUDED.payment,
			matched = EXCLUDED.matched,
			price_fit = EXCLUDED.price_fit,
			tags = EXCLUDED.tags,
			remarks = EXCLUDED.remarks,
			updated_at = now()
	`,
		p.LeadKey, p.Email, p.Name, p.Stage, p.Source, p.Requirement,
		p.BudgetMatch, p.LocationPref, p.Timeline, p.Payment, p.Matched, p.PriceFit,
		p.Tags, p.Remarks,
	)
	if err != nil {
		return fmt.Errorf("upsert lead: %w", err)
	}
	return nil
}

// GetByKey returns the scoring snapshot for a lead.
func (r *Repository) GetByKey(ctx context.Context, leadKey string) (scoring.Lead, error) {
	var lead scoring.Lead
	err := r.pool.QueryRow(ctx, `
		SELECT lead_key, email, name, stage, source, requirement,
			budget_match, location_pref, timeline, payment, matched, price_fit,
			last_activity_at, tags, remarks
		FROM leads WHERE lead_key = $1
	`, leadKey).Scan(
		&lead.Mobile, &lead.Email, &lead.Name, &lead.Stage, &lead.Source, &lead.Requirement,
		&lead.BudgetMatch, &lead.LocationPref, &lead.Timeline, &lead.Payment, &lead.Matched, &lead.PriceFit,
		&lead.LastActivityAt, &lead.Tags, &lead.Remarks,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return scoring.Lead{}, ErrNotFound
	}
	if err != nil {
		return scoring.Lead{}, fmt.Errorf("get lead: %w", err)
	}
	return lead, nil
}

// ListActivities returns a lead's activity history, oldest first.
func (r *Repository) ListActivities(ctx context.Context, leadKey string) ([]scoring.Activity, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT type, purpose, outcome, logged_at
		FROM activities
		WHERE lead_key = $1
		ORDER BY logged_at ASC, id ASC
	`, leadKey)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	items := make([]scoring.Activity, 0)
	for rows.Next() {
		var a scoring.Activity
		if err := rows.Scan(&a.Type, &a.Purpose, &a.Outcome, &a.LoggedAt); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		items = append(items, a)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("list activities: %w", rows.Err())
	}
	return items, nil
}

// LogActivity appends an activity and advances the lead's last activity
// timestamp in the same transaction, so the decay component and the history
// can never disagree.
func (r *Repository) LogActivity(ctx context.Context, leadKey string, a scoring.Activity) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin log activity: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		INSERT INTO activities (lead_key, type, purpose, outcome, logged_at)
		SELECT $1, $2, $3, $4, $5
		WHERE EXISTS (SELECT 1 FROM leads WHERE lead_key = $1)
	`, leadKey, a.Type, a.Purpose, a.Outcome, a.LoggedAt)
	if err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	_, err = tx.Exec(ctx, `
		UPDATE leads
		SET last_activity_at = GREATEST(COALESCE(last_activity_at, $2), $2), updated_at = now()
		WHERE lead_key = $1
	`, leadKey, a.LoggedAt)
	if err != nil {
		return fmt.Errorf("update last activity: %w", err)
	}

	return tx.Commit(ctx)
}

// SetStage updates the lead's pipeline stage.
func (r *Repository) SetStage(ctx context.Context, leadKey, stage string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE leads SET stage = $2, updated_at = now() WHERE lead_key = $1
	`, leadKey, stage)
	if err != nil {
		return fmt.Errorf("set lead stage: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateScore persists the computed score and temperature for a lead. The
// nightly sweep uses it; the stored values are a cache of the engine output,
// never an input to it.
func (r *Repository) UpdateScore(ctx context.Context, leadKey string, score int, temperature string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE leads SET score = $2, temperature = $3, scored_at = now(), updated_at = now()
		WHERE lead_key = $1
	`, leadKey, score, temperature)
	if err != nil {
		return fmt.Errorf("update lead score: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListKeys pages through lead keys in ascending order for batch rescoring.
// Pass an empty afterKey to start from the beginning.
func (r *Repository) ListKeys(ctx context.Context, afterKey string, limit int) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT lead_key FROM leads
		WHERE lead_key > $1 AND stage <> 'Converted'
		ORDER BY lead_key ASC
		LIMIT $2
	`, afterKey, limit)
	if err != nil {
		return nil, fmt.Errorf("list lead keys: %w", err)
	}
	defer rows.Close()

	keys := make([]string, 0, limit)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan lead key: %w", err)
		}
		keys = append(keys, key)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("list lead keys: %w", rows.Err())
	}
	return keys, nil
}

// StoredScore is the persisted score cache for a lead.
type StoredScore struct {
	Score       int
	Temperature string
	ScoredAt    *time.Time
}

// GetStoredScore returns the cached score written by the last sweep or
// conversion, when one exists.
func (r *Repository) GetStoredScore(ctx context.Context, leadKey string) (StoredScore, error) {
	var s StoredScore
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(score, 0), COALESCE(temperature, ''), scored_at
		FROM leads WHERE lead_key = $1
	`, leadKey).Scan(&s.Score, &s.Temperature, &s.ScoredAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return StoredScore{}, ErrNotFound
	}
	if err != nil {
		return StoredScore{}, fmt.Errorf("get stored score: %w", err)
	}
	return s, nil
}
