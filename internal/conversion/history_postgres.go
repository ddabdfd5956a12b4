package conversion

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresHistoryStore keeps conversion records in the conversion_history
// table. The primary key on lead_key plus ON CONFLICT DO NOTHING gives the
// insert-if-absent guarantee.
type PostgresHistoryStore struct {
	db *pgxpool.Pool
}

func NewPostgresHistoryStore(db *pgxpool.Pool) *PostgresHistoryStore {
	return &PostgresHistoryStore{db: db}
}

func (s *PostgresHistoryStore) Has(ctx context.Context, leadKey string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM conversion_history WHERE lead_key = $1)`,
		leadKey,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check conversion history: %w", err)
	}
	return exists, nil
}

func (s *PostgresHistoryStore) InsertIfAbsent(ctx context.Context, rec Record) (bool, error) {
	tag, err := s.db.Exec(ctx,
		`INSERT INTO conversion_history (lead_key, converted_at, trigger_label, score)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (lead_key) DO NOTHING`,
		rec.LeadKey, rec.ConvertedAt, rec.Trigger, rec.Score,
	)
	if err != nil {
		return false, fmt.Errorf("insert conversion record: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *PostgresHistoryStore) Get(ctx context.Context, leadKey string) (Record, bool, error) {
	var rec Record
	err := s.db.QueryRow(ctx,
		`SELECT lead_key, converted_at, trigger_label, score
		 FROM conversion_history WHERE lead_key = $1`,
		leadKey,
	).Scan(&rec.LeadKey, &rec.ConvertedAt, &rec.Trigger, &rec.Score)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("get conversion record: %w", err)
	}
	return rec, true, nil
}
