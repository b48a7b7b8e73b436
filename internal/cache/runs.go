// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"context"
	"fmt"
	"time"
)

// RunRecord is one entry of the query run history.
type RunRecord struct {
	ID        int64
	Term      string
	Total     int
	Fetched   int
	FromCache int
	Matched   int
	RanAt     time.Time
}

// RecordRun appends a run to the history.
func (s *Store) RecordRun(ctx context.Context, rec RunRecord) error {
	ranAt := rec.RanAt
	if ranAt.IsZero() {
		ranAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (term, total, fetched, from_cache, matched, ran_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.Term, rec.Total, rec.Fetched, rec.FromCache, rec.Matched,
		ranAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	return nil
}

// Runs returns the most recent runs, newest first.
func (s *Store) Runs(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, term, total, fetched, from_cache, matched, ran_at
		 FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var recs []RunRecord
	for rows.Next() {
		var (
			rec   RunRecord
			ranAt string
		)
		if err := rows.Scan(&rec.ID, &rec.Term, &rec.Total, &rec.Fetched,
			&rec.FromCache, &rec.Matched, &ranAt); err != nil {
			return nil, fmt.Errorf("scanning run row: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, ranAt); err == nil {
			rec.RanAt = t
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading run rows: %w", err)
	}
	return recs, nil
}
