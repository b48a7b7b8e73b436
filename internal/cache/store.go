// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache persists fetched PubMed articles and run history in a
// local SQLite database. Titles and affiliations are mirrored into an
// FTS5 index so cached articles can be searched offline.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/pubmed-scout/pkg/types"
)

const dbFile = "pubmed-scout.db"

// Store manages the article cache SQLite database.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens or creates the cache database at dir/pubmed-scout.db,
// creating the schema if it does not exist.
func NewStore(cfg types.CacheConfig) (*Store, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = "cache"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, path: dbPath}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS articles (
			pmid TEXT PRIMARY KEY,
			title TEXT,
			journal TEXT,
			year TEXT,
			doi TEXT,
			authors TEXT,
			affiliations TEXT,
			fetched_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			term TEXT NOT NULL,
			total INTEGER,
			fetched INTEGER,
			from_cache INTEGER,
			matched INTEGER,
			ran_at TEXT
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='articles_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE articles_fts USING fts5(title, affiliations, content=articles, content_rowid=rowid)`,
			`CREATE TRIGGER articles_ai AFTER INSERT ON articles BEGIN
				INSERT INTO articles_fts(rowid, title, affiliations) VALUES (new.rowid, new.title, new.affiliations);
			END`,
			`CREATE TRIGGER articles_ad AFTER DELETE ON articles BEGIN
				INSERT INTO articles_fts(articles_fts, rowid, title, affiliations) VALUES('delete', old.rowid, old.title, old.affiliations);
			END`,
			`CREATE TRIGGER articles_au AFTER UPDATE ON articles BEGIN
				INSERT INTO articles_fts(articles_fts, rowid, title, affiliations) VALUES('delete', old.rowid, old.title, old.affiliations);
				INSERT INTO articles_fts(rowid, title, affiliations) VALUES (new.rowid, new.title, new.affiliations);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// Put upserts papers into the cache in one transaction.
func (s *Store) Put(ctx context.Context, papers []types.Paper) error {
	if len(papers) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO articles (pmid, title, journal, year, doi, authors, affiliations, fetched_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(pmid) DO UPDATE SET
			title=excluded.title, journal=excluded.journal, year=excluded.year,
			doi=excluded.doi, authors=excluded.authors,
			affiliations=excluded.affiliations, fetched_at=excluded.fetched_at`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, p := range papers {
		if p.PMID == "" {
			continue
		}
		authorsJSON, _ := json.Marshal(p.Authors)
		_, err := stmt.ExecContext(ctx,
			p.PMID, p.Title, p.Journal, p.Year, p.DOI,
			string(authorsJSON), affiliationsText(p), now,
		)
		if err != nil {
			return fmt.Errorf("caching article %s: %w", p.PMID, err)
		}
	}

	return tx.Commit()
}

// Get looks up papers by PMID. It returns the cached papers in the order
// requested, plus the PMIDs that were not found.
func (s *Store) Get(ctx context.Context, pmids []string) ([]types.Paper, []string, error) {
	if len(pmids) == 0 {
		return nil, nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(pmids)), ",")
	args := make([]any, len(pmids))
	for i, id := range pmids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT pmid, title, journal, year, doi, authors FROM articles WHERE pmid IN (`+placeholders+`)`,
		args...)
	if err != nil {
		return nil, nil, fmt.Errorf("querying cache: %w", err)
	}
	defer rows.Close()

	found := make(map[string]types.Paper, len(pmids))
	for rows.Next() {
		p, err := scanPaper(rows)
		if err != nil {
			return nil, nil, err
		}
		found[p.PMID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("reading cache rows: %w", err)
	}

	var papers []types.Paper
	var missing []string
	for _, id := range pmids {
		if p, ok := found[id]; ok {
			papers = append(papers, p)
		} else {
			missing = append(missing, id)
		}
	}
	return papers, missing, nil
}

// Stats summarizes the cache contents.
type Stats struct {
	Articles  int
	Runs      int
	LastRun   time.Time
	Path      string
	SizeBytes int64
}

// Stats returns article and run counts plus the database file size.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	st := Stats{Path: s.path}

	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM articles`).Scan(&st.Articles); err != nil {
		return Stats{}, fmt.Errorf("counting articles: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM runs`).Scan(&st.Runs); err != nil {
		return Stats{}, fmt.Errorf("counting runs: %w", err)
	}

	var lastRun sql.NullString
	if err := s.db.QueryRowContext(ctx, `SELECT max(ran_at) FROM runs`).Scan(&lastRun); err != nil {
		return Stats{}, fmt.Errorf("reading last run: %w", err)
	}
	if lastRun.Valid {
		if t, err := time.Parse(time.RFC3339, lastRun.String); err == nil {
			st.LastRun = t
		}
	}

	if info, err := os.Stat(s.path); err == nil {
		st.SizeBytes = info.Size()
	}
	return st, nil
}

// Clear removes all cached articles and run history.
func (s *Store) Clear(ctx context.Context) error {
	for _, stmt := range []string{`DELETE FROM articles`, `DELETE FROM runs`} {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("clearing cache: %w", err)
		}
	}
	return nil
}

// affiliationsText flattens a paper's author affiliations for the FTS
// index, one author per line.
func affiliationsText(p types.Paper) string {
	var parts []string
	for _, a := range p.Authors {
		if a.Affiliation != "" {
			parts = append(parts, a.Affiliation)
		}
	}
	return strings.Join(parts, "\n")
}

// scanPaper reads one article row. The caller selects the columns in the
// order pmid, title, journal, year, doi, authors.
func scanPaper(rows *sql.Rows) (types.Paper, error) {
	var (
		p           types.Paper
		authorsJSON sql.NullString
	)
	if err := rows.Scan(&p.PMID, &p.Title, &p.Journal, &p.Year, &p.DOI, &authorsJSON); err != nil {
		return types.Paper{}, fmt.Errorf("scanning article row: %w", err)
	}
	if authorsJSON.Valid && authorsJSON.String != "" {
		if err := json.Unmarshal([]byte(authorsJSON.String), &p.Authors); err != nil {
			return types.Paper{}, fmt.Errorf("parsing authors for %s: %w", p.PMID, err)
		}
	}
	return p, nil
}
