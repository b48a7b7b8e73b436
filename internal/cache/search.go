// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"context"
	"fmt"

	"github.com/pdiddy/pubmed-scout/pkg/types"
)

// Search runs an FTS5 query over cached article titles and affiliations
// and returns matches ranked by relevance. The query uses FTS5 syntax, so
// bare words are ANDed and quoted phrases match exactly.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]types.Paper, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT a.pmid, a.title, a.journal, a.year, a.doi, a.authors
		 FROM articles_fts
		 JOIN articles a ON a.rowid = articles_fts.rowid
		 WHERE articles_fts MATCH ?
		 ORDER BY articles_fts.rank
		 LIMIT ?`,
		query, limit)
	if err != nil {
		return nil, fmt.Errorf("searching cache: %w", err)
	}
	defer rows.Close()

	var papers []types.Paper
	for rows.Next() {
		p, err := scanPaper(rows)
		if err != nil {
			return nil, err
		}
		papers = append(papers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading search rows: %w", err)
	}
	return papers, nil
}
