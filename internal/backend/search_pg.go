/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */
package backend

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"godeckstudio/internal/storage"
)

// SearchPG executes a search over the Postgres documents table using tsvector and filters
// and returns results mapped to storage.SearchResult to ease parity checks with the
// embedded SQLite index.
func SearchPG(ctx context.Context, db *sql.DB, deckID int64, q storage.SearchQuery) ([]storage.SearchResult, error) {
	var (
		args []any
		b    strings.Builder
	)
	useFTS := strings.TrimSpace(q.Text) != ""
	if useFTS {
		b.WriteString("SELECT d.id AS doc_id, d.doc_type AS type, COALESCE(d.external_ref,'') AS path, COALESCE(d.slide_num,0) AS slide_no, ")
		b.WriteString("COALESCE(d.slide_ref,'') AS slide_id, COALESCE(d.element_ref,'') AS element_id, ")
		b.WriteString("COALESCE(ts_headline('simple', COALESCE(d.raw_text,''), plainto_tsquery('simple', $1), 'StartSel=[, StopSel=], MaxFragments=1, MaxWords=12'), '') AS snippet ")
		b.WriteString("FROM documents d WHERE d.deck_id = $2 AND d.search_vector @@ plainto_tsquery('simple', $1) ")
		args = append(args, q.Text, deckID)
	} else {
		b.WriteString("SELECT d.id AS doc_id, d.doc_type AS type, COALESCE(d.external_ref,'') AS path, COALESCE(d.slide_num,0) AS slide_no, ")
		b.WriteString("COALESCE(d.slide_ref,'') AS slide_id, COALESCE(d.element_ref,'') AS element_id, '' AS snippet ")
		b.WriteString("FROM documents d WHERE d.deck_id = $1 ")
		args = append(args, deckID)
	}

	// Helper to add parameter and return placeholder like $n
	place := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	// Types filter
	if len(q.Types) > 0 {
		b.WriteString(" AND d.doc_type = ANY (" + place(q.Types) + ") ")
	}
	// Slide range
	if q.SlideFrom > 0 && q.SlideTo > 0 && q.SlideTo >= q.SlideFrom {
		b.WriteString(" AND d.slide_num BETWEEN " + place(q.SlideFrom) + " AND " + place(q.SlideTo) + " ")
	} else if q.SlideFrom > 0 {
		b.WriteString(" AND d.slide_num >= " + place(q.SlideFrom) + " ")
	} else if q.SlideTo > 0 {
		b.WriteString(" AND d.slide_num <= " + place(q.SlideTo) + " ")
	}
	// Order and pagination
	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}
	b.WriteString(" ORDER BY d.slide_num NULLS LAST, d.id ")
	b.WriteString(" LIMIT " + place(limit) + " OFFSET " + place(offset))

	rows, err := db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("search pg query: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []storage.SearchResult
	for rows.Next() {
		var r storage.SearchResult
		if err := rows.Scan(&r.DocID, &r.Type, &r.Path, &r.SlideNo, &r.SlideID, &r.ElementID, &r.Snippet); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
