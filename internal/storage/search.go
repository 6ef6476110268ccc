/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// SearchQuery describes the in-app search request.
// Text uses SQLite FTS5 syntax (simple terms, phrases in quotes, AND/OR/NOT).
// Filters are optional. Types can restrict to kinds like: element_text,
// slide_notes, deck_title. SlideFrom/To are inclusive 1-based slide numbers;
// 0 means unset. Limit/Offset implement pagination; defaults applied if zero.
type SearchQuery struct {
	Text      string
	Types     []string
	SlideFrom int
	SlideTo   int
	Limit     int
	Offset    int
}

// SearchResult represents a single match row.
// Snippet is an optional highlighted excerpt using [ ] markers when FTS text is used.
// SlideNo is 0 when the match is deck-level metadata.
type SearchResult struct {
	DocID     int64
	Type      string
	Path      string
	SlideNo   int
	SlideID   string
	ElementID string
	Snippet   string
}

// Search performs full-text search with optional filters over the embedded index.
// When q.Text is empty, it falls back to a non-FTS scan over documents with filters applied.
func Search(ctx context.Context, deckRoot string, q SearchQuery) ([]SearchResult, error) {
	if strings.TrimSpace(deckRoot) == "" {
		return nil, errors.New("deck root is required")
	}
	db, err := InitOrOpenIndex(deckRoot)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return searchDB(ctx, db, q)
}

func searchDB(ctx context.Context, db *sql.DB, q SearchQuery) ([]SearchResult, error) {
	var args []any
	var sb strings.Builder
	useFTS := strings.TrimSpace(q.Text) != ""
	if useFTS {
		sb.WriteString("SELECT d.doc_id, d.type, d.path, COALESCE(d.slide_no,0), COALESCE(d.slide_id,''), COALESCE(d.element_id,''), snippet(fts_documents, 0, '[', ']', '…', 10)\n")
		sb.WriteString("FROM fts_documents JOIN documents d ON fts_documents.rowid = d.doc_id\n")
		sb.WriteString("WHERE fts_documents MATCH ?\n")
		args = append(args, q.Text)
	} else {
		sb.WriteString("SELECT d.doc_id, d.type, d.path, COALESCE(d.slide_no,0), COALESCE(d.slide_id,''), COALESCE(d.element_id,''), ''\n")
		sb.WriteString("FROM documents d\nWHERE 1=1\n")
	}
	// Types filter (IN list)
	if len(q.Types) > 0 {
		sb.WriteString(" AND d.type IN (" + placeholders(len(q.Types)) + ")\n")
		for _, t := range q.Types {
			args = append(args, t)
		}
	}
	// Slide range
	if q.SlideFrom > 0 && q.SlideTo > 0 && q.SlideTo >= q.SlideFrom {
		sb.WriteString(" AND d.slide_no BETWEEN ? AND ?\n")
		args = append(args, q.SlideFrom, q.SlideTo)
	} else if q.SlideFrom > 0 {
		sb.WriteString(" AND d.slide_no >= ?\n")
		args = append(args, q.SlideFrom)
	} else if q.SlideTo > 0 {
		sb.WriteString(" AND d.slide_no <= ?\n")
		args = append(args, q.SlideTo)
	}
	// Order and pagination
	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	sb.WriteString("ORDER BY d.slide_no NULLS LAST, d.doc_id\n")
	sb.WriteString("LIMIT ? OFFSET ?")
	args = append(args, limit, q.Offset)

	rows, err := db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()
	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		var slideNo sql.NullInt64
		var sn sql.NullString
		if err := rows.Scan(&r.DocID, &r.Type, &r.Path, &slideNo, &r.SlideID, &r.ElementID, &sn); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if slideNo.Valid {
			r.SlideNo = int(slideNo.Int64)
		}
		if sn.Valid {
			r.Snippet = sn.String
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	b := strings.Builder{}
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("?")
	}
	return b.String()
}
