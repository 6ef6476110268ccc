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
	"os"
	"strconv"
	"time"
)

// GetThumb returns the PNG bytes for a slide thumbnail of the given dimensions
// and updates last_access. Returns nil without error when no cached thumbnail
// exists.
func GetThumb(ctx context.Context, deckRoot string, slideID string, w, h int) ([]byte, error) {
	db, err := InitOrOpenIndex(deckRoot)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	var blob []byte
	err = db.QueryRowContext(ctx, `SELECT png_blob FROM thumbs WHERE slide_id=? AND w=? AND h=?`, slideID, w, h).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query thumb: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, _ = db.ExecContext(ctx, `UPDATE thumbs SET last_access=? WHERE slide_id=? AND w=? AND h=?`, now, slideID, w, h)
	return blob, nil
}

// PutThumb upserts a slide thumbnail blob and enforces the cache size cap via
// LRU eviction.
func PutThumb(ctx context.Context, deckRoot string, slideID string, w, h int, blob []byte) error {
	db, err := InitOrOpenIndex(deckRoot)
	if err != nil {
		return err
	}
	defer db.Close()
	now := time.Now().UTC().Format(time.RFC3339)
	_, err = db.ExecContext(ctx, `INSERT INTO thumbs(slide_id,w,h,png_blob,size,updated_at,last_access)
		VALUES(?,?,?,?,?,?,?)
		ON CONFLICT(slide_id,w,h) DO UPDATE SET png_blob=excluded.png_blob, size=excluded.size, updated_at=excluded.updated_at, last_access=excluded.last_access`,
		slideID, w, h, blob, len(blob), now, now)
	if err != nil {
		return fmt.Errorf("upsert thumb: %w", err)
	}
	capBytes := MaxThumbBytesFromEnv()
	if capBytes > 0 {
		if err := evictThumbsToFit(ctx, db, capBytes); err != nil {
			return err
		}
	}
	return nil
}

// GetOrCreateThumb fetches a thumbnail or generates and stores it using the
// provided generator.
func GetOrCreateThumb(ctx context.Context, deckRoot string, slideID string, w, h int, gen func(context.Context) ([]byte, error)) ([]byte, error) {
	if b, err := GetThumb(ctx, deckRoot, slideID, w, h); err != nil {
		return nil, err
	} else if b != nil {
		return b, nil
	}
	if gen == nil {
		return nil, nil
	}
	data, err := gen(ctx)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	if err := PutThumb(ctx, deckRoot, slideID, w, h, data); err != nil {
		return nil, err
	}
	return data, nil
}

// InvalidateThumbs drops all cached thumbnails for a slide, e.g. after its
// elements changed.
func InvalidateThumbs(ctx context.Context, deckRoot string, slideID string) error {
	db, err := InitOrOpenIndex(deckRoot)
	if err != nil {
		return err
	}
	defer db.Close()
	_, err = db.ExecContext(ctx, `DELETE FROM thumbs WHERE slide_id=?`, slideID)
	return err
}

// evictThumbsToFit deletes least-recently-used rows until total size <= capBytes.
func evictThumbsToFit(ctx context.Context, db *sql.DB, capBytes int64) error {
	var total int64
	if err := db.QueryRowContext(ctx, `SELECT COALESCE(SUM(size),0) FROM thumbs`).Scan(&total); err != nil {
		return fmt.Errorf("sum thumbs size: %w", err)
	}
	if total <= capBytes {
		return nil
	}
	rows, err := db.QueryContext(ctx, `SELECT id, size FROM thumbs ORDER BY
		CASE WHEN last_access IS NULL THEN 0 ELSE 1 END ASC, last_access ASC`)
	if err != nil {
		return fmt.Errorf("select victims: %w", err)
	}
	toDelete := make([]int64, 0, 32)
	cur := total
	for rows.Next() {
		var id, sz int64
		if err := rows.Scan(&id, &sz); err != nil {
			_ = rows.Close()
			return err
		}
		toDelete = append(toDelete, id)
		cur -= sz
		if cur <= capBytes {
			break
		}
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return err
	}
	// Close the cursor before attempting to write
	if err := rows.Close(); err != nil {
		return err
	}
	if len(toDelete) == 0 {
		return nil
	}
	q := `DELETE FROM thumbs WHERE id IN (` + placeholders(len(toDelete)) + `)`
	args := make([]any, len(toDelete))
	for i, v := range toDelete {
		args[i] = v
	}
	if _, err := db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("evict delete: %w", err)
	}
	return nil
}

// TotalThumbBytes returns total bytes tracked by thumbs.size.
func TotalThumbBytes(ctx context.Context, deckRoot string) (int64, error) {
	db, err := InitOrOpenIndex(deckRoot)
	if err != nil {
		return 0, err
	}
	defer db.Close()
	var total int64
	if err := db.QueryRowContext(ctx, `SELECT COALESCE(SUM(size),0) FROM thumbs`).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// MaxThumbBytesFromEnv reads GDS_THUMBS_MAX_BYTES, defaulting to 64MB if unset.
func MaxThumbBytesFromEnv() int64 {
	v := os.Getenv("GDS_THUMBS_MAX_BYTES")
	if v == "" {
		return 64 * 1024 * 1024 // 64MB
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return 64 * 1024 * 1024
	}
	return n
}
