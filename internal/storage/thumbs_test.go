/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */

package storage

import (
	"bytes"
	"context"
	"testing"
)

func TestThumbPutGetRoundTrip(t *testing.T) {
	root := t.TempDir()
	ctx := context.Background()
	blob := []byte{0x89, 'P', 'N', 'G', 1, 2, 3}
	if err := PutThumb(ctx, root, "s1", 160, 90, blob); err != nil {
		t.Fatalf("PutThumb error: %v", err)
	}
	got, err := GetThumb(ctx, root, "s1", 160, 90)
	if err != nil {
		t.Fatalf("GetThumb error: %v", err)
	}
	if !bytes.Equal(got, blob) {
		t.Fatalf("thumb bytes differ")
	}
	// miss on different dimensions
	miss, err := GetThumb(ctx, root, "s1", 320, 180)
	if err != nil {
		t.Fatalf("GetThumb error: %v", err)
	}
	if miss != nil {
		t.Fatalf("expected miss for other dimensions")
	}
}

func TestGetOrCreateThumbGeneratesOnce(t *testing.T) {
	root := t.TempDir()
	ctx := context.Background()
	calls := 0
	gen := func(context.Context) ([]byte, error) {
		calls++
		return []byte("png-bytes"), nil
	}
	for i := 0; i < 2; i++ {
		b, err := GetOrCreateThumb(ctx, root, "s1", 160, 90, gen)
		if err != nil {
			t.Fatalf("GetOrCreateThumb error: %v", err)
		}
		if string(b) != "png-bytes" {
			t.Fatalf("thumb content wrong: %q", b)
		}
	}
	if calls != 1 {
		t.Fatalf("generator calls = %d, want 1", calls)
	}
}

func TestInvalidateThumbsDropsSlide(t *testing.T) {
	root := t.TempDir()
	ctx := context.Background()
	if err := PutThumb(ctx, root, "s1", 160, 90, []byte("a")); err != nil {
		t.Fatalf("PutThumb error: %v", err)
	}
	if err := PutThumb(ctx, root, "s2", 160, 90, []byte("b")); err != nil {
		t.Fatalf("PutThumb error: %v", err)
	}
	if err := InvalidateThumbs(ctx, root, "s1"); err != nil {
		t.Fatalf("InvalidateThumbs error: %v", err)
	}
	if b, _ := GetThumb(ctx, root, "s1", 160, 90); b != nil {
		t.Fatalf("s1 thumb should be gone")
	}
	if b, _ := GetThumb(ctx, root, "s2", 160, 90); b == nil {
		t.Fatalf("s2 thumb should survive")
	}
}

func TestThumbEvictionHonorsCap(t *testing.T) {
	root := t.TempDir()
	ctx := context.Background()
	t.Setenv("GDS_THUMBS_MAX_BYTES", "10")
	// 6 bytes each; the second insert must evict the first
	if err := PutThumb(ctx, root, "s1", 160, 90, []byte("aaaaaa")); err != nil {
		t.Fatalf("PutThumb error: %v", err)
	}
	if err := PutThumb(ctx, root, "s2", 160, 90, []byte("bbbbbb")); err != nil {
		t.Fatalf("PutThumb error: %v", err)
	}
	total, err := TotalThumbBytes(ctx, root)
	if err != nil {
		t.Fatalf("TotalThumbBytes error: %v", err)
	}
	if total > 10 {
		t.Fatalf("cache size %d exceeds cap", total)
	}
}
