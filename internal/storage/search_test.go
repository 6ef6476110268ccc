/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"testing"
)

func TestSearchFindsElementText(t *testing.T) {
	root := t.TempDir()
	ctx := context.Background()
	if err := UpdateIndex(ctx, root, sampleDeck()); err != nil {
		t.Fatalf("UpdateIndex error: %v", err)
	}
	res, err := Search(ctx, root, SearchQuery{Text: "revenue"})
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if len(res) != 1 {
		t.Fatalf("results = %d, want 1", len(res))
	}
	r := res[0]
	if r.Type != "element_text" || r.SlideNo != 2 || r.ElementID != "e3" {
		t.Fatalf("unexpected result: %+v", r)
	}
	if r.Snippet == "" {
		t.Fatalf("expected a snippet for FTS match")
	}
}

func TestSearchSlideRangeFilter(t *testing.T) {
	root := t.TempDir()
	ctx := context.Background()
	if err := UpdateIndex(ctx, root, sampleDeck()); err != nil {
		t.Fatalf("UpdateIndex error: %v", err)
	}
	res, err := Search(ctx, root, SearchQuery{SlideFrom: 1, SlideTo: 1})
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	for _, r := range res {
		if r.SlideNo != 1 {
			t.Fatalf("slide range filter leaked slide %d", r.SlideNo)
		}
	}
	if len(res) == 0 {
		t.Fatalf("expected slide 1 documents")
	}
}

func TestSearchTypeFilterWithoutText(t *testing.T) {
	root := t.TempDir()
	ctx := context.Background()
	if err := UpdateIndex(ctx, root, sampleDeck()); err != nil {
		t.Fatalf("UpdateIndex error: %v", err)
	}
	res, err := Search(ctx, root, SearchQuery{Types: []string{"slide_notes"}})
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if len(res) != 1 || res[0].Type != "slide_notes" {
		t.Fatalf("type filter wrong: %+v", res)
	}
}

func TestSearchPagination(t *testing.T) {
	root := t.TempDir()
	ctx := context.Background()
	if err := UpdateIndex(ctx, root, sampleDeck()); err != nil {
		t.Fatalf("UpdateIndex error: %v", err)
	}
	all, err := Search(ctx, root, SearchQuery{})
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("all documents = %d, want 4", len(all))
	}
	page, err := Search(ctx, root, SearchQuery{Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("page size = %d, want 2", len(page))
	}
	if page[0].DocID == all[0].DocID {
		t.Fatalf("offset not applied")
	}
}
