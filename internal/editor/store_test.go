/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"reflect"
	"testing"

	"godeckstudio/internal/domain"
)

func newTestStore(t *testing.T, elements ...domain.Element) *Store {
	t.Helper()
	p := domain.Presentation{
		ID:     "deck",
		Title:  "Test Deck",
		Slides: []domain.Slide{{ID: "s1", Elements: elements}},
	}
	s := NewStore(p, &SeqGen{Prefix: "id"}, HistoryConfig{})
	s.SetEditMode(true)
	return s
}

func el(id string, x, y, w, h float64) domain.Element {
	return domain.Element{ID: id, Kind: domain.KindShape, Shape: "rect", X: x, Y: y, W: w, H: h}
}

func TestDeleteLastSlideRefused(t *testing.T) {
	s := newTestStore(t)
	if err := s.DeleteSlide("s1"); err != ErrLastSlide {
		t.Fatalf("expected ErrLastSlide, got %v", err)
	}
	if s.SlideCount() != 1 {
		t.Fatalf("slide count changed on refused delete")
	}
}

func TestAddAndDeleteSlide(t *testing.T) {
	s := newTestStore(t)
	sl := s.AddSlide()
	if s.SlideCount() != 2 || s.ActiveSlideIndex() != 1 {
		t.Fatalf("add slide: count=%d active=%d", s.SlideCount(), s.ActiveSlideIndex())
	}
	if err := s.DeleteSlide(sl.ID); err != nil {
		t.Fatalf("delete slide: %v", err)
	}
	if s.SlideCount() != 1 || s.ActiveSlideIndex() != 0 {
		t.Fatalf("after delete: count=%d active=%d", s.SlideCount(), s.ActiveSlideIndex())
	}
}

func TestSetSlideNotes(t *testing.T) {
	s := newTestStore(t)
	if err := s.SetSlideNotes("s1", "remember the demo"); err != nil {
		t.Fatalf("set notes: %v", err)
	}
	if got := s.ActiveSlide().Notes; got != "remember the demo" {
		t.Fatalf("notes = %q", got)
	}
	// Setting the same notes again is a no-op and must not add an undo step.
	if err := s.SetSlideNotes("s1", "remember the demo"); err != nil {
		t.Fatalf("set same notes: %v", err)
	}
	if err := s.SetSlideNotes("missing", "x"); err == nil {
		t.Fatalf("expected error for unknown slide")
	}
	if !s.Undo() {
		t.Fatalf("undo should succeed")
	}
	if got := s.ActiveSlide().Notes; got != "" {
		t.Fatalf("notes after undo = %q", got)
	}
	if s.Undo() {
		t.Fatalf("no further undo expected")
	}
}

func TestUndoRestoresExactSnapshot(t *testing.T) {
	s := newTestStore(t, el("a", 10, 10, 20, 10))
	before := s.Presentation()

	s.ApplyGeometry(map[string]domain.Rect{"a": {X: 30, Y: 30, W: 20, H: 10}})
	after := s.Presentation()
	if after.Slides[0].Elements[0].X != 30 {
		t.Fatalf("mutation not applied")
	}

	if !s.Undo() {
		t.Fatalf("undo failed")
	}
	got := s.Presentation()
	if !reflect.DeepEqual(got.Slides, before.Slides) {
		t.Fatalf("undo did not restore exact prior snapshot:\n got %+v\nwant %+v", got.Slides, before.Slides)
	}

	if !s.Redo() {
		t.Fatalf("redo failed")
	}
	got = s.Presentation()
	if !reflect.DeepEqual(got.Slides, after.Slides) {
		t.Fatalf("redo did not restore post-mutation snapshot")
	}

	// a fresh mutation after undo clears the redo stack
	s.Undo()
	s.ApplyGeometry(map[string]domain.Rect{"a": {X: 5, Y: 5, W: 20, H: 10}})
	if s.CanRedo() {
		t.Fatalf("new mutation after undo must clear redo")
	}
}

func TestZOrderCommands(t *testing.T) {
	s := newTestStore(t, el("a", 0, 0, 10, 10), el("b", 0, 0, 10, 10), el("c", 0, 0, 10, 10))
	if err := s.BringToFront("a"); err != nil {
		t.Fatalf("bring to front: %v", err)
	}
	sl := s.ActiveSlide()
	if sl.Elements[2].ID != "a" {
		t.Fatalf("expected a on top, got %v", sl.Elements)
	}
	if err := s.SendToBack("c"); err != nil {
		t.Fatalf("send to back: %v", err)
	}
	sl = s.ActiveSlide()
	if sl.Elements[0].ID != "c" {
		t.Fatalf("expected c at bottom, got %v", sl.Elements)
	}
}

func TestSelectionClearedOnNavigation(t *testing.T) {
	s := newTestStore(t, el("a", 0, 0, 10, 10))
	s.AddSlide()
	s.SetActiveSlide(0)
	s.SetSelection("a")
	s.SetActiveSlide(1)
	if s.SelectionSize() != 0 {
		t.Fatalf("selection must be cleared on slide navigation")
	}
}

func TestPasteGeneratesFreshIdentities(t *testing.T) {
	s := newTestStore(t, el("a", 10, 10, 10, 10), el("b", 94, 94, 5, 5))
	s.SetSelection("a", "b")

	var cb Clipboard
	if n := cb.CopySelection(s); n != 2 {
		t.Fatalf("copied %d, want 2", n)
	}
	pasted := cb.Paste(s)
	if len(pasted) != 2 {
		t.Fatalf("pasted %d, want 2", len(pasted))
	}
	seen := map[string]bool{"a": true, "b": true}
	for _, e := range pasted {
		if seen[e.ID] {
			t.Fatalf("pasted element reuses identity %q", e.ID)
		}
		seen[e.ID] = true
		if e.X > 95 || e.Y > 95 {
			t.Fatalf("paste offset not clamped: %+v", e)
		}
	}
	// copies are selected and edit mode is on
	if s.SelectionSize() != 2 || !s.EditMode() {
		t.Fatalf("paste must select copies and enter edit mode")
	}
	// offset applied where room allows
	if pasted[0].X != 12 || pasted[0].Y != 12 {
		t.Fatalf("expected +2%% offset, got %+v", pasted[0])
	}
}

func TestDuplicateInPlace(t *testing.T) {
	s := newTestStore(t, el("a", 10, 10, 10, 10))
	s.SetSelection("a")
	dups := Duplicate(s)
	if len(dups) != 1 || dups[0].ID == "a" {
		t.Fatalf("duplicate must create one fresh element, got %+v", dups)
	}
	if got := len(s.ActiveSlide().Elements); got != 2 {
		t.Fatalf("expected 2 elements after duplicate, got %d", got)
	}
}

func TestCommitTextSkipsNoOp(t *testing.T) {
	s := newTestStore(t, domain.Element{ID: "t1", Kind: domain.KindText, X: 10, Y: 10, W: 30, H: 10, Content: "hello"})
	if err := s.CommitText("t1", "hello"); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if s.CanUndo() {
		t.Fatalf("unchanged text must not create an undo entry")
	}
	if err := s.CommitText("t1", "world"); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if got := s.ActiveSlide().Elements[0].Content; got != "world" {
		t.Fatalf("content = %q", got)
	}
	if !s.CanUndo() {
		t.Fatalf("text commit is a structural mutation and must be undoable")
	}
}

func TestRemoveElementsDropsSelection(t *testing.T) {
	s := newTestStore(t, el("a", 0, 0, 10, 10), el("b", 20, 20, 10, 10))
	s.SetSelection("a", "b")
	s.DeleteSelection()
	if got := len(s.ActiveSlide().Elements); got != 0 {
		t.Fatalf("expected empty slide, got %d elements", got)
	}
	if s.SelectionSize() != 0 {
		t.Fatalf("selection must be empty after delete")
	}
}
