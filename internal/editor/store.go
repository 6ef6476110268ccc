/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"godeckstudio/internal/domain"
	"godeckstudio/internal/geom"
)

var (
	// ErrLastSlide is returned when deleting the only remaining slide.
	ErrLastSlide = errors.New("cannot delete the last slide")
	// ErrNoSuchElement is returned when an element id is not on the active slide.
	ErrNoSuchElement = errors.New("no such element on active slide")
)

// Store is the presentation state container the editor operates on. All
// mutations go through its command methods; each structural command captures
// a pre-mutation snapshot into the history and bumps the UpdatedAt stamp.
// Commands are issued serially from the UI event loop; the mutex only guards
// against stray background readers (server, exporter).
type Store struct {
	mu sync.Mutex

	pres        domain.Presentation
	activeSlide int
	selection   map[string]struct{}
	editMode    bool

	hist *History
	ids  IDGen
	now  func() time.Time

	// OnChange, when set, is invoked after every successful mutation so the
	// UI can refresh. Called without the lock held.
	OnChange func()
}

// NewStore wraps an existing presentation. A presentation with no slides gets
// one empty slide so the "never zero slides" invariant holds from the start.
func NewStore(p domain.Presentation, ids IDGen, hc HistoryConfig) *Store {
	s := &Store{
		pres:      p.Clone(),
		selection: map[string]struct{}{},
		hist:      NewHistory(hc),
		ids:       ids,
		now:       time.Now,
	}
	if len(s.pres.Slides) == 0 {
		s.pres.Slides = []domain.Slide{{ID: ids.NewID()}}
	}
	return s
}

// SetClock replaces the timestamp source; tests use a fixed clock.
func (s *Store) SetClock(now func() time.Time) { s.now = now }

// Presentation returns a deep copy of the current document.
func (s *Store) Presentation() domain.Presentation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pres.Clone()
}

// ActiveSlideIndex returns the current slide index.
func (s *Store) ActiveSlideIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeSlide
}

// ActiveSlide returns a copy of the current slide.
func (s *Store) ActiveSlide() domain.Slide {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pres.Slides[s.activeSlide].Clone()
}

// SlideCount returns the number of slides.
func (s *Store) SlideCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pres.Slides)
}

// SetActiveSlide navigates to slide i, clamped into range. Navigation clears
// the selection; it is scoped to the active slide.
func (s *Store) SetActiveSlide(i int) {
	s.mu.Lock()
	if i < 0 {
		i = 0
	}
	if i >= len(s.pres.Slides) {
		i = len(s.pres.Slides) - 1
	}
	changed := i != s.activeSlide
	s.activeSlide = i
	if changed {
		s.selection = map[string]struct{}{}
	}
	s.mu.Unlock()
	if changed {
		s.notify()
	}
}

// EditMode reports whether pointer-driven manipulation is enabled.
func (s *Store) EditMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editMode
}

// SetEditMode toggles the slide-level edit flag.
func (s *Store) SetEditMode(on bool) {
	s.mu.Lock()
	s.editMode = on
	if !on {
		s.selection = map[string]struct{}{}
	}
	s.mu.Unlock()
	s.notify()
}

// Selection

// SelectedIDs returns the selected element ids in stable (sorted) order.
func (s *Store) SelectedIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.selection))
	for id := range s.selection {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// IsSelected reports membership of id in the selection.
func (s *Store) IsSelected(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.selection[id]
	return ok
}

// SelectionSize returns the number of selected elements.
func (s *Store) SelectionSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.selection)
}

// SetSelection replaces the selection. Selection changes are not undoable.
func (s *Store) SetSelection(ids ...string) {
	s.mu.Lock()
	s.selection = map[string]struct{}{}
	for _, id := range ids {
		s.selection[id] = struct{}{}
	}
	s.mu.Unlock()
	s.notify()
}

// ToggleSelected flips membership of a single element without touching the rest.
func (s *Store) ToggleSelected(id string) {
	s.mu.Lock()
	if _, ok := s.selection[id]; ok {
		delete(s.selection, id)
	} else {
		s.selection[id] = struct{}{}
	}
	s.mu.Unlock()
	s.notify()
}

// ClearSelection empties the selection.
func (s *Store) ClearSelection() { s.SetSelection() }

// SelectAll selects every element on the active slide and enters edit mode.
func (s *Store) SelectAll() {
	s.mu.Lock()
	s.selection = map[string]struct{}{}
	for _, e := range s.pres.Slides[s.activeSlide].Elements {
		s.selection[e.ID] = struct{}{}
	}
	s.editMode = true
	s.mu.Unlock()
	s.notify()
}

// Slide commands

// AddSlide appends a new empty slide after the active one and navigates to it.
func (s *Store) AddSlide() domain.Slide {
	s.mu.Lock()
	s.pushLocked()
	sl := domain.Slide{ID: s.ids.NewID(), Background: "#ffffff"}
	at := s.activeSlide + 1
	s.pres.Slides = append(s.pres.Slides[:at], append([]domain.Slide{sl}, s.pres.Slides[at:]...)...)
	s.activeSlide = at
	s.selection = map[string]struct{}{}
	s.touchLocked()
	s.mu.Unlock()
	s.notify()
	return sl
}

// DeleteSlide removes the slide with the given id. Deleting the only slide is
// refused so the presentation is never empty.
func (s *Store) DeleteSlide(id string) error {
	s.mu.Lock()
	if len(s.pres.Slides) <= 1 {
		s.mu.Unlock()
		return ErrLastSlide
	}
	idx := s.pres.FindSlide(id)
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("delete slide %s: not found", id)
	}
	s.pushLocked()
	s.pres.Slides = append(s.pres.Slides[:idx], s.pres.Slides[idx+1:]...)
	if s.activeSlide >= len(s.pres.Slides) {
		s.activeSlide = len(s.pres.Slides) - 1
	}
	s.selection = map[string]struct{}{}
	s.touchLocked()
	s.mu.Unlock()
	s.notify()
	return nil
}

// SetSlideNotes replaces the speaker notes of the slide with the given id.
// Unchanged notes do not create an undo step.
func (s *Store) SetSlideNotes(id, notes string) error {
	s.mu.Lock()
	idx := s.pres.FindSlide(id)
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("set notes %s: slide not found", id)
	}
	if s.pres.Slides[idx].Notes == notes {
		s.mu.Unlock()
		return nil
	}
	s.pushLocked()
	s.pres.Slides[idx].Notes = notes
	s.touchLocked()
	s.mu.Unlock()
	s.notify()
	return nil
}

// Element commands (all scoped to the active slide)

// AddElement appends el on top of the active slide's z-order. A missing id is
// assigned from the generator. Returns the stored element.
func (s *Store) AddElement(el domain.Element) domain.Element {
	s.mu.Lock()
	s.pushLocked()
	if el.ID == "" {
		el.ID = s.ids.NewID()
	}
	sl := &s.pres.Slides[s.activeSlide]
	sl.Elements = append(sl.Elements, el)
	s.touchLocked()
	s.mu.Unlock()
	s.notify()
	return el
}

// UpdateElement replaces the element with el.ID on the active slide.
func (s *Store) UpdateElement(el domain.Element) error {
	s.mu.Lock()
	sl := &s.pres.Slides[s.activeSlide]
	idx := sl.FindElement(el.ID)
	if idx < 0 {
		s.mu.Unlock()
		return ErrNoSuchElement
	}
	s.pushLocked()
	sl.Elements[idx] = el
	s.touchLocked()
	s.mu.Unlock()
	s.notify()
	return nil
}

// ApplyGeometry moves/resizes several elements as one undoable step. Entries
// whose id is not present are skipped; the drag controller may race a delete
// issued from the context menu and must not get stuck over it.
func (s *Store) ApplyGeometry(geo map[string]domain.Rect) {
	if len(geo) == 0 {
		return
	}
	s.mu.Lock()
	s.pushLocked()
	sl := &s.pres.Slides[s.activeSlide]
	for id, r := range geo {
		if idx := sl.FindElement(id); idx >= 0 {
			e := &sl.Elements[idx]
			e.X, e.Y, e.W, e.H = r.X, r.Y, r.W, r.H
		}
	}
	s.touchLocked()
	s.mu.Unlock()
	s.notify()
}

// SetFontSize updates a text element's font size together with its geometry;
// used by resize drags that scale text with the box.
func (s *Store) SetFontSize(id string, size float64) {
	s.mu.Lock()
	sl := &s.pres.Slides[s.activeSlide]
	if idx := sl.FindElement(id); idx >= 0 {
		s.pushLocked()
		sl.Elements[idx].Style.FontSize = size
		s.touchLocked()
	}
	s.mu.Unlock()
	s.notify()
}

// CommitText resynchronizes a text element's content at a commit point (blur
// or edit-mode exit). Per-keystroke edits deliberately do not reach the store.
func (s *Store) CommitText(id, text string) error {
	s.mu.Lock()
	sl := &s.pres.Slides[s.activeSlide]
	idx := sl.FindElement(id)
	if idx < 0 {
		s.mu.Unlock()
		return ErrNoSuchElement
	}
	if sl.Elements[idx].Content == text {
		s.mu.Unlock()
		return nil
	}
	s.pushLocked()
	sl.Elements[idx].Content = text
	s.touchLocked()
	s.mu.Unlock()
	s.notify()
	return nil
}

// RemoveElements deletes the given elements from the active slide and drops
// them from the selection.
func (s *Store) RemoveElements(ids ...string) {
	if len(ids) == 0 {
		return
	}
	s.mu.Lock()
	s.pushLocked()
	sl := &s.pres.Slides[s.activeSlide]
	drop := map[string]struct{}{}
	for _, id := range ids {
		drop[id] = struct{}{}
		delete(s.selection, id)
	}
	kept := sl.Elements[:0]
	for _, e := range sl.Elements {
		if _, gone := drop[e.ID]; !gone {
			kept = append(kept, e)
		}
	}
	sl.Elements = kept
	s.touchLocked()
	s.mu.Unlock()
	s.notify()
}

// DeleteSelection removes every selected element.
func (s *Store) DeleteSelection() { s.RemoveElements(s.SelectedIDs()...) }

// BringToFront moves the element to the end of the z-order (topmost).
func (s *Store) BringToFront(id string) error { return s.reorder(id, true) }

// SendToBack moves the element to the start of the z-order (bottommost).
func (s *Store) SendToBack(id string) error { return s.reorder(id, false) }

func (s *Store) reorder(id string, front bool) error {
	s.mu.Lock()
	sl := &s.pres.Slides[s.activeSlide]
	idx := sl.FindElement(id)
	if idx < 0 {
		s.mu.Unlock()
		return ErrNoSuchElement
	}
	s.pushLocked()
	el := sl.Elements[idx]
	sl.Elements = append(sl.Elements[:idx], sl.Elements[idx+1:]...)
	if front {
		sl.Elements = append(sl.Elements, el)
	} else {
		sl.Elements = append([]domain.Element{el}, sl.Elements...)
	}
	s.touchLocked()
	s.mu.Unlock()
	s.notify()
	return nil
}

// PasteElements inserts copies of els onto the active slide with fresh
// identities and a small offset, selects the copies, and enters edit mode.
// Offsets are clamped so the copies stay on canvas.
func (s *Store) PasteElements(els []domain.Element) []domain.Element {
	if len(els) == 0 {
		return nil
	}
	s.mu.Lock()
	s.pushLocked()
	sl := &s.pres.Slides[s.activeSlide]
	out := make([]domain.Element, 0, len(els))
	s.selection = map[string]struct{}{}
	for _, e := range els {
		e.ID = s.ids.NewID()
		e.X = geom.Clamp(e.X+pasteOffset, 0, pasteMaxPos)
		e.Y = geom.Clamp(e.Y+pasteOffset, 0, pasteMaxPos)
		sl.Elements = append(sl.Elements, e)
		s.selection[e.ID] = struct{}{}
		out = append(out, e)
	}
	s.editMode = true
	s.touchLocked()
	s.mu.Unlock()
	s.notify()
	return out
}

// Undo / redo

// CanUndo reports undo availability.
func (s *Store) CanUndo() bool { return s.hist.CanUndo() }

// CanRedo reports redo availability.
func (s *Store) CanRedo() bool { return s.hist.CanRedo() }

// Undo restores the most recent past snapshot, making the current state
// redoable. The selection is narrowed to elements that still exist.
func (s *Store) Undo() bool { return s.timeTravel(s.hist.Undo) }

// Redo restores the most recent future snapshot.
func (s *Store) Redo() bool { return s.timeTravel(s.hist.Redo) }

func (s *Store) timeTravel(step func(current []byte) (Snapshot, bool)) bool {
	s.mu.Lock()
	cur, err := json.Marshal(s.pres)
	if err != nil {
		s.mu.Unlock()
		return false
	}
	snap, ok := step(cur)
	if !ok {
		s.mu.Unlock()
		return false
	}
	var p domain.Presentation
	if err := json.Unmarshal(snap.Blob, &p); err != nil {
		s.mu.Unlock()
		return false
	}
	s.pres = p
	if s.activeSlide >= len(s.pres.Slides) {
		s.activeSlide = len(s.pres.Slides) - 1
	}
	// drop selected ids that no longer exist
	sl := s.pres.Slides[s.activeSlide]
	for id := range s.selection {
		if sl.FindElement(id) < 0 {
			delete(s.selection, id)
		}
	}
	s.mu.Unlock()
	s.notify()
	return true
}

// pushLocked captures the pre-mutation snapshot. Serialization failure only
// loses the undo entry, never the edit itself.
func (s *Store) pushLocked() {
	blob, err := json.Marshal(s.pres)
	if err != nil {
		return
	}
	s.hist.Push(Snapshot{Blob: blob, TS: s.now()})
}

func (s *Store) touchLocked() { s.pres.UpdatedAt = s.now() }

func (s *Store) notify() {
	if s.OnChange != nil {
		s.OnChange()
	}
}

const (
	// pasteOffset is the percent displacement applied to pasted/duplicated copies.
	pasteOffset = 2.0
	// pasteMaxPos caps the pasted origin so copies stay on canvas.
	pasteMaxPos = 95.0
)
