/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import "godeckstudio/internal/domain"

// Clipboard is the editor-internal element clipboard. Its contents are plain
// copies; identities are regenerated on paste, never reused. The clipboard is
// intentionally outside the undo history.
type Clipboard struct {
	items []domain.Element
}

// CopySelection stores copies of the currently selected elements, in z-order.
func (cb *Clipboard) CopySelection(s *Store) int {
	sl := s.ActiveSlide()
	ids := map[string]struct{}{}
	for _, id := range s.SelectedIDs() {
		ids[id] = struct{}{}
	}
	cb.items = cb.items[:0]
	for _, e := range sl.Elements {
		if _, ok := ids[e.ID]; ok {
			cb.items = append(cb.items, e)
		}
	}
	return len(cb.items)
}

// Paste inserts the clipboard contents onto the active slide with fresh ids
// and a small offset, selecting the copies.
func (cb *Clipboard) Paste(s *Store) []domain.Element {
	return s.PasteElements(append([]domain.Element(nil), cb.items...))
}

// Duplicate copies the current selection straight back onto the slide without
// touching the clipboard contents.
func Duplicate(s *Store) []domain.Element {
	sl := s.ActiveSlide()
	ids := map[string]struct{}{}
	for _, id := range s.SelectedIDs() {
		ids[id] = struct{}{}
	}
	var sel []domain.Element
	for _, e := range sl.Elements {
		if _, ok := ids[e.ID]; ok {
			sel = append(sel, e)
		}
	}
	return s.PasteElements(sel)
}

// Len returns the number of stored elements.
func (cb *Clipboard) Len() int { return len(cb.items) }
