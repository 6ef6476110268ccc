//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/test"
)

func TestSlideKeyNav(t *testing.T) {
	cases := []struct {
		key  fyne.KeyName
		edit bool
		sel  int
		want int
	}{
		{fyne.KeyLeft, false, 0, -1},
		{fyne.KeyUp, false, 0, -1},
		{fyne.KeyRight, false, 0, 1},
		{fyne.KeyDown, false, 0, 1},
		// in edit mode arrows navigate only while nothing is selected
		{fyne.KeyLeft, true, 0, -1},
		{fyne.KeyRight, true, 0, 1},
		{fyne.KeyLeft, true, 1, 0},
		{fyne.KeyDown, true, 2, 0},
		{fyne.KeyEscape, false, 0, 0},
		{fyne.KeySpace, true, 0, 0},
	}
	for _, c := range cases {
		if got := slideKeyNav(c.key, c.edit, c.sel); got != c.want {
			t.Errorf("slideKeyNav(%v, edit=%v, sel=%d) = %d, want %d", c.key, c.edit, c.sel, got, c.want)
		}
	}
}

func TestArrowKeysFollowSlidesInViewerMode(t *testing.T) {
	st := testStore()
	st.AddSlide()
	st.SetActiveSlide(0)
	st.SetEditMode(false)

	step := slideKeyNav(fyne.KeyRight, st.EditMode(), st.SelectionSize())
	st.SetActiveSlide(st.ActiveSlideIndex() + step)
	if st.ActiveSlideIndex() != 1 {
		t.Fatalf("right arrow did not advance: index=%d", st.ActiveSlideIndex())
	}
	step = slideKeyNav(fyne.KeyUp, st.EditMode(), st.SelectionSize())
	st.SetActiveSlide(st.ActiveSlideIndex() + step)
	if st.ActiveSlideIndex() != 0 {
		t.Fatalf("up arrow did not go back: index=%d", st.ActiveSlideIndex())
	}

	// With a selection in edit mode the arrows belong to the nudge path.
	st.SetEditMode(true)
	st.SetSelection("e1")
	if step := slideKeyNav(fyne.KeyRight, st.EditMode(), st.SelectionSize()); step != 0 {
		t.Fatalf("arrows must not change slides while elements are selected")
	}
}

func TestTextEditEntryCaretRuneSafe(t *testing.T) {
	test.NewApp()
	win := test.NewWindow(nil)
	defer win.Close()
	e := newTextEditEntry(win)
	win.SetContent(e)

	text := "héllo\nwörld"
	e.SetText(text)

	// Caret positions are byte offsets; cursor columns are runes.
	e.SetCaret(len(text))
	if e.CursorRow != 1 || e.CursorColumn != 5 {
		t.Fatalf("caret end: row=%d col=%d", e.CursorRow, e.CursorColumn)
	}
	if got := e.Caret(); got != len(text) {
		t.Fatalf("caret round trip at end: %d != %d", got, len(text))
	}

	// After "wö" on the second line: 2 runes, 3 bytes.
	off := len("héllo\n") + len("wö")
	e.SetCaret(off)
	if e.CursorRow != 1 || e.CursorColumn != 2 {
		t.Fatalf("mid-line caret: row=%d col=%d", e.CursorRow, e.CursorColumn)
	}
	if got := e.Caret(); got != off {
		t.Fatalf("mid-line round trip: %d != %d", got, off)
	}

	// First line, after "hé": column counts runes, offset counts bytes.
	off = len("hé")
	e.SetCaret(off)
	if e.CursorRow != 0 || e.CursorColumn != 2 {
		t.Fatalf("first-line caret: row=%d col=%d", e.CursorRow, e.CursorColumn)
	}
	if got := e.Caret(); got != off {
		t.Fatalf("first-line round trip: %d != %d", got, off)
	}
}

func TestTextEditEntryShiftTabOutdents(t *testing.T) {
	test.NewApp()
	win := test.NewWindow(nil)
	defer win.Close()
	e := newTextEditEntry(win)
	win.SetContent(e)

	indents, outdents := 0, 0
	e.onTab = func() { indents++ }
	e.onShiftTab = func() { outdents++ }

	e.KeyDown(&fyne.KeyEvent{Name: desktop.KeyShiftLeft})
	e.TypedKey(&fyne.KeyEvent{Name: fyne.KeyTab})
	e.KeyUp(&fyne.KeyEvent{Name: desktop.KeyShiftLeft})
	e.TypedKey(&fyne.KeyEvent{Name: fyne.KeyTab})

	if outdents != 1 || indents != 1 {
		t.Fatalf("tab dispatch: indents=%d outdents=%d", indents, outdents)
	}
}
