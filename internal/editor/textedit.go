/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import "strings"

// Surface is the live editable text widget a TextSession drives. While a
// session is active the surface's text is the single source of truth; the
// store's copy is only resynchronized at commit points.
type Surface interface {
	Text() string
	SetText(string)
	Caret() int
	SetCaret(int)
	// FocusCaretEnd focuses the surface and places the caret after the last rune.
	FocusCaretEnd()
}

// IndentWidth is the number of spaces inserted/removed by indent/outdent.
const IndentWidth = 4

// TextSession manages one text element's in-place edit lifecycle: focus and
// caret on entry, exactly-one commit on exit, re-entry after toolbar round
// trips, and auto-resize signaling. The commit is two-phase: the text is
// captured synchronously during the editable→non-editable transition and
// flushed to the store by the host after its own update has settled, so a
// re-render can neither lose nor duplicate the commit.
type TextSession struct {
	store   *Store
	surface Surface

	elemID string
	active bool

	pendingText string
	havePending bool

	// OnAutoResize, when set, receives the session's element id and current
	// text on every input so the host can grow the box to fit. Signaling
	// auto-resize never commits text.
	OnAutoResize func(elemID, text string)
}

// NewTextSession creates an idle session bound to the store.
func NewTextSession(store *Store) *TextSession {
	return &TextSession{store: store}
}

// Active reports whether an edit session is in progress.
func (t *TextSession) Active() bool { return t.active }

// ElementID returns the element being edited, or "" when idle.
func (t *TextSession) ElementID() string {
	if !t.active {
		return ""
	}
	return t.elemID
}

// Begin starts editing elemID on the given surface: the surface is focused
// with the caret at the end of the existing content.
func (t *TextSession) Begin(elemID string, s Surface) {
	// an earlier session that never flushed must not leak its text into this one
	t.flushPendingNow()
	t.elemID = elemID
	t.surface = s
	t.active = true
	s.FocusCaretEnd()
}

// HandleInput is called on every keystroke. It only signals auto-resize; the
// store is deliberately not updated per keystroke.
func (t *TextSession) HandleInput() {
	if !t.active || t.OnAutoResize == nil {
		return
	}
	t.OnAutoResize(t.elemID, t.surface.Text())
}

// HandleBlur captures the surface text for commit when focus leaves the
// surface, e.g. to a toolbar control. The session stays active so a
// follow-up focus resumes editing.
func (t *TextSession) HandleBlur() {
	if !t.active {
		return
	}
	t.pendingText = t.surface.Text()
	t.havePending = true
}

// HandleFocus recognizes a click back into a still-active surface as a fresh
// edit session: the capture taken at blur is superseded, so text typed after
// the toolbar round trip is committed by the next blur rather than dropped.
func (t *TextSession) HandleFocus() {
	if !t.active {
		return
	}
	t.havePending = false
}

// End terminates the session on the editable→non-editable transition
// (selection loss, Escape, undo). The surface text is captured synchronously,
// before any asynchronous re-render can clobber the surface, and scheduled
// for commit via Flush.
func (t *TextSession) End() {
	if !t.active {
		return
	}
	t.pendingText = t.surface.Text()
	t.havePending = true
	t.active = false
}

// Flush delivers the pending commit to the store. The host calls it once per
// frame after its own state update has been applied; a session ending
// therefore commits exactly once, with the freshest text.
func (t *TextSession) Flush() {
	t.flushPendingNow()
}

func (t *TextSession) flushPendingNow() {
	if !t.havePending {
		return
	}
	t.havePending = false
	_ = t.store.CommitText(t.elemID, t.pendingText)
}

// Indent inserts IndentWidth spaces at the start of the caret's line and
// moves the caret right by the same amount.
func (t *TextSession) Indent() {
	if !t.active {
		return
	}
	text, caret := IndentLine(t.surface.Text(), t.surface.Caret())
	t.surface.SetText(text)
	t.surface.SetCaret(caret)
	t.HandleInput()
}

// Outdent removes up to IndentWidth leading spaces from the caret's line.
func (t *TextSession) Outdent() {
	if !t.active {
		return
	}
	text, caret := OutdentLine(t.surface.Text(), t.surface.Caret())
	t.surface.SetText(text)
	t.surface.SetCaret(caret)
	t.HandleInput()
}

// lineStart finds the index just past the previous newline by scanning
// backward from the caret. Content may contain hard line breaks anywhere, so
// naive string splitting is not an option.
func lineStart(text string, caret int) int {
	if caret > len(text) {
		caret = len(text)
	}
	if caret < 0 {
		caret = 0
	}
	i := strings.LastIndexByte(text[:caret], '\n')
	return i + 1
}

// IndentLine inserts IndentWidth spaces at the caret's line start and returns
// the new text and caret position.
func IndentLine(text string, caret int) (string, int) {
	ls := lineStart(text, caret)
	pad := strings.Repeat(" ", IndentWidth)
	out := text[:ls] + pad + text[ls:]
	return out, caret + IndentWidth
}

// OutdentLine removes up to IndentWidth leading spaces from the caret's line.
// The caret moves left by the number of spaces removed, but never before the
// line start.
func OutdentLine(text string, caret int) (string, int) {
	ls := lineStart(text, caret)
	n := 0
	for n < IndentWidth && ls+n < len(text) && text[ls+n] == ' ' {
		n++
	}
	if n == 0 {
		return text, caret
	}
	out := text[:ls] + text[ls+n:]
	nc := caret - n
	if nc < ls {
		nc = ls
	}
	return out, nc
}
