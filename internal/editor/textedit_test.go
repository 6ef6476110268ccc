/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"testing"

	"godeckstudio/internal/domain"
)

type fakeSurface struct {
	text    string
	caret   int
	focused bool
}

func (f *fakeSurface) Text() string     { return f.text }
func (f *fakeSurface) SetText(s string) { f.text = s }
func (f *fakeSurface) Caret() int       { return f.caret }
func (f *fakeSurface) SetCaret(c int)   { f.caret = c }
func (f *fakeSurface) FocusCaretEnd() {
	f.focused = true
	f.caret = len(f.text)
}

func textEl(id, content string) domain.Element {
	return domain.Element{ID: id, Kind: domain.KindText, X: 10, Y: 10, W: 20, H: 10, Content: content}
}

func storedText(t *testing.T, s *Store, id string) string {
	t.Helper()
	sl := s.ActiveSlide()
	idx := sl.FindElement(id)
	if idx < 0 {
		t.Fatalf("element %q missing", id)
	}
	return sl.Elements[idx].Content
}

func TestSessionCommitsOnceOnEnd(t *testing.T) {
	s := newTestStore(t, textEl("t1", "hello"))
	sess := NewTextSession(s)
	sf := &fakeSurface{text: "hello"}

	sess.Begin("t1", sf)
	if !sf.focused || sf.caret != len("hello") {
		t.Fatalf("begin must focus with caret at end: focused=%v caret=%d", sf.focused, sf.caret)
	}

	sf.text = "hello world"
	sess.End()
	if storedText(t, s, "t1") != "hello" {
		t.Fatalf("commit must not reach the store before flush")
	}
	sess.Flush()
	if got := storedText(t, s, "t1"); got != "hello world" {
		t.Fatalf("flush did not commit: %q", got)
	}

	_, depth, _ := s.hist.Stats()
	sess.Flush() // second flush is a no-op
	if _, got, _ := s.hist.Stats(); got != depth {
		t.Fatalf("repeated flush produced an extra history entry")
	}
}

func TestUnchangedTextCommitIsNotUndoable(t *testing.T) {
	s := newTestStore(t, textEl("t1", "same"))
	sess := NewTextSession(s)
	sf := &fakeSurface{text: "same"}

	sess.Begin("t1", sf)
	sess.End()
	sess.Flush()
	if s.CanUndo() {
		t.Fatalf("identical text must not create an undo step")
	}
}

func TestBlurRefocusResumesSession(t *testing.T) {
	s := newTestStore(t, textEl("t1", "a"))
	sess := NewTextSession(s)
	sf := &fakeSurface{text: "a"}

	sess.Begin("t1", sf)
	sf.text = "ab"
	sess.HandleBlur() // focus moves to a toolbar control
	if !sess.Active() {
		t.Fatalf("blur must not end the session")
	}

	sess.HandleFocus() // click back into the text
	sf.text = "abc"
	sess.End()
	sess.Flush()
	if got := storedText(t, s, "t1"); got != "abc" {
		t.Fatalf("text typed after refocus was lost: %q", got)
	}
}

func TestBlurThenFlushCommitsWithoutEndingSession(t *testing.T) {
	s := newTestStore(t, textEl("t1", "old"))
	sess := NewTextSession(s)
	sf := &fakeSurface{text: "old"}

	sess.Begin("t1", sf)
	sf.text = "new text typed by user"
	sess.HandleBlur()
	if got := storedText(t, s, "t1"); got != "old" {
		t.Fatalf("blur alone must not reach the store, got %q", got)
	}
	// A save that reads the store here would persist stale text unless the
	// host flushes the capture taken at blur.
	sess.Flush()
	if got := storedText(t, s, "t1"); got != "new text typed by user" {
		t.Fatalf("flush after blur did not commit: %q", got)
	}
	if !sess.Active() {
		t.Fatalf("session must stay active across a blur commit")
	}

	// Editing resumes; the next blur+flush commits the newer text.
	sess.HandleFocus()
	sf.text = "newer still"
	sess.HandleBlur()
	sess.Flush()
	if got := storedText(t, s, "t1"); got != "newer still" {
		t.Fatalf("second blur commit failed: %q", got)
	}
}

func TestStaleSessionFlushedBeforeNewBegin(t *testing.T) {
	s := newTestStore(t, textEl("t1", "one"), textEl("t2", "two"))
	sess := NewTextSession(s)

	sf1 := &fakeSurface{text: "one"}
	sess.Begin("t1", sf1)
	sf1.text = "one edited"
	sess.End()

	// host never flushed; beginning on t2 must deliver t1's commit first
	// and must not leak t1's text into t2
	sf2 := &fakeSurface{text: "two"}
	sess.Begin("t2", sf2)
	if got := storedText(t, s, "t1"); got != "one edited" {
		t.Fatalf("stale commit dropped: %q", got)
	}
	if got := storedText(t, s, "t2"); got != "two" {
		t.Fatalf("stale text leaked into new session: %q", got)
	}
	if sess.ElementID() != "t2" {
		t.Fatalf("session not bound to new element")
	}
}

func TestHandleInputSignalsAutoResizeWithoutCommit(t *testing.T) {
	s := newTestStore(t, textEl("t1", "x"))
	sess := NewTextSession(s)
	var gotID, gotText string
	sess.OnAutoResize = func(id, text string) { gotID, gotText = id, text }

	sf := &fakeSurface{text: "x"}
	sess.Begin("t1", sf)
	sf.text = "xy"
	sess.HandleInput()
	if gotID != "t1" || gotText != "xy" {
		t.Fatalf("auto-resize not signaled: id=%q text=%q", gotID, gotText)
	}
	if storedText(t, s, "t1") != "x" {
		t.Fatalf("keystroke must not commit to the store")
	}
}

func TestIndentOutdentLine(t *testing.T) {
	cases := []struct {
		name      string
		text      string
		caret     int
		indent    bool
		wantText  string
		wantCaret int
	}{
		{"indent single line", "abc", 2, true, "    abc", 6},
		{"indent second line", "ab\ncd", 4, true, "ab\n    cd", 8},
		{"outdent full stop", "    abc", 6, false, "abc", 2},
		{"outdent partial", "  abc", 4, false, "abc", 2},
		{"outdent nothing", "abc", 1, false, "abc", 1},
		{"outdent caret clamps to line start", "ab\n    cd", 4, false, "ab\ncd", 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var text string
			var caret int
			if tc.indent {
				text, caret = IndentLine(tc.text, tc.caret)
			} else {
				text, caret = OutdentLine(tc.text, tc.caret)
			}
			if text != tc.wantText || caret != tc.wantCaret {
				t.Fatalf("got (%q,%d), want (%q,%d)", text, caret, tc.wantText, tc.wantCaret)
			}
		})
	}
}

func TestSessionIndentDrivesSurface(t *testing.T) {
	s := newTestStore(t, textEl("t1", "line"))
	sess := NewTextSession(s)
	sf := &fakeSurface{text: "line"}
	sess.Begin("t1", sf)
	sf.caret = 2

	sess.Indent()
	if sf.text != "    line" || sf.caret != 6 {
		t.Fatalf("indent: text=%q caret=%d", sf.text, sf.caret)
	}
	sess.Outdent()
	if sf.text != "line" || sf.caret != 2 {
		t.Fatalf("outdent: text=%q caret=%d", sf.text, sf.caret)
	}
}
