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

// canvas is 1000x1000 px in these tests, so 10 px = 1 percent.
func newTestController(t *testing.T, elements ...domain.Element) (*Controller, *Store) {
	t.Helper()
	s := newTestStore(t, elements...)
	c := NewController(s)
	c.SetCanvasSize(1000, 1000)
	return c, s
}

func elemRect(t *testing.T, s *Store, id string) domain.Rect {
	t.Helper()
	sl := s.ActiveSlide()
	idx := sl.FindElement(id)
	if idx < 0 {
		t.Fatalf("element %q missing", id)
	}
	return sl.Elements[idx].Bounds()
}

func TestClickBelowThresholdSelectsWithoutMoving(t *testing.T) {
	c, s := newTestController(t, el("a", 10, 10, 20, 10))
	if !c.PointerDownElement(1, 150, 150, "a", false) {
		t.Fatalf("pointer down rejected")
	}
	c.PointerMove(1, 153, 152) // below threshold
	c.PointerUp(1, 153, 152)

	if got := elemRect(t, s, "a"); got.X != 10 || got.Y != 10 {
		t.Fatalf("click must not move the element: %+v", got)
	}
	if !s.IsSelected("a") || s.SelectionSize() != 1 {
		t.Fatalf("click must select the element")
	}
	if c.Phase() != PhaseIdle {
		t.Fatalf("controller stuck in phase %v", c.Phase())
	}
}

func TestDragBeyondThresholdMoves(t *testing.T) {
	c, s := newTestController(t, el("a", 10, 10, 20, 10))
	c.PointerDownElement(1, 150, 150, "a", false)
	c.PointerMove(1, 250, 200) // +100px,+50px = +10%,+5%
	c.PointerUp(1, 250, 200)

	got := elemRect(t, s, "a")
	if got.X != 20 || got.Y != 15 {
		t.Fatalf("expected (20,15), got (%v,%v)", got.X, got.Y)
	}
	// the trailing synthetic click must not clear the selection
	c.ClickCanvas()
	if !s.IsSelected("a") {
		t.Fatalf("selection cleared by post-drag click")
	}
	// a later plain click on empty canvas does clear it
	c.ClickCanvas()
	if s.SelectionSize() != 0 {
		t.Fatalf("plain canvas click must clear selection")
	}
}

func TestGroupDragClampsIndependently(t *testing.T) {
	// primary at x=2 dragged by -3%: clamps to 0; peer at x=50 moves to 47.
	c, s := newTestController(t, el("a", 2, 10, 10, 10), el("b", 50, 10, 10, 10))
	s.SetSelection("a", "b")
	c.PointerDownElement(1, 70, 150, "a", false)
	c.PointerMove(1, 40, 150) // -30px = -3%
	c.PointerUp(1, 40, 150)

	if got := elemRect(t, s, "a"); got.X != 0 {
		t.Fatalf("primary should clamp to 0, got %v", got.X)
	}
	if got := elemRect(t, s, "b"); got.X != 47 {
		t.Fatalf("peer should move by the unclamped delta, got %v", got.X)
	}
}

func TestDragUnselectedElementNarrowsSelection(t *testing.T) {
	c, s := newTestController(t, el("a", 10, 10, 10, 10), el("b", 50, 50, 10, 10))
	s.SetSelection("a")
	c.PointerDownElement(1, 550, 550, "b", false)
	c.PointerMove(1, 650, 550) // +10%
	c.PointerUp(1, 650, 550)

	if got := elemRect(t, s, "a"); got.X != 10 {
		t.Fatalf("stale selection was dragged: %+v", got)
	}
	if got := elemRect(t, s, "b"); got.X != 60 {
		t.Fatalf("drag target did not move: %+v", got)
	}
	if !s.IsSelected("b") || s.IsSelected("a") {
		t.Fatalf("selection should have narrowed to the drag target")
	}
}

func TestModifierClickTogglesMembership(t *testing.T) {
	c, s := newTestController(t, el("a", 10, 10, 10, 10), el("b", 50, 50, 10, 10))
	s.SetSelection("a")

	// modifier-click adds b
	c.PointerDownElement(1, 550, 550, "b", true)
	c.PointerUp(1, 550, 550)
	if !s.IsSelected("a") || !s.IsSelected("b") {
		t.Fatalf("modifier-click should add without clearing: %v", s.SelectedIDs())
	}

	// modifier-click removes b again
	c.PointerDownElement(1, 550, 550, "b", true)
	c.PointerUp(1, 550, 550)
	if s.IsSelected("b") || !s.IsSelected("a") {
		t.Fatalf("modifier-click should toggle off: %v", s.SelectedIDs())
	}
}

func TestPlainClickReplacesSelection(t *testing.T) {
	c, s := newTestController(t, el("a", 10, 10, 10, 10), el("b", 50, 50, 10, 10))
	s.SetSelection("a", "b")
	c.PointerDownElement(1, 150, 150, "a", false)
	c.PointerUp(1, 150, 150)
	if s.SelectionSize() != 1 || !s.IsSelected("a") {
		t.Fatalf("plain click must narrow to the clicked element: %v", s.SelectedIDs())
	}
}

func TestResizeSEHandle(t *testing.T) {
	c, s := newTestController(t, el("a", 10, 10, 20, 10))
	s.SetSelection("a")
	if !c.PointerDownHandle(1, 300, 200, HandleSE) {
		t.Fatalf("handle down rejected")
	}
	c.PointerMove(1, 400, 250) // +10%,+5%
	c.PointerUp(1, 400, 250)

	got := elemRect(t, s, "a")
	if got.X != 10 || got.Y != 10 || got.W != 30 || got.H != 15 {
		t.Fatalf("se resize: got %+v, want (10,10,30,15)", got)
	}
}

func TestResizeNWHandle(t *testing.T) {
	c, s := newTestController(t, el("a", 10, 10, 20, 10))
	s.SetSelection("a")
	c.PointerDownHandle(1, 100, 100, HandleNW)
	c.PointerMove(1, 150, 150) // +5%,+5%
	c.PointerUp(1, 150, 150)

	got := elemRect(t, s, "a")
	if got.X != 15 || got.Y != 15 || got.W != 15 || got.H != 5 {
		t.Fatalf("nw resize: got %+v, want (15,15,15,5)", got)
	}
}

func TestResizeEnforcesFloorAndBounds(t *testing.T) {
	c, s := newTestController(t, el("a", 10, 10, 20, 10))
	s.SetSelection("a")
	c.PointerDownHandle(1, 300, 200, HandleSE)
	c.PointerMove(1, 0, 0) // collapse hard past the floor
	c.PointerUp(1, 0, 0)
	got := elemRect(t, s, "a")
	if got.W != MinElementSize || got.H != MinElementSize {
		t.Fatalf("floor not enforced: %+v", got)
	}

	c.PointerDownHandle(2, 150, 150, HandleSE)
	c.PointerMove(2, 2000, 2000) // grow far past the canvas
	c.PointerUp(2, 2000, 2000)
	got = elemRect(t, s, "a")
	if got.X+got.W > 100 || got.Y+got.H > 100 {
		t.Fatalf("resize escaped the canvas: %+v", got)
	}
}

func TestResizeScalesTextFont(t *testing.T) {
	c, s := newTestController(t, domain.Element{
		ID: "t1", Kind: domain.KindText, X: 10, Y: 10, W: 20, H: 10,
		Content: "hi", Style: domain.Style{FontSize: 20},
	})
	s.SetSelection("t1")
	c.PointerDownHandle(1, 300, 200, HandleSE)
	c.PointerMove(1, 300, 300) // height 10% -> 20%
	c.PointerUp(1, 300, 300)

	sl := s.ActiveSlide()
	got := sl.Elements[0].Style.FontSize
	if got != 40 {
		t.Fatalf("font should scale with height ratio: got %v, want 40", got)
	}
}

func TestMarqueeSelectsByIntersection(t *testing.T) {
	c, s := newTestController(t, el("a", 0, 0, 10, 10), el("b", 50, 50, 10, 10))
	if !c.PointerDownCanvas(1, 0, 0, false) {
		t.Fatalf("canvas down rejected")
	}
	c.PointerMove(1, 200, 200) // marquee (0,0,20,20)
	if r, ok := c.MarqueeRect(); !ok || r.W != 20 || r.H != 20 {
		t.Fatalf("marquee rect wrong: %+v ok=%v", r, ok)
	}
	c.PointerUp(1, 200, 200)

	if !s.IsSelected("a") || s.IsSelected("b") || s.SelectionSize() != 1 {
		t.Fatalf("marquee should select exactly {a}: %v", s.SelectedIDs())
	}
	// trailing click does not clear the marquee selection
	c.ClickCanvas()
	if !s.IsSelected("a") {
		t.Fatalf("marquee selection cleared by trailing click")
	}
}

func TestMarqueeAdditiveUnionsBase(t *testing.T) {
	c, s := newTestController(t, el("a", 0, 0, 10, 10), el("b", 50, 50, 10, 10))
	s.SetSelection("b")
	c.PointerDownCanvas(1, 0, 0, true)
	c.PointerMove(1, 150, 150)
	c.PointerUp(1, 150, 150)
	if !s.IsSelected("a") || !s.IsSelected("b") {
		t.Fatalf("additive marquee should union with prior selection: %v", s.SelectedIDs())
	}
}

func TestMarqueeReplaceDropsBase(t *testing.T) {
	c, s := newTestController(t, el("a", 0, 0, 10, 10), el("b", 50, 50, 10, 10))
	s.SetSelection("b")
	c.PointerDownCanvas(1, 0, 0, false)
	c.PointerMove(1, 150, 150)
	c.PointerUp(1, 150, 150)
	if s.IsSelected("b") || !s.IsSelected("a") {
		t.Fatalf("non-additive marquee should replace selection: %v", s.SelectedIDs())
	}
}

func TestEmptyCanvasClickClearsSelection(t *testing.T) {
	c, s := newTestController(t, el("a", 0, 0, 10, 10))
	s.SetSelection("a")
	c.PointerDownCanvas(1, 900, 900, false)
	c.PointerUp(1, 900, 900) // no movement: plain click
	if s.SelectionSize() != 0 {
		t.Fatalf("click on empty canvas must clear selection")
	}
}

func TestSecondPointerIgnoredDuringSequence(t *testing.T) {
	c, s := newTestController(t, el("a", 10, 10, 20, 10))
	c.PointerDownElement(1, 150, 150, "a", false)
	if c.PointerDownElement(2, 500, 500, "a", false) {
		t.Fatalf("second pointer-down must be ignored mid-sequence")
	}
	c.PointerMove(2, 900, 900) // foreign pointer: no effect
	if got := elemRect(t, s, "a"); got.X != 10 {
		t.Fatalf("foreign pointer moved the element: %+v", got)
	}
	c.PointerUp(2, 900, 900) // foreign pointer: no teardown
	if c.Phase() != PhasePending {
		t.Fatalf("foreign pointer-up tore down the sequence")
	}
	c.PointerUp(1, 150, 150)
	if c.Phase() != PhaseIdle {
		t.Fatalf("sequence did not return to idle")
	}
}

func TestMoveClampInvariantHolds(t *testing.T) {
	c, s := newTestController(t, el("a", 90, 90, 10, 10))
	s.SetSelection("a")
	c.PointerDownElement(1, 950, 950, "a", false)
	c.PointerMove(1, 2000, 2000)
	c.PointerUp(1, 2000, 2000)
	got := elemRect(t, s, "a")
	if got.X < 0 || got.Y < 0 || got.X+got.W > 100 || got.Y+got.H > 100 {
		t.Fatalf("bounds invariant violated: %+v", got)
	}
}

func TestEnsureSelectedForContextMenu(t *testing.T) {
	c, s := newTestController(t, el("a", 0, 0, 10, 10), el("b", 50, 50, 10, 10))
	s.SetSelection("a")
	c.EnsureSelected("b")
	if !s.IsSelected("b") || s.IsSelected("a") {
		t.Fatalf("right-click must select the target: %v", s.SelectedIDs())
	}
	c.EnsureSelected("b") // already selected: selection untouched
	if s.SelectionSize() != 1 {
		t.Fatalf("re-ensure changed selection")
	}
}

func TestEditModeOffDisablesInteraction(t *testing.T) {
	c, s := newTestController(t, el("a", 10, 10, 10, 10))
	s.SetEditMode(false)
	if c.PointerDownElement(1, 150, 150, "a", false) {
		t.Fatalf("pointer interaction must be disabled outside edit mode")
	}
	if c.PointerDownCanvas(1, 500, 500, false) {
		t.Fatalf("marquee must be disabled outside edit mode")
	}
}
