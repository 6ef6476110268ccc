/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"time"

	"godeckstudio/internal/domain"
	"godeckstudio/internal/geom"
)

// Phase is the controller's interaction state for the active pointer sequence.
type Phase int

const (
	PhaseIdle Phase = iota
	// PhasePending: pointer is down on an element but displacement has not
	// exceeded the drag threshold; nothing has moved yet.
	PhasePending
	PhaseMove
	PhaseResize
	PhaseMarquee
)

// Handle names one of the eight compass resize handles.
type Handle string

const (
	HandleNW Handle = "nw"
	HandleN  Handle = "n"
	HandleNE Handle = "ne"
	HandleE  Handle = "e"
	HandleSE Handle = "se"
	HandleS  Handle = "s"
	HandleSW Handle = "sw"
	HandleW  Handle = "w"
)

const (
	// DragThresholdPx disambiguates click from drag: a pointer must travel
	// more than this many pixels on either axis before a move starts.
	DragThresholdPx = 4.0
	// MinElementSize is the percent floor below which resize never shrinks.
	MinElementSize = 5.0
)

// Controller converts raw pointer sequences into selection changes, moves,
// resizes, and marquee selections against the store. Exactly one pointer
// sequence is active at a time; pointer-downs arriving while a sequence is in
// progress are ignored. All coordinates arriving here are pixels relative to
// the canvas origin; the controller converts to percent space itself.
type Controller struct {
	store *Store

	canvasW, canvasH float64

	phase     Phase
	pointerID int // active pointer, -1 when idle

	// pointer-down bookkeeping
	startPxX, startPxY float64
	primaryID          string
	startGeom          map[string]domain.Rect // start rects of all dragged elements
	startFont          float64                // primary's font size at resize start, 0 if none
	handle             Handle

	// pending-click bookkeeping (click vs drag)
	clickAdditive    bool
	clickWasSelected bool

	// marquee bookkeeping
	marqueeStartX, marqueeStartY float64 // percent
	marqueeAdditive              bool
	marqueeBase                  map[string]struct{}
	marqueeRect                  domain.Rect
	marqueeMoved                 bool

	// justDragged suppresses the synthetic click that follows pointer-up so
	// it does not clear the selection that the drag produced.
	justDragged bool

	lastEvent time.Time
}

// NewController wires a controller to its store.
func NewController(store *Store) *Controller {
	return &Controller{store: store, pointerID: -1}
}

// SetCanvasSize tells the controller the rendered pixel size of the canvas.
// Must be kept current by the widget on every layout pass.
func (c *Controller) SetCanvasSize(w, h float64) { c.canvasW, c.canvasH = w, h }

// Phase returns the current interaction phase, mainly for tests and overlays.
func (c *Controller) Phase() Phase { return c.phase }

// MarqueeRect returns the active marquee rectangle and whether one is showing.
func (c *Controller) MarqueeRect() (domain.Rect, bool) {
	return c.marqueeRect, c.phase == PhaseMarquee && c.marqueeMoved
}

// PointerDownElement starts a sequence over an element body. If the element
// is not already selected the selection narrows to it first, so a drag never
// grabs a stale prior selection. Returns false when the event was ignored
// (sequence already active, or not in edit mode).
func (c *Controller) PointerDownElement(pointer int, px, py float64, elemID string, additive bool) bool {
	if c.phase != PhaseIdle || !c.store.EditMode() {
		return false
	}
	sl := c.store.ActiveSlide()
	if sl.FindElement(elemID) < 0 {
		return false
	}
	c.clickWasSelected = c.store.IsSelected(elemID)
	c.clickAdditive = additive
	if !c.clickWasSelected {
		if additive {
			c.store.ToggleSelected(elemID)
		} else {
			c.store.SetSelection(elemID)
		}
	}
	c.pointerID = pointer
	c.primaryID = elemID
	c.startPxX, c.startPxY = px, py
	c.startGeom = c.captureSelectedGeometry()
	c.phase = PhasePending
	c.lastEvent = time.Now()
	return true
}

// PointerDownHandle starts a resize sequence. Resize intent is unambiguous
// from the handle itself, so there is no pending phase. Only valid while
// exactly one element is selected in edit mode.
func (c *Controller) PointerDownHandle(pointer int, px, py float64, h Handle) bool {
	if c.phase != PhaseIdle || !c.store.EditMode() || c.store.SelectionSize() != 1 {
		return false
	}
	ids := c.store.SelectedIDs()
	sl := c.store.ActiveSlide()
	idx := sl.FindElement(ids[0])
	if idx < 0 {
		return false
	}
	el := sl.Elements[idx]
	c.pointerID = pointer
	c.primaryID = el.ID
	c.handle = h
	c.startPxX, c.startPxY = px, py
	c.startGeom = map[string]domain.Rect{el.ID: el.Bounds()}
	c.startFont = 0
	if el.Kind == domain.KindText {
		c.startFont = el.Style.FontSize
	}
	c.phase = PhaseResize
	return true
}

// PointerDownCanvas starts a marquee sequence on empty canvas. The selection
// present at marquee start is snapshotted for additive (modifier-held) mode.
func (c *Controller) PointerDownCanvas(pointer int, px, py float64, additive bool) bool {
	if c.phase != PhaseIdle || !c.store.EditMode() {
		return false
	}
	c.pointerID = pointer
	c.startPxX, c.startPxY = px, py
	c.marqueeStartX, c.marqueeStartY = geom.ToPercent(px, py, c.canvasW, c.canvasH)
	c.marqueeAdditive = additive
	c.marqueeBase = map[string]struct{}{}
	if additive {
		for _, id := range c.store.SelectedIDs() {
			c.marqueeBase[id] = struct{}{}
		}
	}
	c.marqueeMoved = false
	c.marqueeRect = domain.Rect{X: c.marqueeStartX, Y: c.marqueeStartY}
	c.phase = PhaseMarquee
	return true
}

// PointerMove advances the active sequence. Events from other pointers are
// ignored; the canvas holds exclusive capture for the active one.
func (c *Controller) PointerMove(pointer int, px, py float64) {
	if pointer != c.pointerID {
		return
	}
	switch c.phase {
	case PhasePending:
		dx := px - c.startPxX
		dy := py - c.startPxY
		if dx > DragThresholdPx || dx < -DragThresholdPx || dy > DragThresholdPx || dy < -DragThresholdPx {
			c.phase = PhaseMove
			c.applyMove(px, py)
		}
	case PhaseMove:
		c.applyMove(px, py)
	case PhaseResize:
		c.applyResize(px, py)
	case PhaseMarquee:
		c.applyMarquee(px, py)
	}
}

// PointerUp completes the active sequence and returns the controller to Idle
// unconditionally: the teardown happens even if an intervening store update
// failed, so the controller can never get stuck mid-drag.
func (c *Controller) PointerUp(pointer int, px, py float64) {
	if pointer != c.pointerID {
		return
	}
	phase := c.phase
	defer c.reset()
	switch phase {
	case PhasePending:
		// Below-threshold press-and-release is a click, never a position change.
		if c.clickAdditive {
			if c.clickWasSelected {
				c.store.ToggleSelected(c.primaryID)
			}
			// not previously selected: pointer-down already added it
		} else {
			c.store.SetSelection(c.primaryID)
		}
	case PhaseMove, PhaseResize:
		c.justDragged = true
	case PhaseMarquee:
		if c.marqueeMoved {
			c.justDragged = true
		} else if !c.marqueeAdditive {
			// plain press-and-release on empty canvas clears the selection
			c.store.ClearSelection()
		}
	}
}

// ClickCanvas handles the synthetic click that platforms deliver after
// pointer-up. A click that trailed a completed drag must not clear the
// selection the drag produced.
func (c *Controller) ClickCanvas() {
	if c.justDragged {
		c.justDragged = false
		return
	}
	if c.store.EditMode() {
		c.store.ClearSelection()
	}
}

// EnsureSelected is the right-click path: an element that is not part of the
// selection becomes the sole selection before its context menu opens.
func (c *Controller) EnsureSelected(elemID string) {
	if !c.store.IsSelected(elemID) {
		c.store.SetSelection(elemID)
	}
}

// Cancel force-clears any in-progress sequence, e.g. when the widget loses
// the pointer grab. Transient state is dropped; applied geometry stays.
func (c *Controller) Cancel() { c.reset() }

func (c *Controller) reset() {
	c.phase = PhaseIdle
	c.pointerID = -1
	c.primaryID = ""
	c.startGeom = nil
	c.startFont = 0
	c.handle = ""
	c.marqueeBase = nil
	c.marqueeMoved = false
}

func (c *Controller) captureSelectedGeometry() map[string]domain.Rect {
	out := map[string]domain.Rect{}
	sl := c.store.ActiveSlide()
	for _, id := range c.store.SelectedIDs() {
		if idx := sl.FindElement(id); idx >= 0 {
			out[id] = sl.Elements[idx].Bounds()
		}
	}
	return out
}

// applyMove translates every dragged element by the same percent delta,
// clamping each one into the canvas independently so a multi-selection drags
// as a rigid group except where a member hits a boundary.
func (c *Controller) applyMove(px, py float64) {
	dx, dy := geom.DeltaPercent(px-c.startPxX, py-c.startPxY, c.canvasW, c.canvasH)
	geo := make(map[string]domain.Rect, len(c.startGeom))
	for id, r := range c.startGeom {
		nx, ny := geom.ClampPos(r.X+dx, r.Y+dy, r.W, r.H)
		geo[id] = domain.Rect{X: nx, Y: ny, W: r.W, H: r.H}
	}
	c.store.ApplyGeometry(geo)
}

// applyResize recomputes the primary element's rect from the active handle.
// Handles on the left/top edge move the origin and shrink the size; handles
// on the right/bottom edge change size only. The element never shrinks below
// MinElementSize and never leaves [0,100]. Text elements with a recorded
// starting font size scale it with the height ratio.
func (c *Controller) applyResize(px, py float64) {
	start, ok := c.startGeom[c.primaryID]
	if !ok {
		return
	}
	dx, dy := geom.DeltaPercent(px-c.startPxX, py-c.startPxY, c.canvasW, c.canvasH)
	r := start

	switch c.handle {
	case HandleNW, HandleW, HandleSW:
		r.X = start.X + dx
		r.W = start.W - dx
	case HandleNE, HandleE, HandleSE:
		r.W = start.W + dx
	}
	switch c.handle {
	case HandleNW, HandleN, HandleNE:
		r.Y = start.Y + dy
		r.H = start.H - dy
	case HandleSW, HandleS, HandleSE:
		r.H = start.H + dy
	}

	r = clampResize(r, start, c.handle)
	c.store.ApplyGeometry(map[string]domain.Rect{c.primaryID: r})

	if c.startFont > 0 && start.H > 0 {
		c.store.SetFontSize(c.primaryID, c.startFont*(r.H/start.H))
	}
}

// clampResize enforces the size floor and canvas bounds. For left/top handles
// the opposite edge stays fixed while the floor is applied.
func clampResize(r, start domain.Rect, h Handle) domain.Rect {
	right := start.X + start.W
	bottom := start.Y + start.H

	switch h {
	case HandleNW, HandleW, HandleSW:
		if r.W < MinElementSize {
			r.W = MinElementSize
			r.X = right - MinElementSize
		}
		if r.X < 0 {
			r.X = 0
			r.W = right
		}
	case HandleNE, HandleE, HandleSE:
		r.W = geom.Clamp(r.W, MinElementSize, geom.CanvasMax-start.X)
	}
	switch h {
	case HandleNW, HandleN, HandleNE:
		if r.H < MinElementSize {
			r.H = MinElementSize
			r.Y = bottom - MinElementSize
		}
		if r.Y < 0 {
			r.Y = 0
			r.H = bottom
		}
	case HandleSW, HandleS, HandleSE:
		r.H = geom.Clamp(r.H, MinElementSize, geom.CanvasMax-start.Y)
	}
	return r
}

// applyMarquee recomputes the rubber-band rectangle and the selection as the
// set of elements whose bounds intersect it; additive mode unions with the
// pre-marquee snapshot.
func (c *Controller) applyMarquee(px, py float64) {
	c.marqueeMoved = true
	cx, cy := geom.ToPercent(px, py, c.canvasW, c.canvasH)
	c.marqueeRect = geom.Normalize(c.marqueeStartX, c.marqueeStartY, cx, cy)

	sel := map[string]struct{}{}
	for id := range c.marqueeBase {
		sel[id] = struct{}{}
	}
	sl := c.store.ActiveSlide()
	for _, e := range sl.Elements {
		if geom.Intersects(e.Bounds(), c.marqueeRect) {
			sel[e.ID] = struct{}{}
		}
	}
	ids := make([]string, 0, len(sel))
	for id := range sel {
		ids = append(ids, id)
	}
	c.store.SetSelection(ids...)
}
