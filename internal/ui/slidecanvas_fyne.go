//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"godeckstudio/internal/domain"
	"godeckstudio/internal/editor"
)

// Logical slide surface in points: 16:9 at the same size the exporters use,
// so what the canvas shows matches the rendered output.
const (
	slideW = 960
	slideH = 540
)

const handleSizePx = 8

// canvasPointer is the synthetic pointer id used for all mouse sequences;
// Fyne delivers a single pointer on desktop.
const canvasPointer = 1

// SlideCanvas renders the active slide of a store and translates Fyne's
// tap/drag events into controller pointer sequences. All pointer positions
// handed to the controller are in slide-point space (0..960 x 0..540), so the
// controller's canvas size is constant regardless of zoom.
type SlideCanvas struct {
	widget.BaseWidget

	store *editor.Store
	ctrl  *editor.Controller

	// Interaction
	zoom    float32
	offsetX float32
	offsetY float32

	// DeckRoot resolves relative image element paths. Empty until a deck is open.
	DeckRoot string

	// modifier state captured on mouse-down; Tapped/Dragged do not carry it
	shiftDown  bool
	dragActive bool
	lastDragX  float64
	lastDragY  float64

	// OnEditText fires on double tap over a text element while in edit mode.
	OnEditText func(elemID string)
	// OnContextMenu fires on secondary tap over an element; the element is
	// already part of the selection when the callback runs.
	OnContextMenu func(elemID string, abs fyne.Position)
}

// NewSlideCanvas builds a canvas bound to the given store and controller.
func NewSlideCanvas(store *editor.Store, ctrl *editor.Controller) *SlideCanvas {
	sc := &SlideCanvas{
		store: store,
		ctrl:  ctrl,
		zoom:  0.75,
	}
	ctrl.SetCanvasSize(slideW, slideH)
	sc.ExtendBaseWidget(sc)
	return sc
}

func (sc *SlideCanvas) CreateRenderer() fyne.WidgetRenderer {
	bg := canvas.NewRectangle(color.RGBA{R: 30, G: 30, B: 34, A: 255})

	page := canvas.NewRectangle(color.White)
	page.StrokeColor = color.RGBA{R: 20, G: 20, B: 20, A: 255}
	page.StrokeWidth = 2

	marquee := canvas.NewRectangle(color.RGBA{R: 0, G: 170, B: 255, A: 40})
	marquee.StrokeColor = color.RGBA{R: 0, G: 170, B: 255, A: 255}
	marquee.StrokeWidth = 1
	marquee.Hide()

	bbox := canvas.NewRectangle(color.RGBA{})
	bbox.StrokeColor = color.RGBA{R: 0, G: 170, B: 255, A: 255}
	bbox.StrokeWidth = 1
	bbox.Hide()

	handles := make([]*canvas.Rectangle, len(handleOrder))
	for i := range handles {
		h := canvas.NewRectangle(color.RGBA{R: 0, G: 170, B: 255, A: 255})
		h.Hide()
		handles[i] = h
	}

	r := &slideCanvasRenderer{sc: sc, bg: bg, page: page, marquee: marquee, bbox: bbox, handles: handles}
	r.rebuildObjects(nil)
	return r
}

func (sc *SlideCanvas) PreferredSize() fyne.Size { return fyne.NewSize(960, 540) }

// Coordinate helpers: slide points <-> screen.
func (sc *SlideCanvas) slideOrigin() (cx, cy float32) {
	size := sc.Size()
	scaledW := float32(slideW) * sc.zoom
	scaledH := float32(slideH) * sc.zoom
	cx = size.Width/2 - scaledW/2 + sc.offsetX
	cy = size.Height/2 - scaledH/2 + sc.offsetY
	return cx, cy
}

func (sc *SlideCanvas) toScreen(ptX, ptY float64) fyne.Position {
	cx, cy := sc.slideOrigin()
	return fyne.NewPos(cx+float32(ptX)*sc.zoom, cy+float32(ptY)*sc.zoom)
}

// pctToScreen maps a percent-space point onto the widget.
func (sc *SlideCanvas) pctToScreen(x, y float64) fyne.Position {
	return sc.toScreen(x/100*slideW, y/100*slideH)
}

func (sc *SlideCanvas) toSlide(pos fyne.Position) (ptX, ptY float64) {
	cx, cy := sc.slideOrigin()
	return float64((pos.X - cx) / sc.zoom), float64((pos.Y - cy) / sc.zoom)
}

// hitTest returns the id of the top-most element under the given slide-point
// position, or "" when the point is over empty canvas.
func (sc *SlideCanvas) hitTest(ptX, ptY float64) string {
	px := ptX / slideW * 100
	py := ptY / slideH * 100
	sl := sc.store.ActiveSlide()
	for i := len(sl.Elements) - 1; i >= 0; i-- {
		el := sl.Elements[i]
		if px >= el.X && px <= el.X+el.W && py >= el.Y && py <= el.Y+el.H {
			return el.ID
		}
	}
	return ""
}

// handleOrder fixes the screen layout of the eight resize handles.
var handleOrder = []editor.Handle{
	editor.HandleNW, editor.HandleN, editor.HandleNE,
	editor.HandleE, editor.HandleSE, editor.HandleS,
	editor.HandleSW, editor.HandleW,
}

// selectionBounds is the percent-space union of all selected elements.
func (sc *SlideCanvas) selectionBounds() (domain.Rect, bool) {
	ids := sc.store.SelectedIDs()
	if len(ids) == 0 {
		return domain.Rect{}, false
	}
	sl := sc.store.ActiveSlide()
	first := true
	var x0, y0, x1, y1 float64
	for _, id := range ids {
		idx := sl.FindElement(id)
		if idx < 0 {
			continue
		}
		el := sl.Elements[idx]
		if first {
			x0, y0, x1, y1 = el.X, el.Y, el.X+el.W, el.Y+el.H
			first = false
			continue
		}
		if el.X < x0 {
			x0 = el.X
		}
		if el.Y < y0 {
			y0 = el.Y
		}
		if el.X+el.W > x1 {
			x1 = el.X + el.W
		}
		if el.Y+el.H > y1 {
			y1 = el.Y + el.H
		}
	}
	if first {
		return domain.Rect{}, false
	}
	return domain.Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}, true
}

// handleRects returns the selection bbox and the eight handle squares in
// screen coordinates. Handles only show for a single-element selection, which
// matches what the controller accepts for resize.
func (sc *SlideCanvas) handleRects() (bbox fRect, hs [8]fRect, showHandles bool, ok bool) {
	b, has := sc.selectionBounds()
	if !has {
		return fRect{}, [8]fRect{}, false, false
	}
	p0 := sc.pctToScreen(b.X, b.Y)
	p1 := sc.pctToScreen(b.X+b.W, b.Y+b.H)
	bbox = fRect{X: p0.X, Y: p0.Y, Width: p1.X - p0.X, Height: p1.Y - p0.Y}
	if sc.store.SelectionSize() != 1 {
		return bbox, [8]fRect{}, false, true
	}
	midX := bbox.X + bbox.Width/2
	midY := bbox.Y + bbox.Height/2
	right := bbox.X + bbox.Width
	bottom := bbox.Y + bbox.Height
	at := func(x, y float32) fRect {
		return fRect{X: x - handleSizePx/2, Y: y - handleSizePx/2, Width: handleSizePx, Height: handleSizePx}
	}
	// same order as handleOrder
	hs = [8]fRect{
		at(bbox.X, bbox.Y), at(midX, bbox.Y), at(right, bbox.Y),
		at(right, midY), at(right, bottom), at(midX, bottom),
		at(bbox.X, bottom), at(bbox.X, midY),
	}
	return bbox, hs, true, true
}

// handleAt reports which resize handle, if any, is under the screen position.
func (sc *SlideCanvas) handleAt(pos fyne.Position) (editor.Handle, bool) {
	_, hs, show, ok := sc.handleRects()
	if !ok || !show {
		return "", false
	}
	for i, h := range hs {
		if pos.X >= h.X && pos.X <= h.X+h.Width && pos.Y >= h.Y && pos.Y <= h.Y+h.Height {
			return handleOrder[i], true
		}
	}
	return "", false
}

// fRect is a light-weight screen rectangle for overlay geometry.
type fRect struct{ X, Y, Width, Height float32 }

// MouseDown captures the shift modifier for the tap/drag that follows; Fyne
// does not put modifiers on PointEvent or DragEvent.
func (sc *SlideCanvas) MouseDown(e *desktop.MouseEvent) {
	sc.shiftDown = e.Modifier&fyne.KeyModifierShift != 0
}

func (sc *SlideCanvas) MouseUp(_ *desktop.MouseEvent) {}

// Tapped runs a full press-and-release through the controller so a plain
// click selects and a shift click toggles.
func (sc *SlideCanvas) Tapped(e *fyne.PointEvent) {
	ptX, ptY := sc.toSlide(e.Position)
	if _, onHandle := sc.handleAt(e.Position); onHandle {
		return
	}
	if id := sc.hitTest(ptX, ptY); id != "" {
		if sc.ctrl.PointerDownElement(canvasPointer, ptX, ptY, id, sc.shiftDown) {
			sc.ctrl.PointerUp(canvasPointer, ptX, ptY)
		}
		sc.Refresh()
		return
	}
	if sc.ctrl.PointerDownCanvas(canvasPointer, ptX, ptY, sc.shiftDown) {
		sc.ctrl.PointerUp(canvasPointer, ptX, ptY)
	}
	sc.Refresh()
}

// DoubleTapped opens in-place text editing for text elements.
func (sc *SlideCanvas) DoubleTapped(e *fyne.PointEvent) {
	if !sc.store.EditMode() || sc.OnEditText == nil {
		return
	}
	ptX, ptY := sc.toSlide(e.Position)
	id := sc.hitTest(ptX, ptY)
	if id == "" {
		return
	}
	sl := sc.store.ActiveSlide()
	idx := sl.FindElement(id)
	if idx < 0 || sl.Elements[idx].Kind != domain.KindText {
		return
	}
	sc.OnEditText(id)
}

// TappedSecondary selects the element under the cursor and asks the host to
// show its context menu.
func (sc *SlideCanvas) TappedSecondary(e *fyne.PointEvent) {
	if !sc.store.EditMode() {
		return
	}
	ptX, ptY := sc.toSlide(e.Position)
	id := sc.hitTest(ptX, ptY)
	if id == "" {
		return
	}
	sc.ctrl.EnsureSelected(id)
	sc.Refresh()
	if sc.OnContextMenu != nil {
		sc.OnContextMenu(id, e.AbsolutePosition)
	}
}

// Dragged starts a pointer sequence on the first event and feeds moves to the
// controller afterwards. Drags that begin on empty canvas while not in edit
// mode pan the view instead.
func (sc *SlideCanvas) Dragged(e *fyne.DragEvent) {
	if !sc.dragActive {
		start := fyne.NewPos(e.Position.X-e.Dragged.DX, e.Position.Y-e.Dragged.DY)
		ptX, ptY := sc.toSlide(start)
		started := false
		if h, ok := sc.handleAt(start); ok {
			started = sc.ctrl.PointerDownHandle(canvasPointer, ptX, ptY, h)
		} else if id := sc.hitTest(ptX, ptY); id != "" {
			started = sc.ctrl.PointerDownElement(canvasPointer, ptX, ptY, id, sc.shiftDown)
		} else {
			started = sc.ctrl.PointerDownCanvas(canvasPointer, ptX, ptY, sc.shiftDown)
		}
		if !started {
			// viewer mode or a rejected sequence: pan
			sc.offsetX += e.Dragged.DX
			sc.offsetY += e.Dragged.DY
			sc.Refresh()
			return
		}
		sc.dragActive = true
	}
	sc.lastDragX, sc.lastDragY = sc.toSlide(e.Position)
	sc.ctrl.PointerMove(canvasPointer, sc.lastDragX, sc.lastDragY)
	sc.Refresh()
}

func (sc *SlideCanvas) DragEnd() {
	if sc.dragActive {
		sc.ctrl.PointerUp(canvasPointer, sc.lastDragX, sc.lastDragY)
		sc.dragActive = false
	}
	sc.Refresh()
}

// Scrolled zooms the canvas. Modifier keys are not exposed on ScrollEvent in
// Fyne v2.6, so the wheel always zooms.
func (sc *SlideCanvas) Scrolled(e *fyne.ScrollEvent) {
	sc.zoom += e.Scrolled.DY * 0.05
	if sc.zoom < 0.25 {
		sc.zoom = 0.25
	}
	if sc.zoom > 4.0 {
		sc.zoom = 4.0
	}
	sc.Refresh()
}

// slideCanvasRenderer rebuilds the element visuals from the store on every
// refresh and positions everything from zoom/offset.
type slideCanvasRenderer struct {
	sc      *SlideCanvas
	objects []fyne.CanvasObject

	bg, page *canvas.Rectangle
	els      []fyne.CanvasObject
	marquee  *canvas.Rectangle
	bbox     *canvas.Rectangle
	handles  []*canvas.Rectangle
}

func (r *slideCanvasRenderer) Destroy()                     {}
func (r *slideCanvasRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *slideCanvasRenderer) MinSize() fyne.Size           { return r.sc.PreferredSize() }
func (r *slideCanvasRenderer) Refresh() {
	r.Layout(r.sc.Size())
	canvas.Refresh(r.sc)
}

// rebuildObjects reassembles the draw list: background, slide surface,
// elements in z-order, then marquee and selection overlay on top.
func (r *slideCanvasRenderer) rebuildObjects(els []fyne.CanvasObject) {
	r.els = els
	objs := make([]fyne.CanvasObject, 0, 4+len(els)+len(r.handles))
	objs = append(objs, r.bg, r.page)
	objs = append(objs, els...)
	objs = append(objs, r.marquee, r.bbox)
	for _, h := range r.handles {
		objs = append(objs, h)
	}
	r.objects = objs
}

func (r *slideCanvasRenderer) Layout(size fyne.Size) {
	sc := r.sc

	r.bg.Resize(size)
	r.bg.Move(fyne.NewPos(0, 0))

	scaledW := float32(slideW) * sc.zoom
	scaledH := float32(slideH) * sc.zoom
	cx, cy := sc.slideOrigin()

	sl := sc.store.ActiveSlide()
	r.page.FillColor = parseHexColor(sl.Background, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	r.page.Resize(fyne.NewSize(scaledW, scaledH))
	r.page.Move(fyne.NewPos(cx, cy))

	// Element visuals are cheap to remake and the slide can change shape
	// entirely between refreshes (undo, slide switch), so rebuild each pass.
	els := make([]fyne.CanvasObject, 0, len(sl.Elements))
	for _, el := range sl.Elements {
		p0 := sc.pctToScreen(el.X, el.Y)
		p1 := sc.pctToScreen(el.X+el.W, el.Y+el.H)
		w := p1.X - p0.X
		h := p1.Y - p0.Y
		obj := r.buildElement(el, w, h)
		obj.Resize(fyne.NewSize(w, h))
		obj.Move(p0)
		els = append(els, obj)
	}
	r.rebuildObjects(els)

	if mq, show := sc.ctrl.MarqueeRect(); show {
		p0 := sc.pctToScreen(mq.X, mq.Y)
		p1 := sc.pctToScreen(mq.X+mq.W, mq.Y+mq.H)
		r.marquee.Show()
		r.marquee.Resize(fyne.NewSize(p1.X-p0.X, p1.Y-p0.Y))
		r.marquee.Move(p0)
	} else {
		r.marquee.Hide()
	}

	bbox, hs, showHandles, ok := sc.handleRects()
	if ok && sc.store.EditMode() {
		r.bbox.Show()
		r.bbox.Resize(fyne.NewSize(bbox.Width, bbox.Height))
		r.bbox.Move(fyne.NewPos(bbox.X, bbox.Y))
	} else {
		r.bbox.Hide()
	}
	for i, hrect := range hs {
		if ok && showHandles && sc.store.EditMode() {
			r.handles[i].Show()
			r.handles[i].Resize(fyne.NewSize(hrect.Width, hrect.Height))
			r.handles[i].Move(fyne.NewPos(hrect.X, hrect.Y))
		} else {
			r.handles[i].Hide()
		}
	}
}

// buildElement makes the canvas object for one element. Text is rendered as
// stacked single-line canvas.Text objects inside a plain container; Fyne's
// canvas.Text does not wrap.
func (r *slideCanvasRenderer) buildElement(el domain.Element, w, h float32) fyne.CanvasObject {
	switch el.Kind {
	case domain.KindShape:
		switch el.Shape {
		case "ellipse":
			c := canvas.NewCircle(parseHexColor(el.Style.Background, color.RGBA{R: 0xdd, G: 0xdd, B: 0xdd, A: 255}))
			if el.Style.Border != "" {
				c.StrokeColor = parseHexColor(el.Style.Border, color.RGBA{A: 255})
				c.StrokeWidth = 1
			}
			return c
		case "line":
			ln := canvas.NewLine(parseHexColor(el.Style.Border, color.RGBA{A: 255}))
			ln.StrokeWidth = 2
			return ln
		default:
			rect := canvas.NewRectangle(parseHexColor(el.Style.Background, color.RGBA{R: 0xdd, G: 0xdd, B: 0xdd, A: 255}))
			if el.Style.Border != "" {
				rect.StrokeColor = parseHexColor(el.Style.Border, color.RGBA{A: 255})
				rect.StrokeWidth = 1
			}
			return rect
		}
	case domain.KindImage:
		if p := r.localImagePath(el.URL); p != "" {
			img := canvas.NewImageFromFile(p)
			img.FillMode = canvas.ImageFillContain
			return img
		}
		ph := canvas.NewRectangle(color.RGBA{R: 200, G: 200, B: 200, A: 255})
		ph.StrokeColor = color.RGBA{R: 120, G: 120, B: 120, A: 255}
		ph.StrokeWidth = 1
		return ph
	default: // text
		fsize := el.Style.FontSize
		if fsize <= 0 {
			fsize = 18
		}
		cont := container.NewWithoutLayout()
		lineH := float32(fsize) * 1.2 * r.sc.zoom
		y := float32(0)
		for _, line := range strings.Split(el.Content, "\n") {
			txt := canvas.NewText(line, parseHexColor(el.Style.Color, color.RGBA{A: 255}))
			txt.TextSize = float32(fsize) * r.sc.zoom
			txt.TextStyle = fyne.TextStyle{Bold: el.Style.FontWeight == "bold"}
			switch el.Style.Align {
			case "center":
				txt.Alignment = fyne.TextAlignCenter
				txt.Move(fyne.NewPos(w/2, y))
			case "right":
				txt.Alignment = fyne.TextAlignTrailing
				txt.Move(fyne.NewPos(w, y))
			default:
				txt.Move(fyne.NewPos(0, y))
			}
			cont.Add(txt)
			y += lineH
		}
		return cont
	}
}

// localImagePath resolves an image URL to a readable file under the deck
// root. Remote and absolute URLs render as placeholders in the editor.
func (r *slideCanvasRenderer) localImagePath(url string) string {
	if url == "" || strings.Contains(url, "://") || filepath.IsAbs(url) {
		return ""
	}
	if r.sc.DeckRoot == "" {
		return ""
	}
	p := filepath.Join(r.sc.DeckRoot, filepath.FromSlash(url))
	if _, err := os.Stat(p); err != nil {
		return ""
	}
	return p
}

// parseHexColor accepts #rgb and #rrggbb strings, returning def for anything
// it cannot parse.
func parseHexColor(s string, def color.RGBA) color.RGBA {
	s = strings.TrimSpace(s)
	if len(s) == 0 || s[0] != '#' {
		return def
	}
	hexVal := func(b byte) (uint8, bool) {
		switch {
		case b >= '0' && b <= '9':
			return b - '0', true
		case b >= 'a' && b <= 'f':
			return b - 'a' + 10, true
		case b >= 'A' && b <= 'F':
			return b - 'A' + 10, true
		}
		return 0, false
	}
	switch len(s) {
	case 4:
		var out [3]uint8
		for i := 0; i < 3; i++ {
			v, ok := hexVal(s[1+i])
			if !ok {
				return def
			}
			out[i] = v<<4 | v
		}
		return color.RGBA{R: out[0], G: out[1], B: out[2], A: 255}
	case 7:
		var out [3]uint8
		for i := 0; i < 3; i++ {
			hi, ok1 := hexVal(s[1+2*i])
			lo, ok2 := hexVal(s[2+2*i])
			if !ok1 || !ok2 {
				return def
			}
			out[i] = hi<<4 | lo
		}
		return color.RGBA{R: out[0], G: out[1], B: out[2], A: 255}
	}
	return def
}
