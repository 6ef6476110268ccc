/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package geom provides percentage-space rectangle math for the slide canvas.
// The canvas is the unit square scaled to [0,100] on both axes; all element
// geometry lives in that space so interaction logic is independent of the
// rendered pixel size. These helpers are deterministic and UI-agnostic.
package geom

import "godeckstudio/internal/domain"

// CanvasMax is the extent of the percent coordinate space on both axes.
const CanvasMax = 100.0

// Clamp limits v into [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampPos clamps an element origin so a box of size w×h stays fully on
// canvas: x in [0, 100-w], y in [0, 100-h].
func ClampPos(x, y, w, h float64) (float64, float64) {
	return Clamp(x, 0, CanvasMax-w), Clamp(y, 0, CanvasMax-h)
}

// Normalize builds a rectangle from two corner points so that it is always
// expressed as top-left origin with positive width/height, clamped to the
// canvas bounds. Used for the marquee rectangle.
func Normalize(x0, y0, x1, y1 float64) domain.Rect {
	x := x0
	w := x1 - x0
	if w < 0 {
		x, w = x1, -w
	}
	y := y0
	h := y1 - y0
	if h < 0 {
		y, h = y1, -h
	}
	x = Clamp(x, 0, CanvasMax)
	y = Clamp(y, 0, CanvasMax)
	if x+w > CanvasMax {
		w = CanvasMax - x
	}
	if y+h > CanvasMax {
		h = CanvasMax - y
	}
	return domain.Rect{X: x, Y: y, W: w, H: h}
}

// Intersects reports whether a and b overlap, using a half-open interval
// test on both axes: touching edges do not count as overlap.
func Intersects(a, b domain.Rect) bool {
	return a.X < b.X+b.W && a.X+a.W > b.X &&
		a.Y < b.Y+b.H && a.Y+a.H > b.Y
}

// ToPercent converts a client-pixel offset within the canvas widget to
// percent coordinates, given the rendered canvas pixel size. A zero canvas
// size yields zero to avoid division blowups during widget setup.
func ToPercent(px, py, canvasW, canvasH float64) (float64, float64) {
	if canvasW <= 0 || canvasH <= 0 {
		return 0, 0
	}
	return px / canvasW * CanvasMax, py / canvasH * CanvasMax
}

// DeltaPercent converts a pixel displacement to a percent displacement.
func DeltaPercent(dx, dy, canvasW, canvasH float64) (float64, float64) {
	if canvasW <= 0 || canvasH <= 0 {
		return 0, 0
	}
	return dx / canvasW * CanvasMax, dy / canvasH * CanvasMax
}
