/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// This file defines the core data model for Go Deck Studio.
// A Presentation owns an ordered sequence of Slides; each Slide owns an
// ordered sequence of Elements whose sequence position is the z-order
// (later = on top). Element geometry is expressed in percentages of the
// slide canvas, so the model is resolution independent and serializes to
// a human-readable JSON manifest.

import "time"

// ElementKind discriminates the three element variants.
type ElementKind string

const (
	KindText  ElementKind = "text"
	KindImage ElementKind = "image"
	KindShape ElementKind = "shape"
)

// Presentation is the root document: a titled, ordered sequence of slides.
type Presentation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Slides    []Slide   `json:"slides"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// Slide is one page of the deck. Element order is z-order.
type Slide struct {
	ID         string    `json:"id"`
	Elements   []Element `json:"elements"`
	Background string    `json:"background,omitempty"` // e.g. "#ffffff"
	Notes      string    `json:"notes,omitempty"`
}

// Element is one visual object on a slide. Position and size are percentages
// of the canvas width/height in [0,100). The Kind field selects which payload
// fields are meaningful: Content for text, URL for images, Shape for shapes.
type Element struct {
	ID    string      `json:"id"`
	Kind  ElementKind `json:"kind"`
	X     float64     `json:"x"`
	Y     float64     `json:"y"`
	W     float64     `json:"w"`
	H     float64     `json:"h"`
	Style Style       `json:"style,omitempty"`

	Content string `json:"content,omitempty"` // text payload
	URL     string `json:"url,omitempty"`     // image payload
	Shape   string `json:"shape,omitempty"`   // shape payload: "rect", "ellipse", "line"
}

// Style carries sparse, optional visual attributes. Zero values mean
// "unset, use the renderer default".
type Style struct {
	FontSize   float64 `json:"fontSize,omitempty"` // points
	FontWeight string  `json:"fontWeight,omitempty"`
	Color      string  `json:"color,omitempty"`
	Background string  `json:"background,omitempty"`
	Align      string  `json:"align,omitempty"` // "left", "center", "right"
	Border     string  `json:"border,omitempty"`
	Opacity    float64 `json:"opacity,omitempty"`
}

// Rect is an axis-aligned rectangle in percent coordinates.
type Rect struct {
	X, Y float64
	W, H float64
}

// Bounds returns the element's bounding rectangle.
func (e Element) Bounds() Rect { return Rect{X: e.X, Y: e.Y, W: e.W, H: e.H} }

// Clone returns a deep copy of the presentation. Snapshots and clipboard
// contents must never alias the live document.
func (p Presentation) Clone() Presentation {
	out := p
	out.Slides = make([]Slide, len(p.Slides))
	for i, s := range p.Slides {
		out.Slides[i] = s.Clone()
	}
	return out
}

// Clone returns a deep copy of the slide.
func (s Slide) Clone() Slide {
	out := s
	out.Elements = append([]Element(nil), s.Elements...)
	return out
}

// FindSlide returns the index of the slide with the given id, or -1.
func (p Presentation) FindSlide(id string) int {
	for i := range p.Slides {
		if p.Slides[i].ID == id {
			return i
		}
	}
	return -1
}

// FindElement returns the index of the element with the given id, or -1.
func (s Slide) FindElement(id string) int {
	for i := range s.Elements {
		if s.Elements[i].ID == id {
			return i
		}
	}
	return -1
}
