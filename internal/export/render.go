/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"os"
	"path/filepath"
	"strings"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"godeckstudio/internal/domain"
	"godeckstudio/internal/textlayout"

	_ "image/gif"  // image decoders for embedded assets
	_ "image/jpeg" //
	_ "image/png"  //
)

// renderSlide rasterizes one slide into img, filling the whole bounds.
// Elements are drawn in sequence order, which is the z-order (later on top).
// deckRoot resolves relative image URLs; pass "" to skip image loading.
func renderSlide(img *image.RGBA, sl domain.Slide, deckRoot string) {
	b := img.Bounds()
	w := b.Dx()
	h := b.Dy()

	bg := parseHex(sl.Background, colorWhite)
	draw.Draw(img, b, &image.Uniform{C: bg}, image.Point{}, draw.Src)

	// percent to pixel
	px := func(v float64) int { return b.Min.X + int(math.Round(v/100*float64(w))) }
	py := func(v float64) int { return b.Min.Y + int(math.Round(v/100*float64(h))) }

	for _, el := range sl.Elements {
		x0, y0 := px(el.X), py(el.Y)
		x1, y1 := px(el.X+el.W)-1, py(el.Y+el.H)-1
		if x1 < x0 || y1 < y0 {
			continue
		}
		switch el.Kind {
		case domain.KindShape:
			drawShape(img, el, x0, y0, x1, y1)
		case domain.KindImage:
			drawImage(img, el, deckRoot, x0, y0, x1, y1)
		case domain.KindText:
			drawText(img, el, x0, y0, x1, y1)
		}
	}
}

func drawShape(img *image.RGBA, el domain.Element, x0, y0, x1, y1 int) {
	fill := parseHex(el.Style.Background, colorShapeFill)
	if op := el.Style.Opacity; op > 0 && op < 1 {
		fill.A = uint8(math.Round(op * 255))
	}
	border := parseHex(el.Style.Border, colorBlack)
	switch el.Shape {
	case "ellipse":
		fillEllipse(img, x0, y0, x1, y1, fill)
	case "line":
		drawLine(img, x0, y0, x1, y1, border)
		return
	default: // rect
		fillRect(img, x0, y0, x1, y1, fill)
	}
	if el.Style.Border != "" {
		strokeRect(img, x0, y0, x1, y1, border)
	}
}

func drawImage(img *image.RGBA, el domain.Element, deckRoot string, x0, y0, x1, y1 int) {
	dst := image.Rect(x0, y0, x1+1, y1+1)
	if src := loadAsset(deckRoot, el.URL); src != nil {
		xdraw.ApproxBiLinear.Scale(img, dst, src, src.Bounds(), xdraw.Over, nil)
		return
	}
	// Placeholder frame for missing or remote assets.
	fillRect(img, x0, y0, x1, y1, color.RGBA{R: 238, G: 238, B: 238, A: 255})
	strokeRect(img, x0, y0, x1, y1, color.RGBA{R: 153, G: 153, B: 153, A: 255})
	drawLine(img, x0, y0, x1, y1, color.RGBA{R: 153, G: 153, B: 153, A: 255})
	drawLine(img, x0, y1, x1, y0, color.RGBA{R: 153, G: 153, B: 153, A: 255})
}

// loadAsset opens a local image referenced by a relative URL under deckRoot.
// Remote URLs and absolute paths are not resolved here.
func loadAsset(deckRoot, url string) image.Image {
	if deckRoot == "" || url == "" || strings.Contains(url, "://") || filepath.IsAbs(url) {
		return nil
	}
	p := filepath.Join(deckRoot, filepath.FromSlash(url))
	f, err := os.Open(p)
	if err != nil {
		return nil
	}
	defer f.Close()
	src, _, err := image.Decode(f)
	if err != nil {
		return nil
	}
	return src
}

func drawText(img *image.RGBA, el domain.Element, x0, y0, x1, y1 int) {
	if el.Content == "" {
		return
	}
	if el.Style.Background != "" {
		fillRect(img, x0, y0, x1, y1, parseHex(el.Style.Background, colorWhite))
	}
	col := parseHex(el.Style.Color, colorBlack)
	// basicfont keeps thumbnails and raster export deterministic without
	// loading system fonts; real typesetting happens in the Fyne canvas.
	face := basicfont.Face7x13
	maxW := float32(x1 - x0)
	box, err := textlayout.NewWordWrap(textlayout.BasicProvider{}).Layout(
		[]textlayout.Span{{Text: el.Content}}, maxW)
	if err != nil {
		return
	}
	d := &font.Drawer{Dst: img, Src: image.NewUniform(col), Face: face}
	y := y0 + int(box.Metrics.Ascent)
	for _, ln := range box.Lines {
		if y > y1 {
			break
		}
		x := x0
		switch el.Style.Align {
		case "center":
			x = x0 + (x1-x0-int(ln.Width))/2
		case "right":
			x = x1 - int(ln.Width)
		}
		d.Dot = fixed.P(x, y)
		for _, sp := range ln.Spans {
			d.DrawString(sp.Text)
		}
		y += int(box.Metrics.Ascent + box.Metrics.Descent + box.Metrics.LineGap)
	}
}

// fillRect fills the inclusive rectangle, blending when col has alpha < 255.
func fillRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	r := image.Rect(x0, y0, x1+1, y1+1).Intersect(img.Bounds())
	draw.Draw(img, r, &image.Uniform{C: col}, image.Point{}, draw.Over)
}

// strokeRect draws a 1px axis-aligned rectangle border inclusive of endpoints.
func strokeRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	for x := x0; x <= x1; x++ {
		img.SetRGBA(x, y0, col)
		img.SetRGBA(x, y1, col)
	}
	for y := y0; y <= y1; y++ {
		img.SetRGBA(x0, y, col)
		img.SetRGBA(x1, y, col)
	}
}

// drawLine draws a 1px line between the two points (Bresenham).
func drawLine(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		img.SetRGBA(x0, y0, col)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// fillEllipse fills the ellipse inscribed in the inclusive rectangle.
func fillEllipse(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	cx := float64(x0+x1) / 2
	cy := float64(y0+y1) / 2
	rx := float64(x1-x0) / 2
	ry := float64(y1-y0) / 2
	if rx <= 0 || ry <= 0 {
		return
	}
	for y := y0; y <= y1; y++ {
		dy := (float64(y) - cy) / ry
		span := 1 - dy*dy
		if span < 0 {
			continue
		}
		half := rx * math.Sqrt(span)
		xa := int(math.Ceil(cx - half))
		xb := int(math.Floor(cx + half))
		fillRect(img, xa, y, xb, y, col)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
