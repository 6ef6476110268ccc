/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"godeckstudio/internal/domain"
	"godeckstudio/internal/storage"
)

// SVGOptions controls SVG export behavior. The coordinate system uses the
// same point space as the PDF exporter; a viewBox scales to any display size.
type SVGOptions struct {
	Slides []int // zero-based indices; empty means all slides
}

// ExportDeckSVGs exports each slide as a separate SVG file named
// slide-<n>.svg under outDir (resolved under <deck>/exports when relative).
func ExportDeckSVGs(dh *storage.DeckHandle, outDir string, opt SVGOptions) error {
	if dh == nil {
		return fmt.Errorf("deck handle is nil")
	}
	deck := dh.Deck

	if !filepath.IsAbs(outDir) {
		outDir = filepath.Join(dh.Root, "exports", outDir)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}

	slides := slideIndexes(len(deck.Slides), opt.Slides)
	for _, sidx := range slides {
		if sidx < 0 || sidx >= len(deck.Slides) {
			continue
		}
		data, err := slideSVG(deck.Slides[sidx])
		if err != nil {
			return fmt.Errorf("build svg: %w", err)
		}
		name := filepath.Join(outDir, fmt.Sprintf("slide-%d.svg", sidx+1))
		if err := os.WriteFile(name, data, 0o644); err != nil {
			return fmt.Errorf("write svg: %w", err)
		}
	}
	return nil
}

func slideSVG(sl domain.Slide) ([]byte, error) {
	var buf bytes.Buffer
	var werr error
	wf := func(format string, args ...any) {
		if werr != nil {
			return
		}
		_, werr = fmt.Fprintf(&buf, format, args...)
	}

	px := func(v float64) float64 { return v / 100 * PageWidthPt }
	py := func(v float64) float64 { return v / 100 * PageHeightPt }

	wf("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	wf("<svg xmlns=\"http://www.w3.org/2000/svg\" version=\"1.1\" viewBox=\"0 0 %g %g\">\n", PageWidthPt, PageHeightPt)
	wf("  <rect x=\"0\" y=\"0\" width=\"%g\" height=\"%g\" fill=\"%s\"/>\n", PageWidthPt, PageHeightPt, svgColor(parseHex(sl.Background, colorWhite)))

	for _, el := range sl.Elements {
		x, y := px(el.X), py(el.Y)
		w, h := px(el.W), py(el.H)
		opacity := ""
		if op := el.Style.Opacity; op > 0 && op < 1 {
			opacity = fmt.Sprintf(" opacity=\"%g\"", op)
		}
		switch el.Kind {
		case domain.KindShape:
			fill := svgColor(parseHex(el.Style.Background, colorShapeFill))
			stroke := "none"
			if el.Style.Border != "" {
				stroke = svgColor(parseHex(el.Style.Border, colorBlack))
			}
			switch el.Shape {
			case "ellipse":
				wf("  <ellipse cx=\"%g\" cy=\"%g\" rx=\"%g\" ry=\"%g\" fill=\"%s\" stroke=\"%s\"%s/>\n", x+w/2, y+h/2, w/2, h/2, fill, stroke, opacity)
			case "line":
				lc := svgColor(parseHex(el.Style.Border, colorBlack))
				wf("  <line x1=\"%g\" y1=\"%g\" x2=\"%g\" y2=\"%g\" stroke=\"%s\"%s/>\n", x, y, x+w, y+h, lc, opacity)
			default:
				wf("  <rect x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\" fill=\"%s\" stroke=\"%s\"%s/>\n", x, y, w, h, fill, stroke, opacity)
			}
		case domain.KindImage:
			if el.URL != "" {
				wf("  <image x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\" href=\"%s\"%s/>\n", x, y, w, h, escAttr(el.URL), opacity)
			} else {
				wf("  <rect x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\" fill=\"#eeeeee\" stroke=\"#999999\"%s/>\n", x, y, w, h, opacity)
			}
		case domain.KindText:
			if el.Style.Background != "" {
				wf("  <rect x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\" fill=\"%s\"/>\n", x, y, w, h, svgColor(parseHex(el.Style.Background, colorWhite)))
			}
			fsz := el.Style.FontSize
			if fsz <= 0 {
				fsz = 12
			}
			weight := ""
			if el.Style.FontWeight == "bold" {
				weight = " font-weight=\"bold\""
			}
			anchor, tx := svgAnchor(el.Style.Align, x, w)
			fill := svgColor(parseHex(el.Style.Color, colorBlack))
			// Simple top-down line stacking; the font family is a hint only.
			cy := y + fsz
			for _, line := range splitLines(el.Content) {
				wf("  <text x=\"%g\" y=\"%g\" font-family=\"Helvetica, Arial, sans-serif\" font-size=\"%g\"%s text-anchor=\"%s\" fill=\"%s\"%s>%s</text>\n", tx, cy, fsz, weight, anchor, fill, opacity, escText(line))
				cy += fsz * 1.2
			}
		}
	}

	wf("</svg>\n")
	if werr != nil {
		return nil, werr
	}
	return buf.Bytes(), nil
}

func svgAnchor(align string, x, w float64) (anchor string, tx float64) {
	switch align {
	case "center":
		return "middle", x + w/2
	case "right":
		return "end", x + w
	default:
		return "start", x
	}
}

func splitLines(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}

func svgColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func escAttr(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch ch {
		case '"':
			out = append(out, '&', 'q', 'u', 'o', 't', ';')
		case '&':
			out = append(out, '&', 'a', 'm', 'p', ';')
		case '<':
			out = append(out, '&', 'l', 't', ';')
		case '\n':
			out = append(out, ' ')
		case '\r':
			// skip
		default:
			out = append(out, ch)
		}
	}
	return string(out)
}

func escText(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch ch {
		case '&':
			out = append(out, '&', 'a', 'm', 'p', ';')
		case '<':
			out = append(out, '&', 'l', 't', ';')
		case '>':
			out = append(out, '&', 'g', 't', ';')
		default:
			out = append(out, ch)
		}
	}
	return string(out)
}
