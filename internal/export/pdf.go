/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"godeckstudio/internal/domain"
	"godeckstudio/internal/storage"
)

// One slide maps to one 16:9 PDF page. Element geometry is percentages of
// the canvas, so the page size only fixes the aspect ratio and text scale.
const (
	PageWidthPt  = 960.0
	PageHeightPt = 540.0
)

// PDFOptions controls PDF export behavior.
// Units are points (pt). Vector text uses built-in Helvetica for portability;
// font embedding can be added later via the textlayout FontLibrary.
type PDFOptions struct {
	Slides       []int // zero-based indices; empty means all slides
	IncludeNotes bool  // append a notes page after each slide that has notes
}

// ExportDeckPDF exports the deck to a single multi-page PDF placed at outPath.
func ExportDeckPDF(dh *storage.DeckHandle, outPath string, opt PDFOptions) error {
	if dh == nil {
		return fmt.Errorf("deck handle is nil")
	}
	deck := dh.Deck

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: PageWidthPt, Ht: PageHeightPt},
		OrientationStr: "",
	})
	pdf.SetTitle(deck.Title, false)
	pdf.SetAuthor("Go Deck Studio", false)
	pdf.SetFont("Helvetica", "", 12)

	slides := slideIndexes(len(deck.Slides), opt.Slides)
	for _, sidx := range slides {
		if sidx < 0 || sidx >= len(deck.Slides) {
			continue
		}
		sl := deck.Slides[sidx]
		pdf.AddPageFormat("", gofpdf.SizeType{Wd: PageWidthPt, Ht: PageHeightPt})
		renderSlidePDF(pdf, dh.Root, sl)

		if opt.IncludeNotes && sl.Notes != "" {
			pdf.AddPageFormat("", gofpdf.SizeType{Wd: PageWidthPt, Ht: PageHeightPt})
			pdf.SetTextColor(0, 0, 0)
			pdf.SetFont("Helvetica", "B", 14)
			pdf.Text(36, 50, fmt.Sprintf("Notes for slide %d", sidx+1))
			pdf.SetFont("Helvetica", "", 12)
			pdf.SetXY(36, 70)
			pdf.MultiCell(PageWidthPt-72, 16, sl.Notes, "", "L", false)
		}
	}

	if !filepath.IsAbs(outPath) {
		outPath = filepath.Join(dh.Root, "exports", outPath)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func renderSlidePDF(pdf *gofpdf.Fpdf, deckRoot string, sl domain.Slide) {
	// Background
	bg := parseHex(sl.Background, colorWhite)
	pdf.SetFillColor(int(bg.R), int(bg.G), int(bg.B))
	pdf.Rect(0, 0, PageWidthPt, PageHeightPt, "F")

	px := func(v float64) float64 { return v / 100 * PageWidthPt }
	py := func(v float64) float64 { return v / 100 * PageHeightPt }

	for _, el := range sl.Elements {
		x, y := px(el.X), py(el.Y)
		w, h := px(el.W), py(el.H)

		restoreAlpha := false
		if op := el.Style.Opacity; op > 0 && op < 1 {
			pdf.SetAlpha(op, "Normal")
			restoreAlpha = true
		}

		switch el.Kind {
		case domain.KindShape:
			fill := parseHex(el.Style.Background, colorShapeFill)
			border := parseHex(el.Style.Border, colorBlack)
			pdf.SetFillColor(int(fill.R), int(fill.G), int(fill.B))
			pdf.SetDrawColor(int(border.R), int(border.G), int(border.B))
			pdf.SetLineWidth(1)
			style := "F"
			if el.Style.Border != "" {
				style = "FD"
			}
			switch el.Shape {
			case "ellipse":
				pdf.Ellipse(x+w/2, y+h/2, w/2, h/2, 0, style)
			case "line":
				pdf.Line(x, y, x+w, y+h)
			default:
				pdf.Rect(x, y, w, h, style)
			}
		case domain.KindImage:
			if p := localAssetPath(deckRoot, el.URL); p != "" {
				pdf.ImageOptions(p, x, y, w, h, false, gofpdf.ImageOptions{ReadDpi: true}, 0, "")
			} else {
				pdf.SetDrawColor(153, 153, 153)
				pdf.SetLineWidth(0.5)
				pdf.Rect(x, y, w, h, "D")
				pdf.Line(x, y, x+w, y+h)
				pdf.Line(x, y+h, x+w, y)
			}
		case domain.KindText:
			if el.Style.Background != "" {
				bgc := parseHex(el.Style.Background, colorWhite)
				pdf.SetFillColor(int(bgc.R), int(bgc.G), int(bgc.B))
				pdf.Rect(x, y, w, h, "F")
			}
			col := parseHex(el.Style.Color, colorBlack)
			pdf.SetTextColor(int(col.R), int(col.G), int(col.B))
			fsz := el.Style.FontSize
			if fsz <= 0 {
				fsz = 12
			}
			styleStr := ""
			if el.Style.FontWeight == "bold" {
				styleStr = "B"
			}
			pdf.SetFont("Helvetica", styleStr, fsz)
			pdf.SetXY(x, y)
			pdf.MultiCell(w, fsz*1.2, el.Content, "", pdfAlign(el.Style.Align), false)
		}

		if restoreAlpha {
			pdf.SetAlpha(1, "Normal")
		}
	}
}

func pdfAlign(a string) string {
	switch a {
	case "center":
		return "C"
	case "right":
		return "R"
	default:
		return "L"
	}
}

// localAssetPath resolves a relative image URL under the deck root, returning
// "" for remote URLs, absolute paths and missing files.
func localAssetPath(deckRoot, url string) string {
	if deckRoot == "" || url == "" || strings.Contains(url, "://") || filepath.IsAbs(url) {
		return ""
	}
	p := filepath.Join(deckRoot, filepath.FromSlash(url))
	if _, err := os.Stat(p); err != nil {
		return ""
	}
	return p
}

func slideIndexes(total int, specific []int) []int {
	if len(specific) == 0 {
		out := make([]int, total)
		for i := range out {
			out[i] = i
		}
		return out
	}
	return specific
}
