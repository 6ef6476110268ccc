/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0
 */

package export

import (
	"fmt"
	"path/filepath"
	"strings"

	"godeckstudio/internal/storage"
)

// PresetName represents a named export preset.
type PresetName string

const (
	PresetWeb   PresetName = "web"
	PresetPrint PresetName = "print"
)

// BatchOptions controls batch export across multiple formats.
//
// Path semantics:
//   - If OutDir is empty or relative, it will be created under <deck>/exports/<preset>/.
//   - The PDF single-file output is named deck.pdf in OutDir/pdf.
//   - PNG/SVG per-slide outputs go to subfolders png/ or svg/ inside OutDir.
//
// Slides applies to all exporters; empty means all slides.
type BatchOptions struct {
	Preset       PresetName
	Formats      []string // allowed: pdf, png, svg; empty means preset defaults
	Slides       []int    // zero-based indices; empty means all slides
	Width        int      // when > 0 overrides the raster pixel width
	IncludeNotes bool     // PDF only: append notes pages
	OutDir       string   // base directory for outputs (created per preset if relative)
}

// BatchExport runs exports according to the given preset.
func BatchExport(dh *storage.DeckHandle, opt BatchOptions) error {
	if dh == nil {
		return fmt.Errorf("deck handle is nil")
	}
	if len(dh.Deck.Slides) == 0 {
		return fmt.Errorf("deck has no slides")
	}

	formats := opt.Formats
	if len(formats) == 0 {
		formats = presetDefaultFormats(opt.Preset)
	}
	for i := range formats {
		formats[i] = strings.ToLower(strings.TrimSpace(formats[i]))
	}

	baseOut := opt.OutDir
	if baseOut == "" {
		baseOut = string(opt.Preset)
	}
	if !filepath.IsAbs(baseOut) {
		baseOut = filepath.Join(dh.Root, "exports", baseOut)
	}

	for _, f := range formats {
		switch f {
		case "pdf":
			out := filepath.Join(baseOut, "pdf", "deck.pdf")
			po := PDFOptions{Slides: opt.Slides, IncludeNotes: opt.IncludeNotes || opt.Preset == PresetPrint}
			if err := ExportDeckPDF(dh, out, po); err != nil {
				return fmt.Errorf("pdf: %w", err)
			}
		case "png":
			po := PNGOptions{Slides: opt.Slides, Width: opt.Width}
			if err := ExportDeckPNGs(dh, filepath.Join(baseOut, "png"), po); err != nil {
				return fmt.Errorf("png: %w", err)
			}
		case "svg":
			so := SVGOptions{Slides: opt.Slides}
			if err := ExportDeckSVGs(dh, filepath.Join(baseOut, "svg"), so); err != nil {
				return fmt.Errorf("svg: %w", err)
			}
		default:
			return fmt.Errorf("unknown format: %s", f)
		}
	}
	return nil
}

func presetDefaultFormats(p PresetName) []string {
	switch p {
	case PresetWeb:
		return []string{"png", "svg"}
	case PresetPrint:
		return []string{"pdf"}
	default:
		return []string{"pdf"}
	}
}
