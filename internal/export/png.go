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
	"image"
	"image/png"
	"os"
	"path/filepath"

	"godeckstudio/internal/storage"
)

// PNGOptions controls raster export behavior.
type PNGOptions struct {
	Width  int   // pixel width; height follows the 16:9 canvas. Default 1280.
	Slides []int // zero-based indices; empty means all slides
}

// ExportDeckPNGs exports each slide as a separate PNG file named
// slide-<n>.png under outDir (resolved under <deck>/exports when relative).
func ExportDeckPNGs(dh *storage.DeckHandle, outDir string, opt PNGOptions) error {
	if dh == nil {
		return fmt.Errorf("deck handle is nil")
	}
	deck := dh.Deck

	w := opt.Width
	if w <= 0 {
		w = 1280
	}
	h := w * 9 / 16

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
		img := image.NewRGBA(image.Rect(0, 0, w, h))
		renderSlide(img, deck.Slides[sidx], dh.Root)

		name := filepath.Join(outDir, fmt.Sprintf("slide-%d.png", sidx+1))
		f, err := os.Create(name)
		if err != nil {
			return fmt.Errorf("create png: %w", err)
		}
		if err := png.Encode(f, img); err != nil {
			_ = f.Close()
			return fmt.Errorf("encode png: %w", err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("close png: %w", err)
		}
	}
	return nil
}
