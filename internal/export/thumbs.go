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
	"image"
	"image/png"

	"godeckstudio/internal/domain"
)

// RenderSlidePNG rasterizes a single slide to PNG bytes at the given pixel
// size. The slide list uses this as the generator for the thumbnail cache
// (storage.GetOrCreateThumb).
func RenderSlidePNG(sl domain.Slide, deckRoot string, w, h int) ([]byte, error) {
	if w <= 0 {
		w = 256
	}
	if h <= 0 {
		h = w * 9 / 16
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	renderSlide(img, sl, deckRoot)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
