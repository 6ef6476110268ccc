/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package outline

import (
	"strings"

	"godeckstudio/internal/domain"
	"godeckstudio/internal/editor"
)

// Layout constants in percent of the slide surface.
const (
	titleX, titleY, titleW, titleH = 5.0, 5.0, 90.0, 15.0
	bodyX, bodyY, bodyW, bodyH     = 5.0, 25.0, 90.0, 60.0
	imageW, imageH                 = 40.0, 35.0
)

// Build turns a parsed outline into a presentation. Every slide gets a title
// element when the draft has a title, one body element holding the bullets,
// an image element per reference, and the draft's speaker notes.
func Build(o Outline, ids editor.IDGen) domain.Presentation {
	p := domain.Presentation{
		ID:    ids.NewID(),
		Title: o.Title,
	}
	if p.Title == "" {
		p.Title = "Imported Deck"
	}
	for _, d := range o.Slides {
		sl := domain.Slide{
			ID:         ids.NewID(),
			Background: "#ffffff",
			Notes:      d.Notes,
		}
		if strings.TrimSpace(d.Title) != "" {
			sl.Elements = append(sl.Elements, domain.Element{
				ID: ids.NewID(), Kind: domain.KindText,
				X: titleX, Y: titleY, W: titleW, H: titleH,
				Content: d.Title,
				Style:   domain.Style{FontSize: 32, FontWeight: "bold"},
			})
		}
		if len(d.Bullets) > 0 {
			sl.Elements = append(sl.Elements, domain.Element{
				ID: ids.NewID(), Kind: domain.KindText,
				X: bodyX, Y: bodyY, W: bodyW, H: bodyH,
				Content: strings.Join(d.Bullets, "\n"),
				Style:   domain.Style{FontSize: 18},
			})
		}
		for i, img := range d.Images {
			// stagger multiple images so they do not stack exactly
			off := float64(i) * 4
			sl.Elements = append(sl.Elements, domain.Element{
				ID: ids.NewID(), Kind: domain.KindImage,
				X: 55 - off, Y: 30 + off, W: imageW, H: imageH,
				URL: img,
			})
		}
		p.Slides = append(p.Slides, sl)
	}
	if len(p.Slides) == 0 {
		p.Slides = []domain.Slide{{ID: ids.NewID(), Background: "#ffffff"}}
	}
	return p
}
