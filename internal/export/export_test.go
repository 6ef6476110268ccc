/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"testing"

	"godeckstudio/internal/domain"
	"godeckstudio/internal/storage"
)

// testDeckHandle scaffolds a deck with two slides covering all element kinds.
func testDeckHandle(t *testing.T) *storage.DeckHandle {
	t.Helper()
	deck := domain.Presentation{
		ID:    "deck-1",
		Title: "Launch Plan",
		Slides: []domain.Slide{
			{
				ID:         "s1",
				Background: "#f0f0f0",
				Notes:      "Remember to pause here.",
				Elements: []domain.Element{
					{ID: "e1", Kind: domain.KindText, X: 10, Y: 10, W: 80, H: 15,
						Content: "Launch Plan <Q3>", Style: domain.Style{FontSize: 32, FontWeight: "bold", Align: "center", Color: "#112233"}},
					{ID: "e2", Kind: domain.KindShape, X: 20, Y: 40, W: 30, H: 20,
						Shape: "rect", Style: domain.Style{Background: "#3366cc", Border: "#000000"}},
					{ID: "e3", Kind: domain.KindShape, X: 55, Y: 40, W: 25, H: 25,
						Shape: "ellipse", Style: domain.Style{Background: "#cc3333", Opacity: 0.5}},
				},
			},
			{
				ID: "s2",
				Elements: []domain.Element{
					{ID: "e4", Kind: domain.KindImage, X: 10, Y: 10, W: 40, H: 40, URL: "assets/missing.png"},
					{ID: "e5", Kind: domain.KindShape, X: 10, Y: 70, W: 80, H: 0.5, Shape: "line",
						Style: domain.Style{Border: "#444444"}},
				},
			},
		},
	}
	dh, err := storage.InitDeck(t.TempDir(), deck)
	if err != nil {
		t.Fatalf("init deck: %v", err)
	}
	return dh
}
