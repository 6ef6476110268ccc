/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package outline

// Outline represents a parsed deck outline: a titled sequence of slide
// drafts. The syntax is Markdown-like; see Parse for the accepted forms.

type Outline struct {
	Title  string
	Slides []SlideDraft
}

// SlideDraft is one slide before layout: a title, body bullets, speaker
// notes, and referenced images.
type SlideDraft struct {
	Title   string
	Bullets []string
	Notes   string
	Images  []string // paths relative to the deck root, e.g. "assets/chart.png"
}

// Error is a parse problem with position context. Parsing is tolerant and
// keeps going; errors mark lines that were skipped.
type Error struct {
	Line    int
	Message string
}
