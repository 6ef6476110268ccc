/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package outline

import (
	"bufio"
	"regexp"
	"strings"
)

// Parse parses an outline text into a structured Outline.
// Supported syntax (minimal):
// - Deck title: the first "# Title" line. Later "#" lines start slides too.
// - Slide headings:
//   - Lines starting with "##" or "Slide:" introduce a new slide. The rest of the line is the title.
//
// - Bullets: lines starting with "-" or "*" become body bullets.
//   - Continuation lines indented by 2+ spaces are appended to the previous bullet or notes.
//
// - Notes: "Notes: text" attaches speaker notes to the current slide.
// - Images: "![alt](path)" adds an image reference to the current slide.
// - Comments: lines starting with ';' are skipped.
// Blank lines end continuations but are otherwise ignored.
func Parse(input string) (Outline, []Error) {
	o := Outline{Slides: []SlideDraft{}}
	var errs []Error

	scanner := bufio.NewScanner(strings.NewReader(input))
	lineNo := 0
	current := SlideDraft{}
	haveSlide := false
	// what an indented continuation extends: nothing, the last bullet, or notes
	const (
		contNone = iota
		contBullet
		contNotes
	)
	cont := contNone

	reHeading := regexp.MustCompile(`^(#+)\s*(.*)$`)
	reSlideAlt := regexp.MustCompile(`^(?i)\s*Slide:\s*(.+)$`)
	reBullet := regexp.MustCompile(`^[-*]\s+(.*)$`)
	reNotes := regexp.MustCompile(`^(?i)\s*Notes:\s*(.*)$`)
	reImage := regexp.MustCompile(`^!\[[^\]]*\]\(([^)]+)\)$`)

	flushSlide := func() {
		if haveSlide {
			o.Slides = append(o.Slides, current)
		}
		current = SlideDraft{}
		haveSlide = false
	}

	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r\n")

		// Continuation line (indented) extends the previous bullet or notes.
		if strings.HasPrefix(line, "  ") && cont != contNone {
			c := strings.TrimSpace(line)
			if c == "" {
				continue
			}
			switch cont {
			case contBullet:
				current.Bullets[len(current.Bullets)-1] += "\n" + c
			case contNotes:
				current.Notes += "\n" + c
			}
			continue
		}

		trim := strings.TrimSpace(line)
		if trim == "" {
			cont = contNone
			continue
		}

		if strings.HasPrefix(trim, ";") {
			cont = contNone
			continue
		}

		if m := reHeading.FindStringSubmatch(trim); m != nil {
			title := strings.TrimSpace(m[2])
			// the first single-# heading names the deck; everything else is a slide
			if len(m[1]) == 1 && o.Title == "" && !haveSlide && len(o.Slides) == 0 {
				o.Title = title
				cont = contNone
				continue
			}
			flushSlide()
			current = SlideDraft{Title: title}
			haveSlide = true
			cont = contNone
			continue
		}
		if m := reSlideAlt.FindStringSubmatch(trim); m != nil {
			flushSlide()
			current = SlideDraft{Title: strings.TrimSpace(m[1])}
			haveSlide = true
			cont = contNone
			continue
		}

		if m := reImage.FindStringSubmatch(trim); m != nil {
			if !haveSlide {
				current = SlideDraft{}
				haveSlide = true
			}
			current.Images = append(current.Images, strings.TrimSpace(m[1]))
			cont = contNone
			continue
		}

		if m := reNotes.FindStringSubmatch(trim); m != nil {
			if !haveSlide {
				current = SlideDraft{}
				haveSlide = true
			}
			if current.Notes != "" {
				current.Notes += "\n"
			}
			current.Notes += strings.TrimSpace(m[1])
			cont = contNotes
			continue
		}

		if m := reBullet.FindStringSubmatch(trim); m != nil {
			if !haveSlide {
				current = SlideDraft{}
				haveSlide = true
			}
			current.Bullets = append(current.Bullets, strings.TrimSpace(m[1]))
			cont = contBullet
			continue
		}

		// Loose text on a slide becomes a bullet so nothing is lost; loose
		// text before any slide is a parse problem worth reporting.
		if haveSlide {
			current.Bullets = append(current.Bullets, trim)
			cont = contBullet
			continue
		}
		errs = append(errs, Error{Line: lineNo, Message: "text before first slide heading: " + trim})
	}
	flushSlide()

	if err := scanner.Err(); err != nil {
		errs = append(errs, Error{Line: lineNo, Message: err.Error()})
	}
	return o, errs
}
