/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"image/color"
)

// Style colors in the model are CSS-style hex strings ("#rgb" or "#rrggbb").
// Every exporter parses them through here so the renderers agree on defaults.

// parseHex parses a hex color string. Unparseable or empty input returns def.
func parseHex(s string, def color.RGBA) color.RGBA {
	if len(s) == 0 || s[0] != '#' {
		return def
	}
	hex := s[1:]
	var r, g, b uint8
	switch len(hex) {
	case 3:
		rv, ok1 := hexNibble(hex[0])
		gv, ok2 := hexNibble(hex[1])
		bv, ok3 := hexNibble(hex[2])
		if !ok1 || !ok2 || !ok3 {
			return def
		}
		r, g, b = rv*17, gv*17, bv*17
	case 6:
		var ok bool
		if r, ok = hexByte(hex[0], hex[1]); !ok {
			return def
		}
		if g, ok = hexByte(hex[2], hex[3]); !ok {
			return def
		}
		if b, ok = hexByte(hex[4], hex[5]); !ok {
			return def
		}
	default:
		return def
	}
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

func hexNibble(c byte) (uint8, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

func hexByte(hi, lo byte) (uint8, bool) {
	h, ok1 := hexNibble(hi)
	l, ok2 := hexNibble(lo)
	return h<<4 | l, ok1 && ok2
}

var (
	colorBlack     = color.RGBA{A: 255}
	colorWhite     = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	colorShapeFill = color.RGBA{R: 221, G: 221, B: 221, A: 255} // #dddddd
)
