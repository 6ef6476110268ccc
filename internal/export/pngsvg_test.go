/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExportDeckPNGs_WritesDecodableFiles(t *testing.T) {
	dh := testDeckHandle(t)

	outDir := filepath.Join(dh.Root, "exports", "png")
	if err := ExportDeckPNGs(dh, outDir, PNGOptions{Width: 640}); err != nil {
		t.Fatalf("export png: %v", err)
	}
	for _, name := range []string{"slide-1.png", "slide-2.png"} {
		f, err := os.Open(filepath.Join(outDir, name))
		if err != nil {
			t.Fatalf("open %s: %v", name, err)
		}
		img, err := png.Decode(f)
		_ = f.Close()
		if err != nil {
			t.Fatalf("decode %s: %v", name, err)
		}
		if img.Bounds().Dx() != 640 || img.Bounds().Dy() != 360 {
			t.Fatalf("unexpected size: %v", img.Bounds())
		}
	}
}

func TestExportDeckPNGs_DefaultWidth(t *testing.T) {
	dh := testDeckHandle(t)

	outDir := filepath.Join(dh.Root, "exports", "png")
	if err := ExportDeckPNGs(dh, outDir, PNGOptions{Slides: []int{0}}); err != nil {
		t.Fatalf("export png: %v", err)
	}
	f, err := os.Open(filepath.Join(outDir, "slide-1.png"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Dx() != 1280 || img.Bounds().Dy() != 720 {
		t.Fatalf("unexpected default size: %v", img.Bounds())
	}
	if _, err := os.Stat(filepath.Join(outDir, "slide-2.png")); !os.IsNotExist(err) {
		t.Fatalf("slide subset should skip slide 2")
	}
}

func TestExportDeckSVGs_ContainsShapesAndEscapedText(t *testing.T) {
	dh := testDeckHandle(t)

	outDir := filepath.Join(dh.Root, "exports", "svg")
	if err := ExportDeckSVGs(dh, outDir, SVGOptions{}); err != nil {
		t.Fatalf("export svg: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(outDir, "slide-1.svg"))
	if err != nil {
		t.Fatalf("read svg: %v", err)
	}
	s := string(data)
	if !strings.Contains(s, "<ellipse") {
		t.Fatalf("expected ellipse element in svg:\n%s", s)
	}
	if !strings.Contains(s, "Launch Plan &lt;Q3&gt;") {
		t.Fatalf("expected escaped text content in svg:\n%s", s)
	}
	if !strings.Contains(s, "fill=\"#3366cc\"") {
		t.Fatalf("expected shape fill color in svg:\n%s", s)
	}
	if !strings.Contains(s, "viewBox=\"0 0 960 540\"") {
		t.Fatalf("expected canvas viewBox in svg:\n%s", s)
	}

	data2, err := os.ReadFile(filepath.Join(outDir, "slide-2.svg"))
	if err != nil {
		t.Fatalf("read svg 2: %v", err)
	}
	if !strings.Contains(string(data2), "<image") {
		t.Fatalf("expected image element in svg 2:\n%s", data2)
	}
	if !strings.Contains(string(data2), "<line") {
		t.Fatalf("expected line element in svg 2:\n%s", data2)
	}
}
