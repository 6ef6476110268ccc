/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package stylepack

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
)

func TestExportAndInstallPack(t *testing.T) {
	// Create temp deck with styles
	deckDir := t.TempDir()
	stylesDir := filepath.Join(deckDir, "styles")
	if err := os.MkdirAll(stylesDir, 0o755); err != nil {
		t.Fatalf("mkdir styles: %v", err)
	}
	// Create some files and subdirs
	if err := os.WriteFile(filepath.Join(stylesDir, "headings.yaml"), []byte("Title:\n  family: Helvetica\n  size: 36\n"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	sub := filepath.Join(stylesDir, "templates")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("mkdir templates: %v", err)
	}
	if err := os.WriteFile(filepath.Join(sub, "two-column.txt"), []byte("2col"), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}

	// Export pack
	zipPath := filepath.Join(deckDir, "out.zip")
	if err := ExportDeckStyles(deckDir, zipPath); err != nil {
		t.Fatalf("export pack: %v", err)
	}
	// Basic check: zip exists and has entries
	st, err := os.Stat(zipPath)
	if err != nil || st.Size() == 0 {
		t.Fatalf("zip not created or empty: %v", err)
	}
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	_ = r.Close()

	// Install into a new deck
	deck2 := t.TempDir()
	installed, err := InstallPack(deck2, zipPath)
	if err != nil {
		t.Fatalf("install pack: %v", err)
	}
	if installed == 0 {
		t.Fatalf("expected installed > 0")
	}
	// Files should exist under deck2/styles
	if _, err := os.Stat(filepath.Join(deck2, "styles", "headings.yaml")); err != nil {
		t.Fatalf("expected headings.yaml installed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(deck2, "styles", "templates", "two-column.txt")); err != nil {
		t.Fatalf("expected template installed: %v", err)
	}
}
