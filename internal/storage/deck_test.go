/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"godeckstudio/internal/domain"
)

func sampleDeck() domain.Presentation {
	return domain.Presentation{
		ID:    "deck-1",
		Title: "Quarterly Review",
		Slides: []domain.Slide{
			{
				ID:    "s1",
				Notes: "opening remarks",
				Elements: []domain.Element{
					{ID: "e1", Kind: domain.KindText, X: 10, Y: 10, W: 40, H: 10, Content: "Welcome everyone"},
					{ID: "e2", Kind: domain.KindShape, Shape: "rect", X: 5, Y: 50, W: 20, H: 20},
				},
			},
			{ID: "s2", Elements: []domain.Element{
				{ID: "e3", Kind: domain.KindText, X: 10, Y: 10, W: 40, H: 10, Content: "Revenue numbers"},
			}},
		},
	}
}

func TestInitDeckScaffoldsAndWritesManifest(t *testing.T) {
	root := t.TempDir()
	dh, err := InitDeck(root, sampleDeck())
	if err != nil {
		t.Fatalf("InitDeck error: %v", err)
	}
	if _, err := os.Stat(dh.ManifestPath); err != nil {
		t.Fatalf("manifest missing: %v", err)
	}
	for _, d := range []string{"assets", "exports", BackupsDirName} {
		if fi, err := os.Stat(filepath.Join(root, d)); err != nil || !fi.IsDir() {
			t.Fatalf("subdir %s missing: %v", d, err)
		}
	}
}

func TestOpenRoundTrip(t *testing.T) {
	root := t.TempDir()
	if _, err := InitDeck(root, sampleDeck()); err != nil {
		t.Fatalf("InitDeck error: %v", err)
	}
	dh, err := Open(root)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if dh.Deck.Title != "Quarterly Review" || len(dh.Deck.Slides) != 2 {
		t.Fatalf("deck did not round trip: %+v", dh.Deck)
	}
}

func TestSaveCreatesBackupOfPreviousManifest(t *testing.T) {
	root := t.TempDir()
	dh, err := InitDeck(root, sampleDeck())
	if err != nil {
		t.Fatalf("InitDeck error: %v", err)
	}
	dh.Deck.Title = "Updated Title"
	if err := Save(dh); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	ents, err := os.ReadDir(filepath.Join(root, BackupsDirName))
	if err != nil {
		t.Fatalf("read backups: %v", err)
	}
	found := false
	for _, e := range ents {
		if strings.HasPrefix(e.Name(), ManifestFileName+".") && strings.HasSuffix(e.Name(), ".bak") {
			found = true
		}
	}
	if !found {
		t.Fatalf("no manifest backup written")
	}
}

func TestOpenFallsBackToBackupOnCorruptManifest(t *testing.T) {
	root := t.TempDir()
	dh, err := InitDeck(root, sampleDeck())
	if err != nil {
		t.Fatalf("InitDeck error: %v", err)
	}
	// Save once more so a backup of the valid manifest exists
	if err := Save(dh); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if err := os.WriteFile(dh.ManifestPath, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("corrupt manifest: %v", err)
	}
	got, err := Open(root)
	if err != nil {
		t.Fatalf("Open should recover from backup, got error: %v", err)
	}
	if got.Deck.Title != "Quarterly Review" {
		t.Fatalf("recovered deck wrong: %q", got.Deck.Title)
	}
}

func TestSaveAsMovesHandle(t *testing.T) {
	root := t.TempDir()
	dh, err := InitDeck(root, sampleDeck())
	if err != nil {
		t.Fatalf("InitDeck error: %v", err)
	}
	newRoot := filepath.Join(t.TempDir(), "copy")
	if err := SaveAs(dh, newRoot); err != nil {
		t.Fatalf("SaveAs error: %v", err)
	}
	if dh.Root != newRoot {
		t.Fatalf("handle root not updated: %s", dh.Root)
	}
	if _, err := os.Stat(filepath.Join(newRoot, ManifestFileName)); err != nil {
		t.Fatalf("manifest not written at new root: %v", err)
	}
}

func TestAutosaveCrashSnapshotWritesFile(t *testing.T) {
	root := t.TempDir()
	dh, err := InitDeck(root, sampleDeck())
	if err != nil {
		t.Fatalf("InitDeck error: %v", err)
	}
	path, err := AutosaveCrashSnapshot(dh)
	if err != nil {
		t.Fatalf("AutosaveCrashSnapshot error: %v", err)
	}
	if !strings.Contains(path, filepath.Join(root, BackupsDirName)) {
		t.Fatalf("autosave not under backups dir: %s", path)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read autosave: %v", err)
	}
	if !strings.Contains(string(b), "Quarterly Review") {
		t.Fatalf("autosave content wrong")
	}
	// live manifest untouched
	if _, err := os.Stat(dh.ManifestPath); err != nil {
		t.Fatalf("manifest should remain: %v", err)
	}
}
