/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */

// Package stylepack exports and installs reusable text style packs.
// A pack is a zip archive mirroring a deck's /styles directory plus a
// small manifest. Style definitions inside /styles are YAML files that
// override or extend the builtin text styles.
package stylepack

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	applog "godeckstudio/internal/log"
	"godeckstudio/internal/textlayout"
)

// ExportDeckStyles zips the deck's styles directory (<deck>/styles) into a single .zip file.
// The produced archive preserves the directory structure and adds a small manifest file at the root
// named stylepack.manifest.txt for quick human inspection.
// If the styles directory does not exist or is empty, it still creates the archive with only the manifest.
func ExportDeckStyles(deckRoot string, destZipPath string) error {
	l := applog.WithOperation(applog.WithComponent("stylepack"), "export").With(slog.String("deck", deckRoot))
	if strings.TrimSpace(deckRoot) == "" {
		return errors.New("deckRoot is required")
	}
	if strings.TrimSpace(destZipPath) == "" {
		return errors.New("destZipPath is required")
	}
	stylesDir := filepath.Join(deckRoot, "styles")
	if _, err := os.Stat(stylesDir); os.IsNotExist(err) {
		if err := os.MkdirAll(stylesDir, 0o755); err != nil {
			return fmt.Errorf("ensure styles dir: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(destZipPath), 0o755); err != nil {
		return fmt.Errorf("ensure zip dir: %w", err)
	}
	// On Windows, remove destination if present before create
	_ = os.Remove(destZipPath)

	zf, err := os.Create(destZipPath)
	if err != nil {
		return fmt.Errorf("create zip: %w", err)
	}
	defer func() { _ = zf.Close() }()
	zw := zip.NewWriter(zf)
	defer func() { _ = zw.Close() }()

	manifest := fmt.Sprintf("Go Deck Studio Style Pack\nCreated: %s\nDeck: %s\n\nContents mirror the deck's /styles directory.\n",
		time.Now().Format(time.RFC3339), deckRoot)
	w, err := zw.Create("stylepack.manifest.txt")
	if err != nil {
		return fmt.Errorf("add manifest: %w", err)
	}
	if _, err := w.Write([]byte(manifest)); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	added := 0
	err = filepath.Walk(stylesDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(deckRoot, path)
		if err != nil {
			return err
		}
		// Forward slashes inside the archive, regardless of host OS
		zipName := filepath.ToSlash(rel)
		fw, err := zw.Create(zipName)
		if err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		if _, err := io.Copy(fw, f); err != nil {
			return err
		}
		added++
		return nil
	})
	if err != nil {
		l.Error("zip build failed", slog.Any("err", err))
		return fmt.Errorf("build zip: %w", err)
	}
	l.Info("style pack exported", slog.Int("files", added), slog.String("zip", destZipPath))
	return nil
}

// InstallPack extracts the given .zip pack into the deck's styles directory.
// Existing files are not overwritten; if a file already exists, it is skipped.
// Returns the count of files installed (skipped files are not counted).
func InstallPack(deckRoot string, packZipPath string) (int, error) {
	l := applog.WithOperation(applog.WithComponent("stylepack"), "install").With(slog.String("deck", deckRoot))
	if strings.TrimSpace(deckRoot) == "" {
		return 0, errors.New("deckRoot is required")
	}
	if strings.TrimSpace(packZipPath) == "" {
		return 0, errors.New("packZipPath is required")
	}
	stylesDir := filepath.Join(deckRoot, "styles")
	if err := os.MkdirAll(stylesDir, 0o755); err != nil {
		return 0, fmt.Errorf("ensure styles dir: %w", err)
	}

	r, err := zip.OpenReader(packZipPath)
	if err != nil {
		return 0, fmt.Errorf("open pack: %w", err)
	}
	defer func() { _ = r.Close() }()

	installed := 0
	for _, f := range r.File {
		name := f.Name
		if name == "stylepack.manifest.txt" {
			continue
		}
		// Entries that already target styles/ keep their path; anything else
		// is placed under styles/. Entries whose cleaned path would land
		// outside the styles directory are refused.
		targetRel := name
		if !strings.HasPrefix(targetRel, "styles/") {
			targetRel = filepath.ToSlash(filepath.Join("styles", targetRel))
		}
		cleanRel := filepath.Clean(filepath.FromSlash(targetRel))
		if cleanRel != "styles" && !strings.HasPrefix(cleanRel, "styles"+string(os.PathSeparator)) {
			l.Warn("skip entry outside styles dir", slog.String("name", name))
			continue
		}
		targetPath := filepath.Join(deckRoot, cleanRel)
		if _, err := os.Stat(targetPath); err == nil {
			l.Warn("skip existing file", slog.String("path", targetPath))
			continue
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(targetPath, 0o755); err != nil {
				return installed, err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(targetPath), 0o755); err != nil {
			return installed, err
		}
		rc, err := f.Open()
		if err != nil {
			return installed, err
		}
		out, err := os.OpenFile(targetPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			_ = rc.Close()
			return installed, err
		}
		if _, err := io.Copy(out, rc); err != nil {
			_ = out.Close()
			_ = rc.Close()
			return installed, err
		}
		_ = out.Close()
		_ = rc.Close()
		installed++
	}
	l.Info("style pack installed", slog.Int("files", installed))
	return installed, nil
}

// styleDef is the YAML shape of one style override inside a styles file.
type styleDef struct {
	Family   string  `yaml:"family"`
	SizePt   float32 `yaml:"size"`
	Weight   int     `yaml:"weight"`
	Italic   bool    `yaml:"italic"`
	Tracking float32 `yaml:"tracking"`
	Leading  float32 `yaml:"leading"`
}

// LoadDeckStyles reads every .yaml/.yml file under <deck>/styles and merges
// the style definitions into a single override map keyed by style name,
// suitable for StyleSheet.WithDeck. Files are read in lexical order so later
// files win on name collisions. A missing styles directory yields an empty map.
func LoadDeckStyles(deckRoot string) (map[string]textlayout.TextStyle, error) {
	l := applog.WithOperation(applog.WithComponent("stylepack"), "load").With(slog.String("deck", deckRoot))
	out := map[string]textlayout.TextStyle{}
	stylesDir := filepath.Join(deckRoot, "styles")
	entries, err := os.ReadDir(stylesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return out, nil
		}
		return nil, fmt.Errorf("read styles dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext == ".yaml" || ext == ".yml" {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	for _, name := range files {
		data, err := os.ReadFile(filepath.Join(stylesDir, name))
		if err != nil {
			return nil, fmt.Errorf("read style file %s: %w", name, err)
		}
		var defs map[string]styleDef
		if err := yaml.Unmarshal(data, &defs); err != nil {
			return nil, fmt.Errorf("parse style file %s: %w", name, err)
		}
		for styleName, d := range defs {
			st := textlayout.TextStyle{
				Name: styleName,
				Font: textlayout.FontSpec{
					Family: d.Family,
					SizePt: d.SizePt,
					Weight: d.Weight,
					Italic: d.Italic,
				},
				Tracking: d.Tracking,
				Leading:  d.Leading,
			}
			if st.Font.Family == "" {
				st.Font.Family = "Helvetica"
			}
			if st.Font.SizePt <= 0 {
				st.Font.SizePt = 18
			}
			if st.Font.Weight == 0 {
				st.Font.Weight = 400
			}
			out[styleName] = st
		}
	}
	l.Info("deck styles loaded", slog.Int("styles", len(out)))
	return out, nil
}
