/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"godeckstudio/internal/backend"
	"godeckstudio/internal/config"
	"godeckstudio/internal/crash"
	"godeckstudio/internal/domain"
	"godeckstudio/internal/editor"
	"godeckstudio/internal/export"
	applog "godeckstudio/internal/log"
	"godeckstudio/internal/outline"
	"godeckstudio/internal/storage"
	"godeckstudio/internal/ui"
	"godeckstudio/internal/version"
)

func usage() {
	fmt.Println("Go Deck Studio")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  godeckstudio version|-v|--version          Show version")
	fmt.Println("  godeckstudio init <dir> <title>            Create a new deck at <dir> with the given title")
	fmt.Println("  godeckstudio open <dir>                    Open deck at <dir> and print a summary")
	fmt.Println("  godeckstudio save <dir>                    Save deck at <dir> (creates backup)")
	fmt.Println("  godeckstudio export <dir> <pdf|png|svg|web|print>   Export the deck")
	fmt.Println("  godeckstudio import <outline> <dir>        Build a new deck at <dir> from a Markdown outline")
	fmt.Println("  godeckstudio search <dir> <query>          Search slide text and notes")
	fmt.Println("  godeckstudio decks                         List decks in the remote deck library")
	fmt.Println("  godeckstudio ui [<dir>]                    Launch desktop UI (build with -tags fyne for full UI)")
}

func main() {
	// initialize structured logging using environment defaults
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("cli")
	var dh *storage.DeckHandle
	defer func() { crash.Recover(dh) }()

	args := os.Args
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) > 1 {
		switch args[1] {
		case "version", "--version", "-v":
			fmt.Println("Go Deck Studio")
			fmt.Println(version.String())
			return
		case "init":
			if len(args) < 4 {
				fmt.Println("init requires <dir> and <title>")
				usage()
				os.Exit(2)
			}
			dir := args[2]
			title := args[3]
			abs, _ := filepath.Abs(dir)
			l.Info("init deck", slog.String("root", abs), slog.String("title", title))
			gen := editor.UUIDGen{}
			deck := domain.Presentation{
				ID:     gen.NewID(),
				Title:  title,
				Slides: []domain.Slide{{ID: gen.NewID(), Background: "#ffffff"}},
			}
			h, err := storage.InitDeck(abs, deck)
			if err != nil {
				l.Error("init failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			dh = h
			fmt.Println("Created deck at", abs)
			return
		case "open":
			if len(args) < 3 {
				fmt.Println("open requires <dir>")
				usage()
				os.Exit(2)
			}
			abs, _ := filepath.Abs(args[2])
			l.Info("open deck", slog.String("root", abs))
			h, err := storage.Open(abs)
			if err != nil {
				l.Error("open failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			dh = h
			fmt.Printf("Opened deck: %s\n", h.Deck.Title)
			fmt.Printf("Slides: %d\n", len(h.Deck.Slides))
			fmt.Println("Root:", h.Root)
			return
		case "save":
			if len(args) < 3 {
				fmt.Println("save requires <dir>")
				usage()
				os.Exit(2)
			}
			abs, _ := filepath.Abs(args[2])
			l.Info("save deck", slog.String("root", abs))
			h, err := storage.Open(abs)
			if err != nil {
				l.Error("open before save failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			dh = h
			h.Deck.UpdatedAt = time.Now()
			if err := storage.Save(h); err != nil {
				l.Error("save failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			fmt.Println("Saved deck and created a backup of the previous manifest (if any).")
			return
		case "export":
			if len(args) < 4 {
				fmt.Println("export requires <dir> and a format (pdf, png, svg, web, print)")
				usage()
				os.Exit(2)
			}
			abs, _ := filepath.Abs(args[2])
			h, err := storage.Open(abs)
			if err != nil {
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			dh = h
			if err := runExport(h, args[3]); err != nil {
				l.Error("export failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			fmt.Println("Exported to", filepath.Join(h.Root, "exports"))
			return
		case "import":
			if len(args) < 4 {
				fmt.Println("import requires <outline> and <dir>")
				usage()
				os.Exit(2)
			}
			src, _ := filepath.Abs(args[2])
			dest, _ := filepath.Abs(args[3])
			data, err := os.ReadFile(src)
			if err != nil {
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			o, perrs := outline.Parse(string(data))
			if len(perrs) > 0 {
				for _, pe := range perrs {
					fmt.Printf("%s:%d: %s\n", args[2], pe.Line, pe.Message)
				}
				os.Exit(1)
			}
			deck := outline.Build(o, editor.UUIDGen{})
			l.Info("import outline", slog.String("source", src), slog.String("root", dest),
				slog.Int("slides", len(deck.Slides)))
			h, err := storage.InitDeck(dest, deck)
			if err != nil {
				l.Error("import failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			dh = h
			fmt.Printf("Created deck %q with %d slide(s) at %s\n", deck.Title, len(deck.Slides), dest)
			return
		case "search":
			if len(args) < 4 {
				fmt.Println("search requires <dir> and <query>")
				usage()
				os.Exit(2)
			}
			abs, _ := filepath.Abs(args[2])
			h, err := storage.Open(abs)
			if err != nil {
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			dh = h
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := storage.BuildIndexIfEmpty(ctx, h.Root, h.Deck); err != nil {
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			results, err := storage.Search(ctx, h.Root, storage.SearchQuery{Text: args[3], Limit: 50})
			if err != nil {
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			for _, r := range results {
				fmt.Printf("slide %d [%s] %s\n", r.SlideNo, r.Type, r.Snippet)
			}
			fmt.Printf("%d result(s)\n", len(results))
			return
		case "decks":
			cfg, token, cerr := config.Load()
			if cerr != nil {
				l.Warn("config load failed, using defaults", slog.Any("err", cerr))
			}
			c := backend.NewClient(cfg.Backend.BaseURL, token)
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			list, err := c.ListDecks(ctx)
			if err != nil {
				l.Error("list decks failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			for _, d := range list {
				fmt.Printf("%d\t%s\tv%d\t%s\n", d.ID, d.Title, d.Version, d.UpdatedAt.Format(time.RFC3339))
			}
			fmt.Printf("%d deck(s) at %s\n", len(list), cfg.Backend.BaseURL)
			return
		case "ui":
			var dir string
			if len(args) >= 3 {
				dir = args[2]
			}
			if err := ui.Run(dir); err != nil {
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			return
		}
	}

	usage()
}

func runExport(h *storage.DeckHandle, format string) error {
	switch format {
	case "pdf":
		return export.ExportDeckPDF(h, "deck.pdf", export.PDFOptions{})
	case "png":
		return export.ExportDeckPNGs(h, filepath.Join(h.Root, "exports", "png"), export.PNGOptions{})
	case "svg":
		return export.ExportDeckSVGs(h, filepath.Join(h.Root, "exports", "svg"), export.SVGOptions{})
	case "web":
		return export.BatchExport(h, export.BatchOptions{Preset: export.PresetWeb})
	case "print":
		return export.BatchExport(h, export.BatchOptions{Preset: export.PresetPrint})
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}
