//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	fstorage "fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"godeckstudio/internal/config"
	"godeckstudio/internal/crash"
	"godeckstudio/internal/domain"
	"godeckstudio/internal/editor"
	"godeckstudio/internal/export"
	"godeckstudio/internal/geom"
	applog "godeckstudio/internal/log"
	"godeckstudio/internal/outline"
	"godeckstudio/internal/server"
	"godeckstudio/internal/storage"
	"godeckstudio/internal/stylepack"
	"godeckstudio/internal/textlayout"
	"godeckstudio/internal/version"
)

func editorHistoryConfig() editor.HistoryConfig {
	return editor.HistoryConfig{
		MaxBytes:    32 * 1024 * 1024, // 32 MiB in-memory cap
		MaxDepth:    200,
		MinInterval: 300 * time.Millisecond,
	}
}

// Run starts the Fyne-based desktop deck editor. An optional deck directory
// is opened immediately; otherwise the dashboard with recent decks shows.
func Run(deckDir string) error {
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("ui")
	l.Info("starting UI", slog.String("version", version.String()))

	var dh *storage.DeckHandle
	defer func() { crash.Recover(dh) }()

	cfg, cfgPath, err := config.Load()
	if err != nil {
		l.Warn("config load failed, using defaults", slog.Any("err", err))
		cfg = config.Defaults()
	} else if cfgPath != "" {
		l.Info("config loaded", slog.String("path", cfgPath))
	}

	fyneApp := app.NewWithID("godeckstudio")
	w := fyneApp.NewWindow("Go Deck Studio")
	prefs := fyneApp.Preferences()
	winW := prefs.IntWithFallback("window.width", 1200)
	winH := prefs.IntWithFallback("window.height", 800)
	if winW < 800 {
		winW = 800
	}
	if winH < 600 {
		winH = 600
	}
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))

	status := widget.NewLabel("Ready")

	// Editor state. These variables are replaced wholesale when a deck opens;
	// every closure below reads them at call time.
	st := editor.NewStore(domain.Presentation{Title: "Untitled"}, editor.UUIDGen{}, editorHistoryConfig())
	ctrl := editor.NewController(st)
	sess := editor.NewTextSession(st)
	clip := &editor.Clipboard{}
	styleSheet := textlayout.NewStyleSheet()

	var (
		refreshAll      func()
		refreshThumb    func()
		beginTextEdit   func(elemID string)
		endTextEdit     func()
		showElementMenu func(elemID string, abs fyne.Position)
		openDeck        func(dir string) error
		saveDeck        func()
		showDashboard   func()
		showEditor      func()
		startShare      func()
		stopShare       func()
	)

	canvasWidget := NewSlideCanvas(st, ctrl)
	canvasHolder := container.NewStack(canvasWidget)

	// Slide navigation (left)
	slidesDisplay := []string{}
	slidesList := widget.NewList(
		func() int { return len(slidesDisplay) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(i widget.ListItemID, o fyne.CanvasObject) {
			if i >= 0 && int(i) < len(slidesDisplay) {
				o.(*widget.Label).SetText(slidesDisplay[i])
			} else {
				o.(*widget.Label).SetText("")
			}
		},
	)
	slidesList.OnSelected = func(id widget.ListItemID) {
		if int(id) == st.ActiveSlideIndex() {
			return
		}
		endTextEdit()
		st.SetActiveSlide(int(id))
	}
	thumbPreview := canvas.NewImageFromResource(nil)
	thumbPreview.FillMode = canvas.ImageFillContain
	thumbPreview.SetMinSize(fyne.NewSize(200, 113))

	refreshThumb = func() {
		root := ""
		if dh != nil {
			root = dh.Root
		}
		blob, terr := export.RenderSlidePNG(st.ActiveSlide(), root, 256, 144)
		if terr != nil {
			l.Warn("thumbnail render failed", slog.Any("err", terr))
			return
		}
		thumbPreview.Resource = fyne.NewStaticResource("thumb.png", blob)
		thumbPreview.Refresh()
	}

	refreshSlideList := func() {
		slidesDisplay = slidesDisplay[:0]
		p := st.Presentation()
		for i, sl := range p.Slides {
			slidesDisplay = append(slidesDisplay, fmt.Sprintf("Slide %d (%d elements)", i+1, len(sl.Elements)))
		}
		slidesList.Refresh()
		idx := st.ActiveSlideIndex()
		if idx >= 0 && idx < len(slidesDisplay) {
			slidesList.Select(idx)
		}
		refreshThumb()
	}

	// Inspector (right)
	selInfo := widget.NewLabel("No selection")
	fontSizeEntry := widget.NewEntry()
	fontSizeEntry.SetPlaceHolder("18")
	alignSelect := widget.NewSelect([]string{"left", "center", "right"}, nil)
	fillEntry := widget.NewEntry()
	fillEntry.SetPlaceHolder("#dddddd")
	borderEntry := widget.NewEntry()
	borderEntry.SetPlaceHolder("#000000")

	soleSelectedElement := func() (domain.Element, bool) {
		ids := st.SelectedIDs()
		if len(ids) != 1 {
			return domain.Element{}, false
		}
		sl := st.ActiveSlide()
		idx := sl.FindElement(ids[0])
		if idx < 0 {
			return domain.Element{}, false
		}
		return sl.Elements[idx], true
	}

	applyStyleBtn := widget.NewButton("Apply Style", func() {
		el, ok := soleSelectedElement()
		if !ok {
			status.SetText("Select exactly one element to style.")
			return
		}
		if v := strings.TrimSpace(fontSizeEntry.Text); v != "" {
			if fs, perr := strconv.ParseFloat(v, 64); perr == nil && fs > 0 {
				el.Style.FontSize = fs
			}
		}
		if alignSelect.Selected != "" {
			el.Style.Align = alignSelect.Selected
		}
		if v := strings.TrimSpace(fillEntry.Text); v != "" {
			el.Style.Background = v
		}
		if v := strings.TrimSpace(borderEntry.Text); v != "" {
			el.Style.Border = v
		}
		if uerr := st.UpdateElement(el); uerr != nil {
			dialog.ShowError(uerr, w)
		}
	})

	// In-place text editing surface
	textEntry := newTextEditEntry(w)
	textEntry.OnChanged = func(string) { sess.HandleInput() }
	textEntry.onFocus = func() { sess.HandleFocus() }
	textEntry.onBlur = func() {
		// Blur is a commit point. The capture is synchronous; the flush runs
		// on the next frame so a focus bounce back into the entry supersedes
		// it instead of committing mid-edit.
		sess.HandleBlur()
		fyne.Do(func() { sess.Flush() })
	}
	textEntry.onTab = func() { sess.Indent() }
	textEntry.onShiftTab = func() { sess.Outdent() }
	textEntry.onEscape = func() { endTextEdit() }

	// syncTextEdit commits the live edit session's current text without ending
	// it, so save and copy read fresh content even while the entry is focused.
	syncTextEdit := func() {
		if sess.Active() {
			sess.HandleBlur()
			sess.Flush()
		}
	}
	indentBtn := widget.NewButton("Indent", func() { sess.Indent() })
	outdentBtn := widget.NewButton("Outdent", func() { sess.Outdent() })
	doneBtn := widget.NewButton("Done", func() { endTextEdit() })

	// Speaker notes
	notesEntry := widget.NewMultiLineEntry()
	notesEntry.Wrapping = fyne.TextWrapWord
	notesEntry.SetPlaceHolder("Speaker notes…")
	lastNotesSlide := ""
	saveNotesBtn := widget.NewButton("Save Notes", func() {
		sl := st.ActiveSlide()
		if nerr := st.SetSlideNotes(sl.ID, notesEntry.Text); nerr != nil {
			dialog.ShowError(nerr, w)
		}
	})

	refreshInspector := func() {
		ids := st.SelectedIDs()
		switch len(ids) {
		case 0:
			selInfo.SetText("No selection")
		case 1:
			if el, ok := soleSelectedElement(); ok {
				selInfo.SetText(fmt.Sprintf("%s %.1f,%.1f %.1fx%.1f", el.Kind, el.X, el.Y, el.W, el.H))
			}
		default:
			selInfo.SetText(fmt.Sprintf("%d elements selected", len(ids)))
		}
		sl := st.ActiveSlide()
		if sl.ID != lastNotesSlide {
			lastNotesSlide = sl.ID
			notesEntry.SetText(sl.Notes)
		}
	}

	beginTextEdit = func(elemID string) {
		sl := st.ActiveSlide()
		idx := sl.FindElement(elemID)
		if idx < 0 {
			return
		}
		st.SetSelection(elemID)
		textEntry.Entry.SetText(sl.Elements[idx].Content)
		sess.Begin(elemID, textEntry)
		status.SetText("Editing text; Done or Escape commits.")
	}

	endTextEdit = func() {
		if !sess.Active() {
			return
		}
		sess.End()
		sess.Flush()
		w.Canvas().Unfocus()
		status.SetText("Ready")
	}

	sess.OnAutoResize = func(elemID, text string) {
		sl := st.ActiveSlide()
		idx := sl.FindElement(elemID)
		if idx < 0 {
			return
		}
		el := sl.Elements[idx]
		fsize := el.Style.FontSize
		if fsize <= 0 {
			fsize = 18
		}
		widthPt := float32(el.W / 100 * slideW)
		need := textlayout.RequiredHeight(nil, text, textlayout.FontSpec{Family: "Helvetica", SizePt: float32(fsize)}, widthPt)
		needPct := float64(need) / slideH * 100
		if needPct > el.H {
			r := el.Bounds()
			r.H = geom.Clamp(needPct, el.H, geom.CanvasMax-el.Y)
			st.ApplyGeometry(map[string]domain.Rect{elemID: r})
		}
	}

	showElementMenu = func(elemID string, abs fyne.Position) {
		m := fyne.NewMenu("",
			fyne.NewMenuItem("Bring to Front", func() { _ = st.BringToFront(elemID) }),
			fyne.NewMenuItem("Send to Back", func() { _ = st.SendToBack(elemID) }),
			fyne.NewMenuItemSeparator(),
			fyne.NewMenuItem("Duplicate", func() { editor.Duplicate(st) }),
			fyne.NewMenuItem("Delete", func() {
				endTextEdit()
				st.DeleteSelection()
			}),
		)
		widget.ShowPopUpMenuAtPosition(m, w.Canvas(), abs)
	}
	canvasWidget.OnEditText = beginTextEdit
	canvasWidget.OnContextMenu = showElementMenu

	// Share server (viewer feed)
	var shareSrv *server.Server
	shareAddr := os.Getenv("GDS_SHARE_ADDR")
	if shareAddr == "" {
		shareAddr = "127.0.0.1:8765"
	}
	startShare = func() {
		if shareSrv != nil || dh == nil {
			return
		}
		token := os.Getenv("GDS_SHARE_TOKEN")
		if token == "" {
			token = editor.UUIDGen{}.NewID()
		}
		srv := server.New(dh, token)
		shareSrv = srv
		go func() {
			if serr := srv.ListenAndServe(shareAddr); serr != nil && !errors.Is(serr, http.ErrServerClosed) {
				l.Error("share server stopped", slog.Any("err", serr))
			}
		}()
		l.Info("share server listening", slog.String("addr", shareAddr))
		status.SetText("Sharing at http://" + shareAddr + "/")
	}
	stopShare = func() {
		if shareSrv == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = shareSrv.Shutdown(ctx)
		shareSrv = nil
		status.SetText("Share server stopped.")
	}

	// Menu items whose enabled state tracks the store
	undoItem := fyne.NewMenuItem("Undo", nil)
	redoItem := fyne.NewMenuItem("Redo", nil)
	var mainMenu *fyne.MainMenu

	refreshAll = func() {
		// a session whose element left the selection is over; commit it
		if sess.Active() && !st.IsSelected(sess.ElementID()) {
			sess.End()
			sess.Flush()
		}
		refreshSlideList()
		refreshInspector()
		canvasWidget.Refresh()
		undoItem.Disabled = !st.CanUndo()
		redoItem.Disabled = !st.CanRedo()
		if mainMenu != nil {
			mainMenu.Refresh()
		}
	}
	st.OnChange = func() { refreshAll() }

	// Deck lifecycle
	saveDeck = func() {
		if dh == nil {
			dialog.ShowInformation("Save", "No deck open.", w)
			return
		}
		syncTextEdit()
		dh.Deck = st.Presentation()
		if serr := storage.Save(dh); serr != nil {
			l.Error("save failed", slog.Any("err", serr))
			dialog.ShowError(serr, w)
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if ierr := storage.UpdateIndex(ctx, dh.Root, dh.Deck); ierr != nil {
			l.Warn("index update failed", slog.Any("err", ierr))
		}
		if shareSrv != nil {
			shareSrv.SetDeck(dh)
		}
		l.Info("save completed", slog.String("manifest", dh.ManifestPath))
		status.SetText("Deck saved.")
	}

	openDeck = func(dir string) error {
		h, oerr := storage.Open(dir)
		if oerr != nil {
			return oerr
		}
		dh = h
		st = editor.NewStore(dh.Deck, editor.UUIDGen{}, editorHistoryConfig())
		ctrl = editor.NewController(st)
		oldResize := sess.OnAutoResize
		sess = editor.NewTextSession(st)
		sess.OnAutoResize = oldResize
		st.OnChange = func() { refreshAll() }
		st.SetEditMode(true)

		canvasWidget = NewSlideCanvas(st, ctrl)
		canvasWidget.DeckRoot = dh.Root
		canvasWidget.OnEditText = beginTextEdit
		canvasWidget.OnContextMenu = showElementMenu
		canvasHolder.Objects = []fyne.CanvasObject{canvasWidget}
		canvasHolder.Refresh()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if rebuilt, ierr := storage.DetectAndRebuildIndex(ctx, dh.Root, dh.Deck); ierr != nil {
			l.Warn("index check failed", slog.Any("err", ierr))
		} else if rebuilt {
			l.Info("search index rebuilt", slog.String("root", dh.Root))
		}

		if over, serr := stylepack.LoadDeckStyles(dh.Root); serr != nil {
			l.Warn("deck style load failed", slog.Any("err", serr))
		} else {
			styleSheet = textlayout.NewStyleSheet().WithDeck(over)
		}

		w.SetTitle("Go Deck Studio - " + dh.Deck.Title)
		addRecentDeck(prefs, dir)
		lastNotesSlide = ""
		if cfg.General.EnableServer {
			startShare()
		}
		refreshAll()
		showEditor()
		l.Info("deck opened", slog.String("title", dh.Deck.Title), slog.String("root", dh.Root))
		status.SetText("Opened " + dh.Deck.Title)
		return nil
	}

	closeDeck := func() {
		if dh == nil {
			return
		}
		endTextEdit()
		stopShare()
		dh = nil
		st = editor.NewStore(domain.Presentation{Title: "Untitled"}, editor.UUIDGen{}, editorHistoryConfig())
		ctrl = editor.NewController(st)
		sessResize := sess.OnAutoResize
		sess = editor.NewTextSession(st)
		sess.OnAutoResize = sessResize
		st.OnChange = func() { refreshAll() }
		styleSheet = textlayout.NewStyleSheet()
		w.SetTitle("Go Deck Studio")
		status.SetText("Deck closed.")
		showDashboard()
	}

	// Element insertion
	insertElement := func(el domain.Element) {
		if !st.EditMode() {
			return
		}
		added := st.AddElement(el)
		st.SetSelection(added.ID)
	}
	insertText := func() {
		size := 18.0
		if body, ok := styleSheet.Resolve("Body"); ok {
			size = float64(body.Font.SizePt)
		}
		insertElement(domain.Element{Kind: domain.KindText, X: 10, Y: 10, W: 40, H: 12,
			Content: "Text", Style: domain.Style{FontSize: size}})
	}
	insertRect := func() {
		insertElement(domain.Element{Kind: domain.KindShape, Shape: "rect", X: 10, Y: 10, W: 30, H: 20})
	}
	insertEllipse := func() {
		insertElement(domain.Element{Kind: domain.KindShape, Shape: "ellipse", X: 15, Y: 15, W: 25, H: 25})
	}
	insertLine := func() {
		insertElement(domain.Element{Kind: domain.KindShape, Shape: "line", X: 10, Y: 50, W: 40, H: 5,
			Style: domain.Style{Border: "#444444"}})
	}
	insertImage := func() {
		if dh == nil {
			dialog.ShowInformation("Insert Image", "Open a deck first; images are copied into its assets folder.", w)
			return
		}
		fd := dialog.NewFileOpen(func(rd fyne.URIReadCloser, ferr error) {
			if ferr != nil || rd == nil {
				return
			}
			defer rd.Close()
			src := rd.URI().Path()
			data, rerr := os.ReadFile(src)
			if rerr != nil {
				dialog.ShowError(rerr, w)
				return
			}
			name := filepath.Base(src)
			dst := filepath.Join(dh.Root, "assets", name)
			if werr := os.WriteFile(dst, data, 0o644); werr != nil {
				dialog.ShowError(werr, w)
				return
			}
			insertElement(domain.Element{Kind: domain.KindImage, URL: "assets/" + name, X: 20, Y: 20, W: 40, H: 30})
		}, w)
		fd.SetFilter(fstorage.NewExtensionFileFilter([]string{".png", ".jpg", ".jpeg", ".gif"}))
		fd.Show()
	}

	// Clipboard and undo actions
	doUndo := func() {
		endTextEdit()
		if !st.Undo() {
			status.SetText("Nothing to undo.")
		}
	}
	doRedo := func() {
		endTextEdit()
		if !st.Redo() {
			status.SetText("Nothing to redo.")
		}
	}
	doCopy := func() {
		syncTextEdit()
		n := clip.CopySelection(st)
		status.SetText(fmt.Sprintf("Copied %d element(s).", n))
	}
	doCut := func() {
		endTextEdit()
		n := clip.CopySelection(st)
		st.DeleteSelection()
		status.SetText(fmt.Sprintf("Cut %d element(s).", n))
	}
	doPaste := func() {
		els := clip.Paste(st)
		if len(els) > 0 {
			status.SetText(fmt.Sprintf("Pasted %d element(s).", len(els)))
		}
	}
	doDuplicate := func() { editor.Duplicate(st) }
	doDelete := func() {
		endTextEdit()
		st.DeleteSelection()
	}
	undoItem.Action = doUndo
	redoItem.Action = doRedo

	// Presentation window
	startPresent := func() {
		if st.SlideCount() == 0 {
			return
		}
		endTextEdit()
		st.SetEditMode(false)
		pw := fyneApp.NewWindow(st.Presentation().Title)
		img := canvas.NewImageFromResource(nil)
		img.FillMode = canvas.ImageFillContain
		show := func() {
			root := ""
			if dh != nil {
				root = dh.Root
			}
			blob, rerr := export.RenderSlidePNG(st.ActiveSlide(), root, 1600, 900)
			if rerr != nil {
				l.Error("present render failed", slog.Any("err", rerr))
				return
			}
			img.Resource = fyne.NewStaticResource("slide.png", blob)
			img.Refresh()
			if shareSrv != nil {
				_ = shareSrv.Goto(st.ActiveSlideIndex())
			}
		}
		goTo := func(delta int) {
			i := st.ActiveSlideIndex() + delta
			if i >= 0 && i < st.SlideCount() {
				st.SetActiveSlide(i)
				show()
			}
		}
		pw.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
			switch ev.Name {
			case fyne.KeyRight, fyne.KeySpace, fyne.KeyPageDown, fyne.KeyDown:
				goTo(1)
			case fyne.KeyLeft, fyne.KeyPageUp, fyne.KeyUp:
				goTo(-1)
			case fyne.KeyHome:
				st.SetActiveSlide(0)
				show()
			case fyne.KeyEnd:
				st.SetActiveSlide(st.SlideCount() - 1)
				show()
			case fyne.KeyEscape:
				pw.Close()
			}
		})
		pw.SetOnClosed(func() {
			st.SetEditMode(true)
			refreshAll()
		})
		pw.SetContent(img)
		pw.SetFullScreen(true)
		show()
		pw.Show()
	}

	// Search across the deck index
	showSearch := func() {
		if dh == nil {
			dialog.ShowInformation("Search", "No deck open.", w)
			return
		}
		queryEntry := widget.NewEntry()
		queryEntry.SetPlaceHolder("Search slides, text and notes…")
		results := []storage.SearchResult{}
		resultsList := widget.NewList(
			func() int { return len(results) },
			func() fyne.CanvasObject { return widget.NewLabel("") },
			func(i widget.ListItemID, o fyne.CanvasObject) {
				r := results[i]
				o.(*widget.Label).SetText(fmt.Sprintf("Slide %d [%s] %s", r.SlideNo, r.Type, r.Snippet))
			},
		)
		var d dialog.Dialog
		resultsList.OnSelected = func(i widget.ListItemID) {
			r := results[i]
			if r.SlideNo > 0 && r.SlideNo <= st.SlideCount() {
				st.SetActiveSlide(r.SlideNo - 1)
				if r.ElementID != "" {
					st.SetSelection(r.ElementID)
				}
			}
			d.Hide()
		}
		queryEntry.OnSubmitted = func(qs string) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			res, serr := storage.Search(ctx, dh.Root, storage.SearchQuery{Text: qs, Limit: 50})
			if serr != nil {
				l.Error("search failed", slog.Any("err", serr))
				dialog.ShowError(serr, w)
				return
			}
			results = res
			resultsList.Refresh()
		}
		content := container.NewBorder(queryEntry, nil, nil, nil, resultsList)
		d = dialog.NewCustom("Search Deck", "Close", content, w)
		d.Resize(fyne.NewSize(520, 420))
		d.Show()
		w.Canvas().Focus(queryEntry)
	}

	// Exporters
	withCurrentDeck := func(fn func() error) {
		if dh == nil {
			dialog.ShowInformation("Export", "No deck open.", w)
			return
		}
		syncTextEdit()
		dh.Deck = st.Presentation()
		if eerr := fn(); eerr != nil {
			l.Error("export failed", slog.Any("err", eerr))
			dialog.ShowError(eerr, w)
			return
		}
	}
	exportPDF := func(withNotes bool) {
		withCurrentDeck(func() error {
			name := "deck.pdf"
			if withNotes {
				name = "deck-notes.pdf"
			}
			if eerr := export.ExportDeckPDF(dh, name, export.PDFOptions{IncludeNotes: withNotes}); eerr != nil {
				return eerr
			}
			out := filepath.Join(dh.Root, "exports", name)
			status.SetText("Exported " + out)
			dialog.ShowInformation("Export PDF", "Written to:\n"+out, w)
			return nil
		})
	}
	exportPNG := func() {
		withCurrentDeck(func() error {
			out := filepath.Join(dh.Root, "exports", "png")
			if eerr := export.ExportDeckPNGs(dh, out, export.PNGOptions{}); eerr != nil {
				return eerr
			}
			status.SetText("Exported PNG slides to " + out)
			dialog.ShowInformation("Export PNG", "Written to:\n"+out, w)
			return nil
		})
	}
	exportSVG := func() {
		withCurrentDeck(func() error {
			out := filepath.Join(dh.Root, "exports", "svg")
			if eerr := export.ExportDeckSVGs(dh, out, export.SVGOptions{}); eerr != nil {
				return eerr
			}
			status.SetText("Exported SVG slides to " + out)
			dialog.ShowInformation("Export SVG", "Written to:\n"+out, w)
			return nil
		})
	}
	exportPreset := func(preset export.PresetName) {
		withCurrentDeck(func() error {
			if eerr := export.BatchExport(dh, export.BatchOptions{Preset: preset}); eerr != nil {
				return eerr
			}
			out := filepath.Join(dh.Root, "exports", string(preset))
			status.SetText("Batch export finished: " + out)
			dialog.ShowInformation("Batch Export", "Written to:\n"+out, w)
			return nil
		})
	}

	// Menus
	newItem := fyne.NewMenuItem("New…", func() {
		fd := dialog.NewFolderOpen(func(uri fyne.ListableURI, derr error) {
			if derr != nil || uri == nil {
				return
			}
			parent := uri.Path()
			titleEntry := widget.NewEntry()
			titleEntry.SetPlaceHolder("My Deck")
			items := []*widget.FormItem{widget.NewFormItem("Title", titleEntry)}
			dialog.ShowForm("New Deck", "Create", "Cancel", items, func(ok bool) {
				if !ok {
					return
				}
				title := strings.TrimSpace(titleEntry.Text)
				if title == "" {
					title = "Untitled Deck"
				}
				dir := filepath.Join(parent, deckDirName(title))
				gen := editor.UUIDGen{}
				deck := domain.Presentation{
					ID:    gen.NewID(),
					Title: title,
					Slides: []domain.Slide{
						{ID: gen.NewID(), Background: "#ffffff"},
					},
				}
				if _, cerr := storage.InitDeck(dir, deck); cerr != nil {
					dialog.ShowError(cerr, w)
					return
				}
				if oerr := openDeck(dir); oerr != nil {
					dialog.ShowError(oerr, w)
				}
			}, w)
		}, w)
		fd.Show()
	})
	openItem := fyne.NewMenuItem("Open…", func() {
		fd := dialog.NewFolderOpen(func(uri fyne.ListableURI, derr error) {
			if derr != nil || uri == nil {
				return
			}
			if oerr := openDeck(uri.Path()); oerr != nil {
				l.Error("open deck failed", slog.Any("err", oerr))
				dialog.ShowError(oerr, w)
			}
		}, w)
		fd.Show()
	})
	saveItem := fyne.NewMenuItem("Save", saveDeck)
	saveAsItem := fyne.NewMenuItem("Save As…", func() {
		if dh == nil {
			dialog.ShowInformation("Save As", "No deck open.", w)
			return
		}
		fd := dialog.NewFolderOpen(func(uri fyne.ListableURI, derr error) {
			if derr != nil || uri == nil {
				return
			}
			dh.Deck = st.Presentation()
			newRoot := filepath.Join(uri.Path(), deckDirName(dh.Deck.Title))
			if serr := storage.SaveAs(dh, newRoot); serr != nil {
				dialog.ShowError(serr, w)
				return
			}
			canvasWidget.DeckRoot = dh.Root
			addRecentDeck(prefs, dh.Root)
			status.SetText("Saved copy to " + newRoot)
		}, w)
		fd.Show()
	})
	importOutlineItem := fyne.NewMenuItem("Import Outline…", func() {
		fd := dialog.NewFileOpen(func(rd fyne.URIReadCloser, ferr error) {
			if ferr != nil || rd == nil {
				return
			}
			defer rd.Close()
			data, rerr := os.ReadFile(rd.URI().Path())
			if rerr != nil {
				dialog.ShowError(rerr, w)
				return
			}
			o, errs := outline.Parse(string(data))
			if len(errs) > 0 {
				var b strings.Builder
				for _, e := range errs {
					fmt.Fprintf(&b, "line %d: %s\n", e.Line, e.Message)
				}
				dialog.ShowError(fmt.Errorf("outline has problems:\n%s", b.String()), w)
				return
			}
			deck := outline.Build(o, editor.UUIDGen{})
			dd := dialog.NewFolderOpen(func(uri fyne.ListableURI, derr error) {
				if derr != nil || uri == nil {
					return
				}
				dir := filepath.Join(uri.Path(), deckDirName(deck.Title))
				if _, cerr := storage.InitDeck(dir, deck); cerr != nil {
					dialog.ShowError(cerr, w)
					return
				}
				if oerr := openDeck(dir); oerr != nil {
					dialog.ShowError(oerr, w)
					return
				}
				status.SetText(fmt.Sprintf("Imported %d slides from outline.", len(deck.Slides)))
			}, w)
			dd.Show()
		}, w)
		fd.SetFilter(fstorage.NewExtensionFileFilter([]string{".md", ".txt"}))
		fd.Show()
	})
	importPackItem := fyne.NewMenuItem("Import Style Pack…", func() {
		if dh == nil {
			dialog.ShowInformation("Import Style Pack", "Open a deck first.", w)
			return
		}
		fd := dialog.NewFileOpen(func(rd fyne.URIReadCloser, ferr error) {
			if ferr != nil || rd == nil {
				return
			}
			defer rd.Close()
			n, ierr := stylepack.InstallPack(dh.Root, rd.URI().Path())
			if ierr != nil {
				dialog.ShowError(ierr, w)
				return
			}
			if over, serr := stylepack.LoadDeckStyles(dh.Root); serr == nil {
				styleSheet = textlayout.NewStyleSheet().WithDeck(over)
			}
			status.SetText(fmt.Sprintf("Installed %d style files.", n))
		}, w)
		fd.SetFilter(fstorage.NewExtensionFileFilter([]string{".zip"}))
		fd.Show()
	})
	exportStylesItem := fyne.NewMenuItem("Export Styles as Pack…", func() {
		if dh == nil {
			dialog.ShowInformation("Export Styles", "Open a deck first.", w)
			return
		}
		fd := dialog.NewFolderOpen(func(uri fyne.ListableURI, derr error) {
			if derr != nil || uri == nil {
				return
			}
			out := filepath.Join(uri.Path(), deckDirName(dh.Deck.Title)+"-styles.zip")
			if eerr := stylepack.ExportDeckStyles(dh.Root, out); eerr != nil {
				dialog.ShowError(eerr, w)
				return
			}
			status.SetText("Style pack written to " + out)
		}, w)
		fd.Show()
	})
	searchItem := fyne.NewMenuItem("Search…", showSearch)
	rebuildIndexItem := fyne.NewMenuItem("Rebuild Index", func() {
		if dh == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		dh.Deck = st.Presentation()
		if ierr := storage.RebuildIndex(ctx, dh.Root, dh.Deck); ierr != nil {
			dialog.ShowError(ierr, w)
			return
		}
		status.SetText("Search index rebuilt.")
	})
	closeDeckItem := fyne.NewMenuItem("Close Deck", closeDeck)

	newItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyN, Modifier: fyne.KeyModifierControl}
	openItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyO, Modifier: fyne.KeyModifierControl}
	saveItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyS, Modifier: fyne.KeyModifierControl}
	closeDeckItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyW, Modifier: fyne.KeyModifierControl}

	fileMenu := fyne.NewMenu("File", newItem, openItem, saveItem, saveAsItem,
		fyne.NewMenuItemSeparator(), importOutlineItem, importPackItem, exportStylesItem,
		fyne.NewMenuItemSeparator(), searchItem, rebuildIndexItem,
		fyne.NewMenuItemSeparator(), closeDeckItem)

	cutItem := fyne.NewMenuItem("Cut", doCut)
	copyItem := fyne.NewMenuItem("Copy", doCopy)
	pasteItem := fyne.NewMenuItem("Paste", doPaste)
	duplicateItem := fyne.NewMenuItem("Duplicate", doDuplicate)
	deleteItem := fyne.NewMenuItem("Delete Selected", doDelete)
	selectAllItem := fyne.NewMenuItem("Select All", func() { st.SelectAll() })
	editMenu := fyne.NewMenu("Edit", undoItem, redoItem, fyne.NewMenuItemSeparator(),
		cutItem, copyItem, pasteItem, duplicateItem, deleteItem, fyne.NewMenuItemSeparator(), selectAllItem)

	addSlideItem := fyne.NewMenuItem("Add Slide", func() {
		endTextEdit()
		st.AddSlide()
	})
	deleteSlideItem := fyne.NewMenuItem("Delete Current Slide…", func() {
		sl := st.ActiveSlide()
		dialog.ShowConfirm("Delete Slide", fmt.Sprintf("Delete slide %d?", st.ActiveSlideIndex()+1), func(ok bool) {
			if !ok {
				return
			}
			endTextEdit()
			if derr := st.DeleteSlide(sl.ID); derr != nil {
				dialog.ShowError(derr, w)
			}
		}, w)
	})
	nextSlideItem := fyne.NewMenuItem("Next Slide", func() { st.SetActiveSlide(st.ActiveSlideIndex() + 1) })
	prevSlideItem := fyne.NewMenuItem("Previous Slide", func() { st.SetActiveSlide(st.ActiveSlideIndex() - 1) })
	slideMenu := fyne.NewMenu("Slide", addSlideItem, deleteSlideItem, fyne.NewMenuItemSeparator(), nextSlideItem, prevSlideItem)

	insertMenu := fyne.NewMenu("Insert",
		fyne.NewMenuItem("Text", insertText),
		fyne.NewMenuItem("Rectangle", insertRect),
		fyne.NewMenuItem("Ellipse", insertEllipse),
		fyne.NewMenuItem("Line", insertLine),
		fyne.NewMenuItem("Image…", insertImage),
	)

	exportMenu := fyne.NewMenu("Export",
		fyne.NewMenuItem("PDF…", func() { exportPDF(false) }),
		fyne.NewMenuItem("PDF with Notes…", func() { exportPDF(true) }),
		fyne.NewMenuItem("PNG Slides…", exportPNG),
		fyne.NewMenuItem("SVG Slides…", exportSVG),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Web Preset (PNG+SVG)", func() { exportPreset(export.PresetWeb) }),
		fyne.NewMenuItem("Print Preset (PDF)", func() { exportPreset(export.PresetPrint) }),
	)

	presentMenu := fyne.NewMenu("Present",
		fyne.NewMenuItem("Start Presentation", startPresent),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Start Share Server", func() { startShare() }),
		fyne.NewMenuItem("Stop Share Server", func() { stopShare() }),
	)

	aboutMenu := fyne.NewMenu("About",
		fyne.NewMenuItem("About Go Deck Studio", func() {
			dialog.ShowInformation("Go Deck Studio",
				"Go Deck Studio "+version.String()+"\nA slide deck editor.", w)
		}),
	)

	mainMenu = fyne.NewMainMenu(fileMenu, editMenu, slideMenu, insertMenu, exportMenu, presentMenu, aboutMenu)
	w.SetMainMenu(mainMenu)

	// Global shortcuts; entries keep their own clipboard handling when focused.
	addShortcut := func(key fyne.KeyName, mod fyne.KeyModifier, fn func()) {
		w.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: key, Modifier: mod}, func(fyne.Shortcut) { fn() })
	}
	addShortcut(fyne.KeyZ, fyne.KeyModifierControl, doUndo)
	addShortcut(fyne.KeyY, fyne.KeyModifierControl, doRedo)
	addShortcut(fyne.KeyZ, fyne.KeyModifierControl|fyne.KeyModifierShift, doRedo)
	addShortcut(fyne.KeyC, fyne.KeyModifierControl, doCopy)
	addShortcut(fyne.KeyX, fyne.KeyModifierControl, doCut)
	addShortcut(fyne.KeyV, fyne.KeyModifierControl, doPaste)
	addShortcut(fyne.KeyD, fyne.KeyModifierControl, doDuplicate)
	addShortcut(fyne.KeyA, fyne.KeyModifierControl, func() { st.SelectAll() })
	addShortcut(fyne.KeyF, fyne.KeyModifierControl, showSearch)
	addShortcut(fyne.KeyRightBracket, fyne.KeyModifierControl, func() { sess.Indent() })
	addShortcut(fyne.KeyLeftBracket, fyne.KeyModifierControl, func() { sess.Outdent() })

	nudge := func(dx, dy float64) {
		sl := st.ActiveSlide()
		geo := map[string]domain.Rect{}
		for _, id := range st.SelectedIDs() {
			if i := sl.FindElement(id); i >= 0 {
				el := sl.Elements[i]
				x, y := geom.ClampPos(el.X+dx, el.Y+dy, el.W, el.H)
				geo[id] = domain.Rect{X: x, Y: y, W: el.W, H: el.H}
			}
		}
		st.ApplyGeometry(geo)
	}
	w.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		if step := slideKeyNav(ev.Name, st.EditMode(), st.SelectionSize()); step != 0 {
			st.SetActiveSlide(st.ActiveSlideIndex() + step)
			return
		}
		if !st.EditMode() {
			return
		}
		switch ev.Name {
		case fyne.KeyDelete, fyne.KeyBackspace:
			doDelete()
		case fyne.KeyEscape:
			ctrl.Cancel()
			st.ClearSelection()
		case fyne.KeyLeft:
			nudge(-1, 0)
		case fyne.KeyRight:
			nudge(1, 0)
		case fyne.KeyUp:
			nudge(0, -1)
		case fyne.KeyDown:
			nudge(0, 1)
		}
	})

	// Toolbar
	toolbar := widget.NewToolbar(
		widget.NewToolbarAction(theme.ContentUndoIcon(), doUndo),
		widget.NewToolbarAction(theme.ContentRedoIcon(), doRedo),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.DocumentCreateIcon(), insertText),
		widget.NewToolbarAction(theme.RadioButtonIcon(), insertEllipse),
		widget.NewToolbarAction(theme.CheckButtonIcon(), insertRect),
		widget.NewToolbarAction(theme.ContentAddIcon(), insertLine),
		widget.NewToolbarAction(theme.MediaPhotoIcon(), insertImage),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.MediaPlayIcon(), startPresent),
	)

	// Layout
	addSlideBtn := widget.NewButton("Add Slide", func() {
		endTextEdit()
		st.AddSlide()
	})
	left := container.NewBorder(
		container.NewVBox(widget.NewLabel("Slides"), widget.NewSeparator()),
		container.NewVBox(thumbPreview, addSlideBtn),
		nil, nil, slidesList)

	inspector := container.NewVBox(
		widget.NewLabel("Inspector"), widget.NewSeparator(),
		selInfo,
		widget.NewForm(
			widget.NewFormItem("Font size", fontSizeEntry),
			widget.NewFormItem("Align", alignSelect),
			widget.NewFormItem("Fill", fillEntry),
			widget.NewFormItem("Border", borderEntry),
		),
		applyStyleBtn,
		widget.NewSeparator(),
		widget.NewLabel("Text"),
		textEntry,
		container.NewHBox(indentBtn, outdentBtn, doneBtn),
		widget.NewSeparator(),
		widget.NewLabel("Notes"),
		notesEntry,
		saveNotesBtn,
	)
	right := container.NewVScroll(inspector)
	right.SetMinSize(fyne.NewSize(260, 0))

	editorContent := container.NewBorder(toolbar, status, left, right, canvasHolder)

	// Dashboard with recent decks
	var root *fyne.Container
	buildDashboard := func() fyne.CanvasObject {
		title := widget.NewLabelWithStyle("Go Deck Studio", fyne.TextAlignCenter, fyne.TextStyle{Bold: true})
		openBtn := widget.NewButton("Open Deck…", func() { openItem.Action() })
		newBtn := widget.NewButton("New Deck…", func() { newItem.Action() })
		items := []fyne.CanvasObject{title, widget.NewSeparator(), container.NewHBox(newBtn, openBtn)}
		rec := loadRecentDecks(prefs)
		if len(rec) > 0 {
			items = append(items, widget.NewLabel("Recent decks:"))
			for _, dir := range rec {
				dir := dir
				items = append(items, widget.NewButton(dir, func() {
					if oerr := openDeck(dir); oerr != nil {
						dialog.ShowError(oerr, w)
					}
				}))
			}
		}
		return container.NewCenter(container.NewVBox(items...))
	}
	root = container.NewStack()
	showEditor = func() {
		root.Objects = []fyne.CanvasObject{editorContent}
		root.Refresh()
	}
	showDashboard = func() {
		root.Objects = []fyne.CanvasObject{buildDashboard()}
		root.Refresh()
	}
	w.SetContent(root)

	w.SetCloseIntercept(func() {
		sz := w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
		stopShare()
		w.Close()
	})

	if strings.TrimSpace(deckDir) != "" {
		if oerr := openDeck(deckDir); oerr != nil {
			l.Error("open deck from argument failed", slog.Any("err", oerr))
			showDashboard()
		}
	} else {
		showDashboard()
	}

	w.ShowAndRun()
	return nil
}

// textEditEntry is the in-place editing surface for text elements. It extends
// Entry so the text session hears focus transitions and Tab indents instead
// of moving focus.
type textEditEntry struct {
	widget.Entry
	win        fyne.Window
	onFocus    func()
	onBlur     func()
	onTab      func()
	onShiftTab func()
	onEscape   func()

	shiftDown bool
}

func newTextEditEntry(win fyne.Window) *textEditEntry {
	e := &textEditEntry{win: win}
	e.MultiLine = true
	e.Wrapping = fyne.TextWrapWord
	e.SetPlaceHolder("Double-click a text element to edit…")
	e.ExtendBaseWidget(e)
	return e
}

func (e *textEditEntry) FocusGained() {
	e.Entry.FocusGained()
	if e.onFocus != nil {
		e.onFocus()
	}
}

func (e *textEditEntry) FocusLost() {
	e.Entry.FocusLost()
	if e.onBlur != nil {
		e.onBlur()
	}
}

// KeyDown/KeyUp track the shift state so Tab and Shift+Tab can be told apart
// in TypedKey, which carries no modifiers.

func (e *textEditEntry) KeyDown(ev *fyne.KeyEvent) {
	if ev.Name == desktop.KeyShiftLeft || ev.Name == desktop.KeyShiftRight {
		e.shiftDown = true
	}
	e.Entry.KeyDown(ev)
}

func (e *textEditEntry) KeyUp(ev *fyne.KeyEvent) {
	if ev.Name == desktop.KeyShiftLeft || ev.Name == desktop.KeyShiftRight {
		e.shiftDown = false
	}
	e.Entry.KeyUp(ev)
}

func (e *textEditEntry) TypedKey(ev *fyne.KeyEvent) {
	switch ev.Name {
	case fyne.KeyTab:
		if e.shiftDown && e.onShiftTab != nil {
			e.onShiftTab()
			return
		}
		if e.onTab != nil {
			e.onTab()
			return
		}
	case fyne.KeyEscape:
		if e.onEscape != nil {
			e.onEscape()
			return
		}
	}
	e.Entry.TypedKey(ev)
}

// Surface implementation for the text session.

func (e *textEditEntry) Text() string { return e.Entry.Text }

// Caret converts the entry's rune-based cursor row/column to a byte offset,
// the unit the text session's line arithmetic works in.
func (e *textEditEntry) Caret() int {
	lines := strings.Split(e.Entry.Text, "\n")
	n := 0
	for i := 0; i < e.CursorRow && i < len(lines); i++ {
		n += len(lines[i]) + 1
	}
	if e.CursorRow >= 0 && e.CursorRow < len(lines) {
		runes := []rune(lines[e.CursorRow])
		col := e.CursorColumn
		if col > len(runes) {
			col = len(runes)
		}
		n += len(string(runes[:col]))
	}
	return n
}

func (e *textEditEntry) SetCaret(n int) {
	txt := e.Entry.Text
	if n < 0 {
		n = 0
	}
	if n > len(txt) {
		n = len(txt)
	}
	row, lineStart := 0, 0
	for i := 0; i < n; i++ {
		if txt[i] == '\n' {
			row++
			lineStart = i + 1
		}
	}
	e.CursorRow = row
	e.CursorColumn = len([]rune(txt[lineStart:n]))
	e.Refresh()
}

func (e *textEditEntry) FocusCaretEnd() {
	e.win.Canvas().Focus(e)
	e.SetCaret(len(e.Entry.Text))
}

// slideKeyNav maps an arrow key to a slide step: always in viewer mode, and
// in edit mode when no element is selected (arrows then nudge the selection
// instead). Returns 0 when the key does not navigate.
func slideKeyNav(key fyne.KeyName, editMode bool, selected int) int {
	if editMode && selected > 0 {
		return 0
	}
	switch key {
	case fyne.KeyLeft, fyne.KeyUp:
		return -1
	case fyne.KeyRight, fyne.KeyDown:
		return 1
	}
	return 0
}

// deckDirName derives a filesystem-friendly directory name from a deck title.
func deckDirName(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteByte('-')
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		out = "deck"
	}
	return out
}

// Recent deck persistence for the dashboard
const recentPrefsKey = "recent.decks"
const recentMax = 10

func loadRecentDecks(p fyne.Preferences) []string {
	raw := p.StringWithFallback(recentPrefsKey, "")
	var items []string
	if strings.TrimSpace(raw) != "" {
		var tmp []string
		if err := json.Unmarshal([]byte(raw), &tmp); err == nil {
			items = tmp
		}
	}
	if items == nil {
		items = []string{}
	}
	// Filter out non-existing paths
	out := make([]string, 0, len(items))
	for _, s := range items {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, err := os.Stat(s); err == nil {
			out = append(out, s)
		}
	}
	return out
}

func saveRecentDecks(p fyne.Preferences, items []string) {
	if len(items) > recentMax {
		items = items[:recentMax]
	}
	b, _ := json.Marshal(items)
	p.SetString(recentPrefsKey, string(b))
}

func addRecentDeck(p fyne.Preferences, path string) {
	if strings.TrimSpace(path) == "" {
		return
	}
	abs, _ := filepath.Abs(path)
	rec := loadRecentDecks(p)
	out := make([]string, 0, 1+len(rec))
	out = append(out, abs)
	for _, s := range rec {
		// de-dup (case-insensitive on Windows)
		if strings.EqualFold(s, abs) {
			continue
		}
		out = append(out, s)
	}
	saveRecentDecks(p, out)
}
