package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dshills/docsurface/internal/backend"
	"github.com/dshills/docsurface/internal/config"
	"github.com/dshills/docsurface/internal/find"
	"github.com/dshills/docsurface/internal/view"
)

// wheelStep is the number of lines scrolled per wheel notch.
const wheelStep = 3

// reloadEvent is posted by the config watcher as an interrupt payload.
type reloadEvent struct {
	config *config.Config
	err    error
}

type promptKind int

const (
	promptFind promptKind = iota + 1
	promptReplace
)

// prompt collects a query or replacement typed on the status line.
type prompt struct {
	kind promptKind
	text []rune
}

func (p *prompt) label() string {
	if p.kind == promptReplace {
		return "replace: "
	}
	return "find: "
}

// eventLoop is the main application loop. Backend events are polled on a
// separate goroutine and handled here one at a time. The poller exits once
// the backend is shut down.
func (app *Application) eventLoop(b backend.Backend) error {
	events := make(chan backend.Event)
	quit := make(chan struct{})
	defer close(quit)
	go func() {
		for {
			ev := b.PollEvent()
			select {
			case events <- ev:
			case <-quit:
				return
			}
			if ev.Type == backend.EventNone {
				return
			}
		}
	}()

	for {
		select {
		case <-app.done:
			return nil
		case ev := <-events:
			if ev.Type == backend.EventNone {
				return nil
			}
			start := time.Now()
			err := app.handleBackendEvent(ev)
			if errors.Is(err, ErrQuit) {
				return nil
			}
			app.metrics.RecordEvent(time.Since(start), err != nil)
			if err != nil {
				app.logger.Warn("event failed", "type", ev.Type, "error", err)
				app.message = err.Error()
			}
			app.refresh()
		}
	}
}

// refresh rebuilds the surface from the document and paints it.
func (app *Application) refresh() {
	start := time.Now()
	if err := app.controller.Render(); err != nil {
		app.logger.Warn("render failed", "error", err)
	}
	if app.painter != nil {
		app.painter.Paint(app.controller.Surface().Roots())
	}
	app.metrics.RecordFrame(time.Since(start))
}

// handleBackendEvent processes a backend event and routes it appropriately.
// Returns ErrQuit if the application should exit.
func (app *Application) handleBackendEvent(ev backend.Event) error {
	switch ev.Type {
	case backend.EventResize:
		// The painter reads the size on every paint.
		return nil
	case backend.EventKey:
		return app.handleKeyEvent(ev)
	case backend.EventMouse:
		return app.handleMouseEvent(ev)
	case backend.EventPaste:
		return app.handlePasteEvent(ev)
	case backend.EventFocus:
		return app.handleFocusEvent(ev)
	case backend.EventInterrupt:
		if r, ok := ev.Data.(reloadEvent); ok {
			app.applyReload(r)
		}
		return nil
	default:
		return nil
	}
}

// handleKeyEvent runs the application bindings. Other keys are dispatched
// to the focused root as keydown.
func (app *Application) handleKeyEvent(ev backend.Event) error {
	if ev.Key == backend.KeyCtrlQ || ev.Key == backend.KeyCtrlC {
		return ErrQuit
	}
	app.message = ""
	if app.prompt != nil {
		return app.handlePromptKey(ev)
	}

	switch ev.Key {
	case backend.KeyCtrlF:
		app.prompt = &prompt{kind: promptFind}
		return nil
	case backend.KeyCtrlR:
		if app.session.Highlighted() == nil {
			return ErrNoHighlight
		}
		app.prompt = &prompt{kind: promptReplace}
		return nil
	case backend.KeyCtrlN:
		app.session.Next()
		return nil
	case backend.KeyCtrlP:
		app.session.Previous()
		return nil
	case backend.KeyEscape:
		return app.session.Clear()
	case backend.KeyPageUp:
		app.scroll(-pageLines(app.backend))
		return nil
	case backend.KeyPageDown:
		app.scroll(pageLines(app.backend))
		return nil
	}

	root := app.controller.Surface().Focused()
	if root == nil {
		return nil
	}
	return app.controller.Surface().Dispatch(view.RawEvent{
		Type:   view.RawKeyDown,
		Target: root.Element(),
		Key:    ev.Key,
		Rune:   ev.Rune,
		Mod:    ev.Mod,
	})
}

// handlePromptKey edits the status line prompt.
func (app *Application) handlePromptKey(ev backend.Event) error {
	p := app.prompt
	switch ev.Key {
	case backend.KeyEscape:
		app.prompt = nil
	case backend.KeyBackspace:
		if len(p.text) > 0 {
			p.text = p.text[:len(p.text)-1]
		}
	case backend.KeyRune:
		p.text = append(p.text, ev.Rune)
	case backend.KeyEnter:
		app.prompt = nil
		if p.kind == promptReplace {
			return app.replaceHighlighted(string(p.text))
		}
		return app.search(string(p.text))
	case backend.KeyTab:
		if p.kind == promptReplace {
			app.prompt = nil
			n, err := app.session.ReplaceAll(string(p.text))
			app.message = fmt.Sprintf("%d replaced", n)
			return err
		}
	}
	return nil
}

// search starts a new find session for query.
func (app *Application) search(query string) error {
	m, err := find.TextMatcher(query, app.findOptions())
	if err != nil {
		return err
	}
	res, err := app.session.Find(m)
	if res != nil {
		app.message = fmt.Sprintf("%d matches", res.Len())
	}
	return err
}

func (app *Application) replaceHighlighted(text string) error {
	rec := app.session.Highlighted()
	if rec == nil {
		return ErrNoHighlight
	}
	return app.session.Replace(rec, text)
}

// handleMouseEvent resolves the painted node under the pointer and
// dispatches the event to its root. A press also focuses that root.
func (app *Application) handleMouseEvent(ev backend.Event) error {
	if app.painter == nil {
		return nil
	}
	target := app.painter.HitTest(ev.MouseX, ev.MouseY)
	if target == nil {
		return nil
	}

	raw := view.RawEvent{
		Target: target,
		X:      ev.MouseX,
		Y:      ev.MouseY,
		Button: ev.MouseButton,
	}
	switch {
	case ev.MouseButton.IsWheel():
		raw.Type = view.RawWheel
	case ev.Released:
		raw.Type = view.RawMouseUp
	default:
		raw.Type = view.RawMouseDown
		if el := view.ElementOf(target); el != nil && el.Root() != nil {
			if err := app.controller.Surface().Focus(el.Root().Name()); err != nil {
				return err
			}
		}
	}
	return app.controller.Surface().Dispatch(raw)
}

// handlePasteEvent dispatches pasted text to the focused root.
func (app *Application) handlePasteEvent(ev backend.Event) error {
	root := app.controller.Surface().Focused()
	if root == nil || ev.PasteText == "" {
		return nil
	}
	return app.controller.Surface().Dispatch(view.RawEvent{
		Type:   view.RawPaste,
		Target: root.Element(),
		Text:   ev.PasteText,
	})
}

// handleFocusEvent reports terminal focus changes as focus and blur on the
// focused root.
func (app *Application) handleFocusEvent(ev backend.Event) error {
	root := app.controller.Surface().Focused()
	if root == nil {
		return nil
	}
	t := view.RawBlur
	if ev.Focused {
		t = view.RawFocus
	}
	return app.controller.Surface().Dispatch(view.RawEvent{Type: t, Target: root.Element()})
}

// applyReload swaps in a reloaded configuration. Only the theme and the
// terminal modes take effect without a restart.
func (app *Application) applyReload(r reloadEvent) {
	if r.err != nil {
		app.logger.Warn("config reload failed", "error", r.err)
		app.message = "config: " + r.err.Error()
		return
	}
	app.config = r.config
	if app.painter != nil {
		app.painter.SetTheme(themeFrom(r.config.Theme))
	}
	if b := app.backend; b != nil {
		if r.config.Surface.Mouse {
			b.EnableMouse()
		} else {
			b.DisableMouse()
		}
		if r.config.Surface.Paste {
			b.EnablePaste()
		} else {
			b.DisablePaste()
		}
	}
	app.logger.Info("config reloaded")
	app.message = "config reloaded"
}

func (app *Application) scroll(n int) {
	if app.painter != nil {
		app.painter.ScrollBy(n)
	}
}

func pageLines(b backend.Backend) int {
	if b == nil {
		return 1
	}
	_, h := b.Size()
	return max(h-2, 1)
}

// status supplies the status line of each rendered root.
func (app *Application) status(root string) string {
	if p := app.prompt; p != nil {
		return p.label() + string(p.text)
	}

	parts := []string{root}
	if app.session != nil && app.session.Active() {
		results := app.session.Results()
		if cur := app.session.Highlighted(); cur != nil {
			parts = append(parts, fmt.Sprintf("%d/%d %s", results.GetIndex(cur)+1, results.Len(), cur.Label))
		} else {
			parts = append(parts, fmt.Sprintf("%d matches", results.Len()))
		}
	}
	if app.message != "" {
		parts = append(parts, app.message)
	}
	return strings.Join(parts, "  ")
}
