package app

import (
	"context"
	"slices"
	"unicode/utf8"

	"github.com/dshills/docsurface/internal/backend"
	"github.com/dshills/docsurface/internal/event"
	"github.com/dshills/docsurface/internal/model"
	"github.com/dshills/docsurface/internal/view"
	"github.com/dshills/docsurface/internal/view/observer"
)

// onKeyDown edits the document at the caret. Key events only reach here
// from editable roots.
func (app *Application) onKeyDown(_ context.Context, ev any) error {
	data, ok := event.Payload[observer.KeyEventData](ev)
	if !ok {
		return nil
	}
	switch data.Key {
	case backend.KeyRune:
		return app.insertText(string(data.Rune))
	case backend.KeyEnter:
		return app.insertBreak()
	case backend.KeyBackspace:
		return app.deleteBackward()
	case backend.KeyLeft:
		return app.moveCaret(func(parent *model.Element, off int) (*model.Element, int) {
			return parent, off - 1
		})
	case backend.KeyRight:
		return app.moveCaret(func(parent *model.Element, off int) (*model.Element, int) {
			return parent, off + 1
		})
	case backend.KeyHome:
		return app.moveCaret(func(parent *model.Element, _ int) (*model.Element, int) {
			return parent, 0
		})
	case backend.KeyEnd:
		return app.moveCaret(func(parent *model.Element, _ int) (*model.Element, int) {
			return parent, parent.MaxOffset()
		})
	case backend.KeyUp:
		return app.moveCaret(app.blockStep(-1))
	case backend.KeyDown:
		return app.moveCaret(app.blockStep(1))
	}
	return nil
}

func (app *Application) onClipboardInput(_ context.Context, ev any) error {
	data, ok := event.Payload[observer.ClipboardInputData](ev)
	if !ok {
		return nil
	}
	return app.insertText(data.Text)
}

// onMouseDown moves the caret to the end of the clicked block when the
// block belongs to an editable root.
func (app *Application) onMouseDown(_ context.Context, ev any) error {
	data, ok := event.Payload[observer.MouseEventData](ev)
	if !ok {
		return nil
	}
	root := app.controller.Surface().Root(data.Root)
	if root == nil || !root.IsEditable() {
		return nil
	}
	schema := app.doc.Schema()
	mapper := app.controller.Mapper()
	for el := view.ElementOf(data.Target); el != nil; el = el.Parent() {
		m := mapper.ToModel(el)
		if m != nil && schema.CheckChild(m, model.TextChild) {
			pos, err := model.PositionAt(m, m.MaxOffset())
			if err != nil {
				return err
			}
			app.caret = pos
			return nil
		}
	}
	return nil
}

func (app *Application) onWheel(_ context.Context, ev any) error {
	data, ok := event.Payload[observer.MouseEventData](ev)
	if !ok {
		return nil
	}
	if data.Button == backend.MouseWheelUp {
		app.scroll(-wheelStep)
	} else {
		app.scroll(wheelStep)
	}
	return nil
}

func (app *Application) insertText(text string) error {
	return app.doc.Change(func(w *model.Writer) error {
		pos, err := app.ensureCaret(w)
		if err != nil {
			return err
		}
		if err := w.InsertText(text, pos); err != nil {
			return err
		}
		app.caret, err = model.PositionAt(pos.Parent(), pos.Offset()+utf8.RuneCountInString(text))
		return err
	})
}

func (app *Application) insertBreak() error {
	return app.doc.Change(func(w *model.Writer) error {
		pos, err := app.ensureCaret(w)
		if err != nil {
			return err
		}
		if err := w.InsertElement(model.NewElement("softBreak", nil), pos); err != nil {
			return err
		}
		app.caret, err = model.PositionAt(pos.Parent(), pos.Offset()+1)
		return err
	})
}

func (app *Application) deleteBackward() error {
	return app.doc.Change(func(w *model.Writer) error {
		pos, err := app.ensureCaret(w)
		if err != nil || pos.Offset() == 0 {
			return err
		}
		start, err := model.PositionAt(pos.Parent(), pos.Offset()-1)
		if err != nil {
			return err
		}
		if err := w.Remove(model.NewRange(start, pos)); err != nil {
			return err
		}
		app.caret = start
		return nil
	})
}

// moveCaret moves the caret to the position computed by step, clamped to
// the target element.
func (app *Application) moveCaret(step func(parent *model.Element, off int) (*model.Element, int)) error {
	return app.doc.Change(func(w *model.Writer) error {
		pos, err := app.ensureCaret(w)
		if err != nil {
			return err
		}
		parent, off := step(pos.Parent(), pos.Offset())
		app.caret, err = model.PositionAt(parent, min(max(off, 0), parent.MaxOffset()))
		return err
	})
}

// blockStep returns a caret step to the text block delta blocks away in
// the same root, keeping the offset.
func (app *Application) blockStep(delta int) func(*model.Element, int) (*model.Element, int) {
	return func(parent *model.Element, off int) (*model.Element, int) {
		blocks := textBlocks(app.doc.Schema(), parent.Root())
		i := slices.Index(blocks, parent)
		if i < 0 || i+delta < 0 || i+delta >= len(blocks) {
			return parent, off
		}
		return blocks[i+delta], off
	}
}

// ensureCaret returns the caret, clamped to its block. A caret that no
// longer resolves to a text block moves to the end of the last block of the
// focused root; an empty root gets a new paragraph.
func (app *Application) ensureCaret(w *model.Writer) (model.Position, error) {
	schema := app.doc.Schema()
	if parent := app.caret.Parent(); parent != nil && schema.CheckChild(parent, model.TextChild) {
		return model.PositionAt(parent, min(app.caret.Offset(), parent.MaxOffset()))
	}

	focused := app.controller.Surface().Focused()
	if focused == nil || !focused.IsEditable() {
		return model.Position{}, ErrNoEditableRoot
	}
	root := app.doc.Root(focused.Name())
	if root == nil {
		return model.Position{}, ErrNoEditableRoot
	}
	if blocks := textBlocks(schema, root); len(blocks) > 0 {
		last := blocks[len(blocks)-1]
		return model.PositionAt(last, last.MaxOffset())
	}

	para := model.NewElement("paragraph", nil)
	at, err := w.CreatePositionAt(root, root.MaxOffset())
	if err != nil {
		return model.Position{}, err
	}
	if err := w.InsertElement(para, at); err != nil {
		return model.Position{}, err
	}
	return model.PositionAt(para, 0)
}

// textBlocks returns the elements under root that accept text, in document
// order.
func textBlocks(schema *model.Schema, root *model.Element) []*model.Element {
	var out []*model.Element
	var walk func(el *model.Element)
	walk = func(el *model.Element) {
		for _, c := range el.Children() {
			child, ok := c.(*model.Element)
			if !ok {
				continue
			}
			if schema.CheckChild(child, model.TextChild) {
				out = append(out, child)
				continue
			}
			walk(child)
		}
	}
	if root != nil {
		walk(root)
	}
	return out
}
