package model

import (
	"strings"
)

// LoadPlainText appends the paragraphs of text to the named root, creating
// the root when it does not exist. Blank lines separate paragraphs; a
// single newline inside a paragraph becomes a softBreak.
func LoadPlainText(d *Document, rootName, text string) (*Element, error) {
	root := d.Root(rootName)
	if root == nil {
		var err error
		if root, err = d.CreateRoot(rootName); err != nil {
			return nil, err
		}
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return root, nil
	}

	err := d.Change(func(w *Writer) error {
		for _, block := range strings.Split(text, "\n\n") {
			para := NewElement("paragraph", nil)
			for i, line := range strings.Split(block, "\n") {
				if i > 0 {
					brk := NewElement("softBreak", nil)
					brk.parent = para
					para.children = append(para.children, brk)
				}
				if line != "" {
					t := NewText(line, nil)
					t.parent = para
					para.children = append(para.children, t)
				}
			}
			pos, err := w.CreatePositionAt(root, root.MaxOffset())
			if err != nil {
				return err
			}
			if err := w.InsertElement(para, pos); err != nil {
				return err
			}
		}
		return nil
	})
	return root, err
}

// PlainText serializes a root back to text, the inverse of LoadPlainText.
// Text-bearing elements become paragraphs; containers are descended into.
func (d *Document) PlainText(rootName string) (string, error) {
	root := d.Root(rootName)
	if root == nil {
		return "", ErrNoSuchRoot
	}

	var blocks []string
	var walk func(e *Element)
	walk = func(e *Element) {
		for _, c := range e.children {
			child, ok := c.(*Element)
			if !ok {
				continue
			}
			if d.schema.CheckChild(child, TextChild) {
				blocks = append(blocks, d.inlineText(child))
				continue
			}
			walk(child)
		}
	}
	walk(root)
	return strings.Join(blocks, "\n\n"), nil
}

func (d *Document) inlineText(e *Element) string {
	var sb strings.Builder
	for _, c := range e.children {
		switch n := c.(type) {
		case *Text:
			sb.WriteString(n.data)
		case *Element:
			if role, _ := d.schema.RoleOf(n); role == RoleSoftBreak {
				sb.WriteByte('\n')
			}
		}
	}
	return sb.String()
}
