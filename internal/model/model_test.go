package model

import (
	"testing"
)

// newTestDoc builds a document with root "main":
//
//	<paragraph>ab<softBreak/>cd</paragraph><paragraph>xyz</paragraph>
func newTestDoc(t *testing.T) (*Document, *Element) {
	t.Helper()
	d := NewDocument(nil)
	root, err := LoadPlainText(d, "main", "ab\ncd\n\nxyz")
	if err != nil {
		t.Fatalf("LoadPlainText() failed: %v", err)
	}
	return d, root
}

func paragraph(t *testing.T, root *Element, i int) *Element {
	t.Helper()
	p, ok := root.Child(i).(*Element)
	if !ok {
		t.Fatalf("root child %d is not an element", i)
	}
	return p
}

func mustPosition(t *testing.T, parent *Element, offset int) Position {
	t.Helper()
	p, err := PositionAt(parent, offset)
	if err != nil {
		t.Fatalf("PositionAt(%d) failed: %v", offset, err)
	}
	return p
}
