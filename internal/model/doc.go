// Package model provides the structured document that the surface renders
// and the find feature scans.
//
// # Tree
//
// A document has one or more named roots. Each root is an Element whose
// children are Elements and Text nodes. Offsets inside an element count a
// text node as one offset per rune and any child element as exactly one
// offset:
//
//	<paragraph>ab<softBreak/>cd</paragraph>
//	 offsets:   0 1 2         3 4 5
//
// # Positions
//
// A Position is a root plus a path of offsets, one per ancestor level. The
// position [1, 3] is offset 3 inside the element at offset 1 of the root.
// Positions compare in document order.
//
// # Changes
//
// All mutations go through Document.Change:
//
//	err := doc.Change(func(w *model.Writer) error {
//	    start, _ := w.CreatePositionAt(paragraph, 0)
//	    end, _ := w.CreatePositionAt(paragraph, 3)
//	    _, err := w.AddMarker("findResult:1", model.MarkerOptions{
//	        Range: w.CreateRange(start, end),
//	    })
//	    return err
//	})
//
// Change blocks nest: an inner Change joins the outer one. Document events
// (document.change.data and markers.update.<name>) are fired once, after
// the outermost block returns, so outside code never sees a half-applied
// change.
//
// # Markers
//
// Markers are named live ranges. Insertions and removals made through a
// Writer transform every marker. Content removed from under a marker
// collapses it; the marker stays registered until its owner removes it.
//
// # Thread Safety
//
// Document is not safe for concurrent use. All reads and changes happen on
// the editor loop.
package model
