// Package topic provides hierarchical event names and pattern matching for
// the emitters used by the surface, the document model and the find feature.
//
// # Topic Format
//
// Topics use dot-notation to create hierarchical namespaces:
//
//	surface.keydown
//	surface.mutation
//	view.mousedown
//	document.change.data
//	markers.update.findResult:7
//
// # Wildcards
//
// Two wildcard patterns are supported:
//
//   - "*" matches exactly one segment
//   - "**" matches zero or more segments
//
// Examples:
//
//	view.*              matches view.keydown, view.focus (not view.a.b)
//	markers.**          matches markers.update.findResult:1
//	**                  matches everything
package topic
