package observer

import (
	"github.com/dshills/docsurface/internal/backend"
	"github.com/dshills/docsurface/internal/event/topic"
	"github.com/dshills/docsurface/internal/view"
)

// Structured event topics.
const (
	TopicKeyDown        topic.Topic = "view.keydown"
	TopicKeyUp          topic.Topic = "view.keyup"
	TopicMouseDown      topic.Topic = "view.mousedown"
	TopicMouseUp        topic.Topic = "view.mouseup"
	TopicWheel          topic.Topic = "view.wheel"
	TopicFocus          topic.Topic = "view.focus"
	TopicBlur           topic.Topic = "view.blur"
	TopicClipboardInput topic.Topic = "view.clipboardInput"
	TopicMutations      topic.Topic = "view.mutations"
)

// Observer names used when registering with a controller.
const (
	NameKey       = "key"
	NameMouse     = "mouse"
	NameFocus     = "focus"
	NameClipboard = "clipboard"
	NameMutation  = "mutation"
)

// DomEventData is the part shared by every structured event.
type DomEventData struct {
	// Root is the name of the root the event happened in.
	Root string

	// Target is the originating node.
	Target view.Node
}

// KeyEventData is the payload of view.keydown and view.keyup.
type KeyEventData struct {
	DomEventData
	Key  backend.Key
	Rune rune
	Mod  backend.ModMask
}

// MouseEventData is the payload of the mouse topics.
type MouseEventData struct {
	DomEventData
	X, Y   int
	Button backend.MouseButton
}

// FocusEventData is the payload of view.focus and view.blur.
type FocusEventData struct {
	DomEventData
	Focused bool
}

// ClipboardInputData is the payload of view.clipboardInput.
type ClipboardInputData struct {
	DomEventData
	Text string
}

// MutationsData is the payload of view.mutations.
type MutationsData struct {
	Root    string
	Records []view.MutationRecord
}
