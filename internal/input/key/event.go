package key

import (
	"fmt"
	"time"
)

// Kind identifies the platform event a raw Event was captured from.
type Kind uint8

const (
	// KindKeyPress is a key event that carries the final key information
	// (printable char code and/or physical key code). It produces a token.
	KindKeyPress Kind = iota

	// KindKeyDown is a companion event that precedes a KindKeyPress.
	KindKeyDown

	// KindKeyUp is a companion event that follows a KindKeyPress.
	KindKeyUp

	// KindMouseDown is a companion event that precedes a click.
	KindMouseDown

	// KindMouseUp is a button release. It produces a release token.
	KindMouseUp

	// KindClick is a completed click. It produces a mouse token.
	KindClick

	// KindContextMenu is the platform's context-menu request (right click).
	KindContextMenu
)

// String returns the event kind name.
func (k Kind) String() string {
	switch k {
	case KindKeyPress:
		return "keypress"
	case KindKeyDown:
		return "keydown"
	case KindKeyUp:
		return "keyup"
	case KindMouseDown:
		return "mousedown"
	case KindMouseUp:
		return "mouseup"
	case KindClick:
		return "click"
	case KindContextMenu:
		return "contextmenu"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// IsLeading returns true for companion events that precede the event
// carrying their token (key down, mouse down).
func (k Kind) IsLeading() bool {
	return k == KindKeyDown || k == KindMouseDown
}

// IsMouse returns true for pointer events.
func (k Kind) IsMouse() bool {
	return k == KindMouseDown || k == KindMouseUp || k == KindClick || k == KindContextMenu
}

// Button identifies a pointer button, numbered like DOM MouseEvent.button.
type Button int8

const (
	ButtonLeft   Button = 0
	ButtonMiddle Button = 1
	ButtonRight  Button = 2
)

// Event is one raw input event as captured by the host.
//
// CharCode and KeyCode use 0 for "absent". CharCode already reflects
// Shift (it is 'B', not 'b'), while KeyCode identifies the physical key.
type Event struct {
	// Kind is the platform event type.
	Kind Kind

	// CharCode is the printable character produced by the key, if any.
	CharCode rune

	// KeyCode is the physical key code, if any.
	KeyCode int

	// Modifiers holds the modifier flags active for the event.
	Modifiers Modifier

	// Button is the pointer button for mouse events.
	Button Button

	// Detail is the platform click count (1 single, 2 double, ...).
	Detail int

	// Replayed marks an event the engine has already handed back for
	// redispatch. Replayed events bypass the engine.
	Replayed bool

	// Payload is host data carried through buffering and replay untouched.
	Payload any

	// Timestamp is when the event occurred.
	Timestamp time.Time
}

// NewKeyPress creates a key press event with the current timestamp.
func NewKeyPress(charCode rune, keyCode int, mods Modifier) Event {
	return Event{
		Kind:      KindKeyPress,
		CharCode:  charCode,
		KeyCode:   keyCode,
		Modifiers: mods,
		Timestamp: time.Now(),
	}
}

// NewCharEvent creates a key press event for a printable character.
func NewCharEvent(r rune, mods Modifier) Event {
	return NewKeyPress(r, 0, mods)
}

// NewKeyCodeEvent creates a key press event for a physical key without a
// printable character.
func NewKeyCodeEvent(code int, mods Modifier) Event {
	return NewKeyPress(0, code, mods)
}

// NewClick creates a click event for the given button and click count.
func NewClick(button Button, detail int, mods Modifier) Event {
	return Event{
		Kind:      KindClick,
		Button:    button,
		Detail:    detail,
		Modifiers: mods,
		Timestamp: time.Now(),
	}
}

// GoString implements fmt.GoStringer for debugging.
func (e Event) GoString() string {
	if e.Kind.IsMouse() {
		return fmt.Sprintf("Event{Kind: %s, Button: %d, Detail: %d, Modifiers: %d}",
			e.Kind, e.Button, e.Detail, e.Modifiers)
	}
	return fmt.Sprintf("Event{Kind: %s, CharCode: %q, KeyCode: %d, Modifiers: %d}",
		e.Kind, e.CharCode, e.KeyCode, e.Modifiers)
}
