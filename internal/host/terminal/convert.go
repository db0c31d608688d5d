package terminal

import (
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/modalkeys/internal/input/key"
)

// Default click detection thresholds.
const (
	DefaultDoubleClickTime     = 400 * time.Millisecond
	DefaultDoubleClickDistance = 1
)

// Position is a screen cell. Converted events carry the position of the
// pointer, or of the cursor for key events, as their payload.
type Position struct {
	X, Y int
}

// Distance returns the Manhattan distance to other.
func (p Position) Distance(other Position) int {
	return abs(p.X-other.X) + abs(p.Y-other.Y)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// clickTracker counts consecutive clicks at the same spot.
type clickTracker struct {
	maxTime     time.Duration
	maxDistance int

	lastButton key.Button
	lastPos    Position
	lastTime   time.Time
	lastCount  int
}

func newClickTracker(maxTime time.Duration, maxDistance int) *clickTracker {
	return &clickTracker{
		maxTime:     maxTime,
		maxDistance: maxDistance,
	}
}

// record returns the click count of a click, 1 to 4. A fifth click
// starts over at 1.
func (t *clickTracker) record(button key.Button, pos Position, when time.Time) int {
	if when.IsZero() {
		when = time.Now()
	}

	if t.continues(button, pos, when) {
		t.lastCount++
		if t.lastCount > 4 {
			t.lastCount = 1
		}
	} else {
		t.lastCount = 1
	}

	t.lastButton = button
	t.lastPos = pos
	t.lastTime = when
	return t.lastCount
}

func (t *clickTracker) continues(button key.Button, pos Position, when time.Time) bool {
	if t.lastCount == 0 || button != t.lastButton {
		return false
	}
	elapsed := when.Sub(t.lastTime)
	if elapsed < 0 || elapsed > t.maxTime {
		return false
	}
	return pos.Distance(t.lastPos) <= t.maxDistance
}

func (t *clickTracker) reset() {
	t.lastCount = 0
	t.lastTime = time.Time{}
	t.lastPos = Position{}
}

// Converter turns tcell events into raw key events.
//
// Terminals report button state, not presses, so the converter keeps the
// held button and synthesizes mousedown, mouseup and click (contextmenu
// for the right button) from the transitions.
type Converter struct {
	clicks *clickTracker

	held    key.Button
	holding bool
	now     func() time.Time
}

// NewConverter creates a converter with the default click thresholds.
func NewConverter() *Converter {
	return &Converter{
		clicks: newClickTracker(DefaultDoubleClickTime, DefaultDoubleClickDistance),
		now:    time.Now,
	}
}

// Convert converts ev. It returns nil for events that are not input
// (resize, focus, interrupts) and for the wheel.
func (c *Converter) Convert(ev tcell.Event) []key.Event {
	switch e := ev.(type) {
	case *tcell.EventKey:
		if kev, ok := c.Key(e); ok {
			return []key.Event{kev}
		}
	case *tcell.EventMouse:
		return c.Mouse(e)
	}
	return nil
}

// Key converts a key event. Plain and Alt characters keep their rune,
// Ctrl+letter becomes the lower-case letter with Ctrl, the remaining
// control keys keep their control char code, and everything else maps
// to a physical key code.
func (c *Converter) Key(e *tcell.EventKey) (key.Event, bool) {
	mods := convertMod(e.Modifiers())
	k := e.Key()

	var ev key.Event
	switch {
	case k == tcell.KeyRune:
		ev = key.NewCharEvent(e.Rune(), mods)
	case k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ && mods.HasCtrl():
		ev = key.NewCharEvent(rune('a'+(k-tcell.KeyCtrlA)), mods)
	case k == tcell.KeyNUL:
		ev = key.NewKeyCodeEvent(key.CodeSpace, mods|key.ModCtrl)
	case k == tcell.KeyBackspace || k == tcell.KeyBackspace2:
		ev = key.NewKeyCodeEvent(key.CodeBackspace, mods.Without(key.ModCtrl))
	case k == tcell.KeyBacktab:
		ev = key.NewKeyCodeEvent(key.CodeTab, mods|key.ModShift)
	case k < 32:
		ev = key.NewCharEvent(rune(k), mods)
	default:
		code, ok := keyCodes[k]
		if !ok {
			return key.Event{}, false
		}
		ev = key.NewKeyCodeEvent(code, mods)
	}
	ev.Timestamp = c.timestamp(e.When())
	return ev, true
}

// Mouse converts button transitions. Wheel-only events yield nothing.
func (c *Converter) Mouse(e *tcell.EventMouse) []key.Event {
	x, y := e.Position()
	pos := Position{X: x, Y: y}
	mods := convertMod(e.Modifiers())
	when := c.timestamp(e.When())

	button, pressed := convertButton(e.Buttons())

	mouse := func(kind key.Kind, b key.Button, detail int) key.Event {
		return key.Event{
			Kind:      kind,
			Button:    b,
			Detail:    detail,
			Modifiers: mods,
			Payload:   pos,
			Timestamp: when,
		}
	}

	switch {
	case pressed && !c.holding:
		c.held, c.holding = button, true
		return []key.Event{mouse(key.KindMouseDown, button, 0)}

	case pressed && button != c.held:
		// Another button replaced the held one without a release report.
		released := c.held
		c.held = button
		return []key.Event{
			mouse(key.KindMouseUp, released, 0),
			mouse(key.KindMouseDown, button, 0),
		}

	case !pressed && c.holding:
		released := c.held
		c.holding = false
		count := c.clicks.record(released, pos, when)
		up := mouse(key.KindMouseUp, released, 0)
		if released == key.ButtonRight {
			return []key.Event{up, mouse(key.KindContextMenu, released, count)}
		}
		return []key.Event{up, mouse(key.KindClick, released, count)}
	}
	return nil
}

// Wheel returns the scroll direction of a wheel event: -1 up, 1 down,
// 0 for none.
func Wheel(e *tcell.EventMouse) (dx, dy int) {
	b := e.Buttons()
	switch {
	case b&tcell.WheelUp != 0:
		dy = -1
	case b&tcell.WheelDown != 0:
		dy = 1
	}
	switch {
	case b&tcell.WheelLeft != 0:
		dx = -1
	case b&tcell.WheelRight != 0:
		dx = 1
	}
	return dx, dy
}

func (c *Converter) timestamp(when time.Time) time.Time {
	if when.IsZero() {
		return c.now()
	}
	return when
}

var keyCodes = map[tcell.Key]int{
	tcell.KeyPgUp:   key.CodePageUp,
	tcell.KeyPgDn:   key.CodePageDown,
	tcell.KeyEnd:    key.CodeEnd,
	tcell.KeyHome:   key.CodeHome,
	tcell.KeyLeft:   key.CodeLeft,
	tcell.KeyUp:     key.CodeUp,
	tcell.KeyRight:  key.CodeRight,
	tcell.KeyDown:   key.CodeDown,
	tcell.KeyInsert: key.CodeInsert,
	tcell.KeyDelete: key.CodeDelete,
	tcell.KeyF1:     key.CodeF1,
	tcell.KeyF2:     key.CodeF1 + 1,
	tcell.KeyF3:     key.CodeF1 + 2,
	tcell.KeyF4:     key.CodeF1 + 3,
	tcell.KeyF5:     key.CodeF1 + 4,
	tcell.KeyF6:     key.CodeF1 + 5,
	tcell.KeyF7:     key.CodeF1 + 6,
	tcell.KeyF8:     key.CodeF1 + 7,
	tcell.KeyF9:     key.CodeF1 + 8,
	tcell.KeyF10:    key.CodeF1 + 9,
	tcell.KeyF11:    key.CodeF1 + 10,
	tcell.KeyF12:    key.CodeF1 + 11,
}

func convertMod(m tcell.ModMask) key.Modifier {
	var result key.Modifier
	if m&tcell.ModShift != 0 {
		result |= key.ModShift
	}
	if m&tcell.ModCtrl != 0 {
		result |= key.ModCtrl
	}
	if m&tcell.ModAlt != 0 {
		result |= key.ModAlt
	}
	if m&tcell.ModMeta != 0 {
		result |= key.ModMeta
	}
	return result
}

// convertButton returns the first pressed button of a tcell mask.
// tcell numbers the secondary (right) button 2 and the middle button 3.
func convertButton(b tcell.ButtonMask) (key.Button, bool) {
	switch {
	case b&tcell.Button1 != 0:
		return key.ButtonLeft, true
	case b&tcell.Button3 != 0:
		return key.ButtonMiddle, true
	case b&tcell.Button2 != 0:
		return key.ButtonRight, true
	}
	return 0, false
}
