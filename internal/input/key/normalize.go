package key

import (
	"strings"
	"unicode"
)

// normalized is the intermediate form of a raw event on its way to a token.
type normalized struct {
	mods Modifier

	// shifted is set when Shift was already applied to the char code.
	shifted bool

	// controlled is set when the char code itself encodes Ctrl (code < 32).
	controlled bool

	// count is the click-count prefix for mouse tokens (0 or 1 for none).
	count int

	name string
}

// Normalize converts a raw event into its canonical token.
// It returns false when no token can be derived; the event must then be
// passed to the host untouched.
func Normalize(ev Event) (Token, bool) {
	var n normalized
	var ok bool

	switch ev.Kind {
	case KindKeyPress:
		n, ok = normalizeKey(ev)
	case KindClick:
		n, ok = normalizeClick(ev.Button, ev.Detail)
	case KindContextMenu:
		n, ok = normalizeClick(ButtonRight, ev.Detail)
	case KindMouseUp:
		n, ok = normalizeRelease(ev.Button)
	default:
		return "", false
	}
	if !ok {
		return "", false
	}
	n.mods = ev.Modifiers
	return n.token(), true
}

func normalizeKey(ev Event) (normalized, bool) {
	if ev.CharCode != 0 {
		n := normalized{
			shifted:    ev.Modifiers.HasShift(),
			controlled: ev.CharCode < 32,
		}
		if name, ok := charCodeNames[ev.CharCode]; ok {
			n.name = name
		} else {
			n.name = string(ev.CharCode)
		}
		return n, true
	}

	if ev.KeyCode != 0 {
		if name, ok := keyCodeNames[ev.KeyCode]; ok {
			return normalized{name: name}, true
		}
		if (ev.KeyCode >= '0' && ev.KeyCode <= '9') || (ev.KeyCode >= 'A' && ev.KeyCode <= 'Z') {
			return normalized{name: string(unicode.ToLower(rune(ev.KeyCode)))}, true
		}
	}
	return normalized{}, false
}

func normalizeClick(button Button, detail int) (normalized, bool) {
	var name string
	switch button {
	case ButtonLeft:
		name = NameLeftMouse
	case ButtonMiddle:
		name = NameMiddleMouse
	case ButtonRight:
		name = NameRightMouse
	default:
		return normalized{}, false
	}
	n := normalized{name: name}
	if detail >= 2 && detail <= 4 {
		n.count = detail
	}
	return n, true
}

func normalizeRelease(button Button) (normalized, bool) {
	switch button {
	case ButtonLeft:
		return normalized{name: NameLeftRelease}, true
	case ButtonMiddle:
		return normalized{name: NameMiddleRelease}, true
	case ButtonRight:
		return normalized{name: NameRightRelease}, true
	default:
		return normalized{}, false
	}
}

func (n normalized) token() Token {
	mods := n.mods
	if n.shifted {
		mods = mods.Without(ModShift)
	}
	if n.controlled {
		mods = mods.Without(ModCtrl)
	}

	var sb strings.Builder
	sb.WriteByte('<')
	sb.WriteString(mods.Prefix())
	if n.count > 1 {
		sb.WriteByte(byte('0' + n.count))
		sb.WriteByte('-')
	}
	sb.WriteString(n.name)
	sb.WriteByte('>')
	return Token(sb.String())
}
