package key

import (
	"strings"
	"unicode/utf8"
)

// Token is the canonical string form of one normalized input event,
// e.g. "<a>", "<C-a>", "<Esc>", "<2-LeftMouse>".
//
// Grammar: "<" [S-] [A-] [C-] [M-] [N-] name ">", where the click-count
// fragment N- (2-, 3-, 4-) only appears on mouse tokens.
type Token string

// Common tokens.
const (
	TokenEsc   Token = "<Esc>"
	TokenEnter Token = "<Enter>"
	TokenTab   Token = "<Tab>"
	TokenSpace Token = "<Space>"
)

// charCodeNames maps printable-path char codes to fixed names.
var charCodeNames = map[rune]string{
	8:   "BS",
	9:   "Tab",
	10:  "NL",
	12:  "FF",
	13:  "Enter",
	27:  "Esc",
	32:  "Space",
	60:  "lt",
	92:  "Bslash",
	124: "Bar",
	127: "Del",
}

// keyCodeNames maps physical key codes to fixed names.
var keyCodeNames = map[int]string{
	8:   "BS",
	9:   "Tab",
	13:  "Enter",
	27:  "Esc",
	32:  "Space",
	33:  "PageUp",
	34:  "PageDown",
	35:  "End",
	36:  "Home",
	37:  "Left",
	38:  "Up",
	39:  "Right",
	40:  "Down",
	45:  "Insert",
	46:  "Del",
	112: "F1",
	113: "F2",
	114: "F3",
	115: "F4",
	116: "F5",
	117: "F6",
	118: "F7",
	119: "F8",
	120: "F9",
	121: "F10",
	122: "F11",
	123: "F12",
}

// Key codes for the named physical keys.
const (
	CodeBackspace = 8
	CodeTab       = 9
	CodeEnter     = 13
	CodeEscape    = 27
	CodeSpace     = 32
	CodePageUp    = 33
	CodePageDown  = 34
	CodeEnd       = 35
	CodeHome      = 36
	CodeLeft      = 37
	CodeUp        = 38
	CodeRight     = 39
	CodeDown      = 40
	CodeInsert    = 45
	CodeDelete    = 46
	CodeF1        = 112
)

// Mouse token names.
const (
	NameLeftMouse     = "LeftMouse"
	NameMiddleMouse   = "MiddleMouse"
	NameRightMouse    = "RightMouse"
	NameLeftRelease   = "LeftRelease"
	NameMiddleRelease = "MiddleRelease"
	NameRightRelease  = "RightRelease"
)

// controlNames are named tokens that are only produced by control chords.
var controlNames = map[string]bool{
	"NL": true,
	"FF": true,
}

// String returns the token text.
func (t Token) String() string {
	return string(t)
}

// IsValid returns true if the token has the "<...>" shape with a name.
func (t Token) IsValid() bool {
	_, name, _ := t.split()
	return name != ""
}

// split breaks a token into its modifiers, name and click count.
// Count is 1 when no count fragment is present.
func (t Token) split() (mods Modifier, name string, count int) {
	s := string(t)
	if len(s) < 3 || s[0] != '<' || s[len(s)-1] != '>' {
		return ModNone, "", 0
	}
	inner := s[1 : len(s)-1]
	count = 1

	for len(inner) > 2 && inner[1] == '-' {
		switch inner[0] {
		case 'S':
			mods |= ModShift
		case 'A':
			mods |= ModAlt
		case 'C':
			mods |= ModCtrl
		case 'M':
			mods |= ModMeta
		case '2', '3', '4':
			count = int(inner[0] - '0')
		default:
			return mods, inner, count
		}
		inner = inner[2:]
	}
	return mods, inner, count
}

// Modifiers returns the modifier prefixes encoded in the token.
func (t Token) Modifiers() Modifier {
	mods, _, _ := t.split()
	return mods
}

// Name returns the key name without modifiers, e.g. "a" for "<C-a>".
func (t Token) Name() string {
	_, name, _ := t.split()
	return name
}

// ClickCount returns the click count of a mouse token (1 if absent).
func (t Token) ClickCount() int {
	_, _, count := t.split()
	return count
}

// Char returns the character of an unmodified single-character token.
func (t Token) Char() (rune, bool) {
	mods, name, count := t.split()
	if mods != ModNone || count != 1 {
		return 0, false
	}
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError || size != len(name) {
		return 0, false
	}
	return r, true
}

// Digit returns the value of an unmodified decimal digit token ("<0>".."<9>").
func (t Token) Digit() (int, bool) {
	r, ok := t.Char()
	if !ok || r < '0' || r > '9' {
		return 0, false
	}
	return int(r - '0'), true
}

// IsDigit returns true for "<0>" through "<9>".
func (t Token) IsDigit() bool {
	_, ok := t.Digit()
	return ok
}

// IsControl returns true if the token was produced by a control chord:
// it carries the C- prefix, is a raw control character, or is a name
// that only control chords produce (NL, FF).
func (t Token) IsControl() bool {
	mods, name, _ := t.split()
	if mods.HasCtrl() {
		return true
	}
	if controlNames[name] {
		return true
	}
	r, size := utf8.DecodeRuneInString(name)
	return size == len(name) && r < 32
}

// IsMouse returns true for pointer tokens.
func (t Token) IsMouse() bool {
	name := t.Name()
	return strings.HasSuffix(name, "Mouse") || strings.HasSuffix(name, "Release")
}

// Join renders tokens back to back, e.g. "<g><g>".
func Join(tokens []Token) string {
	var sb strings.Builder
	for _, t := range tokens {
		sb.WriteString(string(t))
	}
	return sb.String()
}
