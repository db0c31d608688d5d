package key

import "strings"

// Modifier is the set of modifier keys held during an event.
type Modifier uint8

const (
	ModNone  Modifier = 0
	ModShift Modifier = 1 << (iota - 1)
	ModAlt
	ModCtrl
	// ModMeta is Cmd on macOS and the Windows key elsewhere.
	ModMeta
)

// prefixOrder is the canonical order of modifier prefixes in a token.
var prefixOrder = []struct {
	mod    Modifier
	prefix string
}{
	{ModShift, "S-"},
	{ModAlt, "A-"},
	{ModCtrl, "C-"},
	{ModMeta, "M-"},
}

// modifierPrefixes maps the letter of a spec prefix, lower-cased, to its
// modifier. "D" is accepted for Meta as in Vim.
var modifierPrefixes = map[string]Modifier{
	"s": ModShift,
	"a": ModAlt,
	"c": ModCtrl,
	"m": ModMeta,
	"d": ModMeta,
}

// Has reports whether any of mod is set.
func (m Modifier) Has(mod Modifier) bool { return m&mod != 0 }

func (m Modifier) HasShift() bool { return m.Has(ModShift) }
func (m Modifier) HasAlt() bool   { return m.Has(ModAlt) }
func (m Modifier) HasCtrl() bool  { return m.Has(ModCtrl) }
func (m Modifier) HasMeta() bool  { return m.Has(ModMeta) }

// With returns m plus mod.
func (m Modifier) With(mod Modifier) Modifier { return m | mod }

// Without returns m minus mod.
func (m Modifier) Without(mod Modifier) Modifier { return m &^ mod }

// Prefix renders m in token form, e.g. "S-C-" for Shift+Ctrl.
func (m Modifier) Prefix() string {
	var sb strings.Builder
	for _, p := range prefixOrder {
		if m.Has(p.mod) {
			sb.WriteString(p.prefix)
		}
	}
	return sb.String()
}
