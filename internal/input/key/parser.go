package key

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Parse errors
var (
	ErrEmptySpec   = errors.New("empty key specification")
	ErrInvalidSpec = errors.New("invalid key specification")
)

// specNames maps lower-cased names accepted inside "<...>" to canonical
// token names.
var specNames = map[string]string{
	"nul":       "Nul",
	"bs":        "BS",
	"backspace": "BS",
	"tab":       "Tab",
	"nl":        "NL",
	"ff":        "FF",
	"cr":        "Enter",
	"return":    "Enter",
	"enter":     "Enter",
	"esc":       "Esc",
	"escape":    "Esc",
	"space":     "Space",
	"lt":        "lt",
	"gt":        ">",
	"bslash":    "Bslash",
	"bar":       "Bar",
	"del":       "Del",
	"delete":    "Del",
	"ins":       "Insert",
	"insert":    "Insert",
	"pageup":    "PageUp",
	"pgup":      "PageUp",
	"pagedown":  "PageDown",
	"pgdn":      "PageDown",
	"end":       "End",
	"home":      "Home",
	"left":      "Left",
	"up":        "Up",
	"right":     "Right",
	"down":      "Down",

	"leftmouse":     NameLeftMouse,
	"middlemouse":   NameMiddleMouse,
	"rightmouse":    NameRightMouse,
	"leftrelease":   NameLeftRelease,
	"middlerelease": NameMiddleRelease,
	"rightrelease":  NameRightRelease,
}

// literalNames maps characters that have a fixed token name.
var literalNames = map[rune]string{
	' ':  "Space",
	'<':  "lt",
	'\\': "Bslash",
	'|':  "Bar",
}

func init() {
	for i := 1; i <= 12; i++ {
		specNames[fmt.Sprintf("f%d", i)] = fmt.Sprintf("F%d", i)
	}
}

// ParseSpec parses a key specification into canonical tokens.
//
// Supported forms, freely concatenated:
//   - Bare characters: "gg" is two "<g>" tokens, "G" is "<G>"
//   - Vim-style groups: "<C-a>", "<Esc>", "<CR>", "<S-Tab>", "<lt>"
//   - Mouse groups with click count: "<LeftMouse>", "<2-LeftMouse>"
//
// A "<" that does not open a group is the literal "<lt>".
func ParseSpec(spec string) ([]Token, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, ErrEmptySpec
	}

	var tokens []Token
	for len(spec) > 0 {
		if spec[0] == '<' {
			if end := strings.IndexByte(spec[1:], '>'); end >= 0 {
				// "<>" and "<>>" are the literal characters.
				if end == 0 {
					end = strings.IndexByte(spec[2:], '>') + 1
					if end == 0 {
						tokens = append(tokens, "<lt>")
						spec = spec[1:]
						continue
					}
				}
				tok, err := parseGroup(spec[1 : end+1])
				if err != nil {
					return nil, fmt.Errorf("parse %q: %w", spec[:end+2], err)
				}
				tokens = append(tokens, tok)
				spec = spec[end+2:]
				continue
			}
		}

		r, size := utf8.DecodeRuneInString(spec)
		if r == utf8.RuneError {
			return nil, fmt.Errorf("%w: bad utf-8 in %q", ErrInvalidSpec, spec)
		}
		tokens = append(tokens, charToken(r, ModNone))
		spec = spec[size:]
	}
	return tokens, nil
}

// parseGroup parses the inside of a "<...>" group.
func parseGroup(inner string) (Token, error) {
	if inner == "" {
		return "", ErrInvalidSpec
	}

	var mods Modifier
	count := 0
	for len(inner) > 2 && inner[1] == '-' {
		c := inner[0]
		if c >= '2' && c <= '4' {
			count = int(c - '0')
			inner = inner[2:]
			continue
		}
		mod, ok := modifierPrefixes[strings.ToLower(string(c))]
		if !ok {
			return "", fmt.Errorf("%w: unknown modifier %q", ErrInvalidSpec, string(c))
		}
		mods = mods.With(mod)
		inner = inner[2:]
	}

	var name string
	if canonical, ok := specNames[strings.ToLower(inner)]; ok {
		name = canonical
	} else if utf8.RuneCountInString(inner) == 1 {
		r, _ := utf8.DecodeRuneInString(inner)
		return withCount(charToken(r, mods), count)
	} else {
		return "", fmt.Errorf("%w: unknown key %q", ErrInvalidSpec, inner)
	}

	return withCount(Token("<"+mods.Prefix()+name+">"), count)
}

// charToken builds the token for a single character and modifiers.
func charToken(r rune, mods Modifier) Token {
	name, ok := literalNames[r]
	if !ok {
		if mods.HasCtrl() {
			r = unicode.ToLower(r)
		}
		name = string(r)
	}
	return Token("<" + mods.Prefix() + name + ">")
}

// withCount inserts the click-count fragment, which only mouse names carry.
func withCount(t Token, count int) (Token, error) {
	if count == 0 {
		return t, nil
	}
	if !t.IsMouse() {
		return "", fmt.Errorf("%w: click count on non-mouse key %s", ErrInvalidSpec, t)
	}
	mods, name, _ := t.split()
	return Token(fmt.Sprintf("<%s%d-%s>", mods.Prefix(), count, name)), nil
}

// MustParseSpec parses a key specification and panics on error.
// Use only for known-valid specs in initialization code.
func MustParseSpec(spec string) []Token {
	tokens, err := ParseSpec(spec)
	if err != nil {
		panic("invalid key specification: " + spec + ": " + err.Error())
	}
	return tokens
}

// MustParseToken parses a specification that must yield exactly one token.
func MustParseToken(spec string) Token {
	tokens := MustParseSpec(spec)
	if len(tokens) != 1 {
		panic("key specification is not a single token: " + spec)
	}
	return tokens[0]
}
