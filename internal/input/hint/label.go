package hint

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultSymbols are the home-row keys used to spell labels.
const DefaultSymbols = "asdfjklASDFJKL"

// ErrBadSymbols is returned for a symbol set that cannot spell labels.
var ErrBadSymbols = errors.New("hint symbols need at least two distinct characters")

// ParseSymbols validates a symbol set and returns its runes.
func ParseSymbols(symbols string) ([]rune, error) {
	runes := []rune(symbols)
	if len(runes) < 2 {
		return nil, ErrBadSymbols
	}
	seen := make(map[rune]bool, len(runes))
	for _, r := range runes {
		if seen[r] {
			return nil, fmt.Errorf("%w: %q repeats %q", ErrBadSymbols, symbols, r)
		}
		if r < 32 || r == '<' || r == '>' || r == ' ' {
			return nil, fmt.Errorf("%w: %q is not a plain key", ErrBadSymbols, r)
		}
		seen[r] = true
	}
	return runes, nil
}

// Digits returns the label length needed for n targets over base symbols:
// the smallest d >= 1 with base^d >= n.
func Digits(n, base int) int {
	if base < 2 {
		return 1
	}
	d := 1
	for capacity := base; capacity < n; capacity *= base {
		d++
	}
	return d
}

// Labels spells 0..n-1 in base len(symbols), left-padded with the first
// symbol to a common length.
func Labels(n int, symbols []rune) []string {
	if n <= 0 || len(symbols) < 2 {
		return nil
	}
	base := len(symbols)
	digits := Digits(n, base)

	labels := make([]string, n)
	buf := make([]rune, digits)
	for i := range n {
		v := i
		for j := digits - 1; j >= 0; j-- {
			buf[j] = symbols[v%base]
			v /= base
		}
		labels[i] = string(buf)
	}
	return labels
}

// hasPrefix reports whether any label starts with prefix.
func hasPrefix(labels []string, prefix string) bool {
	for _, l := range labels {
		if strings.HasPrefix(l, prefix) {
			return true
		}
	}
	return false
}
