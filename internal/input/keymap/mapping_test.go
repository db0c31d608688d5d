package keymap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/modalkeys/internal/input/key"
)

func TestSingle(t *testing.T) {
	m := NewSingle("x", "<x>", nil)
	assert.Equal(t, StateStart, m.State())

	assert.Equal(t, StateAccept, m.Next("<x>"))
	assert.Equal(t, StateReject, m.Next("<x>"), "terminal state rejects further input")

	m.Reset()
	assert.Equal(t, StateReject, m.Next("<y>"))
	assert.Equal(t, "<x>", m.Pattern())
	assert.False(t, m.Repeated())
	assert.True(t, m.WithRepeat().Repeated())
}

func TestSequence(t *testing.T) {
	m := NewSequence("top", []key.Token{"<g>", "<g>"}, nil)

	assert.Equal(t, StateContinue, m.Next("<g>"))
	assert.Equal(t, StateAccept, m.Next("<g>"))
	assert.Equal(t, StateReject, m.Next("<g>"))

	m.Reset()
	assert.Equal(t, StateContinue, m.Next("<g>"))
	assert.Equal(t, StateReject, m.Next("<x>"))

	m.Reset()
	assert.Equal(t, StateReject, m.Next("<x>"))
	assert.Equal(t, "<g><g>", m.Pattern())
}

func TestSequence_Long(t *testing.T) {
	m := NewSequence("abc", []key.Token{"<a>", "<b>", "<c>"}, nil)
	assert.Equal(t, StateContinue, m.Next("<a>"))
	assert.Equal(t, StateContinue, m.Next("<b>"))
	assert.Equal(t, StateAccept, m.Next("<c>"))
}

func TestSequence_Empty(t *testing.T) {
	m := NewSequence("empty", nil, nil)
	assert.Equal(t, StateReject, m.Next("<a>"))
}

func TestCount(t *testing.T) {
	reg := NewCountRegister(0)
	m := NewCount()
	m.register = reg

	assert.Equal(t, StateContinue, m.Next("<4>"))
	assert.Equal(t, "4", reg.String())
	assert.Equal(t, StateContinue, m.Next("<0>"))
	assert.Equal(t, StateContinue, m.Next("<2>"))
	assert.Equal(t, "402", reg.String())
	assert.Equal(t, StateAccept, m.Next("<j>"))
	assert.Equal(t, key.Token("<j>"), m.Ending())
	assert.Equal(t, StateReject, m.Next("<1>"))

	m.Reset()
	assert.Empty(t, m.Ending())
	assert.Equal(t, "402", reg.String(), "reset leaves the register to the mapper")
}

func TestCount_ZeroFirstRejects(t *testing.T) {
	reg := NewCountRegister(0)
	m := NewCount()
	m.register = reg

	assert.Equal(t, StateReject, m.Next("<0>"))
	assert.Equal(t, "1", reg.String())
}

func TestCount_NonDigitFirstRejects(t *testing.T) {
	m := NewCount()
	for _, tok := range []key.Token{"<a>", "<C-1>", "<Esc>", "<2-LeftMouse>"} {
		m.Reset()
		assert.Equal(t, StateReject, m.Next(tok), "token %s", tok)
	}
}

func TestCustom(t *testing.T) {
	var seen [][]key.Token
	pred := func(seq []key.Token) MatchState {
		seen = append(seen, append([]key.Token(nil), seq...))
		if len(seq) < 3 {
			return StateContinue
		}
		return StateAccept
	}
	m := NewCustom("three", pred, nil).WithPattern("<any><any><any>")

	assert.Equal(t, StateContinue, m.Next("<a>"))
	assert.Equal(t, StateContinue, m.Next("<b>"))
	assert.Equal(t, StateAccept, m.Next("<c>"))
	assert.Equal(t, []key.Token{"<a>", "<b>", "<c>"}, m.Consumed())
	require.Len(t, seen, 3)
	assert.Equal(t, []key.Token{"<a>", "<b>"}, seen[1])
	assert.Equal(t, "<any><any><any>", m.Pattern())

	m.Reset()
	assert.Empty(t, m.Consumed())
	assert.Equal(t, StateStart, m.State())
}

func TestCustom_StartIsReject(t *testing.T) {
	m := NewCustom("bad", func([]key.Token) MatchState { return StateStart }, nil)
	assert.Equal(t, StateReject, m.Next("<a>"))
}

func TestCustom_NilPredicate(t *testing.T) {
	m := NewCustom("nil", nil, nil)
	assert.Equal(t, StateReject, m.Next("<a>"))
}

func TestReset_Idempotent(t *testing.T) {
	mappings := []Mapping{
		NewSingle("a", "<a>", nil),
		NewSequence("ab", []key.Token{"<a>", "<b>"}, nil),
		NewCount(),
		NewCustom("c", func([]key.Token) MatchState { return StateContinue }, nil),
	}

	for _, m := range mappings {
		t.Run(m.Name(), func(t *testing.T) {
			m.Next("<a>")
			m.Reset()
			once := m.State()
			m.Reset()
			assert.Equal(t, once, m.State())
			assert.Equal(t, StateStart, m.State())
		})
	}
}

func TestMatchState_String(t *testing.T) {
	assert.Equal(t, "start", StateStart.String())
	assert.Equal(t, "continue", StateContinue.String())
	assert.Equal(t, "accept", StateAccept.String())
	assert.Equal(t, "reject", StateReject.String())
	assert.True(t, StateAccept.IsTerminal())
	assert.False(t, StateContinue.IsTerminal())
}
