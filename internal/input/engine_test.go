package input

import (
	"strconv"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/modalkeys/internal/input/hint"
	"github.com/dshills/modalkeys/internal/input/key"
	"github.com/dshills/modalkeys/internal/input/keymap"
	"github.com/dshills/modalkeys/internal/input/mode"
)

// page is a minimal host: it counts scroll commands and owns hint targets.
type page struct {
	calls    []string
	targets  []hint.Target
	shown    []hint.Hint
	followed []hint.Target
}

func (p *page) Targets() []hint.Target { return p.targets }
func (p *page) Show(hints []hint.Hint) { p.shown = hints }
func (p *page) Clear()                 { p.shown = nil }

func (p *page) Invoke(t hint.Target) error {
	p.followed = append(p.followed, t)
	return nil
}

func (p *page) commands(t *testing.T) *Commands {
	t.Helper()
	cmds := NewCommands()
	for _, name := range []string{
		CommandScrollLeft, CommandScrollDown, CommandScrollUp,
		CommandScrollRight, CommandScrollTop, CommandScrollBottom,
	} {
		require.NoError(t, cmds.Register(name, "", func() { p.calls = append(p.calls, name) }))
	}
	return cmds
}

func newTestEngine(t *testing.T, p *page) *Engine {
	t.Helper()
	session, err := hint.NewSession("ab", p, p, p, zerolog.Nop())
	require.NoError(t, err)

	e, err := New(Options{
		Commands: p.commands(t),
		Hints:    session,
		Logger:   zerolog.Nop(),
	})
	require.NoError(t, err)
	return e
}

func char(r rune) key.Event {
	return key.NewCharEvent(r, key.ModNone)
}

func feedAll(e *Engine, events ...key.Event) []FeedResult {
	out := make([]FeedResult, 0, len(events))
	for _, ev := range events {
		out = append(out, e.HandleEvent(ev))
	}
	return out
}

func TestEngine_StartsInNormal(t *testing.T) {
	e := newTestEngine(t, &page{})
	assert.Equal(t, mode.Normal, e.Mode())
	assert.Equal(t, "1", e.Count().String())
	assert.Empty(t, e.Pending())
	assert.NotEmpty(t, e.Session().String())
	assert.Equal(t, []string{mode.Normal, mode.Insert, mode.Hints}, e.Modes().Names())
}

func TestEngine_SingleKey(t *testing.T) {
	p := &page{}
	e := newTestEngine(t, p)

	res := e.HandleEvent(char('j'))
	assert.Equal(t, Consumed, res.Disposition)
	assert.Equal(t, keymap.OutcomeHandled, res.Outcome)
	assert.Equal(t, CommandScrollDown, res.Accepted)
	assert.Equal(t, []string{CommandScrollDown}, p.calls)
	assert.Zero(t, e.InFlight())
}

func TestEngine_CountRepeats(t *testing.T) {
	for _, n := range []int{1, 5, 12, 99} {
		p := &page{}
		e := newTestEngine(t, p)

		for _, d := range []rune(strconv.Itoa(n)) {
			res := e.HandleEvent(char(d))
			require.True(t, res.Pending)
			require.True(t, res.IsConsumed())
		}
		res := e.HandleEvent(char('k'))
		assert.Equal(t, keymap.OutcomeHandled, res.Outcome)
		assert.Len(t, p.calls, n, "count %d", n)
		assert.Equal(t, "1", e.Count().String())
		assert.Zero(t, e.InFlight())
	}
}

func TestEngine_CountThenSequence(t *testing.T) {
	p := &page{}
	e := newTestEngine(t, p)

	results := feedAll(e, char('3'), char('g'), char('g'))
	assert.True(t, results[0].Pending)
	assert.True(t, results[1].Pending)
	assert.Equal(t, CommandScrollTop, results[2].Accepted)
	// gg is not repeated.
	assert.Equal(t, []string{CommandScrollTop}, p.calls)
}

func TestEngine_ZeroIsOrdinaryToken(t *testing.T) {
	p := &page{}
	e := newTestEngine(t, p)

	ev := char('0')
	res := e.HandleEvent(ev)
	assert.Equal(t, PassThrough, res.Disposition)
	require.Len(t, res.Events, 1)
	assert.True(t, res.Events[0].Replayed)
	assert.Equal(t, []key.Token{"<0>"}, res.Tokens)
	assert.Empty(t, p.calls)
}

func TestEngine_SequenceMismatchReplaysInOrder(t *testing.T) {
	p := &page{}
	e := newTestEngine(t, p)

	g := char('g')
	g.Payload = "first"
	x := char('x')
	x.Payload = "second"

	res := e.HandleEvent(g)
	assert.True(t, res.Pending)
	assert.Equal(t, 1, e.InFlight())

	res = e.HandleEvent(x)
	assert.Equal(t, PassThrough, res.Disposition)
	assert.Equal(t, keymap.OutcomeUnmatched, res.Outcome)
	require.Len(t, res.Events, 2)
	assert.Equal(t, "first", res.Events[0].Payload)
	assert.Equal(t, "second", res.Events[1].Payload)
	for _, ev := range res.Events {
		assert.True(t, ev.Replayed)
	}
	assert.Equal(t, []key.Token{"<g>", "<x>"}, res.Tokens)
	assert.Empty(t, p.calls)
	assert.Zero(t, e.InFlight())

	// The active set is restored: gg still works.
	feedAll(e, char('g'), char('g'))
	assert.Equal(t, []string{CommandScrollTop}, p.calls)
}

func TestEngine_CountThenUnmatchedReplaysDigits(t *testing.T) {
	e := newTestEngine(t, &page{})

	res := feedAll(e, char('3'), char('x'))
	last := res[1]
	assert.Equal(t, PassThrough, last.Disposition)
	require.Len(t, last.Events, 2)
	assert.Equal(t, rune('3'), last.Events[0].CharCode)
	assert.Equal(t, rune('x'), last.Events[1].CharCode)
	assert.Equal(t, "1", e.Count().String())
}

func TestEngine_NormalDiscardsControlChords(t *testing.T) {
	e := newTestEngine(t, &page{})

	res := e.HandleEvent(key.NewKeyCodeEvent('X', key.ModCtrl))
	assert.Equal(t, Consumed, res.Disposition)
	assert.Equal(t, keymap.OutcomeDiscarded, res.Outcome)
	assert.Equal(t, []key.Token{"<C-x>"}, res.Tokens)
	assert.Empty(t, res.Events)
	assert.Zero(t, e.InFlight())
}

func TestEngine_InsertMode(t *testing.T) {
	p := &page{}
	e := newTestEngine(t, p)

	res := e.HandleEvent(char('i'))
	assert.Equal(t, CommandModeInsert, res.Accepted)
	assert.Equal(t, mode.Insert, e.Mode())

	res = e.HandleEvent(char('j'))
	assert.Equal(t, PassThrough, res.Disposition)
	assert.Empty(t, p.calls)

	res = e.HandleEvent(key.NewKeyCodeEvent(key.CodeEscape, key.ModNone))
	assert.Equal(t, Consumed, res.Disposition)
	assert.Equal(t, mode.Normal, e.Mode())
}

func TestEngine_Hints(t *testing.T) {
	p := &page{targets: []hint.Target{{Text: "one"}, {Text: "two"}, {Text: "three"}}}
	e := newTestEngine(t, p)

	e.HandleEvent(char('f'))
	require.Equal(t, mode.Hints, e.Mode())
	require.Len(t, p.shown, 3)
	assert.Equal(t, "aa", p.shown[0].Label)

	res := e.HandleEvent(char('a'))
	assert.True(t, res.Pending)

	res = e.HandleEvent(char('b'))
	assert.Equal(t, hint.FollowName, res.Accepted)
	assert.Equal(t, []hint.Target{{Text: "two"}}, p.followed)
	assert.Equal(t, mode.Normal, e.Mode())
	assert.Nil(t, p.shown)
}

func TestEngine_HintsDiscardUnmatched(t *testing.T) {
	p := &page{targets: []hint.Target{{Text: "one"}}}
	e := newTestEngine(t, p)

	e.HandleEvent(char('f'))
	require.Equal(t, mode.Hints, e.Mode())

	res := e.HandleEvent(char('z'))
	assert.Equal(t, Consumed, res.Disposition)
	assert.Equal(t, keymap.OutcomeDiscarded, res.Outcome)
	assert.Equal(t, mode.Hints, e.Mode())

	e.HandleEvent(key.NewKeyCodeEvent(key.CodeEscape, key.ModNone))
	assert.Equal(t, mode.Normal, e.Mode())
	assert.Empty(t, p.followed)
}

func TestEngine_HintsWithoutTargetsStaysNormal(t *testing.T) {
	e := newTestEngine(t, &page{})

	res := e.HandleEvent(char('f'))
	assert.Equal(t, keymap.OutcomeHandled, res.Outcome)
	assert.Equal(t, mode.Normal, e.Mode())
}

func TestEngine_SwitchMidResolution(t *testing.T) {
	p := &page{}
	e := newTestEngine(t, p)

	e.HandleEvent(char('g'))
	require.Equal(t, []key.Token{"<g>"}, e.Pending())

	require.NoError(t, e.SwitchMode(mode.Insert))
	assert.Zero(t, e.InFlight())
	assert.Empty(t, e.Pending())

	normal, _ := e.Modes().Get(mode.Normal)
	assert.True(t, normal.Mapper().IsIdle())

	assert.Error(t, e.SwitchMode("visual"))
	assert.Equal(t, mode.Insert, e.Mode())
}

func TestEngine_ActionSwitchesModeMidSequence(t *testing.T) {
	p := &page{}
	registry := keymap.NewRegistry()
	require.NoError(t, RegisterDefaults(registry))
	require.NoError(t, registry.Register(keymap.NewKeymap("user", mode.Normal).
		Add("gi", CommandScrollTop).
		Add("g", CommandModeInsert)))

	session, err := hint.NewSession("ab", p, p, p, zerolog.Nop())
	require.NoError(t, err)
	e, err := New(Options{Keymaps: registry, Commands: p.commands(t), Hints: session, Logger: zerolog.Nop()})
	require.NoError(t, err)

	// <g> keeps gg and gi alive, but the single-token g accepts and its
	// action leaves normal mode.
	res := e.HandleEvent(char('g'))
	assert.Equal(t, keymap.OutcomeHandled, res.Outcome)
	assert.Equal(t, CommandModeInsert, res.Accepted)
	assert.Equal(t, mode.Insert, e.Mode())
	assert.Zero(t, e.InFlight())

	normal, _ := e.Modes().Get(mode.Normal)
	assert.True(t, normal.Mapper().IsIdle())

	// <i> is resolved by insert mode, not as the tail of gi.
	res = e.HandleEvent(char('i'))
	require.Equal(t, PassThrough, res.Disposition)
	assert.Equal(t, keymap.OutcomeUnmatched, res.Outcome)
	assert.Equal(t, []key.Token{"<i>"}, res.Tokens)
	require.Len(t, res.Events, 1)
	assert.Equal(t, 'i', res.Events[0].CharCode)
	assert.Equal(t, mode.Insert, e.Mode())
	assert.Empty(t, p.calls)
}

func TestEngine_Companions(t *testing.T) {
	p := &page{}
	e := newTestEngine(t, p)

	down := key.Event{Kind: key.KindKeyDown, KeyCode: 'J'}
	up := key.Event{Kind: key.KindKeyUp, KeyCode: 'J'}

	res := feedAll(e, down, char('j'), up)
	assert.True(t, res[0].IsConsumed())
	assert.True(t, res[0].Pending)
	assert.Equal(t, CommandScrollDown, res[1].Accepted)
	assert.True(t, res[2].IsConsumed(), "key-up of a consumed key is swallowed")
	assert.Zero(t, e.InFlight())
}

func TestEngine_CompanionsReplayedWithSequence(t *testing.T) {
	e := newTestEngine(t, &page{})

	gDown := key.Event{Kind: key.KindKeyDown, KeyCode: 'G'}
	gUp := key.Event{Kind: key.KindKeyUp, KeyCode: 'G'}
	xDown := key.Event{Kind: key.KindKeyDown, KeyCode: 'X'}
	xUp := key.Event{Kind: key.KindKeyUp, KeyCode: 'X'}

	res := feedAll(e, gDown, char('g'), gUp, xDown, char('x'))
	last := res[len(res)-1]
	require.Equal(t, PassThrough, last.Disposition)
	kinds := make([]key.Kind, len(last.Events))
	for i, ev := range last.Events {
		kinds[i] = ev.Kind
	}
	assert.Equal(t, []key.Kind{
		key.KindKeyDown, key.KindKeyPress, key.KindKeyUp, key.KindKeyDown, key.KindKeyPress,
	}, kinds)

	res = feedAll(e, xUp)
	assert.Equal(t, PassThrough, res[0].Disposition)
	assert.Len(t, res[0].Events, 1)
}

func TestEngine_ReplayedBypass(t *testing.T) {
	p := &page{}
	e := newTestEngine(t, p)

	ev := char('j')
	ev.Replayed = true
	res := e.HandleEvent(ev)
	assert.Equal(t, PassThrough, res.Disposition)
	assert.Equal(t, []key.Event{ev}, res.Events)
	assert.Empty(t, p.calls)
}

func TestEngine_UnrecognizedPassesAlone(t *testing.T) {
	e := newTestEngine(t, &page{})

	e.HandleEvent(char('g'))
	down := key.Event{Kind: key.KindKeyDown, KeyCode: 200}
	press := key.NewKeyCodeEvent(200, key.ModNone)

	e.HandleEvent(down)
	res := e.HandleEvent(press)
	assert.Equal(t, PassThrough, res.Disposition)
	require.Len(t, res.Events, 2)
	assert.Equal(t, key.KindKeyDown, res.Events[0].Kind)
	assert.Equal(t, 200, res.Events[1].KeyCode)

	// The pending g is untouched.
	assert.Equal(t, []key.Token{"<g>"}, e.Pending())
	assert.Equal(t, 1, e.InFlight())
	assert.Equal(t, uint64(1), e.Stats().Snapshot().Unrecognized)
}

func TestEngine_FeedTokens(t *testing.T) {
	p := &page{}
	e := newTestEngine(t, p)

	assert.True(t, e.Feed("<2>").Pending)
	res := e.Feed("<l>")
	assert.Equal(t, keymap.OutcomeHandled, res.Outcome)
	assert.Equal(t, []string{CommandScrollRight, CommandScrollRight}, p.calls)
	assert.Empty(t, res.Events)

	snap := e.Stats().Snapshot()
	assert.Equal(t, uint64(2), snap.Tokens)
	assert.Equal(t, uint64(1), snap.Handled)
}

func TestEngine_Reset(t *testing.T) {
	e := newTestEngine(t, &page{})
	e.HandleEvent(char('4'))
	e.HandleEvent(char('g'))

	e.Reset()
	assert.Empty(t, e.Pending())
	assert.Zero(t, e.InFlight())
	assert.Equal(t, "1", e.Count().String())
	assert.Equal(t, "NORMAL ", e.String())
}
