package mode

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/modalkeys/internal/input/key"
	"github.com/dshills/modalkeys/internal/input/keymap"
)

type recorder struct {
	events []string
}

func (rec *recorder) hook(label string) Hook {
	return func(tr Transition) error {
		rec.events = append(rec.events, label+":"+tr.From+">"+tr.To)
		return nil
	}
}

func newTestRegistry(t *testing.T, rec *recorder) *Registry {
	t.Helper()
	r := NewRegistry()
	for _, name := range []string{Normal, Insert, Hints} {
		mp := keymap.NewMapper(DefaultPolicy(name),
			keymap.NewSequence("gg", []key.Token{"<g>", "<g>"}, nil))
		_, err := r.Register(name, mp, rec.hook("enter-"+name), rec.hook("exit-"+name))
		require.NoError(t, err)
	}
	return r
}

func TestRegistry_Register(t *testing.T) {
	r := newTestRegistry(t, &recorder{})

	m, ok := r.Get(Insert)
	require.True(t, ok)
	assert.Equal(t, Insert, m.Name())
	assert.Equal(t, "INSERT", m.DisplayName())
	assert.NotNil(t, m.Mapper())
	assert.Equal(t, []string{Normal, Insert, Hints}, r.Names())

	_, err := r.Register(Normal, keymap.NewMapper(keymap.ReplayAll), nil, nil)
	assert.ErrorIs(t, err, ErrDuplicateMode)

	_, err = r.Register("", keymap.NewMapper(keymap.ReplayAll), nil, nil)
	assert.Error(t, err)

	_, err = r.Register("visual", nil, nil, nil)
	assert.Error(t, err)
}

func TestRegistry_SetInitial(t *testing.T) {
	rec := &recorder{}
	r := newTestRegistry(t, rec)
	assert.Nil(t, r.Current())
	assert.Equal(t, "", r.CurrentName())

	var changes []Transition
	r.OnChange(func(tr Transition) { changes = append(changes, tr) })

	require.NoError(t, r.SetInitial(Normal))
	assert.Equal(t, Normal, r.CurrentName())
	assert.True(t, r.IsMode(Normal))
	assert.Equal(t, []string{"enter-normal:>normal"}, rec.events)
	assert.Equal(t, []Transition{{To: Normal}}, changes)

	assert.ErrorIs(t, r.SetInitial("visual"), ErrUnknownMode)
}

func TestRegistry_Switch(t *testing.T) {
	rec := &recorder{}
	r := newTestRegistry(t, rec)
	require.NoError(t, r.SetInitial(Normal))
	rec.events = nil

	var changes []Transition
	unregister := r.OnChange(func(tr Transition) { changes = append(changes, tr) })

	require.NoError(t, r.Switch(Insert))
	assert.Equal(t, Insert, r.CurrentName())
	assert.Equal(t, Normal, r.PreviousName())
	assert.Equal(t, []string{"exit-normal:normal>insert", "enter-insert:normal>insert"}, rec.events)
	assert.Equal(t, []Transition{{From: Normal, To: Insert}}, changes)

	unregister()
	require.NoError(t, r.Switch(Normal))
	assert.Len(t, changes, 1)

	err := r.Switch("visual")
	assert.ErrorIs(t, err, ErrUnknownMode)
	assert.Equal(t, Normal, r.CurrentName())
}

func TestRegistry_SwitchWithoutInitial(t *testing.T) {
	r := newTestRegistry(t, &recorder{})
	assert.ErrorIs(t, r.Switch(Insert), ErrNoMode)
}

func TestRegistry_SwitchResetsMappers(t *testing.T) {
	r := newTestRegistry(t, &recorder{})
	require.NoError(t, r.SetInitial(Normal))

	normal := r.Current().Mapper()
	assert.Equal(t, keymap.OutcomePending, normal.Map("<g>").Outcome)
	require.False(t, normal.IsIdle())

	insert, _ := r.Get(Insert)
	insert.Mapper().Map("<g>")

	require.NoError(t, r.Switch(Insert))
	assert.True(t, normal.IsIdle(), "outgoing mapper is reset")
	assert.True(t, insert.Mapper().IsIdle(), "incoming mapper starts clean")
	for _, m := range normal.Active() {
		assert.Equal(t, keymap.StateStart, m.State())
	}
}

func TestRegistry_SwitchToSelfReenters(t *testing.T) {
	rec := &recorder{}
	r := newTestRegistry(t, rec)
	require.NoError(t, r.SetInitial(Normal))
	rec.events = nil

	require.NoError(t, r.Switch(Normal))
	assert.Equal(t, []string{"exit-normal:normal>normal", "enter-normal:normal>normal"}, rec.events)
}

func TestRegistry_EnterFailureRestores(t *testing.T) {
	r := NewRegistry()
	var normalEnters int
	_, err := r.Register(Normal, keymap.NewMapper(keymap.ReplayUnlessControl),
		func(Transition) error { normalEnters++; return nil }, nil)
	require.NoError(t, err)

	boom := errors.New("no targets")
	_, err = r.Register(Hints, keymap.NewMapper(keymap.DiscardAll),
		func(Transition) error { return boom }, nil)
	require.NoError(t, err)

	require.NoError(t, r.SetInitial(Normal))
	err = r.Switch(Hints)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, Normal, r.CurrentName())
	assert.Equal(t, 2, normalEnters)
}

func TestRegistry_ExitFailureStays(t *testing.T) {
	r := NewRegistry()
	boom := errors.New("busy")
	_, err := r.Register(Normal, keymap.NewMapper(keymap.ReplayAll), nil, func(Transition) error { return boom })
	require.NoError(t, err)
	_, err = r.Register(Insert, keymap.NewMapper(keymap.ReplayAll), nil, nil)
	require.NoError(t, err)

	require.NoError(t, r.SetInitial(Normal))
	assert.ErrorIs(t, r.Switch(Insert), boom)
	assert.Equal(t, Normal, r.CurrentName())
}

func TestDefaultPolicy(t *testing.T) {
	assert.Equal(t, keymap.ReplayUnlessControl, DefaultPolicy(Normal))
	assert.Equal(t, keymap.ReplayAll, DefaultPolicy(Insert))
	assert.Equal(t, keymap.DiscardAll, DefaultPolicy(Hints))
	assert.Equal(t, keymap.ReplayAll, DefaultPolicy("custom"))
}
