package input

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/modalkeys/internal/input/key"
	"github.com/dshills/modalkeys/internal/input/keymap"
	"github.com/dshills/modalkeys/internal/input/mode"
)

// prefixCompiler accepts any sequence spelling its source, one token per
// rune, and stands in for the Lua compiler.
type prefixCompiler struct {
	fail error
}

func (c prefixCompiler) Compile(name, source string) (keymap.Predicate, error) {
	if c.fail != nil {
		return nil, c.fail
	}
	want := []rune(source)
	return func(seq []key.Token) keymap.MatchState {
		if len(seq) > len(want) {
			return keymap.StateReject
		}
		for i, tok := range seq {
			if r, ok := tok.Char(); !ok || r != want[i] {
				return keymap.StateReject
			}
		}
		if len(seq) == len(want) {
			return keymap.StateAccept
		}
		return keymap.StateContinue
	}, nil
}

func registryWith(t *testing.T, extra ...*keymap.Keymap) *keymap.Registry {
	t.Helper()
	reg := keymap.NewRegistry()
	require.NoError(t, RegisterDefaults(reg))
	for _, km := range extra {
		require.NoError(t, reg.Register(km))
	}
	return reg
}

func TestNew_Defaults(t *testing.T) {
	e, err := New(Options{Logger: zerolog.Nop(), Commands: (&page{}).commands(t)})
	require.NoError(t, err)

	normal, ok := e.Modes().Get(mode.Normal)
	require.True(t, ok)
	mappings := normal.Mapper().Mappings()
	require.NotEmpty(t, mappings)
	assert.Equal(t, keymap.CountName, mappings[0].Name(), "count prefix is registered first")
	assert.Equal(t, keymap.ReplayUnlessControl, normal.Mapper().Policy())

	insert, _ := e.Modes().Get(mode.Insert)
	assert.Equal(t, keymap.ReplayAll, insert.Mapper().Policy())
	hints, _ := e.Modes().Get(mode.Hints)
	assert.Equal(t, keymap.DiscardAll, hints.Mapper().Policy())

	for _, name := range []string{CommandNop, CommandModeNormal, CommandModeInsert, CommandModeHints} {
		assert.True(t, e.Commands().Has(name), name)
	}
}

func TestNew_UnknownCommand(t *testing.T) {
	km := keymap.NewKeymap("user", mode.Normal).Add("zz", "tab.close")
	_, err := New(Options{
		Keymaps:  registryWith(t, km),
		Commands: (&page{}).commands(t),
		Logger:   zerolog.Nop(),
	})
	assert.ErrorIs(t, err, ErrUnknownCommand)
}

func TestNew_MissingScrollCommands(t *testing.T) {
	_, err := New(Options{Logger: zerolog.Nop()})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownCommand)
}

func TestNew_UserBindingsLoseTies(t *testing.T) {
	var user int
	cmds := (&page{}).commands(t)
	require.NoError(t, cmds.Register("user.j", "", func() { user++ }))

	km := keymap.NewKeymap("user", mode.Normal).Add("j", "user.j").Add("Z", "user.j")
	e, err := New(Options{Keymaps: registryWith(t, km), Commands: cmds, Logger: zerolog.Nop()})
	require.NoError(t, err)

	assert.Equal(t, CommandScrollDown, e.Feed("<j>").Accepted)
	assert.Equal(t, "user.j", e.Feed("<Z>").Accepted)
	assert.Equal(t, 1, user)
}

func TestNew_ExtraMode(t *testing.T) {
	cmds := (&page{}).commands(t)
	km := keymap.NewKeymap("caret", "caret").Add("<Esc>", CommandModeNormal)
	normal := keymap.NewKeymap("caret-entry", mode.Normal).Add("v", "mode.caret")

	e, err := New(Options{Keymaps: registryWith(t, km, normal), Commands: cmds, Logger: zerolog.Nop()})
	require.NoError(t, err)

	e.Feed("<v>")
	assert.Equal(t, "caret", e.Mode())
	e.Feed("<Esc>")
	assert.Equal(t, mode.Normal, e.Mode())
}

func TestNew_ScriptedBindings(t *testing.T) {
	var ran int
	cmds := (&page{}).commands(t)
	require.NoError(t, cmds.Register("script.yank", "", func() { ran++ }))

	km := keymap.NewKeymap("scripted", mode.Normal).
		AddBinding(keymap.Binding{Command: "script.yank", Lua: "yy", Repeat: true})

	_, err := New(Options{Keymaps: registryWith(t, km), Commands: cmds, Logger: zerolog.Nop()})
	assert.ErrorIs(t, err, ErrNoScripting)

	boom := errors.New("syntax error")
	_, err = New(Options{Keymaps: registryWith(t, km), Commands: cmds, Scripts: prefixCompiler{fail: boom}, Logger: zerolog.Nop()})
	assert.ErrorIs(t, err, boom)

	e, err := New(Options{Keymaps: registryWith(t, km), Commands: cmds, Scripts: prefixCompiler{}, Logger: zerolog.Nop()})
	require.NoError(t, err)

	e.Feed("<3>")
	e.Feed("<y>")
	res := e.Feed("<y>")
	assert.Equal(t, "script.yank", res.Accepted)
	assert.Equal(t, 3, ran)
}

func TestNew_MaxCount(t *testing.T) {
	p := &page{}
	e, err := New(Options{Commands: p.commands(t), MaxCount: 3, Logger: zerolog.Nop()})
	require.NoError(t, err)

	e.Feed("<9>")
	e.Feed("<j>")
	assert.Len(t, p.calls, 3)
}

func TestNew_InitialMode(t *testing.T) {
	e, err := New(Options{Commands: (&page{}).commands(t), InitialMode: mode.Insert, Logger: zerolog.Nop()})
	require.NoError(t, err)
	assert.Equal(t, mode.Insert, e.Mode())

	_, err = New(Options{Commands: (&page{}).commands(t), InitialMode: "visual", Logger: zerolog.Nop()})
	assert.ErrorIs(t, err, mode.ErrUnknownMode)
}

func TestCommands(t *testing.T) {
	cmds := NewCommands()
	var hits int
	require.NoError(t, cmds.Register("b", "second", func() { hits++ }))
	require.NoError(t, cmds.Register("a", "first", func() {}))

	assert.Error(t, cmds.Register("", "", func() {}))
	assert.Error(t, cmds.Register("c", "", nil))

	action, err := cmds.Lookup("b")
	require.NoError(t, err)
	action()
	assert.Equal(t, 1, hits)

	_, err = cmds.Lookup("missing")
	assert.ErrorIs(t, err, ErrUnknownCommand)

	cmd, ok := cmds.Get("a")
	require.True(t, ok)
	assert.Equal(t, "first", cmd.Description)
	assert.Equal(t, []string{"a", "b"}, cmds.Names())

	cmds.registerDefault("a", "other", func() {})
	cmd, _ = cmds.Get("a")
	assert.Equal(t, "first", cmd.Description, "defaults never replace host commands")
}

func TestDefaultKeymaps(t *testing.T) {
	kms := DefaultKeymaps()
	require.Len(t, kms, 3)
	for _, km := range kms {
		assert.NoError(t, km.Validate(), km.Name)
	}
	assert.Equal(t, mode.Normal, kms[0].Mode)
	assert.Equal(t, "<Esc>", kms[0].Bindings[0].Keys)
	assert.True(t, kms[0].Bindings[0].Repeat)
}

func TestLoadKeymaps(t *testing.T) {
	dir := t.TempDir()
	write := func(dir, name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
		return path
	}
	write(dir, "b.yaml", "mode: normal\nbindings:\n  - keys: x\n    command: from.b\n")
	write(dir, "a.json", `{"mode": "normal", "bindings": [{"keys": "x", "command": "from.a"}]}`)
	write(dir, "broken.toml", `mode = `)
	write(dir, "README.md", "not a keymap")
	file := write(t.TempDir(), "user.toml", "mode = \"normal\"\n\n[[bindings]]\nkeys = \"x\"\ncommand = \"from.file\"\n")

	reg, err := LoadKeymaps(zerolog.Nop(), dir, file)
	require.NoError(t, err)

	var got []string
	for _, b := range reg.Bindings(mode.Normal) {
		if b.Keys == "x" {
			got = append(got, b.Command)
		}
	}
	assert.Equal(t, []string{"from.a", "from.b", "from.file"}, got)
	assert.Len(t, reg.Keymaps(), len(DefaultKeymaps())+3)

	// A missing or empty dir only yields the defaults.
	reg, err = LoadKeymaps(zerolog.Nop(), filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Len(t, reg.Keymaps(), len(DefaultKeymaps()))
	reg, err = LoadKeymaps(zerolog.Nop(), "")
	require.NoError(t, err)
	assert.Len(t, reg.Keymaps(), len(DefaultKeymaps()))

	_, err = LoadKeymaps(zerolog.Nop(), "", filepath.Join(dir, "broken.toml"))
	assert.Error(t, err)
}

func TestStats(t *testing.T) {
	s := NewStats()
	s.RecordFeed(keymap.OutcomeHandled, 2)
	s.RecordFeed(keymap.OutcomeUnmatched, 4)
	s.RecordFeed(keymap.OutcomeDiscarded, 6)
	s.RecordFeed(keymap.OutcomePending, 8)
	s.RecordReplay(3)

	snap := s.Snapshot()
	assert.Equal(t, uint64(4), snap.Tokens)
	assert.Equal(t, uint64(1), snap.Handled)
	assert.Equal(t, uint64(1), snap.Unmatched)
	assert.Equal(t, uint64(1), snap.Discarded)
	assert.Equal(t, uint64(3), snap.Replayed)
	assert.EqualValues(t, 5, snap.AvgLatency)
	assert.EqualValues(t, 8, snap.PeakLatency)
	assert.EqualValues(t, 8, snap.P99Latency)
}
