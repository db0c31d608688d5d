package lua

import (
	"fmt"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/modalkeys/internal/input/key"
	"github.com/dshills/modalkeys/internal/input/keymap"
)

// Match state names as seen from Lua.
const (
	stateContinue = "continue"
	stateAccept   = "accept"
	stateReject   = "reject"
)

// Compiler builds predicates on a shared State. It implements the
// engine's PredicateCompiler.
type Compiler struct {
	state *State
}

// NewCompiler creates a compiler with its own sandboxed state.
func NewCompiler(opts ...StateOption) *Compiler {
	return &Compiler{state: NewState(opts...)}
}

// State returns the underlying state.
func (c *Compiler) State() *State {
	return c.state
}

// Close releases the Lua state.
func (c *Compiler) Close() {
	c.state.Close()
}

// Compile runs source once, under the call deadline, and wraps the
// function it returns.
func (c *Compiler) Compile(name, source string) (keymap.Predicate, error) {
	s := c.state
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrStateClosed
	}
	var fn *lua.LFunction
	err := s.run(func() error {
		chunk, err := s.L.LoadString(source)
		if err != nil {
			return err
		}
		if err := s.L.CallByParam(lua.P{Fn: chunk, NRet: 1, Protect: true}); err != nil {
			return err
		}
		ret := s.L.Get(-1)
		s.L.Pop(1)

		f, ok := ret.(*lua.LFunction)
		if !ok {
			return fmt.Errorf("%w, got %s", ErrNotFunction, ret.Type())
		}
		fn = f
		return nil
	})
	s.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", name, err)
	}

	logger := s.logger.With().Str("predicate", name).Logger()
	return func(seq []key.Token) keymap.MatchState {
		ret, err := s.call(fn, func(L *lua.LState) []lua.LValue {
			return []lua.LValue{tokenTable(L, seq)}
		})
		if err != nil {
			logger.Warn().Err(err).Str("keys", key.Join(seq)).Msg("predicate failed")
			return keymap.StateReject
		}
		state, err := toMatchState(ret)
		if err != nil {
			logger.Warn().Err(err).Msg("predicate returned an invalid state")
			return keymap.StateReject
		}
		return state
	}, nil
}

func tokenTable(L *lua.LState, seq []key.Token) *lua.LTable {
	tbl := L.CreateTable(len(seq), 0)
	for _, tok := range seq {
		tbl.Append(lua.LString(tok))
	}
	return tbl
}

func toMatchState(v lua.LValue) (keymap.MatchState, error) {
	switch v := v.(type) {
	case lua.LBool:
		if v {
			return keymap.StateAccept, nil
		}
		return keymap.StateReject, nil
	case lua.LString:
		switch strings.ToLower(string(v)) {
		case stateContinue:
			return keymap.StateContinue, nil
		case stateAccept:
			return keymap.StateAccept, nil
		case stateReject:
			return keymap.StateReject, nil
		}
		return keymap.StateReject, fmt.Errorf("unknown match state %q", string(v))
	}
	if v == lua.LNil {
		return keymap.StateReject, nil
	}
	return keymap.StateReject, fmt.Errorf("match state must be a string, got %s", v.Type())
}

// installKeys registers the keys helper table.
func installKeys(L *lua.LState) {
	mod := L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"char":     keysChar,
		"is_digit": keysIsDigit,
		"prefix":   keysPrefix,
	})
	mod.RawSetString("CONTINUE", lua.LString(stateContinue))
	mod.RawSetString("ACCEPT", lua.LString(stateAccept))
	mod.RawSetString("REJECT", lua.LString(stateReject))
	L.SetGlobal("keys", mod)
}

// keys.char(tok) returns the character of a plain single-character token,
// or nil.
func keysChar(L *lua.LState) int {
	r, ok := key.Token(L.OptString(1, "")).Char()
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LString(string(r)))
	return 1
}

// keys.is_digit(tok)
func keysIsDigit(L *lua.LState) int {
	L.Push(lua.LBool(key.Token(L.OptString(1, "")).IsDigit()))
	return 1
}

// keys.prefix(seq, spec) matches seq against a key spec with Sequence
// semantics.
func keysPrefix(L *lua.LState) int {
	seq := L.CheckTable(1)
	want, err := key.ParseSpec(L.CheckString(2))
	if err != nil {
		L.RaiseError("keys.prefix: %v", err)
		return 0
	}

	n := seq.Len()
	if n > len(want) {
		L.Push(lua.LString(stateReject))
		return 1
	}
	for i := 1; i <= n; i++ {
		if key.Token(lua.LVAsString(seq.RawGetInt(i))) != want[i-1] {
			L.Push(lua.LString(stateReject))
			return 1
		}
	}
	if n == len(want) {
		L.Push(lua.LString(stateAccept))
	} else {
		L.Push(lua.LString(stateContinue))
	}
	return 1
}
