package keymap

import (
	"fmt"

	"github.com/dshills/modalkeys/internal/input/key"
)

// MatchState is the state of a Mapping after it has been fed a token.
type MatchState uint8

const (
	// StateStart is the state after Reset, before any token is fed.
	StateStart MatchState = iota

	// StateContinue means the mapping is still a live candidate.
	StateContinue

	// StateAccept means the mapping matched. Terminal until Reset.
	StateAccept

	// StateReject means the mapping cannot match. Terminal until Reset.
	StateReject
)

// String returns the state name.
func (s MatchState) String() string {
	switch s {
	case StateStart:
		return "start"
	case StateContinue:
		return "continue"
	case StateAccept:
		return "accept"
	case StateReject:
		return "reject"
	default:
		return fmt.Sprintf("MatchState(%d)", s)
	}
}

// IsTerminal returns true for Accept and Reject.
func (s MatchState) IsTerminal() bool {
	return s == StateAccept || s == StateReject
}

// Action is a mapped command. The engine never inspects its effects.
type Action func()

// SequenceAction is the action of a Custom mapping. It receives the
// tokens the mapping consumed.
type SequenceAction func(seq []key.Token)

// Predicate decides the next state of a Custom mapping from the tokens
// consumed so far. It must not retain seq.
type Predicate func(seq []key.Token) MatchState

// Mapping is one pattern state machine. The set of implementations is
// closed: *Single, *Sequence, *Count and *Custom.
type Mapping interface {
	// Next feeds one token and returns the new state.
	Next(tok key.Token) MatchState

	// Reset returns the mapping to StateStart and clears local data.
	Reset()

	// State returns the current state.
	State() MatchState

	// Name returns the command name the mapping is bound to.
	Name() string

	// Pattern returns a printable form of the matched input.
	Pattern() string

	mapping()
}

// base carries the fields shared by every variant.
type base struct {
	name  string
	state MatchState
}

func (b *base) State() MatchState { return b.state }
func (b *base) Name() string      { return b.name }
func (b *base) mapping()          {}

// Single matches exactly one token.
type Single struct {
	base
	token    key.Token
	action   Action
	repeated bool
}

// NewSingle creates a mapping that accepts tok and nothing else.
func NewSingle(name string, tok key.Token, action Action) *Single {
	return &Single{base: base{name: name}, token: tok, action: action}
}

// WithRepeat marks the mapping as repeated: its action runs count times.
func (s *Single) WithRepeat() *Single {
	s.repeated = true
	return s
}

// Token returns the bound token.
func (s *Single) Token() key.Token { return s.token }

// Repeated reports whether the action is multiplied by the count.
func (s *Single) Repeated() bool { return s.repeated }

// Next implements Mapping.
func (s *Single) Next(tok key.Token) MatchState {
	if s.state == StateStart && tok == s.token {
		s.state = StateAccept
	} else {
		s.state = StateReject
	}
	return s.state
}

// Reset implements Mapping.
func (s *Single) Reset() { s.state = StateStart }

// Pattern implements Mapping.
func (s *Single) Pattern() string { return string(s.token) }

// Sequence matches a fixed run of tokens, one Continue per matched prefix.
type Sequence struct {
	base
	tokens   []key.Token
	pos      int
	action   Action
	repeated bool
}

// NewSequence creates a mapping for the given token run.
// An empty run never matches.
func NewSequence(name string, tokens []key.Token, action Action) *Sequence {
	return &Sequence{
		base:   base{name: name},
		tokens: append([]key.Token(nil), tokens...),
		action: action,
	}
}

// WithRepeat marks the mapping as repeated: its action runs count times.
func (s *Sequence) WithRepeat() *Sequence {
	s.repeated = true
	return s
}

// Tokens returns a copy of the bound tokens.
func (s *Sequence) Tokens() []key.Token {
	return append([]key.Token(nil), s.tokens...)
}

// Repeated reports whether the action is multiplied by the count.
func (s *Sequence) Repeated() bool { return s.repeated }

// Next implements Mapping.
func (s *Sequence) Next(tok key.Token) MatchState {
	if s.state.IsTerminal() || s.pos >= len(s.tokens) || tok != s.tokens[s.pos] {
		s.state = StateReject
		return s.state
	}
	s.pos++
	if s.pos == len(s.tokens) {
		s.state = StateAccept
	} else {
		s.state = StateContinue
	}
	return s.state
}

// Reset implements Mapping.
func (s *Sequence) Reset() {
	s.state = StateStart
	s.pos = 0
}

// Pattern implements Mapping.
func (s *Sequence) Pattern() string { return key.Join(s.tokens) }

// Count collects a leading decimal repeat count into the owning Mapper's
// count register. It is the only mapping that writes outside itself.
type Count struct {
	base
	register *CountRegister
	ending   key.Token
}

// CountName is the name reported by Count mappings.
const CountName = "count"

// NewCount creates a count prefix mapping. It writes to the register of
// the Mapper it is added to.
func NewCount() *Count {
	return &Count{base: base{name: CountName}}
}

// Ending returns the token that ended the digits (set on Accept).
func (c *Count) Ending() key.Token { return c.ending }

// Next implements Mapping.
func (c *Count) Next(tok key.Token) MatchState {
	switch c.state {
	case StateStart:
		// Zero is a command of its own, never the first digit of a count.
		if d, ok := tok.Digit(); ok && d != 0 {
			if c.register != nil {
				c.register.Seed(d)
			}
			c.state = StateContinue
		} else {
			c.state = StateReject
		}
	case StateContinue:
		if d, ok := tok.Digit(); ok {
			if c.register != nil {
				c.register.Append(d)
			}
		} else {
			c.ending = tok
			c.state = StateAccept
		}
	default:
		c.state = StateReject
	}
	return c.state
}

// Reset implements Mapping. The register is owned by the Mapper and is
// left alone.
func (c *Count) Reset() {
	c.state = StateStart
	c.ending = ""
}

// Pattern implements Mapping.
func (c *Count) Pattern() string { return "{count}" }

// Custom delegates matching to a predicate over the consumed tokens.
type Custom struct {
	base
	predicate Predicate
	action    SequenceAction
	consumed  []key.Token
	pattern   string
}

// NewCustom creates a predicate-driven mapping. A predicate that answers
// StateStart is treated as StateReject.
func NewCustom(name string, pred Predicate, action SequenceAction) *Custom {
	return &Custom{
		base:      base{name: name},
		predicate: pred,
		action:    action,
		pattern:   "<custom>",
	}
}

// WithPattern sets the printable pattern reported by Pattern.
func (c *Custom) WithPattern(pattern string) *Custom {
	c.pattern = pattern
	return c
}

// Consumed returns a copy of the tokens fed since the last Reset.
func (c *Custom) Consumed() []key.Token {
	return append([]key.Token(nil), c.consumed...)
}

// Next implements Mapping.
func (c *Custom) Next(tok key.Token) MatchState {
	if c.state.IsTerminal() || c.predicate == nil {
		c.state = StateReject
		return c.state
	}
	c.consumed = append(c.consumed, tok)
	next := c.predicate(c.consumed)
	if next == StateStart {
		next = StateReject
	}
	c.state = next
	return c.state
}

// Reset implements Mapping.
func (c *Custom) Reset() {
	c.state = StateStart
	c.consumed = c.consumed[:0]
}

// Pattern implements Mapping.
func (c *Custom) Pattern() string { return c.pattern }
