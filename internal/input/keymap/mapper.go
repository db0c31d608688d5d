package keymap

import (
	"fmt"
	"slices"

	"github.com/dshills/modalkeys/internal/input/key"
)

// Policy is what a Mapper does with a token sequence no mapping can match.
type Policy uint8

const (
	// ReplayUnlessControl replays the sequence unless one of its tokens
	// is a control chord, in which case it is discarded.
	ReplayUnlessControl Policy = iota

	// ReplayAll always replays the sequence.
	ReplayAll

	// DiscardAll always discards the sequence.
	DiscardAll
)

// String returns the policy name.
func (p Policy) String() string {
	switch p {
	case ReplayUnlessControl:
		return "replay-unless-control"
	case ReplayAll:
		return "replay-all"
	case DiscardAll:
		return "discard-all"
	default:
		return fmt.Sprintf("Policy(%d)", p)
	}
}

// Outcome is the verdict of a Mapper for one token.
type Outcome uint8

const (
	// OutcomePending means some mapping is still live; wait for more input.
	OutcomePending Outcome = iota

	// OutcomeHandled means a mapping accepted and its action ran.
	OutcomeHandled

	// OutcomeUnmatched means nothing can match; replay the input.
	OutcomeUnmatched

	// OutcomeDiscarded means nothing can match; drop the input.
	OutcomeDiscarded
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomePending:
		return "pending"
	case OutcomeHandled:
		return "handled"
	case OutcomeUnmatched:
		return "unmatched"
	case OutcomeDiscarded:
		return "discarded"
	default:
		return fmt.Sprintf("Outcome(%d)", o)
	}
}

// Result is returned by Mapper.Map.
type Result struct {
	Outcome Outcome

	// Accepted is the name of the mapping that fired, if any.
	Accepted string

	// Unresolved holds the abandoned token sequence for Unmatched and
	// Discarded, in arrival order.
	Unresolved []key.Token
}

// Mapper drives the mappings of one mode in parallel.
//
// Mappings are evaluated in registration order and the first to accept
// wins. A Mapper is not safe for concurrent use; actions may call back
// into it (reset, mode switches) while Map is running.
type Mapper struct {
	mappings []Mapping
	active   []Mapping
	pending  []key.Token
	count    *CountRegister
	policy   Policy
}

// NewMapper creates a Mapper with the given no-match policy and mappings.
func NewMapper(policy Policy, mappings ...Mapping) *Mapper {
	mp := &Mapper{
		policy: policy,
		count:  NewCountRegister(DefaultMaxCount),
	}
	for _, m := range mappings {
		mp.Add(m)
	}
	mp.ResetFull()
	return mp
}

// Add appends a mapping. Later mappings lose ties against earlier ones.
// Adding resets the Mapper.
func (mp *Mapper) Add(m Mapping) {
	if c, ok := m.(*Count); ok {
		c.register = mp.count
	}
	mp.mappings = append(mp.mappings, m)
	mp.ResetFull()
}

// Policy returns the no-match policy.
func (mp *Mapper) Policy() Policy {
	return mp.policy
}

// Count returns the mode's count register.
func (mp *Mapper) Count() *CountRegister {
	return mp.count
}

// Mappings returns the mappings in registration order.
func (mp *Mapper) Mappings() []Mapping {
	return slices.Clone(mp.mappings)
}

// Active returns the live candidates in registration order.
func (mp *Mapper) Active() []Mapping {
	return slices.Clone(mp.active)
}

// Pending returns the tokens fed since the last full reset.
func (mp *Mapper) Pending() []key.Token {
	return slices.Clone(mp.pending)
}

// IsIdle returns true if no resolution is in progress.
func (mp *Mapper) IsIdle() bool {
	return len(mp.pending) == 0
}

// ResetFull resets every mapping, restores the full active set, drops
// pending input and reinitializes the count register to "1".
func (mp *Mapper) ResetFull() {
	mp.ResetPreservingCount()
	mp.count.Reset()
}

// ResetPreservingCount is ResetFull without touching the count register.
func (mp *Mapper) ResetPreservingCount() {
	mp.active = append(make([]Mapping, 0, len(mp.mappings)), mp.mappings...)
	for _, m := range mp.active {
		m.Reset()
	}
	mp.pending = nil
}

// Map feeds one token and returns the verdict. Exactly one action runs
// per accepted token. After a non-count action the Mapper performs that
// action's full reset itself; it never resets otherwise on an accept.
func (mp *Mapper) Map(tok key.Token) Result {
	mp.pending = append(mp.pending, tok)
	return mp.resolve(tok)
}

func (mp *Mapper) resolve(tok key.Token) Result {
	var winner Mapping
	next := make([]Mapping, 0, len(mp.active))

	for _, m := range mp.active {
		state := m.Next(tok)
		if state == StateAccept {
			winner = m
			break
		}
		if state == StateContinue {
			next = append(next, m)
		}
	}

	if winner != nil {
		return mp.fire(winner)
	}
	if len(next) == 0 {
		return mp.fallback()
	}
	mp.active = next
	return Result{Outcome: OutcomePending}
}

// fire runs the action of the accepted mapping, then the full reset that
// ends every non-count action. The count action re-feeds instead.
func (mp *Mapper) fire(m Mapping) Result {
	switch m := m.(type) {
	case *Count:
		// Keep the digits in pending so a later no-match replays them
		// together with the rest of the sequence.
		ending := m.ending
		seq := mp.pending
		mp.ResetPreservingCount()
		mp.pending = seq
		return mp.resolve(ending)
	case *Single:
		mp.run(m.action, m.repeated)
	case *Sequence:
		mp.run(m.action, m.repeated)
	case *Custom:
		if m.action != nil {
			m.action(m.Consumed())
		}
	}
	mp.ResetFull()
	return Result{Outcome: OutcomeHandled, Accepted: m.Name()}
}

func (mp *Mapper) run(action Action, repeated bool) {
	if action == nil {
		return
	}
	n := 1
	if repeated {
		n = mp.count.Value()
	}
	for range n {
		action()
	}
}

// fallback is the Mapper's own default action.
func (mp *Mapper) fallback() Result {
	seq := mp.pending
	mp.ResetFull()

	outcome := OutcomeUnmatched
	switch mp.policy {
	case DiscardAll:
		outcome = OutcomeDiscarded
	case ReplayUnlessControl:
		if slices.ContainsFunc(seq, key.Token.IsControl) {
			outcome = OutcomeDiscarded
		}
	}
	return Result{Outcome: outcome, Unresolved: seq}
}
