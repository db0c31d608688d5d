package input

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dshills/modalkeys/internal/input/key"
	"github.com/dshills/modalkeys/internal/input/keymap"
	"github.com/dshills/modalkeys/internal/input/mode"
)

// Disposition tells the host what to do with the input it just handed in.
type Disposition uint8

const (
	// Consumed means the engine kept the input: an action ran, the input
	// was discarded, or it is waiting for more tokens. The host suppresses
	// the default handling.
	Consumed Disposition = iota

	// PassThrough means the host must redispatch Events, once, in order,
	// without feeding them back to the engine.
	PassThrough
)

// String returns the disposition name.
func (d Disposition) String() string {
	if d == PassThrough {
		return "passthrough"
	}
	return "consumed"
}

// FeedResult is the verdict for one token or raw event.
type FeedResult struct {
	Disposition Disposition

	// Outcome is the Mapper verdict. It is OutcomeUnmatched for events that
	// bypassed the Mapper.
	Outcome keymap.Outcome

	// Accepted names the mapping that fired, if any.
	Accepted string

	// Events are the raw events to replay, for PassThrough. Events that
	// came out of the in-flight buffer are marked Replayed.
	Events []key.Event

	// Tokens are the abandoned tokens for Unmatched and Discarded.
	Tokens []key.Token

	// Pending is true while a resolution is in progress.
	Pending bool
}

// IsConsumed returns true if the host must suppress the input.
func (r FeedResult) IsConsumed() bool {
	return r.Disposition == Consumed
}

// Engine is the synchronous entry point of the keystroke pipeline. It owns
// the mode registry and the in-flight event buffer.
//
// Engine is not safe for concurrent use. Actions run on the caller's
// goroutine, inside Feed, and may call SwitchMode.
type Engine struct {
	modes    *mode.Registry
	commands *Commands
	logger   zerolog.Logger
	session  uuid.UUID
	stats    *Stats

	// in-flight raw events, oldest first
	buffer []key.Event
	// leading companions at the end of buffer that have no token yet
	leading int
	// disposition of the last resolved event, applied to stray key-ups
	trailing Disposition
	// > 0 while Feed runs
	depth int
}

func newEngine(modes *mode.Registry, commands *Commands, logger zerolog.Logger) *Engine {
	id := uuid.New()
	return &Engine{
		modes:    modes,
		commands: commands,
		session:  id,
		stats:    NewStats(),
		trailing: PassThrough,
		logger: logger.With().
			Str("component", "engine").
			Str("session", id.String()).
			Logger(),
	}
}

// Session returns the engine's session id, used to correlate log lines.
func (e *Engine) Session() uuid.UUID {
	return e.session
}

// Modes returns the mode registry.
func (e *Engine) Modes() *mode.Registry {
	return e.modes
}

// Commands returns the command table the engine was built with.
func (e *Engine) Commands() *Commands {
	return e.commands
}

// Stats returns the engine statistics.
func (e *Engine) Stats() *Stats {
	return e.stats
}

// Mode returns the current mode name.
func (e *Engine) Mode() string {
	return e.modes.CurrentName()
}

// Pending returns the tokens of the resolution in progress.
func (e *Engine) Pending() []key.Token {
	if m := e.modes.Current(); m != nil {
		return m.Mapper().Pending()
	}
	return nil
}

// Count returns the current mode's count register.
func (e *Engine) Count() *keymap.CountRegister {
	if m := e.modes.Current(); m != nil {
		return m.Mapper().Count()
	}
	return nil
}

// InFlight returns the number of buffered raw events.
func (e *Engine) InFlight() int {
	return len(e.buffer)
}

// SwitchMode switches to the named mode. Called from an action, the
// in-flight buffer is left to the outcome of the token being fed. Called
// from outside Feed, events buffered for the abandoned resolution are
// dropped.
func (e *Engine) SwitchMode(name string) error {
	from := e.modes.CurrentName()
	if err := e.modes.Switch(name); err != nil {
		e.logger.Warn().Err(err).Str("from", from).Str("to", name).Msg("mode switch failed")
		return err
	}
	if e.depth == 0 && len(e.buffer) > 0 {
		e.logger.Debug().Int("events", len(e.buffer)).Msg("dropping in-flight events")
		e.clearBuffer(Consumed)
	}
	return nil
}

// Reset abandons the resolution in progress without replaying anything.
func (e *Engine) Reset() {
	if m := e.modes.Current(); m != nil {
		m.Mapper().ResetFull()
	}
	e.clearBuffer(Consumed)
}

// Feed runs one token through the current mode's Mapper and resolves the
// in-flight buffer against the verdict.
func (e *Engine) Feed(tok key.Token) FeedResult {
	current := e.modes.Current()
	if current == nil {
		e.logger.Error().Str("token", tok.String()).Msg("feed without a current mode")
		return e.replayBuffer(FeedResult{Outcome: keymap.OutcomeUnmatched, Tokens: []key.Token{tok}})
	}

	start := time.Now()
	e.depth++
	res := current.Mapper().Map(tok)
	e.depth--
	e.stats.RecordFeed(res.Outcome, time.Since(start))

	e.logger.Debug().
		Str("mode", current.Name()).
		Str("token", tok.String()).
		Str("outcome", res.Outcome.String()).
		Str("accepted", res.Accepted).
		Msg("feed")

	out := FeedResult{
		Outcome:  res.Outcome,
		Accepted: res.Accepted,
		Tokens:   res.Unresolved,
	}
	switch res.Outcome {
	case keymap.OutcomePending:
		e.leading = 0
		out.Disposition = Consumed
		out.Pending = true
		return out
	case keymap.OutcomeUnmatched:
		return e.replayBuffer(out)
	default:
		e.clearBuffer(Consumed)
		out.Disposition = Consumed
		return out
	}
}

// HandleEvent normalizes a raw event and feeds its token. Events without a
// token of their own are held with the resolution in progress or passed
// straight through.
func (e *Engine) HandleEvent(ev key.Event) FeedResult {
	if ev.Replayed {
		return FeedResult{Disposition: PassThrough, Outcome: keymap.OutcomeUnmatched, Events: []key.Event{ev}}
	}

	tok, ok := key.Normalize(ev)
	if !ok {
		return e.handleTokenless(ev)
	}

	e.buffer = append(e.buffer, ev)
	return e.Feed(tok)
}

func (e *Engine) handleTokenless(ev key.Event) FeedResult {
	switch {
	case ev.Kind.IsLeading():
		e.buffer = append(e.buffer, ev)
		e.leading++
		return FeedResult{Disposition: Consumed, Outcome: keymap.OutcomePending, Pending: true}

	case ev.Kind == key.KindKeyUp:
		if len(e.buffer) > 0 {
			e.buffer = append(e.buffer, ev)
			if e.leading > 0 {
				e.leading++
			}
			return FeedResult{Disposition: Consumed, Outcome: keymap.OutcomePending, Pending: true}
		}
		if e.trailing == Consumed {
			return FeedResult{Disposition: Consumed, Outcome: keymap.OutcomeDiscarded}
		}
		return FeedResult{Disposition: PassThrough, Outcome: keymap.OutcomeUnmatched, Events: []key.Event{ev}}
	}

	// Unrecognized: release it with its own leading companions and leave
	// the resolution in progress untouched.
	e.stats.RecordUnrecognized()
	e.logger.Debug().
		Str("kind", ev.Kind.String()).
		Int("key_code", ev.KeyCode).
		Msg("event has no token")

	events := make([]key.Event, 0, e.leading+1)
	cut := len(e.buffer) - e.leading
	events = append(events, markReplayed(e.buffer[cut:])...)
	ev.Replayed = true
	events = append(events, ev)
	e.buffer = e.buffer[:cut]
	e.leading = 0
	return FeedResult{Disposition: PassThrough, Outcome: keymap.OutcomeUnmatched, Events: events}
}

func (e *Engine) replayBuffer(out FeedResult) FeedResult {
	out.Disposition = PassThrough
	out.Events = markReplayed(e.buffer)
	e.stats.RecordReplay(len(out.Events))
	e.clearBuffer(PassThrough)
	return out
}

func (e *Engine) clearBuffer(d Disposition) {
	e.buffer = nil
	e.leading = 0
	e.trailing = d
}

func markReplayed(events []key.Event) []key.Event {
	out := make([]key.Event, len(events))
	for i, ev := range events {
		ev.Replayed = true
		out[i] = ev
	}
	return out
}

// String describes the engine state for status lines.
func (e *Engine) String() string {
	current := e.modes.Current()
	if current == nil {
		return "-"
	}
	return fmt.Sprintf("%s %s", current.DisplayName(), key.Join(e.Pending()))
}
