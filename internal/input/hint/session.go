package hint

import (
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/dshills/modalkeys/internal/input/key"
	"github.com/dshills/modalkeys/internal/input/keymap"
	"github.com/dshills/modalkeys/internal/input/mode"
)

// FollowName is the name of the hint mapping.
const FollowName = "hints.follow"

// ErrNoTargets is returned by Enter when there is nothing to label.
var ErrNoTargets = errors.New("no hint targets")

// Target is one selectable element supplied by the host.
type Target struct {
	// Text is a human-readable description (link text, URL).
	Text string

	// Payload is host data handed back on Invoke.
	Payload any
}

// Hint is a Target with its label.
type Hint struct {
	Label  string
	Target Target
}

// TargetSource discovers the selectable elements.
type TargetSource interface {
	Targets() []Target
}

// Overlay renders labels next to their targets.
type Overlay interface {
	Show(hints []Hint)
	Clear()
}

// Invoker follows a target.
type Invoker interface {
	Invoke(target Target) error
}

// Session labels targets while the hints mode is active and resolves
// typed labels back to targets.
type Session struct {
	symbols []rune
	source  TargetSource
	overlay Overlay
	invoker Invoker
	logger  zerolog.Logger

	digits int
	labels []string
	hints  map[string]Target
}

// NewSession creates a session over the given collaborators.
func NewSession(symbols string, source TargetSource, overlay Overlay, invoker Invoker, logger zerolog.Logger) (*Session, error) {
	runes, err := ParseSymbols(symbols)
	if err != nil {
		return nil, err
	}
	if source == nil || overlay == nil || invoker == nil {
		return nil, errors.New("hint session needs a target source, overlay and invoker")
	}
	return &Session{
		symbols: runes,
		source:  source,
		overlay: overlay,
		invoker: invoker,
		logger:  logger.With().Str("component", "hints").Logger(),
	}, nil
}

// Symbols returns the label alphabet.
func (s *Session) Symbols() string {
	return string(s.symbols)
}

// Digits returns the label length of the current labeling.
func (s *Session) Digits() int {
	return s.digits
}

// Hints returns the current labeling in target order.
func (s *Session) Hints() []Hint {
	out := make([]Hint, 0, len(s.labels))
	for _, l := range s.labels {
		out = append(out, Hint{Label: l, Target: s.hints[l]})
	}
	return out
}

// Enter is the hints mode Enter hook: it labels the current targets and
// shows them.
func (s *Session) Enter(tr mode.Transition) error {
	targets := s.source.Targets()
	if len(targets) == 0 {
		s.reset()
		return ErrNoTargets
	}

	s.digits = Digits(len(targets), len(s.symbols))
	s.labels = Labels(len(targets), s.symbols)
	s.hints = make(map[string]Target, len(targets))
	for i, t := range targets {
		s.hints[s.labels[i]] = t
	}

	s.logger.Debug().
		Str("from", tr.From).
		Int("targets", len(targets)).
		Int("digits", s.digits).
		Msg("hints shown")
	s.overlay.Show(s.Hints())
	return nil
}

// Exit is the hints mode Exit hook: it removes the labels.
func (s *Session) Exit(tr mode.Transition) error {
	s.overlay.Clear()
	s.reset()
	return nil
}

func (s *Session) reset() {
	s.digits = 0
	s.labels = nil
	s.hints = nil
}

// Match is the predicate of the hint mapping. It accepts once a full,
// assigned label has been typed.
func (s *Session) Match(seq []key.Token) keymap.MatchState {
	if s.digits == 0 || len(seq) > s.digits {
		return keymap.StateReject
	}

	var sb strings.Builder
	for _, tok := range seq {
		r, ok := tok.Char()
		if !ok || !strings.ContainsRune(string(s.symbols), r) {
			return keymap.StateReject
		}
		sb.WriteRune(r)
	}
	typed := sb.String()

	if len(seq) < s.digits {
		if hasPrefix(s.labels, typed) {
			return keymap.StateContinue
		}
		return keymap.StateReject
	}
	if _, ok := s.hints[typed]; ok {
		return keymap.StateAccept
	}
	return keymap.StateReject
}

// Follow invokes the target labeled by seq.
func (s *Session) Follow(seq []key.Token) {
	var sb strings.Builder
	for _, tok := range seq {
		r, _ := tok.Char()
		sb.WriteRune(r)
	}
	label := sb.String()

	target, ok := s.hints[label]
	if !ok {
		s.logger.Warn().Str("label", label).Msg("no target for label")
		return
	}
	if err := s.invoker.Invoke(target); err != nil {
		s.logger.Error().Err(err).Str("label", label).Msg("follow hint failed")
		return
	}
	s.logger.Debug().Str("label", label).Str("target", target.Text).Msg("hint followed")
}

// Mapping returns the Custom mapping that follows a typed label and then
// calls after (typically a switch back to normal mode).
func (s *Session) Mapping(after func()) *keymap.Custom {
	return keymap.NewCustom(FollowName, s.Match, func(seq []key.Token) {
		s.Follow(seq)
		if after != nil {
			after()
		}
	}).WithPattern("{label}")
}
