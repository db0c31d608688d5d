package terminal

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/modalkeys/internal/config"
	"github.com/dshills/modalkeys/internal/input"
	"github.com/dshills/modalkeys/internal/input/hint"
	"github.com/dshills/modalkeys/internal/input/key"
	"github.com/dshills/modalkeys/internal/input/mode"
	"github.com/dshills/modalkeys/internal/plugin/lua"
)

// CommandQuit leaves the host. It has no default binding; Ctrl-C always
// quits.
const CommandQuit = "host.quit"

// quitRequest is posted as interrupt data to stop the event loop.
type quitRequest struct{}

// Options configures a Host.
type Options struct {
	// Screen defaults to a new terminal screen.
	Screen tcell.Screen

	// Config defaults to config.DefaultConfig().
	Config *config.Config

	// Manager, when set, feeds config reloads into the event loop.
	Manager *config.Manager

	// Page defaults to DemoPage.
	Page *Page

	// ExtraKeymaps are loaded after the configured keymap files, also on
	// reload.
	ExtraKeymaps []string

	Logger zerolog.Logger
}

// Host runs the engine against a terminal. All engine calls happen on
// the event loop goroutine.
type Host struct {
	screen  tcell.Screen
	page    *Page
	manager *config.Manager
	cfg     *config.Config
	extra   []string
	logger  zerolog.Logger

	engine  *input.Engine
	scripts *lua.Compiler
	conv    *Converter

	hints    []hint.Hint
	input    []rune
	status   string
	followed []string
	quit     bool
}

// New creates a host and builds its engine from the configuration.
func New(opts Options) (*Host, error) {
	if opts.Screen == nil {
		screen, err := tcell.NewScreen()
		if err != nil {
			return nil, fmt.Errorf("create screen: %w", err)
		}
		opts.Screen = screen
	}
	if opts.Config == nil {
		opts.Config = config.DefaultConfig()
	}
	if opts.Page == nil {
		opts.Page = DemoPage(20)
	}

	h := &Host{
		screen:  opts.Screen,
		page:    opts.Page,
		manager: opts.Manager,
		extra:   opts.ExtraKeymaps,
		logger:  opts.Logger.With().Str("component", "terminal").Logger(),
		conv:    NewConverter(),
	}
	if err := h.rebuild(opts.Config); err != nil {
		return nil, err
	}
	h.status = "f: hints  i: insert  j/k: scroll  ctrl-c: quit"
	return h, nil
}

// Engine returns the current engine. It changes on config reload.
func (h *Host) Engine() *input.Engine {
	return h.engine
}

// Page returns the displayed page.
func (h *Host) Page() *Page {
	return h.page
}

// Status returns the last status message.
func (h *Host) Status() string {
	return h.status
}

// Input returns the text typed into the input line.
func (h *Host) Input() string {
	return string(h.input)
}

// Followed returns the URLs followed so far.
func (h *Host) Followed() []string {
	return h.followed
}

// Close releases the Lua state.
func (h *Host) Close() {
	if h.scripts != nil {
		h.scripts.Close()
	}
}

// Start initializes the screen.
func (h *Host) Start() error {
	if err := h.screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	h.screen.EnableMouse()
	h.resize()
	return nil
}

// Run starts the screen and processes events until Ctrl-C, the quit
// command, or ctx is done.
func (h *Host) Run(ctx context.Context) error {
	if err := h.Start(); err != nil {
		return err
	}
	defer h.screen.Fini()

	if h.manager != nil {
		h.manager.OnConfigChange(func(cfg *config.Config) {
			// Runs on the watcher goroutine.
			if err := h.screen.PostEvent(tcell.NewEventInterrupt(cfg)); err != nil {
				h.logger.Warn().Err(err).Msg("dropped config reload")
			}
		})
		if err := h.manager.Watch(); err != nil && !errors.Is(err, config.ErrNoConfigFile) {
			h.logger.Warn().Err(err).Msg("config watch disabled")
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	done := make(chan struct{})
	g.Go(func() error {
		defer close(done)
		return h.loop()
	})
	g.Go(func() error {
		select {
		case <-ctx.Done():
			return h.screen.PostEvent(tcell.NewEventInterrupt(quitRequest{}))
		case <-done:
			return nil
		}
	})
	err := g.Wait()
	h.logStats()
	return err
}

func (h *Host) logStats() {
	st := h.engine.Stats().Snapshot()
	h.logger.Info().
		Str("session", h.engine.Session().String()).
		Uint64("tokens", st.Tokens).
		Uint64("handled", st.Handled).
		Uint64("unmatched", st.Unmatched).
		Uint64("replayed", st.Replayed).
		Dur("avg_latency", st.AvgLatency).
		Dur("p99_latency", st.P99Latency).
		Msg("engine stats")
}

func (h *Host) loop() error {
	for {
		h.draw()
		ev := h.screen.PollEvent()
		if ev == nil {
			return nil
		}
		if !h.handle(ev) {
			return nil
		}
	}
}

// handle processes one tcell event and reports whether to keep running.
func (h *Host) handle(ev tcell.Event) bool {
	switch e := ev.(type) {
	case *tcell.EventResize:
		h.screen.Sync()
		h.resize()

	case *tcell.EventKey:
		if e.Key() == tcell.KeyCtrlC {
			return false
		}
		h.dispatch(h.conv.Convert(e))

	case *tcell.EventMouse:
		if dx, dy := Wheel(e); dx != 0 || dy != 0 {
			step := h.cfg.Normal.ScrollStep
			h.page.ScrollBy(dy * step)
			h.page.ScrollX(dx * step)
			return true
		}
		h.dispatch(h.conv.Convert(e))

	case *tcell.EventInterrupt:
		switch data := e.Data().(type) {
		case quitRequest:
			return false
		case *config.Config:
			h.reload(data)
		}
	}
	return !h.quit
}

// dispatch feeds converted events to the engine and performs the default
// behavior of whatever it hands back.
func (h *Host) dispatch(events []key.Event) {
	for _, ev := range events {
		res := h.engine.HandleEvent(ev)
		if res.Disposition != input.PassThrough {
			continue
		}
		for _, out := range res.Events {
			h.deliver(out)
		}
	}
}

// deliver is what the terminal does with an event nobody bound.
func (h *Host) deliver(ev key.Event) {
	switch ev.Kind {
	case key.KindKeyPress:
		if h.engine.Mode() == mode.Insert {
			h.typeKey(ev)
			return
		}
		if tok, ok := key.Normalize(ev); ok {
			h.status = "unmapped " + tok.String()
		}

	case key.KindClick:
		pos, _ := ev.Payload.(Position)
		if ev.Button != key.ButtonLeft {
			return
		}
		if ev.Detail >= 2 {
			h.status = fmt.Sprintf("%d clicks at %d,%d", ev.Detail, pos.X, pos.Y)
			return
		}
		if i, ok := h.page.LineAt(pos.Y - pageTop); ok {
			if line, _ := h.page.Line(i); line.IsLink() {
				h.follow(i)
			}
		}

	case key.KindContextMenu:
		pos, _ := ev.Payload.(Position)
		h.status = fmt.Sprintf("context menu at %d,%d", pos.X, pos.Y)
	}
}

func (h *Host) typeKey(ev key.Event) {
	switch {
	case ev.KeyCode == key.CodeBackspace || ev.CharCode == 127:
		if n := len(h.input); n > 0 {
			h.input = h.input[:n-1]
		}
	case ev.CharCode == '\r':
		h.status = "entered: " + string(h.input)
		h.input = h.input[:0]
	case ev.CharCode >= 32 && !ev.Modifiers.HasCtrl() && !ev.Modifiers.HasAlt() && !ev.Modifiers.HasMeta():
		h.input = append(h.input, ev.CharCode)
	}
}

func (h *Host) follow(i int) error {
	line, ok := h.page.Line(i)
	if !ok || !line.IsLink() {
		return fmt.Errorf("line %d is not a link", i)
	}
	h.followed = append(h.followed, line.URL)
	h.status = "followed " + line.URL
	h.logger.Info().Str("url", line.URL).Msg("follow")
	return nil
}

func (h *Host) resize() {
	w, ht := h.screen.Size()
	h.page.SetViewport(w, max(ht-chromeRows, 0))
}

func (h *Host) reload(cfg *config.Config) {
	if err := h.rebuild(cfg); err != nil {
		h.logger.Error().Err(err).Msg("keeping previous engine")
		h.status = "config error: " + err.Error()
		return
	}
	h.status = "config reloaded"
}

// rebuild swaps in a new engine. On error the current one stays.
func (h *Host) rebuild(cfg *config.Config) error {
	engine, scripts, err := h.buildEngine(cfg)
	if err != nil {
		return err
	}
	if h.scripts != nil {
		h.scripts.Close()
	}
	h.engine, h.scripts, h.cfg = engine, scripts, cfg
	h.hints = nil
	h.logger.Debug().Str("session", engine.Session().String()).Msg("engine built")
	return nil
}

func (h *Host) buildEngine(cfg *config.Config) (*input.Engine, *lua.Compiler, error) {
	registry, err := input.LoadKeymaps(h.logger, cfg.Keymap.Dir, slices.Concat(cfg.Keymap.Files, h.extra)...)
	if err != nil {
		return nil, nil, err
	}

	session, err := hint.NewSession(cfg.Hints.Symbols, h.page, overlay{h}, invoker{h}, h.logger)
	if err != nil {
		return nil, nil, err
	}

	scripts := lua.NewCompiler(lua.WithTimeout(cfg.Lua.Timeout), lua.WithLogger(h.logger))
	engine, err := input.New(input.Options{
		Keymaps:  registry,
		Commands: h.commands(cfg.Normal.ScrollStep),
		Hints:    session,
		Scripts:  scripts,
		MaxCount: cfg.Normal.MaxCount,
		Logger:   h.logger,
	})
	if err != nil {
		scripts.Close()
		return nil, nil, err
	}
	return engine, scripts, nil
}

func (h *Host) commands(step int) *input.Commands {
	c := input.NewCommands()
	scroll := func(name, desc string, fn func()) {
		// Registration only fails for empty names or nil actions.
		_ = c.Register(name, desc, func() {
			fn()
			h.status = name
		})
	}
	scroll(input.CommandScrollDown, "Scroll down", func() { h.page.ScrollBy(step) })
	scroll(input.CommandScrollUp, "Scroll up", func() { h.page.ScrollBy(-step) })
	scroll(input.CommandScrollLeft, "Scroll left", func() { h.page.ScrollX(-step) })
	scroll(input.CommandScrollRight, "Scroll right", func() { h.page.ScrollX(step) })
	scroll(input.CommandScrollTop, "Scroll to top", h.page.ScrollTop)
	scroll(input.CommandScrollBottom, "Scroll to bottom", h.page.ScrollBottom)
	_ = c.Register(CommandQuit, "Quit", func() { h.quit = true })
	return c
}

// overlay shows hint labels on the page.
type overlay struct{ h *Host }

func (o overlay) Show(hints []hint.Hint) { o.h.hints = hints }
func (o overlay) Clear()                 { o.h.hints = nil }

// invoker follows hinted links.
type invoker struct{ h *Host }

func (i invoker) Invoke(target hint.Target) error {
	line, ok := target.Payload.(int)
	if !ok {
		return fmt.Errorf("hint target %q has no line", target.Text)
	}
	return i.h.follow(line)
}
