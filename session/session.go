// Package session is the central orchestrator: the single-goroutine main
// task that drives the event loop (spec §5 "Main task drives an event
// loop: poll frontend events -> dispatch -> drain the server-message
// channel -> render if dirty"). It owns every piece of live state -- game
// state, UI state, highlight table, keybind table, layout store -- and is
// the only place that mutates any of them.
//
// Grounded directly on the teacher's session.Session: its processEvents
// priority-drain select loop (drain UI-outbound non-blocking, then a
// multi-way select across network/timer/ticker) is the shape this
// package's tick loop generalizes from a Lua-scripted client to one
// driving uicore/msgproc/input instead.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/drake/vellum/config"
	"github.com/drake/vellum/event"
	"github.com/drake/vellum/frontend"
	"github.com/drake/vellum/gamestate"
	"github.com/drake/vellum/highlight"
	"github.com/drake/vellum/input"
	"github.com/drake/vellum/keybind"
	"github.com/drake/vellum/layout"
	"github.com/drake/vellum/msgproc"
	"github.com/drake/vellum/netconn"
	"github.com/drake/vellum/netlog"
	"github.com/drake/vellum/perf"
	"github.com/drake/vellum/protocol"
	"github.com/drake/vellum/text"
	"github.com/drake/vellum/timer"
	"github.com/drake/vellum/uicore"
	"github.com/drake/vellum/vconfig"
)

// frameInterval is the event-poll timeout that doubles as the frame clock
// (spec §5 "~60 Hz").
const frameInterval = time.Second / 60

// Clipboard is the external collaborator for text copy (spec §1 Non-goal:
// clipboard access is out of scope). Session only computes the selected
// plain text; a frontend wires in a real clipboard if it wants one.
type Clipboard interface {
	Set(text string)
}

// Config is the resolved set of parameters a Session needs to connect and
// identify itself, folding the spec §6 CLI surface and §3 Config together.
type Config struct {
	Settings *vconfig.Settings

	Direct    bool
	Account   string
	Password  string
	Character string
	Game      string

	RelayHost string
	RelayPort int

	EnableRawLog bool
}

// Session is the frontend-agnostic orchestrator. Exactly one goroutine
// (Run's caller) ever touches its fields.
type Session struct {
	cfg Config
	fe  frontend.Frontend

	Clipboard Clipboard

	game    *gamestate.State
	ui      *uicore.UIState
	parser  *protocol.Parser
	lights  *highlight.Table
	proc    *msgproc.Processor
	binds   *keybind.Table
	router  *input.Router
	layouts *layout.Store
	perfc   *perf.Collector
	rawlog  *netlog.Logger

	conn *netconn.Conn

	cmdList  map[string]string // coord -> command template (spec §4.G)
	ttsQueue []highlight.Cue

	running bool
}

// New wires every package into a Session sized to the frontend's current
// surface, applies the merged config's keybinds/highlights, and loads the
// best-fitting stored layout (or the default one).
func New(fe frontend.Frontend, cfg Config) (*Session, error) {
	cols, rows := fe.Size()
	ui := uicore.New(cols, rows)
	game := gamestate.New()

	lights := highlight.NewTable(patternPointers(cfg.Settings.Highlights.Value), func(p *highlight.Pattern, err error) {
		ui.SystemMessage("highlight: disabling pattern %q: %v", p.Match, err)
	})

	binds := keybind.Default()
	for _, b := range cfg.Settings.Keybinds.Value {
		binds.Set(b)
	}

	layouts, err := layout.NewStore(config.LayoutsDir())
	if err != nil {
		return nil, fmt.Errorf("session: opening layout store: %w", err)
	}

	var rawlog *netlog.Logger
	if cfg.EnableRawLog {
		rawlog, err = netlog.Open(netlog.DefaultOptions(config.RawLogDir()))
		if err != nil {
			return nil, fmt.Errorf("session: opening raw log: %w", err)
		}
	}

	proc := msgproc.New(game, ui, lights)
	if rawlog != nil {
		proc.Log = rawlog
	}

	s := &Session{
		cfg:     cfg,
		fe:      fe,
		game:    game,
		ui:      ui,
		parser:  protocol.New(),
		lights:  lights,
		proc:    proc,
		binds:   binds,
		router:  input.NewRouter(binds, ui),
		layouts: layouts,
		perfc:   perf.New(nil),
		rawlog:  rawlog,
		cmdList: map[string]string{},
	}
	proc.Cues = s

	s.loadInitialLayout(cols, rows)
	return s, nil
}

func patternPointers(ps []highlight.Pattern) []*highlight.Pattern {
	out := make([]*highlight.Pattern, len(ps))
	for i := range ps {
		out[i] = &ps[i]
	}
	return out
}

func (s *Session) loadInitialLayout(cols, rows int) {
	l, err := s.layouts.Best(cols, rows)
	if err != nil {
		l = layout.Default(cols, rows)
	}
	layout.Apply(l, s.ui)
}

// Play implements msgproc.CueSink: TTS cues queue for TtsNext/TtsStop to
// walk through; sound playback is an explicit spec Non-goal and is
// otherwise discarded here.
func (s *Session) Play(cue highlight.Cue) {
	if cue.TTS != "" {
		s.ttsQueue = append(s.ttsQueue, cue)
	}
}

// connect dials the relay or direct-mode connector per cfg.Direct (spec
// §4.H), storing the resulting Conn for the tick loop to drain.
func (s *Session) connect(ctx context.Context) error {
	if s.cfg.Direct {
		conn, err := netconn.DialDirect(netconn.DirectConfig{
			Account:   s.cfg.Account,
			Password:  s.cfg.Password,
			Character: s.cfg.Character,
			GameCode:  netconn.GameCodeForName(s.cfg.Game),
			CertPath:  config.CertFile(),
		})
		if err != nil {
			return fmt.Errorf("session: direct connect: %w", err)
		}
		s.conn = conn
		return nil
	}
	conn, err := netconn.DialRelay(ctx, s.cfg.RelayHost, s.cfg.RelayPort)
	if err != nil {
		return fmt.Errorf("session: relay connect: %w", err)
	}
	s.conn = conn
	return nil
}

// Run connects, then drives the main task until ctx is cancelled, a
// .quit/Quit action fires, or the connection drops. It returns nil on a
// clean shutdown and a non-nil error only for a connection failure before
// the first handshake completes (spec §6 exit-code contract).
//
// The frame clock is a repeating timer.Service timer rather than a bare
// time.Ticker: it generalizes the teacher's Session.processEvents
// multi-way select across a timer-fired channel to this package's
// single ~60Hz cadence (spec §5 "the event-poll timeout ... doubles as
// the frame clock").
func (s *Session) Run(ctx context.Context) error {
	if err := s.connect(ctx); err != nil {
		return err
	}
	defer s.shutdown()

	s.running = true
	frames := make(chan timer.Event, 4)
	frameClock := timer.NewService(frames)
	defer frameClock.CancelAll()
	frameClock.Every(frameInterval)

	for s.running {
		select {
		case <-ctx.Done():
			s.running = false
		case <-frames:
			s.tick()
		}
	}
	return nil
}

// tick is one pass of the main task: poll frontend input, dispatch it,
// drain whatever the network reader has queued, then render (spec §5).
func (s *Session) tick() {
	for _, ev := range s.fe.PollEvents() {
		s.dispatchFrontendEvent(ev)
		if !s.running {
			break
		}
	}

	s.drainNetwork()
	s.expireEffects()

	s.perfc.RecordFrame()
	s.perfc.UpdateMemoryProxy(s.bufferedLines(), len(s.ui.Windows()))
	s.fe.Render(s.ui)
}

func (s *Session) drainNetwork() {
	for {
		select {
		case msg, ok := <-s.conn.Events:
			if !ok {
				s.running = false
				return
			}
			s.handleConnEvent(msg)
		default:
			return
		}
	}
}

// handleConnEvent wraps a raw netconn.Event in the event package's
// Type/Payload envelope and hands it to dispatchEvent, so the connection
// and the input router (applyOutcome) funnel through the same event
// loop switch.
func (s *Session) handleConnEvent(msg netconn.Event) {
	switch msg.Kind {
	case netconn.EventLine:
		s.dispatchEvent(event.Event{Type: event.NetLine, Payload: event.Line(msg.Line)})
	case netconn.EventDisconnected:
		s.dispatchEvent(event.Event{Type: event.SysDisconnect})
	}
}

// dispatchEvent is the main task's event-loop switch (spec §5 "poll
// frontend events -> dispatch"), generalizing the teacher's
// Session.processEvents Type/Payload dispatch from Lua script events to
// net lines, user input, and disconnects.
func (s *Session) dispatchEvent(ev event.Event) {
	switch ev.Type {
	case event.NetLine, event.NetPrompt:
		raw := string(ev.Payload.(event.Line))
		s.perfc.RecordBytesIn(uint64(len(raw) + 1))

		// Strip any legacy ANSI color left over from pre-XML preamble text
		// before handing the line to the tag-based parser; the untouched
		// raw line still goes to proc.Handle for raw logging.
		clean := text.NewLine(raw).Clean

		start := time.Now()
		events := s.parser.Feed([]byte(clean + "\n"))
		s.perfc.RecordParse(time.Since(start))
		s.perfc.RecordElementsParsed(uint64(len(events)))
		for _, pev := range events {
			s.proc.Handle(pev, raw)
		}
	case event.SysDisconnect:
		s.ui.SystemMessage("disconnected from server")
		s.running = false
	case event.UserInput:
		s.send(string(ev.Payload.(event.Line)))
	case event.AsyncResult:
		if cb, ok := ev.Payload.(event.Callback); ok && cb != nil {
			cb()
		}
	}
}

func (s *Session) expireEffects() {
	for _, id := range s.game.ExpireEffects(time.Now()) {
		s.ui.SystemMessage("effect expired: %s", id)
	}
}

func (s *Session) bufferedLines() int {
	total := 0
	for _, w := range s.ui.Windows() {
		switch d := w.Data.(type) {
		case *uicore.TextContent:
			total += len(d.Lines)
		case *uicore.TabbedTextContent:
			for _, tab := range d.Tabs {
				total += len(tab.Content.Lines)
			}
		}
	}
	return total
}

// shutdown tears down the connection and raw log. The network tasks stop
// as soon as the socket closes; pending sends after that are simply lost
// (spec §5 "pending channel sends after abort are dropped").
func (s *Session) shutdown() {
	if s.conn != nil {
		s.conn.Close()
	}
	if s.rawlog != nil {
		s.rawlog.Close()
	}
	s.fe.Cleanup()
}

// send queues a command for the network writer, newline-terminated by the
// writer itself (spec §4.H).
func (s *Session) send(cmd string) {
	if cmd == "" || s.conn == nil {
		return
	}
	select {
	case s.conn.Commands <- cmd:
		s.perfc.RecordBytesOut(uint64(len(cmd) + 1))
	default:
	}
}

// cmdLookup resolves a link's coord to a command template, per spec §4.G
// ("look up the command in a command-list table with placeholder
// substitution"). The table itself is populated by AddCommandListEntry;
// its on-disk source format is unspecified by spec §6, so callers own
// populating it (e.g. from a bundled command-list file).
func (s *Session) cmdLookup(coord string) (string, bool) {
	tmpl, ok := s.cmdList[coord]
	return tmpl, ok
}

// AddCommandListEntry registers a coord -> template mapping for
// ResolveLinkClick to use.
func (s *Session) AddCommandListEntry(coord, template string) {
	s.cmdList[coord] = template
}

// dispatchFrontendEvent routes one frontend.Event to the input router (for
// keys) or directly mutates UI state (for resize/mouse), per spec §4.G.
func (s *Session) dispatchFrontendEvent(ev frontend.Event) {
	switch ev.Kind {
	case frontend.EventResize:
		s.ui.Resize(ev.Cols, ev.Rows)
	case frontend.EventKey:
		s.applyOutcome(s.router.HandleKey(keybind.ParseKey(ev.KeyCode)))
	case frontend.EventMouse:
		s.dispatchMouse(ev)
	}
}

func (s *Session) applyOutcome(o input.Outcome) {
	switch {
	case o.Quit:
		s.running = false
	case o.Command != "":
		s.dispatchEvent(event.Event{Type: event.UserInput, Payload: event.Line(o.Command)})
	case o.DotCommand != "":
		if sentinel := s.handleDotCommand(o.DotCommand); sentinel != "" {
			s.ui.SystemMessage(sentinel)
		}
	case o.Action != "":
		s.handleAction(o.Action)
	}
}
