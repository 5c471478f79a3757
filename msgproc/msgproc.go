// Package msgproc is the glue layer between the protocol parser and the
// rest of the system: it turns protocol.Event values into gamestate and
// uicore mutations, running styled lines through the highlight table and
// routing them to every window subscribed to their stream.
//
// This generalizes the teacher's event/event.go dispatch loop (typed
// events fanned out to subscriber callbacks) from a Lua-callback bus to a
// fixed Go switch over protocol.EventType.
package msgproc

import (
	"fmt"
	"time"

	"github.com/drake/vellum/gamestate"
	"github.com/drake/vellum/highlight"
	"github.com/drake/vellum/protocol"
	"github.com/drake/vellum/uicore"
)

// RawLogger receives every raw line that crosses the wire, independent of
// routing outcome. netlog.Logger satisfies this narrowly so msgproc never
// has to import netlog directly.
type RawLogger interface {
	Write(line string)
}

// CueSink receives highlight cues (sound/TTS) for playback. Kept narrow
// for the same reason as RawLogger.
type CueSink interface {
	Play(highlight.Cue)
}

// Processor owns the three downstream stores a stream of protocol.Events
// mutates, plus the optional sinks for raw logging and highlight cues.
type Processor struct {
	Game   *gamestate.State
	UI     *uicore.UIState
	Lights *highlight.Table

	Log  RawLogger // nil disables raw logging
	Cues CueSink   // nil discards cues

	Now func() time.Time // overridable for tests; defaults to time.Now
}

// New returns a Processor wired to the given stores. lights and log/cues
// may be nil.
func New(game *gamestate.State, ui *uicore.UIState, lights *highlight.Table) *Processor {
	return &Processor{Game: game, UI: ui, Lights: lights, Now: time.Now}
}

// Handle applies one parser event, mutating state and/or routing rendered
// output to subscribed windows. raw is the original wire line this event
// was parsed from, used only for raw logging; callers that don't track
// per-event source lines may pass "".
func (p *Processor) Handle(ev protocol.Event, raw string) {
	if p.Log != nil && raw != "" {
		p.Log.Write(raw)
	}

	switch ev.Type {
	case protocol.EventStyledLine:
		p.routeLine(ev.Stream, *ev.Line, false)

	case protocol.EventPrompt:
		if ev.Line != nil {
			p.Game.SetPrompt(ev.Line.PlainText())
			p.routeLine(ev.Stream, *ev.Line, true)
		}

	case protocol.EventVitals:
		p.Game.ApplyVitals(ev.VitalID, ev.Current, ev.Max)
		p.refreshProgressWindows(ev.VitalID, ev.Current, ev.Max)

	case protocol.EventCountdown:
		p.Game.ApplyCountdown(ev.CountdownID, ev.DurationSecs, p.now())

	case protocol.EventIndicator:
		p.Game.ApplyIndicator(ev.IndicatorID, ev.Active)

	case protocol.EventHand:
		p.Game.ApplyHand(ev.HandSlot, ev.HandText, ev.HandExistID, ev.HandNoun)

	case protocol.EventCompass:
		p.Game.ApplyCompass(ev.Exits)

	case protocol.EventComponent:
		if ev.ComponentLine != nil {
			p.Game.ApplyComponent(ev.ComponentID, *ev.ComponentLine)
		}

	case protocol.EventSpellSlot:
		p.Game.ApplyHand("spell", ev.SpellName, "", "")

	case protocol.EventStreamWindow:
		p.ensureStreamWindow(ev.WindowName, ev.WindowStreams)

	case protocol.EventDialog:
		p.UI.OpenDialog(ev.DialogID, ev.DialogHTML)

	case protocol.EventDialogClose:
		p.UI.CloseDialog(ev.DialogID)

	case protocol.EventMenu:
		p.applyMenu(ev.MenuItems)

	case protocol.EventParseError:
		p.UI.SystemMessage("parse error: %s", ev.Error)

	case protocol.EventAncillary:
		// Settings/nav/resource tags with no state-model home yet; recorded
		// nowhere, matching spec §4.D's "otherwise ignored" fallback.
	}
}

func (p *Processor) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

// routeLine runs a line through the highlight table, timestamps it if the
// destination requests that, and appends it to every Text window
// subscribed to stream and every matching tab of every TabbedText window.
func (p *Processor) routeLine(stream string, line protocol.StyledLine, isPrompt bool) {
	styled := line
	if p.Lights != nil {
		var cues []highlight.Cue
		styled, cues = p.Lights.Apply(line)
		if p.Cues != nil {
			for _, c := range cues {
				p.Cues.Play(c)
			}
		}
	}

	routed := false
	for _, w := range p.UI.Windows() {
		switch d := w.Data.(type) {
		case *uicore.TextContent:
			if !w.SubscribesTo(stream) {
				continue
			}
			_ = d
			p.UI.AddLine(w.Name, p.maybeStamp(styled, w.Timestamps))
			routed = true

		case *uicore.TabbedTextContent:
			idx := d.TabForStream(stream)
			if idx < 0 {
				continue
			}
			p.UI.AddTabLine(w.Name, idx, p.maybeStamp(styled, d.Tabs[idx].Def.ShowTimestamps))
			routed = true
		}
	}

	// Prompts with no subscriber are expected (many prompts are purely a
	// state-model update); ordinary lines with no subscriber land in main
	// as a fallback so nothing server-sent is silently dropped.
	if !routed && !isPrompt {
		if w := p.UI.Window("main"); w != nil {
			if _, ok := w.Data.(*uicore.TextContent); ok {
				p.UI.AddLine("main", styled)
			}
		}
	}
}

func (p *Processor) maybeStamp(line protocol.StyledLine, stamp bool) protocol.StyledLine {
	if !stamp {
		return line
	}
	prefix := protocol.StyledSegment{Text: "[" + p.now().Format("15:04:05") + "] "}
	out := make([]protocol.StyledSegment, 0, len(line.Segments)+1)
	out = append(out, prefix)
	out = append(out, line.Segments...)
	return protocol.StyledLine{Segments: out}
}

// refreshProgressWindows updates every Progress window tracking vitalID.
func (p *Processor) refreshProgressWindows(vitalID string, current, max int) {
	for _, w := range p.UI.Windows() {
		pd, ok := w.Data.(*uicore.ProgressData)
		if !ok || pd.VitalID != vitalID {
			continue
		}
		pd.Current, pd.Max = current, max
	}
}

// ensureStreamWindow creates a Text window for a server-declared stream
// window if one doesn't already exist under that name (spec §4.D
// streamWindow handling -- these arrive mid-session and must not clobber
// a window the user has already repositioned).
func (p *Processor) ensureStreamWindow(name string, streams []string) {
	if p.UI.Window(name) != nil {
		return
	}
	p.UI.AddWindow(&uicore.Window{
		Name:    name,
		Kind:    uicore.WidgetText,
		Rect:    uicore.Rect{Row: 0, Col: 0, Rows: 10, Cols: 40},
		Visible: true,
		Streams: streams,
		Data:    uicore.NewTextContent(500),
	})
}

// applyMenu opens a context menu from a server CSV response to a link
// click, per spec §4.G (_menu fallback for links lacking a direct coord).
func (p *Processor) applyMenu(items []protocol.MenuItem) {
	popup := &uicore.PopupMenu{}
	for _, it := range items {
		popup.Items = append(popup.Items, uicore.PopupItem{Label: it.Label, GameCmd: it.Command})
	}
	if len(popup.Items) == 0 {
		p.UI.SystemMessage("received an empty menu response")
		return
	}
	p.UI.PushPopup(popup)
}

// FormatVital renders a gauge as "current/max" for windows that display
// vitals as plain text rather than a progress bar widget.
func FormatVital(g gamestate.Gauge) string {
	return fmt.Sprintf("%d/%d", g.Current, g.Max)
}
