package protocol

import (
	"strconv"
	"strings"
)

// containerTags wrap enclosed styled text and are matched start/end;
// everything else is treated as self-closing regardless of how it's spelled
// on the wire (a bare "<indicator .../>" and a stray "<indicator ...>" with
// no matching end tag behave identically).
var containerTags = map[string]bool{
	"preset":  true,
	"a":       true,
	"d":       true,
	"compass": true,
	"component": true,
	"menu":    true,
}

// handleStartTag dispatches a fully-parsed opening tag to its handler. Tags
// not in the closed table are reported as ancillary state (spec §4.A:
// "nav/resource/settings/..." catch-all) rather than errors -- an unknown
// tag is not malformed input, just uninterpreted.
func (p *Parser) handleStartTag(name string, attrs map[string]string, selfClosing bool) {
	switch name {
	case "progressBar":
		p.handleProgressBar(attrs)
	case "roundTime", "castTime":
		p.handleCountdown(name, attrs)
	case "indicator":
		p.handleIndicator(attrs)
	case "left", "right":
		p.handleHand(name, attrs)
	case "spell":
		p.handleSpellSlot(attrs)
	case "compass":
		p.compassExits = nil
		p.inCompass = true
	case "dir":
		if p.inCompass {
			if v, ok := attrs["value"]; ok {
				p.compassExits = append(p.compassExits, v)
			}
		}
	case "component":
		p.flushLine(false)
		p.componentID = attrs["id"]
		p.componentSegs = nil
		p.inComponent = true
	case "streamWindow":
		p.handleStreamWindow(attrs)
	case "pushStream":
		p.flushLine(false)
		p.streamStack = append(p.streamStack, p.curStream)
		if id, ok := attrs["id"]; ok && id != "" {
			p.curStream = id
		}
	case "pushBold":
		p.pushStyle(styleFrame{bold: true})
	case "preset":
		p.pushStyle(styleFrame{preset: attrs["id"]})
	case "a":
		link := &LinkAnnotation{ExistID: attrs["exist"], Noun: attrs["noun"], Coord: attrs["coord"]}
		p.pushStyle(styleFrame{link: link})
	case "d":
		link := &LinkAnnotation{ExistID: "_direct_", Noun: attrs["cmd"]}
		p.pushStyle(styleFrame{link: link})
	case "menu":
		p.menuItems = nil
	case "item":
		if label, ok := attrs["label"]; ok {
			p.menuItems = append(p.menuItems, MenuItem{Label: label, Command: attrs["cmd"]})
		}
	case "openDialog":
		p.emit(Event{Type: EventDialog, DialogID: attrs["id"], DialogHTML: attrs["html"]})
	case "closeDialog":
		p.emit(Event{Type: EventDialogClose, DialogID: attrs["id"]})
	case "prompt":
		p.flushLine(false)
		p.inPrompt = true
	default:
		p.emit(Event{Type: EventAncillary, AncillaryTag: name, AncillaryAttrs: attrs})
	}

	if selfClosing || !containerTags[name] {
		p.maybeAutoClose(name)
	}
}

// maybeAutoClose pops container state for tags the wire sends self-closing
// even though they're logically scoped (e.g. "<compass><dir .../></compass>"
// always appears start/end paired in practice, but a defensive self-closed
// spelling should not wedge parser state).
func (p *Parser) maybeAutoClose(name string) {
	switch name {
	case "compass":
		p.handleEndTag("compass")
	case "component":
		p.handleEndTag("component")
	case "menu":
		p.handleEndTag("menu")
	}
}

func (p *Parser) handleEndTag(name string) {
	switch name {
	case "pushBold":
		// pop without matching push is tolerated and ignored (spec §4.A)
	case "popBold", "pop":
		p.popStyle()
	case "preset":
		p.popStyleKind(func(f styleFrame) bool { return f.preset != "" })
	case "a", "d":
		p.popStyleKind(func(f styleFrame) bool { return f.link != nil })
	case "pushStream", "popStream":
		p.flushLine(false)
		if len(p.streamStack) > 0 {
			n := len(p.streamStack) - 1
			p.curStream = p.streamStack[n]
			p.streamStack = p.streamStack[:n]
		} else {
			p.curStream = "main"
		}
	case "compass":
		if p.inCompass {
			p.inCompass = false
			p.emit(Event{Type: EventCompass, Exits: p.compassExits})
			p.compassExits = nil
		}
	case "component":
		if p.inComponent {
			p.flushLine(false)
			p.inComponent = false
			line := StyledLine{Segments: p.componentSegs}
			p.componentSegs = nil
			id := p.componentID
			p.componentID = ""
			p.emit(Event{Type: EventComponent, ComponentID: id, ComponentLine: &line})
		}
	case "menu":
		p.emit(Event{Type: EventMenu, MenuItems: p.menuItems})
		p.menuItems = nil
	case "prompt":
		if p.inPrompt {
			p.inPrompt = false
			text := p.line.String()
			p.line.Reset()
			p.segs = nil
			p.emit(Event{Type: EventPrompt, Stream: "main", Line: &StyledLine{Segments: []StyledSegment{{Text: text}}}})
			// a prompt line resets routing to the main stream (spec §4.A)
			p.streamStack = nil
			p.curStream = "main"
		}
	}
}

// cutSegment closes out whatever plain text has accumulated under the
// current style context as its own segment, without emitting a line event.
// Called whenever the style/link context is about to change so segment
// boundaries line up with tag boundaries mid-line.
func (p *Parser) cutSegment() {
	if p.line.Len() == 0 {
		return
	}
	seg := p.pending
	seg.Text = p.line.String()
	p.line.Reset()
	if p.inComponent {
		p.componentSegs = append(p.componentSegs, seg)
	} else {
		p.segs = append(p.segs, seg)
	}
}

func (p *Parser) pushStyle(f styleFrame) {
	p.cutSegment()
	p.styleStack = append(p.styleStack, f)
	p.recomputePending()
}

func (p *Parser) popStyle() {
	if len(p.styleStack) == 0 {
		return
	}
	p.cutSegment()
	p.styleStack = p.styleStack[:len(p.styleStack)-1]
	p.recomputePending()
}

// popStyleKind pops the innermost frame matching pred, searching from the
// top. preset/link scopes may nest arbitrarily with bold, so a plain pop
// would remove the wrong frame if bold was pushed after preset.
func (p *Parser) popStyleKind(pred func(styleFrame) bool) {
	p.cutSegment()
	for i := len(p.styleStack) - 1; i >= 0; i-- {
		if pred(p.styleStack[i]) {
			p.styleStack = append(p.styleStack[:i], p.styleStack[i+1:]...)
			break
		}
	}
	p.recomputePending()
}

// recomputePending derives the pending segment's style from the current
// stack: bold is true if any frame set it (style accumulates, per spec
// §4.A "style accumulates, bold carried through"); preset/link use
// innermost-wins.
func (p *Parser) recomputePending() {
	var seg StyledSegment
	for _, f := range p.styleStack {
		if f.bold {
			seg.Bold = true
		}
		if f.preset != "" {
			seg.Class = f.preset
		}
		if f.link != nil {
			seg.Link = f.link
		}
	}
	p.pending = seg
}

func (p *Parser) handleProgressBar(attrs map[string]string) {
	id := attrs["id"]
	current, max := 0, 100
	if text, ok := attrs["text"]; ok && strings.Contains(text, "/") {
		parts := strings.SplitN(text, "/", 2)
		if v, err := strconv.Atoi(strings.TrimSpace(parts[0])); err == nil {
			current = v
		}
		if v, err := strconv.Atoi(strings.TrimSpace(parts[1])); err == nil {
			max = v
		}
	} else if v, ok := attrs["value"]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			current = n
		}
	}
	p.emit(Event{Type: EventVitals, VitalID: id, Current: current, Max: max})
}

func (p *Parser) handleCountdown(tag string, attrs map[string]string) {
	id := tag
	if v, ok := attrs["id"]; ok && v != "" {
		id = v
	}
	dur := 0
	if v, ok := attrs["value"]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			dur = n
		}
	}
	p.emit(Event{Type: EventCountdown, CountdownID: id, DurationSecs: dur})
}

func (p *Parser) handleIndicator(attrs map[string]string) {
	active := false
	if v, ok := attrs["visible"]; ok {
		active = v == "y" || v == "1" || v == "true"
	}
	p.emit(Event{Type: EventIndicator, IndicatorID: attrs["id"], Active: active})
}

func (p *Parser) handleHand(slot string, attrs map[string]string) {
	p.emit(Event{
		Type:        EventHand,
		HandSlot:    slot,
		HandText:    attrs["text"],
		HandExistID: attrs["exist"],
		HandNoun:    attrs["noun"],
	})
}

func (p *Parser) handleSpellSlot(attrs map[string]string) {
	t := 0
	if v, ok := attrs["time"]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			t = n
		}
	}
	p.emit(Event{Type: EventSpellSlot, SpellName: attrs["text"], SpellTime: t})
}

func (p *Parser) handleStreamWindow(attrs map[string]string) {
	var streams []string
	if v, ok := attrs["subscribe"]; ok && v != "" {
		streams = strings.Split(v, ",")
	}
	p.emit(Event{Type: EventStreamWindow, WindowName: attrs["id"], WindowStreams: streams})
}
