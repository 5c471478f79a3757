// Package gamestate holds the plain-data record of current world state:
// vitals, hands, spells, compass, room, indicators, and active effects.
//
// This generalizes the teacher's event-driven field layout (mud/types.go)
// from MUD-specific fields to the spec's vitals/hands/spells/room model.
// Only msgproc mutates a State; everything else reads it.
package gamestate

import (
	"time"

	"github.com/drake/vellum/protocol"
)

// Gauge is a (current, max) pair, e.g. health or mana.
type Gauge struct {
	Current int
	Max     int
}

// Hand holds the existId/noun/text of an item held in a hand slot, or the
// currently prepared spell.
type Hand struct {
	Text    string
	ExistID string
	Noun    string
}

// Effect is an active buff/debuff/disease keyed by id, with a wall-clock
// expiry the renderer can diff against time.Now() on read.
type Effect struct {
	ID       string
	Label    string
	ExpireAt time.Time // zero value = no expiry known
}

// Countdown is a roundTime/castTime-style timer with a wall-clock end.
type Countdown struct {
	ID    string
	EndAt time.Time
}

// Room is the current room description, held as styled-segment lists so
// server-driven coloring (monster/player/link spans) survives into state.
type Room struct {
	Title       protocol.StyledLine
	Description protocol.StyledLine
	Players     []protocol.StyledLine
	Objects     []protocol.StyledLine
	Exits       []string
}

// State is the full mutable game-state record. Zero value is ready to use.
type State struct {
	Vitals map[string]Gauge

	Left  Hand
	Right Hand
	Spell Hand

	Compass []string

	Room Room

	Indicators map[string]bool

	Effects    map[string]Effect
	Countdowns map[string]Countdown

	LastPrompt string
}

// New returns an initialized, empty State.
func New() *State {
	return &State{
		Vitals:     make(map[string]Gauge),
		Indicators: make(map[string]bool),
		Effects:    make(map[string]Effect),
		Countdowns: make(map[string]Countdown),
	}
}

// ApplyVitals updates a named gauge (health, mana, stamina, spirit, ...).
func (s *State) ApplyVitals(id string, current, max int) {
	s.Vitals[id] = Gauge{Current: current, Max: max}
}

// Vital returns the gauge for id, and whether it has ever been set.
func (s *State) Vital(id string) (Gauge, bool) {
	g, ok := s.Vitals[id]
	return g, ok
}

// ApplyHand updates a hand/spell slot's content.
func (s *State) ApplyHand(slot, text, existID, noun string) {
	h := Hand{Text: text, ExistID: existID, Noun: noun}
	switch slot {
	case "left":
		s.Left = h
	case "right":
		s.Right = h
	case "spell":
		s.Spell = h
	}
}

// ApplyCompass replaces the set of active exits.
func (s *State) ApplyCompass(exits []string) {
	s.Compass = append([]string(nil), exits...)
}

// ApplyIndicator sets a named boolean indicator (e.g. "kneeling", "bleeding").
func (s *State) ApplyIndicator(id string, active bool) {
	s.Indicators[id] = active
}

// ApplyCountdown starts or refreshes a countdown timer ending durationSecs
// from now.
func (s *State) ApplyCountdown(id string, durationSecs int, now time.Time) {
	if durationSecs <= 0 {
		delete(s.Countdowns, id)
		return
	}
	s.Countdowns[id] = Countdown{ID: id, EndAt: now.Add(time.Duration(durationSecs) * time.Second)}
}

// Remaining returns the time left on a countdown, or 0 if it doesn't exist
// or has already elapsed.
func (s *State) Remaining(id string, now time.Time) time.Duration {
	c, ok := s.Countdowns[id]
	if !ok {
		return 0
	}
	if d := c.EndAt.Sub(now); d > 0 {
		return d
	}
	return 0
}

// ApplyComponent replaces a named room-region (title/description/players/
// objects), decoding the conventional component ids used by the wire
// protocol (e.g. "room desc", "room players", "room objs", "room exits").
func (s *State) ApplyComponent(id string, line protocol.StyledLine) {
	switch id {
	case "room desc":
		s.Room.Description = line
	case "room players":
		s.Room.Players = append(s.Room.Players[:0], line)
	case "room objs":
		s.Room.Objects = append(s.Room.Objects[:0], line)
	case "room exits":
		s.Room.Exits = exitsFromLine(line)
	default:
		// Room title updates arrive under the plain id "room" rather than
		// "room desc"; any other component id is ignored.
		if id == "room" {
			s.Room.Title = line
		}
	}
}

func exitsFromLine(line protocol.StyledLine) []string {
	var out []string
	for _, seg := range line.Segments {
		if seg.Link != nil && seg.Link.Noun != "" {
			out = append(out, seg.Link.Noun)
		}
	}
	return out
}

// ApplyEffect upserts an active effect with its expiry.
func (s *State) ApplyEffect(id, label string, expireAt time.Time) {
	s.Effects[id] = Effect{ID: id, Label: label, ExpireAt: expireAt}
}

// ExpireEffects removes effects whose ExpireAt has passed, returning the
// ids removed so callers can invalidate any window displaying them.
func (s *State) ExpireEffects(now time.Time) []string {
	var removed []string
	for id, e := range s.Effects {
		if !e.ExpireAt.IsZero() && !e.ExpireAt.After(now) {
			delete(s.Effects, id)
			removed = append(removed, id)
		}
	}
	return removed
}

// SetPrompt records the most recent prompt line's plain text.
func (s *State) SetPrompt(text string) {
	s.LastPrompt = text
}
