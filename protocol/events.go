package protocol

// EventType closes the set of semantic events the parser can emit.
type EventType int

const (
	EventStyledLine EventType = iota
	EventParseError
	EventVitals
	EventCountdown
	EventIndicator
	EventDialog
	EventHand
	EventCompass
	EventComponent
	EventStreamWindow
	EventMenu
	EventDialogClose
	EventSpellSlot
	EventPrompt
	EventAncillary
)

// StyledSegment is a run of characters sharing style, per spec §3.
type StyledSegment struct {
	Text  string
	FG    string // hex color, empty = inherit
	BG    string
	Bold  bool
	Class string // "normal", "monster", "player", "whisper", "thought", ...
	Link  *LinkAnnotation
}

// LinkAnnotation marks a segment as clickable. ExistID "_direct_" means
// "click sends Noun verbatim"; any other id means "click opens a context
// menu request".
type LinkAnnotation struct {
	ExistID string
	Noun    string
	Coord   string // optional command-list lookup key
}

// StyledLine is an ordered, atomically-emitted sequence of segments.
type StyledLine struct {
	Segments []StyledSegment
}

// PlainText returns the concatenated, unstyled text of the line -- the
// "plain-text projection" the highlight engine matches against.
func (l StyledLine) PlainText() string {
	var total int
	for _, s := range l.Segments {
		total += len(s.Text)
	}
	buf := make([]byte, 0, total)
	for _, s := range l.Segments {
		buf = append(buf, s.Text...)
	}
	return string(buf)
}

// Event is one semantic unit produced by Parser.Feed. Only the fields
// relevant to Type are populated; the rest are zero.
type Event struct {
	Type EventType

	Stream string      // destination stream, for EventStyledLine/EventPrompt
	Line   *StyledLine // for EventStyledLine

	Error string // for EventParseError

	// Vitals
	VitalID  string
	Current  int
	Max      int

	// Countdown
	CountdownID  string
	DurationSecs int

	// Indicator
	IndicatorID string
	Active      bool

	// Dialog
	DialogID   string
	DialogHTML string

	// Hand
	HandSlot string // "left", "right", "spell"
	HandText string
	HandExistID string
	HandNoun string

	// Compass
	Exits []string

	// Component (room-region replacement)
	ComponentID   string
	ComponentLine *StyledLine

	// StreamWindow
	WindowName    string
	WindowStreams []string

	// Menu
	MenuItems []MenuItem

	// SpellSlot
	SpellName string
	SpellTime int

	// Ancillary (nav/resource/settings/... catch-all)
	AncillaryTag   string
	AncillaryAttrs map[string]string
}

// MenuItem is one entry in a server-pushed context menu response.
type MenuItem struct {
	Label   string
	Command string
}
