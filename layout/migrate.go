package layout

import "strings"

// nameAliases canonicalizes legacy widget-name spellings to their current
// form, mirroring the original client's canonical_name table (migrate.rs).
var nameAliases = map[string]string{
	"mindstate": "mindState", "mind_state": "mindState",
	"stance": "pbarStance", "pbarstance": "pbarStance",
	"encumbrance": "encumlevel", "encum": "encumlevel",
	"lblbps": "lblBPs", "bloodpoints": "lblBPs", "blood_points": "lblBPs",
}

// kindAliases maps legacy widget_type strings (and the hand-family
// variants that used to be distinct types) onto current kind strings.
var kindAliases = map[string]string{
	"lefthand": "hand_left", "left_hand": "hand_left",
	"righthand": "hand_right", "right_hand": "hand_right",
	"spellhand": "hand_spell", "spell_hand": "hand_spell",
	"tabbed": "tabbed_text",
}

// Migrate canonicalizes a layout parsed from a pre-CurrentSchema file in
// place: widget-name aliases, widget-kind aliases, and best-effort field
// carry-over (anything the old schema didn't set keeps its zero value,
// which ToWindow then backs with a widget-template default).
func Migrate(l *Layout) {
	for i := range l.Windows {
		w := &l.Windows[i]
		w.Name = canonicalName(w.Name)
		w.Kind = canonicalKind(w.Kind)
	}
	l.Schema = CurrentSchema
}

func canonicalName(name string) string {
	if alias, ok := nameAliases[strings.ToLower(name)]; ok {
		return alias
	}
	return name
}

func canonicalKind(kind string) string {
	lower := strings.ToLower(kind)
	if alias, ok := kindAliases[lower]; ok {
		kind, lower = alias, alias
	}
	// The legacy format modeled left/right/spell as three distinct widget
	// types (hand_left, hand_right, hand_spell, or a generic "hand" with
	// the slot implied by name); the current schema is one "hand" kind
	// with the slot carried in Title/Name rather than Kind.
	switch lower {
	case "hand_left", "hand_right", "hand_spell", "hand":
		return "hand"
	}
	return kind
}
