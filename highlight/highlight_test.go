package highlight

import (
	"testing"

	"github.com/drake/vellum/protocol"
)

func line(text string) protocol.StyledLine {
	return protocol.StyledLine{Segments: []protocol.StyledSegment{{Text: text}}}
}

func TestTrollHighlight(t *testing.T) {
	tbl := NewTable([]*Pattern{
		{Match: "troll", CaseInsensitive: true, FG: "#ff0000"},
	}, nil)

	out, _ := tbl.Apply(line("You see a Troll here."))
	if len(out.Segments) != 3 {
		t.Fatalf("expected 3 segments, got %d: %+v", len(out.Segments), out.Segments)
	}
	if out.Segments[0].Text != "You see a " || out.Segments[1].Text != "Troll" || out.Segments[2].Text != " here." {
		t.Fatalf("unexpected segmentation: %+v", out.Segments)
	}
	if out.Segments[1].FG != "#ff0000" {
		t.Fatalf("expected matched segment styled, got %+v", out.Segments[1])
	}
}

func TestIdempotent(t *testing.T) {
	tbl := NewTable([]*Pattern{
		{Match: "troll", CaseInsensitive: true, FG: "#ff0000"},
	}, nil)

	once, _ := tbl.Apply(line("a troll walks by"))
	twice, _ := tbl.Apply(once)

	if len(once.Segments) != len(twice.Segments) {
		t.Fatalf("not idempotent: once=%+v twice=%+v", once.Segments, twice.Segments)
	}
	for i := range once.Segments {
		if once.Segments[i] != twice.Segments[i] {
			t.Fatalf("segment %d diverged: %+v vs %+v", i, once.Segments[i], twice.Segments[i])
		}
	}
}

func TestFirstMatchWinsStylingAllCuesEmitted(t *testing.T) {
	var errs int
	tbl := NewTable([]*Pattern{
		{Match: "troll", CaseInsensitive: true, FG: "#ff0000", TTS: "troll-seen"},
		{Match: "snarling troll", CaseInsensitive: true, FG: "#00ff00", TTS: "danger"},
	}, func(p *Pattern, err error) { errs++ })

	out, cues := tbl.Apply(line("a snarling troll approaches"))
	if len(cues) != 2 {
		t.Fatalf("expected both patterns to emit cues, got %d: %+v", len(cues), cues)
	}

	var trollSeg *protocol.StyledSegment
	for i := range out.Segments {
		if out.Segments[i].Text == "troll" {
			trollSeg = &out.Segments[i]
		}
	}
	if trollSeg == nil {
		t.Fatalf("expected a standalone 'troll' segment, got %+v", out.Segments)
	}
	if trollSeg.FG != "#ff0000" {
		t.Fatalf("expected first (declared-order) pattern to win styling, got %q", trollSeg.FG)
	}
}

func TestInvalidRegexDisabled(t *testing.T) {
	var gotErr error
	tbl := NewTable([]*Pattern{
		{Match: "(unclosed", Kind: MatchRegex},
	}, func(p *Pattern, err error) { gotErr = err })

	if gotErr == nil {
		t.Fatal("expected compile error callback")
	}
	out, cues := tbl.Apply(line("(unclosed parenthesis text"))
	if len(cues) != 0 {
		t.Fatalf("disabled pattern should not fire: %+v", cues)
	}
	if out.Segments[0].Text != "(unclosed parenthesis text" {
		t.Fatalf("line should pass through unchanged: %+v", out.Segments)
	}
}

func TestWholeWordBoundary(t *testing.T) {
	tbl := NewTable([]*Pattern{
		{Match: "cat", WholeWord: true, FG: "#ff0000"},
	}, nil)

	out, _ := tbl.Apply(line("concatenate a cat"))
	var matched []string
	for _, s := range out.Segments {
		if s.FG == "#ff0000" {
			matched = append(matched, s.Text)
		}
	}
	if len(matched) != 1 || matched[0] != "cat" {
		t.Fatalf("expected only the standalone 'cat' to match, got %v", matched)
	}
}
