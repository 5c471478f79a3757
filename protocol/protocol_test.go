package protocol

import (
	"reflect"
	"testing"
)

func feedAll(t *testing.T, chunks ...string) []Event {
	t.Helper()
	p := New()
	var all []Event
	for _, c := range chunks {
		all = append(all, p.Feed([]byte(c))...)
	}
	return all
}

func TestVitalsUpdate(t *testing.T) {
	events := feedAll(t, `<progressBar id='health' value='50' text='60/120'/>`)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d: %+v", len(events), events)
	}
	e := events[0]
	if e.Type != EventVitals || e.VitalID != "health" || e.Current != 60 || e.Max != 120 {
		t.Fatalf("unexpected event: %+v", e)
	}
}

func TestStyledRoomLineWithLink(t *testing.T) {
	events := feedAll(t, "You see <a exist='#123' noun='troll'>a snarling troll</a> here.\n")
	if len(events) != 1 || events[0].Type != EventStyledLine {
		t.Fatalf("expected 1 styled line event, got %+v", events)
	}
	segs := events[0].Line.Segments
	if len(segs) != 3 {
		t.Fatalf("expected 3 segments, got %d: %+v", len(segs), segs)
	}
	if segs[0].Text != "You see " || segs[2].Text != " here." {
		t.Fatalf("unexpected surrounding text: %+v", segs)
	}
	if segs[1].Text != "a snarling troll" {
		t.Fatalf("unexpected link text: %+v", segs[1])
	}
	if segs[1].Link == nil || segs[1].Link.ExistID != "#123" || segs[1].Link.Noun != "troll" {
		t.Fatalf("unexpected link annotation: %+v", segs[1].Link)
	}
}

func TestResumptionLaw(t *testing.T) {
	whole := `before <progressBar id='mana' value='10'/> middle <a exist='#1' noun='x'>link</a> after` + "\n"

	oneShot := feedAll(t, whole)

	for split := 0; split < len(whole); split++ {
		chunked := feedAll(t, whole[:split], whole[split:])
		if !reflect.DeepEqual(oneShot, chunked) {
			t.Fatalf("split at %d diverged:\noneShot=%+v\nchunked=%+v", split, oneShot, chunked)
		}
	}
}

func TestMalformedTagResyncs(t *testing.T) {
	events := feedAll(t, "<bad tag here\nnext line\n")
	if len(events) < 2 {
		t.Fatalf("expected at least a parse error and the resynced line, got %+v", events)
	}
	if events[0].Type != EventParseError {
		t.Fatalf("expected first event to be parse error, got %+v", events[0])
	}
	last := events[len(events)-1]
	if last.Type != EventStyledLine || last.Line.PlainText() != "next line" {
		t.Fatalf("expected resynced line event, got %+v", last)
	}
}

func TestOverlongTagFraming(t *testing.T) {
	long := "<preset id=\""
	for i := 0; i < MaxTagLength; i++ {
		long += "x"
	}
	events := feedAll(t, long+"\n")
	if events[0].Type != EventParseError {
		t.Fatalf("expected framing violation error, got %+v", events[0])
	}
}

func TestCompassExits(t *testing.T) {
	events := feedAll(t, `<compass><dir value="n"/><dir value="se"/></compass>`)
	if len(events) != 1 || events[0].Type != EventCompass {
		t.Fatalf("expected 1 compass event, got %+v", events)
	}
	want := []string{"n", "se"}
	if !reflect.DeepEqual(events[0].Exits, want) {
		t.Fatalf("exits = %v, want %v", events[0].Exits, want)
	}
}

func TestPromptResetsStream(t *testing.T) {
	p := New()
	p.Feed([]byte("<pushStream id=\"death\"/>dead body here\n"))
	events := p.Feed([]byte(`<prompt time="123">&gt;</prompt>`))
	if len(events) != 1 || events[0].Type != EventPrompt {
		t.Fatalf("expected prompt event, got %+v", events)
	}
	if p.curStream != "main" {
		t.Fatalf("expected stream reset to main, got %q", p.curStream)
	}
}
