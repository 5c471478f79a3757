package buffer

import "testing"

func TestUnboundedPassesItemsThrough(t *testing.T) {
	in, out := Unbounded[string](2, 10, nil)
	in <- "a"
	in <- "b"
	close(in)

	var got []string
	for v := range out {
		got = append(got, v)
	}
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("got %v, want [a b]", got)
	}
}

func TestUnboundedDropsOldestAtHardLimit(t *testing.T) {
	var dropped []int
	in, out := Unbounded[int](1, 5, func(d int) { dropped = append(dropped, d) })

	// Push more items than in's and out's fixed 10-slot buffers plus
	// hardLimit can hold without anyone draining out, so the queue is forced
	// past hardLimit and starts dropping the oldest -- regardless of how the
	// writer goroutine's select happens to interleave, at most 10+10+5=25 of
	// these 30 items can still be alive unread, so at least 5 must drop.
	const total = 30
	for i := 0; i < total; i++ {
		in <- i
	}
	close(in)

	var got []int
	for v := range out {
		got = append(got, v)
	}
	if len(dropped) < 5 {
		t.Fatalf("dropped = %d, want at least 5", len(dropped))
	}
	if len(got)+len(dropped) != total {
		t.Fatalf("got %d delivered + %d dropped, want %d total", len(got), len(dropped), total)
	}
}
