// Package highlight implements the pattern-based rewrite pipeline: matching
// a StyledLine's plain-text projection against an ordered table of
// highlight patterns, applying styling to matched segments, and collecting
// side-effect cues (sound, text-to-speech).
//
// Compiled regex patterns are cached in an LRU (hashicorp/golang-lru/v2,
// a teacher transitive dependency) so repeated config reloads of the same
// pattern set don't recompile identical expressions.
package highlight

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/drake/vellum/protocol"
)

// MatchKind selects substring or regex matching for a pattern.
type MatchKind int

const (
	MatchSubstring MatchKind = iota
	MatchRegex
)

// Scope controls whether a pattern restyles the whole line or only the
// matched token(s).
type Scope int

const (
	ScopeToken Scope = iota
	ScopeLine
)

// Pattern is one entry in the highlight table (spec §3 HighlightPattern).
type Pattern struct {
	Match         string
	Kind          MatchKind
	CaseInsensitive bool
	WholeWord     bool
	FG, BG        string
	Bold          bool
	Scope         Scope
	SoundFile     string
	SoundVolume   float64
	TTS           string

	compiled *regexp.Regexp // set by Table.compile; nil for substring patterns
	disabled bool
	compileErr error
}

// Cue is a side effect emitted alongside a restyled line.
type Cue struct {
	SoundFile   string
	SoundVolume float64
	TTS         string
}

// Table is an ordered highlight pattern list plus its regex cache.
type Table struct {
	mu       sync.Mutex
	patterns []*Pattern
	cache    *lru.Cache[string, *regexp.Regexp]

	// onCompileError is called once per pattern that fails to compile
	// (spec §7 "Highlight compile error ... disables the offending
	// pattern and logs once").
	onCompileError func(p *Pattern, err error)
}

// NewTable builds a Table from patterns in declared order, pre-compiling
// every regex pattern immediately (spec §4.C: "Regex patterns are
// pre-compiled on config load").
func NewTable(patterns []*Pattern, onCompileError func(*Pattern, error)) *Table {
	cache, _ := lru.New[string, *regexp.Regexp](256)
	t := &Table{patterns: patterns, cache: cache, onCompileError: onCompileError}
	for _, p := range t.patterns {
		t.compile(p)
	}
	return t
}

func (t *Table) compile(p *Pattern) {
	if p.Kind != MatchRegex {
		return
	}
	key := p.Match
	if p.CaseInsensitive {
		key = "(?i)" + key
	}
	if cached, ok := t.cache.Get(key); ok {
		p.compiled = cached
		return
	}
	re, err := regexp.Compile(key)
	if err != nil {
		p.disabled = true
		p.compileErr = err
		if t.onCompileError != nil {
			t.onCompileError(p, fmt.Errorf("highlight: pattern %q failed to compile: %w", p.Match, err))
		}
		return
	}
	t.cache.Add(key, re)
	p.compiled = re
}

// claimedRange tracks a byte span of the plain-text projection already
// restyled by an earlier (higher-priority) pattern.
type claimedRange struct{ start, end int }

func overlaps(a, b claimedRange) bool {
	return a.start < b.end && b.start < a.end
}

// Apply runs the full pattern table against a line, returning the
// (possibly resegmented and restyled) line and the cues collected from
// every matching pattern -- including patterns whose styling lost to an
// earlier claim. First-match-wins governs styling only; cues fire for
// every match (spec §4.C, §9 Open Question b).
func (t *Table) Apply(line protocol.StyledLine) (protocol.StyledLine, []Cue) {
	t.mu.Lock()
	defer t.mu.Unlock()

	plain := line.PlainText()
	if plain == "" {
		return line, nil
	}

	var cues []Cue
	var claimed []claimedRange
	var applied []styledRange

	for _, p := range t.patterns {
		if p.disabled {
			continue
		}
		for _, m := range p.findAll(plain) {
			if m.SoundFile != "" || p.TTS != "" {
				cues = append(cues, Cue{SoundFile: p.SoundFile, SoundVolume: p.SoundVolume, TTS: p.TTS})
			}
			r := claimedRange{m.start, m.end}
			if p.Scope == ScopeLine {
				r = claimedRange{0, len(plain)}
			}
			free := true
			for _, c := range claimed {
				if overlaps(c, r) {
					free = false
					break
				}
			}
			if !free {
				continue
			}
			claimed = append(claimed, r)
			applied = append(applied, styledRange{claimedRange: r, fg: p.FG, bg: p.BG, bold: p.Bold})
		}
	}

	if len(applied) == 0 {
		return line, cues
	}

	return resegment(plain, line, applied), cues
}

type match struct {
	start, end int
	SoundFile  string
}

// styledRange is a claimed byte range paired with the styling a winning
// pattern applied to it.
type styledRange struct {
	claimedRange
	fg, bg string
	bold   bool
}

// findAll returns every match of p against plain, with per-match cue info
// (cues come from the pattern, not the match, but this keeps call sites
// uniform).
func (p *Pattern) findAll(plain string) []match {
	if p.disabled {
		return nil
	}
	hay := plain
	if p.Kind == MatchSubstring && p.CaseInsensitive {
		hay = strings.ToLower(plain)
	}
	var out []match
	switch p.Kind {
	case MatchRegex:
		if p.compiled == nil {
			return nil
		}
		for _, loc := range p.compiled.FindAllStringIndex(plain, -1) {
			out = append(out, match{start: loc[0], end: loc[1], SoundFile: p.SoundFile})
		}
	default:
		needle := p.Match
		if p.CaseInsensitive {
			needle = strings.ToLower(needle)
		}
		if needle == "" {
			return nil
		}
		start := 0
		for {
			idx := strings.Index(hay[start:], needle)
			if idx < 0 {
				break
			}
			s := start + idx
			e := s + len(needle)
			if !p.WholeWord || isWordBoundary(plain, s, e) {
				out = append(out, match{start: s, end: e, SoundFile: p.SoundFile})
			}
			start = e
			if start >= len(hay) {
				break
			}
		}
	}
	return out
}

// isWordBoundary implements ASCII word-boundary semantics for whole-word
// substring matching.
func isWordBoundary(s string, start, end int) bool {
	isWord := func(b byte) bool {
		return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9') || b == '_'
	}
	if start > 0 && isWord(s[start-1]) {
		return false
	}
	if end < len(s) && isWord(s[end]) {
		return false
	}
	return true
}

// resegment rebuilds a StyledLine's segments so the claimed ranges occupy
// their own segment(s) with pattern styling applied, preserving every
// other byte's original segment styling and any existing link annotation.
func resegment(plain string, line protocol.StyledLine, applied []styledRange) protocol.StyledLine {
	// Build a byte->source-segment-index map once, then walk cut points in
	// order, copying through unclaimed runs and overriding claimed ones.
	segAt := make([]int, len(plain))
	pos := 0
	for i, seg := range line.Segments {
		for range len(seg.Text) {
			if pos < len(segAt) {
				segAt[pos] = i
			}
			pos++
		}
	}

	cuts := make([]int, 0, len(applied)*2+2)
	cuts = append(cuts, 0, len(plain))
	for _, a := range applied {
		cuts = append(cuts, a.start, a.end)
	}
	cuts = uniqueSorted(cuts)

	var out []protocol.StyledSegment
	for i := 0; i+1 < len(cuts); i++ {
		s, e := cuts[i], cuts[i+1]
		if s >= e {
			continue
		}
		base := line.Segments[segAt[s]]
		text := plain[s:e]
		seg := protocol.StyledSegment{Text: text, FG: base.FG, BG: base.BG, Bold: base.Bold, Class: base.Class, Link: base.Link}
		for _, a := range applied {
			if a.start <= s && e <= a.end {
				if a.fg != "" {
					seg.FG = a.fg
				}
				if a.bg != "" {
					seg.BG = a.bg
				}
				if a.bold {
					seg.Bold = true
				}
				break
			}
		}
		out = append(out, seg)
	}
	return protocol.StyledLine{Segments: mergeAdjacent(out)}
}

func uniqueSorted(xs []int) []int {
	// small-N insertion sort + dedup; pattern tables and per-line match
	// counts are small enough that this beats importing sort for clarity.
	for i := 1; i < len(xs); i++ {
		v := xs[i]
		j := i - 1
		for j >= 0 && xs[j] > v {
			xs[j+1] = xs[j]
			j--
		}
		xs[j+1] = v
	}
	out := xs[:0]
	for i, v := range xs {
		if i == 0 || v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}

// mergeAdjacent joins consecutive segments with identical styling, keeping
// output minimal (a pattern matching a whole already-plain line shouldn't
// fragment it further than necessary).
func mergeAdjacent(segs []protocol.StyledSegment) []protocol.StyledSegment {
	if len(segs) == 0 {
		return segs
	}
	out := []protocol.StyledSegment{segs[0]}
	for _, s := range segs[1:] {
		last := &out[len(out)-1]
		if last.FG == s.FG && last.BG == s.BG && last.Bold == s.Bold && last.Class == s.Class && last.Link == s.Link {
			last.Text += s.Text
			continue
		}
		out = append(out, s)
	}
	return out
}
