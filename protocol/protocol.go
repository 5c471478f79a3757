// Package protocol implements the single-pass, resumable pull-parser over
// the game's mixed text/tag-markup wire stream.
//
// The state machine shape is carried over from the teacher's telnet IAC
// parser (network/telnet.go's Parser.extract): bytes are fed in chunks,
// partial sequences (here, a tag split across a chunk boundary) are
// buffered and completed on the next Feed call, and the whole thing never
// blocks. The alphabet is different -- tag markup rather than telnet
// options -- but the resumption discipline is the same.
package protocol

import (
	"fmt"
	"strings"
)

// MaxTagLength is the hard framing limit: a tag spanning more bytes than
// this without closing is a framing violation, not a slow parse.
const MaxTagLength = 16 * 1024

// state is the parser's byte-level state.
type state int

const (
	stateText state = iota
	stateTagStart
	stateTagName
	stateAttrs
	stateAttrName
	stateAttrEq
	stateAttrValue
	stateAttrValueQuoted
	stateAfterTag
	stateEndTagName
)

// Parser consumes bytes incrementally and emits Events. It holds all
// resumable state: the partially-read tag, the style/stream stacks, and the
// line accumulator. Zero value is not usable; use New.
type Parser struct {
	st  state
	buf []byte // bytes of the tag currently being assembled (incl. leading '<')

	quote byte // quote char in progress, for stateAttrValueQuoted

	tagName    string
	closingTag bool
	attrs      map[string]string
	curAttr    string
	attrValBuf []byte

	line    strings.Builder // accumulates plain text for the current line
	segs    []StyledSegment
	pending StyledSegment // style context applied to text written to 'line'/'segs' next

	styleStack []styleFrame
	streamStack []string
	curStream   string

	inCompass    bool
	compassExits []string

	inComponent   bool
	componentID   string
	componentSegs []StyledSegment

	inPrompt bool

	menuItems []MenuItem

	events []Event
}

type styleFrame struct {
	bold   bool
	preset string
	link   *LinkAnnotation
}

// New creates a parser starting on the "main" stream with no style context.
func New() *Parser {
	return &Parser{
		st:        stateText,
		curStream: "main",
		attrs:     make(map[string]string),
	}
}

// Feed consumes a chunk of bytes and returns the events produced. It never
// blocks and never returns an error: malformed input surfaces as an
// ErrorEvent in the returned slice, and the parser resynchronizes itself.
//
// Feed(a) followed by Feed(b) produces the same events as Feed(a+b) --
// the stream-resumption law tested in protocol_test.go.
func (p *Parser) Feed(chunk []byte) []Event {
	p.events = p.events[:0]
	for _, b := range chunk {
		p.step(b)
	}
	return p.events
}

func (p *Parser) emit(e Event) {
	p.events = append(p.events, e)
}

func (p *Parser) step(b byte) {
	switch p.st {
	case stateText:
		p.stepText(b)
	default:
		p.stepTag(b)
	}
}

func (p *Parser) stepText(b byte) {
	switch b {
	case '<':
		p.st = stateTagStart
		p.buf = append(p.buf[:0], b)
	case '\n':
		p.flushLine(true)
	case '\r':
		// stripped per spec §6
	default:
		p.line.WriteByte(b)
	}
}

// stepTag advances the tag sub-state machine. All tag states buffer the raw
// byte into p.buf so an unterminated tag mid-chunk-boundary resumes cleanly
// on the next Feed call, and so MaxTagLength can be enforced uniformly.
func (p *Parser) stepTag(b byte) {
	if len(p.buf) >= MaxTagLength {
		p.emit(Event{Type: EventParseError, Error: fmt.Sprintf("tag exceeds max length %d bytes", MaxTagLength)})
		p.resetTag()
		p.st = stateText
		// Resync at next newline: re-run this byte through text state so a
		// '\n' here still ends the (now abandoned) line.
		p.stepText(b)
		return
	}
	p.buf = append(p.buf, b)

	switch p.st {
	case stateTagStart:
		switch {
		case b == '/':
			p.closingTag = true
			p.tagName = ""
			p.st = stateEndTagName
		case isNameStart(b):
			p.tagName = string(b)
			p.closingTag = false
			p.attrs = make(map[string]string)
			p.st = stateTagName
		default:
			p.malformedTag()
		}
	case stateTagName:
		switch {
		case isNameByte(b):
			p.tagName += string(b)
		case b == ' ' || b == '\t':
			p.st = stateAttrs
		case b == '>':
			p.closeTag(false)
		case b == '/':
			p.st = stateAfterTag
		default:
			p.malformedTag()
		}
	case stateAttrs:
		switch {
		case b == ' ' || b == '\t':
			// skip
		case b == '>':
			p.closeTag(false)
		case b == '/':
			p.st = stateAfterTag
		case isNameStart(b):
			p.curAttr = string(b)
			p.st = stateAttrName
		default:
			p.malformedTag()
		}
	case stateAttrName:
		switch {
		case isNameByte(b):
			p.curAttr += string(b)
		case b == '=':
			p.st = stateAttrEq
		case b == ' ' || b == '\t':
			p.attrs[p.curAttr] = ""
			p.st = stateAttrs
		case b == '>':
			p.attrs[p.curAttr] = ""
			p.closeTag(false)
		default:
			p.malformedTag()
		}
	case stateAttrEq:
		switch {
		case b == '"' || b == '\'':
			p.quote = b
			p.attrValBuf = p.attrValBuf[:0]
			p.st = stateAttrValueQuoted
		case b == ' ' || b == '\t' || b == '>':
			p.st = stateAttrs
			if b == '>' {
				p.closeTag(false)
			}
		default:
			p.attrValBuf = append(p.attrValBuf[:0], b)
			p.st = stateAttrValue
		}
	case stateAttrValue:
		switch {
		case b == ' ' || b == '\t':
			p.attrs[p.curAttr] = string(p.attrValBuf)
			p.st = stateAttrs
		case b == '>':
			p.attrs[p.curAttr] = string(p.attrValBuf)
			p.closeTag(false)
		default:
			p.attrValBuf = append(p.attrValBuf, b)
		}
	case stateAttrValueQuoted:
		if b == p.quote {
			p.attrs[p.curAttr] = string(p.attrValBuf)
			p.st = stateAttrs
		} else {
			p.attrValBuf = append(p.attrValBuf, b)
		}
	case stateAfterTag:
		if b == '>' {
			p.closeTag(true)
		} else {
			p.malformedTag()
		}
	case stateEndTagName:
		switch {
		case isNameByte(b):
			p.tagName += string(b)
		case b == '>':
			p.closeTag(false)
		default:
			p.malformedTag()
		}
	}
}

func isNameStart(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
func isNameByte(b byte) bool {
	return isNameStart(b) || (b >= '0' && b <= '9')
}

func (p *Parser) malformedTag() {
	p.emit(Event{Type: EventParseError, Error: fmt.Sprintf("malformed tag near %q", string(p.buf))})
	p.resetTag()
	p.st = stateText
}

func (p *Parser) resetTag() {
	p.buf = p.buf[:0]
	p.tagName = ""
	p.attrs = make(map[string]string)
	p.curAttr = ""
	p.attrValBuf = p.attrValBuf[:0]
}

// closeTag handles a fully-parsed tag (selfClosing for "<name .../>" or
// "<name>" treated as self-closing by the control layer for known empty
// elements; end tags dispatch to popStyle/popStream handling).
func (p *Parser) closeTag(selfClosing bool) {
	name := p.tagName
	attrs := p.attrs
	closing := p.closingTag

	p.resetTag()
	p.st = stateText

	if closing {
		p.handleEndTag(name)
		return
	}
	p.handleStartTag(name, attrs, selfClosing)
}

// flushLine emits the accumulated text as a StyledLine event on the current
// stream, if there is any text or any segments, and resets the line buffer.
// newline indicates the line was terminated by '\n' (vs. a forced flush on
// stream switch).
func (p *Parser) flushLine(newline bool) {
	text := p.line.String()
	p.line.Reset()
	if text != "" {
		seg := p.pending
		seg.Text = text
		p.segs = append(p.segs, seg)
	}
	if len(p.segs) == 0 {
		return
	}
	if p.inComponent {
		p.componentSegs = append(p.componentSegs, p.segs...)
		p.segs = nil
		return
	}
	line := StyledLine{Segments: p.segs}
	p.segs = nil
	p.emit(Event{Type: EventStyledLine, Stream: p.curStream, Line: &line})
	_ = newline
}
