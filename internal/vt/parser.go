package vt

import "unicode/utf8"

// parserState is a node of the VT500-series escape-sequence grammar.
type parserState int

const (
	stateGround parserState = iota
	stateEscape
	stateCsiEntry
	stateCsiParam
	stateCsiIntermediate
	stateOscString
	stateOscStringEsc
	stateDcsString
	stateDcsStringEsc
)

// csiAccum collects a CSI sequence's parameter/intermediate bytes and
// the private-mode marker, mirroring the accumulate-then-parse shape of
// a classic VT500 CSI collector.
type csiAccum struct {
	params       []byte
	intermediate []byte
	private      bool
}

func (c *csiAccum) reset() {
	c.params = c.params[:0]
	c.intermediate = c.intermediate[:0]
	c.private = false
}

// Parser is a byte-level VT/ANSI escape-sequence state machine. It
// accepts input in arbitrary-length chunks via Advance and mutates a
// Grid through a Handler. It decodes UTF-8 incrementally; invalid bytes
// yield U+FFFD.
type Parser struct {
	state parserState
	csi   csiAccum
	osc   []byte
	dcs   []byte

	utf8Buf [4]byte
	utf8Len int
	utf8Got int

	handler Handler
}

// Handler receives grid mutation events and device-status writebacks
// from the parser. Grid returns the grid the parser mutates; WriteBack
// is the PTY write-back sink for DA/DSR responses.
type Handler interface {
	Grid() *Grid
	// WriteBack sends bytes to the controlling process (DA/DSR replies).
	// Implementations that do not support replies may no-op.
	WriteBack(p []byte)
}

// NewParser creates a parser that dispatches mutations through h.
func NewParser(h Handler) *Parser {
	return &Parser{handler: h, state: stateGround}
}

// Advance feeds a chunk of bytes into the parser.
func (p *Parser) Advance(data []byte) {
	for _, b := range data {
		p.step(b)
	}
}

func (p *Parser) step(b byte) {
	switch p.state {
	case stateGround:
		p.stepGround(b)
	case stateEscape:
		p.stepEscape(b)
	case stateCsiEntry, stateCsiParam, stateCsiIntermediate:
		p.stepCsi(b)
	case stateOscString:
		p.stepOsc(b)
	case stateOscStringEsc:
		p.stepOscEsc(b)
	case stateDcsString:
		p.stepDcs(b)
	case stateDcsStringEsc:
		p.stepDcsEsc(b)
	}
}

func (p *Parser) grid() *Grid { return p.handler.Grid() }

func (p *Parser) stepGround(b byte) {
	if p.utf8Len > 0 {
		if b >= 0x80 && b <= 0xBF {
			p.utf8Buf[p.utf8Got] = b
			p.utf8Got++
			if p.utf8Got == p.utf8Len {
				r, size := utf8.DecodeRune(p.utf8Buf[:p.utf8Len])
				p.utf8Len, p.utf8Got = 0, 0
				if r == utf8.RuneError && size <= 1 {
					p.grid().Put(utf8.RuneError)
				} else {
					p.grid().Put(r)
				}
			}
			return
		}
		p.utf8Len, p.utf8Got = 0, 0
		p.grid().Put(utf8.RuneError)
		// fall through: reprocess b as a fresh byte below
	}

	switch {
	case b == 0x1b:
		p.state = stateEscape
	case b == '\n' || b == 0x0b || b == 0x0c: // LF, VT, FF
		p.grid().LineFeed()
	case b == '\r':
		p.grid().CarriageReturn()
	case b == '\b':
		p.grid().Backspace()
	case b == '\t':
		p.grid().Tab()
	case b == 0x07: // BEL
		// no visual effect in a headless grid
	case b == 0x0e || b == 0x0f: // SO / SI — charset shift, not modeled
	case b >= 0x20 && b <= 0x7e:
		p.grid().Put(rune(b))
	case b >= 0xc0 && b <= 0xf7:
		p.utf8Buf[0] = b
		p.utf8Got = 1
		switch {
		case b < 0xe0:
			p.utf8Len = 2
		case b < 0xf0:
			p.utf8Len = 3
		default:
			p.utf8Len = 4
		}
	case b >= 0x80:
		// Stray high byte outside a recognized UTF-8 lead; render
		// replacement rather than silently dropping it.
		p.grid().Put(utf8.RuneError)
	default:
		// other C0 controls: discard
	}
}

func (p *Parser) stepEscape(b byte) {
	switch b {
	case '[':
		p.csi.reset()
		p.state = stateCsiEntry
	case ']':
		p.osc = p.osc[:0]
		p.state = stateOscString
	case 'P':
		p.dcs = p.dcs[:0]
		p.state = stateDcsString
	case '7':
		p.grid().SaveCursor()
		p.state = stateGround
	case '8':
		p.grid().RestoreCursor()
		p.state = stateGround
	case 'D': // IND
		p.grid().LineFeed()
		p.state = stateGround
	case 'M': // RI
		p.grid().ReverseLineFeed()
		p.state = stateGround
	case 'E': // NEL
		p.grid().LineFeed()
		p.grid().CarriageReturn()
		p.state = stateGround
	case 'c': // RIS — full reset
		dims := p.grid().Dimensions()
		*p.grid() = *NewGrid(dims.Rows, dims.Cols)
		p.state = stateGround
	default:
		// Unknown ESC-prefixed sequence: discard silently.
		p.state = stateGround
	}
}

func (p *Parser) stepCsi(b byte) {
	switch {
	case b == '?' || b == '>' || b == '=':
		if len(p.csi.params) == 0 && len(p.csi.intermediate) == 0 {
			p.csi.private = true
		}
	case b >= '0' && b <= '9', b == ';':
		p.csi.params = append(p.csi.params, b)
		p.state = stateCsiParam
	case b >= 0x20 && b <= 0x2f:
		p.csi.intermediate = append(p.csi.intermediate, b)
		p.state = stateCsiIntermediate
	case b >= 0x40 && b <= 0x7e:
		p.dispatchCSI(b)
		p.state = stateGround
	case len(p.csi.params)+len(p.csi.intermediate) >= 256:
		// malformed/overlong sequence: abandon it
		p.state = stateGround
	default:
		// stray byte inside CSI: ignore, stay in state
	}
}

func (p *Parser) stepOsc(b byte) {
	if b == 0x07 {
		p.dispatchOSC()
		p.state = stateGround
		return
	}
	if b == 0x1b {
		// Possible ST (ESC \); wait for the final byte instead of
		// assuming it and falling back to Ground, where it would be
		// printed as a literal '\\' by stepGround.
		p.state = stateOscStringEsc
		return
	}
	p.osc = append(p.osc, b)
}

// stepOscEsc consumes the byte following an ESC seen inside an OSC
// string: '\\' completes the ST and dispatches the string; anything
// else means the ESC wasn't a real ST, so the string is dispatched as-is
// and b is reprocessed as the start of a fresh escape sequence.
func (p *Parser) stepOscEsc(b byte) {
	p.dispatchOSC()
	p.state = stateGround
	if b == '\\' {
		return
	}
	p.stepEscape(b)
}

func (p *Parser) stepDcs(b byte) {
	if b == 0x07 {
		p.state = stateGround
		return
	}
	if b == 0x1b {
		// DCS strings are accepted and discarded: no DECRQSS/Sixel
		// support is in scope for this grid. Still wait for the ST
		// final byte rather than leaking it to Ground.
		p.state = stateDcsStringEsc
		return
	}
	p.dcs = append(p.dcs, b)
}

func (p *Parser) stepDcsEsc(b byte) {
	p.state = stateGround
	if b == '\\' {
		return
	}
	p.stepEscape(b)
}
