package wire

import (
	"bytes"
	"strings"
)

// Frame is one decoded line: the command name plus its raw parameter
// tokens, still in wire form (caller parses them against a registered
// command's parameter kinds).
type Frame struct {
	Name   string
	Params []string
}

// ParserStream incrementally reassembles frames out of a byte stream that
// may be split arbitrarily across reads. Overlong frames (>MaxLineLength
// including the CRLF) are dropped rather than delivered partially: once
// the accumulator overflows, bytes are discarded up to and including the
// next CRLF, and the frame that spanned the overflow never surfaces.
//
// A ParserStream is not safe for concurrent use; each connection owns one.
type ParserStream struct {
	buf        bytes.Buffer
	overflowed bool
	dropped    int
}

// NewParserStream returns an empty parser ready to accept bytes.
func NewParserStream() *ParserStream {
	return &ParserStream{}
}

// Write feeds newly received bytes into the parser. It never returns an
// error; malformed input is recovered from, not rejected.
func (p *ParserStream) Write(data []byte) {
	p.buf.Write(data)
}

// Next extracts the next complete, well-formed frame from the buffer, if
// any is available yet. It returns ok=false when no full line has arrived.
// Call Next repeatedly after each Write until it returns ok=false, since a
// single Write may complete more than one frame.
func (p *ParserStream) Next() (frame Frame, ok bool, err error) {
	for {
		b := p.buf.Bytes()
		idx := bytes.Index(b, []byte("\r\n"))
		if idx == -1 {
			if p.buf.Len() > MaxLineLength {
				p.overflowed = true
			}
			return Frame{}, false, nil
		}
		// Copy the line out as a string before advance() reclaims the
		// buffer's backing array — advance() overwrites it in place.
		line := string(b[:idx])
		consumed := idx + 2
		wasOverflowed := p.overflowed || consumed > MaxLineLength
		p.advance(consumed)
		p.overflowed = false
		if wasOverflowed {
			p.dropped++
			continue
		}
		f, perr := parseLine(line)
		if perr != nil {
			p.dropped++
			continue
		}
		return f, true, nil
	}
}

func (p *ParserStream) advance(n int) {
	remaining := p.buf.Bytes()[n:]
	next := make([]byte, len(remaining))
	copy(next, remaining)
	p.buf.Reset()
	p.buf.Write(next)
}

// parseLine splits one CRLF-stripped line into a command name and its
// parameter tokens, validating wire-level shape (a non-empty name with no
// control characters, and parameters with no control character other
// than LF).
func parseLine(line string) (Frame, error) {
	if line == "" {
		return Frame{}, newParseError("frame", line, "empty line")
	}
	fields := strings.Split(line, "\t")
	name := fields[0]
	if !isValidName(name) {
		return Frame{}, newParseError("frame", line, "invalid command name")
	}
	params := fields[1:]
	for _, p := range params {
		if containsForbiddenControl(p) {
			return Frame{}, newParseError("frame", line, "parameter contains control characters")
		}
	}
	return Frame{Name: name, Params: params}, nil
}

// Reset discards any buffered, not-yet-complete bytes and clears overflow
// state. Used when a connection is being torn down or resynchronized.
func (p *ParserStream) Reset() {
	p.buf.Reset()
	p.overflowed = false
}

// DrainDropped returns the number of frames dropped (overflow or
// malformed) since the last call, resetting the count to zero. Callers
// poll this once per read pass to feed a dropped-frames metric.
func (p *ParserStream) DrainDropped() int {
	n := p.dropped
	p.dropped = 0
	return n
}
