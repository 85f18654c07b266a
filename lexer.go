package ical

import (
	"bufio"
	"bytes"
	"errors"
	"io"
)

// ContentLine is one reconstructed logical line: NAME *(";" PARAM) ":" VALUE,
// already unfolded across any physical line breaks. Escape expansion of TEXT
// values has not happened yet — that is the value-type registry's job.
type ContentLine string

// utf8BOM is the three-byte UTF-8 byte-order mark some iCalendar producers
// prepend; the lexer strips it if present at the very start of the stream.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Lexer reconstructs logical content lines from a folded iCalendar byte
// stream. Grounded on the teacher's CalendarStream.ReadLine, generalized to
// reject a bare CR (not followed by LF) as a LexError rather than silently
// accepting it, and to strip a leading UTF-8 BOM.
type Lexer struct {
	b       *bufio.Reader
	line    int
	trimBOM bool
}

// NewLexer wraps r for line-at-a-time unfolded reads.
func NewLexer(r io.Reader) *Lexer {
	return &Lexer{b: bufio.NewReader(r), trimBOM: true}
}

// Line returns the 1-indexed physical line number last read, for attaching
// to Pos values raised by the parser above the lexer.
func (lx *Lexer) Line() int { return lx.line }

// ReadLine returns the next unfolded logical line, or io.EOF once the stream
// is exhausted. A CRLF (or bare LF, accepted for tolerance) immediately
// followed by a single SP or HT continues the logical line; that leading
// whitespace byte is consumed and does not appear in the result. A bare CR
// not immediately followed by LF is rejected with a LexError.
func (lx *Lexer) ReadLine() (*ContentLine, error) {
	var out []byte
	appended := false
	for {
		raw, err := lx.b.ReadBytes('\n')
		if lx.trimBOM {
			lx.trimBOM = false
			raw = bytes.TrimPrefix(raw, utf8BOM)
		}
		if len(raw) == 0 {
			if err != nil {
				if appended {
					return contentLinePtr(out), nil
				}
				return nil, err
			}
			continue
		}
		lx.line++
		if err := lx.checkBareCR(raw); err != nil {
			return nil, err
		}
		trimmed := trimLineEnding(raw)
		out = append(out, trimmed...)
		appended = true

		if err == io.EOF {
			return contentLinePtr(out), nil
		}
		if err != nil {
			return nil, err
		}

		peek, peekErr := lx.b.Peek(1)
		if len(peek) == 0 {
			if peekErr == io.EOF {
				return contentLinePtr(out), nil
			}
			return contentLinePtr(out), nil
		}
		switch peek[0] {
		case ' ', '\t':
			_, _ = lx.b.Discard(1)
			continue
		default:
			return contentLinePtr(out), nil
		}
	}
}

func contentLinePtr(b []byte) *ContentLine {
	cl := ContentLine(b)
	return &cl
}

// checkBareCR rejects a physical line whose only CR is not immediately
// followed by LF: ReadBytes('\n') always returns a chunk ending in '\n' (or
// no terminator at EOF), so a CR appearing anywhere except the byte directly
// before that trailing '\n' is a bare CR.
func (lx *Lexer) checkBareCR(raw []byte) error {
	endsInNL := raw[len(raw)-1] == '\n'
	limit := len(raw)
	if endsInNL {
		limit--
		if limit > 0 && raw[limit-1] == '\r' {
			limit--
		}
	}
	for i := 0; i < limit; i++ {
		if raw[i] == '\r' {
			return &LexError{Pos: Pos{Line: lx.line}, Reason: "bare CR without following LF"}
		}
		if isRejectedControl(raw[i]) {
			return &LexError{Pos: Pos{Line: lx.line, Column: i + 1}, Reason: "unexpected control character in content line"}
		}
	}
	return nil
}

// isRejectedControl reports whether b is a CTL byte the lexer must reject
// outside of TAB (0x09), CR (0x0D, handled separately above) and LF (0x0A,
// the line terminator itself).
func isRejectedControl(b byte) bool {
	switch {
	case b == 0x09, b == 0x0A, b == 0x0D:
		return false
	case b < 0x20, b == 0x7F:
		return true
	default:
		return false
	}
}

func trimLineEnding(raw []byte) []byte {
	n := len(raw)
	if n == 0 {
		return raw
	}
	if raw[n-1] == '\n' {
		n--
		if n > 0 && raw[n-1] == '\r' {
			n--
		}
	}
	return raw[:n]
}

// ErrUnterminatedQuote's message is the Reason of the *LexError the property
// parser (property.go) returns when a quoted parameter value is never
// closed; the LexError does not wrap it, so errors.Is does not match it.
// Kept here alongside the other lexical failure modes it's conceptually
// part of.
var ErrUnterminatedQuote = errors.New("unterminated quoted parameter value")
