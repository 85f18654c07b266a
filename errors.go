package ical

import "fmt"

// Pos identifies the source location an error refers to: the physical line
// an error was raised against, the column within that line, and — for
// property-level failures — the property name involved. Line and Column are
// 1-indexed; a zero value means "not applicable".
type Pos struct {
	Line     int
	Column   int
	Property string
}

func (p Pos) String() string {
	switch {
	case p.Property != "" && p.Line > 0:
		return fmt.Sprintf("line %d, column %d, property %s", p.Line, p.Column, p.Property)
	case p.Line > 0:
		return fmt.Sprintf("line %d, column %d", p.Line, p.Column)
	case p.Property != "":
		return fmt.Sprintf("property %s", p.Property)
	default:
		return "unknown location"
	}
}

// LexError reports a physical-format violation in the content-line stream:
// an unexpected control character, a bare CR, or an unterminated quoted
// string. Fatal to the whole parse in strict mode; in lenient mode a
// LexError raised while splitting a single content line into name,
// parameters and value is recorded in Calendar.Errors and that line is
// skipped.
type LexError struct {
	Pos    Pos
	Reason string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("ical: lex error at %s: %s", e.Pos, e.Reason)
}

// ParseError reports a grammar violation above the lexer: an unbalanced
// BEGIN/END pair, a missing colon, or a stream that ended mid-component.
// Unbalanced BEGIN/END and a truncated stream are always fatal; a
// malformed single content line (such as a missing colon) is fatal only in
// strict mode, and in lenient mode is recorded in Calendar.Errors and the
// line is skipped.
type ParseError struct {
	Pos      Pos
	Expected string
	Found    string
	Reason   string
}

func (e *ParseError) Error() string {
	if e.Expected != "" || e.Found != "" {
		return fmt.Sprintf("ical: parse error at %s: expected %q, found %q", e.Pos, e.Expected, e.Found)
	}
	return fmt.Sprintf("ical: parse error at %s: %s", e.Pos, e.Reason)
}

// Unwrap returns ErrUnbalancedEnd or ErrUnexpectedEOF when e was raised for
// that reason, so errors.Is can match them; nil otherwise.
func (e *ParseError) Unwrap() error {
	switch e.Reason {
	case ErrUnbalancedEnd.Error():
		return ErrUnbalancedEnd
	case ErrUnexpectedEOF.Error():
		return ErrUnexpectedEOF
	default:
		return nil
	}
}

// ValueError reports that a single property's value failed to parse against
// the variant its schema (or its VALUE parameter) selected. In lenient mode
// (the default) it is recorded on the owning Calendar and parsing continues;
// in strict mode it aborts the parse.
type ValueError struct {
	Pos    Pos
	Kind   string
	Raw    string
	Reason string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("ical: value error at %s: cannot parse %q as %s: %s", e.Pos, e.Raw, e.Kind, e.Reason)
}

// ConflictingZone is the specific ValueError reason used when a value carries
// both a trailing Z (UTC) marker and a TZID parameter.
const ConflictingZone = "conflicting zone: value has both a TZID parameter and a UTC (Z) suffix"

// RecurError reports a semantic violation in a recurrence rule: an
// out-of-range BY* value, or COUNT and UNTIL both present, or a component
// carrying both DTEND and DURATION. DTEND with DURATION surfaces at
// evaluation time. Out-of-range BY* values and COUNT with UNTIL are already
// detected when an RRULE value is parsed, in lenient and strict mode alike
// (a lenient parse records the error and leaves that RRULE without a typed
// value, so it does not take part in evaluation); Evaluate checks every
// Recur it is given again.
type RecurError struct {
	Pos    Pos
	Reason string
}

func (e *RecurError) Error() string {
	return fmt.Sprintf("ical: recur error at %s: %s", e.Pos, e.Reason)
}

// ZoneError reports an unresolved TZID. Always non-fatal: the affected
// DateTime is treated as floating and occurrence computation proceeds.
type ZoneError struct {
	Pos  Pos
	TZID string
}

func (e *ZoneError) Error() string {
	return fmt.Sprintf("ical: unresolved time zone %q at %s; treating as floating", e.TZID, e.Pos)
}

// Known RecurError reasons, exposed so callers can match on them without
// string-comparing Error() output.
const (
	ReasonCountAndUntilBothSet = "COUNT and UNTIL cannot both be set"
	ReasonFrequencyRequired    = "FREQ is required"
	ReasonDtendAndDuration     = "component has both DTEND and DURATION"
	ReasonIntervalNotPositive  = "INTERVAL must be a positive integer"
	ReasonOutOfRange           = "BY* value is out of its RFC 5545 range"
)

// ErrUnbalancedEnd is returned (wrapped in a *ParseError) when an END line's
// component name does not match the most recently opened BEGIN.
var ErrUnbalancedEnd = fmt.Errorf("unbalanced END")

// ErrUnexpectedEOF is returned (wrapped in a *ParseError) when the stream
// ends before a component's END line is seen.
var ErrUnexpectedEOF = fmt.Errorf("stream ended inside a component")
