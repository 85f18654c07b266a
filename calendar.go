package ical

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// WithLineLength overrides the octet length a serialized line is folded at
// (default 75, per RFC 5545 §3.1). Pass to Calendar.SerializeTo.
type WithLineLength int

// WithNewLine overrides the line terminator used when serializing (default
// CRLF). Pass to Calendar.SerializeTo.
type WithNewLine string

// Calendar is a parsed or freshly-built VCALENDAR object, per spec.md §3.
// Its scalar properties (VERSION, PRODID, CALSCALE, METHOD) are exposed
// directly; everything else round-trips through Components and the generic
// Property accessors any Component also exposes.
type Calendar struct {
	Version  string
	ProdID   string
	CalScale string
	Method   string

	// ExtraProperties carries any other top-level calendar property
	// (X-WR-CALNAME and similar) verbatim, preserving round-trip fidelity.
	ExtraProperties []*Property
	Components      []Component

	// Strict controls whether ParseCalendar aborts on the first malformed
	// property/value (true) or records it in Errors and continues (false,
	// the default), per spec.md §7.
	Strict bool
	// Errors accumulates non-fatal ValueError/RecurError/LexError/ParseError
	// values encountered while parsing in lenient mode, and the ZoneError
	// values Evaluate records for unresolved TZIDs.
	Errors []error

	// resolveTZ is the ResolveTimeZone hook: a last-resort TZID resolver
	// consulted after this calendar's own VTIMEZONE blocks and the host's
	// tzdata have both failed, per spec.md §6.
	resolveTZ func(tzid string) (*time.Location, error)

	tzMu    sync.Mutex
	tzCache map[string]*zoneCacheEntry
}

// NewCalendar returns an empty VCALENDAR with VERSION 2.0 and a generated
// PRODID.
func NewCalendar() *Calendar {
	return NewCalendarFor("go-ical")
}

// NewCalendarFor returns an empty VCALENDAR with VERSION 2.0 and a PRODID
// naming service as the producer.
func NewCalendarFor(service string) *Calendar {
	return &Calendar{
		Version: "2.0",
		ProdID:  "-//" + service + "//NONSGML go-ical//EN",
	}
}

// SetResolveTimeZone installs the last-resort TZID resolver used by
// GetTimezone (timezone.go) when neither an embedded VTIMEZONE nor the
// host's tzdata can resolve a TZID.
func (cal *Calendar) SetResolveTimeZone(f func(tzid string) (*time.Location, error)) {
	cal.resolveTZ = f
}

// AddComponent appends a top-level component (VEVENT, VTODO, VJOURNAL,
// VFREEBUSY, or VTIMEZONE).
func (cal *Calendar) AddComponent(c Component) {
	cal.Components = append(cal.Components, c)
}

// Events, Todos, Journals, and FreeBusys each filter Components by concrete
// type, for callers that don't want to type-switch themselves.
func (cal *Calendar) Events() []*VEvent {
	var out []*VEvent
	for _, c := range cal.Components {
		if v, ok := c.(*VEvent); ok {
			out = append(out, v)
		}
	}
	return out
}

func (cal *Calendar) Todos() []*VTodo {
	var out []*VTodo
	for _, c := range cal.Components {
		if v, ok := c.(*VTodo); ok {
			out = append(out, v)
		}
	}
	return out
}

func (cal *Calendar) Journals() []*VJournal {
	var out []*VJournal
	for _, c := range cal.Components {
		if v, ok := c.(*VJournal); ok {
			out = append(out, v)
		}
	}
	return out
}

func (cal *Calendar) FreeBusys() []*VFreeBusy {
	var out []*VFreeBusy
	for _, c := range cal.Components {
		if v, ok := c.(*VFreeBusy); ok {
			out = append(out, v)
		}
	}
	return out
}

// Serialize renders the calendar to a string using default serialization
// options.
func (cal *Calendar) Serialize(ops ...any) string {
	var b bytes.Buffer
	_ = cal.SerializeTo(&b, ops...)
	return b.String()
}

// SerializeTo writes the calendar to w as folded, CRLF-terminated content
// lines (RFC 5545 §3.1), accepting WithLineLength/WithNewLine overrides.
func (cal *Calendar) SerializeTo(w io.Writer, ops ...any) error {
	cfg, err := parseSerializeOps(ops)
	if err != nil {
		return err
	}
	fw := &foldWriter{w: &stringWriterAdapter{w}}
	if _, err := io.WriteString(w, "BEGIN:VCALENDAR"+cfg.NewLine); err != nil {
		return err
	}
	for _, p := range cal.scalarProperties() {
		if err := p.serialize(fw, cfg); err != nil {
			return err
		}
	}
	for _, p := range cal.ExtraProperties {
		if err := p.serialize(fw, cfg); err != nil {
			return err
		}
	}
	for _, c := range cal.Components {
		if err := serializeComponent(c, fw, cfg); err != nil {
			return err
		}
	}
	_, err = io.WriteString(w, "END:VCALENDAR"+cfg.NewLine)
	return err
}

func (cal *Calendar) scalarProperties() []*Property {
	var out []*Property
	add := func(name, value string) {
		if value == "" {
			return
		}
		out = append(out, &Property{Name: name, Value: TextValue(value), Raw: value})
	}
	add("VERSION", cal.Version)
	add("PRODID", cal.ProdID)
	add("CALSCALE", cal.CalScale)
	add("METHOD", cal.Method)
	return out
}

// stringWriterAdapter lets foldWriter target any io.Writer, not just ones
// that already implement io.StringWriter.
type stringWriterAdapter struct{ w io.Writer }

func (a *stringWriterAdapter) WriteString(s string) (int, error) {
	return io.WriteString(a.w, s)
}

func parseSerializeOps(ops []any) (*serializeConfig, error) {
	cfg := defaultSerializeConfig()
	for _, op := range ops {
		switch v := op.(type) {
		case WithLineLength:
			cfg.MaxLength = int(v)
		case WithNewLine:
			cfg.NewLine = string(v)
		case *serializeConfig:
			return v, nil
		default:
			return nil, fmt.Errorf("ical: unknown serialization option %#v", op)
		}
	}
	return cfg, nil
}

// ParseCalendar parses r as a single VCALENDAR object, per spec.md §4.6's
// BEGIN/END state machine. Grounded on the teacher's ParseCalendar
// (calendar.go): read the leading BEGIN:VCALENDAR, consume top-level
// properties and nested components until the matching END:VCALENDAR, erroring
// if the first line is not BEGIN:VCALENDAR. Parsing stops at that matching
// END; anything after it is not read.
func ParseCalendar(r io.Reader, ops ...func(*Calendar)) (*Calendar, error) {
	cal := &Calendar{}
	for _, op := range ops {
		op(cal)
	}
	lx := NewLexer(r)

	line, err := lx.ReadLine()
	if err != nil {
		return nil, &ParseError{Pos: Pos{Line: lx.Line()}, Reason: "empty input"}
	}
	first, err := ParseProperty(*line, Pos{Line: lx.Line()})
	if err != nil {
		return nil, err
	}
	if first.canonicalName() != "BEGIN" || !strings.EqualFold(first.Raw, "VCALENDAR") {
		return nil, &ParseError{Pos: Pos{Line: lx.Line()}, Reason: "expected BEGIN:VCALENDAR"}
	}

	for {
		line, err := lx.ReadLine()
		if err != nil {
			return nil, &ParseError{Pos: Pos{Line: lx.Line()}, Reason: ErrUnexpectedEOF.Error()}
		}
		pos := Pos{Line: lx.Line()}
		prop, err := ParseProperty(*line, pos)
		if err != nil {
			if cal.Strict {
				return nil, err
			}
			cal.Errors = append(cal.Errors, err)
			continue
		}
		switch prop.canonicalName() {
		case "BEGIN":
			name := strings.ToUpper(prop.Raw)
			child, childErrs, err := parseComponent(lx, name, cal.Strict)
			cal.Errors = append(cal.Errors, childErrs...)
			if err != nil {
				return nil, err
			}
			cal.AddComponent(wrapComponent(name, child))
		case "END":
			if !strings.EqualFold(prop.Raw, "VCALENDAR") {
				return nil, &ParseError{Pos: pos, Reason: ErrUnbalancedEnd.Error(), Expected: "VCALENDAR", Found: prop.Raw}
			}
			return cal, nil
		case "VERSION":
			cal.Version = prop.Raw
		case "PRODID":
			cal.ProdID = FromText(prop.Raw)
		case "CALSCALE":
			cal.CalScale = prop.Raw
		case "METHOD":
			cal.Method = prop.Raw
		default:
			if err := ResolveValue(prop); err != nil {
				if cal.Strict {
					return nil, err
				}
				cal.Errors = append(cal.Errors, err)
			}
			cal.ExtraProperties = append(cal.ExtraProperties, prop)
		}
	}
}

// WithStrict configures a Calendar to abort ParseCalendar on the first
// malformed property instead of collecting it in Errors.
func WithStrict(cal *Calendar) { cal.Strict = true }

// Evaluate computes every occurrence, across every recurring and
// non-recurring VEVENT/VTODO/VJOURNAL in the calendar, that falls within
// [from, to]. Each component's own TZID (if any) is resolved via
// GetTimezone; an unresolved TZID degrades that component to floating time
// rather than failing the whole evaluation, per spec.md §7.
//
// Before expanding, components are grouped by UID (spec.md §4.6's "UID
// resolution" pass): any component bearing a RECURRENCE-ID is treated as an
// override of the matching instant in its UID-sharing master component's
// recurrence set — the master's generated occurrence at that instant is
// replaced by the override's own (independently evaluated) occurrence. An
// override whose RECURRENCE-ID names an instant the master doesn't actually
// generate (a detached override) still contributes its own occurrence.
func (cal *Calendar) Evaluate(from, to time.Time) ([]Occurrence, error) {
	groups := cal.groupByUID()
	handled := map[Component]bool{}
	var all []Occurrence

	for _, g := range groups {
		if g.master == nil {
			for _, ov := range g.overrides {
				occs, err := cal.evaluateOne(ov, from, to)
				if err != nil {
					return nil, err
				}
				handled[ov] = true
				all = append(all, occs...)
			}
			continue
		}
		handled[g.master] = true
		occs, err := cal.evaluateOne(g.master, from, to)
		if err != nil {
			return nil, err
		}
		remaining := map[string]Component{}
		for k, v := range g.overrides {
			remaining[k] = v
		}
		for _, occ := range occs {
			if ov, ok := remaining[occ.Start.String()]; ok {
				ovOccs, err := cal.evaluateOne(ov, from, to)
				if err != nil {
					return nil, err
				}
				handled[ov] = true
				delete(remaining, occ.Start.String())
				all = append(all, ovOccs...)
				continue
			}
			all = append(all, occ)
		}
		for _, ov := range remaining {
			ovOccs, err := cal.evaluateOne(ov, from, to)
			if err != nil {
				return nil, err
			}
			handled[ov] = true
			all = append(all, ovOccs...)
		}
	}

	for _, c := range cal.Components {
		if handled[c] {
			continue
		}
		occs, err := cal.evaluateOne(c, from, to)
		if err != nil {
			return nil, err
		}
		all = append(all, occs...)
	}
	return all, nil
}

// evaluateOne resolves c's own recurrence input and zone, then delegates to
// evaluate.go's Evaluate. Returns (nil, nil) for components with no
// recurrence-relevant shape (VFREEBUSY, VTIMEZONE, ...).
func (cal *Calendar) evaluateOne(c Component, from, to time.Time) ([]Occurrence, error) {
	input, ok, err := cal.recurrenceInputFor(c)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	loc, err := cal.ResolveLocation(input.DTStart)
	if err != nil {
		zerr, ok := err.(*ZoneError)
		if !ok {
			return nil, err
		}
		cal.Errors = append(cal.Errors, zerr)
	}
	return Evaluate(input, from, to, loc)
}

func (cal *Calendar) recurrenceInputFor(c Component) (RecurrenceInput, bool, error) {
	switch v := c.(type) {
	case *VEvent:
		in, err := v.RecurrenceInput()
		return in, true, err
	case *VTodo:
		in, err := v.RecurrenceInput()
		return in, true, err
	case *VJournal:
		in, err := v.RecurrenceInput()
		return in, true, err
	default:
		return RecurrenceInput{}, false, nil
	}
}

// Merge consumes other, moving its Components, ExtraProperties and Errors
// into cal. ExtraProperties are appended without checking for duplicates,
// and other's VERSION/PRODID/CALSCALE/METHOD are not copied. It is a
// single-shot, non-idempotent
// operation: other must not be used afterward, matching spec.md's Design
// Notes decision to model merge as "move", not "copy" — avoiding a second
// ownership reference to the same component pointers living in two
// calendars at once.
func (cal *Calendar) Merge(other *Calendar) {
	cal.Components = append(cal.Components, other.Components...)
	cal.ExtraProperties = append(cal.ExtraProperties, other.ExtraProperties...)
	cal.Errors = append(cal.Errors, other.Errors...)
	other.Components = nil
	other.ExtraProperties = nil
	other.Errors = nil
}
