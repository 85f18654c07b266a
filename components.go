package ical

import (
	"strings"
)

// Component is satisfied by every node of a calendar's component tree:
// VEVENT, VTODO, VJOURNAL, VFREEBUSY, VTIMEZONE (and its STANDARD/DAYLIGHT
// children), VALARM, and GeneralComponent for anything this build doesn't
// specifically model. Grounded on the teacher's Component/ComponentBase
// split (components.go) and generalized to the new Property/Value model.
type Component interface {
	Name() string
	Props() []*Property
	Children() []Component
}

var (
	_ Component = (*VEvent)(nil)
	_ Component = (*VTodo)(nil)
	_ Component = (*VJournal)(nil)
	_ Component = (*VFreeBusy)(nil)
	_ Component = (*VTimezone)(nil)
	_ Component = (*VAlarm)(nil)
	_ Component = (*StandardTime)(nil)
	_ Component = (*DaylightTime)(nil)
	_ Component = (*GeneralComponent)(nil)
)

// ComponentBase is the embeddable property/child store shared by every
// concrete component type.
type ComponentBase struct {
	name     string
	props    []*Property
	children []Component
}

func newComponentBase(name string) ComponentBase {
	return ComponentBase{name: name}
}

func (cb *ComponentBase) Name() string          { return cb.name }
func (cb *ComponentBase) Props() []*Property    { return cb.props }
func (cb *ComponentBase) Children() []Component { return cb.children }

// AddProp appends a fully-built Property — used by the parser and by
// builder helpers alike.
func (cb *ComponentBase) AddProp(p *Property) { cb.props = append(cb.props, p) }

// AddChild appends a nested component (e.g. a VALARM under a VEVENT, or a
// STANDARD/DAYLIGHT sub-component under a VTIMEZONE).
func (cb *ComponentBase) AddChild(c Component) { cb.children = append(cb.children, c) }

// Get returns the first property named name (case-insensitive), or nil.
func (cb *ComponentBase) Get(name string) *Property {
	name = strings.ToUpper(name)
	for _, p := range cb.props {
		if p.canonicalName() == name {
			return p
		}
	}
	return nil
}

// GetAll returns every property named name, in the order parsed/added.
func (cb *ComponentBase) GetAll(name string) []*Property {
	name = strings.ToUpper(name)
	var out []*Property
	for _, p := range cb.props {
		if p.canonicalName() == name {
			out = append(out, p)
		}
	}
	return out
}

// Set replaces (or adds, if absent) the single property named name with a
// freshly-built one carrying v and the given parameters.
func (cb *ComponentBase) Set(name string, v Value, params Params) {
	if p := cb.Get(name); p != nil {
		p.Value = v
		p.Values = []Value{v}
		p.Raw = v.String()
		p.Params = params
		return
	}
	cb.AddProp(&Property{Name: name, Params: params, Raw: v.String(), Value: v, Values: []Value{v}})
}

// Add always appends a new property instance named name, for repeatable
// properties like ATTENDEE, RDATE, or EXDATE.
func (cb *ComponentBase) Add(name string, v Value, params Params) {
	cb.AddProp(&Property{Name: name, Params: params, Raw: v.String(), Value: v, Values: []Value{v}})
}

func (cb *ComponentBase) text(name string) (string, bool) {
	p := cb.Get(name)
	if p == nil || p.Value == nil {
		return "", false
	}
	tv, ok := p.Value.(TextValue)
	if !ok {
		return "", false
	}
	return string(tv), true
}

func (cb *ComponentBase) dateTime(name string) (DateTime, bool) {
	p := cb.Get(name)
	if p == nil || p.Value == nil {
		return DateTime{}, false
	}
	dt, ok := p.Value.(DateTime)
	return dt, ok
}

func (cb *ComponentBase) duration(name string) (Duration, bool) {
	p := cb.Get(name)
	if p == nil || p.Value == nil {
		return Duration{}, false
	}
	d, ok := p.Value.(Duration)
	return d, ok
}

func (cb *ComponentBase) recurs(name string) []Recur {
	var out []Recur
	for _, p := range cb.GetAll(name) {
		if r, ok := p.Value.(Recur); ok {
			out = append(out, r)
		}
	}
	return out
}

func (cb *ComponentBase) dateTimeList(name string) []DateTime {
	var out []DateTime
	for _, p := range cb.GetAll(name) {
		for _, v := range p.Values {
			if dt, ok := v.(DateTime); ok {
				out = append(out, dt)
			}
		}
	}
	return out
}

func (cb *ComponentBase) periodList(name string) []Period {
	var out []Period
	for _, p := range cb.GetAll(name) {
		for _, v := range p.Values {
			if per, ok := v.(Period); ok {
				out = append(out, per)
			}
		}
	}
	return out
}

func (cb *ComponentBase) utcOffset(name string) (int, bool) {
	p := cb.Get(name)
	if p == nil || p.Value == nil {
		return 0, false
	}
	off, ok := p.Value.(UTCOffsetValue)
	return int(off), ok
}

// UID returns the component's UID text, if set.
func (cb *ComponentBase) UID() (string, bool) { return cb.text("UID") }

func (cb *ComponentBase) serialize(w *foldWriter, cfg *serializeConfig) error {
	if err := (&Property{Name: "BEGIN", Value: TextValue(cb.name)}).serialize(w, cfg); err != nil {
		return err
	}
	for _, p := range cb.props {
		if err := p.serialize(w, cfg); err != nil {
			return err
		}
	}
	for _, c := range cb.children {
		if err := serializeComponent(c, w, cfg); err != nil {
			return err
		}
	}
	return (&Property{Name: "END", Value: TextValue(cb.name)}).serialize(w, cfg)
}

func serializeComponent(c Component, w *foldWriter, cfg *serializeConfig) error {
	switch v := c.(type) {
	case *VEvent:
		return v.ComponentBase.serialize(w, cfg)
	case *VTodo:
		return v.ComponentBase.serialize(w, cfg)
	case *VJournal:
		return v.ComponentBase.serialize(w, cfg)
	case *VFreeBusy:
		return v.ComponentBase.serialize(w, cfg)
	case *VTimezone:
		return v.ComponentBase.serialize(w, cfg)
	case *VAlarm:
		return v.ComponentBase.serialize(w, cfg)
	case *StandardTime:
		return v.ComponentBase.serialize(w, cfg)
	case *DaylightTime:
		return v.ComponentBase.serialize(w, cfg)
	case *GeneralComponent:
		return v.ComponentBase.serialize(w, cfg)
	default:
		return nil
	}
}

// VEvent models VEVENT (RFC 5545 §3.6.1).
type VEvent struct{ ComponentBase }

// NewVEvent returns an empty VEVENT carrying only the given UID.
func NewVEvent(uid string) *VEvent {
	v := &VEvent{ComponentBase: newComponentBase("VEVENT")}
	v.Set("UID", TextValue(uid), NewParams())
	return v
}

func (v *VEvent) SetSummary(s string)        { v.Set("SUMMARY", TextValue(s), NewParams()) }
func (v *VEvent) SetDescription(s string)    { v.Set("DESCRIPTION", TextValue(s), NewParams()) }
func (v *VEvent) SetLocation(s string)       { v.Set("LOCATION", TextValue(s), NewParams()) }
func (v *VEvent) SetDTStart(dt DateTime)     { v.Set("DTSTART", dt, tzidParams(dt)) }
func (v *VEvent) SetDTEnd(dt DateTime)       { v.Set("DTEND", dt, tzidParams(dt)) }
func (v *VEvent) SetDuration(d Duration)     { v.Set("DURATION", d, NewParams()) }
func (v *VEvent) AddRRule(r Recur)           { v.Add("RRULE", r, NewParams()) }
func (v *VEvent) AddExRule(r Recur)          { v.Add("EXRULE", r, NewParams()) }
func (v *VEvent) AddExDate(dt DateTime)      { v.Add("EXDATE", dt, tzidParams(dt)) }
func (v *VEvent) AddRDate(dt DateTime)       { v.Add("RDATE", dt, tzidParams(dt)) }
func (v *VEvent) AddAttendee(addr string)    { v.Add("ATTENDEE", CalAddressValue(addr), NewParams()) }
func (v *VEvent) AddAlarm(a *VAlarm)         { v.AddChild(a) }
func (v *VEvent) DTStart() (DateTime, bool)  { return v.dateTime("DTSTART") }
func (v *VEvent) DTEnd() (DateTime, bool)    { return v.dateTime("DTEND") }
func (v *VEvent) Duration() (Duration, bool) { return v.duration("DURATION") }
func (v *VEvent) RRules() []Recur            { return v.recurs("RRULE") }
func (v *VEvent) ExRules() []Recur           { return v.recurs("EXRULE") }
func (v *VEvent) ExDates() []DateTime        { return v.dateTimeList("EXDATE") }
func (v *VEvent) RDates() []DateTime         { return v.dateTimeList("RDATE") }
func (v *VEvent) RPeriods() []Period         { return v.periodList("RDATE") }

// SetRecurrenceID marks this VEVENT as an override of one instance of a
// recurring master component sharing the same UID, per RFC 5545 §3.8.4.4.
func (v *VEvent) SetRecurrenceID(dt DateTime) { v.Set("RECURRENCE-ID", dt, tzidParams(dt)) }
func (v *VEvent) RecurrenceID() (DateTime, bool) { return v.dateTime("RECURRENCE-ID") }

// RecurrenceInput builds the evaluate.go input for this event. Returns an
// error if DTSTART is missing or DTEND/DURATION are both set.
func (v *VEvent) RecurrenceInput() (RecurrenceInput, error) {
	dtstart, ok := v.DTStart()
	if !ok {
		return RecurrenceInput{}, &ParseError{Pos: Pos{Property: "DTSTART"}, Reason: "VEVENT is missing DTSTART"}
	}
	input := RecurrenceInput{
		DTStart:  dtstart,
		RRules:   v.RRules(),
		RDates:   v.RDates(),
		RPeriods: v.RPeriods(),
		ExRules:  v.ExRules(),
		ExDates:  v.ExDates(),
	}
	end, hasEnd := v.DTEnd()
	dur, hasDur := v.Duration()
	if hasEnd && hasDur {
		return RecurrenceInput{}, &RecurError{Pos: Pos{Property: "DTEND"}, Reason: ReasonDtendAndDuration}
	}
	if hasEnd {
		input.End = &end
	}
	if hasDur {
		input.Dur = &dur
	}
	return input, nil
}

// VTodo models VTODO (RFC 5545 §3.6.2).
type VTodo struct{ ComponentBase }

func NewVTodo(uid string) *VTodo {
	v := &VTodo{ComponentBase: newComponentBase("VTODO")}
	v.Set("UID", TextValue(uid), NewParams())
	return v
}

func (v *VTodo) SetSummary(s string)        { v.Set("SUMMARY", TextValue(s), NewParams()) }
func (v *VTodo) SetDTStart(dt DateTime)     { v.Set("DTSTART", dt, tzidParams(dt)) }
func (v *VTodo) SetDue(dt DateTime)         { v.Set("DUE", dt, tzidParams(dt)) }
func (v *VTodo) SetDuration(d Duration)     { v.Set("DURATION", d, NewParams()) }
func (v *VTodo) SetPercentComplete(n int)   { v.Set("PERCENT-COMPLETE", IntegerValue(n), NewParams()) }
func (v *VTodo) AddRRule(r Recur)           { v.Add("RRULE", r, NewParams()) }
func (v *VTodo) DTStart() (DateTime, bool)  { return v.dateTime("DTSTART") }
func (v *VTodo) Due() (DateTime, bool)      { return v.dateTime("DUE") }
func (v *VTodo) Duration() (Duration, bool) { return v.duration("DURATION") }
func (v *VTodo) RRules() []Recur            { return v.recurs("RRULE") }
func (v *VTodo) ExDates() []DateTime        { return v.dateTimeList("EXDATE") }
func (v *VTodo) RDates() []DateTime         { return v.dateTimeList("RDATE") }
func (v *VTodo) RPeriods() []Period         { return v.periodList("RDATE") }

func (v *VTodo) SetRecurrenceID(dt DateTime)    { v.Set("RECURRENCE-ID", dt, tzidParams(dt)) }
func (v *VTodo) RecurrenceID() (DateTime, bool) { return v.dateTime("RECURRENCE-ID") }

func (v *VTodo) RecurrenceInput() (RecurrenceInput, error) {
	dtstart, ok := v.DTStart()
	if !ok {
		return RecurrenceInput{}, &ParseError{Pos: Pos{Property: "DTSTART"}, Reason: "VTODO is missing DTSTART"}
	}
	input := RecurrenceInput{DTStart: dtstart, RRules: v.RRules(), RDates: v.RDates(), RPeriods: v.RPeriods(), ExDates: v.ExDates()}
	due, hasDue := v.Due()
	dur, hasDur := v.Duration()
	if hasDue && hasDur {
		return RecurrenceInput{}, &RecurError{Pos: Pos{Property: "DUE"}, Reason: ReasonDtendAndDuration}
	}
	if hasDue {
		input.End = &due
	}
	if hasDur {
		input.Dur = &dur
	}
	return input, nil
}

// VJournal models VJOURNAL (RFC 5545 §3.6.3).
type VJournal struct{ ComponentBase }

func NewVJournal(uid string) *VJournal {
	v := &VJournal{ComponentBase: newComponentBase("VJOURNAL")}
	v.Set("UID", TextValue(uid), NewParams())
	return v
}

func (v *VJournal) SetDTStart(dt DateTime)    { v.Set("DTSTART", dt, tzidParams(dt)) }
func (v *VJournal) DTStart() (DateTime, bool) { return v.dateTime("DTSTART") }
func (v *VJournal) RRules() []Recur           { return v.recurs("RRULE") }
func (v *VJournal) ExDates() []DateTime       { return v.dateTimeList("EXDATE") }
func (v *VJournal) RDates() []DateTime        { return v.dateTimeList("RDATE") }
func (v *VJournal) RPeriods() []Period        { return v.periodList("RDATE") }

func (v *VJournal) SetRecurrenceID(dt DateTime)    { v.Set("RECURRENCE-ID", dt, tzidParams(dt)) }
func (v *VJournal) RecurrenceID() (DateTime, bool) { return v.dateTime("RECURRENCE-ID") }

func (v *VJournal) RecurrenceInput() (RecurrenceInput, error) {
	dtstart, ok := v.DTStart()
	if !ok {
		return RecurrenceInput{}, &ParseError{Pos: Pos{Property: "DTSTART"}, Reason: "VJOURNAL is missing DTSTART"}
	}
	return RecurrenceInput{DTStart: dtstart, RRules: v.RRules(), RDates: v.RDates(), RPeriods: v.RPeriods(), ExDates: v.ExDates()}, nil
}

// VFreeBusy models VFREEBUSY (RFC 5545 §3.6.4).
type VFreeBusy struct{ ComponentBase }

func NewVFreeBusy(uid string) *VFreeBusy {
	v := &VFreeBusy{ComponentBase: newComponentBase("VFREEBUSY")}
	v.Set("UID", TextValue(uid), NewParams())
	return v
}

func (v *VFreeBusy) SetDTStart(dt DateTime) { v.Set("DTSTART", dt, tzidParams(dt)) }
func (v *VFreeBusy) SetDTEnd(dt DateTime)   { v.Set("DTEND", dt, tzidParams(dt)) }
func (v *VFreeBusy) AddFreeBusy(p Period)   { v.Add("FREEBUSY", p, NewParams()) }
func (v *VFreeBusy) FreeBusy() []Period     { return v.periodList("FREEBUSY") }

// VAlarm models VALARM (RFC 5545 §3.6.6).
type VAlarm struct{ ComponentBase }

func NewVAlarm(action string) *VAlarm {
	a := &VAlarm{ComponentBase: newComponentBase("VALARM")}
	a.Set("ACTION", TextValue(action), NewParams())
	return a
}

func (a *VAlarm) SetTrigger(d Duration)   { a.Set("TRIGGER", d, NewParams()) }
func (a *VAlarm) SetDescription(s string) { a.Set("DESCRIPTION", TextValue(s), NewParams()) }
func (a *VAlarm) SetRepeat(n int)         { a.Set("REPEAT", IntegerValue(n), NewParams()) }

// VTimezone models VTIMEZONE (RFC 5545 §3.6.5): a named zone definition built
// from one or more STANDARD/DAYLIGHT observance sub-components.
type VTimezone struct{ ComponentBase }

func NewVTimezone(tzid string) *VTimezone {
	v := &VTimezone{ComponentBase: newComponentBase("VTIMEZONE")}
	v.Set("TZID", TextValue(tzid), NewParams())
	return v
}

func (v *VTimezone) TZID() (string, bool) { return v.text("TZID") }

// Observances returns a read view over this zone's STANDARD/DAYLIGHT
// sub-components, used by timezone.go's offset resolution.
func (v *VTimezone) Observances() []*Observance {
	var out []*Observance
	for _, c := range v.children {
		switch o := c.(type) {
		case *StandardTime:
			out = append(out, &Observance{Standard: true, ComponentBase: &o.ComponentBase})
		case *DaylightTime:
			out = append(out, &Observance{Standard: false, ComponentBase: &o.ComponentBase})
		}
	}
	return out
}

// Observance is a read view over one STANDARD or DAYLIGHT sub-component.
type Observance struct {
	Standard bool
	*ComponentBase
}

func (o *Observance) DTStart() (DateTime, bool) { return o.dateTime("DTSTART") }
func (o *Observance) TZOffsetFrom() (int, bool) { return o.utcOffset("TZOFFSETFROM") }
func (o *Observance) TZOffsetTo() (int, bool)   { return o.utcOffset("TZOFFSETTO") }
func (o *Observance) RRules() []Recur           { return o.recurs("RRULE") }
func (o *Observance) RDates() []DateTime        { return o.dateTimeList("RDATE") }

// StandardTime models the STANDARD sub-component of a VTIMEZONE.
type StandardTime struct{ ComponentBase }

func NewStandardTime() *StandardTime {
	return &StandardTime{ComponentBase: newComponentBase("STANDARD")}
}

// DaylightTime models the DAYLIGHT sub-component of a VTIMEZONE.
type DaylightTime struct{ ComponentBase }

func NewDaylightTime() *DaylightTime {
	return &DaylightTime{ComponentBase: newComponentBase("DAYLIGHT")}
}

// GeneralComponent is any component this build has no specific type for
// (e.g. an experimental X- component), preserved opaquely for round-trip.
type GeneralComponent struct{ ComponentBase }

func tzidParams(dt DateTime) Params {
	p := NewParams()
	if dt.Zone == ZoneTZID && dt.TZID != "" {
		p.Add("TZID", dt.TZID)
	}
	return p
}

// parseComponent recursively parses a BEGIN:name .. END:name block, already
// past the BEGIN line, given its name. It dispatches nested BEGIN lines to
// the matching concrete constructor via wrapComponent, and appends every
// other line as a Property of the component being built. In lenient mode
// (strict == false) a malformed property or unresolved value is recorded in
// the returned slice and parsing continues; in strict mode it aborts.
func parseComponent(lx *Lexer, name string, strict bool) (*ComponentBase, []error, error) {
	cb := newComponentBase(name)
	var softErrs []error
	for {
		line, err := lx.ReadLine()
		if err != nil {
			return nil, softErrs, &ParseError{Pos: Pos{Line: lx.Line()}, Reason: ErrUnexpectedEOF.Error()}
		}
		pos := Pos{Line: lx.Line()}
		prop, err := ParseProperty(*line, pos)
		if err != nil {
			if strict {
				return nil, softErrs, err
			}
			softErrs = append(softErrs, err)
			continue
		}
		switch prop.canonicalName() {
		case "BEGIN":
			childName := strings.ToUpper(prop.Raw)
			child, childErrs, err := parseComponent(lx, childName, strict)
			softErrs = append(softErrs, childErrs...)
			if err != nil {
				return nil, softErrs, err
			}
			cb.AddChild(wrapComponent(childName, child))
		case "END":
			if !strings.EqualFold(prop.Raw, name) {
				return nil, softErrs, &ParseError{Pos: pos, Reason: ErrUnbalancedEnd.Error(), Expected: name, Found: prop.Raw}
			}
			return &cb, softErrs, nil
		default:
			if err := ResolveValue(prop); err != nil {
				if strict {
					return nil, softErrs, err
				}
				softErrs = append(softErrs, err)
			}
			cb.AddProp(prop)
		}
	}
}

// wrapComponent adapts a freshly-parsed ComponentBase into its concrete
// Component type based on its name, falling back to GeneralComponent.
func wrapComponent(name string, cb *ComponentBase) Component {
	switch name {
	case "VEVENT":
		return &VEvent{ComponentBase: *cb}
	case "VTODO":
		return &VTodo{ComponentBase: *cb}
	case "VJOURNAL":
		return &VJournal{ComponentBase: *cb}
	case "VFREEBUSY":
		return &VFreeBusy{ComponentBase: *cb}
	case "VTIMEZONE":
		return &VTimezone{ComponentBase: *cb}
	case "VALARM":
		return &VAlarm{ComponentBase: *cb}
	case "STANDARD":
		return &StandardTime{ComponentBase: *cb}
	case "DAYLIGHT":
		return &DaylightTime{ComponentBase: *cb}
	default:
		return &GeneralComponent{ComponentBase: *cb}
	}
}

