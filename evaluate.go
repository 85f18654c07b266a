package ical

import (
	"sort"
	"time"

	"github.com/teambition/rrule-go"
)

// Occurrence is one concrete instance of a (possibly recurring) component
// within an evaluation window, per spec.md §4.6/§6's evaluate operation.
type Occurrence struct {
	Start DateTime
	End   DateTime
}

// RecurrenceInput collects the recurrence-relevant properties of a single
// component (VEVENT/VTODO/VJOURNAL), decoupling evaluate.go from the
// component tree in components.go so the composition rule can be tested on
// its own.
type RecurrenceInput struct {
	DTStart DateTime
	End     *DateTime
	Dur     *Duration
	RRules  []Recur
	RDates  []DateTime
	RPeriods []Period
	ExRules []Recur
	ExDates []DateTime
}

// Evaluate computes the set of occurrences of input that fall within
// [windowStart, windowEnd] (inclusive both ends, matching rrule-go's
// Set.Between(..., inc=true)), per spec.md §3.3.10's composition rule:
//
//	(RRULE expansions ∪ RDATE) \ (EXRULE expansions ∪ EXDATE)
//
// ordered ascending and deduplicated by exact instant. loc is the
// time.Location DTSTART's wall clock is interpreted in — the caller (usually
// Calendar.Evaluate, via Calendar.ResolveLocation) is responsible for resolving TZID
// against a VTIMEZONE before calling this.
func Evaluate(input RecurrenceInput, windowStart, windowEnd time.Time, loc *time.Location) ([]Occurrence, error) {
	if loc == nil {
		loc = time.UTC
	}
	dtstart := input.DTStart.AsTime(loc)
	baseDuration := occurrenceDuration(input, dtstart, loc)

	hasRecurrence := len(input.RRules) > 0 || len(input.RDates) > 0 || len(input.RPeriods) > 0

	if !hasRecurrence {
		if dtstart.Before(windowStart) || dtstart.After(windowEnd) {
			return nil, nil
		}
		return []Occurrence{{Start: input.DTStart, End: input.DTStart.Add(baseDuration)}}, nil
	}

	set := &rrule.Set{}
	set.DTStart(dtstart)

	for _, rec := range input.RRules {
		if err := rec.Validate(); err != nil {
			return nil, err
		}
		rule, err := rrule.NewRRule(rec.toROption(dtstart))
		if err != nil {
			return nil, &RecurError{Reason: err.Error()}
		}
		set.RRule(rule)
	}
	for _, rec := range input.ExRules {
		if err := rec.Validate(); err != nil {
			return nil, err
		}
		rule, err := rrule.NewRRule(rec.toROption(dtstart))
		if err != nil {
			return nil, &RecurError{Reason: err.Error()}
		}
		set.ExRule(rule)
	}

	set.RDate(dtstart)
	for _, rd := range input.RDates {
		set.RDate(rd.AsTime(loc))
	}
	for _, rp := range input.RPeriods {
		set.RDate(rp.Start.AsTime(loc))
	}
	for _, ed := range input.ExDates {
		set.ExDate(ed.AsTime(loc))
	}

	times := set.Between(windowStart, windowEnd, true)
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })

	occurrences := make([]Occurrence, 0, len(times))
	var prev time.Time
	havePrev := false
	for _, t := range times {
		if havePrev && t.Equal(prev) {
			continue
		}
		prev, havePrev = t, true
		start := dateTimeFromTime(t, input.DTStart)
		occurrences = append(occurrences, Occurrence{Start: start, End: start.Add(baseDuration)})
	}
	return occurrences, nil
}

// occurrenceDuration is the fixed span every occurrence shares: DTEND-DTSTART
// when the component gave an explicit end, the DURATION value when it gave
// one instead, or zero for a point-in-time component. RFC 5545 §3.8.2.2/
// §3.8.5.3 requires DTEND and DURATION be mutually exclusive on one
// component; components.go enforces that before building a RecurrenceInput.
func occurrenceDuration(input RecurrenceInput, dtstart time.Time, loc *time.Location) time.Duration {
	switch {
	case input.End != nil:
		return input.End.AsTime(loc).Sub(dtstart)
	case input.Dur != nil:
		return input.Dur.AsTimeDuration()
	default:
		return 0
	}
}
