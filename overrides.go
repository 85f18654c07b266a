package ical

// overrideGroup collects one UID's recurring master component plus any
// RECURRENCE-ID overrides of its individual instances, per spec.md §4.6's
// "UID resolution" pass: a post-load step that links overrides back to
// their base component by shared UID before evaluation runs.
type overrideGroup struct {
	master    Component
	overrides map[string]Component // keyed by RECURRENCE-ID.String()
}

// groupByUID partitions every UID-bearing VEVENT, VTODO and VJOURNAL in cal
// into master/override groups. Components of those kinds without a UID, and
// every component of any other kind (VFREEBUSY, VTIMEZONE, ...) whether or
// not it has a UID, are left out entirely.
func (cal *Calendar) groupByUID() map[string]*overrideGroup {
	groups := map[string]*overrideGroup{}
	for _, c := range cal.Components {
		uid, recID, hasRecID, ok := uidAndRecurrenceID(c)
		if !ok {
			continue
		}
		g := groups[uid]
		if g == nil {
			g = &overrideGroup{overrides: map[string]Component{}}
			groups[uid] = g
		}
		if hasRecID {
			g.overrides[recID.String()] = c
		} else {
			g.master = c
		}
	}
	return groups
}

func uidAndRecurrenceID(c Component) (uid string, recID DateTime, hasRecID bool, ok bool) {
	switch v := c.(type) {
	case *VEvent:
		u, uok := v.UID()
		if !uok {
			return "", DateTime{}, false, false
		}
		r, rok := v.RecurrenceID()
		return u, r, rok, true
	case *VTodo:
		u, uok := v.UID()
		if !uok {
			return "", DateTime{}, false, false
		}
		r, rok := v.RecurrenceID()
		return u, r, rok, true
	case *VJournal:
		u, uok := v.UID()
		if !uok {
			return "", DateTime{}, false, false
		}
		r, rok := v.RecurrenceID()
		return u, r, rok, true
	default:
		return "", DateTime{}, false, false
	}
}
