package ical

import (
	"sync"
	"time"
)

// zoneCacheEntry memoizes the (possibly expensive) resolution of one TZID to
// a time.Location, guarded by sync.Once so concurrent evaluators sharing one
// Calendar never race to resolve the same zone twice, per spec.md §5's
// concurrency model.
type zoneCacheEntry struct {
	once sync.Once
	loc  *time.Location
	err  error
}

// GetTimezone resolves tzid to a time.Location, trying in order: a
// VTIMEZONE in this calendar with a matching TZID and a single STANDARD
// observance (fixed offset), the host's IANA tzdata, any other matching
// VTIMEZONE via approximateLocationFromVTimezone, and finally the
// calendar's ResolveTimeZone hook if one was configured. The result is
// cached per TZID for the lifetime of the Calendar.
func (cal *Calendar) GetTimezone(tzid string) (*time.Location, error) {
	cal.tzMu.Lock()
	if cal.tzCache == nil {
		cal.tzCache = map[string]*zoneCacheEntry{}
	}
	entry, ok := cal.tzCache[tzid]
	if !ok {
		entry = &zoneCacheEntry{}
		cal.tzCache[tzid] = entry
	}
	cal.tzMu.Unlock()

	entry.once.Do(func() {
		entry.loc, entry.err = cal.resolveTimezone(tzid)
	})
	return entry.loc, entry.err
}

func (cal *Calendar) resolveTimezone(tzid string) (*time.Location, error) {
	if vtz := cal.findVTimezone(tzid); vtz != nil {
		if loc, ok := fixedLocationFromVTimezone(vtz); ok {
			return loc, nil
		}
	}
	// Most real-world producers give VTIMEZONE blocks whose TZID matches an
	// IANA zone name and whose observances mirror that zone's published
	// rules; deferring to the host's own tzdata gets DST transitions right
	// without reimplementing RFC 5545's zone-reconstruction engine.
	if loc, err := time.LoadLocation(tzid); err == nil {
		return loc, nil
	}
	if vtz := cal.findVTimezone(tzid); vtz != nil {
		if loc, ok := approximateLocationFromVTimezone(vtz); ok {
			return loc, nil
		}
	}
	if cal.resolveTZ != nil {
		if loc, err := cal.resolveTZ(tzid); err == nil {
			return loc, nil
		}
	}
	return nil, &ZoneError{TZID: tzid}
}

func (cal *Calendar) findVTimezone(tzid string) *VTimezone {
	for _, c := range cal.Components {
		if vtz, ok := c.(*VTimezone); ok {
			if id, _ := vtz.TZID(); id == tzid {
				return vtz
			}
		}
	}
	return nil
}

// fixedLocationFromVTimezone handles the common simple case: a VTIMEZONE
// with exactly one STANDARD observance and no DAYLIGHT observance, i.e. a
// zone that never observes DST. Its TZOFFSETTO is the zone's permanent
// offset.
func fixedLocationFromVTimezone(vtz *VTimezone) (*time.Location, bool) {
	obs := vtz.Observances()
	if len(obs) != 1 || !obs[0].Standard {
		return nil, false
	}
	offset, ok := obs[0].TZOffsetTo()
	if !ok {
		return nil, false
	}
	tzid, _ := vtz.TZID()
	return time.FixedZone(tzid, offset), true
}

// approximateLocationFromVTimezone is the fallback for a DST-observing
// VTIMEZONE whose TZID the host's tzdata doesn't recognize: it uses the
// STANDARD observance's offset for the whole zone, which is wrong during
// that zone's DST period. This is a known, documented simplification (see
// DESIGN.md) rather than a full RFC 5545 transition-table reconstruction.
func approximateLocationFromVTimezone(vtz *VTimezone) (*time.Location, bool) {
	tzid, _ := vtz.TZID()
	for _, o := range vtz.Observances() {
		if o.Standard {
			if offset, ok := o.TZOffsetTo(); ok {
				return time.FixedZone(tzid, offset), true
			}
		}
	}
	obs := vtz.Observances()
	if len(obs) == 0 {
		return nil, false
	}
	if offset, ok := obs[0].TZOffsetTo(); ok {
		return time.FixedZone(tzid, offset), true
	}
	return nil, false
}

// ResolveLocation resolves dt's DateTime into a time.Location, per
// spec.md §4.4's three-way zone model: ZoneUTC always resolves to time.UTC,
// ZoneFloating resolves to UTC too (a floating value has no zone of its own;
// callers needing local-wall-clock semantics must supply their own
// location), and ZoneTZID defers to GetTimezone. A ZoneError from an
// unresolved TZID is non-fatal: the caller falls back to treating dt as
// floating.
func (cal *Calendar) ResolveLocation(dt DateTime) (*time.Location, error) {
	switch dt.Zone {
	case ZoneUTC:
		return time.UTC, nil
	case ZoneTZID:
		loc, err := cal.GetTimezone(dt.TZID)
		if err != nil {
			return time.UTC, err
		}
		return loc, nil
	default:
		return time.UTC, nil
	}
}
