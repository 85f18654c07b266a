package ical

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetTimezoneFallsBackToHostTZDataForIANAName(t *testing.T) {
	cal := NewCalendarFor("test-suite")
	loc, err := cal.GetTimezone("America/New_York")
	assert.NoError(t, err)
	assert.Equal(t, "America/New_York", loc.String())
}

func TestGetTimezoneCachesResolution(t *testing.T) {
	cal := NewCalendarFor("test-suite")
	calls := 0
	cal.SetResolveTimeZone(func(tzid string) (*time.Location, error) {
		calls++
		return time.FixedZone(tzid, -7*3600), nil
	})

	loc1, err1 := cal.GetTimezone("Custom/Zone")
	loc2, err2 := cal.GetTimezone("Custom/Zone")
	assert.NoError(t, err1)
	assert.NoError(t, err2)
	assert.Same(t, loc1, loc2)
	assert.Equal(t, 1, calls)
}

func TestResolveTimeZoneHookUsedAsLastResort(t *testing.T) {
	cal := NewCalendarFor("test-suite")
	cal.SetResolveTimeZone(func(tzid string) (*time.Location, error) {
		if tzid == "Acme/Internal" {
			return time.FixedZone("Acme/Internal", 2*3600), nil
		}
		return nil, &ZoneError{TZID: tzid}
	})

	loc, err := cal.GetTimezone("Acme/Internal")
	assert.NoError(t, err)
	_, offset := time.Date(2026, 1, 1, 0, 0, 0, 0, loc).Zone()
	assert.Equal(t, 2*3600, offset)
}

func TestResolveLocationUTCAndFloatingBothResolveToUTC(t *testing.T) {
	cal := NewCalendarFor("test-suite")

	locUTC, err := cal.ResolveLocation(NewDateTimeUTC(2026, 1, 1, 0, 0, 0))
	assert.NoError(t, err)
	assert.Equal(t, time.UTC, locUTC)

	locFloat, err := cal.ResolveLocation(NewDateTimeFloating(2026, 1, 1, 0, 0, 0))
	assert.NoError(t, err)
	assert.Equal(t, time.UTC, locFloat)
}

func TestResolveLocationTZIDDegradesToUTCOnError(t *testing.T) {
	cal := NewCalendarFor("test-suite")
	loc, err := cal.ResolveLocation(NewDateTimeTZID(2026, 1, 1, 0, 0, 0, "Nowhere/At_All"))
	assert.Error(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestFixedLocationFromVTimezonePrefersEmbeddedDefinitionOverTZDataName(t *testing.T) {
	cal := NewCalendarFor("test-suite")
	tz := NewVTimezone("America/New_York")
	std := NewStandardTime()
	std.Set("DTSTART", NewDateTimeFloating(1970, 1, 1, 0, 0, 0), NewParams())
	std.Set("TZOFFSETFROM", UTCOffsetValue(-5*3600), NewParams())
	std.Set("TZOFFSETTO", UTCOffsetValue(-5*3600), NewParams())
	tz.AddChild(std)
	cal.AddComponent(tz)

	loc, err := cal.GetTimezone("America/New_York")
	assert.NoError(t, err)
	_, offset := time.Date(2026, 7, 1, 0, 0, 0, 0, loc).Zone()
	assert.Equal(t, -5*3600, offset)
}
