package ical

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDateOnly(t *testing.T) {
	v, err := parseDateTimeValue("20260131", NewParams(), Pos{}, true)
	assert.NoError(t, err)
	dt := v.(DateTime)
	assert.Equal(t, DateTime{Year: 2026, Month: 1, Day: 31}, dt)
	assert.False(t, dt.HasTime)
}

func TestParseDateTimeUTC(t *testing.T) {
	v, err := parseDateTimeValue("20260131T153000Z", NewParams(), Pos{}, false)
	assert.NoError(t, err)
	dt := v.(DateTime)
	assert.True(t, dt.HasTime)
	assert.Equal(t, ZoneUTC, dt.Zone)
	assert.Equal(t, "20260131T153000Z", dt.String())
}

func TestParseDateTimeFloating(t *testing.T) {
	v, err := parseDateTimeValue("20260131T090000", NewParams(), Pos{}, false)
	assert.NoError(t, err)
	dt := v.(DateTime)
	assert.Equal(t, ZoneFloating, dt.Zone)
}

func TestParseDateTimeTZID(t *testing.T) {
	params := NewParams()
	params.Add("TZID", "America/New_York")
	v, err := parseDateTimeValue("20260131T090000", params, Pos{}, false)
	assert.NoError(t, err)
	dt := v.(DateTime)
	assert.Equal(t, ZoneTZID, dt.Zone)
	assert.Equal(t, "America/New_York", dt.TZID)
}

func TestParseDateTimeConflictingZoneErrors(t *testing.T) {
	params := NewParams()
	params.Add("TZID", "America/New_York")
	_, err := parseDateTimeValue("20260131T090000Z", params, Pos{}, false)
	assert.Error(t, err)
	var verr *ValueError
	assert.ErrorAs(t, err, &verr)
	assert.Equal(t, ConflictingZone, verr.Reason)
}

func TestDateTimeAddDateClampsToLastDayOfMonth(t *testing.T) {
	d := NewDate(2026, 1, 31)
	got := d.AddDate(0, 1, 0)
	assert.Equal(t, NewDate(2026, 2, 28), got)
}

func TestDateTimeAddDateClampsToLeapDay(t *testing.T) {
	d := NewDate(2024, 1, 31)
	got := d.AddDate(0, 1, 0)
	assert.Equal(t, NewDate(2024, 2, 29), got)
}

func TestDateTimeBeforeAndEqual(t *testing.T) {
	a := NewDateTimeUTC(2026, 1, 1, 0, 0, 0)
	b := NewDateTimeUTC(2026, 1, 2, 0, 0, 0)
	assert.True(t, a.Before(b))
	assert.False(t, b.Before(a))
	assert.True(t, a.Equal(a))
	assert.False(t, a.Equal(b))
}
