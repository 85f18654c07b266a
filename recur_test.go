package ical

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseRecurDailyCount(t *testing.T) {
	r, err := ParseRecur("FREQ=DAILY;COUNT=5")
	assert.NoError(t, err)
	assert.Equal(t, Daily, r.Freq)
	assert.Equal(t, 1, r.Interval)
	assert.NotNil(t, r.Count)
	assert.Equal(t, 5, *r.Count)
	assert.NoError(t, r.Validate())
}

func TestParseRecurMonthlyLastFriday(t *testing.T) {
	r, err := ParseRecur("FREQ=MONTHLY;BYDAY=-1FR")
	assert.NoError(t, err)
	assert.Len(t, r.ByDay, 1)
	assert.Equal(t, time.Friday, r.ByDay[0].Weekday)
	assert.Equal(t, -1, r.ByDay[0].Ordinal)
}

func TestParseRecurYearlyBySetPos(t *testing.T) {
	r, err := ParseRecur("FREQ=YEARLY;BYMONTH=1;BYDAY=MO,TU,WE,TH,FR;BYSETPOS=-1")
	assert.NoError(t, err)
	assert.Equal(t, []int{1}, r.ByMonth)
	assert.Equal(t, []int{-1}, r.BySetPos)
	assert.Len(t, r.ByDay, 5)
}

func TestParseRecurRequiresFreq(t *testing.T) {
	_, err := ParseRecur("COUNT=5")
	assert.Error(t, err)
}

func TestRecurValidateRejectsCountAndUntil(t *testing.T) {
	n := 3
	until := NewDateTimeUTC(2026, 1, 1, 0, 0, 0)
	r := Recur{Freq: Daily, Interval: 1, Count: &n, Until: &until}
	err := r.Validate()
	assert.Error(t, err)
	rerr, ok := err.(*RecurError)
	assert.True(t, ok)
	assert.Equal(t, ReasonCountAndUntilBothSet, rerr.Reason)
}

func TestRecurValidateRejectsZeroInterval(t *testing.T) {
	r, err := ParseRecur("FREQ=DAILY;INTERVAL=0")
	assert.NoError(t, err)
	err = r.Validate()
	assert.Error(t, err)
	rerr, ok := err.(*RecurError)
	assert.True(t, ok)
	assert.Equal(t, ReasonIntervalNotPositive, rerr.Reason)
}

func TestRecurValidateRejectsNegativeInterval(t *testing.T) {
	r := Recur{Freq: Daily, Interval: -1}
	err := r.Validate()
	assert.Error(t, err)
	rerr, ok := err.(*RecurError)
	assert.True(t, ok)
	assert.Equal(t, ReasonIntervalNotPositive, rerr.Reason)
}

func TestRecurValidateRejectsOutOfRangeByMonthDay(t *testing.T) {
	r := Recur{Freq: Monthly, Interval: 1, ByMonthDay: []int{32}}
	assert.Error(t, r.Validate())
}

func TestRecurStringRoundTripsThroughParse(t *testing.T) {
	orig := "FREQ=WEEKLY;INTERVAL=2;BYDAY=MO,WE,FR"
	r, err := ParseRecur(orig)
	assert.NoError(t, err)
	reparsed, err := ParseRecur(r.String())
	assert.NoError(t, err)
	assert.Equal(t, r, reparsed)
}

func TestToROptionTranslatesFields(t *testing.T) {
	r, err := ParseRecur("FREQ=DAILY;COUNT=3;INTERVAL=2")
	assert.NoError(t, err)
	dtstart := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	opt := r.toROption(dtstart)
	assert.Equal(t, dtstart, opt.Dtstart)
	assert.Equal(t, 2, opt.Interval)
	assert.Equal(t, 3, opt.Count)
}
