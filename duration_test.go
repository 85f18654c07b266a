package ical

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseDurationWeeks(t *testing.T) {
	d, err := ParseDuration("P2W")
	assert.NoError(t, err)
	assert.Equal(t, Duration{Weeks: 2}, d)
	assert.Equal(t, "P2W", d.String())
	assert.Equal(t, 14*24*time.Hour, d.AsTimeDuration())
}

func TestParseDurationDateTime(t *testing.T) {
	d, err := ParseDuration("P1DT2H3M4S")
	assert.NoError(t, err)
	assert.Equal(t, Duration{Days: 1, Hours: 2, Minutes: 3, Seconds: 4}, d)
	assert.Equal(t, "P1DT2H3M4S", d.String())
}

func TestParseDurationNegative(t *testing.T) {
	d, err := ParseDuration("-PT15M")
	assert.NoError(t, err)
	assert.True(t, d.Negative)
	assert.Equal(t, -15*time.Minute, d.AsTimeDuration())
}

func TestParseDurationTimeOnly(t *testing.T) {
	d, err := ParseDuration("PT1H")
	assert.NoError(t, err)
	assert.Equal(t, Duration{Hours: 1}, d)
}

func TestParseDurationRejectsMalformed(t *testing.T) {
	cases := []string{"", "1DT1H", "PW", "P1D1H", "PT", "P1DTx"}
	for _, c := range cases {
		_, err := ParseDuration(c)
		assert.Error(t, err, "input %q", c)
	}
}

func TestParseDurationRejectsWeekPlusDay(t *testing.T) {
	_, err := ParseDuration("P1W2D")
	assert.Error(t, err)
}
