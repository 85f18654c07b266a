package ical

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

// propSnapshot and componentSnapshot re-express a Property/Component tree
// purely in exported fields so cmp.Diff can walk it without tripping over
// ComponentBase's unexported bookkeeping (name/props/children) — the same
// problem the teacher never had to solve, since its Property/Component
// types carry no unexported fields, but the comparison idiom (cmp.Diff
// against a deserialized value) is grounded directly on
// calendar_serialization_test.go.
type propSnapshot struct {
	Name   string
	Params map[string][]string
	Raw    string
	Value  Value
	Values []Value
}

type componentSnapshot struct {
	Name     string
	Props    []propSnapshot
	Children []componentSnapshot
}

func snapshotProperty(p *Property) propSnapshot {
	params := map[string][]string{}
	for _, name := range p.Params.Names() {
		params[name] = p.Params.Get(name)
	}
	return propSnapshot{Name: p.Name, Params: params, Raw: p.Raw, Value: p.Value, Values: p.Values}
}

func snapshotComponent(c Component) componentSnapshot {
	props := make([]propSnapshot, 0, len(c.Props()))
	for _, p := range c.Props() {
		props = append(props, snapshotProperty(p))
	}
	children := make([]componentSnapshot, 0, len(c.Children()))
	for _, ch := range c.Children() {
		children = append(children, snapshotComponent(ch))
	}
	return componentSnapshot{Name: c.Name(), Props: props, Children: children}
}

// TestSerializeRoundTripPreservesComponentTree re-parses a serialized
// calendar and diffs the two component trees structurally rather than
// checking a handful of fields, catching any property silently dropped,
// reordered, or reshaped by a Serialize/ParseCalendar asymmetry.
func TestSerializeRoundTripPreservesComponentTree(t *testing.T) {
	cal := NewCalendarFor("test-suite")

	ev := NewVEvent("roundtrip-cmp@example.com")
	ev.SetSummary("Design review")
	ev.SetDTStart(NewDateTimeUTC(2026, 4, 1, 15, 0, 0))
	ev.SetDTEnd(NewDateTimeUTC(2026, 4, 1, 16, 0, 0))
	ev.Add("CATEGORIES", TextValue("work"), NewParams())
	ev.Add("CATEGORIES", TextValue("review"), NewParams())
	alarm := NewVAlarm("DISPLAY")
	alarm.SetDescription("Starting soon")
	ev.AddAlarm(alarm)
	cal.AddComponent(ev)

	reparsed, err := ParseCalendar(strings.NewReader(cal.Serialize()))
	assert.NoError(t, err)
	assert.Empty(t, reparsed.Errors)

	original := snapshotComponent(cal.Events()[0])
	again := snapshotComponent(reparsed.Events()[0])

	if diff := cmp.Diff(original, again); diff != "" {
		t.Errorf("round-tripped VEVENT differs (-original +reparsed):\n%s", diff)
	}
}

// TestCalendarEvaluateOccurrenceDiffIsStable confirms two evaluations of the
// same unchanging calendar over the same window produce identical
// Occurrence slices, using a struct diff instead of a field-by-field
// comparison so any new Occurrence field added later is covered for free.
func TestCalendarEvaluateOccurrenceDiffIsStable(t *testing.T) {
	cal := NewCalendarFor("test-suite")
	ev := NewVEvent("stable@example.com")
	ev.SetDTStart(NewDateTimeUTC(2026, 6, 1, 9, 0, 0))
	ev.SetDuration(Duration{Hours: 1})
	ev.AddRRule(mustRecur(t, "FREQ=DAILY;COUNT=3"))
	cal.AddComponent(ev)

	from := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)

	first, err := cal.Evaluate(from, to)
	assert.NoError(t, err)
	second, err := cal.Evaluate(from, to)
	assert.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("repeated Evaluate calls diverged (-first +second):\n%s", diff)
	}
}
