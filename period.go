package ical

import "strings"

// Period is a PERIOD value (RFC 5545 §3.3.9): a span of time expressed
// either as two explicit DATE-TIMEs ("period-explicit") or as a start
// DATE-TIME plus a DURATION ("period-start"). Exactly one of End/Dur is set.
type Period struct {
	Start DateTime
	End   DateTime
	Dur   *Duration
}

func (p Period) Kind() Kind { return KindPeriod }

func (p Period) String() string {
	if p.Dur != nil {
		return p.Start.String() + "/" + p.Dur.String()
	}
	return p.Start.String() + "/" + p.End.String()
}

// ResolveEnd returns the period's end instant, computing it from Start+Dur
// via calendar-aware DateTime.Add when the period was expressed as a
// duration.
func (p Period) ResolveEnd() DateTime {
	if p.Dur != nil {
		return p.Start.Add(p.Dur.AsTimeDuration())
	}
	return p.End
}

func parsePeriodValue(raw string, params Params, pos Pos) (Value, error) {
	parts := strings.SplitN(raw, "/", 2)
	if len(parts) != 2 {
		return nil, &ValueError{Pos: pos, Kind: "PERIOD", Raw: raw, Reason: "expected start/end"}
	}
	startVal, err := parseDateTimeValue(parts[0], params, pos, false)
	if err != nil {
		return nil, err
	}
	start := startVal.(DateTime)
	if !start.HasTime {
		return nil, &ValueError{Pos: pos, Kind: "PERIOD", Raw: raw, Reason: "period start must be a DATE-TIME"}
	}

	if len(parts[1]) > 0 && (parts[1][0] == 'P' || parts[1][0] == '+' || parts[1][0] == '-') {
		dur, err := ParseDuration(parts[1])
		if err != nil {
			return nil, &ValueError{Pos: pos, Kind: "PERIOD", Raw: raw, Reason: "bad duration half: " + err.Error()}
		}
		return Period{Start: start, Dur: &dur}, nil
	}

	endVal, err := parseDateTimeValue(parts[1], params, pos, false)
	if err != nil {
		return nil, err
	}
	end := endVal.(DateTime)
	if !end.HasTime {
		return nil, &ValueError{Pos: pos, Kind: "PERIOD", Raw: raw, Reason: "period end must be a DATE-TIME"}
	}
	return Period{Start: start, End: end}, nil
}
