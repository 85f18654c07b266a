package ical

import (
	"strconv"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

// Frequency is the RRULE FREQ value (RFC 5545 §3.3.10).
type Frequency int

const (
	Secondly Frequency = iota
	Minutely
	Hourly
	Daily
	Weekly
	Monthly
	Yearly
)

func (f Frequency) String() string {
	switch f {
	case Secondly:
		return "SECONDLY"
	case Minutely:
		return "MINUTELY"
	case Hourly:
		return "HOURLY"
	case Daily:
		return "DAILY"
	case Weekly:
		return "WEEKLY"
	case Monthly:
		return "MONTHLY"
	case Yearly:
		return "YEARLY"
	default:
		return "DAILY"
	}
}

func parseFrequency(s string) (Frequency, bool) {
	switch strings.ToUpper(s) {
	case "SECONDLY":
		return Secondly, true
	case "MINUTELY":
		return Minutely, true
	case "HOURLY":
		return Hourly, true
	case "DAILY":
		return Daily, true
	case "WEEKLY":
		return Weekly, true
	case "MONTHLY":
		return Monthly, true
	case "YEARLY":
		return Yearly, true
	default:
		return 0, false
	}
}

// DaySpecifier is one BYDAY element (RFC 5545 §3.3.10): a weekday, optionally
// prefixed with a signed ordinal selecting the Nth occurrence of that weekday
// within the recurrence's frequency period (e.g. "-1FR" = last Friday of the
// month/year). Ordinal is 0 when no prefix was given — "every such weekday".
type DaySpecifier struct {
	Weekday time.Weekday
	Ordinal int
}

func (d DaySpecifier) String() string {
	s := weekdayCode(d.Weekday)
	if d.Ordinal != 0 {
		return strconv.Itoa(d.Ordinal) + s
	}
	return s
}

var weekdayCodes = map[time.Weekday]string{
	time.Sunday: "SU", time.Monday: "MO", time.Tuesday: "TU", time.Wednesday: "WE",
	time.Thursday: "TH", time.Friday: "FR", time.Saturday: "SA",
}

var codeWeekdays = map[string]time.Weekday{
	"SU": time.Sunday, "MO": time.Monday, "TU": time.Tuesday, "WE": time.Wednesday,
	"TH": time.Thursday, "FR": time.Friday, "SA": time.Saturday,
}

func weekdayCode(w time.Weekday) string { return weekdayCodes[w] }

func parseDaySpecifier(s string) (DaySpecifier, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return DaySpecifier{}, durationErr("BYDAY value too short: " + s)
	}
	code := s[len(s)-2:]
	wd, ok := codeWeekdays[code]
	if !ok {
		return DaySpecifier{}, durationErr("unrecognized BYDAY weekday: " + s)
	}
	ord := 0
	if rest := s[:len(s)-2]; rest != "" {
		n, err := strconv.Atoi(rest)
		if err != nil {
			return DaySpecifier{}, durationErr("bad BYDAY ordinal: " + s)
		}
		ord = n
	}
	return DaySpecifier{Weekday: wd, Ordinal: ord}, nil
}

// Recur is an RRULE/EXRULE value (RFC 5545 §3.3.10), generalizing the
// teacher's reflection-free approach (this teacher has no recurrence type at
// all) into the explicit field set spec.md §3 calls for. Count and Until are
// mutually exclusive, enforced by Validate.
type Recur struct {
	Freq       Frequency
	Interval   int
	Count      *int
	Until      *DateTime
	BySecond   []int
	ByMinute   []int
	ByHour     []int
	ByDay      []DaySpecifier
	ByMonthDay []int
	ByYearDay  []int
	ByWeekNo   []int
	ByMonth    []int
	BySetPos   []int
	WKST       time.Weekday
}

func (r Recur) Kind() Kind { return KindRecur }

func (r Recur) String() string {
	parts := []string{"FREQ=" + r.Freq.String()}
	if r.Interval > 1 {
		parts = append(parts, "INTERVAL="+strconv.Itoa(r.Interval))
	}
	if r.Count != nil {
		parts = append(parts, "COUNT="+strconv.Itoa(*r.Count))
	}
	if r.Until != nil {
		parts = append(parts, "UNTIL="+r.Until.String())
	}
	appendInts := func(name string, vs []int) {
		if len(vs) == 0 {
			return
		}
		strs := make([]string, len(vs))
		for i, v := range vs {
			strs[i] = strconv.Itoa(v)
		}
		parts = append(parts, name+"="+strings.Join(strs, ","))
	}
	appendInts("BYSECOND", r.BySecond)
	appendInts("BYMINUTE", r.ByMinute)
	appendInts("BYHOUR", r.ByHour)
	if len(r.ByDay) > 0 {
		strs := make([]string, len(r.ByDay))
		for i, d := range r.ByDay {
			strs[i] = d.String()
		}
		parts = append(parts, "BYDAY="+strings.Join(strs, ","))
	}
	appendInts("BYMONTHDAY", r.ByMonthDay)
	appendInts("BYYEARDAY", r.ByYearDay)
	appendInts("BYWEEKNO", r.ByWeekNo)
	appendInts("BYMONTH", r.ByMonth)
	appendInts("BYSETPOS", r.BySetPos)
	if r.WKST != time.Monday && r.WKST != 0 {
		parts = append(parts, "WKST="+weekdayCode(r.WKST))
	}
	return strings.Join(parts, ";")
}

// Validate checks the RFC 5545 range/mutual-exclusivity rules spec.md §7
// assigns to RecurError.
func (r Recur) Validate() error {
	if r.Count != nil && r.Until != nil {
		return &RecurError{Reason: ReasonCountAndUntilBothSet}
	}
	if r.Interval <= 0 {
		return &RecurError{Reason: ReasonIntervalNotPositive}
	}
	check := func(vs []int, lo, hi int) error {
		for _, v := range vs {
			av := v
			if av < 0 {
				av = -av
			}
			if av < lo || av > hi {
				return &RecurError{Reason: ReasonOutOfRange}
			}
		}
		return nil
	}
	if err := check(r.BySecond, 0, 60); err != nil {
		return err
	}
	if err := check(r.ByMinute, 0, 59); err != nil {
		return err
	}
	if err := check(r.ByHour, 0, 23); err != nil {
		return err
	}
	if err := check(r.ByMonthDay, 1, 31); err != nil {
		return err
	}
	if err := check(r.ByYearDay, 1, 366); err != nil {
		return err
	}
	if err := check(r.ByWeekNo, 1, 53); err != nil {
		return err
	}
	if err := check(r.ByMonth, 1, 12); err != nil {
		return err
	}
	if err := check(r.BySetPos, 1, 366); err != nil {
		return err
	}
	return nil
}

func parseRecurValue(raw string, pos Pos) (Value, error) {
	r, err := ParseRecur(raw)
	if err != nil {
		return nil, &ValueError{Pos: pos, Kind: "RECUR", Raw: raw, Reason: err.Error()}
	}
	if err := r.Validate(); err != nil {
		re := err.(*RecurError)
		re.Pos = pos
		return nil, re
	}
	return r, nil
}

// ParseRecur parses a RECUR value's ";"-separated RULE-PART list (RFC 5545
// §3.3.10) into a Recur.
func ParseRecur(raw string) (Recur, error) {
	r := Recur{Interval: 1, WKST: time.Monday}
	haveFreq := false
	for _, part := range strings.Split(raw, ";") {
		if part == "" {
			continue
		}
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			return Recur{}, durationErr("malformed RRULE part: " + part)
		}
		name, val := strings.ToUpper(kv[0]), kv[1]
		switch name {
		case "FREQ":
			f, ok := parseFrequency(val)
			if !ok {
				return Recur{}, durationErr("unrecognized FREQ: " + val)
			}
			r.Freq = f
			haveFreq = true
		case "INTERVAL":
			n, err := strconv.Atoi(val)
			if err != nil {
				return Recur{}, durationErr("bad INTERVAL: " + val)
			}
			r.Interval = n
		case "COUNT":
			n, err := strconv.Atoi(val)
			if err != nil {
				return Recur{}, durationErr("bad COUNT: " + val)
			}
			r.Count = &n
		case "UNTIL":
			dv, err := parseDateTimeValue(val, NewParams(), Pos{}, false)
			if err != nil {
				return Recur{}, err
			}
			dt := dv.(DateTime)
			r.Until = &dt
		case "BYSECOND":
			vs, err := splitInts(val)
			if err != nil {
				return Recur{}, err
			}
			r.BySecond = vs
		case "BYMINUTE":
			vs, err := splitInts(val)
			if err != nil {
				return Recur{}, err
			}
			r.ByMinute = vs
		case "BYHOUR":
			vs, err := splitInts(val)
			if err != nil {
				return Recur{}, err
			}
			r.ByHour = vs
		case "BYDAY":
			for _, d := range strings.Split(val, ",") {
				ds, err := parseDaySpecifier(d)
				if err != nil {
					return Recur{}, err
				}
				r.ByDay = append(r.ByDay, ds)
			}
		case "BYMONTHDAY":
			vs, err := splitInts(val)
			if err != nil {
				return Recur{}, err
			}
			r.ByMonthDay = vs
		case "BYYEARDAY":
			vs, err := splitInts(val)
			if err != nil {
				return Recur{}, err
			}
			r.ByYearDay = vs
		case "BYWEEKNO":
			vs, err := splitInts(val)
			if err != nil {
				return Recur{}, err
			}
			r.ByWeekNo = vs
		case "BYMONTH":
			vs, err := splitInts(val)
			if err != nil {
				return Recur{}, err
			}
			r.ByMonth = vs
		case "BYSETPOS":
			vs, err := splitInts(val)
			if err != nil {
				return Recur{}, err
			}
			r.BySetPos = vs
		case "WKST":
			wd, ok := codeWeekdays[strings.ToUpper(val)]
			if !ok {
				return Recur{}, durationErr("unrecognized WKST: " + val)
			}
			r.WKST = wd
		default:
			// Unknown rule part: ignored, per RFC 5545's forward-compatibility
			// guidance for unrecognized extensions.
		}
	}
	if !haveFreq {
		return Recur{}, durationErr(ReasonFrequencyRequired)
	}
	return r, nil
}

func splitInts(val string) ([]int, error) {
	parts := strings.Split(val, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, durationErr("expected an integer, got " + p)
		}
		out = append(out, n)
	}
	return out, nil
}

func toRRuleFrequency(f Frequency) rrule.Frequency {
	switch f {
	case Yearly:
		return rrule.YEARLY
	case Monthly:
		return rrule.MONTHLY
	case Weekly:
		return rrule.WEEKLY
	case Daily:
		return rrule.DAILY
	case Hourly:
		return rrule.HOURLY
	case Minutely:
		return rrule.MINUTELY
	default:
		return rrule.SECONDLY
	}
}

var rruleWeekday = map[time.Weekday]rrule.Weekday{
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
	time.Sunday:    rrule.SU,
}

// toROption translates a Recur plus its anchoring DTSTART into the
// teambition/rrule-go option struct that drives actual occurrence
// expansion (evaluate.go). Grounded on the usage pattern in
// proofrock-mucal's expandRecurringEvent (internal/caldav/recurring.go in
// the retrieved pack): build an ROption, hand it to rrule.NewRRule, compose
// into an rrule.Set. Callers must call Validate first — an Interval <= 0
// is rejected there rather than silently coerced here.
func (r Recur) toROption(dtstart time.Time) rrule.ROption {
	opt := rrule.ROption{
		Freq:     toRRuleFrequency(r.Freq),
		Dtstart:  dtstart,
		Interval: r.Interval,
		Wkst:     rruleWeekday[r.WKST],
	}
	if r.Count != nil {
		opt.Count = *r.Count
	}
	if r.Until != nil {
		opt.Until = r.Until.AsTime(dtstart.Location())
	}
	opt.Bysecond = r.BySecond
	opt.Byminute = r.ByMinute
	opt.Byhour = r.ByHour
	opt.Bymonthday = r.ByMonthDay
	opt.Byyearday = r.ByYearDay
	opt.Byweekno = r.ByWeekNo
	opt.Bymonth = r.ByMonth
	opt.Bysetpos = r.BySetPos
	if len(r.ByDay) > 0 {
		wds := make([]rrule.Weekday, 0, len(r.ByDay))
		for _, d := range r.ByDay {
			base := rruleWeekday[d.Weekday]
			if d.Ordinal != 0 {
				base = base.Nth(d.Ordinal)
			}
			wds = append(wds, base)
		}
		opt.Byweekday = wds
	}
	return opt
}
