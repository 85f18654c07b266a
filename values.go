package ical

import (
	"encoding/base64"
	"strconv"
	"strings"
)

// Kind identifies one of the value-data-type variants of RFC 5545 §3.3. It is
// the tag of the tagged union spec.md's Design Notes call for in place of the
// teacher's reflection-driven GetValueType switch (property.go).
type Kind int

const (
	KindText Kind = iota
	KindInteger
	KindFloat
	KindBoolean
	KindURI
	KindCalAddress
	KindBinary
	KindDate
	KindDateTime
	KindTime
	KindDuration
	KindPeriod
	KindUTCOffset
	KindRecur
	KindGeo
	KindRequestStatus
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "TEXT"
	case KindInteger:
		return "INTEGER"
	case KindFloat:
		return "FLOAT"
	case KindBoolean:
		return "BOOLEAN"
	case KindURI:
		return "URI"
	case KindCalAddress:
		return "CAL-ADDRESS"
	case KindBinary:
		return "BINARY"
	case KindDate:
		return "DATE"
	case KindDateTime:
		return "DATE-TIME"
	case KindTime:
		return "TIME"
	case KindDuration:
		return "DURATION"
	case KindPeriod:
		return "PERIOD"
	case KindUTCOffset:
		return "UTC-OFFSET"
	case KindRecur:
		return "RECUR"
	case KindGeo:
		return "GEO"
	case KindRequestStatus:
		return "REQUEST-STATUS"
	default:
		return "UNKNOWN"
	}
}

// Value is satisfied by every concrete value-data-type variant: Text,
// Integer, Float, Boolean, URI, CalAddress, Binary, DateTime, Time,
// Duration, Period, UTCOffset, Recur, Geo, and RequestStatus.
type Value interface {
	Kind() Kind
	String() string
}

// valueKindByParam maps a VALUE parameter token (RFC 5545 §3.2.20) to the
// Kind it selects, overriding a property's default Kind.
var valueKindByParam = map[string]Kind{
	"TEXT":           KindText,
	"INTEGER":        KindInteger,
	"FLOAT":          KindFloat,
	"BOOLEAN":        KindBoolean,
	"URI":            KindURI,
	"CAL-ADDRESS":    KindCalAddress,
	"BINARY":         KindBinary,
	"DATE":           KindDate,
	"DATE-TIME":      KindDateTime,
	"TIME":           KindTime,
	"DURATION":       KindDuration,
	"PERIOD":         KindPeriod,
	"UTC-OFFSET":     KindUTCOffset,
	"RECUR":          KindRecur,
	"REQUEST-STATUS": KindRequestStatus,
}

// defaultKindByProperty is the static property-name → Kind table of RFC 5545
// §3.7/§3.8, replacing the teacher's GetValueType reflection switch
// (property.go) with a flat lookup. Properties absent from this table (X-
// extensions, IANA properties this build doesn't know about) default to
// KindText, matching RFC 5545's "unless otherwise specified, TEXT".
var defaultKindByProperty = map[string]Kind{
	"CALSCALE":       KindText,
	"METHOD":         KindText,
	"PRODID":         KindText,
	"VERSION":        KindText,
	"ATTACH":         KindURI,
	"CATEGORIES":     KindText,
	"CLASS":          KindText,
	"COMMENT":        KindText,
	"DESCRIPTION":    KindText,
	"GEO":            KindGeo,
	"LOCATION":       KindText,
	"PERCENT-COMPLETE": KindInteger,
	"PRIORITY":       KindInteger,
	"RESOURCES":      KindText,
	"STATUS":         KindText,
	"SUMMARY":        KindText,
	"COMPLETED":      KindDateTime,
	"DTEND":          KindDateTime,
	"DUE":            KindDateTime,
	"DTSTART":        KindDateTime,
	"DURATION":       KindDuration,
	"FREEBUSY":       KindPeriod,
	"TRANSP":         KindText,
	"TZID":           KindText,
	"TZNAME":         KindText,
	"TZOFFSETFROM":   KindUTCOffset,
	"TZOFFSETTO":     KindUTCOffset,
	"TZURL":          KindURI,
	"ATTENDEE":       KindCalAddress,
	"CONTACT":        KindText,
	"ORGANIZER":      KindCalAddress,
	"RECURRENCE-ID":  KindDateTime,
	"RELATED-TO":     KindText,
	"URL":            KindURI,
	"UID":            KindText,
	"EXDATE":         KindDateTime,
	"RDATE":          KindDateTime,
	"RRULE":          KindRecur,
	"EXRULE":         KindRecur,
	"ACTION":         KindText,
	"REPEAT":         KindInteger,
	"TRIGGER":        KindDuration,
	"CREATED":        KindDateTime,
	"DTSTAMP":        KindDateTime,
	"LAST-MODIFIED":  KindDateTime,
	"SEQUENCE":       KindInteger,
	"REQUEST-STATUS": KindRequestStatus,
	"XML":            KindText,
	"NAME":           KindText,
	"REFRESH-INTERVAL": KindDuration,
	"SOURCE":         KindURI,
	"COLOR":          KindText,
	"IMAGE":          KindURI,
	"CONFERENCE":     KindURI,
}

// defaultKind returns the Kind a canonical (upper-cased) property name
// resolves to absent a VALUE parameter override.
func defaultKind(canonicalName string) Kind {
	if k, ok := defaultKindByProperty[canonicalName]; ok {
		return k
	}
	return KindText
}

// kindFor resolves the effective Kind for a property: its VALUE parameter if
// present and recognized, else its schema default.
func kindFor(p *Property) Kind {
	if v, ok := p.Params.First("VALUE"); ok {
		if k, ok := valueKindByParam[strings.ToUpper(v)]; ok {
			return k
		}
	}
	return defaultKind(p.canonicalName())
}

// listProperties are the properties whose value grammar is a COMMA-separated
// list of same-typed values (RFC 5545 §3.8.1.2/§3.8.5.1/§3.8.5.2/§3.8.2.4),
// as opposed to a single value per content line.
var listProperties = map[string]bool{
	"CATEGORIES": true,
	"RESOURCES":  true,
	"EXDATE":     true,
	"RDATE":      true,
	"FREEBUSY":   true,
}

// ResolveValue parses p.Raw into the typed Value(s) its Kind selects and
// stores them on p.Value (first/only element) and p.Values (the full list —
// length 1 for non-list properties). It never mutates p.Raw: re-serializing
// an unresolved Property still round-trips via valueText's Raw fallback
// (property.go).
//
// Per spec.md §7, a failure here is a ValueError (or a *RecurError for a
// RECUR value that parses but fails Recur.Validate); in lenient parsing (the
// default) the caller records it and leaves p.Value/p.Values nil rather than
// aborting the whole parse.
func ResolveValue(p *Property) error {
	pos := p.pos
	pos.Property = p.Name
	kind := kindFor(p)

	if !listProperties[p.canonicalName()] {
		v, err := parseValue(kind, p.Raw, p.Params, pos)
		if err != nil {
			return err
		}
		p.Value = v
		p.Values = []Value{v}
		return nil
	}

	var rawItems []string
	if kind == KindText {
		rawItems = splitUnescapedCommas(p.Raw)
	} else {
		rawItems = strings.Split(p.Raw, ",")
	}
	values := make([]Value, 0, len(rawItems))
	for _, item := range rawItems {
		v, err := parseValue(kind, item, p.Params, pos)
		if err != nil {
			return err
		}
		values = append(values, v)
	}
	p.Values = values
	if len(values) > 0 {
		p.Value = values[0]
	}
	return nil
}

// splitUnescapedCommas splits a TEXT list on commas that are not themselves
// backslash-escaped, so "a\,b,c" splits into ["a\,b", "c"].
func splitUnescapedCommas(s string) []string {
	var out []string
	var cur strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			cur.WriteByte(s[i])
			cur.WriteByte(s[i+1])
			i++
			continue
		}
		if s[i] == ',' {
			out = append(out, cur.String())
			cur.Reset()
			continue
		}
		cur.WriteByte(s[i])
	}
	out = append(out, cur.String())
	return out
}

func parseValue(kind Kind, raw string, params Params, pos Pos) (Value, error) {
	switch kind {
	case KindText:
		return TextValue(FromText(raw)), nil
	case KindInteger:
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return nil, &ValueError{Pos: pos, Kind: kind.String(), Raw: raw, Reason: "not a valid integer"}
		}
		return IntegerValue(n), nil
	case KindFloat:
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, &ValueError{Pos: pos, Kind: kind.String(), Raw: raw, Reason: "not a valid float"}
		}
		return FloatValue(f), nil
	case KindBoolean:
		switch strings.ToUpper(strings.TrimSpace(raw)) {
		case "TRUE":
			return BooleanValue(true), nil
		case "FALSE":
			return BooleanValue(false), nil
		default:
			return nil, &ValueError{Pos: pos, Kind: kind.String(), Raw: raw, Reason: "must be TRUE or FALSE"}
		}
	case KindURI:
		return URIValue(raw), nil
	case KindCalAddress:
		return CalAddressValue(raw), nil
	case KindBinary:
		data, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			return nil, &ValueError{Pos: pos, Kind: kind.String(), Raw: raw, Reason: "not valid base64"}
		}
		return BinaryValue(data), nil
	case KindDate:
		return parseDateTimeValue(raw, params, pos, true)
	case KindDateTime:
		return parseDateTimeValue(raw, params, pos, false)
	case KindTime:
		return parseTimeValue(raw, params, pos)
	case KindDuration:
		return parseDurationValue(raw, pos)
	case KindPeriod:
		return parsePeriodValue(raw, params, pos)
	case KindUTCOffset:
		return parseUTCOffsetValue(raw, pos)
	case KindRecur:
		return parseRecurValue(raw, pos)
	case KindGeo:
		return parseGeoValue(raw, pos)
	case KindRequestStatus:
		return parseRequestStatusValue(raw, pos)
	default:
		return TextValue(FromText(raw)), nil
	}
}

// TextValue is an unescaped TEXT value (RFC 5545 §3.3.11); String()
// re-escapes it for the wire.
type TextValue string

func (v TextValue) Kind() Kind   { return KindText }
func (v TextValue) String() string { return ToText(string(v)) }

// IntegerValue is an INTEGER value (RFC 5545 §3.3.8).
type IntegerValue int

func (v IntegerValue) Kind() Kind   { return KindInteger }
func (v IntegerValue) String() string { return strconv.Itoa(int(v)) }

// FloatValue is a FLOAT value (RFC 5545 §3.3.7).
type FloatValue float64

func (v FloatValue) Kind() Kind   { return KindFloat }
func (v FloatValue) String() string { return strconv.FormatFloat(float64(v), 'f', -1, 64) }

// BooleanValue is a BOOLEAN value (RFC 5545 §3.3.2).
type BooleanValue bool

func (v BooleanValue) Kind() Kind { return KindBoolean }
func (v BooleanValue) String() string {
	if v {
		return "TRUE"
	}
	return "FALSE"
}

// URIValue is a URI value (RFC 5545 §3.3.13), kept unescaped/unvalidated: any
// syntactically-questionable URI still round-trips.
type URIValue string

func (v URIValue) Kind() Kind   { return KindURI }
func (v URIValue) String() string { return string(v) }

// CalAddressValue is a CAL-ADDRESS value (RFC 5545 §3.3.3), conventionally a
// mailto: URI.
type CalAddressValue string

func (v CalAddressValue) Kind() Kind   { return KindCalAddress }
func (v CalAddressValue) String() string { return string(v) }

// BinaryValue is a BINARY value (RFC 5545 §3.3.1), base64-encoded on the
// wire.
type BinaryValue []byte

func (v BinaryValue) Kind() Kind   { return KindBinary }
func (v BinaryValue) String() string { return base64.StdEncoding.EncodeToString(v) }

// UTCOffsetValue is a UTC-OFFSET value (RFC 5545 §3.3.14): a signed number of
// seconds east of UTC, rendered back as ±HHMM[SS].
type UTCOffsetValue int

func (v UTCOffsetValue) Kind() Kind { return KindUTCOffset }

func (v UTCOffsetValue) String() string {
	sign := "+"
	secs := int(v)
	if secs < 0 {
		sign = "-"
		secs = -secs
	}
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	if s != 0 {
		return sign + pad2(h) + pad2(m) + pad2(s)
	}
	return sign + pad2(h) + pad2(m)
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

func parseUTCOffsetValue(raw string, pos Pos) (Value, error) {
	s := strings.TrimSpace(raw)
	if len(s) != 5 && len(s) != 7 {
		return nil, &ValueError{Pos: pos, Kind: "UTC-OFFSET", Raw: raw, Reason: "expected ±HHMM or ±HHMMSS"}
	}
	sign := 1
	switch s[0] {
	case '+':
	case '-':
		sign = -1
	default:
		return nil, &ValueError{Pos: pos, Kind: "UTC-OFFSET", Raw: raw, Reason: "must start with + or -"}
	}
	h, err1 := strconv.Atoi(s[1:3])
	m, err2 := strconv.Atoi(s[3:5])
	sec := 0
	var err3 error
	if len(s) == 7 {
		sec, err3 = strconv.Atoi(s[5:7])
	}
	if err1 != nil || err2 != nil || err3 != nil {
		return nil, &ValueError{Pos: pos, Kind: "UTC-OFFSET", Raw: raw, Reason: "non-digit in offset"}
	}
	total := sign * (h*3600 + m*60 + sec)
	if sign < 0 && total == 0 {
		return nil, &ValueError{Pos: pos, Kind: "UTC-OFFSET", Raw: raw, Reason: "-0000 is not a valid UTC offset"}
	}
	return UTCOffsetValue(total), nil
}

// GeoValue is a GEO value (RFC 5545 §3.8.1.6): WGS-84 latitude/longitude.
type GeoValue struct {
	Lat float64
	Lon float64
}

func (v GeoValue) Kind() Kind { return KindGeo }
func (v GeoValue) String() string {
	return strconv.FormatFloat(v.Lat, 'f', -1, 64) + ";" + strconv.FormatFloat(v.Lon, 'f', -1, 64)
}

func parseGeoValue(raw string, pos Pos) (Value, error) {
	parts := strings.SplitN(raw, ";", 2)
	if len(parts) != 2 {
		return nil, &ValueError{Pos: pos, Kind: "GEO", Raw: raw, Reason: "expected lat;lon"}
	}
	lat, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lon, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil {
		return nil, &ValueError{Pos: pos, Kind: "GEO", Raw: raw, Reason: "lat/lon must be floats"}
	}
	return GeoValue{Lat: lat, Lon: lon}, nil
}

// RequestStatusValue is a REQUEST-STATUS value (RFC 5545 §3.8.8.3).
type RequestStatusValue struct {
	Code        string
	Description string
	ExtraData   string
}

func (v RequestStatusValue) Kind() Kind { return KindRequestStatus }
func (v RequestStatusValue) String() string {
	s := v.Code + ";" + ToText(v.Description)
	if v.ExtraData != "" {
		s += ";" + ToText(v.ExtraData)
	}
	return s
}

func parseRequestStatusValue(raw string, pos Pos) (Value, error) {
	parts := strings.SplitN(raw, ";", 3)
	if len(parts) < 2 {
		return nil, &ValueError{Pos: pos, Kind: "REQUEST-STATUS", Raw: raw, Reason: "expected code;description[;data]"}
	}
	rs := RequestStatusValue{Code: strings.TrimSpace(parts[0]), Description: FromText(parts[1])}
	if len(parts) == 3 {
		rs.ExtraData = FromText(parts[2])
	}
	return rs, nil
}
