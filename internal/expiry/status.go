// Package expiry derives lifecycle status for dated equipment and decides when
// an expiry notification is owed.
package expiry

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar date format used for reception and validity dates.
const DateLayout = "2006-01-02"

// SoonWindow is the largest number of remaining days still reported as "soon".
const SoonWindow = 7

// Kind is the classification of an item's validity.
type Kind int

// Kinds, in order of decreasing urgency after Unset.
const (
	KindUnset Kind = iota
	KindExpired
	KindToday
	KindTomorrow
	KindSoon
	KindValid
)

var kindNames = map[Kind]string{
	KindUnset:    "unset",
	KindExpired:  "expired",
	KindToday:    "today",
	KindTomorrow: "tomorrow",
	KindSoon:     "soon",
	KindValid:    "valid",
}

// Kinds lists every kind, for iteration in summaries and metrics.
var Kinds = []Kind{KindUnset, KindExpired, KindToday, KindTomorrow, KindSoon, KindValid}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	for kind, name := range kindNames {
		if name == string(b) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown status kind %q", string(b))
}

// Status is the classification of one item at one point in time.
// DaysRemaining is meaningful only when Kind is not KindUnset.
type Status struct {
	Kind          Kind `json:"kind"`
	DaysRemaining int  `json:"days_remaining"`
}

// Label returns the display text for the status. Unset yields "".
func (s Status) Label() string {
	switch s.Kind {
	case KindExpired:
		return "Expired"
	case KindToday:
		return "Expires today"
	case KindTomorrow:
		return "Expires tomorrow"
	case KindSoon:
		return fmt.Sprintf("Expires in %d days", s.DaysRemaining)
	case KindValid:
		return fmt.Sprintf("Valid (%d days remaining)", s.DaysRemaining)
	default:
		return ""
	}
}

// Severity returns the display urgency: none, critical, warning, notice or ok.
func (s Status) Severity() string {
	switch s.Kind {
	case KindExpired:
		return "critical"
	case KindToday, KindTomorrow:
		return "warning"
	case KindSoon:
		return "notice"
	case KindValid:
		return "ok"
	default:
		return "none"
	}
}

// Classify computes the status of an item received on reception and valid
// until validity, as seen at now. Days are counted between calendar dates in
// loc (time.Local when nil), so the time of day of now and DST shifts have no
// effect. An empty or unparseable date yields KindUnset.
func Classify(reception, validity string, now time.Time, loc *time.Location) Status {
	if loc == nil {
		loc = time.Local
	}

	if _, ok := ParseDate(reception, loc); !ok {
		return Status{}
	}
	until, ok := ParseDate(validity, loc)
	if !ok {
		return Status{}
	}

	return FromDays(DaysBetween(now.In(loc), until))
}

// FromDays maps a remaining day count to a status. The checks are ordered so
// that zero and one never fall into the soon window.
func FromDays(days int) Status {
	st := Status{DaysRemaining: days}
	switch {
	case days < 0:
		st.Kind = KindExpired
	case days == 0:
		st.Kind = KindToday
	case days == 1:
		st.Kind = KindTomorrow
	case days <= SoonWindow:
		st.Kind = KindSoon
	default:
		st.Kind = KindValid
	}
	return st
}

// ParseDate parses a calendar date in loc. Both YYYY-MM-DD and RFC 3339
// timestamps are accepted; timestamps are reduced to their date in loc.
func ParseDate(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}

	if t, err := time.ParseInLocation(DateLayout, s, loc); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		y, m, d := t.In(loc).Date()
		return time.Date(y, m, d, 0, 0, 0, 0, loc), true
	}
	return time.Time{}, false
}

const secondsPerDay = 24 * 60 * 60

// DaysBetween returns the number of calendar days from the date of from to the
// date of to, each taken in its own location.
func DaysBetween(from, to time.Time) int {
	fy, fm, fd := from.Date()
	ty, tm, td := to.Date()
	a := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	b := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int((b.Unix() - a.Unix()) / secondsPerDay)
}
