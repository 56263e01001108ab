package expiry

// Threshold identifies which one-shot notification an item has crossed.
type Threshold int

const (
	// ThresholdDayBefore fires once when an item expires tomorrow.
	ThresholdDayBefore Threshold = iota + 1
	// ThresholdDayOf fires once when an item expires today or has expired.
	ThresholdDayOf
)

func (t Threshold) String() string {
	switch t {
	case ThresholdDayBefore:
		return "day_before"
	case ThresholdDayOf:
		return "day_of"
	default:
		return "none"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t Threshold) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Obligation reports which notifications are owed for an item.
type Obligation struct {
	DayBefore bool
	DayOf     bool
}

// Any reports whether at least one notification is owed.
func (o Obligation) Any() bool {
	return o.DayBefore || o.DayOf
}

// Ledger remembers which items were already notified in the current epoch.
// An epoch ends with ResetAll, at local midnight or when the items are
// reloaded from storage.
//
// Ledger is not safe for concurrent use; Tracker serializes access to it.
type Ledger struct {
	dayBefore map[string]struct{}
	dayOf     map[string]struct{}
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		dayBefore: make(map[string]struct{}),
		dayOf:     make(map[string]struct{}),
	}
}

// ShouldNotify decides which notifications the item identified by key is owed
// for status st. Expired and today share the day-of set.
func (l *Ledger) ShouldNotify(key string, st Status) Obligation {
	var o Obligation
	switch st.Kind {
	case KindTomorrow:
		_, sent := l.dayBefore[key]
		o.DayBefore = !sent
	case KindToday, KindExpired:
		_, sent := l.dayOf[key]
		o.DayOf = !sent
	}
	return o
}

// Record marks the threshold as notified for key. Recording twice is a no-op.
func (l *Ledger) Record(key string, th Threshold) {
	switch th {
	case ThresholdDayBefore:
		l.dayBefore[key] = struct{}{}
	case ThresholdDayOf:
		l.dayOf[key] = struct{}{}
	}
}

// Sent reports whether the threshold was already recorded for key.
func (l *Ledger) Sent(key string, th Threshold) bool {
	var ok bool
	switch th {
	case ThresholdDayBefore:
		_, ok = l.dayBefore[key]
	case ThresholdDayOf:
		_, ok = l.dayOf[key]
	}
	return ok
}

// ResetAll starts a new epoch.
func (l *Ledger) ResetAll() {
	clear(l.dayBefore)
	clear(l.dayOf)
}
