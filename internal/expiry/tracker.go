package expiry

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Item is one tracked equipment type for one person.
type Item struct {
	Name          string `json:"name"`
	Quantity      int    `json:"quantity"`
	ReceptionDate string `json:"reception_date"`
	ValidityDate  string `json:"validity_date"`
	Status        Status `json:"status"`
}

// Notification is an expiry message for one item.
type Notification struct {
	ID        string    `json:"id"`
	Subject   string    `json:"subject"`
	SubjectID int64     `json:"subject_id"`
	Equipment string    `json:"equipment"`
	Threshold Threshold `json:"threshold"`
	Status    Status    `json:"status"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// Sink delivers notifications. Errors are logged by the caller; they never
// cause a notification to be retried within the same epoch.
type Sink interface {
	Send(ctx context.Context, n Notification) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, n Notification) error

// Send calls f.
func (f SinkFunc) Send(ctx context.Context, n Notification) error { return f(ctx, n) }

// Change records a status transition produced by Evaluate.
type Change struct {
	Name     string `json:"name"`
	Previous Status `json:"previous"`
	Current  Status `json:"current"`
}

// TrackerConfig configures a Tracker.
type TrackerConfig struct {
	// Subject names the owner of the items, e.g. a worker's name.
	Subject   string
	SubjectID int64
	Location  *time.Location
	// Alerts receives the in-app alert, Push the platform notification.
	Alerts Sink
	Push   Sink
	Logger *slog.Logger
}

// Tracker owns the items of one person and the ledger for them.
// All methods are safe for concurrent use.
type Tracker struct {
	cfg TrackerConfig

	mu     sync.Mutex
	items  []Item
	ledger *Ledger
}

// NewTracker creates a tracker with no items.
func NewTracker(cfg TrackerConfig) *Tracker {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Tracker{cfg: cfg, ledger: NewLedger()}
}

// Load replaces the items with freshly loaded data and starts a new epoch.
// Items keep the status last evaluated under the same name, so an unchanged
// item is not reported as a change after a reload.
func (t *Tracker) Load(items []Item) {
	t.mu.Lock()
	defer t.mu.Unlock()

	prev := make(map[string]Status, len(t.items))
	for _, it := range t.items {
		prev[it.Name] = it.Status
	}
	t.items = append(t.items[:0:0], items...)
	for i := range t.items {
		if st, ok := prev[t.items[i].Name]; ok {
			t.items[i].Status = st
		}
	}
	t.ledger.ResetAll()
}

// SetSubject updates the display name used in notification texts.
func (t *Tracker) SetSubject(subject string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cfg.Subject = subject
}

// Items returns a copy of the current items.
func (t *Tracker) Items() []Item {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Item(nil), t.items...)
}

// Rollover starts a new epoch so notifications can fire again on a new day.
func (t *Tracker) Rollover() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ledger.ResetAll()
}

// Evaluate classifies every item at now, then sends the notifications owed.
// Thresholds are recorded before delivery, so a failing sink is not retried
// until the next epoch. It returns the items whose status changed.
func (t *Tracker) Evaluate(ctx context.Context, now time.Time) []Change {
	t.mu.Lock()

	statuses := make([]Status, len(t.items))
	for i, it := range t.items {
		statuses[i] = Classify(it.ReceptionDate, it.ValidityDate, now, t.cfg.Location)
	}

	var changes []Change
	var pending []Notification
	for i := range t.items {
		it := &t.items[i]
		st := statuses[i]

		ob := t.ledger.ShouldNotify(it.Name, st)
		if ob.DayOf {
			pending = append(pending, t.notification(it.Name, ThresholdDayOf, st, now))
			t.ledger.Record(it.Name, ThresholdDayOf)
		}
		if ob.DayBefore {
			pending = append(pending, t.notification(it.Name, ThresholdDayBefore, st, now))
			t.ledger.Record(it.Name, ThresholdDayBefore)
		}

		if it.Status != st {
			changes = append(changes, Change{Name: it.Name, Previous: it.Status, Current: st})
			it.Status = st
		}
	}
	t.mu.Unlock()

	for _, n := range pending {
		t.deliver(ctx, n)
	}
	return changes
}

func (t *Tracker) deliver(ctx context.Context, n Notification) {
	alert := n
	alert.Title, alert.Body = alertText(n)
	if t.cfg.Alerts != nil {
		if err := t.cfg.Alerts.Send(ctx, alert); err != nil {
			t.cfg.Logger.Warn("in-app alert failed", "subject", n.Subject, "equipment", n.Equipment, "error", err)
		}
	}
	if t.cfg.Push != nil {
		if err := t.cfg.Push.Send(ctx, n); err != nil {
			t.cfg.Logger.Warn("platform notification failed", "subject", n.Subject, "equipment", n.Equipment, "error", err)
		}
	}
}

func (t *Tracker) notification(name string, th Threshold, st Status, now time.Time) Notification {
	n := Notification{
		ID:        uuid.NewString(),
		Subject:   t.cfg.Subject,
		SubjectID: t.cfg.SubjectID,
		Equipment: name,
		Threshold: th,
		Status:    st,
		CreatedAt: now,
	}
	n.Title, n.Body = pushText(n)
	return n
}

func (n Notification) target() string {
	if n.Subject == "" {
		return n.Equipment
	}
	return fmt.Sprintf("%s (%s)", n.Equipment, n.Subject)
}

// pushText is the platform notification wording.
func pushText(n Notification) (string, string) {
	switch n.Status.Kind {
	case KindExpired:
		return "Equipment expired", fmt.Sprintf("%s expired %d day(s) ago.", n.target(), -n.Status.DaysRemaining)
	case KindToday:
		return "Expires today", fmt.Sprintf("%s expires today!", n.target())
	default:
		return "Expiry approaching", fmt.Sprintf("%s will expire tomorrow.", n.target())
	}
}

// alertText is the in-app alert wording.
func alertText(n Notification) (string, string) {
	switch n.Status.Kind {
	case KindExpired:
		return "Equipment expired", fmt.Sprintf("%s has expired.", n.target())
	case KindToday:
		return "Expires today", fmt.Sprintf("%s expires today!", n.target())
	default:
		return "Expiry approaching - " + n.Equipment, fmt.Sprintf("%s will expire tomorrow.", n.target())
	}
}
