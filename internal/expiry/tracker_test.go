package expiry

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureSink struct {
	mu   sync.Mutex
	sent []Notification
	err  error
}

func (c *captureSink) Send(_ context.Context, n Notification) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, n)
	return c.err
}

func (c *captureSink) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sent)
}

func newTestTracker(alerts, push Sink) *Tracker {
	return NewTracker(TrackerConfig{
		Subject:  "Ana Novak",
		Location: time.UTC,
		Alerts:   alerts,
		Push:     push,
	})
}

func day(t *testing.T, value string) time.Time {
	t.Helper()
	return at(t, time.UTC, value)
}

func TestTracker_ScenarioTodayThenExpired(t *testing.T) {
	alerts, push := &captureSink{}, &captureSink{}
	tr := newTestTracker(alerts, push)
	tr.Load([]Item{{Name: "Helmet", Quantity: 1, ReceptionDate: "2024-01-01", ValidityDate: "2024-01-10"}})
	ctx := context.Background()

	changes := tr.Evaluate(ctx, day(t, "2024-01-10T08:00"))
	require.Len(t, changes, 1)
	assert.Equal(t, "Expires today", changes[0].Current.Label())
	assert.Equal(t, 1, alerts.count())
	assert.Equal(t, 1, push.count())

	// Re-evaluating the same day does not notify again.
	tr.Evaluate(ctx, day(t, "2024-01-10T18:00"))
	assert.Equal(t, 1, alerts.count())

	// Expired the next day, after the midnight rollover.
	tr.Rollover()
	changes = tr.Evaluate(ctx, day(t, "2024-01-11T00:00"))
	require.Len(t, changes, 1)
	assert.Equal(t, KindExpired, changes[0].Current.Kind)
	assert.Equal(t, 2, alerts.count())
	assert.Equal(t, 2, push.count())

	push.mu.Lock()
	defer push.mu.Unlock()
	assert.Equal(t, "Equipment expired", push.sent[1].Title)
	assert.Equal(t, "Helmet (Ana Novak) expired 1 day(s) ago.", push.sent[1].Body)
	assert.Equal(t, ThresholdDayOf, push.sent[1].Threshold)
}

func TestTracker_ExpiredWithoutRolloverStaysQuiet(t *testing.T) {
	alerts := &captureSink{}
	tr := newTestTracker(alerts, nil)
	tr.Load([]Item{{Name: "Helmet", Quantity: 1, ReceptionDate: "2024-01-01", ValidityDate: "2024-01-10"}})

	tr.Evaluate(context.Background(), day(t, "2024-01-10T08:00"))
	tr.Evaluate(context.Background(), day(t, "2024-01-11T08:00"))
	assert.Equal(t, 1, alerts.count())
}

func TestTracker_SoonIsSilent(t *testing.T) {
	alerts, push := &captureSink{}, &captureSink{}
	tr := newTestTracker(alerts, push)
	tr.Load([]Item{{Name: "Gloves", Quantity: 2, ReceptionDate: "2024-01-01", ValidityDate: "2024-01-15"}})

	changes := tr.Evaluate(context.Background(), day(t, "2024-01-09T09:00"))
	require.Len(t, changes, 1)
	assert.Equal(t, Status{Kind: KindSoon, DaysRemaining: 6}, changes[0].Current)
	assert.Equal(t, "Expires in 6 days", tr.Items()[0].Status.Label())
	assert.Zero(t, alerts.count())
	assert.Zero(t, push.count())
}

func TestTracker_UnsetValidityNeverNotifies(t *testing.T) {
	alerts := &captureSink{}
	tr := newTestTracker(alerts, alerts)
	tr.Load([]Item{{Name: "Vest", ReceptionDate: "2024-01-01"}})

	for _, ts := range []string{"2023-01-01T00:00", "2024-01-10T00:00", "2030-01-10T00:00"} {
		changes := tr.Evaluate(context.Background(), day(t, ts))
		assert.Empty(t, changes)
	}
	assert.Equal(t, KindUnset, tr.Items()[0].Status.Kind)
	assert.Zero(t, alerts.count())
}

func TestTracker_TomorrowThenToday(t *testing.T) {
	push := &captureSink{}
	tr := newTestTracker(nil, push)
	tr.Load([]Item{{Name: "Boots", Quantity: 1, ReceptionDate: "2024-01-01", ValidityDate: "2024-01-10"}})

	tr.Evaluate(context.Background(), day(t, "2024-01-09T10:00"))
	tr.Evaluate(context.Background(), day(t, "2024-01-09T20:00"))
	require.Equal(t, 1, push.count())

	tr.Rollover()
	tr.Evaluate(context.Background(), day(t, "2024-01-10T00:00"))
	require.Equal(t, 2, push.count())

	push.mu.Lock()
	defer push.mu.Unlock()
	assert.Equal(t, ThresholdDayBefore, push.sent[0].Threshold)
	assert.Equal(t, "Boots (Ana Novak) will expire tomorrow.", push.sent[0].Body)
	assert.Equal(t, ThresholdDayOf, push.sent[1].Threshold)
}

func TestTracker_FailingSinkIsNotRetried(t *testing.T) {
	alerts := &captureSink{err: errors.New("permission denied")}
	push := &captureSink{err: errors.New("broker down")}
	tr := newTestTracker(alerts, push)
	tr.Load([]Item{{Name: "Glasses", Quantity: 1, ReceptionDate: "2024-01-01", ValidityDate: "2024-01-05"}})

	for i := 0; i < 3; i++ {
		tr.Evaluate(context.Background(), day(t, "2024-01-10T08:00"))
	}
	assert.Equal(t, 1, alerts.count())
	assert.Equal(t, 1, push.count())
}

func TestTracker_LoadStartsNewEpoch(t *testing.T) {
	push := &captureSink{}
	tr := newTestTracker(nil, push)
	items := []Item{{Name: "Raincoat", Quantity: 1, ReceptionDate: "2024-01-01", ValidityDate: "2024-01-10"}}

	tr.Load(items)
	tr.Evaluate(context.Background(), day(t, "2024-01-10T08:00"))
	tr.Load(items)
	tr.Evaluate(context.Background(), day(t, "2024-01-10T09:00"))

	assert.Equal(t, 2, push.count())
}

func TestTracker_AlertAndPushShareID(t *testing.T) {
	alerts, push := &captureSink{}, &captureSink{}
	tr := newTestTracker(alerts, push)
	tr.Load([]Item{{Name: "Helmet", Quantity: 1, ReceptionDate: "2024-01-01", ValidityDate: "2024-01-03"}})
	tr.Evaluate(context.Background(), day(t, "2024-01-10T08:00"))

	require.Equal(t, 1, alerts.count())
	require.Equal(t, 1, push.count())
	assert.Equal(t, alerts.sent[0].ID, push.sent[0].ID)
	assert.NotEmpty(t, alerts.sent[0].ID)
	assert.Equal(t, "Helmet (Ana Novak) has expired.", alerts.sent[0].Body)
}

func TestTracker_ReloadKeepsStatus(t *testing.T) {
	tr := newTestTracker(nil, nil)
	items := []Item{{Name: "Helmet", Quantity: 1, ReceptionDate: "2024-01-01", ValidityDate: "2024-06-01"}}
	now := day(t, "2024-01-09T08:00")

	tr.Load(items)
	require.Len(t, tr.Evaluate(context.Background(), now), 1)

	tr.Load(items)
	assert.Empty(t, tr.Evaluate(context.Background(), now))
	assert.Equal(t, KindValid, tr.Items()[0].Status.Kind)

	// A new validity date is still reported.
	items[0].ValidityDate = "2024-01-10"
	tr.Load(items)
	changes := tr.Evaluate(context.Background(), now)
	require.Len(t, changes, 1)
	assert.Equal(t, KindValid, changes[0].Previous.Kind)
	assert.Equal(t, KindTomorrow, changes[0].Current.Kind)
}
