package expiry

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(t *testing.T, loc *time.Location, value string) time.Time {
	t.Helper()
	ts, err := time.ParseInLocation("2006-01-02T15:04", value, loc)
	require.NoError(t, err)
	return ts
}

func TestClassify_Thresholds(t *testing.T) {
	loc := time.UTC
	now := at(t, loc, "2024-01-10T08:00")

	tests := []struct {
		name     string
		validity string
		kind     Kind
		days     int
		label    string
	}{
		{"same day", "2024-01-10", KindToday, 0, "Expires today"},
		{"one day overdue", "2024-01-09", KindExpired, -1, "Expired"},
		{"long overdue", "2022-12-06", KindExpired, -400, "Expired"},
		{"tomorrow", "2024-01-11", KindTomorrow, 1, "Expires tomorrow"},
		{"two days", "2024-01-12", KindSoon, 2, "Expires in 2 days"},
		{"seven days", "2024-01-17", KindSoon, 7, "Expires in 7 days"},
		{"eight days", "2024-01-18", KindValid, 8, "Valid (8 days remaining)"},
		{"next year", "2025-01-10", KindValid, 366, "Valid (366 days remaining)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := Classify("2023-01-01", tt.validity, now, loc)
			assert.Equal(t, tt.kind, st.Kind)
			assert.Equal(t, tt.days, st.DaysRemaining)
			assert.Equal(t, tt.label, st.Label())
		})
	}
}

func TestClassify_SoonLabelsCarryCount(t *testing.T) {
	now := at(t, time.UTC, "2024-03-01T12:00")
	for days := 2; days <= SoonWindow; days++ {
		validity := now.AddDate(0, 0, days).Format(DateLayout)
		st := Classify("2024-01-01", validity, now, time.UTC)
		assert.Equal(t, fmt.Sprintf("Expires in %d days", days), st.Label())
	}
}

func TestClassify_UnsetDates(t *testing.T) {
	now := at(t, time.UTC, "2024-01-10T08:00")

	tests := []struct {
		reception string
		validity  string
	}{
		{"2024-01-01", ""},
		{"", "2024-01-20"},
		{"", ""},
		{"2024-01-01", "not-a-date"},
		{"01/01/2024", "2024-01-20"},
	}
	for _, tt := range tests {
		st := Classify(tt.reception, tt.validity, now, time.UTC)
		assert.Equal(t, KindUnset, st.Kind, "reception=%q validity=%q", tt.reception, tt.validity)
		assert.Empty(t, st.Label())
		assert.Equal(t, "none", st.Severity())
	}
}

func TestClassify_TimeOfDayIrrelevant(t *testing.T) {
	loc := time.UTC
	early := Classify("2024-01-01", "2024-01-10", at(t, loc, "2024-01-09T00:01"), loc)
	late := Classify("2024-01-01", "2024-01-10", at(t, loc, "2024-01-09T23:59"), loc)
	assert.Equal(t, early, late)
	assert.Equal(t, KindTomorrow, late.Kind)
}

func TestClassify_Idempotent(t *testing.T) {
	now := at(t, time.UTC, "2024-01-09T10:00")
	a := Classify("2024-01-01", "2024-01-15", now, time.UTC)
	b := Classify("2024-01-01", "2024-01-15", now, time.UTC)
	assert.Equal(t, a, b)
	assert.Equal(t, Status{Kind: KindSoon, DaysRemaining: 6}, a)
}

func TestClassify_UsesCalendarDatesAcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Ljubljana")
	if err != nil {
		t.Skipf("timezone data unavailable: %v", err)
	}
	// The night of 2024-03-31 is one hour short.
	now := at(t, loc, "2024-03-30T23:30")
	st := Classify("2024-01-01", "2024-04-01", now, loc)
	assert.Equal(t, 2, st.DaysRemaining)
}

func TestClassify_RFC3339Validity(t *testing.T) {
	now := at(t, time.UTC, "2024-01-10T08:00")
	st := Classify("2024-01-01T00:00:00Z", "2024-01-11T00:00:00Z", now, time.UTC)
	assert.Equal(t, KindTomorrow, st.Kind)
}

func TestStatus_Severity(t *testing.T) {
	assert.Equal(t, "critical", FromDays(-3).Severity())
	assert.Equal(t, "warning", FromDays(0).Severity())
	assert.Equal(t, "warning", FromDays(1).Severity())
	assert.Equal(t, "notice", FromDays(5).Severity())
	assert.Equal(t, "ok", FromDays(30).Severity())
}

func TestKind_TextRoundTrip(t *testing.T) {
	for _, k := range Kinds {
		b, err := k.MarshalText()
		require.NoError(t, err)

		var got Kind
		require.NoError(t, got.UnmarshalText(b))
		assert.Equal(t, k, got)
	}

	var k Kind
	assert.Error(t, k.UnmarshalText([]byte("bogus")))
}

func TestNextMidnight(t *testing.T) {
	loc := time.UTC
	got := NextMidnight(at(t, loc, "2024-02-28T13:45"), loc)
	assert.Equal(t, at(t, loc, "2024-02-29T00:00"), got)

	// Exactly at midnight the next one is a day later.
	got = NextMidnight(at(t, loc, "2024-02-29T00:00"), loc)
	assert.Equal(t, at(t, loc, "2024-03-01T00:00"), got)
}

func TestClassify_FarDates(t *testing.T) {
	now := at(t, time.UTC, "2024-01-09T08:00")

	future := Classify("2024-01-01", "2400-01-09", now, time.UTC)
	assert.Equal(t, KindValid, future.Kind)
	assert.Equal(t, 137331, future.DaysRemaining)
	assert.Equal(t, "Valid (137331 days remaining)", future.Label())

	past := Classify("1500-01-01", "1600-01-09", now, time.UTC)
	assert.Equal(t, KindExpired, past.Kind)
	assert.Equal(t, -154863, past.DaysRemaining)
}
