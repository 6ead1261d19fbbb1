package format

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestDateTime_MissingValuesReturnSentinels(t *testing.T) {
	assert.NotPanics(t, func() {
		parts := DateTime("", "")
		assert.Equal(t, DateUnavailable, parts.FullDate)
		assert.Equal(t, DateUnavailable, parts.ShortDate)
		assert.Equal(t, TimeUnavailable, parts.Time)
	})
}

func TestDateTime_FormatsDateAndClock(t *testing.T) {
	parts := DateTime("2025-03-14", "14:30")
	assert.Equal(t, "Friday, March 14, 2025", parts.FullDate)
	assert.Equal(t, "Mar 14, 2025", parts.ShortDate)
	assert.Equal(t, "2:30 PM", parts.Time)
}

func TestDateTime_AcceptsRFC3339(t *testing.T) {
	parts := DateTime("2025-03-14T09:00:00Z", "")
	assert.Equal(t, "Mar 14, 2025", parts.ShortDate)
	assert.Equal(t, TimeUnavailable, parts.Time)
}

func TestDateTime_MalformedDateFallsBackToRaw(t *testing.T) {
	parts := DateTime("14/03/2025", "09:15")
	assert.Equal(t, "14/03/2025", parts.FullDate)
	assert.Equal(t, "14/03/2025", parts.ShortDate)
	assert.Equal(t, "9:15 AM", parts.Time)
}

func TestClock(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"00:00", "12:00 AM"},
		{"09:05", "9:05 AM"},
		{"12:00", "12:00 PM"},
		{"23:59:59", "11:59 PM"},
		{"noon", "noon"},
		{"25:00", "25:00"},
		{"10:xx", "10:xx"},
	}
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, Clock(tc.input))
		})
	}
}

func TestCurrency(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"0", "$0.00"},
		{"12", "$12.00"},
		{"1234.5", "$1,234.50"},
		{"1000000.999", "$1,000,001.00"},
		{"-12.345", "-$12.35"},
	}
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, Currency(decimal.RequireFromString(tc.input)))
		})
	}
}

func TestCurrencyPtr_NilIsZero(t *testing.T) {
	assert.Equal(t, "$0.00", CurrencyPtr(nil))
	v := decimal.NewFromInt(5)
	assert.Equal(t, "$5.00", CurrencyPtr(&v))
}

func TestDuration(t *testing.T) {
	assert.Equal(t, NotSpecified, Duration(0))
	assert.Equal(t, "45 min", Duration(45))
	assert.Equal(t, "1 hr", Duration(60))
	assert.Equal(t, "1 hr 30 min", Duration(90))
	assert.Equal(t, "2 hrs 15 min", Duration(135))
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "In Progress", StatusLabel("in_progress"))
	assert.Equal(t, "Cancelled By Client", StatusLabel("cancelled_by_client"))
	assert.Equal(t, "Unknown", StatusLabel(" "))
}

func TestTruncate(t *testing.T) {
	text := strings.Repeat("a", 151)
	got := Truncate(text, 150)
	assert.Equal(t, strings.Repeat("a", 150)+Ellipsis, got)
	assert.Equal(t, "short", Truncate("short", 150))
	assert.Equal(t, "héllo...", Truncate("héllo wörld", 5))
}

func TestTimestamp(t *testing.T) {
	ts := time.Date(2025, 1, 15, 16, 4, 0, 0, time.UTC)
	assert.Equal(t, "January 15, 2025 at 4:04 PM", Timestamp(ts))
	assert.Equal(t, DateUnavailable, Timestamp(time.Time{}))
}

func TestCountAndPercent(t *testing.T) {
	assert.Equal(t, "12,500", Count(12500))
	assert.Equal(t, "87.5%", Percent(87.5))
}
