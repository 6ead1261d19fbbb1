// Package format converts raw appointment and analytics values into display strings.
//
// Every function here is total: malformed input degrades to a best-effort string and a
// warning log entry, it never produces an error for the caller.
package format

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Sentinel strings rendered when a value is absent.
const (
	DateUnavailable = "Date not available"
	TimeUnavailable = "Time not available"
	NotSpecified    = "Not specified"
	Ellipsis        = "..."
)

// ErrMalformed is attached to warning logs when a value cannot be parsed.
var ErrMalformed = errors.New("format: malformed value")

var (
	printer     = message.NewPrinter(language.AmericanEnglish)
	titleCaser  = cases.Title(language.English)
	dateLayouts = []string{
		"2006-01-02",
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
	}
)

// DateTimeParts carries the three renderings of a scheduled date/time pair.
type DateTimeParts struct {
	FullDate  string
	Time      string
	ShortDate string
}

// DateTime renders a scheduled date and a 24h clock string.
func DateTime(date, clock string) DateTimeParts {
	parts := DateTimeParts{FullDate: DateUnavailable, Time: TimeUnavailable, ShortDate: DateUnavailable}
	if d := strings.TrimSpace(date); d != "" {
		t, err := parseDate(d)
		if err != nil {
			warn("date", d, err)
			parts.FullDate = d
			parts.ShortDate = d
		} else {
			parts.FullDate = t.Format("Monday, January 2, 2006")
			parts.ShortDate = t.Format("Jan 2, 2006")
		}
	}
	if c := strings.TrimSpace(clock); c != "" {
		parts.Time = Clock(c)
	}
	return parts
}

// Date renders a calendar date as "Jan 2, 2006".
func Date(date string) string {
	return DateTime(date, "").ShortDate
}

// Clock converts "HH:MM[:SS]" into 12-hour time. Unparseable input is returned as is.
func Clock(v string) string {
	fields := strings.Split(strings.TrimSpace(v), ":")
	if len(fields) < 2 {
		warn("time", v, ErrMalformed)
		return v
	}
	hour, errH := strconv.Atoi(fields[0])
	minute, errM := strconv.Atoi(fields[1])
	if errH != nil || errM != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		warn("time", v, ErrMalformed)
		return v
	}
	suffix := "AM"
	if hour >= 12 {
		suffix = "PM"
	}
	display := hour % 12
	if display == 0 {
		display = 12
	}
	return fmt.Sprintf("%d:%02d %s", display, minute, suffix)
}

// Timestamp renders a generation timestamp.
func Timestamp(t time.Time) string {
	if t.IsZero() {
		return DateUnavailable
	}
	return t.Format("January 2, 2006 at 3:04 PM")
}

// Currency renders an amount in US dollars with grouping and two decimals.
func Currency(amount decimal.Decimal) string {
	rounded := amount.Round(2)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Abs()
	}
	value, _ := rounded.Float64()
	return sign + "$" + printer.Sprint(number.Decimal(value, number.Scale(2)))
}

// CurrencyPtr renders an optional amount, treating nil as zero.
func CurrencyPtr(amount *decimal.Decimal) string {
	if amount == nil {
		return Currency(decimal.Zero)
	}
	return Currency(*amount)
}

// Duration renders a length in minutes, e.g. "1 hr 30 min".
func Duration(minutes int) string {
	if minutes <= 0 {
		return NotSpecified
	}
	hours, rest := minutes/60, minutes%60
	switch {
	case hours == 0:
		return fmt.Sprintf("%d min", rest)
	case rest == 0:
		return fmt.Sprintf("%d %s", hours, plural(hours, "hr", "hrs"))
	default:
		return fmt.Sprintf("%d %s %d min", hours, plural(hours, "hr", "hrs"), rest)
	}
}

// Percent renders a ratio already expressed in percent.
func Percent(v float64) string {
	return printer.Sprintf("%.1f%%", v)
}

// Count renders an integer with grouping.
func Count(v int) string {
	return printer.Sprint(number.Decimal(v))
}

// StatusLabel turns an enum value such as "in_progress" into "In Progress".
func StatusLabel(status string) string {
	s := strings.TrimSpace(status)
	if s == "" {
		return "Unknown"
	}
	return titleCaser.String(strings.ReplaceAll(strings.ReplaceAll(s, "_", " "), "-", " "))
}

// Truncate keeps the first limit characters and appends an ellipsis when text is longer.
func Truncate(text string, limit int) string {
	if limit <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + Ellipsis
}

// ValueOr returns fallback when v is blank.
func ValueOr(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

func parseDate(v string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrMalformed
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func warn(field, value string, err error) {
	slog.Default().Warn("format fallback", slog.String("field", field), slog.String("value", value), slog.Any("error", err))
}
