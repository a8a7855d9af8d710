package utils

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the YYYY-MM-DD layout used for dates on the wire
const DateLayout = "2006-01-02"

// FormatDate formats a time.Time as YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDateIn parses a YYYY-MM-DD date as midnight in the given location.
// RFC3339 input is accepted too; only its calendar date (in loc) is kept.
func ParseDateIn(dateStr string, loc *time.Location) (time.Time, error) {
	if t, err := time.ParseInLocation(DateLayout, dateStr, loc); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD or RFC3339)", dateStr)
	}
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc), nil
}

// ParseClock parses an HH:MM wall-clock string into hour and minute
func ParseClock(clock string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time %q (expected HH:MM)", clock)
	}
	return t.Hour(), t.Minute(), nil
}

// StartOfDay returns midnight of t's calendar day in t's location
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar date in loc
func SameDay(a, b time.Time, loc *time.Location) bool {
	a, b = a.In(loc), b.In(loc)
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

// CalculateWeekRange calculates the Monday (start) and Sunday (end) of the week containing the given date
// If the given date is already a Monday, it returns that Monday and the following Sunday
// A Sunday belongs to the week that started six days earlier
func CalculateWeekRange(date time.Time) (monday time.Time, sunday time.Time) {
	monday = StartOfDay(date).AddDate(0, 0, -MondayIndex(date.Weekday()))

	sunday = monday.AddDate(0, 0, 6)
	sunday = time.Date(sunday.Year(), sunday.Month(), sunday.Day(), 23, 59, 59, 999999999, sunday.Location())

	return monday, sunday
}

// MondayIndex converts a weekday to a Monday-first index (Monday = 0, ..., Sunday = 6)
func MondayIndex(day time.Weekday) int {
	return (int(day) + 6) % 7
}

// FormatDuration formats a duration as "Xhr Ymin" when it exceeds an hour, otherwise "Ymin"
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hours := int(d / time.Hour)
	minutes := int((d % time.Hour) / time.Minute)
	if d > time.Hour {
		return fmt.Sprintf("%dhr %dmin", hours, minutes)
	}
	return fmt.Sprintf("%dmin", int(d/time.Minute))
}

// Percent returns part/whole as a rounded percentage, 0 when whole is 0
func Percent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(whole) * 100))
}

// ParseInstant normalizes the timestamp shapes found in stored task documents into a time.Time.
// Accepted: time.Time, RFC3339 strings, naive "YYYY-MM-DDTHH:MM:SS" and "YYYY-MM-DD" strings
// (interpreted in loc), epoch milliseconds, and {seconds, nanoseconds} objects.
func ParseInstant(value interface{}, loc *time.Location) (time.Time, bool) {
	switch v := value.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return v, !v.IsZero()
	case *time.Time:
		if v == nil {
			return time.Time{}, false
		}
		return *v, !v.IsZero()
	case string:
		return parseInstantString(strings.TrimSpace(v), loc)
	case float64:
		return epochMillis(v)
	case int64:
		return epochMillis(float64(v))
	case int:
		return epochMillis(float64(v))
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return time.Time{}, false
		}
		return epochMillis(f)
	case map[string]interface{}:
		return parseSecondsObject(v)
	}
	return time.Time{}, false
}

func parseInstantString(s string, loc *time.Location) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	for _, layout := range []string{"2006-01-02T15:04:05.000", "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	if ms, err := strconv.ParseFloat(s, 64); err == nil {
		return epochMillis(ms)
	}
	return time.Time{}, false
}

// maxEpochMillis is 9999-12-31T23:59:59.999Z
const maxEpochMillis = 253402300799999

func epochMillis(ms float64) (time.Time, bool) {
	if math.IsNaN(ms) || ms <= 0 || ms > maxEpochMillis {
		return time.Time{}, false
	}
	return time.UnixMilli(int64(ms)), true
}

func parseSecondsObject(obj map[string]interface{}) (time.Time, bool) {
	seconds, ok := numberField(obj, "seconds", "_seconds")
	if !ok {
		return time.Time{}, false
	}
	if math.IsNaN(seconds) || seconds <= 0 || seconds > maxEpochMillis/1000 {
		return time.Time{}, false
	}
	nanos, _ := numberField(obj, "nanoseconds", "_nanoseconds")
	if math.IsNaN(nanos) || nanos < 0 || nanos >= 1e9 {
		nanos = 0
	}
	return time.Unix(int64(seconds), int64(nanos)), true
}

func numberField(obj map[string]interface{}, keys ...string) (float64, bool) {
	for _, key := range keys {
		switch n := obj[key].(type) {
		case float64:
			return n, true
		case json.Number:
			if f, err := n.Float64(); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}
