package nlp

import (
	"strings"
	"time"
)

const (
	RecurrenceHourly   = "hourly"
	RecurrenceDaily    = "daily"
	RecurrenceWeekdays = "weekdays"
	RecurrenceWeekly   = "weekly"
	RecurrenceMonthly  = "monthly"
	RecurrenceYearly   = "yearly"
)

// NormalizeRecurrence maps phrases like "every day" or "each monday" onto one
// of the Recurrence constants. Unknown phrases return "".
func NormalizeRecurrence(text string) string {
	t := CleanText(text)
	if t == "" || t == "none" || t == "null" || t == "once" {
		return ""
	}

	switch {
	case containsWord(t, "hourly") || strings.Contains(t, "every hour") || strings.Contains(t, "each hour"):
		return RecurrenceHourly
	case containsWord(t, "weekdays", "weekday") || strings.Contains(t, "monday to friday"):
		return RecurrenceWeekdays
	case containsWord(t, "daily", "everyday") ||
		strings.Contains(t, "every day") || strings.Contains(t, "each day") ||
		strings.Contains(t, "every morning") || strings.Contains(t, "every evening") ||
		strings.Contains(t, "every night"):
		return RecurrenceDaily
	case containsWord(t, "weekly") || strings.Contains(t, "every week") || strings.Contains(t, "each week"):
		return RecurrenceWeekly
	case containsWord(t, "monthly") || strings.Contains(t, "every month") || strings.Contains(t, "each month"):
		return RecurrenceMonthly
	case containsWord(t, "yearly", "annually") || strings.Contains(t, "every year"):
		return RecurrenceYearly
	}

	if m := weekdayRe.FindStringSubmatch(t); m != nil && strings.TrimSpace(m[1]) == "every" {
		return RecurrenceWeekly
	}

	return ""
}

// NextOccurrence returns the first fire time after t for a recurring reminder.
func NextOccurrence(t time.Time, recurrence string) (time.Time, bool) {
	switch recurrence {
	case RecurrenceHourly:
		return t.Add(time.Hour), true
	case RecurrenceDaily:
		return t.AddDate(0, 0, 1), true
	case RecurrenceWeekdays:
		next := t.AddDate(0, 0, 1)
		for next.Weekday() == time.Saturday || next.Weekday() == time.Sunday {
			next = next.AddDate(0, 0, 1)
		}
		return next, true
	case RecurrenceWeekly:
		return t.AddDate(0, 0, 7), true
	case RecurrenceMonthly:
		return t.AddDate(0, 1, 0), true
	case RecurrenceYearly:
		return t.AddDate(1, 0, 0), true
	}
	return time.Time{}, false
}
