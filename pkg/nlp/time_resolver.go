package nlp

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// TimestampLayout is the canonical reminder/expense timestamp format.
const TimestampLayout = "2006-01-02 15:04:05"

const (
	defaultDayHour     = 9
	defaultTonightHour = 21
)

// absoluteLayouts are tried against the upper-cased input so "pm" matches PM.
var absoluteLayouts = []string{
	TimestampLayout,
	"2006-01-02 15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02 3:04 PM",
	"2006-01-02 3:04PM",
	"2006-01-02 3 PM",
	"2006-01-02 3PM",
	"02/01/2006 15:04",
	"02/01/2006 3:04 PM",
	"02/01/2006 3:04PM",
	"02-01-2006 15:04",
}

var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"02-01-2006",
}

var (
	relativeRe = regexp.MustCompile(`\b(?:in|after)\s+(\d+|an?|one|two|three|four|five|six|ten|fifteen|twenty|thirty|forty five)\s+(seconds?|secs?|minutes?|mins?|hours?|hrs?|days?|weeks?)\b`)
	halfHourRe = regexp.MustCompile(`\b(?:in|after)\s+(?:half\s+an?\s+hour|30\s+mins?)\b`)
	clock12Re  = regexp.MustCompile(`\b(\d{1,2})(?::([0-5]\d))?\s*(am|pm)\b`)
	clock24Re  = regexp.MustCompile(`\b([01]?\d|2[0-3]):([0-5]\d)\b`)
	bareHourRe = regexp.MustCompile(`\bat\s+(\d{1,2})\b`)
	weekdayRe  = regexp.MustCompile(`\b(next\s+|this\s+|every\s+)?(monday|mon|tuesday|tues|tue|wednesday|wed|thursday|thurs|thu|friday|fri|saturday|sat|sunday|sun)\b`)

	isoDateRe     = regexp.MustCompile(`\b(\d{4})-(\d{1,2})-(\d{1,2})\b`)
	numericDateRe = regexp.MustCompile(`\b(\d{1,2})[/-](\d{1,2})(?:[/-](\d{2}|\d{4}))?\b`)
	dayMonthRe    = regexp.MustCompile(`\b(\d{1,2})(?:st|nd|rd|th)?(?:\s+of)?\s+(` + monthPattern + `)\b(?:,?\s+(\d{4})\b)?`)
	monthDayRe    = regexp.MustCompile(`\b(` + monthPattern + `)\s+(\d{1,2})(?:st|nd|rd|th)?\b(?:,?\s+(\d{4})\b)?`)
)

const monthPattern = `january|jan|february|feb|march|mar|april|apr|may|june|jun|july|jul|august|aug|september|sept|sep|october|oct|november|nov|december|dec`

var months = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may": time.May, "june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sept": time.September, "sep": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

var relativeWords = map[string]int{
	"a": 1, "an": 1, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5, "six": 6,
	"ten": 10, "fifteen": 15, "twenty": 20, "thirty": 30, "forty five": 45,
}

var weekdays = map[string]time.Weekday{
	"sunday": time.Sunday, "sun": time.Sunday,
	"monday": time.Monday, "mon": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday, "tues": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday, "thurs": time.Thursday,
	"friday": time.Friday, "fri": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday,
}

// TimeResolver turns the natural-language time expressions users and the model
// produce into absolute timestamps in one location.
type TimeResolver struct {
	loc *time.Location
}

func NewTimeResolver(loc *time.Location) *TimeResolver {
	if loc == nil {
		loc = time.Local
	}
	return &TimeResolver{loc: loc}
}

func (r *TimeResolver) Location() *time.Location {
	return r.loc
}

// Resolve returns the absolute time expr refers to relative to now. The boolean
// is false when nothing in expr could be interpreted as a time.
func (r *TimeResolver) Resolve(expr string, now time.Time) (time.Time, bool) {
	now = now.In(r.loc)
	raw := strings.TrimSpace(expr)
	if raw == "" {
		return time.Time{}, false
	}

	if t, ok := r.parseAbsolute(raw); ok {
		return t, true
	}

	// Calendar dates are read before normalization strips their separators.
	date, rest, hasDate, valid := r.matchDate(strings.ToLower(raw), now)
	if hasDate && !valid {
		return time.Time{}, false
	}

	text := normalizeTimeText(rest)
	switch text {
	case "now", "right now", "immediately", "asap":
		return truncateMinute(now), true
	}

	if !hasDate {
		if halfHourRe.MatchString(text) {
			return truncateMinute(now.Add(30 * time.Minute)), true
		}
		if m := relativeRe.FindStringSubmatch(text); m != nil {
			if d, ok := relativeDuration(m[1], m[2]); ok {
				return truncateMinute(now.Add(d)), true
			}
		}
	}

	pod, hasPod := partOfDay(text)
	day, rollWeek, hasDay := date, false, hasDate
	if !hasDate {
		day, rollWeek, hasDay = r.matchDay(text, now)
	}
	hour, minute, hasClock := matchClock(text, pod, now, hasDay)

	switch {
	case hasDay && hasClock:
		t := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, r.loc)
		if rollWeek && !t.After(now) {
			t = t.AddDate(0, 0, 7)
		}
		return t, true
	case hasClock:
		t := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, r.loc)
		if !t.After(now) {
			t = t.AddDate(0, 0, 1)
		}
		return t, true
	case hasDay:
		h := defaultDayHour
		if hasPod {
			h = pod
		}
		t := time.Date(day.Year(), day.Month(), day.Day(), h, 0, 0, 0, r.loc)
		if rollWeek && !t.After(now) {
			t = t.AddDate(0, 0, 7)
		}
		return t, true
	case hasPod:
		t := time.Date(now.Year(), now.Month(), now.Day(), pod, 0, 0, 0, r.loc)
		if !t.After(now) {
			t = t.AddDate(0, 0, 1)
		}
		return t, true
	}

	return time.Time{}, false
}

func (r *TimeResolver) parseAbsolute(raw string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.In(r.loc).Truncate(time.Second), true
	}
	upper := strings.ToUpper(raw)
	for _, layout := range absoluteLayouts {
		if t, err := time.ParseInLocation(layout, upper, r.loc); err == nil {
			return t.Truncate(time.Second), true
		}
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, raw, r.loc); err == nil {
			return t.Add(defaultDayHour * time.Hour), true
		}
	}
	return time.Time{}, false
}

// matchDay returns midnight of the referenced day. rollWeek is set for weekday
// references that land on today, so a time already passed moves a week ahead.
func (r *TimeResolver) matchDay(text string, now time.Time) (time.Time, bool, bool) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, r.loc)

	switch {
	case strings.Contains(text, "day after tomorrow"):
		return today.AddDate(0, 0, 2), false, true
	case containsWord(text, "tomorrow", "tmrw", "tomorow", "tmr"):
		return today.AddDate(0, 0, 1), false, true
	case containsWord(text, "today", "tonight"):
		return today, false, true
	case strings.Contains(text, "next week"):
		return today.AddDate(0, 0, 7), false, true
	}

	m := weekdayRe.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, false, false
	}
	target := weekdays[m[2]]
	ahead := (int(target) - int(now.Weekday()) + 7) % 7
	if strings.TrimSpace(m[1]) == "next" && ahead == 0 {
		ahead = 7
	}
	return today.AddDate(0, 0, ahead), ahead == 0, true
}

// matchDate finds an explicit calendar date ("2024-01-25", "25/01/2024",
// "25 January", "jan 25th") and returns its midnight along with text minus the
// date. hasDate reports a date-like token; valid is false when that token is
// not a real calendar day. A date without a year that already passed this year
// means next year.
func (r *TimeResolver) matchDate(text string, now time.Time) (day time.Time, rest string, hasDate, valid bool) {
	var (
		idx                 []int
		year, month, dayNum int
		yearGiven           bool
	)

	switch {
	case isoDateRe.MatchString(text):
		idx = isoDateRe.FindStringSubmatchIndex(text)
		year, _ = strconv.Atoi(text[idx[2]:idx[3]])
		month, _ = strconv.Atoi(text[idx[4]:idx[5]])
		dayNum, _ = strconv.Atoi(text[idx[6]:idx[7]])
		yearGiven = true
	case numericDateRe.MatchString(text):
		idx = numericDateRe.FindStringSubmatchIndex(text)
		dayNum, _ = strconv.Atoi(text[idx[2]:idx[3]])
		month, _ = strconv.Atoi(text[idx[4]:idx[5]])
		if idx[6] >= 0 {
			year, _ = strconv.Atoi(text[idx[6]:idx[7]])
			yearGiven = true
		}
	case dayMonthRe.MatchString(text):
		idx = dayMonthRe.FindStringSubmatchIndex(text)
		dayNum, _ = strconv.Atoi(text[idx[2]:idx[3]])
		month = int(months[text[idx[4]:idx[5]]])
		if idx[6] >= 0 {
			year, _ = strconv.Atoi(text[idx[6]:idx[7]])
			yearGiven = true
		}
	case monthDayRe.MatchString(text):
		idx = monthDayRe.FindStringSubmatchIndex(text)
		month = int(months[text[idx[2]:idx[3]]])
		dayNum, _ = strconv.Atoi(text[idx[4]:idx[5]])
		if idx[6] >= 0 {
			year, _ = strconv.Atoi(text[idx[6]:idx[7]])
			yearGiven = true
		}
	default:
		return time.Time{}, text, false, false
	}

	rest = text[:idx[0]] + " " + text[idx[1]:]

	if !yearGiven {
		year = now.Year()
	} else if year < 100 {
		year += 2000
	}
	if month < 1 || month > 12 || dayNum < 1 {
		return time.Time{}, rest, true, false
	}

	day = time.Date(year, time.Month(month), dayNum, 0, 0, 0, 0, r.loc)
	if day.Month() != time.Month(month) || day.Day() != dayNum {
		return time.Time{}, rest, true, false
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, r.loc)
	if !yearGiven && day.Before(today) {
		day = day.AddDate(1, 0, 0)
	}
	return day, rest, true, true
}

// partOfDay maps words like "evening" onto a default hour.
func partOfDay(text string) (int, bool) {
	switch {
	case containsWord(text, "tonight", "night"):
		return defaultTonightHour, true
	case containsWord(text, "evening"):
		return 18, true
	case containsWord(text, "afternoon"):
		return 15, true
	case containsWord(text, "morning"):
		return defaultDayHour, true
	}
	return 0, false
}

func matchClock(text string, pod int, now time.Time, hasDay bool) (int, int, bool) {
	switch {
	case containsWord(text, "noon", "midday"):
		return 12, 0, true
	case containsWord(text, "midnight"):
		return 0, 0, true
	}

	if m := clock12Re.FindStringSubmatch(text); m != nil {
		h, _ := strconv.Atoi(m[1])
		if h < 1 || h > 12 {
			return 0, 0, false
		}
		minute := 0
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		}
		h %= 12
		if m[3] == "pm" {
			h += 12
		}
		return h, minute, true
	}

	if m := clock24Re.FindStringSubmatch(text); m != nil {
		h, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		if h <= 12 && pod >= 12 && h != 12 {
			h += 12
		}
		return h, minute, true
	}

	if m := bareHourRe.FindStringSubmatch(text); m != nil {
		h, _ := strconv.Atoi(m[1])
		if h > 23 {
			return 0, 0, false
		}
		if h <= 12 && pod >= 12 && h != 12 {
			return h + 12, 0, true
		}
		if h < 12 && pod == 0 && !hasDay {
			// "at 7" with no other hint means the next 7 o'clock. Once both
			// have passed the caller rolls the morning one to tomorrow.
			morning := time.Date(now.Year(), now.Month(), now.Day(), h, 0, 0, 0, now.Location())
			evening := morning.Add(12 * time.Hour)
			if !morning.After(now) && evening.After(now) && h != 0 {
				return h + 12, 0, true
			}
		}
		return h, 0, true
	}

	return 0, 0, false
}

func relativeDuration(amount, unit string) (time.Duration, bool) {
	n, err := strconv.Atoi(amount)
	if err != nil {
		w, ok := relativeWords[amount]
		if !ok {
			return 0, false
		}
		n = w
	}

	var base time.Duration
	switch {
	case strings.HasPrefix(unit, "sec"):
		base = time.Second
	case strings.HasPrefix(unit, "min"):
		base = time.Minute
	case strings.HasPrefix(unit, "h"):
		base = time.Hour
	case strings.HasPrefix(unit, "day"):
		base = 24 * time.Hour
	case strings.HasPrefix(unit, "week"):
		base = 7 * 24 * time.Hour
	default:
		return 0, false
	}
	return time.Duration(n) * base, true
}

func containsWord(text string, words ...string) bool {
	padded := " " + text + " "
	for _, w := range words {
		if strings.Contains(padded, " "+w+" ") {
			return true
		}
	}
	return false
}

func truncateMinute(t time.Time) time.Time {
	return t.Truncate(time.Minute)
}
