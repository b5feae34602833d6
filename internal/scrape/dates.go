package scrape

import (
	"strconv"
	"strings"
	"time"
	"unicode"
)

var turkishMonths = map[string]time.Month{
	"ocak":    time.January,
	"şubat":   time.February,
	"mart":    time.March,
	"nisan":   time.April,
	"mayıs":   time.May,
	"haziran": time.June,
	"temmuz":  time.July,
	"ağustos": time.August,
	"eylül":   time.September,
	"ekim":    time.October,
	"kasım":   time.November,
	"aralık":  time.December,
}

// ParseDate best-effort parses a published date out of scraped text.
// Handles the Turkish long form ("10 Haziran 2023, 14:30") and the
// numeric form ("10.06.2023 14:30"). Unparseable text yields now: a
// headline without a confidently-parsed date is still worth keeping.
func ParseDate(text string, now time.Time) time.Time {
	text = strings.TrimSpace(text)
	if text == "" {
		return now
	}

	if t, ok := parseTurkishLong(text, now.Location()); ok {
		return t
	}
	for _, layout := range []string{"02.01.2006 15:04", "02.01.2006"} {
		if t, err := time.ParseInLocation(layout, text, now.Location()); err == nil {
			return t
		}
	}
	return now
}

// parseTurkishLong parses "<day> <monthname> <year>[, <hh:mm>]".
func parseTurkishLong(text string, loc *time.Location) (time.Time, bool) {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
	if len(parts) < 3 {
		return time.Time{}, false
	}

	day, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, false
	}
	month, ok := turkishMonths[strings.ToLower(parts[1])]
	if !ok {
		return time.Time{}, false
	}
	year, err := strconv.Atoi(parts[2])
	if err != nil {
		return time.Time{}, false
	}

	hour, minute := 0, 0
	if len(parts) >= 4 && strings.Contains(parts[3], ":") {
		hm := strings.SplitN(parts[3], ":", 2)
		if h, err := strconv.Atoi(hm[0]); err == nil {
			hour = h
		}
		if m, err := strconv.Atoi(hm[1]); err == nil {
			minute = m
		}
	}

	return time.Date(year, month, day, hour, minute, 0, 0, loc), true
}
