// Package dates validates and formats calendar-date strings.
package dates

import "time"

// Layout is the wire format for exercise dates.
const Layout = "2006-01-02"

// IsValid reports whether s is a real calendar date in strict
// YYYY-MM-DD form. The parsed date is rendered back to the layout and
// compared byte-for-byte, so values that a lenient parser would
// normalise (day 31 in a 30-day month, month 13) are rejected.
func IsValid(s string) bool {
	if len(s) != len(Layout) {
		return false
	}
	for i, c := range s {
		if i == 4 || i == 7 {
			if c != '-' {
				return false
			}
			continue
		}
		if c < '0' || c > '9' {
			return false
		}
	}
	parsed, err := time.ParseInLocation(Layout, s, time.UTC)
	if err != nil {
		return false
	}
	return parsed.Format(Layout) == s
}

// Today returns the current UTC date in YYYY-MM-DD form.
func Today() string {
	return time.Now().UTC().Format(Layout)
}
