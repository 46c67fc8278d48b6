package vdgs

import (
	"strconv"
	"time"
)

// FormatTimeShort shortens a slot time to "HH:MMZ". Both ISO timestamps
// ("2025-06-01T10:05:00.000Z") and bare "HHMM" times are accepted.
func FormatTimeShort(s string) string {
	switch {
	case len(s) >= 16:
		return s[11:16] + "Z"
	case len(s) == 4:
		return s[0:2] + ":" + s[2:4] + "Z"
	default:
		return "--:--Z"
	}
}

// ParseTime parses a slot time to the minute in UTC. A bare "HHMM" time is taken on the
// UTC day of now. It returns false for anything else.
func ParseTime(s string, now time.Time) (time.Time, bool) {
	now = now.UTC()

	switch {
	case len(s) >= 16:
		year, ok1 := atoi(s[0:4])
		month, ok2 := atoi(s[5:7])
		day, ok3 := atoi(s[8:10])
		hour, ok4 := atoi(s[11:13])
		minute, ok5 := atoi(s[14:16])
		if !(ok1 && ok2 && ok3 && ok4 && ok5) {
			return time.Time{}, false
		}
		return time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.UTC), true

	case len(s) == 4:
		hour, ok1 := atoi(s[0:2])
		minute, ok2 := atoi(s[2:4])
		if !(ok1 && ok2) {
			return time.Time{}, false
		}
		return time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, time.UTC), true

	default:
		return time.Time{}, false
	}
}

func atoi(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	return n, err == nil && n >= 0
}
