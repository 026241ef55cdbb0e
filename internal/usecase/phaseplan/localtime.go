package phaseplan

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseLocalTime normalizes an ISO-like local timestamp string into its
// explicit components and reconstructs a time.Time in the local zone.
// Accepted forms: "2006-01-02", "2006-01-02T15:04", "2006-01-02T15:04:05"
// (a space may stand in for the 'T'). Any timezone designator is
// rejected: phase dates are naive local timestamps and converting them
// through UTC would shift them across a day boundary.
func ParseLocalTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	if strings.HasSuffix(s, "Z") || strings.Contains(s, "+") {
		return time.Time{}, fmt.Errorf("timestamp %q must not carry a timezone", s)
	}

	datePart := s
	timePart := ""
	if sep := strings.IndexAny(s, "T "); sep >= 0 {
		datePart, timePart = s[:sep], s[sep+1:]
	}

	dateFields := strings.Split(datePart, "-")
	if len(dateFields) != 3 {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", datePart)
	}
	year, err := atoiField(dateFields[0], "year")
	if err != nil {
		return time.Time{}, err
	}
	month, err := atoiField(dateFields[1], "month")
	if err != nil {
		return time.Time{}, err
	}
	day, err := atoiField(dateFields[2], "day")
	if err != nil {
		return time.Time{}, err
	}

	hour, minute, sec := 0, 0, 0
	if timePart != "" {
		timeFields := strings.Split(timePart, ":")
		if len(timeFields) < 2 || len(timeFields) > 3 {
			return time.Time{}, fmt.Errorf("invalid time %q, want HH:MM or HH:MM:SS", timePart)
		}
		if hour, err = atoiField(timeFields[0], "hour"); err != nil {
			return time.Time{}, err
		}
		if minute, err = atoiField(timeFields[1], "minute"); err != nil {
			return time.Time{}, err
		}
		if len(timeFields) == 3 {
			if sec, err = atoiField(timeFields[2], "second"); err != nil {
				return time.Time{}, err
			}
		}
	}

	if month < 1 || month > 12 || day < 1 || day > 31 || hour > 23 || minute > 59 || sec > 59 {
		return time.Time{}, fmt.Errorf("timestamp %q has out-of-range components", s)
	}

	return time.Date(year, time.Month(month), day, hour, minute, sec, 0, time.Local), nil
}

func atoiField(field, name string) (int, error) {
	v, err := strconv.Atoi(field)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid %s %q", name, field)
	}
	return v, nil
}
