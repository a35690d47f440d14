package config

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	day  = 24 * time.Hour
	week = 7 * day
	year = time.Duration(365.25 * float64(day))
)

var expiresInPattern = regexp.MustCompile(
	`(?i)^(\d*\.?\d+)\s*(milliseconds?|msecs?|ms|seconds?|secs?|s|minutes?|mins?|m|hours?|hrs?|h|days?|d|weeks?|w|years?|yrs?|y)?$`)

// ParseExpiresIn parses a token lifetime such as "7d", "12h", "2 days" or
// "1h30m". A bare number is a count of milliseconds. The result must be
// positive.
func ParseExpiresIn(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}

	if d, err := time.ParseDuration(s); err == nil {
		if d <= 0 {
			return 0, fmt.Errorf("duration %q must be positive", s)
		}
		return d, nil
	}

	m := expiresInPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("unrecognized duration %q", s)
	}

	n, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("unrecognized duration %q: %w", s, err)
	}

	f := n * float64(unitOf(m[2]))
	if f >= math.MaxInt64 {
		return 0, fmt.Errorf("duration %q is out of range", s)
	}

	d := time.Duration(f)
	if d <= 0 {
		return 0, fmt.Errorf("duration %q must be positive", s)
	}
	return d, nil
}

func unitOf(suffix string) time.Duration {
	switch strings.ToLower(suffix) {
	case "", "ms", "msec", "msecs", "millisecond", "milliseconds":
		return time.Millisecond
	case "s", "sec", "secs", "second", "seconds":
		return time.Second
	case "m", "min", "mins", "minute", "minutes":
		return time.Minute
	case "h", "hr", "hrs", "hour", "hours":
		return time.Hour
	case "d", "day", "days":
		return day
	case "w", "week", "weeks":
		return week
	default: // y, yr, yrs, year, years
		return year
	}
}
