package gateway

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var nativeSpec = regexp.MustCompile(`^(\d+)(min|h|d|w|m|y)$`)

var nativeUnits = map[string]time.Duration{
	"min": time.Minute,
	"h":   time.Hour,
	"d":   24 * time.Hour,
	"w":   7 * 24 * time.Hour,
	"m":   30 * 24 * time.Hour,
	"y":   365 * 24 * time.Hour,
}

// Period translates a TWS duration string ("1 D", "2 W", "3600 S") into the
// Client Portal period parameter ("1d", "2w", "60min"). Native values pass through.
func Period(duration string) (string, error) {
	duration = strings.TrimSpace(duration)
	if nativeSpec.MatchString(duration) {
		return duration, nil
	}

	n, unit, err := splitSpec(duration)
	if err != nil {
		return "", fmt.Errorf("duration %q: %w", duration, err)
	}

	switch strings.ToUpper(unit) {
	case "S":
		if n%3600 == 0 {
			return fmt.Sprintf("%dh", n/3600), nil
		}
		return fmt.Sprintf("%dmin", (n+59)/60), nil
	case "D":
		return fmt.Sprintf("%dd", n), nil
	case "W":
		return fmt.Sprintf("%dw", n), nil
	case "M":
		return fmt.Sprintf("%dm", n), nil
	case "Y":
		return fmt.Sprintf("%dy", n), nil
	default:
		return "", fmt.Errorf("duration %q: unknown unit %q", duration, unit)
	}
}

// BarSize translates a TWS bar size ("1 min", "5 mins", "1 hour", "1 day") into
// the Client Portal bar parameter ("1min", "5min", "1h", "1d").
func BarSize(barSize string) (string, error) {
	barSize = strings.TrimSpace(barSize)
	if nativeSpec.MatchString(barSize) {
		return barSize, nil
	}

	n, unit, err := splitSpec(barSize)
	if err != nil {
		return "", fmt.Errorf("bar size %q: %w", barSize, err)
	}

	switch strings.ToLower(unit) {
	case "min", "mins":
		return fmt.Sprintf("%dmin", n), nil
	case "hour", "hours":
		return fmt.Sprintf("%dh", n), nil
	case "day", "days":
		return fmt.Sprintf("%dd", n), nil
	case "week", "weeks":
		return fmt.Sprintf("%dw", n), nil
	case "month", "months":
		return fmt.Sprintf("%dm", n), nil
	default:
		return "", fmt.Errorf("bar size %q: unsupported unit %q", barSize, unit)
	}
}

func splitSpec(s string) (int, string, error) {
	parts := strings.Fields(s)
	if len(parts) != 2 {
		return 0, "", fmt.Errorf("expected \"<count> <unit>\"")
	}
	n, err := strconv.Atoi(parts[0])
	if err != nil || n <= 0 {
		return 0, "", fmt.Errorf("invalid count %q", parts[0])
	}
	return n, parts[1], nil
}

// Span is the approximate wall-clock length of a duration string. Months count
// as 30 days and years as 365.
func Span(duration string) (time.Duration, error) {
	p, err := Period(duration)
	if err != nil {
		return 0, err
	}
	return nativeDuration(p)
}

// Interval is the wall-clock length of one bar of the given size.
func Interval(barSize string) (time.Duration, error) {
	b, err := BarSize(barSize)
	if err != nil {
		return 0, err
	}
	return nativeDuration(b)
}

func nativeDuration(s string) (time.Duration, error) {
	m := nativeSpec.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("unrecognised spec %q", s)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid count in %q", s)
	}
	return time.Duration(n) * nativeUnits[m[2]], nil
}
