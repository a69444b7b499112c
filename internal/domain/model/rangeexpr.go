package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DefaultRange is the read window used when the caller gives none, the last 7 days.
const DefaultRange = "-7d"

// maxRangeMonths bounds calendar units so a range stays within time.Time's
// usable years.
const maxRangeMonths = 12 * 1000

// RangeStart is the lower bound of a range query, either relative to now
// (Flux duration literal such as -7d or -1h30m) or an absolute instant.
type RangeStart struct {
	expr     string
	months   int
	nanos    time.Duration
	absolute time.Time
}

var durationUnits = []struct {
	suffix string
	nanos  time.Duration
	months int
}{
	// longest suffixes first so "mo" wins over "m" and "ms" over "m"
	{"mo", 0, 1},
	{"ms", time.Millisecond, 0},
	{"us", time.Microsecond, 0},
	{"µs", time.Microsecond, 0},
	{"ns", time.Nanosecond, 0},
	{"y", 0, 12},
	{"w", 7 * 24 * time.Hour, 0},
	{"d", 24 * time.Hour, 0},
	{"h", time.Hour, 0},
	{"m", time.Minute, 0},
	{"s", time.Second, 0},
}

// ParseRange parses a range expression. An empty expression yields DefaultRange.
func ParseRange(expr string) (RangeStart, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		expr = DefaultRange
	}

	if t, err := time.Parse(time.RFC3339Nano, expr); err == nil {
		return RangeStart{expr: expr, absolute: t.UTC()}, nil
	}

	if !strings.HasPrefix(expr, "-") {
		return RangeStart{}, fmt.Errorf("range %q: must be a negative duration or an RFC3339 time", expr)
	}

	rs := RangeStart{expr: expr}
	rest := expr[1:]
	if rest == "" {
		return RangeStart{}, fmt.Errorf("range %q: empty duration", expr)
	}

	for rest != "" {
		i := 0
		for i < len(rest) && rest[i] >= '0' && rest[i] <= '9' {
			i++
		}
		if i == 0 {
			return RangeStart{}, fmt.Errorf("range %q: expected digits at %q", expr, rest)
		}
		n, err := strconv.Atoi(rest[:i])
		if err != nil {
			return RangeStart{}, fmt.Errorf("range %q: %w", expr, err)
		}
		rest = rest[i:]

		matched := false
		for _, u := range durationUnits {
			if strings.HasPrefix(rest, u.suffix) {
				if u.months > 0 && n > (maxRangeMonths-rs.months)/u.months {
					return RangeStart{}, fmt.Errorf("range %q: too far back", expr)
				}
				if u.nanos > 0 && int64(n) > (math.MaxInt64-int64(rs.nanos))/int64(u.nanos) {
					return RangeStart{}, fmt.Errorf("range %q: too far back", expr)
				}
				rs.months += n * u.months
				rs.nanos += time.Duration(n) * u.nanos
				rest = rest[len(u.suffix):]
				matched = true
				break
			}
		}
		if !matched {
			return RangeStart{}, fmt.Errorf("range %q: unknown unit at %q", expr, rest)
		}
	}

	if rs.months == 0 && rs.nanos == 0 {
		return RangeStart{}, fmt.Errorf("range %q: zero duration", expr)
	}
	return rs, nil
}

// MustParseRange is ParseRange for constant expressions.
func MustParseRange(expr string) RangeStart {
	rs, err := ParseRange(expr)
	if err != nil {
		panic(err)
	}
	return rs
}

// String returns the expression the range was parsed from.
func (r RangeStart) String() string { return r.expr }

// IsRelative reports whether the range is relative to the query time.
func (r RangeStart) IsRelative() bool { return r.absolute.IsZero() }

// Since resolves the range into an absolute lower bound as seen from now.
func (r RangeStart) Since(now time.Time) time.Time {
	if !r.IsRelative() {
		return r.absolute
	}
	return now.AddDate(0, -r.months, 0).Add(-r.nanos).UTC()
}

// Flux renders the range start as a Flux literal: the duration as written, or
// the absolute instant in UTC.
func (r RangeStart) Flux() string {
	if r.IsRelative() {
		return r.expr
	}
	return r.absolute.Format(time.RFC3339Nano)
}
