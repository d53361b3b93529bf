// Package timeindex provides the minute-granularity time primitives the
// uptime engine is built on: minute flooring/ceiling, DST-safe wall-clock
// localization, and half-open integer interval overlap.
package timeindex

import "time"

// Interval is a half-open integer interval [Lo, Hi)
type Interval struct {
	Lo int
	Hi int
}

// Len returns the number of integers covered by the interval
func (iv Interval) Len() int {
	if iv.Hi <= iv.Lo {
		return 0
	}
	return iv.Hi - iv.Lo
}

// Empty reports whether the interval covers no integers
func (iv Interval) Empty() bool { return iv.Hi <= iv.Lo }

// The three nested bands, as half-open minute-index intervals anchored at NOW
var (
	// H is "last hour": indices 1..60
	H = Interval{Lo: 1, Hi: 61}
	// D is "last day": indices 1..1440
	D = Interval{Lo: 1, Hi: 1441}
	// W is "last week": indices 1..10080
	W = Interval{Lo: 1, Hi: 10081}
)

// FloorMinute zeroes seconds and sub-second precision
func FloorMinute(t time.Time) time.Time {
	return t.Truncate(time.Minute)
}

// CeilMinute rounds up to the next minute boundary unless t is already aligned
func CeilMinute(t time.Time) time.Time {
	f := FloorMinute(t)
	if f.Equal(t) {
		return f
	}
	return f.Add(time.Minute)
}

// MinuteIndex returns k = max(1, floor(Δminutes) + 1) where Δ = nowLocal - tLocal.
// Both arguments must carry the same IANA zone; callers localize before calling this.
func MinuteIndex(tLocal, nowLocal time.Time) int {
	delta := nowLocal.Sub(tLocal)
	k := int(delta/time.Minute) + 1
	if k < 1 {
		return 1
	}
	return k
}

// Overlap returns the length of the intersection of two half-open integer intervals
func Overlap(a, b Interval) int {
	lo := a.Lo
	if b.Lo > lo {
		lo = b.Lo
	}
	hi := a.Hi
	if b.Hi < hi {
		hi = b.Hi
	}
	if hi <= lo {
		return 0
	}
	return hi - lo
}

// Intersect returns the intersection of two half-open integer intervals,
// and whether it is nonempty
func Intersect(a, b Interval) (Interval, bool) {
	lo := a.Lo
	if b.Lo > lo {
		lo = b.Lo
	}
	hi := a.Hi
	if b.Hi < hi {
		hi = b.Hi
	}
	if hi <= lo {
		return Interval{}, false
	}
	return Interval{Lo: lo, Hi: hi}, true
}

// Localize converts a naive wall-clock instant (year/month/day/hour/min/sec,
// no location attached) into an instant in loc, deterministically resolving
// DST edge cases:
//   - non-existent wall-times (spring-forward gap) are shifted forward by
//     one hour before localizing;
//   - ambiguous wall-times (fall-back overlap) resolve to the later of the
//     two instants that share the wall-clock reading.
//
// This policy must stay stable across runs: callers rely on byte-identical
// reports for byte-identical inputs.
func Localize(loc *time.Location, y int, mo time.Month, d, h, mi, s int) time.Time {
	t := time.Date(y, mo, d, h, mi, s, 0, loc)
	if wallMismatch(t, y, mo, d, h, mi, s) {
		// spring-forward gap: the requested wall-clock never happened in loc.
		// Shift forward by an hour and localize the shifted time instead.
		return time.Date(y, mo, d, h+1, mi, s, 0, loc)
	}

	// Ambiguous (fall-back) wall-times: two distinct instants render to the
	// same wall-clock. Probe an instant a couple of hours earlier; if its
	// UTC offset differs from t's, we're near a transition and there may be
	// an earlier instant with the same wall-clock. Prefer the later one.
	_, offNow := t.Zone()
	probe := t.Add(-3 * time.Hour)
	_, offProbe := probe.Zone()
	if offProbe != offNow {
		earlier := t.Add(time.Duration(offProbe-offNow) * time.Second)
		if wallEqual(earlier, y, mo, d, h, mi, s) && earlier.Before(t) {
			// t already denotes the later instant (larger absolute offset
			// means the earlier-offset candidate sits before it); keep t.
			return t
		}
		if wallEqual(earlier, y, mo, d, h, mi, s) && earlier.After(t) {
			return earlier
		}
	}
	// time.Date resolves an ambiguous wall-clock to the earlier instant; probe
	// a few hours later and, if a later instant shares the reading, use it.
	_, offAfter := t.Add(3 * time.Hour).Zone()
	if offAfter != offNow {
		later := t.Add(time.Duration(offNow-offAfter) * time.Second)
		if wallEqual(later, y, mo, d, h, mi, s) && later.After(t) {
			return later
		}
	}
	return t
}

func wallMismatch(t time.Time, y int, mo time.Month, d, h, mi, s int) bool {
	return !wallEqual(t, y, mo, d, h, mi, s)
}

func wallEqual(t time.Time, y int, mo time.Month, d, h, mi, s int) bool {
	ry, rmo, rd := t.Date()
	rh, rmi, rs := t.Clock()
	return ry == y && rmo == mo && rd == d && rh == h && rmi == mi && rs == s
}

// ResolveTZ loads an IANA zone by name, falling back to UTC when the name is
// empty or unknown. ok reports whether the requested zone was used as-is;
// callers should log a warning (not fail) when ok is false.
func ResolveTZ(name string) (loc *time.Location, ok bool) {
	if name == "" {
		return time.UTC, false
	}
	l, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC, false
	}
	return l, true
}
