// Package businesshours materializes a weekly business-hours schedule, in a
// store's local timezone, into a merged set of half-open minute-index
// intervals covering the week band. It is DST- and overnight-wrap-aware.
package businesshours

import (
	"sort"
	"time"

	"storewatch/internal/core/timeindex"
)

// TimeOfDay is a wall-clock time of day, with second precision
type TimeOfDay struct {
	Hour, Min, Sec int
}

// HoursRow is one declared open period for a single weekday.
// DayOfWeek is 0=Monday .. 6=Sunday, matching the storage convention.
type HoursRow struct {
	DayOfWeek int
	Start     TimeOfDay
	End       TimeOfDay
}

// BuildBH materializes schedule into merged, sorted, pairwise-disjoint
// half-open minute-index intervals intersected with the week band [1,10081).
// An empty schedule means the store is open 24x7.
func BuildBH(schedule []HoursRow, tz *time.Location, nowLocal time.Time) []timeindex.Interval {
	if len(schedule) == 0 {
		return []timeindex.Interval{timeindex.W}
	}

	var raw []timeindex.Interval

	// Walk local midnights from 8 days before nowLocal to 1 day after, so
	// every minute whose index could fall in the week window is covered
	// even across a DST transition near either edge.
	y, mo, d := nowLocal.Date()
	base := time.Date(y, mo, d, 0, 0, 0, 0, time.UTC) // calendar walk only; zone reattached per-day below

	for offset := -8; offset <= 1; offset++ {
		day := base.AddDate(0, 0, offset)
		dy, dmo, dd := day.Date()
		weekday := mondayIndex(day.Weekday())

		for _, row := range schedule {
			if row.DayOfWeek != weekday {
				continue
			}
			raw = append(raw, segmentsFor(row, tz, dy, dmo, dd, nowLocal)...)
		}
	}

	return merge(clip(raw))
}

// mondayIndex converts Go's Sunday=0 weekday numbering to Monday=0
func mondayIndex(w time.Weekday) int {
	return (int(w) + 6) % 7
}

// segmentsFor produces one or two raw (unclipped) index intervals for a
// single schedule row anchored at local date (y,mo,d). Overnight schedules
// (End <= Start) are split at local midnight.
func segmentsFor(row HoursRow, tz *time.Location, y int, mo time.Month, d int, nowLocal time.Time) []timeindex.Interval {
	startsBeforeEnd := toSeconds(row.Start) < toSeconds(row.End)

	if startsBeforeEnd {
		start := timeindex.Localize(tz, y, mo, d, row.Start.Hour, row.Start.Min, row.Start.Sec)
		end := timeindex.Localize(tz, y, mo, d, row.End.Hour, row.End.Min, row.End.Sec)
		return []timeindex.Interval{indexSpan(start, end, nowLocal)}
	}

	// overnight wrap: (start, next local midnight) + (next local midnight, end on the following day)
	start := timeindex.Localize(tz, y, mo, d, row.Start.Hour, row.Start.Min, row.Start.Sec)
	midnight := timeindex.Localize(tz, y, mo, d, 23, 59, 59)
	midnight = timeindex.CeilMinute(midnight) // next local midnight, minute-aligned

	nextDay := time.Date(y, mo, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	ny, nmo, nd := nextDay.Date()
	end := timeindex.Localize(tz, ny, nmo, nd, row.End.Hour, row.End.Min, row.End.Sec)

	return []timeindex.Interval{
		indexSpan(start, midnight, nowLocal),
		indexSpan(midnight, end, nowLocal),
	}
}

// indexSpan converts a [start,end) local-time span into a half-open
// minute-index interval. start is floored, end is ceiled, so an
// end-inclusive schedule like 00:00:00-23:59:59 yields exactly 1440 minutes.
func indexSpan(start, end time.Time, nowLocal time.Time) timeindex.Interval {
	start = timeindex.FloorMinute(start)
	end = timeindex.CeilMinute(end)

	hiIdx := timeindex.MinuteIndex(start, nowLocal) // older instant -> larger index
	loIdx := timeindex.MinuteIndex(end, nowLocal)   // newer instant -> smaller index
	if loIdx > hiIdx {
		loIdx, hiIdx = hiIdx, loIdx
	}
	return timeindex.Interval{Lo: loIdx, Hi: hiIdx}
}

func toSeconds(t TimeOfDay) int { return t.Hour*3600 + t.Min*60 + t.Sec }

// clip intersects every raw segment with the week band and drops empties
func clip(raw []timeindex.Interval) []timeindex.Interval {
	out := make([]timeindex.Interval, 0, len(raw))
	for _, iv := range raw {
		if clipped, ok := timeindex.Intersect(iv, timeindex.W); ok {
			out = append(out, clipped)
		}
	}
	return out
}

// merge sorts and merges overlapping or touching intervals
func merge(ivs []timeindex.Interval) []timeindex.Interval {
	if len(ivs) == 0 {
		return nil
	}
	sort.Slice(ivs, func(i, j int) bool { return ivs[i].Lo < ivs[j].Lo })

	out := make([]timeindex.Interval, 0, len(ivs))
	cur := ivs[0]
	for _, iv := range ivs[1:] {
		if iv.Lo <= cur.Hi {
			if iv.Hi > cur.Hi {
				cur.Hi = iv.Hi
			}
			continue
		}
		out = append(out, cur)
		cur = iv
	}
	out = append(out, cur)
	return out
}
