// Package sweep intersects a store's business-hours intervals with its
// carry-forward status spans using a two-pointer sweep, accumulating active
// minutes into the three nested bands (hour, day, week).
package sweep

import (
	"storewatch/internal/core/polls"
	"storewatch/internal/core/statusspan"
	"storewatch/internal/core/timeindex"
)

// Totals holds uptime minutes for the three nested bands
type Totals struct {
	Hour int
	Day  int
	Week int
}

// Sweep computes uptime minutes for each band by intersecting bh (sorted,
// disjoint business-hours intervals) with spans (sorted, contiguous status
// spans). Both slices must be sorted ascending by Lo - BuildBH and
// BuildSpans both guarantee this. O(|bh| + |spans|).
func Sweep(bh []timeindex.Interval, spans []statusspan.Span) Totals {
	var totals Totals

	i, j := 0, 0
	for i < len(bh) && j < len(spans) {
		a := bh[i]
		b := timeindex.Interval{Lo: spans[j].Lo, Hi: spans[j].Hi}

		if overlap, ok := timeindex.Intersect(a, b); ok && spans[j].Status == polls.StatusActive {
			totals.Hour += timeindex.Overlap(overlap, timeindex.H)
			totals.Day += timeindex.Overlap(overlap, timeindex.D)
			totals.Week += timeindex.Overlap(overlap, timeindex.W)
		}

		// advance whichever interval ends first; advance both on a tie
		switch {
		case a.Hi < b.Hi:
			i++
		case b.Hi < a.Hi:
			j++
		default:
			i++
			j++
		}
	}

	return totals
}

// Clamp bounds a band's uptime to its business-hours budget and returns the
// complementary downtime, asserting the coverage identity uptime+downtime==budget.
func Clamp(uptime, budget int) (up, down int) {
	up = uptime
	if up < 0 {
		up = 0
	}
	if up > budget {
		up = budget
	}
	down = budget - up
	return up, down
}

// Budget sums the lengths of bh clipped to band, i.e. the total business-hours
// minutes available in that band.
func Budget(bh []timeindex.Interval, band timeindex.Interval) int {
	total := 0
	for _, iv := range bh {
		total += timeindex.Overlap(iv, band)
	}
	return total
}
