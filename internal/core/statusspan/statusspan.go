// Package statusspan reconstructs a contiguous carry-forward step function
// over the week band from sparse, minute-indexed polls. The status at any
// unobserved minute equals the status of the most recent poll at a strictly
// greater index (older poll) - pure carry-forward, no interpolation.
package statusspan

import (
	"storewatch/internal/core/polls"
)

// Span is a contiguous half-open interval with a single status
type Span struct {
	Lo, Hi int
	Status polls.Status
}

// startK is the boundary minute index separating the pre-window seed region
// from the in-window week band (seed selection only).
// weekHi is the exclusive right edge of the week band: the oldest emitted
// span must reach it so spans tile [1,10081) with no gap at k=10080.
const (
	startK = 10080
	weekHi = 10081
)

// BuildSpans converts in[polls], sorted ascending by K, into a list of spans
// tiling the week band [1,10081) without gaps or overlaps. polls must
// already be sorted ascending by K (smallest/most-recent first); this is
// the contract Normalize guarantees.
func BuildSpans(in []polls.Poll) []Span {
	if len(in) == 0 {
		return nil
	}

	seed, seedOK := seedStatus(in)
	if !seedOK {
		return nil
	}

	inWindow := make([]polls.Poll, 0, len(in))
	for _, p := range in {
		if p.K < startK {
			inWindow = append(inWindow, p)
		}
	}

	if len(inWindow) == 0 {
		return merge([]Span{{Lo: 1, Hi: weekHi, Status: seed}})
	}

	// Walk in descending K (earliest wall-time first): inWindow is sorted
	// ascending by K (most recent first), so iterate it in reverse. The
	// oldest span's Hi starts at weekHi (not startK) so the seed status
	// also covers the [startK, weekHi) sliver the pre-window boundary
	// itself doesn't otherwise claim.
	var out []Span
	prevK := weekHi
	prevS := seed
	for i := len(inWindow) - 1; i >= 0; i-- {
		p := inWindow[i]
		if p.K < prevK {
			out = append(out, Span{Lo: p.K, Hi: prevK, Status: prevS})
		}
		prevK, prevS = p.K, p.Status
	}
	if prevK > 1 {
		out = append(out, Span{Lo: 1, Hi: prevK, Status: prevS})
	}

	return merge(out)
}

// seedStatus picks the status that holds at the older edge of the week
// window: the pre-window poll closest to the boundary if one exists,
// otherwise the earliest in-window poll.
func seedStatus(in []polls.Poll) (polls.Status, bool) {
	// in is sorted ascending by K; the pre-window region is K >= startK.
	// The "closest to the boundary from the outside" pre-window poll is the
	// one with the smallest K among those >= startK.
	var preWindowSeed *polls.Poll
	for i := range in {
		if in[i].K >= startK {
			preWindowSeed = &in[i]
			break
		}
	}
	if preWindowSeed != nil {
		return preWindowSeed.Status, true
	}
	// No pre-window poll: fall back to the earliest in-window poll, i.e.
	// the largest K strictly less than startK, which is the last element.
	if len(in) == 0 {
		return 0, false
	}
	return in[len(in)-1].Status, true
}

// merge coalesces adjacent spans sharing the same status and sorts by Lo
func merge(spans []Span) []Span {
	if len(spans) == 0 {
		return nil
	}
	// BuildSpans emits spans in descending Lo order (most recent last);
	// normalize to ascending Lo before merging so callers (e.g. the sweep)
	// can rely on a stable left-to-right order.
	asc := make([]Span, len(spans))
	for i, s := range spans {
		asc[len(spans)-1-i] = s
	}

	out := make([]Span, 0, len(asc))
	cur := asc[0]
	for _, s := range asc[1:] {
		if s.Lo == cur.Hi && s.Status == cur.Status {
			cur.Hi = s.Hi
			continue
		}
		out = append(out, cur)
		cur = s
	}
	out = append(out, cur)
	return out
}
