package statusspan

import (
	"testing"

	"storewatch/internal/core/polls"
)

func tilesWeekBand(t *testing.T, spans []Span) {
	t.Helper()
	if len(spans) == 0 {
		t.Fatalf("expected nonempty spans")
	}
	if spans[0].Lo != 1 {
		t.Fatalf("spans must start at 1, got %d", spans[0].Lo)
	}
	if spans[len(spans)-1].Hi != 10081 {
		t.Fatalf("spans must end at 10081, got %d", spans[len(spans)-1].Hi)
	}
	for i := 1; i < len(spans); i++ {
		if spans[i-1].Hi != spans[i].Lo {
			t.Fatalf("gap or overlap between spans %d and %d: %+v", i-1, i, spans)
		}
	}
}

func TestBuildSpans_NoPollsReturnsNil(t *testing.T) {
	if got := BuildSpans(nil); got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
}

func TestBuildSpans_NoInWindowPollsSeedsWholeBand(t *testing.T) {
	in := []polls.Poll{{K: 10085, Status: polls.StatusActive}}
	spans := BuildSpans(in)
	tilesWeekBand(t, spans)
	if len(spans) != 1 || spans[0].Status != polls.StatusActive {
		t.Fatalf("expected single all-active span, got %+v", spans)
	}
}

func TestBuildSpans_SingleTransitionMidHour(t *testing.T) {
	// one inactive poll 60 minutes back (k=61), one active poll 30 minutes
	// back (k=31); carry-forward should extend "active" through to now.
	in := []polls.Poll{
		{K: 31, Status: polls.StatusActive},
		{K: 61, Status: polls.StatusInactive},
	}
	spans := BuildSpans(in)
	tilesWeekBand(t, spans)

	// spans are ascending by Lo, so the most recent span (covering k in
	// [1,31)) comes first and must be active
	recent := spans[0]
	if recent.Lo != 1 || recent.Hi != 31 || recent.Status != polls.StatusActive {
		t.Fatalf("expected leading active span [1,31), got %+v (all spans: %+v)", recent, spans)
	}
}

func TestBuildSpans_MergesAdjacentEqualStatus(t *testing.T) {
	in := []polls.Poll{
		{K: 5, Status: polls.StatusActive},
		{K: 10, Status: polls.StatusActive},
	}
	spans := BuildSpans(in)
	tilesWeekBand(t, spans)
	for _, s := range spans {
		if s.Status != polls.StatusActive {
			t.Fatalf("expected all-active spans, got %+v", spans)
		}
	}
}
