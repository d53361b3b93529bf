package service

import (
	"context"
	"time"

	"storewatch/internal/core/businesshours"
	"storewatch/internal/core/polls"
	"storewatch/internal/core/statusspan"
	"storewatch/internal/core/sweep"
	"storewatch/internal/core/timeindex"
	"storewatch/internal/modkit/scope"
	"storewatch/internal/platform/artifact"
	"storewatch/internal/platform/logger"
)

// windowBuffer is the 1,440-minute pre-window buffer that preserves a
// seed sample before the 10,080-minute report window
const windowBuffer = 1440 * time.Minute
const reportWindow = 10080 * time.Minute

// runStore computes one store's result row. ok is false when the store
// must be excluded (no in-window polls, or a hard load failure the
// caller chooses to skip and log).
func (s *Svc) runStore(ctx context.Context, storeID string, anchorUTC time.Time) (artifact.Row, bool, error) {
	lb := logger.Named("reportwork").With().Str("store_id", storeID)
	if rid, ok := scope.Get(ctx, "report_id"); ok {
		lb = lb.Str("report_id", rid)
	}
	log := lb.Logger()

	tzName, ok, err := s.repo.LoadTimezone(ctx, storeID)
	if err != nil {
		return artifact.Row{}, false, err
	}
	if !ok {
		tzName = s.cfg.DefaultTZ
	}
	loc, resolved := timeindex.ResolveTZ(tzName)
	if !resolved {
		log.Warn().Str("tz", tzName).Msg("unresolvable timezone, falling back to UTC")
	}

	nowLocal := timeindex.FloorMinute(anchorUTC.In(loc))
	leftUTC := nowLocal.Add(-(reportWindow + windowBuffer)).UTC()

	raw, err := s.repo.LoadRawPolls(ctx, storeID, leftUTC)
	if err != nil {
		return artifact.Row{}, false, err
	}
	if len(raw) == 0 {
		return artifact.Row{}, false, nil
	}

	normalized := polls.Normalize(raw, loc, nowLocal)
	if len(normalized) == 0 {
		return artifact.Row{}, false, nil
	}

	hoursRows, err := s.repo.LoadHours(ctx, storeID)
	if err != nil {
		return artifact.Row{}, false, err
	}
	bh := businesshours.BuildBH(hoursRows, loc, nowLocal)
	spans := statusspan.BuildSpans(normalized)
	totals := sweep.Sweep(bh, spans)

	hBudget := sweep.Budget(bh, timeindex.H)
	dBudget := sweep.Budget(bh, timeindex.D)
	wBudget := sweep.Budget(bh, timeindex.W)

	upH, downH := sweep.Clamp(totals.Hour, hBudget)
	upD, downD := sweep.Clamp(totals.Day, dBudget)
	upW, downW := sweep.Clamp(totals.Week, wBudget)

	row := artifact.Row{
		StoreID:          storeID,
		UptimeLastHour:   upH,
		UptimeLastDay:    minutesToHours(upD),
		UptimeLastWeek:   minutesToHours(upW),
		DowntimeLastHour: downH,
		DowntimeLastDay:  minutesToHours(downD),
		DowntimeLastWeek: minutesToHours(downW),
	}
	return row, true, nil
}

func minutesToHours(m int) float64 { return float64(m) / 60.0 }
