package service

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	"storewatch/internal/modkit/scope"
	"storewatch/internal/platform/logger"
	"storewatch/internal/services/reportwork/domain"
	"storewatch/internal/services/reportwork/guardrails"

	"storewatch/internal/platform/artifact"
)

// Run is the worker consumer loop: claim one report id at a time from
// the queue and run it to completion, acking on any terminal outcome.
func (s *Svc) Run(ctx context.Context) error {
	log := logger.Named("reportwork-worker")
	processingKey := s.cfg.ProcessingKeyPrefix + s.workerID

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		payload, ok, err := s.q.Claim(ctx, s.cfg.QueueKey, processingKey, s.cfg.ClaimTimeout)
		if err != nil {
			log.Error().Err(err).Msg("claim failed")
			continue
		}
		if !ok {
			continue
		}

		s.handleOne(ctx, log, decodeTask(payload))

		if err := s.q.Ack(ctx, processingKey, payload); err != nil {
			log.Error().Err(err).Str("payload", payload).Msg("ack failed")
		}
	}
}

// decodeTask parses a queue payload. Bare (non-JSON) payloads are treated
// as a plain report id, so items enqueued by older producers still run.
func decodeTask(payload string) domain.Task {
	var t domain.Task
	if err := json.Unmarshal([]byte(payload), &t); err != nil || t.ReportID == "" {
		return domain.Task{ReportID: payload}
	}
	return t
}

func (s *Svc) handleOne(parent context.Context, log *logger.Logger, t domain.Task) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("report_id", t.ReportID).Msg("worker panic, marking report failed")
			_ = s.repo.MarkFailed(context.Background(), t.ReportID)
		}
	}()

	// carry the job id across every goroutine this run spawns
	ctx := scope.With(parent, map[string]string{"report_id": t.ReportID})

	if err := s.RunReport(ctx, t); err != nil {
		log.Error().Err(err).Str("report_id", t.ReportID).Msg("report run failed")
	}
}

// RunReport executes the full engine for one report: it looks up the
// job record (no-op on terminal states), transitions Pending->Running,
// processes every store, writes the artifact, and transitions to
// Complete or Failed.
func (s *Svc) RunReport(parent context.Context, t domain.Task) error {
	rep, err := s.repo.GetByID(parent, t.ReportID)
	if err != nil {
		return err
	}
	if rep.Status.Terminal() {
		return nil
	}
	if rep.Status == domain.StatusPending {
		if err := s.repo.MarkRunning(parent, t.ReportID); err != nil {
			return err
		}
	}

	ctx, cancel := guardrails.WithHard(parent, s.cfg.Timeouts)
	defer cancel()

	if err := s.runReportBody(ctx, t.ReportID, t.MaxStores); err != nil {
		_ = s.repo.MarkFailed(context.Background(), t.ReportID)
		return err
	}
	return nil
}

func (s *Svc) runReportBody(ctx context.Context, reportID string, maxStores int) error {
	storeIDs, err := s.repo.ListStoreIDs(ctx)
	if err != nil {
		return err
	}
	if maxStores > 0 && len(storeIDs) > maxStores {
		storeIDs = storeIDs[:maxStores]
	}

	anchor, ok, err := s.repo.MaxSampleTimestamp(ctx)
	if err != nil {
		return err
	}
	if !ok {
		anchor = time.Now().UTC()
	}

	var (
		mu      sync.Mutex
		rows    []artifact.Row
		sem     = make(chan struct{}, max(1, s.cfg.StoreConcurrency))
		wg      sync.WaitGroup
		started = time.Now()
	)

	log := logger.Named("reportwork")
	softExpired := false
	for _, storeID := range storeIDs {
		if guardrails.SoftExpired(started, s.cfg.Timeouts) {
			log.Warn().Str("report_id", reportID).Msg("soft time budget exceeded, stopping intake of new stores")
			softExpired = true
			break
		}

		sem <- struct{}{}
		wg.Add(1)
		go func(storeID string) {
			defer wg.Done()
			defer func() { <-sem }()

			row, include, err := s.runStore(ctx, storeID, anchor)
			if err != nil {
				log.Warn().Err(err).Str("store_id", storeID).Msg("store skipped due to error")
				return
			}
			if !include {
				return
			}
			mu.Lock()
			rows = append(rows, row)
			mu.Unlock()
		}(storeID)
	}
	wg.Wait()
	if softExpired {
		return errors.New("soft time budget exceeded")
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].StoreID < rows[j].StoreID })

	ref, err := s.artifacts.Write(reportID, rows)
	if err != nil {
		return err
	}
	return s.repo.MarkComplete(ctx, reportID, ref)
}
