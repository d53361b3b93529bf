// Package service implements the report worker and trigger/status service
package service

import (
	"context"
	"encoding/json"
	"time"

	"storewatch/internal/modkit"
	"storewatch/internal/modkit/repokit"
	"storewatch/internal/platform/artifact"
	"storewatch/internal/platform/queue"

	dom "storewatch/internal/services/reportwork/domain"
	"storewatch/internal/services/reportwork/guardrails"
	rrepo "storewatch/internal/services/reportwork/repo"
)

// Service implements both the trigger/status and worker ports
type Service interface {
	dom.EnqueuePort
	dom.WorkerPort
}

// Config controls the worker and the store-orchestration pipeline
type Config struct {
	StoreConcurrency int
	DefaultTZ        string

	QueueKey            string
	ProcessingKeyPrefix string
	ClaimTimeout        time.Duration

	ArtifactDir  string
	PublicPrefix string // e.g. "/files/reports"

	Timeouts guardrails.Timeouts
}

// Svc implements Service
type Svc struct {
	db     repokit.TxRunner
	binder repokit.Binder[rrepo.Repo]
	repo   rrepo.Repo

	q         *queue.Queue
	artifacts artifact.Writer
	cfg       Config
	deps      modkit.Deps
	workerID  string
}

// New constructs the report worker/trigger service
func New(deps modkit.Deps, q *queue.Queue, cfg Config) *Svc {
	b := rrepo.NewPG(deps.PG)
	return &Svc{
		db:        deps.PG,
		binder:    b,
		repo:      b.Bind(deps.PG),
		q:         q,
		artifacts: artifact.New(cfg.ArtifactDir),
		cfg:       cfg,
		deps:      deps,
		workerID:  "reportwork",
	}
}

// Trigger returns the id of an active report, creating and enqueuing a
// new one if none is active. Creation and enqueue happen in that order
// so the worker always finds the job record once it dequeues the task.
func (s *Svc) Trigger(ctx context.Context) (string, error) {
	reportID, created, err := s.repo.CreateOrGetActive(ctx)
	if err != nil {
		return "", err
	}
	if created {
		payload, err := json.Marshal(dom.Task{ReportID: reportID})
		if err != nil {
			return "", err
		}
		if err := s.q.Push(ctx, s.cfg.QueueKey, string(payload)); err != nil {
			return "", err
		}
	}
	return reportID, nil
}

// GetStatus returns the report's lifecycle status, translating the
// internal artifact reference to a public URL when Complete.
func (s *Svc) GetStatus(ctx context.Context, reportID string) (dom.Report, error) {
	rep, err := s.repo.GetByID(ctx, reportID)
	if err != nil {
		return dom.Report{}, err
	}
	if rep.Status == dom.StatusComplete {
		rep.URL = translatePublicURL(rep.URL, s.cfg.PublicPrefix)
	} else {
		rep.URL = ""
	}
	return rep, nil
}

// translatePublicURL maps the writer's internal "file://…/reports/<name>.<ext>"
// reference to a public download path, preserving the legacy
// JSON-to-CSV filename rewrite this codebase's earlier format used.
func translatePublicURL(ref, prefix string) string {
	if ref == "" {
		return ""
	}
	const fileScheme = "file://"
	if len(ref) < len(fileScheme) || ref[:len(fileScheme)] != fileScheme {
		return ref
	}
	name := ref
	if idx := lastSlash(ref); idx >= 0 {
		name = ref[idx+1:]
	}
	name = rewriteLegacyExt(name)
	if prefix == "" {
		prefix = "/files/reports"
	}
	return prefix + "/" + name
}

func lastSlash(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '/' {
			return i
		}
	}
	return -1
}

func rewriteLegacyExt(name string) string {
	const jsonExt = ".json"
	if len(name) > len(jsonExt) && name[len(name)-len(jsonExt):] == jsonExt {
		return name[:len(name)-len(jsonExt)] + ".csv"
	}
	return name
}
