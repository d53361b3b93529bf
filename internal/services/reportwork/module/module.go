// Package module wires the report worker service and exposes its ports
package module

import (
	"storewatch/internal/modkit"
	"storewatch/internal/modkit/httpkit"
	"storewatch/internal/platform/queue"
	"storewatch/internal/services/reportwork/guardrails"
	"storewatch/internal/services/reportwork/service"
)

// Module defines the reportwork worker module
type Module struct {
	deps  modkit.Deps
	ports Ports
	q     *queue.Queue
}

// New constructs the reportwork worker module with its ports
func New(deps modkit.Deps, overrides Options) *Module {
	opts := FromConfig(deps.Cfg)

	if overrides.StoreConcurrency != 0 {
		opts.StoreConcurrency = overrides.StoreConcurrency
	}
	if overrides.DefaultTZ != "" {
		opts.DefaultTZ = overrides.DefaultTZ
	}
	if overrides.QueueAddr != "" {
		opts.QueueAddr = overrides.QueueAddr
	}
	if overrides.QueuePassword != "" {
		opts.QueuePassword = overrides.QueuePassword
	}
	if overrides.QueueDB != 0 {
		opts.QueueDB = overrides.QueueDB
	}
	if overrides.QueueKey != "" {
		opts.QueueKey = overrides.QueueKey
	}
	if overrides.ProcessingKeyPrefix != "" {
		opts.ProcessingKeyPrefix = overrides.ProcessingKeyPrefix
	}
	if overrides.ClaimTimeout != 0 {
		opts.ClaimTimeout = overrides.ClaimTimeout
	}
	if overrides.ArtifactDir != "" {
		opts.ArtifactDir = overrides.ArtifactDir
	}
	if overrides.PublicPrefix != "" {
		opts.PublicPrefix = overrides.PublicPrefix
	}
	if overrides.SoftTimeout != 0 {
		opts.SoftTimeout = overrides.SoftTimeout
	}
	if overrides.HardTimeout != 0 {
		opts.HardTimeout = overrides.HardTimeout
	}

	q := queue.New(queue.Config{
		Addr:     opts.QueueAddr,
		Password: opts.QueuePassword,
		DB:       opts.QueueDB,
	})

	svc := service.New(deps, q, service.Config{
		StoreConcurrency:    opts.StoreConcurrency,
		DefaultTZ:           opts.DefaultTZ,
		QueueKey:            opts.QueueKey,
		ProcessingKeyPrefix: opts.ProcessingKeyPrefix,
		ClaimTimeout:        opts.ClaimTimeout,
		ArtifactDir:         opts.ArtifactDir,
		PublicPrefix:        opts.PublicPrefix,
		Timeouts:            guardrails.Timeouts{Soft: opts.SoftTimeout, Hard: opts.HardTimeout},
	})

	m := &Module{deps: deps, q: q}
	m.ports = Ports{
		Worker:   svc,
		Enqueuer: svc,
	}
	return m
}

// Ports returns the module ports (Worker, Enqueuer)
func (m *Module) Ports() any { return m.ports }

// Name returns the module name
func (m *Module) Name() string { return "reportwork" }

// Prefix returns the module config prefix (none; worker-only service)
func (m *Module) Prefix() string { return "" }

// MountRoutes returns no HTTP routes
func (m *Module) MountRoutes(_ httpkit.Router) {}
