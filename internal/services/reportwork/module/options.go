package module

import (
	"time"

	"storewatch/internal/platform/config"
	"storewatch/internal/services/reportwork/guardrails"
)

// Options controls the report worker
type Options struct {
	StoreConcurrency int
	DefaultTZ        string

	QueueAddr     string
	QueuePassword string
	QueueDB       int

	QueueKey            string
	ProcessingKeyPrefix string
	ClaimTimeout        time.Duration

	ArtifactDir  string
	PublicPrefix string

	SoftTimeout time.Duration
	HardTimeout time.Duration
}

// FromConfig reads with REPORTWORK_ prefix
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("REPORTWORK_")
	return Options{
		StoreConcurrency: c.MayInt("STORE_CONCURRENCY", 8),
		DefaultTZ:        c.MayString("DEFAULT_TZ", "America/Chicago"),

		QueueAddr:     c.MayString("REDIS_ADDR", "localhost:6379"),
		QueuePassword: c.MayString("REDIS_PASSWORD", ""),
		QueueDB:       c.MayInt("REDIS_DB", 0),

		QueueKey:            c.MayString("QUEUE_KEY", "reports:pending"),
		ProcessingKeyPrefix: c.MayString("QUEUE_PROCESSING_PREFIX", "reports:processing:"),
		ClaimTimeout:        c.MayDuration("CLAIM_TIMEOUT", 5*time.Second),

		ArtifactDir:  c.MayString("ARTIFACT_DIR", "./reports"),
		PublicPrefix: c.MayString("PUBLIC_PREFIX", "/files/reports"),

		SoftTimeout: c.MayDuration("SOFT_TIMEOUT", guardrails.DefaultTimeouts().Soft),
		HardTimeout: c.MayDuration("HARD_TIMEOUT", guardrails.DefaultTimeouts().Hard),
	}
}
