// Package queue implements a reliable, at-least-once FIFO queue over Redis
// lists: a source list for pending work and a per-consumer in-flight list
// so a crashed worker's claimed-but-unacked item can be recovered instead
// of silently disappearing.
package queue

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	perr "storewatch/internal/platform/errors"
)

// Config configures the Redis connection backing the queue
type Config struct {
	Addr     string
	Password string
	DB       int
}

// Queue is a reliable-list-backed FIFO queue client
type Queue struct {
	rdb *redis.Client
}

// New constructs a Queue client. It does not dial eagerly; the first
// command establishes the connection lazily, same as the go-redis default.
func New(cfg Config) *Queue {
	return &Queue{rdb: redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})}
}

// Ping verifies connectivity, satisfying repokit.MustPing/the meta readiness probe
func (q *Queue) Ping(ctx context.Context) error {
	if err := q.rdb.Ping(ctx).Err(); err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "queue: ping failed")
	}
	return nil
}

// Close releases the underlying connection pool
func (q *Queue) Close() error { return q.rdb.Close() }

// Push enqueues payload onto key's pending list (LPUSH - producers push left,
// consumers pop right, so the list is a FIFO in push order).
func (q *Queue) Push(ctx context.Context, key string, payload string) error {
	if err := q.rdb.LPush(ctx, key, payload).Err(); err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "queue: push failed")
	}
	return nil
}

// Claim atomically moves one payload from key's pending list to
// processingKey (BRPOPLPUSH), blocking up to timeout. ok is false on a
// timeout with no error - callers should just loop.
func (q *Queue) Claim(ctx context.Context, key, processingKey string, timeout time.Duration) (payload string, ok bool, err error) {
	v, err := q.rdb.BRPopLPush(ctx, key, processingKey, timeout).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, perr.Wrap(err, perr.ErrorCodeUnavailable, "queue: claim failed")
	}
	return v, true, nil
}

// Ack removes one instance of payload from processingKey once the consumer
// has durably finished with it.
func (q *Queue) Ack(ctx context.Context, processingKey, payload string) error {
	if err := q.rdb.LRem(ctx, processingKey, 1, payload).Err(); err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "queue: ack failed")
	}
	return nil
}

// Requeue moves payload from processingKey back onto the pending list key,
// used when a claimed item could not be processed and should be retried by
// the next consumer (at-least-once redelivery).
func (q *Queue) Requeue(ctx context.Context, key, processingKey, payload string) error {
	if err := q.rdb.LRem(ctx, processingKey, 1, payload).Err(); err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "queue: requeue lrem failed")
	}
	return q.Push(ctx, key, payload)
}
