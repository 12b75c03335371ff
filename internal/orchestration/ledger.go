package orchestration

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Ledger records which (week, stage) pairs have already completed so a
// restarted run does not redo work that already landed in Postgres.
type Ledger interface {
	IsDone(ctx context.Context, week, stage string) (bool, error)
	MarkDone(ctx context.Context, week, stage string) error
}

const ledgerTTL = 14 * 24 * time.Hour

// redisLedger is a Redis-backed idempotency ledger keyed by week and stage.
type redisLedger struct {
	client *redis.Client
}

// NewRedisLedger builds a Ledger backed by the given Redis client.
func NewRedisLedger(client *redis.Client) Ledger {
	return &redisLedger{client: client}
}

func ledgerKey(week, stage string) string {
	return fmt.Sprintf("stagerun:%s:%s", week, stage)
}

func (l *redisLedger) IsDone(ctx context.Context, week, stage string) (bool, error) {
	n, err := l.client.Exists(ctx, ledgerKey(week, stage)).Result()
	if err != nil {
		return false, fmt.Errorf("ledger exists check: %w", err)
	}
	return n > 0, nil
}

func (l *redisLedger) MarkDone(ctx context.Context, week, stage string) error {
	if err := l.client.Set(ctx, ledgerKey(week, stage), time.Now().UTC().Format(time.RFC3339), ledgerTTL).Err(); err != nil {
		return fmt.Errorf("ledger mark done: %w", err)
	}
	return nil
}

// memoryLedger is an in-process fallback used when Redis is unavailable,
// e.g. in tests or a degraded local run.
type memoryLedger struct {
	mu   sync.RWMutex
	done map[string]bool
}

// NewMemoryLedger builds an in-memory Ledger. State does not survive a
// process restart, so it only protects against re-runs within one run.
func NewMemoryLedger() Ledger {
	return &memoryLedger{done: make(map[string]bool)}
}

func (l *memoryLedger) IsDone(ctx context.Context, week, stage string) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.done[ledgerKey(week, stage)], nil
}

func (l *memoryLedger) MarkDone(ctx context.Context, week, stage string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.done[ledgerKey(week, stage)] = true
	return nil
}
