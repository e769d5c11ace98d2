// Package lock implements the named, owner-tokened exclusive locks the
// rest of the orchestrator uses to serialize per-agent work. One
// *Locker* is constructed per Redis connection and reused for every
// acquisition; each Acquire call mints its own owner token so a single
// Locker safely issues many independent, unrelated locks concurrently.
package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/stores/redis"
)

// Namespace identifies which family of lock a key belongs to, which in
// turn determines its default TTL and retry policy.
type Namespace string

const (
	NamespaceDecision Namespace = "decision"
	NamespacePosition Namespace = "position"
	NamespaceBalance  Namespace = "balance"
	NamespaceGlobal   Namespace = "global"
)

var keyPrefixes = map[Namespace]string{
	NamespaceDecision: "lock:agent:decision:",
	NamespacePosition: "lock:agent:position:",
	NamespaceBalance:  "lock:agent:balance:",
	NamespaceGlobal:   "lock:agent:global:",
}

// Policy bundles the TTL/retry knobs for one lock namespace, per spec §4.1.
type Policy struct {
	TTL        time.Duration
	Retries    int
	RetryDelay time.Duration
}

var defaultPolicies = map[Namespace]Policy{
	NamespaceDecision: {TTL: 300 * time.Second, Retries: 1, RetryDelay: 0},
	NamespacePosition: {TTL: 30 * time.Second, Retries: 5, RetryDelay: 200 * time.Millisecond},
	NamespaceBalance:  {TTL: 30 * time.Second, Retries: 5, RetryDelay: 200 * time.Millisecond},
	NamespaceGlobal:   {TTL: 300 * time.Second, Retries: 1, RetryDelay: 0},
}

const releaseScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`

const extendScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("expire", KEYS[1], ARGV[2])
else
	return 0
end
`

// Locker issues and releases named locks backed by a shared Redis store.
type Locker struct {
	store *redis.Redis
}

// NewLocker wraps an already-configured go-zero Redis client.
func NewLocker(store *redis.Redis) *Locker {
	return &Locker{store: store}
}

// Handle represents one successful acquisition; it must be released
// exactly once, typically via defer immediately after a successful
// Acquire.
type Handle struct {
	key     string
	ownerID string
	locker  *Locker
}

// Key returns the fully-qualified Redis key this handle holds.
func (h *Handle) Key() string { return h.key }

// Acquire attempts to take the named lock in the given namespace,
// retrying per the namespace's policy. It returns a Handle and true on
// success, or false (with a nil Handle) if every attempt failed —
// callers must treat that as "agent busy", not as an error.
func (l *Locker) Acquire(ctx context.Context, ns Namespace, key string) (*Handle, bool) {
	policy := defaultPolicies[ns]
	fullKey := keyPrefixes[ns] + key
	ownerID := uuid.New().String()

	attempts := policy.Retries
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 0; attempt < attempts; attempt++ {
		ok, err := l.store.SetnxExCtx(ctx, fullKey, ownerID, int(policy.TTL.Seconds()))
		if err != nil {
			logx.WithContext(ctx).Errorf("lock acquire error key=%s attempt=%d err=%v", fullKey, attempt, err)
		} else if ok {
			return &Handle{key: fullKey, ownerID: ownerID, locker: l}, true
		}

		if attempt < attempts-1 && policy.RetryDelay > 0 {
			select {
			case <-time.After(policy.RetryDelay):
			case <-ctx.Done():
				return nil, false
			}
		}
	}

	logx.WithContext(ctx).Infof("lock acquire failed key=%s", fullKey)
	return nil, false
}

// AcquireWithPolicy is Acquire for callers that need to override the
// namespace's default TTL/retry policy, e.g. to force a non-blocking
// attempt regardless of namespace.
func (l *Locker) AcquireWithPolicy(ctx context.Context, ns Namespace, key string, policy Policy) (*Handle, bool) {
	fullKey := keyPrefixes[ns] + key
	ownerID := uuid.New().String()

	attempts := policy.Retries
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 0; attempt < attempts; attempt++ {
		ok, err := l.store.SetnxExCtx(ctx, fullKey, ownerID, int(policy.TTL.Seconds()))
		if err != nil {
			logx.WithContext(ctx).Errorf("lock acquire error key=%s attempt=%d err=%v", fullKey, attempt, err)
		} else if ok {
			return &Handle{key: fullKey, ownerID: ownerID, locker: l}, true
		}
		if attempt < attempts-1 && policy.RetryDelay > 0 {
			select {
			case <-time.After(policy.RetryDelay):
			case <-ctx.Done():
				return nil, false
			}
		}
	}
	return nil, false
}

// Release deletes the lock iff this handle's owner token still matches
// what's stored — a lock lost to TTL expiry during long-running work
// simply no-ops here rather than erroring, per spec §4.1's failure
// semantics ("caller must not assume exclusivity beyond TTL").
func (h *Handle) Release(ctx context.Context) {
	result, err := h.locker.store.EvalCtx(ctx, releaseScript, []string{h.key}, h.ownerID)
	if err != nil {
		logx.WithContext(ctx).Errorf("lock release error key=%s err=%v", h.key, err)
		return
	}
	if n, ok := result.(int64); !ok || n == 0 {
		logx.WithContext(ctx).Slowf("lock release no-op, likely lost to TTL: key=%s", h.key)
	}
}

// Extend re-expires the lock iff the owner token still matches.
func (h *Handle) Extend(ctx context.Context, additional time.Duration) bool {
	seconds := int(additional.Seconds())
	result, err := h.locker.store.EvalCtx(ctx, extendScript, []string{h.key}, h.ownerID, seconds)
	if err != nil {
		logx.WithContext(ctx).Errorf("lock extend error key=%s err=%v", h.key, err)
		return false
	}
	n, ok := result.(int64)
	return ok && n != 0
}

// IsLocked is advisory only, per spec §4.1 — it never implies the
// caller may safely act on the absence of contention.
func (l *Locker) IsLocked(ctx context.Context, ns Namespace, key string) (bool, error) {
	fullKey := keyPrefixes[ns] + key
	exists, err := l.store.ExistsCtx(ctx, fullKey)
	if err != nil {
		return false, fmt.Errorf("lock: check %s: %w", fullKey, err)
	}
	return exists, nil
}
