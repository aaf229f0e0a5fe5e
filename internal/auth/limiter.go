package auth

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	loginWindow      = 15 * time.Minute
	lockDuration     = 10 * time.Minute
	maxLoginAttempts = 5
)

// AttemptLimiter はクライアント単位のログイン失敗を数え、一定回数でロックします。
type AttemptLimiter interface {
	// CheckLock は残りロック時間を返します。0 以下ならロックされていません。
	CheckLock(ctx context.Context, key string) time.Duration
	// RecordFailure は失敗を記録し、残り試行回数を返します。
	RecordFailure(ctx context.Context, key string) int
	// Reset はログイン成功時に失敗履歴を消去します。
	Reset(ctx context.Context, key string)
}

type attemptState struct {
	count        int
	firstAttempt time.Time
	lockedUntil  time.Time
}

// MemoryAttemptLimiter は単一プロセス用のインメモリ実装です。
type MemoryAttemptLimiter struct {
	mu       sync.Mutex
	attempts map[string]*attemptState
}

// NewMemoryAttemptLimiter は MemoryAttemptLimiter を作成します。
func NewMemoryAttemptLimiter() *MemoryAttemptLimiter {
	return &MemoryAttemptLimiter{
		attempts: make(map[string]*attemptState),
	}
}

var _ AttemptLimiter = (*MemoryAttemptLimiter)(nil)

// CheckLock は残りロック時間を返します。
func (l *MemoryAttemptLimiter) CheckLock(ctx context.Context, key string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	state, ok := l.attempts[key]
	if !ok {
		return 0
	}
	now := time.Now()
	if now.After(state.lockedUntil) {
		return 0
	}
	return time.Until(state.lockedUntil)
}

// RecordFailure は失敗を記録し、残り試行回数を返します。
func (l *MemoryAttemptLimiter) RecordFailure(ctx context.Context, key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	state, ok := l.attempts[key]
	if !ok || now.Sub(state.firstAttempt) > loginWindow {
		state = &attemptState{firstAttempt: now}
		l.attempts[key] = state
	}

	state.count++
	if state.count >= maxLoginAttempts {
		state.lockedUntil = now.Add(lockDuration)
		state.count = maxLoginAttempts
	}

	remaining := maxLoginAttempts - state.count
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

// Reset は失敗履歴を消去します。
func (l *MemoryAttemptLimiter) Reset(ctx context.Context, key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.attempts, key)
}

// RedisAttemptLimiter は複数プロセスでロック状態を共有する Redis 実装です。
// Redis 障害時は制限せずに通します（フェイルオープン）。
type RedisAttemptLimiter struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisAttemptLimiter は RedisAttemptLimiter を作成します。
func NewRedisAttemptLimiter(rdb *redis.Client) *RedisAttemptLimiter {
	return &RedisAttemptLimiter{
		rdb:    rdb,
		prefix: "login:attempts:",
	}
}

var _ AttemptLimiter = (*RedisAttemptLimiter)(nil)

// CheckLock は残りロック時間を返します。
func (l *RedisAttemptLimiter) CheckLock(ctx context.Context, key string) time.Duration {
	ttl, err := l.rdb.TTL(ctx, l.lockKey(key)).Result()
	if err != nil || ttl <= 0 {
		return 0
	}
	return ttl
}

// RecordFailure は失敗を記録し、残り試行回数を返します。
func (l *RedisAttemptLimiter) RecordFailure(ctx context.Context, key string) int {
	counterKey := l.counterKey(key)
	count, err := l.rdb.Incr(ctx, counterKey).Result()
	if err != nil {
		return maxLoginAttempts - 1
	}
	if count == 1 {
		_ = l.rdb.Expire(ctx, counterKey, loginWindow).Err()
	}

	if count >= int64(maxLoginAttempts) {
		_ = l.rdb.Set(ctx, l.lockKey(key), 1, lockDuration).Err()
		_ = l.rdb.Del(ctx, counterKey).Err()
		return 0
	}
	return maxLoginAttempts - int(count)
}

// Reset は失敗履歴とロックを消去します。
func (l *RedisAttemptLimiter) Reset(ctx context.Context, key string) {
	_ = l.rdb.Del(ctx, l.counterKey(key), l.lockKey(key)).Err()
}

func (l *RedisAttemptLimiter) counterKey(key string) string {
	return l.prefix + key
}

func (l *RedisAttemptLimiter) lockKey(key string) string {
	return l.prefix + key + ":lock"
}
