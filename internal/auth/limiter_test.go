package auth

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestMemoryAttemptLimiterLocksAfterMaxFailures(t *testing.T) {
	limiter := NewMemoryAttemptLimiter()
	ctx := context.Background()

	if got := limiter.CheckLock(ctx, "1.2.3.4"); got != 0 {
		t.Fatalf("fresh key must not be locked, got %v", got)
	}

	for i := 0; i < maxLoginAttempts-1; i++ {
		remaining := limiter.RecordFailure(ctx, "1.2.3.4")
		if want := maxLoginAttempts - 1 - i; remaining != want {
			t.Fatalf("remaining after failure %d = %d, want %d", i+1, remaining, want)
		}
	}

	if remaining := limiter.RecordFailure(ctx, "1.2.3.4"); remaining != 0 {
		t.Fatalf("remaining at limit = %d, want 0", remaining)
	}
	if got := limiter.CheckLock(ctx, "1.2.3.4"); got <= 0 {
		t.Fatal("expected lock after reaching the limit")
	}

	// 別のキーには影響しない
	if got := limiter.CheckLock(ctx, "5.6.7.8"); got != 0 {
		t.Fatalf("unrelated key locked: %v", got)
	}
}

func TestMemoryAttemptLimiterReset(t *testing.T) {
	limiter := NewMemoryAttemptLimiter()
	ctx := context.Background()

	for i := 0; i < maxLoginAttempts; i++ {
		limiter.RecordFailure(ctx, "1.2.3.4")
	}
	limiter.Reset(ctx, "1.2.3.4")

	if got := limiter.CheckLock(ctx, "1.2.3.4"); got != 0 {
		t.Fatalf("lock survived reset: %v", got)
	}
	if remaining := limiter.RecordFailure(ctx, "1.2.3.4"); remaining != maxLoginAttempts-1 {
		t.Fatalf("counter survived reset: remaining = %d", remaining)
	}
}

func newRedisLimiterTest(t *testing.T) (*RedisAttemptLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	return NewRedisAttemptLimiter(rdb), mr
}

func TestRedisAttemptLimiterLocksAfterMaxFailures(t *testing.T) {
	limiter, _ := newRedisLimiterTest(t)
	ctx := context.Background()

	for i := 0; i < maxLoginAttempts-1; i++ {
		remaining := limiter.RecordFailure(ctx, "1.2.3.4")
		if want := maxLoginAttempts - 1 - i; remaining != want {
			t.Fatalf("remaining after failure %d = %d, want %d", i+1, remaining, want)
		}
		if got := limiter.CheckLock(ctx, "1.2.3.4"); got != 0 {
			t.Fatalf("locked before reaching the limit: %v", got)
		}
	}

	if remaining := limiter.RecordFailure(ctx, "1.2.3.4"); remaining != 0 {
		t.Fatalf("remaining at limit = %d, want 0", remaining)
	}
	if got := limiter.CheckLock(ctx, "1.2.3.4"); got <= 0 {
		t.Fatal("expected lock after reaching the limit")
	}
}

func TestRedisAttemptLimiterLockExpires(t *testing.T) {
	limiter, mr := newRedisLimiterTest(t)
	ctx := context.Background()

	for i := 0; i < maxLoginAttempts; i++ {
		limiter.RecordFailure(ctx, "1.2.3.4")
	}
	if got := limiter.CheckLock(ctx, "1.2.3.4"); got <= 0 {
		t.Fatal("expected lock")
	}

	mr.FastForward(lockDuration)

	if got := limiter.CheckLock(ctx, "1.2.3.4"); got != 0 {
		t.Fatalf("lock survived its duration: %v", got)
	}
}

func TestRedisAttemptLimiterReset(t *testing.T) {
	limiter, _ := newRedisLimiterTest(t)
	ctx := context.Background()

	for i := 0; i < maxLoginAttempts; i++ {
		limiter.RecordFailure(ctx, "1.2.3.4")
	}
	limiter.Reset(ctx, "1.2.3.4")

	if got := limiter.CheckLock(ctx, "1.2.3.4"); got != 0 {
		t.Fatalf("lock survived reset: %v", got)
	}
	if remaining := limiter.RecordFailure(ctx, "1.2.3.4"); remaining != maxLoginAttempts-1 {
		t.Fatalf("counter survived reset: remaining = %d", remaining)
	}
}

// Redis 障害時はログインをブロックしない
func TestRedisAttemptLimiterFailsOpen(t *testing.T) {
	limiter, mr := newRedisLimiterTest(t)
	ctx := context.Background()
	mr.Close()

	if got := limiter.CheckLock(ctx, "1.2.3.4"); got != 0 {
		t.Fatalf("CheckLock must fail open, got %v", got)
	}
	if remaining := limiter.RecordFailure(ctx, "1.2.3.4"); remaining <= 0 {
		t.Fatalf("RecordFailure must fail open, got %d", remaining)
	}
}
