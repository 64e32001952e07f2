package service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimits bundles the per-action lockout windows.
type RateLimits struct {
	Login time.Duration
}

// CheckAndSetRateLimit takes a short-lived lock for key/action. A nil
// client disables limiting (no Redis configured).
func CheckAndSetRateLimit(ctx context.Context, rdb *redis.Client, key, action string, limit time.Duration) (bool, error) {
	if rdb == nil || limit <= 0 {
		return true, nil
	}

	lockKey := fmt.Sprintf("rate_limit:%s:%s", action, key)

	wasSet, err := rdb.SetNX(ctx, lockKey, "locked", limit).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit in redis: %w", err)
	}

	return wasSet, nil
}

// ClearRateLimit releases the lock early, e.g. after a successful login.
func ClearRateLimit(ctx context.Context, rdb *redis.Client, key, action string) error {
	if rdb == nil {
		return nil
	}
	lockKey := fmt.Sprintf("rate_limit:%s:%s", action, key)
	_, err := rdb.Del(ctx, lockKey).Result()
	return err
}
