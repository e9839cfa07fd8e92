// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Amesco Plus Contributors

// Package ratelimit counts attempts per key in fixed Redis windows.
package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"

	"github.com/ivanlelis-27/amesco-plus-be/internal/auth"
)

// Defaults for password reset throttling.
const (
	DefaultMaxAttempts = 5
	DefaultWindow      = 15 * time.Minute
	keyPrefix          = "amesco:throttle:"
)

// counter is the subset of redis.Cmdable used by Throttle.
type counter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	ExpireNX(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// Throttle allows at most max attempts per key within each window.
// The window starts at the first attempt for a key. Every attempt sets the
// expiry if the key has none, so a failed EXPIRE is repaired by the next
// attempt instead of leaving a counter that never resets.
type Throttle struct {
	client counter
	max    int64
	window time.Duration
}

var _ auth.ResetThrottle = (*Throttle)(nil)

// NewThrottle creates a Throttle. Non-positive limits fall back to the defaults.
func NewThrottle(client counter, maxAttempts int, window time.Duration) *Throttle {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Throttle{client: client, max: int64(maxAttempts), window: window}
}

// Allow records an attempt for key and reports whether it is within the limit.
func (t *Throttle) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := keyPrefix + key
	count, err := t.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, oops.Code("THROTTLE_INCR_FAILED").With("key", key).Wrap(err)
	}
	if err := t.client.ExpireNX(ctx, redisKey, t.window).Err(); err != nil {
		return false, oops.Code("THROTTLE_EXPIRE_FAILED").With("key", key).With("count", count).Wrap(err)
	}
	return count <= t.max, nil
}
