package ratelimit

import (
	"context"
	"fmt"
	"strings"

	"github.com/hogarlink/hogar/internal/config"
	redis "github.com/redis/go-redis/v9"
)

const keyDevicePoll = "device:poll:%s"

// PollLimiter throttles embedded controller polls per user. It is
// optional: with no redis address configured the limiter is nil and every
// poll is allowed.
type PollLimiter struct {
	bucket *TokenBucket
	holder *config.DeviceConfigHolder
}

func NewPollLimiter(cfg config.Config, holder *config.DeviceConfigHolder) *PollLimiter {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.RedisPassword),
		DB:       cfg.RedisDB,
	})

	return &PollLimiter{
		bucket: NewTokenBucket(client),
		holder: holder,
	}
}

func (l *PollLimiter) Enabled() bool {
	return l != nil && l.bucket != nil
}

// AllowPoll checks the per-user poll budget. The rate and burst come from
// the hot-reloaded device config, so an operator can loosen the budget
// without a restart.
func (l *PollLimiter) AllowPoll(ctx context.Context, userID string) (Result, error) {
	if !l.Enabled() {
		return Result{Allowed: true}, nil
	}

	device := l.holder.Get()
	key := fmt.Sprintf(keyDevicePoll, strings.TrimSpace(userID))
	return l.bucket.Allow(ctx, key, device.PollRate, device.PollBurst)
}
