package ratelimit

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// TokenLimiter limits the number of LLM tokens spent per minute.
type TokenLimiter struct {
	limiter *rate.Limiter
	burst   int
}

// NewTokenLimiter creates a limiter allowing tokensPerMinute tokens, refilled continuously.
func NewTokenLimiter(tokensPerMinute int) *TokenLimiter {
	if tokensPerMinute <= 0 {
		return &TokenLimiter{limiter: rate.NewLimiter(rate.Inf, 0)}
	}
	return &TokenLimiter{
		limiter: rate.NewLimiter(rate.Limit(float64(tokensPerMinute)/60.0), tokensPerMinute),
		burst:   tokensPerMinute,
	}
}

// Wait blocks until n tokens are available or ctx is done.
func (t *TokenLimiter) Wait(ctx context.Context, n int) error {
	if t.limiter.Limit() == rate.Inf {
		return nil
	}
	if n > t.burst {
		return fmt.Errorf("request needs %d tokens, above the per-minute limit of %d", n, t.burst)
	}
	return t.limiter.WaitN(ctx, n)
}

// GetRemaining returns the tokens currently available.
func (t *TokenLimiter) GetRemaining() int {
	if t.limiter.Limit() == rate.Inf {
		return -1
	}
	return int(t.limiter.Tokens())
}

// NewRequestLimiter returns a limiter allowing perMinute requests, one at a time.
// A non-positive perMinute disables limiting.
func NewRequestLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
}
