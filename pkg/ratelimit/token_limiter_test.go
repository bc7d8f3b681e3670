package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestTokenLimiter(t *testing.T) {
	l := NewTokenLimiter(600)
	assert.Equal(t, 600, l.GetRemaining())

	require.NoError(t, l.Wait(context.Background(), 100))
	assert.LessOrEqual(t, l.GetRemaining(), 501)

	err := l.Wait(context.Background(), 601)
	assert.Error(t, err)
}

func TestTokenLimiter_Disabled(t *testing.T) {
	l := NewTokenLimiter(0)
	require.NoError(t, l.Wait(context.Background(), 1_000_000))
	assert.Equal(t, -1, l.GetRemaining())
}

func TestTokenLimiter_ContextCancelled(t *testing.T) {
	l := NewTokenLimiter(60)
	require.NoError(t, l.Wait(context.Background(), 60))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.Error(t, l.Wait(ctx, 30))
}

func TestNewRequestLimiter(t *testing.T) {
	assert.Equal(t, rate.Inf, NewRequestLimiter(0).Limit())
	assert.InDelta(t, 1.0, float64(NewRequestLimiter(60).Limit()), 1e-9)
}
