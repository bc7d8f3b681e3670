package consumer

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"ai-power-rankings/internal/ingestion/config"
	"ai-power-rankings/pkg/logger"

	"github.com/stretchr/testify/assert"
)

type countingExecutor struct {
	calls int32
}

func (e *countingExecutor) ProcessTask(ctx context.Context) {
	atomic.AddInt32(&e.calls, 1)
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Millisecond):
	}
}

func TestRedisConsumer_StartStop(t *testing.T) {
	cfg := &config.Config{Ingestion: config.Ingestion{MaxConcurrentTasks: 2, TaskExecutionTimeout: time.Second}}
	exec := &countingExecutor{}
	c := NewRedisConsumer(cfg, exec, logger.NewNop())

	c.Start(context.Background())
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&exec.calls) >= 4 }, time.Second, 5*time.Millisecond)

	c.Stop()
	after := atomic.LoadInt32(&exec.calls)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, atomic.LoadInt32(&exec.calls))

	// second stop is a no-op
	c.Stop()
}

func TestRedisConsumer_StopsOnContextCancel(t *testing.T) {
	cfg := &config.Config{Ingestion: config.Ingestion{MaxConcurrentTasks: 1, TaskExecutionTimeout: time.Second}}
	c := NewRedisConsumer(cfg, &countingExecutor{}, logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	c.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("consumer did not stop after context cancellation")
	}
}
