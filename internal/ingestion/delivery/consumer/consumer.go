package consumer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ai-power-rankings/internal/ingestion/config"
	"ai-power-rankings/internal/ingestion/service"
	"ai-power-rankings/pkg/common"
	"ai-power-rankings/pkg/logger"
	"ai-power-rankings/pkg/utils"
)

// RedisConsumer runs the task execution loop against the redis stream.
type RedisConsumer struct {
	cfg             *config.Config
	executorService service.ExecutorService
	logger          *logger.Logger
	stopChan        chan struct{}
	stopOnce        sync.Once
	wg              sync.WaitGroup
}

// NewRedisConsumer creates a new RedisConsumer.
func NewRedisConsumer(cfg *config.Config, executorService service.ExecutorService, log *logger.Logger) *RedisConsumer {
	return &RedisConsumer{
		cfg:             cfg,
		executorService: executorService,
		logger:          log,
		stopChan:        make(chan struct{}),
	}
}

// Start launches one handler per allowed concurrent task.
func (c *RedisConsumer) Start(ctx context.Context) {
	c.logger.Info("Redis consumer started", logger.IntField("workers", c.cfg.Ingestion.MaxConcurrentTasks))
	for i := 0; i < c.cfg.Ingestion.MaxConcurrentTasks; i++ {
		name := fmt.Sprintf("%s-%d", common.RedisStreamSchedulerTaskExecution, i)
		c.RegisterStreamHandler(ctx, c.executorService.ProcessTask, name, c.cfg.Ingestion.TaskExecutionTimeout)
	}
}

// RegisterStreamHandler calls fn in a loop until the consumer stops, bounding each call by timeout.
func (c *RedisConsumer) RegisterStreamHandler(ctx context.Context, fn func(ctx context.Context), name string, timeout time.Duration) {
	c.logger.Info("Registering stream handler", logger.StringField("handler", name))
	c.wg.Add(1)
	utils.GoSafe(c.logger, func() {
		defer c.wg.Done()
		for {
			select {
			case <-ctx.Done():
				c.logger.Info("Stream handler stopping due to context cancellation", logger.StringField("handler", name))
				return
			case <-c.stopChan:
				c.logger.Info("Stream handler stopping", logger.StringField("handler", name))
				return
			default:
				ctxTimeout, cancel := context.WithTimeout(ctx, timeout)
				fn(ctxTimeout)
				cancel()
			}
		}
	})
}

// Stop gracefully shuts down the consumer and waits for running tasks.
func (c *RedisConsumer) Stop() {
	c.stopOnce.Do(func() { close(c.stopChan) })
	c.wg.Wait()
	c.logger.Info("Redis consumer stopped")
}
