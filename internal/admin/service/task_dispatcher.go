package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"ai-power-rankings/internal/entity"
	"ai-power-rankings/internal/repository"
	"ai-power-rankings/pkg/common"
	"ai-power-rankings/pkg/logger"
	"ai-power-rankings/pkg/utils"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
)

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ParseCron parses a standard five field cron expression or a descriptor such as @daily.
func ParseCron(expr string) (cron.Schedule, error) {
	schedule, err := cronParser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}
	return schedule, nil
}

// StreamAdder is the part of the redis client used to enqueue tasks.
type StreamAdder interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// TaskDispatcher records a job execution and hands it to the ingestion worker.
type TaskDispatcher interface {
	Dispatch(ctx context.Context, jobID uint, scheduleID *uint) (*entity.TaskExecutionHistory, error)
}

// NewTaskDispatcher creates a dispatcher publishing to the task execution stream.
func NewTaskDispatcher(historyRepo repository.TaskExecutionHistoryRepository, stream StreamAdder, maxLen int64, log *logger.Logger) TaskDispatcher {
	return &taskDispatcher{
		historyRepo: historyRepo,
		stream:      stream,
		maxLen:      maxLen,
		logger:      log,
	}
}

type taskDispatcher struct {
	historyRepo repository.TaskExecutionHistoryRepository
	stream      StreamAdder
	maxLen      int64
	logger      *logger.Logger
}

// Dispatch creates a queued history entry and publishes it. When publishing fails the
// entry is marked failed and the error is returned.
func (d *taskDispatcher) Dispatch(ctx context.Context, jobID uint, scheduleID *uint) (*entity.TaskExecutionHistory, error) {
	history := &entity.TaskExecutionHistory{
		JobID:      jobID,
		ScheduleID: scheduleID,
		Status:     entity.StatusQueued,
		StartedAt:  utils.TimeNow(),
	}
	if err := d.historyRepo.Create(ctx, history); err != nil {
		return nil, fmt.Errorf("failed to create task history: %w", err)
	}

	payload, err := json.Marshal(history)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal task payload: %w", err)
	}

	err = d.stream.XAdd(ctx, &redis.XAddArgs{
		Stream: common.RedisStreamSchedulerTaskExecution,
		Values: map[string]interface{}{common.RedisStreamPayloadField: payload},
		MaxLen: d.maxLen,
		Approx: true,
	}).Err()
	if err != nil {
		history.Status = entity.StatusFailed
		history.CompletedAt = sql.NullTime{Time: utils.TimeNow(), Valid: true}
		history.ErrorMessage = sql.NullString{String: err.Error(), Valid: true}
		if errInner := d.historyRepo.Update(ctx, history); errInner != nil {
			d.logger.Error("Failed to update task history", logger.ErrorField(errInner), logger.Field("history_id", history.ID))
		}
		return nil, fmt.Errorf("failed to enqueue task: %w", err)
	}

	d.logger.Info("Task published successfully",
		logger.Field("history_id", history.ID),
		logger.Field("job_id", jobID),
	)
	return history, nil
}
