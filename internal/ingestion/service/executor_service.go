package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ai-power-rankings/internal/entity"
	"ai-power-rankings/internal/ingestion/strategy"
	"ai-power-rankings/internal/repository"
	"ai-power-rankings/pkg/common"
	"ai-power-rankings/pkg/logger"
	"ai-power-rankings/pkg/utils"

	"github.com/redis/go-redis/v9"
)

// StreamReader is the part of the redis client used to consume tasks.
type StreamReader interface {
	XReadGroup(ctx context.Context, a *redis.XReadGroupArgs) *redis.XStreamSliceCmd
	XAck(ctx context.Context, stream, group string, ids ...string) *redis.IntCmd
}

// ExecutorService manages the execution of tasks.
type ExecutorService interface {
	ProcessTask(ctx context.Context)
}

// NewExecutorService creates a new ExecutorService.
func NewExecutorService(
	stream StreamReader,
	jobRepo repository.JobRepository,
	historyRepo repository.TaskExecutionHistoryRepository,
	readBlock time.Duration,
	log *logger.Logger,
	strategies []strategy.JobExecutionStrategy,
) ExecutorService {
	strategyMap := make(map[entity.JobType]strategy.JobExecutionStrategy)
	for _, s := range strategies {
		strategyMap[s.GetType()] = s
	}

	return &executorService{
		stream:             stream,
		jobRepo:            jobRepo,
		historyRepo:        historyRepo,
		readBlock:          readBlock,
		logger:             log,
		executorStrategies: strategyMap,
	}
}

type executorService struct {
	stream             StreamReader
	jobRepo            repository.JobRepository
	historyRepo        repository.TaskExecutionHistoryRepository
	readBlock          time.Duration
	logger             *logger.Logger
	executorStrategies map[entity.JobType]strategy.JobExecutionStrategy
}

// ProcessTask dequeues and executes a single task.
func (s *executorService) ProcessTask(ctx context.Context) {
	streams, err := s.stream.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    common.RedisStreamGroup,
		Consumer: common.RedisStreamConsumer,
		Streams:  []string{common.RedisStreamSchedulerTaskExecution, ">"},
		Count:    1,
		Block:    s.readBlock,
	}).Result()
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, redis.Nil) {
			return
		}
		s.logger.Error("Failed to read from stream", logger.ErrorField(err))
		return
	}

	if len(streams) == 0 || len(streams[0].Messages) == 0 {
		return
	}

	message := streams[0].Messages[0]
	defer s.ack(ctx, message.ID)

	taskData, ok := message.Values[common.RedisStreamPayloadField].(string)
	if !ok {
		s.logger.Error("Field 'payload' not found or not a string in stream message", logger.StringField("message_id", message.ID))
		return
	}

	var history entity.TaskExecutionHistory
	if err := json.Unmarshal([]byte(taskData), &history); err != nil {
		s.logger.Error("Failed to unmarshal task data", logger.ErrorField(err), logger.StringField("message_id", message.ID))
		return
	}

	jobLog := s.logger.With(logger.Field("job_id", history.JobID), logger.Field("history_id", history.ID))
	jobLog.Info("Processing job")

	job, err := s.jobRepo.FindByID(ctx, history.JobID)
	if err != nil {
		jobLog.Error("Failed to find job", logger.ErrorField(err))
		s.finish(ctx, &history, "", fmt.Errorf("failed to find job %d: %w", history.JobID, err))
		return
	}

	history.Status = entity.StatusRunning
	history.StartedAt = utils.TimeNow()
	if err := s.historyRepo.Update(ctx, &history); err != nil {
		jobLog.Error("Failed to mark task running", logger.ErrorField(err))
	}

	executionCtx, cancelExec := context.WithTimeout(ctx, time.Duration(job.Timeout)*time.Second)
	defer cancelExec()

	output, err := s.execute(executionCtx, job)
	s.finish(ctx, &history, output, err)
}

func (s *executorService) execute(ctx context.Context, job *entity.Job) (string, error) {
	st, ok := s.executorStrategies[job.Type]
	if !ok {
		return "", fmt.Errorf("no executor strategy found for task type: %s", job.Type)
	}
	start := time.Now()
	output, err := st.Execute(ctx, job)
	if err != nil {
		s.logger.Error("Job execution failed", logger.ErrorField(err), logger.Field("job_id", job.ID))
		return output, err
	}
	s.logger.Info("Job executed successfully", logger.Field("job_id", job.ID), logger.DurationField("duration", time.Since(start)))
	return output, nil
}

func (s *executorService) finish(ctx context.Context, history *entity.TaskExecutionHistory, output string, execErr error) {
	history.Status = entity.StatusCompleted
	if execErr != nil {
		history.Status = entity.StatusFailed
		history.ErrorMessage = sql.NullString{String: execErr.Error(), Valid: true}
	}
	if output != "" {
		history.Output = sql.NullString{String: output, Valid: true}
	}
	history.CompletedAt = sql.NullTime{Time: utils.TimeNow(), Valid: true}

	// the execution context may already be expired
	if err := s.historyRepo.Update(context.WithoutCancel(ctx), history); err != nil {
		s.logger.Error("Failed to update task history", logger.ErrorField(err), logger.Field("history_id", history.ID))
	}
	s.logger.Info("Job execution completed",
		logger.Field("job_id", history.JobID),
		logger.Field("history_id", history.ID),
		logger.StringField("status", string(history.Status)),
	)
}

func (s *executorService) ack(ctx context.Context, id string) {
	err := s.stream.XAck(context.WithoutCancel(ctx), common.RedisStreamSchedulerTaskExecution, common.RedisStreamGroup, id).Err()
	if err != nil {
		s.logger.Error("Failed to acknowledge message", logger.ErrorField(err), logger.StringField("message_id", id))
	}
}
