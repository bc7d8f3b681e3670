package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"ai-power-rankings/internal/entity"
	"ai-power-rankings/internal/ingestion/strategy"
	"ai-power-rankings/internal/repository"
	"ai-power-rankings/internal/repository/mocks"
	"ai-power-rankings/pkg/common"
	"ai-power-rankings/pkg/logger"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeStream struct {
	messages []redis.XMessage
	readErr  error
	acked    []string
	readArgs *redis.XReadGroupArgs
}

func (f *fakeStream) XReadGroup(_ context.Context, a *redis.XReadGroupArgs) *redis.XStreamSliceCmd {
	f.readArgs = a
	if f.readErr != nil {
		return redis.NewXStreamSliceCmdResult(nil, f.readErr)
	}
	return redis.NewXStreamSliceCmdResult([]redis.XStream{{Stream: a.Streams[0], Messages: f.messages}}, nil)
}

func (f *fakeStream) XAck(ctx context.Context, _, _ string, ids ...string) *redis.IntCmd {
	f.acked = append(f.acked, ids...)
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(int64(len(ids)))
	return cmd
}

type stubStrategy struct {
	jobType entity.JobType
	output  string
	err     error
	called  bool
}

func (s *stubStrategy) Execute(context.Context, *entity.Job) (string, error) {
	s.called = true
	return s.output, s.err
}

func (s *stubStrategy) GetType() entity.JobType { return s.jobType }

func taskMessage(t *testing.T, history entity.TaskExecutionHistory) redis.XMessage {
	payload, err := json.Marshal(history)
	require.NoError(t, err)
	return redis.XMessage{ID: "1-0", Values: map[string]interface{}{common.RedisStreamPayloadField: string(payload)}}
}

func recordStatuses(historyRepo *mocks.TaskExecutionHistoryRepository) *[]entity.TaskExecutionHistory {
	var updates []entity.TaskExecutionHistory
	historyRepo.On("Update", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { updates = append(updates, *args.Get(1).(*entity.TaskExecutionHistory)) }).
		Return(nil)
	return &updates
}

func newExecutorForTest(stream StreamReader, strategies ...strategy.JobExecutionStrategy) (ExecutorService, *mocks.JobRepository, *mocks.TaskExecutionHistoryRepository) {
	jobRepo := new(mocks.JobRepository)
	historyRepo := new(mocks.TaskExecutionHistoryRepository)
	svc := NewExecutorService(stream, jobRepo, historyRepo, time.Second, logger.NewNop(), strategies)
	return svc, jobRepo, historyRepo
}

func TestProcessTask_Success(t *testing.T) {
	stream := &fakeStream{messages: []redis.XMessage{taskMessage(t, entity.TaskExecutionHistory{ID: 7, JobID: 3, Status: entity.StatusQueued})}}
	st := &stubStrategy{jobType: entity.JobTypeNewsIngestion, output: `{"created":2}`}
	svc, jobRepo, historyRepo := newExecutorForTest(stream, st)

	jobRepo.On("FindByID", mock.Anything, uint(3)).Return(&entity.Job{ID: 3, Type: entity.JobTypeNewsIngestion, Timeout: 60}, nil)
	updates := recordStatuses(historyRepo)

	svc.ProcessTask(context.Background())

	assert.True(t, st.called)
	require.Len(t, *updates, 2)
	assert.Equal(t, entity.StatusRunning, (*updates)[0].Status)
	final := (*updates)[1]
	assert.Equal(t, entity.StatusCompleted, final.Status)
	assert.Equal(t, uint(7), final.ID)
	assert.Equal(t, `{"created":2}`, final.Output.String)
	assert.True(t, final.CompletedAt.Valid)
	assert.False(t, final.ErrorMessage.Valid)

	assert.Equal(t, []string{"1-0"}, stream.acked)
	assert.Equal(t, common.RedisStreamGroup, stream.readArgs.Group)
	assert.Equal(t, []string{common.RedisStreamSchedulerTaskExecution, ">"}, stream.readArgs.Streams)
}

func TestProcessTask_StrategyFailure(t *testing.T) {
	stream := &fakeStream{messages: []redis.XMessage{taskMessage(t, entity.TaskExecutionHistory{ID: 7, JobID: 3})}}
	st := &stubStrategy{jobType: entity.JobTypeRankingBuild, output: strategy.StatusFailed, err: errors.New("build failed")}
	svc, jobRepo, historyRepo := newExecutorForTest(stream, st)

	jobRepo.On("FindByID", mock.Anything, uint(3)).Return(&entity.Job{ID: 3, Type: entity.JobTypeRankingBuild, Timeout: 60}, nil)
	updates := recordStatuses(historyRepo)

	svc.ProcessTask(context.Background())

	final := (*updates)[len(*updates)-1]
	assert.Equal(t, entity.StatusFailed, final.Status)
	assert.Equal(t, "build failed", final.ErrorMessage.String)
	assert.Equal(t, []string{"1-0"}, stream.acked)
}

func TestProcessTask_UnknownStrategy(t *testing.T) {
	stream := &fakeStream{messages: []redis.XMessage{taskMessage(t, entity.TaskExecutionHistory{ID: 7, JobID: 3})}}
	svc, jobRepo, historyRepo := newExecutorForTest(stream)

	jobRepo.On("FindByID", mock.Anything, uint(3)).Return(&entity.Job{ID: 3, Type: "unknown", Timeout: 60}, nil)
	updates := recordStatuses(historyRepo)

	svc.ProcessTask(context.Background())

	final := (*updates)[len(*updates)-1]
	assert.Equal(t, entity.StatusFailed, final.Status)
	assert.Contains(t, final.ErrorMessage.String, "no executor strategy found")
}

func TestProcessTask_JobNotFound(t *testing.T) {
	stream := &fakeStream{messages: []redis.XMessage{taskMessage(t, entity.TaskExecutionHistory{ID: 7, JobID: 3})}}
	st := &stubStrategy{jobType: entity.JobTypeNewsIngestion}
	svc, jobRepo, historyRepo := newExecutorForTest(stream, st)

	jobRepo.On("FindByID", mock.Anything, uint(3)).Return(nil, repository.ErrNotFound)
	updates := recordStatuses(historyRepo)

	svc.ProcessTask(context.Background())

	assert.False(t, st.called)
	require.Len(t, *updates, 1)
	assert.Equal(t, entity.StatusFailed, (*updates)[0].Status)
	assert.Equal(t, []string{"1-0"}, stream.acked)
}

func TestProcessTask_MalformedMessageIsAcked(t *testing.T) {
	stream := &fakeStream{messages: []redis.XMessage{{ID: "2-0", Values: map[string]interface{}{common.RedisStreamPayloadField: "{not json"}}}}
	svc, jobRepo, historyRepo := newExecutorForTest(stream)

	svc.ProcessTask(context.Background())

	assert.Equal(t, []string{"2-0"}, stream.acked)
	jobRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	historyRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestProcessTask_EmptyOrErroredRead(t *testing.T) {
	for _, stream := range []*fakeStream{{}, {readErr: redis.Nil}, {readErr: errors.New("connection refused")}} {
		svc, jobRepo, _ := newExecutorForTest(stream)
		svc.ProcessTask(context.Background())
		assert.Empty(t, stream.acked)
		jobRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	}
}
