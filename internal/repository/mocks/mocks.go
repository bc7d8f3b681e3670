// Package mocks provides testify mocks of the repository interfaces.
package mocks

import (
	"context"
	"time"

	"ai-power-rankings/internal/entity"
	"ai-power-rankings/internal/repository"

	"github.com/stretchr/testify/mock"
)

var (
	_ repository.ToolRepository                 = (*ToolRepository)(nil)
	_ repository.NewsRepository                 = (*NewsRepository)(nil)
	_ repository.RankingRepository              = (*RankingRepository)(nil)
	_ repository.JobRepository                  = (*JobRepository)(nil)
	_ repository.TaskScheduleRepository         = (*TaskScheduleRepository)(nil)
	_ repository.TaskExecutionHistoryRepository = (*TaskExecutionHistoryRepository)(nil)
)

func errAt(args mock.Arguments, i int) error {
	if err := args.Get(i); err != nil {
		return err.(error)
	}
	return nil
}

// ToolRepository is a mock of repository.ToolRepository.
type ToolRepository struct{ mock.Mock }

func (m *ToolRepository) FindAll(ctx context.Context) ([]entity.Tool, error) {
	args := m.Called(ctx)
	tools, _ := args.Get(0).([]entity.Tool)
	return tools, errAt(args, 1)
}

func (m *ToolRepository) FindByStatus(ctx context.Context, status entity.ToolStatus) ([]entity.Tool, error) {
	args := m.Called(ctx, status)
	tools, _ := args.Get(0).([]entity.Tool)
	return tools, errAt(args, 1)
}

func (m *ToolRepository) FindByID(ctx context.Context, id string) (*entity.Tool, error) {
	args := m.Called(ctx, id)
	tool, _ := args.Get(0).(*entity.Tool)
	return tool, errAt(args, 1)
}

func (m *ToolRepository) FindBySlug(ctx context.Context, slug string) (*entity.Tool, error) {
	args := m.Called(ctx, slug)
	tool, _ := args.Get(0).(*entity.Tool)
	return tool, errAt(args, 1)
}

func (m *ToolRepository) FindByName(ctx context.Context, name string) (*entity.Tool, error) {
	args := m.Called(ctx, name)
	tool, _ := args.Get(0).(*entity.Tool)
	return tool, errAt(args, 1)
}

func (m *ToolRepository) Save(ctx context.Context, tool *entity.Tool) error {
	return m.Called(ctx, tool).Error(0)
}

func (m *ToolRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// NewsRepository is a mock of repository.NewsRepository.
type NewsRepository struct{ mock.Mock }

func (m *NewsRepository) FindAll(ctx context.Context) ([]entity.NewsArticle, error) {
	args := m.Called(ctx)
	articles, _ := args.Get(0).([]entity.NewsArticle)
	return articles, errAt(args, 1)
}

func (m *NewsRepository) FindByID(ctx context.Context, id string) (*entity.NewsArticle, error) {
	args := m.Called(ctx, id)
	article, _ := args.Get(0).(*entity.NewsArticle)
	return article, errAt(args, 1)
}

func (m *NewsRepository) FindByToolMention(ctx context.Context, mentions ...string) ([]entity.NewsArticle, error) {
	args := m.Called(ctx, mentions)
	articles, _ := args.Get(0).([]entity.NewsArticle)
	return articles, errAt(args, 1)
}

func (m *NewsRepository) FindPublishedBefore(ctx context.Context, cutoff time.Time) ([]entity.NewsArticle, error) {
	args := m.Called(ctx, cutoff)
	articles, _ := args.Get(0).([]entity.NewsArticle)
	return articles, errAt(args, 1)
}

func (m *NewsRepository) FindSince(ctx context.Context, since time.Time) ([]entity.NewsArticle, error) {
	args := m.Called(ctx, since)
	articles, _ := args.Get(0).([]entity.NewsArticle)
	return articles, errAt(args, 1)
}

func (m *NewsRepository) ExistingURLs(ctx context.Context, urls []string) (map[string]bool, error) {
	args := m.Called(ctx, urls)
	existing, _ := args.Get(0).(map[string]bool)
	return existing, errAt(args, 1)
}

func (m *NewsRepository) Create(ctx context.Context, articles []entity.NewsArticle) (int64, error) {
	args := m.Called(ctx, articles)
	return args.Get(0).(int64), errAt(args, 1)
}

func (m *NewsRepository) Update(ctx context.Context, article *entity.NewsArticle) error {
	return m.Called(ctx, article).Error(0)
}

func (m *NewsRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *NewsRepository) DeleteByBatch(ctx context.Context, batch string) (int64, error) {
	args := m.Called(ctx, batch)
	return args.Get(0).(int64), errAt(args, 1)
}

func (m *NewsRepository) RemoveToolMention(ctx context.Context, mentions ...string) (int64, error) {
	args := m.Called(ctx, mentions)
	return args.Get(0).(int64), errAt(args, 1)
}

// RankingRepository is a mock of repository.RankingRepository.
type RankingRepository struct{ mock.Mock }

func (m *RankingRepository) ListPeriods(ctx context.Context) ([]entity.RankingPeriod, error) {
	args := m.Called(ctx)
	periods, _ := args.Get(0).([]entity.RankingPeriod)
	return periods, errAt(args, 1)
}

func (m *RankingRepository) FindByPeriod(ctx context.Context, period string) (*entity.RankingPeriod, error) {
	args := m.Called(ctx, period)
	ranking, _ := args.Get(0).(*entity.RankingPeriod)
	return ranking, errAt(args, 1)
}

func (m *RankingRepository) FindCurrent(ctx context.Context) (*entity.RankingPeriod, error) {
	args := m.Called(ctx)
	ranking, _ := args.Get(0).(*entity.RankingPeriod)
	return ranking, errAt(args, 1)
}

func (m *RankingRepository) FindPrevious(ctx context.Context, period string) (*entity.RankingPeriod, error) {
	args := m.Called(ctx, period)
	ranking, _ := args.Get(0).(*entity.RankingPeriod)
	return ranking, errAt(args, 1)
}

func (m *RankingRepository) Save(ctx context.Context, ranking *entity.RankingPeriod) error {
	return m.Called(ctx, ranking).Error(0)
}

func (m *RankingRepository) SetCurrent(ctx context.Context, period string) error {
	return m.Called(ctx, period).Error(0)
}

func (m *RankingRepository) Delete(ctx context.Context, period string) error {
	return m.Called(ctx, period).Error(0)
}

func (m *RankingRepository) CountToolReferences(ctx context.Context, toolID string) (int64, error) {
	args := m.Called(ctx, toolID)
	return args.Get(0).(int64), errAt(args, 1)
}

// JobRepository is a mock of repository.JobRepository.
type JobRepository struct{ mock.Mock }

func (m *JobRepository) Create(ctx context.Context, job *entity.Job) error {
	return m.Called(ctx, job).Error(0)
}

func (m *JobRepository) FindByID(ctx context.Context, id uint) (*entity.Job, error) {
	args := m.Called(ctx, id)
	job, _ := args.Get(0).(*entity.Job)
	return job, errAt(args, 1)
}

func (m *JobRepository) FindByType(ctx context.Context, jobType entity.JobType) (*entity.Job, error) {
	args := m.Called(ctx, jobType)
	job, _ := args.Get(0).(*entity.Job)
	return job, errAt(args, 1)
}

func (m *JobRepository) FindAll(ctx context.Context) ([]entity.Job, error) {
	args := m.Called(ctx)
	jobs, _ := args.Get(0).([]entity.Job)
	return jobs, errAt(args, 1)
}

func (m *JobRepository) Update(ctx context.Context, job *entity.Job) error {
	return m.Called(ctx, job).Error(0)
}

func (m *JobRepository) FindDue(ctx context.Context) ([]entity.Job, error) {
	args := m.Called(ctx)
	jobs, _ := args.Get(0).([]entity.Job)
	return jobs, errAt(args, 1)
}

func (m *JobRepository) Delete(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

// TaskScheduleRepository is a mock of repository.TaskScheduleRepository.
type TaskScheduleRepository struct{ mock.Mock }

func (m *TaskScheduleRepository) FindByID(ctx context.Context, id uint) (*entity.TaskSchedule, error) {
	args := m.Called(ctx, id)
	schedule, _ := args.Get(0).(*entity.TaskSchedule)
	return schedule, errAt(args, 1)
}

func (m *TaskScheduleRepository) FindByJobID(ctx context.Context, jobID uint) ([]entity.TaskSchedule, error) {
	args := m.Called(ctx, jobID)
	schedules, _ := args.Get(0).([]entity.TaskSchedule)
	return schedules, errAt(args, 1)
}

func (m *TaskScheduleRepository) Update(ctx context.Context, schedule *entity.TaskSchedule) error {
	return m.Called(ctx, schedule).Error(0)
}

func (m *TaskScheduleRepository) MarkExecuted(ctx context.Context, id uint, executedAt, next time.Time) error {
	return m.Called(ctx, id, executedAt, next).Error(0)
}

// TaskExecutionHistoryRepository is a mock of repository.TaskExecutionHistoryRepository.
type TaskExecutionHistoryRepository struct{ mock.Mock }

func (m *TaskExecutionHistoryRepository) Create(ctx context.Context, history *entity.TaskExecutionHistory) error {
	return m.Called(ctx, history).Error(0)
}

func (m *TaskExecutionHistoryRepository) FindByID(ctx context.Context, id uint) (*entity.TaskExecutionHistory, error) {
	args := m.Called(ctx, id)
	history, _ := args.Get(0).(*entity.TaskExecutionHistory)
	return history, errAt(args, 1)
}

func (m *TaskExecutionHistoryRepository) FindRecent(ctx context.Context, limit int) ([]entity.TaskExecutionHistory, error) {
	args := m.Called(ctx, limit)
	histories, _ := args.Get(0).([]entity.TaskExecutionHistory)
	return histories, errAt(args, 1)
}

func (m *TaskExecutionHistoryRepository) FindAllByJobID(ctx context.Context, jobID uint) ([]entity.TaskExecutionHistory, error) {
	args := m.Called(ctx, jobID)
	histories, _ := args.Get(0).([]entity.TaskExecutionHistory)
	return histories, errAt(args, 1)
}

func (m *TaskExecutionHistoryRepository) Update(ctx context.Context, history *entity.TaskExecutionHistory) error {
	return m.Called(ctx, history).Error(0)
}
