package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"ai-power-rankings/internal/admin/dto"
	"ai-power-rankings/internal/entity"
	"ai-power-rankings/internal/repository"
	"ai-power-rankings/pkg/logger"
	"ai-power-rankings/pkg/utils"

	"gorm.io/datatypes"
)

const (
	defaultJobTimeout      = 300
	defaultExecutionsLimit = 50
)

// JobService defines the interface for managing background jobs.
type JobService interface {
	CreateJob(ctx context.Context, req *dto.CreateJobRequest) (*dto.JobResponse, error)
	GetJobByID(ctx context.Context, id uint) (*dto.JobResponse, error)
	GetAllJobs(ctx context.Context) ([]*dto.JobResponse, error)
	UpdateJob(ctx context.Context, id uint, req *dto.UpdateJobRequest) (*dto.JobResponse, error)
	DeleteJob(ctx context.Context, id uint) error
	TriggerJob(ctx context.Context, id uint) (*dto.ExecutionHistoryResponse, error)
	TriggerByType(ctx context.Context, jobType entity.JobType) (*dto.ExecutionHistoryResponse, error)
	GetExecutions(ctx context.Context, jobID uint) ([]*dto.ExecutionHistoryResponse, error)
	GetRecentExecutions(ctx context.Context, limit int) ([]*dto.ExecutionHistoryResponse, error)
	BuildProgress(ctx context.Context) (*dto.BuildProgressResponse, error)
}

// NewJobService creates a new job service.
func NewJobService(jobRepo repository.JobRepository, historyRepo repository.TaskExecutionHistoryRepository, dispatcher TaskDispatcher, log *logger.Logger) JobService {
	return &jobService{
		jobRepo:     jobRepo,
		historyRepo: historyRepo,
		dispatcher:  dispatcher,
		logger:      log,
	}
}

type jobService struct {
	jobRepo     repository.JobRepository
	historyRepo repository.TaskExecutionHistoryRepository
	dispatcher  TaskDispatcher
	logger      *logger.Logger
}

// CreateJob validates and stores a new job. Schedules get their first run time computed up front.
func (s *jobService) CreateJob(ctx context.Context, req *dto.CreateJobRequest) (*dto.JobResponse, error) {
	job := &entity.Job{}
	if err := applyJobRequest(job, req); err != nil {
		return nil, err
	}

	if err := s.jobRepo.Create(ctx, job); err != nil {
		s.logger.Error("Failed to create job", logger.ErrorField(err), logger.StringField("name", job.Name))
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	s.logger.Info("Job created successfully", logger.Field("job_id", job.ID), logger.StringField("type", string(job.Type)))
	return mapToJobResponse(job), nil
}

// GetJobByID retrieves a job by its ID.
func (s *jobService) GetJobByID(ctx context.Context, id uint) (*dto.JobResponse, error) {
	job, err := s.jobRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find job %d: %w", id, err)
	}
	return mapToJobResponse(job), nil
}

// GetAllJobs retrieves all jobs.
func (s *jobService) GetAllJobs(ctx context.Context) ([]*dto.JobResponse, error) {
	jobs, err := s.jobRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to find jobs: %w", err)
	}

	jobResponses := make([]*dto.JobResponse, 0, len(jobs))
	for i := range jobs {
		jobResponses = append(jobResponses, mapToJobResponse(&jobs[i]))
	}
	return jobResponses, nil
}

// UpdateJob replaces a job's fields and schedules.
func (s *jobService) UpdateJob(ctx context.Context, id uint, req *dto.UpdateJobRequest) (*dto.JobResponse, error) {
	job, err := s.jobRepo.FindByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to find job for update", logger.ErrorField(err), logger.Field("job_id", id))
		return nil, fmt.Errorf("failed to find job %d: %w", id, err)
	}

	if err := applyJobRequest(job, req); err != nil {
		return nil, err
	}
	for i := range job.Schedules {
		job.Schedules[i].JobID = job.ID
	}

	if err := s.jobRepo.Update(ctx, job); err != nil {
		s.logger.Error("Failed to update job", logger.ErrorField(err), logger.Field("job_id", id))
		return nil, fmt.Errorf("failed to update job %d: %w", id, err)
	}

	s.logger.Info("Job updated successfully", logger.Field("job_id", id))
	return mapToJobResponse(job), nil
}

// DeleteJob deletes a job by its ID.
func (s *jobService) DeleteJob(ctx context.Context, id uint) error {
	if err := s.jobRepo.Delete(ctx, id); err != nil {
		s.logger.Error("Failed to delete job", logger.ErrorField(err), logger.Field("job_id", id))
		return fmt.Errorf("failed to delete job %d: %w", id, err)
	}
	s.logger.Info("Job deleted successfully", logger.Field("job_id", id))
	return nil
}

// TriggerJob enqueues an immediate, unscheduled execution of a job.
func (s *jobService) TriggerJob(ctx context.Context, id uint) (*dto.ExecutionHistoryResponse, error) {
	job, err := s.jobRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find job %d: %w", id, err)
	}
	return s.trigger(ctx, job)
}

// TriggerByType enqueues an immediate execution of the first job of the given type.
func (s *jobService) TriggerByType(ctx context.Context, jobType entity.JobType) (*dto.ExecutionHistoryResponse, error) {
	job, err := s.jobRepo.FindByType(ctx, jobType)
	if err != nil {
		return nil, fmt.Errorf("failed to find %s job: %w", jobType, err)
	}
	return s.trigger(ctx, job)
}

func (s *jobService) trigger(ctx context.Context, job *entity.Job) (*dto.ExecutionHistoryResponse, error) {
	history, err := s.dispatcher.Dispatch(ctx, job.ID, nil)
	if err != nil {
		s.logger.Error("Failed to trigger job", logger.ErrorField(err), logger.Field("job_id", job.ID))
		return nil, err
	}
	s.logger.Info("Job triggered manually", logger.Field("job_id", job.ID), logger.Field("history_id", history.ID))
	return mapToExecutionResponse(history), nil
}

// GetExecutions lists the executions of a job, newest first.
func (s *jobService) GetExecutions(ctx context.Context, jobID uint) ([]*dto.ExecutionHistoryResponse, error) {
	histories, err := s.historyRepo.FindAllByJobID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to find executions of job %d: %w", jobID, err)
	}
	return mapToExecutionResponses(histories), nil
}

// GetRecentExecutions lists the latest executions across all jobs.
func (s *jobService) GetRecentExecutions(ctx context.Context, limit int) ([]*dto.ExecutionHistoryResponse, error) {
	if limit <= 0 {
		limit = defaultExecutionsLimit
	}
	histories, err := s.historyRepo.FindRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to find recent executions: %w", err)
	}
	return mapToExecutionResponses(histories), nil
}

// BuildProgress reports the latest execution of the ranking build job. A running build's
// progress is its elapsed share of the job timeout, capped at 99.
func (s *jobService) BuildProgress(ctx context.Context) (*dto.BuildProgressResponse, error) {
	idle := &dto.BuildProgressResponse{Status: "idle", Message: "No ranking generation in progress"}

	job, err := s.jobRepo.FindByType(ctx, entity.JobTypeRankingBuild)
	if errors.Is(err, repository.ErrNotFound) {
		return idle, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find ranking build job: %w", err)
	}

	histories, err := s.historyRepo.FindAllByJobID(ctx, job.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to find executions of job %d: %w", job.ID, err)
	}
	if len(histories) == 0 {
		return idle, nil
	}

	latest := &histories[0]
	resp := &dto.BuildProgressResponse{LastExecution: mapToExecutionResponse(latest)}
	switch latest.Status {
	case entity.StatusQueued:
		resp.Status = string(entity.StatusQueued)
		resp.Message = "Ranking generation is queued"
	case entity.StatusRunning:
		resp.Status = string(entity.StatusRunning)
		resp.Progress = runningProgress(latest.StartedAt, time.Duration(job.Timeout)*time.Second)
		resp.Message = "Ranking generation in progress"
	default:
		resp.Status = idle.Status
		resp.Message = idle.Message
		if latest.Status == entity.StatusCompleted {
			resp.Progress = 100
		}
	}
	return resp, nil
}

func runningProgress(startedAt time.Time, timeout time.Duration) int {
	if timeout <= 0 {
		return 0
	}
	elapsed := utils.TimeNow().Sub(startedAt)
	pct := int(elapsed * 100 / timeout)
	switch {
	case pct < 0:
		return 0
	case pct > 99:
		return 99
	}
	return pct
}

func applyJobRequest(job *entity.Job, req *dto.CreateJobRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return invalidf("name is required")
	}
	jobType := entity.JobType(req.Type)
	if !jobType.Valid() {
		return invalidf("unknown job type %q", req.Type)
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = defaultJobTimeout
	}

	now := utils.TimeNow()
	schedules := make([]entity.TaskSchedule, 0, len(req.Schedules))
	for _, sDto := range req.Schedules {
		cronSchedule, err := ParseCron(sDto.CronExpression)
		if err != nil {
			return invalidf("%v", err)
		}
		schedules = append(schedules, entity.TaskSchedule{
			CronExpression: sDto.CronExpression,
			IsActive:       sDto.IsActive,
			NextExecution:  sql.NullTime{Time: cronSchedule.Next(now), Valid: true},
		})
	}

	payload := datatypes.JSON(req.Payload)
	if len(payload) == 0 {
		payload = datatypes.JSON("{}")
	}

	job.Name = req.Name
	job.Description = req.Description
	job.Type = jobType
	job.Payload = payload
	job.Timeout = timeout
	job.Schedules = schedules
	return nil
}

func mapToJobResponse(job *entity.Job) *dto.JobResponse {
	schedules := make([]dto.ScheduleResponseDTO, 0, len(job.Schedules))
	for _, schedule := range job.Schedules {
		schedules = append(schedules, dto.ScheduleResponseDTO{
			ID:             schedule.ID,
			CronExpression: schedule.CronExpression,
			IsActive:       schedule.IsActive,
			NextExecution:  schedule.NextExecution,
			LastExecution:  schedule.LastExecution,
		})
	}

	return &dto.JobResponse{
		ID:          job.ID,
		Name:        job.Name,
		Description: job.Description,
		Type:        string(job.Type),
		Payload:     json.RawMessage(job.Payload),
		Timeout:     job.Timeout,
		Schedules:   schedules,
		CreatedAt:   job.CreatedAt,
		UpdatedAt:   job.UpdatedAt,
	}
}

func mapToExecutionResponse(h *entity.TaskExecutionHistory) *dto.ExecutionHistoryResponse {
	resp := &dto.ExecutionHistoryResponse{
		ID:           h.ID,
		JobID:        h.JobID,
		ScheduleID:   h.ScheduleID,
		Status:       string(h.Status),
		StartedAt:    h.StartedAt,
		Output:       h.Output.String,
		ErrorMessage: h.ErrorMessage.String,
	}
	if h.CompletedAt.Valid {
		completed := h.CompletedAt.Time
		resp.CompletedAt = &completed
	}
	return resp
}

func mapToExecutionResponses(histories []entity.TaskExecutionHistory) []*dto.ExecutionHistoryResponse {
	out := make([]*dto.ExecutionHistoryResponse, 0, len(histories))
	for i := range histories {
		out = append(out, mapToExecutionResponse(&histories[i]))
	}
	return out
}
