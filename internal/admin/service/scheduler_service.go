package service

import (
	"context"
	"time"

	"ai-power-rankings/internal/entity"
	"ai-power-rankings/internal/repository"
	"ai-power-rankings/pkg/logger"
	"ai-power-rankings/pkg/utils"
)

// SchedulerService defines the interface for the job scheduling loop.
type SchedulerService interface {
	Start(ctx context.Context)
	ProcessJobs(ctx context.Context)
}

// NewSchedulerService creates a new scheduler service.
func NewSchedulerService(jobRepo repository.JobRepository, scheduleRepo repository.TaskScheduleRepository, dispatcher TaskDispatcher, log *logger.Logger, pollingInterval time.Duration) SchedulerService {
	return &schedulerService{
		jobRepo:         jobRepo,
		scheduleRepo:    scheduleRepo,
		dispatcher:      dispatcher,
		logger:          log,
		pollingInterval: pollingInterval,
	}
}

type schedulerService struct {
	jobRepo         repository.JobRepository
	scheduleRepo    repository.TaskScheduleRepository
	dispatcher      TaskDispatcher
	logger          *logger.Logger
	pollingInterval time.Duration
}

// Start begins the periodic job processing loop.
func (s *schedulerService) Start(ctx context.Context) {
	ticker := time.NewTicker(s.pollingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Scheduler service stopping")
			return
		case <-ticker.C:
			s.ProcessJobs(ctx)
		}
	}
}

// ProcessJobs finds and enqueues the schedules that are due.
func (s *schedulerService) ProcessJobs(ctx context.Context) {
	jobs, err := s.jobRepo.FindDue(ctx)
	if err != nil {
		s.logger.Error("Failed to find jobs to schedule", logger.ErrorField(err))
		return
	}

	now := utils.TimeNow()
	for _, job := range jobs {
		for _, schedule := range job.Schedules {
			if !isDue(schedule, now) {
				continue
			}
			s.publishTask(ctx, job, schedule, now)
		}
	}
}

func isDue(schedule entity.TaskSchedule, now time.Time) bool {
	if !schedule.IsActive {
		return false
	}
	return !schedule.NextExecution.Valid || !schedule.NextExecution.Time.After(now)
}

func (s *schedulerService) publishTask(ctx context.Context, job entity.Job, schedule entity.TaskSchedule, now time.Time) {
	cronSchedule, err := ParseCron(schedule.CronExpression)
	if err != nil {
		s.logger.Error("Failed to parse cron expression", logger.ErrorField(err), logger.Field("schedule_id", schedule.ID))
		return
	}

	scheduleID := schedule.ID
	if _, err := s.dispatcher.Dispatch(ctx, job.ID, &scheduleID); err != nil {
		s.logger.Error("Failed to dispatch scheduled job",
			logger.ErrorField(err),
			logger.Field("job_id", job.ID),
			logger.Field("schedule_id", schedule.ID),
		)
		return
	}

	next := cronSchedule.Next(now)
	if err := s.scheduleRepo.MarkExecuted(ctx, schedule.ID, now, next); err != nil {
		s.logger.Error("Failed to update next execution time", logger.ErrorField(err), logger.Field("schedule_id", schedule.ID))
		return
	}

	s.logger.Info("Job scheduled",
		logger.StringField("job", job.Name),
		logger.StringField("type", string(job.Type)),
		logger.Field("next_execution", next),
	)
}
