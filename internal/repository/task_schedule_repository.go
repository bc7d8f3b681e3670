package repository

import (
	"context"
	"database/sql"
	"time"

	"ai-power-rankings/internal/entity"

	"gorm.io/gorm"
)

// TaskScheduleRepository defines the interface for task schedule data operations.
type TaskScheduleRepository interface {
	FindByID(ctx context.Context, id uint) (*entity.TaskSchedule, error)
	FindByJobID(ctx context.Context, jobID uint) ([]entity.TaskSchedule, error)
	Update(ctx context.Context, schedule *entity.TaskSchedule) error
	MarkExecuted(ctx context.Context, id uint, executedAt, next time.Time) error
}

// NewTaskScheduleRepository creates a new GORM-based task schedule repository.
func NewTaskScheduleRepository(db *gorm.DB) TaskScheduleRepository {
	return &taskScheduleRepository{db: db}
}

type taskScheduleRepository struct {
	db *gorm.DB
}

// FindByID retrieves a task schedule by its ID.
func (r *taskScheduleRepository) FindByID(ctx context.Context, id uint) (*entity.TaskSchedule, error) {
	var schedule entity.TaskSchedule
	if err := r.db.WithContext(ctx).First(&schedule, id).Error; err != nil {
		return nil, translate(err)
	}
	return &schedule, nil
}

// FindByJobID retrieves every schedule of a job.
func (r *taskScheduleRepository) FindByJobID(ctx context.Context, jobID uint) ([]entity.TaskSchedule, error) {
	var schedules []entity.TaskSchedule
	if err := r.db.WithContext(ctx).Where("job_id = ?", jobID).Order("id asc").Find(&schedules).Error; err != nil {
		return nil, err
	}
	return schedules, nil
}

// Update saves a task schedule.
func (r *taskScheduleRepository) Update(ctx context.Context, schedule *entity.TaskSchedule) error {
	return r.db.WithContext(ctx).Save(schedule).Error
}

// MarkExecuted records the last run of a schedule and its next due time.
func (r *taskScheduleRepository) MarkExecuted(ctx context.Context, id uint, executedAt, next time.Time) error {
	return r.db.WithContext(ctx).
		Model(&entity.TaskSchedule{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"last_execution": sql.NullTime{Time: executedAt, Valid: true},
			"next_execution": sql.NullTime{Time: next, Valid: true},
		}).Error
}
