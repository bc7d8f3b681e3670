package repository

import (
	"context"

	"ai-power-rankings/internal/entity"
	"ai-power-rankings/pkg/utils"

	"gorm.io/gorm"
)

// JobRepository defines the interface for background job data operations.
type JobRepository interface {
	Create(ctx context.Context, job *entity.Job) error
	FindByID(ctx context.Context, id uint) (*entity.Job, error)
	FindByType(ctx context.Context, jobType entity.JobType) (*entity.Job, error)
	FindAll(ctx context.Context) ([]entity.Job, error)
	Update(ctx context.Context, job *entity.Job) error
	FindDue(ctx context.Context) ([]entity.Job, error)
	Delete(ctx context.Context, id uint) error
}

// NewJobRepository creates a new GORM-based job repository.
func NewJobRepository(db *gorm.DB) JobRepository {
	return &jobRepository{db: db}
}

type jobRepository struct {
	db *gorm.DB
}

// Create creates a job together with its schedules.
func (r *jobRepository) Create(ctx context.Context, job *entity.Job) error {
	return r.db.WithContext(ctx).Create(job).Error
}

// FindByID retrieves a job and its schedules.
func (r *jobRepository) FindByID(ctx context.Context, id uint) (*entity.Job, error) {
	var job entity.Job
	if err := r.db.WithContext(ctx).Preload("Schedules").First(&job, id).Error; err != nil {
		return nil, translate(err)
	}
	return &job, nil
}

// FindByType retrieves the oldest job of the given type.
func (r *jobRepository) FindByType(ctx context.Context, jobType entity.JobType) (*entity.Job, error) {
	var job entity.Job
	if err := r.db.WithContext(ctx).Where("type = ?", jobType).Order("id asc").First(&job).Error; err != nil {
		return nil, translate(err)
	}
	return &job, nil
}

// FindAll retrieves all jobs and their schedules.
func (r *jobRepository) FindAll(ctx context.Context) ([]entity.Job, error) {
	var jobs []entity.Job
	if err := r.db.WithContext(ctx).Preload("Schedules").Order("id asc").Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

// Update replaces a job and its schedules within a transaction.
func (r *jobRepository) Update(ctx context.Context, job *entity.Job) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("job_id = ?", job.ID).Delete(&entity.TaskSchedule{}).Error; err != nil {
			return err
		}
		return tx.Save(job).Error
	})
}

// FindDue finds jobs with at least one active schedule whose next run has passed.
// Only the active schedules are preloaded.
func (r *jobRepository) FindDue(ctx context.Context) ([]entity.Job, error) {
	var jobs []entity.Job
	err := r.db.WithContext(ctx).
		Preload("Schedules", "is_active = ?", true).
		Joins("JOIN task_schedules ts ON ts.job_id = jobs.id").
		Where("ts.is_active = ? AND (ts.next_execution IS NULL OR ts.next_execution <= ?)", true, utils.TimeNow()).
		Group("jobs.id").
		Find(&jobs).Error
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

// Delete removes a job with its schedules and execution history.
func (r *jobRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("job_id = ?", id).Delete(&entity.TaskExecutionHistory{}).Error; err != nil {
			return err
		}
		if err := tx.Where("job_id = ?", id).Delete(&entity.TaskSchedule{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&entity.Job{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
