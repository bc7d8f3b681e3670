package entity

import (
	"database/sql"
	"time"

	"gorm.io/datatypes"
)

// JobType selects the execution strategy of a job.
type JobType string

const (
	JobTypeNewsIngestion JobType = "news_ingestion"
	JobTypeRankingBuild  JobType = "ranking_build"
)

// Valid reports whether t is a known job type.
func (t JobType) Valid() bool {
	return t == JobTypeNewsIngestion || t == JobTypeRankingBuild
}

// Job is a unit of background work with optional cron schedules.
type Job struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"not null" json:"name"`
	Description string         `json:"description"`
	Type        JobType        `gorm:"not null" json:"type"`
	Payload     datatypes.JSON `gorm:"type:jsonb" json:"payload"`
	Timeout     int            `gorm:"not null;default:300" json:"timeout"`
	Schedules   []TaskSchedule `gorm:"foreignKey:JobID" json:"schedules"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for the Job model.
func (Job) TableName() string {
	return "jobs"
}

// TaskSchedule is a cron schedule attached to a job.
type TaskSchedule struct {
	ID             uint         `gorm:"primaryKey" json:"id"`
	JobID          uint         `gorm:"not null;index" json:"job_id"`
	CronExpression string       `gorm:"not null" json:"cron_expression"`
	IsActive       bool         `gorm:"not null;default:true" json:"is_active"`
	NextExecution  sql.NullTime `json:"next_execution"`
	LastExecution  sql.NullTime `json:"last_execution"`
	CreatedAt      time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for the TaskSchedule model.
func (TaskSchedule) TableName() string {
	return "task_schedules"
}

// ExecutionStatus is the state of a task execution.
type ExecutionStatus string

const (
	StatusQueued    ExecutionStatus = "queued"
	StatusRunning   ExecutionStatus = "running"
	StatusCompleted ExecutionStatus = "completed"
	StatusFailed    ExecutionStatus = "failed"
)

// TaskExecutionHistory records one execution of a job.
type TaskExecutionHistory struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	JobID        uint            `gorm:"not null;index" json:"job_id"`
	ScheduleID   *uint           `gorm:"index" json:"schedule_id,omitempty"`
	Status       ExecutionStatus `gorm:"not null" json:"status"`
	StartedAt    time.Time       `json:"started_at"`
	CompletedAt  sql.NullTime    `json:"completed_at"`
	Output       sql.NullString  `json:"output"`
	ErrorMessage sql.NullString  `json:"error_message"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for the TaskExecutionHistory model.
func (TaskExecutionHistory) TableName() string {
	return "task_execution_histories"
}
