package repository

import (
	"context"
	"encoding/json"
	"errors"

	"ai-power-rankings/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RankingRepository defines the interface for ranking period data operations.
type RankingRepository interface {
	ListPeriods(ctx context.Context) ([]entity.RankingPeriod, error)
	FindByPeriod(ctx context.Context, period string) (*entity.RankingPeriod, error)
	FindCurrent(ctx context.Context) (*entity.RankingPeriod, error)
	FindPrevious(ctx context.Context, period string) (*entity.RankingPeriod, error)
	Save(ctx context.Context, ranking *entity.RankingPeriod) error
	SetCurrent(ctx context.Context, period string) error
	Delete(ctx context.Context, period string) error
	CountToolReferences(ctx context.Context, toolID string) (int64, error)
}

// NewRankingRepository creates a new GORM-based ranking repository.
func NewRankingRepository(db *gorm.DB) RankingRepository {
	return &rankingRepository{db: db}
}

type rankingRepository struct {
	db *gorm.DB
}

// ListPeriods retrieves every stored period, newest first.
func (r *rankingRepository) ListPeriods(ctx context.Context) ([]entity.RankingPeriod, error) {
	var periods []entity.RankingPeriod
	if err := r.db.WithContext(ctx).Order("period desc").Find(&periods).Error; err != nil {
		return nil, err
	}
	return periods, nil
}

// FindByPeriod retrieves the rankings stored for a period.
func (r *rankingRepository) FindByPeriod(ctx context.Context, period string) (*entity.RankingPeriod, error) {
	var ranking entity.RankingPeriod
	if err := r.db.WithContext(ctx).Where("period = ?", period).First(&ranking).Error; err != nil {
		return nil, translate(err)
	}
	return &ranking, nil
}

// FindCurrent retrieves the period flagged as current.
func (r *rankingRepository) FindCurrent(ctx context.Context) (*entity.RankingPeriod, error) {
	var ranking entity.RankingPeriod
	if err := r.db.WithContext(ctx).Where("is_current = ?", true).First(&ranking).Error; err != nil {
		return nil, translate(err)
	}
	return &ranking, nil
}

// FindPrevious retrieves the latest period strictly before the given one.
func (r *rankingRepository) FindPrevious(ctx context.Context, period string) (*entity.RankingPeriod, error) {
	var ranking entity.RankingPeriod
	err := r.db.WithContext(ctx).
		Where("period < ?", period).
		Order("period desc").
		First(&ranking).Error
	if err != nil {
		return nil, translate(err)
	}
	return &ranking, nil
}

// Save inserts a period or replaces the stored rankings of an existing one.
func (r *rankingRepository) Save(ctx context.Context, ranking *entity.RankingPeriod) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "period"}},
		DoUpdates: clause.AssignmentColumns([]string{"algorithm_version", "preview_date", "rankings", "updated_at"}),
	}).Create(ranking).Error
}

// SetCurrent flags exactly one period as current within a transaction.
func (r *rankingRepository) SetCurrent(ctx context.Context, period string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&entity.RankingPeriod{}).Where("period = ?", period).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
		if err := tx.Model(&entity.RankingPeriod{}).Where("is_current = ?", true).Update("is_current", false).Error; err != nil {
			return err
		}
		return tx.Model(&entity.RankingPeriod{}).Where("period = ?", period).Update("is_current", true).Error
	})
}

// ErrCurrentPeriod is returned when deleting the current period.
var ErrCurrentPeriod = errors.New("cannot delete the current ranking period")

// Delete removes a non-current period.
func (r *rankingRepository) Delete(ctx context.Context, period string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ranking entity.RankingPeriod
		if err := tx.Where("period = ?", period).First(&ranking).Error; err != nil {
			return translate(err)
		}
		if ranking.IsCurrent {
			return ErrCurrentPeriod
		}
		return tx.Where("period = ?", period).Delete(&entity.RankingPeriod{}).Error
	})
}

// CountToolReferences counts the periods whose rankings include the tool.
func (r *rankingRepository) CountToolReferences(ctx context.Context, toolID string) (int64, error) {
	filter, err := json.Marshal([]map[string]string{{"tool_id": toolID}})
	if err != nil {
		return 0, err
	}
	var count int64
	err = r.db.WithContext(ctx).
		Model(&entity.RankingPeriod{}).
		Where("rankings @> ?::jsonb", string(filter)).
		Count(&count).Error
	return count, err
}
