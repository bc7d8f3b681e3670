package repository

import (
	"context"

	"ai-power-rankings/internal/entity"

	"gorm.io/gorm"
)

// ToolRepository defines the interface for tool data operations.
type ToolRepository interface {
	FindAll(ctx context.Context) ([]entity.Tool, error)
	FindByStatus(ctx context.Context, status entity.ToolStatus) ([]entity.Tool, error)
	FindByID(ctx context.Context, id string) (*entity.Tool, error)
	FindBySlug(ctx context.Context, slug string) (*entity.Tool, error)
	FindByName(ctx context.Context, name string) (*entity.Tool, error)
	Save(ctx context.Context, tool *entity.Tool) error
	Delete(ctx context.Context, id string) error
}

// NewToolRepository creates a new GORM-based tool repository.
func NewToolRepository(db *gorm.DB) ToolRepository {
	return &toolRepository{db: db}
}

type toolRepository struct {
	db *gorm.DB
}

// FindAll retrieves all tools ordered by name.
func (r *toolRepository) FindAll(ctx context.Context) ([]entity.Tool, error) {
	var tools []entity.Tool
	if err := r.db.WithContext(ctx).Order("name asc, id asc").Find(&tools).Error; err != nil {
		return nil, err
	}
	return tools, nil
}

// FindByStatus retrieves tools with the given status ordered by name.
func (r *toolRepository) FindByStatus(ctx context.Context, status entity.ToolStatus) ([]entity.Tool, error) {
	var tools []entity.Tool
	if err := r.db.WithContext(ctx).Where("status = ?", status).Order("name asc, id asc").Find(&tools).Error; err != nil {
		return nil, err
	}
	return tools, nil
}

// FindByID retrieves a tool by its ID.
func (r *toolRepository) FindByID(ctx context.Context, id string) (*entity.Tool, error) {
	var tool entity.Tool
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&tool).Error; err != nil {
		return nil, translate(err)
	}
	return &tool, nil
}

// FindBySlug retrieves a tool by its slug.
func (r *toolRepository) FindBySlug(ctx context.Context, slug string) (*entity.Tool, error) {
	var tool entity.Tool
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&tool).Error; err != nil {
		return nil, translate(err)
	}
	return &tool, nil
}

// FindByName retrieves a tool by case-insensitive name.
func (r *toolRepository) FindByName(ctx context.Context, name string) (*entity.Tool, error) {
	var tool entity.Tool
	if err := r.db.WithContext(ctx).Where("LOWER(name) = LOWER(?)", name).First(&tool).Error; err != nil {
		return nil, translate(err)
	}
	return &tool, nil
}

// Save creates or updates a tool.
func (r *toolRepository) Save(ctx context.Context, tool *entity.Tool) error {
	return r.db.WithContext(ctx).Save(tool).Error
}

// Delete removes a tool by its ID.
func (r *toolRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Tool{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
