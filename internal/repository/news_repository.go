package repository

import (
	"context"
	"time"

	"ai-power-rankings/internal/entity"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NewsRepository defines the interface for news article data operations.
type NewsRepository interface {
	FindAll(ctx context.Context) ([]entity.NewsArticle, error)
	FindByID(ctx context.Context, id string) (*entity.NewsArticle, error)
	FindByToolMention(ctx context.Context, mentions ...string) ([]entity.NewsArticle, error)
	FindPublishedBefore(ctx context.Context, cutoff time.Time) ([]entity.NewsArticle, error)
	FindSince(ctx context.Context, since time.Time) ([]entity.NewsArticle, error)
	ExistingURLs(ctx context.Context, urls []string) (map[string]bool, error)
	Create(ctx context.Context, articles []entity.NewsArticle) (int64, error)
	Update(ctx context.Context, article *entity.NewsArticle) error
	Delete(ctx context.Context, id string) error
	DeleteByBatch(ctx context.Context, batch string) (int64, error)
	RemoveToolMention(ctx context.Context, mentions ...string) (int64, error)
}

// NewNewsRepository creates a new GORM-based news repository.
func NewNewsRepository(db *gorm.DB) NewsRepository {
	return &newsRepository{db: db}
}

type newsRepository struct {
	db *gorm.DB
}

// FindAll retrieves all articles, newest first.
func (r *newsRepository) FindAll(ctx context.Context) ([]entity.NewsArticle, error) {
	var articles []entity.NewsArticle
	if err := r.db.WithContext(ctx).Order("published_at desc, id asc").Find(&articles).Error; err != nil {
		return nil, err
	}
	return articles, nil
}

// FindByID retrieves an article by its ID.
func (r *newsRepository) FindByID(ctx context.Context, id string) (*entity.NewsArticle, error) {
	var article entity.NewsArticle
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&article).Error; err != nil {
		return nil, translate(err)
	}
	return &article, nil
}

// FindByToolMention retrieves articles whose tool mentions overlap any of mentions.
func (r *newsRepository) FindByToolMention(ctx context.Context, mentions ...string) ([]entity.NewsArticle, error) {
	var articles []entity.NewsArticle
	err := r.db.WithContext(ctx).
		Where("tool_mentions && ?", pq.StringArray(mentions)).
		Order("published_at desc, id asc").
		Find(&articles).Error
	if err != nil {
		return nil, err
	}
	return articles, nil
}

// FindPublishedBefore retrieves articles published on or before cutoff, newest first.
func (r *newsRepository) FindPublishedBefore(ctx context.Context, cutoff time.Time) ([]entity.NewsArticle, error) {
	var articles []entity.NewsArticle
	err := r.db.WithContext(ctx).
		Where("published_at <= ?", cutoff).
		Order("published_at desc, id asc").
		Find(&articles).Error
	if err != nil {
		return nil, err
	}
	return articles, nil
}

// FindSince retrieves articles created since the given time, newest first.
func (r *newsRepository) FindSince(ctx context.Context, since time.Time) ([]entity.NewsArticle, error) {
	var articles []entity.NewsArticle
	err := r.db.WithContext(ctx).
		Where("created_at >= ?", since).
		Order("created_at desc, id asc").
		Find(&articles).Error
	if err != nil {
		return nil, err
	}
	return articles, nil
}

// ExistingURLs reports which of urls are already stored.
func (r *newsRepository) ExistingURLs(ctx context.Context, urls []string) (map[string]bool, error) {
	existing := make(map[string]bool)
	if len(urls) == 0 {
		return existing, nil
	}
	var found []string
	err := r.db.WithContext(ctx).
		Model(&entity.NewsArticle{}).
		Where("source_url IN ?", urls).
		Pluck("source_url", &found).Error
	if err != nil {
		return nil, err
	}
	for _, u := range found {
		existing[u] = true
	}
	return existing, nil
}

// Create inserts articles, skipping any whose URL or slug already exists.
func (r *newsRepository) Create(ctx context.Context, articles []entity.NewsArticle) (int64, error) {
	if len(articles) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&articles)
	return res.RowsAffected, res.Error
}

// Update saves an existing article.
func (r *newsRepository) Update(ctx context.Context, article *entity.NewsArticle) error {
	return r.db.WithContext(ctx).Save(article).Error
}

// Delete removes an article by its ID.
func (r *newsRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.NewsArticle{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByBatch removes every article of an ingestion batch.
func (r *newsRepository) DeleteByBatch(ctx context.Context, batch string) (int64, error) {
	res := r.db.WithContext(ctx).Where("ingestion_batch = ?", batch).Delete(&entity.NewsArticle{})
	return res.RowsAffected, res.Error
}

// RemoveToolMention strips the given mentions from every article referencing them.
func (r *newsRepository) RemoveToolMention(ctx context.Context, mentions ...string) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range mentions {
			res := tx.Model(&entity.NewsArticle{}).
				Where("? = ANY(tool_mentions)", m).
				Update("tool_mentions", gorm.Expr("array_remove(tool_mentions, ?)", m))
			if res.Error != nil {
				return res.Error
			}
			total += res.RowsAffected
		}
		return nil
	})
	return total, err
}
