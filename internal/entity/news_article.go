package entity

import (
	"strings"
	"time"

	"github.com/lib/pq"
)

// NewsArticle is an ingested news item about one or more tools.
type NewsArticle struct {
	ID              string         `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Slug            string         `gorm:"uniqueIndex;not null" json:"slug"`
	Title           string         `gorm:"not null" json:"title"`
	Summary         string         `json:"summary"`
	Content         string         `json:"content"`
	Author          string         `json:"author,omitempty"`
	SourceURL       *string        `gorm:"uniqueIndex" json:"source_url,omitempty"`
	SourceName      string         `json:"source_name"`
	PublishedAt     time.Time      `gorm:"not null;index" json:"published_date"`
	Tags            pq.StringArray `gorm:"type:text[]" json:"tags"`
	ToolMentions    pq.StringArray `gorm:"type:text[]" json:"tool_mentions"`
	Category        string         `json:"category,omitempty"`
	ImportanceScore *float64       `json:"importance_score,omitempty"`
	SentimentScore  *float64       `json:"sentiment_score,omitempty"`
	IngestionBatch  string         `gorm:"index" json:"ingestion_batch"`
	Status          string         `gorm:"not null;default:active" json:"status"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for the NewsArticle model.
func (NewsArticle) TableName() string {
	return "news_articles"
}

// MentionsTool reports whether the article references the tool by id, slug or name.
// Legacy rows store free-text names, newer rows store ids.
func (a NewsArticle) MentionsTool(t Tool) bool {
	for _, m := range a.ToolMentions {
		if m == t.ID || m == t.Slug || strings.EqualFold(m, t.Name) {
			return true
		}
	}
	return false
}
