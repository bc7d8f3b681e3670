package dto

import (
	"time"

	"ai-power-rankings/internal/newsmetrics"
)

// News actions.
const (
	NewsActionReports       = "reports"
	NewsActionStatus        = "status"
	NewsActionFetchArticle  = "fetch-article"
	NewsActionIngest        = "ingest"
	NewsActionManualIngest  = "manual-ingest"
	NewsActionRollback      = "rollback"
	NewsActionUpdateMetrics = "update-metrics"
)

// ManualIngestRequest adds a single article by hand.
type ManualIngestRequest struct {
	Title           string   `json:"title"`
	Content         string   `json:"content"`
	Author          string   `json:"author"`
	Summary         string   `json:"summary"`
	URL             string   `json:"url"`
	SourceURL       string   `json:"source_url"`
	PublishedAt     string   `json:"published_at"`
	Source          string   `json:"source"`
	ToolMentions    []string `json:"tool_mentions"`
	Tags            []string `json:"tags"`
	Category        string   `json:"category"`
	ImportanceScore *float64 `json:"importance_score"`
}

// RollbackRequest removes an ingestion batch.
type RollbackRequest struct {
	BatchID string `json:"batch_id"`
}

// ArticleMetrics are the editable scores of an article.
type ArticleMetrics struct {
	ImportanceScore *float64 `json:"importance_score"`
	SentimentScore  *float64 `json:"sentiment_score"`
}

// UpdateMetricsRequest edits the scores of an article.
type UpdateMetricsRequest struct {
	ArticleID string         `json:"article_id"`
	Metrics   ArticleMetrics `json:"metrics"`
}

// NewsActionRequest is the body of POST /news. Only the fields of the chosen action are read.
type NewsActionRequest struct {
	Action string `json:"action"`
	ManualIngestRequest
	RollbackRequest
	UpdateMetricsRequest
}

// ReportArticle is an article line of an ingestion report.
type ReportArticle struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Slug          string    `json:"slug"`
	PublishedDate time.Time `json:"published_date"`
	ToolMentions  int       `json:"tool_mentions"`
}

// IngestionReport groups the articles of one ingestion batch.
type IngestionReport struct {
	BatchID    string          `json:"batch_id"`
	Articles   []ReportArticle `json:"articles"`
	IngestedAt time.Time       `json:"ingested_at"`
	Source     string          `json:"source"`
}

// NewsReportsResponse lists recent ingestion batches, newest first.
type NewsReportsResponse struct {
	Reports       []IngestionReport `json:"reports"`
	TotalArticles int               `json:"total_articles"`
	PeriodDays    int               `json:"period_days"`
}

// NewsStatusResponse summarises the stored news.
type NewsStatusResponse struct {
	TotalArticles int        `json:"total_articles"`
	ThisMonth     int        `json:"this_month"`
	LastIngestion *time.Time `json:"last_ingestion"`
}

// ArticleRef identifies an article in responses.
type ArticleRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Slug  string `json:"slug,omitempty"`
}

// ManualIngestResponse reports a created article.
type ManualIngestResponse struct {
	Success bool       `json:"success"`
	Article ArticleRef `json:"article"`
}

// RollbackResponse reports a removed batch.
type RollbackResponse struct {
	Success bool   `json:"success"`
	BatchID string `json:"batch_id"`
	Deleted int64  `json:"deleted"`
}

// UpdateMetricsResponse reports updated article scores.
type UpdateMetricsResponse struct {
	Success         bool     `json:"success"`
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	ImportanceScore *float64 `json:"importance_score"`
	SentimentScore  *float64 `json:"sentiment_score"`
}

// IngestResponse reports a queued ingestion run.
type IngestResponse struct {
	Success     bool `json:"success"`
	Queued      bool `json:"queued"`
	JobID       uint `json:"job_id"`
	ExecutionID uint `json:"execution_id"`
}

// DeleteNewsResponse reports a delete by id or by batch.
type DeleteNewsResponse struct {
	Success bool        `json:"success"`
	Deleted *ArticleRef `json:"deleted,omitempty"`
	Batch   string      `json:"batch,omitempty"`
	Count   int64       `json:"count"`
}

// Analyze input types.
const (
	AnalyzeInputURL  = "url"
	AnalyzeInputText = "text"
)

// AnalyzeNewsRequest is the body of POST /news/analyze.
type AnalyzeNewsRequest struct {
	Input         string `json:"input"`
	Type          string `json:"type"`
	Title         string `json:"title"`
	SaveAsArticle bool   `json:"save_as_article"`
}

// AnalyzeNewsResponse is the metric analysis of an article.
type AnalyzeNewsResponse struct {
	Success      bool                        `json:"success"`
	Title        string                      `json:"title"`
	Source       string                      `json:"source,omitempty"`
	URL          string                      `json:"url,omitempty"`
	ToolMentions []string                    `json:"tool_mentions"`
	Metrics      newsmetrics.Extracted       `json:"metrics"`
	Analysis     newsmetrics.ArticleAnalysis `json:"analysis"`
	ArticleID    string                      `json:"article_id,omitempty"`
}
