package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"ai-power-rankings/internal/admin/dto"
	"ai-power-rankings/internal/entity"
	"ai-power-rankings/internal/newsmetrics"
	"ai-power-rankings/internal/repository"
	"ai-power-rankings/pkg/jina"
	"ai-power-rankings/pkg/logger"
	"ai-power-rankings/pkg/utils"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const (
	defaultReportDays = 30
	summaryLength     = 200

	manualBatch  = "manual"
	analyzeBatch = "analyze"
)

// ArticleReader fetches the text of an article URL.
type ArticleReader interface {
	FetchArticle(ctx context.Context, url string) (*jina.Article, error)
}

// NewsService implements the news maintenance actions of the admin API.
type NewsService interface {
	Reports(ctx context.Context, days int) (*dto.NewsReportsResponse, error)
	Status(ctx context.Context) (*dto.NewsStatusResponse, error)
	FetchArticle(ctx context.Context, url string) (*jina.Article, error)
	ManualIngest(ctx context.Context, req dto.ManualIngestRequest) (*dto.ManualIngestResponse, error)
	Rollback(ctx context.Context, batchID string) (*dto.RollbackResponse, error)
	UpdateMetrics(ctx context.Context, req dto.UpdateMetricsRequest) (*dto.UpdateMetricsResponse, error)
	Ingest(ctx context.Context) (*dto.IngestResponse, error)
	DeleteArticle(ctx context.Context, id string) (*dto.DeleteNewsResponse, error)
	DeleteBatch(ctx context.Context, batch string) (*dto.DeleteNewsResponse, error)
	Analyze(ctx context.Context, req dto.AnalyzeNewsRequest) (*dto.AnalyzeNewsResponse, error)
}

// NewNewsService creates a new news service.
func NewNewsService(newsRepo repository.NewsRepository, toolRepo repository.ToolRepository, jobService JobService, reader ArticleReader, log *logger.Logger) NewsService {
	return &newsService{
		newsRepo:   newsRepo,
		toolRepo:   toolRepo,
		jobService: jobService,
		reader:     reader,
		logger:     log,
	}
}

type newsService struct {
	newsRepo   repository.NewsRepository
	toolRepo   repository.ToolRepository
	jobService JobService
	reader     ArticleReader
	logger     *logger.Logger
}

// Reports groups the articles published in the last days by ingestion batch.
func (s *newsService) Reports(ctx context.Context, days int) (*dto.NewsReportsResponse, error) {
	if days <= 0 {
		days = defaultReportDays
	}
	since := utils.TimeNow().AddDate(0, 0, -days)
	articles, err := s.newsRepo.FindSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to find recent articles: %w", err)
	}

	batches := make(map[string]*dto.IngestionReport)
	for _, a := range articles {
		batchID := a.IngestionBatch
		if batchID == "" {
			batchID = manualBatch
		}
		report, ok := batches[batchID]
		if !ok {
			source := a.SourceName
			if source == "" {
				source = "unknown"
			}
			report = &dto.IngestionReport{BatchID: batchID, IngestedAt: a.CreatedAt, Source: source}
			batches[batchID] = report
		}
		if a.CreatedAt.After(report.IngestedAt) {
			report.IngestedAt = a.CreatedAt
		}
		report.Articles = append(report.Articles, dto.ReportArticle{
			ID:            a.ID,
			Title:         a.Title,
			Slug:          a.Slug,
			PublishedDate: a.PublishedAt,
			ToolMentions:  len(a.ToolMentions),
		})
	}

	reports := make([]dto.IngestionReport, 0, len(batches))
	for _, r := range batches {
		reports = append(reports, *r)
	}
	sort.Slice(reports, func(i, j int) bool {
		if !reports[i].IngestedAt.Equal(reports[j].IngestedAt) {
			return reports[i].IngestedAt.After(reports[j].IngestedAt)
		}
		return reports[i].BatchID < reports[j].BatchID
	})

	return &dto.NewsReportsResponse{
		Reports:       reports,
		TotalArticles: len(articles),
		PeriodDays:    days,
	}, nil
}

// Status counts the stored articles.
func (s *newsService) Status(ctx context.Context) (*dto.NewsStatusResponse, error) {
	articles, err := s.newsRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to find articles: %w", err)
	}

	now := utils.TimeNow()
	resp := &dto.NewsStatusResponse{TotalArticles: len(articles)}
	for _, a := range articles {
		if a.PublishedAt.Year() == now.Year() && a.PublishedAt.Month() == now.Month() {
			resp.ThisMonth++
		}
		if resp.LastIngestion == nil || a.CreatedAt.After(*resp.LastIngestion) {
			created := a.CreatedAt
			resp.LastIngestion = &created
		}
	}
	return resp, nil
}

// FetchArticle extracts an article through the reader.
func (s *newsService) FetchArticle(ctx context.Context, url string) (*jina.Article, error) {
	if strings.TrimSpace(url) == "" {
		return nil, invalidf("url parameter is required")
	}
	return s.reader.FetchArticle(ctx, url)
}

// ManualIngest stores an article entered by an administrator.
func (s *newsService) ManualIngest(ctx context.Context, req dto.ManualIngestRequest) (*dto.ManualIngestResponse, error) {
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Content) == "" {
		return nil, invalidf("title and content are required")
	}

	publishedAt := utils.TimeNow()
	if req.PublishedAt != "" {
		t, err := utils.ParseDate(req.PublishedAt)
		if err != nil {
			return nil, invalidf("published_at: %v", err)
		}
		publishedAt = t
	}

	tools, err := s.toolRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tools: %w", err)
	}
	mentions := newsmetrics.NormalizeMentions(tools, req.ToolMentions)
	if len(mentions) == 0 {
		mentions = newsmetrics.DetectToolMentions(tools, req.Title+" "+req.Content)
	}

	source := req.Source
	if source == "" {
		source = manualBatch
	}
	article := newArticle(req.Title, req.Content, firstNonEmpty(req.URL, req.SourceURL), source, publishedAt, mentions, manualBatch)
	article.Author = req.Author
	if req.Summary != "" {
		article.Summary = req.Summary
	}
	article.Tags = pq.StringArray(req.Tags)
	article.Category = req.Category
	article.ImportanceScore = req.ImportanceScore

	if err := s.create(ctx, article); err != nil {
		return nil, err
	}

	s.logger.Info("Article ingested manually", logger.StringField("article_id", article.ID), logger.IntField("tool_mentions", len(mentions)))
	return &dto.ManualIngestResponse{
		Success: true,
		Article: dto.ArticleRef{ID: article.ID, Title: article.Title, Slug: article.Slug},
	}, nil
}

// Rollback deletes every article of an ingestion batch.
func (s *newsService) Rollback(ctx context.Context, batchID string) (*dto.RollbackResponse, error) {
	if batchID == "" {
		return nil, invalidf("batch_id is required")
	}
	deleted, err := s.newsRepo.DeleteByBatch(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to rollback batch %s: %w", batchID, err)
	}
	if deleted == 0 {
		return nil, fmt.Errorf("no articles found for batch %s: %w", batchID, repository.ErrNotFound)
	}

	s.logger.Info("Ingestion batch rolled back", logger.StringField("batch_id", batchID), logger.Field("deleted", deleted))
	return &dto.RollbackResponse{Success: true, BatchID: batchID, Deleted: deleted}, nil
}

// UpdateMetrics changes the importance and sentiment scores of an article.
func (s *newsService) UpdateMetrics(ctx context.Context, req dto.UpdateMetricsRequest) (*dto.UpdateMetricsResponse, error) {
	if req.ArticleID == "" {
		return nil, invalidf("article_id is required")
	}
	article, err := s.newsRepo.FindByID(ctx, req.ArticleID)
	if err != nil {
		return nil, fmt.Errorf("article %s: %w", req.ArticleID, err)
	}

	if v := req.Metrics.ImportanceScore; v != nil {
		if *v < 0 || *v > 10 {
			return nil, invalidf("importance_score must be within 0..10")
		}
		article.ImportanceScore = v
	}
	if v := req.Metrics.SentimentScore; v != nil {
		if *v < -1 || *v > 1 {
			return nil, invalidf("sentiment_score must be within -1..1")
		}
		article.SentimentScore = v
	}
	if err := s.newsRepo.Update(ctx, article); err != nil {
		return nil, fmt.Errorf("failed to update article %s: %w", article.ID, err)
	}

	return &dto.UpdateMetricsResponse{
		Success:         true,
		ID:              article.ID,
		Title:           article.Title,
		ImportanceScore: article.ImportanceScore,
		SentimentScore:  article.SentimentScore,
	}, nil
}

// Ingest queues a run of the news ingestion job.
func (s *newsService) Ingest(ctx context.Context) (*dto.IngestResponse, error) {
	execution, err := s.jobService.TriggerByType(ctx, entity.JobTypeNewsIngestion)
	if err != nil {
		return nil, err
	}
	return &dto.IngestResponse{
		Success:     true,
		Queued:      true,
		JobID:       execution.JobID,
		ExecutionID: execution.ID,
	}, nil
}

// DeleteArticle deletes a single article.
func (s *newsService) DeleteArticle(ctx context.Context, id string) (*dto.DeleteNewsResponse, error) {
	article, err := s.newsRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("article %s: %w", id, err)
	}
	if err := s.newsRepo.Delete(ctx, id); err != nil {
		return nil, fmt.Errorf("failed to delete article %s: %w", id, err)
	}
	return &dto.DeleteNewsResponse{
		Success: true,
		Deleted: &dto.ArticleRef{ID: article.ID, Title: article.Title},
		Count:   1,
	}, nil
}

// DeleteBatch deletes every article of a batch. An unknown batch deletes nothing.
func (s *newsService) DeleteBatch(ctx context.Context, batch string) (*dto.DeleteNewsResponse, error) {
	deleted, err := s.newsRepo.DeleteByBatch(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("failed to delete batch %s: %w", batch, err)
	}
	return &dto.DeleteNewsResponse{Success: true, Batch: batch, Count: deleted}, nil
}

// Analyze reports the metric mentions and factor impacts of an article given as URL or text.
func (s *newsService) Analyze(ctx context.Context, req dto.AnalyzeNewsRequest) (*dto.AnalyzeNewsResponse, error) {
	if strings.TrimSpace(req.Input) == "" {
		return nil, invalidf("input is required")
	}

	resp := &dto.AnalyzeNewsResponse{Success: true, Title: req.Title}
	var content string
	switch req.Type {
	case dto.AnalyzeInputURL:
		article, err := s.reader.FetchArticle(ctx, req.Input)
		if err != nil {
			return nil, err
		}
		content = article.Content
		resp.URL = req.Input
		resp.Source = article.Source
		if resp.Title == "" {
			resp.Title = article.Title
		}
	case dto.AnalyzeInputText:
		content = req.Input
	default:
		return nil, invalidf("unknown input type %q", req.Type)
	}
	if resp.Title == "" {
		resp.Title = utils.Truncate(utils.SafeText(content), 80)
	}

	tools, err := s.toolRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tools: %w", err)
	}
	resp.ToolMentions = newsmetrics.DetectToolMentions(tools, resp.Title+" "+content)
	if resp.ToolMentions == nil {
		resp.ToolMentions = []string{}
	}
	resp.Metrics = newsmetrics.ExtractText(resp.Title + " " + content)
	resp.Analysis = newsmetrics.AnalyzeArticle(resp.Title, content)

	if req.SaveAsArticle {
		source := resp.Source
		if source == "" {
			source = analyzeBatch
		}
		article := newArticle(resp.Title, content, resp.URL, source, utils.TimeNow(), resp.ToolMentions, analyzeBatch)
		if err := s.create(ctx, article); err != nil {
			return nil, err
		}
		resp.ArticleID = article.ID
	}
	return resp, nil
}

func (s *newsService) create(ctx context.Context, article *entity.NewsArticle) error {
	created, err := s.newsRepo.Create(ctx, []entity.NewsArticle{*article})
	if err != nil {
		return fmt.Errorf("failed to create article: %w", err)
	}
	if created == 0 {
		return invalidf("an article with this source url already exists")
	}
	return nil
}

func newArticle(title, content, sourceURL, source string, publishedAt time.Time, mentions []string, batch string) *entity.NewsArticle {
	id := uuid.NewString()
	article := &entity.NewsArticle{
		ID:             id,
		Slug:           utils.Slugify(title) + "-" + id[:8],
		Title:          title,
		Summary:        summarize(content),
		Content:        content,
		SourceName:     source,
		PublishedAt:    publishedAt,
		Tags:           pq.StringArray{},
		ToolMentions:   pq.StringArray(mentions),
		IngestionBatch: batch,
		Status:         "active",
	}
	if sourceURL != "" {
		article.SourceURL = &sourceURL
	}
	return article
}

func summarize(content string) string {
	text := utils.SafeText(content)
	if len([]rune(text)) <= summaryLength {
		return text
	}
	return utils.Truncate(text, summaryLength) + "..."
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
