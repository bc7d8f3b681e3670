package strategy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"ai-power-rankings/internal/entity"
	"ai-power-rankings/internal/newsmetrics"
	"ai-power-rankings/internal/repository"
	"ai-power-rankings/pkg/logger"
	"ai-power-rankings/pkg/utils"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/errgroup"
)

const (
	defaultMaxArticlesPerFeed = 20
	defaultMaxArticleAgeDays  = 7
	defaultMaxConcurrent      = 4
	summaryLength             = 280
)

var defaultFeeds = []string{
	"https://techcrunch.com/category/artificial-intelligence/feed/",
	"https://venturebeat.com/category/ai/feed/",
	"https://www.theverge.com/rss/ai-artificial-intelligence/index.xml",
	"https://github.blog/feed/",
}

// FeedParser parses an RSS or Atom feed.
type FeedParser interface {
	ParseURLWithContext(feedURL string, ctx context.Context) (*gofeed.Feed, error)
}

// NewsIngestionPayload is the job payload of a news ingestion job.
type NewsIngestionPayload struct {
	Feeds              []string `json:"feeds"`
	MaxArticlesPerFeed int      `json:"max_articles_per_feed"`
	MaxArticleAgeDays  int      `json:"max_article_age_days"`
	MaxConcurrent      int      `json:"max_concurrent"`
	BlacklistedDomains []string `json:"blacklisted_domains"`
	RequireToolMention bool     `json:"require_tool_mention"`
}

func (p *NewsIngestionPayload) applyDefaults() {
	if len(p.Feeds) == 0 {
		p.Feeds = defaultFeeds
	}
	if p.MaxArticlesPerFeed <= 0 {
		p.MaxArticlesPerFeed = defaultMaxArticlesPerFeed
	}
	if p.MaxArticleAgeDays <= 0 {
		p.MaxArticleAgeDays = defaultMaxArticleAgeDays
	}
	if p.MaxConcurrent <= 0 {
		p.MaxConcurrent = defaultMaxConcurrent
	}
}

// FeedResult is the outcome of ingesting one feed.
type FeedResult struct {
	Feed     string `json:"feed"`
	Status   string `json:"status"`
	Items    int    `json:"items"`
	Fetched  int    `json:"fetched"`
	Created  int64  `json:"created"`
	Skipped  int    `json:"skipped"`
	ErrorMsg string `json:"error,omitempty"`
}

// NewsIngestionResult is the job output of a news ingestion run.
type NewsIngestionResult struct {
	BatchID string       `json:"batch_id"`
	Created int64        `json:"created"`
	Feeds   []FeedResult `json:"feeds"`
}

// NewsIngestionStrategy pulls RSS feeds and stores new articles that mention tracked tools.
type NewsIngestionStrategy struct {
	toolRepo repository.ToolRepository
	newsRepo repository.NewsRepository
	parser   FeedParser
	fetcher  ContentFetcher
	logger   *logger.Logger
}

// NewNewsIngestionStrategy creates a new NewsIngestionStrategy.
func NewNewsIngestionStrategy(
	toolRepo repository.ToolRepository,
	newsRepo repository.NewsRepository,
	parser FeedParser,
	fetcher ContentFetcher,
	log *logger.Logger,
) JobExecutionStrategy {
	return &NewsIngestionStrategy{
		toolRepo: toolRepo,
		newsRepo: newsRepo,
		parser:   parser,
		fetcher:  fetcher,
		logger:   log,
	}
}

// GetType returns the job type this strategy handles.
func (s *NewsIngestionStrategy) GetType() entity.JobType {
	return entity.JobTypeNewsIngestion
}

// Execute runs the news ingestion job.
func (s *NewsIngestionStrategy) Execute(ctx context.Context, job *entity.Job) (string, error) {
	var payload NewsIngestionPayload
	if len(job.Payload) > 0 {
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return StatusFailed, fmt.Errorf("failed to unmarshal news ingestion payload: %w", err)
		}
	}
	payload.applyDefaults()

	tools, err := s.toolRepo.FindByStatus(ctx, entity.ToolStatusActive)
	if err != nil {
		return StatusFailed, fmt.Errorf("failed to get active tools: %w", err)
	}

	now := utils.TimeNow()
	result := NewsIngestionResult{
		BatchID: fmt.Sprintf("rss-%d-%s", now.Unix(), uuid.NewString()[:8]),
		Feeds:   make([]FeedResult, len(payload.Feeds)),
	}

	cutoff := now.AddDate(0, 0, -payload.MaxArticleAgeDays)
	for i, feedURL := range payload.Feeds {
		if !utils.ShouldContinue(ctx, s.logger) {
			result.Feeds[i] = FeedResult{Feed: feedURL, Status: StatusSkipped, ErrorMsg: ctx.Err().Error()}
			continue
		}
		res := s.ingestFeed(ctx, feedURL, &payload, tools, cutoff, result.BatchID)
		result.Created += res.Created
		result.Feeds[i] = res
	}

	output, err := json.Marshal(result)
	if err != nil {
		return StatusFailed, fmt.Errorf("failed to marshal news ingestion result: %w", err)
	}

	failed := 0
	for _, r := range result.Feeds {
		if r.Status == StatusFailed {
			failed++
		}
	}
	if failed == len(result.Feeds) {
		return string(output), errors.New("all feeds failed")
	}

	s.logger.Info("News ingestion completed",
		logger.StringField("batch_id", result.BatchID),
		logger.Field("created", result.Created),
		logger.IntField("failed_feeds", failed),
	)
	return string(output), nil
}

func (s *NewsIngestionStrategy) ingestFeed(
	ctx context.Context,
	feedURL string,
	payload *NewsIngestionPayload,
	tools []entity.Tool,
	cutoff time.Time,
	batchID string,
) FeedResult {
	res := FeedResult{Feed: feedURL, Status: StatusSuccess}

	feed, err := s.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		s.logger.Error("Failed to parse feed", logger.StringField("feed", feedURL), logger.ErrorField(err))
		res.Status = StatusFailed
		res.ErrorMsg = err.Error()
		return res
	}

	items := s.filterItems(feed.Items, payload, cutoff)
	res.Items = len(items)
	res.Skipped = len(feed.Items) - len(items)
	if len(items) == 0 {
		return res
	}

	links := make([]string, len(items))
	for i, item := range items {
		links[i] = item.Link
	}
	existing, err := s.newsRepo.ExistingURLs(ctx, links)
	if err != nil {
		res.Status = StatusFailed
		res.ErrorMsg = fmt.Sprintf("failed to check existing articles: %v", err)
		return res
	}

	fresh := items[:0]
	for _, item := range items {
		if existing[item.Link] {
			res.Skipped++
			continue
		}
		fresh = append(fresh, item)
	}

	var (
		mu       sync.Mutex
		articles []entity.NewsArticle
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(payload.MaxConcurrent)
	for _, item := range fresh {
		item := item
		g.Go(func() error {
			article, ok := s.buildArticle(gctx, item, payload, tools, batchID)
			mu.Lock()
			defer mu.Unlock()
			if !ok {
				res.Skipped++
				return nil
			}
			res.Fetched++
			articles = append(articles, *article)
			return nil
		})
	}
	_ = g.Wait()

	if len(articles) == 0 {
		return res
	}
	sort.Slice(articles, func(i, j int) bool {
		return articles[i].PublishedAt.Before(articles[j].PublishedAt)
	})

	created, err := s.newsRepo.Create(ctx, articles)
	if err != nil {
		res.Status = StatusFailed
		res.ErrorMsg = fmt.Sprintf("failed to save articles: %v", err)
		return res
	}
	res.Created = created
	return res
}

func (s *NewsIngestionStrategy) filterItems(items []*gofeed.Item, payload *NewsIngestionPayload, cutoff time.Time) []*gofeed.Item {
	sorted := make([]*gofeed.Item, 0, len(items))
	for _, item := range items {
		if item == nil || strings.TrimSpace(item.Link) == "" || strings.TrimSpace(item.Title) == "" {
			continue
		}
		if item.PublishedParsed != nil && item.PublishedParsed.Before(cutoff) {
			continue
		}
		if isBlacklisted(item.Link, payload.BlacklistedDomains) {
			continue
		}
		sorted = append(sorted, item)
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].PublishedParsed, sorted[j].PublishedParsed
		if a == nil || b == nil {
			return a != nil
		}
		return a.After(*b)
	})
	if len(sorted) > payload.MaxArticlesPerFeed {
		sorted = sorted[:payload.MaxArticlesPerFeed]
	}
	return sorted
}

func (s *NewsIngestionStrategy) buildArticle(
	ctx context.Context,
	item *gofeed.Item,
	payload *NewsIngestionPayload,
	tools []entity.Tool,
	batchID string,
) (*entity.NewsArticle, bool) {
	content, err := s.fetcher.Fetch(ctx, item.Link)
	if err != nil {
		s.logger.Warn("Failed to fetch article content, using feed text",
			logger.StringField("url", item.Link),
			logger.ErrorField(err),
		)
		content = HTMLToText(firstNonEmpty(item.Content, item.Description))
	}
	if content == "" {
		return nil, false
	}

	mentions := newsmetrics.DetectToolMentions(tools, item.Title+" "+content)
	if payload.RequireToolMention && len(mentions) == 0 {
		return nil, false
	}

	publishedAt := utils.TimeNow()
	if item.PublishedParsed != nil {
		publishedAt = *item.PublishedParsed
	}

	link := item.Link
	id := uuid.NewString()
	article := &entity.NewsArticle{
		ID:             id,
		Slug:           utils.Slugify(item.Title) + "-" + id[:8],
		Title:          utils.SafeText(item.Title),
		Summary:        summarize(firstNonEmpty(HTMLToText(item.Description), content)),
		Content:        content,
		SourceURL:      &link,
		SourceName:     sourceName(link),
		PublishedAt:    publishedAt,
		Tags:           pq.StringArray(item.Categories),
		ToolMentions:   pq.StringArray(mentions),
		IngestionBatch: batchID,
		Status:         "active",
	}
	if article.Tags == nil {
		article.Tags = pq.StringArray{}
	}
	if len(item.Authors) > 0 && item.Authors[0] != nil {
		article.Author = item.Authors[0].Name
	}
	return article, true
}

func isBlacklisted(link string, domains []string) bool {
	host := sourceName(link)
	for _, d := range domains {
		d = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(d)), "www.")
		if d != "" && (host == d || strings.HasSuffix(host, "."+d)) {
			return true
		}
	}
	return false
}

func sourceName(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

func summarize(text string) string {
	text = utils.SafeText(text)
	if len([]rune(text)) <= summaryLength {
		return text
	}
	return utils.Truncate(text, summaryLength) + "..."
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
