package jina

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ai-power-rankings/pkg/logger"
	"ai-power-rankings/pkg/ratelimit"
	"ai-power-rankings/pkg/utils"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL    = "https://r.jina.ai"
	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 2
	DefaultRetryDelay = time.Second

	maxContentLength = 10000
	healthCheckURL   = "https://example.com"
)

var (
	ErrNotConfigured = errors.New("jina reader API key is not configured")
	ErrBlocked       = errors.New("jina reader blocked by source")
	ErrTimeout       = errors.New("jina reader request timed out")
)

// APIError is returned for non-OK responses other than 401/403.
type APIError struct {
	StatusCode int
	Status     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("jina reader API error (%d): %s", e.StatusCode, e.Status)
}

// Config configures a Client.
type Config struct {
	APIKey            string
	BaseURL           string
	Timeout           time.Duration
	MaxRetries        int
	RetryDelay        time.Duration
	RequestsPerMinute int
	CacheTTL          time.Duration
}

// Article is the extracted text and metadata of a page.
type Article struct {
	URL           string `json:"url"`
	Title         string `json:"title"`
	Content       string `json:"content"`
	Author        string `json:"author,omitempty"`
	PublishedDate string `json:"published_date,omitempty"`
	Description   string `json:"description,omitempty"`
	Source        string `json:"source"`
}

// Client fetches articles through the Jina Reader API.
type Client struct {
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      *cache.Cache
	logger     *logger.Logger
}

// NewClient creates a Client. Zero config values fall back to the defaults above.
func NewClient(cfg Config, log *logger.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}

	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{},
		limiter:    ratelimit.NewRequestLimiter(cfg.RequestsPerMinute),
		logger:     log,
	}
	if cfg.CacheTTL > 0 {
		c.cache = cache.New(cfg.CacheTTL, 2*cfg.CacheTTL)
	}
	return c
}

// IsAvailable reports whether an API key is configured.
func (c *Client) IsAvailable() bool {
	return c.cfg.APIKey != ""
}

// FetchArticle fetches and extracts the article at target.
// 401 and 403 responses are retried up to MaxRetries times with exponential backoff.
func (c *Client) FetchArticle(ctx context.Context, target string) (*Article, error) {
	article, err := c.fetchWithRetry(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch article with jina reader: %w", err)
	}
	return article, nil
}

// HealthCheck fetches a well-known page to verify the API key and connectivity.
func (c *Client) HealthCheck(ctx context.Context) error {
	_, err := c.FetchArticle(ctx, healthCheckURL)
	return err
}

func (c *Client) fetchWithRetry(ctx context.Context, target string) (*Article, error) {
	if !c.IsAvailable() {
		return nil, ErrNotConfigured
	}
	if c.cache != nil {
		if cached, ok := c.cache.Get(target); ok {
			return cached.(*Article), nil
		}
	}

	for attempt := 0; ; attempt++ {
		article, err := c.fetchOnce(ctx, target)
		if err == nil {
			if c.cache != nil {
				c.cache.SetDefault(target, article)
			}
			return article, nil
		}

		if !errors.Is(err, ErrBlocked) || attempt >= c.cfg.MaxRetries {
			return nil, err
		}

		delay := c.cfg.RetryDelay * time.Duration(1<<attempt)
		c.logger.Warn("Jina reader blocked, retrying",
			logger.StringField("url", target),
			logger.IntField("attempt", attempt+1),
			logger.DurationField("delay", delay),
		)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
}

func (c *Client) fetchOnce(ctx context.Context, target string) (*Article, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("failed to wait for request limit: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, c.cfg.BaseURL+"/"+target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Return-Format", "json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, fmt.Errorf("%w after %dms", ErrTimeout, c.cfg.Timeout.Milliseconds())
		}
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w (%d): %s", ErrBlocked, resp.StatusCode, http.StatusText(resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		return nil, &APIError{StatusCode: resp.StatusCode, Status: http.StatusText(resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var payload readerResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode response body: %w", err)
	}

	return payload.toArticle(target), nil
}

type readerResponse struct {
	Content       string          `json:"content"`
	Text          string          `json:"text"`
	Title         string          `json:"title"`
	Author        string          `json:"author"`
	Byline        string          `json:"byline"`
	PublishedDate string          `json:"publishedDate"`
	PublishedTime string          `json:"published_time"`
	DatePublished string          `json:"date_published"`
	Description   string          `json:"description"`
	Excerpt       string          `json:"excerpt"`
	SiteName      string          `json:"site_name"`
	Source        string          `json:"source"`
	Data          *readerResponse `json:"data"`
}

func (r *readerResponse) toArticle(target string) *Article {
	data := r.Data
	if data == nil {
		data = &readerResponse{}
	}
	pick := func(values ...string) string {
		for _, v := range values {
			if strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v)
			}
		}
		return ""
	}

	content := pick(r.Content, data.Content, r.Text, data.Text)
	article := &Article{
		URL:         target,
		Title:       pick(r.Title, data.Title),
		Content:     utils.Truncate(content, maxContentLength),
		Author:      pick(r.Author, r.Byline, data.Author, data.Byline),
		Description: pick(r.Description, r.Excerpt, data.Description, data.Excerpt),
		Source:      pick(r.SiteName, r.Source, data.SiteName, data.Source),
	}

	if raw := pick(r.PublishedDate, r.PublishedTime, r.DatePublished,
		data.PublishedDate, data.PublishedTime, data.DatePublished); raw != "" {
		if t, err := utils.ParseDate(raw); err == nil {
			article.PublishedDate = utils.FormatDate(t)
		}
	}

	if article.Source == "" {
		if u, err := url.Parse(target); err == nil {
			article.Source = strings.TrimPrefix(u.Hostname(), "www.")
		}
	}
	return article
}
