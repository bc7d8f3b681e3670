package strategy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ai-power-rankings/pkg/jina"
	"ai-power-rankings/pkg/utils"

	"github.com/PuerkitoBio/goquery"
	"github.com/mauidude/go-readability"
)

const maxPageBytes = 5 << 20

var errEmptyContent = errors.New("no readable content")

// ContentFetcher returns the readable text of an article URL.
type ContentFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// ArticleReader is the part of the Jina client used for fetching.
type ArticleReader interface {
	IsAvailable() bool
	FetchArticle(ctx context.Context, url string) (*jina.Article, error)
}

// NewJinaFetcher fetches article text through the Jina Reader.
func NewJinaFetcher(reader ArticleReader) ContentFetcher {
	return &jinaFetcher{reader: reader}
}

type jinaFetcher struct {
	reader ArticleReader
}

func (f *jinaFetcher) Fetch(ctx context.Context, url string) (string, error) {
	if !f.reader.IsAvailable() {
		return "", jina.ErrNotConfigured
	}
	article, err := f.reader.FetchArticle(ctx, url)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(article.Content) == "" {
		return "", errEmptyContent
	}
	return article.Content, nil
}

// ReadabilityFetcher downloads a page and extracts its main text.
type ReadabilityFetcher struct {
	client *http.Client
}

// NewReadabilityFetcher creates a ReadabilityFetcher with the given request timeout.
func NewReadabilityFetcher(timeout time.Duration) *ReadabilityFetcher {
	return &ReadabilityFetcher{client: &http.Client{Timeout: timeout}}
}

// Fetch downloads url and returns the text of its main content block.
func (f *ReadabilityFetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request for news item: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch news content: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch news content, status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	doc, err := readability.NewDocument(string(body))
	if err != nil {
		return "", fmt.Errorf("failed to parse news content: %w", err)
	}
	content := HTMLToText(doc.Content())
	if content == "" {
		return "", errEmptyContent
	}
	return content, nil
}

// ChainFetcher tries each fetcher in order and returns the first non-empty text.
type ChainFetcher []ContentFetcher

// Fetch implements ContentFetcher.
func (c ChainFetcher) Fetch(ctx context.Context, url string) (string, error) {
	var errs []error
	for _, f := range c {
		content, err := f.Fetch(ctx, url)
		if err == nil {
			return content, nil
		}
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
	}
	if len(errs) == 0 {
		return "", errEmptyContent
	}
	return "", errors.Join(errs...)
}

// HTMLToText strips markup from an HTML fragment and collapses whitespace.
func HTMLToText(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return utils.SafeText(fragment)
	}
	doc.Find("script,style,noscript").Remove()
	return utils.SafeText(doc.Text())
}
