package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"ai-power-rankings/internal/entity"
	"ai-power-rankings/internal/newsmetrics"
	"ai-power-rankings/pkg/config"
	"ai-power-rankings/pkg/logger"
	"ai-power-rankings/pkg/ratelimit"
	"ai-power-rankings/pkg/utils"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

var errEmptyResponse = errors.New("no content found in Gemini response")

// geminiAIRepository reads news articles with the Google Gemini API.
type geminiAIRepository struct {
	cfg            config.Gemini
	logger         *logger.Logger
	tokenLimiter   *ratelimit.TokenLimiter
	requestLimiter *rate.Limiter
	genAiClient    *genai.Client
}

// NewGeminiAIRepository creates a qualitative news analyzer backed by Gemini.
func NewGeminiAIRepository(cfg config.Gemini, log *logger.Logger, genAiClient *genai.Client) newsmetrics.QualitativeAnalyzer {
	return &geminiAIRepository{
		cfg:            cfg,
		logger:         log,
		requestLimiter: ratelimit.NewRequestLimiter(cfg.MaxRequestPerMinute),
		tokenLimiter:   ratelimit.NewTokenLimiter(cfg.MaxTokenPerMinute),
		genAiClient:    genAiClient,
	}
}

// NewGenAIClient creates the Gemini API client.
func NewGenAIClient(ctx context.Context, cfg config.Gemini) (*genai.Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return client, nil
}

// AnalyzeNews asks Gemini for a qualitative reading of an article about toolName.
func (r *geminiAIRepository) AnalyzeNews(ctx context.Context, article entity.NewsArticle, toolName string) (*newsmetrics.QualitativeMetrics, error) {
	prompt := BuildQualitativeNewsPrompt(article, toolName)

	text, err := r.executeGeminiAIRequest(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var result newsmetrics.QualitativeMetrics
	if err := json.Unmarshal([]byte(cleanJSON(text)), &result); err != nil {
		r.logger.Error("Failed to unmarshal qualitative metrics from Gemini response",
			logger.ErrorField(err),
			logger.StringField("article_id", article.ID),
			logger.StringField("response", utils.Truncate(text, 500)),
		)
		return nil, fmt.Errorf("failed to unmarshal qualitative metrics from Gemini response: %w", err)
	}
	return &result, nil
}

func (r *geminiAIRepository) executeGeminiAIRequest(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, "user"),
	}
	tokenResp, err := r.genAiClient.Models.CountTokens(ctx, r.cfg.Model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("failed to count tokens: %w", err)
	}

	r.logger.Debug("Gemini token count",
		logger.IntField("total_tokens", int(tokenResp.TotalTokens)),
		logger.IntField("remaining", r.tokenLimiter.GetRemaining()),
	)

	if err := r.tokenLimiter.Wait(ctx, int(tokenResp.TotalTokens)); err != nil {
		return "", fmt.Errorf("failed to wait for token limit: %w", err)
	}
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("failed to wait for request limit: %w", err)
	}

	if int(tokenResp.TotalTokens) > r.cfg.MaxTokenPerMinute/2 {
		r.logger.Warn("Token has exceeded 50% of the limit", logger.IntField("remaining", r.tokenLimiter.GetRemaining()))
	}

	start := time.Now()
	resp, err := r.genAiClient.Models.GenerateContent(ctx, r.cfg.Model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      utils.ToPointer(float32(0.2)),
	})
	if err != nil {
		r.logger.Error("Failed to send request to Gemini API", logger.ErrorField(err))
		return "", fmt.Errorf("failed to send request to Gemini API: %w", err)
	}
	r.logger.Debug("Gemini response received", logger.DurationField("elapsed", time.Since(start)))

	return responseText(resp)
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errEmptyResponse
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", errEmptyResponse
	}
	return sb.String(), nil
}

func cleanJSON(text string) string {
	return strings.Trim(strings.TrimSpace(text), "`json\n`")
}
