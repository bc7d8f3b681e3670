package repository

import (
	"encoding/json"
	"testing"
	"time"

	"ai-power-rankings/internal/entity"
	"ai-power-rankings/internal/newsmetrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestBuildQualitativeNewsPrompt(t *testing.T) {
	article := entity.NewsArticle{
		Title:       "Cursor ships background agents",
		Summary:     "summary only",
		SourceName:  "TechCrunch",
		PublishedAt: time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
	}
	prompt := BuildQualitativeNewsPrompt(article, "Cursor")

	assert.Contains(t, prompt, `"Cursor"`)
	assert.Contains(t, prompt, "Cursor ships background agents")
	assert.Contains(t, prompt, "2025-06-02")
	assert.Contains(t, prompt, "summary only")
	assert.Contains(t, prompt, `"mentioned_competitors"`)
}

func TestResponseText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: "```json\n{\"sentiment\":"}, {Text: "{\"overall\":0.6}}\n```"}}},
		}},
	}
	text, err := responseText(resp)
	require.NoError(t, err)

	var metrics newsmetrics.QualitativeMetrics
	require.NoError(t, json.Unmarshal([]byte(cleanJSON(text)), &metrics))
	assert.InDelta(t, 0.6, metrics.Sentiment.Overall, 1e-9)
}

func TestResponseText_Empty(t *testing.T) {
	_, err := responseText(&genai.GenerateContentResponse{})
	assert.ErrorIs(t, err, errEmptyResponse)

	_, err = responseText(&genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []*genai.Part{{Text: "  "}}}}},
	})
	assert.ErrorIs(t, err, errEmptyResponse)
}
