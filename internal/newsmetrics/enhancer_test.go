package newsmetrics

import (
	"context"
	"testing"
	"time"

	"ai-power-rankings/internal/entity"
	"ai-power-rankings/internal/scoring"
	"ai-power-rankings/pkg/logger"
	"ai-power-rankings/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestEnhancer_WithoutAnalyzer(t *testing.T) {
	cutoff := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	articles := []entity.NewsArticle{
		article("a", "Cursor hits 1 million users", "", cutoff.AddDate(0, 0, -2), "cursor"),
	}

	en := NewEnhancer(nil, logger.NewNop()).Enhance(context.Background(), cursor, articles, cutoff)
	require.NotNil(t, en.EstimatedUsers)
	assert.Equal(t, 1e6, *en.EstimatedUsers)
	require.NotNil(t, en.LastNewsDate)
	assert.Equal(t, cutoff.AddDate(0, 0, -2), *en.LastNewsDate)
	assert.Zero(t, en.ArticlesProcessed)
	assert.Equal(t, Adjustments{}, en.Adjustments)
}

func TestEnhancer_WithAnalyzer(t *testing.T) {
	cutoff := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	a := article("a", "Cursor ships agent", "", cutoff, "cursor")

	analyzer := new(mockAnalyzer)
	analyzer.On("AnalyzeNews", mock.Anything, a, "Cursor").Return(&QualitativeMetrics{
		DevelopmentActivity: DevelopmentActivity{ReleaseCadence: "steady", FeatureVelocity: 5},
	}, nil).Once()

	en := NewEnhancer(analyzer, logger.NewNop()).Enhance(context.Background(), cursor, []entity.NewsArticle{a}, cutoff)
	analyzer.AssertExpectations(t)
	assert.Equal(t, 1, en.ArticlesProcessed)
	assert.Equal(t, 0.5, en.Adjustments.Velocity)
}

func TestApply(t *testing.T) {
	last := time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)
	base := scoring.ToolMetrics{
		ToolID:           "tool-cursor",
		SWEBenchScore:    20,
		InnovationScore:  6.5,
		ReleaseFrequency: 14,
	}

	got := Apply(base, Enhanced{
		Extracted: Extracted{
			SWEBenchScore: utils.ToPointer(55.0),
			Funding:       utils.ToPointer(9e8),
		},
		Adjustments: Adjustments{
			Innovation: 1.5,
			Sentiment:  -0.4,
			Velocity:   1,
			Traction:   0.7,
			Technical:  0.2,
		},
		LastNewsDate: &last,
	})

	assert.Equal(t, 55.0, got.SWEBenchScore)
	assert.True(t, got.Real[scoring.MetricSWEBenchScore])
	assert.Equal(t, 9e8, got.Funding)
	assert.Equal(t, 8.0, got.InnovationScore)
	require.Len(t, got.Innovations, 1)
	assert.Equal(t, last, got.Innovations[0].Date)
	assert.InDelta(t, 0.3, got.BusinessSentiment, 1e-9)
	assert.Equal(t, 21.0, got.ReleaseFrequency)
	assert.Equal(t, scoring.NewsImpact{TechnicalBoost: 0.2, TractionBoost: 0.7}, got.NewsImpact)

	assert.Nil(t, base.Real)
	assert.Empty(t, base.Innovations)
}

func TestApply_Caps(t *testing.T) {
	got := Apply(scoring.ToolMetrics{InnovationScore: 9.5, ReleaseFrequency: 25, BusinessSentiment: 0.9},
		Enhanced{Adjustments: Adjustments{Innovation: 3, Sentiment: 2, Velocity: 2}})
	assert.Equal(t, 10.0, got.InnovationScore)
	assert.Equal(t, 1.0, got.BusinessSentiment)
	assert.Equal(t, 30.0, got.ReleaseFrequency)
	assert.Empty(t, got.Innovations)
}
