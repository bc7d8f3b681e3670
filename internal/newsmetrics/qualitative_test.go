package newsmetrics

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"ai-power-rankings/internal/entity"
	"ai-power-rankings/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAnalyzer struct {
	mock.Mock
}

func (m *mockAnalyzer) AnalyzeNews(ctx context.Context, article entity.NewsArticle, toolName string) (*QualitativeMetrics, error) {
	args := m.Called(ctx, article, toolName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*QualitativeMetrics), args.Error(1)
}

func TestToAdjustments(t *testing.T) {
	m := QualitativeMetrics{
		ProductLaunches: []ProductLaunch{
			{Significance: "breakthrough", Impact: 8},
			{Significance: "incremental", Impact: 4},
		},
		TechnicalMilestones: []TechnicalMilestone{
			{Category: "performance", Impact: 6},
			{Category: "scale", Impact: 4},
		},
		Partnerships: []Partnership{{Significance: 5}},
		Sentiment: Sentiment{
			Overall: 0.5,
			Aspects: SentimentAspects{Product: 0.4, Future: 0.6, Competition: 0.4},
		},
		DevelopmentActivity: DevelopmentActivity{ReleaseCadence: "accelerating", FeatureVelocity: 8},
		CompetitivePosition: CompetitivePosition{Positioning: "leader"},
	}

	adj := ToAdjustments(m)
	// launches (8*1 + 4*0.3)/10 = 0.92, milestones 10/10 = 1 -> 1.92*0.5
	assert.Equal(t, 0.96, adj.Innovation)
	// (1 + 0.4 + 0.6 + 0.2) / 4
	assert.Equal(t, 0.55, adj.Sentiment)
	assert.Equal(t, 1.2, adj.Velocity)
	assert.Equal(t, 0.6, adj.Traction)
	assert.Equal(t, 0.3, adj.Technical)

	unknown := ToAdjustments(QualitativeMetrics{
		DevelopmentActivity: DevelopmentActivity{ReleaseCadence: "unknown", FeatureVelocity: 10},
		Partnerships:        []Partnership{{Significance: 10}},
		CompetitivePosition: CompetitivePosition{Positioning: "unclear"},
	})
	assert.Equal(t, 0.8, unknown.Velocity)
	assert.Equal(t, 0.6, unknown.Traction)
}

func TestAggregateQualitative(t *testing.T) {
	cutoff := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	fresh := article("fresh", "t", "c", cutoff, "cursor")
	old := article("old", "t", "c", cutoff.AddDate(0, 0, -90), "cursor")
	broken := article("broken", "t", "c", cutoff.AddDate(0, 0, -1), "cursor")

	analyzer := new(mockAnalyzer)
	strong := &QualitativeMetrics{
		ProductLaunches:     []ProductLaunch{{Significance: "breakthrough", Impact: 10}, {Significance: "breakthrough", Impact: 10}},
		TechnicalMilestones: []TechnicalMilestone{{Category: "capability", Impact: 10}, {Category: "performance", Impact: 10}},
		Sentiment:           Sentiment{Overall: 1, Aspects: SentimentAspects{Product: 1, Future: 1, Competition: 1}},
		KeyEvents: []KeyEvent{
			{Event: "Series C", Impact: "positive", Significance: 9},
			{Event: "Minor hire", Impact: "neutral", Significance: 3},
		},
	}
	analyzer.On("AnalyzeNews", mock.Anything, fresh, "Cursor").Return(strong, nil)
	analyzer.On("AnalyzeNews", mock.Anything, old, "Cursor").Return(strong, nil)
	analyzer.On("AnalyzeNews", mock.Anything, broken, "Cursor").Return(nil, errors.New("rate limited"))

	impact := AggregateQualitative(context.Background(), analyzer, cursor,
		[]entity.NewsArticle{old, fresh, broken}, cutoff, logger.NewNop())

	analyzer.AssertExpectations(t)
	assert.Equal(t, 2, impact.ProcessedArticles)

	// per article: innovation 2, technical 1; old article decays by e^-1
	assert.InDelta(t, math.Min(3, 2+2*math.Exp(-1)), impact.Adjustments.Innovation, 1e-9)
	assert.Equal(t, 1.0, impact.Adjustments.Technical)
	assert.LessOrEqual(t, impact.Adjustments.Sentiment, 2.0)

	require.Len(t, impact.SignificantEvents, 2)
	assert.Equal(t, "2025-07-01", impact.SignificantEvents[0].Date)
	assert.Equal(t, "Series C", impact.SignificantEvents[0].Event)
}

func TestAggregateQualitative_NilAnalyzer(t *testing.T) {
	impact := AggregateQualitative(context.Background(), nil, cursor, nil, time.Now(), logger.NewNop())
	assert.Zero(t, impact.ProcessedArticles)
	assert.Empty(t, impact.SignificantEvents)
}
