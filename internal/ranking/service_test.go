package ranking

import (
	"context"
	"errors"
	"testing"
	"time"

	"ai-power-rankings/internal/entity"
	"ai-power-rankings/internal/newsmetrics"
	"ai-power-rankings/internal/repository"
	"ai-power-rankings/internal/repository/mocks"
	"ai-power-rankings/internal/scoring"
	"ai-power-rankings/pkg/logger"
	"ai-power-rankings/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

type fixture struct {
	tools    *mocks.ToolRepository
	news     *mocks.NewsRepository
	rankings *mocks.RankingRepository
	svc      Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	defaults, err := scoring.EmbeddedDefaults()
	require.NoError(t, err)

	f := &fixture{
		tools:    &mocks.ToolRepository{},
		news:     &mocks.NewsRepository{},
		rankings: &mocks.RankingRepository{},
	}
	log := logger.NewNop()
	f.svc = NewService(Config{AlgorithmVersion: scoring.VersionV74}, f.tools, f.news, f.rankings,
		defaults, newsmetrics.NewEnhancer(nil, log), log)
	return f
}

func strong() entity.Tool {
	return entity.Tool{
		ID:        "alpha",
		Slug:      "alpha",
		Name:      "Alpha Agent",
		Category:  entity.CategoryAutonomousAgent,
		Status:    entity.ToolStatusActive,
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Info: datatypes.NewJSONType(entity.ToolInfo{
			Metrics: entity.ToolInfoMetrics{
				SWEBenchScore:     utils.ToPointer(72.0),
				AgenticCapability: utils.ToPointer(9.5),
				EstimatedUsers:    utils.ToPointer(2_000_000.0),
				MonthlyARR:        utils.ToPointer(50_000_000.0),
				GitHubStars:       utils.ToPointer(60_000.0),
				BusinessSentiment: utils.ToPointer(0.9),
			},
		}),
	}
}

func weak() entity.Tool {
	launch := time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)
	return entity.Tool{
		ID:         "beta",
		Slug:       "beta",
		Name:       "Beta Helper",
		Category:   entity.CategoryGeneralAssistant,
		Status:     entity.ToolStatusActive,
		LaunchDate: &launch,
		CreatedAt:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Info: datatypes.NewJSONType(entity.ToolInfo{
			Metrics: entity.ToolInfoMetrics{
				SWEBenchScore:     utils.ToPointer(3.0),
				AgenticCapability: utils.ToPointer(1.0),
				EstimatedUsers:    utils.ToPointer(200.0),
				MonthlyARR:        utils.ToPointer(1_000.0),
				GitHubStars:       utils.ToPointer(10.0),
				BusinessSentiment: utils.ToPointer(0.1),
			},
		}),
	}
}

func previousPeriod() *entity.RankingPeriod {
	return &entity.RankingPeriod{
		Period:           "2025-06",
		AlgorithmVersion: scoring.VersionV74,
		Rankings: datatypes.NewJSONType([]entity.RankingEntry{
			{ToolID: "beta", ToolName: "Beta Helper", Position: 1, Score: 40},
			{ToolID: "gone", ToolName: "Gone Tool", Position: 2, Score: 30},
			{ToolID: "alpha", ToolName: "Alpha Agent", Position: 3, Score: 20},
		}),
	}
}

func TestBuild_PersistsRankingsWithMovement(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.rankings.On("FindPrevious", ctx, "2025-07").Return(previousPeriod(), nil)
	f.tools.On("FindByStatus", ctx, entity.ToolStatusActive).Return([]entity.Tool{weak(), strong()}, nil)
	f.news.On("FindAll", ctx).Return([]entity.NewsArticle{}, nil)
	f.rankings.On("Save", ctx, mock.AnythingOfType("*entity.RankingPeriod")).Return(nil)

	result, err := f.svc.Build(ctx, BuildRequest{Period: "2025-07"})
	require.NoError(t, err)

	assert.True(t, result.Persisted)
	assert.False(t, result.Ranking.IsCurrent)
	assert.Equal(t, "2025-06", result.PreviousPeriod)
	assert.Equal(t, scoring.VersionV74, result.Ranking.AlgorithmVersion)

	entries := result.Ranking.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "alpha", entries[0].ToolID)
	assert.Equal(t, 1, entries[0].Position)
	assert.Equal(t, "S", entries[0].Tier)
	assert.Greater(t, entries[0].Score, entries[1].Score)

	require.NotNil(t, entries[0].Movement)
	assert.Equal(t, entity.DirectionUp, entries[0].Movement.Direction)
	assert.Equal(t, 2, entries[0].Movement.Change)
	require.NotNil(t, entries[0].ChangeAnalysis)
	assert.NotEmpty(t, entries[0].ChangeAnalysis.PrimaryReason)

	assert.Equal(t, entity.DirectionDown, entries[1].Movement.Direction)

	assert.Equal(t, 2, result.Stats.TotalTools)
	assert.Equal(t, 1, result.Stats.MovedUp)
	assert.Equal(t, 1, result.Stats.MovedDown)
	assert.Equal(t, 1, result.Stats.Dropped)
	assert.Equal(t, entries[0].Score, result.Stats.HighestScore)
	assert.Equal(t, entries[1].Score, result.Stats.LowestScore)

	f.rankings.AssertExpectations(t)
	f.rankings.AssertNotCalled(t, "SetCurrent", mock.Anything, mock.Anything)
}

func TestBuild_SetCurrent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.rankings.On("FindPrevious", ctx, "2025-07").Return(nil, repository.ErrNotFound)
	f.tools.On("FindByStatus", ctx, entity.ToolStatusActive).Return([]entity.Tool{strong()}, nil)
	f.news.On("FindAll", ctx).Return([]entity.NewsArticle{}, nil)
	f.rankings.On("Save", ctx, mock.Anything).Return(nil)
	f.rankings.On("SetCurrent", ctx, "2025-07").Return(nil)

	result, err := f.svc.Build(ctx, BuildRequest{Period: "2025-07", SetCurrent: true})
	require.NoError(t, err)
	assert.True(t, result.Ranking.IsCurrent)
	assert.Equal(t, 1, result.Stats.NewEntries)
	assert.Empty(t, result.PreviousPeriod)
	f.rankings.AssertExpectations(t)
}

func TestBuild_DryRunDoesNotPersist(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.rankings.On("FindPrevious", ctx, "2025-07").Return(nil, repository.ErrNotFound)
	f.tools.On("FindByStatus", ctx, entity.ToolStatusActive).Return([]entity.Tool{strong(), weak()}, nil)
	f.news.On("FindAll", ctx).Return([]entity.NewsArticle{}, nil)

	result, err := f.svc.Build(ctx, BuildRequest{Period: "2025-07", DryRun: true})
	require.NoError(t, err)
	assert.False(t, result.Persisted)
	f.rankings.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestBuild_Deterministic(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.rankings.On("FindPrevious", ctx, "2025-07").Return(previousPeriod(), nil)
	f.tools.On("FindByStatus", ctx, entity.ToolStatusActive).Return([]entity.Tool{strong(), weak()}, nil)
	f.news.On("FindAll", ctx).Return([]entity.NewsArticle{}, nil)

	first, err := f.svc.Build(ctx, BuildRequest{Period: "2025-07", DryRun: true})
	require.NoError(t, err)
	second, err := f.svc.Build(ctx, BuildRequest{Period: "2025-07", DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, first.Ranking.Entries(), second.Ranking.Entries())
}

func TestBuild_InvalidInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Build(ctx, BuildRequest{Period: "July"})
	assert.ErrorIs(t, err, ErrInvalidPeriod)

	f.rankings.On("FindPrevious", ctx, "2025-07").Return(nil, repository.ErrNotFound)
	_, err = f.svc.Build(ctx, BuildRequest{Period: "2025-07", AlgorithmVersion: "v9"})
	assert.ErrorIs(t, err, scoring.ErrUnknownVersion)
}

func TestBuild_RepositoryFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.rankings.On("FindPrevious", ctx, "2025-07").Return(nil, repository.ErrNotFound)
	f.tools.On("FindByStatus", ctx, entity.ToolStatusActive).Return(nil, errors.New("connection refused"))

	_, err := f.svc.Build(ctx, BuildRequest{Period: "2025-07"})
	assert.ErrorContains(t, err, "failed to load active tools")
}

func TestPreview_ComparesWithPreviousPeriod(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.rankings.On("FindPrevious", ctx, "2025-07").Return(previousPeriod(), nil)
	f.tools.On("FindByStatus", ctx, entity.ToolStatusActive).Return([]entity.Tool{strong(), weak()}, nil)
	f.news.On("FindAll", ctx).Return([]entity.NewsArticle{}, nil)

	preview, err := f.svc.Preview(ctx, PreviewRequest{Period: "2025-07", CompareWith: "auto"})
	require.NoError(t, err)

	assert.Equal(t, "2025-06", preview.ComparisonPeriod)
	assert.False(t, preview.IsInitialRanking)
	assert.Equal(t, 2, preview.TotalTools)
	assert.Equal(t, 1, preview.DroppedEntries)
	require.Len(t, preview.RankingsComparison, 3)
	assert.Equal(t, MovementUp, preview.RankingsComparison[0].Movement)
	assert.Equal(t, 2, preview.RankingsComparison[0].PositionChange)
	assert.Equal(t, MovementDropped, preview.RankingsComparison[2].Movement)
	assert.Equal(t, 1, preview.Summary.ToolsMovedUp)
	assert.Equal(t, 1, preview.Summary.ToolsMovedDown)
	require.Len(t, preview.BiggestMovers.Up, 1)
	assert.Equal(t, "alpha", preview.BiggestMovers.Up[0].ToolID)
	assert.Len(t, preview.Top10Changes, 2)
	f.rankings.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestPreview_PreviewDateFiltersToolsAndNews(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cutoff := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	f.tools.On("FindByStatus", ctx, entity.ToolStatusActive).Return([]entity.Tool{strong(), weak()}, nil)
	f.news.On("FindPublishedBefore", ctx, cutoff).Return([]entity.NewsArticle{}, nil)

	preview, err := f.svc.Preview(ctx, PreviewRequest{Period: "2025-06", CompareWith: "none", PreviewDate: &cutoff})
	require.NoError(t, err)

	assert.True(t, preview.IsInitialRanking)
	require.Len(t, preview.Rankings, 1)
	assert.Equal(t, "alpha", preview.Rankings[0].ToolID)
	assert.Equal(t, 1, preview.NewEntries)
	f.news.AssertNotCalled(t, "FindAll", mock.Anything)
	f.rankings.AssertNotCalled(t, "FindPrevious", mock.Anything, mock.Anything)
}

func TestPeriodStart(t *testing.T) {
	got, err := PeriodStart("2025-07")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), got)

	got, err = PeriodStart("2025-07-15")
	require.NoError(t, err)
	assert.Equal(t, 15, got.Day())

	for _, bad := range []string{"", "2025", "2025-13", "07-2025", "2025-7"} {
		_, err := PeriodStart(bad)
		assert.ErrorIs(t, err, ErrInvalidPeriod, bad)
	}
}

func TestStatsFor(t *testing.T) {
	stats := StatsFor([]entity.RankingEntry{
		{ToolID: "a", Position: 1, Score: 9, Movement: &entity.Movement{Direction: entity.DirectionUp}},
		{ToolID: "b", Position: 2, Score: 6, Movement: &entity.Movement{Direction: entity.DirectionNew}},
		{ToolID: "c", Position: 3, Score: 4.5},
	}, 2)

	assert.Equal(t, 3, stats.TotalTools)
	assert.Equal(t, 2, stats.Dropped)
	assert.Equal(t, 9.0, stats.HighestScore)
	assert.Equal(t, 4.5, stats.LowestScore)
	assert.Equal(t, 6.5, stats.AverageScore)
	assert.Equal(t, 1, stats.MovedUp)
	assert.Equal(t, 1, stats.NewEntries)
	assert.Equal(t, 1, stats.Unchanged)

	assert.Equal(t, Stats{}, StatsFor(nil, 0))
}
