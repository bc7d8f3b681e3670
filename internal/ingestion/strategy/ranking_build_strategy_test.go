package strategy

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"ai-power-rankings/internal/changes"
	"ai-power-rankings/internal/entity"
	"ai-power-rankings/internal/ranking"
	"ai-power-rankings/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

type mockRankingService struct {
	mock.Mock
}

func (m *mockRankingService) Build(ctx context.Context, req ranking.BuildRequest) (*ranking.BuildResult, error) {
	args := m.Called(ctx, req)
	result, _ := args.Get(0).(*ranking.BuildResult)
	return result, args.Error(1)
}

func (m *mockRankingService) Preview(ctx context.Context, req ranking.PreviewRequest) (*ranking.PreviewResult, error) {
	args := m.Called(ctx, req)
	result, _ := args.Get(0).(*ranking.PreviewResult)
	return result, args.Error(1)
}

type recordingNotifier struct {
	messages []string
	err      error
}

func (n *recordingNotifier) SendMessage(text string) error {
	n.messages = append(n.messages, text)
	return n.err
}

func buildResult() *ranking.BuildResult {
	entries := []entity.RankingEntry{{ToolID: "1", ToolName: "Cursor", Position: 1, Score: 78.5, Tier: "S"}}
	return &ranking.BuildResult{
		Ranking: &entity.RankingPeriod{
			Period:           "2025-06",
			AlgorithmVersion: "v7.4",
			Rankings:         datatypes.NewJSONType(entries),
		},
		Stats:        ranking.Stats{TotalTools: 1, AverageScore: 78.5, HighestScore: 78.5, LowestScore: 78.5},
		ChangeReport: changes.Report{Summary: "1 tools analyzed"},
		Persisted:    true,
	}
}

func TestRankingBuildStrategy_Execute(t *testing.T) {
	svc := new(mockRankingService)
	notifier := &recordingNotifier{}
	svc.On("Build", mock.Anything, ranking.BuildRequest{Period: "2025-06", SetCurrent: true}).Return(buildResult(), nil)

	s := NewRankingBuildStrategy(svc, notifier, 10, logger.NewNop())
	assert.Equal(t, entity.JobTypeRankingBuild, s.GetType())

	output, err := s.Execute(context.Background(), &entity.Job{Payload: datatypes.JSON(`{"period":"2025-06","set_current":true}`)})
	require.NoError(t, err)

	var out rankingBuildOutput
	require.NoError(t, json.Unmarshal([]byte(output), &out))
	assert.Equal(t, "2025-06", out.Period)
	assert.Equal(t, "v7.4", out.Version)
	assert.True(t, out.Persisted)
	assert.Equal(t, 1, out.Stats.TotalTools)
	assert.Equal(t, "1 tools analyzed", out.ChangeReport)

	require.NotEmpty(t, notifier.messages)
	assert.Contains(t, notifier.messages[0], "2025-06")
	svc.AssertExpectations(t)
}

func TestRankingBuildStrategy_DefaultsToCurrentPeriodWithoutNotify(t *testing.T) {
	svc := new(mockRankingService)
	notifier := &recordingNotifier{}
	svc.On("Build", mock.Anything, mock.MatchedBy(func(req ranking.BuildRequest) bool {
		_, err := ranking.PeriodStart(req.Period)
		return err == nil && req.DryRun
	})).Return(buildResult(), nil)

	s := NewRankingBuildStrategy(svc, notifier, 10, logger.NewNop())
	_, err := s.Execute(context.Background(), &entity.Job{Payload: datatypes.JSON(`{"dry_run":true,"notify":false}`)})
	require.NoError(t, err)
	assert.Empty(t, notifier.messages)
}

func TestRankingBuildStrategy_NotifyFailureDoesNotFailJob(t *testing.T) {
	svc := new(mockRankingService)
	notifier := &recordingNotifier{err: errors.New("telegram down")}
	svc.On("Build", mock.Anything, mock.Anything).Return(buildResult(), nil)

	s := NewRankingBuildStrategy(svc, notifier, 10, logger.NewNop())
	_, err := s.Execute(context.Background(), &entity.Job{})
	require.NoError(t, err)
	assert.Len(t, notifier.messages, 1)
}

func TestRankingBuildStrategy_BuildError(t *testing.T) {
	svc := new(mockRankingService)
	svc.On("Build", mock.Anything, mock.Anything).Return(nil, ranking.ErrInvalidPeriod)

	s := NewRankingBuildStrategy(svc, &recordingNotifier{}, 10, logger.NewNop())
	status, err := s.Execute(context.Background(), &entity.Job{Payload: datatypes.JSON(`{"period":"bad"}`)})
	require.Error(t, err)
	assert.ErrorIs(t, err, ranking.ErrInvalidPeriod)
	assert.Equal(t, StatusFailed, status)
}
