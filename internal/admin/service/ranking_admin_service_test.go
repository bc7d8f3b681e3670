package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"ai-power-rankings/internal/admin/dto"
	"ai-power-rankings/internal/entity"
	"ai-power-rankings/internal/ranking"
	"ai-power-rankings/internal/repository"
	"ai-power-rankings/internal/repository/mocks"
	"ai-power-rankings/internal/scoring"
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

func testPeriod(period string, current bool, scores ...float64) entity.RankingPeriod {
	entries := make([]entity.RankingEntry, 0, len(scores))
	for i, s := range scores {
		entries = append(entries, entity.RankingEntry{
			ToolID:   period + "-tool-" + string(rune('a'+i)),
			ToolName: "Tool",
			Position: i + 1,
			Score:    s,
			Tier:     "A",
		})
	}
	return entity.RankingPeriod{
		Period:           period,
		AlgorithmVersion: scoring.DefaultVersion,
		IsCurrent:        current,
		Rankings:         datatypes.NewJSONType(entries),
	}
}

func newRankingAdminForTest(t *testing.T, ttl time.Duration) (RankingAdminService, *mockRankingService, *mocks.RankingRepository, string) {
	dir := t.TempDir()
	rankingSvc := new(mockRankingService)
	rankingRepo := new(mocks.RankingRepository)
	svc := NewRankingAdminService(rankingSvc, rankingRepo, repository.NewRankingFileStore(dir), "", ttl, logger.NewNop())
	return svc, rankingSvc, rankingRepo, dir
}

func TestRankingAdminService_Build_DefaultsVersion(t *testing.T) {
	svc, rankingSvc, _, _ := newRankingAdminForTest(t, 0)
	built := testPeriod("2025-06", true, 80, 70)
	rankingSvc.On("Build", mock.Anything, mock.MatchedBy(func(req ranking.BuildRequest) bool {
		return req.Period == "2025-06" && req.AlgorithmVersion == scoring.DefaultVersion &&
			req.PreviewDate != nil && req.PreviewDate.Day() == 15 && req.SetCurrent
	})).Return(&ranking.BuildResult{Ranking: &built, Persisted: true}, nil)

	resp, err := svc.Build(context.Background(), &dto.BuildRankingsRequest{
		Period:      "2025-06",
		PreviewDate: "2025-06-15",
		SetCurrent:  true,
	})
	require.NoError(t, err)
	assert.True(t, resp.IsCurrent)
	assert.True(t, resp.Persisted)
	assert.Len(t, resp.Rankings, 2)
	assert.NotNil(t, resp.Warnings)
}

func TestRankingAdminService_Build_Invalid(t *testing.T) {
	svc, _, _, _ := newRankingAdminForTest(t, 0)

	_, err := svc.Build(context.Background(), &dto.BuildRankingsRequest{})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = svc.Build(context.Background(), &dto.BuildRankingsRequest{Period: "2025-06", PreviewDate: "mid june"})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestRankingAdminService_Build_SuppliedDryRun(t *testing.T) {
	svc, rankingSvc, rankingRepo, _ := newRankingAdminForTest(t, 0)
	supplied := testPeriod("2025-06", false, 80, 80, 60).Entries()
	for i := range supplied {
		supplied[i].Tier = ""
	}

	resp, err := svc.Build(context.Background(), &dto.BuildRankingsRequest{
		Period:   "2025-06",
		DryRun:   true,
		Rankings: supplied,
	})
	require.NoError(t, err)
	assert.False(t, resp.Persisted)
	assert.Equal(t, scoring.DefaultVersion, resp.AlgorithmVersion)
	assert.Len(t, resp.Warnings, 1)
	assert.Equal(t, "S", resp.Rankings[2].Tier)

	rankingRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	rankingSvc.AssertNotCalled(t, "Build", mock.Anything, mock.Anything)

	_, err = svc.Build(context.Background(), &dto.BuildRankingsRequest{Period: "June", Rankings: supplied})
	assert.ErrorIs(t, err, ranking.ErrInvalidPeriod)
}

func TestRankingAdminService_ListPeriods(t *testing.T) {
	svc, _, rankingRepo, _ := newRankingAdminForTest(t, 0)
	rankingRepo.On("ListPeriods", mock.Anything).Return([]entity.RankingPeriod{
		testPeriod("2025-06", true, 80, 70, 60),
		testPeriod("2025-05", false, 75),
	}, nil)

	resp, err := svc.ListPeriods(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, 3, resp.Periods[0].ToolCount)
	assert.True(t, resp.Periods[0].IsCurrent)
}

func TestRankingAdminService_CheckData(t *testing.T) {
	svc, _, rankingRepo, _ := newRankingAdminForTest(t, 0)
	rankingRepo.On("FindByPeriod", mock.Anything, "2025-06").Return(func() *entity.RankingPeriod {
		p := testPeriod("2025-06", false, 90, 85, 80, 75, 70, 65, 60)
		return &p
	}(), nil)
	rankingRepo.On("ListPeriods", mock.Anything).Return([]entity.RankingPeriod{
		testPeriod("2025-06", false, 90, 0),
	}, nil)

	single, err := svc.CheckData(context.Background(), "2025-06")
	require.NoError(t, err)
	assert.Equal(t, 7, single.ToolCount)
	assert.Len(t, single.SampleRankings, sampleRankingsSize)

	all, err := svc.CheckData(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, all.Periods, 1)
	assert.False(t, all.Periods[0].HasScores)
}

func TestRankingAdminService_Current_Cached(t *testing.T) {
	svc, _, rankingRepo, _ := newRankingAdminForTest(t, time.Minute)
	current := testPeriod("2025-06", true, 80)
	rankingRepo.On("FindCurrent", mock.Anything).Return(&current, nil)
	rankingRepo.On("SetCurrent", mock.Anything, "2025-05").Return(nil)

	for i := 0; i < 3; i++ {
		got, err := svc.Current(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "2025-06", got.Period)
	}
	rankingRepo.AssertNumberOfCalls(t, "FindCurrent", 1)

	_, err := svc.SetCurrent(context.Background(), "2025-05")
	require.NoError(t, err)
	_, err = svc.Current(context.Background())
	require.NoError(t, err)
	rankingRepo.AssertNumberOfCalls(t, "FindCurrent", 2)
}

func TestRankingAdminService_CreatePeriod(t *testing.T) {
	svc, _, rankingRepo, _ := newRankingAdminForTest(t, 0)
	source := testPeriod("2025-05", false, 80, 70)
	existing := testPeriod("2025-04", false)
	rankingRepo.On("FindByPeriod", mock.Anything, "2025-06").Return(nil, repository.ErrNotFound)
	rankingRepo.On("FindByPeriod", mock.Anything, "2025-05").Return(&source, nil)
	rankingRepo.On("FindByPeriod", mock.Anything, "2025-04").Return(&existing, nil)
	rankingRepo.On("Save", mock.Anything, mock.MatchedBy(func(p *entity.RankingPeriod) bool {
		return p.Period == "2025-06" && !p.IsCurrent && len(p.Entries()) == 2
	})).Return(nil)

	resp, err := svc.CreatePeriod(context.Background(), "2025-06", "2025-05")
	require.NoError(t, err)
	require.NotNil(t, resp.CopiedFrom)
	assert.Equal(t, "2025-05", *resp.CopiedFrom)

	_, err = svc.CreatePeriod(context.Background(), "2025-04", "")
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = svc.CreatePeriod(context.Background(), "June", "")
	assert.ErrorIs(t, err, ranking.ErrInvalidPeriod)
}

func TestRankingAdminService_SyncCurrent_FallsBackToNewest(t *testing.T) {
	svc, _, rankingRepo, dir := newRankingAdminForTest(t, 0)
	rankingRepo.On("FindCurrent", mock.Anything).Return(nil, repository.ErrNotFound)
	rankingRepo.On("ListPeriods", mock.Anything).Return([]entity.RankingPeriod{
		testPeriod("2025-06", false, 80, 70),
		testPeriod("2025-05", false, 75),
	}, nil)

	resp, err := svc.SyncCurrent(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2025-06", resp.Period)
	require.NotNil(t, resp.RankingsCount)
	assert.Equal(t, 2, *resp.RankingsCount)
	assert.Equal(t, filepath.Join(dir, repository.CurrentRankingsFile), resp.Path)

	_, err = os.Stat(resp.Path)
	require.NoError(t, err)
	written, err := repository.ReadRankingFile(resp.Path)
	require.NoError(t, err)
	assert.True(t, written.IsCurrent)
}

func TestRankingAdminService_SyncCurrent_NoData(t *testing.T) {
	svc, _, rankingRepo, _ := newRankingAdminForTest(t, 0)
	rankingRepo.On("FindCurrent", mock.Anything).Return(nil, repository.ErrNotFound)
	rankingRepo.On("ListPeriods", mock.Anything).Return([]entity.RankingPeriod{}, nil)

	_, err := svc.SyncCurrent(context.Background())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestRankingAdminService_DeletePeriod(t *testing.T) {
	svc, _, rankingRepo, _ := newRankingAdminForTest(t, 0)
	current := testPeriod("2025-06", true, 80)
	rankingRepo.On("FindByPeriod", mock.Anything, "2025-06").Return(&current, nil)
	rankingRepo.On("Delete", mock.Anything, "2025-06").Return(repository.ErrCurrentPeriod)
	rankingRepo.On("FindByPeriod", mock.Anything, "2025-01").Return(nil, repository.ErrNotFound)

	_, err := svc.DeletePeriod(context.Background(), "2025-06")
	assert.ErrorIs(t, err, repository.ErrCurrentPeriod)

	_, err = svc.DeletePeriod(context.Background(), "2025-01")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
