package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ai-power-rankings/internal/admin/dto"
	"ai-power-rankings/internal/admin/service"
	"ai-power-rankings/internal/entity"
	"ai-power-rankings/internal/ranking"
	"ai-power-rankings/internal/repository"
	"ai-power-rankings/internal/repository/mocks"
	"ai-power-rankings/pkg/common"
	"ai-power-rankings/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

const testAPIKey = "secret-key"

type stubRankingService struct {
	mock.Mock
}

func (s *stubRankingService) Build(ctx context.Context, req ranking.BuildRequest) (*ranking.BuildResult, error) {
	args := s.Called(ctx, req)
	result, _ := args.Get(0).(*ranking.BuildResult)
	return result, args.Error(1)
}

func (s *stubRankingService) Preview(ctx context.Context, req ranking.PreviewRequest) (*ranking.PreviewResult, error) {
	args := s.Called(ctx, req)
	result, _ := args.Get(0).(*ranking.PreviewResult)
	return result, args.Error(1)
}

type stubDispatcher struct{}

func (stubDispatcher) Dispatch(ctx context.Context, jobID uint, scheduleID *uint) (*entity.TaskExecutionHistory, error) {
	return &entity.TaskExecutionHistory{ID: 99, JobID: jobID, Status: entity.StatusQueued, StartedAt: time.Now()}, nil
}

type testServer struct {
	echo        *echo.Echo
	toolRepo    *mocks.ToolRepository
	newsRepo    *mocks.NewsRepository
	rankingRepo *mocks.RankingRepository
	jobRepo     *mocks.JobRepository
	rankingSvc  *stubRankingService
}

func newTestServer(t *testing.T) *testServer {
	log := logger.NewNop()
	s := &testServer{
		echo:        echo.New(),
		toolRepo:    new(mocks.ToolRepository),
		newsRepo:    new(mocks.NewsRepository),
		rankingRepo: new(mocks.RankingRepository),
		jobRepo:     new(mocks.JobRepository),
		rankingSvc:  new(stubRankingService),
	}

	jobSvc := service.NewJobService(s.jobRepo, new(mocks.TaskExecutionHistoryRepository), stubDispatcher{}, log)
	Handlers{
		Rankings: NewRankingHandler(service.NewRankingAdminService(
			s.rankingSvc, s.rankingRepo, repository.NewRankingFileStore(t.TempDir()), "", 0, log), jobSvc, log),
		Tools: NewToolHandler(service.NewToolService(s.toolRepo, s.newsRepo, s.rankingRepo, log), log),
		News:  NewNewsHandler(service.NewNewsService(s.newsRepo, s.toolRepo, jobSvc, nil, log), log),
		Jobs:  NewJobHandler(jobSvc, log),
	}.Register(s.echo, testAPIKey)
	return s
}

func (s *testServer) do(method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(common.AdminKeyHeader, testAPIKey)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	return resp
}

func TestAdminAuth(t *testing.T) {
	s := newTestServer(t)
	s.rankingRepo.On("ListPeriods", mock.Anything).Return([]entity.RankingPeriod{}, nil)

	tests := []struct {
		name   string
		header string
		cookie string
		want   int
	}{
		{name: "missing key", want: http.StatusUnauthorized},
		{name: "wrong key", header: "nope", want: http.StatusUnauthorized},
		{name: "header key", header: testAPIKey, want: http.StatusOK},
		{name: "session cookie", cookie: testAPIKey, want: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/admin/rankings", nil)
			if tt.header != "" {
				req.Header.Set(common.AdminKeyHeader, tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: common.AdminSessionCookie, Value: tt.cookie})
			}
			rec := httptest.NewRecorder()
			s.echo.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusUnauthorized {
				assert.Equal(t, "Unauthorized", decodeError(t, rec).Error)
			}
		})
	}
}

func TestAdminAuth_EmptyConfiguredKeyRejects(t *testing.T) {
	e := echo.New()
	e.GET("/x", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, AdminAuth(""))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(common.AdminKeyHeader, "anything")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRankings_DefaultActionListsPeriods(t *testing.T) {
	s := newTestServer(t)
	s.rankingRepo.On("ListPeriods", mock.Anything).Return([]entity.RankingPeriod{{
		Period:    "2025-06",
		IsCurrent: true,
		Rankings:  datatypes.NewJSONType([]entity.RankingEntry{{ToolID: "cursor", Position: 1, Score: 80}}),
	}}, nil)

	rec := s.do(http.MethodGet, "/api/admin/rankings", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.PeriodsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Periods, 1)
	assert.Equal(t, 1, resp.Periods[0].ToolCount)
}

func TestRankings_UnknownAction(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/api/admin/rankings?action=bogus", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Unknown action: bogus", decodeError(t, rec).Error)

	rec = s.do(http.MethodPost, "/api/admin/rankings", `{"action":"explode"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRankings_DeleteErrors(t *testing.T) {
	s := newTestServer(t)
	s.rankingRepo.On("FindByPeriod", mock.Anything, "2025-01").Return(nil, repository.ErrNotFound)
	s.rankingRepo.On("FindByPeriod", mock.Anything, "2025-06").Return(&entity.RankingPeriod{Period: "2025-06", IsCurrent: true}, nil)
	s.rankingRepo.On("Delete", mock.Anything, "2025-06").Return(repository.ErrCurrentPeriod)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodDelete, "/api/admin/rankings", "").Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, "/api/admin/rankings?period=2025-01", "").Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodDelete, "/api/admin/rankings?period=2025-06", "").Code)
}

func TestBuildRankings(t *testing.T) {
	s := newTestServer(t)
	built := &entity.RankingPeriod{
		Period:           "2025-06",
		AlgorithmVersion: "v7.4",
		Rankings:         datatypes.NewJSONType([]entity.RankingEntry{{ToolID: "cursor", Position: 1, Score: 80}}),
	}
	s.rankingSvc.On("Build", mock.Anything, mock.MatchedBy(func(req ranking.BuildRequest) bool {
		return req.Period == "2025-06" && req.DryRun
	})).Return(&ranking.BuildResult{Ranking: built}, nil)

	rec := s.do(http.MethodPost, "/api/admin/build-rankings-json", `{"period":"2025-06","dry_run":true}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.BuildRankingsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.False(t, resp.Persisted)
	assert.Len(t, resp.Rankings, 1)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/api/admin/build-rankings-json", `{"period":`).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/api/admin/build-rankings-json", `{}`).Code)
}

func TestBuildRankings_InvalidPeriodIsBadRequest(t *testing.T) {
	s := newTestServer(t)
	s.rankingSvc.On("Build", mock.Anything, mock.Anything).Return(nil, ranking.ErrInvalidPeriod)

	rec := s.do(http.MethodPost, "/api/admin/build-rankings-json", `{"period":"June"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBuildRankings_SuppliedRankingsAreStored(t *testing.T) {
	s := newTestServer(t)
	s.rankingRepo.On("Save", mock.Anything, mock.MatchedBy(func(p *entity.RankingPeriod) bool {
		entries := p.Entries()
		return p.Period == "2025-06" && !p.IsCurrent && len(entries) == 2 &&
			entries[0].ToolID == "cursor" && entries[0].Tier == "S"
	})).Return(nil).Once()
	s.rankingRepo.On("SetCurrent", mock.Anything, "2025-06").Return(nil).Once()

	body := `{"period":"2025-06","algorithm_version":"v7.4","set_current":true,"rankings":[
		{"tool_id":"copilot","tool_name":"Copilot","position":2,"score":71.5},
		{"tool_id":"cursor","tool_name":"Cursor","position":1,"score":80.2}]}`
	rec := s.do(http.MethodPost, "/api/admin/build-rankings-json", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.BuildRankingsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Persisted)
	assert.True(t, resp.IsCurrent)
	assert.Equal(t, "v7.4", resp.AlgorithmVersion)
	assert.Equal(t, 2, resp.Stats.TotalTools)
	require.Len(t, resp.Rankings, 2)
	assert.Equal(t, "cursor", resp.Rankings[0].ToolID)

	s.rankingRepo.AssertExpectations(t)
	s.rankingSvc.AssertNotCalled(t, "Build", mock.Anything, mock.Anything)
}

func TestBuildRankings_SuppliedRankingsWithGapAreRejected(t *testing.T) {
	s := newTestServer(t)

	body := `{"period":"2025-06","rankings":[
		{"tool_id":"cursor","position":1,"score":80},
		{"tool_id":"copilot","position":3,"score":70}]}`
	rec := s.do(http.MethodPost, "/api/admin/build-rankings-json", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeError(t, rec).Error, "position 3 found where 2 expected")

	s.rankingRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	s.rankingSvc.AssertNotCalled(t, "Build", mock.Anything, mock.Anything)
}

func TestRankings_ProgressWithoutBuildJob(t *testing.T) {
	s := newTestServer(t)
	s.jobRepo.On("FindByType", mock.Anything, entity.JobTypeRankingBuild).Return(nil, repository.ErrNotFound)

	rec := s.do(http.MethodGet, "/api/admin/rankings?action=progress", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.BuildProgressResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "idle", resp.Status)
	assert.Equal(t, "No ranking generation in progress", resp.Message)
}

func TestTools_CheckExistRequiresNames(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/api/admin/tools?action=check-exist", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "tools parameter is required", decodeError(t, rec).Error)
}

func TestTools_DeleteAction(t *testing.T) {
	s := newTestServer(t)
	s.toolRepo.On("FindByID", mock.Anything, "cursor").Return(&entity.Tool{ID: "cursor", Slug: "cursor", Name: "Cursor"}, nil)
	s.rankingRepo.On("CountToolReferences", mock.Anything, "cursor").Return(int64(0), nil)
	s.newsRepo.On("RemoveToolMention", mock.Anything, mock.Anything).Return(int64(1), nil)
	s.toolRepo.On("Delete", mock.Anything, "cursor").Return(nil)

	rec := s.do(http.MethodPost, "/api/admin/tools", `{"action":"delete","toolIds":["cursor"]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.DeleteToolsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.DeletedTools, 1)
	assert.Equal(t, 1, resp.TotalRequested)
}

func TestTools_DeleteMissingIsNotFound(t *testing.T) {
	s := newTestServer(t)
	s.toolRepo.On("FindByID", mock.Anything, "ghost").Return(nil, repository.ErrNotFound)

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, "/api/admin/tools?id=ghost", "").Code)
}

func TestNews_Status(t *testing.T) {
	s := newTestServer(t)
	s.newsRepo.On("FindAll", mock.Anything).Return([]entity.NewsArticle{{ID: "a", CreatedAt: time.Now()}}, nil)

	rec := s.do(http.MethodGet, "/api/admin/news?action=status", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.NewsStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.TotalArticles)
	assert.NotNil(t, resp.LastIngestion)
}

func TestNews_Validation(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/admin/news?days=-3", "").Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/api/admin/news", `{"action":"manual-ingest","title":"only"}`).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodDelete, "/api/admin/news", "").Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/api/admin/news/analyze", `{"type":"text"}`).Code)
}

func TestNews_IngestQueuesJob(t *testing.T) {
	s := newTestServer(t)
	s.jobRepo.On("FindByType", mock.Anything, entity.JobTypeNewsIngestion).Return(&entity.Job{ID: 4}, nil)

	rec := s.do(http.MethodPost, "/api/admin/news", `{"action":"ingest"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.IngestResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Queued)
	assert.Equal(t, uint(4), resp.JobID)
}

func TestJobs_Trigger(t *testing.T) {
	s := newTestServer(t)
	s.jobRepo.On("FindByID", mock.Anything, uint(4)).Return(&entity.Job{ID: 4}, nil)

	rec := s.do(http.MethodPost, "/api/admin/jobs/4/trigger", "")
	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp dto.ExecutionHistoryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, uint(99), resp.ID)
	assert.Equal(t, string(entity.StatusQueued), resp.Status)
}

func TestJobs_InvalidID(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/api/admin/jobs/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid job ID", decodeError(t, rec).Error)
}
