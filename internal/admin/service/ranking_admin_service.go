package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"ai-power-rankings/internal/admin/dto"
	"ai-power-rankings/internal/entity"
	"ai-power-rankings/internal/ranking"
	"ai-power-rankings/internal/repository"
	"ai-power-rankings/internal/scoring"
	"ai-power-rankings/pkg/logger"
	"ai-power-rankings/pkg/utils"

	"github.com/patrickmn/go-cache"
	"gorm.io/datatypes"
)

const (
	currentRankingCacheKey = "rankings:current"
	sampleRankingsSize     = 5
)

// RankingAdminService manages stored ranking periods.
type RankingAdminService interface {
	Build(ctx context.Context, req *dto.BuildRankingsRequest) (*dto.BuildRankingsResponse, error)
	Preview(ctx context.Context, req *dto.PreviewRankingsRequest) (*dto.PreviewRankingsResponse, error)
	ListPeriods(ctx context.Context) (*dto.PeriodsResponse, error)
	CheckData(ctx context.Context, period string) (*dto.CheckDataResponse, error)
	All(ctx context.Context) (*dto.AllRankingsResponse, error)
	Current(ctx context.Context) (*entity.RankingPeriod, error)
	SetCurrent(ctx context.Context, period string) (*dto.RankingsActionResponse, error)
	CreatePeriod(ctx context.Context, period, copyFrom string) (*dto.RankingsActionResponse, error)
	SyncCurrent(ctx context.Context) (*dto.RankingsActionResponse, error)
	DeletePeriod(ctx context.Context, period string) (*dto.MessageResponse, error)
}

// NewRankingAdminService creates a new ranking admin service.
// The current period is cached for cacheTTL; a zero TTL disables caching.
func NewRankingAdminService(
	rankingSvc ranking.Service,
	rankingRepo repository.RankingRepository,
	fileStore *repository.RankingFileStore,
	defaultVersion string,
	cacheTTL time.Duration,
	log *logger.Logger,
) RankingAdminService {
	s := &rankingAdminService{
		rankingSvc:     rankingSvc,
		rankingRepo:    rankingRepo,
		fileStore:      fileStore,
		defaultVersion: defaultVersion,
		logger:         log,
	}
	if cacheTTL > 0 {
		s.cache = cache.New(cacheTTL, 2*cacheTTL)
	}
	return s
}

type rankingAdminService struct {
	rankingSvc     ranking.Service
	rankingRepo    repository.RankingRepository
	fileStore      *repository.RankingFileStore
	defaultVersion string
	cache          *cache.Cache
	logger         *logger.Logger
}

// Build computes and stores the rankings of a period.
func (s *rankingAdminService) Build(ctx context.Context, req *dto.BuildRankingsRequest) (*dto.BuildRankingsResponse, error) {
	if req.Period == "" {
		return nil, invalidf("period is required")
	}
	previewDate, err := parseOptionalDate(req.PreviewDate)
	if err != nil {
		return nil, err
	}
	if len(req.Rankings) > 0 {
		return s.saveSupplied(ctx, req, previewDate)
	}

	result, err := s.rankingSvc.Build(ctx, ranking.BuildRequest{
		Period:           req.Period,
		AlgorithmVersion: s.versionOrDefault(req.AlgorithmVersion),
		PreviewDate:      previewDate,
		SetCurrent:       req.SetCurrent,
		DryRun:           req.DryRun,
	})
	if err != nil {
		return nil, err
	}
	if result.Ranking.IsCurrent {
		s.invalidateCurrent()
	}
	s.logger.DebugContext(ctx, "Rankings built from admin request",
		logger.StringField("period", result.Ranking.Period),
		logger.BoolField("persisted", result.Persisted),
	)

	warnings := result.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	return &dto.BuildRankingsResponse{
		Success:          true,
		Period:           result.Ranking.Period,
		AlgorithmVersion: result.Ranking.AlgorithmVersion,
		IsCurrent:        result.Ranking.IsCurrent,
		Persisted:        result.Persisted,
		PreviousPeriod:   result.PreviousPeriod,
		Stats:            result.Stats,
		ChangeReport:     result.ChangeReport,
		Warnings:         warnings,
		Rankings:         result.Ranking.Entries(),
	}, nil
}

// saveSupplied stores client-provided entries, typically the rankings of an approved preview.
func (s *rankingAdminService) saveSupplied(ctx context.Context, req *dto.BuildRankingsRequest, previewDate *time.Time) (*dto.BuildRankingsResponse, error) {
	if _, err := ranking.PeriodStart(req.Period); err != nil {
		return nil, err
	}

	entries := append([]entity.RankingEntry(nil), req.Rankings...)
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Position < entries[j].Position })
	for i := range entries {
		if entries[i].Tier == "" {
			entries[i].Tier = scoring.TierForPosition(entries[i].Position)
		}
	}

	issues := scoring.ValidatePeriod(entries)
	if !issues.OK() {
		return nil, invalidf("rankings failed validation: %s", strings.Join(issues.Errors, "; "))
	}

	period := &entity.RankingPeriod{
		Period:           req.Period,
		AlgorithmVersion: s.versionOrDefault(req.AlgorithmVersion),
		PreviewDate:      previewDate,
		Rankings:         datatypes.NewJSONType(entries),
	}
	persisted := !req.DryRun
	if persisted {
		if err := s.rankingRepo.Save(ctx, period); err != nil {
			return nil, fmt.Errorf("failed to save rankings for period %s: %w", req.Period, err)
		}
		if req.SetCurrent {
			if err := s.rankingRepo.SetCurrent(ctx, req.Period); err != nil {
				return nil, fmt.Errorf("failed to set current period %s: %w", req.Period, err)
			}
			period.IsCurrent = true
			s.invalidateCurrent()
		}
	}

	s.logger.InfoContext(ctx, "Supplied rankings stored",
		logger.StringField("period", req.Period),
		logger.IntField("total_tools", len(entries)),
		logger.BoolField("persisted", persisted),
	)
	return &dto.BuildRankingsResponse{
		Success:          true,
		Period:           period.Period,
		AlgorithmVersion: period.AlgorithmVersion,
		IsCurrent:        period.IsCurrent,
		Persisted:        persisted,
		Stats:            ranking.StatsFor(entries, 0),
		Warnings:         issues.Warnings,
		Rankings:         entries,
	}, nil
}

// Preview computes the rankings of a period and compares them without storing anything.
func (s *rankingAdminService) Preview(ctx context.Context, req *dto.PreviewRankingsRequest) (*dto.PreviewRankingsResponse, error) {
	if req.Period == "" {
		return nil, invalidf("period is required")
	}
	previewDate, err := parseOptionalDate(req.PreviewDate)
	if err != nil {
		return nil, err
	}

	preview, err := s.rankingSvc.Preview(ctx, ranking.PreviewRequest{
		Period:           req.Period,
		AlgorithmVersion: s.versionOrDefault(req.AlgorithmVersion),
		CompareWith:      req.CompareWith,
		PreviewDate:      previewDate,
	})
	if err != nil {
		return nil, err
	}
	return &dto.PreviewRankingsResponse{Success: true, Preview: preview}, nil
}

// ListPeriods summarises every stored period, newest first.
func (s *rankingAdminService) ListPeriods(ctx context.Context) (*dto.PeriodsResponse, error) {
	periods, err := s.rankingRepo.ListPeriods(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list ranking periods: %w", err)
	}

	resp := &dto.PeriodsResponse{Periods: make([]dto.PeriodSummary, 0, len(periods))}
	for _, p := range periods {
		resp.Periods = append(resp.Periods, dto.PeriodSummary{
			Period:           p.Period,
			ToolCount:        len(p.Entries()),
			AlgorithmVersion: p.AlgorithmVersion,
			GeneratedAt:      p.UpdatedAt,
			IsCurrent:        p.IsCurrent,
		})
	}
	resp.Total = len(resp.Periods)
	return resp, nil
}

// CheckData validates stored periods. An empty period checks all of them.
func (s *rankingAdminService) CheckData(ctx context.Context, period string) (*dto.CheckDataResponse, error) {
	if period == "" {
		periods, err := s.rankingRepo.ListPeriods(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list ranking periods: %w", err)
		}
		resp := &dto.CheckDataResponse{Periods: make([]dto.PeriodCheck, 0, len(periods))}
		for _, p := range periods {
			entries := p.Entries()
			resp.Periods = append(resp.Periods, dto.PeriodCheck{
				Period:           p.Period,
				Rankings:         len(entries),
				HasScores:        hasScores(entries),
				AlgorithmVersion: p.AlgorithmVersion,
				Valid:            scoring.ValidatePeriod(entries).OK(),
			})
		}
		return resp, nil
	}

	p, err := s.rankingRepo.FindByPeriod(ctx, period)
	if err != nil {
		return nil, fmt.Errorf("no data found for period %s: %w", period, err)
	}
	entries := p.Entries()
	issues := scoring.ValidatePeriod(entries)
	generatedAt := p.UpdatedAt

	sample := entries
	if len(sample) > sampleRankingsSize {
		sample = sample[:sampleRankingsSize]
	}
	return &dto.CheckDataResponse{
		Period:           p.Period,
		ToolCount:        len(entries),
		AlgorithmVersion: p.AlgorithmVersion,
		GeneratedAt:      &generatedAt,
		SampleRankings:   sample,
		Errors:           issues.Errors,
		Warnings:         issues.Warnings,
	}, nil
}

// All returns every stored period with its entries.
func (s *rankingAdminService) All(ctx context.Context) (*dto.AllRankingsResponse, error) {
	periods, err := s.rankingRepo.ListPeriods(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list ranking periods: %w", err)
	}

	resp := &dto.AllRankingsResponse{Periods: make([]dto.PeriodRankings, 0, len(periods))}
	for _, p := range periods {
		resp.Periods = append(resp.Periods, dto.PeriodRankings{
			Period:   p.Period,
			Rankings: p.Entries(),
			Metadata: dto.PeriodMetadata{
				AlgorithmVersion: p.AlgorithmVersion,
				GeneratedAt:      p.UpdatedAt,
				IsCurrent:        p.IsCurrent,
			},
		})
	}
	resp.TotalPeriods = len(resp.Periods)
	return resp, nil
}

// Current returns the current period.
func (s *rankingAdminService) Current(ctx context.Context) (*entity.RankingPeriod, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(currentRankingCacheKey); ok {
			return cached.(*entity.RankingPeriod), nil
		}
	}

	current, err := s.rankingRepo.FindCurrent(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to find current ranking period: %w", err)
	}
	if s.cache != nil {
		s.cache.SetDefault(currentRankingCacheKey, current)
	}
	return current, nil
}

// SetCurrent marks period as the only current period.
func (s *rankingAdminService) SetCurrent(ctx context.Context, period string) (*dto.RankingsActionResponse, error) {
	if period == "" {
		return nil, invalidf("period is required")
	}
	if err := s.rankingRepo.SetCurrent(ctx, period); err != nil {
		return nil, fmt.Errorf("failed to set current period %s: %w", period, err)
	}
	s.invalidateCurrent()

	s.logger.InfoContext(ctx, "Current ranking period changed", logger.StringField("period", period))
	return &dto.RankingsActionResponse{
		Success: true,
		Message: fmt.Sprintf("Set %s as current ranking period", period),
		Period:  period,
	}, nil
}

// CreatePeriod stores a new, non-current period, optionally copying the entries of copyFrom.
func (s *rankingAdminService) CreatePeriod(ctx context.Context, period, copyFrom string) (*dto.RankingsActionResponse, error) {
	if period == "" {
		return nil, invalidf("period is required")
	}
	if _, err := ranking.PeriodStart(period); err != nil {
		return nil, err
	}

	if _, err := s.rankingRepo.FindByPeriod(ctx, period); err == nil {
		return nil, invalidf("period %s already exists", period)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check period %s: %w", period, err)
	}

	created := &entity.RankingPeriod{
		Period:           period,
		AlgorithmVersion: s.versionOrDefault(""),
		Rankings:         datatypes.NewJSONType([]entity.RankingEntry{}),
	}
	var copiedFrom *string
	if copyFrom != "" {
		source, err := s.rankingRepo.FindByPeriod(ctx, copyFrom)
		if err != nil {
			return nil, fmt.Errorf("source period %s: %w", copyFrom, err)
		}
		created.AlgorithmVersion = source.AlgorithmVersion
		created.Rankings = datatypes.NewJSONType(source.Entries())
		copiedFrom = &copyFrom
	}

	if err := s.rankingRepo.Save(ctx, created); err != nil {
		return nil, fmt.Errorf("failed to create period %s: %w", period, err)
	}

	return &dto.RankingsActionResponse{
		Success:    true,
		Message:    fmt.Sprintf("Created ranking period %s", period),
		Period:     period,
		CopiedFrom: copiedFrom,
	}, nil
}

// SyncCurrent writes the current period, or the newest one when none is current, to the
// static rankings file.
func (s *rankingAdminService) SyncCurrent(ctx context.Context) (*dto.RankingsActionResponse, error) {
	current, err := s.rankingRepo.FindCurrent(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		periods, listErr := s.rankingRepo.ListPeriods(ctx)
		if listErr != nil {
			return nil, fmt.Errorf("failed to list ranking periods: %w", listErr)
		}
		if len(periods) == 0 {
			return nil, fmt.Errorf("no rankings data found: %w", repository.ErrNotFound)
		}
		current, err = &periods[0], nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find current ranking period: %w", err)
	}

	synced := *current
	synced.IsCurrent = true
	path, err := s.fileStore.WriteCurrent(&synced)
	if err != nil {
		return nil, fmt.Errorf("failed to write current rankings: %w", err)
	}

	count := len(synced.Entries())
	s.logger.InfoContext(ctx, "Current rankings synced", logger.StringField("period", synced.Period), logger.StringField("path", path))
	return &dto.RankingsActionResponse{
		Success:       true,
		Message:       fmt.Sprintf("Synced current rankings from period %s", synced.Period),
		Period:        synced.Period,
		RankingsCount: &count,
		Path:          path,
	}, nil
}

// DeletePeriod removes a non-current period.
func (s *rankingAdminService) DeletePeriod(ctx context.Context, period string) (*dto.MessageResponse, error) {
	if period == "" {
		return nil, invalidf("period is required")
	}
	if _, err := s.rankingRepo.FindByPeriod(ctx, period); err != nil {
		return nil, fmt.Errorf("period %s: %w", period, err)
	}
	if err := s.rankingRepo.Delete(ctx, period); err != nil {
		return nil, fmt.Errorf("failed to delete period %s: %w", period, err)
	}
	s.invalidateCurrent()

	s.logger.InfoContext(ctx, "Ranking period deleted", logger.StringField("period", period))
	return &dto.MessageResponse{
		Success: true,
		Message: fmt.Sprintf("Deleted ranking period %s", period),
	}, nil
}

func (s *rankingAdminService) versionOrDefault(v string) string {
	if strings.TrimSpace(v) != "" {
		return v
	}
	if s.defaultVersion != "" {
		return s.defaultVersion
	}
	return scoring.DefaultVersion
}

func (s *rankingAdminService) invalidateCurrent() {
	if s.cache != nil {
		s.cache.Delete(currentRankingCacheKey)
	}
}

func hasScores(entries []entity.RankingEntry) bool {
	for _, e := range entries {
		if e.Score <= 0 {
			return false
		}
	}
	return true
}

func parseOptionalDate(value string) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	t, err := utils.ParseDate(value)
	if err != nil {
		return nil, invalidf("preview_date: %v", err)
	}
	return &t, nil
}
