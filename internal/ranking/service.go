package ranking

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"ai-power-rankings/internal/changes"
	"ai-power-rankings/internal/entity"
	"ai-power-rankings/internal/newsmetrics"
	"ai-power-rankings/internal/repository"
	"ai-power-rankings/internal/scoring"
	"ai-power-rankings/pkg/logger"

	"gorm.io/datatypes"
)

// ErrInvalidRankings is returned when computed rankings fail validation.
var ErrInvalidRankings = errors.New("computed rankings failed validation")

// Config configures the ranking service.
type Config struct {
	AlgorithmVersion string
}

// Service computes ranking periods from tools and news.
type Service interface {
	Build(ctx context.Context, req BuildRequest) (*BuildResult, error)
	Preview(ctx context.Context, req PreviewRequest) (*PreviewResult, error)
}

type service struct {
	cfg         Config
	toolRepo    repository.ToolRepository
	newsRepo    repository.NewsRepository
	rankingRepo repository.RankingRepository
	defaults    *scoring.DefaultsTable
	enhancer    *newsmetrics.Enhancer
	analyzer    *changes.Analyzer
	logger      *logger.Logger
}

// NewService creates a ranking service.
func NewService(
	cfg Config,
	toolRepo repository.ToolRepository,
	newsRepo repository.NewsRepository,
	rankingRepo repository.RankingRepository,
	defaults *scoring.DefaultsTable,
	enhancer *newsmetrics.Enhancer,
	log *logger.Logger,
) Service {
	return &service{
		cfg:         cfg,
		toolRepo:    toolRepo,
		newsRepo:    newsRepo,
		rankingRepo: rankingRepo,
		defaults:    defaults,
		enhancer:    enhancer,
		analyzer:    changes.NewAnalyzer(),
		logger:      log,
	}
}

// computation is the scored and ordered state of one period.
type computation struct {
	version  string
	entries  []entity.RankingEntry
	analyses []changes.Analysis
	dropped  []entity.RankingEntry
}

// Build computes, validates and stores the rankings of a period.
// The stored period is not current unless SetCurrent is requested.
func (s *service) Build(ctx context.Context, req BuildRequest) (*BuildResult, error) {
	if _, err := PeriodStart(req.Period); err != nil {
		return nil, err
	}

	previous, err := s.findPrevious(ctx, req.Period)
	if err != nil {
		return nil, err
	}

	comp, err := s.compute(ctx, req.Period, req.AlgorithmVersion, req.PreviewDate, previous)
	if err != nil {
		return nil, err
	}

	issues := scoring.ValidatePeriod(comp.entries)
	if !issues.OK() {
		s.logger.Error("Computed rankings failed validation",
			logger.StringField("period", req.Period),
			logger.Field("errors", issues.Errors),
		)
		return nil, fmt.Errorf("%w: %s", ErrInvalidRankings, strings.Join(issues.Errors, "; "))
	}

	ranking := &entity.RankingPeriod{
		Period:           req.Period,
		AlgorithmVersion: comp.version,
		PreviewDate:      req.PreviewDate,
		Rankings:         datatypes.NewJSONType(comp.entries),
	}

	result := &BuildResult{
		Ranking:      ranking,
		Stats:        buildStats(comp),
		ChangeReport: changes.BuildReport(comp.analyses),
		Warnings:     issues.Warnings,
	}
	if previous != nil {
		result.PreviousPeriod = previous.Period
	}

	if req.DryRun {
		s.logger.Info("Dry run, rankings not persisted", logger.StringField("period", req.Period))
		return result, nil
	}

	if err := s.rankingRepo.Save(ctx, ranking); err != nil {
		return nil, fmt.Errorf("failed to save rankings for period %s: %w", req.Period, err)
	}
	result.Persisted = true

	if req.SetCurrent {
		if err := s.rankingRepo.SetCurrent(ctx, req.Period); err != nil {
			return nil, fmt.Errorf("failed to set current period %s: %w", req.Period, err)
		}
		ranking.IsCurrent = true
	}

	s.logger.Info("Rankings built",
		logger.StringField("period", req.Period),
		logger.StringField("algorithm_version", comp.version),
		logger.IntField("tools", len(comp.entries)),
		logger.BoolField("current", ranking.IsCurrent),
	)
	return result, nil
}

// Preview computes the rankings of a period and compares them with another period
// without storing anything.
func (s *service) Preview(ctx context.Context, req PreviewRequest) (*PreviewResult, error) {
	if _, err := PeriodStart(req.Period); err != nil {
		return nil, err
	}

	var comparison *entity.RankingPeriod
	switch req.CompareWith {
	case "", "auto":
		prev, err := s.findPrevious(ctx, req.Period)
		if err != nil {
			return nil, err
		}
		comparison = prev
	case "none":
	default:
		found, err := s.rankingRepo.FindByPeriod(ctx, req.CompareWith)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("failed to load comparison period %s: %w", req.CompareWith, err)
		}
		comparison = found
	}

	comp, err := s.compute(ctx, req.Period, req.AlgorithmVersion, req.PreviewDate, comparison)
	if err != nil {
		return nil, err
	}

	result := buildPreview(req.Period, comp, comparison)
	result.ChangeReport = changes.BuildReport(comp.analyses)
	result.Issues = scoring.ValidatePeriod(comp.entries)

	s.logger.Info("Preview rankings generated",
		logger.StringField("period", req.Period),
		logger.StringField("comparison_period", result.ComparisonPeriod),
		logger.IntField("total_tools", result.TotalTools),
	)
	return result, nil
}

func (s *service) findPrevious(ctx context.Context, period string) (*entity.RankingPeriod, error) {
	prev, err := s.rankingRepo.FindPrevious(ctx, period)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load previous period: %w", err)
	}
	return prev, nil
}

func (s *service) compute(ctx context.Context, period, version string, previewDate *time.Time, previous *entity.RankingPeriod) (*computation, error) {
	if version == "" {
		version = s.cfg.AlgorithmVersion
	}
	engine, err := scoring.NewEngine(version)
	if err != nil {
		return nil, err
	}

	refDate, err := PeriodStart(period)
	if err != nil {
		return nil, err
	}
	var cutoff time.Time
	if previewDate != nil {
		refDate = *previewDate
		cutoff = *previewDate
	}

	tools, err := s.toolRepo.FindByStatus(ctx, entity.ToolStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to load active tools: %w", err)
	}
	if previewDate != nil {
		before := len(tools)
		tools = availableBy(tools, *previewDate)
		if len(tools) != before {
			s.logger.Info("Filtered tools by launch or creation date",
				logger.IntField("before", before),
				logger.IntField("after", len(tools)),
			)
		}
	}

	var articles []entity.NewsArticle
	if previewDate != nil {
		articles, err = s.newsRepo.FindPublishedBefore(ctx, *previewDate)
	} else {
		articles, err = s.newsRepo.FindAll(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load news articles: %w", err)
	}

	prevEntries := map[string]entity.RankingEntry{}
	if previous != nil {
		for _, e := range previous.Entries() {
			prevEntries[e.ToolID] = e
		}
	}

	toolsByID := make(map[string]entity.Tool, len(tools))
	scores := make(map[string]scoring.ToolScore, len(tools))
	candidates := make([]scoring.Candidate, 0, len(tools))
	for _, tool := range tools {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		metrics := s.defaults.MetricsFor(tool)
		if s.enhancer != nil {
			metrics = newsmetrics.Apply(metrics, s.enhancer.Enhance(ctx, tool, articles, cutoff))
		}
		score := engine.CalculateToolScore(metrics, refDate)
		if math.IsNaN(score.OverallScore) {
			s.logger.Warn("Skipping tool with invalid score", logger.StringField("tool_id", tool.ID))
			continue
		}

		toolsByID[tool.ID] = tool
		scores[tool.ID] = score
		c := scoring.Candidate{ToolID: tool.ID, ToolName: tool.Name, Score: score.DisplayScore()}
		if prev, ok := prevEntries[tool.ID]; ok && prev.Position > 0 {
			pos := prev.Position
			c.PreviousPosition = &pos
		}
		candidates = append(candidates, c)
	}

	comp := &computation{version: engine.Version()}
	for i, c := range scoring.Order(candidates) {
		tool := toolsByID[c.ToolID]
		score := scores[c.ToolID]
		entry := entity.RankingEntry{
			ToolID:               tool.ID,
			ToolName:             tool.Name,
			ToolSlug:             tool.Slug,
			Category:             string(tool.Category),
			Position:             i + 1,
			Score:                c.Score,
			Tier:                 scoring.TierForPosition(i + 1),
			FactorScores:         score.FactorScores,
			ConfidenceMultiplier: score.Modifiers.ConfidenceMultiplier,
			Movement:             movement(c.PreviousPosition, i+1),
		}

		var prevEntry *entity.RankingEntry
		var prevFactors *entity.FactorScores
		if prev, ok := prevEntries[tool.ID]; ok {
			prevEntry = &prev
			prevFactors = &prev.FactorScores
		}
		analysis := s.analyzer.Analyze(entry, prevEntry, entry.FactorScores, prevFactors)
		if analysis.Notable() {
			entry.ChangeAnalysis = analysis.Summary()
		}

		comp.entries = append(comp.entries, entry)
		comp.analyses = append(comp.analyses, analysis)
	}

	if previous != nil {
		for _, prev := range previous.Entries() {
			if _, ok := toolsByID[prev.ToolID]; !ok {
				comp.dropped = append(comp.dropped, prev)
				comp.analyses = append(comp.analyses, s.analyzer.AnalyzeDropped(prev))
			}
		}
	}
	return comp, nil
}

func availableBy(tools []entity.Tool, cutoff time.Time) []entity.Tool {
	out := make([]entity.Tool, 0, len(tools))
	for _, t := range tools {
		if !t.AvailableSince().After(cutoff) {
			out = append(out, t)
		}
	}
	return out
}

func movement(previousPosition *int, position int) *entity.Movement {
	if previousPosition == nil {
		return &entity.Movement{Direction: entity.DirectionNew}
	}
	change := *previousPosition - position
	m := &entity.Movement{PreviousPosition: previousPosition, Change: absInt(change), Direction: entity.DirectionSame}
	switch {
	case change > 0:
		m.Direction = entity.DirectionUp
	case change < 0:
		m.Direction = entity.DirectionDown
	}
	return m
}

func buildStats(comp *computation) Stats {
	return StatsFor(comp.entries, len(comp.dropped))
}

// StatsFor summarises entries. Entries without a movement count as unchanged.
func StatsFor(entries []entity.RankingEntry, dropped int) Stats {
	stats := Stats{TotalTools: len(entries), Dropped: dropped}
	if len(entries) == 0 {
		return stats
	}
	stats.HighestScore = entries[0].Score
	stats.LowestScore = entries[0].Score
	var total float64
	for _, e := range entries {
		total += e.Score
		stats.HighestScore = math.Max(stats.HighestScore, e.Score)
		stats.LowestScore = math.Min(stats.LowestScore, e.Score)
		if e.Movement == nil {
			stats.Unchanged++
			continue
		}
		switch e.Movement.Direction {
		case entity.DirectionNew:
			stats.NewEntries++
		case entity.DirectionUp:
			stats.MovedUp++
		case entity.DirectionDown:
			stats.MovedDown++
		default:
			stats.Unchanged++
		}
	}
	stats.AverageScore = round2(total / float64(len(entries)))
	return stats
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
