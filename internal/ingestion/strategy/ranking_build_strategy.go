package strategy

import (
	"context"
	"encoding/json"
	"fmt"

	"ai-power-rankings/internal/entity"
	"ai-power-rankings/internal/ranking"
	"ai-power-rankings/pkg/logger"
	"ai-power-rankings/pkg/telegram"
	"ai-power-rankings/pkg/utils"
)

// RankingBuildPayload is the job payload of a ranking build job.
type RankingBuildPayload struct {
	Period           string `json:"period"`
	AlgorithmVersion string `json:"algorithm_version"`
	SetCurrent       bool   `json:"set_current"`
	DryRun           bool   `json:"dry_run"`
	Notify           *bool  `json:"notify"`
}

type rankingBuildOutput struct {
	Period       string        `json:"period"`
	Version      string        `json:"algorithm_version"`
	Persisted    bool          `json:"persisted"`
	Stats        ranking.Stats `json:"stats"`
	ChangeReport string        `json:"change_summary"`
	Warnings     []string      `json:"warnings,omitempty"`
}

// RankingBuildStrategy builds a ranking period and posts a summary to Telegram.
type RankingBuildStrategy struct {
	rankings ranking.Service
	notifier telegram.Notifier
	topN     int
	logger   *logger.Logger
}

// NewRankingBuildStrategy creates a new RankingBuildStrategy.
func NewRankingBuildStrategy(rankings ranking.Service, notifier telegram.Notifier, topN int, log *logger.Logger) JobExecutionStrategy {
	return &RankingBuildStrategy{
		rankings: rankings,
		notifier: notifier,
		topN:     topN,
		logger:   log,
	}
}

// GetType returns the job type this strategy handles.
func (s *RankingBuildStrategy) GetType() entity.JobType {
	return entity.JobTypeRankingBuild
}

// Execute runs the ranking build job.
func (s *RankingBuildStrategy) Execute(ctx context.Context, job *entity.Job) (string, error) {
	var payload RankingBuildPayload
	if len(job.Payload) > 0 {
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return StatusFailed, fmt.Errorf("failed to unmarshal ranking build payload: %w", err)
		}
	}
	if payload.Period == "" {
		payload.Period = ranking.CurrentPeriod(utils.TimeNow())
	}

	result, err := s.rankings.Build(ctx, ranking.BuildRequest{
		Period:           payload.Period,
		AlgorithmVersion: payload.AlgorithmVersion,
		SetCurrent:       payload.SetCurrent,
		DryRun:           payload.DryRun,
	})
	if err != nil {
		return StatusFailed, fmt.Errorf("failed to build rankings for %s: %w", payload.Period, err)
	}

	if payload.Notify == nil || *payload.Notify {
		for _, msg := range telegram.FormatRankingBuild(result, s.topN) {
			if err := s.notifier.SendMessage(msg); err != nil {
				s.logger.Error("Failed to send ranking notification",
					logger.StringField("period", payload.Period),
					logger.ErrorField(err),
				)
				break
			}
		}
	}

	out := rankingBuildOutput{
		Period:       payload.Period,
		Persisted:    result.Persisted,
		Stats:        result.Stats,
		ChangeReport: result.ChangeReport.Summary,
		Warnings:     result.Warnings,
	}
	if result.Ranking != nil {
		out.Version = result.Ranking.AlgorithmVersion
	}
	output, err := json.Marshal(out)
	if err != nil {
		return StatusFailed, fmt.Errorf("failed to marshal ranking build result: %w", err)
	}
	return string(output), nil
}
