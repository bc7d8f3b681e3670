package dto

import (
	"time"

	"ai-power-rankings/internal/changes"
	"ai-power-rankings/internal/entity"
	"ai-power-rankings/internal/ranking"
)

// Rankings actions.
const (
	RankingActionPeriods      = "periods"
	RankingActionCheckData    = "check-data"
	RankingActionAll          = "all"
	RankingActionCurrent      = "current"
	RankingActionProgress     = "progress"
	RankingActionSetCurrent   = "set-current"
	RankingActionCreatePeriod = "create-period"
	RankingActionSyncCurrent  = "sync-current"
)

// BuildRankingsRequest is the body of POST /build-rankings-json.
// When Rankings is set the entries are validated and stored as given instead of being computed.
type BuildRankingsRequest struct {
	Period           string                `json:"period"`
	AlgorithmVersion string                `json:"algorithm_version"`
	PreviewDate      string                `json:"preview_date"`
	SetCurrent       bool                  `json:"set_current"`
	DryRun           bool                  `json:"dry_run"`
	Rankings         []entity.RankingEntry `json:"rankings"`
}

// BuildRankingsResponse reports a completed build.
type BuildRankingsResponse struct {
	Success          bool                  `json:"success"`
	Period           string                `json:"period"`
	AlgorithmVersion string                `json:"algorithm_version"`
	IsCurrent        bool                  `json:"is_current"`
	Persisted        bool                  `json:"persisted"`
	PreviousPeriod   string                `json:"previous_period,omitempty"`
	Stats            ranking.Stats         `json:"stats"`
	ChangeReport     changes.Report        `json:"change_report"`
	Warnings         []string              `json:"warnings"`
	Rankings         []entity.RankingEntry `json:"rankings"`
}

// PreviewRankingsRequest is the body of POST /preview-rankings-json.
type PreviewRankingsRequest struct {
	Period           string `json:"period"`
	AlgorithmVersion string `json:"algorithm_version"`
	CompareWith      string `json:"compare_with"`
	PreviewDate      string `json:"preview_date"`
}

// PreviewRankingsResponse wraps a preview.
type PreviewRankingsResponse struct {
	Success bool                   `json:"success"`
	Preview *ranking.PreviewResult `json:"preview"`
}

// RankingsActionRequest is the body of POST /rankings.
type RankingsActionRequest struct {
	Action   string `json:"action"`
	Period   string `json:"period"`
	CopyFrom string `json:"copy_from"`
}

// PeriodSummary describes a stored period.
type PeriodSummary struct {
	Period           string    `json:"period"`
	ToolCount        int       `json:"tool_count"`
	AlgorithmVersion string    `json:"algorithm_version"`
	GeneratedAt      time.Time `json:"generated_at"`
	IsCurrent        bool      `json:"is_current"`
}

// PeriodsResponse lists the stored periods, newest first.
type PeriodsResponse struct {
	Periods []PeriodSummary `json:"periods"`
	Total   int             `json:"total"`
}

// PeriodCheck is the data check of one period in the all-periods listing.
type PeriodCheck struct {
	Period           string `json:"period"`
	Rankings         int    `json:"rankings"`
	HasScores        bool   `json:"has_scores"`
	AlgorithmVersion string `json:"algorithm_version"`
	Valid            bool   `json:"valid"`
}

// CheckDataResponse is the result of the check-data action.
// Without a period it lists every period, otherwise it details the one requested.
type CheckDataResponse struct {
	Periods          []PeriodCheck         `json:"periods,omitempty"`
	Period           string                `json:"period,omitempty"`
	ToolCount        int                   `json:"tool_count,omitempty"`
	AlgorithmVersion string                `json:"algorithm_version,omitempty"`
	GeneratedAt      *time.Time            `json:"generated_at,omitempty"`
	SampleRankings   []entity.RankingEntry `json:"sample_rankings,omitempty"`
	Errors           []string              `json:"errors,omitempty"`
	Warnings         []string              `json:"warnings,omitempty"`
}

// PeriodMetadata describes a period in the all-rankings listing.
type PeriodMetadata struct {
	AlgorithmVersion string    `json:"algorithm_version"`
	GeneratedAt      time.Time `json:"generated_at"`
	IsCurrent        bool      `json:"is_current"`
}

// PeriodRankings is one period with its entries.
type PeriodRankings struct {
	Period   string                `json:"period"`
	Rankings []entity.RankingEntry `json:"rankings"`
	Metadata PeriodMetadata        `json:"metadata"`
}

// AllRankingsResponse lists every period with its entries.
type AllRankingsResponse struct {
	Periods      []PeriodRankings `json:"periods"`
	TotalPeriods int              `json:"total_periods"`
}

// RankingsActionResponse reports the outcome of a POST /rankings action.
type RankingsActionResponse struct {
	Success       bool    `json:"success"`
	Message       string  `json:"message"`
	Period        string  `json:"period,omitempty"`
	CopiedFrom    *string `json:"copied_from,omitempty"`
	RankingsCount *int    `json:"rankings_count,omitempty"`
	Path          string  `json:"path,omitempty"`
}
