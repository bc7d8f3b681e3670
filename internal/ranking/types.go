package ranking

import (
	"time"

	"ai-power-rankings/internal/changes"
	"ai-power-rankings/internal/entity"
	"ai-power-rankings/internal/scoring"
)

// BuildRequest asks for the rankings of a period to be computed and stored.
type BuildRequest struct {
	Period           string
	AlgorithmVersion string
	PreviewDate      *time.Time
	SetCurrent       bool
	DryRun           bool
}

// Stats summarises the scores and movement of a build.
type Stats struct {
	TotalTools   int     `json:"total_tools"`
	AverageScore float64 `json:"average_score"`
	HighestScore float64 `json:"highest_score"`
	LowestScore  float64 `json:"lowest_score"`
	NewEntries   int     `json:"new_entries"`
	MovedUp      int     `json:"moved_up"`
	MovedDown    int     `json:"moved_down"`
	Unchanged    int     `json:"unchanged"`
	Dropped      int     `json:"dropped"`
}

// BuildResult is the outcome of a build.
type BuildResult struct {
	Ranking        *entity.RankingPeriod `json:"ranking"`
	PreviousPeriod string                `json:"previous_period,omitempty"`
	Stats          Stats                 `json:"stats"`
	ChangeReport   changes.Report        `json:"change_report"`
	Warnings       []string              `json:"warnings"`
	Persisted      bool                  `json:"persisted"`
}

// PreviewRequest asks for rankings to be computed and compared without storing them.
type PreviewRequest struct {
	Period           string
	AlgorithmVersion string
	CompareWith      string
	PreviewDate      *time.Time
}

// Movement values of a preview comparison.
const (
	MovementUp      = entity.DirectionUp
	MovementDown    = entity.DirectionDown
	MovementSame    = entity.DirectionSame
	MovementNew     = entity.DirectionNew
	MovementDropped = "dropped"
)

// Comparison is one tool's new standing against the comparison period.
type Comparison struct {
	ToolID          string   `json:"tool_id"`
	ToolName        string   `json:"tool_name"`
	CurrentPosition *int     `json:"current_position,omitempty"`
	NewPosition     int      `json:"new_position"`
	CurrentScore    *float64 `json:"current_score,omitempty"`
	NewScore        float64  `json:"new_score"`
	PositionChange  int      `json:"position_change"`
	ScoreChange     float64  `json:"score_change"`
	Movement        string   `json:"movement"`
}

// PreviewSummary counts the movement of a preview.
type PreviewSummary struct {
	ToolsMovedUp       int     `json:"tools_moved_up"`
	ToolsMovedDown     int     `json:"tools_moved_down"`
	ToolsStayedSame    int     `json:"tools_stayed_same"`
	AverageScoreChange float64 `json:"average_score_change"`
	HighestScore       float64 `json:"highest_score"`
	LowestScore        float64 `json:"lowest_score"`
}

// BiggestMovers lists the largest rises and falls of a preview.
type BiggestMovers struct {
	Up   []Comparison `json:"up"`
	Down []Comparison `json:"down"`
}

// PreviewResult is a computed but unsaved ranking and its comparison.
type PreviewResult struct {
	Period             string                `json:"period"`
	AlgorithmVersion   string                `json:"algorithm_version"`
	TotalTools         int                   `json:"total_tools"`
	NewEntries         int                   `json:"new_entries"`
	DroppedEntries     int                   `json:"dropped_entries"`
	RankingsComparison []Comparison          `json:"rankings_comparison"`
	Top10Changes       []Comparison          `json:"top_10_changes"`
	BiggestMovers      BiggestMovers         `json:"biggest_movers"`
	Summary            PreviewSummary        `json:"summary"`
	ComparisonPeriod   string                `json:"comparison_period,omitempty"`
	IsInitialRanking   bool                  `json:"is_initial_ranking"`
	Rankings           []entity.RankingEntry `json:"rankings"`
	ChangeReport       changes.Report        `json:"change_report"`
	Issues             scoring.PeriodIssues  `json:"issues"`
}
