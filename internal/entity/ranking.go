package entity

import (
	"time"

	"gorm.io/datatypes"
)

// Factor names one of the eight weighted ranking dimensions.
type Factor string

const (
	FactorAgenticCapability    Factor = "agenticCapability"
	FactorInnovation           Factor = "innovation"
	FactorTechnicalPerformance Factor = "technicalPerformance"
	FactorDeveloperAdoption    Factor = "developerAdoption"
	FactorMarketTraction       Factor = "marketTraction"
	FactorBusinessSentiment    Factor = "businessSentiment"
	FactorDevelopmentVelocity  Factor = "developmentVelocity"
	FactorPlatformResilience   Factor = "platformResilience"
)

// Factors lists the factors in weight order.
var Factors = []Factor{
	FactorAgenticCapability,
	FactorInnovation,
	FactorTechnicalPerformance,
	FactorDeveloperAdoption,
	FactorMarketTraction,
	FactorBusinessSentiment,
	FactorDevelopmentVelocity,
	FactorPlatformResilience,
}

// FactorScores holds the eight 0-10 factor scores.
type FactorScores struct {
	AgenticCapability    float64 `json:"agentic_capability"`
	Innovation           float64 `json:"innovation"`
	TechnicalPerformance float64 `json:"technical_performance"`
	DeveloperAdoption    float64 `json:"developer_adoption"`
	MarketTraction       float64 `json:"market_traction"`
	BusinessSentiment    float64 `json:"business_sentiment"`
	DevelopmentVelocity  float64 `json:"development_velocity"`
	PlatformResilience   float64 `json:"platform_resilience"`
}

// Get returns the score of f.
func (s FactorScores) Get(f Factor) float64 {
	switch f {
	case FactorAgenticCapability:
		return s.AgenticCapability
	case FactorInnovation:
		return s.Innovation
	case FactorTechnicalPerformance:
		return s.TechnicalPerformance
	case FactorDeveloperAdoption:
		return s.DeveloperAdoption
	case FactorMarketTraction:
		return s.MarketTraction
	case FactorBusinessSentiment:
		return s.BusinessSentiment
	case FactorDevelopmentVelocity:
		return s.DevelopmentVelocity
	case FactorPlatformResilience:
		return s.PlatformResilience
	}
	return 0
}

// Set assigns the score of f.
func (s *FactorScores) Set(f Factor, v float64) {
	switch f {
	case FactorAgenticCapability:
		s.AgenticCapability = v
	case FactorInnovation:
		s.Innovation = v
	case FactorTechnicalPerformance:
		s.TechnicalPerformance = v
	case FactorDeveloperAdoption:
		s.DeveloperAdoption = v
	case FactorMarketTraction:
		s.MarketTraction = v
	case FactorBusinessSentiment:
		s.BusinessSentiment = v
	case FactorDevelopmentVelocity:
		s.DevelopmentVelocity = v
	case FactorPlatformResilience:
		s.PlatformResilience = v
	}
}

// Movement directions.
const (
	DirectionUp   = "up"
	DirectionDown = "down"
	DirectionSame = "same"
	DirectionNew  = "new"
)

// Movement is the change in position against the previous period.
type Movement struct {
	PreviousPosition *int   `json:"previous_position,omitempty"`
	Change           int    `json:"change"`
	Direction        string `json:"direction"`
}

// ChangeSummary is the short explanation attached to notable entries.
type ChangeSummary struct {
	PrimaryReason        string `json:"primary_reason"`
	NarrativeExplanation string `json:"narrative_explanation"`
}

// RankingEntry is one tool's place in a ranking period.
type RankingEntry struct {
	ToolID               string         `json:"tool_id"`
	ToolName             string         `json:"tool_name"`
	ToolSlug             string         `json:"tool_slug,omitempty"`
	Category             string         `json:"category,omitempty"`
	Position             int            `json:"position"`
	Score                float64        `json:"score"`
	Tier                 string         `json:"tier"`
	FactorScores         FactorScores   `json:"factor_scores"`
	ConfidenceMultiplier float64        `json:"confidence_multiplier,omitempty"`
	Movement             *Movement      `json:"movement,omitempty"`
	ChangeAnalysis       *ChangeSummary `json:"change_analysis,omitempty"`
}

// RankingPeriod is a monthly ranking snapshot keyed by "YYYY-MM".
type RankingPeriod struct {
	Period           string                             `gorm:"primaryKey;type:varchar(16)" json:"period"`
	AlgorithmVersion string                             `gorm:"not null" json:"algorithm_version"`
	IsCurrent        bool                               `gorm:"not null;default:false;index" json:"is_current"`
	PreviewDate      *time.Time                         `json:"preview_date,omitempty"`
	Rankings         datatypes.JSONType[[]RankingEntry] `gorm:"type:jsonb" json:"rankings"`
	CreatedAt        time.Time                          `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time                          `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for the RankingPeriod model.
func (RankingPeriod) TableName() string {
	return "ranking_periods"
}

// Entries returns the ranking entries of the period.
func (p RankingPeriod) Entries() []RankingEntry {
	return p.Rankings.Data()
}

// EntryFor returns the entry of toolID, if present.
func (p RankingPeriod) EntryFor(toolID string) (RankingEntry, bool) {
	for _, e := range p.Rankings.Data() {
		if e.ToolID == toolID {
			return e, true
		}
	}
	return RankingEntry{}, false
}
