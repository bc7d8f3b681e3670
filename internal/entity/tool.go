package entity

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// ToolStatus is the lifecycle status of a tool.
type ToolStatus string

const (
	ToolStatusActive     ToolStatus = "active"
	ToolStatusDeprecated ToolStatus = "deprecated"
	ToolStatusInactive   ToolStatus = "inactive"
)

// Valid reports whether s is a known status.
func (s ToolStatus) Valid() bool {
	switch s {
	case ToolStatusActive, ToolStatusDeprecated, ToolStatusInactive:
		return true
	}
	return false
}

// ToolCategory classifies a tool.
type ToolCategory string

const (
	CategoryAutonomousAgent     ToolCategory = "autonomous-agent"
	CategoryIDEAssistant        ToolCategory = "ide-assistant"
	CategoryCodeAssistant       ToolCategory = "code-assistant"
	CategoryCodeEditor          ToolCategory = "code-editor"
	CategoryAppBuilder          ToolCategory = "app-builder"
	CategoryResearchTool        ToolCategory = "research-tool"
	CategoryGeneralAssistant    ToolCategory = "general-assistant"
	CategoryOpenSourceFramework ToolCategory = "open-source-framework"
	CategoryTestingTool         ToolCategory = "testing-tool"
	CategoryCodeReview          ToolCategory = "code-review"
)

// Tool is an AI coding tool that can be ranked.
type Tool struct {
	ID          string                       `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Slug        string                       `gorm:"uniqueIndex;not null" json:"slug"`
	Name        string                       `gorm:"not null" json:"name"`
	DisplayName string                       `json:"display_name,omitempty"`
	Category    ToolCategory                 `gorm:"not null;index" json:"category"`
	Status      ToolStatus                   `gorm:"not null;default:active;index" json:"status"`
	Info        datatypes.JSONType[ToolInfo] `gorm:"type:jsonb" json:"info"`
	LaunchDate  *time.Time                   `json:"launch_date,omitempty"`
	CreatedAt   time.Time                    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time                    `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for the Tool model.
func (Tool) TableName() string {
	return "tools"
}

// AvailableSince returns the launch date, or the creation date when the launch date is unknown.
func (t Tool) AvailableSince() time.Time {
	if t.LaunchDate != nil {
		return *t.LaunchDate
	}
	return t.CreatedAt
}

// ToolInfo is the structured description of a tool stored as JSONB.
type ToolInfo struct {
	Summary     string             `json:"summary,omitempty"`
	Description string             `json:"description,omitempty"`
	Website     string             `json:"website,omitempty"`
	Features    []string           `json:"features,omitempty"`
	Company     CompanyInfo        `json:"company"`
	Technical   TechnicalInfo      `json:"technical"`
	Business    BusinessInfo       `json:"business"`
	Metrics     ToolInfoMetrics    `json:"metrics"`
	RiskFactors []string           `json:"risk_factors,omitempty"`
	Innovations []InnovationRecord `json:"innovations,omitempty"`
}

// CompanyInfo describes the company behind a tool.
type CompanyInfo struct {
	Name       string   `json:"name,omitempty"`
	Website    string   `json:"website,omitempty"`
	Founded    *int     `json:"founded"`
	Employees  *int     `json:"employees"`
	Funding    *float64 `json:"funding"`
	Valuation  *float64 `json:"valuation"`
	AcquiredBy string   `json:"acquired_by,omitempty"`
}

// IsEmpty reports whether no company data has been recorded.
func (c CompanyInfo) IsEmpty() bool {
	return c.Name == "" && c.Website == "" && c.Founded == nil && c.Employees == nil &&
		c.Funding == nil && c.Valuation == nil && c.AcquiredBy == ""
}

// TechnicalInfo holds technical capabilities.
type TechnicalInfo struct {
	ContextWindow      *int     `json:"context_window,omitempty"`
	SupportedLanguages *int     `json:"supported_languages,omitempty"`
	MultiFileSupport   bool     `json:"multi_file_support"`
	MultiModelSupport  bool     `json:"multi_model_support"`
	LLMProviders       []string `json:"llm_providers,omitempty"`
	PlanningDepth      *float64 `json:"planning_depth,omitempty"`
	ContextUtilization *float64 `json:"context_utilization,omitempty"`
}

// BusinessInfo holds pricing and business model data.
type BusinessInfo struct {
	PricingModel  string        `json:"pricing_model,omitempty"`
	BusinessModel string        `json:"business_model,omitempty"`
	PricingTiers  []PricingTier `json:"pricing_tiers,omitempty"`
}

// PricingTier is one published price point.
type PricingTier struct {
	Name         string  `json:"name"`
	MonthlyPrice float64 `json:"monthly_price"`
}

// ToolInfoMetrics holds measured metrics. Nil means "unknown".
type ToolInfoMetrics struct {
	SWEBenchScore      *float64 `json:"swe_bench_score,omitempty"`
	AgenticCapability  *float64 `json:"agentic_capability,omitempty"`
	InnovationScore    *float64 `json:"innovation_score,omitempty"`
	GitHubStars        *float64 `json:"github_stars,omitempty"`
	GitHubContributors *float64 `json:"github_contributors,omitempty"`
	EstimatedUsers     *float64 `json:"estimated_users,omitempty"`
	CommunitySize      *float64 `json:"community_size,omitempty"`
	MonthlyARR         *float64 `json:"monthly_arr,omitempty"`
	Valuation          *float64 `json:"valuation,omitempty"`
	FundingTotal       *float64 `json:"funding_total,omitempty"`
	BusinessSentiment  *float64 `json:"business_sentiment,omitempty"`
	ReleaseFrequency   *float64 `json:"release_frequency,omitempty"`
}

// InnovationRecord is a dated innovation event.
type InnovationRecord struct {
	Score       float64   `json:"score"`
	Date        time.Time `json:"date"`
	Description string    `json:"description,omitempty"`
}

// Validate checks value ranges of the structured info.
func (i ToolInfo) Validate() error {
	m := i.Metrics
	if m.SWEBenchScore != nil && (*m.SWEBenchScore < 0 || *m.SWEBenchScore > 100) {
		return fmt.Errorf("swe_bench_score must be within 0..100, got %v", *m.SWEBenchScore)
	}
	if m.BusinessSentiment != nil && (*m.BusinessSentiment < 0 || *m.BusinessSentiment > 1) {
		return fmt.Errorf("business_sentiment must be within 0..1, got %v", *m.BusinessSentiment)
	}
	for name, v := range map[string]*float64{
		"agentic_capability": m.AgenticCapability,
		"innovation_score":   m.InnovationScore,
	} {
		if v != nil && (*v < 0 || *v > 10) {
			return fmt.Errorf("%s must be within 0..10, got %v", name, *v)
		}
	}
	for name, v := range map[string]*float64{
		"github_stars":        m.GitHubStars,
		"github_contributors": m.GitHubContributors,
		"estimated_users":     m.EstimatedUsers,
		"community_size":      m.CommunitySize,
		"monthly_arr":         m.MonthlyARR,
		"valuation":           m.Valuation,
		"funding_total":       m.FundingTotal,
		"release_frequency":   m.ReleaseFrequency,
	} {
		if v != nil && *v < 0 {
			return fmt.Errorf("%s must not be negative, got %v", name, *v)
		}
	}
	if t := i.Technical; t.ContextWindow != nil && *t.ContextWindow < 0 {
		return fmt.Errorf("context_window must not be negative")
	}
	return nil
}
