package scoring

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"ai-power-rankings/internal/entity"
)

// Supported algorithm versions.
const (
	VersionV6  = "v6.0"
	VersionV74 = "v7.4"

	DefaultVersion = VersionV74
)

// ErrUnknownVersion is returned for an unsupported algorithm version.
var ErrUnknownVersion = errors.New("unknown algorithm version")

const (
	innovationDecayRate = 0.115
	monthDuration       = 30 * 24 * time.Hour
	defaultInnovation   = 5.0
	maxInnovationScore  = 10.0
)

// ParseVersion normalises a version string. Empty input selects DefaultVersion.
func ParseVersion(v string) (string, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(v)), "v") {
	case "":
		return DefaultVersion, nil
	case "6", "6.0":
		return VersionV6, nil
	case "7.4":
		return VersionV74, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownVersion, v)
}

// Modifiers reports the adjustments applied while scoring.
type Modifiers struct {
	InnovationDecay      float64 `json:"innovation_decay"`
	PlatformRisk         float64 `json:"platform_risk"`
	RevenueQuality       float64 `json:"revenue_quality"`
	ConfidenceMultiplier float64 `json:"confidence_multiplier"`
}

// Validation reports whether the tool has enough real data to be ranked with confidence.
type Validation struct {
	IsValid      bool    `json:"is_valid"`
	Completeness float64 `json:"completeness"`
	Confidence   float64 `json:"confidence"`
}

// ToolScore is the result of scoring one tool.
type ToolScore struct {
	ToolID       string              `json:"tool_id"`
	OverallScore float64             `json:"overall_score"`
	FactorScores entity.FactorScores `json:"factor_scores"`
	Modifiers    Modifiers           `json:"modifiers"`
	Validation   Validation          `json:"validation"`
}

// DisplayScore returns the overall score on the 0-100 scale.
func (s ToolScore) DisplayScore() float64 {
	return round(s.OverallScore*10, 2)
}

// Engine computes tool scores. It holds no mutable state and is safe for concurrent use.
type Engine struct {
	version string
	weights Weights
}

// NewEngine returns an engine for the given algorithm version.
func NewEngine(version string) (*Engine, error) {
	v, err := ParseVersion(version)
	if err != nil {
		return nil, err
	}
	return &Engine{version: v, weights: DefaultWeights()}, nil
}

// Version returns the normalised algorithm version.
func (e *Engine) Version() string {
	return e.version
}

// Weights returns a copy of the factor weights.
func (e *Engine) Weights() Weights {
	w := make(Weights, len(e.weights))
	for k, v := range e.weights {
		w[k] = v
	}
	return w
}

// CalculateToolScore scores m as of the reference date now.
func (e *Engine) CalculateToolScore(m ToolMetrics, now time.Time) ToolScore {
	completeness := m.Completeness()
	validation := Validation{
		Completeness: completeness,
		Confidence:   DefaultConfidence,
	}
	validation.IsValid = completeness >= MinMetricsRequired && validation.Confidence >= MinConfidenceScore

	factors := entity.FactorScores{
		AgenticCapability:    clamp(finite(agenticCapability(m)), 0, 10),
		Innovation:           clamp(finite(innovation(m, now)), 0, 10),
		TechnicalPerformance: clamp(finite(technicalPerformance(m)), 0, 10),
		DeveloperAdoption:    clamp(finite(developerAdoption(m)), 0, 10),
		MarketTraction:       clamp(finite(marketTraction(m)), 0, 10),
		BusinessSentiment:    clamp(finite(businessSentiment(m)), 0, 10),
		DevelopmentVelocity:  clamp(finite(developmentVelocity(m)), 0, 10),
		PlatformResilience:   clamp(finite(platformResilience(m)), 0, 10),
	}

	if b := finite(m.NewsImpact.TechnicalBoost); b > 0 {
		factors.TechnicalPerformance = math.Min(10, or(factors.TechnicalPerformance, 5)+b)
	}
	if b := finite(m.NewsImpact.TractionBoost); b > 0 {
		factors.MarketTraction = math.Min(10, or(factors.MarketTraction, 5)+b)
	}

	multiplier := 1.0
	if e.version == VersionV74 {
		multiplier = 0.7 + 0.3*completeness
	}

	modifiers := Modifiers{
		InnovationDecay:      1,
		PlatformRisk:         PlatformRisk(m.RiskFactors),
		RevenueQuality:       RevenueQuality(m.BusinessModel),
		ConfidenceMultiplier: multiplier,
	}
	if is := finite(m.InnovationScore); is > 0 {
		modifiers.InnovationDecay = factors.Innovation / is
	}

	overall := e.weights.Weighted(factors) * multiplier

	return ToolScore{
		ToolID:       m.ToolID,
		OverallScore: clamp(round(overall, 3), 0, 10),
		FactorScores: factors,
		Modifiers:    modifiers,
		Validation:   validation,
	}
}

func agenticCapability(m ToolMetrics) float64 {
	swe := finite(m.SWEBenchScore) / 100
	multiFile := or(m.MultiFileCapability, 5) / 10
	planning := or(m.PlanningDepth, 5) / 10
	ctxUtil := or(m.ContextUtilization, 5) / 10
	return (swe*0.4 + multiFile*0.25 + planning*0.2 + ctxUtil*0.15) * 10
}

func innovation(m ToolMetrics, now time.Time) float64 {
	if len(m.Innovations) == 0 {
		return or(m.InnovationScore, defaultInnovation)
	}
	total := 0.0
	for _, in := range m.Innovations {
		monthsOld := float64(now.Sub(in.Date)) / float64(monthDuration)
		total += finite(in.Score) * math.Exp(-innovationDecayRate*monthsOld)
	}
	return math.Min(maxInnovationScore, total)
}

func technicalPerformance(m ToolMetrics) float64 {
	swe := finite(m.SWEBenchScore) / 100
	multiFile := or(m.MultiFileCapability, 5) / 10
	ctx := math.Min(or(m.ContextWindow, 100000)/200000, 1)
	lang := math.Min(or(m.LanguageSupport, 10)/20, 1)
	return (swe*0.4 + multiFile*0.3 + ctx*0.2 + lang*0.1) * 10
}

func developerAdoption(m ToolMetrics) float64 {
	users := finite(m.EstimatedUsers)
	stars := finite(m.GitHubStars)
	community := or(m.CommunitySize, users)
	return math.Min(10,
		math.Min(10, users/100000*5)*0.5+
			math.Min(10, stars/10000*5)*0.3+
			community/10/50000*10*0.2)
}

func marketTraction(m ToolMetrics) float64 {
	revenue := math.Max(0, finite(m.MonthlyARR)) * RevenueQuality(m.BusinessModel)
	revenueScore := math.Log10(revenue+1) / 10
	userScore := math.Log10(math.Max(0, finite(m.EstimatedUsers))+1) / 7
	fundingScore := math.Log10(math.Max(0, finite(m.Funding))+1) / 11
	valuationScore := math.Log10(math.Max(0, finite(m.Valuation))+1) / 12
	return (revenueScore*0.4 + userScore*0.3 + fundingScore*0.2 + valuationScore*0.1) * 10
}

func businessSentiment(m ToolMetrics) float64 {
	return or(m.BusinessSentiment, 0.5)*10 + PlatformRisk(m.RiskFactors)
}

func developmentVelocity(m ToolMetrics) float64 {
	return math.Min(10,
		or(m.ReleaseFrequency, 2)/4*10*0.5+
			or(m.GitHubContributors, 10)/100*10*0.5)
}

func platformResilience(m ToolMetrics) float64 {
	status := 7.0
	if m.Status == "acquired" {
		status = 3
	}
	providers := 5.0
	if m.MultiModelSupport || m.LLMProviderCount > 1 {
		providers = 10
	}
	return math.Min(10, status*0.5+providers*0.5+platformBonus(m.RiskFactors))
}
