package scoring

import (
	"math"

	"ai-power-rankings/internal/entity"
)

// Metric names a field of ToolMetrics.
type Metric string

const (
	MetricAgenticCapability  Metric = "agentic_capability"
	MetricSWEBenchScore      Metric = "swe_bench_score"
	MetricMultiFile          Metric = "multi_file_capability"
	MetricPlanningDepth      Metric = "planning_depth"
	MetricContextUtilization Metric = "context_utilization"
	MetricContextWindow      Metric = "context_window"
	MetricLanguageSupport    Metric = "language_support"
	MetricGitHubStars        Metric = "github_stars"
	MetricInnovationScore    Metric = "innovation_score"
	MetricEstimatedUsers     Metric = "estimated_users"
	MetricMonthlyARR         Metric = "monthly_arr"
	MetricValuation          Metric = "valuation"
	MetricFunding            Metric = "funding"
	MetricBusinessSentiment  Metric = "business_sentiment"
	MetricReleaseFrequency   Metric = "release_frequency"
	MetricContributors       Metric = "github_contributors"
	MetricLLMProviderCount   Metric = "llm_provider_count"
	MetricMultiModelSupport  Metric = "multi_model_support"
	MetricCommunitySize      Metric = "community_size"
)

// CoreMetrics are the metrics counted for data completeness.
var CoreMetrics = []Metric{
	MetricAgenticCapability,
	MetricSWEBenchScore,
	MetricEstimatedUsers,
	MetricMonthlyARR,
	MetricBusinessSentiment,
	MetricInnovationScore,
	MetricGitHubStars,
	MetricReleaseFrequency,
}

// ToolMetrics is the per-run input of the scoring engine.
// A zero numeric field means "not set" and falls back to the formula default.
type ToolMetrics struct {
	ToolID string
	Status string

	AgenticCapability   float64
	SWEBenchScore       float64
	MultiFileCapability float64
	PlanningDepth       float64
	ContextUtilization  float64

	ContextWindow   float64
	LanguageSupport float64
	GitHubStars     float64

	InnovationScore float64
	Innovations     []entity.InnovationRecord

	EstimatedUsers float64
	MonthlyARR     float64
	Valuation      float64
	Funding        float64
	BusinessModel  string

	BusinessSentiment float64
	RiskFactors       []string

	ReleaseFrequency   float64
	GitHubContributors float64

	LLMProviderCount  int
	MultiModelSupport bool
	CommunitySize     float64

	NewsImpact NewsImpact

	// Real marks metrics that came from tool data or news rather than defaults.
	Real map[Metric]bool
}

// NewsImpact carries qualitative boosts applied directly to factor scores.
type NewsImpact struct {
	TechnicalBoost float64
	TractionBoost  float64
}

// MarkReal records that m holds a measured value.
func (m *ToolMetrics) MarkReal(metric Metric) {
	if m.Real == nil {
		m.Real = make(map[Metric]bool)
	}
	m.Real[metric] = true
}

// Completeness returns the fraction of core metrics that are real.
func (m ToolMetrics) Completeness() float64 {
	n := 0
	for _, c := range CoreMetrics {
		if m.Real[c] {
			n++
		}
	}
	return float64(n) / float64(len(CoreMetrics))
}

// or returns v, or d when v is unset or not a number.
func or(v, d float64) float64 {
	if v == 0 || math.IsNaN(v) {
		return d
	}
	return v
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
