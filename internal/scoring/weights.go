package scoring

import (
	"math"

	"ai-power-rankings/internal/entity"
)

// Weights maps each factor to its share of the overall score.
type Weights map[entity.Factor]float64

// DefaultWeights returns the factor weights of the V6 family of algorithms.
func DefaultWeights() Weights {
	return Weights{
		entity.FactorAgenticCapability:    0.30,
		entity.FactorInnovation:           0.15,
		entity.FactorTechnicalPerformance: 0.125,
		entity.FactorDeveloperAdoption:    0.125,
		entity.FactorMarketTraction:       0.125,
		entity.FactorBusinessSentiment:    0.075,
		entity.FactorDevelopmentVelocity:  0.05,
		entity.FactorPlatformResilience:   0.05,
	}
}

// Sum returns the total weight, rounded to remove float noise.
func (w Weights) Sum() float64 {
	total := 0.0
	for _, f := range entity.Factors {
		total += w[f]
	}
	return math.Round(total*1e9) / 1e9
}

// Weighted returns the weighted sum of the factor scores.
func (w Weights) Weighted(s entity.FactorScores) float64 {
	total := 0.0
	for _, f := range entity.Factors {
		total += s.Get(f) * w[f]
	}
	return total
}

// RiskModifiers adjust business sentiment (penalties) and platform resilience (bonuses).
var RiskModifiers = map[string]float64{
	"acquired_by_llm_provider": -2.0,
	"exclusive_llm_dependency": -1.0,
	"competitor_controlled":    -1.5,
	"regulatory_risk":          -0.5,
	"funding_distress":         -1.0,

	"multi_llm_support":     0.5,
	"open_source_llm_ready": 0.3,
	"self_hosted_option":    0.3,
}

// RevenueQualityMultipliers scale ARR by business model.
var RevenueQualityMultipliers = map[string]float64{
	"enterprise_high_acv":   1.0,
	"enterprise_standard":   0.8,
	"smb_saas":              0.6,
	"consumer_premium":      0.5,
	"freemium":              0.3,
	"open_source_donations": 0.2,
}

const defaultRevenueQuality = 0.5

// Validation thresholds.
const (
	MinMetricsRequired  = 0.8
	MinConfidenceScore  = 0.6
	DefaultConfidence   = 0.8
	OutlierPositionJump = 3
)

// RevenueQuality returns the revenue multiplier for a business model.
func RevenueQuality(businessModel string) float64 {
	if m, ok := RevenueQualityMultipliers[businessModel]; ok {
		return m
	}
	return defaultRevenueQuality
}

// PlatformRisk returns the sum of all known risk modifiers.
func PlatformRisk(riskFactors []string) float64 {
	total := 0.0
	for _, r := range riskFactors {
		total += RiskModifiers[r]
	}
	return total
}

func platformBonus(riskFactors []string) float64 {
	total := 0.0
	for _, r := range riskFactors {
		if m := RiskModifiers[r]; m > 0 {
			total += m
		}
	}
	return total
}
