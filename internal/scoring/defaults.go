package scoring

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"ai-power-rankings/internal/entity"

	"gopkg.in/yaml.v3"
)

//go:embed metric-defaults.yaml
var embeddedDefaults []byte

// Rule is one conditional default value.
type Rule struct {
	When  string  `yaml:"when"`
	Value float64 `yaml:"value"`
}

// DefaultsTable is a versioned lookup table of metric defaults.
type DefaultsTable struct {
	Version                 string            `yaml:"version"`
	PremiumTools            []string          `yaml:"premium_tools"`
	EnterprisePricingModels []string          `yaml:"enterprise_pricing_models"`
	BusinessModel           string            `yaml:"business_model"`
	Metrics                 map[Metric][]Rule `yaml:"metrics"`
}

// ParseDefaults decodes and validates a defaults table.
func ParseDefaults(data []byte) (*DefaultsTable, error) {
	var t DefaultsTable
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse metric defaults: %w", err)
	}
	if t.Version == "" {
		return nil, fmt.Errorf("metric defaults must declare a version")
	}
	for metric, rules := range t.Metrics {
		if len(rules) == 0 || rules[len(rules)-1].When != "" {
			return nil, fmt.Errorf("metric defaults for %s must end with an unconditional rule", metric)
		}
	}
	return &t, nil
}

// LoadDefaults reads a defaults table from path. An empty path selects the compiled-in table.
func LoadDefaults(path string) (*DefaultsTable, error) {
	if path == "" {
		return EmbeddedDefaults()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read metric defaults %s: %w", path, err)
	}
	return ParseDefaults(data)
}

// EmbeddedDefaults returns the compiled-in defaults table.
func EmbeddedDefaults() (*DefaultsTable, error) {
	return ParseDefaults(embeddedDefaults)
}

type toolTraits struct {
	premium    bool
	enterprise bool
	multiFile  bool
	category   entity.ToolCategory
}

func (t *DefaultsTable) traits(tool entity.Tool) toolTraits {
	info := tool.Info.Data()
	tr := toolTraits{
		multiFile: info.Technical.MultiFileSupport,
		category:  tool.Category,
	}
	for _, name := range t.PremiumTools {
		if name == tool.Name {
			tr.premium = true
		}
	}
	for _, pm := range t.EnterprisePricingModels {
		if strings.EqualFold(pm, info.Business.PricingModel) {
			tr.enterprise = true
		}
	}
	return tr
}

func (tr toolTraits) matches(cond string) bool {
	switch {
	case cond == "":
		return true
	case cond == "premium":
		return tr.premium
	case cond == "enterprise":
		return tr.enterprise
	case cond == "multi_file":
		return tr.multiFile
	case cond == "open_source":
		return tr.category == entity.CategoryOpenSourceFramework
	case strings.HasPrefix(cond, "category:"):
		return string(tr.category) == strings.TrimPrefix(cond, "category:")
	}
	return false
}

// Default returns the default value of metric for a tool, or 0 when the table has no rule.
func (t *DefaultsTable) Default(tool entity.Tool, metric Metric) float64 {
	return t.lookup(t.traits(tool), metric)
}

func (t *DefaultsTable) lookup(tr toolTraits, metric Metric) float64 {
	for _, r := range t.Metrics[metric] {
		if tr.matches(r.When) {
			return r.Value
		}
	}
	return 0
}

// MetricsFor assembles scoring input for a tool: measured values where present,
// table defaults otherwise. Measured values are marked real.
func (t *DefaultsTable) MetricsFor(tool entity.Tool) ToolMetrics {
	info := tool.Info.Data()
	tr := t.traits(tool)
	im := info.Metrics

	m := ToolMetrics{
		ToolID:      tool.ID,
		Status:      string(tool.Status),
		Innovations: append([]entity.InnovationRecord(nil), info.Innovations...),
		RiskFactors: append([]string(nil), info.RiskFactors...),
	}
	if info.Company.AcquiredBy != "" {
		m.Status = "acquired"
	}

	pick := func(metric Metric, measured *float64) float64 {
		if measured != nil && *measured != 0 {
			m.MarkReal(metric)
			return *measured
		}
		return t.lookup(tr, metric)
	}
	pickInt := func(metric Metric, measured *int) float64 {
		if measured != nil && *measured != 0 {
			v := float64(*measured)
			return pick(metric, &v)
		}
		return t.lookup(tr, metric)
	}

	m.AgenticCapability = pick(MetricAgenticCapability, im.AgenticCapability)
	m.SWEBenchScore = pick(MetricSWEBenchScore, im.SWEBenchScore)
	m.MultiFileCapability = t.lookup(tr, MetricMultiFile)
	m.PlanningDepth = pick(MetricPlanningDepth, info.Technical.PlanningDepth)
	m.ContextUtilization = pick(MetricContextUtilization, info.Technical.ContextUtilization)
	m.ContextWindow = pickInt(MetricContextWindow, info.Technical.ContextWindow)
	m.LanguageSupport = pickInt(MetricLanguageSupport, info.Technical.SupportedLanguages)
	m.GitHubStars = pick(MetricGitHubStars, im.GitHubStars)
	m.InnovationScore = pick(MetricInnovationScore, im.InnovationScore)
	m.EstimatedUsers = pick(MetricEstimatedUsers, im.EstimatedUsers)
	m.MonthlyARR = pick(MetricMonthlyARR, im.MonthlyARR)
	m.Valuation = pick(MetricValuation, firstSet(im.Valuation, info.Company.Valuation))
	m.Funding = pick(MetricFunding, firstSet(im.FundingTotal, info.Company.Funding))
	m.BusinessSentiment = pick(MetricBusinessSentiment, im.BusinessSentiment)
	m.ReleaseFrequency = pick(MetricReleaseFrequency, im.ReleaseFrequency)
	m.GitHubContributors = pick(MetricContributors, im.GitHubContributors)
	m.CommunitySize = pick(MetricCommunitySize, firstSet(im.CommunitySize, im.EstimatedUsers))

	m.BusinessModel = info.Business.BusinessModel
	if m.BusinessModel == "" {
		m.BusinessModel = t.BusinessModel
	}

	if n := len(info.Technical.LLMProviders); n > 0 {
		m.LLMProviderCount = n
		m.MarkReal(MetricLLMProviderCount)
	} else {
		m.LLMProviderCount = int(t.lookup(tr, MetricLLMProviderCount))
	}
	if info.Technical.MultiModelSupport {
		m.MultiModelSupport = true
		m.MarkReal(MetricMultiModelSupport)
	} else {
		m.MultiModelSupport = t.lookup(tr, MetricMultiModelSupport) > 0
	}
	return m
}

func firstSet(values ...*float64) *float64 {
	for _, v := range values {
		if v != nil && *v != 0 {
			return v
		}
	}
	return nil
}
