package scoring

import (
	"os"
	"path/filepath"
	"testing"

	"ai-power-rankings/internal/entity"
	"ai-power-rankings/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestEmbeddedDefaults(t *testing.T) {
	table, err := EmbeddedDefaults()
	require.NoError(t, err)
	assert.NotEmpty(t, table.Version)
	assert.Contains(t, table.PremiumTools, "Claude Code")
	for _, m := range CoreMetrics {
		assert.NotEmpty(t, table.Metrics[m], "missing defaults for %s", m)
	}
}

func TestParseDefaults_RequiresUnconditionalRule(t *testing.T) {
	_, err := ParseDefaults([]byte(`
version: "1"
metrics:
  swe_bench_score:
    - { when: premium, value: 45 }
`))
	assert.Error(t, err)

	_, err = ParseDefaults([]byte(`metrics: {}`))
	assert.Error(t, err)
}

func TestLoadDefaults_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "defaults.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
version: "test"
metrics:
  swe_bench_score:
    - { value: 12 }
`), 0o600))

	table, err := LoadDefaults(path)
	require.NoError(t, err)
	assert.Equal(t, 12.0, table.Default(entity.Tool{}, MetricSWEBenchScore))
	assert.Equal(t, 0.0, table.Default(entity.Tool{}, MetricGitHubStars))
}

func TestMetricsFor_Defaults(t *testing.T) {
	table, err := EmbeddedDefaults()
	require.NoError(t, err)

	premium := entity.Tool{ID: "cursor", Name: "Cursor", Category: entity.CategoryIDEAssistant, Status: entity.ToolStatusActive}
	m := table.MetricsFor(premium)
	assert.Equal(t, 6.0, m.AgenticCapability)
	assert.Equal(t, 45.0, m.SWEBenchScore)
	assert.Equal(t, 200000.0, m.ContextWindow)
	assert.Equal(t, 500000.0, m.EstimatedUsers)
	assert.Equal(t, 5, m.LLMProviderCount)
	assert.True(t, m.MultiModelSupport)
	assert.Equal(t, "saas", m.BusinessModel)
	assert.Equal(t, 0.0, m.Completeness())

	oss := entity.Tool{ID: "aider", Name: "Aider", Category: entity.CategoryOpenSourceFramework}
	m = table.MetricsFor(oss)
	assert.Equal(t, 5.0, m.AgenticCapability)
	assert.Equal(t, 25000.0, m.GitHubStars)
	assert.Equal(t, 7.0, m.ReleaseFrequency)
	assert.True(t, m.MultiModelSupport)

	builder := entity.Tool{ID: "bolt", Name: "Bolt", Category: entity.CategoryAppBuilder}
	assert.Equal(t, 4.0, table.MetricsFor(builder).AgenticCapability)
}

func TestMetricsFor_MeasuredValuesAreReal(t *testing.T) {
	table, err := EmbeddedDefaults()
	require.NoError(t, err)

	info := entity.ToolInfo{
		Company:  entity.CompanyInfo{AcquiredBy: "BigCo", Funding: utils.ToPointer(2e8)},
		Business: entity.BusinessInfo{PricingModel: "Enterprise", BusinessModel: "enterprise_standard"},
		Technical: entity.TechnicalInfo{
			LLMProviders: []string{"openai"},
		},
		Metrics: entity.ToolInfoMetrics{
			SWEBenchScore:  utils.ToPointer(61.0),
			EstimatedUsers: utils.ToPointer(2e6),
			GitHubStars:    utils.ToPointer(0.0),
		},
		RiskFactors: []string{"regulatory_risk"},
	}
	tool := entity.Tool{ID: "x", Name: "X", Category: entity.CategoryCodeAssistant, Info: datatypes.NewJSONType(info)}

	m := table.MetricsFor(tool)
	assert.Equal(t, 61.0, m.SWEBenchScore)
	assert.Equal(t, 2e6, m.EstimatedUsers)
	assert.Equal(t, 2e6, m.CommunitySize)
	assert.Equal(t, 2e8, m.Funding)
	assert.Equal(t, 10000000.0, m.MonthlyARR)
	assert.Equal(t, 20.0, m.LanguageSupport)
	assert.Equal(t, 5000.0, m.GitHubStars)
	assert.Equal(t, "acquired", m.Status)
	assert.Equal(t, "enterprise_standard", m.BusinessModel)
	assert.Equal(t, 1, m.LLMProviderCount)
	assert.Equal(t, []string{"regulatory_risk"}, m.RiskFactors)

	assert.True(t, m.Real[MetricSWEBenchScore])
	assert.True(t, m.Real[MetricEstimatedUsers])
	assert.False(t, m.Real[MetricGitHubStars])
	assert.Equal(t, 0.25, m.Completeness())
}
