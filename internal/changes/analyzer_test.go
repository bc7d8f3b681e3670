package changes

import (
	"strings"
	"testing"

	"ai-power-rankings/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategorize(t *testing.T) {
	tests := []struct {
		name        string
		rankChange  int
		scoreChange float64
		isNew       bool
		want        Category
	}{
		{name: "major rise boundary", rankChange: 5, want: MajorRise},
		{name: "rise below major", rankChange: 4, want: Rise},
		{name: "rise by one", rankChange: 1, want: Rise},
		{name: "stable", rankChange: 0, scoreChange: 3, want: Stable},
		{name: "decline by one", rankChange: -1, want: Decline},
		{name: "decline above major", rankChange: -4, want: Decline},
		{name: "major decline boundary", rankChange: -5, want: MajorDecline},
		{name: "new wins over rise", rankChange: 20, isNew: true, want: NewEntry},
		{name: "new wins over decline", rankChange: -20, isNew: true, want: NewEntry},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Categorize(tt.rankChange, tt.scoreChange, tt.isNew))
		})
	}
}

func TestAnalyze_MajorRise(t *testing.T) {
	prevFactors := entity.FactorScores{
		AgenticCapability: 4, Innovation: 5, TechnicalPerformance: 5, DeveloperAdoption: 5,
		MarketTraction: 5, BusinessSentiment: 5, DevelopmentVelocity: 5, PlatformResilience: 5,
	}
	curFactors := prevFactors
	curFactors.AgenticCapability = 8.5
	curFactors.TechnicalPerformance = 7
	curFactors.MarketTraction = 5.2

	current := entity.RankingEntry{ToolID: "a", ToolName: "Tool A", Position: 3, Score: 78}
	previous := entity.RankingEntry{ToolID: "a", ToolName: "Tool A", Position: 10, Score: 50}

	got := NewAnalyzer().Analyze(current, &previous, curFactors, &prevFactors)

	assert.Equal(t, 7, got.RankChange)
	assert.Equal(t, MajorRise, got.Category)
	assert.Equal(t, 28.0, got.ScoreChange)
	assert.InDelta(t, 56.0, got.PercentScoreChange, 1e-9)

	require.NotEmpty(t, got.PrimaryReason)
	assert.Contains(t, strings.ToLower(got.PrimaryReason), "agentic")
	assert.Equal(t, "Significantly improved agentic capabilities (4.0 → 8.5)", got.PrimaryReason)
	require.Len(t, got.SecondaryReasons, 1)
	assert.Equal(t, "Technical benchmarks improved (5.0 → 7.0)", got.SecondaryReasons[0])

	assert.Equal(t, entity.FactorAgenticCapability, got.FactorChanges[0].Factor)
	assert.InDelta(t, 1.35, got.FactorChanges[0].Impact, 1e-9)
	assert.Equal(t,
		"Tool A surged 7 positions due to significantly improved agentic capabilities (4.0 → 8.5). "+
			"Multiple factors contributed to this rise, including improvements in agentic capability and technical performance.",
		got.NarrativeExplanation)
	assert.True(t, got.Notable())
}

func TestAnalyze_NewEntry(t *testing.T) {
	current := entity.RankingEntry{ToolID: "n", ToolName: "Newcomer", Position: 12, Score: 60}
	factors := entity.FactorScores{AgenticCapability: 7, Innovation: 6, MarketTraction: 0.3}

	got := NewAnalyzer().Analyze(current, nil, factors, nil)

	assert.Equal(t, NewEntry, got.Category)
	assert.Equal(t, 999, got.PreviousRank)
	assert.Equal(t, 987, got.RankChange)
	assert.Equal(t, 100.0, got.PercentScoreChange)
	assert.Equal(t, "New entry to rankings", got.PrimaryReason)
	assert.Equal(t, []string{"Strong Agentic Capability (7.0/10)", "Strong Innovation (6.0/10)"}, got.SecondaryReasons)
	assert.Equal(t, "Newcomer enters the rankings with strong scores in agentic capability, innovation.", got.NarrativeExplanation)
}

func TestAnalyze_StableWithoutChanges(t *testing.T) {
	factors := entity.FactorScores{AgenticCapability: 6, Innovation: 6}
	entry := entity.RankingEntry{ToolID: "s", ToolName: "Steady", Position: 4, Score: 70}

	got := NewAnalyzer().Analyze(entry, &entry, factors, &factors)

	assert.Equal(t, Stable, got.Category)
	assert.Equal(t, MinorAdjustments, got.PrimaryReason)
	assert.Empty(t, got.SecondaryReasons)
	assert.Equal(t, "Steady held steady with minimal changes across all ranking factors.", got.NarrativeExplanation)
	assert.False(t, got.Notable())
}

func TestAnalyze_StableWithSmallScoreGain(t *testing.T) {
	factors := entity.FactorScores{AgenticCapability: 6, Innovation: 6}
	previous := entity.RankingEntry{ToolID: "s", ToolName: "Steady", Position: 4, Score: 70}
	current := previous
	current.Score = 70.3

	got := NewAnalyzer().Analyze(current, &previous, factors, &factors)

	assert.Equal(t, Stable, got.Category)
	assert.Equal(t, MinorAdjustments, got.PrimaryReason)
	assert.Equal(t, "Steady maintained its position despite improvements in minor adjustments across multiple factors.",
		got.NarrativeExplanation)
	assert.False(t, got.Notable())
}

func TestAnalyze_Decline(t *testing.T) {
	prev := entity.FactorScores{Innovation: 8}
	cur := entity.FactorScores{Innovation: 6}
	current := entity.RankingEntry{ToolID: "d", ToolName: "Fader", Position: 6, Score: 60}
	previous := entity.RankingEntry{ToolID: "d", ToolName: "Fader", Position: 4, Score: 63}

	got := NewAnalyzer().Analyze(current, &previous, cur, &prev)

	assert.Equal(t, Decline, got.Category)
	assert.Equal(t, -2, got.RankChange)
	assert.Equal(t, "Innovation score decayed over time (8.0 → 6.0)", got.PrimaryReason)
	assert.Equal(t, "Fader fell 2 positions due to innovation score decayed over time (8.0 → 6.0).", got.NarrativeExplanation)
}

func TestAnalyzeDropped(t *testing.T) {
	prev := entity.RankingEntry{ToolID: "x", ToolName: "Gone", Position: 20, Score: 40,
		FactorScores: entity.FactorScores{AgenticCapability: 5}}

	got := NewAnalyzer().AnalyzeDropped(prev)
	assert.Equal(t, Dropped, got.Category)
	assert.Equal(t, -40.0, got.ScoreChange)
	assert.Contains(t, got.NarrativeExplanation, "Gone left the rankings")
}
