// Package changes explains period-over-period ranking movement.
package changes

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"ai-power-rankings/internal/entity"
	"ai-power-rankings/internal/scoring"
)

// Category classifies a tool's movement between two periods.
type Category string

const (
	MajorRise    Category = "major_rise"
	Rise         Category = "rise"
	Stable       Category = "stable"
	Decline      Category = "decline"
	MajorDecline Category = "major_decline"
	NewEntry     Category = "new_entry"
	Dropped      Category = "dropped"
)

const (
	majorMoveThreshold       = 5
	significantFactorChange  = 0.5
	narrativeFactorThreshold = 1.0
	missingPreviousRank      = 999

	// MinorAdjustments is the primary reason when no factor moved by more than 0.5.
	MinorAdjustments = "Minor adjustments across multiple factors"
)

var factorNames = map[entity.Factor]string{
	entity.FactorAgenticCapability:    "Agentic Capability",
	entity.FactorInnovation:           "Innovation",
	entity.FactorTechnicalPerformance: "Technical Performance",
	entity.FactorDeveloperAdoption:    "Developer Adoption",
	entity.FactorMarketTraction:       "Market Traction",
	entity.FactorBusinessSentiment:    "Business Sentiment",
	entity.FactorDevelopmentVelocity:  "Development Velocity",
	entity.FactorPlatformResilience:   "Platform Resilience",
}

// FactorName returns the display name of f.
func FactorName(f entity.Factor) string {
	if n, ok := factorNames[f]; ok {
		return n
	}
	return string(f)
}

// FactorChange is the movement of one factor score.
type FactorChange struct {
	Factor        entity.Factor `json:"factor"`
	PreviousValue float64       `json:"previous_value"`
	CurrentValue  float64       `json:"current_value"`
	Change        float64       `json:"change"`
	PercentChange float64       `json:"percent_change"`
	Impact        float64       `json:"impact"`
}

// Analysis explains one tool's change between two periods.
type Analysis struct {
	ToolID               string         `json:"tool_id"`
	ToolName             string         `json:"tool_name"`
	PreviousRank         int            `json:"previous_rank"`
	CurrentRank          int            `json:"current_rank"`
	RankChange           int            `json:"rank_change"`
	PreviousScore        float64        `json:"previous_score"`
	CurrentScore         float64        `json:"current_score"`
	ScoreChange          float64        `json:"score_change"`
	PercentScoreChange   float64        `json:"percent_score_change"`
	PrimaryReason        string         `json:"primary_reason"`
	SecondaryReasons     []string       `json:"secondary_reasons"`
	FactorChanges        []FactorChange `json:"factor_changes"`
	NarrativeExplanation string         `json:"narrative_explanation"`
	Category             Category       `json:"change_category"`
}

// Summary returns the short form stored on a ranking entry.
func (a Analysis) Summary() *entity.ChangeSummary {
	return &entity.ChangeSummary{
		PrimaryReason:        a.PrimaryReason,
		NarrativeExplanation: a.NarrativeExplanation,
	}
}

// Notable reports whether the analysis is worth attaching to a ranking entry.
func (a Analysis) Notable() bool {
	return absInt(a.RankChange) >= scoring.OutlierPositionJump || a.PrimaryReason != MinorAdjustments
}

// Analyzer attributes ranking movement to factor changes.
type Analyzer struct {
	weights scoring.Weights
}

// NewAnalyzer returns an Analyzer using the engine's factor weights.
func NewAnalyzer() *Analyzer {
	return &Analyzer{weights: scoring.DefaultWeights()}
}

// Categorize classifies a movement. New entries win over any delta.
func Categorize(rankChange int, scoreChange float64, isNew bool) Category {
	switch {
	case isNew:
		return NewEntry
	case rankChange >= majorMoveThreshold:
		return MajorRise
	case rankChange >= 1:
		return Rise
	case rankChange <= -majorMoveThreshold:
		return MajorDecline
	case rankChange <= -1:
		return Decline
	default:
		return Stable
	}
}

// Analyze compares current with previous. A nil previous marks a new entry.
// Scores are compared on whatever scale the caller passes for both periods.
func (a *Analyzer) Analyze(current entity.RankingEntry, previous *entity.RankingEntry,
	currentFactors entity.FactorScores, previousFactors *entity.FactorScores) Analysis {
	prevRank, prevScore := missingPreviousRank, 0.0
	if previous != nil {
		if previous.Position > 0 {
			prevRank = previous.Position
		}
		prevScore = previous.Score
	}

	rankChange := prevRank - current.Position
	scoreChange := current.Score - prevScore
	percent := 100.0
	if prevScore > 0 {
		percent = scoreChange / prevScore * 100
	}

	var prevFactors entity.FactorScores
	if previousFactors != nil {
		prevFactors = *previousFactors
	}

	category := Categorize(rankChange, scoreChange, previous == nil)
	factorChanges := a.factorChanges(currentFactors, prevFactors)
	primary, secondary := reasons(factorChanges, category)

	return Analysis{
		ToolID:               current.ToolID,
		ToolName:             current.ToolName,
		PreviousRank:         prevRank,
		CurrentRank:          current.Position,
		RankChange:           rankChange,
		PreviousScore:        prevScore,
		CurrentScore:         current.Score,
		ScoreChange:          scoreChange,
		PercentScoreChange:   percent,
		PrimaryReason:        primary,
		SecondaryReasons:     secondary,
		FactorChanges:        factorChanges,
		NarrativeExplanation: narrative(current.ToolName, category, rankChange, scoreChange, factorChanges, primary),
		Category:             category,
	}
}

// AnalyzeDropped explains a tool present in the previous period but absent now.
func (a *Analyzer) AnalyzeDropped(previous entity.RankingEntry) Analysis {
	changes := a.factorChanges(entity.FactorScores{}, previous.FactorScores)
	return Analysis{
		ToolID:               previous.ToolID,
		ToolName:             previous.ToolName,
		PreviousRank:         previous.Position,
		PreviousScore:        previous.Score,
		ScoreChange:          -previous.Score,
		PercentScoreChange:   -100,
		PrimaryReason:        "Removed from rankings",
		SecondaryReasons:     []string{},
		FactorChanges:        changes,
		NarrativeExplanation: fmt.Sprintf("%s left the rankings after holding position %d.", previous.ToolName, previous.Position),
		Category:             Dropped,
	}
}

func (a *Analyzer) factorChanges(current, previous entity.FactorScores) []FactorChange {
	changes := make([]FactorChange, 0, len(entity.Factors))
	for _, f := range entity.Factors {
		cur, prev := current.Get(f), previous.Get(f)
		change := cur - prev
		percent := 100.0
		if prev > 0 {
			percent = change / prev * 100
		}
		changes = append(changes, FactorChange{
			Factor:        f,
			PreviousValue: prev,
			CurrentValue:  cur,
			Change:        change,
			PercentChange: percent,
			Impact:        change * a.weights[f],
		})
	}
	sort.SliceStable(changes, func(i, j int) bool {
		return math.Abs(changes[i].Impact) > math.Abs(changes[j].Impact)
	})
	return changes
}

func reasons(changes []FactorChange, category Category) (string, []string) {
	var significant []FactorChange
	for _, c := range changes {
		if math.Abs(c.Change) > significantFactorChange {
			significant = append(significant, c)
		}
	}

	if category == NewEntry {
		secondary := []string{}
		for _, c := range limit(significant, 3) {
			secondary = append(secondary, fmt.Sprintf("Strong %s (%.1f/10)", FactorName(c.Factor), c.CurrentValue))
		}
		return "New entry to rankings", secondary
	}

	if len(significant) == 0 {
		return MinorAdjustments, []string{}
	}

	secondary := []string{}
	for _, c := range limit(significant[1:], 3) {
		secondary = append(secondary, factorReason(c))
	}
	return factorReason(significant[0]), secondary
}

func factorReason(c FactorChange) string {
	direction := "declined"
	if c.Change > 0 {
		direction = "improved"
	}
	magnitude := ""
	if math.Abs(c.Change) > 2 {
		magnitude = "significantly"
	}
	values := fmt.Sprintf("(%.1f → %.1f)", c.PreviousValue, c.CurrentValue)

	switch c.Factor {
	case entity.FactorAgenticCapability:
		if c.Change > 0 {
			return capitalize(joinWords(magnitude, "improved agentic capabilities", values))
		}
		return capitalize(joinWords(magnitude, "weaker agentic performance", values))
	case entity.FactorInnovation:
		if c.Change < 0 {
			return joinWords("Innovation score decayed over time", values)
		}
		return joinWords("New innovations boosted score", values)
	case entity.FactorMarketTraction:
		return joinWords("Market traction", direction, magnitude, values)
	case entity.FactorDeveloperAdoption:
		return joinWords("Developer adoption", direction, magnitude, values)
	case entity.FactorTechnicalPerformance:
		return joinWords("Technical benchmarks", direction, magnitude, values)
	default:
		return joinWords(FactorName(c.Factor), direction, magnitude, values)
	}
}

func narrative(tool string, category Category, rankChange int, scoreChange float64,
	changes []FactorChange, primary string) string {
	var improvements, declines []FactorChange
	for _, c := range changes {
		if c.Change > narrativeFactorThreshold {
			improvements = append(improvements, c)
		}
		if c.Change < -narrativeFactorThreshold {
			declines = append(declines, c)
		}
	}
	moved := absInt(rankChange)
	reason := lowerFirst(primary)

	switch category {
	case MajorRise:
		s := fmt.Sprintf("%s surged %d positions due to %s.", tool, moved, reason)
		if len(improvements) > 1 {
			s += fmt.Sprintf(" Multiple factors contributed to this rise, including improvements in %s.",
				strings.Join(lowerNames(limit(improvements, 2)), " and "))
		}
		return s
	case Rise:
		return fmt.Sprintf("%s climbed %d %s primarily due to %s.", tool, moved, positions(moved), reason)
	case MajorDecline:
		s := fmt.Sprintf("%s dropped %d positions. %s.", tool, moved, primary)
		if len(declines) > 1 {
			s += fmt.Sprintf(" Additional factors include declining %s.",
				strings.Join(lowerNames(limit(declines[1:], 2)), " and "))
		}
		return s
	case Decline:
		return fmt.Sprintf("%s fell %d %s due to %s.", tool, moved, positions(moved), reason)
	case Stable:
		if math.Abs(scoreChange) > 0.1 {
			kind := "declines"
			if scoreChange > 0 {
				kind = "improvements"
			}
			return fmt.Sprintf("%s maintained its position despite %s in %s.", tool, kind, reason)
		}
		return fmt.Sprintf("%s held steady with minimal changes across all ranking factors.", tool)
	case NewEntry:
		if len(improvements) == 0 {
			return fmt.Sprintf("%s enters the rankings.", tool)
		}
		return fmt.Sprintf("%s enters the rankings with strong scores in %s.", tool,
			strings.Join(lowerNames(limit(improvements, 3)), ", "))
	default:
		return fmt.Sprintf("%s experienced changes due to %s.", tool, reason)
	}
}

func positions(n int) string {
	if n == 1 {
		return "position"
	}
	return "positions"
}

func lowerNames(changes []FactorChange) []string {
	out := make([]string, 0, len(changes))
	for _, c := range changes {
		out = append(out, strings.ToLower(FactorName(c.Factor)))
	}
	return out
}

func limit(changes []FactorChange, n int) []FactorChange {
	if len(changes) > n {
		return changes[:n]
	}
	return changes
}

func joinWords(parts ...string) string {
	words := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			words = append(words, p)
		}
	}
	return strings.Join(words, " ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
