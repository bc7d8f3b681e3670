package ranking

import (
	"math"
	"sort"

	"ai-power-rankings/internal/entity"
)

const (
	maxBiggestMovers = 5
	maxTopChanges    = 10
)

func buildPreview(period string, comp *computation, comparison *entity.RankingPeriod) *PreviewResult {
	previous := map[string]entity.RankingEntry{}
	result := &PreviewResult{
		Period:             period,
		AlgorithmVersion:   comp.version,
		TotalTools:         len(comp.entries),
		DroppedEntries:     len(comp.dropped),
		Rankings:           comp.entries,
		RankingsComparison: []Comparison{},
		BiggestMovers:      BiggestMovers{Up: []Comparison{}, Down: []Comparison{}},
	}
	if comparison != nil {
		result.ComparisonPeriod = comparison.Period
		for _, e := range comparison.Entries() {
			previous[e.ToolID] = e
		}
	}
	result.IsInitialRanking = len(previous) == 0

	var totalChange float64
	for _, e := range comp.entries {
		c := Comparison{
			ToolID:      e.ToolID,
			ToolName:    e.ToolName,
			NewPosition: e.Position,
			NewScore:    e.Score,
			ScoreChange: e.Score,
			Movement:    MovementNew,
		}
		if prev, ok := previous[e.ToolID]; ok {
			pos, score := prev.Position, prev.Score
			c.CurrentPosition = &pos
			c.CurrentScore = &score
			c.PositionChange = pos - e.Position
			c.ScoreChange = round2(e.Score - score)
			switch {
			case c.PositionChange > 0:
				c.Movement = MovementUp
			case c.PositionChange < 0:
				c.Movement = MovementDown
			default:
				c.Movement = MovementSame
			}
		}
		totalChange += c.ScoreChange
		result.RankingsComparison = append(result.RankingsComparison, c)
	}

	for _, d := range comp.dropped {
		pos, score := d.Position, d.Score
		result.RankingsComparison = append(result.RankingsComparison, Comparison{
			ToolID:          d.ToolID,
			ToolName:        d.ToolName,
			CurrentPosition: &pos,
			CurrentScore:    &score,
			ScoreChange:     -score,
			Movement:        MovementDropped,
		})
	}

	summary := PreviewSummary{}
	for i, c := range result.RankingsComparison {
		switch c.Movement {
		case MovementUp:
			summary.ToolsMovedUp++
			result.BiggestMovers.Up = append(result.BiggestMovers.Up, c)
		case MovementDown:
			summary.ToolsMovedDown++
			result.BiggestMovers.Down = append(result.BiggestMovers.Down, c)
		case MovementSame:
			summary.ToolsStayedSame++
		case MovementNew:
			result.NewEntries++
		}
		if c.Movement == MovementDropped {
			continue
		}
		if i == 0 {
			summary.HighestScore, summary.LowestScore = c.NewScore, c.NewScore
		}
		summary.HighestScore = math.Max(summary.HighestScore, c.NewScore)
		summary.LowestScore = math.Min(summary.LowestScore, c.NewScore)
	}
	if n := len(comp.entries); n > 0 {
		summary.AverageScoreChange = round2(totalChange / float64(n))
	}
	result.Summary = summary

	up, down := result.BiggestMovers.Up, result.BiggestMovers.Down
	sort.SliceStable(up, func(i, j int) bool { return up[i].PositionChange > up[j].PositionChange })
	sort.SliceStable(down, func(i, j int) bool { return down[i].PositionChange < down[j].PositionChange })
	result.BiggestMovers.Up = capComparisons(up, maxBiggestMovers)
	result.BiggestMovers.Down = capComparisons(down, maxBiggestMovers)

	n := len(comp.entries)
	if n > maxTopChanges {
		n = maxTopChanges
	}
	result.Top10Changes = append([]Comparison{}, result.RankingsComparison[:n]...)
	return result
}

func capComparisons(in []Comparison, n int) []Comparison {
	if len(in) > n {
		return in[:n]
	}
	return in
}
