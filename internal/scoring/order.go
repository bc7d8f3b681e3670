package scoring

import (
	"fmt"
	"sort"

	"ai-power-rankings/internal/entity"
)

// Candidate is a scored tool awaiting a position.
type Candidate struct {
	ToolID           string
	ToolName         string
	Score            float64
	PreviousPosition *int
}

// Order sorts candidates by score descending and breaks ties by previous
// position (tools that had one first, lower first), then name, then id.
// The returned slice is a sorted copy; positions are its indices plus one.
func Order(candidates []Candidate) []Candidate {
	out := append([]Candidate(nil), candidates...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		switch {
		case a.PreviousPosition != nil && b.PreviousPosition == nil:
			return true
		case a.PreviousPosition == nil && b.PreviousPosition != nil:
			return false
		case a.PreviousPosition != nil && *a.PreviousPosition != *b.PreviousPosition:
			return *a.PreviousPosition < *b.PreviousPosition
		}
		if a.ToolName != b.ToolName {
			return a.ToolName < b.ToolName
		}
		return a.ToolID < b.ToolID
	})
	return out
}

// TierForPosition returns the S/A/B/C/D band of a position.
func TierForPosition(position int) string {
	switch {
	case position <= 5:
		return "S"
	case position <= 15:
		return "A"
	case position <= 25:
		return "B"
	case position <= 35:
		return "C"
	default:
		return "D"
	}
}

// PeriodIssues is the outcome of ValidatePeriod.
type PeriodIssues struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// OK reports whether no hard errors were found.
func (p PeriodIssues) OK() bool {
	return len(p.Errors) == 0
}

// ValidatePeriod checks that positions are a contiguous 1..N permutation,
// scores do not increase with position and tool ids are unique.
// Equal adjacent scores are reported as warnings.
func ValidatePeriod(entries []entity.RankingEntry) PeriodIssues {
	issues := PeriodIssues{Errors: []string{}, Warnings: []string{}}

	sorted := append([]entity.RankingEntry(nil), entries...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Position < sorted[j].Position })

	seen := make(map[string]bool, len(sorted))
	for i, e := range sorted {
		if e.Position != i+1 {
			issues.Errors = append(issues.Errors,
				fmt.Sprintf("position %d found where %d expected (tool %s)", e.Position, i+1, e.ToolID))
		}
		if seen[e.ToolID] {
			issues.Errors = append(issues.Errors, fmt.Sprintf("duplicate tool %s", e.ToolID))
		}
		seen[e.ToolID] = true

		if i == 0 {
			continue
		}
		prev := sorted[i-1]
		switch {
		case e.Score > prev.Score:
			issues.Errors = append(issues.Errors,
				fmt.Sprintf("score %.2f at position %d exceeds %.2f at position %d", e.Score, e.Position, prev.Score, prev.Position))
		case e.Score == prev.Score:
			issues.Warnings = append(issues.Warnings,
				fmt.Sprintf("tools %s and %s share score %.2f", prev.ToolID, e.ToolID, e.Score))
		}
	}
	return issues
}
