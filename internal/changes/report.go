package changes

import (
	"fmt"
	"sort"
	"strings"

	"ai-power-rankings/internal/entity"
)

const (
	maxMajorMovers       = 5
	keyFactorNetTrendMin = 5
)

// Trend counts tools whose factor improved or declined by more than 0.5.
type Trend struct {
	Improving int `json:"improving"`
	Declining int `json:"declining"`
}

// MajorMovers holds the largest rises and declines.
type MajorMovers struct {
	Rises    []Analysis `json:"rises"`
	Declines []Analysis `json:"declines"`
}

// Report summarises all analyses of one ranking run.
type Report struct {
	Summary          string                  `json:"summary"`
	MajorMovers      MajorMovers             `json:"major_movers"`
	FactorTrends     map[entity.Factor]Trend `json:"factor_trends"`
	NarrativeSummary string                  `json:"narrative_summary"`
}

// BuildReport aggregates analyses into a report.
func BuildReport(analyses []Analysis) Report {
	var rises, declines, newEntries []Analysis
	for _, a := range analyses {
		switch a.Category {
		case MajorRise:
			rises = append(rises, a)
		case MajorDecline:
			declines = append(declines, a)
		case NewEntry:
			newEntries = append(newEntries, a)
		}
	}
	sort.SliceStable(rises, func(i, j int) bool { return rises[i].RankChange > rises[j].RankChange })
	sort.SliceStable(declines, func(i, j int) bool { return declines[i].RankChange < declines[j].RankChange })

	trends := make(map[entity.Factor]Trend, len(entity.Factors))
	for _, f := range entity.Factors {
		trends[f] = Trend{}
	}
	for _, a := range analyses {
		for _, fc := range a.FactorChanges {
			t := trends[fc.Factor]
			switch {
			case fc.Change > significantFactorChange:
				t.Improving++
			case fc.Change < -significantFactorChange:
				t.Declining++
			}
			trends[fc.Factor] = t
		}
	}

	return Report{
		Summary: fmt.Sprintf("%d tools analyzed. %d major rises, %d major declines.",
			len(analyses), len(rises), len(declines)),
		MajorMovers: MajorMovers{
			Rises:    capAnalyses(rises, maxMajorMovers),
			Declines: capAnalyses(declines, maxMajorMovers),
		},
		FactorTrends:     trends,
		NarrativeSummary: reportNarrative(rises, declines, newEntries, trends),
	}
}

func reportNarrative(rises, declines, newEntries []Analysis, trends map[entity.Factor]Trend) string {
	var b strings.Builder
	b.WriteString("This month's rankings show significant movement across the AI coding tools landscape.")

	if len(rises) > 0 {
		fmt.Fprintf(&b, " %s led the gains, climbing %d positions.", rises[0].ToolName, rises[0].RankChange)
	}
	if len(declines) > 0 {
		fmt.Fprintf(&b, " On the other side, %s experienced the largest drop, falling %d positions.",
			declines[0].ToolName, absInt(declines[0].RankChange))
	}

	var top entity.Factor
	topNet := 0
	for _, f := range entity.Factors {
		net := trends[f].Improving - trends[f].Declining
		if absInt(net) > absInt(topNet) {
			top, topNet = f, net
		}
	}
	if topNet > keyFactorNetTrendMin {
		fmt.Fprintf(&b, " %s emerged as a key differentiator this month, with %d tools showing improvement.",
			FactorName(top), trends[top].Improving)
	}

	if n := len(newEntries); n > 0 {
		names := make([]string, 0, 2)
		for _, e := range capAnalyses(newEntries, 2) {
			names = append(names, e.ToolName)
		}
		plural := ""
		if n > 1 {
			plural = "s"
		}
		fmt.Fprintf(&b, " %d new tool%s entered the rankings, including %s.", n, plural, strings.Join(names, " and "))
	}
	return b.String()
}

func capAnalyses(in []Analysis, n int) []Analysis {
	out := make([]Analysis, 0, n)
	for i := 0; i < len(in) && i < n; i++ {
		out = append(out, in[i])
	}
	return out
}
