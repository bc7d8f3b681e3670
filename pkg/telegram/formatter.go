package telegram

import (
	"fmt"
	"strings"
	"time"

	"ai-power-rankings/internal/entity"
	"ai-power-rankings/internal/ranking"
)

const maxMessageLength = 4090

// FormatRankingBuild formats a ranking build into Markdown messages for Telegram, splitting
// the top entries across parts so that no message exceeds the Telegram limit.
func FormatRankingBuild(result *ranking.BuildResult, topN int) []string {
	if result == nil || result.Ranking == nil {
		return []string{"No rankings were built."}
	}

	period := result.Ranking
	var header strings.Builder
	header.WriteString(fmt.Sprintf("🏆 *AI Power Rankings %s* (%s)\n", period.Period, period.AlgorithmVersion))
	switch {
	case !result.Persisted:
		header.WriteString("🧪 Dry run, nothing stored\n")
	case period.IsCurrent:
		header.WriteString("📌 Published as current\n")
	}
	s := result.Stats
	header.WriteString(fmt.Sprintf("📊 %d tools, avg %.1f, high %.1f, low %.1f\n", s.TotalTools, s.AverageScore, s.HighestScore, s.LowestScore))
	header.WriteString(fmt.Sprintf("⬆️ %d  ⬇️ %d  ➖ %d  🆕 %d\n\n", s.MovedUp, s.MovedDown, s.Unchanged, s.NewEntries))

	var messages []string
	var current strings.Builder
	part := 1
	current.WriteString(header.String())

	entries := period.Entries()
	if topN > 0 && len(entries) > topN {
		entries = entries[:topN]
	}
	for _, e := range entries {
		line := formatEntry(e)
		if current.Len()+len(line) > maxMessageLength {
			messages = append(messages, current.String())
			part++
			current.Reset()
			current.WriteString(fmt.Sprintf("--- *Rankings %s part %d* ---\n\n", period.Period, part))
		}
		current.WriteString(line)
	}

	footer := formatFooter(result)
	if current.Len()+len(footer) > maxMessageLength {
		messages = append(messages, current.String())
		current.Reset()
	}
	current.WriteString(footer)
	return append(messages, current.String())
}

func formatEntry(e entity.RankingEntry) string {
	return fmt.Sprintf("%s *%d. %s* %.1f (%s)\n", movementIcon(e.Movement), e.Position, e.ToolName, e.Score, e.Tier)
}

func movementIcon(m *entity.Movement) string {
	if m == nil {
		return "🆕"
	}
	switch m.Direction {
	case entity.DirectionUp:
		return fmt.Sprintf("🟢+%d", m.Change)
	case entity.DirectionDown:
		return fmt.Sprintf("🔴%d", m.Change)
	case entity.DirectionNew:
		return "🆕"
	default:
		return "⚪"
	}
}

func formatFooter(result *ranking.BuildResult) string {
	var b strings.Builder
	if narrative := result.ChangeReport.NarrativeSummary; narrative != "" {
		b.WriteString(fmt.Sprintf("\n📝 _%s_\n", narrative))
	}
	if len(result.Warnings) > 0 {
		b.WriteString("\n⚠️ *Warnings:*\n")
		for _, w := range result.Warnings {
			b.WriteString(fmt.Sprintf("  - %s\n", w))
		}
	}
	return b.String()
}

// FormatErrorAlertMessage formats a failed job run.
func FormatErrorAlertMessage(at time.Time, errType string, errMsg string, data string) string {
	return fmt.Sprintf("📛 [ERROR ALERT]\n%s\n🔧 %s\n⚠️ %s\n\n📄 Data: %s\n",
		at.Format("2006-01-02 15:04:05 MST"), errType, errMsg, data)
}
