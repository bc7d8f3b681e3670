package newsmetrics

import (
	"testing"
	"time"

	"ai-power-rankings/internal/entity"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cursor = entity.Tool{ID: "tool-cursor", Slug: "cursor", Name: "Cursor"}

func article(id, title, content string, published time.Time, mentions ...string) entity.NewsArticle {
	return entity.NewsArticle{
		ID:           id,
		Title:        title,
		Content:      content,
		PublishedAt:  published,
		ToolMentions: pq.StringArray(mentions),
	}
}

func TestExtractText(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		check func(t *testing.T, e Extracted)
	}{
		{
			name: "swe-bench percentage",
			text: "The agent achieved 45.2% on SWE-bench Verified.",
			check: func(t *testing.T, e Extracted) {
				require.NotNil(t, e.SWEBenchScore)
				assert.Equal(t, 45.2, *e.SWEBenchScore)
			},
		},
		{
			name: "funding in millions",
			text: "The startup raised $50 million in a Series B.",
			check: func(t *testing.T, e Extracted) {
				require.NotNil(t, e.Funding)
				assert.Equal(t, 50_000_000.0, *e.Funding)
			},
		},
		{
			name: "funding in billions and valuation",
			text: "Anysphere raised $1.2 billion at a 9 billion dollar valuation.",
			check: func(t *testing.T, e Extracted) {
				require.NotNil(t, e.Funding)
				assert.Equal(t, 1.2e9, *e.Funding)
				require.NotNil(t, e.Valuation)
				assert.Equal(t, 9e9, *e.Valuation)
			},
		},
		{
			name: "annual revenue is converted to monthly",
			text: "It crossed $120M ARR this quarter.",
			check: func(t *testing.T, e Extracted) {
				require.NotNil(t, e.MonthlyARR)
				assert.Equal(t, 10_000_000.0, *e.MonthlyARR)
			},
		},
		{
			name: "users with suffix",
			text: "Now used by 2 million users worldwide, up from 500k users.",
			check: func(t *testing.T, e Extracted) {
				require.NotNil(t, e.EstimatedUsers)
				assert.Equal(t, 2e6, *e.EstimatedUsers)
			},
		},
		{
			name: "users with k suffix",
			text: "Over 300k users signed up.",
			check: func(t *testing.T, e Extracted) {
				require.NotNil(t, e.EstimatedUsers)
				assert.Equal(t, 3e5, *e.EstimatedUsers)
			},
		},
		{
			name: "nothing to extract",
			text: "A quiet month with minor fixes.",
			check: func(t *testing.T, e Extracted) {
				assert.True(t, e.Empty())
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, ExtractText(tt.text))
		})
	}
}

func TestExtract_FirstMatchWinsNewestFirst(t *testing.T) {
	now := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	articles := []entity.NewsArticle{
		article("a1", "Old", "achieved 30% on SWE-bench", now.AddDate(0, -2, 0), "tool-cursor"),
		article("a2", "New", "achieved 52% on swe bench", now.AddDate(0, 0, -3), "cursor"),
		article("a3", "Other", "raised $900 million", now.AddDate(0, 0, -1), "tool-other"),
		article("a4", "Future", "raised $5 billion", now.AddDate(0, 0, 5), "Cursor"),
		article("a5", "Funding", "Cursor raised $60 million", now.AddDate(0, 0, -10), "cursor"),
	}

	got := Extract(cursor, articles, now)
	require.NotNil(t, got.SWEBenchScore)
	assert.Equal(t, 52.0, *got.SWEBenchScore)
	require.NotNil(t, got.Funding)
	assert.Equal(t, 60e6, *got.Funding)

	unbounded := Extract(cursor, articles, time.Time{})
	assert.Equal(t, 5e9, *unbounded.Funding)
}

func TestRelevantArticles(t *testing.T) {
	now := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	articles := []entity.NewsArticle{
		article("b", "", "", now.AddDate(0, 0, -1), "cursor"),
		article("a", "", "", now.AddDate(0, 0, -1), "tool-cursor"),
		article("c", "", "", now, "CURSOR"),
		article("d", "", "", now, "windsurf"),
	}
	got := RelevantArticles(cursor, articles, now)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"c", "a", "b"}, []string{got[0].ID, got[1].ID, got[2].ID})
}

func TestDetectToolMentions(t *testing.T) {
	tools := []entity.Tool{
		cursor,
		{ID: "tool-claude-code", Slug: "claude-code", Name: "Claude Code"},
		{ID: "tool-v0", Slug: "v0", Name: "v0"},
		{ID: "tool-devin", Slug: "devin", Name: "Devin"},
	}
	got := DetectToolMentions(tools, "Claude Code and Cursor compete; Devinci is unrelated.")
	assert.Equal(t, []string{"tool-claude-code", "tool-cursor"}, got)
}

func TestNormalizeMentions(t *testing.T) {
	tools := []entity.Tool{cursor}
	got := NormalizeMentions(tools, []string{"Cursor", "cursor", "tool-cursor", "Unknown Tool"})
	assert.Equal(t, []string{"tool-cursor", "Unknown Tool"}, got)
}
