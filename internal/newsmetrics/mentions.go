package newsmetrics

import (
	"regexp"
	"sort"
	"strings"

	"ai-power-rankings/internal/entity"
)

// DetectToolMentions returns the ids of tools whose name or slug appears in text as a whole word.
func DetectToolMentions(tools []entity.Tool, text string) []string {
	lower := strings.ToLower(text)
	var ids []string
	for _, t := range tools {
		for _, term := range []string{t.Name, t.Slug} {
			term = strings.ToLower(strings.TrimSpace(term))
			if len(term) < 3 || !strings.Contains(lower, term) {
				continue
			}
			re, err := regexp.Compile(`\b` + regexp.QuoteMeta(term) + `\b`)
			if err != nil {
				continue
			}
			if re.MatchString(lower) {
				ids = append(ids, t.ID)
				break
			}
		}
	}
	sort.Strings(ids)
	return ids
}

// NormalizeMentions maps free-text mentions to tool ids where a tool matches by id, slug or name.
// Unmatched mentions are kept as-is.
func NormalizeMentions(tools []entity.Tool, mentions []string) []string {
	seen := make(map[string]bool, len(mentions))
	out := make([]string, 0, len(mentions))
	for _, m := range mentions {
		id := m
		for _, t := range tools {
			if m == t.ID || m == t.Slug || strings.EqualFold(m, t.Name) {
				id = t.ID
				break
			}
		}
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
