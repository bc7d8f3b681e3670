package newsmetrics

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Mention types reported by AnalyzeArticle.
const (
	MentionFunding          = "funding"
	MentionUsers            = "users"
	MentionBenchmark        = "benchmark"
	MentionContextWindow    = "context_window"
	MentionGitHub           = "github"
	MentionReleaseFrequency = "release_frequency"
)

const contextWindowSize = 100

var (
	mentionFundingPattern   = regexp.MustCompile(`(?i)\$(\d+\.?\d*)\s*(million|billion|M|B)\s*(funding|investment|raised|round|valuation)`)
	mentionUsersPattern     = regexp.MustCompile(`(?i)(\d+\.?\d*)\s*(million|thousand|K|M)?\s*(users|customers|developers|downloads|installs)`)
	mentionBenchmarkPattern = regexp.MustCompile(`(?i)(\d+\.?\d*)%?\s*(on\s+)?(SWE-bench|HumanEval|benchmark|accuracy|performance)`)
	mentionContextPattern   = regexp.MustCompile(`(?i)(\d+[,.]?\d*[KM]?)\s*(tokens?|context)`)
	mentionGitHubPattern    = regexp.MustCompile(`(?i)(\d+[,.]?\d*[KM]?)\s*(stars|forks|contributors)`)
	mentionReleasePattern   = regexp.MustCompile(`(?i)(daily|weekly|monthly|quarterly)\s*(releases?|updates?|deployments?)`)
	leadingNumberPattern    = regexp.MustCompile(`\d+\.?\d*`)
	leadingIntPattern       = regexp.MustCompile(`\d+`)

	positiveSignals = []string{
		"loved by developers", "developers love", "community favorite", "highly rated",
		"top choice", "breakthrough", "game-changer", "revolutionary",
	}
	negativeSignals = []string{
		"criticism", "concerns", "issues", "problems", "backlash", "controversy", "complaints",
	}
)

// Mention is one metric occurrence with its surrounding text.
type Mention struct {
	Type    string `json:"type"`
	Value   string `json:"value"`
	Context string `json:"context"`
}

// Impact is the estimated effect of an article on a ranking factor.
type Impact struct {
	Factor      string   `json:"factor"`
	Impact      string   `json:"impact"`    // positive, negative, neutral
	Magnitude   string   `json:"magnitude"` // high, medium, low
	Value       string   `json:"value,omitempty"`
	Description string   `json:"description"`
	Evidence    []string `json:"evidence"`
}

// ArticleAnalysis lists metric mentions and factor impacts of one article.
type ArticleAnalysis struct {
	Impacts []Impact  `json:"impacts"`
	Metrics []Mention `json:"extracted_metrics"`
}

// AnalyzeArticle reports every metric mention in content and the factor impacts they suggest.
// Keyword signals are also read from the title.
func AnalyzeArticle(title, content string) ArticleAnalysis {
	mentions := extractMentions(content)
	return ArticleAnalysis{
		Impacts: impactsFor(title, content, mentions),
		Metrics: mentions,
	}
}

func extractMentions(content string) []Mention {
	mentions := []Mention{}
	collect := func(kind string, re *regexp.Regexp, keep func(groups []string) bool) {
		for _, idx := range re.FindAllStringSubmatchIndex(content, -1) {
			groups := make([]string, 0, len(idx)/2)
			for i := 0; i < len(idx); i += 2 {
				if idx[i] < 0 {
					groups = append(groups, "")
					continue
				}
				groups = append(groups, content[idx[i]:idx[i+1]])
			}
			if keep != nil && !keep(groups) {
				continue
			}
			mentions = append(mentions, Mention{
				Type:    kind,
				Value:   groups[0],
				Context: contextAround(content, idx[0]),
			})
		}
	}

	collect(MentionFunding, mentionFundingPattern, nil)
	collect(MentionUsers, mentionUsersPattern, nil)
	collect(MentionBenchmark, mentionBenchmarkPattern, nil)
	collect(MentionContextWindow, mentionContextPattern, func(g []string) bool {
		return parseTokenValue(g[1]) > 1000
	})
	collect(MentionGitHub, mentionGitHubPattern, nil)
	collect(MentionReleaseFrequency, mentionReleasePattern, nil)
	return mentions
}

func impactsFor(title, content string, mentions []Mention) []Impact {
	lower := strings.ToLower(content)
	signals := strings.ToLower(title) + " " + lower
	byType := make(map[string][]Mention)
	for _, m := range mentions {
		byType[m.Type] = append(byType[m.Type], m)
	}
	evidence := func(ms []Mention) []string {
		out := make([]string, 0, len(ms))
		for _, m := range ms {
			out = append(out, m.Context)
		}
		return out
	}

	impacts := []Impact{}

	if funding := byType[MentionFunding]; len(funding) > 0 {
		magnitude := "medium"
		for _, m := range funding {
			v := strings.ToLower(m.Value)
			if strings.Contains(v, "billion") || (strings.Contains(v, "million") && leadingInt(v) >= 50) {
				magnitude = "high"
			}
		}
		impacts = append(impacts, Impact{
			Factor:      "marketTraction",
			Impact:      "positive",
			Magnitude:   magnitude,
			Value:       funding[0].Value,
			Description: "New funding or valuation milestone demonstrates strong investor confidence",
			Evidence:    evidence(funding),
		})
	}

	if bench := byType[MentionBenchmark]; len(bench) > 0 {
		best := 0.0
		for _, m := range bench {
			if v, err := strconv.ParseFloat(leadingNumberPattern.FindString(m.Value), 64); err == nil && v > best {
				best = v
			}
		}
		impact, magnitude := "neutral", "low"
		if best > 20 {
			impact, magnitude = "positive", "medium"
		}
		if best > 50 {
			magnitude = "high"
		}
		impacts = append(impacts, Impact{
			Factor:      "technicalCapability",
			Impact:      impact,
			Magnitude:   magnitude,
			Value:       strconv.FormatFloat(best, 'f', -1, 64) + "%",
			Description: "Benchmark performance indicates technical advancement",
			Evidence:    evidence(bench),
		})
	}

	if ctx := byType[MentionContextWindow]; len(ctx) > 0 {
		impacts = append(impacts, Impact{
			Factor:      "technicalCapability",
			Impact:      "positive",
			Magnitude:   "medium",
			Value:       ctx[0].Value,
			Description: "Expanded context window enhances capability for complex tasks",
			Evidence:    evidence(ctx),
		})
	}

	if users := byType[MentionUsers]; len(users) > 0 {
		magnitude := "medium"
		for _, m := range users {
			if strings.Contains(strings.ToLower(m.Value), "million") {
				magnitude = "high"
			}
		}
		impacts = append(impacts, Impact{
			Factor:      "developerAdoption",
			Impact:      "positive",
			Magnitude:   magnitude,
			Value:       users[0].Value,
			Description: "Growing user base indicates strong developer adoption",
			Evidence:    evidence(users),
		})
	}

	if gh := byType[MentionGitHub]; len(gh) > 0 {
		impacts = append(impacts, Impact{
			Factor:      "developerAdoption",
			Impact:      "positive",
			Magnitude:   "medium",
			Value:       gh[0].Value,
			Description: "GitHub activity shows developer engagement",
			Evidence:    evidence(gh),
		})
	}

	releases := byType[MentionReleaseFrequency]
	newFeatures := containsAny(signals, []string{"new feature", "introduces", "launches"})
	if len(releases) > 0 || newFeatures {
		magnitude := "medium"
		value := ""
		for _, m := range releases {
			v := strings.ToLower(m.Value)
			if strings.Contains(v, "daily") || strings.Contains(v, "weekly") {
				magnitude = "high"
			}
		}
		if len(releases) > 0 {
			value = releases[0].Value
		}
		impacts = append(impacts, Impact{
			Factor:      "developmentVelocity",
			Impact:      "positive",
			Magnitude:   magnitude,
			Value:       value,
			Description: "Active development and feature releases",
			Evidence:    evidence(releases),
		})
	}

	multiProvider := strings.Contains(lower, "multi-model") || strings.Contains(lower, "multiple providers") ||
		strings.Contains(lower, "provider agnostic")
	openSource := strings.Contains(lower, "open source") || strings.Contains(lower, "open-source")
	if multiProvider || openSource {
		magnitude := "medium"
		if multiProvider && openSource {
			magnitude = "high"
		}
		desc, anchor := "Open source nature enhances platform flexibility", "open"
		if multiProvider {
			desc, anchor = "Multi-provider support increases platform resilience", "multi"
		}
		impacts = append(impacts, Impact{
			Factor:      "platformResilience",
			Impact:      "positive",
			Magnitude:   magnitude,
			Description: desc,
			Evidence:    []string{contextAround(content, strings.Index(lower, anchor))},
		})
	}

	positive := containsAny(signals, positiveSignals)
	negative := containsAny(signals, negativeSignals)
	if positive || negative {
		impact := "positive"
		if negative {
			impact = "negative"
		}
		desc := "Community concerns may affect sentiment scores"
		if positive {
			desc = "Positive community reception and developer satisfaction"
		}
		impacts = append(impacts, Impact{
			Factor:      "communitySentiment",
			Impact:      impact,
			Magnitude:   "medium",
			Description: desc,
			Evidence:    []string{},
		})
	}

	return impacts
}

func contextAround(content string, index int) string {
	if index < 0 {
		index = 0
	}
	start := index - contextWindowSize
	if start < 0 {
		start = 0
	}
	end := index + contextWindowSize
	if end > len(content) {
		end = len(content)
	}
	return fmt.Sprintf("...%s...", strings.TrimSpace(strings.ToValidUTF8(content[start:end], "")))
}

func parseTokenValue(v string) float64 {
	n, err := strconv.ParseFloat(strings.TrimRight(strings.ReplaceAll(v, ",", ""), "KMkm"), 64)
	if err != nil {
		return 0
	}
	switch {
	case strings.ContainsAny(v, "Kk"):
		return n * 1e3
	case strings.ContainsAny(v, "Mm"):
		return n * 1e6
	}
	return n
}

func leadingInt(s string) int {
	n, _ := strconv.Atoi(leadingIntPattern.FindString(s))
	return n
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
