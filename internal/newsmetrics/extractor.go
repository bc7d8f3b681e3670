package newsmetrics

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"ai-power-rankings/internal/entity"
)

var (
	sweBenchPattern  = regexp.MustCompile(`(?i)(\d+\.?\d*)\s*%?\s*(?:on\s+)?swe[- ]bench`)
	valuationPattern = regexp.MustCompile(`(?i)(\d+\.?\d*)\s*billion\s*(?:dollar\s*)?valuation`)
	fundingPattern   = regexp.MustCompile(`(?i)raised?\s*\$?(\d+\.?\d*)\s*(million|billion)`)
	arrPattern       = regexp.MustCompile(`(?i)\$?(\d+\.?\d*)\s*([mb])\s*arr`)
	usersPattern     = regexp.MustCompile(`(?i)(\d+\.?\d*)\s*(million|thousand|k|m)?\s*users`)
)

// Extracted holds quantitative metrics found in news text. Nil means not mentioned.
type Extracted struct {
	SWEBenchScore  *float64 `json:"swe_bench_score,omitempty"`
	Valuation      *float64 `json:"valuation,omitempty"`
	Funding        *float64 `json:"funding,omitempty"`
	MonthlyARR     *float64 `json:"monthly_arr,omitempty"`
	EstimatedUsers *float64 `json:"estimated_users,omitempty"`
}

// Empty reports whether nothing was extracted.
func (e Extracted) Empty() bool {
	return e.SWEBenchScore == nil && e.Valuation == nil && e.Funding == nil &&
		e.MonthlyARR == nil && e.EstimatedUsers == nil
}

// RelevantArticles returns the articles mentioning tool published on or before
// cutoff, newest first. A zero cutoff disables the date filter.
func RelevantArticles(tool entity.Tool, articles []entity.NewsArticle, cutoff time.Time) []entity.NewsArticle {
	var out []entity.NewsArticle
	for _, a := range articles {
		if !a.MentionsTool(tool) {
			continue
		}
		if !cutoff.IsZero() && a.PublishedAt.After(cutoff) {
			continue
		}
		out = append(out, a)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].PublishedAt.Equal(out[j].PublishedAt) {
			return out[i].PublishedAt.After(out[j].PublishedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Extract scans the tool's articles, newest first, and keeps the first match of each metric.
func Extract(tool entity.Tool, articles []entity.NewsArticle, cutoff time.Time) Extracted {
	var out Extracted
	for _, a := range RelevantArticles(tool, articles, cutoff) {
		out.merge(ExtractText(a.Title + " " + a.Content))
	}
	return out
}

// ExtractText scans a single text for quantitative metrics.
func ExtractText(text string) Extracted {
	combined := strings.ToLower(text)
	var out Extracted

	if m := sweBenchPattern.FindStringSubmatch(combined); m != nil {
		out.SWEBenchScore = parse(m[1], 1)
	}
	if m := valuationPattern.FindStringSubmatch(combined); m != nil {
		out.Valuation = parse(m[1], 1e9)
	}
	if m := fundingPattern.FindStringSubmatch(combined); m != nil {
		mult := 1e6
		if m[2] == "billion" {
			mult = 1e9
		}
		out.Funding = parse(m[1], mult)
	}
	if m := arrPattern.FindStringSubmatch(combined); m != nil {
		mult := 1e6
		if m[2] == "b" {
			mult = 1e9
		}
		if v := parse(m[1], mult); v != nil {
			monthly := *v / 12
			out.MonthlyARR = &monthly
		}
	}
	if m := usersPattern.FindStringSubmatch(combined); m != nil {
		mult := 1.0
		switch m[2] {
		case "k", "thousand":
			mult = 1e3
		case "m", "million":
			mult = 1e6
		}
		out.EstimatedUsers = parse(m[1], mult)
	}
	return out
}

func (e *Extracted) merge(other Extracted) {
	if e.SWEBenchScore == nil {
		e.SWEBenchScore = other.SWEBenchScore
	}
	if e.Valuation == nil {
		e.Valuation = other.Valuation
	}
	if e.Funding == nil {
		e.Funding = other.Funding
	}
	if e.MonthlyARR == nil {
		e.MonthlyARR = other.MonthlyARR
	}
	if e.EstimatedUsers == nil {
		e.EstimatedUsers = other.EstimatedUsers
	}
}

// parse returns nil for unparsable or zero values; those count as not mentioned.
func parse(s string, mult float64) *float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v == 0 {
		return nil
	}
	v *= mult
	return &v
}
