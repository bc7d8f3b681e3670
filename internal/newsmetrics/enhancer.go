package newsmetrics

import (
	"context"
	"math"
	"time"

	"ai-power-rankings/internal/entity"
	"ai-power-rankings/internal/scoring"
	"ai-power-rankings/pkg/logger"
)

// Enhanced combines regex-extracted metrics with qualitative adjustments.
type Enhanced struct {
	Extracted
	Adjustments       Adjustments        `json:"adjustments"`
	ArticlesProcessed int                `json:"articles_processed"`
	SignificantEvents []SignificantEvent `json:"significant_events"`
	LastNewsDate      *time.Time         `json:"last_news_date,omitempty"`
}

// Enhancer derives news-based metric updates for tools.
type Enhancer struct {
	analyzer QualitativeAnalyzer
	logger   *logger.Logger
}

// NewEnhancer creates an Enhancer. A nil analyzer disables qualitative analysis.
func NewEnhancer(analyzer QualitativeAnalyzer, log *logger.Logger) *Enhancer {
	return &Enhancer{analyzer: analyzer, logger: log}
}

// Enhance extracts quantitative and qualitative news signals for tool as of cutoff.
func (e *Enhancer) Enhance(ctx context.Context, tool entity.Tool, articles []entity.NewsArticle, cutoff time.Time) Enhanced {
	out := Enhanced{
		Extracted:         Extract(tool, articles, cutoff),
		SignificantEvents: []SignificantEvent{},
	}

	relevant := RelevantArticles(tool, articles, cutoff)
	if len(relevant) > 0 {
		last := relevant[0].PublishedAt
		out.LastNewsDate = &last
	}

	if e.analyzer != nil && len(relevant) > 0 {
		q := AggregateQualitative(ctx, e.analyzer, tool, relevant, cutoff, e.logger)
		out.Adjustments = q.Adjustments
		out.ArticlesProcessed = q.ProcessedArticles
		out.SignificantEvents = q.SignificantEvents

		e.logger.Debug("Qualitative news analysis completed",
			logger.StringField("tool_id", tool.ID),
			logger.IntField("articles_processed", q.ProcessedArticles),
			logger.IntField("significant_events", len(q.SignificantEvents)),
		)
	}
	return out
}

// Apply folds enhanced news metrics into m and returns the updated copy.
// Quantitative values found in news overwrite the input and count as real data.
func Apply(m scoring.ToolMetrics, en Enhanced) scoring.ToolMetrics {
	if m.Real != nil {
		copied := make(map[scoring.Metric]bool, len(m.Real))
		for k, v := range m.Real {
			copied[k] = v
		}
		m.Real = copied
	}
	if en.SWEBenchScore != nil {
		m.SWEBenchScore = *en.SWEBenchScore
		m.MarkReal(scoring.MetricSWEBenchScore)
	}
	if en.Funding != nil {
		m.Funding = *en.Funding
		m.MarkReal(scoring.MetricFunding)
	}
	if en.Valuation != nil {
		m.Valuation = *en.Valuation
		m.MarkReal(scoring.MetricValuation)
	}
	if en.MonthlyARR != nil {
		m.MonthlyARR = *en.MonthlyARR
		m.MarkReal(scoring.MetricMonthlyARR)
	}
	if en.EstimatedUsers != nil {
		m.EstimatedUsers = *en.EstimatedUsers
		m.MarkReal(scoring.MetricEstimatedUsers)
	}

	adj := en.Adjustments
	if adj.Innovation > 0 {
		m.InnovationScore = math.Min(10, orDefault(m.InnovationScore, 5)+adj.Innovation)
		if adj.Innovation >= 1 && en.LastNewsDate != nil {
			m.Innovations = append(append([]entity.InnovationRecord(nil), m.Innovations...), entity.InnovationRecord{
				Score:       adj.Innovation,
				Date:        *en.LastNewsDate,
				Description: "Innovation boost from recent developments",
			})
		}
	}
	if adj.Sentiment != 0 {
		m.BusinessSentiment = math.Max(0, math.Min(1, orDefault(m.BusinessSentiment, 0.5)+adj.Sentiment/2))
	}
	if adj.Velocity > 0 {
		m.ReleaseFrequency = math.Min(30, orDefault(m.ReleaseFrequency, 2)*(1+adj.Velocity/2))
	}
	m.NewsImpact = scoring.NewsImpact{
		TechnicalBoost: adj.Technical,
		TractionBoost:  adj.Traction,
	}
	return m
}

func orDefault(v, d float64) float64 {
	if v == 0 {
		return d
	}
	return v
}
