package newsmetrics

import (
	"context"
	"math"
	"time"

	"ai-power-rankings/internal/entity"
	"ai-power-rankings/pkg/logger"
	"ai-power-rankings/pkg/utils"
)

const (
	maxQualitativeArticles  = 10
	qualitativeDecayDays    = 90.0
	significantEventMinimum = 7.0
	maxSignificantEvents    = 5
)

// QualitativeMetrics is the structured LLM reading of one article.
type QualitativeMetrics struct {
	ProductLaunches     []ProductLaunch      `json:"productLaunches"`
	Partnerships        []Partnership        `json:"partnerships"`
	TechnicalMilestones []TechnicalMilestone `json:"technicalMilestones"`
	Sentiment           Sentiment            `json:"sentiment"`
	DevelopmentActivity DevelopmentActivity  `json:"developmentActivity"`
	CompetitivePosition CompetitivePosition  `json:"competitivePosition"`
	KeyEvents           []KeyEvent           `json:"keyEvents"`
}

type ProductLaunch struct {
	Feature      string  `json:"feature"`
	Significance string  `json:"significance"` // breakthrough, major, incremental
	Impact       float64 `json:"impact"`
	Description  string  `json:"description"`
}

type Partnership struct {
	Partner      string  `json:"partner"`
	Type         string  `json:"type"`
	Significance float64 `json:"significance"`
	Description  string  `json:"description"`
}

type TechnicalMilestone struct {
	Achievement string   `json:"achievement"`
	Category    string   `json:"category"` // performance, capability, scale, reliability
	Improvement *float64 `json:"improvement,omitempty"`
	Impact      float64  `json:"impact"`
}

type Sentiment struct {
	Overall    float64          `json:"overall"`
	Confidence float64          `json:"confidence"`
	Aspects    SentimentAspects `json:"aspects"`
}

type SentimentAspects struct {
	Product     float64 `json:"product"`
	Leadership  float64 `json:"leadership"`
	Competition float64 `json:"competition"`
	Future      float64 `json:"future"`
}

type DevelopmentActivity struct {
	ReleaseCadence      string  `json:"releaseCadence"` // accelerating, steady, slowing, unknown
	FeatureVelocity     float64 `json:"featureVelocity"`
	CommunityEngagement string  `json:"communityEngagement"`
	OpenSourceActivity  *bool   `json:"openSourceActivity,omitempty"`
}

type CompetitivePosition struct {
	MentionedCompetitors []string `json:"mentioned_competitors"`
	Positioning          string   `json:"positioning"` // leader, challenger, follower, niche, unclear
	Differentiators      []string `json:"differentiators"`
	Threats              []string `json:"threats"`
}

type KeyEvent struct {
	Event        string  `json:"event"`
	Type         string  `json:"type"`
	Impact       string  `json:"impact"`
	Significance float64 `json:"significance"`
}

// QualitativeAnalyzer reads an article about a tool and returns qualitative metrics.
type QualitativeAnalyzer interface {
	AnalyzeNews(ctx context.Context, article entity.NewsArticle, toolName string) (*QualitativeMetrics, error)
}

// Adjustments are factor-level nudges derived from qualitative metrics.
type Adjustments struct {
	Innovation float64 `json:"innovation"`
	Sentiment  float64 `json:"sentiment"`
	Velocity   float64 `json:"velocity"`
	Traction   float64 `json:"traction"`
	Technical  float64 `json:"technical"`
}

// SignificantEvent is a key event with significance of at least 7.
type SignificantEvent struct {
	Event  string `json:"event"`
	Date   string `json:"date"`
	Impact string `json:"impact"`
}

// QualitativeImpact is the decayed aggregate over a tool's recent articles.
type QualitativeImpact struct {
	Adjustments       Adjustments        `json:"adjustments"`
	ProcessedArticles int                `json:"processed_articles"`
	SignificantEvents []SignificantEvent `json:"significant_events"`
}

// ToAdjustments converts one article's qualitative metrics into adjustments, rounded to 2 places.
func ToAdjustments(m QualitativeMetrics) Adjustments {
	launches := 0.0
	for _, l := range m.ProductLaunches {
		w := 0.3
		switch l.Significance {
		case "breakthrough":
			w = 1.0
		case "major":
			w = 0.6
		}
		launches += l.Impact * w
	}
	milestones := 0.0
	technical := 0.0
	for _, tm := range m.TechnicalMilestones {
		milestones += tm.Impact
		if tm.Category == "performance" || tm.Category == "capability" {
			technical += tm.Impact
		}
	}
	innovation := math.Min(2, (launches/10+milestones/10)*0.5)

	s := m.Sentiment
	sentiment := (s.Overall*2 + s.Aspects.Product + s.Aspects.Future + s.Aspects.Competition*0.5) / 4

	cadence := 0.8
	switch m.DevelopmentActivity.ReleaseCadence {
	case "accelerating":
		cadence = 1.5
	case "steady":
		cadence = 1.0
	case "slowing":
		cadence = 0.5
	}
	velocity := m.DevelopmentActivity.FeatureVelocity / 10 * cadence

	partnerships := 0.0
	for _, p := range m.Partnerships {
		partnerships += p.Significance
	}
	position := 0.6
	switch m.CompetitivePosition.Positioning {
	case "leader":
		position = 1.2
	case "challenger":
		position = 1.0
	case "follower":
		position = 0.8
	}
	traction := partnerships / 10 * position

	return Adjustments{
		Innovation: round2(innovation),
		Sentiment:  round2(sentiment),
		Velocity:   round2(velocity),
		Traction:   round2(traction),
		Technical:  round2(technical / 20),
	}
}

// AggregateQualitative analyses up to 10 of the tool's most recent articles published
// on or before cutoff, weights each by exp(-ageDays/90) and caps the sums.
// Articles the analyzer fails on are logged and skipped.
func AggregateQualitative(ctx context.Context, analyzer QualitativeAnalyzer, tool entity.Tool,
	articles []entity.NewsArticle, cutoff time.Time, log *logger.Logger) QualitativeImpact {
	impact := QualitativeImpact{SignificantEvents: []SignificantEvent{}}
	if analyzer == nil {
		return impact
	}

	relevant := RelevantArticles(tool, articles, cutoff)
	if len(relevant) > maxQualitativeArticles {
		relevant = relevant[:maxQualitativeArticles]
	}

	var sum Adjustments
	for _, a := range relevant {
		if !utils.ShouldContinue(ctx, log) {
			break
		}
		metrics, err := analyzer.AnalyzeNews(ctx, a, tool.Name)
		if err != nil {
			log.Warn("Failed to extract qualitative metrics",
				logger.StringField("tool_id", tool.ID),
				logger.StringField("article_id", a.ID),
				logger.ErrorField(err),
			)
			continue
		}
		if metrics == nil {
			continue
		}

		adj := ToAdjustments(*metrics)
		ageDays := math.Max(0, cutoff.Sub(a.PublishedAt).Hours()/24)
		decay := math.Exp(-ageDays / qualitativeDecayDays)

		sum.Innovation += adj.Innovation * decay
		sum.Sentiment += adj.Sentiment * decay
		sum.Velocity += adj.Velocity * decay
		sum.Traction += adj.Traction * decay
		sum.Technical += adj.Technical * decay

		for _, ev := range metrics.KeyEvents {
			if ev.Significance >= significantEventMinimum {
				impact.SignificantEvents = append(impact.SignificantEvents, SignificantEvent{
					Event:  ev.Event,
					Date:   utils.FormatDate(a.PublishedAt),
					Impact: ev.Impact,
				})
			}
		}
		impact.ProcessedArticles++
	}

	impact.Adjustments = Adjustments{
		Innovation: math.Min(3, sum.Innovation),
		Sentiment:  math.Max(-2, math.Min(2, sum.Sentiment)),
		Velocity:   math.Min(2, sum.Velocity),
		Traction:   math.Min(2, sum.Traction),
		Technical:  math.Min(1, sum.Technical),
	}
	if len(impact.SignificantEvents) > maxSignificantEvents {
		impact.SignificantEvents = impact.SignificantEvents[:maxSignificantEvents]
	}
	return impact
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
