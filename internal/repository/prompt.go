package repository

import (
	"fmt"

	"ai-power-rankings/internal/entity"
	"ai-power-rankings/pkg/utils"
)

const maxPromptContent = 6000

// BuildQualitativeNewsPrompt asks for a structured reading of one article about a tool.
func BuildQualitativeNewsPrompt(article entity.NewsArticle, toolName string) string {
	content := article.Content
	if content == "" {
		content = article.Summary
	}
	content = utils.Truncate(utils.SafeText(content), maxPromptContent)

	return fmt.Sprintf(`You are an analyst tracking AI coding tools. Read the news article below and assess what it says about %[1]q only.

Title: %[2]s
Published: %[3]s
Source: %[4]s

Article:
%[5]s

Scoring rules:
- "impact" and "significance" values are numbers from 0 to 10.
- Sentiment values range from -1 (very negative) to 1 (very positive); "confidence" from 0 to 1.
- "featureVelocity" is a number from 0 to 10.
- Only report items that concern %[1]q. Use empty arrays when nothing applies.

Respond with JSON only, using exactly this structure:
{
  "productLaunches": [{"feature": "<string>", "significance": "breakthrough | major | incremental", "impact": <number>, "description": "<string>"}],
  "partnerships": [{"partner": "<string>", "type": "<string>", "significance": <number>, "description": "<string>"}],
  "technicalMilestones": [{"achievement": "<string>", "category": "performance | capability | scale | reliability", "improvement": <number or null>, "impact": <number>}],
  "sentiment": {"overall": <number>, "confidence": <number>, "aspects": {"product": <number>, "leadership": <number>, "competition": <number>, "future": <number>}},
  "developmentActivity": {"releaseCadence": "accelerating | steady | slowing | unknown", "featureVelocity": <number>, "communityEngagement": "high | medium | low", "openSourceActivity": <boolean or null>},
  "competitivePosition": {"mentioned_competitors": ["<string>"], "positioning": "leader | challenger | follower | niche | unclear", "differentiators": ["<string>"], "threats": ["<string>"]},
  "keyEvents": [{"event": "<string>", "type": "<string>", "impact": "positive | negative | neutral", "significance": <number>}]
}`, toolName, article.Title, utils.FormatDate(article.PublishedAt), article.SourceName, content)
}
