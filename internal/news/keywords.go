package news

import "strings"

// Relevance is a handcrafted lexical heuristic over the effective title and
// summary source. Each category contributes base + min(extraHits,2)*increment
// once any of its stems match; high-relevance phrases add a flat bonus and
// low-priority topics subtract a penalty.

type keywordCategory struct {
	name      string
	stems     []string
	base      float64
	increment float64
}

var relevanceCategories = []keywordCategory{
	{
		name:      "product-launch",
		stems:     []string{"launch", "unveil", "releas", "debut", "introduc", "rolls out"},
		base:      0.10,
		increment: 0.03,
	},
	{
		name:      "tech-development",
		stems:     []string{"model", "research", "breakthrough", "benchmark", "capabilit", "open source", "open-source"},
		base:      0.08,
		increment: 0.02,
	},
	{
		name:      "startup-funding",
		stems:     []string{"funding", "raise", "seed round", "series", "valuation", "venture", "invest"},
		base:      0.12,
		increment: 0.04,
	},
	{
		name:      "enterprise-adoption",
		stems:     []string{"enterprise", "adopt", "deploy", "customer", "production", "integrat"},
		base:      0.11,
		increment: 0.03,
	},
	{
		name:      "deal-partnership",
		stems:     []string{"partner", "acquisition", "acquire", "merger", "deal", "collaborat", "agreement"},
		base:      0.10,
		increment: 0.03,
	},
}

var highRelevancePhrases = []string{
	"ai agent",
	"enterprise ai",
	"foundation model",
	"frontier model",
	"series a",
	"series b",
	"general availability",
	"strategic partnership",
}

var lowPriorityKeywords = []string{
	"webinar",
	"event",
	"conference",
	"roundup",
	"recap",
	"podcast",
	"newsletter",
	"award",
	"hackathon",
	"survey",
	"how to",
	"top 10",
	"opinion",
	"sponsored",
}

const (
	relevanceBaseline   = 0.15
	phraseBonus         = 0.07
	maxCountedPhrases   = 2
	penaltyWithPriority = 0.08
	penaltyAlone        = 0.22
	penaltyPerExtraLow  = 0.03
	maxExtraLowHits     = 3
)

func countHits(text string, keywords []string) int {
	hits := 0
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			hits++
		}
	}
	return hits
}

// relevanceScore expects text already lowercased and normalized via
// normalizeText.
func relevanceScore(text string) float64 {
	score := relevanceBaseline

	priorityHits := 0
	for _, category := range relevanceCategories {
		hits := countHits(text, category.stems)
		if hits == 0 {
			continue
		}
		priorityHits += hits
		extra := hits - 1
		if extra > 2 {
			extra = 2
		}
		score += category.base + float64(extra)*category.increment
	}

	phraseHits := countHits(text, highRelevancePhrases)
	if phraseHits > maxCountedPhrases {
		phraseHits = maxCountedPhrases
	}
	score += float64(phraseHits) * phraseBonus
	priorityHits += phraseHits

	lowHits := countHits(text, lowPriorityKeywords)
	if lowHits > 0 {
		penalty := penaltyAlone
		if priorityHits > 0 {
			penalty = penaltyWithPriority
		}
		extra := lowHits - 1
		if extra > maxExtraLowHits {
			extra = maxExtraLowHits
		}
		penalty += float64(extra) * penaltyPerExtraLow
		score -= penalty
	}

	return clamp01(score)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
