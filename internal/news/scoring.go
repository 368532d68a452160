package news

import (
	"math"
	"sort"
	"strings"
	"time"
)

// Source authority weights. Known outlets sit between 0.8 and 1.0; anything
// else defaults to 0.7. Lookup keys are lowercased and trimmed.
var sourceWeights = map[string]float64{
	"openai blog":           1.0,
	"google deepmind blog":  1.0,
	"anthropic blog":        1.0,
	"meta ai blog":          1.0,
	"mit technology review": 0.92,
	"techcrunch (ai)":       0.9,
	"the verge (ai)":        0.88,
	"wired (ai)":            0.88,
	"venturebeat (ai)":      0.87,
	"the guardian (ai)":     0.85,
	"zdnet (ai)":            0.8,
}

const (
	weightRelevance   = 0.38
	weightRecency     = 0.24
	weightAuthority   = 0.14
	weightDuplication = 0.10
	weightClusterSize = 0.09
	weightNovelty     = 0.05
)

func sourceWeight(sourceName string) float64 {
	if weight, ok := sourceWeights[strings.ToLower(strings.TrimSpace(sourceName))]; ok {
		return weight
	}
	return 0.7
}

// recencyScore is a step function of article age in hours.
func recencyScore(publishedAt *time.Time, now time.Time) float64 {
	if publishedAt == nil {
		return 0.3
	}

	hoursOld := now.Sub(*publishedAt).Hours()
	if hoursOld < 0 {
		hoursOld = 0
	}
	switch {
	case hoursOld <= 6:
		return 1.0
	case hoursOld <= 24:
		return 0.8
	case hoursOld <= 48:
		return 0.6
	case hoursOld <= 96:
		return 0.4
	default:
		return 0.2
	}
}

func noveltyScore(article *Article) float64 {
	words := strings.Fields(strings.ToLower(article.EffectiveTitle()))
	if len(words) == 0 {
		return 0
	}
	return math.Min(float64(len(words))/20.0, 1.0)
}

// ScoreArticle computes the composite relevance/recency/authority score,
// rounded to 5 decimals.
func ScoreArticle(article *Article, clusterSize int, now time.Time) float64 {
	if clusterSize < 1 {
		clusterSize = 1
	}

	text := normalizeText(article.EffectiveTitle() + " " + article.EffectiveSummarySource())
	relevance := relevanceScore(text)
	recency := recencyScore(article.PublishedAt, now)
	authority := sourceWeight(article.SourceName)
	duplication := math.Min(float64(article.DuplicateCount)/5.0, 1.0)
	clusterSignal := math.Min(float64(clusterSize)/5.0, 1.0)
	novelty := noveltyScore(article)

	score := weightRelevance*relevance +
		weightRecency*recency +
		weightAuthority*authority +
		weightDuplication*duplication +
		weightClusterSize*clusterSignal +
		weightNovelty*novelty

	return math.Round(score*1e5) / 1e5
}

// RankArticles clusters the articles, scores every member, picks each
// cluster's best-scoring member as its representative and returns the
// representatives sorted by descending (score, publish time), truncated to
// limit.
func RankArticles(articles []Article, limit int) []Article {
	now := time.Now().UTC()
	clusters := ClusterArticles(articles)

	representatives := make([]Article, 0, len(clusters))
	for _, cluster := range clusters {
		size := len(cluster.Members)
		best := 0
		for i := range cluster.Members {
			member := &cluster.Members[i]
			member.ClusterID = cluster.ID
			member.ClusterSize = size
			member.Score = ScoreArticle(member, size, now)

			if i == 0 {
				continue
			}
			current := &cluster.Members[best]
			if member.Score > current.Score ||
				(member.Score == current.Score &&
					publishedOrEarliest(member.PublishedAt).After(publishedOrEarliest(current.PublishedAt))) {
				best = i
			}
		}
		representatives = append(representatives, cluster.Members[best])
	}

	sort.SliceStable(representatives, func(i, j int) bool {
		if representatives[i].Score != representatives[j].Score {
			return representatives[i].Score > representatives[j].Score
		}
		return publishedOrEarliest(representatives[i].PublishedAt).After(publishedOrEarliest(representatives[j].PublishedAt))
	})

	if len(representatives) > limit {
		representatives = representatives[:limit]
	}
	return representatives
}
