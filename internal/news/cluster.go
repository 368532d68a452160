package news

import (
	"regexp"
	"sort"
	"strings"
	"time"
)

// StoryCluster groups articles that describe the same story across sources.
// Its id is the id of the first member, which stays the comparison
// representative for the cluster's whole lifetime.
type StoryCluster struct {
	ID      string
	Members []Article
}

var wordRe = regexp.MustCompile(`[a-z0-9]+`)

var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"by": {}, "for": {}, "from": {}, "in": {}, "into": {}, "is": {}, "it": {},
	"its": {}, "of": {}, "on": {}, "or": {}, "that": {}, "the": {},
	"their": {}, "to": {}, "story": {}, "stories": {}, "news": {},
	"update": {}, "updates": {}, "with": {},
}

func normalizeText(value string) string {
	return strings.Join(wordRe.FindAllString(strings.ToLower(value), -1), " ")
}

func tokenize(value string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, token := range wordRe.FindAllString(strings.ToLower(value), -1) {
		if _, stop := stopwords[token]; !stop {
			tokens[token] = struct{}{}
		}
	}
	return tokens
}

func intersectionSize(left, right map[string]struct{}) int {
	count := 0
	for token := range left {
		if _, ok := right[token]; ok {
			count++
		}
	}
	return count
}

// titleSimilarity blends token Jaccard overlap with a character-level
// sequence ratio of the normalized strings.
func titleSimilarity(left, right string) float64 {
	leftNorm := normalizeText(left)
	rightNorm := normalizeText(right)
	if leftNorm == "" || rightNorm == "" {
		return 0
	}

	leftTokens := tokenize(leftNorm)
	rightTokens := tokenize(rightNorm)
	overlap := intersectionSize(leftTokens, rightTokens)
	union := len(leftTokens) + len(rightTokens) - overlap
	if union == 0 {
		return 0
	}

	jaccard := float64(overlap) / float64(union)
	sequence := sequenceRatio(leftNorm, rightNorm)

	return 0.65*jaccard + 0.35*sequence
}

// sequenceRatio is the classic difflib measure: twice the total length of
// the longest matching blocks over the combined length.
func sequenceRatio(left, right string) float64 {
	a := []rune(left)
	b := []rune(right)
	total := len(a) + len(b)
	if total == 0 {
		return 1
	}
	return 2 * float64(matchingRunes(a, b)) / float64(total)
}

func matchingRunes(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	// Longest common substring, preferring the earliest occurrence.
	bestI, bestJ, bestLen := 0, 0, 0
	lengths := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		prevDiagonal := 0
		for j := 1; j <= len(b); j++ {
			current := lengths[j]
			if a[i-1] == b[j-1] {
				lengths[j] = prevDiagonal + 1
				if lengths[j] > bestLen {
					bestLen = lengths[j]
					bestI = i - bestLen
					bestJ = j - bestLen
				}
			} else {
				lengths[j] = 0
			}
			prevDiagonal = current
		}
	}

	if bestLen == 0 {
		return 0
	}
	return bestLen +
		matchingRunes(a[:bestI], b[:bestJ]) +
		matchingRunes(a[bestI+bestLen:], b[bestJ+bestLen:])
}

func timeAligned(left, right *time.Time, maxHours float64) bool {
	if left == nil || right == nil {
		return true
	}
	delta := left.Sub(*right).Hours()
	if delta < 0 {
		delta = -delta
	}
	return delta <= maxHours
}

// sameStory decides whether two articles describe the same story. It needs
// at least two overlapping title tokens, then either a strong similarity
// with moderate overlap, or a moderate similarity with strong overlap and
// publish times within 120 hours.
func sameStory(left, right *Article) bool {
	leftTokens := tokenize(left.EffectiveTitle())
	rightTokens := tokenize(right.EffectiveTitle())
	overlap := intersectionSize(leftTokens, rightTokens)
	if overlap < 2 {
		return false
	}

	minTokenCount := len(leftTokens)
	if len(rightTokens) < minTokenCount {
		minTokenCount = len(rightTokens)
	}
	if minTokenCount < 1 {
		minTokenCount = 1
	}
	overlapRatio := float64(overlap) / float64(minTokenCount)
	similarity := titleSimilarity(left.EffectiveTitle(), right.EffectiveTitle())

	if similarity >= 0.78 && overlapRatio >= 0.5 {
		return true
	}
	if similarity >= 0.62 && overlapRatio >= 0.7 && timeAligned(left.PublishedAt, right.PublishedAt, 120) {
		return true
	}
	return false
}

// ClusterArticles walks articles in publish-time descending order and
// appends each one to the first existing cluster whose representative (the
// cluster's first member, fixed at creation) matches; otherwise it opens a
// new singleton cluster. Greedy and order-dependent on purpose: ties go to
// the cluster created earliest.
func ClusterArticles(articles []Article) []*StoryCluster {
	ordered := make([]Article, len(articles))
	copy(ordered, articles)
	sort.SliceStable(ordered, func(i, j int) bool {
		return publishedOrEarliest(ordered[i].PublishedAt).After(publishedOrEarliest(ordered[j].PublishedAt))
	})

	var clusters []*StoryCluster
	for _, article := range ordered {
		var matched *StoryCluster
		for _, cluster := range clusters {
			if sameStory(&article, &cluster.Members[0]) {
				matched = cluster
				break
			}
		}

		if matched == nil {
			clusters = append(clusters, &StoryCluster{ID: article.ID, Members: []Article{article}})
		} else {
			matched.Members = append(matched.Members, article)
		}
	}

	return clusters
}

func publishedOrEarliest(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
