package rss

import (
	"time"

	"github.com/goyo-lp/ai-news-agent/internal/news"
)

// Dedupe collapses articles sharing a normalized URL into one. The article
// with the latest publish time is kept (missing timestamps sort earliest).
// When a newer item replaces an older one it inherits the replaced item's
// count plus one, so a chain of duplicates accumulates correctly regardless
// of arrival order.
func Dedupe(articles []news.Article) []news.Article {
	keptIndex := make(map[string]int)
	var deduped []news.Article

	for _, article := range articles {
		key := NormalizeURL(article.URL)
		idx, seen := keptIndex[key]
		if !seen {
			keptIndex[key] = len(deduped)
			deduped = append(deduped, article)
			continue
		}

		existing := &deduped[idx]
		if publishedOrZero(article.PublishedAt).After(publishedOrZero(existing.PublishedAt)) {
			article.DuplicateCount = existing.DuplicateCount + 1
			*existing = article
		} else {
			existing.DuplicateCount++
		}
	}

	return deduped
}

func publishedOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
