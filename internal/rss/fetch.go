package rss

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/errgroup"

	"github.com/goyo-lp/ai-news-agent/internal/logger"
	"github.com/goyo-lp/ai-news-agent/internal/news"
)

// Fetcher downloads and parses all configured feeds with bounded concurrency.
type Fetcher struct {
	client      *http.Client
	userAgent   string
	maxItems    int
	concurrency int
}

func NewFetcher(timeout time.Duration, userAgent string, maxItems, concurrency int) *Fetcher {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Fetcher{
		client:      &http.Client{Timeout: timeout},
		userAgent:   userAgent,
		maxItems:    maxItems,
		concurrency: concurrency,
	}
}

// FetchAll retrieves every source concurrently. One source failing is
// recorded as an error string and contributes zero articles; it never stops
// the other sources. Results keep the source order.
func (f *Fetcher) FetchAll(ctx context.Context, sources []SourceConfig) ([]news.Article, []string) {
	perSource := make([][]news.Article, len(sources))
	perSourceErr := make([]string, len(sources))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)

	for i, source := range sources {
		g.Go(func() error {
			articles, err := f.fetchSource(ctx, source)
			if err != nil {
				perSourceErr[i] = fmt.Sprintf("Source fetch failed (%s): %v", source.Name, err)
				logger.Warn("source fetch failed", "source", source.Name, "error", err)
				return nil
			}
			perSource[i] = articles
			logger.Info("fetched feed", "source", source.Name, "items", len(articles))
			return nil
		})
	}
	// The workers never return errors; the join is the stage barrier.
	_ = g.Wait()

	var all []news.Article
	var errs []string
	for i := range sources {
		all = append(all, perSource[i]...)
		if perSourceErr[i] != "" {
			errs = append(errs, perSourceErr[i])
		}
	}
	return all, errs
}

func (f *Fetcher) fetchSource(ctx context.Context, source SourceConfig) ([]news.Article, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source.FeedURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	feed, err := gofeed.NewParser().ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	items := feed.Items
	if len(items) > f.maxItems {
		items = items[:f.maxItems]
	}

	articles := make([]news.Article, 0, len(items))
	for _, item := range items {
		rawURL := strings.TrimSpace(item.Link)
		if rawURL == "" {
			continue
		}

		url := NormalizeURL(rawURL)
		title := strings.TrimSpace(item.Title)
		if title == "" {
			title = "Untitled Article"
		}

		articles = append(articles, news.Article{
			ID:             buildArticleID(source.Name, url, title),
			SourceName:     source.Name,
			SourceFeedURL:  source.FeedURL,
			SourceSiteURL:  source.SiteURL,
			Title:          title,
			URL:            url,
			PublishedAt:    parseItemTime(item),
			Description:    strings.TrimSpace(item.Description),
			RSSImageURL:    extractItemImage(item),
			DuplicateCount: 1,
			ClusterSize:    1,
		})
	}

	return articles, nil
}

// buildArticleID derives the stable identity hash from source name,
// normalized URL and lowercased title, truncated to 24 hex characters.
func buildArticleID(sourceName, url, title string) string {
	payload := sourceName + "|" + url + "|" + strings.ToLower(strings.TrimSpace(title))
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])[:24]
}

// parseItemTime prefers the structured timestamps gofeed already parsed and
// falls back to the raw date strings. Unparsable dates yield nil, never an
// error.
func parseItemTime(item *gofeed.Item) *time.Time {
	if item.PublishedParsed != nil {
		t := item.PublishedParsed.UTC()
		return &t
	}
	if item.UpdatedParsed != nil {
		t := item.UpdatedParsed.UTC()
		return &t
	}

	for _, raw := range []string{item.Published, item.Updated} {
		if raw == "" {
			continue
		}
		for _, layout := range []string{time.RFC1123Z, time.RFC1123, time.RFC3339} {
			if parsed, err := time.Parse(layout, raw); err == nil {
				t := parsed.UTC()
				return &t
			}
		}
	}
	return nil
}

// extractItemImage resolves the feed-supplied image in preference order:
// media:content, media:thumbnail, typed image enclosures, the feed image
// object. First present wins.
func extractItemImage(item *gofeed.Item) string {
	if media, ok := item.Extensions["media"]; ok {
		for _, key := range []string{"content", "thumbnail"} {
			for _, ext := range media[key] {
				if url := ext.Attrs["url"]; url != "" {
					return url
				}
			}
		}
	}

	for _, enclosure := range item.Enclosures {
		if enclosure != nil && strings.HasPrefix(enclosure.Type, "image/") && enclosure.URL != "" {
			return enclosure.URL
		}
	}

	if item.Image != nil && item.Image.URL != "" {
		return item.Image.URL
	}
	return ""
}
