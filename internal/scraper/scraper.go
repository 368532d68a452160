package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"

	"github.com/goyo-lp/ai-news-agent/internal/logger"
	"github.com/goyo-lp/ai-news-agent/internal/news"
	"github.com/goyo-lp/ai-news-agent/internal/rss"
)

// Enricher fetches each article's landing page and extracts page-metadata
// fields, honouring the per-source fetch rules.
type Enricher struct {
	client      *http.Client
	userAgent   string
	concurrency int
}

func NewEnricher(timeout time.Duration, userAgent string, concurrency int) *Enricher {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Enricher{
		client:      &http.Client{Timeout: timeout},
		userAgent:   userAgent,
		concurrency: concurrency,
	}
}

// EnrichAll enriches every article concurrently under the shared bound.
// A failed fetch never drops the article: it is emitted unenriched, with the
// feed image applied when the rules allow, and one error string is recorded.
// The result sequence keeps the input order.
func (e *Enricher) EnrichAll(ctx context.Context, articles []news.Article, sourceRules map[string]rss.FetchRules) ([]news.Article, []string) {
	enriched := make([]news.Article, len(articles))
	perArticleErr := make([]string, len(articles))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for i, article := range articles {
		g.Go(func() error {
			rules, ok := sourceRules[article.SourceName]
			if !ok {
				rules = rss.DefaultFetchRules()
			}
			enriched[i], perArticleErr[i] = e.enrichOne(ctx, article, rules)
			return nil
		})
	}
	_ = g.Wait()

	var errs []string
	for _, msg := range perArticleErr {
		if msg != "" {
			errs = append(errs, msg)
		}
	}
	return enriched, errs
}

func (e *Enricher) enrichOne(ctx context.Context, article news.Article, rules rss.FetchRules) (news.Article, string) {
	article.URL = rss.NormalizeURL(article.URL)

	if isDomainBlocked(article.URL, rules.BlockedDomains) {
		logger.Debug("skipping blocked domain", "url", article.URL, "source", article.SourceName)
		applyImageFallback(&article, rules)
		return article, ""
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, article.URL, nil)
	if err != nil {
		applyImageFallback(&article, rules)
		return article, fmt.Sprintf("Enrichment failed (%s): %v", article.SourceName, err)
	}
	if rules.RequiresUserAgent {
		req.Header.Set("User-Agent", e.userAgent)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		applyImageFallback(&article, rules)
		return article, fmt.Sprintf("Enrichment failed (%s): %v", article.SourceName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		applyImageFallback(&article, rules)
		return article, fmt.Sprintf("Enrichment failed (%s): unexpected status %d", article.SourceName, resp.StatusCode)
	}

	// Redirects may have moved us; record the final, renormalized location.
	article.URL = rss.NormalizeURL(resp.Request.URL.String())

	if strings.Contains(resp.Header.Get("Content-Type"), "text/html") {
		title, description, image, err := ExtractPageMetadata(resp.Body)
		if err != nil {
			applyImageFallback(&article, rules)
			return article, fmt.Sprintf("Enrichment failed (%s): %v", article.SourceName, err)
		}
		if title != "" {
			article.PageTitle = title
		}
		if description != "" {
			article.PageDescription = description
		}
		if image != "" {
			article.ImageURL = image
		}
	}

	applyImageFallback(&article, rules)
	return article, ""
}

// ExtractPageMetadata pulls the page title, description and image from the
// document's meta tags. Key preference per field: title from og:title then
// twitter:title; description from og:description, description, then
// twitter:description; image from og:image, twitter:image, then
// twitter:image:src. First present non-empty value wins.
func ExtractPageMetadata(body io.Reader) (title, description, image string, err error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return "", "", "", fmt.Errorf("parse HTML: %w", err)
	}

	title = metaValue(doc, "og:title", "twitter:title")
	description = metaValue(doc, "og:description", "description", "twitter:description")
	image = metaValue(doc, "og:image", "twitter:image", "twitter:image:src")
	return title, description, image, nil
}

func metaValue(doc *goquery.Document, keys ...string) string {
	for _, key := range keys {
		for _, attr := range []string{"property", "name"} {
			selection := doc.Find(fmt.Sprintf(`meta[%s=%q]`, attr, key)).First()
			if content, ok := selection.Attr("content"); ok {
				if trimmed := strings.TrimSpace(content); trimmed != "" {
					return trimmed
				}
			}
		}
	}
	return ""
}

// isDomainBlocked reports whether the URL's host matches or is a subdomain
// of any blocked domain.
func isDomainBlocked(rawURL string, blockedDomains []string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(parsed.Hostname())

	for _, blocked := range blockedDomains {
		target := strings.ToLower(strings.TrimSpace(blocked))
		if target == "" {
			continue
		}
		if host == target || strings.HasSuffix(host, "."+target) {
			return true
		}
	}
	return false
}

func applyImageFallback(article *news.Article, rules rss.FetchRules) {
	if article.ImageURL == "" && rules.ImageFallbackFeedEnclosure && article.RSSImageURL != "" {
		article.ImageURL = article.RSSImageURL
	}
}
