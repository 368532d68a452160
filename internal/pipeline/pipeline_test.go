package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goyo-lp/ai-news-agent/internal/config"
	"github.com/goyo-lp/ai-news-agent/internal/openrouter"
)

func testFeedXML(baseURL string) string {
	now := time.Now().UTC()
	item := func(title, link string, age time.Duration) string {
		return fmt.Sprintf(`
<item>
  <title>%s</title>
  <link>%s</link>
  <pubDate>%s</pubDate>
  <enclosure url="https://cdn.example.com/pic.jpg" type="image/jpeg" length="0"/>
</item>`, title, link, now.Add(-age).Format(time.RFC1123Z))
	}

	return `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>Test Feed</title><link>` + baseURL + `</link>` +
		item("OpenAI launches new multimodal model for developers", baseURL+"/story?id=1&amp;utm_source=rss", 2*time.Hour) +
		item("OpenAI launches new multimodal model for developers", baseURL+"/story?id=1", time.Hour) +
		item("Weekly AI events roundup", baseURL+"/other?id=2", 3*time.Hour) +
		`</channel></rss>`
}

func testPipelineConfig(t *testing.T, feedURL, blockedHost string) *config.Config {
	t.Helper()

	catalog := fmt.Sprintf(`sources:
  - name: Test Source
    url: https://example.com
    rss: %s
    fetch_overrides:
      blocked_domains:
        - %s
`, feedURL, blockedHost)

	path := filepath.Join(t.TempDir(), "sources.yaml")
	if err := os.WriteFile(path, []byte(catalog), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}

	return &config.Config{
		TelegramParseMode:     "HTML",
		SourcesFile:           path,
		MaxFeedItemsPerSource: 10,
		MaxArticlesPerRun:     50,
		RequestTimeout:        5 * time.Second,
		HTTPConcurrency:       4,
		UserAgent:             "TestAgent/1.0",
		RetryAttempts:         1,
		RetryDelay:            time.Millisecond,
	}
}

func TestRunDryRunEndToEnd(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, testFeedXML("http://"+r.Host))
	}))
	defer server.Close()

	parsed, err := url.Parse(server.URL)
	if err != nil {
		t.Fatalf("parse server URL: %v", err)
	}

	// Blocking the test server's own host keeps enrichment off the network
	// while still exercising the image fallback path.
	cfg := testPipelineConfig(t, server.URL, parsed.Hostname())

	state := State{
		RunID:     "test-run",
		StartedAt: time.Now().UTC(),
		DryRun:    true,
		Limit:     1,
	}

	final, err := New(cfg).Run(context.Background(), state)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(final.Errors) != 0 {
		t.Errorf("Run() recorded errors: %v", final.Errors)
	}

	if len(final.ArticlesRaw) != 2 {
		t.Fatalf("ArticlesRaw = %d, want 2 after URL dedupe", len(final.ArticlesRaw))
	}
	if len(final.ArticlesTop) != 1 {
		t.Fatalf("ArticlesTop = %d, want the run limit 1", len(final.ArticlesTop))
	}

	top := final.ArticlesTop[0]
	if top.Title != "OpenAI launches new multimodal model for developers" {
		t.Errorf("top article = %q, want the launch story over the roundup", top.Title)
	}
	if top.DuplicateCount != 2 {
		t.Errorf("top article DuplicateCount = %d, want 2", top.DuplicateCount)
	}
	if top.ImageURL != "https://cdn.example.com/pic.jpg" {
		t.Errorf("top article ImageURL = %q, want the feed enclosure fallback", top.ImageURL)
	}
	if sentences := openrouter.SplitSentences(top.Summary); len(sentences) != 3 {
		t.Errorf("summary has %d sentences, want 3: %q", len(sentences), top.Summary)
	}

	if len(final.DeliveryResults) != 1 {
		t.Fatalf("DeliveryResults = %d, want 1", len(final.DeliveryResults))
	}
	result := final.DeliveryResults[0]
	if result.Status != "dry_run" || result.Mode != "photo" {
		t.Errorf("delivery result = %+v, want dry_run photo", result)
	}
	if !strings.HasPrefix(result.Preview, `<a href="`) {
		t.Errorf("preview %q missing the caption link", result.Preview)
	}

	summary := final.Summarize()
	if summary.Selected != 1 || summary.Attempted != 1 || summary.Sent != 1 || summary.Failed != 0 {
		t.Errorf("Summarize() = %+v, want 1/1/1/0", summary)
	}
}

func TestRunFailsWithoutCatalog(t *testing.T) {
	cfg := testPipelineConfig(t, "http://feed.invalid/rss", "feed.invalid")
	cfg.SourcesFile = filepath.Join(t.TempDir(), "absent.yaml")

	state := State{RunID: "test-run", StartedAt: time.Now().UTC(), DryRun: true, Limit: 1}
	if _, err := New(cfg).Run(context.Background(), state); err == nil {
		t.Error("Run() should fail when the source catalog cannot be loaded")
	}
}

func TestRankClampsLimit(t *testing.T) {
	cfg := testPipelineConfig(t, "http://feed.invalid/rss", "feed.invalid")
	cfg.MaxArticlesPerRun = 2

	p := New(cfg)
	state := &State{Limit: 100}
	p.Rank(state)
	if len(state.ArticlesTop) > 2 {
		t.Errorf("Rank() kept %d articles, want the configured cap 2", len(state.ArticlesTop))
	}

	state = &State{Limit: 0}
	p.Rank(state)
	// Limit 0 is clamped up to 1; with no articles the result is just empty.
	if len(state.ArticlesTop) != 0 {
		t.Errorf("Rank() on empty input produced %d articles", len(state.ArticlesTop))
	}
}
