package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goyo-lp/ai-news-agent/internal/news"
)

func testClient(baseURL string) *Client {
	c := NewClient("test-token", "12345", "HTML", 5*time.Second, 2, 10*time.Millisecond)
	if baseURL != "" {
		c.baseURL = baseURL
	}
	return c
}

func TestSendArticleDryRunPhoto(t *testing.T) {
	client := testClient("")
	article := news.Article{
		ID:       "a",
		Title:    "Story",
		URL:      "https://example.com/x",
		ImageURL: "https://example.com/x.jpg",
		Summary:  "One. Two. Three.",
	}

	result := client.SendArticle(context.Background(), &article, true)
	if result.Status != "dry_run" {
		t.Errorf("Status = %q, want dry_run", result.Status)
	}
	if result.Mode != "photo" {
		t.Errorf("Mode = %q, want photo when an image is present", result.Mode)
	}
	if !strings.HasPrefix(result.Preview, `<a href="https://example.com/x">`) {
		t.Errorf("Preview %q missing the caption link", result.Preview)
	}
}

func TestSendArticleDryRunTextWithoutImage(t *testing.T) {
	client := testClient("")
	article := news.Article{ID: "a", Title: "Story", URL: "https://example.com/x", Summary: "One. Two. Three."}

	result := client.SendArticle(context.Background(), &article, true)
	if result.Status != "dry_run" || result.Mode != "text" {
		t.Errorf("got status %q mode %q, want dry_run/text", result.Status, result.Mode)
	}
}

func TestSendArticleMissingCredentials(t *testing.T) {
	client := NewClient("", "", "HTML", 5*time.Second, 1, time.Millisecond)
	article := news.Article{ID: "a", Title: "Story", URL: "https://example.com/x"}

	result := client.SendArticle(context.Background(), &article, false)
	if result.Status != "error" {
		t.Errorf("Status = %q, want error", result.Status)
	}
	if !strings.Contains(result.Error, "credentials") {
		t.Errorf("Error = %q, want a credentials message", result.Error)
	}
}

func TestSendArticlePhotoSuccess(t *testing.T) {
	var gotMethod string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.URL.Path
		fmt.Fprint(w, `{"ok":true,"result":{"message_id":42}}`)
	}))
	defer server.Close()

	client := testClient(server.URL)
	article := news.Article{
		ID:       "a",
		Title:    "Story",
		URL:      "https://example.com/x",
		ImageURL: "https://example.com/x.jpg",
		Summary:  "One. Two. Three.",
	}

	result := client.SendArticle(context.Background(), &article, false)
	if result.Status != "sent" || result.Mode != "photo" {
		t.Fatalf("got status %q mode %q, want sent/photo: %+v", result.Status, result.Mode, result)
	}
	if result.MessageID != 42 {
		t.Errorf("MessageID = %d, want 42", result.MessageID)
	}
	if !strings.HasSuffix(gotMethod, "/sendPhoto") {
		t.Errorf("called %q, want sendPhoto", gotMethod)
	}
}

func TestSendArticlePhotoFailureFallsBackToText(t *testing.T) {
	var methods []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		methods = append(methods, r.URL.Path)
		if strings.HasSuffix(r.URL.Path, "/sendPhoto") {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"ok":false,"description":"bad photo"}`)
			return
		}
		fmt.Fprint(w, `{"ok":true,"result":{"message_id":7}}`)
	}))
	defer server.Close()

	client := testClient(server.URL)
	article := news.Article{
		ID:       "a",
		Title:    "Story",
		URL:      "https://example.com/x",
		ImageURL: "https://example.com/broken.jpg",
		Summary:  "One. Two. Three.",
	}

	result := client.SendArticle(context.Background(), &article, false)
	if result.Status != "sent" || result.Mode != "text" {
		t.Fatalf("got status %q mode %q, want sent/text: %+v", result.Status, result.Mode, result)
	}
	if !strings.HasSuffix(methods[len(methods)-1], "/sendMessage") {
		t.Errorf("last call was %q, want sendMessage fallback", methods[len(methods)-1])
	}
}

func TestSendArticleRetriesOnRateLimit(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprint(w, `{"ok":false,"description":"Too Many Requests","parameters":{"retry_after":1}}`)
			return
		}
		fmt.Fprint(w, `{"ok":true,"result":{"message_id":9}}`)
	}))
	defer server.Close()

	client := testClient(server.URL)
	article := news.Article{ID: "a", Title: "Story", URL: "https://example.com/x", Summary: "One. Two. Three."}

	start := time.Now()
	result := client.SendArticle(context.Background(), &article, false)
	if result.Status != "sent" {
		t.Fatalf("Status = %q, want sent after retry: %+v", result.Status, result)
	}
	if calls != 2 {
		t.Errorf("API called %d times, want 2", calls)
	}
	if elapsed := time.Since(start); elapsed < time.Second {
		t.Errorf("elapsed %v, want at least the server-specified 1s delay", elapsed)
	}
}

func TestSendArticlesReportsPerArticle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		if text, _ := payload["text"].(string); strings.Contains(text, "Doomed") {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"ok":false,"description":"chat not found"}`)
			return
		}
		fmt.Fprint(w, `{"ok":true,"result":{"message_id":1}}`)
	}))
	defer server.Close()

	client := testClient(server.URL)
	articles := []news.Article{
		{ID: "ok", Title: "Fine story", URL: "https://example.com/1", Summary: "One. Two. Three."},
		{ID: "bad", Title: "Doomed story", URL: "https://example.com/2", Summary: "One. Two. Three."},
	}

	results := client.SendArticles(context.Background(), articles, false)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Status != "sent" {
		t.Errorf("first result status = %q, want sent", results[0].Status)
	}
	if results[1].Status != "error" {
		t.Errorf("second result status = %q, want error", results[1].Status)
	}
	if results[1].Error != "chat not found" {
		t.Errorf("second result error = %q, want the API description", results[1].Error)
	}
}
