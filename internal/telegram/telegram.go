package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/goyo-lp/ai-news-agent/internal/logger"
	"github.com/goyo-lp/ai-news-agent/internal/news"
	"github.com/goyo-lp/ai-news-agent/internal/retry"
)

const defaultAPIBaseURL = "https://api.telegram.org"

// defaultRetryAfter is used when a 429 response carries no retry_after hint.
const defaultRetryAfter = 2 * time.Second

// DeliveryResult is the per-article outcome of the delivery stage.
type DeliveryResult struct {
	ArticleID string `json:"article_id"`
	Status    string `json:"status"` // sent | dry_run | error
	Mode      string `json:"mode,omitempty"`
	MessageID int64  `json:"message_id,omitempty"`
	Preview   string `json:"preview,omitempty"`
	Error     string `json:"error,omitempty"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
	Result      struct {
		MessageID int64 `json:"message_id"`
	} `json:"result"`
	Parameters struct {
		RetryAfter int `json:"retry_after"`
	} `json:"parameters"`
}

// Client posts articles to a Telegram chat. Dispatch is strictly sequential
// to respect the destination's ordering and rate limits.
type Client struct {
	token     string
	chatID    string
	parseMode string
	baseURL   string
	client    *http.Client
	retryCfg  retry.Config
}

func NewClient(token, chatID, parseMode string, timeout time.Duration, attempts int, delay time.Duration) *Client {
	return &Client{
		token:     token,
		chatID:    chatID,
		parseMode: parseMode,
		baseURL:   defaultAPIBaseURL,
		client:    &http.Client{Timeout: timeout},
		retryCfg:  retry.Config{MaxAttempts: attempts, Delay: delay},
	}
}

// SendArticles delivers the articles one by one. A failed delivery is
// reported in its result record and never stops the remaining articles.
func (c *Client) SendArticles(ctx context.Context, articles []news.Article, dryRun bool) []DeliveryResult {
	results := make([]DeliveryResult, 0, len(articles))
	for i := range articles {
		results = append(results, c.SendArticle(ctx, &articles[i], dryRun))
	}
	return results
}

func (c *Client) SendArticle(ctx context.Context, article *news.Article, dryRun bool) DeliveryResult {
	title := article.EffectiveTitle()
	summary := article.Summary
	if summary == "" {
		summary = "Summary unavailable."
	}

	caption := BuildCaption(article.URL, title, summary, CaptionLimit)
	text := BuildText(article.URL, title, summary, TextLimit)

	if dryRun {
		mode, preview := "text", text
		if article.ImageURL != "" {
			mode, preview = "photo", caption
		}
		return DeliveryResult{ArticleID: article.ID, Status: "dry_run", Mode: mode, Preview: preview}
	}

	if c.token == "" || c.chatID == "" {
		return DeliveryResult{ArticleID: article.ID, Status: "error", Error: "Telegram credentials are missing."}
	}

	if article.ImageURL != "" {
		payload := map[string]interface{}{
			"chat_id":    c.chatID,
			"photo":      article.ImageURL,
			"caption":    caption,
			"parse_mode": c.parseMode,
		}
		sent, err := c.postWithRetry(ctx, "sendPhoto", payload)
		if err == nil && sent.OK {
			return DeliveryResult{ArticleID: article.ID, Status: "sent", Mode: "photo", MessageID: sent.Result.MessageID}
		}
		logger.Warn("photo send failed, falling back to text", "article", article.ID, "error", err)
	}

	// Text-only is always the final attempt.
	payload := map[string]interface{}{
		"chat_id":                  c.chatID,
		"text":                     text,
		"parse_mode":               c.parseMode,
		"disable_web_page_preview": false,
	}
	sent, err := c.postWithRetry(ctx, "sendMessage", payload)
	if err == nil && sent.OK {
		return DeliveryResult{ArticleID: article.ID, Status: "sent", Mode: "text", MessageID: sent.Result.MessageID}
	}

	description := "Telegram send failed."
	if sent.Description != "" {
		description = sent.Description
	} else if err != nil {
		description = err.Error()
	}
	return DeliveryResult{ArticleID: article.ID, Status: "error", Error: description}
}

// postWithRetry sends one API call with the classified retry policy: 429
// responses sleep for the server-specified delay, everything else backs off
// linearly, up to the attempt cap. The last response is returned alongside
// the final error so callers can read the API description.
func (c *Client) postWithRetry(ctx context.Context, method string, payload map[string]interface{}) (apiResponse, error) {
	var last apiResponse

	err := retry.Do(ctx, c.retryCfg, func() error {
		body, err := json.Marshal(payload)
		if err != nil {
			return err
		}

		url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		var data apiResponse
		if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		last = data

		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := defaultRetryAfter
			if data.Parameters.RetryAfter > 0 {
				retryAfter = time.Duration(data.Parameters.RetryAfter) * time.Second
			}
			return &retry.RateLimitError{RetryAfter: retryAfter}
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 && data.OK {
			return nil
		}
		if data.Description != "" {
			return fmt.Errorf("telegram API error: %s", data.Description)
		}
		return fmt.Errorf("telegram API error: status %d", resp.StatusCode)
	})

	return last, err
}
