package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/goyo-lp/ai-news-agent/internal/config"
	"github.com/goyo-lp/ai-news-agent/internal/logger"
	"github.com/goyo-lp/ai-news-agent/internal/news"
)

const summarySentences = 3

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Client calls the OpenRouter chat-completions endpoint to summarize
// articles. Every failure path degrades to a deterministic local summary;
// summarization never fails the run.
type Client struct {
	cfg    *config.Config
	client *http.Client
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.RequestTimeout},
	}
}

// SummarizeAll summarizes the selected articles with a smaller concurrency
// bound than the fetch stages. The result keeps the input order.
func (c *Client) SummarizeAll(ctx context.Context, articles []news.Article, dryRun bool) []news.Article {
	summarized := make([]news.Article, len(articles))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.SummaryConcurrency())

	for i, article := range articles {
		g.Go(func() error {
			article.Summary = c.summarize(ctx, &article, dryRun)
			summarized[i] = article
			return nil
		})
	}
	_ = g.Wait()

	return summarized
}

func (c *Client) summarize(ctx context.Context, article *news.Article, dryRun bool) string {
	if dryRun || c.cfg.OpenRouterAPIKey == "" {
		return c.fallbackSummary(article)
	}

	payload := chatRequest{
		Model: c.cfg.OpenRouterModel,
		Messages: []message{
			{
				Role:    "system",
				Content: "You summarize AI news for a Telegram digest. Return exactly 3 concise sentences.",
			},
			{Role: "user", Content: buildPrompt(article)},
		},
		Temperature: 0.2,
		MaxTokens:   220,
	}

	firstPass, err := c.requestSummary(ctx, payload)
	if err == nil && len(SplitSentences(firstPass)) >= summarySentences {
		return EnforceSentenceCount(firstPass, summarySentences)
	}

	if err == nil {
		// Malformed output: retry once with an explicit rewrite instruction,
		// then force the sentence count whatever comes back.
		retryPayload := payload
		retryPayload.Messages = append(append([]message{}, payload.Messages...), message{
			Role:    "user",
			Content: "Rewrite your answer as exactly 3 sentences.",
		})
		secondPass, retryErr := c.requestSummary(ctx, retryPayload)
		if retryErr == nil {
			return EnforceSentenceCount(secondPass, summarySentences)
		}
		err = retryErr
	}

	logger.Warn("openrouter call failed, using local fallback", "article", article.ID, "error", err)
	return c.fallbackSummary(article)
}

func (c *Client) requestSummary(ctx context.Context, payload chatRequest) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	url := strings.TrimRight(c.cfg.OpenRouterBaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.OpenRouterAPIKey)
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.OpenRouterSiteURL != "" {
		req.Header.Set("HTTP-Referer", c.cfg.OpenRouterSiteURL)
	}
	if c.cfg.OpenRouterAppName != "" {
		req.Header.Set("X-Title", c.cfg.OpenRouterAppName)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("unexpected status %d: %s", resp.StatusCode, raw)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("empty choices in response")
	}
	return parsed.Choices[0].Message.Content, nil
}

func buildPrompt(article *news.Article) string {
	published := "unknown"
	if article.PublishedAt != nil {
		published = article.PublishedAt.UTC().Format(time.RFC3339)
	}

	return fmt.Sprintf(
		"Title: %s\nSource: %s\nPublished: %s\nURL: %s\nContext: %s\nWrite exactly 3 sentences focused on key facts and why this matters.",
		article.EffectiveTitle(),
		article.SourceName,
		published,
		article.URL,
		article.EffectiveSummarySource(),
	)
}

// fallbackSummary builds a deterministic 3-sentence summary from the title,
// source and context snippet.
func (c *Client) fallbackSummary(article *news.Article) string {
	titleSentence := fmt.Sprintf("%s is a notable AI update from %s.", article.EffectiveTitle(), article.SourceName)

	context := strings.TrimSpace(article.EffectiveSummarySource())
	contextSentence := "The story appears relevant to current AI research and product developments."
	if context != "" {
		snippet := context
		if runes := []rune(snippet); len(runes) > 180 {
			snippet = string(runes[:180])
		}
		contextSentence = fmt.Sprintf("Key context: %s.", strings.TrimRight(snippet, "."))
	}

	actionSentence := "Open the link to review full details, claims, and technical context."

	return EnforceSentenceCount(titleSentence+" "+contextSentence+" "+actionSentence, summarySentences)
}
