package telegram

import (
	"fmt"
	"html"
	"strings"
)

const (
	// Telegram limits: captions max ~1024 chars, text messages max ~4096.
	CaptionLimit = 1024
	TextLimit    = 4096
)

func truncate(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return strings.TrimRight(string(runes[:limit-3]), " ") + "..."
}

// BuildCaption renders the short, image-caption form of an article: an HTML
// link wrapping the escaped title, then the escaped summary, with the title
// truncated more aggressively than the body. The result never exceeds limit.
func BuildCaption(url, title, summary string, limit int) string {
	safeURL := html.EscapeString(url)
	safeTitle := html.EscapeString(title)
	safeSummary := html.EscapeString(summary)

	maxTitleLen := limit / 3
	if maxTitleLen > 200 {
		maxTitleLen = 200
	}
	if maxTitleLen < 40 {
		maxTitleLen = 40
	}
	safeTitle = truncate(safeTitle, maxTitleLen)

	prefix := fmt.Sprintf("<a href=\"%s\">%s</a>\n\n", safeURL, safeTitle)
	available := limit - len([]rune(prefix))
	if available < 0 {
		available = 0
	}

	caption := prefix + truncate(safeSummary, available)
	if runes := []rune(caption); len(runes) > limit {
		caption = string(runes[:limit])
	}
	return caption
}

// BuildText renders the full-length text form of an article.
func BuildText(url, title, summary string, limit int) string {
	safeURL := html.EscapeString(url)
	safeTitle := html.EscapeString(title)
	safeSummary := html.EscapeString(summary)

	text := fmt.Sprintf("<a href=\"%s\">%s</a>\n\n%s", safeURL, safeTitle, safeSummary)
	return truncate(text, limit)
}
