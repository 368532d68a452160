package rss

import "testing"

func TestNormalizeURLRemovesTrackingParams(t *testing.T) {
	got := NormalizeURL("https://example.com/story?utm_source=x&id=123&fbclid=abc")
	want := "https://example.com/story?id=123"
	if got != want {
		t.Errorf("NormalizeURL() = %q, want %q", got, want)
	}
}

func TestNormalizeURLPreservesParamOrder(t *testing.T) {
	got := NormalizeURL("https://example.com/story?b=2&utm_medium=m&a=1&c=")
	want := "https://example.com/story?b=2&a=1&c="
	if got != want {
		t.Errorf("NormalizeURL() = %q, want %q", got, want)
	}
}

func TestNormalizeURLStripsFragment(t *testing.T) {
	got := NormalizeURL("https://example.com/story?id=1#section-2")
	want := "https://example.com/story?id=1"
	if got != want {
		t.Errorf("NormalizeURL() = %q, want %q", got, want)
	}
}

func TestNormalizeURLIsIdempotent(t *testing.T) {
	inputs := []string{
		"https://example.com/story?utm_source=x&id=123&fbclid=abc",
		"https://example.com/a%20b?q=hello+world",
		"  https://example.com/plain  ",
		"https://example.com/?gclid=z",
	}
	for _, input := range inputs {
		once := NormalizeURL(input)
		twice := NormalizeURL(once)
		if once != twice {
			t.Errorf("NormalizeURL not idempotent for %q: first %q, second %q", input, once, twice)
		}
	}
}
