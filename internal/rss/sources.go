package rss

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FetchRules is the per-source fetch policy after defaults have been merged.
type FetchRules struct {
	ImageFallbackFeedEnclosure bool
	RequiresUserAgent          bool
	BlockedDomains             []string
}

// DefaultFetchRules are used when the sources file does not override them.
func DefaultFetchRules() FetchRules {
	return FetchRules{
		ImageFallbackFeedEnclosure: true,
		RequiresUserAgent:          true,
	}
}

// RuleOverrides is the YAML shape of a partial rule set. Nil fields keep the
// default for that field; set fields replace it.
type RuleOverrides struct {
	ImageFallbackFeedEnclosure *bool    `yaml:"image_fallback_feed_enclosure"`
	RequiresUserAgent          *bool    `yaml:"requires_user_agent"`
	BlockedDomains             []string `yaml:"blocked_domains"`
}

// Apply merges the overrides onto base, field by field.
func (o *RuleOverrides) Apply(base FetchRules) FetchRules {
	if o == nil {
		return base
	}
	merged := base
	if o.ImageFallbackFeedEnclosure != nil {
		merged.ImageFallbackFeedEnclosure = *o.ImageFallbackFeedEnclosure
	}
	if o.RequiresUserAgent != nil {
		merged.RequiresUserAgent = *o.RequiresUserAgent
	}
	if o.BlockedDomains != nil {
		merged.BlockedDomains = o.BlockedDomains
	}
	return merged
}

// SourceConfig describes one configured feed source.
type SourceConfig struct {
	Name           string         `yaml:"name"`
	SiteURL        string         `yaml:"url"`
	FeedURL        string         `yaml:"rss"`
	FetchOverrides *RuleOverrides `yaml:"fetch_overrides"`
}

// Rules resolves the effective fetch rules for this source.
func (s *SourceConfig) Rules(defaults FetchRules) FetchRules {
	return s.FetchOverrides.Apply(defaults)
}

// SourcesFile is the YAML config structure:
//
//	fetch_defaults:
//	  requires_user_agent: true
//	sources:
//	  - name: OpenAI Blog
//	    url: https://openai.com/blog
//	    rss: https://openai.com/blog/rss.xml
type SourcesFile struct {
	FetchDefaults *RuleOverrides `yaml:"fetch_defaults"`
	Sources       []SourceConfig `yaml:"sources"`
}

// LoadSources reads the source catalog from a YAML file and returns the
// merged default fetch rules plus the ordered source list.
func LoadSources(path string) (FetchRules, []SourceConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return FetchRules{}, nil, fmt.Errorf("open sources file: %w", err)
	}
	defer f.Close()

	var parsed SourcesFile
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&parsed); err != nil {
		return FetchRules{}, nil, fmt.Errorf("decode sources file: %w", err)
	}

	defaults := parsed.FetchDefaults.Apply(DefaultFetchRules())
	return defaults, parsed.Sources, nil
}
