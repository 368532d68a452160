package pipeline

import (
	"time"

	"github.com/goyo-lp/ai-news-agent/internal/news"
	"github.com/goyo-lp/ai-news-agent/internal/rss"
	"github.com/goyo-lp/ai-news-agent/internal/telegram"
)

// State is the run-level contract: the caller seeds run id, start time,
// dry-run flag and limit; each stage consumes the previous stage's article
// sequence and fills in its own. Errors accumulates non-fatal, human-readable
// failure strings across the whole run.
type State struct {
	RunID     string    `json:"run_id"`
	StartedAt time.Time `json:"started_at"`
	DryRun    bool      `json:"dry_run"`
	Limit     int       `json:"limit"`

	FetchDefaults rss.FetchRules     `json:"-"`
	Sources       []rss.SourceConfig `json:"-"`

	ArticlesRaw      []news.Article `json:"articles_raw,omitempty"`
	ArticlesEnriched []news.Article `json:"articles_enriched,omitempty"`
	ArticlesRanked   []news.Article `json:"articles_ranked,omitempty"`
	ArticlesTop      []news.Article `json:"articles_top,omitempty"`

	DeliveryResults []telegram.DeliveryResult `json:"delivery_results,omitempty"`
	Errors          []string                  `json:"errors"`
}

// Summary holds the counters the caller derives from a finished run.
type Summary struct {
	Selected  int
	Attempted int
	Sent      int
	Failed    int
}

// Summarize computes the run counters from the delivery results. Both sent
// and dry_run statuses count as successful sends.
func (s *State) Summarize() Summary {
	summary := Summary{
		Selected:  len(s.ArticlesTop),
		Attempted: len(s.DeliveryResults),
	}
	for _, result := range s.DeliveryResults {
		switch result.Status {
		case "sent", "dry_run":
			summary.Sent++
		case "error":
			summary.Failed++
		}
	}
	return summary
}
