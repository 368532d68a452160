package news

import "time"

// Article is the unit of work carried through every pipeline stage. Identity
// fields are set at ingestion and never change; enrichment and ranking fill
// in the rest.
type Article struct {
	ID            string `json:"id"`
	SourceName    string `json:"source_name"`
	SourceFeedURL string `json:"source_feed_url"`
	SourceSiteURL string `json:"source_site_url,omitempty"`

	Title       string     `json:"title"`
	URL         string     `json:"url"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	Description string     `json:"description,omitempty"`
	RSSImageURL string     `json:"rss_image_url,omitempty"`

	PageTitle       string `json:"page_title,omitempty"`
	PageDescription string `json:"page_description,omitempty"`
	ImageURL        string `json:"image_url,omitempty"`

	Summary        string  `json:"summary,omitempty"`
	Score          float64 `json:"score,omitempty"`
	DuplicateCount int     `json:"duplicate_count"`
	ClusterID      string  `json:"cluster_id,omitempty"`
	ClusterSize    int     `json:"cluster_size"`
}

// EffectiveTitle prefers the page metadata title over the feed title.
func (a *Article) EffectiveTitle() string {
	if a.PageTitle != "" {
		return a.PageTitle
	}
	return a.Title
}

// EffectiveSummarySource is the text the summarizer and relevance scoring
// work from: page description if present, else the feed description.
func (a *Article) EffectiveSummarySource() string {
	if a.PageDescription != "" {
		return a.PageDescription
	}
	return a.Description
}
