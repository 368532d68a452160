package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/goyo-lp/ai-news-agent/internal/config"
	"github.com/goyo-lp/ai-news-agent/internal/logger"
	"github.com/goyo-lp/ai-news-agent/internal/metrics"
	"github.com/goyo-lp/ai-news-agent/internal/news"
	"github.com/goyo-lp/ai-news-agent/internal/openrouter"
	"github.com/goyo-lp/ai-news-agent/internal/rss"
	"github.com/goyo-lp/ai-news-agent/internal/scraper"
	"github.com/goyo-lp/ai-news-agent/internal/telegram"
)

// Summarizer produces a summary per selected article.
type Summarizer interface {
	SummarizeAll(ctx context.Context, articles []news.Article, dryRun bool) []news.Article
}

// Dispatcher delivers summarized articles to the messaging endpoint.
type Dispatcher interface {
	SendArticles(ctx context.Context, articles []news.Article, dryRun bool) []telegram.DeliveryResult
}

// Pipeline wires the five stages: ingest, enrich, rank, summarize, deliver.
// Stages run strictly in sequence; fan-out happens inside a stage and is
// joined before the next one starts.
type Pipeline struct {
	cfg        *config.Config
	fetcher    *rss.Fetcher
	enricher   *scraper.Enricher
	summarizer Summarizer
	dispatcher Dispatcher
}

func New(cfg *config.Config) *Pipeline {
	return &Pipeline{
		cfg:        cfg,
		fetcher:    rss.NewFetcher(cfg.RequestTimeout, cfg.UserAgent, cfg.MaxFeedItemsPerSource, cfg.HTTPConcurrency),
		enricher:   scraper.NewEnricher(cfg.RequestTimeout, cfg.UserAgent, cfg.HTTPConcurrency),
		summarizer: openrouter.NewClient(cfg),
		dispatcher: telegram.NewClient(
			cfg.TelegramBotToken,
			cfg.TelegramChatID,
			cfg.TelegramParseMode,
			cfg.RequestTimeout,
			cfg.RetryAttempts,
			cfg.RetryDelay,
		),
	}
}

// Run executes the whole pipeline on the seeded state. The only fatal error
// is a source catalog that cannot be loaded; every other failure is recorded
// in the state and the run carries on.
func (p *Pipeline) Run(ctx context.Context, state State) (State, error) {
	started := time.Now()
	defer func() {
		metrics.Global.RecordRun(time.Since(started))
	}()

	if err := p.Ingest(ctx, &state); err != nil {
		return state, err
	}
	p.Enrich(ctx, &state)
	p.Rank(&state)
	p.Summarize(ctx, &state)
	p.Deliver(ctx, &state)

	return state, nil
}

// Ingest loads the source catalog, fetches all feeds concurrently and
// deduplicates the combined result by normalized URL.
func (p *Pipeline) Ingest(ctx context.Context, state *State) error {
	defaults, sources, err := rss.LoadSources(p.cfg.SourcesFile)
	if err != nil {
		return fmt.Errorf("load sources: %w", err)
	}
	state.FetchDefaults = defaults
	state.Sources = sources

	articles, errs := p.fetcher.FetchAll(ctx, sources)
	state.Errors = append(state.Errors, errs...)

	deduped := rss.Dedupe(articles)
	state.ArticlesRaw = deduped

	metrics.Global.AddArticlesFetched(len(articles))
	metrics.Global.AddDuplicatesFiltered(len(articles) - len(deduped))
	logger.Info("ingestion complete", "raw", len(deduped), "fetched", len(articles), "sources", len(sources))
	return nil
}

// Enrich fetches each article's landing page under the per-source rules.
func (p *Pipeline) Enrich(ctx context.Context, state *State) {
	sourceRules := make(map[string]rss.FetchRules, len(state.Sources))
	for _, source := range state.Sources {
		sourceRules[source.Name] = source.Rules(state.FetchDefaults)
	}

	enriched, errs := p.enricher.EnrichAll(ctx, state.ArticlesRaw, sourceRules)
	state.ArticlesEnriched = enriched
	state.Errors = append(state.Errors, errs...)

	metrics.Global.AddArticlesEnriched(len(enriched))
	metrics.Global.AddEnrichmentErrors(len(errs))
	logger.Info("enrichment complete", "items", len(enriched), "errors", len(errs))
}

// Rank clusters and scores the enriched articles and keeps the top
// representatives up to the run limit.
func (p *Pipeline) Rank(state *State) {
	limit := state.Limit
	if limit < 1 {
		limit = 1
	}
	if limit > p.cfg.MaxArticlesPerRun {
		limit = p.cfg.MaxArticlesPerRun
	}

	ranked := news.RankArticles(state.ArticlesEnriched, limit)
	state.ArticlesRanked = ranked
	state.ArticlesTop = ranked

	logger.Info("ranking complete", "selected", len(ranked), "limit", limit)
}

// Summarize attaches a 3-sentence summary to every selected article.
func (p *Pipeline) Summarize(ctx context.Context, state *State) {
	state.ArticlesTop = p.summarizer.SummarizeAll(ctx, state.ArticlesTop, state.DryRun)

	metrics.Global.AddSummariesGenerated(len(state.ArticlesTop))
	logger.Info("summarization complete", "items", len(state.ArticlesTop))
}

// Deliver sends the summarized articles sequentially and records per-article
// results. Failures are appended to the run error log but never stop the
// remaining deliveries.
func (p *Pipeline) Deliver(ctx context.Context, state *State) {
	results := p.dispatcher.SendArticles(ctx, state.ArticlesTop, state.DryRun)
	state.DeliveryResults = results

	failed := 0
	for _, result := range results {
		if result.Status == "error" {
			failed++
			state.Errors = append(state.Errors, fmt.Sprintf("Delivery failure (%s): %s", result.ArticleID, result.Error))
			metrics.Global.IncrementDeliveryFailures()
		} else {
			metrics.Global.IncrementMessagesSent()
		}
	}

	logger.Info("delivery complete", "sent", len(results)-failed, "failed", failed)
}
