package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/goyo-lp/ai-news-agent/internal/config"
	"github.com/goyo-lp/ai-news-agent/internal/logger"
	"github.com/goyo-lp/ai-news-agent/internal/metrics"
	"github.com/goyo-lp/ai-news-agent/internal/pipeline"
)

func main() {
	// Missing .env is fine; plain environment variables still apply.
	_ = godotenv.Load()

	if len(os.Args) < 2 || os.Args[1] != "run" {
		printUsage()
		os.Exit(0)
	}

	runFlags := flag.NewFlagSet("run", flag.ExitOnError)
	dryRun := runFlags.Bool("dry-run", false, "Run without calling Telegram")
	limit := runFlags.Int("limit", 0, "Max articles to send (clamped to MAX_ARTICLES_PER_RUN)")
	verbose := runFlags.Bool("verbose", false, "Enable debug logs")
	_ = runFlags.Parse(os.Args[2:])

	logger.Init(*verbose)
	cfg := config.Load()

	if missing := cfg.MissingRequired(*dryRun); len(missing) > 0 {
		joined := strings.Join(missing, ", ")
		logger.Error("configuration error: missing required env values", "missing", joined)
		fmt.Printf("Configuration error: missing required env values: %s\n", joined)
		os.Exit(2)
	}

	// Check if we should start HTTP server for monitoring
	if os.Getenv("ENABLE_HTTP_MONITORING") == "true" {
		go startMonitoringServer()
	}

	runLimit := cfg.MaxArticlesPerRun
	if *limit > 0 {
		runLimit = *limit
	}

	state := pipeline.State{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
		DryRun:    *dryRun,
		Limit:     runLimit,
		Errors:    []string{},
	}

	final, err := pipeline.New(cfg).Run(context.Background(), state)
	if err != nil {
		logger.Error("run aborted", "error", err)
		fmt.Printf("Run aborted: %v\n", err)
		os.Exit(2)
	}

	summary := final.Summarize()
	logger.Info("run complete",
		"run_id", final.RunID,
		"selected", summary.Selected,
		"attempted", summary.Attempted,
		"sent", summary.Sent,
		"failed", summary.Failed,
		"dry_run", final.DryRun,
	)

	if summary.Failed > 0 {
		samples := deliveryFailureSamples(&final, 3)
		logger.Error("sample delivery errors", "errors", strings.Join(samples, " | "))
	}
	if len(final.Errors) > 0 {
		logger.Warn("non-fatal errors captured", "count", len(final.Errors))
	}

	fmt.Printf("Run complete. selected=%d attempted=%d sent=%d failed=%d dry_run=%t\n",
		summary.Selected, summary.Attempted, summary.Sent, summary.Failed, final.DryRun)

	if summary.Failed > 0 {
		os.Exit(1)
	}
}

func deliveryFailureSamples(state *pipeline.State, max int) []string {
	var samples []string
	for _, result := range state.DeliveryResults {
		if result.Status != "error" {
			continue
		}
		samples = append(samples, fmt.Sprintf("%s: %s", result.ArticleID, result.Error))
		if len(samples) >= max {
			break
		}
	}
	return samples
}

func printUsage() {
	fmt.Println("AI News Agent")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  newsagent run [--dry-run] [--limit N] [--verbose]")
}

func startMonitoringServer() {
	port := os.Getenv("MONITORING_PORT")
	if port == "" {
		port = "8080"
	}

	http.HandleFunc("/health", healthHandler)
	http.HandleFunc("/metrics", metricsHandler)

	logger.Info("starting monitoring server", "port", port)
	if err := http.ListenAndServe(":"+port, nil); err != nil {
		logger.Error("monitoring server error", "error", err)
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	stats := metrics.Global.GetStats()

	status := "ok"
	if !stats["is_healthy"].(bool) {
		status = "error"
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	response := map[string]interface{}{
		"status":     status,
		"last_run":   stats["last_run_time"],
		"last_error": stats["last_error"],
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func metricsHandler(w http.ResponseWriter, r *http.Request) {
	stats := metrics.Global.GetStats()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}
