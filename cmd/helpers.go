package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/Maxservais/chat/internal/config"
	"github.com/Maxservais/chat/internal/db"
	"github.com/Maxservais/chat/internal/ics"
	"github.com/Maxservais/chat/internal/llm"
	"github.com/Maxservais/chat/internal/schedule"
	"github.com/Maxservais/chat/internal/scrape"
	"github.com/Maxservais/chat/internal/session"
	"github.com/Maxservais/chat/internal/tasks"
)

// createProviderFromConfig builds the configured LLM provider, already
// wrapped with the configured rate limit.
func createProviderFromConfig(cfg *config.Config) (llm.Provider, error) {
	return llm.NewProvider(cfg)
}

// createScheduleSource builds the cached schedule source and calendar
// generator from config.
func createScheduleSource(cfg *config.Config) (*schedule.Source, *ics.Generator, error) {
	ttl, err := cfg.ScheduleCacheTTL()
	if err != nil {
		return nil, nil, fmt.Errorf("parsing schedule cache TTL: %w", err)
	}
	return schedule.NewSource(cfg.Schedule.SourceURL, ttl), ics.NewGenerator(cfg.Schedule.Timezone), nil
}

// openDatabase opens the SQLite database under the configured data dir.
func openDatabase(cfg *config.Config) (*db.DB, error) {
	return db.Open(filepath.Join(cfg.DataDir, "confchat.db"))
}

// createEngine builds the background task engine over the scraper, the
// LLM summarizer, and the session store.
func createEngine(cfg *config.Config, provider llm.Provider, store *session.Store) *tasks.Engine {
	scraper := scrape.NewClient(cfg.Scrape.Endpoint, cfg.Scrape.Token)
	summarizer := tasks.NewLLMSummarizer(provider, cfg.Model)
	return tasks.NewEngine(scraper, summarizer, store, cfg.Scrape.MaxItems)
}
