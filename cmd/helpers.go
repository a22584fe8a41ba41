package cmd

import (
	"fmt"
	"os"

	json "github.com/goccy/go-json"

	"github.com/btraven00/lectio/internal/config"
	"github.com/btraven00/lectio/internal/pipeline"
	"github.com/btraven00/lectio/internal/store"
	"github.com/btraven00/lectio/pkg/crossref"
	"github.com/btraven00/lectio/pkg/doi"
	"github.com/btraven00/lectio/pkg/reddit"
	"github.com/btraven00/lectio/pkg/zotero"
)

// loadConfig materializes the merged viper configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	return cfg, nil
}

// newStore opens the per-subreddit record store.
func newStore(cfg *config.Config) *store.Store {
	return store.New(cfg.DataDir)
}

// newPipeline wires the enrichment pipeline from the configuration.
func newPipeline(cfg *config.Config) *pipeline.Pipeline {
	forum := reddit.NewClient(cfg.Reddit.BaseURL, cfg.Reddit.UserAgent, cfg.RedditTimeout())
	meta := crossref.NewClient(cfg.Crossref.BaseURL, cfg.Crossref.Mailto,
		cfg.Crossref.UserAgent, cfg.CrossrefTimeout())

	var pages pipeline.PageFetcher
	if cfg.Resolver.FetchPages {
		pages = doi.NewPageClient(cfg.PageTimeout())
	}

	return pipeline.New(forum, meta, pages, newStore(cfg), pipeline.Options{
		MinSimilarity: cfg.Resolver.MinSimilarity,
		FetchPages:    cfg.Resolver.FetchPages,
		SaveEvery:     cfg.Resolver.SaveEvery,
	})
}

// newZoteroClient wires the reference-library client, failing early when
// credentials are missing.
func newZoteroClient(cfg *config.Config) (*zotero.Client, error) {
	if cfg.Zotero.APIKey == "" {
		return nil, fmt.Errorf("no Zotero API key configured (set ZOTERO_API_KEY)")
	}
	if cfg.Zotero.LibraryID == "" {
		return nil, fmt.Errorf("no Zotero library configured (set zotero.library_id)")
	}

	return zotero.NewClient(cfg.Zotero.BaseURL, cfg.Zotero.APIKey,
		cfg.Zotero.LibraryType, cfg.Zotero.LibraryID, cfg.ZoteroTimeout()), nil
}

// subredditsFrom picks the subreddits to work on: explicit arguments win,
// otherwise the configured list.
func subredditsFrom(cfg *config.Config, args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	if len(cfg.Subreddits) == 0 {
		return nil, fmt.Errorf("no subreddits given and none configured")
	}

	return cfg.Subreddits, nil
}

// outputJSON writes v to stdout, indented.
func outputJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	return encoder.Encode(v)
}
