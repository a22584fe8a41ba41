package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var retryFailed bool

// metadataCmd represents the metadata command
var metadataCmd = &cobra.Command{
	Use:   "metadata [subreddit...]",
	Short: "Fetch bibliographic metadata from Crossref",
	Long: `Metadata looks up each research record on Crossref: by DOI when the real
URL (or the publisher page behind it) carries one, by fuzzy title match
otherwise. Failed lookups are remembered and skipped on later runs;
--retry-failed clears those marks first.

Progress is checkpointed to the store every few lookups, so an
interrupted run loses little work.

Examples:
  lectio metadata
  lectio metadata --retry-failed PhD`,
	RunE: runMetadata,
}

type metadataOutcome struct {
	Subreddit string `json:"subreddit"`
	Fetched   int    `json:"fetched"`
	Failed    int    `json:"failed"`
}

func runMetadata(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	subs, err := subredditsFrom(cfg, args)
	if err != nil {
		return err
	}

	p := newPipeline(cfg)
	outcomes := make([]metadataOutcome, 0, len(subs))

	for _, sub := range subs {
		fetched, failed, err := p.Metadata(cmd.Context(), sub, retryFailed)
		if err != nil {
			return fmt.Errorf("failed to fetch metadata for r/%s: %w", sub, err)
		}

		outcomes = append(outcomes, metadataOutcome{Subreddit: sub, Fetched: fetched, Failed: failed})
	}

	if output == "json" {
		return outputJSON(outcomes)
	}

	for _, o := range outcomes {
		status := "✅"
		if o.Failed > 0 {
			status = "⚠️ "
		}

		fmt.Printf("%s r/%s: %d fetched, %d failed\n", status, o.Subreddit, o.Fetched, o.Failed)
	}

	return nil
}

func init() {
	rootCmd.AddCommand(metadataCmd)

	metadataCmd.Flags().BoolVar(&retryFailed, "retry-failed", false, "retry records whose last lookup failed")
}
