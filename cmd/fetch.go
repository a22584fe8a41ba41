package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch [subreddit...]",
	Short: "Fetch new submissions and prepend them to the store",
	Long: `Fetch pulls submissions newer than the most recent stored one from each
subreddit's /new listing and prepends them to the local store, newest
first. Without arguments it works through the configured subreddits.

Examples:
  lectio fetch
  lectio fetch PhD AskAcademia`,
	RunE: runFetch,
}

type fetchOutcome struct {
	Subreddit string `json:"subreddit"`
	Added     int    `json:"added"`
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	subs, err := subredditsFrom(cfg, args)
	if err != nil {
		return err
	}

	p := newPipeline(cfg)
	outcomes := make([]fetchOutcome, 0, len(subs))

	for _, sub := range subs {
		added, err := p.FetchNew(cmd.Context(), sub)
		if err != nil {
			return fmt.Errorf("failed to fetch r/%s: %w", sub, err)
		}

		outcomes = append(outcomes, fetchOutcome{Subreddit: sub, Added: added})
	}

	if output == "json" {
		return outputJSON(outcomes)
	}

	for _, o := range outcomes {
		fmt.Printf("✅ r/%s: %d new submissions\n", o.Subreddit, o.Added)
	}

	return nil
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}
