package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// commentsCmd represents the comments command
var commentsCmd = &cobra.Command{
	Use:   "comments [subreddit...]",
	Short: "Attach comment trees to records that never had them fetched",
	Long: `Comments fetches the full comment tree for every stored record that has
never had one attached. Threads without comments persist as an empty
list, so they are not refetched on the next run.

Examples:
  lectio comments
  lectio comments PhD`,
	RunE: runComments,
}

type commentsOutcome struct {
	Subreddit string `json:"subreddit"`
	Fetched   int    `json:"fetched"`
}

func runComments(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	subs, err := subredditsFrom(cfg, args)
	if err != nil {
		return err
	}

	p := newPipeline(cfg)
	outcomes := make([]commentsOutcome, 0, len(subs))

	for _, sub := range subs {
		fetched, err := p.FetchComments(cmd.Context(), sub)
		if err != nil {
			return fmt.Errorf("failed to fetch comments for r/%s: %w", sub, err)
		}

		outcomes = append(outcomes, commentsOutcome{Subreddit: sub, Fetched: fetched})
	}

	if output == "json" {
		return outputJSON(outcomes)
	}

	for _, o := range outcomes {
		fmt.Printf("✅ r/%s: comments fetched for %d records\n", o.Subreddit, o.Fetched)
	}

	return nil
}

func init() {
	rootCmd.AddCommand(commentsCmd)
}
