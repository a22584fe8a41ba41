package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	windowHours   int
	backfillFlair bool
)

// updateCmd represents the update command
var updateCmd = &cobra.Command{
	Use:   "update [subreddit...]",
	Short: "Refresh recently stored records from the forum",
	Long: `Update re-fetches records posted within the update window (default one
week) and refreshes their title, selftext, URL, flair, author, and
comments. A changed record is marked for re-export and re-sync.

With --backfill-flair it also revisits older records whose flair was still
unset when they were fetched.

Examples:
  lectio update
  lectio update --window-hours 48 PhD
  lectio update --backfill-flair`,
	RunE: runUpdate,
}

type updateOutcome struct {
	Subreddit string `json:"subreddit"`
	Refreshed int    `json:"refreshed"`
}

func runUpdate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	subs, err := subredditsFrom(cfg, args)
	if err != nil {
		return err
	}

	window := cfg.UpdateWindow()
	if windowHours > 0 {
		window = time.Duration(windowHours) * time.Hour
	}

	p := newPipeline(cfg)
	outcomes := make([]updateOutcome, 0, len(subs))

	for _, sub := range subs {
		refreshed, err := p.Update(cmd.Context(), sub, window, backfillFlair)
		if err != nil {
			return fmt.Errorf("failed to update r/%s: %w", sub, err)
		}

		outcomes = append(outcomes, updateOutcome{Subreddit: sub, Refreshed: refreshed})
	}

	if output == "json" {
		return outputJSON(outcomes)
	}

	for _, o := range outcomes {
		fmt.Printf("✅ r/%s: %d records refreshed\n", o.Subreddit, o.Refreshed)
	}

	return nil
}

func init() {
	rootCmd.AddCommand(updateCmd)

	updateCmd.Flags().IntVar(&windowHours, "window-hours", 0, "override the update window in hours")
	updateCmd.Flags().BoolVar(&backfillFlair, "backfill-flair", false, "also refresh older records with no flair")
}
