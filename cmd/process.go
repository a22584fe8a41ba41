package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// processCmd represents the process command
var processCmd = &cobra.Command{
	Use:   "process [subreddit...]",
	Short: "Derive the real URL, summary, and paper type for research records",
	Long: `Process runs the derivation pass over every research record: it recovers
the URL of the paper behind the post (following crossposts when needed),
distills the submitter's comment threads into a summary, and classifies
the paper type from the title.

The pass is deterministic and idempotent; unchanged records keep their
sync state.

Examples:
  lectio process
  lectio process PhD`,
	RunE: runProcess,
}

type processOutcome struct {
	Subreddit string `json:"subreddit"`
	Changed   int    `json:"changed"`
}

func runProcess(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	subs, err := subredditsFrom(cfg, args)
	if err != nil {
		return err
	}

	p := newPipeline(cfg)
	outcomes := make([]processOutcome, 0, len(subs))

	for _, sub := range subs {
		changed, err := p.Process(cmd.Context(), sub)
		if err != nil {
			return fmt.Errorf("failed to process r/%s: %w", sub, err)
		}

		outcomes = append(outcomes, processOutcome{Subreddit: sub, Changed: changed})
	}

	if output == "json" {
		return outputJSON(outcomes)
	}

	for _, o := range outcomes {
		fmt.Printf("✅ r/%s: %d records changed\n", o.Subreddit, o.Changed)
	}

	return nil
}

func init() {
	rootCmd.AddCommand(processCmd)
}
