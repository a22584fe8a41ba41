package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/btraven00/lectio/internal/export"
)

// failedCmd represents the failed command
var failedCmd = &cobra.Command{
	Use:   "failed [subreddit...]",
	Short: "Report records still lacking bibliographic metadata",
	Long: `Failed lists the research records whose metadata lookup has not
succeeded, grouped by the domain of their resolved URL so stubborn
publishers stand out, and closes with the records the Zotero push
rejected.

Examples:
  lectio failed
  lectio failed PhD`,
	RunE: runFailed,
}

func runFailed(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	subs, err := subredditsFrom(cfg, args)
	if err != nil {
		return err
	}

	st := newStore(cfg)

	for _, sub := range subs {
		records, err := st.Load(sub)
		if err != nil {
			return fmt.Errorf("failed to load r/%s: %w", sub, err)
		}

		if len(subs) > 1 {
			fmt.Printf("== r/%s ==\n\n", sub)
		}

		export.FailedReport(os.Stdout, records)
	}

	return nil
}

func init() {
	rootCmd.AddCommand(failedCmd)
}
