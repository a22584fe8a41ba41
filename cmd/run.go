package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/btraven00/lectio/internal/config"
	"github.com/btraven00/lectio/internal/pipeline"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [subreddit...]",
	Short: "Run the full curation pass: fetch, comments, update, process, metadata, export",
	Long: `Run executes the whole curation pass for each subreddit: back up the
store, fetch new submissions, attach comment trees, refresh recent
records, derive URLs and summaries, fetch bibliographic metadata, and
export the markdown/CSV snapshots.

A stage failure aborts the remaining stages; the backup taken up front
makes it safe to retry.

Examples:
  lectio run
  lectio run PhD AskAcademia`,
	RunE: runRun,
}

type runOutcome struct {
	Subreddit string                 `json:"subreddit"`
	Added     int                    `json:"added"`
	Comments  int                    `json:"comments"`
	Refreshed int                    `json:"refreshed"`
	Changed   int                    `json:"changed"`
	Fetched   int                    `json:"metadata_fetched"`
	Failed    int                    `json:"metadata_failed"`
	Export    *pipeline.ExportResult `json:"export"`
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	subs, err := subredditsFrom(cfg, args)
	if err != nil {
		return err
	}

	st := newStore(cfg)

	dest, err := st.Backup(cfg.BackupDir)
	if err != nil {
		return fmt.Errorf("failed to back up the store: %w", err)
	}
	if dest != "" && !quiet {
		fmt.Fprintf(os.Stderr, "Store backed up to %s\n", dest)
	}

	p := newPipeline(cfg)
	outcomes := make([]runOutcome, 0, len(subs))

	for _, sub := range subs {
		outcome, err := runStages(cmd.Context(), p, cfg, sub)
		if err != nil {
			return err
		}

		outcomes = append(outcomes, *outcome)
	}

	if output == "json" {
		return outputJSON(outcomes)
	}

	for _, o := range outcomes {
		fmt.Printf("✅ r/%s: %d new, %d comment trees, %d refreshed, %d derived, %d/%d metadata",
			o.Subreddit, o.Added, o.Comments, o.Refreshed, o.Changed, o.Fetched, o.Fetched+o.Failed)

		if o.Export.Skipped {
			fmt.Printf(", export up to date\n")
		} else {
			fmt.Printf(", exported %d records\n", o.Export.Records)
		}
	}

	return nil
}

func runStages(ctx context.Context, p *pipeline.Pipeline, cfg *config.Config, sub string) (*runOutcome, error) {
	outcome := runOutcome{Subreddit: sub}
	var err error

	if outcome.Added, err = p.FetchNew(ctx, sub); err != nil {
		return nil, fmt.Errorf("fetch stage failed for r/%s: %w", sub, err)
	}
	if outcome.Comments, err = p.FetchComments(ctx, sub); err != nil {
		return nil, fmt.Errorf("comments stage failed for r/%s: %w", sub, err)
	}
	if outcome.Refreshed, err = p.Update(ctx, sub, cfg.UpdateWindow(), false); err != nil {
		return nil, fmt.Errorf("update stage failed for r/%s: %w", sub, err)
	}
	if outcome.Changed, err = p.Process(ctx, sub); err != nil {
		return nil, fmt.Errorf("process stage failed for r/%s: %w", sub, err)
	}
	if outcome.Fetched, outcome.Failed, err = p.Metadata(ctx, sub, false); err != nil {
		return nil, fmt.Errorf("metadata stage failed for r/%s: %w", sub, err)
	}
	if outcome.Export, err = p.ExportFiles(sub, cfg.DataDir, false); err != nil {
		return nil, fmt.Errorf("export stage failed for r/%s: %w", sub, err)
	}

	return &outcome, nil
}

func init() {
	rootCmd.AddCommand(runCmd)
}
