package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/btraven00/lectio/internal/pipeline"
)

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync [subreddit...]",
	Short: "Push unsynced research records to the Zotero library",
	Long: `Sync pushes every unsynced research record into the configured Zotero
library, filed into the collection matching its flair. Records with
bibliographic metadata become typed entries; the rest are filed as bare
documents that still point at the thread. Items pushed earlier are
matched by their thread link and updated in place.

Per-item rejections are recorded on the record and skipped on later runs
until the error is cleared; transport and auth failures abort the pass.

Requires ZOTERO_API_KEY (environment or .env) and zotero.library_id.

Examples:
  lectio sync
  lectio sync PhD`,
	RunE: runSync,
}

func runSync(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	subs, err := subredditsFrom(cfg, args)
	if err != nil {
		return err
	}

	lib, err := newZoteroClient(cfg)
	if err != nil {
		return err
	}

	p := newPipeline(cfg)
	outcomes := make(map[string]*pipeline.SyncResult, len(subs))

	for _, sub := range subs {
		res, err := p.SyncZotero(cmd.Context(), sub, lib)
		if err != nil {
			return fmt.Errorf("failed to sync r/%s: %w", sub, err)
		}

		outcomes[sub] = res
	}

	if output == "json" {
		return outputJSON(outcomes)
	}

	for _, sub := range subs {
		res := outcomes[sub]
		status := "✅"
		if res.Failed > 0 {
			status = "⚠️ "
		}

		fmt.Printf("%s r/%s: %d created, %d updated, %d unchanged, %d failed, %d skipped\n",
			status, sub, res.Created, res.Updated, res.Unchanged, res.Failed, res.Skipped)
	}

	return nil
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
