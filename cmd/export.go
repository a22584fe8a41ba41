package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/btraven00/lectio/internal/pipeline"
)

var (
	exportDir   string
	exportForce bool
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export [subreddit...]",
	Short: "Write the curated list as a markdown table and a CSV snapshot",
	Long: `Export renders each subreddit's research records into {sub}.md (a
GitHub-flavored markdown table, newest first) and {sub}.csv (the
spreadsheet layout). When nothing changed since the last export the
files are left alone; --force rewrites them anyway.

Examples:
  lectio export
  lectio export --dir ./site PhD
  lectio export --force`,
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	subs, err := subredditsFrom(cfg, args)
	if err != nil {
		return err
	}

	dir := cfg.DataDir
	if exportDir != "" {
		dir = exportDir
	}

	p := newPipeline(cfg)
	outcomes := make(map[string]*pipeline.ExportResult, len(subs))

	for _, sub := range subs {
		res, err := p.ExportFiles(sub, dir, exportForce)
		if err != nil {
			return fmt.Errorf("failed to export r/%s: %w", sub, err)
		}

		outcomes[sub] = res
	}

	if output == "json" {
		return outputJSON(outcomes)
	}

	for _, sub := range subs {
		res := outcomes[sub]
		if res.Skipped {
			fmt.Printf("✅ r/%s: up to date (%d records)\n", sub, res.Records)

			continue
		}

		fmt.Printf("✅ r/%s: %d records -> %s, %s\n", sub, res.Records, res.MarkdownPath, res.CSVPath)
	}

	return nil
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportDir, "dir", "", "output directory (default: the data dir)")
	exportCmd.Flags().BoolVar(&exportForce, "force", false, "rewrite even when nothing changed")
}
