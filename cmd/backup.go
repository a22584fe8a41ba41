package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// backupCmd represents the backup command
var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Copy every store file into a timestamped backup directory",
	Long: `Backup copies each subreddit's store file into a timestamped directory
under the backup dir. The run command does this automatically before
touching the store.

Examples:
  lectio backup`,
	Args: cobra.NoArgs,
	RunE: runBackup,
}

func runBackup(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	dest, err := newStore(cfg).Backup(cfg.BackupDir)
	if err != nil {
		return fmt.Errorf("failed to back up the store: %w", err)
	}

	if output == "json" {
		return outputJSON(map[string]string{"backup_dir": dest})
	}

	if dest == "" {
		fmt.Println("Nothing to back up.")

		return nil
	}

	fmt.Printf("✅ Store backed up to %s\n", dest)

	return nil
}

func init() {
	rootCmd.AddCommand(backupCmd)
}
