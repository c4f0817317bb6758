package cmd

import (
	"fmt"
	"io"

	"modpack-builder/config"
	"modpack-builder/db"
	"modpack-builder/logger"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	historyLimit int
	historyTUI   bool
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Lists previously built modpacks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if err := logger.InitLogger(cfg.LogFile, verbose); err != nil {
			return err
		}
		defer logger.Sync()
		if err := db.InitDatabase(cfg.DatabasePath); err != nil {
			return err
		}

		builds, err := db.ListBuilds(db.DB, historyLimit)
		if err != nil {
			logger.Log.Errorw("Failed to query build history", zap.Error(err))
			return err
		}

		if historyTUI {
			if _, err := tea.NewProgram(newHistoryModel(builds), tea.WithAltScreen()).Run(); err != nil {
				return fmt.Errorf("failed to run history UI: %w", err)
			}
			return nil
		}
		printHistory(cmd.OutOrStdout(), builds)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of builds to show, 0 for all")
	historyCmd.Flags().BoolVar(&historyTUI, "tui", false, "browse builds interactively")
}

func printHistory(w io.Writer, builds []db.Build) {
	if len(builds) == 0 {
		fmt.Fprintln(w, "No builds recorded yet.")
		return
	}
	for _, b := range builds {
		fmt.Fprintf(w, "%s  %-8s %-9s %3d mods %3d skipped  %s\n",
			b.CreatedAt.Format("2006-01-02 15:04"),
			b.GameVersion,
			b.Loader,
			len(b.Mods),
			len(b.Skipped),
			b.ArchivePath,
		)
	}
}
