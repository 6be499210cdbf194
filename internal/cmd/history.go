package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrison/gomsv/internal/config"
	"github.com/harrison/gomsv/internal/history"
)

// NewHistoryCommand creates the history command
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent runs from the history database",
		Long: `Show recent runs recorded in the history database, newest first.

With --checks, show the individual toolchain checks of one run instead.

Examples:
  gomsv history
  gomsv history --limit 25
  gomsv history --checks 4f7c2d9a-...`,
		Args: cobra.NoArgs,
		RunE: historyCommand,
	}

	cmd.Flags().Int("limit", 10, "Maximum number of runs to show")
	cmd.Flags().String("checks", "", "Show the checks of the run with this id")

	return cmd
}

// historyCommand implements the history command logic
func historyCommand(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()

	projectDir, _ := flags.GetString("path")
	var cfg *config.Config
	var err error
	if configPath, _ := flags.GetString("config"); configPath != "" {
		cfg, err = config.Load(configPath)
	} else {
		cfg, err = config.LoadFromDir(projectDir)
	}
	if err != nil {
		return err
	}

	store, err := history.NewStore(cfg.HistoryPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if runID, _ := flags.GetString("checks"); runID != "" {
		checks, err := store.ChecksForRun(runID)
		if err != nil {
			return err
		}
		if len(checks) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "No checks recorded for run %s.\n", runID)
			return nil
		}
		for _, c := range checks {
			verdict := "bad"
			if c.Passed {
				verdict = "good"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %-10s %s\n",
				c.CheckedAt.Local().Format("2006-01-02 15:04:05"), c.Version, verdict)
		}
		return nil
	}

	limit, _ := flags.GetInt("limit")
	runs, err := store.RecentRuns(limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No runs recorded yet.\n")
		return nil
	}

	for _, r := range runs {
		result := r.ResultVersion
		if result == "" {
			result = "-"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %-7s %-8s %-10s %s  (%s)\n",
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.Intent, r.Outcome, result, r.Command, r.ID)
	}
	return nil
}
