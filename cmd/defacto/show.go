package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rohankatakam/defacto/internal/output"
	"github.com/rohankatakam/defacto/internal/storage"
)

var showCmd = &cobra.Command{
	Use:   "show [run-id]",
	Short: "Show the coupled pairs of a saved run",
	Long: `Show a run saved with 'defacto matrix --save'. Without a run ID the latest
run of the repository is shown.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runShow,
}

func init() {
	showCmd.Flags().Int("top", 10, "number of pairs to print (0 for all)")
	showCmd.Flags().String("format", "table", "output format: table, json, csv")
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	top, _ := cmd.Flags().GetInt("top")
	format, _ := cmd.Flags().GetString("format")

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	var run *storage.Run
	if len(args) == 1 {
		run, err = store.GetRun(ctx, args[0])
	} else {
		repo, absErr := filepath.Abs(cfg.History.RepoPath)
		if absErr != nil {
			repo = cfg.History.RepoPath
		}
		run, err = store.LatestRun(ctx, repo)
	}
	if err == storage.ErrNotFound {
		return fmt.Errorf("no saved run found (run 'defacto matrix --save' first)")
	}
	if err != nil {
		return err
	}

	pairs, err := store.GetPairs(ctx, run.ID, top)
	if err != nil {
		return err
	}

	if format == "table" {
		fmt.Fprintf(cmd.OutOrStdout(), "Run %s  %s  window=%dd  commits=%d  at %s\n",
			run.ID, run.RepoPath, run.WindowDays, run.Commits, run.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	formatter := output.NewCouplingFormatter(format, format == "table" && output.IsTerminal(os.Stdout))
	return formatter.FormatPairs(cmd.OutOrStdout(), pairs)
}
