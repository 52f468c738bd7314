package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rohankatakam/defacto/internal/coupling"
	"github.com/rohankatakam/defacto/internal/history"
	"github.com/rohankatakam/defacto/internal/output"
	"github.com/rohankatakam/defacto/internal/render"
	"github.com/rohankatakam/defacto/internal/storage"
)

var matrixCmd = &cobra.Command{
	Use:   "matrix [output]",
	Short: "Draw the co-occurrence matrix as a heatmap",
	Long: `Build the file co-occurrence matrix of the repository and draw it as a heatmap.
The image format follows the output extension (default output.pdf).

Examples:
  # Heatmap of JS/TS files, 3-day window, colour scale clipped at 30
  defacto matrix

  # Unclipped PNG over every file, one-week window
  defacto matrix coupling.png --no-clip --no-filter-files -w 7

  # Store the run and its coupled pairs
  defacto matrix --save`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMatrix,
}

var matrixHistory historyFlags

func init() {
	matrixCmd.Flags().BoolP("no-clip", "c", false, "scale colours to the observed range instead of clipping")
	matrixCmd.Flags().BoolP("no-filter-files", "f", false, "include every file, not only source files")
	matrixCmd.Flags().IntP("window", "w", coupling.DefaultWindowDays, "co-change window in days (default: matrix.window_days)")
	matrixCmd.Flags().Int("clip-max", render.DefaultClipMax, "colour scale ceiling when clipping (default: matrix.clip_max)")
	matrixCmd.Flags().Int("top", 10, "number of coupled pairs to print (default: matrix.top)")
	matrixCmd.Flags().String("format", "table", "summary format: table, json, csv")
	matrixCmd.Flags().Bool("open", false, "open the heatmap when done")
	matrixCmd.Flags().Bool("save", false, "save the run and its pairs to storage")
	matrixHistory.register(matrixCmd)
}

// matrixSettings merges explicitly set flags over the configuration.
type matrixSettings struct {
	window      int
	filterFiles bool
	top         int
	render      render.Options
}

func resolveMatrixSettings(cmd *cobra.Command) matrixSettings {
	flags := cmd.Flags()
	s := matrixSettings{
		window:      cfg.Matrix.WindowDays,
		filterFiles: cfg.Matrix.FilterFiles,
		top:         cfg.Matrix.Top,
		render: render.Options{
			Clip:      cfg.Matrix.Clip,
			ClipMax:   cfg.Matrix.ClipMax,
			MaxLabels: cfg.Matrix.MaxLabels,
		},
	}

	if flags.Changed("window") {
		s.window, _ = flags.GetInt("window")
	}
	if flags.Changed("no-filter-files") {
		noFilter, _ := flags.GetBool("no-filter-files")
		s.filterFiles = !noFilter
	}
	if flags.Changed("top") {
		s.top, _ = flags.GetInt("top")
	}
	if flags.Changed("no-clip") {
		noClip, _ := flags.GetBool("no-clip")
		s.render.Clip = !noClip
	}
	if flags.Changed("clip-max") {
		s.render.ClipMax, _ = flags.GetInt("clip-max")
	}
	s.render.Open, _ = flags.GetBool("open")
	return s
}

// buildMatrix loads history and computes the matrix.
func buildMatrix(ctx context.Context, hf *historyFlags, window int, filterFiles bool) (*coupling.Matrix, []history.Commit, *history.Loader, error) {
	opts := coupling.Options{WindowDays: window}
	if err := opts.Validate(); err != nil {
		return nil, nil, nil, err
	}

	commits, loader, err := loadCommits(ctx, hf, filterFiles)
	if err != nil {
		return nil, nil, nil, err
	}

	m, err := coupling.Build(commits, opts)
	if err != nil {
		return nil, nil, nil, err
	}

	files, _ := m.Dims()
	logger.WithFields(logrus.Fields{
		"commits": len(commits),
		"files":   files,
		"window":  window,
		"max":     m.Max(),
	}).Info("co-occurrence matrix built")

	return m, commits, loader, nil
}

func runMatrix(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	out := "output.pdf"
	if len(args) > 0 {
		out = args[0]
	}
	format, _ := cmd.Flags().GetString("format")
	if format != "table" && format != "json" && format != "csv" {
		return fmt.Errorf("invalid format %q, must be: table, json, or csv", format)
	}
	save, _ := cmd.Flags().GetBool("save")
	s := resolveMatrixSettings(cmd)

	m, commits, loader, err := buildMatrix(ctx, &matrixHistory, s.window, s.filterFiles)
	if err != nil {
		return err
	}

	if err := render.Heatmap(m, s.render, out, logger); err != nil {
		return err
	}

	summary := coupling.Summarize(m, s.top)
	formatter := output.NewCouplingFormatter(format, format == "table" && output.IsTerminal(os.Stdout))
	if err := formatter.FormatSummary(cmd.OutOrStdout(), summary); err != nil {
		return err
	}

	if save {
		return saveRun(ctx, loader, len(commits), m, s.window)
	}
	return nil
}

// saveRun stores the run and its coupled pairs.
func saveRun(ctx context.Context, loader *history.Loader, commits int, m *coupling.Matrix, window int) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	head, err := loader.Head(ctx)
	if err != nil {
		logger.WithError(err).Warn("could not resolve HEAD for the saved run")
	}
	repo, err := filepath.Abs(cfg.History.RepoPath)
	if err != nil {
		repo = cfg.History.RepoPath
	}

	files, _ := m.Dims()
	run := &storage.Run{
		RepoPath:   repo,
		Head:       head,
		WindowDays: window,
		Commits:    commits,
		Files:      files,
	}
	pairs := coupling.Pairs(m)
	if err := store.SaveRun(ctx, run, pairs); err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"run":     run.ID,
		"pairs":   len(pairs),
		"storage": cfg.Storage.Type,
	}).Info("coupling run saved")
	return nil
}

func openStore() (storage.Store, error) {
	var (
		store *storage.SQLStore
		err   error
	)
	switch cfg.Storage.Type {
	case "postgres":
		store, err = storage.NewPostgresStore(cfg.Storage.PostgresDSN, logger)
	default:
		store, err = storage.NewSQLiteStore(cfg.Storage.LocalPath, logger)
	}
	if err != nil {
		return nil, err
	}
	return store, nil
}
