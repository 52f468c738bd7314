package main

import (
	"bufio"
	"os"

	"github.com/spf13/cobra"

	"github.com/rohankatakam/defacto/internal/coupling"
	apperrors "github.com/rohankatakam/defacto/internal/errors"
	"github.com/rohankatakam/defacto/internal/output"
)

var exportCmd = &cobra.Command{
	Use:   "export <file.csv>",
	Short: "Write the co-occurrence matrix as CSV",
	Long: `Write the full co-occurrence matrix as CSV. The first row and column hold
the file paths. Use - to write to stdout.

Examples:
  defacto export coupling.csv
  defacto export - -w 7 --no-filter-files`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

var exportHistory historyFlags

func init() {
	exportCmd.Flags().BoolP("no-filter-files", "f", false, "include every file, not only source files")
	exportCmd.Flags().IntP("window", "w", coupling.DefaultWindowDays, "co-change window in days (default: matrix.window_days)")
	exportHistory.register(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	s := resolveMatrixSettings(cmd)

	m, _, _, err := buildMatrix(cmd.Context(), &exportHistory, s.window, s.filterFiles)
	if err != nil {
		return err
	}

	if args[0] == "-" {
		return output.WriteMatrixCSV(cmd.OutOrStdout(), m)
	}
	if err := writeMatrixFile(args[0], m); err != nil {
		return err
	}
	logger.WithField("path", args[0]).Info("matrix exported")
	return nil
}

// writeMatrixFile writes m as CSV to path. Flush and close errors are
// returned like write errors.
func writeMatrixFile(path string, m *coupling.Matrix) error {
	f, err := os.Create(path)
	if err != nil {
		return apperrors.FileSystemErrorf(err, "create %s", path)
	}

	buf := bufio.NewWriter(f)
	if err := output.WriteMatrixCSV(buf, m); err != nil {
		f.Close()
		return apperrors.FileSystemErrorf(err, "write %s", path)
	}
	if err := buf.Flush(); err != nil {
		f.Close()
		return apperrors.FileSystemErrorf(err, "write %s", path)
	}
	if err := f.Close(); err != nil {
		return apperrors.FileSystemErrorf(err, "close %s", path)
	}
	return nil
}
