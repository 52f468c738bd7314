package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rohankatakam/defacto/internal/output"
	"github.com/rohankatakam/defacto/internal/relations"
)

var relationsCmd = &cobra.Command{
	Use:   "relations",
	Short: "Print the author/module relation graph",
	Long: `Print authors and modules with their number of commits and mean time
between commits, followed by one edit edge per author/module change.

Examples:
  # Every file, one edge per change
  defacto relations

  # Source files only, one edge per author/module pair
  defacto relations -f -e`,
	Args: cobra.NoArgs,
	RunE: runRelations,
}

var relationsHistory historyFlags

func init() {
	relationsCmd.Flags().BoolP("filter-files", "f", false, "only consider source files")
	relationsCmd.Flags().BoolP("unique-edges", "e", false, "emit each author/module edge once")
	relationsHistory.register(relationsCmd)
}

func runRelations(cmd *cobra.Command, args []string) error {
	filterFiles, _ := cmd.Flags().GetBool("filter-files")
	unique, _ := cmd.Flags().GetBool("unique-edges")

	commits, _, err := loadCommits(cmd.Context(), &relationsHistory, filterFiles)
	if err != nil {
		return err
	}

	g := relations.Build(commits, unique)
	logger.WithFields(logrus.Fields{
		"authors": len(g.Authors),
		"modules": len(g.Modules),
		"edges":   len(g.Edges),
	}).Debug("relation graph built")

	return output.WriteGraph(cmd.OutOrStdout(), g)
}
