package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rohankatakam/defacto/internal/config"
	"github.com/rohankatakam/defacto/internal/logging"
)

var (
	// Version information (set by build flags)
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"

	cfgFile  string
	verbose  bool
	repoPath string
	logger   *logging.Logger
	cfg      *config.Config
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "defacto",
	Short: "defacto - de facto file coupling from git history",
	Long: `defacto measures how often files change together. Two files are coupled
when the same author touches them in one commit or in commits a few days
apart. The result is a file-by-file co-occurrence matrix drawn as a heatmap.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to load config, using defaults: %v\n", err)
			cfg = config.Default()
		}
		if repoPath != "" {
			cfg.History.RepoPath = repoPath
		}

		logger, err = logging.NewLogger(logging.Config{
			Level:      cfg.Log.Level,
			OutputFile: cfg.Log.File,
			JSONFormat: cfg.Log.JSON,
			Verbose:    verbose,
		})
		if err != nil {
			return err
		}

		result := cfg.Validate()
		result.Log(logger)
		return result.Err()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			logger.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .defacto/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&repoPath, "repo", "", "repository to analyze (default: history.repo_path or .)")

	rootCmd.SetVersionTemplate(`defacto {{.Version}}
Build time: ` + BuildTime + `
Git commit: ` + GitCommit + `
`)

	rootCmd.AddCommand(matrixCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(relationsCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(configCmd)
}
