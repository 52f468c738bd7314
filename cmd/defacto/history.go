package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/rohankatakam/defacto/internal/history"
)

// historyFlags are shared by every command that reads commits.
type historyFlags struct {
	backend string
	noCache bool
}

func (f *historyFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.backend, "backend", "", "history backend: git or go-git (default: history.backend)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "ignore the history cache")
}

// loadCommits reads the repository history, through the cache unless
// disabled. The returned loader can resolve HEAD for the same repository.
func loadCommits(ctx context.Context, hf *historyFlags, filterFiles bool) ([]history.Commit, *history.Loader, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, nil, err
	}

	backendName := cfg.History.Backend
	if hf.backend != "" {
		backendName = hf.backend
	}
	backend, err := history.ParseBackend(backendName)
	if err != nil {
		return nil, nil, err
	}

	var filter *history.Filter
	if filterFiles {
		filter, err = history.NewFilter(cfg.Matrix.SourcePattern, cfg.Matrix.Include, cfg.Matrix.Exclude)
		if err != nil {
			return nil, nil, err
		}
	}

	loader := history.NewLoader(history.Options{
		RepoPath: cfg.History.RepoPath,
		Backend:  backend,
		Location: loc,
		Filter:   filter,
	}, logger)

	var src history.Source = loader
	if !hf.noCache && cfg.History.CachePath != "" {
		cache, err := history.OpenCache(cfg.History.CachePath)
		if err != nil {
			logger.WithError(err).Warn("history cache unavailable")
		} else {
			defer cache.Close()
			src = history.NewCachedLoader(loader, cache, logger)
		}
	}

	commits, err := src.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	return commits, loader, nil
}
