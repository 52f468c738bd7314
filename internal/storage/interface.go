package storage

import (
	"context"
	"errors"
	"time"

	"github.com/rohankatakam/defacto/internal/coupling"
)

// Common errors
var (
	ErrNotFound = errors.New("not found")
)

// Run is one matrix computation over a repository.
type Run struct {
	ID         string    `db:"id"`
	RepoPath   string    `db:"repo_path"`
	Head       string    `db:"head"`
	WindowDays int       `db:"window_days"`
	Commits    int       `db:"commit_count"`
	Files      int       `db:"file_count"`
	CreatedAt  time.Time `db:"created_at"`
}

// Store defines the storage interface
type Store interface {
	// Run operations
	SaveRun(ctx context.Context, run *Run, pairs []coupling.Pair) error
	GetRun(ctx context.Context, id string) (*Run, error)
	LatestRun(ctx context.Context, repoPath string) (*Run, error)

	// Pair operations
	SavePairs(ctx context.Context, runID string, pairs []coupling.Pair) error
	GetPairs(ctx context.Context, runID string, limit int) ([]coupling.Pair, error)

	// Close connection
	Close() error
}
