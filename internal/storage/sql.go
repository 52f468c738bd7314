package storage

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/rohankatakam/defacto/internal/coupling"
	apperrors "github.com/rohankatakam/defacto/internal/errors"
)

// SQLStore implements Store on SQLite (local) or Postgres (shared).
type SQLStore struct {
	db     *sqlx.DB
	logger logrus.FieldLogger
}

// NewSQLiteStore opens the SQLite database at path, creating it if needed.
func NewSQLiteStore(path string, logger logrus.FieldLogger) (*SQLStore, error) {
	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, apperrors.FileSystemErrorf(err, "create database directory for %s", path)
	}

	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, apperrors.StorageError(err, "connect to sqlite")
	}
	db.Exec("PRAGMA foreign_keys = ON")
	db.Exec("PRAGMA journal_mode = WAL")

	return newSQLStore(db, logger)
}

// NewPostgresStore connects to Postgres with dsn.
func NewPostgresStore(dsn string, logger logrus.FieldLogger) (*SQLStore, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, apperrors.StorageError(err, "connect to postgres")
	}
	return newSQLStore(db, logger)
}

func newSQLStore(db *sqlx.DB, logger logrus.FieldLogger) (*SQLStore, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	store := &SQLStore{db: db, logger: logger}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, apperrors.StorageError(err, "init schema")
	}
	return store, nil
}

func (s *SQLStore) initSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS coupling_runs (
			id TEXT PRIMARY KEY,
			repo_path TEXT NOT NULL,
			head TEXT,
			window_days INTEGER NOT NULL,
			commit_count INTEGER NOT NULL,
			file_count INTEGER NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS coupling_pairs (
			run_id TEXT NOT NULL REFERENCES coupling_runs(id) ON DELETE CASCADE,
			file_a TEXT NOT NULL,
			file_b TEXT NOT NULL,
			count INTEGER NOT NULL,
			reverse_count INTEGER NOT NULL,
			PRIMARY KEY (run_id, file_a, file_b)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_repo ON coupling_runs(repo_path, created_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the database connection
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// SaveRun inserts run together with its pairs in one transaction, assigning
// an ID and timestamp when missing. Nothing is stored if any insert fails.
func (s *SQLStore) SaveRun(ctx context.Context, run *Run, pairs []coupling.Pair) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return apperrors.StorageError(err, "begin transaction")
	}
	defer tx.Rollback()

	query := tx.Rebind(`
		INSERT INTO coupling_runs
		(id, repo_path, head, window_days, commit_count, file_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	_, err = tx.ExecContext(ctx, query,
		run.ID, run.RepoPath, run.Head, run.WindowDays, run.Commits, run.Files, run.CreatedAt)
	if err != nil {
		return apperrors.StorageErrorf(err, "save run %s", run.ID)
	}
	if err := insertPairs(ctx, tx, run.ID, pairs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return apperrors.StorageErrorf(err, "commit run %s", run.ID)
	}
	s.logger.WithFields(logrus.Fields{"run": run.ID, "pairs": len(pairs)}).Debug("saved coupling run")
	return nil
}

func (s *SQLStore) GetRun(ctx context.Context, id string) (*Run, error) {
	var run Run
	query := s.db.Rebind(`SELECT * FROM coupling_runs WHERE id = ?`)

	if err := s.db.GetContext(ctx, &run, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, apperrors.StorageErrorf(err, "get run %s", id)
	}
	return &run, nil
}

// LatestRun returns the most recent run for repoPath.
func (s *SQLStore) LatestRun(ctx context.Context, repoPath string) (*Run, error) {
	var run Run
	query := s.db.Rebind(`SELECT * FROM coupling_runs WHERE repo_path = ? ORDER BY created_at DESC LIMIT 1`)

	if err := s.db.GetContext(ctx, &run, query, repoPath); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, apperrors.StorageErrorf(err, "latest run for %s", repoPath)
	}
	return &run, nil
}

// SavePairs appends pairs to an existing run in one transaction.
func (s *SQLStore) SavePairs(ctx context.Context, runID string, pairs []coupling.Pair) error {
	if len(pairs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return apperrors.StorageError(err, "begin transaction")
	}
	defer tx.Rollback()

	if err := insertPairs(ctx, tx, runID, pairs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return apperrors.StorageError(err, "commit pairs")
	}
	s.logger.WithFields(logrus.Fields{"run": runID, "pairs": len(pairs)}).Debug("saved coupling pairs")
	return nil
}

func insertPairs(ctx context.Context, tx *sqlx.Tx, runID string, pairs []coupling.Pair) error {
	if len(pairs) == 0 {
		return nil
	}
	stmt, err := tx.PreparexContext(ctx, tx.Rebind(`
		INSERT INTO coupling_pairs (run_id, file_a, file_b, count, reverse_count)
		VALUES (?, ?, ?, ?, ?)
	`))
	if err != nil {
		return apperrors.StorageError(err, "prepare pair insert")
	}
	defer stmt.Close()

	for _, p := range pairs {
		if _, err := stmt.ExecContext(ctx, runID, p.A, p.B, p.Count, p.Reverse); err != nil {
			return apperrors.StorageErrorf(err, "save pair %s/%s", p.A, p.B)
		}
	}
	return nil
}

// GetPairs returns the strongest pairs of a run (all when limit <= 0).
func (s *SQLStore) GetPairs(ctx context.Context, runID string, limit int) ([]coupling.Pair, error) {
	var pairs []coupling.Pair
	query := `SELECT file_a, file_b, count, reverse_count FROM coupling_pairs
		WHERE run_id = ? ORDER BY count DESC, file_a, file_b`
	args := []interface{}{runID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	if err := s.db.SelectContext(ctx, &pairs, s.db.Rebind(query), args...); err != nil {
		return nil, apperrors.StorageErrorf(err, "get pairs for run %s", runID)
	}
	return pairs, nil
}
