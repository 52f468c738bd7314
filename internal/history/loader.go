package history

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/rohankatakam/defacto/internal/errors"
)

// Backend selects how history is read.
type Backend string

const (
	// BackendGit runs the git binary and streams its output.
	BackendGit Backend = "git"
	// BackendGoGit reads the object database in-process with go-git.
	BackendGoGit Backend = "go-git"
)

// ParseBackend validates a backend name.
func ParseBackend(s string) (Backend, error) {
	switch Backend(s) {
	case BackendGit, "":
		return BackendGit, nil
	case BackendGoGit:
		return BackendGoGit, nil
	default:
		return "", apperrors.ValidationErrorf("unknown history backend %q (want git or go-git)", s)
	}
}

// Options configures a Loader.
type Options struct {
	RepoPath string
	Backend  Backend
	Location *time.Location
	Filter   *Filter
}

// Source yields the commit history of a repository.
type Source interface {
	Load(ctx context.Context) ([]Commit, error)
}

// Loader reads non-merge commits, newest first.
type Loader struct {
	opts   Options
	logger logrus.FieldLogger
}

// NewLoader creates a loader. Zero-valued options default to the current
// directory, the git backend and the local time zone.
func NewLoader(opts Options, logger logrus.FieldLogger) *Loader {
	if opts.RepoPath == "" {
		opts.RepoPath = "."
	}
	if opts.Backend == "" {
		opts.Backend = BackendGit
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Loader{opts: opts, logger: logger}
}

// Load returns the filtered history. Commits left without files are dropped.
func (l *Loader) Load(ctx context.Context) ([]Commit, error) {
	start := time.Now()

	var (
		commits []Commit
		err     error
	)
	switch l.opts.Backend {
	case BackendGoGit:
		commits, err = l.loadGoGit(ctx)
	default:
		commits, err = l.loadGit(ctx)
	}
	if err != nil {
		return nil, err
	}

	l.logger.WithFields(logrus.Fields{
		"repo":     l.opts.RepoPath,
		"backend":  l.opts.Backend,
		"commits":  len(commits),
		"duration": time.Since(start).Round(time.Millisecond),
	}).Debug("loaded commit history")

	return commits, nil
}

// collector applies the filter and counts dropped commits.
type collector struct {
	filter  *Filter
	logger  logrus.FieldLogger
	commits []Commit
	dropped int
}

func (c *collector) add(commit Commit) {
	commit = c.filter.Apply(commit)
	if len(commit.Files) == 0 {
		c.dropped++
		c.logger.WithFields(logrus.Fields{
			"author": commit.Author,
			"day":    commit.Day.String(),
			"commit": commit.ID,
		}).Debug("ignoring commit - no source files changed by commit")
		return
	}
	c.commits = append(c.commits, commit)
}

func (c *collector) done() []Commit {
	if c.dropped > 0 {
		c.logger.WithField("count", c.dropped).Warn("ignored commits without matching files")
	}
	return c.commits
}

func (l *Loader) loadGit(ctx context.Context) ([]Commit, error) {
	gitPath, err := exec.LookPath("git")
	if err != nil {
		return nil, apperrors.ErrGitNotFound
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cmd := exec.CommandContext(ctx, gitPath,
		"-c", "core.quotePath=false",
		"log",
		"--name-only",
		"--no-merges",
		"--no-color",
		"--pretty=format:"+LogFormat)
	cmd.Dir = l.opts.RepoPath

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, apperrors.GitError(err, "git log: open stdout")
	}
	if err := cmd.Start(); err != nil {
		return nil, apperrors.GitError(err, "git log: start")
	}

	// The parser streams commits to the collector; neither holds the raw log.
	ch := make(chan Commit, 64)
	col := &collector{filter: l.opts.Filter, logger: l.logger}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(ch)
		return Parse(stdout, l.opts.Location, func(c Commit) error {
			select {
			case ch <- c:
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	})
	g.Go(func() error {
		for c := range ch {
			col.add(c)
		}
		return nil
	})

	parseErr := g.Wait()
	if parseErr != nil {
		// Stop git so Wait does not block on a full pipe.
		cancel()
	}
	waitErr := cmd.Wait()

	if parseErr != nil {
		return nil, parseErr
	}
	if waitErr != nil {
		msg := strings.TrimSpace(stderr.String())
		return nil, apperrors.GitError(waitErr, "git log failed").
			WithContext("repo", l.opts.RepoPath).
			WithContext("stderr", msg)
	}

	return col.done(), nil
}

// Head returns the commit hash HEAD points to.
func (l *Loader) Head(ctx context.Context) (string, error) {
	if l.opts.Backend == BackendGoGit {
		return l.headGoGit()
	}

	gitPath, err := exec.LookPath("git")
	if err != nil {
		return "", apperrors.ErrGitNotFound
	}
	cmd := exec.CommandContext(ctx, gitPath, "rev-parse", "HEAD")
	cmd.Dir = l.opts.RepoPath
	out, err := cmd.Output()
	if err != nil {
		return "", apperrors.GitError(err, "git rev-parse HEAD failed")
	}
	return strings.TrimSpace(string(out)), nil
}

// CacheKey identifies a load result for the given HEAD.
func (l *Loader) CacheKey(head string) string {
	repo, err := filepath.Abs(l.opts.RepoPath)
	if err != nil {
		repo = l.opts.RepoPath
	}
	return fmt.Sprintf("%s|%s|%s|%s|%s", repo, head, l.opts.Backend, l.opts.Location, l.opts.Filter.Signature())
}
