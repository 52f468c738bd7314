package history

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/rohankatakam/defacto/internal/errors"
)

// testRepo is a throwaway git repository driven through the git binary.
type testRepo struct {
	t   *testing.T
	dir string
	n   int
}

func newTestRepo(t *testing.T) *testRepo {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("Skipping: git not installed")
	}

	r := &testRepo{t: t, dir: t.TempDir()}
	r.git(nil, "init", "-q")
	r.git(nil, "symbolic-ref", "HEAD", "refs/heads/main")
	return r
}

func (r *testRepo) git(env []string, args ...string) string {
	r.t.Helper()
	cmd := exec.Command("git", append([]string{"-c", "commit.gpgsign=false"}, args...)...)
	cmd.Dir = r.dir
	cmd.Env = append(os.Environ(),
		"GIT_CONFIG_NOSYSTEM=1",
		"HOME="+r.dir,
		"GIT_COMMITTER_NAME=ci",
		"GIT_COMMITTER_EMAIL=ci@example.com",
	)
	cmd.Env = append(cmd.Env, env...)
	out, err := cmd.CombinedOutput()
	require.NoError(r.t, err, "git %v: %s", args, out)
	return string(out)
}

// commit writes fresh content to files and commits them as author at when.
func (r *testRepo) commit(author string, when time.Time, files ...string) {
	r.t.Helper()
	r.n++
	for _, f := range files {
		path := filepath.Join(r.dir, f)
		require.NoError(r.t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(r.t, os.WriteFile(path, []byte(fmt.Sprintf("rev %d\n", r.n)), 0644))
	}
	r.git(nil, append([]string{"add", "--"}, files...)...)
	r.commitStaged(author, when)
}

// commitStaged commits whatever is in the index.
func (r *testRepo) commitStaged(author string, when time.Time) {
	r.t.Helper()
	date := when.UTC().Format(time.RFC3339)
	r.git([]string{
		"GIT_AUTHOR_NAME=" + author,
		"GIT_AUTHOR_EMAIL=" + author,
		"GIT_AUTHOR_DATE=" + date,
		"GIT_COMMITTER_DATE=" + date,
	}, "commit", "-q", "-m", fmt.Sprintf("change %d", r.n))
}

var day0 = time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

func TestLoader_GitBackend(t *testing.T) {
	repo := newTestRepo(t)
	repo.commit("alice@example.com", day0, "src/a.ts", "README.md")
	repo.commit("bob@example.com", day0.Add(24*time.Hour), "src/b.ts")
	repo.commit("alice@example.com", day0.Add(48*time.Hour), "docs/guide.md")

	filter, err := NewFilter(DefaultSourcePattern, nil, nil)
	require.NoError(t, err)

	logger, hook := test.NewNullLogger()
	loader := NewLoader(Options{RepoPath: repo.dir, Location: time.UTC, Filter: filter}, logger)

	commits, err := loader.Load(context.Background())
	require.NoError(t, err)

	// Newest first; the docs-only commit is dropped by the filter.
	require.Len(t, commits, 2)
	assert.Equal(t, "bob@example.com", commits[0].Author)
	assert.Equal(t, []string{"src/b.ts"}, commits[0].Files)
	assert.Equal(t, DayOf(day0, time.UTC).Add(1), commits[0].Day)

	assert.Equal(t, "alice@example.com", commits[1].Author)
	assert.Equal(t, []string{"src/a.ts"}, commits[1].Files)
	assert.Len(t, commits[1].ID, 40)

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, 1, hook.LastEntry().Data["count"])
}

func TestLoader_SkipsMerges(t *testing.T) {
	repo := newTestRepo(t)
	repo.commit("alice@example.com", day0, "a.ts")
	repo.git(nil, "checkout", "-q", "-b", "feature")
	repo.commit("bob@example.com", day0.Add(time.Hour), "b.ts")
	repo.git(nil, "checkout", "-q", "main")
	repo.commit("alice@example.com", day0.Add(2*time.Hour), "c.ts")
	repo.git([]string{
		"GIT_AUTHOR_NAME=alice", "GIT_AUTHOR_EMAIL=alice@example.com",
	}, "merge", "-q", "--no-ff", "-m", "merge feature", "feature")

	for _, backend := range []Backend{BackendGit, BackendGoGit} {
		t.Run(string(backend), func(t *testing.T) {
			logger, _ := test.NewNullLogger()
			loader := NewLoader(Options{RepoPath: repo.dir, Backend: backend, Location: time.UTC}, logger)

			commits, err := loader.Load(context.Background())
			require.NoError(t, err)
			require.Len(t, commits, 3)

			var files []string
			for _, c := range commits {
				files = append(files, c.Files...)
			}
			assert.ElementsMatch(t, []string{"a.ts", "b.ts", "c.ts"}, files)
		})
	}
}

func TestLoader_BackendsAgree(t *testing.T) {
	repo := newTestRepo(t)
	repo.commit("alice@example.com", day0, "src/a.ts", "src/b.ts")
	repo.commit("alice@example.com", day0.Add(24*time.Hour), "src/b.ts", "src/café.ts", `src/say "hi".ts`)
	repo.git(nil, "mv", "src/a.ts", "src/renamed.ts")
	repo.commitStaged("bob@example.com", day0.Add(72*time.Hour))
	repo.git(nil, "rm", "-q", "src/b.ts")
	repo.commitStaged("bob@example.com", day0.Add(96*time.Hour))

	logger, _ := test.NewNullLogger()
	viaGit, err := NewLoader(Options{RepoPath: repo.dir, Backend: BackendGit, Location: time.UTC}, logger).Load(context.Background())
	require.NoError(t, err)
	viaGoGit, err := NewLoader(Options{RepoPath: repo.dir, Backend: BackendGoGit, Location: time.UTC}, logger).Load(context.Background())
	require.NoError(t, err)

	require.Len(t, viaGoGit, len(viaGit))
	require.Len(t, viaGit, 4)
	assert.ElementsMatch(t, []string{"src/b.ts", "src/café.ts", `src/say "hi".ts`}, viaGit[2].Files)
	for i := range viaGit {
		assert.Equal(t, viaGit[i].ID, viaGoGit[i].ID)
		assert.Equal(t, viaGit[i].Author, viaGoGit[i].Author)
		assert.Equal(t, viaGit[i].Day, viaGoGit[i].Day)
		assert.ElementsMatch(t, viaGit[i].Files, viaGoGit[i].Files, "commit %d", i)
	}
}

func TestLoader_NotARepository(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("Skipping: git not installed")
	}
	dir := t.TempDir()
	t.Setenv("GIT_CEILING_DIRECTORIES", filepath.Dir(dir))

	logger, _ := test.NewNullLogger()
	_, err := NewLoader(Options{RepoPath: dir}, logger).Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeGit, apperrors.GetType(err))
	assert.True(t, apperrors.IsFatal(err))
}

func TestLoader_GitMissing(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	logger, _ := test.NewNullLogger()
	_, err := NewLoader(Options{RepoPath: t.TempDir()}, logger).Load(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrGitNotFound)
}

func TestParseBackend(t *testing.T) {
	b, err := ParseBackend("")
	require.NoError(t, err)
	assert.Equal(t, BackendGit, b)

	b, err = ParseBackend("go-git")
	require.NoError(t, err)
	assert.Equal(t, BackendGoGit, b)

	_, err = ParseBackend("hg")
	assert.Error(t, err)
}
