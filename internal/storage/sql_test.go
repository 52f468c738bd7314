package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohankatakam/defacto/internal/coupling"
)

func newTestStore(t *testing.T) *SQLStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "db", "defacto.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSaveRun(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	run := &Run{RepoPath: "/repo", Head: "abc", WindowDays: 3, Commits: 10, Files: 4}
	require.NoError(t, store.SaveRun(ctx, run, nil))
	assert.NotEmpty(t, run.ID)
	assert.False(t, run.CreatedAt.IsZero())

	got, err := store.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.RepoPath, got.RepoPath)
	assert.Equal(t, "abc", got.Head)
	assert.Equal(t, 3, got.WindowDays)
	assert.Equal(t, 10, got.Commits)
	assert.Equal(t, 4, got.Files)

	_, err = store.GetRun(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLatestRun(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 9, 15, 10, 0, 0, 0, time.UTC)
	older := &Run{RepoPath: "/repo", WindowDays: 3, CreatedAt: base}
	newer := &Run{RepoPath: "/repo", WindowDays: 5, CreatedAt: base.Add(time.Hour)}
	other := &Run{RepoPath: "/other", WindowDays: 1, CreatedAt: base.Add(2 * time.Hour)}
	for _, r := range []*Run{older, newer, other} {
		require.NoError(t, store.SaveRun(ctx, r, nil))
	}

	got, err := store.LatestRun(ctx, "/repo")
	require.NoError(t, err)
	assert.Equal(t, newer.ID, got.ID)

	_, err = store.LatestRun(ctx, "/nowhere")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPairs(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	pairs := []coupling.Pair{
		{A: "a.ts", B: "b.ts", Count: 2, Reverse: 2},
		{A: "a.ts", B: "c.ts", Count: 5, Reverse: 4},
		{A: "b.ts", B: "c.ts", Count: 1, Reverse: 0},
	}
	run := &Run{RepoPath: "/repo", WindowDays: 3}
	require.NoError(t, store.SaveRun(ctx, run, pairs[:2]))
	require.NoError(t, store.SavePairs(ctx, run.ID, pairs[2:]))
	require.NoError(t, store.SavePairs(ctx, run.ID, nil))

	got, err := store.GetPairs(ctx, run.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, []coupling.Pair{pairs[1], pairs[0], pairs[2]}, got)

	top, err := store.GetPairs(ctx, run.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, []coupling.Pair{pairs[1]}, top)

	none, err := store.GetPairs(ctx, "missing", 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSaveRun_FailedPairsLeaveNoRun(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	run := &Run{RepoPath: "/repo", WindowDays: 3}
	dup := []coupling.Pair{
		{A: "a.ts", B: "b.ts", Count: 1},
		{A: "a.ts", B: "b.ts", Count: 2},
	}
	require.Error(t, store.SaveRun(ctx, run, dup))

	_, err := store.GetRun(ctx, run.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.LatestRun(ctx, "/repo")
	assert.ErrorIs(t, err, ErrNotFound)
	got, err := store.GetPairs(ctx, run.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSavePairs_DuplicateRollsBack(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	run := &Run{RepoPath: "/repo"}
	require.NoError(t, store.SaveRun(ctx, run, nil))

	dup := []coupling.Pair{
		{A: "a.ts", B: "b.ts", Count: 1},
		{A: "a.ts", B: "b.ts", Count: 2},
	}
	assert.Error(t, store.SavePairs(ctx, run.ID, dup))

	got, err := store.GetPairs(ctx, run.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}
