package coupling

import (
	apperrors "github.com/rohankatakam/defacto/internal/errors"
	"github.com/rohankatakam/defacto/internal/history"
)

// DefaultWindowDays is the half-width of the day window.
const DefaultWindowDays = 3

// Options configures Build.
type Options struct {
	// WindowDays is the inclusive half-width of the window around a
	// commit's day. 0 pairs same-day commits only.
	WindowDays int
}

// DefaultOptions returns the default window.
func DefaultOptions() Options {
	return Options{WindowDays: DefaultWindowDays}
}

// Validate rejects negative windows.
func (o Options) Validate() error {
	if o.WindowDays < 0 {
		return apperrors.ValidationErrorf("window must be >= 0 days, got %d", o.WindowDays).
			WithContext("window_days", o.WindowDays)
	}
	return nil
}

// Build computes the co-occurrence matrix of commits.
//
// For every commit C, the neighbor files are the files of every other commit
// by C's author whose day lies within WindowDays of C's day. Each file f1 of
// C is then paired with every distinct f2 in neighbors ∪ C.Files, f2 != f1,
// incrementing matrix[f1][f2] once per pair.
func Build(commits []history.Commit, opts Options) (*Matrix, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	reg := NewRegistry(commits)
	m := NewMatrix(reg)
	days := NewDayIndex(commits)

	files := make([][]int, len(commits))
	for ci, c := range commits {
		files[ci] = make([]int, 0, len(c.Files))
		for _, f := range c.Files {
			i, _ := reg.Index(f)
			files[ci] = append(files[ci], i)
		}
	}

	// mark[j] == stamp means j is already in the current target set.
	mark := make([]int, reg.Len())
	var targets []int

	for ci, c := range commits {
		stamp := ci + 1
		targets = targets[:0]
		add := func(j int) {
			if mark[j] != stamp {
				mark[j] = stamp
				targets = append(targets, j)
			}
		}

		for _, pos := range days.Window(c.Day, opts.WindowDays) {
			if pos == ci || commits[pos].Author != c.Author {
				continue
			}
			for _, j := range files[pos] {
				add(j)
			}
		}
		for _, j := range files[ci] {
			add(j)
		}

		for _, i := range files[ci] {
			for _, j := range targets {
				if i != j {
					m.Inc(i, j)
				}
			}
		}
	}

	return m, nil
}
