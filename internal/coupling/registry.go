package coupling

import (
	"sort"

	"github.com/rohankatakam/defacto/internal/history"
)

// Registry is the sorted set of paths that index both matrix axes.
type Registry struct {
	paths []string
	index map[string]int
}

// NewRegistry collects every distinct path touched by commits.
func NewRegistry(commits []history.Commit) *Registry {
	seen := make(map[string]struct{})
	for _, c := range commits {
		for _, f := range c.Files {
			seen[f] = struct{}{}
		}
	}

	paths := make([]string, 0, len(seen))
	for p := range seen {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	return registryOf(paths)
}

func registryOf(sorted []string) *Registry {
	index := make(map[string]int, len(sorted))
	for i, p := range sorted {
		index[p] = i
	}
	return &Registry{paths: sorted, index: index}
}

// Len returns the number of paths.
func (r *Registry) Len() int { return len(r.paths) }

// Index returns the position of path.
func (r *Registry) Index(path string) (int, bool) {
	i, ok := r.index[path]
	return i, ok
}

// Path returns the path at position i.
func (r *Registry) Path(i int) string { return r.paths[i] }

// Paths returns a copy of all paths in index order.
func (r *Registry) Paths() []string {
	return append([]string(nil), r.paths...)
}
