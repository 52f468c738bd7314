package relations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohankatakam/defacto/internal/history"
)

func commits() []history.Commit {
	return []history.Commit{
		{ID: "4", Author: "alice@example.com", Day: 20, Files: []string{"a.ts"}},
		{ID: "3", Author: "bob@example.com", Day: 12, Files: []string{"a.ts", "b.ts"}},
		{ID: "2", Author: "alice@example.com", Day: 10, Files: []string{"a.ts", "b.ts"}},
		{ID: "1", Author: "alice@example.com", Day: 4, Files: []string{"a.ts"}},
	}
}

func TestBuild(t *testing.T) {
	g := Build(commits(), false)

	require.Len(t, g.Authors, 2)
	alice := g.Authors[0]
	assert.Equal(t, Node{Type: NodeAuthor, ID: "alice@example.com", NOC: 4, MTBC: 8}, alice)
	assert.Equal(t, Node{Type: NodeAuthor, ID: "bob@example.com", NOC: 2, MTBC: 0}, g.Authors[1])

	require.Len(t, g.Modules, 2)
	// a.ts: days 20,12,10,4 → gaps 8,2,6 → 16/3.
	assert.Equal(t, "a.ts", g.Modules[0].ID)
	assert.Equal(t, 4, g.Modules[0].NOC)
	assert.InDelta(t, 16.0/3.0, g.Modules[0].MTBC, 1e-9)
	// b.ts has only two commits.
	assert.Equal(t, Node{Type: NodeModule, ID: "b.ts", NOC: 2, MTBC: 0}, g.Modules[1])

	assert.Len(t, g.Edges, 6)
}

func TestBuild_UniqueEdges(t *testing.T) {
	g := Build(commits(), true)

	assert.ElementsMatch(t, []Edge{
		{Author: "alice@example.com", Module: "a.ts"},
		{Author: "bob@example.com", Module: "a.ts"},
		{Author: "bob@example.com", Module: "b.ts"},
		{Author: "alice@example.com", Module: "b.ts"},
	}, g.Edges)

	// NOC still counts every edit.
	assert.Equal(t, 4, g.Authors[0].NOC)
}

func TestMTBC(t *testing.T) {
	assert.Zero(t, MTBC(nil))
	assert.Zero(t, MTBC([]history.Day{5, 1}))
	assert.Equal(t, 2.0, MTBC([]history.Day{6, 4, 2}))
}

func TestSerialize(t *testing.T) {
	assert.Equal(t, "node;module;src/a.ts;3;2.5", Node{Type: NodeModule, ID: "src/a.ts", NOC: 3, MTBC: 2.5}.Serialize())
	assert.Equal(t, "node;author;x@example.com;1;0", Node{Type: NodeAuthor, ID: "x@example.com", NOC: 1}.Serialize())
	assert.Equal(t, "node;author;x@example.com;4;2.0", Node{Type: NodeAuthor, ID: "x@example.com", NOC: 4, MTBC: 2}.Serialize())
	assert.Equal(t, "node;module;src/b.ts;4;5.333333333333333", Node{Type: NodeModule, ID: "src/b.ts", NOC: 4, MTBC: 16.0 / 3.0}.Serialize())
	assert.Equal(t, "edge;edit;x@example.com;src/a.ts", Edge{Author: "x@example.com", Module: "src/a.ts"}.Serialize())
}
