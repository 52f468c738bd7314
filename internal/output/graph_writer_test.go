package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohankatakam/defacto/internal/history"
	"github.com/rohankatakam/defacto/internal/relations"
)

func TestWriteGraph(t *testing.T) {
	g := relations.Build([]history.Commit{
		{ID: "2", Author: "zoe@example.com", Day: 3, Files: []string{"b.ts"}},
		{ID: "1", Author: "adam@example.com", Day: 1, Files: []string{"b.ts", "a.ts"}},
	}, false)

	var buf bytes.Buffer
	require.NoError(t, WriteGraph(&buf, g))

	want := `hierarchy;authors;2
node;author;adam@example.com;2;0
node;author;zoe@example.com;1;0
hierarchy;modules;2
node;module;a.ts;1;0
node;module;b.ts;2;0
edges;edits;3
edge;edit;adam@example.com;a.ts
edge;edit;adam@example.com;b.ts
edge;edit;zoe@example.com;b.ts
`
	assert.Equal(t, want, buf.String())
}
