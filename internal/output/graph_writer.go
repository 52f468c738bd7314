package output

import (
	"bufio"
	"fmt"
	"io"
	"sort"

	"github.com/rohankatakam/defacto/internal/relations"
)

// WriteGraph writes the relation graph as hierarchy, node and edge lines.
// Each block is sorted.
func WriteGraph(w io.Writer, g *relations.Graph) error {
	bw := bufio.NewWriter(w)

	authors := make([]string, len(g.Authors))
	for i, n := range g.Authors {
		authors[i] = n.Serialize()
	}
	modules := make([]string, len(g.Modules))
	for i, n := range g.Modules {
		modules[i] = n.Serialize()
	}
	edges := make([]string, len(g.Edges))
	for i, e := range g.Edges {
		edges[i] = e.Serialize()
	}

	writeBlock(bw, fmt.Sprintf("hierarchy;authors;%d", len(authors)), authors)
	writeBlock(bw, fmt.Sprintf("hierarchy;modules;%d", len(modules)), modules)
	writeBlock(bw, fmt.Sprintf("edges;edits;%d", len(edges)), edges)

	return bw.Flush()
}

func writeBlock(w *bufio.Writer, header string, lines []string) {
	sort.Strings(lines)
	fmt.Fprintln(w, header)
	for _, l := range lines {
		fmt.Fprintln(w, l)
	}
}
