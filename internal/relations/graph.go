// Package relations builds the author/module edit graph used by bundle-view
// visualisations: who edited which file, how often, and at what pace.
package relations

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rohankatakam/defacto/internal/history"
)

// NodeType distinguishes the two node hierarchies.
type NodeType string

const (
	NodeAuthor NodeType = "author"
	NodeModule NodeType = "module"
)

// Node is an author or a module (file).
type Node struct {
	Type NodeType
	ID   string
	// NOC is the number of edit edges touching the node.
	NOC int
	// MTBC is the mean number of days between consecutive commits.
	MTBC float64
}

// Serialize renders "node;<type>;<id>;<noc>;<mtbc>". A zero MTBC prints as
// "0"; any other value always carries a fractional part ("2.0", "2.5").
func (n Node) Serialize() string {
	return fmt.Sprintf("node;%s;%s;%d;%s", n.Type, n.ID, n.NOC, formatMTBC(n.MTBC))
}

func formatMTBC(v float64) string {
	if v == 0 {
		return "0"
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// Edge records one edit of a module by an author.
type Edge struct {
	Author string
	Module string
}

// Serialize renders "edge;edit;<author>;<module>".
func (e Edge) Serialize() string {
	return fmt.Sprintf("edge;edit;%s;%s", e.Author, e.Module)
}

// Graph is the full relation graph.
type Graph struct {
	Authors []Node
	Modules []Node
	Edges   []Edge
}

// Build derives the graph from commits in log order (newest first). Every
// (commit, file) occurrence is an edge unless uniqueEdges is set.
func Build(commits []history.Commit, uniqueEdges bool) *Graph {
	var (
		edges       []Edge
		seenEdge    = make(map[Edge]struct{})
		authorNOC   = make(map[string]int)
		moduleNOC   = make(map[string]int)
		authorDays  = make(map[string][]history.Day)
		moduleDays  = make(map[string][]history.Day)
		authorOrder []string
		moduleOrder []string
	)

	for _, c := range commits {
		if _, ok := authorDays[c.Author]; !ok {
			authorOrder = append(authorOrder, c.Author)
		}
		authorDays[c.Author] = append(authorDays[c.Author], c.Day)

		for _, f := range c.Files {
			if _, ok := moduleDays[f]; !ok {
				moduleOrder = append(moduleOrder, f)
			}
			moduleDays[f] = append(moduleDays[f], c.Day)

			// NOC counts every edit, even when edges are deduplicated.
			authorNOC[c.Author]++
			moduleNOC[f]++

			e := Edge{Author: c.Author, Module: f}
			if uniqueEdges {
				if _, dup := seenEdge[e]; dup {
					continue
				}
				seenEdge[e] = struct{}{}
			}
			edges = append(edges, e)
		}
	}

	g := &Graph{Edges: edges}
	for _, a := range authorOrder {
		g.Authors = append(g.Authors, Node{Type: NodeAuthor, ID: a, NOC: authorNOC[a], MTBC: MTBC(authorDays[a])})
	}
	for _, m := range moduleOrder {
		g.Modules = append(g.Modules, Node{Type: NodeModule, ID: m, NOC: moduleNOC[m], MTBC: MTBC(moduleDays[m])})
	}
	return g
}

// MTBC is the mean gap in days between consecutive entries of days, which
// are in log order (newest first). Histories of two or fewer commits have
// an MTBC of 0.
func MTBC(days []history.Day) float64 {
	if len(days) <= 2 {
		return 0
	}
	sum := 0
	for i := 1; i < len(days); i++ {
		sum += days[i-1].Sub(days[i])
	}
	return float64(sum) / float64(len(days)-1)
}
