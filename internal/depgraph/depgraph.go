// Package depgraph answers file-level dependency questions over the
// resolved internal imports of the index.
package depgraph

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/dominikbraun/graph"

	"github.com/mvp-joe/project-atlas/internal/errs"
)

// DefaultDepth is the traversal depth used when none is given.
const DefaultDepth = 1

// MaxDepth bounds Dependents traversals.
const MaxDepth = 10

// EdgeSource is the slice of the store the graph is built from.
type EdgeSource interface {
	ListFiles(ctx context.Context) ([]string, error)
	InternalEdges(ctx context.Context) ([][2]string, error)
}

// Dependent is a file reached by walking importers, with the number of
// import hops from the starting file.
type Dependent struct {
	Path  string `json:"path"`
	Depth int    `json:"depth"`
}

// Graph is an immutable snapshot of the file import graph. An edge A -> B
// means A imports B.
type Graph struct {
	g       graph.Graph[string, string]
	indexed map[string]bool
}

// Load builds a snapshot from src.
func Load(ctx context.Context, src EdgeSource) (*Graph, error) {
	files, err := src.ListFiles(ctx)
	if err != nil {
		return nil, err
	}
	edges, err := src.InternalEdges(ctx)
	if err != nil {
		return nil, err
	}
	return build(files, edges)
}

func build(files []string, edges [][2]string) (*Graph, error) {
	d := &Graph{
		g:       graph.New(graph.StringHash, graph.Directed()),
		indexed: make(map[string]bool, len(files)),
	}
	for _, f := range files {
		d.indexed[f] = true
		if err := d.addVertex(f); err != nil {
			return nil, err
		}
	}

	for _, e := range edges {
		// Targets may be non-source files (stylesheets, json) that were
		// resolved on disk but never indexed.
		if err := d.addVertex(e[1]); err != nil {
			return nil, err
		}
		if err := d.addVertex(e[0]); err != nil {
			return nil, err
		}
		if err := d.g.AddEdge(e[0], e[1]); err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
			return nil, fmt.Errorf("failed to add edge %s -> %s: %w", e[0], e[1], err)
		}
	}
	return d, nil
}

func (d *Graph) addVertex(v string) error {
	if err := d.g.AddVertex(v); err != nil && !errors.Is(err, graph.ErrVertexAlreadyExists) {
		return fmt.Errorf("failed to add file %s: %w", v, err)
	}
	return nil
}

// Dependencies returns the files path imports directly, sorted.
func (d *Graph) Dependencies(path string) ([]string, error) {
	if !d.indexed[path] {
		return nil, errs.FileNotIndexed(path)
	}
	adj, err := d.g.AdjacencyMap()
	if err != nil {
		return nil, err
	}
	return sortedKeys(adj[path]), nil
}

// Dependents walks importers of path breadth first, up to depth hops.
// Results are ordered by depth, then path; path itself is never included.
func (d *Graph) Dependents(path string, depth int) ([]Dependent, error) {
	if !d.indexed[path] {
		return nil, errs.FileNotIndexed(path)
	}
	if depth <= 0 {
		depth = DefaultDepth
	}
	depth = min(depth, MaxDepth)

	preds, err := d.g.PredecessorMap()
	if err != nil {
		return nil, err
	}

	visited := map[string]bool{path: true}
	frontier := []string{path}
	var out []Dependent
	for level := 1; level <= depth && len(frontier) > 0; level++ {
		var next []string
		for _, f := range frontier {
			for _, p := range sortedKeys(preds[f]) {
				if visited[p] {
					continue
				}
				visited[p] = true
				next = append(next, p)
			}
		}
		sort.Strings(next)
		for _, p := range next {
			out = append(out, Dependent{Path: p, Depth: level})
		}
		frontier = next
	}
	return out, nil
}

// Cycles returns every group of files that import each other, directly or
// transitively. Each group is sorted, groups are ordered by first member.
func (d *Graph) Cycles() ([][]string, error) {
	sccs, err := graph.StronglyConnectedComponents(d.g)
	if err != nil {
		return nil, err
	}
	var out [][]string
	for _, c := range sccs {
		if len(c) < 2 {
			continue
		}
		sort.Strings(c)
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out, nil
}

// Size returns the number of files and import edges in the snapshot.
func (d *Graph) Size() (files, edges int, err error) {
	if files, err = d.g.Order(); err != nil {
		return 0, 0, err
	}
	if edges, err = d.g.Size(); err != nil {
		return 0, 0, err
	}
	return files, edges, nil
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
